package receiver

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed sw.js
var serviceWorker []byte

// ServeScript はService Workerのスクリプトを返すGinハンドラ。
// 更新が即座に反映されるようキャッシュさせない。
func ServeScript(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.Header("Service-Worker-Allowed", "/")
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", serviceWorker)
}
