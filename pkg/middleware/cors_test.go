package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// TestCORS はCORSミドルウェアを検証する。
func TestCORS(t *testing.T) {
	t.Parallel()

	newRouter := func() *gin.Engine {
		router := gin.New()
		router.Use(CORS([]string{"http://localhost:3000", "https://beasiswa.example.ac.id"}))
		router.Any("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		return router
	}

	tests := []struct {
		name        string
		method      string
		origin      string
		wantStatus  int
		wantAllowed string
	}{
		{
			name:        "許可されたオリジンにCORSヘッダーが設定されること",
			method:      http.MethodGet,
			origin:      "http://localhost:3000",
			wantStatus:  http.StatusOK,
			wantAllowed: "http://localhost:3000",
		},
		{
			name:        "2番目のオリジンでも設定されること",
			method:      http.MethodPatch,
			origin:      "https://beasiswa.example.ac.id",
			wantStatus:  http.StatusOK,
			wantAllowed: "https://beasiswa.example.ac.id",
		},
		{
			name:       "許可されていないオリジンには設定されないこと",
			method:     http.MethodGet,
			origin:     "https://evil.example.com",
			wantStatus: http.StatusOK,
		},
		{
			name:        "プリフライトは204で中断されること",
			method:      http.MethodOptions,
			origin:      "http://localhost:3000",
			wantStatus:  http.StatusNoContent,
			wantAllowed: "http://localhost:3000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, "/test", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			newRouter().ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("ステータスコード = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllowed {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantAllowed)
			}
			if tt.wantAllowed != "" {
				if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, PATCH, DELETE, OPTIONS" {
					t.Errorf("Access-Control-Allow-Methods = %q", got)
				}
				if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
					t.Errorf("Access-Control-Allow-Credentials = %q, want true", got)
				}
			}
		})
	}
}
