package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nao1215/beasiswa/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// TestNew はロガー生成を検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("ログレベルとserviceフィールドが設定されること", func(t *testing.T) {
		t.Parallel()

		entry, err := New(config.LogConfig{Level: "debug", Format: "json"}, "notification")
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}
		if entry.Logger.GetLevel() != logrus.DebugLevel {
			t.Errorf("Level = %v, want debug", entry.Logger.GetLevel())
		}
		if entry.Data["service"] != "notification" {
			t.Errorf("service = %v, want notification", entry.Data["service"])
		}

		var buf bytes.Buffer
		entry.Logger.SetOutput(&buf)
		entry.Info("テスト")

		var m map[string]any
		if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
			t.Fatalf("JSON形式で出力されていない: %v, out=%s", err, buf.String())
		}
		if m["msg"] != "テスト" {
			t.Errorf("msg = %v, want テスト", m["msg"])
		}
	})

	t.Run("不正なログレベルはエラーになること", func(t *testing.T) {
		t.Parallel()

		if _, err := New(config.LogConfig{Level: "verbose"}, "notification"); err == nil {
			t.Error("エラーが返されなかった")
		}
	})

	t.Run("ファイル指定時はファイルへ書き込まれること", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "notification.log")
		entry, err := New(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1}, "notification")
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}
		entry.Info("ファイル出力")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ログファイルの読み込みに失敗: %v", err)
		}
		if !strings.Contains(string(data), "ファイル出力") {
			t.Errorf("ログファイルにメッセージがない: %s", data)
		}
	})
}

// TestGinLogger はアクセスログミドルウェアを検証する。
func TestGinLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	router := gin.New()
	router.Use(GinLogger(logger))
	router.GET("/missing", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("JSONのデコードに失敗: %v, out=%s", err, buf.String())
	}
	if m["level"] != "warning" {
		t.Errorf("level = %v, want warning", m["level"])
	}
	if m["path"] != "/missing" {
		t.Errorf("path = %v, want /missing", m["path"])
	}
	if m["status"] != float64(http.StatusNotFound) {
		t.Errorf("status = %v, want 404", m["status"])
	}
}
