package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestLoad は環境変数と.envファイルからの読み込みを検証する。
// t.Setenvを使うため並列実行しない。
func TestLoad(t *testing.T) {
	t.Run("既定値で読み込めること", func(t *testing.T) {
		t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load()でエラーが発生: %v", err)
		}
		if cfg.Port != "8086" {
			t.Errorf("Port = %q, want %q", cfg.Port, "8086")
		}
		if cfg.DB.Driver != DriverSQLite {
			t.Errorf("DB.Driver = %q, want %q", cfg.DB.Driver, DriverSQLite)
		}
		if cfg.JWTSecret != devJWTSecret {
			t.Errorf("JWTSecret = %q, want %q", cfg.JWTSecret, devJWTSecret)
		}
		if cfg.Push.TTL != 86400 {
			t.Errorf("Push.TTL = %d, want %d", cfg.Push.TTL, 86400)
		}
		if cfg.Push.Timeout != 10*time.Second {
			t.Errorf("Push.Timeout = %v, want %v", cfg.Push.Timeout, 10*time.Second)
		}
	})

	t.Run("環境変数が既定値より優先されること", func(t *testing.T) {
		t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
		t.Setenv("PORT", "9000")
		t.Setenv("DB_DRIVER", "POSTGRES")
		t.Setenv("DB_DSN", "postgres://localhost/beasiswa?sslmode=disable")
		t.Setenv("PUSH_TIMEOUT", "3s")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load()でエラーが発生: %v", err)
		}
		if cfg.Port != "9000" {
			t.Errorf("Port = %q, want %q", cfg.Port, "9000")
		}
		if cfg.DB.Driver != DriverPostgres {
			t.Errorf("DB.Driver = %q, want %q", cfg.DB.Driver, DriverPostgres)
		}
		if cfg.Push.Timeout != 3*time.Second {
			t.Errorf("Push.Timeout = %v, want %v", cfg.Push.Timeout, 3*time.Second)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Errorf("CORSAllowedOrigins = %v, want 2件", cfg.CORSAllowedOrigins)
		}
	})

	t.Run(".envファイルの値を読み込めること", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env.test")
		content := "VAPID_PUBLIC_KEY=pub-from-file\nVAPID_SUBJECT=mailto:beasiswa@example.ac.id\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("テスト用.envの作成に失敗: %v", err)
		}
		t.Setenv("ENV_FILE", path)
		// godotenvはプロセス環境に書き込むため、テスト終了時に戻るようt.Setenvで先に登録しておく
		t.Setenv("VAPID_PUBLIC_KEY", "")
		t.Setenv("VAPID_SUBJECT", "")
		os.Unsetenv("VAPID_PUBLIC_KEY")
		os.Unsetenv("VAPID_SUBJECT")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load()でエラーが発生: %v", err)
		}
		if cfg.Push.VAPIDPublicKey != "pub-from-file" {
			t.Errorf("VAPIDPublicKey = %q, want %q", cfg.Push.VAPIDPublicKey, "pub-from-file")
		}
		if cfg.Push.Subject != "mailto:beasiswa@example.ac.id" {
			t.Errorf("Subject = %q", cfg.Push.Subject)
		}
	})

	t.Run("未対応のドライバはエラーになること", func(t *testing.T) {
		t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
		t.Setenv("DB_DRIVER", "mysql")

		if _, err := Load(); err == nil {
			t.Error("エラーが返されなかった")
		}
	})

	t.Run("本番環境でJWT_SECRETが未設定ならエラーになること", func(t *testing.T) {
		t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
		t.Setenv("ENV", "prod")
		t.Setenv("JWT_SECRET", "")

		if _, err := Load(); err == nil {
			t.Error("エラーが返されなかった")
		}
	})
}

// TestSplitList はカンマ区切り文字列の分割を検証する。
func TestSplitList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "空文字列は0件", input: "", want: 0},
		{name: "1件", input: "http://localhost:3000", want: 1},
		{name: "空白と空要素を除外", input: " a , ,b,", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := splitList(tt.input); len(got) != tt.want {
				t.Errorf("splitList(%q) = %v, want %d件", tt.input, got, tt.want)
			}
		})
	}
}
