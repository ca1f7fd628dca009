package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testSecret はテスト用のJWTシークレット。
const testSecret = "test-secret-key-for-unit-tests"

// newAuthRouter はJWTAuthを適用し、コンテキストの値を返すテスト用ルーターを生成する。
func newAuthRouter(extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuth(testSecret))
	router.Use(extra...)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "role": GetRole(c)})
	})
	return router
}

// TestGenerateJWT はGenerateJWT関数を検証する。
func TestGenerateJWT(t *testing.T) {
	t.Parallel()

	t.Run("クレームにユーザーIDとロールが含まれること", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateJWT(testSecret, "42", RoleStudent)
		if err != nil {
			t.Fatalf("GenerateJWT()でエラーが発生: %v", err)
		}

		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
			return []byte(testSecret), nil
		})
		if err != nil || !token.Valid {
			t.Fatalf("トークンのパースに失敗: %v", err)
		}
		if claims.UserID != "42" {
			t.Errorf("UserID = %q, want %q", claims.UserID, "42")
		}
		if claims.Role != RoleStudent {
			t.Errorf("Role = %q, want %q", claims.Role, RoleStudent)
		}
		if claims.Issuer != "beasiswa-portal" {
			t.Errorf("Issuer = %q, want %q", claims.Issuer, "beasiswa-portal")
		}
		if d := time.Until(claims.ExpiresAt.Time); d < 23*time.Hour || d > 25*time.Hour {
			t.Errorf("有効期限までの時間 = %v, 24時間前後であるべき", d)
		}
	})

	t.Run("異なるシークレットでは検証に失敗すること", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := GenerateJWT(testSecret, "42", RoleStudent)
		if err != nil {
			t.Fatalf("GenerateJWT()でエラーが発生: %v", err)
		}
		_, err = jwt.ParseWithClaims(tokenStr, &JWTClaims{}, func(_ *jwt.Token) (any, error) {
			return []byte("wrong-secret"), nil
		})
		if err == nil {
			t.Fatal("異なるシークレットでの検証がエラーを返すべき")
		}
	})
}

// TestJWTAuth はJWTAuthミドルウェアを検証する。
func TestJWTAuth(t *testing.T) {
	t.Parallel()

	validToken, err := GenerateJWT(testSecret, "42", RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateJWT()でエラーが発生: %v", err)
	}
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		UserID: "42",
	})
	expiredToken, err := expired.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("期限切れトークンの生成に失敗: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
	}{
		{name: "Bearerトークンで認証できること", header: "Bearer " + validToken, wantStatus: http.StatusOK},
		{name: "クッキーのトークンで認証できること", cookie: validToken, wantStatus: http.StatusOK},
		{name: "トークンがない場合は401", wantStatus: http.StatusUnauthorized},
		{name: "Bearer形式でない場合は401", header: "Token " + validToken, wantStatus: http.StatusUnauthorized},
		{name: "空のBearerは401", header: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "改ざんされたトークンは401", header: "Bearer " + validToken + "x", wantStatus: http.StatusUnauthorized},
		{name: "期限切れトークンは401", header: "Bearer " + expiredToken, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := newAuthRouter()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("ステータスコード = %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

// TestRequireRole はロールによる認可を検証する。
func TestRequireRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{name: "adminは許可されること", role: RoleAdmin, wantStatus: http.StatusOK},
		{name: "studentは403になること", role: RoleStudent, wantStatus: http.StatusForbidden},
		{name: "ロールなしは403になること", role: "", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tokenStr, err := GenerateJWT(testSecret, "7", tt.role)
			if err != nil {
				t.Fatalf("GenerateJWT()でエラーが発生: %v", err)
			}
			router := newAuthRouter(RequireRole(RoleAdmin))
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("Authorization", "Bearer "+tokenStr)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("ステータスコード = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

// TestGetUserID はコンテキストに値がない場合の挙動を検証する。
func TestGetUserID(t *testing.T) {
	t.Parallel()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := GetUserID(c); got != "" {
		t.Errorf("GetUserID() = %q, want 空文字列", got)
	}
	c.Set("user_id", 42)
	if got := GetUserID(c); got != "" {
		t.Errorf("文字列以外の値でGetUserID() = %q, want 空文字列", got)
	}
}
