package notification

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	notificationdb "github.com/nao1215/beasiswa/internal/notification/db"
)

// subscriptionKeys はPushSubscription.toJSON()のkeys部分。
type subscriptionKeys struct {
	// P256dh はクライアントのECDH公開鍵。
	P256dh string `json:"p256dh"`
	// Auth は認証シークレット。
	Auth string `json:"auth"`
}

// subscribeRequest はブラウザのPushSubscription.toJSON()をそのまま受け取る構造。
// keysはnullや欠落のまま送られてくることがあり、その場合も登録だけは受け付ける。
type subscribeRequest struct {
	// Endpoint はプッシュサービスの配信先URL。
	Endpoint string `json:"endpoint" validate:"required,url,max=2048"`
	// Keys は暗号化に使う鍵。
	Keys *subscriptionKeys `json:"keys"`
}

// unsubscribeRequest は購読解除リクエスト。
type unsubscribeRequest struct {
	// Endpoint は解除するエンドポイント。
	Endpoint string `json:"endpoint" validate:"required"`
}

// nullable は空文字列をNULLとして扱う。
func nullable(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

// handleSubscribe は認証済み利用者の購読を登録するハンドラ。
// 同じエンドポイントの再登録は鍵を置き換える。
func (s *Server) handleSubscribe() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid, ok := recipientID(c)
		if !ok {
			return
		}

		var req subscribeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}
		if err := validate.Struct(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %s", describeValidation(err))})
			return
		}

		params := notificationdb.UpsertSubscriptionParams{
			RecipientID: rid,
			Endpoint:    req.Endpoint,
			CreatedAt:   time.Now().UTC(),
		}
		if req.Keys != nil {
			params.P256dh = nullable(req.Keys.P256dh)
			params.Auth = nullable(req.Keys.Auth)
		}
		if !params.P256dh.Valid || !params.Auth.Valid {
			// 配信時にスキップされる。登録自体は拒否しない
			s.log.WithField("recipient_id", rid).Warn("鍵のない購読が登録されました")
		}

		if err := s.queries.UpsertSubscription(c.Request.Context(), params); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "購読の登録に失敗しました"})
			s.log.WithError(err).Error("購読登録エラー")
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "購読を登録しました"})
	}
}

// handleUnsubscribe は認証済み利用者の購読を解除するハンドラ。
func (s *Server) handleUnsubscribe() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid, ok := recipientID(c)
		if !ok {
			return
		}

		var req unsubscribeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}
		if err := validate.Struct(req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %s", describeValidation(err))})
			return
		}

		deleted, err := s.queries.DeleteSubscription(c.Request.Context(), rid, req.Endpoint)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "購読の解除に失敗しました"})
			s.log.WithError(err).Error("購読解除エラー")
			return
		}
		if deleted == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "購読が見つかりません"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "購読を解除しました"})
	}
}
