package notification

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/nao1215/beasiswa/internal/config"
	"github.com/nao1215/beasiswa/internal/logging"
	notificationdb "github.com/nao1215/beasiswa/internal/notification/db"
	"github.com/nao1215/beasiswa/internal/push"
	"github.com/nao1215/beasiswa/internal/receiver"
	"github.com/nao1215/beasiswa/pkg/middleware"
)

// Server は通知サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// admin は管理者専用APIのルートグループ。
	admin *gin.RouterGroup
	// port はサーバーのリッスンポート。
	port string
	// queries は通知と購読のクエリ実行オブジェクト。
	queries *notificationdb.Queries
	// dispatcher は通知の保存と配信を行う。
	dispatcher *Dispatcher
	// vapidPublicKey はクライアントに渡すVAPID公開鍵。
	vapidPublicKey string
	// log はロガー。
	log logrus.FieldLogger
}

// NewServer は新しい通知サーバーを生成する。
// dbはスキーマ適用済みであること。
func NewServer(cfg *config.Config, db *sqlx.DB, sender push.Sender, log logrus.FieldLogger) *Server {
	router := gin.New()
	router.Use(middleware.Recovery(log))
	router.Use(logging.GinLogger(log))
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	queries := notificationdb.New(db)
	s := &Server{
		router:         router,
		port:           cfg.Port,
		queries:        queries,
		dispatcher:     NewDispatcher(queries, sender, log),
		vapidPublicKey: cfg.Push.VAPIDPublicKey,
		log:            log,
	}
	s.setupRoutes(middleware.JWTAuth(cfg.JWTSecret))

	return s
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// Handler はHTTPハンドラを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Dispatcher は他のモジュールから通知を送るためのDispatcherを返す。
func (s *Server) Dispatcher() *Dispatcher {
	return s.dispatcher
}

// AdminGroup は管理者専用APIのルートグループを返す。
// 応募審査など、通知を発生させる管理機能のルートを追加するために使用する。
func (s *Server) AdminGroup() *gin.RouterGroup {
	return s.admin
}

// setupRoutes はAPIルーティングを設定する。
// authは認証ミドルウェアで、テストでは差し替える。
func (s *Server) setupRoutes(auth gin.HandlerFunc) {
	api := s.router.Group("/api/v1")
	api.Use(auth)
	{
		notifications := api.Group("/notifications")
		{
			// 通知一覧取得
			notifications.GET("", s.handleList())
			// 未読通知一覧取得
			notifications.GET("/unread", s.handleListUnread())
			// 全通知を既読にする
			notifications.PATCH("/read-all", s.handleMarkAllAsRead())
		}
		// 通知を既読にする（Service Workerのクリック処理から呼ばれる）
		api.PATCH("/notification/:id/read", s.handleMarkAsRead())

		subscriptions := api.Group("/subscriptions")
		{
			subscriptions.POST("", s.handleSubscribe())
			subscriptions.DELETE("", s.handleUnsubscribe())
		}

		// 通知作成（内部API - 審査処理や運用ツールから呼び出される）
		internal := api.Group("/internal")
		internal.Use(middleware.RequireRole(middleware.RoleAdmin))
		{
			internal.POST("/notifications", s.handleSend())
		}

		s.admin = api.Group("/admin")
		s.admin.Use(middleware.RequireRole(middleware.RoleAdmin))
	}

	// クライアントが購読登録に使うVAPID公開鍵
	s.router.GET("/push/vapid-public-key", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"public_key": s.vapidPublicKey})
	})
	// Service Worker
	s.router.GET("/sw.js", receiver.ServeScript)

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "notification"})
	})
}

// notificationResponse は通知のJSONレスポンス構造。
type notificationResponse struct {
	// ID は通知の一意識別子。
	ID string `json:"id"`
	// RecipientID は通知先の利用者ID。
	RecipientID int64 `json:"recipient_id"`
	// Title は通知のタイトル。
	Title string `json:"title"`
	// Body は通知本文。
	Body string `json:"body"`
	// URL はクリック時の遷移先。
	URL string `json:"url,omitempty"`
	// IsRead は通知の既読状態。
	IsRead bool `json:"is_read"`
	// CreatedAt は通知の作成日時（RFC3339形式）。
	CreatedAt string `json:"created_at"`
}

// toNotificationResponses はDB行のスライスをJSONレスポンスのスライスに変換する。
func toNotificationResponses(notifications []notificationdb.Notification) []notificationResponse {
	responses := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		responses = append(responses, notificationResponse{
			ID:          n.ID,
			RecipientID: n.RecipientID,
			Title:       n.Title,
			Body:        n.Body,
			URL:         n.URL.String,
			IsRead:      n.IsRead,
			CreatedAt:   n.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return responses
}

// recipientID は認証済み利用者のIDを数値で取得する。
// 取得できない場合は401を書き込みfalseを返す。
func recipientID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(middleware.GetUserID(c), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザーIDが取得できません"})
		return 0, false
	}
	return id, true
}

// handleList は認証済み利用者の通知一覧を返すハンドラ。
func (s *Server) handleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid, ok := recipientID(c)
		if !ok {
			return
		}

		notifications, err := s.queries.ListNotificationsByRecipient(c.Request.Context(), rid)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知一覧の取得に失敗しました"})
			s.log.WithError(err).Error("通知一覧取得エラー")
			return
		}

		c.JSON(http.StatusOK, toNotificationResponses(notifications))
	}
}

// handleListUnread は認証済み利用者の未読通知一覧を返すハンドラ。
func (s *Server) handleListUnread() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid, ok := recipientID(c)
		if !ok {
			return
		}

		notifications, err := s.queries.ListUnreadNotifications(c.Request.Context(), rid)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "未読通知一覧の取得に失敗しました"})
			s.log.WithError(err).Error("未読通知一覧取得エラー")
			return
		}

		c.JSON(http.StatusOK, toNotificationResponses(notifications))
	}
}

// handleMarkAsRead は指定された通知を既読にするハンドラ。
func (s *Server) handleMarkAsRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid, ok := recipientID(c)
		if !ok {
			return
		}
		notificationID := c.Param("id")

		// 通知の存在確認と所有者チェック
		n, err := s.queries.GetNotificationByID(c.Request.Context(), notificationID)
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "通知が見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知の取得に失敗しました"})
			s.log.WithError(err).Error("通知取得エラー")
			return
		}
		if n.RecipientID != rid {
			c.JSON(http.StatusForbidden, gin.H{"error": "この通知を操作する権限がありません"})
			return
		}

		if err := s.queries.MarkAsRead(c.Request.Context(), notificationID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知の既読処理に失敗しました"})
			s.log.WithError(err).Error("通知既読処理エラー")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "通知を既読にしました"})
	}
}

// handleMarkAllAsRead は認証済み利用者の全通知を既読にするハンドラ。
func (s *Server) handleMarkAllAsRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid, ok := recipientID(c)
		if !ok {
			return
		}

		updated, err := s.queries.MarkAllAsRead(c.Request.Context(), rid)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "全通知の既読処理に失敗しました"})
			s.log.WithError(err).Error("全通知既読処理エラー")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "全通知を既読にしました", "updated": updated})
	}
}

// handleSend は通知を作成して配信するハンドラ。
// 配信の一部または全部が失敗しても、保存できれば201を返す。
func (s *Server) handleSend() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DispatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		report, err := s.dispatcher.Dispatch(c.Request.Context(), req)
		if errors.Is(err, ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "通知の作成に失敗しました"})
			s.log.WithError(err).Error("通知作成エラー")
			return
		}

		c.JSON(http.StatusCreated, report)
	}
}
