package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nao1215/beasiswa/internal/notification"
)

// Notifier は応募者への通知を送る。*notification.Dispatcherが満たす。
type Notifier interface {
	Dispatch(ctx context.Context, req notification.DispatchRequest) (*notification.Report, error)
}

// Handler は応募審査APIのハンドラ。
type Handler struct {
	// store は応募の永続化層。
	store *Store
	// notifier は応募者への通知を送る。
	notifier Notifier
	// log はロガー。
	log logrus.FieldLogger
	// now は現在時刻を返す。
	now func() time.Time
}

// NewHandler はHandlerを生成する。
func NewHandler(store *Store, notifier Notifier, log logrus.FieldLogger) *Handler {
	return &Handler{
		store:    store,
		notifier: notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register は管理者用ルートグループに応募審査のルートを登録する。
func (h *Handler) Register(admin *gin.RouterGroup) {
	applications := admin.Group("/applications")
	{
		// 学生ごとの応募一覧
		applications.GET("", h.handleList())
		// 応募登録（運用・テスト用）
		applications.POST("", h.handleCreate())
		// 応募取得
		applications.GET("/:id", h.handleGet())
		// 審査ステータス変更
		applications.PATCH("/:id/status", h.handleUpdateStatus())
	}
}

// createRequest は応募登録リクエスト。
type createRequest struct {
	// StudentID は応募者の利用者ID。
	StudentID int64 `json:"student_id" binding:"required,gt=0"`
	// Scholarship は奨学金の名称。
	Scholarship string `json:"scholarship" binding:"required,max=255"`
}

// updateStatusRequest はステータス変更リクエスト。
type updateStatusRequest struct {
	// Status は変更後のステータス。
	Status Status `json:"status" binding:"required"`
}

// statusResponse はステータス変更のレスポンス。
type statusResponse struct {
	// Application は変更後の応募。
	Application Application `json:"application"`
	// Notification は送った通知の配信結果。通知しなかった場合はnull。
	Notification *notification.Report `json:"notification"`
}

// parseID はパスパラメータの応募IDを取得する。不正な場合は400を書き込む。
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "応募IDが不正です"})
		return 0, false
	}
	return id, true
}

// handleCreate は応募を登録するハンドラ。
func (h *Handler) handleCreate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		id, err := h.store.Create(c.Request.Context(), req.StudentID, req.Scholarship, h.now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "応募の登録に失敗しました"})
			h.log.WithError(err).Error("応募登録エラー")
			return
		}

		app, err := h.store.Get(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "応募の取得に失敗しました"})
			h.log.WithError(err).Error("応募取得エラー")
			return
		}
		c.JSON(http.StatusCreated, app)
	}
}

// handleList はstudent_idで指定した学生の応募一覧を返すハンドラ。
func (h *Handler) handleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		studentID, err := strconv.ParseInt(c.Query("student_id"), 10, 64)
		if err != nil || studentID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "student_idが不正です"})
			return
		}

		apps, err := h.store.ListByStudent(c.Request.Context(), studentID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "応募一覧の取得に失敗しました"})
			h.log.WithError(err).Error("応募一覧取得エラー")
			return
		}
		c.JSON(http.StatusOK, apps)
	}
}

// handleGet は応募を1件返すハンドラ。
func (h *Handler) handleGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		app, err := h.store.Get(c.Request.Context(), id)
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "応募の取得に失敗しました"})
			h.log.WithError(err).Error("応募取得エラー")
			return
		}
		c.JSON(http.StatusOK, app)
	}
}

// handleUpdateStatus は審査ステータスを変更し、応募者へ通知するハンドラ。
// ステータスが変わらない場合は通知しない。
func (h *Handler) handleUpdateStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}

		var req updateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}
		if !req.Status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("不明なステータスです: %s", req.Status)})
			return
		}

		before, after, err := h.store.UpdateStatus(c.Request.Context(), id, req.Status, h.now())
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ステータスの更新に失敗しました"})
			h.log.WithError(err).Error("ステータス更新エラー")
			return
		}

		resp := statusResponse{Application: after}
		if before.Status != after.Status {
			resp.Notification = h.notify(c.Request.Context(), after)
		}
		c.JSON(http.StatusOK, resp)
	}
}

// notify は応募者へステータス変更を通知する。
// 失敗しても更新済みのステータスは取り消さず、nilを返す。
func (h *Handler) notify(ctx context.Context, app Application) *notification.Report {
	title, body := app.Status.Message(app.Scholarship)
	report, err := h.notifier.Dispatch(ctx, notification.DispatchRequest{
		RecipientID: app.StudentID,
		Title:       title,
		Body:        body,
		URL:         ResultURL,
	})
	if err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{
			"application_id": app.ID,
			"student_id":     app.StudentID,
			"status":         app.Status,
		}).Error("ステータス変更の通知に失敗しました")
		return nil
	}
	return report
}
