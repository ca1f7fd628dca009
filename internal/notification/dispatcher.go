package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	notificationdb "github.com/nao1215/beasiswa/internal/notification/db"
	"github.com/nao1215/beasiswa/internal/push"
	"github.com/nao1215/beasiswa/pkg/payload"
)

// ErrInvalidRequest は通知作成リクエストの必須項目が欠けていることを表す。
var ErrInvalidRequest = errors.New("通知リクエストが不正です")

// validate は入力検証に使用する共有バリデータ。
var validate = validator.New(validator.WithRequiredStructEnabled())

// DispatchRequest は通知1件の作成と配信の依頼。
type DispatchRequest struct {
	// RecipientID は通知先の利用者ID。
	RecipientID int64 `json:"recipient_id" validate:"required,gt=0"`
	// Title は通知のタイトル。
	Title string `json:"title" validate:"required"`
	// Body は通知本文。
	Body string `json:"body" validate:"required"`
	// URL はクリック時の遷移先。省略可能。
	URL string `json:"url,omitempty"`
}

// normalize は前後の空白を除去する。空白だけのタイトルや本文は空として扱う。
func (r DispatchRequest) normalize() DispatchRequest {
	r.Title = strings.TrimSpace(r.Title)
	r.Body = strings.TrimSpace(r.Body)
	r.URL = strings.TrimSpace(r.URL)
	return r
}

// Report は1回の配信結果の集計。
type Report struct {
	// NotificationID は保存した通知のID。
	NotificationID string `json:"id"`
	// Subscriptions は配信先として見つかった購読の数。
	Subscriptions int `json:"subscriptions"`
	// Delivered はプッシュサービスが受理した数。
	Delivered int `json:"delivered"`
	// Skipped は鍵の欠落・不正で送信しなかった数。
	Skipped int `json:"skipped"`
	// Failed は送信したが失敗した数。
	Failed int `json:"failed"`
}

// Store はDispatcherが使用する永続化層。
type Store interface {
	CreateNotification(ctx context.Context, arg notificationdb.CreateNotificationParams) error
	ListSubscriptionsByRecipient(ctx context.Context, recipientID int64) ([]notificationdb.Subscription, error)
}

// Dispatcher は通知を保存し、利用者のすべての購読へ並行に配信する。
type Dispatcher struct {
	store  Store
	sender push.Sender
	log    logrus.FieldLogger
	now    func() time.Time
	newID  func() string
}

// NewDispatcher はDispatcherを生成する。
func NewDispatcher(store Store, sender push.Sender, log logrus.FieldLogger) *Dispatcher {
	return &Dispatcher{
		store:  store,
		sender: sender,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.New().String() },
	}
}

// deliveryResult は1件の購読への配信結果。
type deliveryResult int

const (
	resultDelivered deliveryResult = iota
	resultSkipped
	resultFailed
)

// Dispatch は通知を1件保存してから、利用者の購読へ配信する。
//
// 入力が不正な場合はErrInvalidRequestを返し、何も保存しない。
// 保存に失敗した場合はエラーを返し、配信は行わない。
// 保存後の配信は購読ごとに1回だけ試み、個別の失敗は記録して続行する。
func (d *Dispatcher) Dispatch(ctx context.Context, req DispatchRequest) (*Report, error) {
	req = req.normalize()
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, describeValidation(err))
	}

	id := d.newID()
	if err := d.store.CreateNotification(ctx, notificationdb.CreateNotificationParams{
		ID:          id,
		RecipientID: req.RecipientID,
		Title:       req.Title,
		Body:        req.Body,
		URL:         sql.NullString{String: req.URL, Valid: req.URL != ""},
		CreatedAt:   d.now(),
	}); err != nil {
		return nil, fmt.Errorf("通知の保存に失敗: %w", err)
	}

	report := &Report{NotificationID: id}
	log := d.log.WithFields(logrus.Fields{
		"notification_id": id,
		"recipient_id":    req.RecipientID,
	})

	// ここから先の失敗は保存済みの通知を取り消さない
	subs, err := d.store.ListSubscriptionsByRecipient(ctx, req.RecipientID)
	if err != nil {
		log.WithError(err).Error("購読の取得に失敗したため配信を行いません")
		return report, nil
	}
	report.Subscriptions = len(subs)
	if len(subs) == 0 {
		log.Debug("購読がないため配信をスキップしました")
		return report, nil
	}

	body, err := payload.Encode(payload.Push{
		Title:          req.Title,
		Body:           req.Body,
		URL:            req.URL,
		NotificationID: id,
	})
	if err != nil {
		log.WithError(err).Error("ペイロードの生成に失敗したため配信を行いません")
		return report, nil
	}

	// 呼び出し元の切断で配信を中断しない
	deliverCtx := context.WithoutCancel(ctx)
	results := make([]deliveryResult, len(subs))
	var g errgroup.Group
	for i, s := range subs {
		g.Go(func() error {
			results[i] = d.deliver(deliverCtx, log, s, body)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		switch r {
		case resultDelivered:
			report.Delivered++
		case resultSkipped:
			report.Skipped++
		case resultFailed:
			report.Failed++
		}
	}
	log.WithFields(logrus.Fields{
		"delivered": report.Delivered,
		"skipped":   report.Skipped,
		"failed":    report.Failed,
	}).Info("通知を配信しました")

	return report, nil
}

// deliver は1件の購読へ配信する。エラーは返さず結果として集計する。
func (d *Dispatcher) deliver(ctx context.Context, log logrus.FieldLogger, s notificationdb.Subscription, body []byte) deliveryResult {
	sub := push.Subscription{
		Endpoint: s.Endpoint,
		P256dh:   s.P256dh.String,
		Auth:     s.Auth.String,
	}
	log = log.WithFields(logrus.Fields{
		"subscription_id": s.ID,
		"endpoint":        s.Endpoint,
	})

	if err := sub.Validate(); err != nil {
		log.WithError(err).Warn("鍵が不正な購読をスキップしました")
		return resultSkipped
	}

	if err := d.sender.Send(ctx, sub, body); err != nil {
		var de *push.DeliveryError
		if errors.As(err, &de) && de.Expired() {
			log.WithError(err).Warn("購読が失効しています")
		} else {
			log.WithError(err).Error("プッシュ通知の配信に失敗しました")
		}
		return resultFailed
	}
	return resultDelivered
}

// describeValidation は検証エラーをフィールド名付きの文字列にする。
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
	}
	return strings.Join(fields, ", ")
}
