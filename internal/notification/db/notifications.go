package db

import (
	"context"
	"database/sql"
	"time"
)

// CreateNotificationParams はCreateNotificationの引数。
type CreateNotificationParams struct {
	ID          string
	RecipientID int64
	Title       string
	Body        string
	URL         sql.NullString
	CreatedAt   time.Time
}

const createNotification = `
INSERT INTO notifications (id, recipient_id, title, body, url, is_read, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

// CreateNotification は未読状態の通知を1件保存する。
func (q *Queries) CreateNotification(ctx context.Context, arg CreateNotificationParams) error {
	_, err := q.db.ExecContext(ctx, q.db.Rebind(createNotification),
		arg.ID, arg.RecipientID, arg.Title, arg.Body, arg.URL, false, arg.CreatedAt)
	return err
}

const notificationColumns = `id, recipient_id, title, body, url, is_read, created_at`

const getNotificationByID = `SELECT ` + notificationColumns + ` FROM notifications WHERE id = ?`

// GetNotificationByID はIDで通知を取得する。存在しない場合はsql.ErrNoRowsを返す。
func (q *Queries) GetNotificationByID(ctx context.Context, id string) (Notification, error) {
	var n Notification
	err := q.db.GetContext(ctx, &n, q.db.Rebind(getNotificationByID), id)
	return n, err
}

const listNotificationsByRecipient = `SELECT ` + notificationColumns + ` FROM notifications
WHERE recipient_id = ? ORDER BY created_at DESC, id`

// ListNotificationsByRecipient は利用者の通知を新しい順に返す。
func (q *Queries) ListNotificationsByRecipient(ctx context.Context, recipientID int64) ([]Notification, error) {
	items := []Notification{}
	err := q.db.SelectContext(ctx, &items, q.db.Rebind(listNotificationsByRecipient), recipientID)
	return items, err
}

const listUnreadNotifications = `SELECT ` + notificationColumns + ` FROM notifications
WHERE recipient_id = ? AND is_read = ? ORDER BY created_at DESC, id`

// ListUnreadNotifications は利用者の未読通知を新しい順に返す。
func (q *Queries) ListUnreadNotifications(ctx context.Context, recipientID int64) ([]Notification, error) {
	items := []Notification{}
	err := q.db.SelectContext(ctx, &items, q.db.Rebind(listUnreadNotifications), recipientID, false)
	return items, err
}

const markAsRead = `UPDATE notifications SET is_read = ? WHERE id = ?`

// MarkAsRead は通知を既読にする。既読済みでもエラーにしない。
func (q *Queries) MarkAsRead(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, q.db.Rebind(markAsRead), true, id)
	return err
}

const markAllAsRead = `UPDATE notifications SET is_read = ? WHERE recipient_id = ? AND is_read = ?`

// MarkAllAsRead は利用者の未読通知をすべて既読にし、更新件数を返す。
func (q *Queries) MarkAllAsRead(ctx context.Context, recipientID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, q.db.Rebind(markAllAsRead), true, recipientID, false)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
