package db

import (
	"database/sql"
	"time"
)

// Notification はnotificationsテーブルの行。
type Notification struct {
	ID          string         `db:"id"`
	RecipientID int64          `db:"recipient_id"`
	Title       string         `db:"title"`
	Body        string         `db:"body"`
	URL         sql.NullString `db:"url"`
	IsRead      bool           `db:"is_read"`
	CreatedAt   time.Time      `db:"created_at"`
}

// Subscription はpush_subscriptionsテーブルの行。
// P256dhとAuthはクライアントが送らなかった場合NULLになる。
type Subscription struct {
	ID          int64          `db:"id"`
	RecipientID int64          `db:"recipient_id"`
	Endpoint    string         `db:"endpoint"`
	P256dh      sql.NullString `db:"p256dh"`
	Auth        sql.NullString `db:"auth"`
	CreatedAt   time.Time      `db:"created_at"`
}
