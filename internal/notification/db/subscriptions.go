package db

import (
	"context"
	"database/sql"
	"time"
)

// UpsertSubscriptionParams はUpsertSubscriptionの引数。
type UpsertSubscriptionParams struct {
	RecipientID int64
	Endpoint    string
	P256dh      sql.NullString
	Auth        sql.NullString
	CreatedAt   time.Time
}

// 同じエンドポイントの再登録は鍵と所有者を置き換える。
// ブラウザは購読を更新すると同じエンドポイントで新しい鍵を発行することがある。
const upsertSubscription = `
INSERT INTO push_subscriptions (recipient_id, endpoint, p256dh, auth, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (endpoint) DO UPDATE SET
    recipient_id = excluded.recipient_id,
    p256dh = excluded.p256dh,
    auth = excluded.auth`

// UpsertSubscription は購読を登録する。
func (q *Queries) UpsertSubscription(ctx context.Context, arg UpsertSubscriptionParams) error {
	_, err := q.db.ExecContext(ctx, q.db.Rebind(upsertSubscription),
		arg.RecipientID, arg.Endpoint, arg.P256dh, arg.Auth, arg.CreatedAt)
	return err
}

const listSubscriptionsByRecipient = `
SELECT id, recipient_id, endpoint, p256dh, auth, created_at
FROM push_subscriptions WHERE recipient_id = ? ORDER BY id`

// ListSubscriptionsByRecipient は利用者のすべての購読を返す。
func (q *Queries) ListSubscriptionsByRecipient(ctx context.Context, recipientID int64) ([]Subscription, error) {
	items := []Subscription{}
	err := q.db.SelectContext(ctx, &items, q.db.Rebind(listSubscriptionsByRecipient), recipientID)
	return items, err
}

const deleteSubscription = `DELETE FROM push_subscriptions WHERE recipient_id = ? AND endpoint = ?`

// DeleteSubscription は利用者の購読をエンドポイント指定で削除し、削除件数を返す。
func (q *Queries) DeleteSubscription(ctx context.Context, recipientID int64, endpoint string) (int64, error) {
	res, err := q.db.ExecContext(ctx, q.db.Rebind(deleteSubscription), recipientID, endpoint)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
