// Package pushtest はpushパッケージを使うテストのための補助を提供する。
package pushtest

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"testing"

	"github.com/nao1215/beasiswa/internal/push"
)

// NewKeys はブラウザが発行するのと同じ形式の購読鍵（p256dh, auth）を生成する。
func NewKeys(t testing.TB) (p256dh, auth string) {
	t.Helper()

	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("ECDH鍵の生成に失敗: %v", err)
	}
	secret := make([]byte, 16)
	if _, err := rand.Read(secret); err != nil {
		t.Fatalf("認証シークレットの生成に失敗: %v", err)
	}
	return base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes()),
		base64.RawURLEncoding.EncodeToString(secret)
}

// Delivery はRecorderが受け取った1件の配信。
type Delivery struct {
	Subscription push.Subscription
	Payload      []byte
}

// Recorder は配信内容を記録するpush.Sender。
// FailEndpointsに含まれるエンドポイントへの配信はErrに指定したエラーを返す。
type Recorder struct {
	// FailEndpoints は配信を失敗させるエンドポイント。
	FailEndpoints map[string]bool
	// Err は失敗時に返すエラー。
	Err error

	mu         sync.Mutex
	deliveries []Delivery
}

var _ push.Sender = (*Recorder)(nil)

// Send は配信を記録する。
func (r *Recorder) Send(_ context.Context, sub push.Subscription, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.deliveries = append(r.deliveries, Delivery{Subscription: sub, Payload: payload})
	if r.FailEndpoints[sub.Endpoint] {
		return r.Err
	}
	return nil
}

// Deliveries は記録した配信の一覧を返す。
func (r *Recorder) Deliveries() []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Delivery, len(r.deliveries))
	copy(out, r.deliveries)
	return out
}
