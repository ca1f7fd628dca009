package push

import (
	"context"
	"crypto/ecdh"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// 鍵の長さ。p256dhは非圧縮形式のP-256公開鍵、authは16バイトの認証シークレット。
const (
	p256dhLen = 65
	authLen   = 16
)

// ErrMissingKeys は購読に鍵が含まれていないことを表す。
var ErrMissingKeys = errors.New("購読の鍵がありません")

// ErrMalformedKeys は購読の鍵が復号できない、または長さが不正であることを表す。
var ErrMalformedKeys = errors.New("購読の鍵が不正です")

// Subscription は配信先の購読情報。
type Subscription struct {
	// Endpoint はプッシュサービスの配信先URL。
	Endpoint string
	// P256dh はクライアントのECDH公開鍵（base64url）。
	P256dh string
	// Auth はクライアントの認証シークレット（base64url）。
	Auth string
}

// Validate は鍵の有無と形式を検証する。
// 送信前に検証し、不正な購読を配信対象から外すために使用する。
func (s Subscription) Validate() error {
	if s.Endpoint == "" || s.P256dh == "" || s.Auth == "" {
		return ErrMissingKeys
	}
	key, err := decodeKey(s.P256dh)
	if err != nil || len(key) != p256dhLen || key[0] != 0x04 {
		return fmt.Errorf("%w: p256dh", ErrMalformedKeys)
	}
	// 曲線上にない点は暗号化の段階で失敗するため、ここで弾く
	if _, err := ecdh.P256().NewPublicKey(key); err != nil {
		return fmt.Errorf("%w: p256dh", ErrMalformedKeys)
	}
	auth, err := decodeKey(s.Auth)
	if err != nil || len(auth) != authLen {
		return fmt.Errorf("%w: auth", ErrMalformedKeys)
	}
	return nil
}

// decodeKey はクライアントが送るbase64の揺れ（パディング有無、url/標準）を吸収して復号する。
func decodeKey(s string) ([]byte, error) {
	s = strings.TrimRight(s, "=")
	if b, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}

// Sender は1件の購読へペイロードを配信する。
// 実装は並行に呼び出されても安全でなければならない。
type Sender interface {
	Send(ctx context.Context, sub Subscription, payload []byte) error
}

// DeliveryError はプッシュサービスが配信を拒否したことを表す。
type DeliveryError struct {
	// StatusCode はプッシュサービスの応答ステータス。
	StatusCode int
	// Body は応答ボディ（診断用）。
	Body string
}

// Error はエラーメッセージを返す。
func (e *DeliveryError) Error() string {
	return fmt.Sprintf("プッシュサービスが配信を拒否: status=%d, body=%s", e.StatusCode, e.Body)
}

// Expired は購読が失効している（404または410）かどうかを返す。
func (e *DeliveryError) Expired() bool {
	return e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusGone
}
