package push

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/nao1215/beasiswa/internal/config"
)

// maxErrorBody は診断用に読み取る応答ボディの上限。
const maxErrorBody = 512

// WebPushSender はwebpush-goを使ってプッシュサービスへ配信するSender。
type WebPushSender struct {
	// client はプッシュサービスへのHTTPクライアント。
	client webpush.HTTPClient
	// cfg はVAPID鍵と配信パラメータ。
	cfg config.PushConfig
}

var _ Sender = (*WebPushSender)(nil)

// NewWebPushSender はWebPushSenderを生成する。
// clientがnilの場合はcfg.Timeoutをタイムアウトとする*http.Clientを使用する。
func NewWebPushSender(cfg config.PushConfig, client webpush.HTTPClient) *WebPushSender {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &WebPushSender{client: client, cfg: cfg}
}

// Send はペイロードを暗号化して購読のエンドポイントへ送信する。
// プッシュサービスが400以上を返した場合は*DeliveryErrorを返す。
func (s *WebPushSender) Send(ctx context.Context, sub Subscription, payload []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		HTTPClient:      s.client,
		Subscriber:      s.cfg.Subject,
		TTL:             s.cfg.TTL,
		Urgency:         webpush.UrgencyNormal,
		VAPIDPublicKey:  s.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: s.cfg.VAPIDPrivateKey,
	})
	if err != nil {
		return fmt.Errorf("プッシュ通知の送信に失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &DeliveryError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

// GenerateVAPIDKeys はVAPID鍵ペアを生成する。
func GenerateVAPIDKeys() (privateKey, publicKey string, err error) {
	privateKey, publicKey, err = webpush.GenerateVAPIDKeys()
	if err != nil {
		return "", "", fmt.Errorf("VAPID鍵の生成に失敗: %w", err)
	}
	return privateKey, publicKey, nil
}
