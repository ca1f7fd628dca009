package receiver

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/nao1215/beasiswa/pkg/payload"
)

// 既定値。
const (
	// DefaultTitle はペイロードを解析できなかった場合に表示するタイトル。
	DefaultTitle = "Beasiswa"
	// DefaultURL は遷移先が指定されていない場合に開くページ。
	DefaultURL = "/"
)

// Options は通知表示のオプション。showNotificationの第2引数に相当する。
type Options struct {
	// Body は通知本文。
	Body string
	// Icon は通知アイコンのURL。
	Icon string
	// Tag は同じ通知の重複表示を抑止するタグ。
	Tag string
	// Data はクリック時に使うメタデータ。
	Data payload.Metadata
}

// Display は通知を表示する。
type Display interface {
	Show(ctx context.Context, title string, opts Options) error
}

// Shown は表示中の通知。
type Shown interface {
	Close()
}

// Window は開いているウィンドウ（タブ）。
type Window interface {
	// URL はウィンドウが表示している絶対URL。
	URL() string
	// Focus はウィンドウを前面に出す。
	Focus(ctx context.Context) error
}

// Windows は開いているウィンドウの列挙と新規ウィンドウの作成を行う。
type Windows interface {
	List(ctx context.Context) ([]Window, error)
	Open(ctx context.Context, absURL string) error
}

// ReadMarker は通知を既読にする。
type ReadMarker interface {
	MarkRead(ctx context.Context, notificationID string) error
}

// ClickEvent は通知クリックのイベント。
type ClickEvent struct {
	// Notification はクリックされた通知。
	Notification Shown
	// Data は表示時に埋め込んだメタデータ。
	Data payload.Metadata
}

// Receiver は受信した通知の表示とクリック処理を行う。
type Receiver struct {
	origin  *url.URL
	icon    string
	display Display
	windows Windows
	marker  ReadMarker
	log     logrus.FieldLogger
}

// Config はReceiverの設定。
type Config struct {
	// Origin はポータルのオリジン（例: https://beasiswa.example.ac.id）。
	// 相対URLの解決に使用する。
	Origin string
	// Icon は通知アイコンのURL。
	Icon string
}

// New はReceiverを生成する。
func New(cfg Config, display Display, windows Windows, marker ReadMarker, log logrus.FieldLogger) (*Receiver, error) {
	origin, err := url.Parse(cfg.Origin)
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("オリジンが不正です: %q", cfg.Origin)
	}
	return &Receiver{
		origin:  origin,
		icon:    cfg.Icon,
		display: display,
		windows: windows,
		marker:  marker,
		log:     log,
	}, nil
}

// OnPush は受信したペイロードを解析して通知を表示する。
// 解析できないペイロードでも、ブラウザの仕様に合わせて既定のタイトルで表示する。
func (r *Receiver) OnPush(ctx context.Context, data []byte) error {
	p, err := payload.Decode(data)
	if err != nil {
		r.log.WithError(err).Warn("ペイロードを解析できないため既定の通知を表示します")
		p = &payload.Push{Title: DefaultTitle}
	}

	if err := r.display.Show(ctx, p.Title, Options{
		Body: p.Body,
		Icon: r.icon,
		Tag:  p.NotificationID,
		Data: p.Metadata(),
	}); err != nil {
		return fmt.Errorf("通知の表示に失敗: %w", err)
	}
	return nil
}

// OnClick は通知クリックを処理する。
// 既読APIの失敗は利用者に見せず、遷移を優先する。
func (r *Receiver) OnClick(ctx context.Context, ev ClickEvent) error {
	if ev.Notification != nil {
		ev.Notification.Close()
	}

	if id := ev.Data.NotificationID; id != "" {
		if err := r.marker.MarkRead(ctx, id); err != nil {
			r.log.WithError(err).WithField("notification_id", id).Debug("既読化に失敗しました")
		}
	}

	target := r.resolve(ev.Data.URL)
	windows, err := r.windows.List(ctx)
	if err != nil {
		r.log.WithError(err).Debug("ウィンドウ一覧の取得に失敗したため新しく開きます")
		windows = nil
	}
	for _, w := range windows {
		if w.URL() == target {
			return w.Focus(ctx)
		}
	}
	return r.windows.Open(ctx, target)
}

// resolve は遷移先をオリジン基準の絶対URLにする。
func (r *Receiver) resolve(raw string) string {
	if raw == "" {
		raw = DefaultURL
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return r.origin.ResolveReference(&url.URL{Path: DefaultURL}).String()
	}
	return r.origin.ResolveReference(ref).String()
}
