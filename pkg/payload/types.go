package payload

// Push はWeb Pushで送信するペイロード本体。
type Push struct {
	// Title は通知のタイトル。
	Title string `json:"title"`
	// Body は通知の本文。
	Body string `json:"body"`
	// URL は通知クリック時に開くページ。省略可能。
	URL string `json:"url,omitempty"`
	// NotificationID は保存済み通知レコードの識別子。
	NotificationID string `json:"notification_id,omitempty"`
}

// Metadata は表示した通知に埋め込むデータ。
// クリック時の既読処理と遷移先の決定に使用する。
type Metadata struct {
	// URL は遷移先のページ。
	URL string `json:"url,omitempty"`
	// NotificationID は既読にする通知の識別子。
	NotificationID string `json:"notification_id,omitempty"`
}

// Metadata はペイロードから表示用メタデータを取り出す。
func (p Push) Metadata() Metadata {
	return Metadata{
		URL:            p.URL,
		NotificationID: p.NotificationID,
	}
}
