package receiver

import (
	"context"
	"net/url"

	"github.com/nao1215/beasiswa/pkg/httpclient"
)

// HTTPReadMarker は既読API（PATCH /notification/{id}/read）を呼ぶReadMarker。
type HTTPReadMarker struct {
	client *httpclient.Client
}

var _ ReadMarker = (*HTTPReadMarker)(nil)

// NewHTTPReadMarker はHTTPReadMarkerを生成する。
// clientのベースURLはAPIのルート（例: https://host/api/v1）であること。
func NewHTTPReadMarker(client *httpclient.Client) *HTTPReadMarker {
	return &HTTPReadMarker{client: client}
}

// MarkRead は通知を既読にする。リトライはしない。
func (m *HTTPReadMarker) MarkRead(ctx context.Context, notificationID string) error {
	return m.client.PatchJSON(ctx, "/notification/"+url.PathEscape(notificationID)+"/read", nil, nil)
}
