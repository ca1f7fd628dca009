// Package receiver は通知の受信側（Service Worker）の振る舞いを提供する。
//
// ブラウザ向けにはsw.jsを配信し、同じ状態遷移をGoのReceiverとしても実装する。
// Receiverは通知表示・ウィンドウ操作・既読APIをインターフェースとして受け取るため、
// ヘッドレスクライアントやテストから同じ手順で動かせる。
//
// 状態遷移:
//   - OnPush: ペイロードを解析し、タイトル・本文とメタデータ {url, notification_id} 付きで表示する
//   - OnClick: 通知を閉じ、notification_idがあれば既読APIを1回だけ呼ぶ（失敗は無視）。
//     遷移先URLと完全一致するウィンドウがあれば前面に出し、なければ新しく開く
package receiver
