// Package push はWeb Push（RFC 8030/8291/8292）による通知配信を提供する。
//
// 配信はSenderインターフェースの背後に隠し、実装はwebpush-goでペイロードを
// 暗号化してVAPID署名付きでプッシュサービスへ送信する。
package push
