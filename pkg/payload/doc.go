// Package payload はWeb Pushで配信する通知ペイロードの型とエンコード処理を提供する。
//
// サーバー側のDispatcherがエンコードし、クライアント側のReceiver（Service Worker）が
// デコードする。両者が同じ構造を共有することで、通知クリック時に保存済みの
// 通知レコードと対応付けられる。
package payload
