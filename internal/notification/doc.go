// Package notification は通知サービスの内部実装を提供する。
//
// 審査ステータスの変更などで生成された通知を必ず先に保存し、その後で利用者の
// すべての購読（端末）へWeb Pushで配信する。配信は購読ごとに1回だけ試み、
// 失敗しても保存済みの通知は残る。通知の一覧取得や既読管理、購読の登録も行う。
package notification
