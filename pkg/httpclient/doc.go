// Package httpclient はJSON APIを呼び出すHTTPクライアントを提供する。
//
// Service Workerと同じ手順で既読APIを呼ぶReceiverや、内部の通知作成APIを
// 呼び出す運用ツールが使用する。認証トークンはコンテキスト経由で伝播する。
package httpclient
