// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// JWT認証（Authorizationヘッダーまたはクッキー）、ロールによる認可、
// パニックリカバリ、CORS設定を含む。
package middleware
