// Package db は通知サービスのテーブルに対するクエリを提供する。
package db

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// DBTX はクエリの実行先。*sqlx.DBと*sqlx.Txが満たす。
type DBTX interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// Queries は通知と購読のクエリを実行する。
type Queries struct {
	db DBTX
}

// New はQueriesを生成する。
func New(db DBTX) *Queries {
	return &Queries{db: db}
}
