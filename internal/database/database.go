// Package database はデータベース接続の確立とスキーマの適用を行う。
//
// 既定はSQLite（modernc.org/sqlite）で、設定によりPostgreSQL（lib/pq）に切り替えられる。
// プロセス全体で1つの接続プールを共有する。
package database

import (
	"embed"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/nao1215/beasiswa/internal/config"
	"github.com/nao1215/beasiswa/pkg/migration"
)

//go:embed migrations
var migrations embed.FS

// pingAttempts は起動時にデータベースの準備を待つ最大試行回数。
const pingAttempts = 30

// Open は設定に従ってデータベースに接続し、スキーマを適用する。
func Open(cfg config.DBConfig, log logrus.FieldLogger) (*sqlx.DB, error) {
	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	if cfg.Driver == config.DriverSQLite {
		// SQLiteは書き込みが直列化されるため接続を1本に絞り、ロック競合を避ける
		db.SetMaxOpenConns(1)
	}

	if err := ping(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := Migrate(db, log); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate は接続先のドライバに対応するマイグレーションを適用する。
func Migrate(db *sqlx.DB, log logrus.FieldLogger) error {
	dir := "migrations/" + db.DriverName()
	if err := migration.Run(db, migrations, dir, log); err != nil {
		return fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}
	return nil
}

// ping はデータベースの準備ができるまで待つ。試行ごとに待機時間を100msずつ延ばす。
func ping(db *sqlx.DB) error {
	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	return fmt.Errorf("データベースの応答待ちがタイムアウト: %w", err)
}

// OpenMemory はテスト用にスキーマ適用済みのインメモリSQLiteを開く。
func OpenMemory(log logrus.FieldLogger) (*sqlx.DB, error) {
	return Open(config.DBConfig{Driver: config.DriverSQLite, DSN: ":memory:?_time_format=sqlite"}, log)
}
