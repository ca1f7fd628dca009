package application

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound は応募が存在しないことを表す。
var ErrNotFound = errors.New("応募が見つかりません")

// Application はapplicationsテーブルの行。
type Application struct {
	ID          int64     `db:"id" json:"id"`
	StudentID   int64     `db:"student_id" json:"student_id"`
	Scholarship string    `db:"scholarship" json:"scholarship"`
	Status      Status    `db:"status" json:"status"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Store は応募の読み書きを行う。
type Store struct {
	db *sqlx.DB
}

// NewStore はStoreを生成する。
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Create は応募を登録し、採番したIDを返す。
func (s *Store) Create(ctx context.Context, studentID int64, scholarship string, now time.Time) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id, s.db.Rebind(`INSERT INTO applications (student_id, scholarship, status, updated_at)
VALUES (?, ?, ?, ?) RETURNING id`), studentID, scholarship, string(StatusSubmitted), now)
	if err != nil {
		return 0, fmt.Errorf("応募の登録に失敗: %w", err)
	}
	return id, nil
}

// Get は応募を1件取得する。
func (s *Store) Get(ctx context.Context, id int64) (Application, error) {
	var a Application
	err := s.db.GetContext(ctx, &a, s.db.Rebind(`SELECT id, student_id, scholarship, status, updated_at
FROM applications WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrNotFound
	}
	return a, err
}

// ListByStudent は学生の応募を新しい順に返す。
func (s *Store) ListByStudent(ctx context.Context, studentID int64) ([]Application, error) {
	apps := []Application{}
	err := s.db.SelectContext(ctx, &apps, s.db.Rebind(`SELECT id, student_id, scholarship, status, updated_at
FROM applications WHERE student_id = ? ORDER BY updated_at DESC, id DESC`), studentID)
	return apps, err
}

// UpdateStatus はステータスを更新し、更新前後の応募を返す。
// 読み取りと更新は同じトランザクションで行う。
func (s *Store) UpdateStatus(ctx context.Context, id int64, status Status, now time.Time) (before, after Application, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return before, after, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, &before, tx.Rebind(`SELECT id, student_id, scholarship, status, updated_at
FROM applications WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return before, after, ErrNotFound
	}
	if err != nil {
		return before, after, fmt.Errorf("応募の取得に失敗: %w", err)
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE applications SET status = ?, updated_at = ? WHERE id = ?`),
		string(status), now, id); err != nil {
		return before, after, fmt.Errorf("ステータスの更新に失敗: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return before, after, fmt.Errorf("コミットに失敗: %w", err)
	}

	after = before
	after.Status = status
	after.UpdatedAt = now
	return before, after, nil
}
