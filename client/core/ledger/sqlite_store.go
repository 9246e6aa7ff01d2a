package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/weisyn/wallet/pkg/interfaces/infrastructure/log"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS transactions (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	timestamp INTEGER NOT NULL,
	sender TEXT NOT NULL,
	recipient TEXT NOT NULL,
	amount TEXT NOT NULL,
	status TEXT NOT NULL
);`

// SQLiteStore 基于SQLite的账本，seq 列保持写入顺序
type SQLiteStore struct {
	db     *sql.DB
	logger log.Logger
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLiteStore 打开（必要时创建）SQLite账本文件
func OpenSQLiteStore(ctx context.Context, path string, logger log.Logger) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// 单连接，保证 :memory: 库在同一连接上，也避免写锁竞争
	db.SetMaxOpenConns(1)

	s, err := NewSQLiteStore(ctx, db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore 使用已打开的数据库创建账本并建表
func NewSQLiteStore(ctx context.Context, db *sql.DB, logger log.Logger) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db, logger: logger}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Append 追加一条记录，交易ID冲突时返回 ErrDuplicateID
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}

	query := `
		INSERT INTO transactions (id, timestamp, sender, recipient, amount, status)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.Timestamp, rec.Sender, rec.Recipient, rec.Amount, string(rec.Status),
	)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
	}
	return nil
}

// UpdateStatus 只更新仍处于 pending 的记录
func (s *SQLiteStore) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return ErrInvalidRecord
	}

	query := `UPDATE transactions SET status = ? WHERE id = ? AND status = ?`
	_, err := s.db.ExecContext(ctx, query, string(status), id, string(StatusPending))
	return err
}

// ReadAll 按 seq 顺序读取全部记录
func (s *SQLiteStore) ReadAll(ctx context.Context) []Record {
	records, err := s.list(ctx)
	if err != nil {
		s.logger.Warnf("读取账本失败，按空账本处理: %v", err)
		return []Record{}
	}
	return records
}

func (s *SQLiteStore) list(ctx context.Context) ([]Record, error) {
	query := `SELECT id, timestamp, sender, recipient, amount, status FROM transactions ORDER BY seq`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make([]Record, 0)
	for rows.Next() {
		var rec Record
		var status string
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.Sender, &rec.Recipient, &rec.Amount, &status); err != nil {
			return nil, err
		}
		rec.Status = Status(status)
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
