package sink

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/rushteam/revrank/core"
)

const createRankedReviews = `CREATE TABLE IF NOT EXISTS ranked_reviews (
	run_id    TEXT    NOT NULL,
	group_key TEXT    NOT NULL,
	item_id   INTEGER NOT NULL,
	text      TEXT    NOT NULL,
	score     REAL    NOT NULL,
	rank      INTEGER NOT NULL,
	PRIMARY KEY (run_id, group_key, item_id)
)`

// SQLiteSink 把每次运行的结果归档到 SQLite 表 ranked_reviews，rank 为组内名次（从 1 开始）。
// 一次运行在单个事务内写入。
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink 打开（或创建）数据库并建表。
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleSink, core.ErrorCodeInvalidConfig, "sink: open sqlite "+path, err)
	}
	if _, err := db.Exec(createRankedReviews); err != nil {
		_ = db.Close()
		return nil, core.WrapDomainError(core.ModuleSink, core.ErrorCodeInvalidConfig, "sink: init sqlite "+path, err)
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Name() string { return "sqlite" }

func (s *SQLiteSink) Write(ctx context.Context, runID string, results []core.RankedResult) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("sink: begin", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO ranked_reviews (run_id, group_key, item_id, text, score, rank) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return wrap("sink: prepare", err)
	}
	defer stmt.Close()

	rank, group := 0, ""
	for i, r := range results {
		if i == 0 || r.GroupKey != group {
			rank, group = 0, r.GroupKey
		}
		rank++
		if _, err = stmt.ExecContext(ctx, runID, r.GroupKey, r.ID, r.Text, r.Score, rank); err != nil {
			return wrap("sink: insert", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return wrap("sink: commit", err)
	}
	return nil
}

// DB 返回底层连接，用于查询归档数据。
func (s *SQLiteSink) DB() *sql.DB { return s.db }

func (s *SQLiteSink) Close() error { return s.db.Close() }
