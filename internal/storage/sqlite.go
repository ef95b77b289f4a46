package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"breadbot/internal/domain"
)

// SQLiteDB persists the ledger in a single accounts table. Save
// replaces the whole table inside one transaction, which keeps the
// full-snapshot semantics of the store contract.
type SQLiteDB struct {
	db *sql.DB
}

func migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			external_id   TEXT PRIMARY KEY,
			nickname      TEXT NOT NULL UNIQUE,
			balance       INTEGER NOT NULL DEFAULT 0,
			last_claim_at INTEGER NOT NULL DEFAULT 0,
			last_rob_at   INTEGER NOT NULL DEFAULT 0,
			scope         TEXT NOT NULL,
			created_at    INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_scope ON accounts(scope)`,
	}
}

func OpenSQLite(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; the dispatcher serializes anyway.
	db.SetMaxOpenConns(1)
	for _, stmt := range migrations() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return &SQLiteDB{db: db}, nil
}

func (s *SQLiteDB) Close() error { return s.db.Close() }

func (s *SQLiteDB) Load(ctx context.Context) (domain.Ledger, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT external_id, nickname, balance, last_claim_at, last_rob_at, scope, created_at
		FROM accounts
	`)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	defer rows.Close()

	l := domain.Ledger{}
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ExternalID, &a.Nickname, &a.Balance, &a.LastClaimAt, &a.LastRobAt, &a.Scope, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		l[a.ExternalID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	return l, nil
}

func (s *SQLiteDB) Save(ctx context.Context, l domain.Ledger) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		return fmt.Errorf("clear accounts: %w", err)
	}
	for _, a := range l {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (external_id, nickname, balance, last_claim_at, last_rob_at, scope, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, a.ExternalID, a.Nickname, a.Balance, a.LastClaimAt, a.LastRobAt, a.Scope, a.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert account %s: %w", a.ExternalID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}
