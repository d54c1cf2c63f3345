// Package usermeta provides the PostgreSQL-backed user_meta repository.
package usermeta

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/activationgate/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID, key string) (string, bool, error) {
	query :=
		`SELECT meta_value FROM user_meta
		 WHERE user_id = $1 AND meta_key = $2
		 `

	var value string
	err := r.db.QueryRowContext(ctx, query, userID, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("db error: %w", err)
	}

	return value, true, nil
}

func (r *PostgresRepository) Set(ctx context.Context, userID, key, value string) error {
	query :=
		`INSERT INTO user_meta (user_id, meta_key, meta_value)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value
		 `

	if _, err := r.db.ExecContext(ctx, query, userID, key, value); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Add(ctx context.Context, userID, key, value string) (bool, error) {
	query :=
		`INSERT INTO user_meta (user_id, meta_key, meta_value)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, meta_key) DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query, userID, key, value)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, key string) (bool, error) {
	query :=
		`DELETE FROM user_meta
		 WHERE user_id = $1 AND meta_key = $2
		 `

	res, err := r.db.ExecContext(ctx, query, userID, key)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
