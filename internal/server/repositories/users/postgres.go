// Package users provides the PostgreSQL-backed users repository.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/activationgate/internal/common"
	"github.com/dmitrijs2005/activationgate/internal/dbx"
	"github.com/dmitrijs2005/activationgate/internal/server/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts user under a fresh UUID. A taken username yields
// common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (id, username, email, password_hash, is_admin)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at
		 `

	id := uuid.NewString()
	err := r.db.QueryRowContext(ctx, query,
		id, user.UserName, user.Email, user.PasswordHash, user.IsAdmin).Scan(&user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.ID = id
	return user, nil
}

func (r *PostgresRepository) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	query :=
		`SELECT id, username, email, password_hash, is_admin, created_at FROM users
		 WHERE username = $1
		 `

	return r.getOne(ctx, query, userName)
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	query :=
		`SELECT id, username, email, password_hash, is_admin, created_at FROM users
		 WHERE id = $1
		 `

	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.UserName, &user.Email, &user.PasswordHash, &user.IsAdmin, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) ListIDs(ctx context.Context, after string, limit int) ([]string, error) {
	var (
		rows *sql.Rows
		err  error
	)

	if after == "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT id FROM users ORDER BY id LIMIT $1`, limit)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT id FROM users WHERE id > $1 ORDER BY id LIMIT $2`, after, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0, limit)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return ids, nil
}

// ListWithMeta left-joins users with one user_meta key.
func (r *PostgresRepository) ListWithMeta(ctx context.Context, opts models.UserListOptions) ([]models.UserWithMeta, error) {
	dir := "ASC"
	if opts.Desc {
		dir = "DESC"
	}

	args := []any{opts.MetaKey}
	order := "u.username " + dir
	if opts.SortBy == models.SortByMetaState {
		args = append(args, opts.DoneValue)
		order = "CASE WHEN m.meta_value IS NULL OR m.meta_value = '' OR m.meta_value = $2 THEN 1 ELSE 0 END " +
			dir + ", u.username ASC"
	}
	args = append(args, opts.Limit, opts.Offset)

	query := fmt.Sprintf(
		`SELECT u.id, u.username, u.email, u.password_hash, u.is_admin, u.created_at, m.meta_value
		 FROM users u
		 LEFT JOIN user_meta m ON m.user_id = u.id AND m.meta_key = $1
		 ORDER BY %s
		 LIMIT $%d OFFSET $%d
		 `, order, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []models.UserWithMeta
	for rows.Next() {
		var (
			item  models.UserWithMeta
			value sql.NullString
		)
		u := &item.User
		if err := rows.Scan(&u.ID, &u.UserName, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &value); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		item.Value, item.HasValue = value.String, value.Valid
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return out, nil
}
