package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Leopold1975/recipebox/internal/pkg/config"
	"github.com/Leopold1975/recipebox/internal/pkg/pgtools"
	"github.com/Leopold1975/recipebox/internal/recipebox/domain/models"
	"github.com/Leopold1975/recipebox/internal/recipebox/repository/userrepo"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolationCode = "23505"

var userColumns = []string{"id", "email", "password_hash", "name", "is_active", "is_staff", "created_at", "updated_at"}

type UsersPostgresRepo struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, cfg config.PostgresDB) (UsersPostgresRepo, error) {
	db, err := pgtools.Connect(ctx, pgtools.ConnString(cfg))
	if err != nil {
		return UsersPostgresRepo{}, fmt.Errorf("connect to db error: %w", err)
	}

	if err := pgtools.ApplyMigration(cfg); err != nil {
		return UsersPostgresRepo{}, fmt.Errorf("apply migration error: %w", err)
	}

	return UsersPostgresRepo{
		db: db,
	}, nil
}

func (ur UsersPostgresRepo) CreateUser(ctx context.Context, u models.User) (_ models.User, err error) {
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "create user")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Insert("users").
		Columns("email", "password_hash", "name", "is_active", "is_staff", "created_at", "updated_at").
		Values(u.Email, u.PasswordHash, u.Name, u.IsActive, u.IsStaff, u.CreatedAt, u.UpdatedAt).
		Suffix("RETURNING id").ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("to sql error: %w", err)
	}

	if err = tx.QueryRow(ctx, query, args...).Scan(&u.ID); err != nil {
		target := new(pgconn.PgError)
		if errors.As(err, &target) && target.Code == uniqueViolationCode {
			err = userrepo.ErrAlreadyExists

			return models.User{}, err
		}

		return models.User{}, fmt.Errorf("scan error: %w", err)
	}

	return u, nil
}

func (ur UsersPostgresRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"email": email}).ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("to sql error: %w", err)
	}

	u, err := scanUser(ur.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, userrepo.ErrNotFound
		}

		return models.User{}, fmt.Errorf("scan error: %w", err)
	}

	return u, nil
}

func (ur UsersPostgresRepo) UpdateUser(ctx context.Context, u models.User) (_ models.User, err error) {
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "update user")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Update("users").
		Set("email", u.Email).
		Set("password_hash", u.PasswordHash).
		Set("name", u.Name).
		Set("is_active", u.IsActive).
		Set("is_staff", u.IsStaff).
		Set("updated_at", u.UpdatedAt).
		Where(squirrel.Eq{"id": u.ID}).ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("to sql error: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		target := new(pgconn.PgError)
		if errors.As(err, &target) && target.Code == uniqueViolationCode {
			err = userrepo.ErrAlreadyExists

			return models.User{}, err
		}

		return models.User{}, fmt.Errorf("exec error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		err = userrepo.ErrNotFound

		return models.User{}, err
	}

	return u, nil
}

// SaveToken replaces the user's active token, if any.
// A user holds at most one valid token at a time.
func (ur UsersPostgresRepo) SaveToken(ctx context.Context, userID int64, token string) (err error) {
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "save token")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Delete("auth_tokens").
		Where(squirrel.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	query, args, err = psql.Insert("auth_tokens").
		Columns("user_id", "token", "created_at").
		Values(userID, token, time.Now()).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err = tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	return nil
}

// GetUserByToken resolves a presented token to its user by exact match.
func (ur UsersPostgresRepo) GetUserByToken(ctx context.Context, token string) (models.User, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	cols := make([]string, 0, len(userColumns))
	for _, c := range userColumns {
		cols = append(cols, "u."+c)
	}

	query, args, err := psql.Select(cols...).
		From("auth_tokens t").
		Join("users u ON u.id = t.user_id").
		Where(squirrel.Eq{"t.token": token}).ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("to sql error: %w", err)
	}

	u, err := scanUser(ur.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, userrepo.ErrTokenNotFound
		}

		return models.User{}, fmt.Errorf("scan error: %w", err)
	}

	return u, nil
}

func (ur UsersPostgresRepo) Shutdown(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		ur.db.Close()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("context error: %w", ctx.Err())
	case <-done:
		return nil
	}
}

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User

	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name,
		&u.IsActive, &u.IsStaff, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return models.User{}, err //nolint:wrapcheck
	}

	return u, nil
}
