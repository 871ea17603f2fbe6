package repository

import (
	"context"
	"errors"

	"github.com/shalom-dev/support-agent/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var userColumns = []string{
	"user_id", "name", "email", "password_hash",
	"account_status", "subscription_plan", "created_at", "updated_at",
}

type UserRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewUserRepository(db *pgxpool.Pool, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := squirrel.Insert("users").
		Columns("name", "email", "password_hash", "account_status", "subscription_plan", "created_at", "updated_at").
		Values(user.Name, user.Email, user.PasswordHash, user.AccountStatus, user.SubscriptionPlan, user.CreatedAt, user.UpdatedAt).
		Suffix("RETURNING user_id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx, sql, args...).Scan(&user.UserID)
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	query := squirrel.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	return r.getOne(ctx, query)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := squirrel.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"email": email}).
		PlaceholderFormat(squirrel.Dollar)

	return r.getOne(ctx, query)
}

func (r *UserRepository) getOne(ctx context.Context, query squirrel.SelectBuilder) (*models.User, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var user models.User
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&user.UserID, &user.Name, &user.Email, &user.PasswordHash,
		&user.AccountStatus, &user.SubscriptionPlan, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}
