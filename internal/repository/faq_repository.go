package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shalom-dev/support-agent/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

type FaqRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewFaqRepository(db *pgxpool.Pool, logger *zap.Logger) *FaqRepository {
	return &FaqRepository{
		db:     db,
		logger: logger,
	}
}

func (r *FaqRepository) Create(ctx context.Context, faq *models.Faq) error {
	query := squirrel.Insert("faqs").
		Columns("question", "answer", "category", "embedding", "created_at", "updated_at").
		Values(faq.Question, faq.Answer, nullableCategory(faq.Category), faq.Embedding, faq.CreatedAt, faq.UpdatedAt).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	return r.db.QueryRow(ctx, sql, args...).Scan(&faq.ID)
}

func (r *FaqRepository) GetByID(ctx context.Context, id int64) (*models.Faq, error) {
	query := squirrel.Select("id", "question", "answer", "COALESCE(category, '')", "created_at", "updated_at").
		From("faqs").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var faq models.Faq
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&faq.ID, &faq.Question, &faq.Answer, &faq.Category, &faq.CreatedAt, &faq.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &faq, nil
}

// Update rewrites the entry's text fields and embedding in one
// statement, so a concurrent search never observes new text ranked by
// the old vector.
func (r *FaqRepository) Update(ctx context.Context, faq *models.Faq) error {
	query := squirrel.Update("faqs").
		Set("question", faq.Question).
		Set("answer", faq.Answer).
		Set("category", nullableCategory(faq.Category)).
		Set("embedding", faq.Embedding).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": faq.ID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *FaqRepository) Delete(ctx context.Context, id int64) error {
	query := squirrel.Delete("faqs").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *FaqRepository) List(ctx context.Context) ([]*models.Faq, error) {
	query := squirrel.Select("id", "question", "answer", "COALESCE(category, '')", "created_at", "updated_at").
		From("faqs").
		OrderBy("id ASC").
		PlaceholderFormat(squirrel.Dollar)

	return r.listFaqs(ctx, query)
}

func (r *FaqRepository) ListByCategory(ctx context.Context, category string) ([]*models.Faq, error) {
	query := squirrel.Select("id", "question", "answer", "COALESCE(category, '')", "created_at", "updated_at").
		From("faqs").
		Where(squirrel.Eq{"category": category}).
		OrderBy("id ASC").
		PlaceholderFormat(squirrel.Dollar)

	return r.listFaqs(ctx, query)
}

// SearchNearest ranks embedded entries by cosine distance to the query
// vector, nearest first. Rows without an embedding are not indexed yet
// and never appear in results.
func (r *FaqRepository) SearchNearest(ctx context.Context, embedding pgvector.Vector, topK int) ([]*models.FaqMatch, error) {
	query := squirrel.Select("id", "question", "answer", "COALESCE(category, '')", "created_at", "updated_at").
		Column(squirrel.Alias(squirrel.Expr("embedding <=> ?", embedding), "distance")).
		From("faqs").
		Where("embedding IS NOT NULL").
		OrderBy("distance ASC").
		Limit(uint64(topK)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*models.FaqMatch
	for rows.Next() {
		var m models.FaqMatch
		if err := rows.Scan(
			&m.ID, &m.Question, &m.Answer, &m.Category, &m.CreatedAt, &m.UpdatedAt, &m.Distance,
		); err != nil {
			return nil, err
		}
		matches = append(matches, &m)
	}

	return matches, rows.Err()
}

func (r *FaqRepository) listFaqs(ctx context.Context, query squirrel.SelectBuilder) ([]*models.Faq, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var faqs []*models.Faq
	for rows.Next() {
		var faq models.Faq
		if err := rows.Scan(
			&faq.ID, &faq.Question, &faq.Answer, &faq.Category, &faq.CreatedAt, &faq.UpdatedAt,
		); err != nil {
			return nil, err
		}
		faqs = append(faqs, &faq)
	}

	return faqs, rows.Err()
}

// nullableCategory maps the empty string to NULL so "no category" is
// not a distinct queryable value.
func nullableCategory(category string) any {
	if category == "" {
		return nil
	}
	return category
}
