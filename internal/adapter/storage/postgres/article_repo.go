package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pyra-workspace/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ArticleRepo implements ports.ArticleRepository.
type ArticleRepo struct {
	pool Pool
}

// NewArticleRepo creates a new ArticleRepo.
func NewArticleRepo(pool Pool) *ArticleRepo {
	return &ArticleRepo{pool: pool}
}

const articleColumns = `id, slug, title_ar, title_en, body_ar, body_en, category, published, author_id, created_at, updated_at`

// Create inserts a new article.
func (r *ArticleRepo) Create(ctx context.Context, a *domain.Article) error {
	query := `INSERT INTO articles (id, slug, title_ar, title_en, body_ar, body_en, category, published, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.Slug, a.TitleAr, a.TitleEn, a.BodyAr, a.BodyEn,
		a.Category, a.Published, a.AuthorID, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

// GetByID fetches an article by its UUID.
func (r *ArticleRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Article, error) {
	return r.getBy(ctx, "id = $1", id)
}

// GetBySlug fetches an article by its URL slug.
func (r *ArticleRepo) GetBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	return r.getBy(ctx, "slug = $1", slug)
}

func (r *ArticleRepo) getBy(ctx context.Context, where string, arg any) (*domain.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE ` + where

	a := &domain.Article{}
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&a.ID, &a.Slug, &a.TitleAr, &a.TitleEn, &a.BodyAr, &a.BodyEn,
		&a.Category, &a.Published, &a.AuthorID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	return a, nil
}

// List returns articles, optionally restricted to published ones and a
// single category.
func (r *ArticleRepo) List(ctx context.Context, publishedOnly bool, category string) ([]domain.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles`
	var conditions []string
	var args []any
	argIdx := 1

	if publishedOnly {
		conditions = append(conditions, "published = true")
	}
	if category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, category)
		argIdx++
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		var a domain.Article
		if err := rows.Scan(
			&a.ID, &a.Slug, &a.TitleAr, &a.TitleEn, &a.BodyAr, &a.BodyEn,
			&a.Category, &a.Published, &a.AuthorID, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// Update updates an article.
func (r *ArticleRepo) Update(ctx context.Context, a *domain.Article) error {
	a.UpdatedAt = time.Now().UTC()
	query := `UPDATE articles
		SET slug=$1, title_ar=$2, title_en=$3, body_ar=$4, body_en=$5, category=$6, published=$7, updated_at=$8
		WHERE id=$9`

	_, err := r.pool.Exec(ctx, query,
		a.Slug, a.TitleAr, a.TitleEn, a.BodyAr, a.BodyEn,
		a.Category, a.Published, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	return nil
}

// Delete removes an article.
func (r *ArticleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}
