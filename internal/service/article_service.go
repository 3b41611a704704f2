package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"pyra-workspace/internal/core/domain"
	"pyra-workspace/internal/core/ports"
	"pyra-workspace/pkg/apperror"

	"github.com/google/uuid"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type articleService struct {
	articleRepo ports.ArticleRepository
	webhookSvc  ports.WebhookService
	activitySvc ports.ActivityService
}

// NewArticleService creates a new knowledge-base service.
func NewArticleService(
	articleRepo ports.ArticleRepository,
	webhookSvc ports.WebhookService,
	activitySvc ports.ActivityService,
) ports.ArticleService {
	return &articleService{
		articleRepo: articleRepo,
		webhookSvc:  webhookSvc,
		activitySvc: activitySvc,
	}
}

func (s *articleService) Create(ctx context.Context, article *domain.Article, actorID *uuid.UUID) error {
	article.Slug = strings.ToLower(strings.TrimSpace(article.Slug))
	if article.TitleAr == "" || article.BodyAr == "" {
		return apperror.Validation("arabic title and body are required")
	}
	if !slugPattern.MatchString(article.Slug) {
		return apperror.Validation("slug must be lowercase letters, digits and hyphens")
	}

	existing, err := s.articleRepo.GetBySlug(ctx, article.Slug)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("check slug: %w", err))
	}
	if existing != nil {
		return apperror.ErrSlugExists()
	}

	now := time.Now().UTC()
	article.ID = uuid.New()
	article.Published = false
	article.AuthorID = actorID
	article.CreatedAt = now
	article.UpdatedAt = now

	if err := s.articleRepo.Create(ctx, article); err != nil {
		return apperror.InternalError(fmt.Errorf("create article: %w", err))
	}

	s.activitySvc.Record(ctx, actorID, "article.created", "article", &article.ID, article.Slug)
	return nil
}

func (s *articleService) Update(ctx context.Context, article *domain.Article, actorID *uuid.UUID) error {
	existing, err := s.Get(ctx, article.ID)
	if err != nil {
		return err
	}

	// The slug is stable once assigned; links to published articles keep
	// working.
	existing.TitleAr = article.TitleAr
	existing.TitleEn = article.TitleEn
	existing.BodyAr = article.BodyAr
	existing.BodyEn = article.BodyEn
	existing.Category = article.Category
	existing.UpdatedAt = time.Now().UTC()

	if err := s.articleRepo.Update(ctx, existing); err != nil {
		return apperror.InternalError(fmt.Errorf("update article: %w", err))
	}
	*article = *existing

	s.activitySvc.Record(ctx, actorID, "article.updated", "article", &article.ID, article.Slug)
	return nil
}

func (s *articleService) Publish(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) (*domain.Article, error) {
	article, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if article.Published {
		return article, nil
	}

	article.Published = true
	article.UpdatedAt = time.Now().UTC()

	if err := s.articleRepo.Update(ctx, article); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("publish article: %w", err))
	}

	s.webhookSvc.Dispatch(ctx, domain.EventArticlePublished, article)
	s.activitySvc.Record(ctx, actorID, domain.EventArticlePublished, "article", &article.ID, article.Slug)
	return article, nil
}

func (s *articleService) Get(ctx context.Context, id uuid.UUID) (*domain.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get article: %w", err))
	}
	if article == nil {
		return nil, apperror.ErrNotFound("Article")
	}
	return article, nil
}

func (s *articleService) GetBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	article, err := s.articleRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get article by slug: %w", err))
	}
	if article == nil {
		return nil, apperror.ErrNotFound("Article")
	}
	return article, nil
}

func (s *articleService) List(ctx context.Context, publishedOnly bool, category string) ([]domain.Article, error) {
	articles, err := s.articleRepo.List(ctx, publishedOnly, category)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list articles: %w", err))
	}
	return articles, nil
}

func (s *articleService) Delete(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error {
	article, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.articleRepo.Delete(ctx, id); err != nil {
		return apperror.InternalError(fmt.Errorf("delete article: %w", err))
	}

	s.activitySvc.Record(ctx, actorID, "article.deleted", "article", &id, article.Slug)
	return nil
}
