package handler

import (
	"pyra-workspace/internal/adapter/http/dto"
	"pyra-workspace/internal/adapter/http/middleware"
	"pyra-workspace/internal/core/domain"
	"pyra-workspace/internal/core/ports"
	"pyra-workspace/pkg/apperror"
	"pyra-workspace/pkg/response"

	"github.com/gin-gonic/gin"
)

// ArticleHandler handles knowledge-base endpoints.
type ArticleHandler struct {
	articleSvc ports.ArticleService
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(articleSvc ports.ArticleService) *ArticleHandler {
	return &ArticleHandler{articleSvc: articleSvc}
}

// articleView is the localized read model served to portal users.
type articleView struct {
	ID        string `json:"id"`
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Body      string `json:"body,omitempty"`
	Category  string `json:"category"`
	Published bool   `json:"published"`
}

func localized(a *domain.Article, locale string, withBody bool) articleView {
	v := articleView{
		ID:        a.ID.String(),
		Slug:      a.Slug,
		Title:     a.Title(locale),
		Category:  a.Category,
		Published: a.Published,
	}
	if withBody {
		v.Body = a.Body(locale)
	}
	return v
}

// List handles GET /api/v1/kb. Non-admin callers only see published
// articles, localized by the request locale.
func (h *ArticleHandler) List(c *gin.Context) {
	publishedOnly := !isAdmin(c)
	articles, err := h.articleSvc.List(c.Request.Context(), publishedOnly, c.Query("category"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if isAdmin(c) {
		response.OK(c, articles)
		return
	}

	locale := c.GetString(middleware.CtxLocale)
	views := make([]articleView, len(articles))
	for i := range articles {
		views[i] = localized(&articles[i], locale, false)
	}
	response.OK(c, views)
}

// GetBySlug handles GET /api/v1/kb/:slug.
func (h *ArticleHandler) GetBySlug(c *gin.Context) {
	article, err := h.articleSvc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if isAdmin(c) {
		response.OK(c, article)
		return
	}
	if !article.Published {
		response.Error(c, apperror.ErrNotFound("Article"))
		return
	}
	response.OK(c, localized(article, c.GetString(middleware.CtxLocale), true))
}

// Create handles POST /api/v1/admin/kb.
func (h *ArticleHandler) Create(c *gin.Context) {
	var req dto.ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	article := &domain.Article{
		Slug:     req.Slug,
		TitleAr:  req.TitleAr,
		TitleEn:  req.TitleEn,
		BodyAr:   req.BodyAr,
		BodyEn:   req.BodyEn,
		Category: req.Category,
	}
	if err := h.articleSvc.Create(c.Request.Context(), article, actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, article)
}

// Update handles PUT /api/v1/admin/kb/:id.
func (h *ArticleHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.Validation("invalid article id"))
		return
	}

	var req dto.ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	article := &domain.Article{
		ID:       id,
		TitleAr:  req.TitleAr,
		TitleEn:  req.TitleEn,
		BodyAr:   req.BodyAr,
		BodyEn:   req.BodyEn,
		Category: req.Category,
	}
	if err := h.articleSvc.Update(c.Request.Context(), article, actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, article)
}

// Publish handles POST /api/v1/admin/kb/:id/publish.
func (h *ArticleHandler) Publish(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.Validation("invalid article id"))
		return
	}

	article, err := h.articleSvc.Publish(c.Request.Context(), id, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, article)
}

// Delete handles DELETE /api/v1/admin/kb/:id.
func (h *ArticleHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		response.Error(c, apperror.Validation("invalid article id"))
		return
	}

	if err := h.articleSvc.Delete(c.Request.Context(), id, actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
