package handler

import (
	"strconv"

	"pyra-workspace/internal/adapter/http/middleware"
	"pyra-workspace/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// actorID returns the authenticated user ID, or nil when the request is
// unauthenticated.
func actorID(c *gin.Context) *uuid.UUID {
	if v, exists := c.Get(middleware.CtxUserID); exists {
		if id, ok := v.(uuid.UUID); ok {
			return &id
		}
	}
	return nil
}

func isAdmin(c *gin.Context) bool {
	role, exists := c.Get(middleware.CtxUserRole)
	return exists && role == domain.RoleAdmin
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	return pages
}
