package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-dashboard-api/internal/dto"
	"github.com/noah-isme/intern-dashboard-api/internal/middleware"
	"github.com/noah-isme/intern-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/intern-dashboard-api/pkg/errors"
)

// actorFromContext returns the caller id and role, or empty values when auth is disabled.
func actorFromContext(c *gin.Context) (string, models.UserRole) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		return "", ""
	}
	return claims.UserID, claims.Role
}

func bindFilterQuery(c *gin.Context) (dto.FilterQuery, error) {
	var q dto.FilterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return dto.FilterQuery{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid filter parameters")
	}
	return q, nil
}

func metaOrEmpty(c *gin.Context) map[string]interface{} {
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	return meta
}
