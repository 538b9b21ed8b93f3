package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/intern-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/intern-dashboard-api/pkg/errors"
)

type stubValidator struct {
	claims *models.JWTClaims
}

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return s.claims, nil
}

func newGuardedRouter(role models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WithResponseMeta())
	guard := JWT(stubValidator{claims: &models.JWTClaims{UserID: "u1", Role: role}})
	r.PUT("/notes/:internId", guard, RequireRoles(models.RoleAdmin, models.RoleMentor), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestJWTAndRoles(t *testing.T) {
	cases := []struct {
		name   string
		role   models.UserRole
		header string
		status int
	}{
		{name: "missing header", role: models.RoleAdmin, status: http.StatusUnauthorized},
		{name: "wrong scheme", role: models.RoleAdmin, header: "Basic good", status: http.StatusUnauthorized},
		{name: "bad token", role: models.RoleAdmin, header: "Bearer bad", status: http.StatusUnauthorized},
		{name: "viewer forbidden", role: models.RoleViewer, header: "Bearer good", status: http.StatusForbidden},
		{name: "mentor allowed", role: models.RoleMentor, header: "Bearer good", status: http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newGuardedRouter(tc.role)
			req := httptest.NewRequest(http.MethodPut, "/notes/7", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestRequireRolesWithoutJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RequireRoles(models.RoleAdmin)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResponseMetaHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, ExtractMeta(c))

	SetWarnings(c, nil)
	assert.Nil(t, ExtractMeta(c))

	SetCacheHit(c, true)
	SetWarnings(c, []string{"start date should be before end date"})
	SetDatasetVersion(c, "abc")

	meta := ExtractMeta(c)
	assert.Equal(t, true, meta["cache_hit"])
	assert.Equal(t, []string{"start date should be before end date"}, meta["warnings"])
	assert.Equal(t, "abc", meta["dataset_version"])
}
