package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/intern-dashboard-api/internal/middleware"
	"github.com/noah-isme/intern-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/intern-dashboard-api/pkg/errors"
	"github.com/noah-isme/intern-dashboard-api/pkg/response"
)

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// Routes bundles the handlers mounted under the API prefix. Nil handlers are skipped,
// except exports which answer FEATURE_DISABLED.
type Routes struct {
	Auth      *AuthHandler
	Dataset   *DatasetHandler
	Interns   *InternHandler
	Dashboard *DashboardHandler
	Notes     *NoteHandler
	Exports   *ExportHandler
	Metrics   *MetricsHandler

	// Tokens enables bearer auth on note writes and export endpoints when set.
	Tokens tokenValidator
	Logger *zap.Logger
}

// Register mounts every configured route on the group.
func (r Routes) Register(api *gin.RouterGroup) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	guard := func(action, resource string) []gin.HandlerFunc {
		chain := []gin.HandlerFunc{}
		if r.Tokens != nil {
			chain = append(chain, middleware.JWT(r.Tokens), middleware.RequireRoles(models.RoleAdmin, models.RoleMentor))
		}
		return append(chain, middleware.Audit(logger, action, resource))
	}

	if r.Auth != nil {
		api.POST("/auth/login", r.Auth.Login)
		if r.Tokens != nil {
			api.GET("/auth/me", middleware.JWT(r.Tokens), r.Auth.Me)
		}
	}
	if r.Dataset != nil {
		api.GET("/dataset/options", r.Dataset.Options)
	}
	if r.Interns != nil {
		interns := api.Group("/interns")
		interns.GET("", r.Interns.List)
		interns.GET("/export.csv", r.Interns.ExportCSV)
		interns.GET("/:id", r.Interns.Detail)
	}
	if r.Dashboard != nil {
		dashboard := api.Group("/dashboard")
		dashboard.GET("/summary", r.Dashboard.Summary)
		dashboard.GET("/monthly", r.Dashboard.Monthly)
		dashboard.GET("/departments", r.Dashboard.Departments)
	}
	if r.Notes != nil {
		notes := api.Group("/notes")
		notes.GET("", r.Notes.List)
		notes.GET("/consistency", r.Notes.Consistency)
		notes.GET("/export", r.Notes.Export)
		notes.GET("/:internId", r.Notes.Get)
		notes.PUT("/:internId", append(guard("note.save", "note"), r.Notes.Put)...)
	}
	if r.Exports != nil {
		exports := api.Group("/exports")
		exports.GET("/download/:token", r.Exports.Download)
		status := []gin.HandlerFunc{}
		if r.Tokens != nil {
			status = append(status, middleware.JWT(r.Tokens))
		}
		exports.GET("/:id", append(status, r.Exports.Status)...)
		exports.POST("", append(guard("export.create", "export"), r.Exports.Create)...)
	} else {
		api.Any("/exports", featureDisabled)
		api.Any("/exports/*path", featureDisabled)
	}
	if r.Metrics != nil {
		api.GET("/metrics/summary", r.Metrics.Summary)
	}
}

func featureDisabled(c *gin.Context) {
	response.Error(c, appErrors.ErrFeatureDisabled)
}
