package routes

import (
	"net/http"
	"time"

	"resource-share/src/interface/handler"
	"resource-share/src/metrics"
	"resource-share/src/middleware"
	"resource-share/src/ratelimit"
	"resource-share/src/service"

	"github.com/gin-gonic/gin"
)

// HealthChecker ストアの疎通確認
type HealthChecker func() error

// Dependencies ルーティングに必要なハンドラーと共通部品
type Dependencies struct {
	ResourceHandler *handler.ResourceHandler
	CategoryHandler *handler.CategoryHandler
	RequestHandler  *handler.RequestHandler
	AdminHandler    *handler.AdminHandler
	AuthService     service.AdminAuthService
	Limiter         ratelimit.Limiter
	Metrics         *metrics.Recorder
	Health          HealthChecker

	AllowedOrigins []string
	APIPolicy      middleware.RateLimitPolicy
	SubmitPolicy   middleware.RateLimitPolicy
}

// SetupRoutes sets up all API routes
func SetupRoutes(r *gin.Engine, deps Dependencies) {
	r.Use(middleware.MetricsMiddleware(deps.Metrics))
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.CORSMiddleware(deps.AllowedOrigins))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	// ヘルスチェックとメトリクスはレート制限の対象外
	r.GET("/health", healthHandler(deps.Health))
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	api := r.Group("/api")
	if deps.Limiter != nil {
		api.Use(middleware.RateLimitMiddleware(deps.Limiter, deps.APIPolicy, deps.Metrics))
	}
	admin := middleware.AdminAuthMiddleware(deps.AuthService)

	categories := api.Group("/categories")
	{
		categories.GET("", deps.CategoryHandler.ListCategories)               // GET /api/categories
		categories.GET("/:slug", deps.CategoryHandler.GetCategory)            // GET /api/categories/:slug
		categories.POST("", admin, deps.CategoryHandler.CreateCategory)       // POST /api/categories
		categories.PUT("/:id", admin, deps.CategoryHandler.UpdateCategory)    // PUT /api/categories/:id
		categories.DELETE("/:id", admin, deps.CategoryHandler.DeleteCategory) // DELETE /api/categories/:id
	}

	resources := api.Group("/resources")
	{
		resources.GET("", deps.ResourceHandler.ListResources)                 // GET /api/resources
		resources.GET("/featured", deps.ResourceHandler.GetFeaturedResources) // GET /api/resources/featured
		resources.GET("/search", deps.ResourceHandler.SearchResources)        // GET /api/resources/search
		resources.GET("/:id", deps.ResourceHandler.GetResource)               // GET /api/resources/:id
		resources.POST("/:id/view", deps.ResourceHandler.RecordView)          // POST /api/resources/:id/view
		resources.POST("/:id/download", deps.ResourceHandler.RecordDownload)  // POST /api/resources/:id/download
		resources.POST("", admin, deps.ResourceHandler.CreateResource)        // POST /api/resources
		resources.POST("/parse", admin, deps.ResourceHandler.ParseShareText)  // POST /api/resources/parse
		resources.PUT("/:id", admin, deps.ResourceHandler.UpdateResource)     // PUT /api/resources/:id
		resources.DELETE("/:id", admin, deps.ResourceHandler.DeleteResource)  // DELETE /api/resources/:id
	}

	requests := api.Group("/resource-requests")
	{
		submit := []gin.HandlerFunc{deps.RequestHandler.CreateRequest}
		if deps.Limiter != nil {
			submit = append([]gin.HandlerFunc{middleware.RateLimitMiddleware(deps.Limiter, deps.SubmitPolicy, deps.Metrics)}, submit...)
		}
		requests.POST("", submit...)                                           // POST /api/resource-requests
		requests.GET("", admin, deps.RequestHandler.ListRequests)              // GET /api/resource-requests
		requests.PATCH("/:id", admin, deps.RequestHandler.UpdateRequestStatus) // PATCH /api/resource-requests/:id
	}

	adminGroup := api.Group("/admin")
	{
		adminGroup.POST("/login", deps.AdminHandler.Login)          // POST /api/admin/login
		adminGroup.GET("/stats", admin, deps.AdminHandler.GetStats) // GET /api/admin/stats
	}
}

func healthHandler(check HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			if err := check(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":    "unavailable",
					"timestamp": time.Now().Format(time.RFC3339),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}
