package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/zotprof/backend/internal/ai"
	"github.com/zotprof/backend/internal/chat"
	"github.com/zotprof/backend/internal/config"
	"github.com/zotprof/backend/internal/http/handlers"
	"github.com/zotprof/backend/internal/http/middleware"
	"github.com/zotprof/backend/internal/service"
	"github.com/zotprof/backend/internal/session"

	_ "github.com/zotprof/backend/docs"
)

type Deps struct {
	Search   *service.SearchService
	Intent   ai.IntentParser
	Chat     *chat.Engine
	Sessions session.Store
	Caches   map[string]handlers.Purger
}

func Router(cfg config.Config, deps Deps, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.AdminKeyHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	origins := cfg.CORSOrigins()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = origins
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Search:    deps.Search,
		Intent:    deps.Intent,
		Chat:      deps.Chat,
		Sessions:  deps.Sessions,
		Caches:    deps.Caches,
		Validator: validator.New(),
		Logger:    logger,
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/search", h.SearchCourses)
		api.POST("/search-intent", h.SearchIntent)
		api.GET("/professors/:name", h.ProfessorDetails)
		api.GET("/grades", h.Grades)

		api.POST("/chat/sessions", h.CreateSession)
		api.GET("/chat/sessions/:id", h.GetSession)
		api.DELETE("/chat/sessions/:id", h.DeleteSession)
		api.POST("/chat/sessions/:id/messages", h.PostMessage)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/cache/purge", h.PurgeCaches)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
