package httpserver

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/quckapp/moderation-service/internal/auth"
	"github.com/quckapp/moderation-service/internal/http/handlers"
	"github.com/quckapp/moderation-service/internal/metrics"
	"github.com/quckapp/moderation-service/internal/moderation"
)

// NewRouter wires up all HTTP routes. Health and metrics are public; the
// moderation API requires a service JWT issued by auth-service.
func NewRouter(db *gorm.DB, engine *moderation.Engine, jwtSecret string, log *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), auth.RequestID(), auth.Logger(log), auth.CORS())

	r.GET("/health", handlers.Health(db))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	authMW := auth.Auth(auth.DefaultConfig(jwtSecret))

	api := r.Group("/api/v1/moderation", authMW)
	{
		api.POST("/check", handlers.CheckContent(engine))
		api.POST("/check/bulk", handlers.CheckContentBulk(engine))
		// Both event routes share the :id param name; gin requires the
		// same wildcard name at the same path position.
		api.GET("/events/:id", handlers.ListEvents(engine))
		api.POST("/events/:id/review", handlers.ReviewEvent(engine))

		rules := api.Group("/rules")
		{
			rules.POST("", handlers.CreateRule(db))
			rules.GET("", handlers.ListRules(db))
			rules.GET("/:id", handlers.GetRule(db))
			rules.PUT("/:id", handlers.UpdateRule(db))
			rules.DELETE("/:id", handlers.DeleteRule(db))
			rules.POST("/:id/toggle", handlers.ToggleRule(db))
		}
	}

	return r
}
