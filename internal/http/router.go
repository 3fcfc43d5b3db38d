package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter собирает маршруты сервиса. Расчёт без сохранения и справочники
// доступны без токена; сохранённые сметы требуют авторизации.
func NewRouter(handler *Handler, authMiddleware gin.HandlerFunc, environment string, allowedOrigins []string) *gin.Engine {
	if environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/catalog/work-types", handler.workTypes)
	router.GET("/catalog/regions", handler.regions)
	router.GET("/catalog/templates", handler.templates)

	router.POST("/estimates/calculate", handler.calculate)
	router.POST("/estimates/export", handler.exportCalculation)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.POST("/estimates", handler.save)
	protected.GET("/estimates", handler.list)
	protected.GET("/estimates/:id", handler.get)
	protected.DELETE("/estimates/:id", handler.remove)
	protected.GET("/estimates/:id/export", handler.export)

	return router
}
