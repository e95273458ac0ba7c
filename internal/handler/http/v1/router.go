package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes регистрирует все маршруты API под префиксом /api
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Инциденты
	incidents := api.Group("/incidents")
	{
		incidents.POST("", h.createIncident)
		incidents.GET("", h.listIncidents)
		incidents.DELETE("/clear-all", h.clearIncidents)
		incidents.GET("/:id", h.getIncident)
		incidents.PUT("/:id", h.updateIncident)
		incidents.DELETE("/:id", h.deleteIncident)
	}
	api.GET("/uploads/:filename", h.serveUpload)

	// Департаменты
	departments := api.Group("/departments")
	{
		departments.POST("/login", h.departmentLogin)
		departments.GET("", h.listDepartments)
		departments.GET("/:name/incidents", h.departmentIncidents)
	}

	// Подписки
	subscriptions := api.Group("/subscriptions")
	{
		subscriptions.POST("/subscribe", h.subscribe)
		subscriptions.GET("/unsubscribe", h.unsubscribePage)
		subscriptions.POST("/unsubscribe", h.unsubscribe)
		subscriptions.GET("", h.listSubscriptions)
	}

	api.POST("/chat/gemini", h.chat)
	api.GET("/config/js/config.js", h.configJS)

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}

// RegisterRootRoutes регистрирует маршруты вне префикса /api
func (h *Handler) RegisterRootRoutes(router *gin.Engine) {
	router.GET("/", h.root)
	router.GET("/uploads/:filename", h.serveUpload)
	router.GET("/test-email", h.testEmail)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// NewRouter собирает gin.Engine со всеми middleware и маршрутами
func (h *Handler) NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), CORSMiddleware(h.cfg.CORSAllowedOrigins), RequestLogger(h.logger), Metrics())

	h.RegisterRootRoutes(router)
	h.RegisterRoutes(router.Group("/api"))
	return router
}
