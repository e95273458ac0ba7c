package v1

import (
	"slices"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/city_alert/internal/metrics"
)

// CORSMiddleware разрешает запросы с перечисленных источников; "*" разрешает все
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cors.New(cfg)
}

// RequestLogger пишет в лог каждый обработанный запрос
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		entry := logger.WithFields(logrus.Fields{
			"http_method": c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"latency":     time.Since(start).String(),
			"client_ip":   c.ClientIP(),
		})
		switch {
		case status >= 500:
			entry.Error("HTTP request")
		case status >= 400:
			entry.Warn("HTTP request")
		default:
			entry.Info("HTTP request")
		}
	}
}

// Metrics считает запросы и их длительность по шаблону маршрута
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
