package v1

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/city_alert/internal/config"
	"github.com/shenikar/city_alert/internal/service"
)

//go:embed pages/*.html.tmpl
var pagesFS embed.FS

var pages = template.Must(template.ParseFS(pagesFS, "pages/*.html.tmpl"))

// ImageLocator находит загруженное изображение по имени файла
type ImageLocator interface {
	Path(filename string) (string, error)
}

// Services - сервисы, которые обслуживает HTTP-слой
type Services struct {
	Incidents     service.IncidentService
	Departments   service.DepartmentService
	Subscriptions service.SubscriptionService
	Chat          service.ChatService
}

type Handler struct {
	incidentService     service.IncidentService
	departmentService   service.DepartmentService
	subscriptionService service.SubscriptionService
	chatService         service.ChatService
	images              ImageLocator
	logger              *logrus.Logger
	validate            *validator.Validate
	cfg                 *config.Config
}

func NewHandler(services Services, images ImageLocator, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		incidentService:     services.Incidents,
		departmentService:   services.Departments,
		subscriptionService: services.Subscriptions,
		chatService:         services.Chat,
		images:              images,
		logger:              logger,
		validate:            validator.New(),
		cfg:                 cfg,
	}
}

// validationMessage отрезает от ошибки валидации служебный префикс
func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")
}

// respondError переводит ошибку сервиса в HTTP-ответ
func (h *Handler) respondError(c *gin.Context, log *logrus.Entry, err error) {
	var dupErr *service.DuplicateError
	var chatErr *service.ChatError

	switch {
	case errors.Is(err, service.ErrValidation):
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
	case errors.Is(err, service.ErrInvalidCredentials):
		log.Warn("Invalid department credentials")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid department credentials"})
	case errors.Is(err, service.ErrForbidden):
		log.Warn("Department is not authorized for this incident")
		c.JSON(http.StatusForbidden, gin.H{"error": "Department is not authorized to manage this incident"})
	case errors.As(err, &dupErr):
		c.JSON(http.StatusConflict, duplicateResponse(dupErr))
	case errors.As(err, &chatErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": chatErr.Message})
	default:
		log.WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func duplicateResponse(err *service.DuplicateError) DuplicateIncidentResponse {
	if err.Kind == service.DuplicateNear {
		return DuplicateIncidentResponse{
			Warning:          "Active incident already reported at this location",
			Message:          fmt.Sprintf("A similar incident was reported at this location %s and is still being handled.", err.TimeAgo),
			ExistingIncident: ModelToIncidentResponse(err.Existing),
			TimeAgo:          err.TimeAgo,
		}
	}
	return DuplicateIncidentResponse{
		Warning:          "Similar incident already reported",
		ExistingIncident: ModelToIncidentResponse(err.Existing),
	}
}

type pageData struct {
	Title    string
	Color    string
	Message  string
	HomeLink string
}

// renderPage отдает HTML-страницу статуса
func (h *Handler) renderPage(c *gin.Context, status int, data pageData) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, "unsubscribe.html.tmpl", data); err != nil {
		h.logger.WithError(err).Error("Failed to render page")
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// @Summary Backend status
// @Description Simple message confirming the backend is running
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *Handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "CityAlert Backend is running!"})
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /api/system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Frontend configuration script
// @Description JavaScript exposing the public maps key and whether the chat assistant is available
// @Tags System
// @Produce application/javascript
// @Success 200 {string} string
// @Router /api/config/js/config.js [get]
func (h *Handler) configJS(c *gin.Context) {
	mapsKey, _ := json.Marshal(h.cfg.MapsAPIKey)
	script := fmt.Sprintf(
		"// This file is generated by the server.\nwindow.CITY_ALERT_CONFIG = {\n    MAPS_API_KEY: %s,\n    HAS_GEMINI_KEY: %t\n};\n",
		mapsKey, h.cfg.GeminiAPIKey != "",
	)
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", []byte(script))
}

// @Summary Serve uploaded image
// @Description Serve an incident image from the uploads directory
// @Tags Incidents
// @Produce octet-stream
// @Param filename path string true "Image file name"
// @Success 200 {file} file
// @Failure 404 {object} map[string]string "File not found"
// @Router /api/uploads/{filename} [get]
func (h *Handler) serveUpload(c *gin.Context) {
	path, err := h.images.Path(c.Param("filename"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	c.File(path)
}

// @Summary Send a diagnostic email
// @Description Send a sample confirmation, alert or status email
// @Tags System
// @Produce json
// @Param email query string true "Recipient"
// @Param template query string false "confirmation | alert | status" default(confirmation)
// @Success 200 {object} TestEmailResponse
// @Failure 400 {object} map[string]string
// @Router /test-email [get]
func (h *Handler) testEmail(c *gin.Context) {
	log := h.logger.WithField("method", "testEmail")

	sent, err := h.subscriptionService.SendTestEmail(c.Request.Context(), c.Query("email"), c.Query("template"))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, TestEmailResponse{Success: sent})
}
