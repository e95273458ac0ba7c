package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shenikar/city_alert/internal/models"
	"github.com/shenikar/city_alert/internal/service"
)

// @Summary Subscribe to incident alerts
// @Description Subscribe an email address. Existing inactive subscriptions are reactivated; active ones are left as is.
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param subscription body SubscribeRequest true "Subscription request"
// @Success 201 {object} SubscribeResponse
// @Success 200 {object} map[string]string "Already subscribed or reactivated"
// @Failure 400 {object} map[string]string "Invalid email"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/subscriptions/subscribe [post]
func (h *Handler) subscribe(c *gin.Context) {
	var input SubscribeRequest
	log := h.logger.WithField("method", "subscribe")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	subscription, outcome, err := h.subscriptionService.Subscribe(c.Request.Context(), input.Email, input.DepartmentFilter)
	if err != nil {
		h.respondError(c, log, err)
		return
	}

	switch outcome {
	case models.SubscriptionAlreadyActive:
		c.JSON(http.StatusOK, gin.H{"message": "Email is already subscribed to alerts"})
	case models.SubscriptionReactivated:
		c.JSON(http.StatusOK, gin.H{"message": "Subscription reactivated successfully"})
	default:
		c.JSON(http.StatusCreated, SubscribeResponse{
			Message:      "Successfully subscribed to incident alerts",
			Subscription: ModelToSubscriptionResponse(subscription),
		})
	}
}

// @Summary Unsubscribe (link from emails)
// @Description Deactivate a subscription and render an HTML status page
// @Tags Subscriptions
// @Produce html
// @Param email query string true "Email address"
// @Success 200 {string} string "HTML page"
// @Failure 400 {string} string "HTML page"
// @Failure 500 {string} string "HTML page"
// @Router /api/subscriptions/unsubscribe [get]
func (h *Handler) unsubscribePage(c *gin.Context) {
	log := h.logger.WithField("method", "unsubscribePage")

	deactivated, err := h.subscriptionService.Unsubscribe(c.Request.Context(), c.Query("email"))
	switch {
	case errors.Is(err, service.ErrValidation):
		h.renderPage(c, http.StatusBadRequest, pageData{
			Title:   "Invalid Email",
			Color:   "#dc2626",
			Message: "The email address provided is not valid.",
		})
	case err != nil:
		log.WithError(err).Error("Failed to unsubscribe")
		h.renderPage(c, http.StatusInternalServerError, pageData{
			Title:   "Error",
			Color:   "#dc2626",
			Message: "An error occurred while unsubscribing. Please try again later.",
		})
	case !deactivated:
		h.renderPage(c, http.StatusOK, pageData{
			Title:   "Already Unsubscribed",
			Color:   "#f59e0b",
			Message: "This email address is not currently subscribed to alerts.",
		})
	default:
		h.renderPage(c, http.StatusOK, pageData{
			Title:    "Successfully Unsubscribed",
			Color:    "#16a34a",
			Message:  "You have been unsubscribed from CityAlert incident notifications.",
			HomeLink: "/public/index.html",
		})
	}
}

// @Summary Unsubscribe
// @Description Deactivate a subscription
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param subscription body UnsubscribeRequest true "Email address"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Invalid email"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/subscriptions/unsubscribe [post]
func (h *Handler) unsubscribe(c *gin.Context) {
	var input UnsubscribeRequest
	log := h.logger.WithField("method", "unsubscribe")

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid email is required"})
		return
	}

	deactivated, err := h.subscriptionService.Unsubscribe(c.Request.Context(), input.Email)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	if !deactivated {
		c.JSON(http.StatusOK, gin.H{"message": "Email is not currently subscribed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully unsubscribed from alerts"})
}

// @Summary List active subscriptions
// @Description List all active email subscriptions
// @Tags Subscriptions
// @Produce json
// @Success 200 {array} SubscriptionResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/subscriptions [get]
func (h *Handler) listSubscriptions(c *gin.Context) {
	log := h.logger.WithField("method", "listSubscriptions")

	subscriptions, err := h.subscriptionService.ListSubscriptions(c.Request.Context())
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToSubscriptionResponses(subscriptions))
}
