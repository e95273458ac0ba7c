package v1

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shenikar/city_alert/internal/models"
)

const missingIncidentFields = "Missing required incident fields (description, location, department_classification)"

func parseIncidentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return 0, false
	}
	return id, true
}

func incidentNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"message": "Incident not found"})
}

// @Summary Report a new incident
// @Description Create an incident. Rejects exact duplicates and active incidents at the same location reported within the last hour.
// @Tags Incidents
// @Accept json
// @Produce json
// @Param incident body CreateIncidentRequest true "Incident creation request"
// @Success 201 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 409 {object} DuplicateIncidentResponse "Duplicate incident"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/incidents [post]
func (h *Handler) createIncident(c *gin.Context) {
	var input CreateIncidentRequest
	log := h.logger.WithField("method", "createIncident")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request must contain JSON data"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": missingIncidentFields})
		return
	}

	incident, err := h.incidentService.CreateIncident(c.Request.Context(), DTOToIncidentDraft(input))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToIncidentResponse(incident))
}

// @Summary Get a list of incidents
// @Description List incidents, optionally filtered by exact status and by department name contained in the classification
// @Tags Incidents
// @Produce json
// @Param status query string false "Status filter" Enums(reported, in_progress, resolved)
// @Param department query string false "Department name (substring of department_classification)"
// @Success 200 {array} IncidentResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")
	filter := models.IncidentFilter{
		Status:     c.Query("status"),
		Department: c.Query("department"),
	}

	incidents, err := h.incidentService.ListIncidents(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Get incident by ID
// @Description Get a single incident by its ID
// @Tags Incidents
// @Produce json
// @Param id path int true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	id, ok := parseIncidentID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getIncident").WithField("id", id)

	incident, err := h.incidentService.GetIncident(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			incidentNotFound(c)
			return
		}
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Update an existing incident
// @Description Partially update an incident. Only fields present in the body change; a new location is geocoded again.
// @Tags Incidents
// @Accept json
// @Produce json
// @Param id path int true "Incident ID"
// @Param incident body UpdateIncidentRequest true "Fields to update"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID or request body"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/incidents/{id} [put]
func (h *Handler) updateIncident(c *gin.Context) {
	id, ok := parseIncidentID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "updateIncident").WithField("id", id)

	var input UpdateIncidentRequest
	if err := c.ShouldBindJSON(&input); err != nil || input.empty() {
		if err != nil {
			log.WithError(err).Warn("Failed to bind JSON")
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request must contain JSON data"})
		return
	}

	patch, err := DTOToIncidentPatch(input)
	if err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incident, err := h.incidentService.UpdateIncident(c.Request.Context(), id, patch)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			incidentNotFound(c)
			return
		}
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Delete an incident
// @Description Delete an incident. When department credentials are supplied the department must be named in the classification.
// @Tags Incidents
// @Accept json
// @Produce json
// @Param id path int true "Incident ID"
// @Param credentials body DeleteIncidentRequest false "Department credentials"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Invalid incident ID or request body"
// @Failure 401 {object} map[string]string "Invalid department credentials"
// @Failure 403 {object} map[string]string "Department not assigned to the incident"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/incidents/{id} [delete]
func (h *Handler) deleteIncident(c *gin.Context) {
	id, ok := parseIncidentID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "deleteIncident").WithField("id", id)

	var input DeleteIncidentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
			log.WithError(err).Warn("Failed to bind JSON")
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	credentials := models.DepartmentCredentials{Key: input.DepartmentKey, Name: input.DepartmentName}
	if err := h.incidentService.DeleteIncident(c.Request.Context(), id, credentials); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			incidentNotFound(c)
			return
		}
		h.respondError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Incident deleted successfully"})
}

// @Summary Delete all incidents
// @Description Unconditionally delete every incident
// @Tags Incidents
// @Produce json
// @Success 200 {object} ClearIncidentsResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/incidents/clear-all [delete]
func (h *Handler) clearIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "clearIncidents")

	deleted, err := h.incidentService.ClearIncidents(c.Request.Context())
	if err != nil {
		h.respondError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, ClearIncidentsResponse{
		Message:      "All incidents cleared",
		DeletedCount: deleted,
	})
}
