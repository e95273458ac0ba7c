package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shenikar/city_alert/internal/service"
)

// @Summary Department login
// @Description Look up a department by its login key. The key is never returned.
// @Tags Departments
// @Accept json
// @Produce json
// @Param credentials body DepartmentLoginRequest true "Login key"
// @Success 200 {object} DepartmentResponse
// @Failure 400 {object} map[string]string "Missing login_key"
// @Failure 401 {object} map[string]string "Invalid login key"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/departments/login [post]
func (h *Handler) departmentLogin(c *gin.Context) {
	var input DepartmentLoginRequest
	log := h.logger.WithField("method", "departmentLogin")

	if err := c.ShouldBindJSON(&input); err != nil || h.validate.Struct(input) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'login_key' in request"})
		return
	}

	department, err := h.departmentService.Login(c.Request.Context(), *input.LoginKey)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid login key"})
			return
		}
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToDepartmentResponse(department))
}

// @Summary List departments
// @Description List all registered departments
// @Tags Departments
// @Produce json
// @Success 200 {array} DepartmentResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/departments [get]
func (h *Handler) listDepartments(c *gin.Context) {
	log := h.logger.WithField("method", "listDepartments")

	departments, err := h.departmentService.ListDepartments(c.Request.Context())
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToDepartmentResponses(departments))
}

// @Summary Department incidents
// @Description Incidents whose classification contains the department name, newest first
// @Tags Departments
// @Produce json
// @Param name path string true "Department name (case-insensitive)"
// @Param status query string false "Status filter" Enums(reported, in_progress, resolved)
// @Success 200 {array} IncidentResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/departments/{name}/incidents [get]
func (h *Handler) departmentIncidents(c *gin.Context) {
	name := c.Param("name")
	log := h.logger.WithField("method", "departmentIncidents").WithField("department", name)

	incidents, err := h.departmentService.DepartmentIncidents(c.Request.Context(), name, c.Query("status"))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}
