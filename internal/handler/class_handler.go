package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/altius-edu/tuition-admin-api/internal/service"
	appErrors "github.com/altius-edu/tuition-admin-api/pkg/errors"
	"github.com/altius-edu/tuition-admin-api/pkg/response"
)

// ClassHandler handles class and prerequisite endpoints.
type ClassHandler struct {
	service *service.ClassService
}

// NewClassHandler constructs a class handler.
func NewClassHandler(svc *service.ClassService) *ClassHandler {
	return &ClassHandler{service: svc}
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	classes, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// ListWithPrereq godoc
// @Summary List classes with aggregated prerequisites
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes/with-prereq [get]
func (h *ClassHandler) ListWithPrereq(c *gin.Context) {
	classes, err := h.service.ListWithPrereq(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// Schedule godoc
// @Summary Class schedule ordered by day and time
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes/schedule [get]
func (h *ClassHandler) Schedule(c *gin.Context) {
	rows, err := h.service.Schedule(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Get godoc
// @Summary Get class by id
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	class, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Create godoc
// @Summary Schedule a class
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body service.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req service.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	class, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Update godoc
// @Summary Update class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.UpdateClassRequest true "Class payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [put]
func (h *ClassHandler) Update(c *gin.Context) {
	var req service.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	class, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Delete godoc
// @Summary Delete class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 204
// @Router /classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListPrerequisites godoc
// @Summary List prerequisites of a class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/prerequisites [get]
func (h *ClassHandler) ListPrerequisites(c *gin.Context) {
	prereqs, err := h.service.ListPrerequisites(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prereqs, nil)
}

// AddPrerequisite godoc
// @Summary Add a prerequisite edge to a class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.AddPrerequisiteRequest true "Prerequisite payload"
// @Success 201 {object} response.Envelope
// @Router /classes/{id}/prerequisites [post]
func (h *ClassHandler) AddPrerequisite(c *gin.Context) {
	var req service.AddPrerequisiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	edge, err := h.service.AddPrerequisite(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, edge)
}

// DeletePrerequisite godoc
// @Summary Remove a prerequisite edge
// @Tags Classes
// @Produce json
// @Param edgeId path string true "Prerequisite edge ID"
// @Success 204
// @Router /classes/prerequisites/{edgeId} [delete]
func (h *ClassHandler) DeletePrerequisite(c *gin.Context) {
	if err := h.service.DeletePrerequisite(c.Request.Context(), c.Param("edgeId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
