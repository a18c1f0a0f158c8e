package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/altius-edu/tuition-admin-api/internal/service"
	appErrors "github.com/altius-edu/tuition-admin-api/pkg/errors"
	"github.com/altius-edu/tuition-admin-api/pkg/response"
)

// PackageHandler handles package endpoints.
type PackageHandler struct {
	service  *service.PackageService
	subjects *service.SubjectService
}

// NewPackageHandler constructs a package handler.
func NewPackageHandler(svc *service.PackageService, subjects *service.SubjectService) *PackageHandler {
	return &PackageHandler{service: svc, subjects: subjects}
}

// List godoc
// @Summary List packages
// @Tags Packages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /packages [get]
func (h *PackageHandler) List(c *gin.Context) {
	packages, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, packages, nil)
}

// Get godoc
// @Summary Get package by id
// @Tags Packages
// @Produce json
// @Param id path string true "Package ID"
// @Success 200 {object} response.Envelope
// @Router /packages/{id} [get]
func (h *PackageHandler) Get(c *gin.Context) {
	pkg, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pkg, nil)
}

// Subjects godoc
// @Summary List subjects of a package
// @Tags Packages
// @Produce json
// @Param id path string true "Package ID"
// @Success 200 {object} response.Envelope
// @Router /packages/{id}/subjects [get]
func (h *PackageHandler) Subjects(c *gin.Context) {
	subjects, err := h.subjects.ListByPackage(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// Create godoc
// @Summary Create package
// @Tags Packages
// @Accept json
// @Produce json
// @Param payload body service.CreatePackageRequest true "Package payload"
// @Success 201 {object} response.Envelope
// @Router /packages [post]
func (h *PackageHandler) Create(c *gin.Context) {
	var req service.CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	pkg, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, pkg)
}

// Update godoc
// @Summary Update package
// @Tags Packages
// @Accept json
// @Produce json
// @Param id path string true "Package ID"
// @Param payload body service.UpdatePackageRequest true "Package payload"
// @Success 200 {object} response.Envelope
// @Router /packages/{id} [put]
func (h *PackageHandler) Update(c *gin.Context) {
	var req service.UpdatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	pkg, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pkg, nil)
}

// Delete godoc
// @Summary Delete package
// @Tags Packages
// @Produce json
// @Param id path string true "Package ID"
// @Success 204
// @Router /packages/{id} [delete]
func (h *PackageHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
