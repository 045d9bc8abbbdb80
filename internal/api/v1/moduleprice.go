package v1

import (
	"io"
	"net/http"

	"github.com/billforge/billforge/internal/api/dto"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/service"
	"github.com/billforge/billforge/internal/types"
	"github.com/gin-gonic/gin"
)

const maxLogoSizeBytes = 2 << 20 // 2 MiB

type ModulePriceHandler struct {
	modulePriceService service.ModulePriceService
	logger             *logger.Logger
}

func NewModulePriceHandler(modulePriceService service.ModulePriceService, logger *logger.Logger) *ModulePriceHandler {
	return &ModulePriceHandler{
		modulePriceService: modulePriceService,
		logger:             logger,
	}
}

// CreateModulePrice handles POST /modules
func (h *ModulePriceHandler) CreateModulePrice(c *gin.Context) {
	var req dto.CreateModulePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.modulePriceService.CreateModulePrice(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetModulePrice handles GET /modules/:id
func (h *ModulePriceHandler) GetModulePrice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("module ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.modulePriceService.GetModulePrice(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// UpdateModulePrice handles PUT /modules/:id
func (h *ModulePriceHandler) UpdateModulePrice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("module ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.UpdateModulePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.modulePriceService.UpdateModulePrice(c.Request.Context(), id, &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// DeleteModulePrice handles DELETE /modules/:id
func (h *ModulePriceHandler) DeleteModulePrice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("module ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.modulePriceService.DeleteModulePrice(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "module deleted successfully"})
}

// ListModulePrices handles GET /modules
func (h *ModulePriceHandler) ListModulePrices(c *gin.Context) {
	filter := &types.ModulePriceFilter{QueryFilter: types.NewDefaultQueryFilter()}
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.modulePriceService.ListModulePrices(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// UploadLogo handles POST /modules/:id/logo as a multipart upload
func (h *ModulePriceHandler) UploadLogo(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("module ID is required").
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please attach the logo as the 'logo' form field").
			Mark(ierr.ErrValidation))
		return
	}
	if fileHeader.Size > maxLogoSizeBytes {
		c.Error(ierr.NewError("logo file too large").
			WithHint("Logo files must be 2 MiB or smaller").
			Mark(ierr.ErrValidation))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Could not read the uploaded file").
			Mark(ierr.ErrValidation))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Could not read the uploaded file").
			Mark(ierr.ErrValidation))
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")

	response, err := h.modulePriceService.UploadLogo(c.Request.Context(), id, contentType, data)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
