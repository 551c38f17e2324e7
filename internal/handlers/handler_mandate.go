package handlers

import (
	"net/http"

	portssvc "github.com/foyerhq/foyer-backend/internal/core/ports/services"
	"github.com/foyerhq/foyer-backend/internal/dto"
	"github.com/foyerhq/foyer-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// mandateHandler handles HTTP requests for accounting periods.
type mandateHandler struct {
	mandateService portssvc.MandateSvcFacade
}

// newMandateHandler creates a new mandateHandler.
func newMandateHandler(mandateService portssvc.MandateSvcFacade) *mandateHandler {
	return &mandateHandler{mandateService: mandateService}
}

// startMandate godoc
// @Summary Open a new accounting period
// @Tags mandates
// @Accept json
// @Produce json
// @Param mandate body dto.StartMandateRequest true "Opening stock snapshots"
// @Success 201 {object} dto.MandateResponse
// @Failure 409 {object} map[string]string "An active mandate already exists"
// @Router /mandates [post]
func (h *mandateHandler) startMandate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.StartMandateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	issuerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	mandate, err := h.mandateService.StartMandate(c.Request.Context(), req.Snapshots, issuerID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to open mandate")
		return
	}
	c.JSON(http.StatusCreated, dto.ToMandateResponse(mandate))
}

// previewClose godoc
// @Summary Preview closing the active period from live figures
// @Tags mandates
// @Produce json
// @Success 200 {object} dto.MandateClosePreview
// @Failure 404 {object} map[string]string "No active mandate"
// @Router /mandates/close-preview [get]
func (h *mandateHandler) previewClose(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	preview, err := h.mandateService.PreviewClose(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to preview close")
		return
	}
	c.JSON(http.StatusOK, preview)
}

// closeMandate godoc
// @Summary Close the active period with confirmed final stock values
// @Tags mandates
// @Accept json
// @Produce json
// @Param finals body dto.CloseMandateRequest true "Final stock snapshots"
// @Success 200 {object} dto.MandateResponse
// @Failure 404 {object} map[string]string "No active mandate"
// @Router /mandates/close [post]
func (h *mandateHandler) closeMandate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CloseMandateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	issuerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	mandate, err := h.mandateService.CloseMandate(c.Request.Context(), req.Finals, issuerID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to close mandate")
		return
	}
	c.JSON(http.StatusOK, dto.ToMandateResponse(mandate))
}

// getActiveMandate godoc
// @Summary Get the currently open period and its shop snapshots
// @Tags mandates
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string "No active mandate"
// @Router /mandates/active [get]
func (h *mandateHandler) getActiveMandate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	mandate, shops, err := h.mandateService.GetActiveMandate(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to get active mandate")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"mandate": dto.ToMandateResponse(mandate),
		"shops":   shops,
	})
}

// listMandates godoc
// @Summary List accounting periods, newest first
// @Tags mandates
// @Produce json
// @Param limit query int false "Page size"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListMandatesResponse
// @Router /mandates [get]
func (h *mandateHandler) listMandates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListMandatesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	page, err := h.mandateService.ListMandates(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list mandates")
		return
	}
	c.JSON(http.StatusOK, page)
}

// registerMandateRoutes registers mandate specific routes
func registerMandateRoutes(group *gin.RouterGroup, mandateService portssvc.MandateSvcFacade) {
	h := newMandateHandler(mandateService)

	mandates := group.Group("/mandates")
	{
		mandates.POST("", h.startMandate)
		mandates.GET("", h.listMandates)
		mandates.GET("/active", h.getActiveMandate)
		mandates.GET("/close-preview", h.previewClose)
		mandates.POST("/close", h.closeMandate)
	}
}
