package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/mma_recurring/internal/core/ports/services"
	"github.com/SscSPs/mma_recurring/internal/dto"
	"github.com/SscSPs/mma_recurring/internal/middleware"
	"github.com/gin-gonic/gin"
)

// recurringHandler handles HTTP requests related to recurring definitions and their overrides.
type recurringHandler struct {
	recurringService portssvc.RecurringSvcFacade
	paymentService   portssvc.PaymentReaderSvc
}

// newRecurringHandler creates a new recurringHandler.
func newRecurringHandler(rs portssvc.RecurringSvcFacade, ps portssvc.PaymentReaderSvc) *recurringHandler {
	return &recurringHandler{
		recurringService: rs,
		paymentService:   ps,
	}
}

// registerRecurringRoutes registers routes related to recurring definitions.
func registerRecurringRoutes(rg *gin.RouterGroup, recurringService portssvc.RecurringSvcFacade, paymentService portssvc.PaymentReaderSvc) {
	h := newRecurringHandler(recurringService, paymentService)

	recurring := rg.Group("/recurring")
	{
		recurring.POST("", h.createRecurring)
		recurring.GET("", h.listRecurring)
		recurring.GET("/:recurringID", h.getRecurring)
		recurring.PATCH("/:recurringID", h.editRecurring)
		recurring.DELETE("/:recurringID", h.deleteRecurring)
		recurring.POST("/:recurringID/pause", h.pauseRecurring)
		recurring.POST("/:recurringID/resume", h.resumeRecurring)

		recurring.GET("/:recurringID/overrides", h.listOverrides)
		recurring.PUT("/:recurringID/overrides/:year/:month", h.setOverride)
		recurring.DELETE("/:recurringID/overrides/:year/:month", h.removeOverride)

		recurring.GET("/:recurringID/payments", h.listPayments)
	}
	rg.POST("/installment-plans", h.createInstallmentPlan)
}

// createRecurring godoc
// @Summary Create a recurring definition
// @Description Creates a recurring income or expense for the logged-in user
// @Tags recurring
// @Accept  json
// @Produce  json
// @Param   recurring body dto.CreateRecurringRequest true "Recurring definition"
// @Success 201 {object} dto.RecurringResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create recurring definition"
// @Security BearerAuth
// @Router /recurring [post]
func (h *recurringHandler) createRecurring(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateRecurring", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	def, err := h.recurringService.CreateRecurring(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to create recurring definition")
		return
	}

	c.JSON(http.StatusCreated, dto.ToRecurringResponse(def))
}

// createInstallmentPlan godoc
// @Summary Create an installment plan
// @Description Splits a total amount into monthly installments, optionally generating all of them now
// @Tags recurring
// @Accept  json
// @Produce  json
// @Param   plan body dto.CreateInstallmentPlanRequest true "Installment plan"
// @Success 201 {object} dto.InstallmentPlanResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Ledger unavailable"
// @Failure 500 {object} map[string]string "Failed to create installment plan"
// @Security BearerAuth
// @Router /installment-plans [post]
func (h *recurringHandler) createInstallmentPlan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateInstallmentPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateInstallmentPlan", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	plan, err := h.recurringService.CreateInstallmentPlan(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to create installment plan")
		return
	}

	c.JSON(http.StatusCreated, dto.ToInstallmentPlanResponse(plan))
}

// listRecurring godoc
// @Summary List recurring definitions
// @Description Lists the logged-in user's definitions, newest first
// @Tags recurring
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token of the next page"
// @Param   includeInactive query bool false "Include paused and completed definitions"
// @Success 200 {object} dto.ListRecurringResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list recurring definitions"
// @Security BearerAuth
// @Router /recurring [get]
func (h *recurringHandler) listRecurring(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	var params dto.ListRecurringParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListRecurring", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	defs, next, err := h.recurringService.ListRecurring(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list recurring definitions")
		return
	}

	c.JSON(http.StatusOK, dto.ListRecurringResponse{Recurring: dto.ToListRecurringResponse(defs), NextToken: next})
}

// getRecurring godoc
// @Summary Get a recurring definition
// @Tags recurring
// @Produce  json
// @Param   recurringID path string true "Recurring ID"
// @Success 200 {object} dto.RecurringResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Recurring definition not found"
// @Failure 500 {object} map[string]string "Failed to retrieve recurring definition"
// @Security BearerAuth
// @Router /recurring/{recurringID} [get]
func (h *recurringHandler) getRecurring(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	recurringID, ok := idParam(c, "recurringID", "Recurring definition not found")
	if !ok {
		return
	}

	def, err := h.recurringService.GetRecurring(c.Request.Context(), userID, recurringID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve recurring definition")
		return
	}
	c.JSON(http.StatusOK, dto.ToRecurringResponse(def))
}

// editRecurring godoc
// @Summary Edit a recurring definition
// @Description Updates the provided fields. Already generated periods are not changed.
// @Tags recurring
// @Accept  json
// @Produce  json
// @Param   recurringID path string true "Recurring ID"
// @Param   changes body dto.UpdateRecurringRequest true "Fields to update"
// @Success 200 {object} dto.RecurringResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Recurring definition not found"
// @Failure 500 {object} map[string]string "Failed to update recurring definition"
// @Security BearerAuth
// @Router /recurring/{recurringID} [patch]
func (h *recurringHandler) editRecurring(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for EditRecurring", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	recurringID, ok := idParam(c, "recurringID", "Recurring definition not found")
	if !ok {
		return
	}

	def, err := h.recurringService.EditRecurring(c.Request.Context(), userID, recurringID, req)
	if err != nil {
		respondError(c, logger, err, "Failed to update recurring definition")
		return
	}
	c.JSON(http.StatusOK, dto.ToRecurringResponse(def))
}

// pauseRecurring godoc
// @Summary Pause a recurring definition
// @Tags recurring
// @Produce  json
// @Param   recurringID path string true "Recurring ID"
// @Success 200 {object} dto.RecurringResponse
// @Failure 400 {object} map[string]string "Completed installment plan"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Recurring definition not found"
// @Security BearerAuth
// @Router /recurring/{recurringID}/pause [post]
func (h *recurringHandler) pauseRecurring(c *gin.Context) {
	h.setActive(c, false)
}

// resumeRecurring godoc
// @Summary Resume a paused recurring definition
// @Tags recurring
// @Produce  json
// @Param   recurringID path string true "Recurring ID"
// @Success 200 {object} dto.RecurringResponse
// @Failure 400 {object} map[string]string "Completed installment plan"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Recurring definition not found"
// @Security BearerAuth
// @Router /recurring/{recurringID}/resume [post]
func (h *recurringHandler) resumeRecurring(c *gin.Context) {
	h.setActive(c, true)
}

func (h *recurringHandler) setActive(c *gin.Context, active bool) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	recurringID, ok := idParam(c, "recurringID", "Recurring definition not found")
	if !ok {
		return
	}

	toggle := h.recurringService.PauseRecurring
	if active {
		toggle = h.recurringService.ResumeRecurring
	}
	def, err := toggle(c.Request.Context(), userID, recurringID)
	if err != nil {
		respondError(c, logger, err, "Failed to update recurring definition")
		return
	}
	c.JSON(http.StatusOK, dto.ToRecurringResponse(def))
}

// deleteRecurring godoc
// @Summary Delete a recurring definition
// @Description Soft deletes the definition, unlinks its ledger transactions and removes its overrides
// @Tags recurring
// @Produce  json
// @Param   recurringID path string true "Recurring ID"
// @Success 200 {object} dto.SoftDeleteResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Recurring definition not found"
// @Failure 500 {object} map[string]string "Failed to delete recurring definition"
// @Security BearerAuth
// @Router /recurring/{recurringID} [delete]
func (h *recurringHandler) deleteRecurring(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	recurringID, ok := idParam(c, "recurringID", "Recurring definition not found")
	if !ok {
		return
	}

	res, err := h.recurringService.SoftDeleteRecurring(c.Request.Context(), userID, recurringID)
	if err != nil {
		respondError(c, logger, err, "Failed to delete recurring definition")
		return
	}
	logger.Info("Recurring definition deleted",
		slog.String("recurring_id", res.RecurringID),
		slog.Int("unlinked_ledger_txns", res.UnlinkedLedgerTxns))
	c.JSON(http.StatusOK, dto.ToSoftDeleteResponse(res))
}

// setOverride godoc
// @Summary Override one period
// @Description Skips the period or changes its amount. Replaces any existing override of the period.
// @Tags overrides
// @Accept  json
// @Produce  json
// @Param   recurringID path string true "Recurring ID"
// @Param   year path int true "Year"
// @Param   month path int true "Month (1-12)"
// @Param   override body dto.SetOverrideRequest true "Override"
// @Success 200 {object} dto.OverrideResponse
// @Failure 400 {object} map[string]string "Invalid input or period not scheduled"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Recurring definition not found"
// @Failure 500 {object} map[string]string "Failed to save override"
// @Security BearerAuth
// @Router /recurring/{recurringID}/overrides/{year}/{month} [put]
func (h *recurringHandler) setOverride(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	month, year, ok := periodParams(c)
	if !ok {
		return
	}
	var req dto.SetOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetOverride", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	recurringID, ok := idParam(c, "recurringID", "Recurring definition not found")
	if !ok {
		return
	}

	ov, err := h.recurringService.SetOverride(c.Request.Context(), userID, recurringID, month, year, req)
	if err != nil {
		respondError(c, logger, err, "Failed to save override")
		return
	}
	c.JSON(http.StatusOK, dto.ToOverrideResponse(ov))
}

// removeOverride godoc
// @Summary Remove the override of one period
// @Tags overrides
// @Param   recurringID path string true "Recurring ID"
// @Param   year path int true "Year"
// @Param   month path int true "Month (1-12)"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid period"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Override not found"
// @Security BearerAuth
// @Router /recurring/{recurringID}/overrides/{year}/{month} [delete]
func (h *recurringHandler) removeOverride(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	month, year, ok := periodParams(c)
	if !ok {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	recurringID, ok := idParam(c, "recurringID", "Recurring definition not found")
	if !ok {
		return
	}

	if err := h.recurringService.RemoveOverride(c.Request.Context(), userID, recurringID, month, year); err != nil {
		respondError(c, logger, err, "Failed to remove override")
		return
	}
	c.Status(http.StatusNoContent)
}

// listOverrides godoc
// @Summary List the overrides of a definition
// @Tags overrides
// @Produce  json
// @Param   recurringID path string true "Recurring ID"
// @Success 200 {array} dto.OverrideResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Recurring definition not found"
// @Security BearerAuth
// @Router /recurring/{recurringID}/overrides [get]
func (h *recurringHandler) listOverrides(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	recurringID, ok := idParam(c, "recurringID", "Recurring definition not found")
	if !ok {
		return
	}

	overrides, err := h.recurringService.ListOverrides(c.Request.Context(), userID, recurringID)
	if err != nil {
		respondError(c, logger, err, "Failed to list overrides")
		return
	}
	c.JSON(http.StatusOK, dto.ToListOverrideResponse(overrides))
}

// listPayments godoc
// @Summary List generated occurrences of a definition
// @Tags occurrences
// @Produce  json
// @Param   recurringID path string true "Recurring ID"
// @Success 200 {array} dto.PaymentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Recurring definition not found"
// @Security BearerAuth
// @Router /recurring/{recurringID}/payments [get]
func (h *recurringHandler) listPayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	recurringID, ok := idParam(c, "recurringID", "Recurring definition not found")
	if !ok {
		return
	}

	payments, err := h.paymentService.ListPayments(c.Request.Context(), userID, recurringID)
	if err != nil {
		respondError(c, logger, err, "Failed to list payments")
		return
	}
	c.JSON(http.StatusOK, dto.ToListPaymentResponse(payments))
}
