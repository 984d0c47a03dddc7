package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/mma_recurring/internal/core/ports/services"
	"github.com/SscSPs/mma_recurring/internal/dto"
	"github.com/SscSPs/mma_recurring/internal/middleware"
	"github.com/SscSPs/mma_recurring/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// occurrenceHandler handles generation and projection of occurrences.
type occurrenceHandler struct {
	recurringService  portssvc.RecurringReaderSvc
	resolverService   portssvc.OccurrenceResolverSvc
	generationService portssvc.GeneratorSvc
	projectionService portssvc.ProjectionSvc

	defaultHorizonDays int
	maxHorizonDays     int
	now                func() time.Time
}

func newOccurrenceHandler(cfg *config.Config, services *portssvc.ServiceContainer) *occurrenceHandler {
	return &occurrenceHandler{
		recurringService:   services.Recurring,
		resolverService:    services.Resolver,
		generationService:  services.Generation,
		projectionService:  services.Projection,
		defaultHorizonDays: cfg.DefaultHorizonDays,
		maxHorizonDays:     cfg.MaxHorizonDays,
		now:                time.Now,
	}
}

// registerOccurrenceRoutes registers generation and projection routes.
func registerOccurrenceRoutes(rg *gin.RouterGroup, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := newOccurrenceHandler(cfg, services)

	rg.GET("/recurring/:recurringID/occurrences/:year/:month", h.resolveOccurrence)
	rg.POST("/recurring/:recurringID/occurrences/:year/:month", h.generateOccurrence)
	rg.DELETE("/payments/:paymentID", h.undoOccurrence)

	occurrences := rg.Group("/occurrences")
	{
		occurrences.GET("/upcoming", h.upcoming)
		occurrences.GET("/overdue", h.overdue)
	}
}

// resolveOccurrence godoc
// @Summary Resolve one period of a definition
// @Description Returns the due date, effective amount and status of the period
// @Tags occurrences
// @Produce  json
// @Param   recurringID path string true "Recurring ID"
// @Param   year path int true "Year"
// @Param   month path int true "Month (1-12)"
// @Param   asOf query string false "Reference date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.OccurrenceResponse
// @Failure 400 {object} map[string]string "Invalid period or period not scheduled"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Recurring definition not found"
// @Security BearerAuth
// @Router /recurring/{recurringID}/occurrences/{year}/{month} [get]
func (h *occurrenceHandler) resolveOccurrence(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	month, year, ok := periodParams(c)
	if !ok {
		return
	}
	asOf, err := asOfParam(c.Query("asOf"), h.now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf date, expected YYYY-MM-DD"})
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

	def, err := h.recurringService.GetRecurring(c.Request.Context(), userID, recurringID)
	if err != nil {
		respondError(c, logger, err, "Failed to resolve occurrence")
		return
	}
	occ, err := h.resolverService.ResolveOccurrence(c.Request.Context(), def, month, year, asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to resolve occurrence")
		return
	}
	c.JSON(http.StatusOK, dto.ToOccurrenceResponse(occ))
}

// generateOccurrence godoc
// @Summary Generate the ledger entry of one period
// @Description Records the occurrence in the ledger. Generating an already generated period returns the existing payment.
// @Tags occurrences
// @Produce  json
// @Param   recurringID path string true "Recurring ID"
// @Param   year path int true "Year"
// @Param   month path int true "Month (1-12)"
// @Success 201 {object} dto.GenerationResponse "Generated"
// @Success 200 {object} dto.GenerationResponse "Already generated"
// @Failure 400 {object} map[string]string "Period not scheduled, skipped or plan completed"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Recurring definition not found"
// @Failure 502 {object} map[string]string "Ledger unavailable"
// @Security BearerAuth
// @Router /recurring/{recurringID}/occurrences/{year}/{month} [post]
func (h *occurrenceHandler) generateOccurrence(c *gin.Context) {
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

	res, err := h.generationService.Generate(c.Request.Context(), userID, recurringID, month, year)
	if err != nil {
		respondError(c, logger, err, "Failed to generate occurrence")
		return
	}

	status := http.StatusCreated
	if res.AlreadyGenerated {
		status = http.StatusOK
	}
	c.JSON(status, dto.ToGenerationResponse(res))
}

// undoOccurrence godoc
// @Summary Undo a generated occurrence
// @Description Deletes the payment and its ledger transaction, reopening the period
// @Tags occurrences
// @Produce  json
// @Param   paymentID path string true "Payment ID"
// @Success 200 {object} dto.UndoResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Payment not found"
// @Failure 502 {object} map[string]string "Ledger unavailable"
// @Security BearerAuth
// @Router /payments/{paymentID} [delete]
func (h *occurrenceHandler) undoOccurrence(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	paymentID, ok := idParam(c, "paymentID", "Payment not found")
	if !ok {
		return
	}

	res, err := h.generationService.Undo(c.Request.Context(), userID, paymentID)
	if err != nil {
		respondError(c, logger, err, "Failed to undo occurrence")
		return
	}
	c.JSON(http.StatusOK, dto.ToUndoResponse(res))
}

// upcoming godoc
// @Summary List upcoming occurrences
// @Description Projects the user's active definitions from asOf over the given horizon
// @Tags occurrences
// @Produce  json
// @Param   days query int false "Horizon in days"
// @Param   asOf query string false "Reference date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.ListOccurrencesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to project occurrences"
// @Security BearerAuth
// @Router /occurrences/upcoming [get]
func (h *occurrenceHandler) upcoming(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	params, asOf, ok := h.bindProjectionQuery(c, logger)
	if !ok {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	days := h.defaultHorizonDays
	if params.Days != nil {
		days = *params.Days
	}
	if h.maxHorizonDays > 0 && days > h.maxHorizonDays {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Horizon exceeds the maximum allowed days"})
		return
	}

	occs, err := h.projectionService.Upcoming(c.Request.Context(), userID, days, asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to project occurrences")
		return
	}
	c.JSON(http.StatusOK, dto.ToListOccurrencesResponse(asOf, occs))
}

// overdue godoc
// @Summary List overdue occurrences
// @Description Lists every occurrence due before asOf that was neither generated nor skipped
// @Tags occurrences
// @Produce  json
// @Param   asOf query string false "Reference date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.ListOccurrencesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list overdue occurrences"
// @Security BearerAuth
// @Router /occurrences/overdue [get]
func (h *occurrenceHandler) overdue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	_, asOf, ok := h.bindProjectionQuery(c, logger)
	if !ok {
		return
	}
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}

	occs, err := h.projectionService.Overdue(c.Request.Context(), userID, asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to list overdue occurrences")
		return
	}
	c.JSON(http.StatusOK, dto.ToListOccurrencesResponse(asOf, occs))
}

func (h *occurrenceHandler) bindProjectionQuery(c *gin.Context, logger *slog.Logger) (dto.OccurrenceQueryParams, time.Time, bool) {
	var params dto.OccurrenceQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for projection", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return params, time.Time{}, false
	}
	asOf, err := asOfParam(params.AsOf, h.now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid asOf date, expected YYYY-MM-DD"})
		return params, time.Time{}, false
	}
	return params, asOf, true
}
