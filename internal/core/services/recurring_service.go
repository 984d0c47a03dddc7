package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/mma_recurring/internal/apperrors"
	"github.com/SscSPs/mma_recurring/internal/core/domain"
	portsrepo "github.com/SscSPs/mma_recurring/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mma_recurring/internal/core/ports/services"
	"github.com/SscSPs/mma_recurring/internal/core/schedule"
	"github.com/SscSPs/mma_recurring/internal/dto"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// recurringService is the registry: it owns definitions and their overrides.
type recurringService struct {
	BaseService
	txManager     portsrepo.TransactionManager
	recurringRepo portsrepo.RecurringRepositoryFacade
	overrideRepo  portsrepo.OverrideRepositoryFacade
	ledger        portsrepo.LedgerClient
	generator     portssvc.GeneratorSvc
	validate      *validator.Validate
}

// NewRecurringService creates the registry service. generator is used by
// installment plans created with generateNow.
func NewRecurringService(repos portsrepo.RepositoryProvider, generator portssvc.GeneratorSvc, options ...ServiceOption) portssvc.RecurringSvcFacade {
	v := validator.New()
	// Requests carry gin's binding tags; validate them the same way outside HTTP.
	v.SetTagName("binding")

	svc := &recurringService{
		txManager:     repos.TxManager,
		recurringRepo: repos.RecurringRepo,
		overrideRepo:  repos.OverrideRepo,
		ledger:        repos.Ledger,
		generator:     generator,
		validate:      v,
	}
	svc.apply(options)
	return svc
}

var _ portssvc.RecurringSvcFacade = (*recurringService)(nil)

func (s *recurringService) validateRequest(req any) error {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag())
			}
			return validationError("%s", strings.Join(fields, "; "))
		}
		return validationError("%v", err)
	}
	return nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dto.DateLayout, value)
	if err != nil {
		return time.Time{}, validationError("%s must be a date in YYYY-MM-DD format", field)
	}
	return t, nil
}

// validateDefinition enforces the invariants every stored definition satisfies.
func validateDefinition(def *domain.RecurringDefinition) error {
	if strings.TrimSpace(def.Name) == "" {
		return validationError("name is required")
	}
	if def.Kind != domain.KindIncome && def.Kind != domain.KindExpense {
		return validationError("kind must be INCOME or EXPENSE")
	}
	if !def.Frequency.IsValid() {
		return validationError("unsupported frequency %q", def.Frequency)
	}
	if !def.Amount.IsPositive() {
		return validationError("amount must be greater than zero")
	}
	if def.Frequency.RequiresAnchorDay() {
		if def.AnchorDay == nil {
			return validationError("anchorDay is required for %s", def.Frequency)
		}
		if *def.AnchorDay < 1 || *def.AnchorDay > 31 {
			return validationError("anchorDay must be between 1 and 31")
		}
	} else if def.AnchorDay != nil {
		return validationError("anchorDay is only allowed for MONTHLY and YEARLY")
	}
	if def.EndDate != nil && def.EndDate.Before(def.StartDate) {
		return validationError("endDate must not be before startDate")
	}
	if def.IsInstallment {
		if def.TotalInstallments < 2 {
			return validationError("totalInstallments must be at least 2")
		}
		if def.CurrentInstallment < 0 || def.CurrentInstallment > def.TotalInstallments {
			return validationError("currentInstallment out of range")
		}
	} else if def.TotalInstallments != 0 {
		return validationError("totalInstallments requires isInstallment")
	}
	if def.NotifyDaysBefore < 0 {
		return validationError("notifyDaysBefore must not be negative")
	}
	return nil
}

func (s *recurringService) CreateRecurring(ctx context.Context, userID string, req dto.CreateRecurringRequest) (*domain.RecurringDefinition, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		return nil, err
	}
	var end *time.Time
	if req.EndDate != nil {
		e, err := parseDate("endDate", *req.EndDate)
		if err != nil {
			return nil, err
		}
		end = &e
	}

	now := s.Now()
	def := domain.RecurringDefinition{
		RecurringID:       uuid.NewString(),
		UserID:            userID,
		Name:              strings.TrimSpace(req.Name),
		Kind:              req.Kind,
		Category:          req.Category,
		Amount:            req.Amount,
		AccountID:         req.AccountID,
		Frequency:         req.Frequency,
		AnchorDay:         req.AnchorDay,
		StartDate:         start,
		EndDate:           end,
		IsInstallment:     req.IsInstallment,
		TotalInstallments: req.TotalInstallments,
		IsActive:          true,
		NotifyDaysBefore:  req.NotifyDaysBefore,
		AutoGenerate:      req.AutoGenerate,
		AuditFields:       domain.NewAuditFields(userID, now),
	}
	if err := validateDefinition(&def); err != nil {
		return nil, err
	}

	if err := s.recurringRepo.SaveRecurring(ctx, def); err != nil {
		s.LogError(ctx, err, "Failed to save recurring definition", slog.String("recurring_id", def.RecurringID))
		return nil, fmt.Errorf("failed to create recurring definition: %w", err)
	}

	s.LogInfo(ctx, "Recurring definition created", slog.String("recurring_id", def.RecurringID), slog.String("frequency", string(def.Frequency)))
	return &def, nil
}

func (s *recurringService) CreateInstallmentPlan(ctx context.Context, userID string, req dto.CreateInstallmentPlanRequest) (*domain.InstallmentPlan, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	if !req.TotalAmount.IsPositive() {
		return nil, validationError("totalAmount must be greater than zero")
	}
	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		return nil, err
	}

	base, _ := domain.SplitInstallments(req.TotalAmount, req.InstallmentCount)
	if !base.IsPositive() {
		return nil, validationError("totalAmount %s is too small for %d installments", req.TotalAmount, req.InstallmentCount)
	}

	kind := req.Kind
	if kind == "" {
		kind = domain.KindExpense
	}
	anchor := start.Day()
	if req.AnchorDay != nil {
		anchor = *req.AnchorDay
	}
	total := req.TotalAmount

	now := s.Now()
	def := domain.RecurringDefinition{
		RecurringID:            uuid.NewString(),
		UserID:                 userID,
		Name:                   strings.TrimSpace(req.Name),
		Kind:                   kind,
		Category:               req.Category,
		Amount:                 base,
		AccountID:              req.AccountID,
		Frequency:              domain.Monthly,
		AnchorDay:              &anchor,
		StartDate:              start,
		IsInstallment:          true,
		TotalInstallments:      req.InstallmentCount,
		InstallmentTotalAmount: &total,
		IsActive:               true,
		NotifyDaysBefore:       req.NotifyDaysBefore,
		AutoGenerate:           req.AutoGenerate,
		AuditFields:            domain.NewAuditFields(userID, now),
	}
	if err := validateDefinition(&def); err != nil {
		return nil, err
	}
	// The plan and every installment generated with it commit together.
	var plan *domain.InstallmentPlan
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.recurringRepo.SaveRecurring(txCtx, def); err != nil {
			return fmt.Errorf("failed to save installment plan: %w", err)
		}
		plan = &domain.InstallmentPlan{Definition: def, Generated: []domain.GenerationResult{}}
		if !req.GenerateNow {
			return nil
		}

		genCtx := withCallerTx(txCtx)
		rule := schedule.RuleFor(&def)
		for i := 0; i < def.TotalInstallments; i++ {
			occ, ok := schedule.OccurrenceAt(rule, i)
			if !ok {
				break
			}
			res, err := s.generator.Generate(genCtx, userID, def.RecurringID, int(occ.Date.Month()), occ.Date.Year())
			if err != nil {
				return fmt.Errorf("failed to generate installment %d of %d: %w", i+1, def.TotalInstallments, err)
			}
			plan.Generated = append(plan.Generated, *res)
		}

		updated, err := s.recurringRepo.FindRecurringByID(txCtx, def.RecurringID)
		if err != nil {
			return fmt.Errorf("failed to reload installment plan: %w", err)
		}
		plan.Definition = *updated
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create installment plan", slog.String("recurring_id", def.RecurringID))
		return nil, err
	}

	s.LogInfo(ctx, "Installment plan created",
		slog.String("recurring_id", def.RecurringID),
		slog.Int("installments", def.TotalInstallments),
		slog.String("installment_amount", base.String()),
		slog.Int("generated", len(plan.Generated)))
	return plan, nil
}

func (s *recurringService) GetRecurring(ctx context.Context, userID, recurringID string) (*domain.RecurringDefinition, error) {
	def, err := findOwnedRecurring(ctx, s.recurringRepo, userID, recurringID)
	if err != nil {
		s.logUnexpected(ctx, err, "Failed to get recurring definition", slog.String("recurring_id", recurringID))
		return nil, err
	}
	return def, nil
}

func (s *recurringService) ListRecurring(ctx context.Context, userID string, params dto.ListRecurringParams) ([]domain.RecurringDefinition, *string, error) {
	if params.Limit == 0 {
		params.Limit = 20
	}
	if err := s.validateRequest(params); err != nil {
		return nil, nil, err
	}
	defs, next, err := s.recurringRepo.ListRecurringByUser(ctx, userID, params.Limit, params.NextToken, params.IncludeInactive)
	if err != nil {
		s.logUnexpected(ctx, err, "Failed to list recurring definitions", slog.Int("limit", params.Limit))
		return nil, nil, fmt.Errorf("failed to list recurring definitions: %w", err)
	}
	if defs == nil {
		defs = []domain.RecurringDefinition{}
	}
	return defs, next, nil
}

func (s *recurringService) EditRecurring(ctx context.Context, userID, recurringID string, req dto.UpdateRecurringRequest) (*domain.RecurringDefinition, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	var updated *domain.RecurringDefinition
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		def, err := s.recurringRepo.FindRecurringForUpdate(txCtx, recurringID)
		if err != nil {
			return err
		}
		if err := checkOwner(def, userID); err != nil {
			return err
		}

		if req.Name != nil {
			def.Name = strings.TrimSpace(*req.Name)
		}
		if req.Category != nil {
			def.Category = *req.Category
		}
		if req.Amount != nil {
			def.Amount = *req.Amount
			// A hand-set amount replaces the split of the original total.
			def.InstallmentTotalAmount = nil
		}
		if req.AccountID != nil {
			def.AccountID = req.AccountID
			if *req.AccountID == "" {
				def.AccountID = nil
			}
		}
		if req.AnchorDay != nil {
			def.AnchorDay = req.AnchorDay
		}
		if req.ClearEndDate {
			def.EndDate = nil
		} else if req.EndDate != nil {
			end, err := parseDate("endDate", *req.EndDate)
			if err != nil {
				return err
			}
			def.EndDate = &end
		}
		if req.NotifyDaysBefore != nil {
			def.NotifyDaysBefore = *req.NotifyDaysBefore
		}
		if req.AutoGenerate != nil {
			def.AutoGenerate = *req.AutoGenerate
		}
		if err := validateDefinition(def); err != nil {
			return err
		}

		def.Touch(userID, s.Now())
		if err := s.recurringRepo.UpdateRecurring(txCtx, *def); err != nil {
			return err
		}
		updated = def
		return nil
	})
	if err != nil {
		s.logUnexpected(ctx, err, "Failed to edit recurring definition", slog.String("recurring_id", recurringID))
		return nil, err
	}

	s.LogInfo(ctx, "Recurring definition updated", slog.String("recurring_id", recurringID))
	return updated, nil
}

func (s *recurringService) PauseRecurring(ctx context.Context, userID, recurringID string) (*domain.RecurringDefinition, error) {
	return s.setActive(ctx, userID, recurringID, false)
}

func (s *recurringService) ResumeRecurring(ctx context.Context, userID, recurringID string) (*domain.RecurringDefinition, error) {
	return s.setActive(ctx, userID, recurringID, true)
}

func (s *recurringService) setActive(ctx context.Context, userID, recurringID string, active bool) (*domain.RecurringDefinition, error) {
	var updated *domain.RecurringDefinition
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		def, err := s.recurringRepo.FindRecurringForUpdate(txCtx, recurringID)
		if err != nil {
			return err
		}
		if err := checkOwner(def, userID); err != nil {
			return err
		}
		if def.InstallmentsExhausted() {
			return validationError("installment plan %s is complete", recurringID)
		}
		updated = def
		if def.IsActive == active {
			return nil
		}
		def.IsActive = active
		def.Touch(userID, s.Now())
		return s.recurringRepo.UpdateRecurring(txCtx, *def)
	})
	if err != nil {
		s.logUnexpected(ctx, err, "Failed to change recurring state", slog.String("recurring_id", recurringID), slog.Bool("active", active))
		return nil, err
	}
	s.LogInfo(ctx, "Recurring state changed", slog.String("recurring_id", recurringID), slog.Bool("active", active))
	return updated, nil
}

func (s *recurringService) SoftDeleteRecurring(ctx context.Context, userID, recurringID string) (*domain.SoftDeleteResult, error) {
	result := &domain.SoftDeleteResult{RecurringID: recurringID}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		def, err := s.recurringRepo.FindRecurringForUpdate(txCtx, recurringID)
		if err != nil {
			return err
		}
		if err := checkOwner(def, userID); err != nil {
			return err
		}

		now := s.Now()
		def.IsActive = false
		def.DeletedAt = &now
		def.Touch(userID, now)
		if err := s.recurringRepo.UpdateRecurring(txCtx, *def); err != nil {
			return err
		}

		unlinked, err := s.ledger.UnlinkRecurring(txCtx, userID, recurringID)
		if err != nil {
			return collaboratorError("ledger unlink recurring", err)
		}
		deleted, err := s.overrideRepo.DeleteOverridesByRecurring(txCtx, recurringID)
		if err != nil {
			return err
		}
		result.UnlinkedLedgerTxns = unlinked
		result.DeletedOverrides = deleted
		return nil
	})
	if err != nil {
		s.logUnexpected(ctx, err, "Failed to delete recurring definition", slog.String("recurring_id", recurringID))
		return nil, err
	}

	s.LogInfo(ctx, "Recurring definition deleted",
		slog.String("recurring_id", recurringID),
		slog.Int("unlinked_ledger_txns", result.UnlinkedLedgerTxns),
		slog.Int("deleted_overrides", result.DeletedOverrides))
	return result, nil
}

func (s *recurringService) SetOverride(ctx context.Context, userID, recurringID string, month, year int, req dto.SetOverrideRequest) (*domain.PeriodOverride, error) {
	key := domain.NewPeriodKey(recurringID, month, year)
	if !key.Valid() {
		return nil, validationError("invalid period %d/%d", month, year)
	}
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	action, err := domain.NewOverrideAction(req.Type, req.Amount)
	if err != nil {
		return nil, validationError("%v", err)
	}
	if change, ok := action.(domain.AmountChangeOverride); ok && !change.Amount.IsPositive() {
		return nil, validationError("override amount must be greater than zero")
	}

	def, err := findOwnedRecurring(ctx, s.recurringRepo, userID, recurringID)
	if err != nil {
		s.logUnexpected(ctx, err, "Failed to load recurring definition", slog.String("recurring_id", recurringID))
		return nil, err
	}
	occ, ok := schedule.DueDateInPeriod(schedule.RuleFor(def), month, year)
	if !ok {
		return nil, fmt.Errorf("period %04d-%02d: %w", year, month, apperrors.ErrNotScheduled)
	}

	now := s.Now()
	saved, err := s.overrideRepo.UpsertOverride(ctx, domain.PeriodOverride{
		OverrideID:     uuid.NewString(),
		Key:            key,
		Action:         action,
		OriginalAmount: def.AmountForInstallment(occ.Index),
		Note:           req.Note,
		AuditFields:    domain.NewAuditFields(userID, now),
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to save override", slog.String("period", key.String()))
		return nil, fmt.Errorf("failed to set override: %w", err)
	}

	s.LogInfo(ctx, "Override set", slog.String("period", key.String()), slog.String("type", string(action.Type())))
	return saved, nil
}

func (s *recurringService) RemoveOverride(ctx context.Context, userID, recurringID string, month, year int) error {
	key := domain.NewPeriodKey(recurringID, month, year)
	if !key.Valid() {
		return validationError("invalid period %d/%d", month, year)
	}
	if _, err := findOwnedRecurring(ctx, s.recurringRepo, userID, recurringID); err != nil {
		s.logUnexpected(ctx, err, "Failed to load recurring definition", slog.String("recurring_id", recurringID))
		return err
	}
	if err := s.overrideRepo.DeleteOverride(ctx, key); err != nil {
		s.logUnexpected(ctx, err, "Failed to remove override", slog.String("period", key.String()))
		return err
	}
	s.LogInfo(ctx, "Override removed", slog.String("period", key.String()))
	return nil
}

func (s *recurringService) ListOverrides(ctx context.Context, userID, recurringID string) ([]domain.PeriodOverride, error) {
	if _, err := findOwnedRecurring(ctx, s.recurringRepo, userID, recurringID); err != nil {
		s.logUnexpected(ctx, err, "Failed to load recurring definition", slog.String("recurring_id", recurringID))
		return nil, err
	}
	overrides, err := s.overrideRepo.ListOverridesByRecurring(ctx, recurringID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list overrides", slog.String("recurring_id", recurringID))
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}
	if overrides == nil {
		return []domain.PeriodOverride{}, nil
	}
	return overrides, nil
}
