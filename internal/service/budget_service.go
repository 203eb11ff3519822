package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/UP220404/cielito-home-compras/internal/apierror"
	"github.com/UP220404/cielito-home-compras/internal/model"
	"github.com/UP220404/cielito-home-compras/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type BudgetDTO struct {
	Area        string          `json:"area" binding:"required"`
	Year        int             `json:"year" binding:"required"`
	TotalAmount decimal.Decimal `json:"total_amount" binding:"required"`
}

// Availability is the result of a budget check. The check is idempotent and
// side-effect-free: only a realized purchase order ever changes computed spend.
type Availability struct {
	Area             string          `json:"area"`
	Year             int             `json:"year"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	SpentAmount      decimal.Decimal `json:"spent_amount"`
	Available        decimal.Decimal `json:"available"`
	RequestedAmount  decimal.Decimal `json:"requested_amount"`
	NewPercentage    float64         `json:"new_percentage"`
	AlertLevel       string          `json:"alert_level"`
	RequiresApproval bool            `json:"requires_approval"`
}

type BudgetService interface {
	Create(ctx context.Context, actor Actor, req BudgetDTO) (*model.Budget, error)
	Update(ctx context.Context, actor Actor, id string, req BudgetDTO) (*model.Budget, error)
	Delete(ctx context.Context, actor Actor, id string) error
	List(ctx context.Context, year int) ([]model.Budget, error)
	CheckAvailability(ctx context.Context, area string, amount decimal.Decimal, year int) (*Availability, error)
	Overview(ctx context.Context, year int) ([]Availability, error)
}

type budgetService struct {
	budgets   repository.BudgetRepository
	audits    repository.AuditRepository
	txManager repository.TransactionManager
}

func NewBudgetService(budgets repository.BudgetRepository, audits repository.AuditRepository, txManager repository.TransactionManager) BudgetService {
	return &budgetService{budgets: budgets, audits: audits, txManager: txManager}
}

// EvaluateBudget computes the availability tiers for a prospective spend.
// Pure arithmetic, shared by CheckAvailability and the overview endpoint.
func EvaluateBudget(area string, year int, total, spent, requested decimal.Decimal) Availability {
	newSpent := spent.Add(requested)
	pct := 0.0
	if total.IsPositive() {
		pct, _ = newSpent.Div(total).Mul(decimal.NewFromInt(100)).Float64()
	} else if newSpent.IsPositive() {
		pct = 100
	}

	level := model.BudgetAlertNone
	switch {
	case pct >= 100:
		level = model.BudgetAlertCritical
	case pct >= 90:
		level = model.BudgetAlertWarning
	case pct >= 75:
		level = model.BudgetAlertInfo
	}

	return Availability{
		Area:             area,
		Year:             year,
		TotalAmount:      total,
		SpentAmount:      spent,
		Available:        total.Sub(spent),
		RequestedAmount:  requested,
		NewPercentage:    pct,
		AlertLevel:       level,
		RequiresApproval: pct >= 100,
	}
}

func (s *budgetService) Create(ctx context.Context, actor Actor, req BudgetDTO) (*model.Budget, error) {
	if err := requireDirector(actor); err != nil {
		return nil, err
	}
	if !req.TotalAmount.IsPositive() {
		return nil, apierror.Validation("el monto del presupuesto debe ser mayor a cero")
	}

	if _, err := s.budgets.GetByAreaYear(ctx, req.Area, req.Year); err == nil {
		return nil, apierror.Conflict("ya existe un presupuesto para el área %s en %d", req.Area, req.Year)
	}

	budget := &model.Budget{Area: req.Area, Year: req.Year, TotalAmount: req.TotalAmount}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.budgets.Create(txCtx, budget); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierror.Conflict("ya existe un presupuesto para el área %s en %d", req.Area, req.Year)
			}
			return fmt.Errorf("failed to create budget: %w", err)
		}
		return s.writeAudit(txCtx, actor.ID, model.ActionCreateBudget, budget)
	})
	if err != nil {
		return nil, err
	}
	return budget, nil
}

func (s *budgetService) Update(ctx context.Context, actor Actor, id string, req BudgetDTO) (*model.Budget, error) {
	if err := requireDirector(actor); err != nil {
		return nil, err
	}
	budgetID, err := uuid.Parse(id)
	if err != nil {
		return nil, apierror.Validation("id de presupuesto inválido")
	}
	if !req.TotalAmount.IsPositive() {
		return nil, apierror.Validation("el monto del presupuesto debe ser mayor a cero")
	}

	var budget *model.Budget
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		budget, err = s.budgets.GetByID(txCtx, budgetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("presupuesto no encontrado")
			}
			return fmt.Errorf("failed to load budget: %w", err)
		}
		budget.TotalAmount = req.TotalAmount
		if err := s.budgets.Update(txCtx, budget); err != nil {
			return fmt.Errorf("failed to update budget: %w", err)
		}
		return s.writeAudit(txCtx, actor.ID, model.ActionUpdateBudget, budget)
	})
	if err != nil {
		return nil, err
	}
	return budget, nil
}

func (s *budgetService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := requireDirector(actor); err != nil {
		return err
	}
	budgetID, err := uuid.Parse(id)
	if err != nil {
		return apierror.Validation("id de presupuesto inválido")
	}
	if err := s.budgets.Delete(ctx, budgetID); err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return nil
}

func (s *budgetService) List(ctx context.Context, year int) ([]model.Budget, error) {
	return s.budgets.List(ctx, year)
}

// CheckAvailability loads the area's allocation and computes what committing
// amount would do to it. A missing budget row means "no budget assigned" —
// surfaced as NotFound, distinct from a zero-amount budget.
func (s *budgetService) CheckAvailability(ctx context.Context, area string, amount decimal.Decimal, year int) (*Availability, error) {
	if amount.IsNegative() {
		return nil, apierror.Validation("el monto a verificar no puede ser negativo")
	}
	if year == 0 {
		year = time.Now().Year()
	}

	budget, err := s.budgets.GetByAreaYear(ctx, area, year)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("el área %s no tiene presupuesto asignado para %d", area, year)
		}
		return nil, fmt.Errorf("failed to load budget: %w", err)
	}

	spent, err := s.budgets.CommittedSpend(ctx, area, year)
	if err != nil {
		return nil, err
	}

	availability := EvaluateBudget(area, year, budget.TotalAmount, spent, amount)
	return &availability, nil
}

// Overview returns the current standing of every budget for the year.
func (s *budgetService) Overview(ctx context.Context, year int) ([]Availability, error) {
	if year == 0 {
		year = time.Now().Year()
	}
	budgets, err := s.budgets.List(ctx, year)
	if err != nil {
		return nil, err
	}

	out := make([]Availability, 0, len(budgets))
	for _, b := range budgets {
		spent, err := s.budgets.CommittedSpend(ctx, b.Area, b.Year)
		if err != nil {
			return nil, err
		}
		out = append(out, EvaluateBudget(b.Area, b.Year, b.TotalAmount, spent, decimal.Zero))
	}
	return out, nil
}

func (s *budgetService) writeAudit(ctx context.Context, userID uuid.UUID, action string, budget *model.Budget) error {
	details, _ := json.Marshal(map[string]interface{}{
		"area":  budget.Area,
		"year":  budget.Year,
		"total": budget.TotalAmount.StringFixed(2),
	})
	entry := &model.AuditLog{
		UserID:     &userID,
		Action:     action,
		EntityID:   budget.ID.String(),
		EntityName: fmt.Sprintf("%s/%d", budget.Area, budget.Year),
		Details:    string(details),
	}
	if err := s.audits.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func requireDirector(actor Actor) error {
	if actor.Role != model.RoleDirector && actor.Role != model.RoleAdmin {
		return apierror.Authorization("solo un director o administrador puede administrar presupuestos")
	}
	return nil
}
