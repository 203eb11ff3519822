package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/UP220404/cielito-home-compras/internal/apierror"
	"github.com/UP220404/cielito-home-compras/internal/model"
	"github.com/UP220404/cielito-home-compras/internal/notify"
	"github.com/UP220404/cielito-home-compras/internal/repository"
	"github.com/UP220404/cielito-home-compras/internal/workflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type RequestItemDTO struct {
	Material        string           `json:"material" binding:"required"`
	Specification   string           `json:"specification"`
	Quantity        decimal.Decimal  `json:"quantity" binding:"required"`
	Unit            string           `json:"unit" binding:"required"`
	ApproxCost      *decimal.Decimal `json:"approx_cost"`
	InStock         bool             `json:"in_stock"`
	StorageLocation string           `json:"storage_location"`
}

type CreateRequestDTO struct {
	NeededDate    *time.Time       `json:"needed_date"`
	Priority      string           `json:"priority"`
	Justification string           `json:"justification"`
	Items         []RequestItemDTO `json:"items"`
	// AsDraft persists the request as an editable borrador instead of
	// submitting it; ScheduledAt queues it for automatic submission.
	AsDraft     bool       `json:"as_draft"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

type ChangeStatusDTO struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

type RequestService interface {
	Create(ctx context.Context, actor Actor, req CreateRequestDTO) (*model.Request, error)
	Get(ctx context.Context, id string) (*model.Request, error)
	List(ctx context.Context, actor Actor, filter repository.RequestFilter, mineOnly bool) ([]model.Request, int64, error)
	ChangeStatus(ctx context.Context, actor Actor, id string, req ChangeStatusDTO) (*model.Request, error)
	ApproveExcess(ctx context.Context, actor Actor, id string) (*model.Request, error)
	RejectExcess(ctx context.Context, actor Actor, id string, reason string) (*model.Request, error)
	UpdateDraft(ctx context.Context, actor Actor, id string, req CreateRequestDTO) (*model.Request, error)
	SubmitDraft(ctx context.Context, actor Actor, id string) (*model.Request, error)
	SubmitScheduled(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, actor Actor, id string) error
}

type requestService struct {
	requests   repository.RequestRepository
	quotations repository.QuotationRepository
	users      repository.UserRepository
	audits     repository.AuditRepository
	budgets    BudgetService
	txManager  repository.TransactionManager
	dispatcher notify.Dispatcher
}

func NewRequestService(
	requests repository.RequestRepository,
	quotations repository.QuotationRepository,
	users repository.UserRepository,
	audits repository.AuditRepository,
	budgets BudgetService,
	txManager repository.TransactionManager,
	dispatcher notify.Dispatcher,
) RequestService {
	return &requestService{
		requests:   requests,
		quotations: quotations,
		users:      users,
		audits:     audits,
		budgets:    budgets,
		txManager:  txManager,
		dispatcher: dispatcher,
	}
}

// --- Implementation ---

func (s *requestService) Create(ctx context.Context, actor Actor, req CreateRequestDTO) (*model.Request, error) {
	if req.Priority == "" {
		req.Priority = model.PriorityNormal
	}
	if !model.ValidPriority(req.Priority) {
		return nil, apierror.Validation("prioridad desconocida: %q", req.Priority)
	}
	if req.AsDraft && req.ScheduledAt != nil {
		return nil, apierror.Validation("una solicitud no puede ser borrador y programada a la vez")
	}
	if req.ScheduledAt != nil && !req.ScheduledAt.After(time.Now()) {
		return nil, apierror.Validation("la fecha programada debe estar en el futuro")
	}
	if !req.AsDraft {
		if err := validateItems(req.Items); err != nil {
			return nil, err
		}
	}

	status := model.StatusPendiente
	switch {
	case req.AsDraft:
		status = model.StatusBorrador
	case req.ScheduledAt != nil:
		status = model.StatusProgramada
	}

	request := &model.Request{
		UserID:        actor.ID,
		Area:          actor.Area,
		RequestDate:   time.Now(),
		NeededDate:    req.NeededDate,
		Priority:      req.Priority,
		Justification: req.Justification,
		Status:        status,
		IsDraft:       req.AsDraft,
		IsScheduled:   req.ScheduledAt != nil,
		ScheduledAt:   req.ScheduledAt,
		Items:         toRequestItems(req.Items),
	}
	if req.AsDraft {
		snapshot, _ := json.Marshal(req)
		request.DraftData = string(snapshot)
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		folio, err := s.requests.NextFolio(txCtx, time.Now().Year())
		if err != nil {
			return fmt.Errorf("failed to generate folio: %w", err)
		}
		request.Folio = folio

		if err := s.requests.Create(txCtx, request); err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		return s.writeAudit(txCtx, &actor.ID, model.ActionCreateRequest, request, map[string]interface{}{
			"status":   request.Status,
			"priority": request.Priority,
			"items":    len(request.Items),
		})
	})
	if err != nil {
		return nil, err
	}

	if status == model.StatusPendiente {
		s.notifyPurchasers(ctx, "Nueva solicitud de compra",
			fmt.Sprintf("La solicitud %s del área %s está pendiente de cotización", request.Folio, request.Area),
			model.SeverityInfo, "/solicitudes/"+request.ID.String())
	}

	return s.requests.GetByID(ctx, request.ID)
}

func (s *requestService) Get(ctx context.Context, id string) (*model.Request, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return nil, apierror.Validation("id de solicitud inválido")
	}
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("solicitud no encontrada")
		}
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	return request, nil
}

func (s *requestService) List(ctx context.Context, actor Actor, filter repository.RequestFilter, mineOnly bool) ([]model.Request, int64, error) {
	// Solicitantes only ever see their own requests.
	if mineOnly || actor.Role == model.RoleSolicitante {
		filter.UserID = &actor.ID
	}
	return s.requests.List(ctx, filter)
}

// ChangeStatus is the single entry point for every manual status transition.
// The workflow rule table gates the transition; authorization/rejection stamps
// the acting director; the audit row is written in the same transaction.
func (s *requestService) ChangeStatus(ctx context.Context, actor Actor, id string, req ChangeStatusDTO) (*model.Request, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return nil, apierror.Validation("id de solicitud inválido")
	}

	var oldStatus string
	var request *model.Request

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err = s.requests.GetByIDForUpdate(txCtx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("solicitud no encontrada")
			}
			return fmt.Errorf("failed to load request: %w", err)
		}

		oldStatus = request.Status
		isOwner := request.UserID == actor.ID

		if err := workflow.Authorize(oldStatus, req.Status, actor.Role, isOwner); err != nil {
			return err
		}

		now := time.Now()
		switch req.Status {
		case model.StatusAutorizada:
			if err := s.guardBudget(txCtx, request); err != nil {
				return err
			}
			request.AuthorizedBy = &actor.ID
			request.AuthorizedAt = &now
		case model.StatusRechazada:
			if req.Reason == "" {
				return apierror.Validation("el rechazo requiere un motivo")
			}
			request.AuthorizedBy = &actor.ID
			request.AuthorizedAt = &now
			request.RejectionReason = req.Reason
		}

		request.Status = req.Status
		if err := s.requests.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to update request status: %w", err)
		}

		return s.writeAudit(txCtx, &actor.ID, model.ActionChangeStatus, request, map[string]interface{}{
			"old_status": oldStatus,
			"new_status": req.Status,
			"reason":     req.Reason,
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifyTransition(ctx, request, oldStatus)

	return s.requests.GetByID(ctx, requestID)
}

// guardBudget blocks automatic authorization when the request's estimated
// cost would push the area past 100% of its annual budget and no explicit
// director override has been recorded.
func (s *requestService) guardBudget(ctx context.Context, request *model.Request) error {
	if request.BudgetApproved {
		return nil
	}

	amount, err := s.estimatedCost(ctx, request)
	if err != nil {
		return err
	}
	if amount.IsZero() {
		return nil
	}

	availability, err := s.budgets.CheckAvailability(ctx, request.Area, amount, request.RequestDate.Year())
	if err != nil {
		// No budget assigned for the area is a distinct signal, not a block.
		if errors.Is(err, apierror.ErrNotFound) {
			return nil
		}
		return err
	}
	if availability.RequiresApproval {
		return apierror.Precondition(request.Status,
			"la solicitud excede el presupuesto del área %s (%.1f%%); requiere aprobación explícita del director",
			request.Area, availability.NewPercentage)
	}
	return nil
}

// estimatedCost derives the spend a request would commit: the selected
// quotation items when a selection exists, otherwise the approximate costs
// captured at request time.
func (s *requestService) estimatedCost(ctx context.Context, request *model.Request) (decimal.Decimal, error) {
	selected, err := s.quotations.ListSelectedItemsByRequest(ctx, request.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load selected items: %w", err)
	}
	if len(selected) > 0 {
		total := decimal.Zero
		for _, item := range selected {
			total = total.Add(item.Subtotal)
		}
		return total, nil
	}

	total := decimal.Zero
	for _, item := range request.Items {
		if item.ApproxCost != nil {
			total = total.Add(item.ApproxCost.Mul(item.Quantity))
		}
	}
	return total, nil
}

// ApproveExcess records the director override allowing a request to proceed
// despite exceeding its area's annual budget.
func (s *requestService) ApproveExcess(ctx context.Context, actor Actor, id string) (*model.Request, error) {
	if actor.Role != model.RoleDirector && actor.Role != model.RoleAdmin {
		return nil, apierror.Authorization("solo un director o administrador puede aprobar un excedente de presupuesto")
	}

	requestID, err := uuid.Parse(id)
	if err != nil {
		return nil, apierror.Validation("id de solicitud inválido")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.requests.GetByIDForUpdate(txCtx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("solicitud no encontrada")
			}
			return fmt.Errorf("failed to load request: %w", err)
		}
		if model.TerminalStatus(request.Status) {
			return apierror.Precondition(request.Status, "la solicitud está en estado terminal %q", request.Status)
		}

		request.BudgetApproved = true
		if err := s.requests.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to flag budget approval: %w", err)
		}

		return s.writeAudit(txCtx, &actor.ID, model.ActionApproveExcess, request, nil)
	})
	if err != nil {
		return nil, err
	}

	return s.requests.GetByID(ctx, requestID)
}

// RejectExcess force-rejects a request that exceeded its budget.
func (s *requestService) RejectExcess(ctx context.Context, actor Actor, id string, reason string) (*model.Request, error) {
	if actor.Role != model.RoleDirector && actor.Role != model.RoleAdmin {
		return nil, apierror.Authorization("solo un director o administrador puede rechazar un excedente de presupuesto")
	}
	if reason == "" {
		return nil, apierror.Validation("el rechazo requiere un motivo")
	}

	requestID, err := uuid.Parse(id)
	if err != nil {
		return nil, apierror.Validation("id de solicitud inválido")
	}

	var request *model.Request
	var oldStatus string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err = s.requests.GetByIDForUpdate(txCtx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("solicitud no encontrada")
			}
			return fmt.Errorf("failed to load request: %w", err)
		}
		if model.TerminalStatus(request.Status) {
			return apierror.Precondition(request.Status, "la solicitud está en estado terminal %q", request.Status)
		}

		oldStatus = request.Status
		now := time.Now()
		request.Status = model.StatusRechazada
		request.AuthorizedBy = &actor.ID
		request.AuthorizedAt = &now
		request.RejectionReason = reason
		if err := s.requests.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to reject request: %w", err)
		}

		return s.writeAudit(txCtx, &actor.ID, model.ActionRejectExcess, request, map[string]interface{}{
			"old_status": oldStatus,
			"reason":     reason,
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifyTransition(ctx, request, oldStatus)

	return s.requests.GetByID(ctx, requestID)
}

func (s *requestService) UpdateDraft(ctx context.Context, actor Actor, id string, req CreateRequestDTO) (*model.Request, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return nil, apierror.Validation("id de solicitud inválido")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.requests.GetByIDForUpdate(txCtx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("solicitud no encontrada")
			}
			return fmt.Errorf("failed to load request: %w", err)
		}
		if request.UserID != actor.ID && actor.Role != model.RoleAdmin {
			return apierror.Authorization("solo el solicitante puede editar su borrador")
		}
		if !request.IsDraft {
			return apierror.Precondition(request.Status, "la solicitud ya no es un borrador")
		}

		snapshot, _ := json.Marshal(req)
		request.DraftData = string(snapshot)
		request.NeededDate = req.NeededDate
		if req.Priority != "" {
			if !model.ValidPriority(req.Priority) {
				return apierror.Validation("prioridad desconocida: %q", req.Priority)
			}
			request.Priority = req.Priority
		}
		request.Justification = req.Justification

		if err := s.requests.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to update draft: %w", err)
		}
		return s.requests.ReplaceItems(txCtx, request.ID, toRequestItems(req.Items))
	})
	if err != nil {
		return nil, err
	}

	return s.requests.GetByID(ctx, requestID)
}

// SubmitDraft converts a borrador into a pendiente request. The draft flag is
// re-checked under a row lock so a concurrent submission (user vs. user, or
// user vs. scheduler) has exactly one winner.
func (s *requestService) SubmitDraft(ctx context.Context, actor Actor, id string) (*model.Request, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return nil, apierror.Validation("id de solicitud inválido")
	}

	var request *model.Request
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err = s.requests.GetByIDForUpdate(txCtx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("solicitud no encontrada")
			}
			return fmt.Errorf("failed to load request: %w", err)
		}
		if !request.IsDraft || request.Status != model.StatusBorrador {
			return apierror.Precondition(request.Status, "la solicitud ya fue enviada")
		}
		if err := workflow.Authorize(request.Status, model.StatusPendiente, actor.Role, request.UserID == actor.ID); err != nil {
			return err
		}

		full, err := s.requests.GetByID(txCtx, request.ID)
		if err != nil {
			return fmt.Errorf("failed to load draft items: %w", err)
		}
		if err := validateModelItems(full.Items); err != nil {
			return err
		}

		request.IsDraft = false
		request.DraftData = ""
		request.Status = model.StatusPendiente
		if err := s.requests.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to submit draft: %w", err)
		}

		return s.writeAudit(txCtx, &actor.ID, model.ActionSubmitDraft, request, nil)
	})
	if err != nil {
		return nil, err
	}

	s.notifyPurchasers(ctx, "Nueva solicitud de compra",
		fmt.Sprintf("La solicitud %s del área %s está pendiente de cotización", request.Folio, request.Area),
		model.SeverityInfo, "/solicitudes/"+request.ID.String())

	return s.requests.GetByID(ctx, requestID)
}

// SubmitScheduled promotes a due programada request to pendiente. It is the
// scheduler poller's entry point and is idempotent: the status is re-checked
// under a row lock, so a repeat call (or a concurrent manual submission)
// finds the flag already flipped and no-ops.
func (s *requestService) SubmitScheduled(ctx context.Context, id uuid.UUID) error {
	var request *model.Request
	submitted := false

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		request, err = s.requests.GetByIDForUpdate(txCtx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil // deleted since the poll, nothing to do
			}
			return fmt.Errorf("failed to load scheduled request: %w", err)
		}
		if request.Status != model.StatusProgramada {
			return nil // already transitioned
		}

		request.Status = model.StatusPendiente
		request.IsScheduled = false
		if err := s.requests.Update(txCtx, request); err != nil {
			return fmt.Errorf("failed to submit scheduled request: %w", err)
		}
		submitted = true

		return s.writeAudit(txCtx, nil, model.ActionSubmitScheduled, request, nil)
	})
	if err != nil || !submitted {
		return err
	}

	s.dispatcher.Send(ctx, []uuid.UUID{request.UserID},
		"Solicitud programada enviada",
		fmt.Sprintf("Tu solicitud %s fue enviada automáticamente y está pendiente de cotización", request.Folio),
		model.SeveritySuccess, "/solicitudes/"+request.ID.String())
	s.notifyPurchasers(ctx, "Nueva solicitud de compra",
		fmt.Sprintf("La solicitud %s del área %s está pendiente de cotización", request.Folio, request.Area),
		model.SeverityInfo, "/solicitudes/"+request.ID.String())

	return nil
}

func (s *requestService) Delete(ctx context.Context, actor Actor, id string) error {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return apierror.Validation("id de solicitud inválido")
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.requests.GetByIDForUpdate(txCtx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("solicitud no encontrada")
			}
			return fmt.Errorf("failed to load request: %w", err)
		}
		if err := workflow.CanDelete(request.Status, actor.Role, request.UserID == actor.ID); err != nil {
			return err
		}
		if err := s.requests.Delete(txCtx, requestID); err != nil {
			return fmt.Errorf("failed to delete request: %w", err)
		}
		return s.writeAudit(txCtx, &actor.ID, model.ActionDeleteRequest, request, nil)
	})
}

// --- Helpers ---

func (s *requestService) writeAudit(ctx context.Context, userID *uuid.UUID, action string, request *model.Request, extra map[string]interface{}) error {
	if extra == nil {
		extra = map[string]interface{}{}
	}
	extra["folio"] = request.Folio
	details, _ := json.Marshal(extra)
	entry := &model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   request.ID.String(),
		EntityName: request.Folio,
		Details:    string(details),
	}
	if err := s.audits.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// notifyTransition fans out after a committed status change: the requester
// always hears about it; purchasers hear about authorizations and rejections.
func (s *requestService) notifyTransition(ctx context.Context, request *model.Request, oldStatus string) {
	severity := model.SeverityInfo
	message := fmt.Sprintf("Tu solicitud %s cambió de %s a %s", request.Folio, oldStatus, request.Status)
	switch request.Status {
	case model.StatusAutorizada:
		severity = model.SeveritySuccess
	case model.StatusRechazada:
		severity = model.SeverityError
		message = fmt.Sprintf("Tu solicitud %s fue rechazada: %s", request.Folio, request.RejectionReason)
	}

	link := "/solicitudes/" + request.ID.String()
	s.dispatcher.Send(ctx, []uuid.UUID{request.UserID}, "Solicitud "+request.Folio, message, severity, link)

	if request.Status == model.StatusAutorizada || request.Status == model.StatusRechazada {
		s.notifyPurchasers(ctx, "Solicitud "+request.Folio,
			fmt.Sprintf("La solicitud %s fue %s", request.Folio, request.Status),
			model.SeverityInfo, link)
	}
}

func (s *requestService) notifyPurchasers(ctx context.Context, title, message, severity, link string) {
	purchasers, err := s.users.ListByRole(ctx, model.RoleComprador, model.RoleAdmin)
	if err != nil {
		return // fan-out is best-effort
	}
	ids := make([]uuid.UUID, 0, len(purchasers))
	for _, u := range purchasers {
		ids = append(ids, u.ID)
	}
	s.dispatcher.Send(ctx, ids, title, message, severity, link)
}

func toRequestItems(items []RequestItemDTO) []model.RequestItem {
	out := make([]model.RequestItem, 0, len(items))
	for _, item := range items {
		out = append(out, model.RequestItem{
			Material:        item.Material,
			Specification:   item.Specification,
			Quantity:        item.Quantity,
			Unit:            item.Unit,
			ApproxCost:      item.ApproxCost,
			InStock:         item.InStock,
			StorageLocation: item.StorageLocation,
		})
	}
	return out
}

func validateItems(items []RequestItemDTO) error {
	if len(items) == 0 {
		return apierror.Validation("la solicitud debe incluir al menos un material")
	}
	for _, item := range items {
		if item.Material == "" {
			return apierror.Validation("cada partida debe indicar el material")
		}
		if !item.Quantity.IsPositive() {
			return apierror.Validation("la cantidad de %q debe ser mayor a cero", item.Material)
		}
		if item.ApproxCost != nil && item.ApproxCost.IsNegative() {
			return apierror.Validation("el costo aproximado de %q no puede ser negativo", item.Material)
		}
	}
	return nil
}

func validateModelItems(items []model.RequestItem) error {
	if len(items) == 0 {
		return apierror.Validation("la solicitud debe incluir al menos un material")
	}
	for _, item := range items {
		if !item.Quantity.IsPositive() {
			return apierror.Validation("la cantidad de %q debe ser mayor a cero", item.Material)
		}
	}
	return nil
}
