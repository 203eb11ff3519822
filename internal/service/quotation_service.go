package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/UP220404/cielito-home-compras/internal/apierror"
	"github.com/UP220404/cielito-home-compras/internal/model"
	"github.com/UP220404/cielito-home-compras/internal/notify"
	"github.com/UP220404/cielito-home-compras/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type QuotationItemDTO struct {
	RequestItemID string           `json:"request_item_id" binding:"required"`
	Quantity      *decimal.Decimal `json:"quantity"` // defaults to the requested quantity
	UnitPrice     decimal.Decimal  `json:"unit_price" binding:"required"`
}

type CreateQuotationDTO struct {
	RequestID    string             `json:"request_id" binding:"required"`
	SupplierID   string             `json:"supplier_id" binding:"required"`
	DeliveryDate *time.Time         `json:"delivery_date"`
	PaymentTerms string             `json:"payment_terms"`
	ValidUntil   *time.Time         `json:"valid_until"`
	Items        []QuotationItemDTO `json:"items" binding:"required"`
}

type UpdateQuotationDTO struct {
	DeliveryDate *time.Time         `json:"delivery_date"`
	PaymentTerms string             `json:"payment_terms"`
	ValidUntil   *time.Time         `json:"valid_until"`
	Items        []QuotationItemDTO `json:"items"`
}

// SelectionDTO awards one request item to one supplier's quotation item.
type SelectionDTO struct {
	RequestItemID   string `json:"request_item_id" binding:"required"`
	QuotationItemID string `json:"quotation_item_id" binding:"required"`
}

// ComparisonRow is one request item with every supplier price quoted against
// it, ascending by unit price. Purchasers pick winners per material from this.
type ComparisonRow struct {
	RequestItem model.RequestItem `json:"request_item"`
	Offers      []ComparisonOffer `json:"offers"`
}

type ComparisonOffer struct {
	QuotationItemID uuid.UUID       `json:"quotation_item_id"`
	QuotationID     uuid.UUID       `json:"quotation_id"`
	SupplierID      uuid.UUID       `json:"supplier_id"`
	SupplierName    string          `json:"supplier_name"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	IsSelected      bool            `json:"is_selected"`
}

// SelectedItem is one line of the final basket used to build the purchase
// order and the per-supplier invoice splits.
type SelectedItem struct {
	QuotationItemID uuid.UUID       `json:"quotation_item_id"`
	QuotationID     uuid.UUID       `json:"quotation_id"`
	SupplierID      uuid.UUID       `json:"supplier_id"`
	SupplierName    string          `json:"supplier_name"`
	Material        string          `json:"material"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

type SelectedItemsView struct {
	Items             []SelectedItem             `json:"items"`
	TotalAmount       decimal.Decimal            `json:"total_amount"`
	TotalsBySupplier  map[string]decimal.Decimal `json:"totals_by_supplier"`
	SupplierCount     int                        `json:"supplier_count"`
	FullQuotationIDs  []uuid.UUID                `json:"fully_selected_quotation_ids"`
}

type QuotationService interface {
	Create(ctx context.Context, actor Actor, req CreateQuotationDTO) (*model.Quotation, error)
	Update(ctx context.Context, actor Actor, id string, req UpdateQuotationDTO) (*model.Quotation, error)
	Delete(ctx context.Context, actor Actor, id string) error
	DeleteItem(ctx context.Context, actor Actor, itemID string) error
	ListByRequest(ctx context.Context, requestID string) ([]model.Quotation, error)
	ComparisonView(ctx context.Context, requestID string) ([]ComparisonRow, error)
	SelectItems(ctx context.Context, actor Actor, requestID string, selections []SelectionDTO) error
	SelectedItems(ctx context.Context, requestID string) (*SelectedItemsView, error)
}

type quotationService struct {
	quotations repository.QuotationRepository
	requests   repository.RequestRepository
	suppliers  repository.SupplierRepository
	audits     repository.AuditRepository
	txManager  repository.TransactionManager
	dispatcher notify.Dispatcher
}

func NewQuotationService(
	quotations repository.QuotationRepository,
	requests repository.RequestRepository,
	suppliers repository.SupplierRepository,
	audits repository.AuditRepository,
	txManager repository.TransactionManager,
	dispatcher notify.Dispatcher,
) QuotationService {
	return &quotationService{
		quotations: quotations,
		requests:   requests,
		suppliers:  suppliers,
		audits:     audits,
		txManager:  txManager,
		dispatcher: dispatcher,
	}
}

// --- Implementation ---

// Create registers a supplier's quotation against a request. The first
// quotation for a pendiente request moves it to cotizando as a side effect.
func (s *quotationService) Create(ctx context.Context, actor Actor, req CreateQuotationDTO) (*model.Quotation, error) {
	requestID, err := uuid.Parse(req.RequestID)
	if err != nil {
		return nil, apierror.Validation("id de solicitud inválido")
	}
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return nil, apierror.Validation("id de proveedor inválido")
	}
	if len(req.Items) == 0 {
		return nil, apierror.Validation("la cotización debe incluir al menos una partida")
	}

	quotation := &model.Quotation{
		RequestID:    requestID,
		SupplierID:   supplierID,
		QuotedBy:     &actor.ID,
		DeliveryDate: req.DeliveryDate,
		PaymentTerms: req.PaymentTerms,
		ValidUntil:   req.ValidUntil,
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
		if request.Status != model.StatusPendiente && request.Status != model.StatusCotizando {
			return apierror.Precondition(request.Status, "solo se pueden cotizar solicitudes pendientes o en cotización")
		}

		supplier, err := s.suppliers.GetByID(txCtx, supplierID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("proveedor no encontrado")
			}
			return fmt.Errorf("failed to load supplier: %w", err)
		}
		if !supplier.IsActive {
			return apierror.Validation("el proveedor %s está inactivo", supplier.Name)
		}

		if _, err := s.quotations.GetByRequestAndSupplier(txCtx, requestID, supplierID); err == nil {
			return apierror.Conflict("ya existe una cotización de este proveedor para esta solicitud")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing quotation: %w", err)
		}

		items, total, err := s.buildItems(txCtx, request, req.Items)
		if err != nil {
			return err
		}
		quotation.Items = items
		quotation.TotalAmount = total

		if err := s.quotations.Create(txCtx, quotation); err != nil {
			// Unique (request, supplier) index backstops the racing purchaser.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierror.Conflict("ya existe una cotización de este proveedor para esta solicitud")
			}
			return fmt.Errorf("failed to create quotation: %w", err)
		}

		if request.Status == model.StatusPendiente {
			if err := s.requests.UpdateStatus(txCtx, requestID, model.StatusCotizando); err != nil {
				return fmt.Errorf("failed to advance request to cotizando: %w", err)
			}
		}

		return s.writeAudit(txCtx, actor.ID, model.ActionCreateQuotation, quotation, map[string]interface{}{
			"supplier": supplier.Name,
			"total":    total.StringFixed(2),
			"items":    len(items),
		})
	})
	if err != nil {
		return nil, err
	}

	if request.Status == model.StatusPendiente {
		s.dispatcher.Send(ctx, []uuid.UUID{request.UserID},
			"Solicitud "+request.Folio,
			fmt.Sprintf("Tu solicitud %s está siendo cotizada", request.Folio),
			model.SeverityInfo, "/solicitudes/"+request.ID.String())
	}

	return s.quotations.GetByID(ctx, quotation.ID)
}

// buildItems resolves submitted lines against the request's own items,
// defaulting quantity to the requested quantity. Unknown request items are
// skipped with a log entry rather than failing the whole quotation.
func (s *quotationService) buildItems(ctx context.Context, request *model.Request, dtos []QuotationItemDTO) ([]model.QuotationItem, decimal.Decimal, error) {
	full, err := s.requests.GetByID(ctx, request.ID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to load request items: %w", err)
	}
	byID := make(map[uuid.UUID]model.RequestItem, len(full.Items))
	for _, item := range full.Items {
		byID[item.ID] = item
	}

	items := make([]model.QuotationItem, 0, len(dtos))
	total := decimal.Zero
	for _, dto := range dtos {
		requestItemID, err := uuid.Parse(dto.RequestItemID)
		if err != nil {
			return nil, decimal.Zero, apierror.Validation("id de partida inválido: %q", dto.RequestItemID)
		}
		requestItem, ok := byID[requestItemID]
		if !ok {
			log.Warn().
				Str("request_id", request.ID.String()).
				Str("request_item_id", requestItemID.String()).
				Msg("quotation references unknown request item, skipping")
			continue
		}
		if dto.UnitPrice.IsNegative() {
			return nil, decimal.Zero, apierror.Validation("el precio unitario de %q no puede ser negativo", requestItem.Material)
		}

		quantity := requestItem.Quantity
		if dto.Quantity != nil {
			if !dto.Quantity.IsPositive() {
				return nil, decimal.Zero, apierror.Validation("la cantidad cotizada de %q debe ser mayor a cero", requestItem.Material)
			}
			quantity = *dto.Quantity
		}

		subtotal := quantity.Mul(dto.UnitPrice)
		items = append(items, model.QuotationItem{
			RequestItemID: requestItemID,
			Quantity:      quantity,
			UnitPrice:     dto.UnitPrice,
			Subtotal:      subtotal,
		})
		total = total.Add(subtotal)
	}

	if len(items) == 0 {
		return nil, decimal.Zero, apierror.Validation("ninguna partida de la cotización corresponde a la solicitud")
	}
	return items, total, nil
}

// Update replaces a quotation's terms and lines. Allowed only while the
// quotation is not selected and its request is not yet authorized.
func (s *quotationService) Update(ctx context.Context, actor Actor, id string, req UpdateQuotationDTO) (*model.Quotation, error) {
	quotationID, err := uuid.Parse(id)
	if err != nil {
		return nil, apierror.Validation("id de cotización inválido")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		quotation, request, err := s.loadMutable(txCtx, quotationID)
		if err != nil {
			return err
		}

		quotation.DeliveryDate = req.DeliveryDate
		quotation.PaymentTerms = req.PaymentTerms
		quotation.ValidUntil = req.ValidUntil

		if len(req.Items) > 0 {
			items, total, err := s.buildItems(txCtx, request, req.Items)
			if err != nil {
				return err
			}
			for i := range quotation.Items {
				if err := s.quotations.DeleteItem(txCtx, quotation.Items[i].ID); err != nil {
					return fmt.Errorf("failed to replace quotation items: %w", err)
				}
			}
			for i := range items {
				items[i].QuotationID = quotation.ID
			}
			quotation.Items = items
			quotation.TotalAmount = total
		}

		if err := s.quotations.Update(txCtx, quotation); err != nil {
			return fmt.Errorf("failed to update quotation: %w", err)
		}

		return s.writeAudit(txCtx, actor.ID, model.ActionUpdateQuotation, quotation, nil)
	})
	if err != nil {
		return nil, err
	}

	return s.quotations.GetByID(ctx, quotationID)
}

// Delete removes a quotation. Deleting the last quotation of a cotizando
// request reverts the request to pendiente.
func (s *quotationService) Delete(ctx context.Context, actor Actor, id string) error {
	quotationID, err := uuid.Parse(id)
	if err != nil {
		return apierror.Validation("id de cotización inválido")
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		quotation, request, err := s.loadMutable(txCtx, quotationID)
		if err != nil {
			return err
		}

		if err := s.quotations.Delete(txCtx, quotationID); err != nil {
			return fmt.Errorf("failed to delete quotation: %w", err)
		}

		remaining, err := s.quotations.CountByRequest(txCtx, quotation.RequestID)
		if err != nil {
			return fmt.Errorf("failed to count remaining quotations: %w", err)
		}
		if remaining == 0 && request.Status == model.StatusCotizando {
			if err := s.requests.UpdateStatus(txCtx, request.ID, model.StatusPendiente); err != nil {
				return fmt.Errorf("failed to revert request to pendiente: %w", err)
			}
		}

		return s.writeAudit(txCtx, actor.ID, model.ActionDeleteQuotation, quotation, map[string]interface{}{
			"remaining": remaining,
		})
	})
}

// DeleteItem removes a single quotation line and cascades: the last line
// removes its quotation, and the last quotation reverts the request to
// pendiente; otherwise the quotation total is recomputed from what remains.
func (s *quotationService) DeleteItem(ctx context.Context, actor Actor, itemID string) error {
	quotationItemID, err := uuid.Parse(itemID)
	if err != nil {
		return apierror.Validation("id de partida de cotización inválido")
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		item, err := s.quotations.GetItem(txCtx, quotationItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("partida de cotización no encontrada")
			}
			return fmt.Errorf("failed to load quotation item: %w", err)
		}

		quotation, request, err := s.loadMutable(txCtx, item.QuotationID)
		if err != nil {
			return err
		}

		if len(quotation.Items) <= 1 {
			// Last line: the quotation goes with it.
			if err := s.quotations.Delete(txCtx, quotation.ID); err != nil {
				return fmt.Errorf("failed to delete emptied quotation: %w", err)
			}
			remaining, err := s.quotations.CountByRequest(txCtx, quotation.RequestID)
			if err != nil {
				return fmt.Errorf("failed to count remaining quotations: %w", err)
			}
			if remaining == 0 && request.Status == model.StatusCotizando {
				if err := s.requests.UpdateStatus(txCtx, request.ID, model.StatusPendiente); err != nil {
					return fmt.Errorf("failed to revert request to pendiente: %w", err)
				}
			}
			return s.writeAudit(txCtx, actor.ID, model.ActionDeleteQuotation, quotation, map[string]interface{}{
				"cascade": "last_item",
			})
		}

		if err := s.quotations.DeleteItem(txCtx, quotationItemID); err != nil {
			return fmt.Errorf("failed to delete quotation item: %w", err)
		}

		total := decimal.Zero
		for _, it := range quotation.Items {
			if it.ID == quotationItemID {
				continue
			}
			total = total.Add(it.Subtotal)
		}
		quotation.TotalAmount = total
		if err := s.quotations.Update(txCtx, quotation); err != nil {
			return fmt.Errorf("failed to recompute quotation total: %w", err)
		}

		return s.writeAudit(txCtx, actor.ID, model.ActionUpdateQuotation, quotation, map[string]interface{}{
			"deleted_item": quotationItemID.String(),
			"new_total":    total.StringFixed(2),
		})
	})
}

func (s *quotationService) ListByRequest(ctx context.Context, requestID string) ([]model.Quotation, error) {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return nil, apierror.Validation("id de solicitud inválido")
	}
	return s.quotations.ListByRequest(ctx, id)
}

// ComparisonView groups every supplier's price under each request item,
// cheapest first. This is the structure purchasers award winners from.
func (s *quotationService) ComparisonView(ctx context.Context, requestID string) ([]ComparisonRow, error) {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return nil, apierror.Validation("id de solicitud inválido")
	}

	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("solicitud no encontrada")
		}
		return nil, fmt.Errorf("failed to load request: %w", err)
	}

	quotations, err := s.quotations.ListByRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load quotations: %w", err)
	}

	offersByItem := make(map[uuid.UUID][]ComparisonOffer)
	for _, q := range quotations {
		supplierName := ""
		if q.Supplier != nil {
			supplierName = q.Supplier.Name
		}
		for _, item := range q.Items {
			offersByItem[item.RequestItemID] = append(offersByItem[item.RequestItemID], ComparisonOffer{
				QuotationItemID: item.ID,
				QuotationID:     q.ID,
				SupplierID:      q.SupplierID,
				SupplierName:    supplierName,
				Quantity:        item.Quantity,
				UnitPrice:       item.UnitPrice,
				Subtotal:        item.Subtotal,
				IsSelected:      item.IsSelected,
			})
		}
	}

	rows := make([]ComparisonRow, 0, len(request.Items))
	for _, requestItem := range request.Items {
		offers := offersByItem[requestItem.ID]
		sort.Slice(offers, func(i, j int) bool {
			return offers[i].UnitPrice.LessThan(offers[j].UnitPrice)
		})
		rows = append(rows, ComparisonRow{RequestItem: requestItem, Offers: offers})
	}
	return rows, nil
}

// SelectItems awards request items to quotation items across suppliers.
// The clear, set, and aggregate recompute run as one transaction so a reader
// never observes a half-applied selection. Last writer wins on concurrent
// calls, which is acceptable given the always-clear-then-set design.
func (s *quotationService) SelectItems(ctx context.Context, actor Actor, requestID string, selections []SelectionDTO) error {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return apierror.Validation("id de solicitud inválido")
	}
	if len(selections) == 0 {
		return apierror.Validation("debe seleccionar al menos una partida")
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err := s.requests.GetByIDForUpdate(txCtx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("solicitud no encontrada")
			}
			return fmt.Errorf("failed to load request: %w", err)
		}
		switch request.Status {
		case model.StatusPendiente, model.StatusCotizando, model.StatusAutorizada:
			// selection may be prepared before formal authorization
		default:
			return apierror.Precondition(request.Status, "no se pueden seleccionar partidas en estado %q", request.Status)
		}

		quotations, err := s.quotations.ListByRequest(txCtx, id)
		if err != nil {
			return fmt.Errorf("failed to load quotations: %w", err)
		}

		type itemRef struct {
			quotationID   uuid.UUID
			requestItemID uuid.UUID
		}
		itemIndex := make(map[uuid.UUID]itemRef)
		for _, q := range quotations {
			for _, item := range q.Items {
				itemIndex[item.ID] = itemRef{quotationID: q.ID, requestItemID: item.RequestItemID}
			}
		}

		selectedIDs := make([]uuid.UUID, 0, len(selections))
		seenRequestItems := make(map[uuid.UUID]bool, len(selections))
		for _, sel := range selections {
			requestItemID, err := uuid.Parse(sel.RequestItemID)
			if err != nil {
				return apierror.Validation("id de partida inválido: %q", sel.RequestItemID)
			}
			quotationItemID, err := uuid.Parse(sel.QuotationItemID)
			if err != nil {
				return apierror.Validation("id de partida de cotización inválido: %q", sel.QuotationItemID)
			}

			ref, ok := itemIndex[quotationItemID]
			if !ok {
				return apierror.NotFound("la partida de cotización %s no pertenece a esta solicitud", quotationItemID)
			}
			if ref.requestItemID != requestItemID {
				return apierror.Validation("la partida de cotización %s no corresponde al material indicado", quotationItemID)
			}
			if seenRequestItems[requestItemID] {
				return apierror.Validation("el material %s tiene más de una selección", requestItemID)
			}
			seenRequestItems[requestItemID] = true
			selectedIDs = append(selectedIDs, quotationItemID)
		}

		// Clear, then set, then recompute each quotation's aggregate flag.
		if err := s.quotations.ClearSelections(txCtx, id); err != nil {
			return fmt.Errorf("failed to clear selections: %w", err)
		}
		if err := s.quotations.MarkItemsSelected(txCtx, selectedIDs); err != nil {
			return fmt.Errorf("failed to mark selected items: %w", err)
		}

		selectedByQuotation := make(map[uuid.UUID]int)
		for _, itemID := range selectedIDs {
			selectedByQuotation[itemIndex[itemID].quotationID]++
		}
		for _, q := range quotations {
			fullySelected := len(q.Items) > 0 && selectedByQuotation[q.ID] == len(q.Items)
			if err := s.quotations.SetQuotationSelected(txCtx, q.ID, fullySelected); err != nil {
				return fmt.Errorf("failed to recompute quotation aggregate: %w", err)
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"folio":      request.Folio,
			"selections": len(selectedIDs),
		})
		entry := &model.AuditLog{
			UserID:     &actor.ID,
			Action:     model.ActionSelectItems,
			EntityID:   request.ID.String(),
			EntityName: request.Folio,
			Details:    string(details),
		}
		if err := s.audits.Create(txCtx, entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
}

// SelectedItems returns the final basket: every selected quotation item with
// its supplier, plus per-supplier totals for invoice splits.
func (s *quotationService) SelectedItems(ctx context.Context, requestID string) (*SelectedItemsView, error) {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return nil, apierror.Validation("id de solicitud inválido")
	}

	quotations, err := s.quotations.ListByRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load quotations: %w", err)
	}

	view := &SelectedItemsView{
		TotalsBySupplier: make(map[string]decimal.Decimal),
	}
	suppliers := make(map[uuid.UUID]bool)

	for _, q := range quotations {
		supplierName := ""
		if q.Supplier != nil {
			supplierName = q.Supplier.Name
		}
		if q.IsSelected {
			view.FullQuotationIDs = append(view.FullQuotationIDs, q.ID)
		}
		for _, item := range q.Items {
			if !item.IsSelected {
				continue
			}
			material := ""
			if item.RequestItem != nil {
				material = item.RequestItem.Material
			}
			view.Items = append(view.Items, SelectedItem{
				QuotationItemID: item.ID,
				QuotationID:     q.ID,
				SupplierID:      q.SupplierID,
				SupplierName:    supplierName,
				Material:        material,
				Quantity:        item.Quantity,
				UnitPrice:       item.UnitPrice,
				Subtotal:        item.Subtotal,
			})
			view.TotalAmount = view.TotalAmount.Add(item.Subtotal)
			key := q.SupplierID.String()
			view.TotalsBySupplier[key] = view.TotalsBySupplier[key].Add(item.Subtotal)
			suppliers[q.SupplierID] = true
		}
	}
	view.SupplierCount = len(suppliers)
	return view, nil
}

// --- Helpers ---

// loadMutable fetches a quotation and its request, enforcing the shared
// mutability rule: not selected, request not yet authorized.
func (s *quotationService) loadMutable(ctx context.Context, quotationID uuid.UUID) (*model.Quotation, *model.Request, error) {
	quotation, err := s.quotations.GetByID(ctx, quotationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apierror.NotFound("cotización no encontrada")
		}
		return nil, nil, fmt.Errorf("failed to load quotation: %w", err)
	}
	if quotation.IsSelected {
		return nil, nil, apierror.Precondition("", "una cotización seleccionada no puede modificarse")
	}

	request, err := s.requests.GetByIDForUpdate(ctx, quotation.RequestID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load request: %w", err)
	}
	if request.Status == model.StatusAutorizada || request.Status == model.StatusComprada || request.Status == model.StatusEntregada {
		return nil, nil, apierror.Precondition(request.Status, "la solicitud ya fue autorizada; la cotización no puede modificarse")
	}

	return quotation, request, nil
}

func (s *quotationService) writeAudit(ctx context.Context, userID uuid.UUID, action string, quotation *model.Quotation, extra map[string]interface{}) error {
	if extra == nil {
		extra = map[string]interface{}{}
	}
	extra["request_id"] = quotation.RequestID.String()
	extra["supplier_id"] = quotation.SupplierID.String()
	details, _ := json.Marshal(extra)
	entry := &model.AuditLog{
		UserID:   &userID,
		Action:   action,
		EntityID: quotation.ID.String(),
		Details:  string(details),
	}
	if err := s.audits.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
