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
	"github.com/UP220404/cielito-home-compras/internal/pdfgen"
	"github.com/UP220404/cielito-home-compras/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateOrderDTO struct {
	RequestID        string     `json:"request_id" binding:"required"`
	QuotationID      string     `json:"quotation_id" binding:"required"`
	ExpectedDelivery *time.Time `json:"expected_delivery"`
}

type UpdateOrderStatusDTO struct {
	Status         string     `json:"status" binding:"required"`
	ActualDelivery *time.Time `json:"actual_delivery"`
}

type CreateInvoiceDTO struct {
	PurchaseOrderID string          `json:"purchase_order_id" binding:"required"`
	SupplierID      *string         `json:"supplier_id"`
	InvoiceNumber   string          `json:"invoice_number" binding:"required"`
	Subtotal        decimal.Decimal `json:"subtotal" binding:"required"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	FileURL         string          `json:"file_url"`
}

type OrderService interface {
	Create(ctx context.Context, actor Actor, req CreateOrderDTO) (*model.PurchaseOrder, error)
	UpdateStatus(ctx context.Context, actor Actor, id string, req UpdateOrderStatusDTO) (*model.PurchaseOrder, error)
	GetByID(ctx context.Context, id string) (*model.PurchaseOrder, error)
	List(ctx context.Context, filter repository.OrderFilter) ([]model.PurchaseOrder, int64, error)
	CreateInvoice(ctx context.Context, actor Actor, req CreateInvoiceDTO) (*model.Invoice, error)
	ListInvoices(ctx context.Context, orderID string) ([]model.Invoice, error)
}

type orderService struct {
	orders     repository.OrderRepository
	invoices   repository.InvoiceRepository
	requests   repository.RequestRepository
	quotations repository.QuotationRepository
	suppliers  repository.SupplierRepository
	audits     repository.AuditRepository
	txManager  repository.TransactionManager
	dispatcher notify.Dispatcher
	pdfPath    string
}

func NewOrderService(
	orders repository.OrderRepository,
	invoices repository.InvoiceRepository,
	requests repository.RequestRepository,
	quotations repository.QuotationRepository,
	suppliers repository.SupplierRepository,
	audits repository.AuditRepository,
	txManager repository.TransactionManager,
	dispatcher notify.Dispatcher,
	pdfPath string,
) OrderService {
	return &orderService{
		orders:     orders,
		invoices:   invoices,
		requests:   requests,
		quotations: quotations,
		suppliers:  suppliers,
		audits:     audits,
		txManager:  txManager,
		dispatcher: dispatcher,
		pdfPath:    pdfPath,
	}
}

// orderTransitions mirrors physical fulfillment: an order moves forward or is
// cancelled, never backward.
var orderTransitions = map[string][]string{
	model.OrderStatusEmitida:  {model.OrderStatusTransito, model.OrderStatusRecibida, model.OrderStatusCancelada},
	model.OrderStatusTransito: {model.OrderStatusRecibida, model.OrderStatusCancelada},
}

// Create materializes the purchase order for an authorized request. The order
// total covers every selected item of the request, not only the referenced
// quotation's, so budget spend reflects the whole awarded basket. The request
// moves to comprada in the same transaction; the PDF is rendered best-effort
// after commit.
func (s *orderService) Create(ctx context.Context, actor Actor, req CreateOrderDTO) (*model.PurchaseOrder, error) {
	requestID, err := uuid.Parse(req.RequestID)
	if err != nil {
		return nil, apierror.Validation("id de solicitud inválido")
	}
	quotationID, err := uuid.Parse(req.QuotationID)
	if err != nil {
		return nil, apierror.Validation("id de cotización inválido")
	}

	var order *model.PurchaseOrder
	var request *model.Request
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		request, err = s.requests.GetByIDForUpdate(txCtx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("solicitud no encontrada")
			}
			return fmt.Errorf("failed to load request: %w", err)
		}
		if request.Status != model.StatusAutorizada {
			return apierror.Precondition(request.Status, "solo se puede generar una orden para solicitudes autorizadas")
		}

		if _, err := s.orders.GetByRequest(txCtx, requestID); err == nil {
			return apierror.Conflict("ya existe una orden de compra para esta solicitud")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing order: %w", err)
		}

		quotation, err := s.quotations.GetByID(txCtx, quotationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("cotización no encontrada")
			}
			return fmt.Errorf("failed to load quotation: %w", err)
		}
		if quotation.RequestID != requestID {
			return apierror.Validation("la cotización no pertenece a esta solicitud")
		}
		if !quotation.IsSelected {
			return apierror.Precondition("", "la cotización no está completamente seleccionada")
		}

		selected, err := s.quotations.ListSelectedItemsByRequest(txCtx, requestID)
		if err != nil {
			return fmt.Errorf("failed to load selected items: %w", err)
		}
		if len(selected) == 0 {
			return apierror.Precondition("", "la solicitud no tiene partidas seleccionadas")
		}
		total := decimal.Zero
		for _, item := range selected {
			total = total.Add(item.Subtotal)
		}

		now := time.Now()
		folio, err := s.orders.NextFolio(txCtx, now.Year(), int(now.Month()))
		if err != nil {
			return fmt.Errorf("failed to generate order folio: %w", err)
		}

		order = &model.PurchaseOrder{
			Folio:            folio,
			RequestID:        requestID,
			QuotationID:      quotation.ID,
			SupplierID:       quotation.SupplierID,
			Area:             request.Area,
			TotalAmount:      total,
			Status:           model.OrderStatusEmitida,
			ExpectedDelivery: req.ExpectedDelivery,
			CreatedBy:        &actor.ID,
		}
		if order.ExpectedDelivery == nil {
			order.ExpectedDelivery = quotation.DeliveryDate
		}

		if err := s.orders.Create(txCtx, order); err != nil {
			// Unique request_id index backstops concurrent order creation.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierror.Conflict("ya existe una orden de compra para esta solicitud")
			}
			return fmt.Errorf("failed to create order: %w", err)
		}

		if err := s.requests.UpdateStatus(txCtx, requestID, model.StatusComprada); err != nil {
			return fmt.Errorf("failed to advance request to comprada: %w", err)
		}

		return s.writeAudit(txCtx, actor.ID, model.ActionCreateOrder, order, map[string]interface{}{
			"request_folio": request.Folio,
			"total":         total.StringFixed(2),
		})
	})
	if err != nil {
		return nil, err
	}

	s.generatePDF(ctx, order.ID)

	s.dispatcher.Send(ctx, []uuid.UUID{request.UserID},
		"Orden de compra "+order.Folio,
		fmt.Sprintf("Se generó la orden %s para tu solicitud %s", order.Folio, request.Folio),
		model.SeverityInfo, "/ordenes/"+order.ID.String())

	return s.orders.GetByID(ctx, order.ID)
}

// generatePDF renders the order document and stores its path. Failures are
// logged, never surfaced: the order exists regardless of its PDF.
func (s *orderService) generatePDF(ctx context.Context, orderID uuid.UUID) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		log.Error().Err(err).Str("order_id", orderID.String()).Msg("pdf: failed to reload order")
		return
	}
	if order.Request == nil || order.Supplier == nil {
		log.Error().Str("order_id", orderID.String()).Msg("pdf: order relations not loaded")
		return
	}

	lines := make([]pdfgen.OrderLine, 0)
	if order.Quotation != nil {
		materials := make(map[uuid.UUID]model.RequestItem)
		if order.Request != nil {
			for _, item := range order.Request.Items {
				materials[item.ID] = item
			}
		}
		for _, item := range order.Quotation.Items {
			if !item.IsSelected {
				continue
			}
			material, unit := "", ""
			if m, ok := materials[item.RequestItemID]; ok {
				material, unit = m.Material, m.Unit
			}
			lines = append(lines, pdfgen.OrderLine{
				Material:  material,
				Quantity:  item.Quantity.String(),
				Unit:      unit,
				UnitPrice: item.UnitPrice.StringFixed(2),
				Subtotal:  item.Subtotal.StringFixed(2),
			})
		}
	}

	path, err := pdfgen.GenerateOrderPDF(pdfgen.OrderData{
		Order:    order,
		Request:  order.Request,
		Supplier: order.Supplier,
		Lines:    lines,
	}, s.pdfPath)
	if err != nil {
		log.Error().Err(err).Str("folio", order.Folio).Msg("pdf: generation failed")
		return
	}

	order.PDFPath = path
	if err := s.orders.Update(ctx, order); err != nil {
		log.Error().Err(err).Str("folio", order.Folio).Msg("pdf: failed to store path")
	}
}

// UpdateStatus moves the order through fulfillment. Marking it recibida stamps
// the actual delivery date and closes the parent request as entregada in the
// same transaction.
func (s *orderService) UpdateStatus(ctx context.Context, actor Actor, id string, req UpdateOrderStatusDTO) (*model.PurchaseOrder, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, apierror.Validation("id de orden inválido")
	}
	if !model.ValidOrderStatus(req.Status) {
		return nil, apierror.Validation("estado de orden inválido: %q", req.Status)
	}
	if actor.Role != model.RoleComprador && actor.Role != model.RoleAdmin {
		return nil, apierror.Authorization("solo un comprador o administrador puede actualizar órdenes")
	}

	var order *model.PurchaseOrder
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err = s.orders.GetByID(txCtx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("orden de compra no encontrada")
			}
			return fmt.Errorf("failed to load order: %w", err)
		}

		allowed := false
		for _, next := range orderTransitions[order.Status] {
			if next == req.Status {
				allowed = true
				break
			}
		}
		if !allowed {
			return apierror.Precondition(order.Status, "la orden no puede pasar de %q a %q", order.Status, req.Status)
		}

		previous := order.Status
		order.Status = req.Status
		if req.Status == model.OrderStatusRecibida {
			delivered := time.Now()
			if req.ActualDelivery != nil {
				delivered = *req.ActualDelivery
			}
			order.ActualDelivery = &delivered
		}

		if err := s.orders.Update(txCtx, order); err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		if req.Status == model.OrderStatusRecibida {
			if err := s.requests.UpdateStatus(txCtx, order.RequestID, model.StatusEntregada); err != nil {
				return fmt.Errorf("failed to close request as entregada: %w", err)
			}
		}

		return s.writeAudit(txCtx, actor.ID, model.ActionUpdateOrderStatus, order, map[string]interface{}{
			"from": previous,
			"to":   req.Status,
		})
	})
	if err != nil {
		return nil, err
	}

	if order.Status == model.OrderStatusRecibida && order.Request != nil {
		s.dispatcher.Send(ctx, []uuid.UUID{order.Request.UserID},
			"Orden "+order.Folio+" recibida",
			fmt.Sprintf("Los materiales de tu solicitud %s fueron entregados", order.Request.Folio),
			model.SeverityInfo, "/ordenes/"+order.ID.String())
	}

	return order, nil
}

func (s *orderService) GetByID(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, apierror.Validation("id de orden inválido")
	}
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("orden de compra no encontrada")
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) List(ctx context.Context, filter repository.OrderFilter) ([]model.PurchaseOrder, int64, error) {
	return s.orders.List(ctx, filter)
}

// CreateInvoice registers a fiscal document against an order. One invoice per
// (order, supplier) pair; SupplierID is nil for single-supplier orders.
func (s *orderService) CreateInvoice(ctx context.Context, actor Actor, req CreateInvoiceDTO) (*model.Invoice, error) {
	orderID, err := uuid.Parse(req.PurchaseOrderID)
	if err != nil {
		return nil, apierror.Validation("id de orden inválido")
	}
	var supplierID *uuid.UUID
	if req.SupplierID != nil && *req.SupplierID != "" {
		parsed, err := uuid.Parse(*req.SupplierID)
		if err != nil {
			return nil, apierror.Validation("id de proveedor inválido")
		}
		supplierID = &parsed
	}
	if req.Subtotal.IsNegative() || req.TaxAmount.IsNegative() {
		return nil, apierror.Validation("los montos de la factura no pueden ser negativos")
	}

	invoice := &model.Invoice{
		PurchaseOrderID: orderID,
		SupplierID:      supplierID,
		InvoiceNumber:   req.InvoiceNumber,
		Subtotal:        req.Subtotal,
		TaxAmount:       req.TaxAmount,
		TotalAmount:     req.Subtotal.Add(req.TaxAmount),
		FileURL:         req.FileURL,
		UploadedBy:      &actor.ID,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.orders.GetByID(txCtx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("orden de compra no encontrada")
			}
			return fmt.Errorf("failed to load order: %w", err)
		}
		if order.Status == model.OrderStatusCancelada {
			return apierror.Precondition(order.Status, "no se pueden registrar facturas en una orden cancelada")
		}

		exists, err := s.invoices.ExistsForOrderAndSupplier(txCtx, orderID, supplierID)
		if err != nil {
			return fmt.Errorf("failed to check existing invoice: %w", err)
		}
		if exists {
			return apierror.Conflict("ya existe una factura de este proveedor para esta orden")
		}

		if err := s.invoices.Create(txCtx, invoice); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierror.Conflict("ya existe una factura de este proveedor para esta orden")
			}
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"order_folio":    order.Folio,
			"invoice_number": invoice.InvoiceNumber,
			"total":          invoice.TotalAmount.StringFixed(2),
		})
		entry := &model.AuditLog{
			UserID:     &actor.ID,
			Action:     model.ActionCreateInvoice,
			EntityID:   invoice.ID.String(),
			EntityName: invoice.InvoiceNumber,
			Details:    string(details),
		}
		if err := s.audits.Create(txCtx, entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *orderService) ListInvoices(ctx context.Context, orderID string) ([]model.Invoice, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, apierror.Validation("id de orden inválido")
	}
	return s.invoices.ListByOrder(ctx, id)
}

func (s *orderService) writeAudit(ctx context.Context, userID uuid.UUID, action string, order *model.PurchaseOrder, extra map[string]interface{}) error {
	if extra == nil {
		extra = map[string]interface{}{}
	}
	extra["request_id"] = order.RequestID.String()
	details, _ := json.Marshal(extra)
	entry := &model.AuditLog{
		UserID:     &userID,
		Action:     action,
		EntityID:   order.ID.String(),
		EntityName: order.Folio,
		Details:    string(details),
	}
	if err := s.audits.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
