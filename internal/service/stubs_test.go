package service

// In-memory repository fakes shared by the service tests. They implement just
// enough of each repository contract to exercise the business rules without a
// database; transactional semantics collapse to direct execution.

import (
	"context"
	"fmt"
	"time"

	"github.com/UP220404/cielito-home-compras/internal/model"
	"github.com/UP220404/cielito-home-compras/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type memTxManager struct{}

func (memTxManager) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// --- dispatcher ---

type sentNotification struct {
	UserIDs  []uuid.UUID
	Title    string
	Message  string
	Severity string
}

type memDispatcher struct {
	sent []sentNotification
}

func (d *memDispatcher) Send(_ context.Context, userIDs []uuid.UUID, title, message, severity, _ string) {
	d.sent = append(d.sent, sentNotification{UserIDs: userIDs, Title: title, Message: message, Severity: severity})
}

// --- requests ---

type memRequestRepo struct {
	requests map[uuid.UUID]*model.Request

	// folioSeq only grows, mirroring the MAX(folio) derivation in the SQL
	// repository: numbers freed by deletion are never reissued.
	folioSeq int
}

func newMemRequestRepo() *memRequestRepo {
	return &memRequestRepo{requests: make(map[uuid.UUID]*model.Request)}
}

func (r *memRequestRepo) Create(_ context.Context, request *model.Request) error {
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	for i := range request.Items {
		if request.Items[i].ID == uuid.Nil {
			request.Items[i].ID = uuid.New()
		}
		request.Items[i].RequestID = request.ID
	}
	r.requests[request.ID] = request
	return nil
}

func (r *memRequestRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Request, error) {
	request, ok := r.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return request, nil
}

func (r *memRequestRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	return r.GetByID(ctx, id)
}

func (r *memRequestRepo) List(_ context.Context, filter repository.RequestFilter) ([]model.Request, int64, error) {
	var out []model.Request
	for _, request := range r.requests {
		if request.IsDraft {
			continue
		}
		if filter.Status != "" && request.Status != filter.Status {
			continue
		}
		if filter.Area != "" && request.Area != filter.Area {
			continue
		}
		if filter.UserID != nil && request.UserID != *filter.UserID {
			continue
		}
		out = append(out, *request)
	}
	return out, int64(len(out)), nil
}

func (r *memRequestRepo) ListDueScheduled(_ context.Context, now time.Time, limit int) ([]model.Request, error) {
	var out []model.Request
	for _, request := range r.requests {
		if request.IsScheduled && request.Status == model.StatusProgramada &&
			request.ScheduledAt != nil && !request.ScheduledAt.After(now) {
			out = append(out, *request)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *memRequestRepo) Update(_ context.Context, request *model.Request) error {
	if _, ok := r.requests[request.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.requests[request.ID] = request
	return nil
}

func (r *memRequestRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	request, ok := r.requests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	request.Status = status
	return nil
}

func (r *memRequestRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.requests, id)
	return nil
}

func (r *memRequestRepo) ReplaceItems(_ context.Context, requestID uuid.UUID, items []model.RequestItem) error {
	request, ok := r.requests[requestID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].RequestID = requestID
	}
	request.Items = items
	return nil
}

func (r *memRequestRepo) NextFolio(_ context.Context, year int) (string, error) {
	r.folioSeq++
	return fmt.Sprintf("SOL-%d-%05d", year, r.folioSeq), nil
}

// --- quotations ---

type memQuotationRepo struct {
	quotations map[uuid.UUID]*model.Quotation
}

func newMemQuotationRepo() *memQuotationRepo {
	return &memQuotationRepo{quotations: make(map[uuid.UUID]*model.Quotation)}
}

func (r *memQuotationRepo) Create(_ context.Context, quotation *model.Quotation) error {
	if quotation.ID == uuid.Nil {
		quotation.ID = uuid.New()
	}
	for i := range quotation.Items {
		if quotation.Items[i].ID == uuid.Nil {
			quotation.Items[i].ID = uuid.New()
		}
		quotation.Items[i].QuotationID = quotation.ID
	}
	r.quotations[quotation.ID] = quotation
	return nil
}

func (r *memQuotationRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Quotation, error) {
	quotation, ok := r.quotations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return quotation, nil
}

func (r *memQuotationRepo) GetByRequestAndSupplier(_ context.Context, requestID, supplierID uuid.UUID) (*model.Quotation, error) {
	for _, q := range r.quotations {
		if q.RequestID == requestID && q.SupplierID == supplierID {
			return q, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memQuotationRepo) ListByRequest(_ context.Context, requestID uuid.UUID) ([]model.Quotation, error) {
	var out []model.Quotation
	for _, q := range r.quotations {
		if q.RequestID == requestID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (r *memQuotationRepo) CountByRequest(_ context.Context, requestID uuid.UUID) (int64, error) {
	var count int64
	for _, q := range r.quotations {
		if q.RequestID == requestID {
			count++
		}
	}
	return count, nil
}

func (r *memQuotationRepo) Update(_ context.Context, quotation *model.Quotation) error {
	if _, ok := r.quotations[quotation.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.quotations[quotation.ID] = quotation
	return nil
}

func (r *memQuotationRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.quotations, id)
	return nil
}

func (r *memQuotationRepo) GetItem(_ context.Context, itemID uuid.UUID) (*model.QuotationItem, error) {
	for _, q := range r.quotations {
		for i := range q.Items {
			if q.Items[i].ID == itemID {
				return &q.Items[i], nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memQuotationRepo) DeleteItem(_ context.Context, itemID uuid.UUID) error {
	for _, q := range r.quotations {
		for i := range q.Items {
			if q.Items[i].ID == itemID {
				q.Items = append(q.Items[:i], q.Items[i+1:]...)
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memQuotationRepo) ListItemsByRequest(_ context.Context, requestID uuid.UUID) ([]model.QuotationItem, error) {
	var out []model.QuotationItem
	for _, q := range r.quotations {
		if q.RequestID == requestID {
			out = append(out, q.Items...)
		}
	}
	return out, nil
}

func (r *memQuotationRepo) ListSelectedItemsByRequest(_ context.Context, requestID uuid.UUID) ([]model.QuotationItem, error) {
	var out []model.QuotationItem
	for _, q := range r.quotations {
		if q.RequestID != requestID {
			continue
		}
		for _, item := range q.Items {
			if item.IsSelected {
				out = append(out, item)
			}
		}
	}
	return out, nil
}

func (r *memQuotationRepo) ClearSelections(_ context.Context, requestID uuid.UUID) error {
	for _, q := range r.quotations {
		if q.RequestID != requestID {
			continue
		}
		q.IsSelected = false
		for i := range q.Items {
			q.Items[i].IsSelected = false
		}
	}
	return nil
}

func (r *memQuotationRepo) MarkItemsSelected(_ context.Context, itemIDs []uuid.UUID) error {
	marked := make(map[uuid.UUID]bool, len(itemIDs))
	for _, id := range itemIDs {
		marked[id] = true
	}
	for _, q := range r.quotations {
		for i := range q.Items {
			if marked[q.Items[i].ID] {
				q.Items[i].IsSelected = true
			}
		}
	}
	return nil
}

func (r *memQuotationRepo) SetQuotationSelected(_ context.Context, quotationID uuid.UUID, selected bool) error {
	q, ok := r.quotations[quotationID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	q.IsSelected = selected
	return nil
}

// --- suppliers ---

type memSupplierRepo struct {
	suppliers map[uuid.UUID]*model.Supplier
}

func newMemSupplierRepo() *memSupplierRepo {
	return &memSupplierRepo{suppliers: make(map[uuid.UUID]*model.Supplier)}
}

func (r *memSupplierRepo) Create(_ context.Context, supplier *model.Supplier) error {
	if supplier.ID == uuid.Nil {
		supplier.ID = uuid.New()
	}
	r.suppliers[supplier.ID] = supplier
	return nil
}

func (r *memSupplierRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	supplier, ok := r.suppliers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return supplier, nil
}

func (r *memSupplierRepo) GetByRFC(_ context.Context, rfc string) (*model.Supplier, error) {
	for _, s := range r.suppliers {
		if s.RFC == rfc {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memSupplierRepo) List(_ context.Context, activeOnly bool, _, _ int) ([]model.Supplier, int64, error) {
	var out []model.Supplier
	for _, s := range r.suppliers {
		if activeOnly && !s.IsActive {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *memSupplierRepo) Update(_ context.Context, supplier *model.Supplier) error {
	r.suppliers[supplier.ID] = supplier
	return nil
}

func (r *memSupplierRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	supplier, ok := r.suppliers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	supplier.IsActive = false
	return nil
}

// --- users ---

type memUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) ListByRole(_ context.Context, roles ...string) ([]model.User, error) {
	roleSet := make(map[string]bool, len(roles))
	for _, role := range roles {
		roleSet[role] = true
	}
	var out []model.User
	for _, u := range r.users {
		if u.IsActive && roleSet[u.Role] {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *memUserRepo) List(_ context.Context, _, _ int) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *memUserRepo) Update(_ context.Context, user *model.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

// --- budgets ---

type memBudgetRepo struct {
	budgets map[uuid.UUID]*model.Budget
	// spent maps "area/year" to the committed spend the fake reports.
	spent map[string]decimal.Decimal
}

func newMemBudgetRepo() *memBudgetRepo {
	return &memBudgetRepo{
		budgets: make(map[uuid.UUID]*model.Budget),
		spent:   make(map[string]decimal.Decimal),
	}
}

func spendKey(area string, year int) string { return fmt.Sprintf("%s/%d", area, year) }

func (r *memBudgetRepo) Create(_ context.Context, budget *model.Budget) error {
	if budget.ID == uuid.Nil {
		budget.ID = uuid.New()
	}
	r.budgets[budget.ID] = budget
	return nil
}

func (r *memBudgetRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Budget, error) {
	budget, ok := r.budgets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return budget, nil
}

func (r *memBudgetRepo) GetByAreaYear(_ context.Context, area string, year int) (*model.Budget, error) {
	for _, b := range r.budgets {
		if b.Area == area && b.Year == year {
			return b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memBudgetRepo) List(_ context.Context, year int) ([]model.Budget, error) {
	var out []model.Budget
	for _, b := range r.budgets {
		if year > 0 && b.Year != year {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (r *memBudgetRepo) Update(_ context.Context, budget *model.Budget) error {
	r.budgets[budget.ID] = budget
	return nil
}

func (r *memBudgetRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.budgets, id)
	return nil
}

func (r *memBudgetRepo) CommittedSpend(_ context.Context, area string, year int) (decimal.Decimal, error) {
	if v, ok := r.spent[spendKey(area, year)]; ok {
		return v, nil
	}
	return decimal.Zero, nil
}

// --- orders ---

type memOrderRepo struct {
	orders   map[uuid.UUID]*model.PurchaseOrder
	folioSeq int

	// Optional sibling repos; when set, GetByID resolves associations the way
	// the SQL repository's preloads do.
	requests   *memRequestRepo
	quotations *memQuotationRepo
	suppliers  *memSupplierRepo
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uuid.UUID]*model.PurchaseOrder)}
}

func (r *memOrderRepo) Create(_ context.Context, order *model.PurchaseOrder) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now()
	r.orders[order.ID] = order
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if r.requests != nil {
		order.Request = r.requests.requests[order.RequestID]
	}
	if r.quotations != nil {
		order.Quotation = r.quotations.quotations[order.QuotationID]
	}
	if r.suppliers != nil {
		order.Supplier = r.suppliers.suppliers[order.SupplierID]
	}
	return order, nil
}

func (r *memOrderRepo) GetByRequest(_ context.Context, requestID uuid.UUID) (*model.PurchaseOrder, error) {
	for _, o := range r.orders {
		if o.RequestID == requestID {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memOrderRepo) List(_ context.Context, filter repository.OrderFilter) ([]model.PurchaseOrder, int64, error) {
	var out []model.PurchaseOrder
	for _, o := range r.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *memOrderRepo) Update(_ context.Context, order *model.PurchaseOrder) error {
	r.orders[order.ID] = order
	return nil
}

func (r *memOrderRepo) NextFolio(_ context.Context, year, month int) (string, error) {
	r.folioSeq++
	return fmt.Sprintf("OC-%04d%02d-%04d", year, month, r.folioSeq), nil
}

// --- invoices ---

type memInvoiceRepo struct {
	invoices map[uuid.UUID]*model.Invoice
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{invoices: make(map[uuid.UUID]*model.Invoice)}
}

func (r *memInvoiceRepo) Create(_ context.Context, invoice *model.Invoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	r.invoices[invoice.ID] = invoice
	return nil
}

func (r *memInvoiceRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	invoice, ok := r.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return invoice, nil
}

func (r *memInvoiceRepo) ListByOrder(_ context.Context, orderID uuid.UUID) ([]model.Invoice, error) {
	var out []model.Invoice
	for _, inv := range r.invoices {
		if inv.PurchaseOrderID == orderID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *memInvoiceRepo) ExistsForOrderAndSupplier(_ context.Context, orderID uuid.UUID, supplierID *uuid.UUID) (bool, error) {
	for _, inv := range r.invoices {
		if inv.PurchaseOrderID != orderID {
			continue
		}
		if supplierID == nil && inv.SupplierID == nil {
			return true, nil
		}
		if supplierID != nil && inv.SupplierID != nil && *supplierID == *inv.SupplierID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memInvoiceRepo) List(_ context.Context, _, _ int) ([]model.Invoice, int64, error) {
	var out []model.Invoice
	for _, inv := range r.invoices {
		out = append(out, *inv)
	}
	return out, int64(len(out)), nil
}

// --- audit ---

type memAuditRepo struct {
	entries []model.AuditLog
}

func (r *memAuditRepo) Create(_ context.Context, entry *model.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memAuditRepo) List(_ context.Context, filter repository.AuditFilter) ([]model.AuditLog, int64, error) {
	var out []model.AuditLog
	for _, e := range r.entries {
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

func (r *memAuditRepo) actions() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

// --- notifications ---

type memNotificationRepo struct {
	notifications []model.Notification
}

func (r *memNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	r.notifications = append(r.notifications, *n)
	return nil
}

func (r *memNotificationRepo) ListByUser(_ context.Context, userID uuid.UUID, unreadOnly bool, _, _ int) ([]model.Notification, int64, error) {
	var out []model.Notification
	for _, n := range r.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, int64(len(out)), nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	for i := range r.notifications {
		if r.notifications[i].ID == id && r.notifications[i].UserID == userID {
			r.notifications[i].IsRead = true
		}
	}
	return nil
}

func (r *memNotificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	for i := range r.notifications {
		if r.notifications[i].UserID == userID {
			r.notifications[i].IsRead = true
		}
	}
	return nil
}
