package service

import (
	"context"
	"testing"

	"github.com/UP220404/cielito-home-compras/internal/apierror"
	"github.com/UP220404/cielito-home-compras/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quotationFixture struct {
	svc        QuotationService
	requests   *memRequestRepo
	quotations *memQuotationRepo
	suppliers  *memSupplierRepo
	audits     *memAuditRepo
	dispatcher *memDispatcher

	purchaser Actor
	request   *model.Request
}

// newQuotationFixture seeds one pendiente request with two material lines.
func newQuotationFixture(t *testing.T) *quotationFixture {
	t.Helper()
	f := &quotationFixture{
		requests:   newMemRequestRepo(),
		quotations: newMemQuotationRepo(),
		suppliers:  newMemSupplierRepo(),
		audits:     &memAuditRepo{},
		dispatcher: &memDispatcher{},
	}
	f.svc = NewQuotationService(f.quotations, f.requests, f.suppliers, f.audits, memTxManager{}, f.dispatcher)
	f.purchaser = Actor{ID: uuid.New(), Role: model.RoleComprador, Area: "Compras"}

	f.request = &model.Request{
		Folio:  "SOL-2026-00001",
		UserID: uuid.New(),
		Area:   "Cocina",
		Status: model.StatusPendiente,
		Items: []model.RequestItem{
			{Material: "Sartén de acero", Quantity: decimal.NewFromInt(4), Unit: "pieza"},
			{Material: "Aceite de oliva", Quantity: decimal.NewFromInt(10), Unit: "litro"},
		},
	}
	require.NoError(t, f.requests.Create(context.Background(), f.request))
	return f
}

func (f *quotationFixture) addSupplier(t *testing.T, name, rfc string) *model.Supplier {
	t.Helper()
	supplier := &model.Supplier{Name: name, RFC: rfc, IsActive: true}
	require.NoError(t, f.suppliers.Create(context.Background(), supplier))
	return supplier
}

func (f *quotationFixture) quoteAll(t *testing.T, supplier *model.Supplier, prices ...string) *model.Quotation {
	t.Helper()
	items := make([]QuotationItemDTO, 0, len(f.request.Items))
	for i, requestItem := range f.request.Items {
		items = append(items, QuotationItemDTO{
			RequestItemID: requestItem.ID.String(),
			UnitPrice:     dec(prices[i]),
		})
	}
	quotation, err := f.svc.Create(context.Background(), f.purchaser, CreateQuotationDTO{
		RequestID:  f.request.ID.String(),
		SupplierID: supplier.ID.String(),
		Items:      items,
	})
	require.NoError(t, err)
	return quotation
}

func TestQuotationCreateMovesRequestToCotizando(t *testing.T) {
	f := newQuotationFixture(t)
	supplier := f.addSupplier(t, "Aceros del Norte", "ADN010101AAA")

	quotation := f.quoteAll(t, supplier, "200", "90")

	// 4*200 + 10*90 = 1700
	assert.True(t, quotation.TotalAmount.Equal(dec("1700")))
	assert.Len(t, quotation.Items, 2)
	assert.Equal(t, model.StatusCotizando, f.request.Status)
	assert.Contains(t, f.audits.actions(), model.ActionCreateQuotation)
}

func TestQuotationCreateDuplicateSupplier(t *testing.T) {
	f := newQuotationFixture(t)
	supplier := f.addSupplier(t, "Aceros del Norte", "ADN010101AAA")
	f.quoteAll(t, supplier, "200", "90")

	_, err := f.svc.Create(context.Background(), f.purchaser, CreateQuotationDTO{
		RequestID:  f.request.ID.String(),
		SupplierID: supplier.ID.String(),
		Items:      []QuotationItemDTO{{RequestItemID: f.request.Items[0].ID.String(), UnitPrice: dec("180")}},
	})
	assert.ErrorIs(t, err, apierror.ErrConflict)
}

func TestQuotationCreateRejectsInactiveSupplier(t *testing.T) {
	f := newQuotationFixture(t)
	supplier := f.addSupplier(t, "Proveedor Retirado", "PRT010101AAA")
	supplier.IsActive = false

	_, err := f.svc.Create(context.Background(), f.purchaser, CreateQuotationDTO{
		RequestID:  f.request.ID.String(),
		SupplierID: supplier.ID.String(),
		Items:      []QuotationItemDTO{{RequestItemID: f.request.Items[0].ID.String(), UnitPrice: dec("100")}},
	})
	assert.ErrorIs(t, err, apierror.ErrValidation)
}

func TestQuotationCreateRejectsWrongRequestStatus(t *testing.T) {
	f := newQuotationFixture(t)
	supplier := f.addSupplier(t, "Aceros del Norte", "ADN010101AAA")
	f.request.Status = model.StatusAutorizada

	_, err := f.svc.Create(context.Background(), f.purchaser, CreateQuotationDTO{
		RequestID:  f.request.ID.String(),
		SupplierID: supplier.ID.String(),
		Items:      []QuotationItemDTO{{RequestItemID: f.request.Items[0].ID.String(), UnitPrice: dec("100")}},
	})
	assert.ErrorIs(t, err, apierror.ErrPrecondition)
}

func TestQuotationCreateSkipsUnknownRequestItems(t *testing.T) {
	f := newQuotationFixture(t)
	supplier := f.addSupplier(t, "Aceros del Norte", "ADN010101AAA")

	// One valid line, one referencing a foreign request item
	quotation, err := f.svc.Create(context.Background(), f.purchaser, CreateQuotationDTO{
		RequestID:  f.request.ID.String(),
		SupplierID: supplier.ID.String(),
		Items: []QuotationItemDTO{
			{RequestItemID: f.request.Items[0].ID.String(), UnitPrice: dec("100")},
			{RequestItemID: uuid.NewString(), UnitPrice: dec("50")},
		},
	})
	require.NoError(t, err)
	assert.Len(t, quotation.Items, 1)
	assert.True(t, quotation.TotalAmount.Equal(dec("400")))
}

func TestQuotationCreateAllItemsUnknown(t *testing.T) {
	f := newQuotationFixture(t)
	supplier := f.addSupplier(t, "Aceros del Norte", "ADN010101AAA")

	_, err := f.svc.Create(context.Background(), f.purchaser, CreateQuotationDTO{
		RequestID:  f.request.ID.String(),
		SupplierID: supplier.ID.String(),
		Items:      []QuotationItemDTO{{RequestItemID: uuid.NewString(), UnitPrice: dec("50")}},
	})
	assert.ErrorIs(t, err, apierror.ErrValidation)
}

func TestQuotationDeleteLastRevertsRequest(t *testing.T) {
	f := newQuotationFixture(t)
	ctx := context.Background()
	first := f.quoteAll(t, f.addSupplier(t, "Aceros del Norte", "ADN010101AAA"), "200", "90")
	second := f.quoteAll(t, f.addSupplier(t, "La Europea", "EUR010101AAA"), "190", "95")
	require.Equal(t, model.StatusCotizando, f.request.Status)

	require.NoError(t, f.svc.Delete(ctx, f.purchaser, first.ID.String()))
	assert.Equal(t, model.StatusCotizando, f.request.Status)

	require.NoError(t, f.svc.Delete(ctx, f.purchaser, second.ID.String()))
	assert.Equal(t, model.StatusPendiente, f.request.Status)
}

func TestQuotationDeleteItemCascades(t *testing.T) {
	f := newQuotationFixture(t)
	ctx := context.Background()
	quotation := f.quoteAll(t, f.addSupplier(t, "Aceros del Norte", "ADN010101AAA"), "200", "90")

	// Removing one of two lines recomputes the total
	require.NoError(t, f.svc.DeleteItem(ctx, f.purchaser, quotation.Items[0].ID.String()))
	got, err := f.quotations.GetByID(ctx, quotation.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, got.TotalAmount.Equal(dec("900")))

	// Removing the last line removes the quotation and reverts the request
	require.NoError(t, f.svc.DeleteItem(ctx, f.purchaser, got.Items[0].ID.String()))
	_, err = f.quotations.GetByID(ctx, quotation.ID)
	assert.Error(t, err)
	assert.Equal(t, model.StatusPendiente, f.request.Status)
}

func TestQuotationSelectItemsAcrossSuppliers(t *testing.T) {
	f := newQuotationFixture(t)
	ctx := context.Background()
	cheapPans := f.quoteAll(t, f.addSupplier(t, "Aceros del Norte", "ADN010101AAA"), "180", "100")
	cheapOil := f.quoteAll(t, f.addSupplier(t, "La Europea", "EUR010101AAA"), "210", "85")

	err := f.svc.SelectItems(ctx, f.purchaser, f.request.ID.String(), []SelectionDTO{
		{RequestItemID: f.request.Items[0].ID.String(), QuotationItemID: cheapPans.Items[0].ID.String()},
		{RequestItemID: f.request.Items[1].ID.String(), QuotationItemID: cheapOil.Items[1].ID.String()},
	})
	require.NoError(t, err)

	// Neither supplier won every line, so no quotation is fully selected
	gotPans, err := f.quotations.GetByID(ctx, cheapPans.ID)
	require.NoError(t, err)
	assert.False(t, gotPans.IsSelected)
	assert.True(t, gotPans.Items[0].IsSelected)
	assert.False(t, gotPans.Items[1].IsSelected)

	view, err := f.svc.SelectedItems(ctx, f.request.ID.String())
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)
	assert.Equal(t, 2, view.SupplierCount)
	// 4*180 + 10*85 = 1570
	assert.True(t, view.TotalAmount.Equal(dec("1570")))
	assert.Empty(t, view.FullQuotationIDs)
	assert.True(t, view.TotalsBySupplier[cheapPans.SupplierID.String()].Equal(dec("720")))
	assert.True(t, view.TotalsBySupplier[cheapOil.SupplierID.String()].Equal(dec("850")))
}

func TestQuotationSelectItemsSingleSupplierWinsAll(t *testing.T) {
	f := newQuotationFixture(t)
	ctx := context.Background()
	winner := f.quoteAll(t, f.addSupplier(t, "Aceros del Norte", "ADN010101AAA"), "180", "85")
	loser := f.quoteAll(t, f.addSupplier(t, "La Europea", "EUR010101AAA"), "210", "95")

	err := f.svc.SelectItems(ctx, f.purchaser, f.request.ID.String(), []SelectionDTO{
		{RequestItemID: f.request.Items[0].ID.String(), QuotationItemID: winner.Items[0].ID.String()},
		{RequestItemID: f.request.Items[1].ID.String(), QuotationItemID: winner.Items[1].ID.String()},
	})
	require.NoError(t, err)

	gotWinner, err := f.quotations.GetByID(ctx, winner.ID)
	require.NoError(t, err)
	assert.True(t, gotWinner.IsSelected)

	gotLoser, err := f.quotations.GetByID(ctx, loser.ID)
	require.NoError(t, err)
	assert.False(t, gotLoser.IsSelected)

	view, err := f.svc.SelectedItems(ctx, f.request.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{winner.ID}, view.FullQuotationIDs)
	assert.Equal(t, 1, view.SupplierCount)
}

func TestQuotationSelectItemsReplacesPreviousSelection(t *testing.T) {
	f := newQuotationFixture(t)
	ctx := context.Background()
	first := f.quoteAll(t, f.addSupplier(t, "Aceros del Norte", "ADN010101AAA"), "180", "85")
	second := f.quoteAll(t, f.addSupplier(t, "La Europea", "EUR010101AAA"), "210", "95")

	require.NoError(t, f.svc.SelectItems(ctx, f.purchaser, f.request.ID.String(), []SelectionDTO{
		{RequestItemID: f.request.Items[0].ID.String(), QuotationItemID: first.Items[0].ID.String()},
	}))
	require.NoError(t, f.svc.SelectItems(ctx, f.purchaser, f.request.ID.String(), []SelectionDTO{
		{RequestItemID: f.request.Items[0].ID.String(), QuotationItemID: second.Items[0].ID.String()},
	}))

	view, err := f.svc.SelectedItems(ctx, f.request.ID.String())
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, second.Items[0].ID, view.Items[0].QuotationItemID)
}

func TestQuotationSelectItemsValidation(t *testing.T) {
	f := newQuotationFixture(t)
	ctx := context.Background()
	quotation := f.quoteAll(t, f.addSupplier(t, "Aceros del Norte", "ADN010101AAA"), "180", "85")

	// Quotation item must match the declared request item
	err := f.svc.SelectItems(ctx, f.purchaser, f.request.ID.String(), []SelectionDTO{
		{RequestItemID: f.request.Items[0].ID.String(), QuotationItemID: quotation.Items[1].ID.String()},
	})
	assert.ErrorIs(t, err, apierror.ErrValidation)

	// A foreign quotation item is rejected outright
	err = f.svc.SelectItems(ctx, f.purchaser, f.request.ID.String(), []SelectionDTO{
		{RequestItemID: f.request.Items[0].ID.String(), QuotationItemID: uuid.NewString()},
	})
	assert.ErrorIs(t, err, apierror.ErrNotFound)

	// One request item, one winner
	err = f.svc.SelectItems(ctx, f.purchaser, f.request.ID.String(), []SelectionDTO{
		{RequestItemID: f.request.Items[0].ID.String(), QuotationItemID: quotation.Items[0].ID.String()},
		{RequestItemID: f.request.Items[0].ID.String(), QuotationItemID: quotation.Items[0].ID.String()},
	})
	assert.ErrorIs(t, err, apierror.ErrValidation)

	// Empty selection is meaningless
	err = f.svc.SelectItems(ctx, f.purchaser, f.request.ID.String(), nil)
	assert.ErrorIs(t, err, apierror.ErrValidation)
}

func TestQuotationSelectedCannotBeModified(t *testing.T) {
	f := newQuotationFixture(t)
	ctx := context.Background()
	quotation := f.quoteAll(t, f.addSupplier(t, "Aceros del Norte", "ADN010101AAA"), "180", "85")

	require.NoError(t, f.svc.SelectItems(ctx, f.purchaser, f.request.ID.String(), []SelectionDTO{
		{RequestItemID: f.request.Items[0].ID.String(), QuotationItemID: quotation.Items[0].ID.String()},
		{RequestItemID: f.request.Items[1].ID.String(), QuotationItemID: quotation.Items[1].ID.String()},
	}))

	_, err := f.svc.Update(ctx, f.purchaser, quotation.ID.String(), UpdateQuotationDTO{PaymentTerms: "contado"})
	assert.ErrorIs(t, err, apierror.ErrPrecondition)

	err = f.svc.Delete(ctx, f.purchaser, quotation.ID.String())
	assert.ErrorIs(t, err, apierror.ErrPrecondition)
}

func TestQuotationAuthorizedRequestBlocksEdits(t *testing.T) {
	f := newQuotationFixture(t)
	ctx := context.Background()
	quotation := f.quoteAll(t, f.addSupplier(t, "Aceros del Norte", "ADN010101AAA"), "180", "85")

	f.request.Status = model.StatusAutorizada

	_, err := f.svc.Update(ctx, f.purchaser, quotation.ID.String(), UpdateQuotationDTO{PaymentTerms: "credito 30 dias"})
	assert.ErrorIs(t, err, apierror.ErrPrecondition)
}

func TestQuotationComparisonViewSortsByPrice(t *testing.T) {
	f := newQuotationFixture(t)
	ctx := context.Background()

	expensive := f.addSupplier(t, "La Europea", "EUR010101AAA")
	cheap := f.addSupplier(t, "Aceros del Norte", "ADN010101AAA")
	f.quoteAll(t, expensive, "210", "95")
	f.quoteAll(t, cheap, "180", "85")

	rows, err := f.svc.ComparisonView(ctx, f.request.ID.String())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	for _, row := range rows {
		require.Len(t, row.Offers, 2)
		assert.True(t, row.Offers[0].UnitPrice.LessThan(row.Offers[1].UnitPrice))
		assert.Equal(t, cheap.ID, row.Offers[0].SupplierID)
	}
}
