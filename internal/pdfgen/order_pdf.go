// Package pdfgen renders purchase-order PDFs with go-pdf/fpdf. Rendering is
// best-effort everywhere it is invoked: a failure is logged and the order
// creation it decorates still succeeds.
package pdfgen

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/UP220404/cielito-home-compras/internal/model"

	"github.com/go-pdf/fpdf"
)

// OrderData is the fully-resolved structure the renderer needs. Callers load
// all relations before invoking; the renderer performs no queries.
type OrderData struct {
	Order    *model.PurchaseOrder
	Request  *model.Request
	Supplier *model.Supplier
	// Lines are the awarded quotation items with their request materials.
	Lines []OrderLine
}

type OrderLine struct {
	Material  string
	Quantity  string
	Unit      string
	UnitPrice string
	Subtotal  string
}

// GenerateOrderPDF writes the purchase order as an A4 PDF under storagePath
// and returns the absolute path to the generated file.
func GenerateOrderPDF(data OrderData, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("orden_%s.pdf", data.Order.Folio)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Cielito Home", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(contentW, 6, "Orden de Compra", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Order info ───────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW/2, 6, "Folio: "+data.Order.Folio, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW/2, 6, "Fecha: "+data.Order.CreatedAt.Format("02/01/2006"), "", 1, "R", false, 0, "")
	pdf.CellFormat(contentW/2, 6, "Solicitud: "+data.Request.Folio, "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 6, "Área: "+data.Request.Area, "", 1, "R", false, 0, "")
	pdf.Ln(2)

	// ── Supplier block ───────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Proveedor", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, data.Supplier.Name, "", 1, "L", false, 0, "")
	if data.Supplier.RFC != "" {
		pdf.CellFormat(contentW, 5, "RFC: "+data.Supplier.RFC, "", 1, "L", false, 0, "")
	}
	if data.Supplier.PaymentTerms != "" {
		pdf.CellFormat(contentW, 5, "Condiciones: "+data.Supplier.PaymentTerms, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ── Line items ───────────────────────────────────────────────────────────
	col1 := contentW * 0.40 // material
	col2 := contentW * 0.15 // qty
	col3 := contentW * 0.10 // unit
	col4 := contentW * 0.17 // unit price
	col5 := contentW * 0.18 // subtotal

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "Material", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Cantidad", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 6, "Unidad", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col4, 6, "P. Unitario", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 6, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, line := range data.Lines {
		material := line.Material
		if len(material) > 40 {
			material = material[:39] + "…"
		}
		pdf.CellFormat(col1, 6, material, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, line.Quantity, "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 6, line.Unit, "", 0, "C", false, 0, "")
		pdf.CellFormat(col4, 6, "$"+line.UnitPrice, "", 0, "R", false, 0, "")
		pdf.CellFormat(col5, 6, "$"+line.Subtotal, "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Total ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(col1+col2+col3+col4, 7, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 7, "$"+data.Order.TotalAmount.StringFixed(2), "", 1, "R", false, 0, "")

	if data.Order.ExpectedDelivery != nil {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW, 5, "Entrega esperada: "+data.Order.ExpectedDelivery.Format("02/01/2006"), "", 1, "L", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
