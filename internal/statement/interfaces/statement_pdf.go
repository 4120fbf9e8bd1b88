package interfaces

import (
	"bytes"
	"time"

	"github.com/jung-kurt/gofpdf"

	statement "ctacte-backend/internal/statement/domain"
)

// ColumnHeaders are the human-readable labels of the fixed report columns,
// independent of the underlying field names.
var ColumnHeaders = []string{"Fecha", "Comprobante Nro", "Vto.", "Cond. Venta", "Debe", "Haber", "Saldo"}

const balanceColumn = 6

// BuildLedgerPDF renders the spreadsheet-driven layout: a dated, titled page
// with a global header banner and one table per non-empty section. The
// running-balance cell of the last row of the primary section is highlighted.
// The document date comes from the caller's clock so identical statements
// render byte-identically.
func BuildLedgerPDF(stmt statement.Statement, docDate time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.SetCreationDate(docDate)
	pdf.SetModificationDate(docDate)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(len(ColumnHeaders))

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, docDate.Format("02/01/2006"), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, tr("Estado cuenta corriente (últimos 30 días)"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(128, 128, 128)
	pdf.SetTextColor(245, 245, 245)
	for _, h := range ColumnHeaders {
		pdf.CellFormat(colW, 7, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFillColor(211, 211, 211)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(colW*float64(len(ColumnHeaders)), 7, tr(stmt.CustomerName), "1", 1, "C", true, 0, "")

	for _, bucket := range stmt.Buckets {
		if len(bucket.Rows) == 0 {
			continue
		}
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 7, tr(bucket.Title), "", 1, "L", false, 0, "")
		pdf.Ln(1)
		pdf.SetFont("Helvetica", "", 9)

		highlightLast := bucket.Kind == statement.BucketLedgerDebt
		for i, m := range bucket.Rows {
			cells := rowCells(m, statement.ZeroBlank, statement.ZeroBlank)
			for c, text := range cells {
				if highlightLast && i == len(bucket.Rows)-1 && c == balanceColumn {
					pdf.SetFillColor(255, 255, 0)
					pdf.SetDrawColor(255, 0, 0)
					pdf.SetLineWidth(0.6)
					pdf.SetFont("Helvetica", "B", 9)
					pdf.CellFormat(colW, 6, tr(text), "1", 0, "C", true, 0, "")
					pdf.SetFont("Helvetica", "", 9)
					pdf.SetDrawColor(0, 0, 0)
					pdf.SetLineWidth(0.2)
					continue
				}
				pdf.CellFormat(colW, 6, tr(text), "", 0, "C", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildAgingPDF renders the daily-query layout: labeled sections for credit,
// overdue and not-yet-due movements, each closed by its subtotal, followed by
// a bold grand total naming the customer. Empty sections are omitted.
func BuildAgingPDF(stmt statement.Statement, docDate time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetCreationDate(docDate)
	pdf.SetModificationDate(docDate)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageW - left - right
	colW := usable / float64(len(ColumnHeaders))

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, docDate.Format("02/01/2006"), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, "Estado de Cuenta", "", 1, "C", false, 0, "")
	if stmt.Salesperson != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 5, tr("Vendedor: "+stmt.Salesperson), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	for _, bucket := range stmt.Buckets {
		if len(bucket.Rows) == 0 {
			continue
		}
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 7, tr(bucket.Title+":"), "", 1, "L", false, 0, "")
		pdf.Ln(1)

		pdf.SetFont("Helvetica", "B", 8)
		for _, h := range ColumnHeaders {
			pdf.CellFormat(colW, 5, tr(h), "B", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 8)
		for _, m := range bucket.Rows {
			cells := rowCells(m, statement.ZeroBlank, statement.ZeroAsZero)
			for _, text := range cells {
				pdf.CellFormat(colW, 5, tr(text), "", 0, "C", false, 0, "")
			}
			pdf.Ln(-1)
		}

		pdf.CellFormat(usable, 0, "", "B", 1, "", false, 0, "")
		pdf.Ln(1)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(usable, 6, tr("Total "+bucket.Title+": "+statement.FormatMoney(bucket.Subtotal)), "", 1, "R", false, 0, "")
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, tr("Total "+stmt.CustomerName+": "+statement.FormatMoney(stmt.GrandTotal)), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func rowCells(m statement.Movement, moneyPolicy, balancePolicy statement.ZeroPolicy) []string {
	return []string{
		formatDate(m.IssueDate),
		m.DocNumber,
		formatDate(m.DueDate),
		m.SaleCondition,
		statement.FormatMoneyCell(m.Debit, moneyPolicy),
		statement.FormatMoneyCell(m.Credit, moneyPolicy),
		statement.FormatMoneyCell(m.Balance, balancePolicy),
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}
