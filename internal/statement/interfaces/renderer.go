package interfaces

import (
	"time"

	statement "ctacte-backend/internal/statement/domain"
)

// PDFRenderer renders statements with the layout matching their
// classification mode. It satisfies the batch service's Renderer port.
// Every ledger-mode document, the ad-hoc JSON path included, blanks zero and
// missing money cells across all columns, Saldo too; only the aging layout
// prints a "0,00" balance.
type PDFRenderer struct{}

func (PDFRenderer) Render(stmt statement.Statement, docDate time.Time) ([]byte, error) {
	if stmt.Mode == statement.ModeAging {
		return BuildAgingPDF(stmt, docDate)
	}
	return BuildLedgerPDF(stmt, docDate)
}
