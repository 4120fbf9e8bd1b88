package interfaces

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"ctacte-backend/internal/observability/metrics"
	statement "ctacte-backend/internal/statement/domain"
)

// ExportMovementsHandler serves GET /api/v1/exports/movements.xlsx: the raw
// movement query result for one customer, as a spreadsheet.
type ExportMovementsHandler struct {
	history      MovementHistory
	clock        statement.Clock
	lookbackDays int
	logger       *logrus.Logger
}

// NewExportMovementsHandler constructs a handler.
func NewExportMovementsHandler(history MovementHistory, clock statement.Clock, lookbackDays int, logger *logrus.Logger) *ExportMovementsHandler {
	if clock == nil {
		clock = statement.SystemClock{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ExportMovementsHandler{history: history, clock: clock, lookbackDays: lookbackDays, logger: logger}
}

func (h *ExportMovementsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.history == nil {
		respondError(w, http.StatusServiceUnavailable, "database not configured")
		return
	}
	customer := r.URL.Query().Get("customer")
	if customer == "" {
		respondError(w, http.StatusBadRequest, "customer is required")
		return
	}

	start := time.Now()
	cutoff := h.clock.Now().AddDate(0, 0, -h.lookbackDays)
	movements, err := h.history.HistoryByCustomer(r.Context(), customer, cutoff)
	if err != nil {
		metrics.ObserveExport("xlsx", metrics.ResultError, time.Since(start))
		h.logger.WithError(err).Error("movement query failed")
		respondError(w, http.StatusInternalServerError, "movement query failed")
		return
	}
	if len(movements) == 0 {
		metrics.ObserveExport("xlsx", metrics.ResultError, time.Since(start))
		respondError(w, http.StatusNotFound, "no movements for customer")
		return
	}

	data, err := buildMovementsXLSX(movements)
	if err != nil {
		metrics.ObserveExport("xlsx", metrics.ResultError, time.Since(start))
		h.logger.WithError(err).Error("xlsx build failed")
		respondError(w, http.StatusInternalServerError, "export failed")
		return
	}
	metrics.ObserveExport("xlsx", metrics.ResultSuccess, time.Since(start))

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", statement.SanitizeName(customer)+".xlsx"))
	_, _ = w.Write(data)
}

func buildMovementsXLSX(movements []statement.Movement) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "movimientos"
	f.SetSheetName("Sheet1", sheet)

	header := []any{
		statement.ColCustomerCode, statement.ColCustomerName, statement.ColSalesperson,
		statement.ColIssueDate, statement.ColDocNumber, statement.ColDueDate,
		statement.ColSaleCondition, statement.ColDebit, statement.ColCredit, statement.ColBalance,
	}
	_ = f.SetSheetRow(sheet, "A1", &header)

	for i, m := range movements {
		row := []any{
			m.CustomerCode,
			m.CustomerName,
			m.Salesperson,
			cellDate(m.IssueDate),
			m.DocNumber,
			cellDate(m.DueDate),
			m.SaleCondition,
			cellAmount(m.Debit),
			cellAmount(m.Credit),
			cellAmount(m.Balance),
		}
		_ = f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellDate(t time.Time) any {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func cellAmount(n decimal.NullDecimal) any {
	if !n.Valid {
		return ""
	}
	f, _ := n.Decimal.Float64()
	return f
}
