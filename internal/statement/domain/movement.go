package statement

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Column names of the tabular input, as produced by both the spreadsheet
// export and the movement history query.
const (
	ColCustomerCode  = "ClienteCod"
	ColCustomerName  = "RazonSocial"
	ColSalesperson   = "Vendedor"
	ColIssueDate     = "Femision"
	ColDocNumber     = "ComprobanteNro"
	ColDueDate       = "FechaVto"
	ColSaleCondition = "CondVta"
	ColDebit         = "Debe_Loc"
	ColCredit        = "Haber_Loc"
	ColBalance       = "SaldoAcum_Loc"
	ColEnabled       = "Habilitado"
)

// RequiredColumns are the fields a slice must carry to render a document.
// A slice missing any of them is skipped with a SchemaError.
var RequiredColumns = []string{
	ColCustomerName,
	ColIssueDate,
	ColDocNumber,
	ColDueDate,
	ColSaleCondition,
	ColDebit,
	ColCredit,
	ColBalance,
}

// Movement is one ledger line (invoice, receipt, credit/debit note) affecting
// a customer balance. Dates use the zero time as the missing marker; amounts
// use decimal.NullDecimal, so a bad cell degrades instead of failing.
type Movement struct {
	CustomerCode  string
	CustomerName  string
	Salesperson   string
	IssueDate     time.Time
	DocNumber     string
	DueDate       time.Time
	SaleCondition string
	Debit         decimal.NullDecimal
	Credit        decimal.NullDecimal
	Balance       decimal.NullDecimal
}

// ParseRows converts an untrusted header+rows table into typed movements.
// It validates the schema up front: required columns absent from the header
// surface as a SchemaError instead of failing later inside formatting code.
// Rows flagged disabled in the Habilitado column are dropped, mirroring the
// query path's habilitado filter. Cell-level problems never error; they
// become missing markers.
func ParseRows(header []string, rows [][]string) ([]Movement, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	movements := make([]Movement, 0, len(rows))
	for _, row := range rows {
		if !parseEnabled(cell(row, ColEnabled)) {
			continue
		}
		m := Movement{
			CustomerCode:  cell(row, ColCustomerCode),
			CustomerName:  cell(row, ColCustomerName),
			Salesperson:   cell(row, ColSalesperson),
			IssueDate:     ParseDate(cell(row, ColIssueDate)),
			DocNumber:     NormalizeDocCode(cell(row, ColDocNumber)),
			DueDate:       ParseDate(cell(row, ColDueDate)),
			SaleCondition: cell(row, ColSaleCondition),
			Debit:         ParseAmount(cell(row, ColDebit)),
			Credit:        ParseAmount(cell(row, ColCredit)),
			Balance:       ParseAmount(cell(row, ColBalance)),
		}
		movements = append(movements, m)
	}
	return movements, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2006/01/02",
	"02-01-2006",
	"01-02-06", // excelize default rendering of date cells
}

// ParseDate parses the heterogeneous date encodings seen in uploads: ISO
// strings (with or without a time suffix), slash/dash forms and spreadsheet
// serial numbers. Unparseable input yields the zero time; a document must
// still render with the date column blank.
func ParseDate(raw string) time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}
	}
	// ISO timestamps ("2025-01-17T00:00:00.000Z"): the date part is enough.
	if len(s) > 10 && s[4] == '-' && (s[10] == 'T' || s[10] == ' ') {
		s = s[:10]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	// Spreadsheet serial: days since 1899-12-30.
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		base := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
		return base.AddDate(0, 0, int(serial))
	}
	return time.Time{}
}

func parseEnabled(raw string) bool {
	switch strings.ToLower(raw) {
	case "", "0", "false", "no":
		return raw == "" // absent column defaults to enabled
	default:
		return true
	}
}
