package statement

import "strings"

// Record is one loosely-typed movement row keyed by column name, as delivered
// by the ad-hoc JSON entry point. Values are already stringified by the
// transport layer.
type Record map[string]string

// ParseRecords converts one customer's record slice into typed movements.
// A required column counts as present when any record in the slice carries
// the key; otherwise the whole slice is rejected with a SchemaError so the
// orchestrator can skip this customer and keep going. Records flagged
// disabled are dropped. The customer display name may be absent: it falls
// back to "Cliente_<code>".
func ParseRecords(customerCode string, records []Record) ([]Movement, error) {
	if len(records) == 0 {
		return nil, ErrNoData
	}

	present := make(map[string]bool)
	for _, r := range records {
		for k := range r {
			present[strings.TrimSpace(k)] = true
		}
	}
	var missing []string
	for _, col := range RequiredColumns {
		if col == ColCustomerName {
			continue
		}
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Customer: customerCode, Missing: missing}
	}

	movements := make([]Movement, 0, len(records))
	for _, r := range records {
		if !parseEnabled(strings.TrimSpace(r[ColEnabled])) {
			continue
		}
		name := strings.TrimSpace(r[ColCustomerName])
		if name == "" {
			name = "Cliente_" + customerCode
		}
		m := Movement{
			CustomerCode:  customerCode,
			CustomerName:  name,
			Salesperson:   strings.TrimSpace(r[ColSalesperson]),
			IssueDate:     ParseDate(r[ColIssueDate]),
			DocNumber:     NormalizeDocCode(r[ColDocNumber]),
			DueDate:       ParseDate(r[ColDueDate]),
			SaleCondition: strings.TrimSpace(r[ColSaleCondition]),
			Debit:         ParseAmount(r[ColDebit]),
			Credit:        ParseAmount(r[ColCredit]),
			Balance:       ParseAmount(r[ColBalance]),
		}
		movements = append(movements, m)
	}
	return movements, nil
}
