package statement

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Mode selects the classification strategy. It is chosen explicitly by the
// entry point that invoked the pipeline, never inferred from the data.
type Mode string

const (
	// ModeAging splits movements by balance sign and due date against the
	// injected reference date. Used by the daily query path.
	ModeAging Mode = "aging"
	// ModeLedger splits movements on the pending-delivery document pattern,
	// independent of sign or dates. Used by the spreadsheet upload path.
	ModeLedger Mode = "ledger"
)

// PendingDeliveryMarker tags delivery notes that are pending invoicing; rows
// whose normalized document number contains it land in the second ledger
// section.
const PendingDeliveryMarker = "RT R"

// BucketKind names a partition of a customer's movements.
type BucketKind string

const (
	BucketCredit          BucketKind = "credit"
	BucketOverdue         BucketKind = "overdue"
	BucketNotYetDue       BucketKind = "not_yet_due"
	BucketLedgerDebt      BucketKind = "ledger_debt"
	BucketPendingDelivery BucketKind = "pending_delivery"
)

// Bucket is one named partition with its subtotal.
type Bucket struct {
	Kind     BucketKind
	Title    string
	Rows     []Movement
	Subtotal decimal.Decimal
}

// Statement is the per-customer aggregate handed to the document composer.
// Built fresh per batch run, never persisted.
type Statement struct {
	CustomerCode string
	CustomerName string
	Salesperson  string
	Mode         Mode
	Buckets      []Bucket
	GrandTotal   decimal.Decimal
	// FinalBalance is the running balance of the last row of the primary
	// bucket; only the ledger layout renders it (highlighted).
	FinalBalance decimal.NullDecimal
}

// ClassifyAging partitions a prepared, date-ordered row set by balance sign
// and due date against today. Rows with a zero or missing balance appear in
// no bucket and do not contribute to any total. Rows with a missing due date
// are treated as not yet due rather than dropped.
func ClassifyAging(rows []Movement, today time.Time) Statement {
	stmt := Statement{Mode: ModeAging}
	fillIdentity(&stmt, rows)
	day := truncateDay(today)

	credit := Bucket{Kind: BucketCredit, Title: "1- CRÉDITO A FAVOR"}
	overdue := Bucket{Kind: BucketOverdue, Title: "2- VENCIDOS"}
	notYetDue := Bucket{Kind: BucketNotYetDue, Title: "3- A VENCER"}

	total := decimal.Zero
	for _, m := range rows {
		if !m.Balance.Valid || m.Balance.Decimal.IsZero() {
			continue
		}
		balance := m.Balance.Decimal
		total = total.Add(balance)
		switch {
		case balance.IsNegative():
			credit.Rows = append(credit.Rows, m)
			credit.Subtotal = credit.Subtotal.Add(balance)
		case !m.DueDate.IsZero() && truncateDay(m.DueDate).Before(day):
			overdue.Rows = append(overdue.Rows, m)
			overdue.Subtotal = overdue.Subtotal.Add(balance)
		default:
			notYetDue.Rows = append(notYetDue.Rows, m)
			notYetDue.Subtotal = notYetDue.Subtotal.Add(balance)
		}
	}

	stmt.Buckets = []Bucket{credit, overdue, notYetDue}
	stmt.GrandTotal = total.Round(2)
	return stmt
}

// ClassifyLedger partitions a prepared row set into current-account debt and
// pending-delivery sections by document pattern. All rows are kept, zero
// balances included; the split carries no sign or date semantics.
func ClassifyLedger(rows []Movement) Statement {
	stmt := Statement{Mode: ModeLedger}
	fillIdentity(&stmt, rows)

	debt := Bucket{Kind: BucketLedgerDebt, Title: "1 Deuda en Cta Cte"}
	pending := Bucket{Kind: BucketPendingDelivery, Title: "2 Remitos pendientes de facturar - Valor estimado"}

	total := decimal.Zero
	for _, m := range rows {
		target := &debt
		if strings.Contains(m.DocNumber, PendingDeliveryMarker) {
			target = &pending
		}
		target.Rows = append(target.Rows, m)
		if m.Balance.Valid && !m.Balance.Decimal.IsZero() {
			target.Subtotal = target.Subtotal.Add(m.Balance.Decimal)
			total = total.Add(m.Balance.Decimal)
		}
	}

	if n := len(debt.Rows); n > 0 {
		stmt.FinalBalance = debt.Rows[n-1].Balance
	}
	stmt.Buckets = []Bucket{debt, pending}
	stmt.GrandTotal = total.Round(2)
	return stmt
}

func fillIdentity(stmt *Statement, rows []Movement) {
	for _, m := range rows {
		if stmt.CustomerCode == "" {
			stmt.CustomerCode = m.CustomerCode
		}
		if stmt.CustomerName == "" {
			stmt.CustomerName = m.CustomerName
		}
		if stmt.Salesperson == "" {
			stmt.Salesperson = m.Salesperson
		}
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
