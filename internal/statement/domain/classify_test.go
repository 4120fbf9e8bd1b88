package statement

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balance(v int64) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.NewFromInt(v), Valid: true}
}

func bucketByKind(t *testing.T, stmt Statement, kind BucketKind) Bucket {
	t.Helper()
	for _, b := range stmt.Buckets {
		if b.Kind == kind {
			return b
		}
	}
	t.Fatalf("bucket %s not found", kind)
	return Bucket{}
}

func TestClassifyAgingBuckets(t *testing.T) {
	today := day(2025, 1, 22)
	rows := []Movement{
		{CustomerName: "VIGLIETTI CARLOS JAVIER", DueDate: day(2025, 1, 17), Balance: balance(-1846000)},
		{CustomerName: "VIGLIETTI CARLOS JAVIER", DueDate: day(2025, 1, 21), Balance: balance(824000)},
		{CustomerName: "VIGLIETTI CARLOS JAVIER", DueDate: day(2025, 2, 10), Balance: balance(500000)},
		{CustomerName: "VIGLIETTI CARLOS JAVIER", DueDate: day(2025, 1, 10), Balance: balance(0)},
	}

	stmt := ClassifyAging(rows, today)

	credit := bucketByKind(t, stmt, BucketCredit)
	overdue := bucketByKind(t, stmt, BucketOverdue)
	notYetDue := bucketByKind(t, stmt, BucketNotYetDue)

	require.Len(t, credit.Rows, 1)
	require.Len(t, overdue.Rows, 1)
	require.Len(t, notYetDue.Rows, 1)

	assert.True(t, credit.Subtotal.Equal(decimal.NewFromInt(-1846000)))
	assert.True(t, overdue.Subtotal.Equal(decimal.NewFromInt(824000)))
	assert.True(t, notYetDue.Subtotal.Equal(decimal.NewFromInt(500000)))
	assert.True(t, stmt.GrandTotal.Equal(decimal.NewFromInt(-522000)))
}

func TestClassifyAgingZeroBalancesExcluded(t *testing.T) {
	today := day(2025, 1, 22)
	rows := []Movement{
		{DueDate: day(2025, 1, 1), Balance: balance(0)},
		{DueDate: day(2025, 1, 1)}, // missing balance
	}

	stmt := ClassifyAging(rows, today)
	for _, b := range stmt.Buckets {
		assert.Empty(t, b.Rows, "bucket %s must be empty", b.Kind)
	}
	assert.True(t, stmt.GrandTotal.IsZero())
}

func TestClassifyAgingTotalsInvariant(t *testing.T) {
	today := day(2025, 6, 15)
	rows := []Movement{
		{DueDate: day(2025, 6, 1), Balance: balance(100)},
		{DueDate: day(2025, 6, 20), Balance: balance(250)},
		{DueDate: day(2025, 6, 10), Balance: balance(-75)},
		{DueDate: day(2025, 6, 10), Balance: balance(0)},
		{DueDate: day(2025, 7, 1), Balance: balance(33)},
	}

	stmt := ClassifyAging(rows, today)

	sum := decimal.Zero
	for _, b := range stmt.Buckets {
		sum = sum.Add(b.Subtotal)
	}
	assert.True(t, sum.Equal(stmt.GrandTotal), "bucket subtotals %s must equal grand total %s", sum, stmt.GrandTotal)
}

func TestClassifyAgingDueTodayIsNotOverdue(t *testing.T) {
	today := day(2025, 1, 22)
	rows := []Movement{{DueDate: day(2025, 1, 22), Balance: balance(10)}}

	stmt := ClassifyAging(rows, today)
	assert.Empty(t, bucketByKind(t, stmt, BucketOverdue).Rows)
	assert.Len(t, bucketByKind(t, stmt, BucketNotYetDue).Rows, 1)
}

func TestClassifyAgingMissingDueDateGoesToNotYetDue(t *testing.T) {
	stmt := ClassifyAging([]Movement{{Balance: balance(10)}}, day(2025, 1, 22))
	assert.Len(t, bucketByKind(t, stmt, BucketNotYetDue).Rows, 1)
}

func TestClassifyAgingEndToEndScenario(t *testing.T) {
	today := day(2025, 1, 22)
	yesterday := day(2025, 1, 21)

	first := ClassifyAging([]Movement{
		{CustomerName: "VIGLIETTI CARLOS JAVIER", DueDate: yesterday, Balance: balance(-1846000)},
	}, today)
	assert.Len(t, bucketByKind(t, first, BucketCredit).Rows, 1)
	assert.Empty(t, bucketByKind(t, first, BucketOverdue).Rows)
	assert.Empty(t, bucketByKind(t, first, BucketNotYetDue).Rows)
	assert.True(t, first.GrandTotal.Equal(decimal.NewFromInt(-1846000)))

	second := ClassifyAging([]Movement{
		{CustomerName: "OTRO CLIENTE SA", DueDate: yesterday, Balance: balance(824000)},
	}, today)
	assert.Empty(t, bucketByKind(t, second, BucketCredit).Rows)
	assert.True(t, bucketByKind(t, second, BucketOverdue).Subtotal.Equal(decimal.NewFromInt(824000)))
	assert.True(t, second.GrandTotal.Equal(decimal.NewFromInt(824000)))
}

func TestClassifyLedgerSplitsOnPendingDeliveryMarker(t *testing.T) {
	rows := []Movement{
		{DocNumber: "FC00000100", Balance: balance(1000)},
		{DocNumber: "RT R00000200", Balance: balance(500)},
		{DocNumber: "RC00000300", Balance: balance(-250)},
	}

	stmt := ClassifyLedger(rows)

	debt := bucketByKind(t, stmt, BucketLedgerDebt)
	pending := bucketByKind(t, stmt, BucketPendingDelivery)
	require.Len(t, debt.Rows, 2)
	require.Len(t, pending.Rows, 1)

	// Final balance tracks the last row of the primary section.
	require.True(t, stmt.FinalBalance.Valid)
	assert.True(t, stmt.FinalBalance.Decimal.Equal(decimal.NewFromInt(-250)))
}

func TestClassifyLedgerKeepsZeroBalanceRows(t *testing.T) {
	rows := []Movement{
		{DocNumber: "FC00000100", Balance: balance(0)},
		{DocNumber: "FC00000200"},
	}
	stmt := ClassifyLedger(rows)
	assert.Len(t, bucketByKind(t, stmt, BucketLedgerDebt).Rows, 2)
	assert.True(t, stmt.GrandTotal.IsZero())
}

func TestClassifyIdentityFromRows(t *testing.T) {
	rows := []Movement{
		{CustomerCode: "C001", CustomerName: "ACME SA", Balance: balance(1)},
		{CustomerCode: "C001", CustomerName: "ACME SA", Salesperson: "PEREZ", Balance: balance(2)},
	}
	stmt := ClassifyAging(rows, time.Now())
	assert.Equal(t, "C001", stmt.CustomerCode)
	assert.Equal(t, "ACME SA", stmt.CustomerName)
	assert.Equal(t, "PEREZ", stmt.Salesperson)
}
