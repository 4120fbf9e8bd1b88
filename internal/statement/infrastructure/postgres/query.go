package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ctacte-backend/internal/observability/metrics"
	statement "ctacte-backend/internal/statement/domain"
)

const defaultMovementTable = "movimientos_cta_cte"

// MovementQuery reads customer account movements from Postgres.
type MovementQuery struct {
	db    *sql.DB
	table string
}

// QueryOption customizes a query.
type QueryOption func(*MovementQuery)

// WithTable overrides the movement table name.
func WithTable(table string) QueryOption {
	return func(q *MovementQuery) { q.table = table }
}

// NewMovementQuery constructs a query with the default table name.
func NewMovementQuery(db *sql.DB, opts ...QueryOption) *MovementQuery {
	query := &MovementQuery{db: db, table: defaultMovementTable}
	for _, opt := range opts {
		opt(query)
	}
	return query
}

// HistoryByCustomer returns the customer's movement history within the
// lookback window, preceded by a synthetic "Saldo Anterior" row aggregating
// everything older than the cutoff. Only enabled rows participate.
func (q *MovementQuery) HistoryByCustomer(ctx context.Context, customerName string, cutoff time.Time) ([]statement.Movement, error) {
	if q == nil || q.db == nil {
		return nil, errors.New("movement query: nil db")
	}
	if customerName == "" {
		return nil, errors.New("movement query: empty customer name")
	}
	start := time.Now()
	defer func() { metrics.ObserveQuery("movement_history", time.Since(start)) }()

	query := fmt.Sprintf(`
SELECT MIN(cliente_cod), 'Saldos', 'Saldo Anterior', $2::date, $2::date, '', MIN(vendedor),
	ROUND(SUM(total_loc)::numeric, 2), ROUND(SUM(saldo_loc)::numeric, 2)
FROM %[1]s
WHERE razon_social = $1 AND habilitado AND fecha < $2
HAVING COUNT(*) > 0
UNION ALL
SELECT cliente_cod, comp_tipo, comp_nro, fecha, fecha_vto, cond_vta, vendedor, total_loc, saldo_loc
FROM %[1]s
WHERE razon_social = $1 AND habilitado AND fecha >= $2
ORDER BY 4 ASC`, q.table)

	rows, err := q.db.QueryContext(ctx, query, customerName, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []statement.Movement
	for rows.Next() {
		var (
			code, docType, docNumber, saleCond, salesperson sql.NullString
			issued, due                                     sql.NullTime
			total, balance                                  sql.NullFloat64
		)
		if err := rows.Scan(&code, &docType, &docNumber, &issued, &due, &saleCond, &salesperson, &total, &balance); err != nil {
			return nil, err
		}
		m := statement.Movement{
			CustomerCode:  code.String,
			CustomerName:  customerName,
			Salesperson:   salesperson.String,
			DocNumber:     statement.NormalizeDocCode(strings.TrimSpace(docType.String + " " + docNumber.String)),
			SaleCondition: saleCond.String,
			Balance:       nullDecimal(balance),
		}
		if issued.Valid {
			m.IssueDate = issued.Time.UTC()
		}
		if due.Valid {
			m.DueDate = due.Time.UTC()
		}
		// The history query carries one signed gross amount per line; map it
		// onto the debit or credit column by sign.
		if total.Valid {
			gross := decimal.NewFromFloat(total.Float64)
			if gross.IsNegative() {
				m.Credit = decimal.NullDecimal{Decimal: gross.Abs(), Valid: true}
			} else {
				m.Debit = decimal.NullDecimal{Decimal: gross, Valid: true}
			}
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movements, nil
}

func nullDecimal(v sql.NullFloat64) decimal.NullDecimal {
	if !v.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: decimal.NewFromFloat(v.Float64), Valid: true}
}

// CustomerContact is one customer with documents loaded today.
type CustomerContact struct {
	Name        string `json:"razonSocial"`
	Email       string `json:"email"`
	Salesperson string `json:"vendedor"`
}

// CustomerQuery reads customer contact data from Postgres.
type CustomerQuery struct {
	db *sql.DB
}

// NewCustomerQuery constructs a customer query.
func NewCustomerQuery(db *sql.DB) *CustomerQuery {
	return &CustomerQuery{db: db}
}

// LoadedToday returns the distinct customers with documents issued today,
// alphabetically, with their email and salesperson.
func (q *CustomerQuery) LoadedToday(ctx context.Context) ([]CustomerContact, error) {
	if q == nil || q.db == nil {
		return nil, errors.New("customer query: nil db")
	}
	start := time.Now()
	defer func() { metrics.ObserveQuery("customers_loaded_today", time.Since(start)) }()

	const query = `
SELECT DISTINCT m.razon_social, COALESCE(c.email, ''), COALESCE(m.vendedor, '')
FROM movimientos_cta_cte m
LEFT JOIN clientes c ON c.cliente_cod = m.cliente_cod
WHERE m.fecha::date = CURRENT_DATE AND m.habilitado
ORDER BY m.razon_social ASC`

	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []CustomerContact
	for rows.Next() {
		var c CustomerContact
		if err := rows.Scan(&c.Name, &c.Email, &c.Salesperson); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return contacts, nil
}
