package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Postgres implements Store on top of a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres-backed store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) RecordTally(ctx context.Context, item string, price decimal.Decimal) (TallyOrder, error) {
	var (
		o       TallyOrder
		numeric pgtype.Numeric
	)
	err := p.pool.QueryRow(ctx, `
		INSERT INTO orders (item, price, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, item, price, created_at`,
		item, decimalToNumeric(price), time.Now().UTC(),
	).Scan(&o.ID, &o.Item, &numeric, &o.CreatedAt)
	if err != nil {
		return TallyOrder{}, fmt.Errorf("insert tally order: %w", err)
	}
	o.Price = numericToDecimal(numeric)
	return o, nil
}

func (p *Postgres) Summary(ctx context.Context) ([]ItemSummary, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT item, COUNT(*), COALESCE(SUM(price), 0)
		FROM orders
		GROUP BY item
		ORDER BY MIN(id)`)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	summary := []ItemSummary{}
	for rows.Next() {
		var (
			s       ItemSummary
			numeric pgtype.Numeric
		)
		if err := rows.Scan(&s.Item, &s.Count, &numeric); err != nil {
			return nil, fmt.Errorf("scan summary row: %w", err)
		}
		s.Total = numericToDecimal(numeric)
		summary = append(summary, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary rows: %w", err)
	}
	return summary, nil
}

func (p *Postgres) CreateTicket(ctx context.Context, items []LineItem) (Ticket, error) {
	payload, err := json.Marshal(items)
	if err != nil {
		return Ticket{}, fmt.Errorf("marshal ticket items: %w", err)
	}

	t := Ticket{Items: items}
	err = p.pool.QueryRow(ctx, `
		INSERT INTO tickets (items, order_id, created_at)
		VALUES ($1, NULL, $2)
		RETURNING id, created_at`,
		payload, time.Now().UTC(),
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return Ticket{}, fmt.Errorf("insert ticket: %w", err)
	}
	return t, nil
}

func (p *Postgres) ListTickets(ctx context.Context) ([]TicketView, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT t.id, t.items, t.order_id, t.created_at, f.display_order_number
		FROM tickets t
		LEFT JOIN full_orders f ON t.order_id = f.id
		ORDER BY t.id`)
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()

	tickets := []TicketView{}
	for rows.Next() {
		var (
			tv      TicketView
			payload []byte
		)
		if err := rows.Scan(&tv.ID, &payload, &tv.OrderID, &tv.CreatedAt, &tv.DisplayOrderNumber); err != nil {
			return nil, fmt.Errorf("scan ticket row: %w", err)
		}
		if err := json.Unmarshal(payload, &tv.Items); err != nil {
			return nil, fmt.Errorf("unmarshal ticket %d items: %w", tv.ID, err)
		}
		tickets = append(tickets, tv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ticket rows: %w", err)
	}
	return tickets, nil
}

// DeleteTicket is idempotent: clearing an absent id is not an error.
func (p *Postgres) DeleteTicket(ctx context.Context, id int64) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete ticket: %w", err)
	}
	return nil
}

// CreateFullOrder assigns the display number from an atomic per-day
// sequence and inserts the order together with its kitchen ticket in a
// single transaction, so a full order can never exist without its ticket.
func (p *Postgres) CreateFullOrder(ctx context.Context, arg CreateFullOrderParams) (FullOrder, error) {
	payload, err := json.Marshal(arg.Items)
	if err != nil {
		return FullOrder{}, fmt.Errorf("marshal order items: %w", err)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return FullOrder{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()

	var seq int32
	err = tx.QueryRow(ctx, `
		INSERT INTO daily_sequences (day, seq)
		VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET seq = daily_sequences.seq + 1
		RETURNING seq`,
		now.Format("2006-01-02"),
	).Scan(&seq)
	if err != nil {
		return FullOrder{}, fmt.Errorf("bump daily sequence: %w", err)
	}
	displayNumber := fmt.Sprintf("%s-%03d", now.Format("20060102"), seq)

	order := FullOrder{
		Items:              arg.Items,
		TotalPrice:         arg.TotalPrice,
		Combo:              arg.Combo,
		LemonadeUpgrade:    arg.LemonadeUpgrade,
		OrderType:          arg.OrderType,
		DisplayOrderNumber: displayNumber,
		CreatedAt:          now,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO full_orders (items, total_price, combo, lemonade_upgrade, order_type, display_order_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		payload, decimalToNumeric(arg.TotalPrice), arg.Combo, arg.LemonadeUpgrade,
		arg.OrderType, displayNumber, now,
	).Scan(&order.ID)
	if err != nil {
		return FullOrder{}, fmt.Errorf("insert full order: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO tickets (items, order_id, created_at)
		VALUES ($1, $2, $3)`,
		payload, order.ID, now,
	)
	if err != nil {
		return FullOrder{}, fmt.Errorf("insert order ticket: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return FullOrder{}, fmt.Errorf("commit tx: %w", err)
	}
	return order, nil
}

func (p *Postgres) ListFullOrders(ctx context.Context, since *time.Time) ([]FullOrder, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, items, total_price, combo, lemonade_upgrade, order_type, display_order_number, created_at
		FROM full_orders
		WHERE $1::timestamptz IS NULL OR created_at >= $1
		ORDER BY created_at, id`,
		since)
	if err != nil {
		return nil, fmt.Errorf("query full orders: %w", err)
	}
	defer rows.Close()
	return scanFullOrders(rows)
}

func (p *Postgres) ListFullOrdersDesc(ctx context.Context) ([]FullOrder, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, items, total_price, combo, lemonade_upgrade, order_type, display_order_number, created_at
		FROM full_orders
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query full orders: %w", err)
	}
	defer rows.Close()
	return scanFullOrders(rows)
}

// DeleteFullOrders removes the given orders and reconciles tickets:
// any ticket pointing at a full order that no longer exists is dropped.
// Standalone tickets (NULL order_id) are never touched. Absent ids are
// counted as already deleted, not errors.
func (p *Postgres) DeleteFullOrders(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx, `DELETE FROM full_orders WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("delete full orders: %w", err)
	}

	// The FK cascade already removed the paired tickets; this catches
	// rows predating the foreign key.
	_, err = tx.Exec(ctx, `
		DELETE FROM tickets
		WHERE order_id IS NOT NULL
		  AND order_id NOT IN (SELECT id FROM full_orders)`)
	if err != nil {
		return 0, fmt.Errorf("reconcile tickets: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteBefore removes full orders and tickets created strictly before
// the cutoff.
func (p *Postgres) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, int64, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	orderTag, err := tx.Exec(ctx, `DELETE FROM full_orders WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("delete full orders before cutoff: %w", err)
	}

	ticketTag, err := tx.Exec(ctx, `
		DELETE FROM tickets
		WHERE created_at < $1
		   OR (order_id IS NOT NULL AND order_id NOT IN (SELECT id FROM full_orders))`,
		cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("delete tickets before cutoff: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("commit tx: %w", err)
	}
	return orderTag.RowsAffected(), ticketTag.RowsAffected(), nil
}

// ResetAll wipes every table and restarts the identity sequences, so
// the next inserted row in each table gets id 1. Destructive and
// irreversible; the confirmation gate lives in the handler.
func (p *Postgres) ResetAll(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		TRUNCATE orders, tickets, full_orders, daily_sequences
		RESTART IDENTITY CASCADE`)
	if err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

// --- Helpers ---

type fullOrderRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanFullOrders(rows fullOrderRows) ([]FullOrder, error) {
	orders := []FullOrder{}
	for rows.Next() {
		var (
			o       FullOrder
			payload []byte
			numeric pgtype.Numeric
		)
		if err := rows.Scan(&o.ID, &payload, &numeric, &o.Combo, &o.LemonadeUpgrade,
			&o.OrderType, &o.DisplayOrderNumber, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan full order row: %w", err)
		}
		if err := json.Unmarshal(payload, &o.Items); err != nil {
			return nil, fmt.Errorf("unmarshal order %d items: %w", o.ID, err)
		}
		o.TotalPrice = numericToDecimal(numeric)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate full order rows: %w", err)
	}
	return orders, nil
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
