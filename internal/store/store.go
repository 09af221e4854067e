// Package store defines the persistence contract for the tracker and its
// two backends: PostgreSQL for production and an in-memory map store for
// tests and local demos. All business logic lives above this interface so
// that a backend swap never duplicates it.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a single entry on a cart. Name is required; Price and
// Options are optional. The slice round-trips through JSON exactly as
// submitted (same items, same order, same fields).
type LineItem struct {
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Options []string        `json:"options,omitempty"`
}

// TallyOrder is a lightweight single-line order used only for the
// per-item count/sum summary. Append-only until a full reset.
type TallyOrder struct {
	ID        int64           `json:"id"`
	Item      string          `json:"item"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

// ItemSummary is one row of the tally summary, grouped by item name.
// Rows come back in first-recorded order.
type ItemSummary struct {
	Item  string
	Count int64
	Total decimal.Decimal
}

// Ticket is a kitchen work item. OrderID is set when the ticket was
// created by finalizing a full order and nil for standalone carts.
type Ticket struct {
	ID        int64      `json:"id"`
	Items     []LineItem `json:"items"`
	OrderID   *int64     `json:"order_id"`
	CreatedAt time.Time  `json:"created_at"`
}

// TicketView is a ticket joined with the display number of its full
// order, if any.
type TicketView struct {
	Ticket
	DisplayOrderNumber *string `json:"display_order_number"`
}

// FullOrder is the finalized, billed record of a completed order.
type FullOrder struct {
	ID                 int64           `json:"id"`
	Items              []LineItem      `json:"items"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	Combo              bool            `json:"combo"`
	LemonadeUpgrade    bool            `json:"lemonade_upgrade"`
	OrderType          string          `json:"order_type"`
	DisplayOrderNumber string          `json:"display_order_number"`
	CreatedAt          time.Time       `json:"created_at"`
}

// CreateFullOrderParams carries the validated fields for FinalizeOrder.
// The display order number is assigned by the store from an atomic
// per-day sequence, never by the caller.
type CreateFullOrderParams struct {
	Items           []LineItem
	TotalPrice      decimal.Decimal
	Combo           bool
	LemonadeUpgrade bool
	OrderType       string
}

// Store is the persistence contract shared by both backends.
//
// Reads return empty slices when there is no data; they never treat
// "no rows" as an error. Deletes of absent ids are no-ops. Write
// failures always surface as errors; callers must not report success
// on a failed write.
type Store interface {
	// Tally orders
	RecordTally(ctx context.Context, item string, price decimal.Decimal) (TallyOrder, error)
	Summary(ctx context.Context) ([]ItemSummary, error)

	// Tickets
	CreateTicket(ctx context.Context, items []LineItem) (Ticket, error)
	ListTickets(ctx context.Context) ([]TicketView, error)
	DeleteTicket(ctx context.Context, id int64) error

	// Full orders. CreateFullOrder atomically bumps the daily sequence,
	// inserts the order and enqueues its kitchen ticket in one transaction.
	CreateFullOrder(ctx context.Context, arg CreateFullOrderParams) (FullOrder, error)
	ListFullOrders(ctx context.Context, since *time.Time) ([]FullOrder, error)
	ListFullOrdersDesc(ctx context.Context) ([]FullOrder, error)

	// Admin maintenance. DeleteFullOrders reconciles orphaned tickets
	// after deletion; standalone tickets are left alone.
	DeleteFullOrders(ctx context.Context, ids []int64) (int64, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (orders, tickets int64, err error)
	ResetAll(ctx context.Context) error
}
