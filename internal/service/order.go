package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/streetbite-pos/api/internal/enum"
	"github.com/streetbite-pos/api/internal/store"
)

// Errors returned by the order service.
var (
	ErrEmptyItem        = errors.New("item is required")
	ErrEmptyItems       = errors.New("items are required")
	ErrEmptyItemName    = errors.New("item name is required")
	ErrNegativePrice    = errors.New("price must not be negative")
	ErrNegativeTotal    = errors.New("total_price must not be negative")
	ErrInvalidOrderType = errors.New("invalid order_type")
)

// OrderStore defines the store methods needed by the order service.
// Satisfied by both store backends; narrow interface for testability.
type OrderStore interface {
	RecordTally(ctx context.Context, item string, price decimal.Decimal) (store.TallyOrder, error)
	Summary(ctx context.Context) ([]store.ItemSummary, error)
	CreateTicket(ctx context.Context, items []store.LineItem) (store.Ticket, error)
	CreateFullOrder(ctx context.Context, arg store.CreateFullOrderParams) (store.FullOrder, error)
}

// OrderService validates and executes order submissions.
type OrderService struct {
	store OrderStore
}

func NewOrderService(s OrderStore) *OrderService {
	return &OrderService{store: s}
}

// FinalizeOrderRequest is the validated input for FinalizeOrder.
type FinalizeOrderRequest struct {
	Items           []store.LineItem
	TotalPrice      decimal.Decimal
	Combo           bool
	LemonadeUpgrade bool
	OrderType       string
}

// RecordTally records a single-line order for the per-item summary.
// Price defaults to zero when absent.
func (s *OrderService) RecordTally(ctx context.Context, item string, price decimal.Decimal) (store.TallyOrder, error) {
	if item == "" {
		return store.TallyOrder{}, ErrEmptyItem
	}
	if price.IsNegative() {
		return store.TallyOrder{}, ErrNegativePrice
	}
	return s.store.RecordTally(ctx, item, price)
}

// Summary groups all recorded tally orders by item name.
func (s *OrderService) Summary(ctx context.Context) ([]store.ItemSummary, error) {
	return s.store.Summary(ctx)
}

// SubmitTicket enqueues a standalone kitchen ticket for a cart.
func (s *OrderService) SubmitTicket(ctx context.Context, items []store.LineItem) (store.Ticket, error) {
	if err := validateItems(items); err != nil {
		return store.Ticket{}, err
	}
	return s.store.CreateTicket(ctx, items)
}

// FinalizeOrder persists a completed order and its kitchen ticket. The
// display order number is assigned atomically by the store.
func (s *OrderService) FinalizeOrder(ctx context.Context, req FinalizeOrderRequest) (store.FullOrder, error) {
	if err := validateItems(req.Items); err != nil {
		return store.FullOrder{}, err
	}
	if req.TotalPrice.IsNegative() {
		return store.FullOrder{}, ErrNegativeTotal
	}

	orderType := req.OrderType
	if orderType == "" {
		orderType = enum.OrderTypeStandard
	}
	switch orderType {
	case enum.OrderTypeStandard, enum.OrderTypeTakeaway, enum.OrderTypeDelivery:
	default:
		return store.FullOrder{}, ErrInvalidOrderType
	}

	return s.store.CreateFullOrder(ctx, store.CreateFullOrderParams{
		Items:           req.Items,
		TotalPrice:      req.TotalPrice,
		Combo:           req.Combo,
		LemonadeUpgrade: req.LemonadeUpgrade,
		OrderType:       orderType,
	})
}

func validateItems(items []store.LineItem) error {
	if len(items) == 0 {
		return ErrEmptyItems
	}
	for i, item := range items {
		if item.Name == "" {
			return fmt.Errorf("items[%d]: %w", i, ErrEmptyItemName)
		}
		if item.Price.IsNegative() {
			return fmt.Errorf("items[%d]: %w", i, ErrNegativePrice)
		}
	}
	return nil
}
