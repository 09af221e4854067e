package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/streetbite-pos/api/internal/service"
	"github.com/streetbite-pos/api/internal/store"
)

// mockOrderStore records calls and returns canned results.
type mockOrderStore struct {
	recordTallyFn     func(ctx context.Context, item string, price decimal.Decimal) (store.TallyOrder, error)
	summaryFn         func(ctx context.Context) ([]store.ItemSummary, error)
	createTicketFn    func(ctx context.Context, items []store.LineItem) (store.Ticket, error)
	createFullOrderFn func(ctx context.Context, arg store.CreateFullOrderParams) (store.FullOrder, error)
}

func (m *mockOrderStore) RecordTally(ctx context.Context, item string, price decimal.Decimal) (store.TallyOrder, error) {
	return m.recordTallyFn(ctx, item, price)
}

func (m *mockOrderStore) Summary(ctx context.Context) ([]store.ItemSummary, error) {
	return m.summaryFn(ctx)
}

func (m *mockOrderStore) CreateTicket(ctx context.Context, items []store.LineItem) (store.Ticket, error) {
	return m.createTicketFn(ctx, items)
}

func (m *mockOrderStore) CreateFullOrder(ctx context.Context, arg store.CreateFullOrderParams) (store.FullOrder, error) {
	return m.createFullOrderFn(ctx, arg)
}

func TestRecordTally_EmptyItem(t *testing.T) {
	svc := service.NewOrderService(&mockOrderStore{})

	_, err := svc.RecordTally(context.Background(), "", decimal.Zero)
	if !errors.Is(err, service.ErrEmptyItem) {
		t.Errorf("got %v, want ErrEmptyItem", err)
	}
}

func TestRecordTally_NegativePrice(t *testing.T) {
	svc := service.NewOrderService(&mockOrderStore{})

	_, err := svc.RecordTally(context.Background(), "Burger", decimal.NewFromInt(-1))
	if !errors.Is(err, service.ErrNegativePrice) {
		t.Errorf("got %v, want ErrNegativePrice", err)
	}
}

func TestRecordTally_Success(t *testing.T) {
	mock := &mockOrderStore{
		recordTallyFn: func(ctx context.Context, item string, price decimal.Decimal) (store.TallyOrder, error) {
			return store.TallyOrder{ID: 1, Item: item, Price: price}, nil
		},
	}
	svc := service.NewOrderService(mock)

	tally, err := svc.RecordTally(context.Background(), "Burger", decimal.RequireFromString("5.50"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tally.Item != "Burger" {
		t.Errorf("item: got %q, want Burger", tally.Item)
	}
}

func TestSubmitTicket_EmptyItems(t *testing.T) {
	svc := service.NewOrderService(&mockOrderStore{})

	_, err := svc.SubmitTicket(context.Background(), nil)
	if !errors.Is(err, service.ErrEmptyItems) {
		t.Errorf("got %v, want ErrEmptyItems", err)
	}
}

func TestSubmitTicket_UnnamedItem(t *testing.T) {
	svc := service.NewOrderService(&mockOrderStore{})

	_, err := svc.SubmitTicket(context.Background(), []store.LineItem{
		{Name: "Burger", Price: decimal.RequireFromString("5.50")},
		{Name: ""},
	})
	if !errors.Is(err, service.ErrEmptyItemName) {
		t.Errorf("got %v, want ErrEmptyItemName", err)
	}
}

func TestSubmitTicket_Success(t *testing.T) {
	items := []store.LineItem{
		{Name: "Burger", Price: decimal.RequireFromString("5.50"), Options: []string{"no onions"}},
	}
	mock := &mockOrderStore{
		createTicketFn: func(ctx context.Context, got []store.LineItem) (store.Ticket, error) {
			return store.Ticket{ID: 7, Items: got}, nil
		},
	}
	svc := service.NewOrderService(mock)

	ticket, err := svc.SubmitTicket(context.Background(), items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticket.ID != 7 {
		t.Errorf("id: got %d, want 7", ticket.ID)
	}
	if len(ticket.Items) != 1 || ticket.Items[0].Name != "Burger" {
		t.Errorf("items not passed through: %+v", ticket.Items)
	}
}

func TestFinalizeOrder_NegativeTotal(t *testing.T) {
	svc := service.NewOrderService(&mockOrderStore{})

	_, err := svc.FinalizeOrder(context.Background(), service.FinalizeOrderRequest{
		Items:      []store.LineItem{{Name: "Burger"}},
		TotalPrice: decimal.NewFromInt(-5),
	})
	if !errors.Is(err, service.ErrNegativeTotal) {
		t.Errorf("got %v, want ErrNegativeTotal", err)
	}
}

func TestFinalizeOrder_InvalidOrderType(t *testing.T) {
	svc := service.NewOrderService(&mockOrderStore{})

	_, err := svc.FinalizeOrder(context.Background(), service.FinalizeOrderRequest{
		Items:      []store.LineItem{{Name: "Burger"}},
		TotalPrice: decimal.NewFromInt(5),
		OrderType:  "drive-thru",
	})
	if !errors.Is(err, service.ErrInvalidOrderType) {
		t.Errorf("got %v, want ErrInvalidOrderType", err)
	}
}

func TestFinalizeOrder_DefaultsOrderType(t *testing.T) {
	var captured store.CreateFullOrderParams
	mock := &mockOrderStore{
		createFullOrderFn: func(ctx context.Context, arg store.CreateFullOrderParams) (store.FullOrder, error) {
			captured = arg
			return store.FullOrder{ID: 1, OrderType: arg.OrderType}, nil
		},
	}
	svc := service.NewOrderService(mock)

	order, err := svc.FinalizeOrder(context.Background(), service.FinalizeOrderRequest{
		Items:      []store.LineItem{{Name: "Burger", Price: decimal.RequireFromString("5.50")}},
		TotalPrice: decimal.RequireFromString("5.50"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.OrderType != "standard" {
		t.Errorf("order type: got %q, want standard", captured.OrderType)
	}
	if order.OrderType != "standard" {
		t.Errorf("returned order type: got %q, want standard", order.OrderType)
	}
}

func TestFinalizeOrder_StoreError(t *testing.T) {
	storeErr := errors.New("connection lost")
	mock := &mockOrderStore{
		createFullOrderFn: func(ctx context.Context, arg store.CreateFullOrderParams) (store.FullOrder, error) {
			return store.FullOrder{}, storeErr
		},
	}
	svc := service.NewOrderService(mock)

	_, err := svc.FinalizeOrder(context.Background(), service.FinalizeOrderRequest{
		Items:      []store.LineItem{{Name: "Burger"}},
		TotalPrice: decimal.NewFromInt(5),
		OrderType:  "takeaway",
	})
	if !errors.Is(err, storeErr) {
		t.Errorf("got %v, want store error propagated", err)
	}
}
