package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/streetbite-pos/api/internal/store"
)

func finalize(t *testing.T, m *store.Memory, total string) store.FullOrder {
	t.Helper()
	order, err := m.CreateFullOrder(context.Background(), store.CreateFullOrderParams{
		Items:      []store.LineItem{{Name: "Burger", Price: decimal.RequireFromString(total)}},
		TotalPrice: decimal.RequireFromString(total),
		OrderType:  "standard",
	})
	if err != nil {
		t.Fatalf("create full order: %v", err)
	}
	return order
}

func TestSummary_GroupsInFirstSeenOrder(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	for _, rec := range []struct {
		item  string
		price string
	}{
		{"Burger", "5.50"},
		{"Fries", "2.00"},
		{"Burger", "5.50"},
		{"Lemonade", "1.50"},
	} {
		if _, err := m.RecordTally(ctx, rec.item, decimal.RequireFromString(rec.price)); err != nil {
			t.Fatalf("record tally: %v", err)
		}
	}

	summary, err := m.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(summary) != 3 {
		t.Fatalf("rows: got %d, want 3", len(summary))
	}
	if summary[0].Item != "Burger" || summary[0].Count != 2 || summary[0].Total.StringFixed(2) != "11.00" {
		t.Errorf("burger row: %+v", summary[0])
	}
	if summary[1].Item != "Fries" || summary[1].Count != 1 {
		t.Errorf("fries row: %+v", summary[1])
	}
	if summary[2].Item != "Lemonade" {
		t.Errorf("lemonade row: %+v", summary[2])
	}
}

func TestCreateFullOrder_DisplaySequencePerDay(t *testing.T) {
	m := store.NewMemory()
	day1 := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	m.SetClock(func() time.Time { return day1 })

	first := finalize(t, m, "5.50")
	second := finalize(t, m, "7.00")
	if first.DisplayOrderNumber != "20260831-001" {
		t.Errorf("first display number: got %q", first.DisplayOrderNumber)
	}
	if second.DisplayOrderNumber != "20260831-002" {
		t.Errorf("second display number: got %q", second.DisplayOrderNumber)
	}

	// The sequence restarts on the next day.
	m.SetClock(func() time.Time { return day1.AddDate(0, 0, 1) })
	third := finalize(t, m, "3.00")
	if third.DisplayOrderNumber != "20260901-001" {
		t.Errorf("next-day display number: got %q", third.DisplayOrderNumber)
	}
}

func TestCreateFullOrder_TicketSharesOrder(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	order := finalize(t, m, "5.50")

	tickets, err := m.ListTickets(ctx)
	if err != nil {
		t.Fatalf("list tickets: %v", err)
	}
	if len(tickets) != 1 {
		t.Fatalf("tickets: got %d, want 1", len(tickets))
	}
	tk := tickets[0]
	if tk.OrderID == nil || *tk.OrderID != order.ID {
		t.Errorf("ticket order id: got %v, want %d", tk.OrderID, order.ID)
	}
	if tk.DisplayOrderNumber == nil || *tk.DisplayOrderNumber != order.DisplayOrderNumber {
		t.Errorf("ticket display number: got %v, want %q", tk.DisplayOrderNumber, order.DisplayOrderNumber)
	}
	if !tk.CreatedAt.Equal(order.CreatedAt) {
		t.Errorf("ticket and order timestamps differ: %v vs %v", tk.CreatedAt, order.CreatedAt)
	}
}

func TestDeleteTicket_AbsentIDIsNoOp(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	if _, err := m.CreateTicket(ctx, []store.LineItem{{Name: "Burger"}}); err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	if err := m.DeleteTicket(ctx, 999); err != nil {
		t.Fatalf("delete absent ticket: %v", err)
	}
	tickets, err := m.ListTickets(ctx)
	if err != nil {
		t.Fatalf("list tickets: %v", err)
	}
	if len(tickets) != 1 {
		t.Errorf("tickets: got %d, want 1", len(tickets))
	}
}

func TestDeleteFullOrders_SparesStandaloneTickets(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	order := finalize(t, m, "5.50")
	if _, err := m.CreateTicket(ctx, []store.LineItem{{Name: "Fries"}}); err != nil {
		t.Fatalf("create standalone ticket: %v", err)
	}

	deleted, err := m.DeleteFullOrders(ctx, []int64{order.ID, 999})
	if err != nil {
		t.Fatalf("delete full orders: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted: got %d, want 1", deleted)
	}

	tickets, err := m.ListTickets(ctx)
	if err != nil {
		t.Fatalf("list tickets: %v", err)
	}
	if len(tickets) != 1 {
		t.Fatalf("tickets after delete: got %d, want 1", len(tickets))
	}
	if tickets[0].OrderID != nil {
		t.Errorf("surviving ticket should be standalone, got order id %v", tickets[0].OrderID)
	}
}

func TestDeleteBefore_StrictlyOlder(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	cutoff := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	m.SetClock(func() time.Time { return cutoff.Add(-time.Hour) })
	finalize(t, m, "5.00")
	m.SetClock(func() time.Time { return cutoff })
	atCutoff := finalize(t, m, "6.00")
	m.SetClock(func() time.Time { return cutoff.Add(time.Hour) })
	after := finalize(t, m, "7.00")

	orders, tickets, err := m.DeleteBefore(ctx, cutoff)
	if err != nil {
		t.Fatalf("delete before: %v", err)
	}
	if orders != 1 {
		t.Errorf("orders deleted: got %d, want 1", orders)
	}
	if tickets != 1 {
		t.Errorf("tickets deleted: got %d, want 1", tickets)
	}

	remaining, err := m.ListFullOrders(ctx, nil)
	if err != nil {
		t.Fatalf("list full orders: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("remaining orders: got %d, want 2", len(remaining))
	}
	if remaining[0].ID != atCutoff.ID || remaining[1].ID != after.ID {
		t.Errorf("wrong orders survived: %+v", remaining)
	}
}

func TestListFullOrders_SinceFilterAndOrder(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	base := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		m.SetClock(func() time.Time { return at })
		finalize(t, m, "5.00")
	}

	since := base.Add(time.Hour)
	orders, err := m.ListFullOrders(ctx, &since)
	if err != nil {
		t.Fatalf("list full orders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("filtered orders: got %d, want 2", len(orders))
	}
	if !orders[0].CreatedAt.Before(orders[1].CreatedAt) {
		t.Error("orders must come back in ascending creation order")
	}

	desc, err := m.ListFullOrdersDesc(ctx)
	if err != nil {
		t.Fatalf("list full orders desc: %v", err)
	}
	if len(desc) != 3 {
		t.Fatalf("desc orders: got %d, want 3", len(desc))
	}
	if !desc[0].CreatedAt.After(desc[2].CreatedAt) {
		t.Error("desc listing must start with the newest order")
	}
}

func TestResetAll_RestartsIdentity(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	m.SetClock(func() time.Time { return time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC) })
	finalize(t, m, "5.00")
	finalize(t, m, "6.00")
	if _, err := m.RecordTally(ctx, "Burger", decimal.Zero); err != nil {
		t.Fatalf("record tally: %v", err)
	}

	if err := m.ResetAll(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	summary, err := m.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(summary) != 0 {
		t.Errorf("summary after reset: got %d rows, want 0", len(summary))
	}

	order := finalize(t, m, "5.00")
	if order.ID != 1 {
		t.Errorf("order id after reset: got %d, want 1", order.ID)
	}
	if order.DisplayOrderNumber != "20260831-001" {
		t.Errorf("display number after reset: got %q", order.DisplayOrderNumber)
	}

	tally, err := m.RecordTally(ctx, "Fries", decimal.Zero)
	if err != nil {
		t.Fatalf("record tally after reset: %v", err)
	}
	if tally.ID != 1 {
		t.Errorf("tally id after reset: got %d, want 1", tally.ID)
	}
}

func TestItems_RoundTripIsolated(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	items := []store.LineItem{
		{Name: "Burger", Price: decimal.RequireFromString("5.50"), Options: []string{"no onions"}},
	}
	ticket, err := m.CreateTicket(ctx, items)
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}

	// Mutating the caller's slice must not leak into the store.
	items[0].Name = "changed"
	items[0].Options[0] = "changed"

	got, err := m.ListTickets(ctx)
	if err != nil {
		t.Fatalf("list tickets: %v", err)
	}
	if got[0].Items[0].Name != "Burger" {
		t.Errorf("item name mutated: %q", got[0].Items[0].Name)
	}
	if got[0].Items[0].Options[0] != "no onions" {
		t.Errorf("item options mutated: %q", got[0].Items[0].Options[0])
	}
	if ticket.Items[0].Name != "Burger" {
		t.Errorf("returned ticket mutated: %q", ticket.Items[0].Name)
	}
}
