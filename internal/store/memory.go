package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Memory implements Store with mutex-guarded slices. It backs the unit
// tests and the local demo mode; semantics match the Postgres backend,
// including identity restart on reset and per-day display sequences.
type Memory struct {
	mu sync.Mutex

	tallies    []TallyOrder
	tickets    []Ticket
	fullOrders []FullOrder

	nextTallyID  int64
	nextTicketID int64
	nextOrderID  int64

	daySeq map[string]int

	now func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		nextTallyID:  1,
		nextTicketID: 1,
		nextOrderID:  1,
		daySeq:       map[string]int{},
		now:          time.Now,
	}
}

// SetClock overrides the time source. Test hook.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Memory) RecordTally(_ context.Context, item string, price decimal.Decimal) (TallyOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o := TallyOrder{
		ID:        m.nextTallyID,
		Item:      item,
		Price:     price,
		CreatedAt: m.now().UTC(),
	}
	m.nextTallyID++
	m.tallies = append(m.tallies, o)
	return o, nil
}

func (m *Memory) Summary(_ context.Context) ([]ItemSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	index := map[string]int{}
	summary := []ItemSummary{}
	for _, o := range m.tallies {
		i, ok := index[o.Item]
		if !ok {
			i = len(summary)
			index[o.Item] = i
			summary = append(summary, ItemSummary{Item: o.Item, Total: decimal.Zero})
		}
		summary[i].Count++
		summary[i].Total = summary[i].Total.Add(o.Price)
	}
	return summary, nil
}

func (m *Memory) CreateTicket(_ context.Context, items []LineItem) (Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := Ticket{
		ID:        m.nextTicketID,
		Items:     cloneItems(items),
		CreatedAt: m.now().UTC(),
	}
	m.nextTicketID++
	m.tickets = append(m.tickets, t)
	return t, nil
}

func (m *Memory) ListTickets(_ context.Context) ([]TicketView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	displayByOrder := map[int64]string{}
	for _, o := range m.fullOrders {
		displayByOrder[o.ID] = o.DisplayOrderNumber
	}

	views := []TicketView{}
	for _, t := range m.tickets {
		tv := TicketView{Ticket: t}
		tv.Items = cloneItems(t.Items)
		if t.OrderID != nil {
			if display, ok := displayByOrder[*t.OrderID]; ok {
				tv.DisplayOrderNumber = &display
			}
		}
		views = append(views, tv)
	}
	return views, nil
}

func (m *Memory) DeleteTicket(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, t := range m.tickets {
		if t.ID == id {
			m.tickets = append(m.tickets[:i], m.tickets[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *Memory) CreateFullOrder(_ context.Context, arg CreateFullOrderParams) (FullOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	day := now.Format("20060102")
	m.daySeq[day]++

	order := FullOrder{
		ID:                 m.nextOrderID,
		Items:              cloneItems(arg.Items),
		TotalPrice:         arg.TotalPrice,
		Combo:              arg.Combo,
		LemonadeUpgrade:    arg.LemonadeUpgrade,
		OrderType:          arg.OrderType,
		DisplayOrderNumber: fmt.Sprintf("%s-%03d", day, m.daySeq[day]),
		CreatedAt:          now,
	}
	m.nextOrderID++
	m.fullOrders = append(m.fullOrders, order)

	orderID := order.ID
	m.tickets = append(m.tickets, Ticket{
		ID:        m.nextTicketID,
		Items:     cloneItems(arg.Items),
		OrderID:   &orderID,
		CreatedAt: now,
	})
	m.nextTicketID++

	return order, nil
}

func (m *Memory) ListFullOrders(_ context.Context, since *time.Time) ([]FullOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// fullOrders is already in ascending creation order.
	orders := []FullOrder{}
	for _, o := range m.fullOrders {
		if since != nil && o.CreatedAt.Before(*since) {
			continue
		}
		o.Items = cloneItems(o.Items)
		orders = append(orders, o)
	}
	return orders, nil
}

func (m *Memory) ListFullOrdersDesc(_ context.Context) ([]FullOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	orders := []FullOrder{}
	for i := len(m.fullOrders) - 1; i >= 0; i-- {
		o := m.fullOrders[i]
		o.Items = cloneItems(o.Items)
		orders = append(orders, o)
	}
	return orders, nil
}

func (m *Memory) DeleteFullOrders(_ context.Context, ids []int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	drop := map[int64]bool{}
	for _, id := range ids {
		drop[id] = true
	}

	var deleted int64
	kept := m.fullOrders[:0]
	remaining := map[int64]bool{}
	for _, o := range m.fullOrders {
		if drop[o.ID] {
			deleted++
			continue
		}
		remaining[o.ID] = true
		kept = append(kept, o)
	}
	m.fullOrders = kept

	m.reconcileTicketsLocked(remaining)
	return deleted, nil
}

func (m *Memory) DeleteBefore(_ context.Context, cutoff time.Time) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var orders int64
	keptOrders := m.fullOrders[:0]
	remaining := map[int64]bool{}
	for _, o := range m.fullOrders {
		if o.CreatedAt.Before(cutoff) {
			orders++
			continue
		}
		remaining[o.ID] = true
		keptOrders = append(keptOrders, o)
	}
	m.fullOrders = keptOrders

	var tickets int64
	keptTickets := m.tickets[:0]
	for _, t := range m.tickets {
		orphaned := t.OrderID != nil && !remaining[*t.OrderID]
		if t.CreatedAt.Before(cutoff) || orphaned {
			tickets++
			continue
		}
		keptTickets = append(keptTickets, t)
	}
	m.tickets = keptTickets

	return orders, tickets, nil
}

func (m *Memory) ResetAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tallies = nil
	m.tickets = nil
	m.fullOrders = nil
	m.nextTallyID = 1
	m.nextTicketID = 1
	m.nextOrderID = 1
	m.daySeq = map[string]int{}
	return nil
}

// reconcileTicketsLocked drops tickets whose full order no longer
// exists. Standalone tickets (nil OrderID) survive.
func (m *Memory) reconcileTicketsLocked(remaining map[int64]bool) {
	kept := m.tickets[:0]
	for _, t := range m.tickets {
		if t.OrderID != nil && !remaining[*t.OrderID] {
			continue
		}
		kept = append(kept, t)
	}
	m.tickets = kept
}

func cloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	for i := range out {
		if out[i].Options != nil {
			out[i].Options = append([]string(nil), out[i].Options...)
		}
	}
	return out
}
