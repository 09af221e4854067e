package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/streetbite-pos/api/internal/enum"
	"github.com/streetbite-pos/api/internal/store"
)

// ErrInvalidFilter is returned for filters other than day, week or all.
var ErrInvalidFilter = errors.New("invalid filter, use day, week or all")

// CSVHeader is the fixed column order of the export.
const CSVHeader = "display_order_number,timestamp,total_price,combo,lemonade_upgrade,order_type,items"

// ReportStore defines the store methods needed by the report service.
// Satisfied by both store backends; narrow interface for testability.
type ReportStore interface {
	ListFullOrders(ctx context.Context, since *time.Time) ([]store.FullOrder, error)
}

// ReportService aggregates finalized orders into revenue and
// popularity figures.
type ReportService struct {
	store ReportStore
	now   func() time.Time
}

func NewReportService(s ReportStore) *ReportService {
	return &ReportService{store: s, now: time.Now}
}

// Report is the aggregate view over a filtered set of full orders.
type Report struct {
	TotalOrders      int             `json:"total_orders"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	AvgOrder         decimal.Decimal `json:"avg_order"`
	ComboCount       int             `json:"combo_count"`
	LemonadeUpgrades int             `json:"lemonade_upgrades"`
	MostPopular      []PopularItem   `json:"most_popular"`
	OrdersByHour     map[string]int  `json:"orders_by_hour"`
	Orders           []ReportOrder   `json:"orders"`
}

// PopularItem is one entry of the top-5 items list.
type PopularItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ReportOrder is the per-order detail row of a report.
type ReportOrder struct {
	DisplayOrderNumber string           `json:"display_order_number"`
	TotalPrice         decimal.Decimal  `json:"total_price"`
	Items              []store.LineItem `json:"items"`
}

// Report computes the aggregate view for the given filter. Orders are
// listed in ascending creation order.
func (s *ReportService) Report(ctx context.Context, filter string) (*Report, error) {
	orders, err := s.filteredOrders(ctx, filter)
	if err != nil {
		return nil, err
	}

	report := &Report{
		TotalRevenue: decimal.Zero,
		AvgOrder:     decimal.Zero,
		MostPopular:  []PopularItem{},
		OrdersByHour: map[string]int{},
		Orders:       []ReportOrder{},
	}
	report.TotalOrders = len(orders)

	// Popularity counts stay in first-seen order so ties sort stably.
	popularIndex := map[string]int{}
	popular := []PopularItem{}

	loc := displayLocation()
	for _, o := range orders {
		report.TotalRevenue = report.TotalRevenue.Add(o.TotalPrice)
		if o.Combo {
			report.ComboCount++
		}
		if o.LemonadeUpgrade {
			report.LemonadeUpgrades++
		}

		for _, item := range o.Items {
			i, ok := popularIndex[item.Name]
			if !ok {
				i = len(popular)
				popularIndex[item.Name] = i
				popular = append(popular, PopularItem{Name: item.Name})
			}
			popular[i].Count++
		}

		hour := o.CreatedAt.In(loc).Format("15") + ":00"
		report.OrdersByHour[hour]++

		report.Orders = append(report.Orders, ReportOrder{
			DisplayOrderNumber: o.DisplayOrderNumber,
			TotalPrice:         o.TotalPrice,
			Items:              o.Items,
		})
	}

	report.TotalRevenue = report.TotalRevenue.Round(2)
	if report.TotalOrders > 0 {
		report.AvgOrder = report.TotalRevenue.Div(decimal.NewFromInt(int64(report.TotalOrders))).Round(2)
	}

	sort.SliceStable(popular, func(i, j int) bool {
		return popular[i].Count > popular[j].Count
	})
	if len(popular) > 5 {
		popular = popular[:5]
	}
	report.MostPopular = popular

	return report, nil
}

// ExportCSV renders the same filtered order set as CSV. The format has
// no quoting: commas inside fields are replaced with semicolons, which
// is what the downstream spreadsheet import expects.
func (s *ReportService) ExportCSV(ctx context.Context, filter string) ([]byte, error) {
	orders, err := s.filteredOrders(ctx, filter)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(CSVHeader)
	b.WriteByte('\n')

	for _, o := range orders {
		items, err := json.Marshal(o.Items)
		if err != nil {
			return nil, err
		}
		row := []string{
			csvField(o.DisplayOrderNumber),
			csvField(o.CreatedAt.UTC().Format(time.RFC3339)),
			csvField(o.TotalPrice.StringFixed(2)),
			csvBool(o.Combo),
			csvBool(o.LemonadeUpgrade),
			csvField(o.OrderType),
			csvField(string(items)),
		}
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

func (s *ReportService) filteredOrders(ctx context.Context, filter string) ([]store.FullOrder, error) {
	since, err := rangeStart(filter, s.now().UTC())
	if err != nil {
		return nil, err
	}
	return s.store.ListFullOrders(ctx, since)
}

// rangeStart resolves a filter to its inclusive lower bound: midnight
// UTC for "day", the most recent Monday midnight UTC for "week", and
// unbounded for "all".
func rangeStart(filter string, now time.Time) (*time.Time, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch filter {
	case enum.ReportFilterDay:
		return &midnight, nil
	case enum.ReportFilterWeek:
		sinceMonday := (int(now.Weekday()) + 6) % 7
		start := midnight.AddDate(0, 0, -sinceMonday)
		return &start, nil
	case enum.ReportFilterAll:
		return nil, nil
	}
	return nil, ErrInvalidFilter
}

var (
	locOnce sync.Once
	loc     *time.Location
)

// displayLocation is the vendor's local zone for hourly buckets,
// DST-aware. Falls back to UTC if tzdata is unavailable.
func displayLocation() *time.Location {
	locOnce.Do(func() {
		var err error
		loc, err = time.LoadLocation("Europe/London")
		if err != nil {
			loc = time.UTC
		}
	})
	return loc
}

func csvField(s string) string {
	return strings.ReplaceAll(s, ",", ";")
}

func csvBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
