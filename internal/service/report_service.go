package service

import (
	"context"
	"sort"
	"time"

	"pos-till/internal/clock"
	"pos-till/internal/domain"
	"pos-till/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	dashboardDays = 7
	topProducts   = 5
)

type DailySales struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type ProductRank struct {
	Name     string `json:"name"`
	Quantity int    `json:"qty"`
}

// Dashboard is the manager overview.
type Dashboard struct {
	Last7Days     []DailySales               `json:"last_7_days"`
	TopProducts   []ProductRank              `json:"top_products"`
	Categories    []repository.CategoryStock `json:"categories"`
	TotalIncome   decimal.Decimal            `json:"total_income"`
	TotalExpense  decimal.Decimal            `json:"total_expense"`
	Net           decimal.Decimal            `json:"net"`
	Valuation     decimal.Decimal            `json:"inventory_valuation"`
	LowStockCount int                        `json:"low_stock_count"`
}

// EmployeeReport aggregates one operator's closed sessions.
type EmployeeReport struct {
	UserID          string          `json:"user_id"`
	Employee        string          `json:"employee"`
	Turns           int             `json:"total_turns"`
	TotalDuration   time.Duration   `json:"total_duration"`
	AvgDuration     time.Duration   `json:"avg_duration"`
	TotalCashOpen   decimal.Decimal `json:"total_cash_open"`
	TotalCashClose  decimal.Decimal `json:"total_cash_close"`
	TotalDifference decimal.Decimal `json:"total_difference"`
	AvgDifference   decimal.Decimal `json:"avg_difference"`
	TotalHandled    decimal.Decimal `json:"total_handled"`
}

type ReportService interface {
	Dashboard(ctx context.Context) *Dashboard
	Employees(ctx context.Context, from, to time.Time) []EmployeeReport
	Sales(ctx context.Context, filter SaleFilter) []domain.SaleRecord
}

type reportService struct {
	ledger    *SaleLedger
	sessions  repository.CashSessionRepository
	inventory InventoryService
	clock     clock.Clock
}

func NewReportService(ledger *SaleLedger, sessions repository.CashSessionRepository, inventory InventoryService, clk clock.Clock) ReportService {
	return &reportService{
		ledger:    ledger,
		sessions:  sessions,
		inventory: inventory,
		clock:     clk,
	}
}

func (s *reportService) Dashboard(ctx context.Context) *Dashboard {
	sales := s.ledger.List(ctx)
	d := &Dashboard{
		Last7Days:    s.lastDays(sales),
		TopProducts:  rankProducts(sales, topProducts),
		Categories:   s.inventory.Categories(ctx),
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		Valuation:    s.inventory.Valuation(ctx),
	}

	for _, m := range s.sessions.AllMovements(ctx) {
		switch m.Type {
		case domain.MovementIncome:
			d.TotalIncome = d.TotalIncome.Add(m.Amount)
		case domain.MovementExpense:
			d.TotalExpense = d.TotalExpense.Add(m.Amount)
		}
	}
	d.Net = d.TotalIncome.Sub(d.TotalExpense)
	d.LowStockCount = len(s.inventory.LowStock(ctx))
	return d
}

// lastDays buckets sale totals by UTC calendar day, oldest first, ending today.
func (s *reportService) lastDays(sales []domain.SaleRecord) []DailySales {
	today := s.clock.Now().UTC().Truncate(24 * time.Hour)
	days := make([]DailySales, dashboardDays)
	index := make(map[string]int, dashboardDays)
	for i := range days {
		date := today.AddDate(0, 0, i-(dashboardDays-1)).Format(time.DateOnly)
		days[i] = DailySales{Date: date, Total: decimal.Zero}
		index[date] = i
	}
	for _, sale := range sales {
		i, ok := index[sale.ClosedAt.UTC().Format(time.DateOnly)]
		if !ok {
			continue
		}
		days[i].Total = days[i].Total.Add(sale.Total)
		days[i].Count++
	}
	return days
}

// rankProducts orders products by units sold; ties break by name.
func rankProducts(sales []domain.SaleRecord, limit int) []ProductRank {
	units := make(map[string]int)
	for _, sale := range sales {
		for _, item := range sale.Items {
			units[item.Name] += item.Quantity
		}
	}
	ranks := make([]ProductRank, 0, len(units))
	for name, qty := range units {
		ranks = append(ranks, ProductRank{Name: name, Quantity: qty})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Quantity != ranks[j].Quantity {
			return ranks[i].Quantity > ranks[j].Quantity
		}
		return ranks[i].Name < ranks[j].Name
	})
	if len(ranks) > limit {
		ranks = ranks[:limit]
	}
	return ranks
}

// Employees aggregates closed sessions opened within [from, to]. Zero bounds
// are open-ended.
func (s *reportService) Employees(ctx context.Context, from, to time.Time) []EmployeeReport {
	byUser := make(map[string]*EmployeeReport)
	var order []string

	for _, session := range s.sessions.History(ctx) {
		if !from.IsZero() && session.OpenedAt.Before(from) {
			continue
		}
		if !to.IsZero() && session.OpenedAt.After(to) {
			continue
		}
		r, ok := byUser[session.UserID]
		if !ok {
			r = &EmployeeReport{
				UserID:          session.UserID,
				Employee:        session.UserName,
				TotalCashOpen:   decimal.Zero,
				TotalCashClose:  decimal.Zero,
				TotalDifference: decimal.Zero,
			}
			byUser[session.UserID] = r
			order = append(order, session.UserID)
		}
		r.Turns++
		r.TotalDuration += session.Duration()
		r.TotalCashOpen = r.TotalCashOpen.Add(session.OpeningAmount)
		if session.ClosingAmount != nil {
			r.TotalCashClose = r.TotalCashClose.Add(*session.ClosingAmount)
		}
		if session.Difference != nil {
			r.TotalDifference = r.TotalDifference.Add(*session.Difference)
		}
	}

	out := make([]EmployeeReport, 0, len(order))
	for _, id := range order {
		r := byUser[id]
		turns := decimal.NewFromInt(int64(r.Turns))
		r.AvgDuration = r.TotalDuration / time.Duration(r.Turns)
		r.AvgDifference = r.TotalDifference.Div(turns)
		r.TotalHandled = r.TotalCashOpen.Add(r.TotalCashClose)
		out = append(out, *r)
	}
	return out
}

// Sales lists ledger entries matching filter, newest first.
func (s *reportService) Sales(ctx context.Context, filter SaleFilter) []domain.SaleRecord {
	sales := s.ledger.Query(ctx, filter.Match)
	for i, j := 0, len(sales)-1; i < j; i, j = i+1, j-1 {
		sales[i], sales[j] = sales[j], sales[i]
	}
	if sales == nil {
		sales = []domain.SaleRecord{}
	}
	return sales
}
