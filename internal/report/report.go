// Package report aggregates already-fetched items, debts and sales. Every
// function is pure and recomputed on demand.
package report

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"sarisari/backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

type InventorySummary struct {
	Items      int             `json:"items"`
	LowStock   int             `json:"lowStock"`
	StockValue decimal.Decimal `json:"stockValue"`
}

type SalesSummary struct {
	Lines            int             `json:"lines"`
	Units            int             `json:"units"`
	Revenue          decimal.Decimal `json:"revenue"`
	RevenueToday     decimal.Decimal `json:"revenueToday"`
	RevenueYesterday decimal.Decimal `json:"revenueYesterday"`
	RevenueChange    float64         `json:"revenueChange"`
}

type DebtSummary struct {
	Count     int             `json:"count"`
	Unpaid    int             `json:"unpaid"`
	Overdue   int             `json:"overdue"`
	TotalDue  decimal.Decimal `json:"totalDue"`
	PaidTotal decimal.Decimal `json:"paidTotal"`
}

type Summary struct {
	Date        string           `json:"date"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Inventory   InventorySummary `json:"inventory"`
	Sales       SalesSummary     `json:"sales"`
	Debts       DebtSummary      `json:"debts"`
}

// DaySales is one calendar day (UTC) of the sales log.
type DaySales struct {
	Day   string          `json:"day"`
	Sales []domain.Sale   `json:"sales"`
	Units int             `json:"units"`
	Total decimal.Decimal `json:"total"`
}

// PercentChange is (current-previous)/previous*100, rounded to two places.
// A zero previous counts as a full 100% rise when current is positive and
// as no change otherwise.
func PercentChange(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsPositive() {
			return 100
		}
		return 0
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(2).InexactFloat64()
}

func Summarize(items []domain.InventoryItem, debts []domain.Debt, sales []domain.Sale, now time.Time) Summary {
	now = now.UTC()
	today := now.Format(domain.DayLayout)
	yesterday := now.AddDate(0, 0, -1).Format(domain.DayLayout)

	out := Summary{
		Date:        today,
		GeneratedAt: now,
		Inventory:   InventorySummary{StockValue: decimal.Zero},
		Sales: SalesSummary{
			Revenue:          decimal.Zero,
			RevenueToday:     decimal.Zero,
			RevenueYesterday: decimal.Zero,
		},
		Debts: DebtSummary{TotalDue: decimal.Zero, PaidTotal: decimal.Zero},
	}

	for _, item := range items {
		out.Inventory.Items++
		if item.IsLowStock() {
			out.Inventory.LowStock++
		}
		out.Inventory.StockValue = out.Inventory.StockValue.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Stock))))
	}

	for _, sale := range sales {
		subtotal := sale.Subtotal()
		out.Sales.Lines++
		out.Sales.Units += sale.Quantity
		out.Sales.Revenue = out.Sales.Revenue.Add(subtotal)
		switch sale.Date.UTC().Format(domain.DayLayout) {
		case today:
			out.Sales.RevenueToday = out.Sales.RevenueToday.Add(subtotal)
		case yesterday:
			out.Sales.RevenueYesterday = out.Sales.RevenueYesterday.Add(subtotal)
		}
	}
	out.Sales.RevenueChange = PercentChange(out.Sales.RevenueToday, out.Sales.RevenueYesterday)

	for _, debt := range debts {
		out.Debts.Count++
		if debt.Status == domain.DebtStatusPaid {
			out.Debts.PaidTotal = out.Debts.PaidTotal.Add(debt.Amount)
			continue
		}
		out.Debts.Unpaid++
		out.Debts.TotalDue = out.Debts.TotalDue.Add(debt.Amount)
		if IsOverdue(debt, now) {
			out.Debts.Overdue++
		}
	}
	return out
}

// IsOverdue reports whether an unpaid debt's due day is before now's day.
// Debts with an unparseable due date are never overdue.
func IsOverdue(debt domain.Debt, now time.Time) bool {
	if debt.Status == domain.DebtStatusPaid {
		return false
	}
	due, err := time.Parse(domain.DayLayout, debt.DueDate)
	if err != nil {
		return false
	}
	today, _ := time.Parse(domain.DayLayout, now.UTC().Format(domain.DayLayout))
	return due.Before(today)
}

// GroupSalesByDay buckets sales by UTC calendar day, newest day first. Sales
// keep their log order inside a day.
func GroupSalesByDay(sales []domain.Sale) []DaySales {
	index := make(map[string]int)
	days := make([]DaySales, 0)
	for _, sale := range sales {
		day := sale.Date.UTC().Format(domain.DayLayout)
		i, ok := index[day]
		if !ok {
			i = len(days)
			index[day] = i
			days = append(days, DaySales{Day: day, Sales: []domain.Sale{}, Total: decimal.Zero})
		}
		days[i].Sales = append(days[i].Sales, sale)
		days[i].Units += sale.Quantity
		days[i].Total = days[i].Total.Add(sale.Subtotal())
	}

	slices.SortStableFunc(days, func(a, b DaySales) int {
		switch {
		case a.Day > b.Day:
			return -1
		case a.Day < b.Day:
			return 1
		}
		return 0
	})
	return days
}
