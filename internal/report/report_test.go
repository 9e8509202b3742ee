package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"sarisari/backend/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sale(id string, price string, qty int, at time.Time) domain.Sale {
	return domain.Sale{
		CartLine: domain.CartLine{ID: id, Name: id, Price: dec(price), Quantity: qty},
		Date:     at,
	}
}

func TestPercentChange(t *testing.T) {
	require.Equal(t, 50.0, PercentChange(dec("150"), dec("100")))
	require.Equal(t, -25.0, PercentChange(dec("75"), dec("100")))
	require.Equal(t, 100.0, PercentChange(dec("10"), decimal.Zero))
	require.Equal(t, 0.0, PercentChange(decimal.Zero, decimal.Zero))
	require.Equal(t, 33.33, PercentChange(dec("4"), dec("3")))
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 7, 10, 15, 0, 0, 0, time.UTC)
	items := []domain.InventoryItem{
		{ID: "a", Price: dec("10"), Stock: 5, MinStockLevel: 5},
		{ID: "b", Price: dec("2.50"), Stock: 40, MinStockLevel: 10},
	}
	debts := []domain.Debt{
		{ID: "d1", Amount: dec("500"), Status: domain.DebtStatusUnpaid, DueDate: "2026-07-01"},
		{ID: "d2", Amount: dec("120"), Status: domain.DebtStatusUnpaid, DueDate: "2026-07-20"},
		{ID: "d3", Amount: dec("80"), Status: domain.DebtStatusPaid, DueDate: "2026-06-01"},
	}
	sales := []domain.Sale{
		sale("a", "10", 3, now.Add(-2*time.Hour)),
		sale("b", "2.50", 4, now.Add(-26*time.Hour)),
		sale("b", "2.50", 2, now.AddDate(0, 0, -5)),
	}

	s := Summarize(items, debts, sales, now)

	require.Equal(t, "2026-07-10", s.Date)
	require.Equal(t, 2, s.Inventory.Items)
	require.Equal(t, 1, s.Inventory.LowStock)
	require.True(t, s.Inventory.StockValue.Equal(dec("150")))

	require.Equal(t, 3, s.Sales.Lines)
	require.Equal(t, 9, s.Sales.Units)
	require.True(t, s.Sales.Revenue.Equal(dec("45")))
	require.True(t, s.Sales.RevenueToday.Equal(dec("30")))
	require.True(t, s.Sales.RevenueYesterday.Equal(dec("10")))
	require.Equal(t, 200.0, s.Sales.RevenueChange)

	require.Equal(t, 3, s.Debts.Count)
	require.Equal(t, 2, s.Debts.Unpaid)
	require.Equal(t, 1, s.Debts.Overdue)
	require.True(t, s.Debts.TotalDue.Equal(dec("620")))
	require.True(t, s.Debts.PaidTotal.Equal(dec("80")))
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, nil, nil, time.Now())

	require.Zero(t, s.Inventory.Items)
	require.True(t, s.Sales.Revenue.IsZero())
	require.Zero(t, s.Sales.RevenueChange)
	require.True(t, s.Debts.TotalDue.IsZero())
}

func TestIsOverdueIgnoresBadDates(t *testing.T) {
	now := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	require.False(t, IsOverdue(domain.Debt{DueDate: "soon"}, now))
	require.False(t, IsOverdue(domain.Debt{DueDate: "2026-07-10"}, now))
	require.True(t, IsOverdue(domain.Debt{DueDate: "2026-07-09"}, now))
}

func TestGroupSalesByDayNewestFirst(t *testing.T) {
	day1 := time.Date(2026, 7, 8, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 7, 9, 9, 0, 0, 0, time.UTC)
	sales := []domain.Sale{
		sale("a", "10", 1, day1),
		sale("b", "5", 2, day2),
		sale("c", "1", 3, day1.Add(time.Hour)),
	}

	days := GroupSalesByDay(sales)

	require.Len(t, days, 2)
	require.Equal(t, "2026-07-09", days[0].Day)
	require.Equal(t, "2026-07-08", days[1].Day)
	require.Len(t, days[1].Sales, 2)
	require.Equal(t, "a", days[1].Sales[0].ID)
	require.Equal(t, 4, days[1].Units)
	require.True(t, days[1].Total.Equal(dec("13")))
}

func TestCSVRendering(t *testing.T) {
	s := Summarize(nil, nil, []domain.Sale{sale("a", "12.5", 2, time.Now())}, time.Now())

	out, err := CSV(s)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Equal(t, []string{"section", "key", "value"}, records[0])
	require.Contains(t, records, []string{"sales", "revenue", "25.00"})
}

func TestHTMLRenderingEscapesAndFormats(t *testing.T) {
	s := Summarize(nil, []domain.Debt{{Amount: dec("99.5"), Status: domain.DebtStatusUnpaid}}, nil, time.Now())

	out, err := HTML(s, "₱")
	require.NoError(t, err)
	require.True(t, strings.Contains(string(out), "₱99.50"))
	require.True(t, strings.HasPrefix(string(out), "<!doctype html>"))
}
