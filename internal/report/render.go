package report

import (
	"bytes"
	"encoding/csv"
	"html/template"
	"strconv"

	"sarisari/backend/internal/domain"
)

// CSV flattens the summary into section,key,value rows.
func CSV(s Summary) ([]byte, error) {
	rows := [][]string{
		{"section", "key", "value"},
		{"summary", "date", s.Date},
		{"inventory", "items", strconv.Itoa(s.Inventory.Items)},
		{"inventory", "low_stock", strconv.Itoa(s.Inventory.LowStock)},
		{"inventory", "stock_value", domain.FormatPrice(s.Inventory.StockValue)},
		{"sales", "lines", strconv.Itoa(s.Sales.Lines)},
		{"sales", "units", strconv.Itoa(s.Sales.Units)},
		{"sales", "revenue", domain.FormatPrice(s.Sales.Revenue)},
		{"sales", "revenue_today", domain.FormatPrice(s.Sales.RevenueToday)},
		{"sales", "revenue_yesterday", domain.FormatPrice(s.Sales.RevenueYesterday)},
		{"sales", "revenue_change_pct", strconv.FormatFloat(s.Sales.RevenueChange, 'f', 2, 64)},
		{"debts", "count", strconv.Itoa(s.Debts.Count)},
		{"debts", "unpaid", strconv.Itoa(s.Debts.Unpaid)},
		{"debts", "overdue", strconv.Itoa(s.Debts.Overdue)},
		{"debts", "total_due", domain.FormatPrice(s.Debts.TotalDue)},
		{"debts", "paid_total", domain.FormatPrice(s.Debts.PaidTotal)},
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var summaryHTMLTmpl = template.Must(template.New("summary").Funcs(template.FuncMap{
	"price": domain.FormatPrice,
}).Parse(`<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Store Report {{.Summary.Date}}</title>
  <style>
    body { font-family: sans-serif; margin: 24px; }
    table { width: 100%; border-collapse: collapse; margin-top: 8px; }
    th, td { border: 1px solid #ddd; padding: 6px; font-size: 13px; }
    td.num { text-align: right; }
    h2, h3 { margin-bottom: 4px; }
  </style>
</head>
<body>
  <h2>Store Report {{.Summary.Date}}</h2>

  <h3>Sales</h3>
  <table>
    <tbody>
      <tr><td>Revenue today</td><td class="num">{{.Currency}}{{price .Summary.Sales.RevenueToday}}</td></tr>
      <tr><td>Revenue yesterday</td><td class="num">{{.Currency}}{{price .Summary.Sales.RevenueYesterday}}</td></tr>
      <tr><td>Change</td><td class="num">{{printf "%.2f" .Summary.Sales.RevenueChange}}%</td></tr>
      <tr><td>All-time revenue</td><td class="num">{{.Currency}}{{price .Summary.Sales.Revenue}}</td></tr>
      <tr><td>Units sold</td><td class="num">{{.Summary.Sales.Units}}</td></tr>
    </tbody>
  </table>

  <h3>Inventory</h3>
  <table>
    <tbody>
      <tr><td>Items</td><td class="num">{{.Summary.Inventory.Items}}</td></tr>
      <tr><td>Low stock</td><td class="num">{{.Summary.Inventory.LowStock}}</td></tr>
      <tr><td>Stock value</td><td class="num">{{.Currency}}{{price .Summary.Inventory.StockValue}}</td></tr>
    </tbody>
  </table>

  <h3>Utang</h3>
  <table>
    <tbody>
      <tr><td>Unpaid debts</td><td class="num">{{.Summary.Debts.Unpaid}}</td></tr>
      <tr><td>Overdue</td><td class="num">{{.Summary.Debts.Overdue}}</td></tr>
      <tr><td>Total due</td><td class="num">{{.Currency}}{{price .Summary.Debts.TotalDue}}</td></tr>
      <tr><td>Collected</td><td class="num">{{.Currency}}{{price .Summary.Debts.PaidTotal}}</td></tr>
    </tbody>
  </table>
</body>
</html>
`))

// HTML renders a printable page. Currency is prefixed to every amount.
func HTML(s Summary, currency string) ([]byte, error) {
	var buf bytes.Buffer
	err := summaryHTMLTmpl.Execute(&buf, struct {
		Summary  Summary
		Currency string
	}{s, currency})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
