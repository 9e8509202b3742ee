package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"sarisari/backend/internal/domain"
)

func item(id string, price int64, stock int) domain.InventoryItem {
	return domain.InventoryItem{ID: id, Name: "item-" + id, Price: decimal.NewFromInt(price), Stock: stock}
}

func TestAddMergesAndClampsToStock(t *testing.T) {
	c := New()
	a := item("a", 10, 5)

	c.Add(a, 3)
	c.Add(a, 4)

	lines := c.Lines()
	require.Len(t, lines, 1)
	require.Equal(t, 5, lines[0].Quantity)
	require.Equal(t, "📦", lines[0].Image)
}

func TestAddNewLineClampsToStock(t *testing.T) {
	c := New()
	c.Add(item("a", 10, 2), 9)

	require.Equal(t, 2, c.TotalItems())
}

func TestAddOutOfStockCreatesNoLine(t *testing.T) {
	c := New()
	c.Add(item("a", 10, 0), 1)

	require.True(t, c.IsEmpty())
}

func TestAddRemovesLineWhenStockDroppedToZero(t *testing.T) {
	c := New()
	c.Add(item("a", 10, 4), 2)
	c.Add(item("a", 10, 0), 1)

	require.True(t, c.IsEmpty())
}

func TestAddKeepsItemImage(t *testing.T) {
	c := New()
	img := "🥤"
	it := item("a", 20, 3)
	it.Image = &img

	c.Add(it, 1)

	require.Equal(t, "🥤", c.Lines()[0].Image)
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	c := New()
	c.Add(item("a", 10, 5), 2)
	c.Add(item("b", 3, 5), 1)

	c.UpdateQuantity("a", 0)

	lines := c.Lines()
	require.Len(t, lines, 1)
	require.Equal(t, "b", lines[0].ID)
}

func TestUpdateQuantityDoesNotClampToStock(t *testing.T) {
	c := New()
	c.Add(item("a", 10, 5), 1)

	c.UpdateQuantity("a", 50)

	require.Equal(t, 50, c.Lines()[0].Quantity)
}

func TestUpdateQuantityUnknownIDIsIgnored(t *testing.T) {
	c := New()
	c.Add(item("a", 10, 5), 1)

	c.UpdateQuantity("zzz", 3)

	require.Equal(t, 1, c.TotalItems())
}

func TestTotalsFollowMutations(t *testing.T) {
	c := New()
	c.Add(domain.InventoryItem{ID: "a", Price: decimal.RequireFromString("12.50"), Stock: 10}, 2)
	c.Add(item("b", 7, 10), 3)
	require.True(t, c.TotalPrice().Equal(decimal.RequireFromString("46")))
	require.True(t, c.TotalPrice().Equal(c.TotalPrice()))

	c.UpdateQuantity("b", 1)
	require.True(t, c.TotalPrice().Equal(decimal.RequireFromString("32")))
	require.Equal(t, 3, c.TotalItems())

	c.Remove("a")
	require.True(t, c.TotalPrice().Equal(decimal.NewFromInt(7)))

	c.Clear()
	require.True(t, c.TotalPrice().IsZero())
	require.Zero(t, c.TotalItems())
}

func TestLinesReturnsCopy(t *testing.T) {
	c := New()
	c.Add(item("a", 10, 5), 1)

	lines := c.Lines()
	lines[0].Quantity = 99

	require.Equal(t, 1, c.Lines()[0].Quantity)
}

func TestViewMatchesTotals(t *testing.T) {
	c := New()
	c.Add(item("a", 10, 5), 3)

	view := c.View()
	require.Len(t, view.Lines, 1)
	require.Equal(t, 3, view.TotalItems)
	require.True(t, view.TotalPrice.Equal(decimal.NewFromInt(30)))
}
