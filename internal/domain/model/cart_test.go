package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	mizone = Product{ID: 1, SKU: "E026", Name: "Mizone", Price: 3000, Stock: 20}
	gum    = Product{ID: 2, SKU: "E027", Name: "Bubble Gum", Price: 4000, Stock: 15}
)

func TestCart_Add_SameProductMerges(t *testing.T) {
	c := NewCart()

	require.NoError(t, c.Add(mizone, 2))
	require.NoError(t, c.Add(mizone, 3))

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(5), lines[0].Quantity)
}

func TestCart_Add_KeepsOrder(t *testing.T) {
	c := NewCart()

	require.NoError(t, c.Add(gum, 1))
	require.NoError(t, c.Add(mizone, 1))

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "E027", lines[0].SKU)
	assert.Equal(t, "E026", lines[1].SKU)
}

func TestCart_Add_InvalidQuantity(t *testing.T) {
	c := NewCart()

	assert.ErrorIs(t, c.Add(mizone, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.Add(mizone, -1), ErrInvalidQuantity)
	assert.True(t, c.IsEmpty())
}

// 在庫より多くても追加はできる（会計時にチェック）
func TestCart_Add_DoesNotCheckStock(t *testing.T) {
	c := NewCart()

	require.NoError(t, c.Add(mizone, 999))
	assert.Equal(t, int64(999), c.Lines()[0].Quantity)
}

func TestCart_Add_KeepsFirstPriceSnapshot(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(mizone, 1))

	repriced := mizone
	repriced.Price = 9999
	require.NoError(t, c.Add(repriced, 1))

	assert.Equal(t, int64(6000), c.Subtotal())
}

func TestCart_UpdateQuantity(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(mizone, 2))

	require.NoError(t, c.UpdateQuantity(mizone.ID, 7))
	line, ok := c.Line(mizone.ID)
	require.True(t, ok)
	assert.Equal(t, int64(7), line.Quantity)
}

func TestCart_UpdateQuantity_ZeroOrNegativeRemoves(t *testing.T) {
	for _, qty := range []int64{0, -3} {
		c := NewCart()
		require.NoError(t, c.Add(mizone, 2))
		require.NoError(t, c.Add(gum, 1))

		require.NoError(t, c.UpdateQuantity(mizone.ID, qty))

		_, ok := c.Line(mizone.ID)
		assert.False(t, ok)
		assert.Equal(t, 1, c.Len())
	}
}

func TestCart_UpdateQuantity_NotFound(t *testing.T) {
	c := NewCart()

	assert.ErrorIs(t, c.UpdateQuantity(42, 1), ErrLineNotFound)
}

func TestCart_Remove_Idempotent(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(mizone, 2))

	c.Remove(mizone.ID)
	c.Remove(mizone.ID)
	c.Remove(12345)

	assert.True(t, c.IsEmpty())
}

func TestCart_Clear(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(mizone, 2))
	require.NoError(t, c.Add(gum, 2))

	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.Equal(t, int64(0), c.Subtotal())
}

func TestCart_Subtotal(t *testing.T) {
	c := NewCart()
	assert.Equal(t, int64(0), c.Subtotal())

	require.NoError(t, c.Add(mizone, 2))
	require.NoError(t, c.Add(gum, 3))

	assert.Equal(t, int64(2*3000+3*4000), c.Subtotal())
}

func TestCart_Lines_IsCopy(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(mizone, 2))

	lines := c.Lines()
	lines[0].Quantity = 100

	assert.Equal(t, int64(2), c.Lines()[0].Quantity)
}

// ランダムな操作列でも数量0以下の明細が残らず、小計が常に一致すること
func TestCart_RandomOperations_KeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	products := []Product{mizone, gum, {ID: 3, SKU: "E028", Name: "Sunpride Banana", Price: 5000}}

	c := NewCart()
	for i := 0; i < 2000; i++ {
		p := products[rng.Intn(len(products))]
		qty := int64(rng.Intn(11) - 5)

		switch rng.Intn(3) {
		case 0:
			_ = c.Add(p, qty)
		case 1:
			_ = c.UpdateQuantity(p.ID, qty)
		case 2:
			c.Remove(p.ID)
		}

		seen := map[int64]bool{}
		var want int64
		for _, l := range c.Lines() {
			require.Greater(t, l.Quantity, int64(0))
			require.False(t, seen[l.ProductID], "duplicate line for product %d", l.ProductID)
			seen[l.ProductID] = true
			want += l.Quantity * l.UnitPrice
		}
		require.Equal(t, want, c.Subtotal())
	}
}

func TestCart_Add_MergeOverflowRejected(t *testing.T) {
	free := Product{ID: 9, SKU: "Z001", Name: "Sample", Price: 0}
	c := NewCart()

	require.NoError(t, c.Add(free, math.MaxInt64))
	assert.ErrorIs(t, c.Add(free, 2), ErrAmountTooLarge)

	// 元の数量のまま
	l, ok := c.Line(free.ID)
	require.True(t, ok)
	assert.Equal(t, int64(math.MaxInt64), l.Quantity)
}

func TestCart_AmountOverflowRejected(t *testing.T) {
	crackers := Product{ID: 4, SKU: "B051", Name: "Crackers", Price: 12000}

	t.Run("add", func(t *testing.T) {
		c := NewCart()
		assert.ErrorIs(t, c.Add(crackers, 1_000_000_000_000_000), ErrAmountTooLarge)
		assert.True(t, c.IsEmpty())
	})

	t.Run("merge", func(t *testing.T) {
		c := NewCart()
		require.NoError(t, c.Add(crackers, 1))
		assert.ErrorIs(t, c.Add(crackers, math.MaxInt64/12000), ErrAmountTooLarge)

		l, _ := c.Line(crackers.ID)
		assert.Equal(t, int64(1), l.Quantity)
	})

	t.Run("update", func(t *testing.T) {
		c := NewCart()
		require.NoError(t, c.Add(crackers, 1))
		assert.ErrorIs(t, c.UpdateQuantity(crackers.ID, math.MaxInt64), ErrAmountTooLarge)

		l, _ := c.Line(crackers.ID)
		assert.Equal(t, int64(1), l.Quantity)
	})

	t.Run("cart subtotal", func(t *testing.T) {
		c := NewCart()
		big := int64(math.MaxInt64 / 12000)
		require.NoError(t, c.Add(crackers, big))
		assert.ErrorIs(t, c.Add(Product{ID: 5, SKU: "C076", Name: "Ketchup", Price: 12000}, big), ErrAmountTooLarge)
		assert.Equal(t, 1, c.Len())
		assert.Positive(t, c.Subtotal())
	})
}
