package domain

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	productA = Product{ID: "A", Name: "Alpha", PriceCents: 2550, Image: "a.png"}
	productB = Product{ID: "B", Name: "Bravo", PriceCents: 1000, Image: "b.png"}
)

func TestCartAdd_NewLineCopiesProduct(t *testing.T) {
	c := NewCart()
	c.Add(productA)

	line, ok := c.Line("A")
	require.True(t, ok)
	assert.Equal(t, CartLine{ProductID: "A", Name: "Alpha", PriceCents: 2550, Image: "a.png", Quantity: 1}, line)
}

func TestCartAdd_TwiceIncrementsQuantityNotPrice(t *testing.T) {
	c := NewCart()
	c.Add(productA)
	c.Add(productA)

	require.Equal(t, 1, c.Len())
	line, _ := c.Line("A")
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, int64(2550), line.PriceCents)
}

func TestCartAdd_KeepsFirstSnapshot(t *testing.T) {
	c := NewCart()
	c.Add(productA)

	repriced := productA
	repriced.PriceCents = 9999
	repriced.Name = "Alpha v2"
	c.Add(repriced)

	line, _ := c.Line("A")
	assert.Equal(t, int64(2550), line.PriceCents)
	assert.Equal(t, "Alpha", line.Name)
	assert.Equal(t, 2, line.Quantity)
}

func TestCartAdd_ZeroValueCart(t *testing.T) {
	var c Cart
	c.Add(productB)
	assert.Equal(t, int64(1000), c.Total())
}

func TestCartAdjustQuantity_Increment(t *testing.T) {
	c := NewCart()
	c.Add(productA)
	require.NoError(t, c.AdjustQuantity("A", 1))

	line, _ := c.Line("A")
	assert.Equal(t, 2, line.Quantity)
}

func TestCartAdjustQuantity_DecrementToZeroRemovesLine(t *testing.T) {
	c := NewCart()
	c.Add(productA)
	require.NoError(t, c.AdjustQuantity("A", -1))

	_, ok := c.Line("A")
	assert.False(t, ok)
	assert.True(t, c.IsEmpty())
	assert.Empty(t, c.Lines())
}

func TestCartAdjustQuantity_BelowZeroRemovesLine(t *testing.T) {
	c := NewCart()
	c.Add(productA)
	c.Add(productA)
	require.NoError(t, c.AdjustQuantity("A", -5))

	_, ok := c.Line("A")
	assert.False(t, ok)
}

func TestCartAdjustQuantity_MissingLine(t *testing.T) {
	c := NewCart()
	err := c.AdjustQuantity("missing", 1)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	var lnf *LineNotFoundError
	require.True(t, errors.As(err, &lnf))
	assert.Equal(t, "missing", lnf.ProductID)
}

func TestCartAdjustQuantity_HugeDeltaRejected(t *testing.T) {
	c := NewCart()
	c.Add(productA)

	for _, delta := range []int{math.MaxInt, MaxLineQuantity} {
		err := c.AdjustQuantity("A", delta)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidInput))
	}

	line, ok := c.Line("A")
	require.True(t, ok, "rejected adjustment must keep the line")
	assert.Equal(t, 1, line.Quantity)
	assert.Equal(t, int64(2550), c.Total())
}

func TestCartAdjustQuantity_UpToLimit(t *testing.T) {
	c := NewCart()
	c.Add(productA)
	require.NoError(t, c.AdjustQuantity("A", MaxLineQuantity-1))

	line, _ := c.Line("A")
	assert.Equal(t, MaxLineQuantity, line.Quantity)
	assert.Equal(t, int64(2550)*MaxLineQuantity, c.Total())
}

func TestCartAdjustQuantity_HugeNegativeDeltaRemovesLine(t *testing.T) {
	c := NewCart()
	c.Add(productA)
	require.NoError(t, c.AdjustQuantity("A", math.MinInt))

	assert.True(t, c.IsEmpty())
}

func TestCartAdd_AtLimit(t *testing.T) {
	c := NewCart()
	require.NoError(t, c.Add(productA))
	require.NoError(t, c.AdjustQuantity("A", MaxLineQuantity-1))

	err := c.Add(productA)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	line, _ := c.Line("A")
	assert.Equal(t, MaxLineQuantity, line.Quantity)
}

func TestCartRemove(t *testing.T) {
	c := NewCart()
	c.Add(productA)
	c.Add(productA)
	c.Add(productB)

	require.NoError(t, c.Remove("A"))
	assert.Equal(t, []CartLine{{ProductID: "B", Name: "Bravo", PriceCents: 1000, Image: "b.png", Quantity: 1}}, c.Lines())
	assert.ErrorIs(t, c.Remove("A"), ErrNotFound)
}

func TestCartLines_InsertionOrder(t *testing.T) {
	c := NewCart()
	c.Add(productB)
	c.Add(productA)
	c.Add(productB)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "B", lines[0].ProductID)
	assert.Equal(t, "A", lines[1].ProductID)
}

func TestCartLines_ReturnsCopies(t *testing.T) {
	c := NewCart()
	c.Add(productA)

	lines := c.Lines()
	lines[0].Quantity = 42

	line, _ := c.Line("A")
	assert.Equal(t, 1, line.Quantity)
}

func TestCartTotal_Empty(t *testing.T) {
	assert.Equal(t, int64(0), NewCart().Total())
}

func TestCartTotal_NoFloatDrift(t *testing.T) {
	c := NewCart()
	for _, id := range []string{"x", "y", "z"} {
		c.Add(Product{ID: id, Name: id, PriceCents: 1999})
	}
	assert.Equal(t, int64(5997), c.Total())
}

func TestCartClear(t *testing.T) {
	c := NewCart()
	c.Add(productA)
	c.Add(productB)
	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.Equal(t, int64(0), c.Total())
	assert.Empty(t, c.Lines())

	c.Add(productB)
	assert.Equal(t, 1, c.Len())
}

func TestCartScenario(t *testing.T) {
	c := NewCart()
	c.Add(productA)
	c.Add(productA)
	c.Add(productB)
	assert.Equal(t, int64(6100), c.Total())
	assert.Equal(t, 3, c.ItemCount())

	require.NoError(t, c.AdjustQuantity("A", -1))
	a, _ := c.Line("A")
	b, _ := c.Line("B")
	assert.Equal(t, 1, a.Quantity)
	assert.Equal(t, 1, b.Quantity)
	assert.Equal(t, int64(3550), c.Total())

	require.NoError(t, c.AdjustQuantity("B", -1))
	_, ok := c.Line("B")
	assert.False(t, ok)
	assert.Equal(t, int64(2550), c.Total())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(0), c.Total())
}

func TestCartQuantityInvariant_RandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	products := []Product{productA, productB, {ID: "C", Name: "Charlie", PriceCents: 1}}

	for run := 0; run < 200; run++ {
		c := NewCart()
		for step := 0; step < 50; step++ {
			p := products[rng.Intn(len(products))]
			if rng.Intn(2) == 0 {
				c.Add(p)
			} else if _, ok := c.Line(p.ID); ok {
				require.NoError(t, c.AdjustQuantity(p.ID, rng.Intn(7)-4))
			}

			var want int64
			for _, line := range c.Lines() {
				require.GreaterOrEqual(t, line.Quantity, 1, "run %d step %d", run, step)
				want += line.PriceCents * int64(line.Quantity)
			}
			require.Equal(t, want, c.Total())
			require.Equal(t, c.Len(), len(c.Lines()))
		}
	}
}

func TestCartSnapshot(t *testing.T) {
	c := NewCart()
	c.Add(productA)
	c.Add(productB)
	c.Add(productB)

	snap := c.Snapshot()
	assert.Equal(t, 3, snap.ItemCount)
	assert.Equal(t, int64(4550), snap.TotalCents)
	require.Len(t, snap.Lines, 2)
	assert.Equal(t, int64(2000), snap.Lines[1].TotalCents())
}

func TestCartClone_IsIndependent(t *testing.T) {
	c := NewCart()
	c.Add(Product{ID: "A", Name: "Latte", PriceCents: 2550})

	cp := c.Clone()
	cp.Add(Product{ID: "A"})
	cp.Add(Product{ID: "B", Name: "Muffin", PriceCents: 1000})

	assert.Equal(t, int64(2550), c.Total())
	assert.Equal(t, int64(6100), cp.Total())

	c.Restore(cp)
	assert.Equal(t, int64(6100), c.Total())
	assert.Equal(t, []string{"A", "B"}, lineIDs(c))

	cp.Clear()
	assert.Equal(t, 2, c.Len())
}

func lineIDs(c *Cart) []string {
	var out []string
	for _, l := range c.Lines() {
		out = append(out, l.ProductID)
	}
	return out
}
