package grid

import (
	"testing"

	"github.com/san-kum/ridersim/internal/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGrid(t *testing.T) *Grid {
	t.Helper()
	g, err := New(DefaultCellSize)
	require.NoError(t, err)
	return g
}

func ids(lines []*Line) []int {
	out := make([]int, len(lines))
	for i, l := range lines {
		out[i] = l.ID
	}
	return out
}

func TestNew_RejectsBadCellSize(t *testing.T) {
	for _, size := range []float64{0, -1} {
		_, err := New(size)
		assert.ErrorIs(t, err, ErrInvalidCellSize)
	}
}

func TestCellOf_FloorsNegativeCoordinates(t *testing.T) {
	g := newGrid(t)

	assert.Equal(t, GridPoint{0, 0}, g.CellOf(geom.V(0, 13.9)))
	assert.Equal(t, GridPoint{1, 0}, g.CellOf(geom.V(14, 0)))
	assert.Equal(t, GridPoint{-1, -1}, g.CellOf(geom.V(-0.1, -14)))
	assert.Equal(t, GridPoint{-2, 0}, g.CellOf(geom.V(-14.1, 1)))
}

func TestInsert_UpdatesExactlyBoundingBoxCells(t *testing.T) {
	g := newGrid(t)
	l := NewLine(1, Standard, geom.V(1, 1), geom.V(30, 15))
	require.NoError(t, g.Insert(l))

	// x: 0..2, y: 0..1
	for x := 0; x <= 2; x++ {
		for y := 0; y <= 1; y++ {
			assert.Equal(t, []int{1}, ids(g.LinesIn(GridPoint{x, y})), "cell %d,%d", x, y)
		}
	}
	assert.Empty(t, g.LinesIn(GridPoint{3, 0}))
	assert.Empty(t, g.LinesIn(GridPoint{0, 2}))
	assert.Empty(t, g.LinesIn(GridPoint{-1, 0}))
}

func TestInsert_Duplicate(t *testing.T) {
	g := newGrid(t)
	require.NoError(t, g.Insert(NewLine(7, Standard, geom.V(0, 0), geom.V(5, 0))))
	err := g.Insert(NewLine(7, Standard, geom.V(0, 0), geom.V(5, 0)))
	assert.ErrorIs(t, err, ErrDuplicateLine)
}

func TestRemove(t *testing.T) {
	g := newGrid(t)
	require.NoError(t, g.Insert(NewLine(1, Standard, geom.V(0, 0), geom.V(20, 0))))
	require.NoError(t, g.Insert(NewLine(2, Standard, geom.V(0, 5), geom.V(5, 5))))

	l, err := g.Remove(1)
	require.NoError(t, err)
	assert.Equal(t, 1, l.ID)
	assert.Equal(t, []int{2}, ids(g.LinesIn(GridPoint{0, 0})))
	assert.Empty(t, g.LinesIn(GridPoint{1, 0}))
	assert.Equal(t, 1, g.Len())

	_, err = g.Remove(1)
	assert.ErrorIs(t, err, ErrUnknownLine)
}

func TestLinesInCells_SortedAndDistinct(t *testing.T) {
	g := newGrid(t)
	for _, id := range []int{9, 3, 5} {
		require.NoError(t, g.Insert(NewLine(id, Standard, geom.V(0, 0), geom.V(40, 40))))
	}

	got := g.LinesInCells(CellRect{Left: 0, Top: 0, Right: 2, Bottom: 2, Valid: true})
	assert.Equal(t, []int{3, 5, 9}, ids(got))
	assert.Nil(t, g.LinesInCells(CellRect{}))
}

func TestLinesNear_ConsultsNeighbourhood(t *testing.T) {
	g := newGrid(t)
	require.NoError(t, g.Insert(NewLine(1, Standard, geom.V(15, 15), geom.V(20, 15)))) // cell 1,1
	require.NoError(t, g.Insert(NewLine(2, Standard, geom.V(50, 50), geom.V(55, 50)))) // cell 3,3

	lines, cells := g.LinesNear(geom.V(1, 1), geom.V(2, 2))
	assert.Equal(t, []int{1}, ids(lines))
	assert.Equal(t, CellRect{Left: -2, Top: -2, Right: 2, Bottom: 2, Valid: true}, cells)
}

func TestLinesNear_ReachesPastExtendedEndpoint(t *testing.T) {
	g := newGrid(t)
	l := NewLine(1, Standard, geom.V(28, 28), geom.V(98, 98))
	require.NoError(t, g.Insert(l))

	// within Zone behind the left extension, two cells left of the line's box
	p := geom.V(13.95, 27.95)
	require.Equal(t, GridPoint{X: 0, Y: 1}, g.CellOf(p))

	lines, _ := g.LinesNear(p, p)
	assert.Equal(t, []int{1}, ids(lines))
}

func TestPositions_StaleVersion(t *testing.T) {
	g := newGrid(t)
	v := g.Version()

	pts, err := g.Positions(geom.V(0, 0), geom.V(15, 0), v)
	require.NoError(t, err)
	assert.Equal(t, []GridPoint{{0, 0}, {1, 0}}, pts)

	require.NoError(t, g.Repartition(28))
	assert.Greater(t, g.Version(), v)

	_, err = g.Positions(geom.V(0, 0), geom.V(15, 0), v)
	assert.ErrorIs(t, err, ErrStaleVersion)

	pts, err = g.Positions(geom.V(0, 0), geom.V(15, 0), g.Version())
	require.NoError(t, err)
	assert.Equal(t, []GridPoint{{0, 0}}, pts)
}

func TestRepartition_Reindexes(t *testing.T) {
	g := newGrid(t)
	require.NoError(t, g.Insert(NewLine(1, Standard, geom.V(0, 0), geom.V(100, 0))))
	require.NoError(t, g.Repartition(50))

	assert.Equal(t, []int{1}, ids(g.LinesIn(GridPoint{0, 0})))
	assert.Equal(t, []int{1}, ids(g.LinesIn(GridPoint{2, 0})))
	assert.Empty(t, g.LinesIn(GridPoint{3, 0}))

	assert.ErrorIs(t, g.Repartition(0), ErrInvalidCellSize)
}

func TestCellRect(t *testing.T) {
	var r CellRect
	assert.False(t, r.Contains(GridPoint{}))

	r = r.Include(GridPoint{2, 3}).Include(GridPoint{-1, 5})
	assert.Equal(t, CellRect{Left: -1, Top: 3, Right: 2, Bottom: 5, Valid: true}, r)
	assert.True(t, r.Contains(GridPoint{0, 4}))
	assert.True(t, r.Intersects(CellRectAt(GridPoint{2, 5})))
	assert.False(t, r.Intersects(CellRectAt(GridPoint{3, 5})))
	assert.Len(t, r.Points(), 12)

	u := CellRectAt(GridPoint{10, 10}).Union(r)
	assert.Equal(t, CellRect{Left: -1, Top: 3, Right: 10, Bottom: 10, Valid: true}, u)
	assert.Equal(t, r, CellRect{}.Union(r))
}
