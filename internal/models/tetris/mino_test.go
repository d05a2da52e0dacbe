package tetris

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dropToFloor(m *Mino, f *Field) {
	for m.Down(f) {
	}
}

func TestNewMino(t *testing.T) {
	f := NewField(10, 10)

	m, ok := NewMino(TypeT, 3, 0, f)
	require.True(t, ok)
	assert.Equal(t, North, m.Facing())
	assert.Equal(t, AirBorne, m.State())

	f.Set(4, 0, WallCell())
	_, ok = NewMino(TypeT, 3, 0, f)
	assert.False(t, ok, "spawn overlapping a block fails")
}

func TestMino_CheckStatusIsIdempotent(t *testing.T) {
	// Given: a piece that has just touched the floor
	f := NewField(10, 6)
	m, ok := NewMino(TypeO, 3, 0, f)
	require.True(t, ok)
	dropToFloor(m, f)
	require.Equal(t, JustLanded, m.State())

	// When: checking the status twice
	m.CheckStatus()
	first := m.State()
	m.CheckStatus()

	// Then: it is promoted once and stays grounded
	assert.Equal(t, Grounded, first)
	assert.Equal(t, Grounded, m.State())
}

func TestMino_MoveHorizontal(t *testing.T) {
	f := NewField(4, 6)
	m, ok := NewMino(TypeO, 0, 0, f)
	require.True(t, ok)

	assert.True(t, m.MoveHorizontal(Right, f, UnlimitedMoveReset))
	assert.Equal(t, 1, m.X())
	assert.False(t, m.MoveHorizontal(Right, f, UnlimitedMoveReset), "wall on the right")
	assert.Equal(t, 1, m.X())
}

func TestMino_MoveResetLimit(t *testing.T) {
	// Given: a grounded piece with a move reset limit of 2
	const limit = 2
	f := NewField(10, 8)
	m, ok := NewMino(TypeT, 3, 0, f)
	require.True(t, ok)
	dropToFloor(m, f)

	// When: moving left and right repeatedly
	succeeded := 0
	for i := 0; i < 10; i++ {
		dir := Left
		if i%2 == 1 {
			dir = Right
		}
		if m.MoveHorizontal(dir, f, limit) {
			succeeded++
		}
	}

	// Then: only limit+1 moves were allowed and the piece must lock
	assert.Equal(t, limit+1, succeeded)
	assert.True(t, m.ShouldBeLocked())
	assert.False(t, m.Rotate(Clockwise, f, limit), "rotation is frozen as well")
}

func TestMino_MoveResetRecoversWhenFallingDeeper(t *testing.T) {
	// Given: a piece resting on a ledge with its move budget spent
	f := NewField(10, 10)
	for x := 0; x < 6; x++ {
		f.Set(x, 5, WallCell())
	}
	m, ok := NewMino(TypeO, 3, 0, f)
	require.True(t, ok)
	dropToFloor(m, f)
	for i := 0; i < 3; i++ {
		m.MoveHorizontal(Right, f, 1)
	}
	require.True(t, m.ShouldBeLocked())
	require.Equal(t, 3, m.MoveResetCount())

	// When: it slides off the ledge and falls further than before
	require.True(t, m.CanDown(f))
	require.True(t, m.Down(f))

	// Then: the budget is restored
	assert.Equal(t, 0, m.MoveResetCount())
	assert.False(t, m.ShouldBeLocked())
}

func TestMino_Rotate(t *testing.T) {
	t.Run("rotates in open space with the identity kick", func(t *testing.T) {
		f := NewField(10, 10)
		m, ok := NewMino(TypeJ, 3, 3, f)
		require.True(t, ok)

		require.True(t, m.Rotate(Clockwise, f, UnlimitedMoveReset))
		assert.Equal(t, East, m.Facing())
		assert.Equal(t, 3, m.X())
		assert.Equal(t, 3, m.Y())
	})

	t.Run("kicks away from the wall", func(t *testing.T) {
		// I piece standing vertically against the left wall
		f := NewField(10, 10)
		m, ok := NewMino(TypeI, 3, 3, f)
		require.True(t, ok)
		require.True(t, m.Rotate(CounterClockwise, f, UnlimitedMoveReset))
		require.Equal(t, West, m.Facing())
		for m.MoveHorizontal(Left, f, UnlimitedMoveReset) {
		}
		require.Equal(t, -1, m.X())

		require.True(t, m.Rotate(Clockwise, f, UnlimitedMoveReset))
		assert.Equal(t, North, m.Facing())
		assert.GreaterOrEqual(t, m.X(), 0)
	})

	t.Run("O piece keeps its cells", func(t *testing.T) {
		f := NewField(10, 10)
		m, ok := NewMino(TypeO, 3, 3, f)
		require.True(t, ok)
		require.True(t, m.Rotate(Clockwise, f, UnlimitedMoveReset))
		assert.Equal(t, 3, m.X())
		assert.Equal(t, 3, m.Y())
		assert.Equal(t, RotationMask(TypeO, North), m.Mask())
	})
}

// tSlot は (3,3) に置いたT-ミノの4隅のうち、指定したものを埋めたフィールドを作ります。
func tSlot(topRight bool) *Field {
	f := NewField(10, 6)
	for x := 0; x < 10; x++ {
		if x != 4 {
			f.Set(x, 5, MinoBlockCell(TypeL))
		}
	}
	f.Set(3, 3, MinoBlockCell(TypeL))
	if topRight {
		f.Set(5, 3, MinoBlockCell(TypeL))
	}
	return f
}

func TestMino_TSpin(t *testing.T) {
	t.Run("full spin when both front corners are filled", func(t *testing.T) {
		// Given: three corners around the slot and the cell right of the center filled
		f := tSlot(false)
		f.Set(6, 4, MinoBlockCell(TypeL))
		m, ok := NewMino(TypeT, 3, 3, f)
		require.True(t, ok)

		// When: rotating into the slot facing east
		require.True(t, m.Rotate(Clockwise, f, UnlimitedMoveReset))

		// Then: (6,4) and the floor below (6,6) count as the front corners
		assert.Equal(t, East, m.Facing())
		assert.True(t, m.IsLastMoveSpin())
		assert.False(t, m.IsLastMoveMiniSpin())
	})

	t.Run("mini spin when a front corner is open", func(t *testing.T) {
		f := tSlot(false)
		m, ok := NewMino(TypeT, 3, 3, f)
		require.True(t, ok)

		require.True(t, m.Rotate(Clockwise, f, UnlimitedMoveReset))

		assert.Equal(t, East, m.Facing())
		assert.True(t, m.IsLastMoveSpin())
		assert.True(t, m.IsLastMoveMiniSpin())
	})

	t.Run("south facing above the floor is a full spin", func(t *testing.T) {
		f := tSlot(false)
		m, ok := NewMino(TypeT, 3, 3, f)
		require.True(t, ok)

		require.True(t, m.Rotate(Rotate180, f, UnlimitedMoveReset))

		assert.Equal(t, South, m.Facing())
		assert.True(t, m.IsLastMoveSpin())
		assert.False(t, m.IsLastMoveMiniSpin())
	})

	t.Run("north facing is always mini", func(t *testing.T) {
		// Given: a T piece surrounded on all four corners
		f := tSlot(true)
		m, ok := NewMino(TypeT, 3, 3, f)
		require.True(t, ok)

		// When: rotating away and back
		require.True(t, m.Rotate(Clockwise, f, UnlimitedMoveReset))
		require.True(t, m.Rotate(CounterClockwise, f, UnlimitedMoveReset))

		// Then: the center itself is one of the front cells, so it never counts twice
		assert.Equal(t, North, m.Facing())
		assert.True(t, m.IsLastMoveSpin())
		assert.True(t, m.IsLastMoveMiniSpin())
	})

	t.Run("translation clears the spin flags", func(t *testing.T) {
		f := tSlot(true)
		m, ok := NewMino(TypeT, 3, 3, f)
		require.True(t, ok)
		require.True(t, m.Rotate(Clockwise, f, UnlimitedMoveReset))
		require.True(t, m.IsLastMoveSpin())

		// 左右とも塞がっているので、空いている高さまで直接持ち上げる
		m.y = 0
		require.True(t, m.MoveHorizontal(Right, f, UnlimitedMoveReset))
		assert.False(t, m.IsLastMoveSpin())
		assert.False(t, m.IsLastMoveMiniSpin())
	})

	t.Run("no spin with fewer than three corners", func(t *testing.T) {
		f := NewField(10, 10)
		m, ok := NewMino(TypeT, 3, 3, f)
		require.True(t, ok)
		require.True(t, m.Rotate(Clockwise, f, UnlimitedMoveReset))
		assert.False(t, m.IsLastMoveSpin())
	})
}

func TestMino_LockRoundTrip(t *testing.T) {
	// Given: an S piece resting on the floor
	f := NewField(10, 8)
	m, ok := NewMino(TypeS, 2, 0, f)
	require.True(t, ok)
	dropToFloor(m, f)
	before := f.Clone()

	// When: it is locked
	m.Lock(f)

	// Then: exactly the mask cells became blocks of its type
	covered := map[[2]int]bool{}
	for _, b := range m.Mask().Blocks() {
		covered[[2]int{m.X() + b[0], m.Y() + b[1]}] = true
	}
	for y := 0; y < f.Height(); y++ {
		for x := 0; x < f.Width(); x++ {
			got, _ := f.Cell(x, y)
			if covered[[2]int{x, y}] {
				assert.Equal(t, MinoBlockCell(TypeS), got)
				continue
			}
			want, _ := before.Cell(x, y)
			assert.Equal(t, want, got)
		}
	}
}

func TestMino_DrawGhostAndPreview(t *testing.T) {
	f := NewField(6, 6)
	m, ok := NewMino(TypeO, 1, 0, f)
	require.True(t, ok)

	ghostField := f.Clone()
	m.DrawGhost(ghostField)
	assert.Equal(t, "..++..", ghostField.Lines()[5])
	assert.Equal(t, 0, m.Y(), "drawing the ghost does not move the piece")

	preview := NewPreviewMino(TypeO, 1, 0).DrawPreview(f)
	assert.True(t, preview[1][2].Flagged)
	assert.False(t, preview[0][2].Flagged)
	assert.Equal(t, EmptyCell(), preview[1][2].Cell, "the field itself is not written")
}
