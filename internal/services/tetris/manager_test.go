package tetris

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/models/tetris"
)

func newTestManager(t *testing.T, config Config, seed int64) *Manager {
	t.Helper()
	m, err := NewManager(config, seed, tetris.DefaultBoardWidth, tetris.DefaultBoardHeight)
	require.NoError(t, err)
	return m
}

// managerStartingWith は最初のピースがptになるシードを探してManagerを作ります。
func managerStartingWith(t *testing.T, config Config, pt tetris.PieceType) *Manager {
	t.Helper()
	for seed := int64(0); seed < 1000; seed++ {
		m := newTestManager(t, config, seed)
		if m.CurrentPiece().Type == pt {
			return m
		}
	}
	t.Fatalf("no seed starts with %s", pt)
	return nil
}

func command(t *testing.T, m *Manager, kind CommandKind) CommandResult {
	t.Helper()
	result, err := m.Command(NewCommand(kind))
	require.NoError(t, err)
	return result
}

func cellAt(t *testing.T, m *Manager, x, y int) tetris.Cell {
	t.Helper()
	c, ok := m.Field().Cell(x, y)
	require.True(t, ok)
	return c
}

func TestNewManager(t *testing.T) {
	t.Run("spawns the first piece", func(t *testing.T) {
		m := newTestManager(t, DefaultConfig(), 1)
		piece := m.CurrentPiece()
		x, y := DefaultConfig().SpawnPoint(piece.Type)

		assert.Equal(t, x, piece.X)
		assert.Equal(t, y, piece.Y)
		assert.Equal(t, tetris.North, piece.Facing)
		assert.Equal(t, tetris.AirBorne, piece.State)
		assert.True(t, m.Field().IsEmpty())
	})

	t.Run("rejects bad dimensions", func(t *testing.T) {
		_, err := NewManager(DefaultConfig(), 1, 0, 20)
		assert.ErrorIs(t, err, ErrInvalidDimensions)
	})

	t.Run("rejects bad config", func(t *testing.T) {
		config := DefaultConfig()
		config.QueueCapacity = 3
		_, err := NewManager(config, 1, 10, 42)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("fails when the board has no room to spawn", func(t *testing.T) {
		_, err := NewManager(DefaultConfig(), 1, 10, 20)
		assert.ErrorIs(t, err, ErrUnspawnable)
	})
}

func TestManager_HardDropOnEmptyField(t *testing.T) {
	// Given: an I piece on an empty default field
	m := managerStartingWith(t, DefaultConfig(), tetris.TypeI)
	x := m.CurrentPiece().X

	// When: hard dropping it
	result := command(t, m, CommandHardDrop)

	// Then: it locks on the floor row without clearing anything
	require.NotNil(t, result.LineClear)
	assert.Equal(t, 0, result.LineClear.ClearedLineCount)
	assert.Equal(t, tetris.TypeI, result.LineClear.MinoType)
	assert.False(t, result.LineClear.IsPerfect)
	floor := tetris.DefaultBoardHeight - 1
	for dx := 0; dx < 4; dx++ {
		assert.Equal(t, tetris.MinoBlockCell(tetris.TypeI), cellAt(t, m, x+dx, floor))
	}
	assert.Equal(t, floor, m.MinimumY())
	assert.False(t, m.HasHeld())
}

func TestManager_SingleLineClear(t *testing.T) {
	// Given: a bottom row filled except where the I piece will land
	m := managerStartingWith(t, DefaultConfig(), tetris.TypeI)
	floor := tetris.DefaultBoardHeight - 1
	x := m.CurrentPiece().X
	for col := 0; col < tetris.DefaultBoardWidth; col++ {
		if col < x || col >= x+4 {
			m.field.Set(col, floor, tetris.ObstructionCell(true))
		}
	}

	// When: hard dropping into the gap
	result := command(t, m, CommandHardDrop)

	// Then: exactly one line is cleared and the field is empty again
	require.NotNil(t, result.LineClear)
	assert.Equal(t, 1, result.LineClear.ClearedLineCount)
	assert.True(t, result.LineClear.IsPerfect)
	assert.True(t, m.Field().IsEmpty())
}

func TestManager_SolidGarbageIsNotCleared(t *testing.T) {
	m := managerStartingWith(t, DefaultConfig(), tetris.TypeI)
	floor := tetris.DefaultBoardHeight - 1
	x := m.CurrentPiece().X
	for col := 0; col < tetris.DefaultBoardWidth; col++ {
		if col < x || col >= x+4 {
			m.field.Set(col, floor, tetris.ObstructionCell(false))
		}
	}

	result := command(t, m, CommandHardDrop)

	require.NotNil(t, result.LineClear)
	assert.Equal(t, 0, result.LineClear.ClearedLineCount)
}

func TestManager_GarbageReleasedAfterLock(t *testing.T) {
	// Given: two garbage lines received before any lock
	m := managerStartingWith(t, DefaultConfig(), tetris.TypeI)
	x := m.CurrentPiece().X
	_, err := m.Command(ReceiveGarbage(tetris.AttackedLine{HoleIndexes: []int{0}, CanBeCleared: true}))
	require.NoError(t, err)
	_, err = m.Command(ReceiveGarbage(tetris.AttackedLine{HoleIndexes: []int{9}, CanBeCleared: false}))
	require.NoError(t, err)
	assert.Equal(t, 2, m.PendingAttackedLines())
	assert.True(t, m.Field().IsEmpty(), "garbage waits for the next lock")

	// When: the piece locks
	command(t, m, CommandHardDrop)

	// Then: two rows were added at the bottom in the order received
	lines := m.Field().Lines()
	h := tetris.DefaultBoardHeight
	assert.Equal(t, ".GGGGGGGGG", lines[h-2])
	assert.Equal(t, "NNNNNNNNN.", lines[h-1])
	assert.Equal(t, tetris.MinoBlockCell(tetris.TypeI), cellAt(t, m, x, h-3), "the locked piece was pushed up")
	assert.Equal(t, 0, m.PendingAttackedLines())
}

func TestManager_GarbageReleasedAfterOwnClear(t *testing.T) {
	// Given: a bottom row waiting for an I piece and two pending garbage lines,
	// the first of which would be cleared too if it were inserted before the clear
	m := managerStartingWith(t, DefaultConfig(), tetris.TypeI)
	h := tetris.DefaultBoardHeight
	x := m.CurrentPiece().X
	for col := 0; col < tetris.DefaultBoardWidth; col++ {
		if col < x || col >= x+4 {
			m.field.Set(col, h-1, tetris.ObstructionCell(true))
		}
	}
	_, err := m.Command(ReceiveGarbage(tetris.AttackedLine{CanBeCleared: true}))
	require.NoError(t, err)
	_, err = m.Command(ReceiveGarbage(tetris.AttackedLine{HoleIndexes: []int{9}}))
	require.NoError(t, err)

	// When: the I piece completes the row
	result := command(t, m, CommandHardDrop)

	// Then: only the player's row is cleared and both garbage lines arrive in order
	require.NotNil(t, result.LineClear)
	assert.Equal(t, 1, result.LineClear.ClearedLineCount)
	assert.True(t, result.LineClear.IsPerfect)
	lines := m.Field().Lines()
	assert.Equal(t, "GGGGGGGGGG", lines[h-2])
	assert.Equal(t, "NNNNNNNNN.", lines[h-1])
	assert.Equal(t, h-2, m.MinimumY())
	assert.Equal(t, 0, m.PendingAttackedLines())
}

func TestManager_HoldRespawnTopsOut(t *testing.T) {
	// Given: the spawn rows filled everywhere except under the current piece
	m := newTestManager(t, DefaultConfig(), 6)
	piece := m.CurrentPiece()
	own := map[[2]int]bool{}
	for _, b := range tetris.RotationMask(piece.Type, piece.Facing).Blocks() {
		own[[2]int{piece.X + b[0], piece.Y + b[1]}] = true
	}
	for y := 19; y <= 20; y++ {
		for x := 0; x < tetris.DefaultBoardWidth; x++ {
			if !own[[2]int{x, y}] {
				m.field.Set(x, y, tetris.ObstructionCell(false))
			}
		}
	}
	require.NotEqual(t, piece.Type, m.NextPieces(1)[0])

	// When: holding brings out a piece with a different shape
	result, err := m.Command(NewCommand(CommandHold))

	// Then: it cannot appear and the game is over
	require.ErrorIs(t, err, ErrUnspawnable)
	assert.Nil(t, result.LineClear)
	assert.True(t, m.IsToppedOut())
	_, err = m.Command(NewCommand(CommandLeft))
	assert.ErrorIs(t, err, ErrUnspawnable)
}

func TestManager_ReceiveGarbageValidation(t *testing.T) {
	t.Run("hole outside the field", func(t *testing.T) {
		m := newTestManager(t, DefaultConfig(), 1)
		_, err := m.Command(ReceiveGarbage(tetris.AttackedLine{HoleIndexes: []int{10}}))
		assert.ErrorIs(t, err, ErrInvalidAttackedLine)
		assert.Equal(t, 0, m.PendingAttackedLines())
	})

	t.Run("bounded stock overflows", func(t *testing.T) {
		config := DefaultConfig()
		config.GarbageCapacity = 1
		m := newTestManager(t, config, 1)

		_, err := m.Command(ReceiveGarbage(tetris.AttackedLine{}))
		require.NoError(t, err)
		_, err = m.Command(ReceiveGarbage(tetris.AttackedLine{}))
		assert.ErrorIs(t, err, ErrGarbageOverflow)
		assert.Equal(t, 1, m.PendingAttackedLines())
	})
}

func TestManager_Hold(t *testing.T) {
	t.Run("second hold in the same turn is ignored", func(t *testing.T) {
		// Given: a fresh manager
		m := newTestManager(t, DefaultConfig(), 5)
		first := m.CurrentPiece().Type
		second := m.NextPieces(1)[0]

		// When: holding twice in a row
		command(t, m, CommandHold)
		afterFirst := m.CurrentPiece()
		command(t, m, CommandHold)

		// Then: only the first hold took effect
		held, ok := m.HoldPiece()
		require.True(t, ok)
		assert.Equal(t, first, held)
		assert.Equal(t, second, m.CurrentPiece().Type)
		assert.Equal(t, afterFirst, m.CurrentPiece())
	})

	t.Run("infinite hold swaps every time", func(t *testing.T) {
		config := DefaultConfig()
		config.CanHoldInfinity = true
		m := newTestManager(t, config, 5)
		first := m.CurrentPiece().Type

		command(t, m, CommandHold)
		command(t, m, CommandHold)

		assert.Equal(t, first, m.CurrentPiece().Type)
	})

	t.Run("hold is available again after a lock", func(t *testing.T) {
		m := newTestManager(t, DefaultConfig(), 5)
		command(t, m, CommandHold)
		require.True(t, m.HasHeld())

		command(t, m, CommandHardDrop)

		assert.False(t, m.HasHeld())
	})

	t.Run("held piece respawns at the spawn point", func(t *testing.T) {
		config := DefaultConfig()
		config.CanHoldInfinity = true
		m := newTestManager(t, config, 5)
		command(t, m, CommandLeft)
		command(t, m, CommandHold)
		command(t, m, CommandHold)

		x, y := config.SpawnPoint(m.CurrentPiece().Type)
		assert.Equal(t, x, m.CurrentPiece().X)
		assert.Equal(t, y, m.CurrentPiece().Y)
	})
}

func TestManager_LockRoundTrip(t *testing.T) {
	// Given: a piece soft dropped onto the floor
	m := newTestManager(t, DefaultConfig(), 9)
	for m.CurrentPiece().State == tetris.AirBorne {
		command(t, m, CommandSoftDrop)
	}
	piece := m.CurrentPiece()
	before := m.Field()

	// When: it is locked explicitly
	result := command(t, m, CommandLock)

	// Then: only its mask cells changed, to blocks of its type
	require.NotNil(t, result.LineClear)
	after := m.Field()
	covered := map[[2]int]bool{}
	for _, b := range tetris.RotationMask(piece.Type, piece.Facing).Blocks() {
		covered[[2]int{piece.X + b[0], piece.Y + b[1]}] = true
	}
	for y := 0; y < after.Height(); y++ {
		for x := 0; x < after.Width(); x++ {
			got, _ := after.Cell(x, y)
			if covered[[2]int{x, y}] {
				assert.Equal(t, tetris.MinoBlockCell(piece.Type), got)
				continue
			}
			want, _ := before.Cell(x, y)
			assert.Equal(t, want, got)
		}
	}
}

func TestManager_MoveResetForcesLock(t *testing.T) {
	// Given: a grounded piece with a move reset limit of 1
	config := DefaultConfig()
	config.MoveResetLimit = 1
	m := newTestManager(t, config, 2)
	for m.CurrentPiece().State == tetris.AirBorne {
		command(t, m, CommandSoftDrop)
	}

	// When: shuffling left and right past the budget
	var locked *LineClear
	for i := 0; i < 4 && locked == nil; i++ {
		kind := CommandLeft
		if i%2 == 1 {
			kind = CommandRight
		}
		locked = command(t, m, kind).LineClear
	}

	// Then: the manager locked the piece on its own
	require.NotNil(t, locked)
	assert.False(t, m.Field().IsEmpty())
}

func TestManager_MinoState(t *testing.T) {
	m := newTestManager(t, DefaultConfig(), 4)
	assert.Equal(t, tetris.AirBorne, m.MinoState())

	for m.CurrentPiece().State == tetris.AirBorne {
		command(t, m, CommandSoftDrop)
	}
	assert.Equal(t, tetris.JustLanded, m.CurrentPiece().State)
	assert.Equal(t, tetris.Grounded, m.MinoState())
	assert.Equal(t, tetris.Grounded, m.MinoState())
}

func TestManager_TopOutFreezes(t *testing.T) {
	// Given: a piece locked right at the spawn point
	m := newTestManager(t, DefaultConfig(), 3)

	// When: locking it where it spawned, the next piece cannot appear
	result, err := m.Command(NewCommand(CommandLock))

	// Then: the lock is reported together with the top out
	require.ErrorIs(t, err, ErrUnspawnable)
	require.NotNil(t, result.LineClear)
	assert.True(t, m.IsToppedOut())

	// and every later command is refused without touching the field
	field := m.Field().Lines()
	for _, kind := range []CommandKind{CommandLeft, CommandHardDrop, CommandHold} {
		result, err := m.Command(NewCommand(kind))
		assert.ErrorIs(t, err, ErrUnspawnable)
		assert.Nil(t, result.LineClear)
	}
	assert.Equal(t, field, m.Field().Lines())
	assert.Equal(t, field, m.FieldToDraw().Lines(), "no active piece is drawn after top out")
}

func TestManager_Determinism(t *testing.T) {
	script := []CommandKind{
		CommandLeft, CommandRotateClockwise, CommandHardDrop,
		CommandHold, CommandRight, CommandRight, CommandHardDrop,
		CommandRotate180, CommandSoftDrop, CommandHardDrop,
		CommandRotateCounterClockwise, CommandLeft, CommandLeft, CommandHardDrop,
	}
	play := func() *Manager {
		m := newTestManager(t, DefaultConfig(), 2024)
		for _, kind := range script {
			_, err := m.Command(NewCommand(kind))
			require.NoError(t, err)
		}
		return m
	}

	a, b := play(), play()

	assert.Equal(t, a.Field().Lines(), b.Field().Lines())
	assert.Equal(t, a.NextPieces(7), b.NextPieces(7))
	assert.Equal(t, a.CurrentPiece(), b.CurrentPiece())
}

func TestManager_Projections(t *testing.T) {
	m := newTestManager(t, DefaultConfig(), 8)
	piece := m.CurrentPiece()

	t.Run("field to draw shows the piece and its ghost", func(t *testing.T) {
		field := m.FieldToDraw()
		inMotion, ghosts := 0, 0
		for _, row := range field.Rows() {
			for _, c := range row {
				switch c.Kind {
				case tetris.CellMinoInMotion:
					inMotion++
				case tetris.CellGhost:
					ghosts++
				}
			}
		}
		assert.Equal(t, 4, inMotion)
		assert.Equal(t, 4, ghosts)
		assert.True(t, m.Field().IsEmpty(), "the real field is untouched")
	})

	t.Run("preview flags the next piece at its spawn point", func(t *testing.T) {
		next := m.NextPieces(1)[0]
		x, y := m.Config().SpawnPoint(next)
		preview := m.FieldToDrawWithPreview()

		require.Len(t, preview, m.Height())
		for _, b := range tetris.RotationMask(next, tetris.North).Blocks() {
			assert.True(t, preview[y+b[1]][x+b[0]].Flagged)
		}
		assert.Equal(t, piece, m.CurrentPiece())
	})

	t.Run("next pieces", func(t *testing.T) {
		assert.Len(t, m.NextPieces(5), 5)
		_, ok := m.HoldPiece()
		assert.False(t, ok)
	})
}
