package tetris

import (
	"fmt"
	"log"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/models/tetris"
)

// Manager はフィールド・ネクスト・落下中のミノをまとめて管理し、Commandを受け付けます。
// 1つのManagerは1ゲーム分で、並行に呼び出す場合は呼び出し側で排他制御してください。
type Manager struct {
	width         int
	height        int
	field         *tetris.Field
	config        Config
	queue         *PieceQueue
	currentMino   *tetris.Mino
	attackedLines []tetris.AttackedLine
	hasHeld       bool
	toppedOut     bool
}

// NewManager は新しいゲームを開始します。
//
// Parameters:
//
//	config : ルール設定
//	seed   : ネクスト生成用の乱数シード
//	width  : フィールドの幅
//	height : フィールドの高さ
//
// Returns:
//
//	*Manager: 最初のミノが出現した状態のManager
//	error: 設定が不正な場合、または最初のミノが出現できない場合
func NewManager(config Config, seed int64, width, height int) (*Manager, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{
		width:  width,
		height: height,
		field:  tetris.NewField(width, height),
		config: config,
		queue:  NewPieceQueue(seed, config.QueueCapacity),
	}
	if err := m.spawnCurrentMino(); err != nil {
		return nil, err
	}
	return m, nil
}

// Command は1回分の操作を処理します。
// 固定が起きた場合は結果にLineClearが入ります。次のミノが出現できなければErrUnspawnableを返し、
// それ以降Managerは凍結されます（フィールドなどの参照は引き続き可能）。
func (m *Manager) Command(cmd Command) (CommandResult, error) {
	if m.toppedOut {
		return CommandResult{State: m.currentMino.State()}, ErrUnspawnable
	}
	limit := m.config.MoveResetLimit

	switch cmd.Kind {
	case CommandLeft:
		m.currentMino.MoveHorizontal(tetris.Left, m.field, limit)
	case CommandRight:
		m.currentMino.MoveHorizontal(tetris.Right, m.field, limit)
	case CommandSoftDrop:
		m.currentMino.Down(m.field)
	case CommandRotateClockwise:
		m.currentMino.Rotate(tetris.Clockwise, m.field, limit)
	case CommandRotateCounterClockwise:
		m.currentMino.Rotate(tetris.CounterClockwise, m.field, limit)
	case CommandRotate180:
		m.currentMino.Rotate(tetris.Rotate180, m.field, limit)
	case CommandHold:
		if !m.hasHeld || m.config.CanHoldInfinity {
			m.hasHeld = true
			m.queue.Hold()
			if err := m.spawnCurrentMino(); err != nil {
				log.Printf("[Manager] Hold respawn failed for %s: %v", m.queue.Current(), err)
				return CommandResult{State: m.currentMino.State()}, err
			}
		}
	case CommandHardDrop:
		for m.currentMino.Down(m.field) {
		}
		return m.lock()
	case CommandLock:
		return m.lock()
	case CommandReceiveGarbage:
		if err := m.stockAttackedLine(cmd.AttackedLine); err != nil {
			return CommandResult{State: m.currentMino.State()}, err
		}
	default:
		return CommandResult{State: m.currentMino.State()}, fmt.Errorf("tetris: unknown command %d", cmd.Kind)
	}

	// 移動リセットの上限を超えて接地しているなら強制的に固定する
	if m.currentMino.ShouldBeLocked() && m.currentMino.State() != tetris.AirBorne {
		return m.lock()
	}
	return CommandResult{State: m.currentMino.State()}, nil
}

// lock は落下中のミノを固定し、ライン消去・お邪魔ラインの反映・次のミノの出現までを行います。
func (m *Manager) lock() (CommandResult, error) {
	m.currentMino.Lock(m.field)
	m.hasHeld = false

	cleared := 0
	for y := 0; y < m.height; y++ {
		if m.field.IsRowClearable(y) {
			m.field.ClearRow(y)
			m.currentMino.ShiftDown(1) // 消えた行の分だけ一緒に落ちる
			cleared++
		}
	}
	lineClear := &LineClear{
		ClearedLineCount: cleared,
		IsPerfect:        m.field.IsEmpty(),
		MinoType:         m.currentMino.Type(),
		IsSpin:           m.currentMino.IsLastMoveSpin(),
		IsSpinMini:       m.currentMino.IsLastMoveMiniSpin(),
	}
	m.queue.Next()

	// お邪魔ラインは自分のライン消去の後に反映する
	m.releaseAttackedLines()

	if err := m.spawnCurrentMino(); err != nil {
		return CommandResult{State: m.currentMino.State(), LineClear: lineClear}, err
	}
	return CommandResult{State: m.currentMino.State(), LineClear: lineClear}, nil
}

// spawnCurrentMino はキューの現在のピースを出現位置に置きます。置けなければManagerを凍結します。
func (m *Manager) spawnCurrentMino() error {
	t := m.queue.Current()
	x, y := m.config.SpawnPoint(t)
	mino, ok := tetris.NewMino(t, x, y, m.field)
	if !ok {
		m.toppedOut = true
		log.Printf("[Manager] Top out: %s cannot spawn at (%d, %d)", t, x, y)
		return fmt.Errorf("%w: %s at (%d, %d)", ErrUnspawnable, t, x, y)
	}
	m.currentMino = mino
	return nil
}

func (m *Manager) stockAttackedLine(line tetris.AttackedLine) error {
	if m.config.GarbageCapacity > 0 && len(m.attackedLines) >= m.config.GarbageCapacity {
		return fmt.Errorf("%w: capacity %d", ErrGarbageOverflow, m.config.GarbageCapacity)
	}
	for _, hole := range line.HoleIndexes {
		if hole < 0 || hole >= m.width {
			return fmt.Errorf("%w: %d (width %d)", ErrInvalidAttackedLine, hole, m.width)
		}
	}
	holes := append([]int(nil), line.HoleIndexes...)
	m.attackedLines = append(m.attackedLines, tetris.AttackedLine{HoleIndexes: holes, CanBeCleared: line.CanBeCleared})
	return nil
}

// releaseAttackedLines はストックしたお邪魔ラインを受け取った順にフィールドへ反映します。
func (m *Manager) releaseAttackedLines() {
	if len(m.attackedLines) == 0 {
		return
	}
	log.Printf("[Manager] Releasing %d attacked line(s)", len(m.attackedLines))
	for _, line := range m.attackedLines {
		m.field.InjectGarbage(line)
	}
	m.attackedLines = m.attackedLines[:0]
}
