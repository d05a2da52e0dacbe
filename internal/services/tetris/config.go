package tetris

import (
	"errors"
	"fmt"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/models/tetris"
)

var (
	// ErrUnspawnable は次のミノを出現させる場所がない（積み上がってしまった）ことを表します。
	// ホストにとって唯一のゲームオーバー条件です。
	ErrUnspawnable = errors.New("tetris: no legal spawn position for the next piece")
	// ErrGarbageOverflow はお邪魔ラインのストックが設定した容量を超えたことを表します。
	ErrGarbageOverflow = errors.New("tetris: attacked line stock is full")
	// ErrInvalidConfig は設定値が不正なことを表します。
	ErrInvalidConfig = errors.New("tetris: invalid config")
	// ErrInvalidDimensions はフィールドのサイズが不正なことを表します。
	ErrInvalidDimensions = errors.New("tetris: invalid field dimensions")
	// ErrInvalidAttackedLine はお邪魔ラインの穴の位置がフィールド外であることを表します。
	ErrInvalidAttackedLine = errors.New("tetris: hole index out of field")
)

// Position はフィールド上の座標です。
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Config はゲームのルール設定です。Managerの生成後は変更されません。
type Config struct {
	// MoveResetLimit は接地中に許す移動・回転の回数です。tetris.UnlimitedMoveReset なら無制限。
	MoveResetLimit int `json:"move_reset_limit"`
	// AppearancePosition はミノの出現位置です。O-ミノのときだけY座標が1つ上になります。
	AppearancePosition Position `json:"appearance_position"`
	// CanHoldInfinity がtrueなら、1回の出現で何度でもホールドできます。
	CanHoldInfinity bool `json:"can_hold_infinity"`
	// QueueCapacity はネクストの先読み上限です。0なら無制限。
	QueueCapacity int `json:"queue_capacity,omitempty"`
	// GarbageCapacity はストックできるお邪魔ラインの上限です。0なら無制限。
	GarbageCapacity int `json:"garbage_capacity,omitempty"`
}

// DefaultConfig は標準的なルール設定を返します。
func DefaultConfig() Config {
	return Config{
		MoveResetLimit:     15,
		AppearancePosition: Position{X: 3, Y: 19},
		CanHoldInfinity:    false,
	}
}

// Validate は設定値を検証します。
func (c Config) Validate() error {
	if c.MoveResetLimit < tetris.UnlimitedMoveReset {
		return fmt.Errorf("%w: move reset limit %d", ErrInvalidConfig, c.MoveResetLimit)
	}
	if c.QueueCapacity < 0 || (c.QueueCapacity > 0 && c.QueueCapacity < tetris.PieceTypeCount) {
		return fmt.Errorf("%w: queue capacity %d must be 0 or at least %d", ErrInvalidConfig, c.QueueCapacity, tetris.PieceTypeCount)
	}
	if c.GarbageCapacity < 0 {
		return fmt.Errorf("%w: garbage capacity %d", ErrInvalidConfig, c.GarbageCapacity)
	}
	return nil
}

// SpawnPoint はtの出現座標を返します。
// O-ミノはマスクの上1行が空なので、他のミノと同じ高さに見えるよう1つ上に出します。
func (c Config) SpawnPoint(t tetris.PieceType) (int, int) {
	y := c.AppearancePosition.Y
	if t == tetris.TypeO {
		y--
	}
	return c.AppearancePosition.X, y
}
