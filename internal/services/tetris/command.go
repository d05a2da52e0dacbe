package tetris

import "github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/models/tetris"

// CommandKind はManagerへの操作の種類です。
type CommandKind int

const (
	CommandLeft CommandKind = iota
	CommandRight
	CommandSoftDrop
	CommandRotateClockwise
	CommandRotateCounterClockwise
	CommandRotate180
	CommandHold
	CommandLock
	CommandHardDrop
	CommandReceiveGarbage
)

func (k CommandKind) String() string {
	switch k {
	case CommandLeft:
		return "left"
	case CommandRight:
		return "right"
	case CommandSoftDrop:
		return "soft_drop"
	case CommandRotateClockwise:
		return "rotate_cw"
	case CommandRotateCounterClockwise:
		return "rotate_ccw"
	case CommandRotate180:
		return "rotate_180"
	case CommandHold:
		return "hold"
	case CommandLock:
		return "lock"
	case CommandHardDrop:
		return "hard_drop"
	case CommandReceiveGarbage:
		return "receive_garbage"
	default:
		return "unknown"
	}
}

// Command はホストからManagerに渡す1回分の操作です。
// AttackedLineはCommandReceiveGarbageのときだけ使います。
type Command struct {
	Kind         CommandKind
	AttackedLine tetris.AttackedLine
}

// NewCommand はお邪魔ライン以外の操作を作ります。
func NewCommand(kind CommandKind) Command {
	return Command{Kind: kind}
}

// ReceiveGarbage はお邪魔ラインを受け取る操作を作ります。
func ReceiveGarbage(line tetris.AttackedLine) Command {
	return Command{Kind: CommandReceiveGarbage, AttackedLine: line}
}

// LineClear はミノを固定したときの結果です。固定1回につき1つ作られます。
// スコアの計算はホスト側の責任で、ここでは生の情報だけを返します。
type LineClear struct {
	ClearedLineCount int              `json:"cleared_line_count,omitempty"` // 0ならライン消去なし
	IsPerfect        bool             `json:"is_perfect"`
	MinoType         tetris.PieceType `json:"mino_type"`
	IsSpin           bool             `json:"is_spin"`
	IsSpinMini       bool             `json:"is_spin_mini"`
}

// CommandResult はCommandの結果です。LineClearは固定が起きたときだけnil以外になります。
type CommandResult struct {
	State     tetris.MinoState
	LineClear *LineClear
}
