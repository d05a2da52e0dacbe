package tetris

import (
	"errors"
	"fmt"
	"time"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/models/tetris"
)

// ゲームループの速度設定
const (
	InitialFallInterval = 1000 * time.Millisecond // レベル1の自動落下間隔
	MinimumFallInterval = 100 * time.Millisecond  // これより速くはならない
	FallIntervalStep    = 40 * time.Millisecond   // 1レベルごとに短くなる量
	LevelUpLines        = 10                      // レベルアップに必要なライン数
	DefaultLockDelay    = 500 * time.Millisecond  // 接地してから固定されるまでの猶予時間
)

// ErrUnknownAction はクライアントから知らない操作が送られたことを表します。
var ErrUnknownAction = errors.New("unknown action")

// PlayerInputEvent はクライアントからWebSocketで送られてくる1回分の操作です。
// HolesとClearableは "garbage" のときだけ使います。
type PlayerInputEvent struct {
	UserID    string `json:"-"`
	GameID    string `json:"-"`
	Action    string `json:"action"`
	Holes     []int  `json:"holes,omitempty"`
	Clearable bool   `json:"clearable,omitempty"`
}

var actionCommands = map[string]CommandKind{
	"move_left":    CommandLeft,
	"move_right":   CommandRight,
	"soft_drop":    CommandSoftDrop,
	"rotate":       CommandRotateClockwise,
	"rotate_right": CommandRotateClockwise,
	"rotate_left":  CommandRotateCounterClockwise,
	"rotate_180":   CommandRotate180,
	"hold":         CommandHold,
	"hard_drop":    CommandHardDrop,
	"lock":         CommandLock,
}

// ParseAction はクライアントの操作をCommandに変換します。知らない操作ならfalseを返します。
func ParseAction(event PlayerInputEvent) (Command, bool) {
	if event.Action == "garbage" {
		return ReceiveGarbage(tetris.AttackedLine{
			HoleIndexes:  event.Holes,
			CanBeCleared: event.Clearable,
		}), true
	}
	kind, ok := actionCommands[event.Action]
	if !ok {
		return Command{}, false
	}
	return NewCommand(kind), true
}

// FallInterval は消したライン数から求めたレベルに応じた自動落下間隔を返します。
func FallInterval(base time.Duration, linesCleared int) time.Duration {
	level := linesCleared/LevelUpLines + 1
	interval := base - time.Duration(level-1)*FallIntervalStep
	if interval < MinimumFallInterval {
		interval = MinimumFallInterval
	}
	return interval
}

// ApplyPlayerInput はプレイヤーの操作をセッションに反映します。
//
// Parameters:
//
//	session : 操作対象のセッション
//	event   : クライアントから届いた操作
//	now     : 操作を受け取った時刻
//
// Returns:
//
//	error: 操作が不正な場合、セッションが終了済みの場合、トップアウトした場合(ErrUnspawnable)
func ApplyPlayerInput(session *GameSession, event PlayerInputEvent, now time.Time) error {
	cmd, ok := ParseAction(event)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, event.Action)
	}
	_, err := session.Apply(cmd, now)
	return err
}

// AutoFall は時間経過による自動落下と、接地後の時間切れによる固定を行います。
// 移動リセットの回数制限はManager側で、こちらは実時間の猶予だけを扱います。
//
// Parameters:
//
//	session   : 対象のセッション
//	now       : 現在時刻
//	gravity   : レベル1の自動落下間隔
//	lockDelay : 接地してから固定するまでの猶予
//
// Returns:
//
//	bool : 状態が変化した場合はtrue
//	error: トップアウトした場合はErrUnspawnable
func AutoFall(session *GameSession, now time.Time, gravity, lockDelay time.Duration) (bool, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.Status != StatusPlaying {
		return false, nil
	}

	changed := false
	if now.Sub(session.lastFallTime) >= FallInterval(gravity, session.linesCleared) {
		session.lastFallTime = now
		if session.manager.CurrentPiece().State == tetris.AirBorne {
			if _, err := session.applyLocked(NewCommand(CommandSoftDrop), now); err != nil {
				return true, err
			}
			changed = true
		}
	}

	if session.manager.CurrentPiece().State == tetris.AirBorne {
		session.groundedSince = time.Time{}
		return changed, nil
	}
	if session.groundedSince.IsZero() {
		session.groundedSince = now
		return changed, nil
	}
	if now.Sub(session.groundedSince) < lockDelay {
		return changed, nil
	}
	_, err := session.applyLocked(NewCommand(CommandLock), now)
	return true, err
}
