package tetris

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/models/tetris"
)

// セッションの状態
const (
	StatusWaiting  = "waiting"  // WebSocket接続待ち
	StatusPlaying  = "playing"  // プレイ中
	StatusFinished = "finished" // トップアウトまたは切断で終了
)

// NextPreviewCount はスナップショットに含めるネクストの数です。
const NextPreviewCount = 5

// ErrSessionFinished は終了済みのセッションに操作が送られたことを表します。
var ErrSessionFinished = errors.New("game session is finished")

// GameSession は1人用のゲームセッションです。Managerを1つ所有し、muで排他制御します。
type GameSession struct {
	ID        string
	UserID    string
	Status    string
	Seed      int64
	StartedAt time.Time
	EndedAt   time.Time

	manager       *Manager
	linesCleared  int
	piecesLocked  int
	spins         int
	perfectClears int
	lastLineClear *LineClear
	lastFallTime  time.Time // 最後に自動落下した時刻
	groundedSince time.Time // 接地し始めた時刻。空中ならゼロ値
	mu            sync.Mutex
}

// GameStats はセッションの集計値です。結果の保存に使います。
type GameStats struct {
	LinesCleared  int `json:"lines_cleared"`
	PiecesLocked  int `json:"pieces_locked"`
	Spins         int `json:"spins"`
	PerfectClears int `json:"perfect_clears"`
}

// GameSnapshot はクライアントに送るゲーム状態です。
type GameSnapshot struct {
	ID            string             `json:"id"`
	UserID        string             `json:"user_id"`
	Status        string             `json:"status"`
	Field         []string           `json:"field"`
	Next          []tetris.PieceType `json:"next"`
	Hold          *tetris.PieceType  `json:"hold,omitempty"`
	CurrentPiece  *PieceSnapshot     `json:"current_piece,omitempty"`
	Stats         GameStats          `json:"stats"`
	LastLineClear *LineClear         `json:"last_line_clear,omitempty"`
	IsToppedOut   bool               `json:"is_topped_out"`
	StartedAt     time.Time          `json:"started_at,omitzero"`
	EndedAt       time.Time          `json:"ended_at,omitzero"`
}

// NewGameSession は新しいセッションを作り、最初のミノを出現させます。
//
// Parameters:
//
//	id     : セッションID
//	userID : プレイヤーのユーザーID
//	rules  : ルール設定
//	seed   : ネクスト生成用のシード
//	width  : フィールドの幅
//	height : フィールドの高さ
func NewGameSession(id, userID string, rules Config, seed int64, width, height int) (*GameSession, error) {
	manager, err := NewManager(rules, seed, width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to create manager: %w", err)
	}
	return &GameSession{
		ID:      id,
		UserID:  userID,
		Status:  StatusWaiting,
		Seed:    seed,
		manager: manager,
	}, nil
}

// Start はセッションをプレイ中にします。既に開始済みなら何もしません。
func (s *GameSession) Start(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Status != StatusWaiting {
		return false
	}
	s.Status = StatusPlaying
	s.StartedAt = now
	s.lastFallTime = now
	return true
}

// Finish はセッションを終了します。初めて終了したときだけtrueを返します。
func (s *GameSession) Finish(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishLocked(now)
}

func (s *GameSession) finishLocked(now time.Time) bool {
	if s.Status == StatusFinished {
		return false
	}
	s.Status = StatusFinished
	s.EndedAt = now
	return true
}

// IsFinished はセッションが終了していればtrueを返します。
func (s *GameSession) IsFinished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Status == StatusFinished
}

// Apply はManagerにCommandを渡し、結果を集計します。
// トップアウトした場合はセッションを終了し、ErrUnspawnableを返します。
func (s *GameSession) Apply(cmd Command, now time.Time) (CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(cmd, now)
}

func (s *GameSession) applyLocked(cmd Command, now time.Time) (CommandResult, error) {
	if s.Status == StatusFinished {
		return CommandResult{}, ErrSessionFinished
	}
	before := s.manager.CurrentPiece()
	result, err := s.manager.Command(cmd)

	if lc := result.LineClear; lc != nil {
		s.piecesLocked++
		s.linesCleared += lc.ClearedLineCount
		if lc.IsSpin {
			s.spins++
		}
		if lc.IsPerfect {
			s.perfectClears++
		}
		s.lastLineClear = lc
		s.lastFallTime = now
		s.groundedSince = time.Time{}
	} else if after := s.manager.CurrentPiece(); after.X != before.X || after.Y != before.Y || after.Facing != before.Facing {
		// 動けたなら固定までの猶予を最初から数え直す
		s.groundedSince = time.Time{}
	}

	if errors.Is(err, ErrUnspawnable) {
		s.finishLocked(now)
	}
	return result, err
}

// Stats は現在の集計値を返します。
func (s *GameSession) Stats() GameStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLocked()
}

func (s *GameSession) statsLocked() GameStats {
	return GameStats{
		LinesCleared:  s.linesCleared,
		PiecesLocked:  s.piecesLocked,
		Spins:         s.spins,
		PerfectClears: s.perfectClears,
	}
}

// Snapshot はクライアントに送るための状態を作ります。
// フィールドには次のミノの出現位置が '*' で重ねて描かれます。
func (s *GameSession) Snapshot() GameSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := GameSnapshot{
		ID:            s.ID,
		UserID:        s.UserID,
		Status:        s.Status,
		Field:         renderPreview(s.manager.FieldToDrawWithPreview()),
		Next:          s.manager.NextPieces(NextPreviewCount),
		Stats:         s.statsLocked(),
		LastLineClear: s.lastLineClear,
		IsToppedOut:   s.manager.IsToppedOut(),
		StartedAt:     s.StartedAt,
		EndedAt:       s.EndedAt,
	}
	if hold, ok := s.manager.HoldPiece(); ok {
		snapshot.Hold = &hold
	}
	if !s.manager.IsToppedOut() {
		piece := s.manager.CurrentPiece()
		snapshot.CurrentPiece = &piece
	}
	return snapshot
}

// renderPreview はプレビュー付きのフィールドを1行1文字列に変換します。
func renderPreview(rows [][]tetris.PreviewCell) []string {
	lines := make([]string, len(rows))
	for y, row := range rows {
		var b strings.Builder
		b.Grow(len(row))
		for _, pc := range row {
			if pc.Flagged && !pc.Cell.HasCollision() {
				b.WriteRune('*')
				continue
			}
			b.WriteRune(pc.Cell.Rune())
		}
		lines[y] = b.String()
	}
	return lines
}
