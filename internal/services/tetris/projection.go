package tetris

import "github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/models/tetris"

// PieceSnapshot は落下中のミノの読み取り専用の情報です。
type PieceSnapshot struct {
	Type           tetris.PieceType `json:"type"`
	X              int              `json:"x"`
	Y              int              `json:"y"`
	Facing         tetris.Facing    `json:"facing"`
	State          tetris.MinoState `json:"state"`
	MoveResetCount int              `json:"move_reset_count"`
}

func (m *Manager) Width() int     { return m.width }
func (m *Manager) Height() int    { return m.height }
func (m *Manager) Config() Config { return m.config }

// IsToppedOut は次のミノが出現できずにゲームが終わっていればtrueを返します。
func (m *Manager) IsToppedOut() bool {
	return m.toppedOut
}

// Field は固定済みブロックだけのフィールドのコピーを返します。
func (m *Manager) Field() *tetris.Field {
	return m.field.Clone()
}

// FieldToDraw はゴーストと操作中のミノを重ねたフィールドのコピーを返します。
// ゲームオーバー後は重ねるミノがないので固定済みのフィールドだけを返します。
func (m *Manager) FieldToDraw() *tetris.Field {
	field := m.field.Clone()
	if m.toppedOut {
		return field
	}
	m.currentMino.DrawGhost(field)
	m.currentMino.Draw(field, tetris.MinoInMotionCell(m.currentMino.Type()))
	return field
}

// FieldToDrawWithPreview はFieldToDrawに、次のミノの出現位置をフラグとして重ねたものを返します。
// ネクストを先読みするため、キューの補充が起きることがあります。
func (m *Manager) FieldToDrawWithPreview() [][]tetris.PreviewCell {
	field := m.FieldToDraw()
	next := m.queue.Peek(1)
	if len(next) == 0 {
		return tetris.NewPreviewMino(tetris.TypeO, -4, -4).DrawPreview(field)
	}
	x, y := m.config.SpawnPoint(next[0])
	return tetris.NewPreviewMino(next[0], x, y).DrawPreview(field)
}

// NextPieces は次に出てくるピースをn個返します。
func (m *Manager) NextPieces(n int) []tetris.PieceType {
	return m.queue.Peek(n)
}

// HoldPiece はホールド中のピースを返します。空ならfalseです。
func (m *Manager) HoldPiece() (tetris.PieceType, bool) {
	return m.queue.Held()
}

// HasHeld は現在のミノでホールドを使ったかを返します。
func (m *Manager) HasHeld() bool {
	return m.hasHeld
}

// PendingAttackedLines はまだ反映されていないお邪魔ラインの数を返します。
func (m *Manager) PendingAttackedLines() int {
	return len(m.attackedLines)
}

// MinoState は接地状態の確認(JustLanded→Grounded)を行ってから現在の状態を返します。
func (m *Manager) MinoState() tetris.MinoState {
	m.currentMino.CheckStatus()
	return m.currentMino.State()
}

// CurrentPiece は落下中のミノの情報を返します。
func (m *Manager) CurrentPiece() PieceSnapshot {
	return PieceSnapshot{
		Type:           m.currentMino.Type(),
		X:              m.currentMino.X(),
		Y:              m.currentMino.Y(),
		Facing:         m.currentMino.Facing(),
		State:          m.currentMino.State(),
		MoveResetCount: m.currentMino.MoveResetCount(),
	}
}

// MinimumY は固定済みブロックがある最も上の行を返します。空ならフィールドの高さです。
func (m *Manager) MinimumY() int {
	return m.field.MinimumY()
}
