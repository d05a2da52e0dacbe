package tetris

// MinoState は落下中のミノの接地状態です。
type MinoState int

const (
	AirBorne   MinoState = iota // 空中にある（まだ下に動ける）
	JustLanded                  // この操作で接地した、または接地中に動いてなお接地している
	Grounded                    // 前回の操作より前から接地している
)

func (s MinoState) String() string {
	switch s {
	case AirBorne:
		return "air_borne"
	case JustLanded:
		return "just_landed"
	default:
		return "grounded"
	}
}

func (s MinoState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnlimitedMoveReset は移動リセット回数に上限を設けないことを表します。
const UnlimitedMoveReset = -1

// HorizontalDirection は左右移動の向きです。
type HorizontalDirection int

const (
	Left HorizontalDirection = iota
	Right
)

// Mino は現在落下中のテトリミノです。
// (X, Y) は4x4マスクの左上の座標です。
type Mino struct {
	x              int
	y              int
	maximumY       int // これまでに到達した最も深いY
	facing         Facing
	pieceType      PieceType
	moveResetCount int
	state          MinoState
	shouldBeLocked bool
	lastMoveSpin   bool
	lastMoveMini   bool
}

// NewMino は(x, y)に北向きのミノを出現させます。
// 出現位置が置けない場合はnilとfalseを返します（ゲームオーバー）。
func NewMino(t PieceType, x, y int, field *Field) (*Mino, bool) {
	m := &Mino{x: x, y: y, maximumY: y, pieceType: t}
	if !m.canReplace(x, y, North, field) {
		return nil, false
	}
	m.updateState(field)
	return m, true
}

// NewPreviewMino は当たり判定をせずにミノを作ります。ネクストの出現位置プレビュー用です。
func NewPreviewMino(t PieceType, x, y int) *Mino {
	return &Mino{x: x, y: y, maximumY: y, pieceType: t}
}

func (m *Mino) X() int { return m.x }
func (m *Mino) Y() int { return m.y }
func (m *Mino) Facing() Facing { return m.facing }
func (m *Mino) Type() PieceType { return m.pieceType }
func (m *Mino) State() MinoState { return m.state }
func (m *Mino) MoveResetCount() int { return m.moveResetCount }
func (m *Mino) ShouldBeLocked() bool { return m.shouldBeLocked }
func (m *Mino) IsLastMoveSpin() bool { return m.lastMoveSpin }
func (m *Mino) IsLastMoveMiniSpin() bool { return m.lastMoveMini }

// Mask は現在の向きの占有マスクを返します。
func (m *Mino) Mask() Mask {
	return RotationMask(m.pieceType, m.facing)
}

// Clone はミノのコピーを返します。
func (m *Mino) Clone() *Mino {
	c := *m
	return &c
}

// MoveHorizontal はミノを左右に1マス動かします。動けなければfalseを返し、状態は変わりません。
//
// Parameters:
//
//	dir            : 移動方向
//	field          : 現在のフィールド
//	moveResetLimit : 接地中に許す移動回数。UnlimitedMoveReset(負数)なら無制限
func (m *Mino) MoveHorizontal(dir HorizontalDirection, field *Field, moveResetLimit int) bool {
	dx := 1
	if dir == Left {
		dx = -1
	}
	if !m.replace(m.x+dx, m.y, m.facing, field, moveResetLimit) {
		return false
	}
	m.clearSpin()
	return true
}

// Down はミノを1段下げます。移動リセットの上限は適用しません。
func (m *Mino) Down(field *Field) bool {
	if !m.replace(m.x, m.y+1, m.facing, field, UnlimitedMoveReset) {
		return false
	}
	m.clearSpin()
	return true
}

// CanDown はミノがあと1段下に動けるかを返します。
func (m *Mino) CanDown(field *Field) bool {
	return m.canReplace(m.x, m.y+1, m.facing, field)
}

// Rotate はキックテーブルの候補を順に試して回転します。
// 最初に置けた候補で確定し、どれも置けなければfalseを返します。
// T-ミノの場合は回転成功後にT-スピン判定を行います。
func (m *Mino) Rotate(r RotationType, field *Field, moveResetLimit int) bool {
	target := m.facing.Rotate(r)
	for _, offset := range KickOffsets(m.pieceType, m.facing, r) {
		// キックのYは上向きが正なので引く
		if !m.replace(m.x+offset.X, m.y-offset.Y, target, field, moveResetLimit) {
			continue
		}
		if m.pieceType == TypeT {
			m.detectSpin(field)
		} else {
			m.clearSpin()
		}
		return true
	}
	return false
}

// detectSpin は回転直後のT-ミノについてT-スピン/T-スピンミニを判定します。
func (m *Mino) detectSpin(field *Field) {
	cx, cy := m.x+1, m.y+1
	corners := 0
	for _, dy := range [2]int{-1, 1} {
		for _, dx := range [2]int{-1, 1} {
			if field.HasCollisionAt(cx+dx, cy+dy) {
				corners++
			}
		}
	}
	if corners < 3 {
		m.clearSpin()
		return
	}
	m.lastMoveSpin = true

	// 判定用の2マスはTの中心からの相対座標
	front := 0
	for _, c := range TSpinCorners(m.facing) {
		if field.HasCollisionAt(cx+c[0], cy+c[1]) {
			front++
		}
	}
	m.lastMoveMini = front != 2
}

func (m *Mino) clearSpin() {
	m.lastMoveSpin = false
	m.lastMoveMini = false
}

// CheckStatus は前回の操作で接地したミノ(JustLanded)をGroundedに進めます。
// 何度呼んでも1回分しか進みません。
func (m *Mino) CheckStatus() {
	if m.state == JustLanded {
		m.state = Grounded
	}
}

// canReplace は(x, y, facing)にミノを置けるかを判定します。
func (m *Mino) canReplace(x, y int, facing Facing, field *Field) bool {
	mask := RotationMask(m.pieceType, facing)
	for _, b := range mask.Blocks() {
		if !field.IsFree(x+b[0], y+b[1]) {
			return false
		}
	}
	return true
}

// replace は移動・回転の共通処理です。置けるかの判定と移動リセットの管理を行い、成功したら確定します。
func (m *Mino) replace(x, y int, facing Facing, field *Field, moveResetLimit int) bool {
	m.CheckStatus()
	if !m.canReplace(x, y, facing, field) {
		return false
	}
	if m.maximumY < y {
		// これまでより深く落ちたら移動リセットの回数を戻す
		m.moveResetCount = 0
		m.shouldBeLocked = false
	} else {
		if moveResetLimit >= 0 && moveResetLimit < m.moveResetCount {
			m.shouldBeLocked = true
			if m.state != AirBorne {
				return false
			}
		}
		m.moveResetCount++
	}
	m.x = x
	m.y = y
	m.facing = facing
	m.maximumY = max(m.maximumY, y)
	m.updateState(field)
	return true
}

func (m *Mino) updateState(field *Field) {
	if m.CanDown(field) {
		m.state = AirBorne
	} else {
		m.state = JustLanded
	}
}

// ShiftDown はライン消去でフィールドが下がった分だけミノのYを下げます。
func (m *Mino) ShiftDown(lines int) {
	m.y += lines
}

// Lock はミノをフィールドに固定ブロックとして書き込みます。
func (m *Mino) Lock(field *Field) {
	m.Draw(field, MinoBlockCell(m.pieceType))
}

// Draw はミノの形でcellをフィールドに書き込みます。範囲外のマスは書き込みません。
func (m *Mino) Draw(field *Field, cell Cell) {
	for _, b := range m.Mask().Blocks() {
		field.Set(m.x+b[0], m.y+b[1], cell)
	}
}

// DrawGhost はミノのコピーを下に落とし切った位置にゴーストを書き込みます。ミノ自身は変化しません。
func (m *Mino) DrawGhost(field *Field) {
	ghost := m.Clone()
	for ghost.Down(field) {
	}
	ghost.Draw(field, GhostCell(m.pieceType))
}

// PreviewCell はネクストの出現位置を重ねたフィールドの1マスです。
// Flaggedがtrueなら次のミノがそこに出現します。Cellは元のマスのままです。
type PreviewCell struct {
	Flagged bool `json:"flagged"`
	Cell    Cell `json:"cell"`
}

// DrawPreview はフィールドを書き換えずに、ミノの位置にフラグを立てた2次元配列を返します。
func (m *Mino) DrawPreview(field *Field) [][]PreviewCell {
	rows := field.Rows()
	preview := make([][]PreviewCell, len(rows))
	for y, row := range rows {
		preview[y] = make([]PreviewCell, len(row))
		for x, c := range row {
			preview[y][x] = PreviewCell{Cell: c}
		}
	}
	for _, b := range m.Mask().Blocks() {
		x, y := m.x+b[0], m.y+b[1]
		if field.InBounds(x, y) {
			preview[y][x].Flagged = true
		}
	}
	return preview
}
