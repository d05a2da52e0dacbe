package tetris

// CellKind はフィールド上の1マスの種類です。
type CellKind uint8

const (
	CellEmpty        CellKind = iota // 空のマス
	CellWall                         // 壁
	CellObstruction                  // お邪魔ブロック
	CellMinoBlock                    // 固定済みのミノ
	CellMinoInMotion                 // 操作中のミノ（描画用）
	CellGhost                        // ゴースト（描画用）
)

// Cell はフィールドの1マスです。ゼロ値は空のマスです。
// Pieceはミノ由来のマスでのみ、Clearableはお邪魔ブロックでのみ意味を持ちます。
type Cell struct {
	Kind      CellKind  `json:"kind"`
	Piece     PieceType `json:"piece,omitempty"`
	Clearable bool      `json:"clearable,omitempty"`
}

func EmptyCell() Cell { return Cell{} }

func WallCell() Cell { return Cell{Kind: CellWall} }

// ObstructionCell はお邪魔ブロックを返します。clearableがfalseならライン消去の対象になりません。
func ObstructionCell(clearable bool) Cell {
	return Cell{Kind: CellObstruction, Clearable: clearable}
}

func MinoBlockCell(t PieceType) Cell { return Cell{Kind: CellMinoBlock, Piece: t} }

func MinoInMotionCell(t PieceType) Cell { return Cell{Kind: CellMinoInMotion, Piece: t} }

func GhostCell(t PieceType) Cell { return Cell{Kind: CellGhost, Piece: t} }

// HasCollision は当たり判定を持つマスならtrueを返します。
// 操作中のミノとゴーストは描画用なので当たり判定を持ちません。
func (c Cell) HasCollision() bool {
	switch c.Kind {
	case CellWall, CellObstruction, CellMinoBlock:
		return true
	default:
		return false
	}
}

// CanBeCleared はライン消去の対象になり得るマスならtrueを返します。
func (c Cell) CanBeCleared() bool {
	switch c.Kind {
	case CellWall, CellMinoBlock:
		return true
	case CellObstruction:
		return c.Clearable
	default:
		return false
	}
}

// Rune はテキスト描画やJSONスナップショット用の1文字表現です。
//
//	'.' 空, '#' 壁, 'G' 消せるお邪魔, 'N' 消せないお邪魔,
//	大文字 固定ミノ, 小文字 操作中ミノ, '+' ゴースト
func (c Cell) Rune() rune {
	switch c.Kind {
	case CellWall:
		return '#'
	case CellObstruction:
		if c.Clearable {
			return 'G'
		}
		return 'N'
	case CellMinoBlock:
		return rune(c.Piece.String()[0])
	case CellMinoInMotion:
		return rune(c.Piece.String()[0]) + ('a' - 'A')
	case CellGhost:
		return '+'
	default:
		return '.'
	}
}
