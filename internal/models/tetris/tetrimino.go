package tetris

// PieceType はテトリミノの種類を表します。
// 回転テーブルなどの配列インデックスとしても使います。
type PieceType int

const (
	TypeI PieceType = iota // 0: I-ミノ
	TypeO                  // 1: O-ミノ
	TypeS                  // 2: S-ミノ
	TypeZ                  // 3: Z-ミノ
	TypeJ                  // 4: J-ミノ
	TypeL                  // 5: L-ミノ
	TypeT                  // 6: T-ミノ
)

// PieceTypeCount はテトリミノの種類数（バッグ1つ分の大きさ）です。
const PieceTypeCount = 7

// AllPieceTypes は7-bagの1バッグ分を並べたものです。シャッフル前の並び順はこの順になります。
var AllPieceTypes = [PieceTypeCount]PieceType{TypeI, TypeO, TypeS, TypeZ, TypeJ, TypeL, TypeT}

// String はPieceTypeを1文字の文字列表現に変換します。
func (t PieceType) String() string {
	switch t {
	case TypeI:
		return "I"
	case TypeO:
		return "O"
	case TypeS:
		return "S"
	case TypeZ:
		return "Z"
	case TypeJ:
		return "J"
	case TypeL:
		return "L"
	case TypeT:
		return "T"
	default:
		return "?"
	}
}

// MarshalText はJSONなどで"T"のような文字で出力するために使われます。
func (t PieceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// StringToPieceType は文字列のテトリミノタイプ（"I", "O", "T"など）をPieceTypeに変換します。
func StringToPieceType(s string) (PieceType, bool) {
	for _, t := range AllPieceTypes {
		if t.String() == s {
			return t, true
		}
	}
	return TypeI, false
}

// Valid はtが7種類のいずれかであればtrueを返します。
func (t PieceType) Valid() bool {
	return t >= TypeI && t <= TypeT
}

// Facing はテトリミノの向き（回転状態）です。
type Facing int

const (
	North Facing = iota
	East
	South
	West
)

// Next は時計回りに90度回転した向きを返します。
func (f Facing) Next() Facing {
	return (f + 1) % 4
}

// Rotate は回転の種類に応じた次の向きを返します。
// 反時計回りは時計回り3回分として扱います。
func (f Facing) Rotate(r RotationType) Facing {
	switch r {
	case Clockwise:
		return f.Next()
	case Rotate180:
		return f.Next().Next()
	default:
		return f.Next().Next().Next()
	}
}

func (f Facing) String() string {
	switch f {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	default:
		return "west"
	}
}

func (f Facing) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// RotationType は回転の種類です。
type RotationType int

const (
	Clockwise        RotationType = iota // 時計回り
	Rotate180                            // 180度
	CounterClockwise                     // 反時計回り
)

// Mask は4x4の占有マスクです。Mask[y][x] == 1 のマスにブロックがあります。
type Mask [4][4]uint8

// Occupied は(x, y)にブロックがあるかを返します。
func (m Mask) Occupied(x, y int) bool {
	return m[y][x] == 1
}

// Blocks は占有されているマスの相対座標 {x, y} の一覧を返します。
func (m Mask) Blocks() [][2]int {
	blocks := make([][2]int, 0, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if m.Occupied(x, y) {
				blocks = append(blocks, [2]int{x, y})
			}
		}
	}
	return blocks
}

// rotations は各PieceTypeの各向きにおける4x4マスクです。
// [PieceType][Facing]
var rotations = [PieceTypeCount][4]Mask{
	TypeT: {
		North: {{0, 1, 0, 0}, {1, 1, 1, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
		East:  {{0, 1, 0, 0}, {0, 1, 1, 0}, {0, 1, 0, 0}, {0, 0, 0, 0}},
		South: {{0, 0, 0, 0}, {1, 1, 1, 0}, {0, 1, 0, 0}, {0, 0, 0, 0}},
		West:  {{0, 1, 0, 0}, {1, 1, 0, 0}, {0, 1, 0, 0}, {0, 0, 0, 0}},
	},
	TypeS: {
		North: {{0, 1, 1, 0}, {1, 1, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
		East:  {{0, 1, 0, 0}, {0, 1, 1, 0}, {0, 0, 1, 0}, {0, 0, 0, 0}},
		South: {{0, 0, 0, 0}, {0, 1, 1, 0}, {1, 1, 0, 0}, {0, 0, 0, 0}},
		West:  {{1, 0, 0, 0}, {1, 1, 0, 0}, {0, 1, 0, 0}, {0, 0, 0, 0}},
	},
	TypeZ: {
		North: {{1, 1, 0, 0}, {0, 1, 1, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
		East:  {{0, 0, 1, 0}, {0, 1, 1, 0}, {0, 1, 0, 0}, {0, 0, 0, 0}},
		South: {{0, 0, 0, 0}, {1, 1, 0, 0}, {0, 1, 1, 0}, {0, 0, 0, 0}},
		West:  {{0, 1, 0, 0}, {1, 1, 0, 0}, {1, 0, 0, 0}, {0, 0, 0, 0}},
	},
	TypeL: {
		North: {{0, 0, 1, 0}, {1, 1, 1, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
		East:  {{0, 1, 0, 0}, {0, 1, 0, 0}, {0, 1, 1, 0}, {0, 0, 0, 0}},
		South: {{0, 0, 0, 0}, {1, 1, 1, 0}, {1, 0, 0, 0}, {0, 0, 0, 0}},
		West:  {{1, 1, 0, 0}, {0, 1, 0, 0}, {0, 1, 0, 0}, {0, 0, 0, 0}},
	},
	TypeJ: {
		North: {{1, 0, 0, 0}, {1, 1, 1, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
		East:  {{0, 1, 1, 0}, {0, 1, 0, 0}, {0, 1, 0, 0}, {0, 0, 0, 0}},
		South: {{0, 0, 0, 0}, {1, 1, 1, 0}, {0, 0, 1, 0}, {0, 0, 0, 0}},
		West:  {{0, 1, 0, 0}, {0, 1, 0, 0}, {1, 1, 0, 0}, {0, 0, 0, 0}},
	},
	TypeO: {
		North: {{0, 0, 0, 0}, {0, 1, 1, 0}, {0, 1, 1, 0}, {0, 0, 0, 0}},
		East:  {{0, 0, 0, 0}, {0, 1, 1, 0}, {0, 1, 1, 0}, {0, 0, 0, 0}},
		South: {{0, 0, 0, 0}, {0, 1, 1, 0}, {0, 1, 1, 0}, {0, 0, 0, 0}},
		West:  {{0, 0, 0, 0}, {0, 1, 1, 0}, {0, 1, 1, 0}, {0, 0, 0, 0}},
	},
	TypeI: {
		North: {{0, 0, 0, 0}, {1, 1, 1, 1}, {0, 0, 0, 0}, {0, 0, 0, 0}},
		East:  {{0, 0, 1, 0}, {0, 0, 1, 0}, {0, 0, 1, 0}, {0, 0, 1, 0}},
		South: {{0, 0, 0, 0}, {0, 0, 0, 0}, {1, 1, 1, 1}, {0, 0, 0, 0}},
		West:  {{0, 1, 0, 0}, {0, 1, 0, 0}, {0, 1, 0, 0}, {0, 1, 0, 0}},
	},
}

// RotationMask は指定されたPieceTypeと向きの4x4マスクを返します。
func RotationMask(t PieceType, f Facing) Mask {
	return rotations[t][f]
}

// Preview はホールド欄やネクスト欄に描画するための、北向きの4x4セル配列を返します。
func (t PieceType) Preview() [4][4]Cell {
	var preview [4][4]Cell
	mask := RotationMask(t, North)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if mask.Occupied(x, y) {
				preview[y][x] = MinoBlockCell(t)
			}
		}
	}
	return preview
}
