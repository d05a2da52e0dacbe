package tetris

import "strings"

const (
	DefaultBoardWidth  = 10 // フィールドの幅
	DefaultBoardHeight = 42 // フィールドの高さ（出現位置より上の見えない領域を含む）
)

// AttackedLine は相手から送られてきた、まだフィールドに反映されていないお邪魔ラインです。
type AttackedLine struct {
	HoleIndexes  []int `json:"hole_indexes,omitempty"` // 穴になる列。nilなら穴なし
	CanBeCleared bool  `json:"can_be_cleared"`         // ライン消去の対象にできるか
}

// Field はテトリスのフィールドです。Rows[y][x] でアクセスし、y=0 が最上段です。
// 幅と高さはセッション中に変わりません。
type Field struct {
	width  int
	height int
	rows   [][]Cell
}

// NewField は指定サイズの空のフィールドを返します。
func NewField(width, height int) *Field {
	rows := make([][]Cell, height)
	for y := range rows {
		rows[y] = make([]Cell, width)
	}
	return &Field{width: width, height: height, rows: rows}
}

// FieldFromRows は行データからフィールドを作ります。行の長さは全て同じでなければなりません。
func FieldFromRows(rows [][]Cell) *Field {
	f := &Field{height: len(rows)}
	if len(rows) > 0 {
		f.width = len(rows[0])
	}
	f.rows = make([][]Cell, len(rows))
	for y, row := range rows {
		f.rows[y] = append([]Cell(nil), row...)
	}
	return f
}

func (f *Field) Width() int { return f.width }
func (f *Field) Height() int { return f.height }

// InBounds は(x, y)がフィールド内ならtrueを返します。
func (f *Field) InBounds(x, y int) bool {
	return x >= 0 && x < f.width && y >= 0 && y < f.height
}

// Cell は(x, y)のマスを返します。範囲外なら空のマスとfalseを返します。
func (f *Field) Cell(x, y int) (Cell, bool) {
	if !f.InBounds(x, y) {
		return Cell{}, false
	}
	return f.rows[y][x], true
}

// Set は(x, y)にcを書き込みます。範囲外は無視します。
func (f *Field) Set(x, y int, c Cell) {
	if f.InBounds(x, y) {
		f.rows[y][x] = c
	}
}

// IsFree はミノを置けるマスならtrueを返します。範囲外は置けません。
func (f *Field) IsFree(x, y int) bool {
	c, ok := f.Cell(x, y)
	return ok && !c.HasCollision()
}

// HasCollisionAt はT-スピンのコーナー判定用です。
// 左端より左・最上段より上は当たり判定なし、右端より右・最下段より下は当たり判定ありとみなします。
func (f *Field) HasCollisionAt(x, y int) bool {
	if x < 0 || y < 0 {
		return false
	}
	c, ok := f.Cell(x, y)
	return !ok || c.HasCollision()
}

// Rows はフィールドの行データのコピーを返します。
func (f *Field) Rows() [][]Cell {
	return f.Clone().rows
}

// Clone はフィールドのディープコピーを返します。
func (f *Field) Clone() *Field {
	return FieldFromRows(f.rows)
}

// IsRowClearable はy行目の全マスが消去対象ならtrueを返します。
// 消せないお邪魔ブロックが1つでもあれば、埋まっていても消えません。
func (f *Field) IsRowClearable(y int) bool {
	for _, c := range f.rows[y] {
		if !c.CanBeCleared() {
			return false
		}
	}
	return true
}

// ClearRow はindex行目を消し、それより上の行を1段下げます。最上段には空の行が入ります。
func (f *Field) ClearRow(index int) {
	removed := f.rows[index]
	copy(f.rows[1:index+1], f.rows[0:index])
	for x := range removed {
		removed[x] = Cell{}
	}
	f.rows[0] = removed
}

// InjectGarbage はフィールド全体を1段上げ、最下段にお邪魔ラインを挿入します。
// 最上段は捨てられるので、呼び出し側でゲームオーバー判定を先に済ませておく必要があります。
func (f *Field) InjectGarbage(line AttackedLine) {
	top := f.rows[0]
	copy(f.rows[0:f.height-1], f.rows[1:])
	for x := range top {
		top[x] = ObstructionCell(line.CanBeCleared)
	}
	for _, hole := range line.HoleIndexes {
		if hole >= 0 && hole < f.width {
			top[hole] = Cell{}
		}
	}
	f.rows[f.height-1] = top
}

// IsEmpty は当たり判定を持つマスが1つもなければtrueを返します（パーフェクトクリア判定）。
func (f *Field) IsEmpty() bool {
	return f.MinimumY() == f.height
}

// MinimumY は当たり判定を持つマスがある最も上の行番号を返します。空なら高さを返します。
func (f *Field) MinimumY() int {
	for y, row := range f.rows {
		for _, c := range row {
			if c.HasCollision() {
				return y
			}
		}
	}
	return f.height
}

// String はフィールドを1行1文字列のテキストにします（デバッグ・デモ用）。
func (f *Field) String() string {
	var sb strings.Builder
	for _, line := range f.Lines() {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Lines は各行をCell.Runeで文字列化したものを返します。
func (f *Field) Lines() []string {
	lines := make([]string, f.height)
	for y, row := range f.rows {
		buf := make([]rune, len(row))
		for x, c := range row {
			buf[x] = c.Rune()
		}
		lines[y] = string(buf)
	}
	return lines
}
