package tetris

// Offset は壁蹴り（キック）の候補オフセットです。
// Yは上方向が正です（フィールドの行番号とは逆向き）。
type Offset struct {
	X int
	Y int
}

// kickTable は [向き][回転の種類] ごとの候補オフセット列です。先頭から順に試します。
type kickTable [4][3][]Offset

// kickOffsets はI-ミノ以外で共通のキックテーブルです。
// 180度回転の先頭には必ず (0, 0) を置きます。
var kickOffsets = kickTable{
	North: {
		Clockwise:        {{0, 0}, {-1, 0}, {-1, 1}, {0, -2}, {-1, -2}},
		CounterClockwise: {{0, 0}, {1, 0}, {1, 1}, {0, -2}, {1, -2}},
		Rotate180:        {{0, 0}, {1, 0}, {2, 0}, {1, 1}, {2, 1}, {-1, 0}, {-2, 0}, {-1, 1}, {-2, 1}, {0, -1}, {3, 0}, {-3, 0}},
	},
	East: {
		Clockwise:        {{0, 0}, {1, 0}, {1, -1}, {0, 2}, {1, 2}},
		CounterClockwise: {{0, 0}, {1, 0}, {1, -1}, {0, 2}, {1, 2}},
		Rotate180:        {{0, 0}, {0, 1}, {0, 2}, {-1, 1}, {-1, 2}, {0, -1}, {0, -2}, {-1, -1}, {-1, -2}, {1, 0}, {0, 3}, {0, -3}},
	},
	South: {
		Clockwise:        {{0, 0}, {1, 0}, {1, 1}, {0, -2}, {1, -2}},
		CounterClockwise: {{0, 0}, {-1, 0}, {-1, 1}, {0, -2}, {-1, -2}},
		Rotate180:        {{0, 0}, {-1, 0}, {-2, 0}, {-1, -1}, {-2, -1}, {1, 0}, {2, 0}, {1, -1}, {2, -1}, {0, 1}, {-3, 0}, {3, 0}},
	},
	West: {
		Clockwise:        {{0, 0}, {-1, 0}, {-1, -1}, {0, 2}, {-1, 2}},
		CounterClockwise: {{0, 0}, {-1, 0}, {-1, -1}, {0, 2}, {-1, 2}},
		Rotate180:        {{0, 0}, {0, 1}, {0, 2}, {1, 1}, {1, 2}, {0, -1}, {0, -2}, {1, -1}, {1, -2}, {-1, 0}, {0, 3}, {0, -3}},
	},
}

// kickOffsetsI はI-ミノ専用の非対称なキックテーブルです。
var kickOffsetsI = kickTable{
	North: {
		Clockwise:        {{0, 0}, {-2, 0}, {1, 0}, {-2, -1}, {1, 2}},
		CounterClockwise: {{0, 0}, {-1, 0}, {2, 0}, {-1, 2}, {2, -1}},
		Rotate180:        {{0, 0}, {-1, 0}, {-2, 0}, {1, 0}, {2, 0}, {0, 1}},
	},
	East: {
		Clockwise:        {{0, 0}, {-1, 0}, {2, 0}, {-1, 2}, {2, -1}},
		CounterClockwise: {{0, 0}, {2, 0}, {-1, 0}, {2, 1}, {-1, -2}},
		Rotate180:        {{0, 0}, {0, 1}, {0, 2}, {0, -1}, {0, -2}, {-1, 0}},
	},
	South: {
		Clockwise:        {{0, 0}, {2, 0}, {-1, 0}, {2, 1}, {-1, -2}},
		CounterClockwise: {{0, 0}, {1, 0}, {-2, 0}, {1, -2}, {-2, 1}},
		Rotate180:        {{0, 0}, {1, 0}, {2, 0}, {-1, 0}, {-2, 0}, {0, -1}},
	},
	West: {
		Clockwise:        {{0, 0}, {1, 0}, {-2, 0}, {1, -2}, {-2, 1}},
		CounterClockwise: {{0, 0}, {-2, 0}, {1, 0}, {-2, -1}, {1, 2}},
		Rotate180:        {{0, 0}, {0, 1}, {0, 2}, {0, -1}, {0, -2}, {1, 0}},
	},
}

// identityKick はO-ミノ用です。回転はしないが、移動リセットとスピン判定の処理は通す。
var identityKick = []Offset{{0, 0}}

// KickOffsets は回転時に試すオフセット候補を優先順に返します。
// 戻り値のスライスは共有データなので変更しないでください。
func KickOffsets(t PieceType, f Facing, r RotationType) []Offset {
	switch t {
	case TypeO:
		return identityKick
	case TypeI:
		return kickOffsetsI[f][r]
	default:
		return kickOffsets[f][r]
	}
}

// tSpinCorners はT-スピンの通常/ミニ判定に使う2つのコーナーです。
// Tの中心 (x+1, y+1) からの相対座標で、向きごとに固定です。
// 北向きの(0, 0)は中心そのものなので、北向きのT-スピンは常にミニになります。
var tSpinCorners = [4][2][2]int{
	North: {{0, 0}, {2, 0}},
	East:  {{2, 0}, {2, 2}},
	South: {{0, 2}, {2, 2}},
	West:  {{2, 0}, {2, 2}},
}

// TSpinCorners は向きfにおけるT-スピン判定用の2コーナーを返します。
func TSpinCorners(f Facing) [2][2]int {
	return tSpinCorners[f]
}
