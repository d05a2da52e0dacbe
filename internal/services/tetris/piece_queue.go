package tetris

import (
	"math/rand"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/models/tetris"
)

// PieceQueue は7-bagシステムによるネクストの供給と、1枠のホールドを管理します。
// 乱数生成器は呼び出し側から渡されたシードで初期化されるため、同じシードなら同じ順番になります。
type PieceQueue struct {
	pending       []tetris.PieceType
	hold          tetris.PieceType
	hasHold       bool
	current       tetris.PieceType
	capacity      int // 0なら無制限
	randGenerator *rand.Rand
}

// NewPieceQueue は新しいPieceQueueを作り、最初のピースを引いた状態で返します。
//
// Parameters:
//
//	seed     : 乱数生成器のシード
//	capacity : ネクストを先読みできる最大数。0なら無制限（7未満は呼び出し側で弾くこと）
func NewPieceQueue(seed int64, capacity int) *PieceQueue {
	q := &PieceQueue{
		capacity:      capacity,
		randGenerator: rand.New(rand.NewSource(seed)),
	}
	q.Next()
	return q
}

// Next はキューの先頭を現在のピースにします。足りなければ先にバッグを補充します。
func (q *PieceQueue) Next() {
	q.generateIfNeeded(1)
	q.current = q.pending[0]
	q.pending = q.pending[1:]
}

// Peek は次に出てくるピースをn個まで、消費せずに返します。
// 容量制限がある場合、容量を超える分は返しません。
func (q *PieceQueue) Peek(n int) []tetris.PieceType {
	if n <= 0 {
		return []tetris.PieceType{}
	}
	q.generateIfNeeded(n)
	n = min(n, len(q.pending))
	return append([]tetris.PieceType(nil), q.pending[:n]...)
}

// Hold は現在のピースをホールドします。
// ホールドが空なら現在のピースをしまって次のピースを引き、空でなければ入れ替えます。
func (q *PieceQueue) Hold() {
	if q.hasHold {
		q.current, q.hold = q.hold, q.current
		return
	}
	q.hold = q.current
	q.hasHold = true
	q.Next()
}

// Current は現在のピースを返します。
func (q *PieceQueue) Current() tetris.PieceType {
	return q.current
}

// Held はホールド中のピースを返します。ホールドが空ならfalseを返します。
func (q *PieceQueue) Held() (tetris.PieceType, bool) {
	return q.hold, q.hasHold
}

// generateIfNeeded はキューの長さがrequired未満の間、シャッフルしたバッグを丸ごと追加します。
// バッグ単位でしか追加しないので、7個ずつ区切るとどの区間にも全種類が1回ずつ現れます。
func (q *PieceQueue) generateIfNeeded(required int) {
	for len(q.pending) < required {
		if q.capacity > 0 && len(q.pending)+tetris.PieceTypeCount > q.capacity {
			return
		}
		bag := tetris.AllPieceTypes
		q.randGenerator.Shuffle(len(bag), func(i, j int) {
			bag[i], bag[j] = bag[j], bag[i]
		})
		q.pending = append(q.pending, bag[:]...)
	}
}
