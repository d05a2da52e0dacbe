package models

import (
	"time"
)

// Result はresultsテーブルのレコードに対応する構造体です。
// トップアウトしたゲーム1回につき1行保存されます。
type Result struct {
	ID            int64     `json:"id"`
	GameID        string    `json:"game_id"`
	UserID        string    `json:"user_id"` // UUID
	LinesCleared  int       `json:"lines_cleared"`
	PiecesLocked  int       `json:"pieces_locked"`
	Spins         int       `json:"spins"`
	PerfectClears int       `json:"perfect_clears"`
	CreatedAt     time.Time `json:"created_at"`
}

// ResultResponse はランキングAPIのレスポンス用の構造体です。
type ResultResponse struct {
	Result
	Rank int `json:"rank"` // ランキング順位
}
