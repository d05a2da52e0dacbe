package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/models"
)

// ErrResultNotFound は指定したユーザーの結果が1件もないことを表します。
var ErrResultNotFound = errors.New("result not found")

// ランキングの並び順。消したライン数が多いほど上位で、同じならスピン数、先に達成した方が上位。
const rankingOrder = "lines_cleared DESC, spins DESC, created_at ASC"

// ResultRepository はゲーム結果関連のデータベース操作を定義するインターフェースです。
type ResultRepository interface {
	// CreateResult は新しいゲーム結果レコードを作成します
	CreateResult(tx *sql.Tx, result models.Result) (*models.Result, error)

	// GetTopResults は上位N件の結果を取得します（ランキング用）
	GetTopResults(limit int) ([]models.ResultResponse, error)

	// GetUserRanking は指定したユーザーの自己ベストとその順位を取得します
	GetUserRanking(userID string) (*models.ResultResponse, error)
}

// resultRepositoryImpl はResultRepositoryインターフェースの実装です。
type resultRepositoryImpl struct {
	db *sql.DB
}

// NewResultRepository はResultRepositoryの新しいインスタンスを作成します。
func NewResultRepository(db *sql.DB) ResultRepository {
	return &resultRepositoryImpl{db: db}
}

// CreateResult は新しいゲーム結果レコードを作成します。CreatedAtが空なら現在時刻を使います。
func (r *resultRepositoryImpl) CreateResult(tx *sql.Tx, result models.Result) (*models.Result, error) {
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now()
	}

	const query = `INSERT INTO results (game_id, user_id, lines_cleared, pieces_locked, spins, perfect_clears, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	args := []any{result.GameID, result.UserID, result.LinesCleared, result.PiecesLocked, result.Spins, result.PerfectClears, result.CreatedAt}

	// トランザクションの有無を確認して適切にクエリを実行
	var row *sql.Row
	if tx != nil {
		row = tx.QueryRow(query, args...)
	} else {
		row = r.db.QueryRow(query, args...)
	}

	if err := row.Scan(&result.ID); err != nil {
		return nil, fmt.Errorf("ゲーム結果レコードの作成に失敗しました: %w", err)
	}
	return &result, nil
}

// GetTopResults は上位N件の結果を取得します。
func (r *resultRepositoryImpl) GetTopResults(limit int) ([]models.ResultResponse, error) {
	query := `
		SELECT
			id, game_id, user_id, lines_cleared, pieces_locked, spins, perfect_clears, created_at,
			ROW_NUMBER() OVER (ORDER BY ` + rankingOrder + `) AS rank
		FROM results
		ORDER BY ` + rankingOrder + `
		LIMIT $1
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("ゲーム結果取得に失敗しました: %w", err)
	}
	defer rows.Close()

	results := []models.ResultResponse{}
	for rows.Next() {
		var res models.ResultResponse
		err := rows.Scan(&res.ID, &res.GameID, &res.UserID, &res.LinesCleared, &res.PiecesLocked,
			&res.Spins, &res.PerfectClears, &res.CreatedAt, &res.Rank)
		if err != nil {
			return nil, fmt.Errorf("ゲーム結果データのスキャンに失敗しました: %w", err)
		}
		results = append(results, res)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ゲーム結果取得中にエラーが発生しました: %w", err)
	}
	return results, nil
}

// GetUserRanking は指定したユーザーの自己ベストと、その結果の全体での順位を取得します。
// 結果が1件もなければErrResultNotFoundを返します。
func (r *resultRepositoryImpl) GetUserRanking(userID string) (*models.ResultResponse, error) {
	query := `
		SELECT id, game_id, user_id, lines_cleared, pieces_locked, spins, perfect_clears, created_at
		FROM results
		WHERE user_id = $1
		ORDER BY ` + rankingOrder + `
		LIMIT 1
	`

	var best models.ResultResponse
	err := r.db.QueryRow(query, userID).Scan(&best.ID, &best.GameID, &best.UserID, &best.LinesCleared,
		&best.PiecesLocked, &best.Spins, &best.PerfectClears, &best.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの自己ベスト取得に失敗しました: %w", err)
	}

	// 自己ベストより上位の結果の数から順位を計算
	rankQuery := `
		SELECT COUNT(*) + 1
		FROM results
		WHERE lines_cleared > $1
			OR (lines_cleared = $1 AND spins > $2)
			OR (lines_cleared = $1 AND spins = $2 AND created_at < $3)
	`
	if err := r.db.QueryRow(rankQuery, best.LinesCleared, best.Spins, best.CreatedAt).Scan(&best.Rank); err != nil {
		return nil, fmt.Errorf("ユーザーランキング順位の計算に失敗しました: %w", err)
	}
	return &best, nil
}
