package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq" // PostgreSQLドライバー
)

const createResultsTable = `
CREATE TABLE IF NOT EXISTS results (
	id             BIGSERIAL PRIMARY KEY,
	game_id        TEXT        NOT NULL,
	user_id        TEXT        NOT NULL,
	lines_cleared  INTEGER     NOT NULL DEFAULT 0,
	pieces_locked  INTEGER     NOT NULL DEFAULT 0,
	spins          INTEGER     NOT NULL DEFAULT 0,
	perfect_clears INTEGER     NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// DatabaseService はPostgreSQLへの接続を保持します。
type DatabaseService struct {
	DB *sql.DB
}

// NewDatabaseService はデータベースに接続し、Pingで疎通を確認します。
func NewDatabaseService(databaseURL string) (*DatabaseService, error) {
	log.Printf("[DatabaseService] Connecting: %s...", databaseURL[:min(len(databaseURL), 20)]) // 認証情報を出さないよう冒頭だけ
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("データベースへの接続オブジェクト作成に失敗しました: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("データベースのPingに失敗しました。接続情報やネットワークを確認してください: %w", err)
	}

	log.Println("[DatabaseService] Connected")
	return &DatabaseService{DB: db}, nil
}

// EnsureSchema はresultsテーブルがなければ作成します。
func (s *DatabaseService) EnsureSchema() error {
	if _, err := s.DB.Exec(createResultsTable); err != nil {
		return fmt.Errorf("resultsテーブルの作成に失敗しました: %w", err)
	}
	return nil
}

// Version はサーバーのバージョン文字列を返します。接続確認用です。
func (s *DatabaseService) Version() (string, error) {
	var version string
	if err := s.DB.QueryRow("SELECT version()").Scan(&version); err != nil {
		return "", fmt.Errorf("SELECT version() の実行に失敗しました: %w", err)
	}
	return version, nil
}

// Close は接続を閉じます。
func (s *DatabaseService) Close() error {
	return s.DB.Close()
}
