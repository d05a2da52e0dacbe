// dbcheck はDATABASE_URLへの接続を確認し、resultsテーブルを用意します。
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/database"
)

func main() {
	// .envファイルを読み込む (開発環境の場合)
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: Error loading .env file: %v", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("エラー: DATABASE_URL 環境変数が設定されていません。")
	}

	dbService, err := database.NewDatabaseService(databaseURL)
	if err != nil {
		log.Fatalf("エラー: %v", err)
	}
	defer dbService.Close()
	fmt.Println("成功: データベースに正常に接続し、Pingが成功しました！")

	if version, err := dbService.Version(); err != nil {
		log.Printf("警告: %v", err)
	} else {
		fmt.Printf("データベースバージョン: %s\n", version)
	}

	if err := dbService.EnsureSchema(); err != nil {
		log.Fatalf("エラー: %v", err)
	}
	fmt.Println("resultsテーブルを確認しました。")
}
