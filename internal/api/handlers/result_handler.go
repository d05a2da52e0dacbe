package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/database"
)

const (
	defaultTopResults = 50
	maxTopResults     = 100
)

// ResultHandler はゲーム結果関連のハンドラーを管理する構造体です。
type ResultHandler struct {
	resultRepo database.ResultRepository
}

// NewResultHandler は新しいResultHandlerインスタンスを作成します。
func NewResultHandler(resultRepo database.ResultRepository) *ResultHandler {
	return &ResultHandler{
		resultRepo: resultRepo,
	}
}

// GetTopResults は上位ランキングを取得するハンドラーです。
// GET /api/results/top?limit=50
func (h *ResultHandler) GetTopResults(w http.ResponseWriter, r *http.Request) {
	limit := defaultTopResults
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 || parsed > maxTopResults {
			WriteErrorResponse(w, http.StatusBadRequest, "limitは1から100の整数で指定してください")
			return
		}
		limit = parsed
	}

	results, err := h.resultRepo.GetTopResults(limit)
	if err != nil {
		log.Printf("[ResultHandler] ゲーム結果取得エラー: %v", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "ゲーム結果取得に失敗しました")
		return
	}

	WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"results": results,
	})
}

// GetUserResult は指定したユーザーの自己ベストと順位を取得するハンドラーです。
// GET /api/results/user/{userID}
func (h *ResultHandler) GetUserResult(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	if userID == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "user_idが指定されていません")
		return
	}

	userResult, err := h.resultRepo.GetUserRanking(userID)
	if errors.Is(err, database.ErrResultNotFound) {
		WriteErrorResponse(w, http.StatusNotFound, "ユーザーの結果が見つかりません")
		return
	}
	if err != nil {
		log.Printf("[ResultHandler] ユーザー結果取得エラー: %v", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "ユーザー結果取得に失敗しました")
		return
	}

	WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"result":  userResult,
	})
}
