package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/api/middleware"
	"github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/services/tetris"
)

// authTimeout はWebSocket接続後、認証メッセージを待つ時間です。
const authTimeout = 10 * time.Second

// upgrader はHTTP接続をWebSocketプロトコルにアップグレードするための設定です。
// オリジンの検証はCORSと同じ許可リストで行います。
func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed["*"] || allowed[origin]
		},
	}
}

// AuthSettings はWebSocketの認証メッセージの検証に使う設定です。
type AuthSettings struct {
	JWTSecret  string
	BypassAuth bool
}

// GameHandler はゲーム関連のHTTPリクエスト（ゲーム作成、状態取得、WebSocket接続）を処理します。
type GameHandler struct {
	sessionManager *tetris.SessionManager
	auth           AuthSettings
	upgrader       websocket.Upgrader
}

// NewGameHandler は新しい GameHandler インスタンスを作成します。
//
// Parameters:
//
//	sm             : セッションマネージャー
//	auth           : WebSocket認証の設定
//	allowedOrigins : WebSocket接続を許可するオリジン
func NewGameHandler(sm *tetris.SessionManager, auth AuthSettings, allowedOrigins []string) *GameHandler {
	return &GameHandler{
		sessionManager: sm,
		auth:           auth,
		upgrader:       newUpgrader(allowedOrigins),
	}
}

// WriteErrorResponse はエラーレスポンスをJSON形式で書き込みます。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	WriteJSONResponse(w, statusCode, map[string]string{"error": message})
}

// WriteJSONResponse はJSONレスポンスを書き込みます。
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[Handler] Failed to encode response: %v", err)
	}
}

// CreateGame は新しいゲームを作成します。ボディの seed は省略できます。
// POST /api/protected/games
func (h *GameHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		WriteErrorResponse(w, http.StatusUnauthorized, "ユーザーIDがコンテキストに見つかりません")
		return
	}

	var req struct {
		Seed *int64 `json:"seed"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "リクエストボディのパースに失敗しました")
			return
		}
	}

	gameID, err := h.sessionManager.CreateSession(userID, req.Seed)
	if err != nil {
		log.Printf("[GameHandler] Failed to create game for user %s: %v", userID, err)
		WriteErrorResponse(w, http.StatusInternalServerError, "ゲームの作成に失敗しました")
		return
	}

	WriteJSONResponse(w, http.StatusCreated, map[string]string{"game_id": gameID})
}

// GetGame はゲームの現在の状態を返します。
// GET /api/games/{gameID}
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameID"]
	session, ok := h.sessionManager.GetGameSession(gameID)
	if !ok {
		WriteErrorResponse(w, http.StatusNotFound, "指定されたゲームは見つかりませんでした")
		return
	}
	WriteJSONResponse(w, http.StatusOK, session.Snapshot())
}

type authMessage struct {
	Type   string `json:"type"`
	Token  string `json:"token"`
	UserID string `json:"user_id,omitempty"` // BYPASS_AUTH のときだけ使う
}

// authenticate は認証メッセージを検証してユーザーIDを返します。
func (h *GameHandler) authenticate(msg authMessage) (string, error) {
	if msg.Type != "auth" {
		return "", fmt.Errorf("expected auth message, got %q", msg.Type)
	}
	if h.auth.BypassAuth && msg.Token == middleware.BypassToken {
		return middleware.BypassUserID(msg.UserID), nil
	}
	return middleware.ValidateToken(msg.Token, h.auth.JWTSecret)
}

// HandleWebSocketConnection はHTTP接続をWebSocketにアップグレードし、
// 最初のメッセージで認証してからセッションマネージャーに接続を引き渡します。
// GET /api/games/{gameID}/ws
func (h *GameHandler) HandleWebSocketConnection(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameID"]
	session, ok := h.sessionManager.GetGameSession(gameID)
	if !ok {
		WriteErrorResponse(w, http.StatusNotFound, "指定されたゲームは見つかりませんでした")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[GameHandler] Failed to upgrade to websocket for game %s: %v", gameID, err)
		return
	}

	conn.SetReadDeadline(time.Now().Add(authTimeout))
	var msg authMessage
	if err := conn.ReadJSON(&msg); err != nil {
		log.Printf("[GameHandler] Failed to read auth message: %v", err)
		conn.Close()
		return
	}

	userID, err := h.authenticate(msg)
	if err != nil {
		log.Printf("[GameHandler] WebSocket auth failed for game %s: %v", gameID, err)
		conn.WriteJSON(map[string]string{"error": "Invalid token"})
		conn.Close()
		return
	}
	if userID != session.UserID {
		log.Printf("[GameHandler] User %s tried to join game %s owned by %s", userID, gameID, session.UserID)
		conn.WriteJSON(map[string]string{"error": "This game belongs to another user"})
		conn.Close()
		return
	}
	conn.SetReadDeadline(time.Time{})

	// 登録後はwritePumpだけが書き込むので、ここで先に返す
	conn.WriteJSON(map[string]string{"type": "auth_success", "message": "Authentication successful"})

	if err := h.sessionManager.RegisterClient(gameID, userID, conn); err != nil {
		log.Printf("[GameHandler] Failed to register client %s to game %s: %v", userID, gameID, err)
		conn.Close()
	}
}
