package tetris

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/database"
	"github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/models"
	"github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/models/tetris"
)

var (
	// ErrSessionNotFound は指定したIDのセッションがないことを表します。
	ErrSessionNotFound = errors.New("game session not found")
	// ErrNotSessionOwner はセッションを作ったユーザー以外が接続しようとしたことを表します。
	ErrNotSessionOwner = errors.New("user does not own this game session")
	// ErrSessionManagerClosed はShutdown後に接続を登録しようとしたことを表します。
	ErrSessionManagerClosed = errors.New("session manager is shut down")
)

// SessionSettings はSessionManagerが作るセッションの設定です。
type SessionSettings struct {
	Rules           Config
	Width           int
	Height          int
	GravityInterval time.Duration // レベル1の自動落下間隔
	LockDelay       time.Duration // 接地してから固定するまでの猶予
	TickInterval    time.Duration // 自動落下を判定する間隔
}

// DefaultSessionSettings は標準的な設定を返します。
func DefaultSessionSettings() SessionSettings {
	return SessionSettings{
		Rules:           DefaultConfig(),
		Width:           tetris.DefaultBoardWidth,
		Height:          tetris.DefaultBoardHeight,
		GravityInterval: InitialFallInterval,
		LockDelay:       DefaultLockDelay,
		TickInterval:    50 * time.Millisecond,
	}
}

// Client はWebSocket接続を持つ単一のクライアントを表します。
type Client struct {
	UserID string          // このクライアントに紐づくユーザーのID
	GameID string          // 操作しているゲームのID
	Conn   *websocket.Conn // クライアントとの実際のWebSocketコネクション
	Send   chan []byte     // クライアントへ送るメッセージのバッファ付きチャネル
	closed bool
	mu     sync.Mutex
}

// SafeSend は閉じられていなければチャネルにメッセージを送ります。バッファが満杯なら捨てます。
func (c *Client) SafeSend(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.Send <- message:
		return true
	default:
		return false
	}
}

// SafeClose はSendチャネルを一度だけ閉じます。
func (c *Client) SafeClose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.Send)
		c.closed = true
	}
}

// SessionManager はゲームセッションとWebSocketクライアント接続の全体を管理します。
// アプリケーション内で1つだけ作られることを想定しています。
type SessionManager struct {
	sessions    map[string]*GameSession // gameID -> GameSession
	clients     map[string]*Client      // gameID -> Client (1ゲームにつき1接続)
	register    chan *Client
	unregister  chan *Client
	broadcast   chan string // 状態を送るゲームのID
	inputEvents chan PlayerInputEvent
	quit        chan struct{}
	mu          sync.RWMutex
	resultRepo  database.ResultRepository // nilなら結果は保存しない
	settings    SessionSettings
	now         func() time.Time
}

// NewSessionManager は新しいSessionManagerを作り、メインイベントループをバックグラウンドで開始します。
//
// Parameters:
//
//	settings   : セッションの設定
//	resultRepo : 結果の保存先。nilなら保存しない
//
// Returns:
//
//	*SessionManager: 初期化されたセッションマネージャー
func NewSessionManager(settings SessionSettings, resultRepo database.ResultRepository) *SessionManager {
	sm := newSessionManager(settings, resultRepo)
	go sm.Run()
	return sm
}

func newSessionManager(settings SessionSettings, resultRepo database.ResultRepository) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*GameSession),
		clients:     make(map[string]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan string, 512),
		inputEvents: make(chan PlayerInputEvent, 512),
		quit:        make(chan struct{}),
		resultRepo:  resultRepo,
		settings:    settings,
		now:         time.Now,
	}
}

// Run はSessionManagerのメインイベントループです。
// クライアントの登録/解除、プレイヤー入力、自動落下、ブロードキャストをすべてここで処理します。
func (sm *SessionManager) Run() {
	tick := sm.settings.TickInterval
	if tick <= 0 {
		tick = DefaultSessionSettings().TickInterval
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case client := <-sm.register:
			sm.mu.Lock()
			sm.clients[client.GameID] = client
			session, ok := sm.sessions[client.GameID]
			sm.mu.Unlock()
			log.Printf("[SessionManager] Client registered: %s (Game: %s)", client.UserID, client.GameID)
			if ok && session.Start(sm.now()) {
				log.Printf("[SessionManager] Game %s started for user %s", client.GameID, client.UserID)
			}
			sm.sendGameState(client.GameID)

		case client := <-sm.unregister:
			sm.mu.Lock()
			registered, ok := sm.clients[client.GameID]
			if ok && registered == client {
				client.SafeClose()
				delete(sm.clients, client.GameID)
			}
			session, hasSession := sm.sessions[client.GameID]
			sm.mu.Unlock()
			if !ok || registered != client {
				continue // 既に別の接続に置き換えられている
			}
			log.Printf("[SessionManager] Client unregistered: %s (Game: %s)", client.UserID, client.GameID)
			if hasSession && !session.IsFinished() {
				log.Printf("[SessionManager] Player %s left game %s. Ending session.", client.UserID, client.GameID)
				sm.EndGameSession(client.GameID)
			}

		case event := <-sm.inputEvents:
			if err := sm.HandleInput(event); err != nil && !errors.Is(err, ErrUnspawnable) {
				log.Printf("[SessionManager] Input %q from %s rejected: %v", event.Action, event.UserID, err)
			}

		case <-ticker.C:
			sm.Tick(sm.now())

		case gameID := <-sm.broadcast:
			sm.sendGameState(gameID)

		case <-sm.quit:
			log.Printf("[SessionManager] Shutdown signal received, stopping main loop")
			return
		}
	}
}

// CreateSession は新しいゲームセッションを作成します。
//
// Parameters:
//
//	userID : プレイヤーのユーザーID
//	seed   : ネクスト生成用のシード。nilなら現在時刻から決める
//
// Returns:
//
//	string: 作成されたゲームのID
//	error : セッションを作れなかった場合
func (sm *SessionManager) CreateSession(userID string, seed *int64) (string, error) {
	gameID := uuid.New().String()
	s := sm.now().UnixNano()
	if seed != nil {
		s = *seed
	}

	session, err := NewGameSession(gameID, userID, sm.settings.Rules, s, sm.settings.Width, sm.settings.Height)
	if err != nil {
		log.Printf("[SessionManager] Failed to create GameSession for user %s: %v", userID, err)
		return "", fmt.Errorf("failed to create game session: %w", err)
	}

	sm.mu.Lock()
	sm.sessions[gameID] = session
	sm.mu.Unlock()

	log.Printf("[SessionManager] Created game session %s for user %s (seed %d)", gameID, userID, s)
	return gameID, nil
}

// GetGameSession は指定されたIDのゲームセッションを取得します。
func (sm *SessionManager) GetGameSession(gameID string) (*GameSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	session, ok := sm.sessions[gameID]
	return session, ok
}

// HandleInput はプレイヤーの操作を1つ処理します。トップアウトしたらセッションを終了します。
func (sm *SessionManager) HandleInput(event PlayerInputEvent) error {
	session, ok := sm.GetGameSession(event.GameID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, event.GameID)
	}
	if session.UserID != event.UserID {
		return ErrNotSessionOwner
	}

	err := ApplyPlayerInput(session, event, sm.now())
	if err != nil && !errors.Is(err, ErrUnspawnable) {
		return err
	}
	sm.BroadcastGameState(event.GameID)
	if errors.Is(err, ErrUnspawnable) {
		sm.EndGameSession(event.GameID)
	}
	return err
}

// Tick はプレイ中の全セッションで自動落下を進めます。
func (sm *SessionManager) Tick(now time.Time) {
	sm.mu.RLock()
	active := make([]*GameSession, 0, len(sm.sessions))
	for _, session := range sm.sessions {
		active = append(active, session)
	}
	sm.mu.RUnlock()

	for _, session := range active {
		changed, err := AutoFall(session, now, sm.settings.GravityInterval, sm.settings.LockDelay)
		if changed {
			sm.BroadcastGameState(session.ID)
		}
		if errors.Is(err, ErrUnspawnable) {
			sm.EndGameSession(session.ID)
		}
	}
}

// RegisterClient は新しいWebSocketクライアントを登録し、読み書きのゴルーチンを開始します。
//
// Parameters:
//
//	gameID : 接続するゲームのID
//	userID : 認証済みのユーザーID
//	conn   : WebSocketコネクション
//
// Returns:
//
//	error: ゲームがない場合、他人のゲームの場合、Shutdown済みの場合
func (sm *SessionManager) RegisterClient(gameID, userID string, conn *websocket.Conn) error {
	session, ok := sm.GetGameSession(gameID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, gameID)
	}
	if session.UserID != userID {
		return ErrNotSessionOwner
	}

	// 既存の接続があれば先に閉じる（再接続対応）
	sm.mu.Lock()
	if existing, exists := sm.clients[gameID]; exists {
		log.Printf("[SessionManager] Replacing existing connection for game %s", gameID)
		existing.Conn.Close()
		existing.SafeClose()
		delete(sm.clients, gameID)
	}
	sm.mu.Unlock()

	client := &Client{
		UserID: userID,
		GameID: gameID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	// Runが止まっていると受け取り手がいないので、quitも待つ
	select {
	case sm.register <- client:
	case <-sm.quit:
		return ErrSessionManagerClosed
	}

	go sm.readPump(client)
	go client.writePump()
	return nil
}

// readPump はクライアントからのメッセージを読み込み、inputEventsチャネルに送ります。
func (sm *SessionManager) readPump(client *Client) {
	defer func() {
		log.Printf("[SessionManager] Client %s disconnecting from game %s", client.UserID, client.GameID)
		select {
		case sm.unregister <- client:
		case <-sm.quit:
		}
		client.Conn.Close()
	}()

	client.Conn.SetReadLimit(1024)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[SessionManager] WebSocket unexpected close for user %s: %v", client.UserID, err)
			}
			return
		}
		if len(message) == 0 {
			continue
		}

		var event PlayerInputEvent
		if err := json.Unmarshal(message, &event); err != nil {
			log.Printf("[SessionManager] Failed to unmarshal input from %s: %v", client.UserID, err)
			continue
		}
		// 送り主はメッセージの中身ではなく接続から決める
		event.UserID = client.UserID
		event.GameID = client.GameID

		select {
		case sm.inputEvents <- event:
		default:
			log.Printf("[SessionManager] Input events channel is full, dropping message from user %s", client.UserID)
		}
	}
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// writePump はSendチャネルのメッセージをWebSocketコネクションに書き込みます。
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// マネージャーがチャネルを閉じた
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[Client] Error writing message for user %s: %v", c.UserID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// BroadcastGameState はゲームの状態送信を予約します。チャネルが満杯なら今回は送りません。
func (sm *SessionManager) BroadcastGameState(gameID string) {
	select {
	case sm.broadcast <- gameID:
	default:
		log.Printf("[SessionManager] Broadcast channel full, skipping update for game: %s", gameID)
	}
}

// sendGameState はゲームの現在の状態を接続中のクライアントに送ります。
func (sm *SessionManager) sendGameState(gameID string) {
	sm.mu.RLock()
	session, ok := sm.sessions[gameID]
	client, connected := sm.clients[gameID]
	sm.mu.RUnlock()
	if !ok || !connected {
		return
	}

	stateJSON, err := json.Marshal(session.Snapshot())
	if err != nil {
		log.Printf("[SessionManager] Error marshaling game state for game %s: %v", gameID, err)
		return
	}
	if !client.SafeSend(stateJSON) {
		log.Printf("[SessionManager] Failed to send to client %s (channel closed or full)", client.UserID)
	}
}

// EndGameSession はゲームセッションを終了し、結果を保存してセッションを片付けます。
func (sm *SessionManager) EndGameSession(gameID string) {
	session, ok := sm.GetGameSession(gameID)
	if !ok {
		log.Printf("[SessionManager] EndGameSession called for non-existent game: %s", gameID)
		return
	}

	now := sm.now()
	session.Finish(now)
	stats := session.Stats()
	log.Printf("[SessionManager] Game session %s ended: %d lines, %d pieces", gameID, stats.LinesCleared, stats.PiecesLocked)

	if sm.resultRepo != nil && stats.PiecesLocked > 0 {
		_, err := sm.resultRepo.CreateResult(nil, models.Result{
			GameID:        gameID,
			UserID:        session.UserID,
			LinesCleared:  stats.LinesCleared,
			PiecesLocked:  stats.PiecesLocked,
			Spins:         stats.Spins,
			PerfectClears: stats.PerfectClears,
			CreatedAt:     now,
		})
		if err != nil {
			log.Printf("[SessionManager] Failed to save result for game %s: %v", gameID, err)
		}
	}

	// 最後の状態を直接送ってから接続を閉じる
	sm.sendGameState(gameID)

	sm.mu.Lock()
	if client, ok := sm.clients[gameID]; ok {
		client.SafeClose()
		delete(sm.clients, gameID)
	}
	delete(sm.sessions, gameID)
	sm.mu.Unlock()
}

// Shutdown はメインループを止め、全クライアントを切断します。
func (sm *SessionManager) Shutdown() {
	log.Printf("[SessionManager] Shutting down...")
	close(sm.quit)

	sm.mu.Lock()
	for gameID, client := range sm.clients {
		client.Conn.Close()
		client.SafeClose()
		delete(sm.clients, gameID)
	}
	sm.sessions = make(map[string]*GameSession)
	sm.mu.Unlock()
}
