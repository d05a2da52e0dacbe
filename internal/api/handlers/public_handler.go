package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/database"
	"github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/models/tetris"
	gamerules "github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/services/tetris"
)

// PublicHandler は認証不要のエンドポイントを処理します。
type PublicHandler struct {
	DatabaseService *database.DatabaseService // nilならデータベースなしで動いている
	Settings        gamerules.SessionSettings
}

// NewPublicHandler creates a new instance of PublicHandler
func NewPublicHandler(dbService *database.DatabaseService, settings gamerules.SessionSettings) *PublicHandler {
	return &PublicHandler{
		DatabaseService: dbService,
		Settings:        settings,
	}
}

// Health はサーバーとデータベースの状態を返します。
// GET /api/health
func (h *PublicHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{"status": "ok", "database": "disabled"}
	if h.DatabaseService != nil {
		version, err := h.DatabaseService.Version()
		if err != nil {
			log.Printf("[PublicHandler] Database health check failed: %v", err)
			response["status"] = "degraded"
			response["database"] = "unreachable"
			WriteJSONResponse(w, http.StatusServiceUnavailable, response)
			return
		}
		response["database"] = version
	}
	WriteJSONResponse(w, http.StatusOK, response)
}

// Rules はサーバーのルール設定と、ホールドやネクストの表示用のミノの形を返します。
// GET /api/rules
func (h *PublicHandler) Rules(w http.ResponseWriter, r *http.Request) {
	pieces := make(map[string][]string, tetris.PieceTypeCount)
	for _, t := range tetris.AllPieceTypes {
		pieces[t.String()] = previewLines(t.Preview())
	}
	WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"width":            h.Settings.Width,
		"height":           h.Settings.Height,
		"rules":            h.Settings.Rules,
		"gravity_ms":       h.Settings.GravityInterval.Milliseconds(),
		"lock_delay_ms":    h.Settings.LockDelay.Milliseconds(),
		"pieces":           pieces,
		"next_piece_count": gamerules.NextPreviewCount,
	})
}

func previewLines(cells [4][4]tetris.Cell) []string {
	lines := make([]string, 0, len(cells))
	for _, row := range cells {
		var b strings.Builder
		for _, c := range row {
			b.WriteRune(c.Rune())
		}
		lines = append(lines, b.String())
	}
	return lines
}
