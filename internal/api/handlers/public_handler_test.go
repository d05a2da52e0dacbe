package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-core/internal/services/tetris"
)

func TestPublicHandler_Health(t *testing.T) {
	h := NewPublicHandler(nil, tetris.DefaultSessionSettings())
	rec := httptest.NewRecorder()

	h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "disabled", body["database"])
}

func TestPublicHandler_Rules(t *testing.T) {
	h := NewPublicHandler(nil, tetris.DefaultSessionSettings())
	rec := httptest.NewRecorder()

	h.Rules(rec, httptest.NewRequest(http.MethodGet, "/api/rules", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Width      int                 `json:"width"`
		Height     int                 `json:"height"`
		GravityMS  int64               `json:"gravity_ms"`
		LockDelay  int64               `json:"lock_delay_ms"`
		Pieces     map[string][]string `json:"pieces"`
		NextPieces int                 `json:"next_piece_count"`
		Rules      struct {
			MoveResetLimit int `json:"move_reset_limit"`
		} `json:"rules"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 10, body.Width)
	assert.Equal(t, 42, body.Height)
	assert.Equal(t, int64(1000), body.GravityMS)
	assert.Equal(t, int64(500), body.LockDelay)
	assert.Equal(t, 15, body.Rules.MoveResetLimit)
	assert.Equal(t, tetris.NextPreviewCount, body.NextPieces)
	require.Len(t, body.Pieces, 7)
	assert.Equal(t, []string{"....", "IIII", "....", "...."}, body.Pieces["I"])
	assert.Equal(t, []string{".T..", "TTT.", "....", "...."}, body.Pieces["T"])
}
