package httpx

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/GustavoMarcolla/insightscore-pro/internal/seniorx"
)

// PlatformHandlers bridges the hosting page to the in-process handshake. The
// embedded frontend relays platform postMessage frames to /platform/messages,
// forwards queued handshake requests back to the hosting window, and polls
// /platform/state to learn when sign-on settled.
type PlatformHandlers struct {
	Facade *seniorx.Facade
	Conn   *seniorx.PipeConn
	Logger *slog.Logger
}

const maxPlatformMessageBytes = 64 << 10

// DeliverMessage accepts one relayed platform frame. The Origin header
// travels with the frame; the handshake's origin validator decides whether
// to trust it.
func (h *PlatformHandlers) DeliverMessage(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPlatformMessageBytes))
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusRequestEntityTooLarge, ErrCode: "message_too_large", Err: err})
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "empty_message", Err: errors.New("message body is required")})
		return
	}

	h.Conn.Deliver(seniorx.Message{Origin: r.Header.Get("Origin"), Data: body})
	w.WriteHeader(http.StatusAccepted)
}

// PendingRequests drains the handshake's queued outbound request markers so
// the embedded page can post them to the hosting window.
func (h *PlatformHandlers) PendingRequests(w http.ResponseWriter, _ *http.Request) {
	markers := make([]string, 0, 4)
	for {
		select {
		case m := <-h.Conn.Requests():
			markers = append(markers, m)
		default:
			WriteJSON(w, http.StatusOK, map[string]any{"requests": markers})
			return
		}
	}
}

// State reports the facade's auth state and identity sync progress.
func (h *PlatformHandlers) State(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"state":       h.Facade.State(),
		"mode":        h.Facade.Mode(),
		"syncing":     h.Facade.Syncing(),
		"sync_failed": h.Facade.SyncFailed(),
	})
}

// AppShell is the guarded entry point the embedded page loads once sign-on
// settles.
func (h *PlatformHandlers) AppShell(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
		"state":  h.Facade.State(),
	})
}
