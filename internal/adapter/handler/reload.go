package handler

import (
	"errors"
	"net/http"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/logger"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/config"
)

// Reloader re-reads configuration from disk.
type Reloader interface {
	TryReload() error
}

// ReloadHandler handles configuration reload requests.
type ReloadHandler struct {
	reloader Reloader
	logger   logger.Logger
}

// NewReloadHandler creates a new reload handler.
func NewReloadHandler(reloader Reloader, logger logger.Logger) *ReloadHandler {
	return &ReloadHandler{
		reloader: reloader,
		logger:   logger,
	}
}

// ServeHTTP handles POST /-/reload requests.
func (h *ReloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.reloader.TryReload(); err != nil {
		if errors.Is(err, config.ErrRequiresRestart) {
			// Reloadable keys were applied; the rest waits for a restart
			h.logger.Warn("manual reload found changes that need a restart")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("Configuration change requires restart\n"))
			return
		}

		h.logger.Error("manual reload failed", "error", err)
		http.Error(w, "Configuration reload failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Configuration reloaded successfully\n"))
}
