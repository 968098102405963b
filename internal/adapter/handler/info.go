package handler

import (
	"net/http"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/domain/flip"
	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/config"
)

// ProjectInfo is the public description of this deployment.
type ProjectInfo struct {
	Name      string   `json:"name"`
	FullName  string   `json:"full_name"`
	Version   string   `json:"version"`
	AuthorURL string   `json:"author_url,omitempty"`
	BaseURL   string   `json:"base_url"`
	AuthURL   string   `json:"auth_url"`
	ValidURL  string   `json:"valid_url"`
	Commands  []string `json:"commands"`
	Styles    []string `json:"styles"`
}

// NewProjectInfo collects project information from the app config.
func NewProjectInfo(cfg config.AppConfig, commands []string) ProjectInfo {
	return ProjectInfo{
		Name:      cfg.Name,
		FullName:  cfg.FullName,
		Version:   cfg.Version,
		AuthorURL: cfg.AuthorURL,
		BaseURL:   cfg.BaseURL,
		AuthURL:   cfg.AuthURL(),
		ValidURL:  cfg.ValidURL(),
		Commands:  commands,
		Styles:    flip.StyleNames(),
	}
}

// InfoHandler serves project information.
type InfoHandler struct {
	info ProjectInfo
}

// NewInfoHandler creates a new info handler.
func NewInfoHandler(info ProjectInfo) *InfoHandler {
	return &InfoHandler{info: info}
}

// ServeHTTP handles GET / and GET /info
func (h *InfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.info)
}
