package handlers

import (
	"net/http"

	"sharefolio/internal/catalog"
	"sharefolio/internal/models"
)

type FeedResponse struct {
	Posts []*models.FeedItem `json:"posts"`
}

type CatalogResponse struct {
	Technologies []string              `json:"technologies"`
	Levels       []catalog.LevelOption `json:"levels"`
}

func (h *Handlers) GetFeed(w http.ResponseWriter, r *http.Request) {
	items, err := h.FeedService.Feed(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeSuccess(w, FeedResponse{Posts: items}, http.StatusOK)
}

func (h *Handlers) GetCatalog(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, h.catalogResponse(), http.StatusOK)
}

func (h *Handlers) catalogResponse() CatalogResponse {
	return CatalogResponse{
		Technologies: h.Catalog.Technologies(),
		Levels:       h.Catalog.Levels(),
	}
}
