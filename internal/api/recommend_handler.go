// Package api exposes the HTTP surface: product recommendations, chat, intent
// classification, and health probes. Handlers receive their dependencies
// explicitly; nothing in this package reads configuration or builds clients.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/brightside-ai/assistant-backend/internal/api/respond"
	"github.com/brightside-ai/assistant-backend/internal/embeddings"
	"github.com/brightside-ai/assistant-backend/internal/model"
	"github.com/brightside-ai/assistant-backend/internal/searchindex"
)

const defaultRecommendLimit = 3

// StorefrontItem is the product shape the storefront consumes. Search hits
// get FormattedPrice and Score; the mock fallback items carry neither.
type StorefrontItem struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Price          string   `json:"price"`
	Description    string   `json:"description"`
	Image          string   `json:"image"`
	Link           string   `json:"link"`
	FormattedPrice string   `json:"formattedPrice,omitempty"`
	Score          *float64 `json:"score,omitempty"`
}

// mockProducts is the fixed fallback list. This endpoint degrades to it on
// any internal failure and on empty results; it never returns a 5xx.
var mockProducts = []StorefrontItem{
	{
		ID:          "1",
		Title:       "Organic Fresh Avocados",
		Price:       "4.99",
		Description: "Perfectly ripe, hand-picked Hass avocados. Rich, creamy, and perfect for any meal.",
		Image:       "https://images.unsplash.com/photo-1523049673857-eb18f1d7b578",
		Link:        "/products/organic-avocados",
	},
	{
		ID:          "2",
		Title:       "Premium Greek Yogurt",
		Price:       "3.49",
		Description: "Creamy, protein-rich Greek yogurt. Made with all-natural ingredients.",
		Image:       "https://images.unsplash.com/photo-1488477181946-6428a0291777",
		Link:        "/products/greek-yogurt",
	},
	{
		ID:          "3",
		Title:       "Artisan Sourdough Bread",
		Price:       "6.99",
		Description: "Freshly baked sourdough bread with a perfect crust and chewy interior.",
		Image:       "https://images.unsplash.com/photo-1509440159596-0249088772ff",
		Link:        "/products/sourdough-bread",
	},
	{
		ID:          "4",
		Title:       "Organic Wild Blueberries",
		Price:       "5.99",
		Description: "Sweet and tangy wild blueberries, perfect for snacking or baking.",
		Image:       "https://images.unsplash.com/photo-1498557850523-fd3d118b962e",
		Link:        "/products/wild-blueberries",
	},
}

// RecommendHandler handles POST /recommend.
type RecommendHandler struct {
	embedder *embeddings.Client
	products searchindex.ProductIndex
	log      zerolog.Logger
}

func NewRecommendHandler(embedder *embeddings.Client, products searchindex.ProductIndex, log zerolog.Logger) *RecommendHandler {
	return &RecommendHandler{embedder: embedder, products: products, log: log}
}

// HandleRecommend runs query embedding and filtered product search, then
// transforms hits into the storefront shape. Any failure past request
// validation falls back to the mock list with status 200.
func (h *RecommendHandler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	var req model.RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respond.WriteBadRequest(w, "'query' field is required")
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultRecommendLimit
	}

	vec, err := h.embedder.Embed(r.Context(), req.Query)
	if err != nil {
		h.log.Warn().Err(err).Msg("query embedding failed; returning mock products")
		respond.WriteJSON(w, http.StatusOK, mockProducts)
		return
	}

	products, err := h.products.Search(r.Context(), vec, req.Limit, req.ClientID, req.Filters)
	if err != nil {
		h.log.Warn().Err(err).Msg("product search failed; returning mock products")
		respond.WriteJSON(w, http.StatusOK, mockProducts)
		return
	}
	if len(products) == 0 {
		h.log.Info().Str("query", req.Query).Msg("no products matched; returning mock products")
		respond.WriteJSON(w, http.StatusOK, mockProducts)
		return
	}

	items := make([]StorefrontItem, 0, len(products))
	for _, p := range products {
		items = append(items, storefrontItem(p))
	}
	respond.WriteJSON(w, http.StatusOK, items)
}

func storefrontItem(p model.Product) StorefrontItem {
	return StorefrontItem{
		ID:             p.ID,
		Title:          p.Name,
		Price:          p.Price,
		Description:    p.Description,
		Image:          p.ImageURL,
		Link:           p.ProductURL,
		FormattedPrice: "$" + p.Price,
		Score:          p.Score,
	}
}
