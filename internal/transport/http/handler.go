// Package http exposes deck resolution over a small JSON API.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"quiz-deck-service/internal/app"
	"quiz-deck-service/internal/community"
	"quiz-deck-service/internal/domain"
)

// Handler serves the resolve and delete endpoints.
type Handler struct {
	resolver  *app.DeckResolver
	community *community.Store
	logger    *zap.Logger
}

func NewHandler(resolver *app.DeckResolver, communityStore *community.Store, logger *zap.Logger) *Handler {
	return &Handler{resolver: resolver, community: communityStore, logger: logger}
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/decks/resolve", h.ServeResolve)
	mux.HandleFunc("/api/decks/delete", h.ServeDelete)
}

type deckRequest struct {
	Name       string `json:"name"`
	StartIndex int    `json:"startIndex,omitempty"`
	EndIndex   int    `json:"endIndex,omitempty"`
	MC         bool   `json:"mc,omitempty"`
}

type resolveRequest struct {
	Requests []deckRequest `json:"requests"`
	UserID   string        `json:"userId,omitempty"`
	UserName string        `json:"userName,omitempty"`
}

type deckSummary struct {
	UniqueID       string `json:"uniqueId"`
	Name           string `json:"name"`
	ShortName      string `json:"shortName"`
	Description    string `json:"description,omitempty"`
	Author         string `json:"author,omitempty"`
	CardCount      int    `json:"cardCount"`
	StartIndex     int    `json:"startIndex"`
	EndIndex       int    `json:"endIndex"`
	MC             bool   `json:"mc"`
	IsInternetDeck bool   `json:"isInternetDeck"`
}

type resolveResponse struct {
	Decks []deckSummary `json:"decks"`
}

type deleteRequest struct {
	SearchTerm string `json:"searchTerm"`
	UserID     string `json:"userId"`
}

type deleteResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// ServeResolve resolves a batch of deck requests.
func (h *Handler) ServeResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "malformed request body"})
		return
	}
	if len(req.Requests) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "no deck requests"})
		return
	}

	requests := make([]domain.DeckRequest, len(req.Requests))
	for i, dr := range req.Requests {
		requests[i] = domain.DeckRequest{
			NameOrID:   dr.Name,
			StartIndex: dr.StartIndex,
			EndIndex:   dr.EndIndex,
			MC:         dr.MC,
		}
	}

	decks, err := h.resolver.ResolveDecks(r.Context(), requests, req.UserID, req.UserName)
	if err != nil {
		h.writeError(w, err)
		return
	}

	summaries := make([]deckSummary, len(decks))
	for i, deck := range decks {
		summaries[i] = deckSummary{
			UniqueID:       deck.UniqueID,
			Name:           deck.Name,
			ShortName:      deck.ShortName,
			Description:    deck.Description,
			Author:         deck.Author,
			CardCount:      deck.Cards.Len(),
			StartIndex:     deck.StartIndex,
			EndIndex:       deck.EndIndex,
			MC:             deck.MC,
			IsInternetDeck: deck.IsInternetDeck,
		}
	}
	writeJSON(w, http.StatusOK, resolveResponse{Decks: summaries})
}

// ServeDelete deletes a community deck record owned by the requesting user.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "malformed request body"})
		return
	}
	if req.SearchTerm == "" || req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "searchTerm and userId are required"})
		return
	}

	status, err := h.community.Delete(r.Context(), req.SearchTerm, req.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	switch status {
	case domain.DeletionDeleted:
		writeJSON(w, http.StatusOK, deleteResponse{Status: "deleted"})
	case domain.DeletionNotFound:
		writeJSON(w, http.StatusNotFound, deleteResponse{Status: "notFound"})
	case domain.DeletionNotOwner:
		writeJSON(w, http.StatusForbidden, deleteResponse{Status: "notOwner"})
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var notFound *domain.NotFoundError
	var parseErr *domain.ParseError
	var fetchErr *domain.FetchError

	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: notFound.Error()})
	case errors.As(err, &parseErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: parseErr.Error()})
	case errors.As(err, &fetchErr):
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Message: "There was an error downloading the deck from that URI. Check that the URI is correct and try again.",
		})
	case errors.Is(err, domain.ErrQuotaExceeded):
		writeJSON(w, http.StatusForbidden, errorResponse{
			Message: "You have already added the maximum number of decks. Delete an existing deck and try again.",
		})
	case errors.Is(err, domain.ErrShortNameTaken):
		writeJSON(w, http.StatusConflict, errorResponse{
			Message: "There is already a deck with that SHORT NAME. Please choose another SHORT NAME and make a new paste.",
		})
	case errors.Is(err, domain.ErrDashboardRequired):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Message: "Please visit the web dashboard to create custom quizzes.",
		})
	default:
		h.logger.Error("deck resolution failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
