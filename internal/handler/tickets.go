package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/streetbite-pos/api/internal/store"
)

// TicketStore defines the store methods needed by the ticket board.
// Satisfied by both store backends; narrow interface for testability.
type TicketStore interface {
	ListTickets(ctx context.Context) ([]store.TicketView, error)
	DeleteTicket(ctx context.Context, id int64) error
}

// TicketHandler serves the kitchen ticket board.
type TicketHandler struct {
	store TicketStore
}

func NewTicketHandler(s TicketStore) *TicketHandler {
	return &TicketHandler{store: s}
}

// RegisterRoutes registers the ticket endpoints on the given Chi router.
func (h *TicketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/get_tickets", h.List)
	r.Delete("/clear_ticket/{id}", h.Clear)
}

type ticketResponse struct {
	ID                 int64            `json:"id"`
	Items              []store.LineItem `json:"items"`
	Timestamp          time.Time        `json:"timestamp"`
	DisplayOrderNumber *string          `json:"display_order_number"`
}

// List handles GET /get_tickets. An empty board is a valid state and
// returns an empty array.
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.store.ListTickets(r.Context())
	if err != nil {
		log.Printf("ERROR: list tickets: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]ticketResponse, len(tickets))
	for i, t := range tickets {
		resp[i] = ticketResponse{
			ID:                 t.ID,
			Items:              t.Items,
			Timestamp:          t.CreatedAt,
			DisplayOrderNumber: t.DisplayOrderNumber,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Clear handles DELETE /clear_ticket/{id}. Clearing an already-cleared
// ticket succeeds.
func (h *TicketHandler) Clear(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ticket ID"})
		return
	}

	if err := h.store.DeleteTicket(r.Context(), id); err != nil {
		log.Printf("ERROR: clear ticket: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
