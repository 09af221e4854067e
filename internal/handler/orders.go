package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/streetbite-pos/api/internal/service"
	"github.com/streetbite-pos/api/internal/store"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	RecordTally(ctx context.Context, item string, price decimal.Decimal) (store.TallyOrder, error)
	Summary(ctx context.Context) ([]store.ItemSummary, error)
	SubmitTicket(ctx context.Context, items []store.LineItem) (store.Ticket, error)
	FinalizeOrder(ctx context.Context, req service.FinalizeOrderRequest) (store.FullOrder, error)
}

// OrderHandler handles the public order endpoints.
type OrderHandler struct {
	svc OrderServicer
}

func NewOrderHandler(svc OrderServicer) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// RegisterRoutes registers the order endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/add_order", h.AddOrder)
	r.Get("/summary", h.Summary)
	r.Post("/submit_order", h.SubmitOrder)
	r.Post("/save_full_order", h.SaveFullOrder)
}

// --- Request / Response types ---

type addOrderRequest struct {
	Item  string          `json:"item"`
	Price decimal.Decimal `json:"price"`
}

type submitOrderRequest struct {
	Items []store.LineItem `json:"items"`
}

type saveFullOrderRequest struct {
	Items           []store.LineItem `json:"items"`
	TotalPrice      decimal.Decimal  `json:"total_price"`
	Combo           bool             `json:"combo"`
	LemonadeUpgrade bool             `json:"lemonade_upgrade"`
	OrderType       string           `json:"order_type"`
}

// --- Handlers ---

// AddOrder handles POST /add_order.
func (h *OrderHandler) AddOrder(w http.ResponseWriter, r *http.Request) {
	var req addOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if _, err := h.svc.RecordTally(r.Context(), req.Item, req.Price); err != nil {
		if isValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: record tally: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "success"})
}

// Summary handles GET /summary. The response keeps the legacy
// array-of-triples shape [[item, count, sum], ...] the board expects.
func (h *OrderHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary(r.Context())
	if err != nil {
		log.Printf("ERROR: summary: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([][]interface{}, len(summary))
	for i, s := range summary {
		resp[i] = []interface{}{s.Item, s.Count, s.Total}
	}
	writeJSON(w, http.StatusOK, resp)
}

// SubmitOrder handles POST /submit_order.
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if _, err := h.svc.SubmitTicket(r.Context(), req.Items); err != nil {
		if isValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: submit ticket: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "submitted"})
}

// SaveFullOrder handles POST /save_full_order.
func (h *OrderHandler) SaveFullOrder(w http.ResponseWriter, r *http.Request) {
	var req saveFullOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.svc.FinalizeOrder(r.Context(), service.FinalizeOrderRequest{
		Items:           req.Items,
		TotalPrice:      req.TotalPrice,
		Combo:           req.Combo,
		LemonadeUpgrade: req.LemonadeUpgrade,
		OrderType:       req.OrderType,
	})
	if err != nil {
		if isValidationError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("ERROR: finalize order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"status":               "saved",
		"display_order_number": order.DisplayOrderNumber,
	})
}

// --- Helpers ---

// isValidationError checks if the error is a known validation error
// from the service layer that should result in 400 Bad Request.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyItem) ||
		errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrEmptyItemName) ||
		errors.Is(err, service.ErrNegativePrice) ||
		errors.Is(err, service.ErrNegativeTotal) ||
		errors.Is(err, service.ErrInvalidOrderType)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}
