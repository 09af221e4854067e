package handler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/streetbite-pos/api/internal/auth"
	"github.com/streetbite-pos/api/internal/enum"
	"github.com/streetbite-pos/api/internal/middleware"
	"github.com/streetbite-pos/api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// AdminStore defines the store methods needed by admin handlers.
// Satisfied by both store backends; narrow interface for testability.
type AdminStore interface {
	ListFullOrdersDesc(ctx context.Context) ([]store.FullOrder, error)
	DeleteFullOrders(ctx context.Context, ids []int64) (int64, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (orders, tickets int64, err error)
	ResetAll(ctx context.Context) error
}

// AdminHandler handles PIN login and destructive maintenance endpoints.
type AdminHandler struct {
	store     AdminStore
	sessions  *auth.Sessions
	jwtSecret string
	pin       string
	pinHash   string
}

// NewAdminHandler creates a new AdminHandler. pinHash, when non-empty,
// is a bcrypt hash and takes precedence over the plaintext pin; the
// plaintext fallback keeps local setups simple (a 4-digit PIN is
// low-entropy either way, the session token is what expires).
func NewAdminHandler(s AdminStore, sessions *auth.Sessions, jwtSecret, pin, pinHash string) *AdminHandler {
	return &AdminHandler{store: s, sessions: sessions, jwtSecret: jwtSecret, pin: pin, pinHash: pinHash}
}

// RegisterPublicRoutes registers the endpoints reachable without a session.
func (h *AdminHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/admin/login", h.Login)
}

// RegisterRoutes registers the session-gated admin endpoints.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Post("/logout", h.Logout)
	r.Get("/orders", h.Dashboard)
	r.Delete("/orders/{id}", h.DeleteOrder)
	r.Post("/orders/delete_selected", h.DeleteSelected)
	r.Post("/delete_before", h.DeleteBefore)
	r.Post("/reset", h.Reset)
}

// --- Request / Response types ---

type loginRequest struct {
	Pin string `json:"pin"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type deleteSelectedRequest struct {
	IDs []int64 `json:"ids"`
}

type deleteBeforeRequest struct {
	Cutoff string `json:"cutoff"`
}

type resetRequest struct {
	Confirm string `json:"confirm"`
}

type dashboardOrderResponse struct {
	ID                 int64            `json:"id"`
	DisplayOrderNumber string           `json:"display_order_number"`
	TotalPrice         string           `json:"total_price"`
	Timestamp          time.Time        `json:"timestamp"`
	TimestampPretty    string           `json:"timestamp_pretty"`
	Items              []store.LineItem `json:"items"`
}

// --- Handlers ---

// Login handles POST /admin/login.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Pin == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "pin is required"})
		return
	}

	if !h.pinMatches(req.Pin) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "incorrect PIN"})
		return
	}

	token, claims, err := auth.GenerateAdminToken(h.jwtSecret, enum.RoleAdmin)
	if err != nil {
		log.Printf("ERROR: generate admin token: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		ExpiresAt:   claims.ExpiresAt.Time,
	})
}

// Logout handles POST /admin/logout and revokes the presented session.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	h.sessions.Revoke(claims.ID, claims.ExpiresAt.Time)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Dashboard handles GET /admin/orders, newest first.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListFullOrdersDesc(r.Context())
	if err != nil {
		log.Printf("ERROR: list orders for dashboard: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]dashboardOrderResponse, len(orders))
	for i, o := range orders {
		resp[i] = dashboardOrderResponse{
			ID:                 o.ID,
			DisplayOrderNumber: o.DisplayOrderNumber,
			TotalPrice:         o.TotalPrice.StringFixed(2),
			Timestamp:          o.CreatedAt,
			TimestampPretty:    prettyTimestamp(o.CreatedAt),
			Items:              o.Items,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteOrder handles DELETE /admin/orders/{id}. Deleting an absent id
// succeeds; orphaned tickets are reconciled either way.
func (h *AdminHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	if _, err := h.store.DeleteFullOrders(r.Context(), []int64{id}); err != nil {
		log.Printf("ERROR: delete order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "deleted",
		"message": fmt.Sprintf("Order #%d deleted", id),
	})
}

// DeleteSelected handles POST /admin/orders/delete_selected.
func (h *AdminHandler) DeleteSelected(w http.ResponseWriter, r *http.Request) {
	var req deleteSelectedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if len(req.IDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no orders selected"})
		return
	}

	deleted, err := h.store.DeleteFullOrders(r.Context(), req.IDs)
	if err != nil {
		log.Printf("ERROR: delete selected orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "deleted",
		"message": fmt.Sprintf("Deleted %d orders", deleted),
	})
}

// DeleteBefore handles POST /admin/delete_before. The cutoff is a
// YYYY-MM-DD date; everything created strictly before it is removed.
func (h *AdminHandler) DeleteBefore(w http.ResponseWriter, r *http.Request) {
	var req deleteBeforeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	cutoff, err := time.Parse("2006-01-02", req.Cutoff)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date"})
		return
	}

	orders, tickets, err := h.store.DeleteBefore(r.Context(), cutoff.UTC())
	if err != nil {
		log.Printf("ERROR: delete before cutoff: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "deleted",
		"message": fmt.Sprintf("Deleted %d orders and %d tickets before %s", orders, tickets, req.Cutoff),
	})
}

// Reset handles POST /admin/reset. Only the literal confirmation value
// triggers the wipe; anything else aborts without touching data.
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Confirm != enum.ResetConfirmation {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "aborted",
			"message": "Reset aborted. Confirmation not matched.",
		})
		return
	}

	if err := h.store.ResetAll(r.Context()); err != nil {
		log.Printf("ERROR: reset database: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "reset",
		"message": "Database fully wiped and ID sequences restarted.",
	})
}

// --- Helpers ---

func (h *AdminHandler) pinMatches(pin string) bool {
	if h.pinHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(h.pinHash), []byte(pin)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(h.pin), []byte(pin)) == 1
}

// prettyTimestamp renders the dashboard label in the vendor's local
// zone, e.g. "02 Jan 2006, 15:04".
func prettyTimestamp(t time.Time) string {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		loc = time.UTC
	}
	return t.In(loc).Format("02 Jan 2006, 15:04")
}
