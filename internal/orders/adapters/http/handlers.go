package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dejobratic/orderbot/internal/orders/app"
	"github.com/dejobratic/orderbot/internal/orders/app/commands"
	"github.com/dejobratic/orderbot/internal/orders/app/queries"
	"github.com/dejobratic/orderbot/internal/orders/domain"
	"github.com/dejobratic/orderbot/internal/orders/ports"
)

// Handler exposes the admin endpoints: order review and decisions, catalog
// maintenance, customer bans and broadcasts.
type Handler struct {
	service *app.Service
	logger  *slog.Logger
}

func NewHandler(service *app.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register binds the admin handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/orders", h.listOrders)
	mux.HandleFunc("GET /v1/orders/{id}", h.getOrder)
	mux.HandleFunc("POST /v1/orders/{id}/approve", h.decide(commands.ActionApprove))
	mux.HandleFunc("POST /v1/orders/{id}/reject", h.rejectOrder)
	mux.HandleFunc("POST /v1/orders/{id}/deliver", h.decide(commands.ActionDeliver))
	mux.HandleFunc("GET /v1/products", h.listProducts)
	mux.HandleFunc("POST /v1/products", h.createProduct)
	mux.HandleFunc("PUT /v1/products/{id}", h.updateProduct)
	mux.HandleFunc("DELETE /v1/products/{id}", h.deleteProduct)
	mux.HandleFunc("GET /v1/users", h.listUsers)
	mux.HandleFunc("POST /v1/users/{id}/ban", h.setBanned(true))
	mux.HandleFunc("POST /v1/users/{id}/unban", h.setBanned(false))
	mux.HandleFunc("POST /v1/broadcast", h.broadcast)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	query := queries.ListOrdersQuery{Status: r.URL.Query().Get("status")}

	var err error
	if query.Page, err = intParam(r, "page"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if query.PageSize, err = intParam(r, "page_size"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	orders, err := h.service.ListOrders(r.Context(), query)
	if err != nil {
		if errors.Is(err, queries.ErrInvalidQuery) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.internalError(w, r, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) decide(action commands.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := h.service.Decide(r.Context(), r.PathValue("id"), action)
		h.writeDecision(w, r, order, err)
	}
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// rejectOrder accepts an optional JSON body carrying the rejection reason.
func (h *Handler) rejectOrder(w http.ResponseWriter, r *http.Request) {
	var payload rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	order, err := h.service.Reject(r.Context(), r.PathValue("id"), payload.Reason)
	h.writeDecision(w, r, order, err)
}

func (h *Handler) writeDecision(w http.ResponseWriter, r *http.Request, order *domain.Order, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]any{"order": order})
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, domain.ErrAlreadyDecided), errors.Is(err, domain.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error(), "order": order})
	default:
		h.internalError(w, r, err)
	}
}

// listProducts returns the active catalog; ?all=true includes inactive products.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	list := h.service.Products
	if all, _ := strconv.ParseBool(r.URL.Query().Get("all")); all {
		list = h.service.AllProducts
	}

	products, err := list(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	created, err := h.service.CreateProduct(r.Context(), product)
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"product": created})
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	product.ID = r.PathValue("id")

	updated, err := h.service.UpdateProduct(r.Context(), product)
	if err != nil {
		h.writeCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": updated})
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		h.writeCatalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (h *Handler) writeCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidProduct):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeError(w, http.StatusConflict, "product already exists")
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, "product not found")
	default:
		h.internalError(w, r, err)
	}
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.Customers(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	if users == nil {
		users = []domain.Profile{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// setBanned takes the customer's Telegram user id in the path.
func (h *Handler) setBanned(banned bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil || customerID <= 0 {
			writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}

		if err := h.service.SetBanned(r.Context(), customerID, banned); err != nil {
			h.internalError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"telegram_user_id": customerID, "is_banned": banned})
	}
}

type broadcastRequest struct {
	Message string `json:"message"`
}

func (h *Handler) broadcast(w http.ResponseWriter, r *http.Request) {
	var payload broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	result, err := h.service.Broadcast(r.Context(), payload.Message)
	if err != nil {
		if errors.Is(err, commands.ErrEmptyBroadcast) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"broadcast": result})
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "admin api request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func intParam(r *http.Request, name string) (int, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.New("invalid " + name)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
