package fuelorder

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fbo-launchpad/fuel-ops/internal/auth"
	"github.com/fbo-launchpad/fuel-ops/internal/rbac"
	"github.com/fbo-launchpad/fuel-ops/internal/transport"
	"github.com/fbo-launchpad/fuel-ops/pkg/logger"

	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateOrder(ctx context.Context, principal rbac.Principal, dto CreateOrderDTO) (*FuelOrder, error)
	ListOrders(ctx context.Context, principal rbac.Principal, filters ListFilters) (*OrderPage, error)
	GetOrderByID(ctx context.Context, principal rbac.Principal, orderID int64) (*FuelOrder, error)
	UpdateStatus(ctx context.Context, principal rbac.Principal, orderID int64, dto UpdateStatusDTO) (*FuelOrder, error)
	CompleteFueling(ctx context.Context, principal rbac.Principal, orderID int64, dto CompleteOrderDTO) (*FuelOrder, error)
	Review(ctx context.Context, principal rbac.Principal, orderID int64) (*FuelOrder, error)
	Cancel(ctx context.Context, principal rbac.Principal, orderID int64) (*FuelOrder, error)
	StatusCounts(ctx context.Context, principal rbac.Principal) (map[Status]int64, error)
	ExportCSV(ctx context.Context, principal rbac.Principal, statusFilter string, w io.Writer) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto CreateOrderDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.Service.CreateOrder(r.Context(), user.Principal(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, order)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	filters := ListFilters{
		Status:  r.URL.Query().Get("status"),
		Page:    queryInt(r, "page"),
		PerPage: queryInt(r, "per_page"),
	}
	if raw := r.URL.Query().Get("customer_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid customer_id")
			return
		}
		filters.CustomerID = &id
	}

	page, err := h.Service.ListOrders(r.Context(), user.Principal(), filters)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	orderID, err := h.orderID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.Service.GetOrderByID(r.Context(), user.Principal(), orderID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	orderID, err := h.orderID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var dto UpdateStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.Service.UpdateStatus(r.Context(), user.Principal(), orderID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) SubmitData(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	orderID, err := h.orderID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var dto CompleteOrderDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.Service.CompleteFueling(r.Context(), user.Principal(), orderID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	orderID, err := h.orderID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.Service.Review(r.Context(), user.Principal(), orderID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	orderID, err := h.orderID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.Service.Cancel(r.Context(), user.Principal(), orderID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) StatusCounts(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	counts, err := h.Service.StatusCounts(r.Context(), user.Principal())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]any{"counts": counts})
}

// ExportCSV streams the export. Errors after the first byte cannot change the
// HTTP status anymore, so the export is buffered through the service writer
// only once the permission and filter checks pass.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var buf bytes.Buffer
	err := h.Service.ExportCSV(r.Context(), user.Principal(), r.URL.Query().Get("status"), &buf)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="fuel_orders_export.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.Logger.Error("failed to write csv response", "error", err)
	}
}

func (h *Handler) orderID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func queryInt(r *http.Request, key string) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}
