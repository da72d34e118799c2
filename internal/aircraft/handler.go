package aircraft

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fbo-launchpad/fuel-ops/internal/transport"
	"github.com/fbo-launchpad/fuel-ops/pkg/logger"

	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateAircraft(dto CreateAircraftDTO) (*Aircraft, error)
	GetAircraft(tailNumber string) (*Aircraft, error)
	ListAircraft() ([]*Aircraft, error)
	UpdateAircraft(tailNumber string, dto UpdateAircraftDTO) (*Aircraft, error)
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

func (h *Handler) CreateAircraft(w http.ResponseWriter, r *http.Request) {
	var dto CreateAircraftDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Service.CreateAircraft(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) ListAircraft(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListAircraft()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"aircraft": list})
}

func (h *Handler) GetAircraft(w http.ResponseWriter, r *http.Request) {
	tailNumber := chi.URLParam(r, "tailNumber")
	if tailNumber == "" {
		h.WriteError(w, http.StatusBadRequest, "tail number is required")
		return
	}

	a, err := h.Service.GetAircraft(tailNumber)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) UpdateAircraft(w http.ResponseWriter, r *http.Request) {
	tailNumber := chi.URLParam(r, "tailNumber")
	if tailNumber == "" {
		h.WriteError(w, http.StatusBadRequest, "tail number is required")
		return
	}

	var dto UpdateAircraftDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Service.UpdateAircraft(tailNumber, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a)
}
