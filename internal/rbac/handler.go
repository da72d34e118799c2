package rbac

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fbo-launchpad/fuel-ops/internal/transport"
	"github.com/fbo-launchpad/fuel-ops/pkg/logger"

	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListPermissions() ([]Permission, error)
	ListRoles() ([]Role, error)
	GetRole(id int64) (*Role, error)
	CreateRole(dto CreateRoleDTO) (*Role, error)
	UpdateRole(id int64, dto UpdateRoleDTO) (*Role, error)
	DeleteRole(id int64) error
	GrantPermission(roleID, permissionID int64) error
	RevokePermission(roleID, permissionID int64) error
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

func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	permissions, err := h.Service.ListPermissions()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"permissions": permissions})
}

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Service.ListRoles()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]any{"roles": roles})
}

func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	role, err := h.Service.GetRole(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var dto CreateRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.Service.CreateRole(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, role)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	var dto UpdateRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.Service.UpdateRole(id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	if err := h.Service.DeleteRole(id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "role deleted"})
}

func (h *Handler) GrantPermission(w http.ResponseWriter, r *http.Request) {
	roleID, err := h.pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid role id")
		return
	}
	permissionID, err := h.pathID(r, "permissionID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid permission id")
		return
	}

	if err := h.Service.GrantPermission(roleID, permissionID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "permission granted"})
}

func (h *Handler) RevokePermission(w http.ResponseWriter, r *http.Request) {
	roleID, err := h.pathID(r, "id")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid role id")
		return
	}
	permissionID, err := h.pathID(r, "permissionID")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid permission id")
		return
	}

	if err := h.Service.RevokePermission(roleID, permissionID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "permission revoked"})
}

func (h *Handler) pathID(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, key), 10, 64)
}
