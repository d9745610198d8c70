package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	authorization "quorum/contexts/identity-access/authorization-service"
	authzerrors "quorum/contexts/identity-access/authorization-service/domain/errors"
	authzhttp "quorum/contexts/identity-access/authorization-service/transport/http"
	formworkflow "quorum/contexts/tally-operations/form-workflow-service"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "quorum/internal/platform/httpserver/docs"
)

type Server struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	addr          string
	tally         formworkflow.Module
	authorization authorization.Module
}

func New(
	tally formworkflow.Module,
	authorizationModule authorization.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:           http.NewServeMux(),
		logger:        logger,
		addr:          addr,
		tally:         tally,
		authorization: authorizationModule,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.registerTallyRoutes()

	s.mux.HandleFunc("POST /api/authz/v1/check", s.handleAuthzCheck)
	s.mux.HandleFunc("POST /api/authz/v1/check-batch", s.handleAuthzCheckBatch)
	s.mux.HandleFunc("GET /api/authz/v1/users/{user_id}/roles", s.handleAuthzListUserRoles)
	s.mux.HandleFunc("POST /api/authz/v1/users/{user_id}/roles/grant", s.handleAuthzGrantRole)
	s.mux.HandleFunc("POST /api/authz/v1/users/{user_id}/roles/revoke", s.handleAuthzRevokeRole)
	s.mux.HandleFunc("POST /api/authz/v1/delegations", s.handleAuthzCreateDelegation)
}

// resolveActor reads the caller identity from X-User-Id and resolves the
// caller's active roles through the authorization module.
func (s *Server) resolveActor(r *http.Request) (string, []string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		return "", nil, false
	}

	resp, err := s.authorization.Handler.ListUserRolesHandler(r.Context(), userID)
	if err != nil {
		s.logger.Warn("role resolution failed",
			"event", "http_role_resolution_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"user_id", userID,
			"error", err.Error(),
		)
		return userID, nil, true
	}

	roles := make([]string, 0, len(resp.Roles))
	for _, role := range resp.Roles {
		roles = append(roles, role.RoleID)
	}
	return userID, roles, true
}

func (s *Server) handleAuthzCheck(w http.ResponseWriter, r *http.Request) {
	var req authzhttp.CheckPermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthzError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	userID := resolveAuthzUserID(req.UserID, r)
	resp, err := s.authorization.Handler.CheckPermissionHandler(r.Context(), userID, req)
	if err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAuthzCheckBatch(w http.ResponseWriter, r *http.Request) {
	var req authzhttp.CheckBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthzError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	userID := resolveAuthzUserID(req.UserID, r)
	resp, err := s.authorization.Handler.CheckBatchHandler(r.Context(), userID, req)
	if err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAuthzListUserRoles(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	resp, err := s.authorization.Handler.ListUserRolesHandler(r.Context(), userID)
	if err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAuthzGrantRole(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	adminID := r.Header.Get("X-User-Id")
	if strings.TrimSpace(adminID) == "" {
		adminID = r.Header.Get("X-Admin-Id")
	}

	var req authzhttp.GrantRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthzError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.authorization.Handler.GrantRoleHandler(
		r.Context(),
		userID,
		adminID,
		r.Header.Get("Idempotency-Key"),
		req,
	)
	if err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAuthzRevokeRole(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	adminID := r.Header.Get("X-User-Id")
	if strings.TrimSpace(adminID) == "" {
		adminID = r.Header.Get("X-Admin-Id")
	}

	var req authzhttp.RevokeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthzError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.authorization.Handler.RevokeRoleHandler(
		r.Context(),
		userID,
		adminID,
		r.Header.Get("Idempotency-Key"),
		req,
	)
	if err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAuthzCreateDelegation(w http.ResponseWriter, r *http.Request) {
	var req authzhttp.CreateDelegationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAuthzError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.authorization.Handler.CreateDelegationHandler(
		r.Context(),
		r.Header.Get("Idempotency-Key"),
		req,
	)
	if err != nil {
		writeAuthzDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeAuthzDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authzerrors.ErrInvalidPermission):
		writeAuthzError(w, http.StatusUnprocessableEntity, "invalid_permission", err.Error())
	case errors.Is(err, authzerrors.ErrInvalidUserID),
		errors.Is(err, authzerrors.ErrInvalidRoleID),
		errors.Is(err, authzerrors.ErrInvalidAdminID),
		errors.Is(err, authzerrors.ErrInvalidDelegation):
		writeAuthzError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, authzerrors.ErrRoleNotFound),
		errors.Is(err, authzerrors.ErrUserNotFound):
		writeAuthzError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, authzerrors.ErrRoleAlreadyAssigned),
		errors.Is(err, authzerrors.ErrRoleNotAssigned),
		errors.Is(err, authzerrors.ErrIdempotencyConflict):
		writeAuthzError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, authzerrors.ErrIdempotencyKeyRequired):
		writeAuthzError(w, http.StatusBadRequest, "idempotency_key_required", err.Error())
	case errors.Is(err, authzerrors.ErrForbidden):
		writeAuthzError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		writeAuthzError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeAuthzError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, authzhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func resolveAuthzUserID(bodyUserID string, r *http.Request) string {
	if strings.TrimSpace(bodyUserID) != "" {
		return bodyUserID
	}
	if fromHeader := strings.TrimSpace(r.Header.Get("X-User-Id")); fromHeader != "" {
		return fromHeader
	}
	return strings.TrimSpace(r.Header.Get("X-Subject-Id"))
}
