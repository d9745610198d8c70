package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"quorum/contexts/tally-operations/form-workflow-service/domain/entities"
	tallyerrors "quorum/contexts/tally-operations/form-workflow-service/domain/errors"
	"quorum/contexts/tally-operations/form-workflow-service/ports"
	tallyhttp "quorum/contexts/tally-operations/form-workflow-service/transport/http"
)

func (s *Server) registerTallyRoutes() {
	s.mux.HandleFunc("POST /api/tally/v1/intake/barcode", s.handleSubmitBarcode)
	s.mux.HandleFunc("POST /api/tally/v1/forms", s.handleCreateForm)
	s.mux.HandleFunc("GET /api/tally/v1/forms", s.handleListForms)
	s.mux.HandleFunc("GET /api/tally/v1/forms/{form_id}", s.handleGetForm)
	s.mux.HandleFunc("GET /api/tally/v1/forms/{form_id}/history", s.handleFormHistory)

	s.mux.HandleFunc("POST /api/tally/v1/forms/{form_id}/intake", s.handleIntake)
	s.mux.HandleFunc("POST /api/tally/v1/forms/{form_id}/intake/confirm", s.handleConfirmIntake)
	s.mux.HandleFunc("POST /api/tally/v1/forms/{form_id}/intake/center-station", s.handleAssignCenterStation)

	s.mux.HandleFunc("POST /api/tally/v1/forms/{form_id}/data-entry", s.handleSubmitDataEntry)
	s.mux.HandleFunc("GET /api/tally/v1/forms/{form_id}/corrections", s.handleCorrectionsPreview)
	s.mux.HandleFunc("POST /api/tally/v1/forms/{form_id}/corrections", s.handleSubmitCorrections)
	s.mux.HandleFunc("POST /api/tally/v1/forms/{form_id}/quality-control", s.handleQualityControl)

	s.mux.HandleFunc("POST /api/tally/v1/forms/{form_id}/audits", s.handleCreateAudit)
	s.mux.HandleFunc("POST /api/tally/v1/forms/{form_id}/audits/review", s.handleAuditReview)
	s.mux.HandleFunc("POST /api/tally/v1/forms/{form_id}/clearances", s.handleCreateClearance)
	s.mux.HandleFunc("POST /api/tally/v1/forms/{form_id}/clearances/review", s.handleClearanceReview)

	s.mux.HandleFunc("POST /api/tally/v1/forms/{form_id}/recall", s.handleRequestRecall)
	s.mux.HandleFunc("POST /api/tally/v1/recalls/{request_id}/resolve", s.handleResolveRecall)

	s.mux.HandleFunc("POST /api/tally/v1/quarantine-checks", s.handleConfigureQuarantine)

	s.mux.HandleFunc("GET /api/tally/v1/tallies/{tally_id}/results", s.handleCandidateTotals)
	s.mux.HandleFunc("GET /api/tally/v1/tallies/{tally_id}/duplicates", s.handleDuplicateVotes)

	s.mux.HandleFunc("GET /api/tally/v1/tallies/{tally_id}/exports/candidate-votes", s.handleExportCandidateVotes)
	s.mux.HandleFunc("GET /api/tally/v1/tallies/{tally_id}/exports/barcode-results", s.handleExportBarcodeResults)
	s.mux.HandleFunc("GET /api/tally/v1/tallies/{tally_id}/exports/duplicate-results", s.handleExportDuplicateResults)
	s.mux.HandleFunc("GET /api/tally/v1/forms/{form_id}/exports/history", s.handleExportFormHistory)
}

func (s *Server) tallyActor(w http.ResponseWriter, r *http.Request) (string, []string, bool) {
	userID, roles, ok := s.resolveActor(r)
	if !ok {
		writeTallyError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", nil, false
	}
	return userID, roles, true
}

func (s *Server) handleSubmitBarcode(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := s.tallyActor(w, r); !ok {
		return
	}

	var req tallyhttp.SubmitBarcodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTallyError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.tally.Handler.SubmitBarcodeHandler(r.Context(), req)
	if err != nil {
		writeTallyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	userID, roles, ok := s.tallyActor(w, r)
	if !ok {
		return
	}

	var req tallyhttp.CreateFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTallyError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.tally.Handler.CreateFormHandler(r.Context(), userID, roles, req)
	if err != nil {
		writeTallyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListForms(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := ports.FormFilter{
		TallyID:   query.Get("tally_id"),
		FormState: entities.FormState(query.Get("form_state")),
		CenterID:  query.Get("center_id"),
		BallotID:  query.Get("ballot_id"),
	}
	if raw := query.Get("station_number"); raw != "" {
		number, err := strconv.Atoi(raw)
		if err != nil {
			writeTallyError(w, http.StatusBadRequest, "invalid_station_number", "station_number must be an integer")
			return
		}
		filter.StationNumber = &number
	}

	resp, err := s.tally.Handler.ListFormsHandler(r.Context(), filter)
	if err != nil {
		writeTallyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetForm(w http.ResponseWriter, r *http.Request) {
	resp, err := s.tally.Handler.GetFormHandler(r.Context(), r.PathValue("form_id"))
	if err != nil {
		writeTallyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFormHistory(w http.ResponseWriter, r *http.Request) {
	resp, err := s.tally.Handler.FormHistoryHandler(r.Context(), r.PathValue("form_id"))
	if err != nil {
		writeTallyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIntake(w http.ResponseWriter, r *http.Request) {
	userID, roles, ok := s.tallyActor(w, r)
	if !ok {
		return
	}

	resp, err := s.tally.Handler.IntakeHandler(r.Context(), userID, roles, r.PathValue("form_id"))
	if errors.Is(err, tallyerrors.ErrDuplicateBlocked) {
		// The form was routed to clearance; report the outcome with the block.
		writeJSON(w, http.StatusConflict, resp)
		return
	}
	if err != nil {
		writeTallyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConfirmIntake(w http.ResponseWriter, r *http.Request) {
	userID, roles, ok := s.tallyActor(w, r)
	if !ok {
		return
	}

	var req tallyhttp.ConfirmIntakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTallyError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.tally.Handler.ConfirmIntakeHandler(r.Context(), userID, roles, r.PathValue("form_id"), req)
	if err != nil {
		writeTallyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssignCenterStation(w http.ResponseWriter, r *http.Request) {
	userID, roles, ok := s.tallyActor(w, r)
	if !ok {
		return
	}

	var req tallyhttp.AssignCenterStationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTallyError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.tally.Handler.AssignCenterStationHandler(r.Context(), userID, roles, r.PathValue("form_id"), req)
	if err != nil {
		writeTallyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitDataEntry(w http.ResponseWriter, r *http.Request) {
	userID, roles, ok := s.tallyActor(w, r)
	if !ok {
		return
	}

	var req tallyhttp.SubmitDataEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTallyError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.tally.Handler.SubmitDataEntryHandler(r.Context(), userID, roles, r.PathValue("form_id"), req)
	if err != nil {
		writeTallyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCorrectionsPreview(w http.ResponseWriter, r *http.Request) {
	userID, roles, ok := s.tallyActor(w, r)
	if !ok {
		return
	}

	resp, err := s.tally.Handler.CorrectionsPreviewHandler(r.Context(), userID, roles, r.PathValue("form_id"))
	if err != nil {
		writeTallyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitCorrections(w http.ResponseWriter, r *http.Request) {
	userID, roles, ok := s.tallyActor(w, r)
	if !ok {
		return
	}

	var req tallyhttp.SubmitCorrectionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTallyError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.tally.Handler.SubmitCorrectionsHandler(r.Context(), userID, roles, r.PathValue("form_id"), req)
	if err != nil {
		writeTallyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleQualityControl(w http.ResponseWriter, r *http.Request) {
	userID, roles, ok := s.tallyActor(w, r)
	if !ok {
		return
	}

	var req tallyhttp.QualityControlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTallyError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.tally.Handler.QualityControlHandler(r.Context(), userID, roles, r.PathValue("form_id"), req)
	if err != nil {
		writeTallyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateAudit(w http.ResponseWriter, r *http.Request) {
	userID, roles, ok := s.tallyActor(w, r)
	if !ok {
		return
	}

	resp, err := s.tally.Handler.CreateAuditHandler(r.Context(), userID, roles, r.PathValue("form_id"))
	if err != nil {
		writeTallyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleAuditReview(w http.ResponseWriter, r *http.Request) {
	userID, roles, ok := s.tallyActor(w, r)
	if !ok {
		return
	}

	var req tallyhttp.AuditReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTallyError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.tally.Handler.AuditReviewHandler(r.Context(), userID, roles, r.PathValue("form_id"), req)
	if err != nil {
		writeTallyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateClearance(w http.ResponseWriter, r *http.Request) {
	userID, roles, ok := s.tallyActor(w, r)
	if !ok {
		return
	}

	var req tallyhttp.CreateClearanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTallyError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.tally.Handler.CreateClearanceHandler(r.Context(), userID, roles, r.PathValue("form_id"), req)
	if err != nil {
		writeTallyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleClearanceReview(w http.ResponseWriter, r *http.Request) {
	userID, roles, ok := s.tallyActor(w, r)
	if !ok {
		return
	}

	var req tallyhttp.ClearanceReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTallyError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.tally.Handler.ClearanceReviewHandler(r.Context(), userID, roles, r.PathValue("form_id"), req)
	if err != nil {
		writeTallyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRequestRecall(w http.ResponseWriter, r *http.Request) {
	userID, roles, ok := s.tallyActor(w, r)
	if !ok {
		return
	}

	var req tallyhttp.RequestRecallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTallyError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.tally.Handler.RequestRecallHandler(r.Context(), userID, roles, r.PathValue("form_id"), req)
	if err != nil {
		writeTallyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleResolveRecall(w http.ResponseWriter, r *http.Request) {
	userID, roles, ok := s.tallyActor(w, r)
	if !ok {
		return
	}

	var req tallyhttp.ResolveRecallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTallyError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.tally.Handler.ResolveRecallHandler(r.Context(), userID, roles, r.PathValue("request_id"), req)
	if err != nil {
		writeTallyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConfigureQuarantine(w http.ResponseWriter, r *http.Request) {
	userID, roles, ok := s.tallyActor(w, r)
	if !ok {
		return
	}

	var req tallyhttp.ConfigureQuarantineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTallyError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.tally.Handler.ConfigureQuarantineHandler(r.Context(), userID, roles, req)
	if err != nil {
		writeTallyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCandidateTotals(w http.ResponseWriter, r *http.Request) {
	topN := 0
	if raw := r.URL.Query().Get("top_n"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			writeTallyError(w, http.StatusBadRequest, "invalid_top_n", "top_n must be an integer")
			return
		}
		topN = value
	}

	resp, err := s.tally.Handler.CandidateTotalsHandler(r.Context(), r.PathValue("tally_id"), topN)
	if err != nil {
		writeTallyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDuplicateVotes(w http.ResponseWriter, r *http.Request) {
	resp, err := s.tally.Handler.DuplicateVotesHandler(r.Context(), r.PathValue("tally_id"))
	if err != nil {
		writeTallyDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExportCandidateVotes(w http.ResponseWriter, r *http.Request) {
	topN := 0
	if raw := r.URL.Query().Get("top_n"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			writeTallyError(w, http.StatusBadRequest, "invalid_top_n", "top_n must be an integer")
			return
		}
		topN = value
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="candidate_votes.csv"`)
	if err := s.tally.Handler.ExportCandidateVotesHandler(r.Context(), w, r.PathValue("tally_id"), topN); err != nil {
		s.logExportError("candidate_votes", err)
	}
}

func (s *Server) handleExportBarcodeResults(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="barcode_results.csv"`)
	if err := s.tally.Handler.ExportBarcodeResultsHandler(r.Context(), w, r.PathValue("tally_id")); err != nil {
		s.logExportError("barcode_results", err)
	}
}

func (s *Server) handleExportDuplicateResults(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="duplicate_results.csv"`)
	if err := s.tally.Handler.ExportDuplicateResultsHandler(r.Context(), w, r.PathValue("tally_id")); err != nil {
		s.logExportError("duplicate_results", err)
	}
}

func (s *Server) handleExportFormHistory(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="form_history.csv"`)
	if err := s.tally.Handler.ExportFormHistoryHandler(r.Context(), w, r.PathValue("form_id")); err != nil {
		s.logExportError("form_history", err)
	}
}

func (s *Server) logExportError(export string, err error) {
	s.logger.Error("csv export failed",
		"event", "http_export_failed",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"export", export,
		"error", err.Error(),
	)
}

func writeTallyDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tallyerrors.ErrFormNotFound),
		errors.Is(err, tallyerrors.ErrTallyNotFound),
		errors.Is(err, tallyerrors.ErrCenterNotFound),
		errors.Is(err, tallyerrors.ErrStationNotFound),
		errors.Is(err, tallyerrors.ErrBallotNotFound),
		errors.Is(err, tallyerrors.ErrCandidateNotFound),
		errors.Is(err, tallyerrors.ErrRequestNotFound),
		errors.Is(err, tallyerrors.ErrReviewNotFound):
		writeTallyError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, tallyerrors.ErrBarcodeMismatch),
		errors.Is(err, tallyerrors.ErrInvalidBarcode),
		errors.Is(err, tallyerrors.ErrInvalidInput),
		errors.Is(err, tallyerrors.ErrUnexpectedPost),
		errors.Is(err, tallyerrors.ErrRejectReasonRequired):
		writeTallyError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, tallyerrors.ErrUnresolvedCorrections):
		writeTallyError(w, http.StatusUnprocessableEntity, "unresolved_corrections", err.Error())
	case errors.Is(err, tallyerrors.ErrForbidden):
		writeTallyError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, tallyerrors.ErrInvalidState),
		errors.Is(err, tallyerrors.ErrBallotMismatch),
		errors.Is(err, tallyerrors.ErrSessionMismatch),
		errors.Is(err, tallyerrors.ErrSuspiciousOperation),
		errors.Is(err, tallyerrors.ErrRecallAlreadyPending),
		errors.Is(err, tallyerrors.ErrRequestAlreadyActioned),
		errors.Is(err, tallyerrors.ErrFormNotArchived),
		errors.Is(err, tallyerrors.ErrAutoCleared):
		writeTallyError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeTallyError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeTallyError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, tallyhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
