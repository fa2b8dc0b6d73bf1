package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dangerclosesec/peloton/internal/domain"
	"github.com/dangerclosesec/peloton/internal/middleware"
	"github.com/dangerclosesec/peloton/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	BaseResponse
	Error   string    `json:"error"`
	Details *[]string `json:"details,omitempty"`
	Code    *string   `json:"error_code,omitempty"`
}

type BaseResponse struct {
	Ok bool `json:"ok"`
}

var kindStatus = map[domain.Kind]int{
	domain.KindNotFound:           http.StatusNotFound,
	domain.KindDuplicate:          http.StatusConflict,
	domain.KindPermissionDenied:   http.StatusForbidden,
	domain.KindInvariantViolation: http.StatusUnprocessableEntity,
	domain.KindAlreadyInState:     http.StatusConflict,
	domain.KindInvalidInput:       http.StatusBadRequest,
	domain.KindStoreUnavailable:   http.StatusServiceUnavailable,
}

// StatusFor returns the HTTP status an engine error is reported with.
func StatusFor(err error) int {
	if status, ok := kindStatus[domain.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondWithError sends an error response with a message
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

// respondWithDomainError reports err with its kind's status and outcome code.
// Store failures are logged and their detail withheld.
func respondWithDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	code := domain.OutcomeOf(err)
	message := err.Error()

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "error", err, "path", r.URL.Path, "requestID", chimw.GetReqID(r.Context()))
		message = "service temporarily unavailable"
	}
	respondWithJSON(w, status, ErrorResponse{Error: message, Code: &code})
}

// respondWithJSON sends a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondWithDomainError(w, r, fmt.Errorf("%w: malformed request body", domain.ErrInvalidInput))
		return false
	}
	return true
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		respondWithDomainError(w, r, fmt.Errorf("%w: %s must be a uuid", domain.ErrInvalidInput, name))
		return uuid.Nil, false
	}
	return id, true
}

func pagination(r *http.Request) (limit, offset int) {
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

// actor is the authenticated caller.
func actor(r *http.Request) service.ActorIdentity {
	return service.ActorByExternalID(middleware.ExternalID(r.Context()))
}

// callerID resolves the authenticated caller to a registered rider id.
func (a *API) callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	rider, err := a.queries.FindRiderByExternalID(r.Context(), middleware.ExternalID(r.Context()))
	if err != nil {
		if errors.Is(err, domain.ErrRiderNotFound) {
			err = domain.ErrRiderNotRegistered
		}
		respondWithDomainError(w, r, err)
		return uuid.Nil, false
	}
	return rider.ID, true
}
