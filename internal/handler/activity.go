package handler

import (
	"net/http"
	"time"

	"github.com/dangerclosesec/peloton/internal/model"
	"github.com/dangerclosesec/peloton/internal/repository"
	"github.com/google/uuid"
)

type ActivityResponse struct {
	BaseResponse
	Events []model.ActivityEvent `json:"events"`
	Total  int64                 `json:"total"`
}

// Activity handles requests to retrieve activity events with filtering
func (a *API) Activity(w http.ResponseWriter, r *http.Request) {
	params := repository.QueryParams{}
	q := r.URL.Query()

	if orgID := q.Get("organization_id"); orgID != "" {
		id, err := uuid.Parse(orgID)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid organization_id")
			return
		}
		params.OrganizationID = &id
	}

	if actorID := q.Get("actor_id"); actorID != "" {
		id, err := uuid.Parse(actorID)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid actor_id")
			return
		}
		params.ActorID = &id
	}

	params.Operation = q.Get("operation")
	params.Outcome = q.Get("outcome")

	if startTimeStr := q.Get("start_time"); startTimeStr != "" {
		startTime, err := time.Parse(time.RFC3339, startTimeStr)
		if err == nil {
			params.StartTime = startTime
		}
	}

	if endTimeStr := q.Get("end_time"); endTimeStr != "" {
		endTime, err := time.Parse(time.RFC3339, endTimeStr)
		if err == nil {
			params.EndTime = endTime
		}
	}

	params.Limit, params.Offset = pagination(r)

	events, total, err := a.queries.Activity(r.Context(), params)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ActivityResponse{BaseResponse{true}, events, total})
}
