package handler

import (
	"net/http"

	"github.com/dangerclosesec/peloton/internal/middleware"
	"github.com/dangerclosesec/peloton/internal/model"
	"github.com/dangerclosesec/peloton/internal/service"
)

type RegisterRequest struct {
	DisplayName   string `json:"display_name"`
	PlatformName  string `json:"platform_name"`
	RatingID      int64  `json:"rating_id"`
	TermsAccepted bool   `json:"terms_accepted"`
}

type RiderResponse struct {
	BaseResponse
	Rider *model.Rider `json:"rider"`
}

type ProfileResponse struct {
	BaseResponse
	Profile *service.RiderProfile `json:"profile"`
}

type OrganizationsResponse struct {
	BaseResponse
	Organizations []model.Organization `json:"organizations"`
	Total         int64                `json:"total"`
}

// Register signs the caller up under the token's external id.
func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rider, err := a.engine.Register(r.Context(), service.RegisterInput{
		ExternalID:    middleware.ExternalID(r.Context()),
		DisplayName:   req.DisplayName,
		PlatformName:  req.PlatformName,
		RatingID:      req.RatingID,
		TermsAccepted: req.TermsAccepted,
	})
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, RiderResponse{BaseResponse{true}, rider})
}

func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := a.queries.ProfileByExternalID(r.Context(), middleware.ExternalID(r.Context()))
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ProfileResponse{BaseResponse{true}, profile})
}

// MyMemberships lists the caller's approved organizations, optionally
// narrowed with repeated kind query parameters.
func (a *API) MyMemberships(w http.ResponseWriter, r *http.Request) {
	riderID, ok := a.callerID(w, r)
	if !ok {
		return
	}

	var kinds []model.MembershipKind
	for _, k := range r.URL.Query()["kind"] {
		kinds = append(kinds, model.MembershipKind(k))
	}
	orgs, err := a.queries.MembershipsOf(r.Context(), riderID, kinds...)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, OrganizationsResponse{BaseResponse{true}, orgs, int64(len(orgs))})
}

func (a *API) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	profile, err := a.queries.Profile(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ProfileResponse{BaseResponse{true}, profile})
}
