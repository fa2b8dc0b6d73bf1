package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dangerclosesec/peloton/internal/domain"
	"github.com/dangerclosesec/peloton/internal/model"
	"github.com/dangerclosesec/peloton/internal/repository"
	"github.com/dangerclosesec/peloton/internal/service"
	"github.com/google/uuid"
)

type OrganizationResponse struct {
	BaseResponse
	Organization *model.Organization `json:"organization"`
}

type MembershipResponse struct {
	BaseResponse
	Membership *model.Membership `json:"membership"`
}

type MembersResponse struct {
	BaseResponse
	Members []service.MemberView `json:"members"`
}

type RidersResponse struct {
	BaseResponse
	Riders []model.Rider `json:"riders"`
}

type RiderRequest struct {
	RiderID uuid.UUID `json:"rider_id"`
}

type JoinRequest struct {
	Kind model.MembershipKind `json:"kind,omitempty"`
}

type LeaveRequest struct {
	Kind model.MembershipKind `json:"kind"`
}

type ActiveRequest struct {
	Active *bool `json:"active"`
}

func (a *API) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var input service.CreateOrganizationInput
	if !decodeJSON(w, r, &input) {
		return
	}

	org, err := a.engine.CreateOrganization(r.Context(), actor(r), input)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, OrganizationResponse{BaseResponse{true}, org})
}

// ListOrganizations filters by kind, name prefix, parent and active flag.
func (a *API) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.OrganizationFilter{
		Kind:       model.OrganizationKind(q.Get("kind")),
		NamePrefix: q.Get("prefix"),
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		respondWithDomainError(w, r, domain.ErrInvalidOrgType)
		return
	}
	if active, err := strconv.ParseBool(q.Get("active")); err == nil {
		filter.ActiveOnly = active
	}
	if parent := q.Get("parent_id"); parent != "" {
		id, err := uuid.Parse(parent)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "parent_id must be a uuid")
			return
		}
		filter.ParentID = &id
	}
	filter.Limit, filter.Offset = pagination(r)

	page, err := a.queries.ListOrganizations(r.Context(), filter)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, OrganizationsResponse{BaseResponse{true}, page.Organizations, page.Total})
}

func (a *API) GetOrganization(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	org, err := a.queries.Organization(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, OrganizationResponse{BaseResponse{true}, org})
}

func (a *API) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req ActiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Active == nil {
		respondWithError(w, http.StatusBadRequest, "active is required")
		return
	}

	org, err := a.engine.SetOrgActive(r.Context(), actor(r), id, *req.Active)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, OrganizationResponse{BaseResponse{true}, org})
}

func (a *API) Members(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	members, err := a.queries.Members(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, MembersResponse{BaseResponse{true}, members})
}

// PendingRequests is visible to the organization's admins only.
func (a *API) PendingRequests(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	callerID, ok := a.callerID(w, r)
	if !ok {
		return
	}

	admin, err := a.queries.IsAdmin(r.Context(), callerID, id)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	if !admin {
		respondWithDomainError(w, r, domain.ErrNotAnAdmin)
		return
	}

	riders, err := a.queries.PendingRequestsFor(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, RidersResponse{BaseResponse{true}, riders})
}

func (a *API) RequestJoin(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req JoinRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}

	m, err := a.engine.RequestJoin(r.Context(), actor(r), id, req.Kind)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusAccepted, MembershipResponse{BaseResponse{true}, m})
}

func (a *API) ApproveJoin(w http.ResponseWriter, r *http.Request) {
	orgID, riderID, ok := orgAndRider(w, r)
	if !ok {
		return
	}
	m, err := a.engine.ApproveJoin(r.Context(), actor(r), riderID, orgID)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, MembershipResponse{BaseResponse{true}, m})
}

func (a *API) RejectJoin(w http.ResponseWriter, r *http.Request) {
	orgID, riderID, ok := orgAndRider(w, r)
	if !ok {
		return
	}
	if err := a.engine.RejectJoin(r.Context(), actor(r), riderID, orgID); err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) AddMember(w http.ResponseWriter, r *http.Request) {
	a.grant(w, r, a.engine.AddMember)
}

func (a *API) AddAdmin(w http.ResponseWriter, r *http.Request) {
	a.grant(w, r, a.engine.AddAdmin)
}

type grantFunc func(ctx context.Context, approver service.ActorIdentity, targetRiderID, orgID uuid.UUID) (*model.Membership, error)

func (a *API) grant(w http.ResponseWriter, r *http.Request, fn grantFunc) {
	orgID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req RiderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RiderID == uuid.Nil {
		respondWithDomainError(w, r, fmt.Errorf("%w: rider_id is required", domain.ErrInvalidInput))
		return
	}

	m, err := fn(r.Context(), actor(r), req.RiderID, orgID)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, MembershipResponse{BaseResponse{true}, m})
}

func (a *API) RemoveMember(w http.ResponseWriter, r *http.Request) {
	orgID, riderID, ok := orgAndRider(w, r)
	if !ok {
		return
	}
	if err := a.engine.RemoveMember(r.Context(), actor(r), riderID, orgID); err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) RemoveAdmin(w http.ResponseWriter, r *http.Request) {
	orgID, riderID, ok := orgAndRider(w, r)
	if !ok {
		return
	}
	if err := a.engine.RemoveAdmin(r.Context(), actor(r), riderID, orgID); err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) Leave(w http.ResponseWriter, r *http.Request) {
	orgID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req LeaveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Kind.Valid() {
		respondWithDomainError(w, r, domain.ErrInvalidMembershipKind)
		return
	}

	if err := a.engine.Leave(r.Context(), actor(r), orgID, req.Kind); err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func orgAndRider(w http.ResponseWriter, r *http.Request) (orgID, riderID uuid.UUID, ok bool) {
	if orgID, ok = uuidParam(w, r, "id"); !ok {
		return
	}
	riderID, ok = uuidParam(w, r, "riderID")
	return
}
