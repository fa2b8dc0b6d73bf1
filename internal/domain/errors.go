// internal/domain/errors.go
package domain

import "errors"

var (
	// General errors
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrStoreUnavailable = errors.New("store unavailable")

	// Rider-related errors
	ErrRiderNotFound        = errors.New("rider not found")
	ErrRiderNotRegistered   = errors.New("rider not registered")
	ErrTargetNotRegistered  = errors.New("target rider not registered")
	ErrRiderInactive        = errors.New("rider is inactive")
	ErrTermsNotAccepted     = errors.New("terms of service not accepted")
	ErrDuplicateName        = errors.New("name already taken")
	ErrDuplicateExternalID  = errors.New("external id already registered")
	ErrDuplicateRatingID    = errors.New("rating id already registered")
	ErrDuplicateExternalRef = errors.New("external reference already registered")

	// Organization-related errors
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrOrganizationInactive = errors.New("organization is inactive")
	ErrInvalidOrgType       = errors.New("invalid organization type")
	ErrInvalidParent        = errors.New("parent must be an active club")

	// Membership-related errors
	ErrNotAnAdmin            = errors.New("not an admin of the organization")
	ErrAlreadyMember         = errors.New("already holds a membership of this kind")
	ErrRequestNotFound       = errors.New("join request not found")
	ErrMembershipNotFound    = errors.New("membership not found")
	ErrLastAdmin             = errors.New("organization must keep at least one admin")
	ErrAlreadyInState        = errors.New("already in requested state")
	ErrInvalidMembershipKind = errors.New("invalid membership kind")
)
