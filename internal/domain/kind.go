package domain

import "errors"

// Kind classifies an error into the closed set of outcomes callers must handle.
type Kind string

const (
	KindUnknown            Kind = "unknown"
	KindNotFound           Kind = "not_found"
	KindDuplicate          Kind = "duplicate"
	KindPermissionDenied   Kind = "permission_denied"
	KindInvariantViolation Kind = "invariant_violation"
	KindAlreadyInState     Kind = "already_in_state"
	KindInvalidInput       Kind = "invalid_input"
	KindStoreUnavailable   Kind = "store_unavailable"
)

// OutcomeOK is the outcome recorded for a successful operation.
const OutcomeOK = "ok"

type outcome struct {
	err  error
	code string
	kind Kind
}

// outcomes is ordered: the first sentinel matched wins.
var outcomes = []outcome{
	{ErrRiderNotFound, "rider_not_found", KindNotFound},
	{ErrRiderNotRegistered, "rider_not_registered", KindNotFound},
	{ErrTargetNotRegistered, "target_not_registered", KindNotFound},
	{ErrOrganizationNotFound, "org_not_found", KindNotFound},
	{ErrRequestNotFound, "request_not_found", KindNotFound},
	{ErrMembershipNotFound, "membership_not_found", KindNotFound},
	{ErrNotFound, "not_found", KindNotFound},

	{ErrDuplicateName, "duplicate_name", KindDuplicate},
	{ErrDuplicateExternalID, "duplicate_external_id", KindDuplicate},
	{ErrDuplicateRatingID, "duplicate_rating_id", KindDuplicate},
	{ErrDuplicateExternalRef, "duplicate_external_ref", KindDuplicate},

	{ErrNotAnAdmin, "not_an_admin", KindPermissionDenied},
	{ErrRiderInactive, "rider_inactive", KindPermissionDenied},
	{ErrUnauthorized, "unauthorized", KindPermissionDenied},

	{ErrLastAdmin, "last_admin_violation", KindInvariantViolation},
	{ErrAlreadyMember, "already_member", KindInvariantViolation},
	{ErrInvalidParent, "invalid_parent", KindInvariantViolation},
	{ErrOrganizationInactive, "org_inactive", KindInvariantViolation},

	{ErrAlreadyInState, "already_in_state", KindAlreadyInState},

	{ErrTermsNotAccepted, "terms_not_accepted", KindInvalidInput},
	{ErrInvalidOrgType, "invalid_org_type", KindInvalidInput},
	{ErrInvalidMembershipKind, "invalid_membership_kind", KindInvalidInput},
	{ErrInvalidInput, "invalid_input", KindInvalidInput},

	{ErrStoreUnavailable, "store_unavailable", KindStoreUnavailable},
}

func lookup(err error) (outcome, bool) {
	for _, o := range outcomes {
		if errors.Is(err, o.err) {
			return o, true
		}
	}
	return outcome{}, false
}

// KindOf returns the kind of err. Errors outside the taxonomy are reported as
// store failures so callers never see an unclassified outcome.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	if o, ok := lookup(err); ok {
		return o.kind
	}
	return KindStoreUnavailable
}

// OutcomeOf returns the stable outcome code for err, OutcomeOK for nil.
func OutcomeOf(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if o, ok := lookup(err); ok {
		return o.code
	}
	return "store_unavailable"
}

// IsTerminal reports whether err is a known outcome that must never be retried.
func IsTerminal(err error) bool {
	o, ok := lookup(err)
	return ok && o.kind != KindStoreUnavailable
}
