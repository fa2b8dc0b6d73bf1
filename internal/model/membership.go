// internal/model/membership.go
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MembershipKind string

const (
	KindClubAdmin  MembershipKind = "club_admin"
	KindClubMember MembershipKind = "club_member"
	KindTeamAdmin  MembershipKind = "team_admin"
	KindTeamMember MembershipKind = "team_member"
)

type ApprovalState string

const (
	StatePending  ApprovalState = "pending"
	StateApproved ApprovalState = "approved"
)

// Role is the level a membership grants inside an organization.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

var membershipKinds = map[MembershipKind]struct {
	org  OrganizationKind
	role Role
}{
	KindClubAdmin:  {OrgKindClub, RoleAdmin},
	KindClubMember: {OrgKindClub, RoleMember},
	KindTeamAdmin:  {OrgKindTeam, RoleAdmin},
	KindTeamMember: {OrgKindTeam, RoleMember},
}

// KindFor returns the membership kind for a role in an organization of kind org.
func KindFor(org OrganizationKind, role Role) MembershipKind {
	for k, v := range membershipKinds {
		if v.org == org && v.role == role {
			return k
		}
	}
	return ""
}

// KindsFor returns the member and admin kinds of an organization category.
func KindsFor(org OrganizationKind) []MembershipKind {
	return []MembershipKind{KindFor(org, RoleMember), KindFor(org, RoleAdmin)}
}

// AdminKinds lists every admin membership kind.
func AdminKinds() []MembershipKind {
	return []MembershipKind{KindClubAdmin, KindTeamAdmin}
}

func (k MembershipKind) Valid() bool {
	_, ok := membershipKinds[k]
	return ok
}

// OrganizationKind returns the category the membership kind belongs to.
func (k MembershipKind) OrganizationKind() OrganizationKind {
	return membershipKinds[k].org
}

func (k MembershipKind) Role() Role {
	return membershipKinds[k].role
}

func (k MembershipKind) IsAdmin() bool {
	return k.Role() == RoleAdmin
}

// Membership links a rider to an organization. The key (rider, organization, kind)
// is unique, and so is (rider, kind): a rider sits in at most one club and one team.
type Membership struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RiderID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_membership_key,priority:1;uniqueIndex:idx_membership_rider_kind,priority:1" json:"rider_id"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_membership_key,priority:2;index" json:"organization_id"`
	Kind           MembershipKind `gorm:"type:text;not null;uniqueIndex:idx_membership_key,priority:3;uniqueIndex:idx_membership_rider_kind,priority:2" json:"kind"`
	State          ApprovalState  `gorm:"type:text;not null" json:"state"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// BeforeCreate hook for Membership
func (m *Membership) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if !m.Kind.Valid() {
		return fmt.Errorf("invalid membership kind: %s", m.Kind)
	}
	if m.State != StatePending && m.State != StateApproved {
		return fmt.Errorf("invalid approval state: %s", m.State)
	}
	return nil
}

func (m *Membership) Approved() bool {
	return m.State == StateApproved
}
