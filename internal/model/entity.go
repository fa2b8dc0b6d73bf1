package model

// Entity represents an authorization entity such as club:<id>
type Entity struct {
	Type string
	ID   string
}

// Subject represents an authorization subject such as rider:<id>
type Subject struct {
	Type string
	ID   string
}

type RelationOp string

const (
	RelationWrite  RelationOp = "write"
	RelationDelete RelationOp = "delete"
)

// RelationChange is one tuple to mirror into the authorization system.
type RelationChange struct {
	Op       RelationOp
	Entity   Entity
	Relation string
	Subject  Subject
}

const SubjectRider = "rider"

// Key identifies the tuple regardless of Op.
func (c RelationChange) Key() string {
	return c.Entity.Type + ":" + c.Entity.ID + "#" + c.Relation + "@" + c.Subject.Type + ":" + c.Subject.ID
}

// MembershipRelation maps a membership onto its authorization tuple.
func MembershipRelation(op RelationOp, m *Membership) RelationChange {
	return RelationChange{
		Op:       op,
		Entity:   Entity{Type: string(m.Kind.OrganizationKind()), ID: m.OrganizationID.String()},
		Relation: string(m.Kind.Role()),
		Subject:  Subject{Type: SubjectRider, ID: m.RiderID.String()},
	}
}

// ParentRelation maps a team's parent club onto its authorization tuple.
func ParentRelation(op RelationOp, team *Organization) RelationChange {
	return RelationChange{
		Op:       op,
		Entity:   Entity{Type: string(OrgKindTeam), ID: team.ID.String()},
		Relation: "parent",
		Subject:  Subject{Type: string(OrgKindClub), ID: team.ParentID.String()},
	}
}
