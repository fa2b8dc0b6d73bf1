// internal/repository/repository.go
package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store groups the repositories that share one database handle. A Store
// obtained inside Transaction is bound to that transaction.
type Store struct {
	db            *gorm.DB
	riders        *RiderRepository
	organizations *OrganizationRepository
	memberships   MembershipRepositoryIface
	activity      *ActivityRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		riders:        NewRiderRepository(db),
		organizations: NewOrganizationRepository(db),
		memberships:   NewMembershipRepository(db),
		activity:      NewActivityRepository(db),
	}
}

func (s *Store) Riders() *RiderRepository               { return s.riders }
func (s *Store) Organizations() *OrganizationRepository { return s.organizations }
func (s *Store) Memberships() MembershipRepositoryIface { return s.memberships }
func (s *Store) Activity() *ActivityRepository          { return s.activity }

// WithMemberships returns a copy of s reading memberships from m. Stores
// handed out by Transaction go back to the database.
func (s *Store) WithMemberships(m MembershipRepositoryIface) *Store {
	c := *s
	c.memberships = m
	return &c
}

// DB returns the underlying database connection
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn inside a database transaction. The transaction commits
// when fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// forUpdate adds a row lock on dialects that support one. SQLite serialises
// writers on the whole database instead.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}
