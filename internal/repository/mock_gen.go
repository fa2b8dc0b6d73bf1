// internal/repository/mock_gen.go
package repository

//go:generate mockgen -typed -source=./membership.go -destination=../mocks/mock_membership_repository.go -package=mocks MembershipRepositoryIface
