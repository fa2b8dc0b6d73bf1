package handler

import (
	"github.com/dangerclosesec/peloton/internal/auth"
	"github.com/dangerclosesec/peloton/internal/middleware"
	"github.com/dangerclosesec/peloton/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// API serves the rider, organization and activity endpoints.
type API struct {
	engine  *service.Engine
	queries *service.QueryService
}

func NewAPI(engine *service.Engine, queries *service.QueryService) *API {
	return &API{engine: engine, queries: queries}
}

// Mount registers every endpoint on r behind bearer authentication.
func (a *API) Mount(r chi.Router, tokens *auth.TokenManager) {
	r.Group(func(r chi.Router) {
		r.Use(chimw.AllowContentType("application/json"))
		r.Use(middleware.AuthMiddleware(tokens))

		r.Post("/riders", a.Register)
		r.Get("/riders/{id}/profile", a.Profile)
		r.Get("/me", a.Me)
		r.Get("/me/memberships", a.MyMemberships)

		r.Route("/organizations", func(r chi.Router) {
			r.Post("/", a.CreateOrganization)
			r.Get("/", a.ListOrganizations)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", a.GetOrganization)
				r.Put("/active", a.SetActive)
				r.Get("/members", a.Members)
				r.Post("/members", a.AddMember)
				r.Delete("/members/{riderID}", a.RemoveMember)
				r.Post("/admins", a.AddAdmin)
				r.Delete("/admins/{riderID}", a.RemoveAdmin)
				r.Get("/requests", a.PendingRequests)
				r.Post("/requests/{riderID}/approve", a.ApproveJoin)
				r.Post("/requests/{riderID}/reject", a.RejectJoin)
				r.Post("/join", a.RequestJoin)
				r.Post("/leave", a.Leave)
			})
		})

		r.Get("/activity", a.Activity)
	})
}
