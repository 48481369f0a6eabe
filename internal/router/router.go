// Package router wires the manager routes to their handlers through
// the authorization chain.
package router

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/DheerG/LogicPull/internal/auth"
	"github.com/DheerG/LogicPull/internal/deliverables"
	"github.com/DheerG/LogicPull/internal/handlers"
	"github.com/DheerG/LogicPull/internal/middleware"
)

// Deps carries everything the route tree needs.
type Deps struct {
	Interviews handlers.InterviewStore
	Outputs    handlers.OutputStore
	Users      auth.UserSource
	Layout     deliverables.Layout
	Copier     *deliverables.Copier
	TokenSalt  string
}

// interviewSource adapts the handler-facing store to the narrower
// lookup the auth chain needs.
type interviewSource struct{ handlers.InterviewStore }

func New(d Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Recover)

	chain := auth.NewChain(d.Users, interviewSource{d.Interviews}, d.TokenSalt)
	ih := handlers.NewInterviewHandler(d.Interviews, d.Layout, d.Copier)
	oh := handlers.NewOutputHandler(d.Outputs, d.Layout)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/manager", func(r chi.Router) {
		r.Use(chain.Validated)

		r.Route("/interviews", func(r chi.Router) {
			r.With(auth.Privileges("view_completed_interviews")).
				Get("/completed", oh.Completed)

			r.Route("/add", func(r chi.Router) {
				r.Use(auth.Privileges("add_interview"))
				r.Get("/", ih.AddForm)
				r.Post("/", ih.AddSubmit)
			})

			r.Route("/remove/{id}", func(r chi.Router) {
				r.Use(chain.ValidateInterview, auth.Privileges("remove_interview"))
				r.Get("/", ih.RemoveForm)
				r.Post("/", ih.RemoveSubmit)
			})

			r.Route("/clone/{id}", func(r chi.Router) {
				r.Use(chain.ValidateInterview, auth.Privileges("clone_interview"))
				r.Get("/", ih.CloneForm)
				r.Post("/", ih.CloneSubmit)
			})
		})

		r.Route("/interview/{id}", func(r chi.Router) {
			r.Use(chain.ValidateInterview)

			r.With(auth.Privileges("edit_interviews")).Get("/", ih.Show)
			r.Get("/stage", ih.Stage)
			r.With(auth.Privileges("edit_interviews")).Get("/edit", ih.Edit)
			r.With(auth.Privileges("view_report")).Get("/report", ih.Report)

			r.Route("/lock", func(r chi.Router) {
				r.Use(auth.Privileges("lock_interview"))
				r.Get("/", ih.LockForm)
				r.Post("/", ih.LockSubmit)
			})

			r.Route("/live", func(r chi.Router) {
				r.Use(auth.Privileges("change_interview_status"))
				r.Get("/", ih.LiveForm)
				r.Post("/", ih.LiveSubmit)
			})

			r.Route("/on_complete", func(r chi.Router) {
				r.Use(auth.Privileges("edit_on_complete"))
				r.Get("/", ih.OnCompleteForm)
				r.Post("/", ih.OnCompleteSubmit)
			})
		})

		r.With(
			chain.ValidateInterviewParam("interview"),
			auth.Privileges("download_answer_set"),
		).Get("/download/completed/answers/{id}/{interview}/{hash}", oh.Download)
	})

	return r
}
