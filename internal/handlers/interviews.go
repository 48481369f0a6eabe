// Package handlers implements the manager HTTP surface: thin
// controllers that validate form input, call the repositories, and
// answer JSON.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/DheerG/LogicPull/internal/auth"
	"github.com/DheerG/LogicPull/internal/deliverables"
	"github.com/DheerG/LogicPull/internal/flow"
	"github.com/DheerG/LogicPull/internal/middleware"
	"github.com/DheerG/LogicPull/internal/models"
	"github.com/DheerG/LogicPull/internal/preload"
	"github.com/DheerG/LogicPull/internal/repo"
	"github.com/DheerG/LogicPull/internal/validate"
)

// Fixed validation messages, mirroring the original form copy.
const (
	msgAddInvalid    = "The name field is required and can only contain letters, numbers, and underscores. The description field is required."
	msgCloneInvalid  = "The name of the interview cannot be the same as the source. The name field is required and can only contain letters, numbers, and underscores. The description field is required."
	msgEmailsInvalid = "Any emails you enter must be valid. If you enter more than one email, they must be separated by a semi-colon."
)

// InterviewStore is the slice of the interviews repository the
// handlers need.
type InterviewStore interface {
	GetByID(ctx context.Context, id int) (*models.Interview, error)
	Create(ctx context.Context, d repo.Draft) (*models.Interview, error)
	Clone(ctx context.Context, src *models.Interview, d repo.Draft) (*models.Interview, error)
	Delete(ctx context.Context, id int) error
	SetDisabled(ctx context.Context, id int, disabled bool) error
	SetLocked(ctx context.Context, id int, locked bool) error
	SetLive(ctx context.Context, id int, live bool) error
	SetOnComplete(ctx context.Context, id int, oc models.OnComplete) error
}

// InterviewHandler wires the interview routes to persistence and the
// per-interview file tree.
type InterviewHandler struct {
	interviews InterviewStore
	layout     deliverables.Layout
	copier     *deliverables.Copier
}

func NewInterviewHandler(interviews InterviewStore, layout deliverables.Layout, copier *deliverables.Copier) *InterviewHandler {
	return &InterviewHandler{interviews: interviews, layout: layout, copier: copier}
}

// formResult is the uniform body for form GETs and rejected POSTs.
// Validation failures answer 200 with OK false, the way the original
// re-rendered the form with a message.
type formResult struct {
	OK       bool   `json:"ok"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	ID       int    `json:"id,omitempty"`
}

func formRejected(w http.ResponseWriter, msg string) {
	middleware.JSONResponse(w, http.StatusOK, formResult{OK: false, Message: msg})
}

func formAccepted(w http.ResponseWriter, redirect string, id int) {
	middleware.JSONResponse(w, http.StatusOK, formResult{OK: true, Redirect: redirect, ID: id})
}

// Show handles GET /manager/interview/{id}: the editor shell context.
func (h *InterviewHandler) Show(w http.ResponseWriter, r *http.Request) {
	iv := auth.InterviewFrom(r.Context())
	user := auth.UserFrom(r.Context())

	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"id":                 iv.ID,
		"name":               iv.Name,
		"email_notification": strings.Split(iv.OnComplete.EmailNotification, ","),
		"email_deliverables": strings.Split(iv.OnComplete.EmailDeliverables, ","),
		"user": map[string]string{
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

// Stage handles GET /manager/interview/{id}/stage: the viewer context,
// available to any user from the interview's group.
func (h *InterviewHandler) Stage(w http.ResponseWriter, r *http.Request) {
	iv := auth.InterviewFrom(r.Context())

	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"title": "LogicPull - " + iv.Name,
		"id":    iv.ID,
	})
}

// escapeAttr encodes quotes the way the editor page expects, to avoid
// character errors when the settings are loaded into attributes.
func escapeAttr(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "'", "&apos;"), `"`, "&quot;")
}

// Edit handles GET /manager/interview/{id}/edit: writes the preload
// script for the graph and answers the editor context.
func (h *InterviewHandler) Edit(w http.ResponseWriter, r *http.Request) {
	iv := auth.InterviewFrom(r.Context())

	filename, err := preload.Write(h.layout.PreloadDir(), iv.ID, iv.Data)
	if err != nil {
		middleware.WriteFault(w, r, err)
		return
	}

	steps := make([]string, len(iv.Steps))
	for i, s := range iv.Steps {
		steps[i] = escapeAttr(s)
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"interview": iv.ID,
		"data":      filename,
		"interview_settings": map[string]any{
			"name":        iv.Name,
			"description": escapeAttr(iv.Description),
			"start":       iv.Start,
			"steps":       steps,
		},
	})
}

// AddForm handles GET /manager/interviews/add.
func (h *InterviewHandler) AddForm(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, formResult{OK: true})
}

// AddSubmit handles POST /manager/interviews/add: validates the form,
// creates the interview, and prepares its directories. Any failure
// after the insert rolls the whole creation back so no orphaned row or
// directory survives.
func (h *InterviewHandler) AddSubmit(w http.ResponseWriter, r *http.Request) {
	name := validate.Clean(r.PostFormValue("name"))
	description := validate.Clean(r.PostFormValue("description"))

	if !validate.Required(name) || !validate.Variable(name) ||
		!validate.Required(description) || !validate.Label(description) {
		formRejected(w, msgAddInvalid)
		return
	}

	user := auth.UserFrom(r.Context())
	iv, err := h.interviews.Create(r.Context(), repo.Draft{
		Name:        name,
		Description: description,
		Creator:     user.ID,
		Group:       user.Group,
	})
	if err != nil {
		middleware.WriteFault(w, r, err)
		return
	}

	if err := h.layout.CreateDirs(iv.Name, iv.ID); err != nil {
		h.rollback(r.Context(), iv)
		middleware.WriteFault(w, r, err)
		return
	}

	slog.Info("interview created", "id", iv.ID, "name", iv.Name, "creator", user.ID)
	formAccepted(w, "/manager", iv.ID)
}

// rollback undoes a half-created interview: directories first, then the
// row itself.
func (h *InterviewHandler) rollback(ctx context.Context, iv *models.Interview) {
	if err := h.layout.RemoveDirs(iv.Name, iv.ID); err != nil {
		slog.Error("rollback: removing directories", "id", iv.ID, "error", err)
	}
	if err := h.interviews.Delete(ctx, iv.ID); err != nil {
		slog.Error("rollback: deleting interview", "id", iv.ID, "error", err)
	}
}

// RemoveForm handles GET /manager/interviews/remove/{id}.
func (h *InterviewHandler) RemoveForm(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, formResult{OK: true})
}

// RemoveSubmit handles POST /manager/interviews/remove/{id}: a soft
// disable. The interview stays in the store, invisible to users.
func (h *InterviewHandler) RemoveSubmit(w http.ResponseWriter, r *http.Request) {
	iv := auth.InterviewFrom(r.Context())

	if err := h.interviews.SetDisabled(r.Context(), iv.ID, true); err != nil {
		middleware.WriteFault(w, r, err)
		return
	}

	slog.Info("interview disabled", "id", iv.ID)
	formAccepted(w, "/manager", iv.ID)
}

// CloneForm handles GET /manager/interviews/clone/{id}.
func (h *InterviewHandler) CloneForm(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, formResult{OK: true})
}

// CloneSubmit handles POST /manager/interviews/clone/{id}: deep-copies
// the source interview under a new name and id, then copies every
// deliverable file into the new upload directory. The copy batch is
// all-or-nothing; any failure rolls back the clone entirely.
func (h *InterviewHandler) CloneSubmit(w http.ResponseWriter, r *http.Request) {
	src := auth.InterviewFrom(r.Context())

	name := validate.Clean(r.PostFormValue("name"))
	description := validate.Clean(r.PostFormValue("description"))

	if !validate.Required(name) || !validate.Variable(name) ||
		!validate.Required(description) || !validate.Label(description) ||
		name == src.Name {
		formRejected(w, msgCloneInvalid)
		return
	}

	user := auth.UserFrom(r.Context())
	iv, err := h.interviews.Clone(r.Context(), src, repo.Draft{
		Name:        name,
		Description: description,
		Creator:     user.ID,
		Group:       user.Group,
	})
	if err != nil {
		middleware.WriteFault(w, r, err)
		return
	}

	if err := h.layout.CreateDirs(iv.Name, iv.ID); err != nil {
		h.rollback(r.Context(), iv)
		middleware.WriteFault(w, r, err)
		return
	}

	srcDir := h.layout.UploadDir(src.Name, src.ID)
	dstDir := h.layout.UploadDir(iv.Name, iv.ID)
	if err := h.copier.CopyAll(r.Context(), srcDir, dstDir, src.Deliverables); err != nil {
		h.rollback(r.Context(), iv)
		middleware.WriteFault(w, r, err)
		return
	}

	slog.Info("interview cloned", "source", src.ID, "id", iv.ID, "name", iv.Name)
	formAccepted(w, "/manager", iv.ID)
}

// LockForm handles GET /manager/interview/{id}/lock.
func (h *InterviewHandler) LockForm(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, formResult{OK: true})
}

// LockSubmit handles POST /manager/interview/{id}/lock. The form sends
// the current value; the negation is persisted.
func (h *InterviewHandler) LockSubmit(w http.ResponseWriter, r *http.Request) {
	iv := auth.InterviewFrom(r.Context())
	locked := r.PostFormValue("locked") != "true"

	if err := h.interviews.SetLocked(r.Context(), iv.ID, locked); err != nil {
		middleware.WriteFault(w, r, err)
		return
	}

	slog.Info("interview lock toggled", "id", iv.ID, "locked", locked)
	formAccepted(w, "/manager/interview/"+strconv.Itoa(iv.ID), iv.ID)
}

// LiveForm handles GET /manager/interview/{id}/live.
func (h *InterviewHandler) LiveForm(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, formResult{OK: true})
}

// LiveSubmit handles POST /manager/interview/{id}/live, same toggle
// convention as lock.
func (h *InterviewHandler) LiveSubmit(w http.ResponseWriter, r *http.Request) {
	iv := auth.InterviewFrom(r.Context())
	live := r.PostFormValue("live") != "true"

	if err := h.interviews.SetLive(r.Context(), iv.ID, live); err != nil {
		middleware.WriteFault(w, r, err)
		return
	}

	slog.Info("interview status toggled", "id", iv.ID, "live", live)
	formAccepted(w, "/manager/interview/"+strconv.Itoa(iv.ID), iv.ID)
}

// OnCompleteForm handles GET /manager/interview/{id}/on_complete.
func (h *InterviewHandler) OnCompleteForm(w http.ResponseWriter, r *http.Request) {
	iv := auth.InterviewFrom(r.Context())
	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"ok":          true,
		"on_complete": iv.OnComplete,
	})
}

// OnCompleteSubmit handles POST /manager/interview/{id}/on_complete.
// Both email lists must validate in full or nothing is accepted.
func (h *InterviewHandler) OnCompleteSubmit(w http.ResponseWriter, r *http.Request) {
	iv := auth.InterviewFrom(r.Context())

	notification, okN := validate.Emails(validate.Clean(r.PostFormValue("email_notification")))
	deliverableEmails, okD := validate.Emails(validate.Clean(r.PostFormValue("email_deliverables")))
	if !okN || !okD {
		formRejected(w, msgEmailsInvalid)
		return
	}

	oc := models.OnComplete{
		EmailDeliverablesToClient: r.PostFormValue("email_deliverables_to_client") == "on",
		EmailNotification:         notification,
		EmailDeliverables:         deliverableEmails,
	}

	if err := h.interviews.SetOnComplete(r.Context(), iv.ID, oc); err != nil {
		middleware.WriteFault(w, r, err)
		return
	}

	slog.Info("on_complete settings updated", "id", iv.ID)
	formAccepted(w, "/manager/interview/"+strconv.Itoa(iv.ID), iv.ID)
}

// Report handles GET /manager/interview/{id}/report: the ordered
// depth-first visit of the question graph.
func (h *InterviewHandler) Report(w http.ResponseWriter, r *http.Request) {
	iv := auth.InterviewFrom(r.Context())

	ordered := flow.DFS(iv.Start, iv.Data)
	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"interview": iv.ID,
		"ordered":   ordered,
		"graph":     flow.Adjacency(iv.Data),
	})
}
