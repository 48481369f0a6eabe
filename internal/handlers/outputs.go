package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"

	"github.com/DheerG/LogicPull/internal/auth"
	"github.com/DheerG/LogicPull/internal/deliverables"
	"github.com/DheerG/LogicPull/internal/middleware"
	"github.com/DheerG/LogicPull/internal/models"
	"github.com/DheerG/LogicPull/internal/pkg/paginator"
	"github.com/DheerG/LogicPull/internal/validate"
	"github.com/DheerG/LogicPull/pkg/fault"
)

// OutputStore is the read-only slice of the outputs repository the
// handlers need.
type OutputStore interface {
	LatestForGroup(ctx context.Context, group, page int) (*paginator.PaginatedResponse[models.Output], error)
	GetByID(ctx context.Context, id int) (*models.Output, error)
}

// OutputHandler serves the completed-interview listing and the guarded
// answer-set download.
type OutputHandler struct {
	outputs OutputStore
	layout  deliverables.Layout
}

func NewOutputHandler(outputs OutputStore, layout deliverables.Layout) *OutputHandler {
	return &OutputHandler{outputs: outputs, layout: layout}
}

type completedRow struct {
	ID        int       `json:"id"`
	Interview int       `json:"interview"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	Received  string    `json:"received"`
}

// Completed handles GET /manager/interviews/completed: the latest
// outputs for the caller's group, newest first.
func (h *OutputHandler) Completed(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	res, err := h.outputs.LatestForGroup(r.Context(), user.Group, page)
	if err != nil {
		middleware.WriteFault(w, r, err)
		return
	}

	rows := make([]completedRow, len(res.Items))
	for i, out := range res.Items {
		rows[i] = completedRow{
			ID:        out.ID,
			Interview: out.InterviewID,
			Name:      out.Answers.Name,
			Date:      out.Date,
			Received:  humanize.Time(out.Date),
		}
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]any{
		"outputs":     rows,
		"page":        res.CurrentPage,
		"total_pages": res.TotalPages,
		"total":       res.TotalItems,
	})
}

// Download handles GET /manager/download/completed/answers/{id}/{interview}/{hash}.
// The output id alone is not enough: the caller must present the
// matching capability hash, and every failure mode answers with the
// same uniform not-found.
func (h *OutputHandler) Download(w http.ResponseWriter, r *http.Request) {
	rawID := validate.Clean(chi.URLParam(r, "id"))
	hash := validate.Clean(chi.URLParam(r, "hash"))

	if !validate.Integer(rawID) || !validate.Alphanum(hash) {
		middleware.NotFound(w)
		return
	}
	id, _ := strconv.Atoi(rawID)

	out, err := h.outputs.GetByID(r.Context(), id)
	if err != nil {
		if fault.IsNotFound(err) {
			middleware.NotFound(w)
			return
		}
		middleware.WriteFault(w, r, err)
		return
	}

	// group scoping: an output from another tenant is indistinguishable
	// from a missing one
	user := auth.UserFrom(r.Context())
	if out.Group != user.Group {
		middleware.NotFound(w)
		return
	}

	if subtle.ConstantTimeCompare([]byte(out.Answers.ID), []byte(hash)) != 1 {
		middleware.NotFound(w)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+out.Answers.Name+`"`)
	http.ServeFile(w, r, filepath.Join(h.layout.Root, filepath.FromSlash(out.Answers.Path)))
}
