package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	chi "github.com/go-chi/chi/v5"

	"github.com/DheerG/LogicPull/internal/auth"
	"github.com/DheerG/LogicPull/internal/models"
	"github.com/DheerG/LogicPull/internal/pkg/paginator"
	"github.com/DheerG/LogicPull/internal/repo"
	"github.com/DheerG/LogicPull/pkg/fault"
)

// fakeInterviews is an in-memory InterviewStore for handler tests.
type fakeInterviews struct {
	byID    map[int]*models.Interview
	nextID  int
	deleted []int

	failCreate error
}

func newFakeInterviews() *fakeInterviews {
	return &fakeInterviews{byID: map[int]*models.Interview{}, nextID: 0}
}

func (f *fakeInterviews) GetByID(_ context.Context, id int) (*models.Interview, error) {
	iv, ok := f.byID[id]
	if !ok {
		return nil, fault.NotFound("interview")
	}
	return iv, nil
}

func (f *fakeInterviews) insert(iv *models.Interview) *models.Interview {
	f.nextID++
	iv.ID = f.nextID
	f.byID[iv.ID] = iv
	return iv
}

func (f *fakeInterviews) Create(_ context.Context, d repo.Draft) (*models.Interview, error) {
	if f.failCreate != nil {
		return nil, f.failCreate
	}
	return f.insert(&models.Interview{
		Name:        d.Name,
		Description: d.Description,
		Creator:     d.Creator,
		Group:       d.Group,
		Start:       "q0",
	}), nil
}

func (f *fakeInterviews) Clone(_ context.Context, src *models.Interview, d repo.Draft) (*models.Interview, error) {
	return f.insert(&models.Interview{
		Name:         d.Name,
		Description:  d.Description,
		Creator:      d.Creator,
		Group:        d.Group,
		Start:        src.Start,
		Data:         src.Data,
		Deliverables: src.Deliverables,
	}), nil
}

func (f *fakeInterviews) Delete(_ context.Context, id int) error {
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeInterviews) set(id int, fn func(*models.Interview)) error {
	iv, ok := f.byID[id]
	if !ok {
		return fault.NotFound("interview")
	}
	fn(iv)
	return nil
}

func (f *fakeInterviews) SetDisabled(_ context.Context, id int, disabled bool) error {
	return f.set(id, func(iv *models.Interview) { iv.Disabled = disabled })
}

func (f *fakeInterviews) SetLocked(_ context.Context, id int, locked bool) error {
	return f.set(id, func(iv *models.Interview) { iv.Locked = locked })
}

func (f *fakeInterviews) SetLive(_ context.Context, id int, live bool) error {
	return f.set(id, func(iv *models.Interview) { iv.Live = live })
}

func (f *fakeInterviews) SetOnComplete(_ context.Context, id int, oc models.OnComplete) error {
	return f.set(id, func(iv *models.Interview) { iv.OnComplete = oc })
}

// fakeOutputs is an in-memory OutputStore.
type fakeOutputs struct {
	byID map[int]*models.Output
}

func (f *fakeOutputs) LatestForGroup(_ context.Context, group, page int) (*paginator.PaginatedResponse[models.Output], error) {
	items := []models.Output{}
	for _, out := range f.byID {
		if out.Group == group {
			items = append(items, *out)
		}
	}
	if page < 1 {
		page = 1
	}
	return &paginator.PaginatedResponse[models.Output]{
		Items:       items,
		CurrentPage: page,
		TotalPages:  1,
		TotalItems:  len(items),
	}, nil
}

func (f *fakeOutputs) GetByID(_ context.Context, id int) (*models.Output, error) {
	out, ok := f.byID[id]
	if !ok {
		return nil, fault.NotFound("output")
	}
	return out, nil
}

// test request plumbing

var testUser = &models.User{
	ID:         9,
	Name:       "Pat",
	Email:      "pat@example.com",
	Group:      2,
	Privileges: []string{"add_interview", "edit_interviews"},
}

// formRequest builds a POST with url-encoded form fields and the
// authenticated user (and optionally an interview) in context.
func formRequest(t *testing.T, path string, fields url.Values, iv *models.Interview) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(fields.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	ctx := auth.WithUser(req.Context(), testUser)
	if iv != nil {
		ctx = auth.WithInterview(ctx, iv)
	}
	return req.WithContext(ctx)
}

func getRequest(t *testing.T, path string, iv *models.Interview) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	ctx := auth.WithUser(req.Context(), testUser)
	if iv != nil {
		ctx = auth.WithInterview(ctx, iv)
	}
	return req.WithContext(ctx)
}

// withURLParams attaches chi route parameters to a request outside a
// real route tree.
func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeForm(t *testing.T, rec *httptest.ResponseRecorder) formResult {
	t.Helper()

	var res formResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return res
}
