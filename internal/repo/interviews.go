// Package repo implements the persistence layer: domain repositories
// over the generic datastore.
package repo

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/DheerG/LogicPull/internal/flow"
	"github.com/DheerG/LogicPull/internal/models"
	"github.com/DheerG/LogicPull/internal/pkg/store"
	"github.com/DheerG/LogicPull/pkg/fault"
)

// createRetries bounds how often a create is retried when a duplicate
// id slips through under concurrent allocation.
const createRetries = 3

const interviewColumns = `id, name, description, creator, group_id, disabled, locked, live,
	creation_date, edit_url, stage_url, live_url, start, steps, deliverables,
	on_complete, distance, data`

// A Draft carries the validated form input for a create or clone.
type Draft struct {
	Name        string
	Description string
	Creator     int
	Group       int
}

// Interviews is the repository for the interviews collection and the
// shared id counter.
type Interviews struct {
	store store.Datastorer[models.Interview]
}

func NewInterviews(db *sqlx.DB) *Interviews {
	return &Interviews{store: store.NewDataStore[models.Interview](db, "interviews")}
}

// GetByID fetches one interview, disabled or not.
func (r *Interviews) GetByID(ctx context.Context, id int) (*models.Interview, error) {
	query := fmt.Sprintf("SELECT %s FROM interviews WHERE id = $1", interviewColumns)
	iv, err := r.store.Get(ctx, query, id)
	if err != nil {
		if fault.IsNotFound(err) {
			return nil, fault.NotFound("interview")
		}
		return nil, fault.Store("loading interview", err)
	}
	return iv, nil
}

// NameExists reports whether any interview in the group already uses
// the name.
func (r *Interviews) NameExists(ctx context.Context, group int, name string) (bool, error) {
	n, err := r.store.QueryRow(ctx,
		"SELECT COUNT(*) FROM interviews WHERE group_id = $1 AND name = $2", group, name)
	if err != nil {
		return false, fault.Store("checking interview name", err)
	}
	count, _ := n.(int64)
	return count > 0, nil
}

// allocateID atomically advances the shared counter and returns the
// next interview id. Running inside the caller's transaction keeps
// allocation and insertion in one atomic step.
func allocateID(ctx context.Context, tx *sqlx.Tx) (int, error) {
	var id int
	err := tx.QueryRowContext(ctx,
		"UPDATE counters SET interview_count = interview_count + 1 WHERE id = 1 RETURNING interview_count").Scan(&id)
	if err != nil {
		return 0, fault.Store("allocating interview id", err)
	}
	return id, nil
}

// newInterview assembles a fresh interview record. The derived URL
// fields are computed here, once, and never re-derived.
func newInterview(id int, d Draft) *models.Interview {
	return &models.Interview{
		ID:           id,
		Name:         d.Name,
		Description:  d.Description,
		Creator:      d.Creator,
		Group:        d.Group,
		CreationDate: time.Now().UnixMilli(),
		EditURL:      path.Join("/manager/interview", fmt.Sprint(id), "edit"),
		StageURL:     path.Join("/manager/interview", fmt.Sprint(id), "stage"),
		LiveURL:      path.Join("/interviews/active", fmt.Sprint(id)),
		OnComplete: models.OnComplete{
			EmailDeliverablesToClient: true,
		},
		Distance: models.Distance{Update: true, Graph: map[string]map[string]int{}},
	}
}

// Create allocates an id and inserts a fresh interview with the
// starter graph. A duplicate-id collision is retried a bounded number
// of times; anything else propagates.
func (r *Interviews) Create(ctx context.Context, d Draft) (*models.Interview, error) {
	return r.insertWithRetry(ctx, func(id int) *models.Interview {
		iv := newInterview(id, d)
		iv.Start = "q0"
		iv.Steps = append(models.StringList{}, flow.StarterSteps...)
		iv.Deliverables = models.DeliverableList{}
		iv.Data = flow.StarterGraph()
		return iv
	})
}

// Clone allocates a new id and inserts a deep copy of the source
// interview's graph, steps, settings, and deliverable descriptors.
// Descriptors are re-keyed to the new interview's upload directory.
// Lifecycle flags reset and URLs are re-derived for the new id.
func (r *Interviews) Clone(ctx context.Context, src *models.Interview, d Draft) (*models.Interview, error) {
	return r.insertWithRetry(ctx, func(id int) *models.Interview {
		iv := newInterview(id, d)
		iv.Start = src.Start
		iv.Steps = append(models.StringList{}, src.Steps...)
		iv.OnComplete = src.OnComplete
		iv.Distance = src.Distance
		iv.Data = src.Data

		iv.Deliverables = rekeyDeliverables(src.Deliverables, d.Name, id)
		return iv
	})
}

// rekeyDeliverables points copied descriptors at the clone's own upload
// directory, keeping names and descriptor ids as-is.
func rekeyDeliverables(src models.DeliverableList, name string, id int) models.DeliverableList {
	out := make(models.DeliverableList, len(src))
	for i, file := range src {
		file.Path = path.Join("uploads", "deliverables", fmt.Sprintf("%s-%d", name, id), file.Name)
		out[i] = file
	}
	return out
}

func (r *Interviews) insertWithRetry(ctx context.Context, build func(id int) *models.Interview) (*models.Interview, error) {
	return retryOnCollision(createRetries, func() (*models.Interview, error) {
		return r.insert(ctx, build)
	})
}

// retryOnCollision re-runs the insert while it keeps losing the id race.
// Any other failure propagates on the first attempt.
func retryOnCollision(attempts int, insert func() (*models.Interview, error)) (*models.Interview, error) {
	var lastErr error

	for i := 0; i < attempts; i++ {
		iv, err := insert()
		if err == nil {
			return iv, nil
		}
		if !errors.Is(err, fault.ErrUniqueViolation) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fault.Conflict("interview id allocation kept colliding", lastErr)
}

func (r *Interviews) insert(ctx context.Context, build func(id int) *models.Interview) (iv *models.Interview, err error) {
	tx, err := r.store.Base().BeginTxx(ctx, nil)
	if err != nil {
		return nil, fault.Store("opening transaction", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	id, err := allocateID(ctx, tx)
	if err != nil {
		return nil, err
	}

	iv = build(id)
	if err = flow.Validate(iv.Start, iv.Data); err != nil {
		return nil, fault.Conflict("interview graph failed validation", err)
	}

	query := fmt.Sprintf(`INSERT INTO interviews (%s) VALUES
		(:id, :name, :description, :creator, :group_id, :disabled, :locked, :live,
		 :creation_date, :edit_url, :stage_url, :live_url, :start, :steps, :deliverables,
		 :on_complete, :distance, :data)`, interviewColumns)

	if _, err = tx.NamedExecContext(ctx, query, iv); err != nil {
		if isUniqueViolation(err) {
			err = fault.ErrUniqueViolation
			return nil, err
		}
		return nil, fault.Store("inserting interview", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fault.Store("committing interview", err)
	}
	return iv, nil
}

// Delete hard-removes an interview row. Only used to roll back a
// create or clone whose file-system side effects failed; normal
// removal is the soft SetDisabled.
func (r *Interviews) Delete(ctx context.Context, id int) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return fault.Store("deleting interview", err)
	}
	return nil
}

// Field-update payloads for the generic datastore.

type disabledDTO struct {
	Disabled bool `db:"disabled"`
}

func (d disabledDTO) ToModel(id int) any { return id }

type lockedDTO struct {
	Locked bool `db:"locked"`
}

func (d lockedDTO) ToModel(id int) any { return id }

type liveDTO struct {
	Live bool `db:"live"`
}

func (d liveDTO) ToModel(id int) any { return id }

type onCompleteDTO struct {
	OnComplete models.OnComplete `db:"on_complete"`
}

func (d onCompleteDTO) ToModel(id int) any { return id }

// SetDisabled soft-disables (or re-enables) an interview. Disabled
// interviews stay in the store; nothing is ever hard-deleted through
// the manager surface.
func (r *Interviews) SetDisabled(ctx context.Context, id int, disabled bool) error {
	return r.update(ctx, id, disabledDTO{Disabled: disabled}, "updating disabled flag")
}

// SetLocked flips the structural-edit lock.
func (r *Interviews) SetLocked(ctx context.Context, id int, locked bool) error {
	return r.update(ctx, id, lockedDTO{Locked: locked}, "updating locked flag")
}

// SetLive flips publication status.
func (r *Interviews) SetLive(ctx context.Context, id int, live bool) error {
	return r.update(ctx, id, liveDTO{Live: live}, "updating live flag")
}

// SetOnComplete replaces the completion settings document.
func (r *Interviews) SetOnComplete(ctx context.Context, id int, oc models.OnComplete) error {
	return r.update(ctx, id, onCompleteDTO{OnComplete: oc}, "updating on_complete settings")
}

func (r *Interviews) update(ctx context.Context, id int, data store.DTO, msg string) error {
	if _, err := r.store.Update(ctx, id, data); err != nil {
		if fault.IsNotFound(err) {
			return fault.NotFound("interview")
		}
		return fault.Store(msg, err)
	}
	return nil
}
