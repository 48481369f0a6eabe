package repo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/DheerG/LogicPull/internal/models"
	"github.com/DheerG/LogicPull/internal/pkg/paginator"
	"github.com/DheerG/LogicPull/internal/pkg/store"
	"github.com/DheerG/LogicPull/pkg/fault"
)

// completedPageSize matches the original listing cap of the latest 100
// outputs per page.
const completedPageSize = 100

const outputColumns = "id, interview_id, group_id, answers, date"

// Outputs is the read-only repository over completed submissions.
type Outputs struct {
	store store.Datastorer[models.Output]
	pages paginator.Paginator[models.Output]
}

func NewOutputs(db *sqlx.DB) *Outputs {
	ds := store.NewDataStore[models.Output](db, "outputs")
	return &Outputs{
		store: ds,
		pages: paginator.NewPaginator(ds),
	}
}

// LatestForGroup returns completed outputs for a group, newest first,
// capped at 100 per page.
func (r *Outputs) LatestForGroup(ctx context.Context, group, page int) (*paginator.PaginatedResponse[models.Output], error) {
	query := fmt.Sprintf("SELECT %s FROM outputs WHERE group_id = $1 ORDER BY date DESC", outputColumns)

	res, err := r.pages.PaginateQuery(ctx, query, []any{group}, page, completedPageSize)
	if err != nil {
		return nil, fault.Store("listing completed outputs", err)
	}
	return res, nil
}

// GetByID fetches one output record with its answer-set descriptor.
func (r *Outputs) GetByID(ctx context.Context, id int) (*models.Output, error) {
	query := fmt.Sprintf("SELECT %s FROM outputs WHERE id = $1", outputColumns)
	out, err := r.store.Get(ctx, query, id)
	if err != nil {
		if fault.IsNotFound(err) {
			return nil, fault.NotFound("output")
		}
		return nil, fault.Store("loading output", err)
	}
	return out, nil
}

// isUniqueViolation unwraps the Postgres duplicate-key error code.
func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}
