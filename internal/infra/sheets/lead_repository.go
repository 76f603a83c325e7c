package sheets

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/leaddialer/internal/entity"
	"github.com/xavierca1/leaddialer/internal/logger"
)

// TableStore is the remote tabular source behind the lead repository.
type TableStore interface {
	ReadTable(ctx context.Context) (*Table, error)
	WriteRow(ctx context.Context, sheet string, rowNumber int, values []string) error
}

// LeadRepository reads and updates leads stored one per row.
// Every call reloads the whole sheet; nothing is cached between calls.
type LeadRepository struct {
	store  TableStore
	locks  *keyLock
	newID  func() string
	logger *zap.Logger
}

func NewLeadRepository(store TableStore, log *zap.Logger) *LeadRepository {
	return &LeadRepository{
		store:  store,
		locks:  newKeyLock(),
		newID:  uuid.NewString,
		logger: logger.OrNop(log).Named("lead_repository"),
	}
}

func (r *LeadRepository) FindAll(ctx context.Context) ([]*entity.Lead, error) {
	table, err := r.store.ReadTable(ctx)
	if err != nil {
		return nil, err
	}

	leads := table.Leads()
	r.warnDuplicateIDs(leads)
	return leads, nil
}

// warnDuplicateIDs flags rows whose resolved id is already taken, e.g. an
// explicit "1" next to the first positional row. Lookups return the first match.
func (r *LeadRepository) warnDuplicateIDs(leads []*entity.Lead) {
	firstRow := make(map[string]int, len(leads))
	for _, l := range leads {
		id := l.ID.String()
		if row, dup := firstRow[id]; dup {
			r.logger.Warn("duplicate lead id",
				zap.String("lead_id", id),
				zap.Int("first_row", row),
				zap.Int("row", l.Position+1))
			continue
		}
		firstRow[id] = l.Position + 1
	}
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	table, err := r.store.ReadTable(ctx)
	if err != nil {
		return nil, err
	}

	lead, _ := find(table, id)
	if lead == nil {
		return nil, entity.ErrLeadNotFound
	}
	return lead, nil
}

// Update rewrites the status, lastContact and notes cells of one lead.
// Updates of the same id are serialized in-process; the later write wins.
func (r *LeadRepository) Update(ctx context.Context, id string, update entity.LeadUpdate) (*entity.Lead, error) {
	unlock := r.locks.Lock(id)
	defer unlock()

	table, err := r.store.ReadTable(ctx)
	if err != nil {
		return nil, err
	}

	lead, idx := find(table, id)
	if lead == nil {
		return nil, entity.ErrLeadNotFound
	}

	row := table.paddedRow(idx)
	cells := map[string]string{
		ColStatus:      update.Status,
		ColLastContact: update.LastContact,
		ColNotes:       update.Notes,
	}
	for col, value := range cells {
		i := table.Column(col)
		if i < 0 {
			return nil, entity.NewUpstreamError(serviceName, "save row", fmt.Errorf("sheet %q has no %q column", table.Sheet, col))
		}
		row[i] = value
	}

	if err := r.store.WriteRow(ctx, table.Sheet, lead.Position+1, row); err != nil {
		return nil, err
	}

	update.Apply(lead)
	r.logger.Info("lead updated",
		zap.String("lead_id", id),
		zap.Int("row", lead.Position+1),
		zap.String("status", lead.Status))
	return lead, nil
}

// BackfillIDs gives every row without an id a fresh UUID so identity stops
// depending on row order. Sheets without an id column are left untouched.
func (r *LeadRepository) BackfillIDs(ctx context.Context) (int, error) {
	table, err := r.store.ReadTable(ctx)
	if err != nil {
		return 0, err
	}

	col := table.Column(ColID)
	if col < 0 {
		r.logger.Warn("id backfill skipped: sheet has no id column", zap.String("sheet", table.Sheet))
		return 0, nil
	}

	filled := 0
	for i := range table.Rows {
		if table.value(table.Rows[i], ColID) != "" {
			continue
		}

		row := table.paddedRow(i)
		row[col] = r.newID()
		if err := r.store.WriteRow(ctx, table.Sheet, i+2, row); err != nil {
			return filled, err
		}
		filled++
	}

	if filled > 0 {
		r.logger.Info("lead ids backfilled", zap.Int("rows", filled))
	}
	return filled, nil
}

// find returns the first lead whose resolved id equals id, with its row index.
func find(table *Table, id string) (*entity.Lead, int) {
	for i := range table.Rows {
		lead := table.Lead(i)
		if lead.ID.String() == id {
			return lead, i
		}
	}
	return nil, -1
}
