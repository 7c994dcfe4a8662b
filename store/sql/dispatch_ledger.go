package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-resources/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DispatchLedgerFilter narrows ledger listings. Zero-value fields are
// ignored.
type DispatchLedgerFilter struct {
	Resource  string
	Operation string
	Status    string
	From      *time.Time
	To        *time.Time
	Page      int
	PerPage   int
}

type DispatchLedgerPage struct {
	Items   []core.DispatchActivity
	Page    int
	PerPage int
	Total   int
	HasNext bool
}

// DispatchLedgerStore persists one row per dispatch call and serves the
// audit listing queries.
type DispatchLedgerStore struct {
	db   *bun.DB
	repo repository.Repository[*dispatchEntryRecord]
}

func NewDispatchLedgerStore(db *bun.DB) (*DispatchLedgerStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*dispatchEntryRecord](db, dispatchEntryHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid dispatch ledger wiring: %w", err)
		}
	}
	return &DispatchLedgerStore{db: db, repo: repo}, nil
}

// EnsureSchema creates the ledger table when it does not exist yet.
func (s *DispatchLedgerStore) EnsureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: dispatch ledger is not configured")
	}
	_, err := s.db.NewCreateTable().
		Model((*dispatchEntryRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (s *DispatchLedgerStore) RecordDispatch(ctx context.Context, activity core.DispatchActivity) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: dispatch ledger is not configured")
	}
	id := strings.TrimSpace(activity.ID)
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := activity.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	record := &dispatchEntryRecord{
		ID:         id,
		Operation:  strings.TrimSpace(activity.Operation),
		Resource:   strings.TrimSpace(activity.Resource),
		Status:     strings.TrimSpace(activity.Status),
		Error:      strings.TrimSpace(activity.Error),
		CallCount:  activity.CallCount,
		Committed:  activity.Committed,
		DurationMS: activity.Duration.Milliseconds(),
		CreatedAt:  createdAt,
	}
	if record.Operation == "" {
		record.Operation = "unknown"
	}
	if record.Resource == "" {
		record.Resource = "unknown"
	}
	if record.Status == "" {
		record.Status = "success"
	}

	_, err := s.repo.Create(ctx, record)
	return err
}

func (s *DispatchLedgerStore) Get(ctx context.Context, id string) (core.DispatchActivity, error) {
	if s == nil || s.repo == nil {
		return core.DispatchActivity{}, fmt.Errorf("sqlstore: dispatch ledger is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return core.DispatchActivity{}, fmt.Errorf("sqlstore: dispatch entry id is required")
	}
	records, _, err := s.repo.List(ctx, repository.SelectBy("id", "=", id))
	if err != nil {
		return core.DispatchActivity{}, err
	}
	if len(records) == 0 {
		return core.DispatchActivity{}, fmt.Errorf("sqlstore: dispatch entry not found: %s", id)
	}
	return dispatchRecordToDomain(records[0]), nil
}

func (s *DispatchLedgerStore) List(ctx context.Context, filter DispatchLedgerFilter) (DispatchLedgerPage, error) {
	if s == nil || s.repo == nil {
		return DispatchLedgerPage{}, fmt.Errorf("sqlstore: dispatch ledger is not configured")
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 25
	}
	offset := (page - 1) * perPage

	selectors := []repository.SelectCriteria{
		repository.OrderBy("created_at DESC"),
		repository.SelectPaginate(perPage, offset),
	}
	if resource := strings.TrimSpace(filter.Resource); resource != "" {
		selectors = append(selectors, repository.SelectBy("resource", "=", resource))
	}
	if operation := strings.TrimSpace(filter.Operation); operation != "" {
		selectors = append(selectors, repository.SelectBy("operation", "=", operation))
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		selectors = append(selectors, repository.SelectBy("status", "=", status))
	}
	if filter.From != nil {
		selectors = append(selectors, repository.SelectByTimetz("created_at", ">=", filter.From.UTC()))
	}
	if filter.To != nil {
		selectors = append(selectors, repository.SelectByTimetz("created_at", "<=", filter.To.UTC()))
	}

	records, total, err := s.repo.List(ctx, selectors...)
	if err != nil {
		return DispatchLedgerPage{}, err
	}
	items := make([]core.DispatchActivity, 0, len(records))
	for _, record := range records {
		items = append(items, dispatchRecordToDomain(record))
	}
	return DispatchLedgerPage{
		Items:   items,
		Page:    page,
		PerPage: perPage,
		Total:   total,
		HasNext: offset+len(items) < total,
	}, nil
}

// Prune removes entries older than the given TTL and returns the number
// of rows deleted.
func (s *DispatchLedgerStore) Prune(ctx context.Context, ttl time.Duration) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: dispatch ledger is not configured")
	}
	if ttl <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-ttl)
	res, err := s.db.NewDelete().
		Model((*dispatchEntryRecord)(nil)).
		Where("created_at < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

func dispatchRecordToDomain(record *dispatchEntryRecord) core.DispatchActivity {
	if record == nil {
		return core.DispatchActivity{}
	}
	return core.DispatchActivity{
		ID:        record.ID,
		Operation: record.Operation,
		Resource:  record.Resource,
		Status:    record.Status,
		Error:     record.Error,
		CallCount: record.CallCount,
		Committed: record.Committed,
		Duration:  time.Duration(record.DurationMS) * time.Millisecond,
		CreatedAt: record.CreatedAt,
	}
}
