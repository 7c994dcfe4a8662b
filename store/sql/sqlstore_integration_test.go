package sqlstore_test

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-resources/core"
	sqlstore "github.com/goliatone/go-resources/store/sql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type testPersistenceConfig struct {
	driver string
	server string
}

func (c testPersistenceConfig) GetDebug() bool {
	return false
}

func (c testPersistenceConfig) GetDriver() string {
	return c.driver
}

func (c testPersistenceConfig) GetServer() string {
	return c.server
}

func (c testPersistenceConfig) GetPingTimeout() time.Duration {
	return time.Second
}

func (c testPersistenceConfig) GetOtelIdentifier() string {
	return "go-resources-tests"
}

func TestDispatchLedger_RecordAndGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, ledger, cleanup := newSQLiteLedger(t)
	defer cleanup()

	recorded := core.DispatchActivity{
		ID:        "entry-1",
		Operation: "update",
		Resource:  "account",
		Status:    "success",
		CallCount: 3,
		Committed: true,
		Duration:  42 * time.Millisecond,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := ledger.RecordDispatch(ctx, recorded); err != nil {
		t.Fatalf("record dispatch: %v", err)
	}

	loaded, err := ledger.Get(ctx, "entry-1")
	if err != nil {
		t.Fatalf("get dispatch entry: %v", err)
	}
	if loaded.Operation != "update" || loaded.Resource != "account" {
		t.Fatalf("unexpected entry: %#v", loaded)
	}
	if !loaded.Committed || loaded.CallCount != 3 {
		t.Fatalf("expected committed entry with 3 calls, got %#v", loaded)
	}
	if loaded.Duration != 42*time.Millisecond {
		t.Fatalf("unexpected duration: %v", loaded.Duration)
	}

	var tableName string
	if err := client.DB().NewRaw(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		"resource_dispatch_entries",
	).Scan(ctx, &tableName); err != nil {
		t.Fatalf("query sqlite master: %v", err)
	}
	if tableName != "resource_dispatch_entries" {
		t.Fatalf("expected resource_dispatch_entries table, got %q", tableName)
	}
}

func TestDispatchLedger_DefaultsBlankFields(t *testing.T) {
	ctx := context.Background()
	client, ledger, cleanup := newSQLiteLedger(t)
	defer cleanup()

	if err := ledger.RecordDispatch(ctx, core.DispatchActivity{}); err != nil {
		t.Fatalf("record blank dispatch: %v", err)
	}

	var id, operation, status string
	if err := client.DB().NewRaw(
		"SELECT id, operation, status FROM resource_dispatch_entries LIMIT 1",
	).Scan(ctx, &id, &operation, &status); err != nil {
		t.Fatalf("load defaulted entry: %v", err)
	}
	if strings.TrimSpace(id) == "" {
		t.Fatalf("expected generated id")
	}
	if operation != "unknown" || status != "success" {
		t.Fatalf("unexpected defaults: operation=%q status=%q", operation, status)
	}
}

func TestDispatchLedger_ListFiltersAndPaginates(t *testing.T) {
	ctx := context.Background()
	_, ledger, cleanup := newSQLiteLedger(t)
	defer cleanup()

	base := time.Now().UTC().Add(-time.Hour)
	seed := []core.DispatchActivity{
		{ID: "e-1", Operation: "lookup", Resource: "account", Status: "success", CreatedAt: base.Add(1 * time.Minute)},
		{ID: "e-2", Operation: "update", Resource: "account", Status: "failure", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "e-3", Operation: "update", Resource: "document", Status: "success", CreatedAt: base.Add(3 * time.Minute)},
		{ID: "e-4", Operation: "update", Resource: "account", Status: "success", CreatedAt: base.Add(4 * time.Minute)},
	}
	for _, activity := range seed {
		if err := ledger.RecordDispatch(ctx, activity); err != nil {
			t.Fatalf("seed entry %s: %v", activity.ID, err)
		}
	}

	page, err := ledger.List(ctx, sqlstore.DispatchLedgerFilter{Resource: "account", Operation: "update"})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("expected 2 filtered entries, got total=%d items=%d", page.Total, len(page.Items))
	}
	if page.Items[0].ID != "e-4" || page.Items[1].ID != "e-2" {
		t.Fatalf("expected newest-first ordering, got %q then %q", page.Items[0].ID, page.Items[1].ID)
	}

	page, err = ledger.List(ctx, sqlstore.DispatchLedgerFilter{Status: "failure"})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if page.Total != 1 || page.Items[0].ID != "e-2" {
		t.Fatalf("unexpected status filter result: %#v", page)
	}

	page, err = ledger.List(ctx, sqlstore.DispatchLedgerFilter{Page: 1, PerPage: 3})
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if len(page.Items) != 3 || !page.HasNext {
		t.Fatalf("expected full first page with next, got items=%d hasNext=%v", len(page.Items), page.HasNext)
	}
	page, err = ledger.List(ctx, sqlstore.DispatchLedgerFilter{Page: 2, PerPage: 3})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(page.Items) != 1 || page.HasNext {
		t.Fatalf("expected final page of one, got items=%d hasNext=%v", len(page.Items), page.HasNext)
	}

	from := base.Add(150 * time.Second)
	page, err = ledger.List(ctx, sqlstore.DispatchLedgerFilter{From: &from})
	if err != nil {
		t.Fatalf("list by window: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected 2 entries inside window, got %d", page.Total)
	}
}

func TestDispatchLedger_PruneDropsExpiredEntries(t *testing.T) {
	ctx := context.Background()
	_, ledger, cleanup := newSQLiteLedger(t)
	defer cleanup()

	if err := ledger.RecordDispatch(ctx, core.DispatchActivity{
		ID:        "stale",
		Operation: "read",
		Resource:  "account",
		CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
	}); err != nil {
		t.Fatalf("seed stale entry: %v", err)
	}
	if err := ledger.RecordDispatch(ctx, core.DispatchActivity{
		ID:        "fresh",
		Operation: "read",
		Resource:  "account",
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed fresh entry: %v", err)
	}

	pruned, err := ledger.Prune(ctx, time.Hour)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("expected one pruned entry, got %d", pruned)
	}
	if _, err := ledger.Get(ctx, "stale"); err == nil {
		t.Fatalf("expected stale entry to be gone")
	}
	if _, err := ledger.Get(ctx, "fresh"); err != nil {
		t.Fatalf("fresh entry must survive prune: %v", err)
	}
}

func TestCachedDispatchLedger_GetServesFromCache(t *testing.T) {
	ctx := context.Background()
	client, ledger, cleanup := newSQLiteLedger(t)
	defer cleanup()

	cached, err := sqlstore.NewCachedDispatchLedger(ledger, newTestLedgerCacheService(t))
	if err != nil {
		t.Fatalf("new cached ledger: %v", err)
	}

	if err := cached.RecordDispatch(ctx, core.DispatchActivity{
		ID:        "cached-1",
		Operation: "execute",
		Resource:  "account",
		Status:    "success",
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("record through cached ledger: %v", err)
	}

	first, err := cached.Get(ctx, "cached-1")
	if err != nil {
		t.Fatalf("prime cache: %v", err)
	}
	if first.Status != "success" {
		t.Fatalf("unexpected primed entry: %#v", first)
	}

	if _, err := client.DB().ExecContext(ctx,
		"UPDATE resource_dispatch_entries SET status = ? WHERE id = ?",
		"failure", "cached-1",
	); err != nil {
		t.Fatalf("mutate row behind cache: %v", err)
	}

	second, err := cached.Get(ctx, "cached-1")
	if err != nil {
		t.Fatalf("cached get: %v", err)
	}
	if second.Status != "success" {
		t.Fatalf("expected cache hit to keep prior value, got %q", second.Status)
	}

	fresh, err := ledger.Get(ctx, "cached-1")
	if err != nil {
		t.Fatalf("uncached get: %v", err)
	}
	if fresh.Status != "failure" {
		t.Fatalf("expected base store to read mutated row, got %q", fresh.Status)
	}
}

func TestDispatchLedgerCacheKey_Contract(t *testing.T) {
	key, err := sqlstore.DispatchLedgerCacheKey("entry 1/a")
	if err != nil {
		t.Fatalf("build cache key: %v", err)
	}
	const expected = "go-resources::dispatch_ledger::v1::entry%201%2Fa"
	if key != expected {
		t.Fatalf("unexpected cache key contract: got %q want %q", key, expected)
	}

	if _, err := sqlstore.DispatchLedgerCacheKey("  "); err == nil {
		t.Fatalf("expected blank id rejection")
	}
}

func TestRepositoryFactory_BuildsLedgerFromPersistence(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	ledger := factory.DispatchLedger()
	if ledger == nil {
		t.Fatalf("expected dispatch ledger from factory")
	}
	if factory.DB() == nil {
		t.Fatalf("expected bun db from factory")
	}
	if err := ledger.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if err := ledger.RecordDispatch(ctx, core.DispatchActivity{Operation: "lookup", Resource: "account"}); err != nil {
		t.Fatalf("record through factory-built ledger: %v", err)
	}
}

func TestRepositoryFactory_RejectsUnsupportedClients(t *testing.T) {
	factory := sqlstore.NewRepositoryFactory()
	if err := factory.BuildStores(nil); err == nil {
		t.Fatalf("expected nil client rejection")
	}
	if err := factory.BuildStores("not-a-client"); err == nil {
		t.Fatalf("expected unsupported client rejection")
	}
}

func newSQLiteLedger(t *testing.T) (*persistence.Client, *sqlstore.DispatchLedgerStore, func()) {
	t.Helper()

	client, cleanup := newSQLiteClient(t)
	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		cleanup()
		t.Fatalf("new repository factory: %v", err)
	}
	ledger := factory.DispatchLedger()
	if err := ledger.EnsureSchema(context.Background()); err != nil {
		cleanup()
		t.Fatalf("ensure ledger schema: %v", err)
	}
	return client, ledger, cleanup
}

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:resources-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := testPersistenceConfig{
		driver: "sqlite3",
		server: dsn,
	}
	client, err := persistence.New(cfg, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		t.Fatalf("new persistence client: %v", err)
	}

	return client, func() {
		_ = client.Close()
	}
}

func newTestLedgerCacheService(t *testing.T) repositorycache.CacheService {
	t.Helper()
	config := repositorycache.DefaultConfig()
	config.TTL = time.Minute
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	return service
}
