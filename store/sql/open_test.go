package sqlstore_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlstore "github.com/goliatone/go-resources/store/sql"
)

func TestOpen_SQLiteRoundTrip(t *testing.T) {
	client, err := sqlstore.Open(sqlstore.ConnectionConfig{
		Driver: "sqlite",
		DSN: fmt.Sprintf(
			"file:resources-open-%d?mode=memory&cache=shared&_foreign_keys=on",
			time.Now().UnixNano(),
		),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() { _ = client.Close() }()

	var one int
	if err := client.DB().NewRaw("SELECT 1").Scan(context.Background(), &one); err != nil {
		t.Fatalf("probe connection: %v", err)
	}
	if one != 1 {
		t.Fatalf("unexpected probe result: %d", one)
	}
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	if _, err := sqlstore.Open(sqlstore.ConnectionConfig{Driver: "oracle", DSN: "dsn"}); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
	if _, err := sqlstore.Open(sqlstore.ConnectionConfig{Driver: "sqlite"}); err == nil {
		t.Fatalf("expected missing dsn error")
	}
}

func TestConnectionConfig_Defaults(t *testing.T) {
	cfg := sqlstore.ConnectionConfig{Driver: "Postgres", DSN: "postgres://localhost/app"}
	if cfg.GetDriver() != "postgres" {
		t.Fatalf("unexpected driver normalization: %q", cfg.GetDriver())
	}
	if cfg.GetPingTimeout() <= 0 {
		t.Fatalf("expected ping timeout default")
	}
	if cfg.GetOtelIdentifier() != "go-resources" {
		t.Fatalf("unexpected otel identifier default: %q", cfg.GetOtelIdentifier())
	}
}
