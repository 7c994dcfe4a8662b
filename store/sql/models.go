package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type dispatchEntryRecord struct {
	bun.BaseModel `bun:"table:resource_dispatch_entries,alias:rde"`

	ID         string    `bun:"id,pk"`
	Operation  string    `bun:"operation,notnull"`
	Resource   string    `bun:"resource,notnull"`
	Status     string    `bun:"status,notnull"`
	Error      string    `bun:"error"`
	CallCount  int       `bun:"call_count,notnull"`
	Committed  bool      `bun:"committed,notnull"`
	DurationMS int64     `bun:"duration_ms,notnull"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
