package sqlstore

import (
	"github.com/goliatone/go-resources/core"
)

var (
	_ core.ActivityRecorder = (*DispatchLedgerStore)(nil)
	_ core.ActivityRecorder = (*CachedDispatchLedger)(nil)
)
