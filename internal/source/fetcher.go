package source

import (
	"context"

	"github.com/doorman-ac/doorman/internal/core"
	"github.com/doorman-ac/doorman/internal/logging"
)

// Fetcher loads a full set of control definitions from an external source.
// Implementations return the raw definitions; validation happens in the sync
// task before anything is swapped into the store.
type Fetcher interface {
	Fetch(ctx context.Context, log logging.InternalLogger) ([]*core.AccessControl, error)
}
