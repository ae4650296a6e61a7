package migration

import (
	"errors"
	"fmt"

	"github.com/haguru/recordmigrator/internal/source"
)

var (
	// ErrDependencyNotMigrated is returned by MigrateSales when the users or
	// products routine is enabled for the run but has not run yet.
	ErrDependencyNotMigrated = errors.New("dependency routine has not run")

	// ErrNoRows aborts a routine whose source file holds a header and nothing else.
	ErrNoRows = fmt.Errorf("%w: no data rows", source.ErrSourceUnreadable)
)
