package runlog

import (
	"git.home.luguber.info/inful/notebinder/internal/foundation/errors"
)

var (
	// ErrDatabaseOpenFailed indicates the SQLite database could not be opened.
	ErrDatabaseOpenFailed = errors.FileSystemError("could not open run log database").Build()

	// ErrInitializeSchemaFailed indicates the database schema could not be initialized.
	ErrInitializeSchemaFailed = errors.InternalError("failed to initialize run log schema").Build()
)
