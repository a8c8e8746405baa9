package storage

import (
	"context"
	"fmt"
)

// Open creates the store selected by backend. path is used by the file and
// sqlite backends, dsn by postgres.
func Open(ctx context.Context, backend, path, dsn string) (Store, error) {
	switch backend {
	case "memory":
		return NewMemory(), nil
	case "file":
		return NewFile(path)
	case "sqlite":
		return NewSQLite(path)
	case "postgres":
		return NewPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
