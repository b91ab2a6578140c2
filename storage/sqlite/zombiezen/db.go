package zombiezen

import (
	"fmt"
	"runtime"

	"zombiezen.com/go/sqlite/sqlitex"
)

// NewPool opens the database at dbPath in WAL mode and makes sure the
// artifact tables exist.
func NewPool(dbPath string) (*sqlitex.Pool, error) {
	pool, err := sqlitex.NewPool(fmt.Sprintf("file:%s", dbPath), sqlitex.PoolOptions{
		PoolSize: runtime.NumCPU(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite pool at %s: %w", dbPath, err)
	}

	if err := CreateSchemas(pool, ArtifactsSchema); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
