package zombiezen

import (
	"context"
	"embed"
	"fmt"
	"path"

	"zombiezen.com/go/sqlite/sqlitex"
)

// ArtifactsSchema creates the artifacts and vocab tables.
const ArtifactsSchema = "artifacts.sql"

//go:embed sql/*.sql
var sqlFiles embed.FS

// CreateSchemas runs the named script of the sql/ directory.
func CreateSchemas(pool *sqlitex.Pool, schemaName string) error {
	scriptPath := path.Join("sql", schemaName)

	script, err := sqlFiles.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("failed to read embedded sql file %s: %w", scriptPath, err)
	}

	conn, err := pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer pool.Put(conn)

	if err := sqlitex.ExecuteScript(conn, string(script), nil); err != nil {
		return fmt.Errorf("failed to execute script %s: %w", schemaName, err)
	}

	return nil
}
