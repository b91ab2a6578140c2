package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/revelaction/squadprep/storage"
	"github.com/revelaction/squadprep/storage/filesystem"
	"github.com/revelaction/squadprep/storage/sqlite/zombiezen"
	"zombiezen.com/go/sqlite/sqlitex"
)

const sqliteExt = ".db"

type Pool struct {
	p *sqlitex.Pool
}

func (p *Pool) Open(path string) (*sqlitex.Pool, error) {
	if p.p != nil {
		return p.p, nil
	}
	pool, err := zombiezen.NewPool(path)
	if err != nil {
		return nil, err
	}
	p.p = pool
	return p.p, nil
}

func (p *Pool) Close() error {
	if p.p != nil {
		return p.p.Close()
	}
	return nil
}

// NewArtifactRepository returns a SQLite store for a target ending in .db
// and a directory of JSON files otherwise.
func NewArtifactRepository(p *Pool, target string) (storage.ArtifactRepository, error) {
	if filepath.Ext(target) != sqliteExt {
		return filesystem.NewArtifactStore(target)
	}

	pool, err := p.Open(target)
	if err != nil {
		return nil, err
	}
	return zombiezen.NewArtifactStore(pool), nil
}

// NewArtifactReader is NewArtifactRepository for a target that must exist.
func NewArtifactReader(p *Pool, target string) (storage.ArtifactReader, error) {
	if _, err := os.Stat(target); err != nil {
		return nil, fmt.Errorf("repository not found: %s", target)
	}
	return NewArtifactRepository(p, target)
}
