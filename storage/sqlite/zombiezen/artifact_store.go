package zombiezen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/revelaction/squadprep/dataset"
	"github.com/revelaction/squadprep/storage"
	"github.com/revelaction/squadprep/vocab"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Vocabulary kinds of the vocab table.
const (
	wordKind = "word"
	charKind = "char"
)

// ArtifactStore keeps data, shared and metadata of every split as JSON
// blobs. Vocabularies are also stored one token per row so they can be read
// without decoding the shared tables.
type ArtifactStore struct {
	pool *sqlitex.Pool
}

var _ storage.ArtifactRepository = (*ArtifactStore)(nil)

func NewArtifactStore(pool *sqlitex.Pool) *ArtifactStore {
	return &ArtifactStore{pool: pool}
}

func (s *ArtifactStore) Write(split string, a dataset.Artifact) (err error) {
	conn, err := s.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	defer sqlitex.Save(conn)(&err)

	blobs := []struct {
		name string
		v    any
	}{
		{"data", &a.Data},
		{"shared", a.Shared},
		{"metadata", a.Metadata},
	}
	for _, b := range blobs {
		data, err := json.Marshal(b.v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", b.name, err)
		}

		err = sqlitex.Execute(conn, "INSERT OR REPLACE INTO artifacts (split, name, data) VALUES (?, ?, ?)", &sqlitex.ExecOptions{
			Args: []any{split, b.name, string(data)},
		})
		if err != nil {
			return fmt.Errorf("failed to insert %s: %w", b.name, err)
		}
	}

	err = sqlitex.Execute(conn, "DELETE FROM vocab WHERE split = ?", &sqlitex.ExecOptions{
		Args: []any{split},
	})
	if err != nil {
		return fmt.Errorf("failed to clear vocab: %w", err)
	}

	if a.Shared == nil {
		return nil
	}
	for kind, v := range map[string]*vocab.Vocabulary{wordKind: a.Shared.WV, charKind: a.Shared.CV} {
		if v == nil {
			continue
		}
		for idx, token := range v.Tokens() {
			err = sqlitex.Execute(conn, "INSERT INTO vocab (split, kind, idx, token) VALUES (?, ?, ?, ?)", &sqlitex.ExecOptions{
				Args: []any{split, kind, idx, token},
			})
			if err != nil {
				return fmt.Errorf("failed to insert %s token %q: %w", kind, token, err)
			}
		}
	}

	return nil
}

func (s *ArtifactStore) Metadata(split string) (dataset.Metadata, error) {
	conn, err := s.pool.Take(context.TODO())
	if err != nil {
		return dataset.Metadata{}, err
	}
	defer s.pool.Put(conn)

	var m dataset.Metadata
	found := false
	err = sqlitex.Execute(conn, "SELECT data FROM artifacts WHERE split = ? AND name = 'metadata'", &sqlitex.ExecOptions{
		Args: []any{split},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			return json.Unmarshal([]byte(stmt.ColumnText(0)), &m)
		},
	})
	if err != nil {
		return dataset.Metadata{}, err
	}
	if !found {
		return dataset.Metadata{}, fmt.Errorf("%w: %s", storage.ErrNotFound, split)
	}

	return m, nil
}

func (s *ArtifactStore) Vocabularies(split string) (*vocab.Vocabulary, *vocab.Vocabulary, error) {
	conn, err := s.pool.Take(context.TODO())
	if err != nil {
		return nil, nil, err
	}
	defer s.pool.Put(conn)

	wv, err := readVocab(conn, split, wordKind)
	if err != nil {
		return nil, nil, err
	}
	cv, err := readVocab(conn, split, charKind)
	if err != nil {
		return nil, nil, err
	}
	return wv, cv, nil
}

func readVocab(conn *sqlite.Conn, split, kind string) (*vocab.Vocabulary, error) {
	var tokens []string
	err := sqlitex.Execute(conn, "SELECT idx, token FROM vocab WHERE split = ? AND kind = ? ORDER BY idx", &sqlitex.ExecOptions{
		Args: []any{split, kind},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			if idx := stmt.ColumnInt(0); idx != len(tokens) {
				return fmt.Errorf("%s vocabulary of %s: index %d missing", kind, split, len(tokens))
			}
			tokens = append(tokens, stmt.ColumnText(1))
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: %s %s vocabulary", storage.ErrNotFound, split, kind)
	}

	return vocab.FromTokens(tokens), nil
}
