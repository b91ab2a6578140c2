// Package indexer replaces the string leaves of nested token structures with
// vocabulary indices.
package indexer

import (
	"strings"

	"github.com/revelaction/squadprep/nest"
	"github.com/revelaction/squadprep/vocab"
)

// Apply returns a structure of the same shape as n where every leaf is its
// index in v, or vocab.UnkIndex when v has none. With fold set, leaves are
// lowercased before lookup at every depth.
func Apply(n nest.Node[string], v *vocab.Vocabulary, fold bool) nest.Node[int] {
	return nest.Map(n, func(token string) int {
		if fold {
			token = strings.ToLower(token)
		}
		return v.Lookup(token)
	})
}
