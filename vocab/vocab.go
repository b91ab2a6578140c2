// Package vocab counts tokens and turns the counts into frequency-filtered
// vocabularies with reserved padding and unknown indices.
package vocab

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	// Null is the padding token.
	Null = "-NULL-"

	// Unk stands for every token without its own index.
	Unk = "-UNK-"

	NullIndex = 0
	UnkIndex  = 1
)

// ErrSentinelCollision is returned when a corpus token equals Null or Unk.
var ErrSentinelCollision = errors.New("vocab: reserved token found in corpus")

// Counter counts token occurrences and remembers the order in which tokens
// were first seen.
type Counter struct {
	counts map[string]int
	order  []string
}

func NewCounter() *Counter {
	return &Counter{counts: map[string]int{}}
}

// Add counts one occurrence of each token.
func (c *Counter) Add(tokens ...string) {
	for _, t := range tokens {
		c.AddN(t, 1)
	}
}

// AddN counts n occurrences of token.
func (c *Counter) AddN(token string, n int) {
	if _, ok := c.counts[token]; !ok {
		c.order = append(c.order, token)
	}
	c.counts[token] += n
}

func (c *Counter) Count(token string) int {
	return c.counts[token]
}

// Len returns the number of distinct tokens.
func (c *Counter) Len() int {
	return len(c.order)
}

// Tokens returns the distinct tokens in first-seen order.
func (c *Counter) Tokens() []string {
	return c.order
}

// Vocabulary maps tokens to indices. Index 0 is Null, 1 is Unk and
// every other token has an index >= 2.
type Vocabulary struct {
	index  map[string]int
	tokens []string
}

// Build keeps the tokens counted at least minCount times, numbers them from 2
// in first-seen order and then reserves Null and Unk.
func Build(c *Counter, minCount int) (*Vocabulary, error) {
	for _, s := range []string{Null, Unk} {
		if c.Count(s) > 0 {
			return nil, fmt.Errorf("%w: %q", ErrSentinelCollision, s)
		}
	}

	v := &Vocabulary{
		index:  map[string]int{Null: NullIndex, Unk: UnkIndex},
		tokens: []string{Null, Unk},
	}
	for _, t := range c.Tokens() {
		if c.Count(t) >= minCount {
			v.index[t] = len(v.tokens)
			v.tokens = append(v.tokens, t)
		}
	}

	return v, nil
}

// Index returns the index of token and whether it has one.
func (v *Vocabulary) Index(token string) (int, bool) {
	i, ok := v.index[token]
	return i, ok
}

// Lookup returns the index of token, UnkIndex when it has none.
func (v *Vocabulary) Lookup(token string) int {
	if i, ok := v.index[token]; ok {
		return i
	}
	return UnkIndex
}

// Token returns the token with index i.
func (v *Vocabulary) Token(i int) (string, bool) {
	if i < 0 || i >= len(v.tokens) {
		return "", false
	}
	return v.tokens[i], true
}

// Len returns the number of indices, sentinels included.
func (v *Vocabulary) Len() int {
	return len(v.tokens)
}

// Tokens returns the tokens ordered by index.
func (v *Vocabulary) Tokens() []string {
	return v.tokens
}

// MarshalJSON encodes the vocabulary as a {token: index} object.
func (v *Vocabulary) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.index)
}

// UnmarshalJSON decodes a {token: index} object. Indices must be dense.
func (v *Vocabulary) UnmarshalJSON(b []byte) error {
	var index map[string]int
	if err := json.Unmarshal(b, &index); err != nil {
		return err
	}

	tokens := make([]string, len(index))
	seen := make([]bool, len(index))
	for t, i := range index {
		if i < 0 || i >= len(tokens) || seen[i] {
			return fmt.Errorf("vocab: index %d of %q is not dense", i, t)
		}
		tokens[i] = t
		seen[i] = true
	}

	v.index = index
	v.tokens = tokens
	return nil
}

// FromTokens rebuilds a vocabulary whose token i has index i.
func FromTokens(tokens []string) *Vocabulary {
	v := &Vocabulary{
		index:  make(map[string]int, len(tokens)),
		tokens: tokens,
	}
	for i, t := range tokens {
		v.index[t] = i
	}
	return v
}

// Prefix returns the tokens starting with prefix, sorted, at most n of them.
func (v *Vocabulary) Prefix(prefix string, n int) []string {
	var out []string
	for _, t := range v.tokens {
		if strings.HasPrefix(t, prefix) {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	if len(out) > n {
		out = out[:n]
	}
	return out
}
