// Package embedding reads pretrained word vectors and joins them against a
// word vocabulary.
package embedding

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/revelaction/squadprep/vocab"
)

// Lookup returns the pretrained vector of a word.
type Lookup interface {
	Vector(word string) ([]float64, bool, error)
}

// Map is an in-memory Lookup.
type Map map[string][]float64

var _ Lookup = Map(nil)

func (m Map) Vector(word string) ([]float64, bool, error) {
	v, ok := m[word]
	return v, ok, nil
}

// Entry is one line of a GloVe file.
type Entry struct {
	Word   string
	Vector []float64
}

// Scan reads GloVe lines, "<word> <v1> ... <vn>", and calls f for each.
// Blank lines are skipped.
func Scan(r io.Reader, f func(Entry) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		fields := strings.Split(text, " ")
		e := Entry{Word: fields[0], Vector: make([]float64, 0, len(fields)-1)}
		for _, s := range fields[1:] {
			x, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			e.Vector = append(e.Vector, x)
		}

		if err := f(e); err != nil {
			return err
		}
	}

	return scanner.Err()
}

// Load reads GloVe lines into a Map, keeping the words for which keep
// returns true. A nil keep keeps everything.
func Load(r io.Reader, keep func(word string) bool) (Map, error) {
	m := Map{}
	err := Scan(r, func(e Entry) error {
		if keep == nil || keep(e.Word) {
			m[e.Word] = e.Vector
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// IndexVectors keys the vectors of the vocabulary words by word index.
// Words without a vector are left out.
func IndexVectors(v *vocab.Vocabulary, l Lookup) (map[int][]float64, error) {
	out := map[int][]float64{}
	for i, word := range v.Tokens() {
		vec, ok, err := l.Vector(word)
		if err != nil {
			return nil, fmt.Errorf("vector of %q: %w", word, err)
		}
		if ok {
			out[i] = vec
		}
	}
	return out, nil
}

// Path returns the conventional GloVe file name inside dir, for example
// glove.6B.100d.txt.
func Path(dir, corpus string, size int) string {
	return filepath.Join(dir, fmt.Sprintf("glove.%s.%dd.txt", corpus, size))
}
