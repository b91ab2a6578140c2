// Package dataset defines the artifacts written for each split: the
// per-question data columns, the per-paragraph shared tables and the
// dimension metadata.
package dataset

import (
	"errors"
	"fmt"

	"github.com/revelaction/squadprep/corpus"
	"github.com/revelaction/squadprep/indexer"
	"github.com/revelaction/squadprep/nest"
	"github.com/revelaction/squadprep/split"
	"github.com/revelaction/squadprep/vocab"
)

// Ref points at a paragraph of the shared tables: [article, paragraph].
type Ref [2]int

// AnswerSpan is [[sent, token], [sent, token]], stop exclusive.
type AnswerSpan [2]corpus.Position

// Data holds one row per question. T is string before indexing and int
// after.
type Data[T any] struct {
	// paragraph of the word table
	RX split.Slice[Ref] `json:"*x"`

	// paragraph of the char table
	RCX split.Slice[Ref] `json:"*cx"`

	Q  split.Slice[nest.Node[T]] `json:"q"`
	CQ split.Slice[nest.Node[T]] `json:"cq"`

	Y split.Slice[AnswerSpan] `json:"y"`

	// whether some tree node covers the answer exactly
	B split.Slice[bool] `json:"b"`

	// best token F1 between the answer and a tree node
	F1 split.Slice[float64] `json:"f1"`

	IDs  split.Slice[string] `json:"ids"`
	Idxs split.Slice[int]    `json:"idxs"`
	A    split.Slice[string] `json:"a"`
}

// Len returns the number of rows.
func (d *Data[T]) Len() int {
	return len(d.Idxs)
}

// Columns exposes the fields for splitting.
func (d *Data[T]) Columns() split.Columns {
	return split.Columns{
		"*x":   d.RX,
		"*cx":  d.RCX,
		"q":    d.Q,
		"cq":   d.CQ,
		"y":    d.Y,
		"b":    d.B,
		"f1":   d.F1,
		"ids":  d.IDs,
		"idxs": d.Idxs,
		"a":    d.A,
	}
}

// FromColumns is the inverse of Columns.
func FromColumns[T any](c split.Columns) (Data[T], error) {
	var d Data[T]
	err := errors.Join(
		column(c, "*x", &d.RX),
		column(c, "*cx", &d.RCX),
		column(c, "q", &d.Q),
		column(c, "cq", &d.CQ),
		column(c, "y", &d.Y),
		column(c, "b", &d.B),
		column(c, "f1", &d.F1),
		column(c, "ids", &d.IDs),
		column(c, "idxs", &d.Idxs),
		column(c, "a", &d.A),
	)
	if err != nil {
		return Data[T]{}, err
	}
	return d, nil
}

func column[C split.Column](c split.Columns, name string, dst *C) error {
	col, ok := c[name].(C)
	if !ok {
		return fmt.Errorf("dataset: column %q missing or mistyped", name)
	}
	*dst = col
	return nil
}

// Shared holds the per-paragraph tables the data rows point into.
type Shared[T any] struct {
	// article -> paragraph -> sentence -> word
	X nest.Node[T] `json:"x"`

	// article -> paragraph -> sentence -> word -> char
	CX nest.Node[T] `json:"cx"`

	WV *vocab.Vocabulary `json:"wv"`
	CV *vocab.Vocabulary `json:"cv"`

	// word index -> pretrained vector, train only
	Idx2Vec map[int][]float64 `json:"idx2vec,omitempty"`
}

// Metadata bounds every dimension of the data.
type Metadata struct {
	MaxSentSize     int `json:"max_sent_size"`
	MaxNumWords     int `json:"max_num_words"`
	MaxNumSents     int `json:"max_num_sents"`
	MaxQuesSize     int `json:"max_ques_size"`
	MaxSentWordSize int `json:"max_sent_word_size"`
	MaxQuesWordSize int `json:"max_ques_word_size"`
	MaxWordSize     int `json:"max_word_size"`
	WordVocabSize   int `json:"word_vocab_size"`
	CharVocabSize   int `json:"char_vocab_size"`
}

// Artifact is everything written for one split.
type Artifact struct {
	Data     Data[int]
	Shared   *Shared[int]
	Metadata Metadata
}

// Index maps raw data through the vocabularies. Question words are case
// folded; characters are not.
func Index(d Data[string], wv, cv *vocab.Vocabulary) Data[int] {
	out := Data[int]{
		RX:   d.RX,
		RCX:  d.RCX,
		Q:    make(split.Slice[nest.Node[int]], len(d.Q)),
		CQ:   make(split.Slice[nest.Node[int]], len(d.CQ)),
		Y:    d.Y,
		B:    d.B,
		F1:   d.F1,
		IDs:  d.IDs,
		Idxs: d.Idxs,
		A:    d.A,
	}
	for i, q := range d.Q {
		out.Q[i] = indexer.Apply(q, wv, true)
	}
	for i, cq := range d.CQ {
		out.CQ[i] = indexer.Apply(cq, cv, false)
	}
	return out
}

// IndexShared maps the raw shared tables through the vocabularies.
func IndexShared(s Shared[string], wv, cv *vocab.Vocabulary) *Shared[int] {
	return &Shared[int]{
		X:  indexer.Apply(s.X, wv, true),
		CX: indexer.Apply(s.CX, cv, false),
		WV: wv,
		CV: cv,
	}
}
