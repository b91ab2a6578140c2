// Package extract turns parsed paragraphs and questions into nested word and
// character sequences while counting tokens and tracking dimension bounds.
package extract

import (
	"strings"

	"github.com/revelaction/squadprep/corpus"
	"github.com/revelaction/squadprep/nest"
	"github.com/revelaction/squadprep/stat"
	"github.com/revelaction/squadprep/vocab"
)

// Accumulator collects counts and bounds over one corpus.
type Accumulator struct {
	// Words counts lowercased context and question words.
	Words *vocab.Counter

	// Chars counts characters, case preserved.
	Chars *vocab.Counter

	Stat *stat.Handler
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		Words: vocab.NewCounter(),
		Chars: vocab.NewCounter(),
		Stat:  stat.NewHandler(),
	}
}

// Context is a paragraph as sentence -> word and sentence -> word -> char.
type Context struct {
	Words nest.Node[string]
	Chars nest.Node[string]

	words [][]string
}

// SentenceLen returns the number of words of sentence i.
func (c Context) SentenceLen(i int) int {
	return len(c.words[i])
}

// NumSentences returns the number of sentences.
func (c Context) NumSentences() int {
	return len(c.words)
}

// Question is a question as word and word -> char.
type Question struct {
	Words nest.Node[string]
	Chars nest.Node[string]

	// Parsed is false when the question had no parse.
	Parsed bool

	words []string
}

// Context extracts one paragraph and updates the context bounds.
func (a *Accumulator) Context(sentences [][]corpus.Node) Context {
	words := make([][]string, len(sentences))
	wordNodes := make([]nest.Node[string], len(sentences))
	charNodes := make([]nest.Node[string], len(sentences))

	for i, nodes := range sentences {
		words[i] = make([]string, len(nodes))
		chars := make([]nest.Node[string], len(nodes))
		for j, n := range nodes {
			words[i][j] = n.Word
			chars[j] = nest.Chars(n.Word)
		}
		wordNodes[i] = nest.Leaves(words[i])
		charNodes[i] = nest.List(chars...)
	}

	a.Stat.AggregateContext(words)

	return Context{
		Words: nest.List(wordNodes...),
		Chars: nest.List(charNodes...),
		words: words,
	}
}

// Question extracts one question and updates the question bounds. A nil
// parse yields an empty question with Parsed unset.
func (a *Accumulator) Question(parse *corpus.Parse) Question {
	q := Question{
		Words: nest.List[string](),
		Chars: nest.List[string](),
	}

	if parse != nil {
		q.words = parse.Words()
		q.Parsed = true

		chars := make([]nest.Node[string], len(q.words))
		for i, w := range q.words {
			chars[i] = nest.Chars(w)
		}
		q.Words = nest.Leaves(q.words)
		q.Chars = nest.List(chars...)
	}

	a.Stat.AggregateQuestion(q.words)
	return q
}

// Count adds the words and characters of a paragraph and one of its
// questions to the counters. It is called once per question, so context
// tokens weigh by the number of questions asked about them.
func (a *Accumulator) Count(ctx Context, q Question) {
	for _, sentence := range ctx.words {
		a.countWords(sentence)
	}
	a.countWords(q.words)
}

func (a *Accumulator) countWords(words []string) {
	for _, w := range words {
		a.Words.Add(strings.ToLower(w))
		for _, r := range w {
			a.Chars.Add(string(r))
		}
	}
}
