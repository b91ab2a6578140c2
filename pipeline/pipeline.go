// Package pipeline turns augmented SQuAD corpora into indexed train, dev and
// test artifacts.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/revelaction/squadprep/corpus"
	"github.com/revelaction/squadprep/dataset"
	"github.com/revelaction/squadprep/extract"
	"github.com/revelaction/squadprep/nest"
	"github.com/revelaction/squadprep/split"
	"github.com/revelaction/squadprep/tree"
	"github.com/revelaction/squadprep/vocab"
)

// ErrAnswerSentence is returned when an answer points at a sentence that
// does not exist or has no tree.
var ErrAnswerSentence = errors.New("pipeline: answer outside the paragraph")

// Raw is an extracted split before indexing.
type Raw struct {
	Data     dataset.Data[string]
	Shared   dataset.Shared[string]
	Metadata dataset.Metadata

	// Words and Chars are the frequency counters of the split.
	Words *vocab.Counter
	Chars *vocab.Counter

	Report Report
}

// Extract walks every question of c, aligning the first answer of each
// against the constituency tree of its sentence.
func Extract(c *corpus.Corpus, opts ...Option) (*Raw, error) {
	cfg := newConfig(opts)
	log := cfg.logger.With("split", cfg.name)

	acc := extract.NewAccumulator()
	diag := newDiagnostics(cfg.registry)
	data := newData()

	total := c.NumParagraphs()
	if cfg.debug && len(c.Data) > 0 {
		total = len(c.Data[0].Paragraphs)
	}

	var x, cx []nest.Node[string]
	current := 0
	for ai, article := range c.Data {
		var xa, cxa []nest.Node[string]

		for pi, para := range article.Paragraphs {
			current++
			cfg.progress(cfg.name, current, total)

			ctx := acc.Context(para.Sentences())
			xa = append(xa, ctx.Words)
			cxa = append(cxa, ctx.Chars)

			trees := map[int]*tree.Tree{}

			for _, qa := range para.Qas {
				q := acc.Question(qa.QuestionDep)
				if !q.Parsed {
					log.Warn("unparsed question", "id", qa.Id, "question", qa.Question)
					diag.unparsedQuestion()
				}
				acc.Count(ctx, q)

				// only the first answer is used
				if len(qa.Answers) == 0 {
					continue
				}
				answer := qa.Answers[0]

				start, stop, clamped, err := resolveSpan(ctx, answer)
				if err != nil {
					return nil, fmt.Errorf("article %d paragraph %d question %s: %w", ai, pi, qa.Id, err)
				}
				if clamped {
					log.Warn("answer span exceeds sentence, clamped",
						"article", ai, "paragraph", pi, "id", qa.Id, "answer", answer.Text,
						"sentence_len", ctx.SentenceLen(answer.Start.Sent))
					diag.spanOutOfRange()
				}

				// an empty span aligns with nothing
				var al tree.Alignment
				if stop.Token > start.Token {
					t, err := sentenceTree(trees, para.ContextConst, start.Sent)
					if err != nil {
						return nil, fmt.Errorf("article %d paragraph %d question %s: %w", ai, pi, qa.Id, err)
					}
					al = tree.Align(t, tree.Span{Start: start.Token, Stop: stop.Token})
				}
				diag.answer(al.F1, al.Exact)

				data.RX = append(data.RX, dataset.Ref{ai, pi})
				data.RCX = append(data.RCX, dataset.Ref{ai, pi})
				data.Q = append(data.Q, q.Words)
				data.CQ = append(data.CQ, q.Chars)
				data.Y = append(data.Y, dataset.AnswerSpan{start, stop})
				data.B = append(data.B, al.Exact)
				data.F1 = append(data.F1, al.F1)
				data.IDs = append(data.IDs, qa.Id)
				data.Idxs = append(data.Idxs, len(data.Idxs))
				data.A = append(data.A, answer.Text)
			}
		}

		x = append(x, nest.List(xa...))
		cx = append(cx, nest.List(cxa...))

		if cfg.debug {
			break
		}
	}

	report := diag.report(cfg.name, acc.Stat)
	log.Info("extracted",
		"questions", report.Questions,
		"rows", data.Len(),
		"invalid_stop_idx", report.OutOfRange,
		"unparsed_questions", report.Unparsed,
		"average_f1", report.AverageF1)
	log.Debug("bounds", "bounds", report.Bounds)

	return &Raw{
		Data:     data,
		Shared:   dataset.Shared[string]{X: nest.List(x...), CX: nest.List(cx...)},
		Metadata: metadata(report),
		Words:    acc.Words,
		Chars:    acc.Chars,
		Report:   report,
	}, nil
}

func newData() dataset.Data[string] {
	return dataset.Data[string]{
		RX:   split.Slice[dataset.Ref]{},
		RCX:  split.Slice[dataset.Ref]{},
		Q:    split.Slice[nest.Node[string]]{},
		CQ:   split.Slice[nest.Node[string]]{},
		Y:    split.Slice[dataset.AnswerSpan]{},
		B:    split.Slice[bool]{},
		F1:   split.Slice[float64]{},
		IDs:  split.Slice[string]{},
		Idxs: split.Slice[int]{},
		A:    split.Slice[string]{},
	}
}

func metadata(r Report) dataset.Metadata {
	b := r.Bounds
	return dataset.Metadata{
		MaxSentSize:     b.MaxSentSize,
		MaxNumWords:     b.MaxNumWords,
		MaxNumSents:     b.MaxNumSents,
		MaxQuesSize:     b.MaxQuesSize,
		MaxSentWordSize: b.MaxSentWordSize,
		MaxQuesWordSize: b.MaxQuesWordSize,
		MaxWordSize:     b.MaxWordSize,
	}
}

// resolveSpan checks the answer positions against the paragraph. A span
// that runs past its sentence is clamped to the last token of the start
// sentence, or to an empty span when that sentence has no tokens.
func resolveSpan(ctx extract.Context, a corpus.Answer) (start, stop corpus.Position, clamped bool, err error) {
	start, stop = a.Start, a.Stop

	for _, p := range []corpus.Position{start, stop} {
		if p.Sent < 0 || p.Sent >= ctx.NumSentences() {
			return start, stop, false, fmt.Errorf("%w: sentence %d of %d", ErrAnswerSentence, p.Sent, ctx.NumSentences())
		}
	}

	n := ctx.SentenceLen(start.Sent)
	if n == 0 {
		// no token to clamp to; the span stays empty
		start.Token, stop = 0, corpus.Position{Sent: start.Sent, Token: 0}
		return start, stop, true, nil
	}

	if start.Token < 0 || start.Token >= n || stop.Token > ctx.SentenceLen(stop.Sent) {
		start.Token = n - 1
		stop.Token = start.Token + 1
		clamped = true
	}

	return start, stop, clamped, nil
}

func sentenceTree(cache map[int]*tree.Tree, consts []string, sent int) (*tree.Tree, error) {
	if t, ok := cache[sent]; ok {
		return t, nil
	}
	if sent >= len(consts) {
		return nil, fmt.Errorf("%w: no tree for sentence %d", ErrAnswerSentence, sent)
	}

	t, err := tree.Parse(consts[sent])
	if err != nil {
		return nil, fmt.Errorf("tree of sentence %d: %w", sent, err)
	}
	cache[sent] = t
	return t, nil
}
