package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/rcrowley/go-metrics"

	"github.com/revelaction/squadprep/corpus"
	"github.com/revelaction/squadprep/dataset"
	"github.com/revelaction/squadprep/embedding"
	"github.com/revelaction/squadprep/split"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func parse(words ...string) *corpus.Parse {
	nodes := make([]corpus.Node, len(words))
	offset := 0
	for i, w := range words {
		nodes[i] = corpus.Node{Word: w, Tag: "X", Start: offset, Stop: offset + len(w)}
		offset += len(w) + 1
	}
	return &corpus.Parse{Nodes: nodes}
}

func answer(s0, t0, s1, t1 int, text string) []corpus.Answer {
	return []corpus.Answer{{
		Start: corpus.Position{Sent: s0, Token: t0},
		Stop:  corpus.Position{Sent: s1, Token: t1},
		Text:  text,
	}}
}

func catParagraph() corpus.Paragraph {
	return corpus.Paragraph{
		Context: "The cat sat on the mat. It purred.",
		ContextDep: []*corpus.Parse{
			parse("The", "cat", "sat", "on", "the", "mat", "."),
			parse("It", "purred", "."),
		},
		ContextConst: []string{
			"(ROOT (S (NP (DT The) (NN cat)) (VP (VBD sat) (PP (IN on) (NP (DT the) (NN mat)))) (. .)))",
			"(ROOT (S (NP (PRP It)) (VP (VBD purred)) (. .)))",
		},
		Qas: []corpus.QA{
			{Question: "Who sat?", QuestionDep: parse("Who", "sat", "?"), Id: "q1", Answers: answer(0, 0, 0, 2, "The cat")},
			{Question: "What purred?", QuestionDep: nil, Id: "q2", Answers: answer(1, 0, 1, 1, "It")},
			{Question: "Where did it sit?", QuestionDep: parse("Where", "did", "it", "sit", "?"), Id: "q3", Answers: answer(0, 3, 0, 9, "on the mat")},
			{Question: "Why?", QuestionDep: parse("Why", "?"), Id: "q4"},
		},
	}
}

func dogParagraph() corpus.Paragraph {
	return corpus.Paragraph{
		Context:      "Dogs bark at the cat.",
		ContextDep:   []*corpus.Parse{parse("Dogs", "bark", "at", "the", "cat", ".")},
		ContextConst: []string{"(ROOT (S (NP (NNS Dogs)) (VP (VBP bark) (PP (IN at) (NP (DT the) (NN cat)))) (. .)))"},
		Qas: []corpus.QA{
			{Question: "What barks?", QuestionDep: parse("What", "barks", "?"), Id: "d1", Answers: answer(0, 1, 0, 5, "bark at the cat")},
		},
	}
}

func testCorpus() *corpus.Corpus {
	return &corpus.Corpus{Data: []corpus.Article{
		{Title: "Cats", Paragraphs: []corpus.Paragraph{catParagraph()}},
		{Title: "Dogs", Paragraphs: []corpus.Paragraph{dogParagraph()}},
	}}
}

func TestExtract(t *testing.T) {
	var progress []int
	raw, err := Extract(testCorpus(),
		WithLogger(quiet),
		WithProgress(func(split string, current, total int) {
			if split != "train" || total != 2 {
				t.Errorf("progress(%q, %d, %d)", split, current, total)
			}
			progress = append(progress, current)
		}))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(progress) != 2 || progress[1] != 2 {
		t.Errorf("progress calls = %v", progress)
	}

	d := raw.Data
	if d.Len() != 4 {
		t.Fatalf("rows = %d, want 4 (question without answer skipped)", d.Len())
	}
	for _, col := range d.Columns() {
		if col.Len() != 4 {
			t.Errorf("column length %d, want 4", col.Len())
		}
	}

	if got := []string(d.IDs); strings.Join(got, ",") != "q1,q2,q3,d1" {
		t.Errorf("ids = %v", got)
	}
	if d.RX[3] != (dataset.Ref{1, 0}) {
		t.Errorf("*x of d1 = %v", d.RX[3])
	}

	// q1 aligns exactly with the subject NP
	if !d.B[0] || d.F1[0] != 1 {
		t.Errorf("q1: b=%v f1=%v", d.B[0], d.F1[0])
	}

	// q3 stops past the sentence and is clamped to the final token
	want := dataset.AnswerSpan{{Sent: 0, Token: 6}, {Sent: 0, Token: 7}}
	if d.Y[2] != want {
		t.Errorf("q3 span = %v, want %v", d.Y[2], want)
	}

	// d1 covers "bark at the cat" = [1,5), the VP; exact
	if !d.B[3] || d.F1[3] != 1 {
		t.Errorf("d1: b=%v f1=%v", d.B[3], d.F1[3])
	}

	if q := d.Q[1]; q.Len() != 0 {
		t.Errorf("unparsed question has %d words", q.Len())
	}

	r := raw.Report
	if r.OutOfRange != 1 || r.Unparsed != 1 || r.Answers != 4 || r.Questions != 5 {
		t.Errorf("report = %+v", r)
	}

	m := raw.Metadata
	if m.MaxNumSents != 2 || m.MaxSentSize != 7 || m.MaxNumWords != 10 || m.MaxQuesSize != 5 || m.MaxWordSize != 6 {
		t.Errorf("metadata = %+v", m)
	}

	b, err := json.Marshal(raw.Shared.X)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte(`[[[["The","cat","sat","on","the","mat","."],["It","purred","."]]],[[["Dogs"`)) {
		t.Errorf("x = %s", b)
	}
}

func TestExtractCountsOutOfRangeOncePerOccurrence(t *testing.T) {
	c := &corpus.Corpus{Data: []corpus.Article{{Paragraphs: []corpus.Paragraph{catParagraph(), catParagraph(), dogParagraph()}}}}
	reg := metrics.NewRegistry()

	_, err := Extract(c, WithLogger(quiet), WithRegistry(reg))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if n := reg.Get(MetricOutOfRange).(metrics.Counter).Count(); n != 2 {
		t.Errorf("%s = %d, want 2", MetricOutOfRange, n)
	}
	if n := reg.Get(MetricUnparsed).(metrics.Counter).Count(); n != 2 {
		t.Errorf("%s = %d, want 2", MetricUnparsed, n)
	}
}

func TestExtractSharedRegistry(t *testing.T) {
	reg := metrics.NewRegistry()

	var reports []Report
	for i := 0; i < 2; i++ {
		raw, err := Extract(testCorpus(), WithLogger(quiet), WithRegistry(reg))
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		reports = append(reports, raw.Report)
	}

	if reports[1].OutOfRange != 1 || reports[1].Unparsed != 1 || reports[1].Answers != 4 || reports[1].Exact != reports[0].Exact {
		t.Errorf("second report = %+v", reports[1])
	}
	if reports[1].AverageF1 != reports[0].AverageF1 || reports[1].MedianF1 != reports[0].MedianF1 {
		t.Errorf("f1 differs across runs: %v/%v vs %v/%v",
			reports[0].AverageF1, reports[0].MedianF1, reports[1].AverageF1, reports[1].MedianF1)
	}
	if reports[0].AverageF1 > 1 || reports[0].MedianF1 != 1 {
		t.Errorf("f1 = %v, median %v", reports[0].AverageF1, reports[0].MedianF1)
	}

	// the registry keeps the running totals
	if n := reg.Get(MetricAnswers).(metrics.Counter).Count(); n != 8 {
		t.Errorf("%s = %d, want 8", MetricAnswers, n)
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		in   []float64
		want float64
	}{
		{[]float64{0.5}, 0.5},
		{[]float64{1, 0, 0.5}, 0.5},
		{[]float64{1, 0, 0.5, 0.25}, 0.375},
	}

	for _, tt := range tests {
		if got := median(tt.in); got != tt.want {
			t.Errorf("median(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExtractDebug(t *testing.T) {
	raw, err := Extract(testCorpus(), WithLogger(quiet), WithDebug(true))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if raw.Data.Len() != 3 {
		t.Errorf("rows = %d, want 3", raw.Data.Len())
	}
	if raw.Shared.X.Len() != 1 {
		t.Errorf("articles = %d, want 1", raw.Shared.X.Len())
	}
}

func TestExtractAnswerErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*corpus.Paragraph)
	}{
		{"missing sentence", func(p *corpus.Paragraph) { p.Qas[0].Answers = answer(5, 0, 5, 1, "x") }},
		{"missing tree", func(p *corpus.Paragraph) { p.ContextConst = p.ContextConst[:1]; p.Qas[0].Answers = answer(1, 0, 1, 1, "It") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := catParagraph()
			tt.mutate(&p)
			c := &corpus.Corpus{Data: []corpus.Article{{Paragraphs: []corpus.Paragraph{p}}}}

			_, err := Extract(c, WithLogger(quiet))
			if !errors.Is(err, ErrAnswerSentence) {
				t.Errorf("Extract() error = %v, want ErrAnswerSentence", err)
			}
		})
	}
}

func TestExtractEmptyAnswerSentence(t *testing.T) {
	p := catParagraph()
	p.ContextDep[1] = nil
	c := &corpus.Corpus{Data: []corpus.Article{{Paragraphs: []corpus.Paragraph{p}}}}
	reg := metrics.NewRegistry()

	raw, err := Extract(c, WithLogger(quiet), WithRegistry(reg))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	d := raw.Data
	if d.Len() != 3 {
		t.Fatalf("rows = %d, want 3", d.Len())
	}

	// q2 answers inside the now empty sentence 1
	want := dataset.AnswerSpan{{Sent: 1, Token: 0}, {Sent: 1, Token: 0}}
	if d.Y[1] != want {
		t.Errorf("q2 span = %v, want %v", d.Y[1], want)
	}
	if d.B[1] || d.F1[1] != 0 {
		t.Errorf("q2: b=%v f1=%v, want false 0", d.B[1], d.F1[1])
	}

	// q2 and the overlong q3
	if n := reg.Get(MetricOutOfRange).(metrics.Counter).Count(); n != 2 {
		t.Errorf("%s = %d, want 2", MetricOutOfRange, n)
	}
	if raw.Report.OutOfRange != 2 {
		t.Errorf("report out of range = %d, want 2", raw.Report.OutOfRange)
	}
}

func TestExtractBadTree(t *testing.T) {
	p := catParagraph()
	p.ContextConst[0] = "(ROOT (S"
	c := &corpus.Corpus{Data: []corpus.Article{{Paragraphs: []corpus.Paragraph{p}}}}

	if _, err := Extract(c, WithLogger(quiet)); err == nil {
		t.Errorf("expected error for malformed tree")
	}
}

func TestRun(t *testing.T) {
	train := &corpus.Corpus{Data: []corpus.Article{
		{Paragraphs: []corpus.Paragraph{catParagraph(), catParagraph(), catParagraph()}},
		{Paragraphs: []corpus.Paragraph{dogParagraph(), dogParagraph()}},
	}}
	test := &corpus.Corpus{Data: []corpus.Article{{Paragraphs: []corpus.Paragraph{
		{
			ContextDep:   []*corpus.Parse{parse("Zebras", "run", ".")},
			ContextConst: []string{"(ROOT (S (NP (NNS Zebras)) (VP (VBP run)) (. .)))"},
			Qas:          []corpus.QA{{QuestionDep: parse("Who", "runs", "?"), Id: "z1", Answers: answer(0, 0, 0, 1, "Zebras")}},
		},
	}}}}

	lookup := embedding.Map{"cat": {1, 2}, "the": {3, 4}, "zebras": {5, 6}}
	reg := metrics.NewRegistry()
	cfg := Config{MinWordCount: 2, MinCharCount: 1, TrainRatio: 0.75}

	a, err := Run(train, test, lookup, cfg, WithLogger(quiet), WithRegistry(reg))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// 3*3 + 2*1 rows, floor(0.75*11) = 8
	if a.Train.Data.Len() != 8 || a.Dev.Data.Len() != 3 {
		t.Errorf("train/dev = %d/%d, want 8/3", a.Train.Data.Len(), a.Dev.Data.Len())
	}
	if a.Dev.Data.Idxs[0] != 8 {
		t.Errorf("dev starts at %d, want 8", a.Dev.Data.Idxs[0])
	}
	if a.Dev.Shared != a.Train.Shared {
		t.Errorf("dev does not share the train tables")
	}

	wv := a.Train.Shared.WV
	if a.Test.Shared.WV != wv || a.Test.Shared.CV != a.Train.Shared.CV {
		t.Errorf("test does not use the train vocabularies")
	}
	if a.Test.Metadata.WordVocabSize != wv.Len() || a.Train.Metadata.WordVocabSize != wv.Len() {
		t.Errorf("vocab sizes: train %d test %d want %d", a.Train.Metadata.WordVocabSize, a.Test.Metadata.WordVocabSize, wv.Len())
	}
	if a.Test.Metadata.MaxSentSize != 3 {
		t.Errorf("test keeps its own bounds, got MaxSentSize %d", a.Test.Metadata.MaxSentSize)
	}

	// "zebras" never occurs in train
	if _, ok := wv.Index("zebras"); ok {
		t.Errorf("test word leaked into the vocabulary")
	}
	q, _ := json.Marshal(a.Test.Data.Q[0])
	who, _ := wv.Index("who")
	if string(q) != "["+itoa(who)+",1,"+itoa(wv.Lookup("?"))+"]" {
		t.Errorf("test q = %s", q)
	}

	// idx2vec only holds train words with a vector
	cat, _ := wv.Index("cat")
	the, _ := wv.Index("the")
	if len(a.Train.Shared.Idx2Vec) != 2 || a.Train.Shared.Idx2Vec[cat][0] != 1 || a.Train.Shared.Idx2Vec[the][0] != 3 {
		t.Errorf("idx2vec = %v", a.Train.Shared.Idx2Vec)
	}
	if a.Test.Shared.Idx2Vec != nil {
		t.Errorf("test has idx2vec")
	}

	if n := reg.Get("train." + MetricOutOfRange).(metrics.Counter).Count(); n != 3 {
		t.Errorf("train out of range = %d, want 3", n)
	}
	if a.TestReport.Answers != 1 || a.TrainReport.Answers != 11 {
		t.Errorf("reports: train %d test %d answers", a.TrainReport.Answers, a.TestReport.Answers)
	}
}

func TestRunVocabularyThreshold(t *testing.T) {
	train := &corpus.Corpus{Data: []corpus.Article{{Paragraphs: []corpus.Paragraph{dogParagraph()}}}}
	a, err := Run(train, train, nil, Config{MinWordCount: 1, MinCharCount: 1000, TrainRatio: 0.5}, WithLogger(quiet))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// every char falls below the threshold
	if a.Train.Shared.CV.Len() != 2 {
		t.Errorf("char vocab = %v", a.Train.Shared.CV.Tokens())
	}
	cx, _ := json.Marshal(a.Test.Shared.CX)
	if strings.ContainsAny(string(cx), "023456789") {
		t.Errorf("cx has indices other than UNK: %s", cx)
	}

	// dogs bark at the cat . what barks ?
	if a.Train.Shared.WV.Len() != 2+9 {
		t.Errorf("word vocab = %v", a.Train.Shared.WV.Tokens())
	}
	if tok, _ := a.Train.Shared.WV.Token(2); tok != "dogs" {
		t.Errorf("first word = %q, want dogs", tok)
	}
	if a.Train.Shared.Idx2Vec != nil {
		t.Errorf("idx2vec without lookup")
	}
}

func TestRunErrors(t *testing.T) {
	c := testCorpus()

	for _, ratio := range []float64{1.5, math.NaN(), math.Inf(-1)} {
		_, err := Run(c, c, nil, Config{TrainRatio: ratio}, WithLogger(quiet))
		if !errors.Is(err, split.ErrRatio) {
			t.Errorf("Run(ratio %v) error = %v, want ErrRatio", ratio, err)
		}
	}

	bad := catParagraph()
	bad.Qas[0].Answers = answer(9, 0, 9, 1, "x")
	badCorpus := &corpus.Corpus{Data: []corpus.Article{{Paragraphs: []corpus.Paragraph{bad}}}}
	_, err := Run(c, badCorpus, nil, DefaultConfig(), WithLogger(quiet))
	if !errors.Is(err, ErrAnswerSentence) || !strings.HasPrefix(err.Error(), "test:") {
		t.Errorf("Run() error = %v, want test ErrAnswerSentence", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if c := DefaultConfig(); c.MinWordCount != 100 || c.MinCharCount != 500 {
		t.Errorf("DefaultConfig() = %+v", c)
	}
	if !errors.Is((Config{TrainRatio: 0}).Validate(), split.ErrRatio) {
		t.Errorf("ratio 0 accepted")
	}
}

func itoa(i int) string {
	b, _ := json.Marshal(i)
	return string(b)
}
