package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/revelaction/squadprep/pipeline"
)

var (
	Yellow256 = "\033[1;38;5;130m"
	Grey256   = "\033[1;38;5;145m"
	Off       = "\033[0m"
)

func SupportedFormats() []string {
	return []string{"text", "json"}
}

// Renderer writes run reports.
type Renderer interface {
	Render(reports []pipeline.Report)
}

// New returns the renderer for format, writing to w.
func New(format string, w io.Writer, hasColor bool) (Renderer, error) {
	switch format {
	case "text":
		return &TextRenderer{W: w, HasColor: hasColor}, nil
	case "json":
		return NewJSONRenderer(w), nil
	}
	return nil, fmt.Errorf("unsupported format %q, want one of %v", format, SupportedFormats())
}

// TextRenderer writes one block of "name: value" lines per report.
type TextRenderer struct {
	W        io.Writer
	HasColor bool

	// Distribution adds the sentence length distribution.
	Distribution bool
}

func (r *TextRenderer) Render(reports []pipeline.Report) {
	for i, rep := range reports {
		if i > 0 {
			fmt.Fprintln(r.W)
		}
		r.report(rep)
	}
}

func (r *TextRenderer) report(rep pipeline.Report) {
	fmt.Fprintln(r.W, r.color(Yellow256, rep.Split))

	s := rep.Stats
	r.line("num paragraphs", s.NumParagraphs)
	r.line("num sentences", s.NumSentences)
	r.line("num tokens", s.NumTokens)
	r.line("num tokens per sentence", s.TokensPerSentenceMean)
	r.line("num questions", rep.Questions)
	r.line("num answers", rep.Answers)
	r.line("num unparsed questions", rep.Unparsed)
	r.line("num invalid stop idx", rep.OutOfRange)
	r.line("num exact spans", rep.Exact)
	r.line("average f1", fmt.Sprintf("%.4f", rep.AverageF1))
	r.line("median f1", fmt.Sprintf("%.4f", rep.MedianF1))

	b := rep.Bounds
	r.line("max sent size", b.MaxSentSize)
	r.line("max num words", b.MaxNumWords)
	r.line("max num sents", b.MaxNumSents)
	r.line("max ques size", b.MaxQuesSize)
	r.line("max sent word size", b.MaxSentWordSize)
	r.line("max ques word size", b.MaxQuesWordSize)
	r.line("max word size", b.MaxWordSize)

	if !r.Distribution {
		return
	}

	sizes := make([]int, 0, len(s.TokensPerSentenceDis))
	for size := range s.TokensPerSentenceDis {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)
	for _, size := range sizes {
		fmt.Fprintf(r.W, "  %4d %s\n", size, r.color(Grey256, fmt.Sprint(s.TokensPerSentenceDis[size])))
	}
}

func (r *TextRenderer) line(name string, v any) {
	fmt.Fprintf(r.W, "%s: %v\n", name, v)
}

func (r *TextRenderer) color(c, s string) string {
	if !r.HasColor {
		return s
	}
	return c + s + Off
}

var _ Renderer = (*TextRenderer)(nil)
