// Package explore is an interactive prompt over the vocabularies of a
// prepared split.
package explore

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/c-bata/go-prompt"

	"github.com/revelaction/squadprep/dataset"
	"github.com/revelaction/squadprep/vocab"
)

const (
	completionThreshold = 2
	maxSuggestions      = 12

	// indexPrefix asks for the word at an index
	indexPrefix = "#"

	// charCommand asks for the index of a character
	charCommand = ":c"

	quit = "quit"
)

type Handler struct {
	Split    string
	Words    *vocab.Vocabulary
	Chars    *vocab.Vocabulary
	Metadata dataset.Metadata
	Out      io.Writer
}

func NewHandler(split string, wv, cv *vocab.Vocabulary, m dataset.Metadata, out io.Writer) *Handler {
	return &Handler{
		Split:    split,
		Words:    wv,
		Chars:    cv,
		Metadata: m,
		Out:      out,
	}
}

func (h *Handler) Run() error {
	fmt.Fprintf(h.Out, "%s: %d words, %d chars. word, #index, :c char, 🔧 quit\n", h.Split, h.Words.Len(), h.Chars.Len())

	history := []string{}

	for {
		in := prompt.Input("      🔎 ", h.completer,
			prompt.OptionTitle("squadprep explore"),
			prompt.OptionPrefixTextColor(prompt.Yellow),
			prompt.OptionPreviewSuggestionTextColor(prompt.Blue),
			prompt.OptionSelectedSuggestionBGColor(prompt.LightGray),
			prompt.OptionMaxSuggestion(maxSuggestions),
			prompt.OptionSuggestionBGColor(prompt.DarkGray),
			prompt.OptionHistory(history),
		)

		in = strings.TrimSpace(in)
		if in == quit {
			return nil
		}
		if in == "" {
			continue
		}

		history = append(history, in)
		fmt.Fprintln(h.Out, h.Eval(in))
	}
}

// Eval answers one prompt line.
func (h *Handler) Eval(in string) string {
	if rest, ok := strings.CutPrefix(in, charCommand); ok {
		return h.char(strings.TrimSpace(rest))
	}

	if rest, ok := strings.CutPrefix(in, indexPrefix); ok && rest != "" {
		i, err := strconv.Atoi(rest)
		if err != nil {
			return fmt.Sprintf("not an index: %q", rest)
		}
		tok, ok := h.Words.Token(i)
		if !ok {
			return fmt.Sprintf("index %d out of range [0,%d)", i, h.Words.Len())
		}
		return fmt.Sprintf("%d %s", i, tok)
	}

	// words are stored case folded
	word := strings.ToLower(in)
	if i, ok := h.Words.Index(word); ok {
		return fmt.Sprintf("%s %d", word, i)
	}
	return fmt.Sprintf("%s %d (%s)", word, vocab.UnkIndex, vocab.Unk)
}

func (h *Handler) char(c string) string {
	if c == "" {
		return "usage: :c <char>"
	}
	if i, ok := h.Chars.Index(c); ok {
		return fmt.Sprintf("%s %d", c, i)
	}
	return fmt.Sprintf("%s %d (%s)", c, vocab.UnkIndex, vocab.Unk)
}

func (h *Handler) completer(in prompt.Document) []prompt.Suggest {
	s := []prompt.Suggest{}

	word := in.GetWordBeforeCursor()
	if len(word) < completionThreshold || strings.HasPrefix(in.TextBeforeCursor(), charCommand) {
		return s
	}

	for _, tok := range h.Words.Prefix(strings.ToLower(word), maxSuggestions) {
		i, _ := h.Words.Index(tok)
		s = append(s, prompt.Suggest{Text: tok, Description: strconv.Itoa(i)})
	}
	return s
}
