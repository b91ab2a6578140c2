package stat

import "unicode/utf8"

type Handler struct {
	stats  Stats
	bounds Bounds
}

// Stats are corpus totals used for reporting.
type Stats struct {
	NumParagraphs         int         `json:"num_paragraphs"`
	NumSentences          int         `json:"num_sentences"`
	NumTokens             int         `json:"num_tokens"`
	NumQuestions          int         `json:"num_questions"`
	TokensPerSentenceMean int         `json:"tokens_per_sentence_mean"`
	TokensPerSentenceDis  map[int]int `json:"tokens_per_sentence_dis"`
}

// Bounds are the running maxima that fix the tensor dimensions downstream.
type Bounds struct {
	// sentences per paragraph
	MaxNumSents int `json:"max_num_sents"`

	// words per sentence
	MaxSentSize int `json:"max_sent_size"`

	// words per paragraph
	MaxNumWords int `json:"max_num_words"`

	// characters per context word
	MaxSentWordSize int `json:"max_sent_word_size"`

	// words per question
	MaxQuesSize int `json:"max_ques_size"`

	// characters per question word
	MaxQuesWordSize int `json:"max_ques_word_size"`

	// characters per word, context and question
	MaxWordSize int `json:"max_word_size"`
}

func (h *Handler) Get() Stats {
	return h.stats
}

func (h *Handler) Bounds() Bounds {
	return h.bounds
}

func NewHandler() *Handler {
	stats := Stats{TokensPerSentenceDis: map[int]int{}}
	return &Handler{
		stats: stats,
	}
}

// AggregateContext records one paragraph given as sentences of words.
func (h *Handler) AggregateContext(sentences [][]string) {
	h.stats.NumParagraphs++

	numWords := 0
	for _, words := range sentences {
		h.stats.NumSentences++
		h.stats.NumTokens += len(words)
		h.stats.TokensPerSentenceDis[len(words)]++

		numWords += len(words)
		h.bounds.MaxSentSize = max(h.bounds.MaxSentSize, len(words))
		for _, w := range words {
			n := utf8.RuneCountInString(w)
			h.bounds.MaxSentWordSize = max(h.bounds.MaxSentWordSize, n)
			h.bounds.MaxWordSize = max(h.bounds.MaxWordSize, n)
		}
	}

	h.bounds.MaxNumSents = max(h.bounds.MaxNumSents, len(sentences))
	h.bounds.MaxNumWords = max(h.bounds.MaxNumWords, numWords)

	if h.stats.NumSentences > 0 {
		h.stats.TokensPerSentenceMean = h.stats.NumTokens / h.stats.NumSentences
	}
}

// AggregateQuestion records the words of one question.
func (h *Handler) AggregateQuestion(words []string) {
	h.stats.NumQuestions++

	h.bounds.MaxQuesSize = max(h.bounds.MaxQuesSize, len(words))
	for _, w := range words {
		n := utf8.RuneCountInString(w)
		h.bounds.MaxQuesWordSize = max(h.bounds.MaxQuesWordSize, n)
		h.bounds.MaxWordSize = max(h.bounds.MaxWordSize, n)
	}
}
