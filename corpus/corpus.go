package corpus

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Corpus is an augmented SQuAD file: the original QA data plus dependency
// node lists and constituency trees for every context sentence and question.
type Corpus struct {
	Data    []Article `json:"data"`
	Version string    `json:"version"`
}

type Article struct {
	Title      string      `json:"title"`
	Paragraphs []Paragraph `json:"paragraphs"`
}

type Paragraph struct {
	// The raw context text
	Context string `json:"context"`

	// One dependency parse per sentence. A nil entry is a sentence the
	// parser could not handle and counts as empty.
	ContextDep []*Parse `json:"context_dep"`

	// One bracketed constituency tree per sentence, parallel to ContextDep.
	ContextConst []string `json:"context_const"`

	Qas []QA `json:"qas"`
}

// Sentences returns the node list of every sentence of the paragraph.
func (p Paragraph) Sentences() [][]Node {
	sentences := make([][]Node, len(p.ContextDep))
	for i, parse := range p.ContextDep {
		if parse == nil {
			sentences[i] = []Node{}
			continue
		}
		sentences[i] = parse.Nodes
	}

	return sentences
}

// NumQuestions returns the number of questions in the corpus.
func (c *Corpus) NumQuestions() int {
	n := 0
	for _, a := range c.Data {
		for _, p := range a.Paragraphs {
			n += len(p.Qas)
		}
	}
	return n
}

// NumParagraphs returns the number of paragraphs in the corpus.
func (c *Corpus) NumParagraphs() int {
	n := 0
	for _, a := range c.Data {
		n += len(a.Paragraphs)
	}
	return n
}

// WordSet returns every context and question word, lowercased.
func (c *Corpus) WordSet() map[string]bool {
	words := map[string]bool{}
	for _, a := range c.Data {
		for _, p := range a.Paragraphs {
			for _, sentence := range p.Sentences() {
				for _, n := range sentence {
					words[strings.ToLower(n.Word)] = true
				}
			}
			for _, qa := range p.Qas {
				if qa.QuestionDep == nil {
					continue
				}
				for _, w := range qa.QuestionDep.Words() {
					words[strings.ToLower(w)] = true
				}
			}
		}
	}
	return words
}

type QA struct {
	Question string `json:"question"`

	// QuestionDep is nil when the question could not be parsed.
	QuestionDep *Parse `json:"question_dep"`

	Id      string   `json:"id"`
	Answers []Answer `json:"answers"`
}

// Answer is a token span. Stop is exclusive.
type Answer struct {
	Start Position `json:"start_idx"`
	Stop  Position `json:"stop_idx"`
	Text  string   `json:"text"`
}

// Position locates a token inside a paragraph, encoded as [sent, token].
type Position struct {
	Sent  int
	Token int
}

func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.Sent, p.Token})
}

func (p *Position) UnmarshalJSON(b []byte) error {
	var pair []int
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("position needs 2 elements, got %d", len(pair))
	}
	p.Sent, p.Token = pair[0], pair[1]
	return nil
}

// Parse is a dependency parse, encoded as [nodes, edges].
type Parse struct {
	Nodes []Node

	// Edges are carried through but not interpreted.
	Edges json.RawMessage
}

// Words returns the words of the parse in order.
func (p *Parse) Words() []string {
	words := make([]string, len(p.Nodes))
	for i, n := range p.Nodes {
		words[i] = n.Word
	}
	return words
}

func (p Parse) MarshalJSON() ([]byte, error) {
	edges := p.Edges
	if edges == nil {
		edges = json.RawMessage("[]")
	}
	return json.Marshal([]interface{}{p.Nodes, edges})
}

func (p *Parse) UnmarshalJSON(b []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) < 1 {
		return fmt.Errorf("parse needs [nodes, edges], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &p.Nodes); err != nil {
		return fmt.Errorf("parse nodes: %w", err)
	}
	if len(pair) > 1 {
		p.Edges = pair[1]
	}
	return nil
}

// Node represents a word of the sentence, encoded as [word, tag, start, stop].
type Node struct {
	// The unmodified word
	Word string

	// POS tag
	Tag string

	// Character offsets of the word in the context, stop exclusive.
	Start int
	Stop  int
}

func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{n.Word, n.Tag, n.Start, n.Stop})
}

func (n *Node) UnmarshalJSON(b []byte) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	if len(fields) != 4 {
		return fmt.Errorf("node needs 4 elements, got %d", len(fields))
	}
	if err := json.Unmarshal(fields[0], &n.Word); err != nil {
		return fmt.Errorf("node word: %w", err)
	}
	if err := json.Unmarshal(fields[1], &n.Tag); err != nil {
		return fmt.Errorf("node tag: %w", err)
	}
	if err := json.Unmarshal(fields[2], &n.Start); err != nil {
		return fmt.Errorf("node start: %w", err)
	}
	if err := json.Unmarshal(fields[3], &n.Stop); err != nil {
		return fmt.Errorf("node stop: %w", err)
	}
	return nil
}
