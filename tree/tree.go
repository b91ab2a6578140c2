// Package tree reads bracketed constituency trees and aligns token spans
// against their nodes.
package tree

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrSyntax is returned for malformed bracketed trees.
var ErrSyntax = errors.New("tree: syntax error")

// Span is a half-open token range [Start, Stop).
type Span struct {
	Start int
	Stop  int
}

// Len returns the number of tokens covered.
func (s Span) Len() int {
	if s.Stop < s.Start {
		return 0
	}
	return s.Stop - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.Stop)
}

// Tree is a constituency tree node. A node without Label and Children is a
// word leaf; every other node is a phrase or preterminal.
type Tree struct {
	Label    string
	Word     string
	Children []*Tree

	leaf bool
	span Span
}

// IsLeaf reports whether t is a word.
func (t *Tree) IsLeaf() bool {
	return t.leaf
}

// Span returns the token range covered by t. Valid after SetSpans.
func (t *Tree) Span() Span {
	return t.span
}

// Leaves returns the words of the tree in order.
func (t *Tree) Leaves() []string {
	var words []string
	t.walk(func(n *Tree) {
		if n.leaf {
			words = append(words, n.Word)
		}
	})
	return words
}

// SetSpans annotates every node, bottom-up, with the token range it covers.
// A word covers one token; a phrase covers the union of its children.
func (t *Tree) SetSpans() {
	t.setSpan(0)
}

func (t *Tree) setSpan(i int) int {
	if t.leaf {
		t.span = Span{Start: i, Stop: i + 1}
		return t.span.Stop
	}

	start := i
	for _, c := range t.Children {
		i = c.setSpan(i)
	}
	t.span = Span{Start: start, Stop: i}
	return i
}

// Subtrees returns the phrase nodes in preorder, root first. Word leaves are
// not included.
func (t *Tree) Subtrees() []*Tree {
	var nodes []*Tree
	t.walk(func(n *Tree) {
		if !n.leaf {
			nodes = append(nodes, n)
		}
	})
	return nodes
}

func (t *Tree) walk(f func(*Tree)) {
	f(t)
	for _, c := range t.Children {
		c.walk(f)
	}
}

// String renders t back to bracketed form.
func (t *Tree) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Tree) write(b *strings.Builder) {
	if t.leaf {
		b.WriteString(t.Word)
		return
	}
	b.WriteByte('(')
	b.WriteString(t.Label)
	for _, c := range t.Children {
		b.WriteByte(' ')
		c.write(b)
	}
	b.WriteByte(')')
}

// Parse reads a bracketed tree such as
//
//	(ROOT (S (NP (DT The) (NN cat)) (VP (VBD sat)) (. .)))
//
// The root label may be empty, as in "( (S ...))". Spans are set on the
// returned tree.
func Parse(s string) (*Tree, error) {
	p := &parser{tokens: lex(s)}
	if len(p.tokens) == 0 {
		return nil, fmt.Errorf("%w: empty tree", ErrSyntax)
	}

	t, err := p.node()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, fmt.Errorf("%w: trailing input at token %d", ErrSyntax, p.pos)
	}

	t.SetSpans()
	return t, nil
}

type parser struct {
	tokens []string
	pos    int
}

func (p *parser) node() (*Tree, error) {
	if p.pos >= len(p.tokens) || p.tokens[p.pos] != "(" {
		return nil, fmt.Errorf("%w: expected '(' at token %d", ErrSyntax, p.pos)
	}
	p.pos++

	t := &Tree{}
	if p.pos < len(p.tokens) && !isParen(p.tokens[p.pos]) {
		t.Label = p.tokens[p.pos]
		p.pos++
	}

	for p.pos < len(p.tokens) {
		switch tok := p.tokens[p.pos]; tok {
		case ")":
			p.pos++
			if len(t.Children) == 0 {
				return nil, fmt.Errorf("%w: node %q has no children", ErrSyntax, t.Label)
			}
			return t, nil
		case "(":
			c, err := p.node()
			if err != nil {
				return nil, err
			}
			t.Children = append(t.Children, c)
		default:
			t.Children = append(t.Children, &Tree{Word: tok, leaf: true})
			p.pos++
		}
	}

	return nil, fmt.Errorf("%w: unbalanced parentheses", ErrSyntax)
}

func isParen(tok string) bool {
	return tok == "(" || tok == ")"
}

func lex(s string) []string {
	var tokens []string
	start := -1
	flush := func(i int) {
		if start >= 0 {
			tokens = append(tokens, s[start:i])
			start = -1
		}
	}

	for i, r := range s {
		switch {
		case r == '(' || r == ')':
			flush(i)
			tokens = append(tokens, string(r))
		case unicode.IsSpace(r):
			flush(i)
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(s))

	return tokens
}
