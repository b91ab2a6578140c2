// Package nest holds values nested to an arbitrary depth, such as
// article -> paragraph -> sentence -> word -> char, with operations that
// keep the shape intact.
package nest

import (
	"bytes"
	"encoding/json"
)

// Node is either a leaf holding a value or a list of child nodes.
// The zero value is an empty list.
type Node[T any] struct {
	value T
	items []Node[T]
	leaf  bool
}

// Leaf returns a leaf node.
func Leaf[T any](v T) Node[T] {
	return Node[T]{value: v, leaf: true}
}

// List returns a list node with the given children.
func List[T any](items ...Node[T]) Node[T] {
	if items == nil {
		items = []Node[T]{}
	}
	return Node[T]{items: items}
}

// Leaves returns a list of leaves, one per value.
func Leaves[T any](vs []T) Node[T] {
	items := make([]Node[T], len(vs))
	for i, v := range vs {
		items[i] = Leaf(v)
	}
	return Node[T]{items: items}
}

// Chars returns the list of single-character leaves of word.
func Chars(word string) Node[string] {
	items := make([]Node[string], 0, len(word))
	for _, r := range word {
		items = append(items, Leaf(string(r)))
	}
	return Node[string]{items: items}
}

func (n Node[T]) IsLeaf() bool {
	return n.leaf
}

// Value returns the leaf value. It is the zero value for lists.
func (n Node[T]) Value() T {
	return n.value
}

// Len returns the number of children. Leaves have none.
func (n Node[T]) Len() int {
	return len(n.items)
}

// At returns the i-th child.
func (n Node[T]) At(i int) Node[T] {
	return n.items[i]
}

// Items returns the children of n.
func (n Node[T]) Items() []Node[T] {
	return n.items
}

// Depth returns the number of list levels above the deepest leaf. A leaf
// has depth 0 and an empty list depth 1.
func (n Node[T]) Depth() int {
	if n.leaf {
		return 0
	}
	d := 0
	for _, c := range n.items {
		d = max(d, c.Depth())
	}
	return d + 1
}

// Walk calls f for every leaf value in order.
func (n Node[T]) Walk(f func(T)) {
	if n.leaf {
		f(n.value)
		return
	}
	for _, c := range n.items {
		c.Walk(f)
	}
}

// Map returns a node of the same shape with every leaf replaced by f(leaf).
func Map[T, U any](n Node[T], f func(T) U) Node[U] {
	if n.leaf {
		return Leaf(f(n.value))
	}

	items := make([]Node[U], len(n.items))
	for i, c := range n.items {
		items[i] = Map(c, f)
	}
	return Node[U]{items: items}
}

// MarshalJSON encodes leaves as their value and lists as JSON arrays.
func (n Node[T]) MarshalJSON() ([]byte, error) {
	if n.leaf {
		return json.Marshal(n.value)
	}
	if n.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(n.items)
}

// UnmarshalJSON decodes JSON arrays as lists and anything else as a leaf.
func (n *Node[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var items []Node[T]
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*n = List(items...)
		return nil
	}

	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = Leaf(v)
	return nil
}
