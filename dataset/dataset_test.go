package dataset

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/revelaction/squadprep/corpus"
	"github.com/revelaction/squadprep/nest"
	"github.com/revelaction/squadprep/split"
	"github.com/revelaction/squadprep/vocab"
)

func rawData() Data[string] {
	return Data[string]{
		RX:   split.Slice[Ref]{{0, 0}, {0, 1}, {1, 0}},
		RCX:  split.Slice[Ref]{{0, 0}, {0, 1}, {1, 0}},
		Q:    split.Slice[nest.Node[string]]{nest.Leaves([]string{"Who", "sat"}), nest.Leaves([]string{}), nest.Leaves([]string{"cat"})},
		CQ:   split.Slice[nest.Node[string]]{nest.List(nest.Chars("Who"), nest.Chars("sat")), nest.List[string](), nest.List(nest.Chars("cat"))},
		Y:    split.Slice[AnswerSpan]{{{Sent: 0, Token: 0}, {Sent: 0, Token: 2}}, {{Sent: 0, Token: 1}, {Sent: 0, Token: 2}}, {{Sent: 1, Token: 0}, {Sent: 1, Token: 1}}},
		B:    split.Slice[bool]{true, false, true},
		F1:   split.Slice[float64]{1, 0.5, 1},
		IDs:  split.Slice[string]{"q1", "q2", "q3"},
		Idxs: split.Slice[int]{0, 1, 2},
		A:    split.Slice[string]{"The cat", "cat", "Dogs"},
	}
}

func TestColumnsRoundTrip(t *testing.T) {
	d := rawData()
	train, dev, err := split.Split(d.Columns(), 0.7)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	tr, err := FromColumns[string](train)
	if err != nil {
		t.Fatalf("FromColumns() error = %v", err)
	}
	dv, err := FromColumns[string](dev)
	if err != nil {
		t.Fatalf("FromColumns() error = %v", err)
	}

	if tr.Len() != 2 || dv.Len() != 1 {
		t.Fatalf("got %d/%d rows, want 2/1", tr.Len(), dv.Len())
	}
	if dv.IDs[0] != "q3" || dv.RX[0] != (Ref{1, 0}) || dv.Y[0][1] != (corpus.Position{Sent: 1, Token: 1}) {
		t.Errorf("dev row mismatched: %+v", dv)
	}
}

func TestFromColumnsMissing(t *testing.T) {
	d := rawData()
	c := d.Columns()
	delete(c, "a")
	c["q"] = split.Slice[int]{1}

	_, err := FromColumns[string](c)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), `"a"`) || !strings.Contains(err.Error(), `"q"`) {
		t.Errorf("error should name both columns: %v", err)
	}
}

func TestIndex(t *testing.T) {
	words := vocab.NewCounter()
	words.Add("who", "sat", "who", "sat", "cat")
	chars := vocab.NewCounter()
	for _, r := range "Whosatcat" {
		chars.Add(string(r))
	}
	wv, err := vocab.Build(words, 2)
	if err != nil {
		t.Fatal(err)
	}
	cv, err := vocab.Build(chars, 1)
	if err != nil {
		t.Fatal(err)
	}

	d := Index(rawData(), wv, cv)

	b, err := json.Marshal(d.Q)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "[[2,3],[],[1]]" {
		t.Errorf("q = %s", b)
	}
	b, _ = json.Marshal(d.CQ[0])
	if string(b) != "[[2,3,4],[5,6,7]]" {
		t.Errorf("cq[0] = %s", b)
	}
	if d.IDs[2] != "q3" || d.Len() != 3 {
		t.Errorf("non-token columns not carried over")
	}
}

func TestDataJSONKeys(t *testing.T) {
	d := rawData()
	b, err := json.Marshal(Index(d, vocab.FromTokens([]string{vocab.Null, vocab.Unk}), vocab.FromTokens([]string{vocab.Null, vocab.Unk})))
	if err != nil {
		t.Fatal(err)
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"*x", "*cx", "q", "cq", "y", "b", "f1", "ids", "idxs", "a"} {
		if _, ok := m[k]; !ok {
			t.Errorf("missing key %q", k)
		}
	}
	if string(m["y"]) != "[[[0,0],[0,2]],[[0,1],[0,2]],[[1,0],[1,1]]]" {
		t.Errorf("y = %s", m["y"])
	}
}
