package ckey

import "testing"

func TestPriKeyString(t *testing.T) {
	a := PriKey{Kind: "order", ID: "123"}
	b := PriKey{Kind: "order", ID: " 123 "}

	if !Equal(a, b) {
		t.Fatalf("expected %v to equal %v", a, b)
	}
}

func TestComKeyLocationPrefix(t *testing.T) {
	c := ComKey{
		Kind: "item",
		ID:   "1",
		Loc: LocKeyArray{
			{Kind: "container", ID: "c1"},
			{Kind: "shelf", ID: "s1"},
		},
	}

	if !HasLocationPrefix(c, nil) {
		t.Fatal("empty prefix must match every key")
	}
	if !HasLocationPrefix(c, LocKeyArray{{Kind: "container", ID: "c1"}}) {
		t.Fatal("expected one-level prefix to match")
	}
	if HasLocationPrefix(c, LocKeyArray{{Kind: "shelf", ID: "s1"}}) {
		t.Fatal("prefix must match from the root of the chain")
	}

	p := PriKey{Kind: "order", ID: "1"}
	if HasLocationPrefix(p, LocKeyArray{{Kind: "container", ID: "c1"}}) {
		t.Fatal("a PriKey cannot satisfy a non-empty location prefix")
	}
}

func TestKeyStringDeterministic(t *testing.T) {
	c1 := ComKey{Kind: "item", ID: "1", Loc: LocKeyArray{{Kind: "container", ID: "c1"}}}
	c2 := ComKey{Kind: "item", ID: "1", Loc: LocKeyArray{{Kind: "container", ID: "c1"}}}

	if c1.String() != c2.String() {
		t.Fatalf("expected deterministic string form, got %q and %q", c1.String(), c2.String())
	}
}
