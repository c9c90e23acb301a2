package selectengine

import (
	"testing"

	"github.com/tilford/csscade/css/parse"
	tu "github.com/tilford/csscade/utils/testutils"
)

func TestMapCloneEqual(t *testing.T) {
	m := NewMap()
	m.Set("--a", "red")
	m.Set("--b", "10px")

	tu.AssertEqual(t, m.Equal(m.Clone()), true)

	c := m.Clone()
	c.Set("--a", "blue")
	tu.AssertEqual(t, m.Equal(c), false)
	a, _ := m.Get("--a")
	tu.AssertEqual(t, a, "red")

	c.Set("--a", "red")
	c.Set("--c", "1")
	// equal counts plus containment, so a superset is not equal
	tu.AssertEqual(t, m.Equal(c), false)
}

func TestMapMergeOverwritesByName(t *testing.T) {
	a := NewMap()
	a.Set("--x", "1")
	a.Set("--y", "2")

	b := NewMap()
	b.Set("--y", "3")
	b.Set("--z", "4")

	a.Merge(b)
	for name, exp := range map[string]string{"--x": "1", "--y": "3", "--z": "4"} {
		got, ok := a.Get(name)
		tu.AssertEqual(t, ok, true)
		tu.AssertEqual(t, got, exp)
	}
}

func TestResolveVars(t *testing.T) {
	m := NewMap()
	m.Set("--c", "red")
	m.Set("--indirect", "var(--c)")

	for _, test := range []struct {
		in  string
		exp string
	}{
		{"var(--c)", "red"},
		{"var(--missing, blue)", "blue"},
		{"var(--indirect)", "red"},
		{"1px var(--c) 2px", "1px red 2px"},
	} {
		out, err := resolveVars(parse.Tokenize(test.in), m)
		tu.AssertNoErr(t, err)
		tu.AssertEqual(t, parse.Serialize(out), test.exp)
	}

	_, err := resolveVars(parse.Tokenize("var(--missing)"), m)
	if err == nil {
		t.Fatal("expected undefined custom property error")
	}

	m.Set("--loop", "var(--loop)")
	_, err = resolveVars(parse.Tokenize("var(--loop)"), m)
	if err == nil {
		t.Fatal("expected cycle error")
	}
}
