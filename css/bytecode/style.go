package bytecode

import (
	"fmt"

	"github.com/tilford/csscade"
)

// maxStyleWords bounds the growth of a single declaration block
// buffer ; exceeding it reports csscade.ErrNoMem.
const maxStyleWords = 1 << 16

// Style is the growable bytecode buffer produced for one declaration
// block and consumed exactly once during cascade. Appends are word at
// a time ; producers wanting atomicity record a Checkpoint before a
// declaration and Truncate back to it on failure, so a later reader
// only ever sees fully encoded records.
type Style struct {
	words   []uint32
	strings *StringTable
}

// NewStyle returns an empty buffer sharing the given string table
// (which may be shared by every style of a stylesheet).
func NewStyle(strings *StringTable) *Style {
	if strings == nil {
		strings = NewStringTable()
	}
	return &Style{strings: strings}
}

// Strings exposes the string table used by URI (and custom property)
// operands.
func (s *Style) Strings() *StringTable { return s.strings }

// Len returns the current size, in words.
func (s *Style) Len() int { return len(s.words) }

// Words returns the encoded words. The slice is owned by the style.
func (s *Style) Words() []uint32 { return s.words }

// Checkpoint captures the current length for a later Truncate.
func (s *Style) Checkpoint() int { return len(s.words) }

// Truncate discards every word appended after the checkpoint.
func (s *Style) Truncate(checkpoint int) {
	if checkpoint >= 0 && checkpoint <= len(s.words) {
		s.words = s.words[:checkpoint]
	}
}

// Append adds one raw operand word.
func (s *Style) Append(word uint32) error {
	if len(s.words) >= maxStyleWords {
		return fmt.Errorf("style buffer full: %w", csscade.ErrNoMem)
	}
	s.words = append(s.words, word)
	return nil
}

// AppendOPV encodes and adds the header word of a property record.
func (s *Style) AppendOPV(prop Property, flags uint8, value uint16) error {
	return s.Append(MakeOPV(prop, flags, value))
}

// AppendInherit, AppendUnset and AppendRevert add the zero operand
// meta keyword records.
func (s *Style) AppendInherit(prop Property, flags uint8) error {
	return s.AppendOPV(prop, flags|FlagInherit, 0)
}

func (s *Style) AppendUnset(prop Property, flags uint8) error {
	return s.AppendOPV(prop, flags|FlagValueUnset, 0)
}

func (s *Style) AppendRevert(prop Property, flags uint8) error {
	return s.AppendOPV(prop, flags|FlagValueRevert, 0)
}

// Reader walks a style buffer during cascade. Every property decoder
// must consume exactly the operand words its encoder wrote, so that
// after decoding the cursor lands on the next OPV boundary.
type Reader struct {
	style *Style
	pos   int
}

// NewReader positions a reader at the start of the buffer.
func NewReader(s *Style) *Reader { return &Reader{style: s} }

// Done reports whether the whole buffer has been consumed.
func (r *Reader) Done() bool { return r.pos >= len(r.style.words) }

// Next returns the next word and advances. Reading past the end is an
// encoder/decoder mismatch and returns csscade.ErrInvalid.
func (r *Reader) Next() (uint32, error) {
	if r.Done() {
		return 0, fmt.Errorf("bytecode underrun at word %d: %w", r.pos, csscade.ErrInvalid)
	}
	w := r.style.words[r.pos]
	r.pos++
	return w, nil
}

// Pos returns the current word offset, used by tests to assert that
// decoding is cursor symmetric with encoding.
func (r *Reader) Pos() int { return r.pos }

// LookupString resolves a string table operand.
func (r *Reader) LookupString(index uint32) (string, error) {
	return r.style.strings.Get(index)
}

// StringTable interns the strings referenced by bytecode operands
// (resolved urls, custom property names and values). Indices are
// stable for the lifetime of the table.
type StringTable struct {
	byValue map[string]uint32
	values  []string
}

func NewStringTable() *StringTable {
	return &StringTable{byValue: make(map[string]uint32)}
}

// Add interns s and returns its index.
func (t *StringTable) Add(s string) uint32 {
	if i, ok := t.byValue[s]; ok {
		return i
	}
	i := uint32(len(t.values))
	t.values = append(t.values, s)
	t.byValue[s] = i
	return i
}

// Get returns the string at the given index.
func (t *StringTable) Get(index uint32) (string, error) {
	if int(index) >= len(t.values) {
		return "", fmt.Errorf("string table index %d out of range: %w", index, csscade.ErrBadParm)
	}
	return t.values[index], nil
}
