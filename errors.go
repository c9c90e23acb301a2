// Package csscade implements a two phase CSS engine : per property
// recursive descent parsers compile declaration values to a compact
// bytecode, and a cascade engine interprets that bytecode against a
// DOM tree to produce computed styles.
//
// The subpackages follow the pipeline order : css/fixed (numerics),
// css/bytecode (encoder and decoder), css/parse (property parsers),
// css/selectengine (cascade and computed styles), html/styler
// (document level driver).
package csscade

import "errors"

// The three error classes of the engine. Parsers return ErrInvalid for
// malformed input, after restoring their entry cursor, so the caller can
// resume at the next declaration. ErrNoMem is fatal for the operation in
// progress and is never retried. ErrBadParm flags a caller bug.
var (
	ErrInvalid = errors.New("invalid CSS value")
	ErrNoMem   = errors.New("out of memory")
	ErrBadParm = errors.New("bad parameter")
)
