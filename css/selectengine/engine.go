package selectengine

import (
	"fmt"
	"sort"

	"github.com/andybalholm/cascadia"

	"github.com/tilford/csscade"
	"github.com/tilford/csscade/css/bytecode"
	"github.com/tilford/csscade/css/parse"
	"github.com/tilford/csscade/logger"
)

// Origin identifies which stylesheet kind a rule came from. The
// cascade gives user agent rules the weakest claim and important user
// rules the strongest.
type Origin uint8

const (
	OriginUserAgent Origin = iota
	OriginUser
	OriginAuthor
)

// MatchedRule is one rule whose selector matched the element under
// resolution.
type MatchedRule struct {
	Block       *parse.Block
	Origin      Origin
	Specificity cascadia.Specificity
	Order       int // document order within the origin
}

// SortRules orders matched rules by origin, specificity and document
// order, weakest first, the order Cascade expects. Importance is per
// declaration and handled by the rank comparison instead.
func SortRules(rules []MatchedRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		a, b := rules[i], rules[j]
		if a.Origin != b.Origin {
			return a.Origin < b.Origin
		}
		if a.Specificity != b.Specificity {
			return a.Specificity.Less(b.Specificity)
		}
		return a.Order < b.Order
	})
}

// declRank maps (origin, important) to a cascade rank. Higher ranks
// win ; equal ranks resolve in favour of the later declaration.
func declRank(origin Origin, important bool) uint8 {
	switch origin {
	case OriginUserAgent:
		return 1
	case OriginUser:
		if important {
			return 5
		}
		return 2
	default:
		if important {
			return 4
		}
		return 3
	}
}

// source records how a property slot got its current claim.
type source uint8

const (
	srcNone source = iota
	srcValue
	srcInherit
	srcUnset
)

type slotState struct {
	rank uint8
	src  source
}

// Engine resolves computed styles. The parse context is needed to
// compile deferred var() declarations once their substitutions are
// known.
type Engine struct {
	Ctx *parse.Context
}

func NewEngine(ctx *parse.Context) *Engine {
	if ctx == nil {
		ctx = &parse.Context{}
	}
	return &Engine{Ctx: ctx}
}

// cascade is the per-element working state.
type cascade struct {
	style  *ComputedStyle
	states [bytecode.NumProperties]slotState
	custom map[string]uint8 // rank per custom property name
}

// outranksExisting reports whether a declaration with the given rank
// may claim the slot. Later declarations of equal rank win, matching
// source order resolution.
func (st *cascade) outranksExisting(prop bytecode.Property, rank uint8) bool {
	return rank >= st.states[prop].rank
}

func (st *cascade) claim(prop bytecode.Property, rank uint8, src source) {
	st.states[prop] = slotState{rank: rank, src: src}
}

// Cascade resolves the computed style of one element from its sorted
// matched rules and its parent's computed style (nil for the root).
// Custom properties are resolved in a first pass so that deferred
// var() declarations can be compiled during the second.
func (e *Engine) Cascade(rules []MatchedRule, parent *ComputedStyle) (*ComputedStyle, error) {
	st := &cascade{
		style:  Initial(),
		custom: make(map[string]uint8),
	}
	if parent != nil {
		st.style.Custom.Merge(parent.Custom)
	}

	for _, rule := range rules {
		if err := st.applyCustom(rule); err != nil {
			return nil, err
		}
	}

	for _, rule := range rules {
		if err := st.applyRule(e, rule); err != nil {
			return nil, err
		}
	}

	st.finish(parent)
	return st.style, nil
}

// applyCustom runs the first pass over one rule : custom property
// records claim map entries, everything else is skipped with the
// cursor kept on record boundaries.
func (st *cascade) applyCustom(rule MatchedRule) error {
	r := bytecode.NewReader(rule.Block.Style)
	for !r.Done() {
		opv, err := r.Next()
		if err != nil {
			return err
		}
		n, err := bytecode.OperandWords(rule.Block.Style.Words(), r.Pos()-1)
		if err != nil {
			return err
		}

		if bytecode.Opcode(opv) != bytecode.PropCustom || bytecode.HasFlagValue(opv) {
			for ; n > 0; n-- {
				if _, err := r.Next(); err != nil {
					return err
				}
			}
			continue
		}

		nameIdx, err := r.Next()
		if err != nil {
			return err
		}
		valueIdx, err := r.Next()
		if err != nil {
			return err
		}
		name, err := r.LookupString(nameIdx)
		if err != nil {
			return err
		}
		value, err := r.LookupString(valueIdx)
		if err != nil {
			return err
		}

		rank := declRank(rule.Origin, bytecode.IsImportant(opv))
		if rank >= st.custom[name] {
			st.custom[name] = rank
			st.style.Custom.Set(name, value)
		}
	}
	return nil
}

// applyRule runs the second pass over one rule : every record is
// decoded to keep the cursor in sync, and committed only when it
// outranks the slot's current claim. Deferred var() declarations are
// compiled now that the custom map is complete.
func (st *cascade) applyRule(e *Engine, rule MatchedRule) error {
	if err := st.decodeBuffer(rule.Block.Style, rule.Origin); err != nil {
		return err
	}

	for _, d := range rule.Block.Deferred {
		scratch, err := st.compileDeferred(e, d, rule.Block.Style.Strings())
		if err != nil {
			logger.Warning.Warnf("ignored %s declaration: %v", d.Prop, err)
			continue
		}
		if err := st.decodeBuffer(scratch, rule.Origin); err != nil {
			return err
		}
	}
	return nil
}

// compileDeferred substitutes var() references and reruns the property
// parser into a scratch buffer sharing the rule's string table.
func (st *cascade) compileDeferred(e *Engine, d parse.DeferredVar, table *bytecode.StringTable) (*bytecode.Style, error) {
	tokens, err := resolveVars(d.Tokens, st.style.Custom)
	if err != nil {
		return nil, err
	}

	scratch := bytecode.NewStyle(table)
	if err := e.Ctx.ParseProperty(d.Prop, tokens, scratch); err != nil {
		return nil, err
	}
	if d.Important {
		if err := bytecode.MarkImportant(scratch, 0); err != nil {
			return nil, err
		}
	}
	return scratch, nil
}

// decodeBuffer walks one style buffer, dispatching each record to its
// property decoder.
func (st *cascade) decodeBuffer(style *bytecode.Style, origin Origin) error {
	r := bytecode.NewReader(style)
	for !r.Done() {
		opv, err := r.Next()
		if err != nil {
			return err
		}

		prop := bytecode.Opcode(opv)
		if int(prop) >= bytecode.NumProperties {
			return fmt.Errorf("unknown property %d in bytecode: %w", prop, csscade.ErrInvalid)
		}
		rank := declRank(origin, bytecode.IsImportant(opv))

		if bytecode.HasFlagValue(opv) {
			if st.outranksExisting(prop, rank) {
				if bytecode.IsInherit(opv) {
					st.claim(prop, rank, srcInherit)
				} else {
					// unset and revert both fall back to the
					// default claim for the slot
					st.claim(prop, rank, srcUnset)
				}
			}
			continue
		}

		if prop == bytecode.PropCustom {
			// handled by the first pass ; skip the operands
			if _, err := r.Next(); err != nil {
				return err
			}
			if _, err := r.Next(); err != nil {
				return err
			}
			continue
		}

		if err := st.decodeRecord(r, opv, rank); err != nil {
			return err
		}
	}
	return nil
}

// finish resolves inheritance and defaulting against the parent :
// slots claimed by a value keep it, inherit claims and inherited
// properties without any claim copy the parent, everything else stays
// at its initial value.
func (st *cascade) finish(parent *ComputedStyle) {
	if parent == nil {
		parent = Initial()
	}
	initial := Initial()
	for prop, slot := range propSlots {
		state := st.states[prop]
		inheritNow := state.src == srcInherit ||
			(slot.inherited && (state.src == srcNone || state.src == srcUnset))
		if inheritNow {
			slot.transfer(st.style, parent)
		} else if state.src != srcValue {
			slot.transfer(st.style, initial)
		}
	}
}
