package bytecode

// Property identifies a CSS property in the low bits of an OPV word.
type Property uint16

const (
	PropInvalid Property = iota
	PropColor
	PropBackgroundColor
	PropBackgroundImage
	PropDisplay
	PropFloat
	PropPosition
	PropVisibility
	PropOverflow
	PropWidth
	PropHeight
	PropMinWidth
	PropMinHeight
	PropMaxWidth
	PropMaxHeight
	PropMarginTop
	PropMarginRight
	PropMarginBottom
	PropMarginLeft
	PropPaddingTop
	PropPaddingRight
	PropPaddingBottom
	PropPaddingLeft
	PropOpacity
	PropZIndex
	PropLineHeight
	PropFlexBasis
	PropFlexGrow
	PropFlexShrink
	PropGridTemplateColumns
	PropGridTemplateRows
	PropGridRowStart
	PropGridRowEnd
	PropGridColumnStart
	PropGridColumnEnd
	PropGridAutoFlow
	// PropCustom carries a custom property declaration ; operands are
	// two string table indices (name, raw value).
	PropCustom

	numProperties
)

// NumProperties is the number of known property slots.
const NumProperties = int(numProperties)

// An OPV word packs (value << 18 | flags << 10 | property). Operand
// words, whose count and shape depend only on (property, value),
// follow it in the style buffer.
const (
	opcodeShift = 0
	opcodeMask  = 0x3ff
	flagsShift  = 10
	flagsMask   = 0xff
	valueShift  = 18
)

// Flag bits, stored in the 8 bit flags field. The two flag-value bits
// encode unset/revert, which carry no operands.
const (
	FlagImportant uint8 = 1 << 0
	FlagInherit   uint8 = 1 << 1

	FlagValueUnset  uint8 = 1 << 2
	FlagValueRevert uint8 = 2 << 2

	flagValueMask uint8 = 3 << 2
)

// MakeOPV builds an OPV word.
func MakeOPV(prop Property, flags uint8, value uint16) uint32 {
	return uint32(prop)&opcodeMask | uint32(flags)<<flagsShift | uint32(value)<<valueShift
}

// Opcode extracts the property id of an OPV word.
func Opcode(opv uint32) Property { return Property(opv & opcodeMask) }

// Flags extracts the flags byte of an OPV word.
func Flags(opv uint32) uint8 { return uint8(opv >> flagsShift & flagsMask) }

// Value extracts the value opcode of an OPV word.
func Value(opv uint32) uint16 { return uint16(opv >> valueShift) }

// IsImportant reports the !important bit, independent of the value.
func IsImportant(opv uint32) bool { return Flags(opv)&FlagImportant != 0 }

// IsInherit reports the inherit marker bit.
func IsInherit(opv uint32) bool { return Flags(opv)&FlagInherit != 0 }

// FlagValue returns the unset/revert flag bits (0 when absent).
func FlagValue(opv uint32) uint8 { return Flags(opv) & flagValueMask }

// HasFlagValue reports whether the word is one of the meta keywords
// (inherit, unset, revert), in which case no operand words follow and
// the value opcode is meaningless.
func HasFlagValue(opv uint32) bool { return IsInherit(opv) || FlagValue(opv) != 0 }

// Unit encodes a dimension unit in an operand word. Values are part of
// the wire format and must not be renumbered.
type Unit uint32

const (
	UnitPX  Unit = 0x00
	UnitEX  Unit = 0x01
	UnitEM  Unit = 0x02
	UnitIN  Unit = 0x03
	UnitCM  Unit = 0x04
	UnitMM  Unit = 0x05
	UnitPT  Unit = 0x06
	UnitPC  Unit = 0x07
	UnitCH  Unit = 0x08
	UnitREM Unit = 0x09
	UnitVH  Unit = 0x0a
	UnitVW  Unit = 0x0b

	UnitPct Unit = 0x100
	UnitDeg Unit = 0x200

	UnitFr         Unit = 0x300
	UnitMinContent Unit = 0x301
	UnitMaxContent Unit = 0x302

	// UnitMinmax is the marker unit signalling a minmax(min, max)
	// track encoding ; never a real dimension.
	UnitMinmax Unit = 0xffff
)

// Value opcodes per property. The numbering is a stable contract :
// two implementations of the format must agree on it.
const (
	// background-image
	BackgroundImageNone           uint16 = 0
	BackgroundImageURI            uint16 = 1
	BackgroundImageLinearGradient uint16 = 2
	BackgroundImageRadialGradient uint16 = 3

	// color, background-color
	ColorSet          uint16 = 0
	ColorTransparent  uint16 = 1
	ColorCurrentColor uint16 = 2

	// display
	DisplayInline      uint16 = 0
	DisplayBlock       uint16 = 1
	DisplayInlineBlock uint16 = 2
	DisplayFlex        uint16 = 3
	DisplayInlineFlex  uint16 = 4
	DisplayGrid        uint16 = 5
	DisplayInlineGrid  uint16 = 6
	DisplayNone        uint16 = 7

	// float
	FloatNone  uint16 = 0
	FloatLeft  uint16 = 1
	FloatRight uint16 = 2

	// position
	PositionStatic   uint16 = 0
	PositionRelative uint16 = 1
	PositionAbsolute uint16 = 2
	PositionFixed    uint16 = 3

	// visibility
	VisibilityVisible  uint16 = 0
	VisibilityHidden   uint16 = 1
	VisibilityCollapse uint16 = 2

	// overflow
	OverflowVisible uint16 = 0
	OverflowHidden  uint16 = 1
	OverflowScroll  uint16 = 2
	OverflowAuto    uint16 = 3

	// width, height, min-*, max-*, margin-*, padding-*
	LengthSet  uint16 = 0
	LengthAuto uint16 = 1
	LengthNone uint16 = 2

	// opacity, flex-grow, flex-shrink
	NumberSet uint16 = 0

	// z-index
	ZIndexSet  uint16 = 0
	ZIndexAuto uint16 = 1

	// line-height
	LineHeightNumber    uint16 = 0
	LineHeightDimension uint16 = 1
	LineHeightNormal    uint16 = 2

	// flex-basis
	FlexBasisAuto    uint16 = 0
	FlexBasisContent uint16 = 1
	FlexBasisSet     uint16 = 2

	// grid-template-columns, grid-template-rows
	GridTemplateNone uint16 = 0
	GridTemplateSet  uint16 = 1

	// grid-row-start and friends
	GridLineAuto uint16 = 0
	GridLineSet  uint16 = 1
	GridLineSpan uint16 = 2

	// grid-auto-flow
	GridAutoFlowRow         uint16 = 0
	GridAutoFlowColumn      uint16 = 1
	GridAutoFlowRowDense    uint16 = 2
	GridAutoFlowColumnDense uint16 = 3

	// custom property declaration
	CustomSet uint16 = 0
)

// Gradient directions, as written after a LINEAR_GRADIENT opcode.
const (
	GradientToBottom uint32 = 0
	GradientToTop    uint32 = 1
	GradientToLeft   uint32 = 2
	GradientToRight  uint32 = 3
)

// Radial gradient shapes.
const (
	RadialShapeCircle  uint32 = 0
	RadialShapeEllipse uint32 = 1
)

// Hard bounds on repeated structures : they are the only safety limit
// against unbounded input.
const (
	MaxGradientStops = 10
	MaxGridTracks    = 32
)
