// Package selectengine interprets style bytecode against the CSS
// cascade : matched rule buffers are decoded in cascade order and the
// winning declarations become a computed style.
package selectengine

import (
	"github.com/tilford/csscade/css/bytecode"
	"github.com/tilford/csscade/css/fixed"
)

// ColourKind tags a computed colour slot.
type ColourKind uint8

const (
	ColourRGBA ColourKind = iota
	ColourTransparent
	ColourCurrent
)

// Colour is a computed colour : a concrete 0xAARRGGBB value or one of
// the keyword forms.
type Colour struct {
	Kind ColourKind
	ARGB uint32
}

// LengthKind tags a computed length slot.
type LengthKind uint8

const (
	LengthValue LengthKind = iota
	LengthAuto
	LengthNone
)

// Length is a computed length or percentage.
type Length struct {
	Kind  LengthKind
	Value fixed.Fixed
	Unit  bytecode.Unit
}

// BackgroundKind tags the background-image slot.
type BackgroundKind uint8

const (
	BackgroundNone BackgroundKind = iota
	BackgroundURI
	BackgroundLinearGradient
	BackgroundRadialGradient
)

// GradientStop is one colour stop of a computed gradient. The offset
// is a percentage.
type GradientStop struct {
	Colour uint32
	Offset fixed.Fixed
}

// Background is the computed background-image value. Direction holds
// the cardinal direction for a linear gradient and the shape for a
// radial one.
type Background struct {
	Kind      BackgroundKind
	URI       string
	Direction uint32
	Stops     []GradientStop
}

func (b Background) copy() Background {
	out := b
	if b.Stops != nil {
		out.Stops = append([]GradientStop(nil), b.Stops...)
	}
	return out
}

// TrackBound is one bound of a track size.
type TrackBound struct {
	Value fixed.Fixed
	Unit  bytecode.Unit
}

// GridTrack is one computed track. Unit == UnitMinmax marks a minmax
// track, carried in Min and Max ; otherwise Value/Unit hold a simple
// size.
type GridTrack struct {
	Value fixed.Fixed
	Unit  bytecode.Unit
	Min   TrackBound
	Max   TrackBound
}

// GridLineKind tags a grid placement slot.
type GridLineKind uint8

const (
	GridLineAuto GridLineKind = iota
	GridLineNumber
	GridLineSpan
)

// GridLine is a computed grid placement.
type GridLine struct {
	Kind  GridLineKind
	Value int32
}

// ZIndex is the computed z-index.
type ZIndex struct {
	Auto  bool
	Value int32
}

// LineHeightKind tags the line-height slot.
type LineHeightKind uint8

const (
	LineHeightNormal LineHeightKind = iota
	LineHeightNumber
	LineHeightDimension
)

// LineHeight is the computed line-height.
type LineHeight struct {
	Kind  LineHeightKind
	Value fixed.Fixed
	Unit  bytecode.Unit
}

// FlexBasisKind tags the flex-basis slot.
type FlexBasisKind uint8

const (
	FlexBasisAuto FlexBasisKind = iota
	FlexBasisContent
	FlexBasisValue
)

// FlexBasis is the computed flex-basis.
type FlexBasis struct {
	Kind  FlexBasisKind
	Value fixed.Fixed
	Unit  bytecode.Unit
}

// ComputedStyle holds the resolved value of every supported property.
// Keyword properties store their bytecode value opcode directly.
type ComputedStyle struct {
	Color           Colour
	BackgroundColor Colour
	BackgroundImage Background

	Display    uint16
	Float      uint16
	Position   uint16
	Visibility uint16
	Overflow   uint16

	Width     Length
	Height    Length
	MinWidth  Length
	MinHeight Length
	MaxWidth  Length
	MaxHeight Length

	MarginTop    Length
	MarginRight  Length
	MarginBottom Length
	MarginLeft   Length

	PaddingTop    Length
	PaddingRight  Length
	PaddingBottom Length
	PaddingLeft   Length

	Opacity    fixed.Fixed
	ZIndex     ZIndex
	LineHeight LineHeight

	FlexBasis  FlexBasis
	FlexGrow   fixed.Fixed
	FlexShrink fixed.Fixed

	// nil means none ; an empty non nil list never occurs.
	GridTemplateColumns []GridTrack
	GridTemplateRows    []GridTrack

	GridRowStart    GridLine
	GridRowEnd      GridLine
	GridColumnStart GridLine
	GridColumnEnd   GridLine
	GridAutoFlow    uint16

	Custom Map
}

// Initial returns a style holding every property's CSS initial value.
func Initial() *ComputedStyle {
	return &ComputedStyle{
		Color:           Colour{Kind: ColourRGBA, ARGB: 0xff000000},
		BackgroundColor: Colour{Kind: ColourTransparent},
		BackgroundImage: Background{Kind: BackgroundNone},

		Display:    bytecode.DisplayInline,
		Float:      bytecode.FloatNone,
		Position:   bytecode.PositionStatic,
		Visibility: bytecode.VisibilityVisible,
		Overflow:   bytecode.OverflowVisible,

		Width:     Length{Kind: LengthAuto},
		Height:    Length{Kind: LengthAuto},
		MinWidth:  Length{Kind: LengthValue, Unit: bytecode.UnitPX},
		MinHeight: Length{Kind: LengthValue, Unit: bytecode.UnitPX},
		MaxWidth:  Length{Kind: LengthNone},
		MaxHeight: Length{Kind: LengthNone},

		MarginTop:    Length{Kind: LengthValue, Unit: bytecode.UnitPX},
		MarginRight:  Length{Kind: LengthValue, Unit: bytecode.UnitPX},
		MarginBottom: Length{Kind: LengthValue, Unit: bytecode.UnitPX},
		MarginLeft:   Length{Kind: LengthValue, Unit: bytecode.UnitPX},

		PaddingTop:    Length{Kind: LengthValue, Unit: bytecode.UnitPX},
		PaddingRight:  Length{Kind: LengthValue, Unit: bytecode.UnitPX},
		PaddingBottom: Length{Kind: LengthValue, Unit: bytecode.UnitPX},
		PaddingLeft:   Length{Kind: LengthValue, Unit: bytecode.UnitPX},

		Opacity:    fixed.One,
		ZIndex:     ZIndex{Auto: true},
		LineHeight: LineHeight{Kind: LineHeightNormal},

		FlexBasis:  FlexBasis{Kind: FlexBasisAuto},
		FlexGrow:   0,
		FlexShrink: fixed.One,

		GridAutoFlow: bytecode.GridAutoFlowRow,

		Custom: NewMap(),
	}
}

// Copy deep-duplicates the style, including every owned substructure,
// so the copy can outlive the original.
func (s *ComputedStyle) Copy() *ComputedStyle {
	out := *s
	out.BackgroundImage = s.BackgroundImage.copy()
	if s.GridTemplateColumns != nil {
		out.GridTemplateColumns = append([]GridTrack(nil), s.GridTemplateColumns...)
	}
	if s.GridTemplateRows != nil {
		out.GridTemplateRows = append([]GridTrack(nil), s.GridTemplateRows...)
	}
	out.Custom = s.Custom.Clone()
	return &out
}

// propSlot describes how one property slot behaves across styles :
// whether it inherits by default and how to transfer it between two
// styles.
type propSlot struct {
	inherited bool
	transfer  func(dst, src *ComputedStyle)
}

var propSlots = map[bytecode.Property]propSlot{
	bytecode.PropColor: {true, func(d, s *ComputedStyle) { d.Color = s.Color }},
	bytecode.PropBackgroundColor: {false, func(d, s *ComputedStyle) {
		d.BackgroundColor = s.BackgroundColor
	}},
	bytecode.PropBackgroundImage: {false, func(d, s *ComputedStyle) {
		d.BackgroundImage = s.BackgroundImage.copy()
	}},

	bytecode.PropDisplay:    {false, func(d, s *ComputedStyle) { d.Display = s.Display }},
	bytecode.PropFloat:      {false, func(d, s *ComputedStyle) { d.Float = s.Float }},
	bytecode.PropPosition:   {false, func(d, s *ComputedStyle) { d.Position = s.Position }},
	bytecode.PropVisibility: {true, func(d, s *ComputedStyle) { d.Visibility = s.Visibility }},
	bytecode.PropOverflow:   {false, func(d, s *ComputedStyle) { d.Overflow = s.Overflow }},

	bytecode.PropWidth:     {false, func(d, s *ComputedStyle) { d.Width = s.Width }},
	bytecode.PropHeight:    {false, func(d, s *ComputedStyle) { d.Height = s.Height }},
	bytecode.PropMinWidth:  {false, func(d, s *ComputedStyle) { d.MinWidth = s.MinWidth }},
	bytecode.PropMinHeight: {false, func(d, s *ComputedStyle) { d.MinHeight = s.MinHeight }},
	bytecode.PropMaxWidth:  {false, func(d, s *ComputedStyle) { d.MaxWidth = s.MaxWidth }},
	bytecode.PropMaxHeight: {false, func(d, s *ComputedStyle) { d.MaxHeight = s.MaxHeight }},

	bytecode.PropMarginTop:    {false, func(d, s *ComputedStyle) { d.MarginTop = s.MarginTop }},
	bytecode.PropMarginRight:  {false, func(d, s *ComputedStyle) { d.MarginRight = s.MarginRight }},
	bytecode.PropMarginBottom: {false, func(d, s *ComputedStyle) { d.MarginBottom = s.MarginBottom }},
	bytecode.PropMarginLeft:   {false, func(d, s *ComputedStyle) { d.MarginLeft = s.MarginLeft }},

	bytecode.PropPaddingTop:    {false, func(d, s *ComputedStyle) { d.PaddingTop = s.PaddingTop }},
	bytecode.PropPaddingRight:  {false, func(d, s *ComputedStyle) { d.PaddingRight = s.PaddingRight }},
	bytecode.PropPaddingBottom: {false, func(d, s *ComputedStyle) { d.PaddingBottom = s.PaddingBottom }},
	bytecode.PropPaddingLeft:   {false, func(d, s *ComputedStyle) { d.PaddingLeft = s.PaddingLeft }},

	bytecode.PropOpacity:    {false, func(d, s *ComputedStyle) { d.Opacity = s.Opacity }},
	bytecode.PropZIndex:     {false, func(d, s *ComputedStyle) { d.ZIndex = s.ZIndex }},
	bytecode.PropLineHeight: {true, func(d, s *ComputedStyle) { d.LineHeight = s.LineHeight }},

	bytecode.PropFlexBasis:  {false, func(d, s *ComputedStyle) { d.FlexBasis = s.FlexBasis }},
	bytecode.PropFlexGrow:   {false, func(d, s *ComputedStyle) { d.FlexGrow = s.FlexGrow }},
	bytecode.PropFlexShrink: {false, func(d, s *ComputedStyle) { d.FlexShrink = s.FlexShrink }},

	bytecode.PropGridTemplateColumns: {false, func(d, s *ComputedStyle) {
		d.GridTemplateColumns = nil
		if s.GridTemplateColumns != nil {
			d.GridTemplateColumns = append([]GridTrack(nil), s.GridTemplateColumns...)
		}
	}},
	bytecode.PropGridTemplateRows: {false, func(d, s *ComputedStyle) {
		d.GridTemplateRows = nil
		if s.GridTemplateRows != nil {
			d.GridTemplateRows = append([]GridTrack(nil), s.GridTemplateRows...)
		}
	}},

	bytecode.PropGridRowStart:    {false, func(d, s *ComputedStyle) { d.GridRowStart = s.GridRowStart }},
	bytecode.PropGridRowEnd:      {false, func(d, s *ComputedStyle) { d.GridRowEnd = s.GridRowEnd }},
	bytecode.PropGridColumnStart: {false, func(d, s *ComputedStyle) { d.GridColumnStart = s.GridColumnStart }},
	bytecode.PropGridColumnEnd:   {false, func(d, s *ComputedStyle) { d.GridColumnEnd = s.GridColumnEnd }},
	bytecode.PropGridAutoFlow:    {false, func(d, s *ComputedStyle) { d.GridAutoFlow = s.GridAutoFlow }},
}
