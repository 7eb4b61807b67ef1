package value

import (
	"fmt"
	"strings"
)

// Enum is implemented by every keyword valued type in this package.
type Enum interface {
	fmt.Stringer
	isEnum()
}

func enumString(names []string, v int, kind string) string {
	if v >= 0 && v < len(names) {
		return names[v]
	}
	return fmt.Sprintf("%s(%d)", kind, v)
}

func enumParse(names []string, name string) (int, bool) {
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return i, true
		}
	}
	return 0, false
}

// BlurType is the algorithm used to blur shadows.
type BlurType int

const (
	BlurTypeGaussian BlurType = iota
	BlurTypeOnePassBox
	BlurTypeTwoPassBox
	BlurTypeThreePassBox
)

var blurTypeNames = []string{"gaussian", "one-pass-box", "two-pass-box", "three-pass-box"}

func (v BlurType) String() string { return enumString(blurTypeNames, int(v), "BlurType") }
func (BlurType) isEnum() {}

func ParseBlurType(name string) (BlurType, bool) {
	i, ok := enumParse(blurTypeNames, name)
	return BlurType(i), ok
}

// CycleMethod defines gradient behavior outside of its bounds.
type CycleMethod int

const (
	CycleMethodNoCycle CycleMethod = iota
	CycleMethodReflect
	CycleMethodRepeat
)

var cycleMethodNames = []string{"no-cycle", "reflect", "repeat"}

func (v CycleMethod) String() string { return enumString(cycleMethodNames, int(v), "CycleMethod") }
func (CycleMethod) isEnum() {}

func ParseCycleMethod(name string) (CycleMethod, bool) {
	i, ok := enumParse(cycleMethodNames, name)
	return CycleMethod(i), ok
}

// StrokeType places stroke relative to the shape outline.
type StrokeType int

const (
	StrokeTypeInside StrokeType = iota
	StrokeTypeOutside
	StrokeTypeCentered
)

var strokeTypeNames = []string{"inside", "outside", "centered"}

func (v StrokeType) String() string { return enumString(strokeTypeNames, int(v), "StrokeType") }
func (StrokeType) isEnum() {}

func ParseStrokeType(name string) (StrokeType, bool) {
	i, ok := enumParse(strokeTypeNames, name)
	return StrokeType(i), ok
}

// StrokeLineJoin is decoration applied where path segments meet.
type StrokeLineJoin int

const (
	StrokeLineJoinMiter StrokeLineJoin = iota
	StrokeLineJoinBevel
	StrokeLineJoinRound
)

var strokeLineJoinNames = []string{"miter", "bevel", "round"}

func (v StrokeLineJoin) String() string {
	return enumString(strokeLineJoinNames, int(v), "StrokeLineJoin")
}
func (StrokeLineJoin) isEnum() {}

func ParseStrokeLineJoin(name string) (StrokeLineJoin, bool) {
	i, ok := enumParse(strokeLineJoinNames, name)
	return StrokeLineJoin(i), ok
}

// StrokeLineCap is decoration applied to the ends of unclosed path segments.
type StrokeLineCap int

const (
	StrokeLineCapSquare StrokeLineCap = iota
	StrokeLineCapButt
	StrokeLineCapRound
)

var strokeLineCapNames = []string{"square", "butt", "round"}

func (v StrokeLineCap) String() string { return enumString(strokeLineCapNames, int(v), "StrokeLineCap") }
func (StrokeLineCap) isEnum() {}

func ParseStrokeLineCap(name string) (StrokeLineCap, bool) {
	i, ok := enumParse(strokeLineCapNames, name)
	return StrokeLineCap(i), ok
}

// BackgroundRepeat tells how background image is repeated along an axis.
type BackgroundRepeat int

const (
	BackgroundRepeatRepeat BackgroundRepeat = iota
	BackgroundRepeatSpace
	BackgroundRepeatRound
	BackgroundRepeatNoRepeat
)

var backgroundRepeatNames = []string{"repeat", "space", "round", "no-repeat"}

func (v BackgroundRepeat) String() string {
	return enumString(backgroundRepeatNames, int(v), "BackgroundRepeat")
}
func (BackgroundRepeat) isEnum() {}

func ParseBackgroundRepeat(name string) (BackgroundRepeat, bool) {
	i, ok := enumParse(backgroundRepeatNames, name)
	return BackgroundRepeat(i), ok
}

// FontPosture is font slant.
type FontPosture int

const (
	FontPostureRegular FontPosture = iota
	FontPostureItalic
)

var fontPostureNames = []string{"regular", "italic"}

func (v FontPosture) String() string { return enumString(fontPostureNames, int(v), "FontPosture") }
func (FontPosture) isEnum() {}

// FontWeight carries numeric weight.
type FontWeight int

const (
	FontWeightThin       FontWeight = 100
	FontWeightExtraLight FontWeight = 200
	FontWeightLight      FontWeight = 300
	FontWeightNormal     FontWeight = 400
	FontWeightMedium     FontWeight = 500
	FontWeightSemiBold   FontWeight = 600
	FontWeightBold       FontWeight = 700
	FontWeightExtraBold  FontWeight = 800
	FontWeightBlack      FontWeight = 900
)

var fontWeightNames = map[FontWeight]string{
	FontWeightThin:       "thin",
	FontWeightExtraLight: "extra-light",
	FontWeightLight:      "light",
	FontWeightNormal:     "normal",
	FontWeightMedium:     "medium",
	FontWeightSemiBold:   "semi-bold",
	FontWeightBold:       "bold",
	FontWeightExtraBold:  "extra-bold",
	FontWeightBlack:      "black",
}

func (v FontWeight) String() string {
	if n, ok := fontWeightNames[v]; ok {
		return n
	}
	return fmt.Sprintf("FontWeight(%d)", int(v))
}
func (FontWeight) isEnum() {}

// BorderStyle is a named dash style of a border stroke.
type BorderStyle int

const (
	BorderStyleNone BorderStyle = iota
	BorderStyleDotted
	BorderStyleDashed
	BorderStyleSolid
)

var borderStyleNames = []string{"none", "dotted", "dashed", "solid"}

func (v BorderStyle) String() string { return enumString(borderStyleNames, int(v), "BorderStyle") }
func (BorderStyle) isEnum() {}

func ParseBorderStyle(name string) (BorderStyle, bool) {
	i, ok := enumParse(borderStyleNames, name)
	return BorderStyle(i), ok
}

// Side of a box.
type Side int

const (
	SideTop Side = iota
	SideRight
	SideBottom
	SideLeft
)

var sideNames = []string{"top", "right", "bottom", "left"}

func (v Side) String() string { return enumString(sideNames, int(v), "Side") }
func (Side) isEnum() {}
