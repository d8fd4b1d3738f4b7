package present

import "strings"

// NeutralColor is used when a pixel has no decodable stage vector.
const NeutralColor = "#808080"

// ColorPalette maps stage names to display hex colors.
// Edit this to customize the rendering of each stage.
var ColorPalette = map[string]string{
	"beige":     "#f5f5dc",
	"purple":    "#800080",
	"red":       "#ff0000",
	"blue":      "#0000ff",
	"orange":    "#ffa500",
	"green":     "#008000",
	"yellow":    "#ffff00",
	"turquoise": "#40e0d0",
	"coral":     "#ff7f50",
	"teal":      "#008080",
}

// ColorForStage returns the palette color for a stage name, or
// NeutralColor for unknown stages.
func ColorForStage(name string) string {
	if color, ok := ColorPalette[strings.ToLower(name)]; ok {
		return color
	}
	return NeutralColor
}
