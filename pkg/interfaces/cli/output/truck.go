package output

import (
	"fmt"
	"html"
	"strings"

	"github.com/vsinha/timber/pkg/domain/entities"
)

// TruckDiagram renders a loading plan as a top-down SVG of the truck bed
type TruckDiagram struct {
	Width        int
	Height       int
	MarginLeft   int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	BedHeight    int
}

// NewTruckDiagram creates a diagram with default dimensions
func NewTruckDiagram() *TruckDiagram {
	return &TruckDiagram{
		Width:        1000,
		Height:       320,
		MarginLeft:   60,
		MarginTop:    60,
		MarginRight:  140,
		MarginBottom: 80,
		BedHeight:    120,
	}
}

var segmentColors = []string{"#8d6e63", "#a1887f", "#6d4c41", "#bcaaa4", "#795548", "#d7ccc8"}

// GenerateSVG creates the SVG document for plan.
// The rear door is on the left, so the first loaded item sits at the cab end.
func (td *TruckDiagram) GenerateSVG(plan *entities.LoadingPlan) string {
	var svg strings.Builder

	svg.WriteString(fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`, td.Width, td.Height))
	svg.WriteString(`<defs><style>`)
	svg.WriteString(`.title { font-family: Arial, sans-serif; font-size: 16px; font-weight: bold; fill: #333; }`)
	svg.WriteString(`.label { font-family: Arial, sans-serif; font-size: 10px; fill: white; }`)
	svg.WriteString(`.note { font-family: Arial, sans-serif; font-size: 11px; fill: #666; }`)
	svg.WriteString(`.bed { fill: #f5f5f5; stroke: #333; stroke-width: 2; }`)
	svg.WriteString(`.cab { fill: #90a4ae; stroke: #333; stroke-width: 2; }`)
	svg.WriteString(`.item { stroke: #333; stroke-width: 1; }`)
	svg.WriteString(`</style></defs>`)
	svg.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="white"/>`, td.Width, td.Height))
	svg.WriteString(fmt.Sprintf(`<text x="%d" y="30" class="title">Loading plan: %.1f%% of %.1f m³ used</text>`,
		td.MarginLeft, plan.CapacityUsed, plan.Capacity))

	bedWidth := td.Width - td.MarginLeft - td.MarginRight
	svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" class="bed"/>`,
		td.MarginLeft, td.MarginTop, bedWidth, td.BedHeight))
	svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" rx="8" class="cab"/>`,
		td.MarginLeft+bedWidth+10, td.MarginTop+10, td.MarginRight-30, td.BedHeight-20))

	td.drawItems(&svg, plan.Items, bedWidth)

	svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="note">rear door</text>`,
		td.MarginLeft, td.MarginTop+td.BedHeight+20))
	for i, d := range plan.Diagnostics {
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="note">%s</text>`,
			td.MarginLeft, td.MarginTop+td.BedHeight+40+i*15, html.EscapeString(d)))
	}

	svg.WriteString(`</svg>`)
	return svg.String()
}

// drawItems places segments from the cab backwards in load order
func (td *TruckDiagram) drawItems(svg *strings.Builder, items []entities.LoadingPlanItem, bedWidth int) {
	right := td.MarginLeft + bedWidth
	for i, item := range items {
		width := int(item.WidthPercent / 100 * float64(bedWidth))
		if width < 2 {
			width = 2
		}
		x := right - width
		if x < td.MarginLeft {
			x = td.MarginLeft
			width = right - x
		}

		svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="%s" class="item"><title>%s</title></rect>`,
			x, td.MarginTop, width, td.BedHeight, segmentColors[i%len(segmentColors)],
			html.EscapeString(fmt.Sprintf("%s to %s (%.3f m³)", item.Name, item.Destination, item.Volume))))
		if width > 30 {
			svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="label" text-anchor="middle">#%d</text>`,
				x+width/2, td.MarginTop+td.BedHeight/2, item.LoadPosition))
		}
		right = x
	}
}
