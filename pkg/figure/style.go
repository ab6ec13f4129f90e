package figure

// Style holds the typography and line settings applied when a canvas is
// created. It replaces process-wide plotting defaults so that figures with
// different styles can be built side by side.
type Style struct {
	FontSize        float64 // default text
	TitleSize       float64 // axes title
	LabelSize       float64 // axis labels
	TickLabelSize   float64
	FigureTitleSize float64
	AxesLineWidth   float64
	TickWidth       float64
	TickLength      float64
	// HiddenSpines are hidden on every new canvas.
	HiddenSpines []Spine
	Background   string // hex color of the figure background
	Foreground   string // hex color of spines, ticks and text
}

// DefaultStyle returns the publication defaults: 14pt text, 18pt axis
// labels, 24pt figure titles, 2px axes and ticks.
func DefaultStyle() Style {
	return Style{
		FontSize:        14,
		TitleSize:       14,
		LabelSize:       18,
		TickLabelSize:   14,
		FigureTitleSize: 24,
		AxesLineWidth:   2,
		TickWidth:       2,
		TickLength:      6,
		Background:      "#ffffff",
		Foreground:      "#000000",
	}
}
