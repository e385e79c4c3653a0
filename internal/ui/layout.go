package ui

// Terminal layout thresholds.
const (
	// LayoutCompactWidth is the width below which the detail pane is hidden.
	LayoutCompactWidth = 90

	// listPaneRatio is the share of the width given to the record list.
	listPaneRatio = 0.55

	// chromeHeight counts the header, tab bar and status lines.
	chromeHeight = 4
)
