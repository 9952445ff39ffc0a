package render

import (
	"fmt"
	"strings"
)

// DisplayMode selects a single view or the 2x2 channel grid
type DisplayMode int

const (
	Single DisplayMode = iota
	Grid
)

func (m DisplayMode) String() string {
	switch m {
	case Single:
		return "single"
	case Grid:
		return "grid"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Flip switches between Single and Grid
func (m DisplayMode) Flip() DisplayMode {
	if m == Grid {
		return Single
	}
	return Grid
}

// ParseDisplayMode accepts "single" or "grid"
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single":
		return Single, nil
	case "grid":
		return Grid, nil
	}
	return Single, fmt.Errorf("unknown display mode %q", s)
}

// Channel selects what Single mode shows
type Channel int

const (
	Composite Channel = iota
	Red
	Green
	Blue
	Alpha
)

func (c Channel) String() string {
	switch c {
	case Composite:
		return "RGB"
	case Red:
		return "R"
	case Green:
		return "G"
	case Blue:
		return "B"
	case Alpha:
		return "A"
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// Toggle returns sel, or Composite when sel is already active
func (c Channel) Toggle(sel Channel) Channel {
	if c == sel {
		return Composite
	}
	return sel
}

// gridOrder is the quadrant order: top-left, top-right, bottom-left, bottom-right
var gridOrder = [4]Channel{Red, Green, Blue, Alpha}
