// Package style provides shared UI styling primitives including brand colors
// and icons for consistent visual presentation across the CLI.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/ecow/internal/core/domain"
)

// Brand Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	White  = lipgloss.Color("#FFFFFF")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Tilde   = "~"
	Dot     = "●"
	Circle  = "○"
)

// Status returns the icon and color a unit status is shown with.
func Status(s domain.Status) (string, lipgloss.Color) {
	switch s {
	case domain.StatusBuilt:
		return Check, Green
	case domain.StatusUpToDate:
		return Tilde, Slate
	case domain.StatusFailed:
		return Cross, Red
	case domain.StatusCancelled:
		return Warning, Yellow
	case domain.StatusBuilding:
		return Dot, Iris
	default:
		return Circle, Slate
	}
}
