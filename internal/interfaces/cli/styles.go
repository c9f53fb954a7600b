package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/lite-lake/peerdns/internal/domain/valueobject"
)

const (
	ColorPrimary   = "#7C3AED"
	ColorSuccess   = "#10B981"
	ColorWarning   = "#F59E0B"
	ColorError     = "#EF4444"
	ColorSecondary = "#6B7280"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorPrimary))

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondary))

	ChangeCreateStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorSuccess))

	ChangeUpdateStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorWarning))

	ChangeDeleteStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorError))

	ChangeNoopStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondary))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorWarning))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSuccess))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorError)).
			Bold(true)

	ZoneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorPrimary)).
			Padding(0, 1)
)

func changeStyle(ct valueobject.ChangeType) lipgloss.Style {
	switch ct {
	case valueobject.ChangeTypeCreate:
		return ChangeCreateStyle
	case valueobject.ChangeTypeUpdate:
		return ChangeUpdateStyle
	case valueobject.ChangeTypeDelete:
		return ChangeDeleteStyle
	default:
		return ChangeNoopStyle
	}
}

func changePrefix(ct valueobject.ChangeType) string {
	switch ct {
	case valueobject.ChangeTypeCreate:
		return "+"
	case valueobject.ChangeTypeUpdate:
		return "~"
	case valueobject.ChangeTypeDelete:
		return "-"
	default:
		return " "
	}
}
