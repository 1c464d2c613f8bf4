// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/digibook/digibook/internal/derive"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#4ECDC4")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#4ECDC4") // Teal
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#FFE66D") // Yellow
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#FF6B6B") // Red
	// InfoColor indicates informational messages.
	InfoColor = lipgloss.Color("#95E1D3") // Light teal
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666") // Gray

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// InfoStyle formats informational messages.
	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// BoldStyle makes text bold.
	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	// BoxStyle is used for bordered content boxes.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)

	// TableHeaderStyle is used for table headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(lipgloss.Color("#333"))

	// TableCellStyle formats table cells with appropriate padding.
	TableCellStyle = lipgloss.NewStyle().
			PaddingRight(2)

	// NegativeAmountStyle formats debts and negative balances.
	NegativeAmountStyle = lipgloss.NewStyle().
				Foreground(ErrorColor)

	// PositiveAmountStyle formats credits and positive balances.
	PositiveAmountStyle = lipgloss.NewStyle().
				Foreground(SuccessColor)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	BookIcon    = "📒"
	ChartIcon   = "📊"
	CardIcon    = "💳"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the ledger icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(BookIcon + " " + title)
}

// FormatAmount renders a dollar amount, colored by sign.
func FormatAmount(amount float64) string {
	text := fmt.Sprintf("$%.2f", amount)
	if amount < 0 {
		return NegativeAmountStyle.Render(text)
	}
	return PositiveAmountStyle.Render(text)
}

// FormatUrgency renders an urgency bucket with its conventional color.
func FormatUrgency(u derive.Urgency) string {
	switch u {
	case derive.UrgencyPaid:
		return SuccessStyle.Render("paid")
	case derive.UrgencyOverdue:
		return ErrorStyle.Render("overdue")
	case derive.UrgencyDueThisWeek:
		return WarningStyle.Render("due this week")
	case derive.UrgencyDueNextCheck:
		return InfoStyle.Render("due next check")
	default:
		return SubtleStyle.Render("future")
	}
}

// RenderBox renders content in a styled box.
func RenderBox(title, content string) string {
	boxTitle := TitleStyle.
		UnsetMargins().
		Render(title)

	boxContent := lipgloss.JoinVertical(
		lipgloss.Left,
		boxTitle,
		content,
	)

	return BoxStyle.Render(boxContent)
}
