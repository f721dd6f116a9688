package ui

import "charm.land/lipgloss/v2"

// Color palette - Purple + Cyan/Teal theme
var (
	ColorPrimary     = lipgloss.Color("#7C3AED") // Purple
	ColorSecondary   = lipgloss.Color("#06B6D4") // Cyan
	ColorMuted       = lipgloss.Color("#6B7280") // Gray
	ColorBorder      = lipgloss.Color("#374151") // Dark gray
	ColorBorderFocus = lipgloss.Color("#7C3AED") // Purple when focused
	ColorBorderDrag  = lipgloss.Color("#22D3EE") // Bright cyan while resizing
	ColorBg          = lipgloss.Color("#1F2937") // Dark background
	ColorBgSelected  = lipgloss.Color("#4C1D95") // Deep purple selection
	ColorText        = lipgloss.Color("#F9FAFB") // Light text
	ColorTextMuted   = lipgloss.Color("#B0B8C4") // Muted text
	ColorTextInverse = lipgloss.Color("#1F2937") // Dark text for light backgrounds
	ColorUser        = lipgloss.Color("#A78BFA") // Light purple for user messages
	ColorAssistant   = lipgloss.Color("#22D3EE") // Bright cyan for assistant messages
	ColorWarning     = lipgloss.Color("#F59E0B") // Amber
	ColorInfo        = lipgloss.Color("#06B6D4") // Cyan
	ColorError       = lipgloss.Color("#EF4444") // Red for errors
	ColorSuccess     = lipgloss.Color("#10B981") // Green for success
)

// Hex values used by the header gradient
const (
	headerGradientStart = "#7C3AED"
	headerGradientEnd   = "#1F2937"
	headerText          = "#F9FAFB"
	headerTextMuted     = "#B0B8C4"
)

// Footer styles
var (
	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	FooterKeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)
)

// Panel styles
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	PanelFocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorderFocus)

	// PanelDraggingStyle highlights the sidebar while its width is being dragged
	PanelDraggingStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorderDrag)
)

// Sidebar styles
var (
	SidebarItemStyle = lipgloss.NewStyle().
				Padding(0, 1)

	SidebarSelectedStyle = lipgloss.NewStyle().
				Background(ColorBgSelected).
				Foreground(ColorText).
				Bold(true).
				Padding(0, 1)

	SidebarNewChatStyle = lipgloss.NewStyle().
				Foreground(ColorSecondary).
				Bold(true).
				Padding(0, 1)

	SidebarUnreadStyle = lipgloss.NewStyle().
				Foreground(ColorSuccess)
)

// Chat styles
var (
	ChatUserStyle = lipgloss.NewStyle().
			Foreground(ColorUser).
			Bold(true)

	ChatAssistantStyle = lipgloss.NewStyle().
				Foreground(ColorAssistant).
				Bold(true)

	ChatMessageStyle = lipgloss.NewStyle().
				Foreground(ColorText)

	ChatInputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	ChatInputFocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorderFocus).
				Padding(0, 1)

	// ChatSectionStyle labels the query and results blocks of a query reply
	ChatSectionStyle = lipgloss.NewStyle().
				Foreground(ColorSecondary).
				Bold(true)

	ChatEmptyStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Italic(true)
)

// Status styles
var (
	StatusLoadingStyle = lipgloss.NewStyle().
				Foreground(ColorSecondary).
				Italic(true)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ColorError).
				Bold(true)
)

// Code block
var CodeBlockStyle = lipgloss.NewStyle().
	Foreground(ColorText).
	PaddingLeft(2)
