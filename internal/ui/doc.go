// Package ui provides the user interface components for the chatbox TUI.
//
// # Overview
//
// The ui package implements the visual components of chatbox using the Bubble
// Tea framework and Lipgloss styling library. It follows the Model-Update-View
// pattern established by Bubble Tea. Components never touch the session store;
// the app package copies what they need into them.
//
// # Layout System
//
//	┌─────────────────────────────────────────────────────┐
//	│ Header (1 line)                                     │
//	├───────────┬─────────────────────────────────────────┤
//	│           │                                         │
//	│  Sidebar  │         Chat Panel                      │
//	│  (20%)    │                                         │
//	│           ├─────────────────────────────────────────┤
//	│           │ Input                                   │
//	├───────────┴─────────────────────────────────────────┤
//	│ Footer (1 line)                                     │
//	└─────────────────────────────────────────────────────┘
//
// The sidebar width is a percentage of the terminal width, 20 by default and
// always within [MinSidebarPercent, MaxSidebarPercent].
//
// # Components
//
// ViewContext: Singleton that manages centralized layout calculations.
// All size calculations should go through ViewContext to ensure consistency.
//
// Resizer: Drag controller for the sidebar border. Pressing on the border
// arms it, motion proposes new widths and release disarms it. Proposals
// outside the allowed range are ignored.
//
// Header: Application title plus the active session title, over a gradient.
//
// Footer: Context-aware keyboard shortcuts, replaced by flash messages when
// one is set.
//
// Sidebar: "+ New Chat" followed by every session in creation order. Sessions
// waiting for a reply show a spinner; sessions that received a reply in the
// background show a dot.
//
// Chat: Message history in a viewport plus the textarea input.
package ui
