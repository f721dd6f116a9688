package ui

// Resizer is the drag controller for the sidebar width. A press on the
// sidebar's right border arms it, pointer motion while armed proposes a new
// width as a percentage of the terminal width, and a release disarms it.
//
// Proposed widths outside [MinSidebarPercent, MaxSidebarPercent] are
// ignored, so dragging past either bound leaves the sidebar where it was.
type Resizer struct {
	percent float64
	armed   bool
}

// NewResizer returns a disarmed resizer at percent, clamped into range.
func NewResizer(percent float64) *Resizer {
	return &Resizer{percent: clampPercent(percent)}
}

func clampPercent(p float64) float64 {
	switch {
	case p < MinSidebarPercent:
		return MinSidebarPercent
	case p > MaxSidebarPercent:
		return MaxSidebarPercent
	default:
		return p
	}
}

// Percent returns the current sidebar width in percent.
func (r *Resizer) Percent() float64 {
	return r.percent
}

// Armed reports whether a drag is in progress.
func (r *Resizer) Armed() bool {
	return r.armed
}

// OnHandle reports whether column x is the drag handle for a sidebar that
// is sidebarWidth cells wide. The handle is the sidebar's right border and
// the column just after it.
func (r *Resizer) OnHandle(x, sidebarWidth int) bool {
	return x == sidebarWidth-1 || x == sidebarWidth
}

// Start arms the resizer.
func (r *Resizer) Start() {
	r.armed = true
}

// Move proposes the width x/viewportWidth. It reports whether the width
// changed. Moves while disarmed, with a non-positive viewport width, or
// outside the allowed range do nothing.
func (r *Resizer) Move(x, viewportWidth int) bool {
	if !r.armed || viewportWidth <= 0 {
		return false
	}
	p := float64(x) / float64(viewportWidth) * 100
	if p < MinSidebarPercent || p > MaxSidebarPercent {
		return false
	}
	if p == r.percent {
		return false
	}
	r.percent = p
	return true
}

// Stop disarms the resizer. Safe to call when not armed.
func (r *Resizer) Stop() {
	r.armed = false
}

// Nudge moves the width by delta percent, clamping at the bounds. It is
// the keyboard counterpart of a drag and works whether or not a drag is in
// progress.
func (r *Resizer) Nudge(delta float64) bool {
	p := clampPercent(r.percent + delta)
	if p == r.percent {
		return false
	}
	r.percent = p
	return true
}
