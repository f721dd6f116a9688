package ui

import "testing"

func TestResizer_DragWithinRange(t *testing.T) {
	r := NewResizer(DefaultSidebarPercent)

	r.Start()
	if !r.Move(25, 100) {
		t.Fatal("Move to 25% should change the width")
	}
	if r.Percent() != 25 {
		t.Errorf("Percent() = %v, want 25", r.Percent())
	}
	r.Stop()
	if r.Armed() {
		t.Error("Stop should disarm")
	}
}

func TestResizer_OutOfRangeLeavesWidthUnchanged(t *testing.T) {
	tests := []struct {
		name string
		x    int
	}{
		{"below min", 5},
		{"just below min", 9},
		{"above max", 41},
		{"far right", 95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResizer(DefaultSidebarPercent)
			r.Start()
			if r.Move(tt.x, 100) {
				t.Errorf("Move(%d, 100) should be ignored", tt.x)
			}
			if r.Percent() != DefaultSidebarPercent {
				t.Errorf("Percent() = %v, want unchanged %v", r.Percent(), DefaultSidebarPercent)
			}
		})
	}
}

func TestResizer_BoundsAreInclusive(t *testing.T) {
	r := NewResizer(DefaultSidebarPercent)
	r.Start()

	if !r.Move(10, 100) || r.Percent() != 10 {
		t.Errorf("10%% should be accepted, got %v", r.Percent())
	}
	if !r.Move(40, 100) || r.Percent() != 40 {
		t.Errorf("40%% should be accepted, got %v", r.Percent())
	}
}

func TestResizer_MoveIgnoredWhenDisarmed(t *testing.T) {
	r := NewResizer(DefaultSidebarPercent)

	if r.Move(30, 100) {
		t.Error("Move before Start should be ignored")
	}

	r.Start()
	r.Stop()
	if r.Move(30, 100) {
		t.Error("Move after Stop should be ignored")
	}
	if r.Percent() != DefaultSidebarPercent {
		t.Errorf("Percent() = %v", r.Percent())
	}
}

func TestResizer_ZeroViewport(t *testing.T) {
	r := NewResizer(DefaultSidebarPercent)
	r.Start()
	if r.Move(10, 0) {
		t.Error("Move with zero viewport width should be ignored")
	}
}

func TestResizer_FractionalPercent(t *testing.T) {
	r := NewResizer(DefaultSidebarPercent)
	r.Start()
	r.Move(50, 160)
	if r.Percent() != 31.25 {
		t.Errorf("Percent() = %v, want 31.25", r.Percent())
	}
}

func TestNewResizer_ClampsInitial(t *testing.T) {
	if got := NewResizer(3).Percent(); got != MinSidebarPercent {
		t.Errorf("NewResizer(3) = %v", got)
	}
	if got := NewResizer(80).Percent(); got != MaxSidebarPercent {
		t.Errorf("NewResizer(80) = %v", got)
	}
}

func TestResizer_Nudge(t *testing.T) {
	r := NewResizer(MaxSidebarPercent - 1)

	if !r.Nudge(SidebarNudgePercent) {
		t.Error("Nudge toward the bound should change the width")
	}
	if r.Percent() != MaxSidebarPercent {
		t.Errorf("Percent() = %v, want clamp at %v", r.Percent(), MaxSidebarPercent)
	}
	if r.Nudge(SidebarNudgePercent) {
		t.Error("Nudge at the bound should report no change")
	}

	r = NewResizer(MinSidebarPercent)
	if r.Nudge(-SidebarNudgePercent) {
		t.Error("Nudge below min should report no change")
	}
}

func TestResizer_OnHandle(t *testing.T) {
	r := NewResizer(DefaultSidebarPercent)

	tests := []struct {
		x    int
		want bool
	}{
		{18, false},
		{19, true},
		{20, true},
		{21, false},
	}
	for _, tt := range tests {
		if got := r.OnHandle(tt.x, 20); got != tt.want {
			t.Errorf("OnHandle(%d, 20) = %v, want %v", tt.x, got, tt.want)
		}
	}
}
