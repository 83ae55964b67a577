package counter

import (
	"errors"
	"testing"
	"time"
)

func TestParseStep(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"3", 3, false},
		{"  7 ", 7, false},
		{"0", 1, false},
		{"-2", 1, false},
		{"", 0, true},
		{"abc", 0, true},
		{"1.5", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseStep(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidNumber) {
				t.Fatalf("ParseStep(%q) err = %v, want ErrInvalidNumber", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseStep(%q) returned error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseStep(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseBound(t *testing.T) {
	got, err := ParseBound("   ")
	if err != nil || got != nil {
		t.Fatalf("ParseBound(blank) = %v, %v; want nil, nil", got, err)
	}
	got, err = ParseBound("-12")
	if err != nil || got == nil || *got != -12 {
		t.Fatalf("ParseBound(-12) = %v, %v; want -12", got, err)
	}
	if _, err := ParseBound("NaN"); !errors.Is(err, ErrInvalidNumber) {
		t.Fatalf("ParseBound(NaN) err = %v, want ErrInvalidNumber", err)
	}
}

func TestCounter_Progress(t *testing.T) {
	c := New("a", time.Unix(0, 0))

	c.Count = 5
	c.Min, c.Max = IntPtr(0), IntPtr(10)
	if got := c.Progress(); got != 50 {
		t.Fatalf("Progress with [0,10] = %v, want 50", got)
	}

	c.Min, c.Max = nil, IntPtr(20)
	if got := c.Progress(); got != 25 {
		t.Fatalf("Progress with max only = %v, want 25", got)
	}

	c.Min, c.Max = nil, nil
	c.Count = 250
	if got := c.Progress(); got != 100 {
		t.Fatalf("Progress unbounded = %v, want capped 100", got)
	}
	c.Count = -4
	if got := c.Progress(); got != 0 {
		t.Fatalf("Progress negative = %v, want 0", got)
	}
}

func TestCounter_CanIncrementDecrement(t *testing.T) {
	c := New("a", time.Unix(0, 0))
	if !c.CanIncrement() || !c.CanDecrement() {
		t.Fatalf("unbounded counter should move both ways")
	}
	c.Max = IntPtr(0)
	c.Min = IntPtr(0)
	if c.CanIncrement() || c.CanDecrement() {
		t.Fatalf("counter pinned at [0,0] should not move")
	}
}

func TestCounter_CloneIsDeep(t *testing.T) {
	c := New("a", time.Unix(0, 0))
	c.Max = IntPtr(3)
	dup := c.Clone()
	*dup.Max = 9
	dup.History[0].Value = 42

	if *c.Max != 3 || c.History[0].Value != 0 {
		t.Fatalf("Clone shares memory: max=%d history=%v", *c.Max, c.History)
	}
}
