package heartbeat

import (
	"testing"
	"time"

	"rgbrelay/types"
)

func TestInterval(t *testing.T) {
	cases := []struct {
		in   any
		want time.Duration
		ok   bool
	}{
		{map[string]any{"interval": 2.0}, 2 * time.Second, true},
		{map[string]any{"interval": 0.5}, 500 * time.Millisecond, true},
		{types.HeartbeatConfig{Interval: 3}, 3 * time.Second, true},
		{map[string]any{"interval": int64(4)}, 4 * time.Second, true},
		{map[string]any{"interval": "2"}, 0, false},
		{map[string]any{"interval": -1.0}, 0, false},
		{42, 0, false},
	}
	for _, tc := range cases {
		got, ok := interval(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("interval(%#v) = %v,%v want %v,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestLine(t *testing.T) {
	ts := time.Date(2024, 1, 1, 12, 34, 56, 0, time.UTC)
	var s Service
	if got := s.line(ts); got != "[heartbeat] 12:34:56 rgb=-" {
		t.Fatalf("line = %q", got)
	}
	s.observe("not a value")
	s.observe(types.RGBValue{Red: 1, Green: 22, Blue: 255})
	if got := s.line(ts); got != "[heartbeat] 12:34:56 rgb=1,22,255" {
		t.Fatalf("line = %q", got)
	}
}
