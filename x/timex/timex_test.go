package timex

import (
	"testing"
	"time"
)

func TestPeriodFromHz(t *testing.T) {
	cases := map[uint32]uint64{
		0:         1_000_000_000,
		1:         1_000_000_000,
		25_500:    39_215,
		100_000:   10_000,
		1_000_000: 1_000,
	}
	for hz, want := range cases {
		if got := PeriodFromHz(hz); got != want {
			t.Fatalf("PeriodFromHz(%d) = %d, want %d", hz, got, want)
		}
	}
}

func TestNowMs(t *testing.T) {
	before := time.Now().UnixMilli()
	got := NowMs()
	if got < before || got > time.Now().UnixMilli() {
		t.Fatalf("NowMs = %d outside [%d, now]", got, before)
	}
}
