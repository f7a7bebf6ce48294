//go:build !rp2040 && !rp2350

package main

import (
	"bytes"
	"testing"

	"rgbrelay/types"
)

func TestParseHex(t *testing.T) {
	got, err := parseHex("05 0a,14:1e 0xaa")
	if err != nil {
		t.Fatalf("parseHex: %v", err)
	}
	if !bytes.Equal(got, []byte{5, 10, 20, 30, 0xaa}) {
		t.Fatalf("got %x", got)
	}
	if _, err := parseHex("zz"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSimulate_L5(t *testing.T) {
	res := simulate(types.LinkUSB, []byte{5, 10, 20, 30, 0xaa, 0xbb}, 2)

	if res.value != (types.RGBValue{Red: 10, Green: 20, Blue: 30}) {
		t.Fatalf("value = %+v", res.value)
	}
	if res.onTick != [3]int{20, 40, 60} {
		t.Fatalf("on ticks = %v", res.onTick)
	}
	if !bytes.Equal(res.tx[types.LinkPin], []byte{2, 0xaa}) {
		t.Fatalf("pin tx = %x", res.tx[types.LinkPin])
	}
	if len(res.tx[types.LinkUSB]) != 0 {
		t.Fatalf("usb tx = %x", res.tx[types.LinkUSB])
	}
	if res.stats.USB.Packets != 1 || res.stats.Periods != 2 {
		t.Fatalf("stats = %+v", res.stats)
	}
}

func TestSimulate_FullAndOff(t *testing.T) {
	res := simulate(types.LinkPin, []byte{1, 0, 255, 128}, 1)
	if res.onTick != [3]int{0, 255, 128} {
		t.Fatalf("on ticks = %v", res.onTick)
	}
	if !bytes.Equal(res.tx[types.LinkPin], []byte{0}) {
		t.Fatalf("pin tx = %x", res.tx[types.LinkPin])
	}
}
