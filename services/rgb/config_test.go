package rgb

import (
	"errors"
	"testing"
	"time"

	"rgbrelay/errcode"
	"rgbrelay/types"
)

func TestNormalise_Defaults(t *testing.T) {
	s, err := normalise(types.RGBConfig{})
	if err != nil {
		t.Fatalf("normalise: %v", err)
	}
	if s.pins != [3]int{2, 3, 4} {
		t.Fatalf("pins = %v", s.pins)
	}
	if !s.activeLow {
		t.Fatal("active_low should default to true")
	}
	if s.tickHz != defaultTickHz {
		t.Fatalf("tick_hz = %d", s.tickHz)
	}
	if s.status != time.Second {
		t.Fatalf("status = %v", s.status)
	}
	usb, pin := s.links[types.LinkUSB], s.links[types.LinkPin]
	if usb.UART != "uart1" || pin.UART != "uart0" {
		t.Fatalf("uarts = %q / %q", usb.UART, pin.UART)
	}
	if usb.TX != 8 || usb.RX != 9 || pin.TX != 0 || pin.RX != 1 {
		t.Fatalf("link pins = %+v / %+v", usb, pin)
	}
	if usb.Baud != 9600 || pin.Baud != 9600 {
		t.Fatalf("baud = %d / %d", usb.Baud, pin.Baud)
	}
	if s.mirror != nil {
		t.Fatal("mirror should be disabled by default")
	}
}

func TestNormalise_Clamps(t *testing.T) {
	s, err := normalise(types.RGBConfig{TickHz: 10, StatusMs: 5})
	if err != nil {
		t.Fatalf("normalise: %v", err)
	}
	if s.tickHz != minTickHz || s.status != minStatusMs*time.Millisecond {
		t.Fatalf("low clamp: tick=%d status=%v", s.tickHz, s.status)
	}
	s, _ = normalise(types.RGBConfig{TickHz: 5_000_000, StatusMs: 1_000_000})
	if s.tickHz != maxTickHz || s.status != maxStatusMs*time.Millisecond {
		t.Fatalf("high clamp: tick=%d status=%v", s.tickHz, s.status)
	}
}

func TestNormalise_Overrides(t *testing.T) {
	off := false
	s, err := normalise(types.RGBConfig{
		Pins:      types.PinsConfig{Red: 10, Green: 11, Blue: 12},
		ActiveLow: &off,
		Links: types.LinksConfig{
			USB: types.LinkConfig{UART: "uart0", Baud: 115200, TX: 16, RX: 17},
			Pin: types.LinkConfig{UART: "uart1", TX: 4, RX: 5},
		},
		Mirror: &types.MirrorConfig{I2C: "i2c1", Invert: true},
	})
	if err != nil {
		t.Fatalf("normalise: %v", err)
	}
	if s.activeLow {
		t.Fatal("active_low override ignored")
	}
	if s.links[types.LinkUSB].Baud != 115200 || s.links[types.LinkPin].Baud != 9600 {
		t.Fatalf("baud = %+v", s.links)
	}
	if s.links[types.LinkPin].TX != 4 {
		t.Fatalf("explicit pins replaced: %+v", s.links[types.LinkPin])
	}
	if s.mirror == nil || s.mirror.Addr != 0x62 || !s.mirror.Invert {
		t.Fatalf("mirror = %+v", s.mirror)
	}
}

func TestNormalise_Rejects(t *testing.T) {
	cases := []struct {
		name string
		cfg  types.RGBConfig
		want errcode.Code
	}{
		{"duplicate pin", types.RGBConfig{Pins: types.PinsConfig{Red: 5, Green: 5, Blue: 6}}, errcode.PinInUse},
		{"negative pin", types.RGBConfig{Pins: types.PinsConfig{Red: -1, Green: 5, Blue: 6}}, errcode.UnknownPin},
		{"shared uart", types.RGBConfig{Links: types.LinksConfig{
			USB: types.LinkConfig{UART: "uart0"},
			Pin: types.LinkConfig{UART: "uart0"},
		}}, errcode.BusInUse},
		{"mirror without bus", types.RGBConfig{Mirror: &types.MirrorConfig{}}, errcode.InvalidConfig},
		{"led on link tx", types.RGBConfig{
			Pins:  types.PinsConfig{Red: 0, Green: 5, Blue: 6},
			Links: types.LinksConfig{Pin: types.LinkConfig{UART: "uart0", TX: 0, RX: 1}},
		}, errcode.PinInUse},
		{"led on default uart pin", types.RGBConfig{Pins: types.PinsConfig{Red: 9, Green: 5, Blue: 6}}, errcode.PinInUse},
		{"links share a pin", types.RGBConfig{Links: types.LinksConfig{
			USB: types.LinkConfig{UART: "uart1", TX: 8, RX: 1},
		}}, errcode.PinInUse},
		{"tx equals rx", types.RGBConfig{Links: types.LinksConfig{
			USB: types.LinkConfig{UART: "uart1", TX: 8, RX: 8},
		}}, errcode.PinInUse},
		{"unknown uart", types.RGBConfig{Links: types.LinksConfig{
			USB: types.LinkConfig{UART: "uart7"},
		}}, errcode.UnknownBus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := normalise(tc.cfg)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}
