package rgb

import (
	"time"

	"rgbrelay/drivers/pca9632"
	"rgbrelay/errcode"
	"rgbrelay/types"
	"rgbrelay/x/mathx"
)

// Defaults applied to a partially filled config/rgb document.
const (
	defaultTickHz   = 25_500 // 100 Hz PWM
	minTickHz       = 255
	maxTickHz       = 1_000_000
	defaultBaud     = 9600
	defaultStatusMs = 1000
	minStatusMs     = 100
	maxStatusMs     = 60_000
)

var defaultPins = types.PinsConfig{Red: 2, Green: 3, Blue: 4}

// uartPins are the board pins a UART uses when a link names it without
// giving tx/rx.
var uartPins = map[string][2]int{
	"uart0": {0, 1},
	"uart1": {8, 9},
}

var defaultLinks = types.LinksConfig{
	USB: types.LinkConfig{UART: "uart1"},
	Pin: types.LinkConfig{UART: "uart0"},
}

// settings is a validated RGBConfig with every default resolved.
type settings struct {
	pins      [types.NumChannels]int
	activeLow bool
	tickHz    uint32
	links     [types.NumLinks]types.LinkConfig
	mirror    *types.MirrorConfig
	status    time.Duration
}

func normalise(cfg types.RGBConfig) (settings, error) {
	var s settings

	p := cfg.Pins
	if p == (types.PinsConfig{}) {
		p = defaultPins
	}
	s.pins = [types.NumChannels]int{types.Red: p.Red, types.Green: p.Green, types.Blue: p.Blue}
	for i := range s.pins {
		if s.pins[i] < 0 {
			return s, errcode.UnknownPin
		}
		for j := 0; j < i; j++ {
			if s.pins[i] == s.pins[j] {
				return s, errcode.PinInUse
			}
		}
	}

	s.activeLow = true
	if cfg.ActiveLow != nil {
		s.activeLow = *cfg.ActiveLow
	}

	s.tickHz = cfg.TickHz
	if s.tickHz == 0 {
		s.tickHz = defaultTickHz
	}
	s.tickHz = mathx.Clamp(s.tickHz, minTickHz, maxTickHz)

	s.links[types.LinkUSB] = withLinkDefaults(cfg.Links.USB, defaultLinks.USB)
	s.links[types.LinkPin] = withLinkDefaults(cfg.Links.Pin, defaultLinks.Pin)
	for _, l := range s.links {
		if _, ok := uartPins[l.UART]; !ok {
			return s, errcode.UnknownBus
		}
	}
	if s.links[types.LinkUSB].UART == s.links[types.LinkPin].UART {
		return s, errcode.BusInUse
	}
	if err := checkPinOverlap(s.pins, s.links); err != nil {
		return s, err
	}

	if cfg.Mirror != nil {
		m := *cfg.Mirror
		if m.I2C == "" {
			return s, errcode.InvalidConfig
		}
		if m.Addr == 0 {
			m.Addr = pca9632.Address
		}
		s.mirror = &m
	}

	ms := cfg.StatusMs
	if ms == 0 {
		ms = defaultStatusMs
	}
	s.status = time.Duration(mathx.Clamp(ms, minStatusMs, maxStatusMs)) * time.Millisecond

	return s, nil
}

func withLinkDefaults(l, def types.LinkConfig) types.LinkConfig {
	if l.UART == "" {
		l.UART = def.UART
	}
	if l.TX == 0 && l.RX == 0 {
		if p, ok := uartPins[l.UART]; ok {
			l.TX, l.RX = p[0], p[1]
		}
	}
	if l.Baud == 0 {
		l.Baud = defaultBaud
	}
	return l
}

// checkPinOverlap rejects a GPIO claimed twice across the LED outputs and
// the link TX/RX lines.
func checkPinOverlap(leds [types.NumChannels]int, links [types.NumLinks]types.LinkConfig) error {
	used := make(map[int]struct{}, types.NumChannels+2*types.NumLinks)
	for _, p := range leds {
		used[p] = struct{}{}
	}
	for _, l := range links {
		if l.TX == l.RX {
			return errcode.PinInUse
		}
		for _, p := range [2]int{l.TX, l.RX} {
			if _, dup := used[p]; dup {
				return errcode.PinInUse
			}
			used[p] = struct{}{}
		}
	}
	return nil
}
