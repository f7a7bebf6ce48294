package types

// RGB configuration supplied on topic "config/rgb".

type RGBConfig struct {
	Pins      PinsConfig    `json:"pins"`
	ActiveLow *bool         `json:"active_low,omitempty"` // nil => true (common anode)
	TickHz    uint32        `json:"tick_hz,omitempty"`
	Links     LinksConfig   `json:"links"`
	Mirror    *MirrorConfig `json:"mirror,omitempty"`
	StatusMs  int           `json:"status_ms,omitempty"`
}

type PinsConfig struct {
	Red   int `json:"red"`
	Green int `json:"green"`
	Blue  int `json:"blue"`
}

type LinksConfig struct {
	USB LinkConfig `json:"usb"`
	Pin LinkConfig `json:"pin"`
}

type LinkConfig struct {
	UART string `json:"uart"` // "uart0" | "uart1"
	Baud uint32 `json:"baud,omitempty"`
	TX   int    `json:"tx"`
	RX   int    `json:"rx"`
	// HeaderToPeer selects where the derived header byte goes for long
	// packets. nil keeps the link default (usb: peer, pin: self).
	HeaderToPeer *bool `json:"header_to_peer,omitempty"`
}

// MirrorConfig enables the optional PCA9632 copy of the duty thresholds.
type MirrorConfig struct {
	I2C    string `json:"i2c"`              // "i2c0" | "i2c1"
	Addr   uint16 `json:"addr,omitempty"`   // 0 => 0x62
	Invert bool   `json:"invert,omitempty"` // MODE2.INVRT
}

// HeartbeatConfig is supplied on topic "config/heartbeat".
type HeartbeatConfig struct {
	Interval float64 `json:"interval"` // seconds
}
