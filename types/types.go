package types

// ---- Common service state (retained) ----

type ServiceState struct {
	Level  string `json:"level"`  // e.g. "idle", "ready", "error", "stopped"
	Status string `json:"status"` // freeform short code
	Error  string `json:"error,omitempty"`
	TS     int64  `json:"ts_ms"`
}

// ---- Channels ----

// Channel identifies one LED colour channel.
type Channel uint8

const (
	Red Channel = iota
	Green
	Blue
)

// NumChannels is fixed: exactly red, green and blue.
const NumChannels = 3

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	default:
		return "unknown"
	}
}

// Valid reports whether c names one of the three channels.
func (c Channel) Valid() bool { return c < NumChannels }

// ---- Links ----

// LinkID identifies one of the two serial links.
type LinkID uint8

const (
	LinkUSB LinkID = iota // USB-facing link
	LinkPin               // pin-to-pin link
)

const NumLinks = 2

func (l LinkID) String() string {
	switch l {
	case LinkUSB:
		return "usb"
	case LinkPin:
		return "pin"
	default:
		return "unknown"
	}
}

// Peer returns the opposite link.
func (l LinkID) Peer() LinkID {
	if l == LinkUSB {
		return LinkPin
	}
	return LinkUSB
}

// ParseLink maps "usb"/"pin" to a LinkID.
func ParseLink(s string) (LinkID, bool) {
	switch s {
	case "usb":
		return LinkUSB, true
	case "pin":
		return LinkPin, true
	}
	return 0, false
}
