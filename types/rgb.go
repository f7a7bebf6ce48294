package types

// ------------------------
// RGB values
// ------------------------

// RGBValue is a snapshot of the three duty thresholds (0..255 each).
type RGBValue struct {
	Red   uint8 `json:"red"`
	Green uint8 `json:"green"`
	Blue  uint8 `json:"blue"`
}

// At returns the threshold for ch.
func (v RGBValue) At(ch Channel) uint8 {
	switch ch {
	case Red:
		return v.Red
	case Green:
		return v.Green
	case Blue:
		return v.Blue
	}
	return 0
}

// ------------------------
// Link telemetry
// ------------------------

type LinkStats struct {
	RxBytes  uint32 `json:"rx_bytes"`
	Packets  uint32 `json:"packets"`  // cursor returned to await-length
	Relayed  uint32 `json:"relayed"`  // pass-through bytes sent to the peer
	Headers  uint32 `json:"headers"`  // derived header bytes emitted
	Acks     uint32 `json:"acks"`     // 0x00 bytes emitted for short packets
	TxErrors uint32 `json:"tx_errors"`
}

type RGBStats struct {
	USB     LinkStats `json:"usb"`
	Pin     LinkStats `json:"pin"`
	Periods uint32    `json:"periods"`

	// PCA9632 mirror; zero when disabled.
	MirrorWrites uint32 `json:"mirror_writes,omitempty"`
	MirrorErrors uint32 `json:"mirror_errors,omitempty"`
}
