package pwm

import (
	"sync/atomic"

	"rgbrelay/types"
)

// Registers holds the three duty thresholds shared by both link decoders and
// the engine. Each threshold is an independent atomic word and there is no
// lock: the last write wins. A duty change in the middle of a period can only
// affect that one period.
type Registers struct {
	duty [types.NumChannels]atomic.Uint32
	gen  atomic.Uint32 // bumped on every write
}

// Set stores v as the threshold for ch. Unknown channels are ignored.
func (r *Registers) Set(ch types.Channel, v uint8) {
	if !ch.Valid() {
		return
	}
	r.duty[ch].Store(uint32(v))
	r.gen.Add(1)
}

// Get returns the threshold for ch (0 for unknown channels).
func (r *Registers) Get(ch types.Channel) uint8 {
	if !ch.Valid() {
		return 0
	}
	return uint8(r.duty[ch].Load())
}

// Snapshot reads all three thresholds. The read is not atomic across
// channels.
func (r *Registers) Snapshot() types.RGBValue {
	return types.RGBValue{
		Red:   r.Get(types.Red),
		Green: r.Get(types.Green),
		Blue:  r.Get(types.Blue),
	}
}

// Generation changes whenever any threshold is written, even with the same
// value.
func (r *Registers) Generation() uint32 { return r.gen.Load() }
