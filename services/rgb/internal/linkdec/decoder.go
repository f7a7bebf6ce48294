// Package linkdec implements the per-link receive state machine that splits
// a serial byte stream into duty-cycle updates and bytes forwarded to the
// peer link.
//
// Framing (no checksum):
//
//	byte 0        declared length L; the packet is L+1 bytes long
//	bytes 1..3    red, green, blue duty thresholds
//	bytes 4..L-1  payload, relayed byte-for-byte to the peer link
//	byte L        terminal byte, consumed and dropped
//
// On the length byte the decoder also emits one byte: L-3 when L+1 >= 6
// (to the header target), otherwise 0x00 on its own link.
package linkdec

import (
	"sync/atomic"

	"rgbrelay/types"
)

// State is the packet cursor position.
type State uint8

const (
	AwaitLength State = iota
	RecvRed
	RecvGreen
	RecvBlue
	Passthrough
)

func (s State) String() string {
	switch s {
	case AwaitLength:
		return "await_length"
	case RecvRed:
		return "red"
	case RecvGreen:
		return "green"
	case RecvBlue:
		return "blue"
	case Passthrough:
		return "passthrough"
	default:
		return "unknown"
	}
}

// minHeaderRemaining is the smallest remaining count (L+1) for which the
// derived header byte is emitted instead of 0x00.
const minHeaderRemaining = 6

// headerOffset is subtracted from the length byte to form the header byte.
const headerOffset = 3

// Sink is the transmit side of a link.
type Sink interface {
	WriteByte(b byte) error
}

// Duty receives channel threshold writes.
type Duty interface {
	Set(ch types.Channel, v uint8)
}

type Config struct {
	Link types.LinkID
	// HeaderToPeer sends the derived header byte to the peer link instead of
	// this link. The USB-facing link relays it; the pin-to-pin link echoes
	// it on itself.
	HeaderToPeer bool
}

// DefaultHeaderToPeer returns the observed header routing for a link.
func DefaultHeaderToPeer(l types.LinkID) bool { return l == types.LinkUSB }

// Decoder owns one link's packet cursor. Feed must be called from a single
// goroutine per decoder; bytes are processed strictly in arrival order.
type Decoder struct {
	cfg  Config
	duty Duty
	self Sink
	peer Sink

	state     State
	remaining uint16

	rx       atomic.Uint32
	packets  atomic.Uint32
	relayed  atomic.Uint32
	headers  atomic.Uint32
	acks     atomic.Uint32
	txErrors atomic.Uint32
}

// New returns a decoder in AwaitLength. self and peer may be nil, in which
// case bytes bound for them are dropped.
func New(cfg Config, duty Duty, self, peer Sink) *Decoder {
	return &Decoder{cfg: cfg, duty: duty, self: self, peer: peer}
}

// Feed consumes one received byte. It never blocks beyond the sinks'
// WriteByte and never fails; transmit errors are only counted.
func (d *Decoder) Feed(b byte) {
	d.rx.Add(1)

	switch d.state {
	case AwaitLength:
		d.remaining = uint16(b) + 1
		d.state = RecvRed
		if d.remaining >= minHeaderRemaining {
			dst := d.self
			if d.cfg.HeaderToPeer {
				dst = d.peer
			}
			d.send(dst, b-headerOffset)
			d.headers.Add(1)
		} else {
			d.send(d.self, 0x00)
			d.acks.Add(1)
		}

	case RecvRed:
		d.duty.Set(types.Red, b)
		d.consume()
		d.state = RecvGreen

	case RecvGreen:
		d.duty.Set(types.Green, b)
		d.consume()
		d.state = RecvBlue

	case RecvBlue:
		d.duty.Set(types.Blue, b)
		d.consume()
		// Short packets (L < 3) have already run out; they still end here.
		if d.remaining <= 1 {
			d.complete()
		} else {
			d.state = Passthrough
		}

	case Passthrough:
		d.consume()
		if d.remaining == 1 {
			d.complete()
			return
		}
		d.send(d.peer, b)
		d.relayed.Add(1)

	default:
		// unknown state: ignore the byte
	}
}

// FeedAll feeds p in order.
func (d *Decoder) FeedAll(p []byte) {
	for _, b := range p {
		d.Feed(b)
	}
}

// State returns the cursor state. Same goroutine as Feed.
func (d *Decoder) State() State { return d.state }

// Remaining returns the bytes still owed. Same goroutine as Feed.
func (d *Decoder) Remaining() int { return int(d.remaining) }

// Stats may be called from any goroutine.
func (d *Decoder) Stats() types.LinkStats {
	return types.LinkStats{
		RxBytes:  d.rx.Load(),
		Packets:  d.packets.Load(),
		Relayed:  d.relayed.Load(),
		Headers:  d.headers.Load(),
		Acks:     d.acks.Load(),
		TxErrors: d.txErrors.Load(),
	}
}

// consume decrements remaining, saturating at zero.
func (d *Decoder) consume() {
	if d.remaining > 0 {
		d.remaining--
	}
}

func (d *Decoder) complete() {
	d.state = AwaitLength
	d.packets.Add(1)
}

func (d *Decoder) send(s Sink, b byte) {
	if s == nil {
		return
	}
	if err := s.WriteByte(b); err != nil {
		d.txErrors.Add(1)
	}
}
