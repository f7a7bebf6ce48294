// Package router binds the two link decoders to each other's transmit path
// and to one shared set of duty registers.
package router

import (
	"rgbrelay/services/rgb/internal/linkdec"
	"rgbrelay/types"
)

type Options struct {
	// HeaderToPeer overrides the per-link header routing; nil entries keep
	// linkdec.DefaultHeaderToPeer.
	HeaderToPeer [types.NumLinks]*bool
}

// Router owns one decoder per link. Colour writes from either link land in
// the same registers: whichever link wrote last wins.
type Router struct {
	dec [types.NumLinks]*linkdec.Decoder
}

// New wires usb and pin as each other's peer. Either sink may be nil.
func New(duty linkdec.Duty, usb, pin linkdec.Sink, opts Options) *Router {
	sinks := [types.NumLinks]linkdec.Sink{types.LinkUSB: usb, types.LinkPin: pin}
	r := &Router{}
	for l := types.LinkID(0); l < types.NumLinks; l++ {
		toPeer := linkdec.DefaultHeaderToPeer(l)
		if o := opts.HeaderToPeer[l]; o != nil {
			toPeer = *o
		}
		r.dec[l] = linkdec.New(
			linkdec.Config{Link: l, HeaderToPeer: toPeer},
			duty,
			sinks[l],
			sinks[l.Peer()],
		)
	}
	return r
}

// Decoder returns the decoder for l, or nil for an unknown link.
func (r *Router) Decoder(l types.LinkID) *linkdec.Decoder {
	if l >= types.NumLinks {
		return nil
	}
	return r.dec[l]
}

// Feed is the byte-arrived handler for link l. Calls for the same link must
// be serialised; calls for different links may run concurrently.
func (r *Router) Feed(l types.LinkID, b byte) {
	if d := r.Decoder(l); d != nil {
		d.Feed(b)
	}
}

// Handler returns Feed bound to l.
func (r *Router) Handler(l types.LinkID) func(byte) {
	d := r.Decoder(l)
	if d == nil {
		return func(byte) {}
	}
	return d.Feed
}

// Stats collects both links' counters. Periods is left to the caller.
func (r *Router) Stats() types.RGBStats {
	return types.RGBStats{
		USB: r.dec[types.LinkUSB].Stats(),
		Pin: r.dec[types.LinkPin].Stats(),
	}
}
