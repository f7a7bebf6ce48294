//go:build !rp2040 && !rp2350

// Command rgbsim feeds a hex byte stream into one link of a host-built relay,
// runs the PWM engine for a number of periods and reports the thresholds,
// per-channel on-ticks and what each link transmitted.
//
//	rgbsim -link usb -hex "05 0a 14 1e aa bb" -periods 4
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/golang/glog"

	"rgbrelay/services/rgb/internal/pwm"
	"rgbrelay/services/rgb/internal/router"
	"rgbrelay/types"
)

type recorder struct{ sent []byte }

func (r *recorder) WriteByte(b byte) error {
	r.sent = append(r.sent, b)
	return nil
}

type result struct {
	value  types.RGBValue
	onTick [types.NumChannels]int
	tx     [types.NumLinks][]byte
	stats  types.RGBStats
}

func parseHex(s string) ([]byte, error) {
	s = strings.NewReplacer(" ", "", ",", "", ":", "", "0x", "").Replace(s)
	return hex.DecodeString(s)
}

func simulate(link types.LinkID, data []byte, periods int) result {
	var regs pwm.Registers
	var sinks [types.NumLinks]recorder
	rt := router.New(&regs, &sinks[types.LinkUSB], &sinks[types.LinkPin], router.Options{})

	for _, b := range data {
		rt.Feed(link, b)
		glog.V(2).Infof("%s rx %#02x -> %s", link, b, rt.Decoder(link).State())
	}

	// No physical outputs; on-ticks are read from the logical level.
	eng := pwm.NewEngine(&regs, [types.NumChannels]pwm.Output{}, pwm.Options{})

	var res result
	for i := 0; i < periods*pwm.Period; i++ {
		eng.Tick()
		for ch := types.Channel(0); ch < types.NumChannels; ch++ {
			if eng.Asserted(ch) {
				res.onTick[ch]++
			}
		}
	}
	eng.Stop()

	res.value = regs.Snapshot()
	for l := range sinks {
		res.tx[l] = sinks[l].sent
	}
	res.stats = rt.Stats()
	res.stats.Periods = eng.Periods()
	return res
}

func main() {
	linkName := flag.String("link", "usb", "link the bytes arrive on: usb | pin")
	hexIn := flag.String("hex", "", "input bytes in hex, separators allowed")
	periods := flag.Int("periods", 1, "PWM periods to run")
	flag.Parse()
	defer glog.Flush()

	link, ok := types.ParseLink(*linkName)
	if !ok {
		glog.Errorf("unknown link %q", *linkName)
		os.Exit(2)
	}
	data, err := parseHex(*hexIn)
	if err != nil {
		glog.Errorf("bad -hex: %v", err)
		os.Exit(2)
	}
	if *periods < 1 {
		*periods = 1
	}
	glog.Infof("feeding %d bytes on %s, %d periods", len(data), link, *periods)

	res := simulate(link, data, *periods)

	fmt.Printf("thresholds  r=%d g=%d b=%d\n", res.value.Red, res.value.Green, res.value.Blue)
	for ch := types.Channel(0); ch < types.NumChannels; ch++ {
		fmt.Printf("%-6s on %d/%d ticks\n", ch, res.onTick[ch], *periods*pwm.Period)
	}
	for l := types.LinkID(0); l < types.NumLinks; l++ {
		fmt.Printf("tx %-4s % x\n", l, res.tx[l])
	}
	glog.V(1).Infof("stats %+v", res.stats)
}
