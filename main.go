package main

import (
	"context"
	"runtime"
	"time"

	"rgbrelay/bus"
	"rgbrelay/services/config"
	"rgbrelay/services/heartbeat"
	"rgbrelay/services/rgb"
	"rgbrelay/types"
)

// device selects the embedded config; override with -ldflags "-X main.device=pico-mirror".
var device = "pico"

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[main] boot, device", device)

	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, device)

	b := bus.NewBus(4)
	mon := b.NewConnection("main").Subscribe(bus.T("rgb", "state"))

	println("[main] starting rgb …")
	go rgb.Run(ctx, b.NewConnection("rgb"))

	hb := &heartbeat.Service{}
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))

	println("[main] publishing config …")
	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	tick := time.NewTicker(10 * time.Second)
	defer tick.Stop()
	for {
		select {
		case m := <-mon.Channel():
			if st, ok := m.Payload.(types.ServiceState); ok {
				println("[main] rgb", st.Level, st.Status, st.Error)
			}
		case <-tick.C:
			printMem()
		}
	}
}

// printMem prints a compact snapshot of TinyGo runtime memory stats.
func printMem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	println(
		"[mem]",
		"alloc:", uint32(ms.Alloc),
		"heapInuse:", uint32(ms.HeapInuse),
		"mallocs:", uint32(ms.Mallocs),
		"frees:", uint32(ms.Frees),
	)
}
