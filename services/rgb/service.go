// Package rgb runs the RGB relay: a software PWM engine on three GPIOs fed by
// two serial link decoders, configured from the bus.
package rgb

import (
	"context"
	"sync"
	"time"

	"rgbrelay/bus"
	"rgbrelay/errcode"
	"rgbrelay/services/rgb/internal/halcore"
	"rgbrelay/services/rgb/internal/mirror"
	"rgbrelay/services/rgb/internal/platform"
	"rgbrelay/services/rgb/internal/pwm"
	"rgbrelay/services/rgb/internal/router"
	"rgbrelay/services/rgb/internal/uartio"
	"rgbrelay/services/rgb/internal/util"
	"rgbrelay/types"
	"rgbrelay/x/timex"
)

var (
	topicConfig = bus.T("config", "rgb")
	topicState  = bus.T("rgb", "state")
	topicValue  = bus.T("rgb", "value")
	topicStats  = bus.T("rgb", "stats")
)

// Run starts the service on the board's default platform and blocks until
// ctx is done.
func Run(ctx context.Context, conn *bus.Connection) {
	RunWith(ctx, conn, platform.DefaultPlatform())
}

// RunWith is Run with explicit factories.
func RunWith(ctx context.Context, conn *bus.Connection, plat halcore.Platform) {
	s := &service{conn: conn, plat: plat, regs: &pwm.Registers{}}
	s.loop(ctx)
}

type service struct {
	conn *bus.Connection
	plat halcore.Platform

	// regs outlive reconfiguration so the colour survives a config update.
	regs *pwm.Registers
	run  *pipeline

	lastGen uint32
	sentVal bool
}

// pipeline is everything built from one config.
type pipeline struct {
	cancel context.CancelFunc
	wg     sync.WaitGroup

	eng    *pwm.Engine
	router *router.Router
	pumps  *uartio.Worker
	mirror *mirror.Mirror
	status time.Duration
}

func (s *service) loop(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfig)
	defer s.conn.Unsubscribe(cfgSub)

	s.publishState("idle", "awaiting_config", nil)

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		util.DrainTimer(timer)
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.stop()
			s.publishState("stopped", "context_cancelled", nil)
			return

		case msg, ok := <-cfgSub.Channel():
			if !ok {
				s.stop()
				return
			}
			var cfg types.RGBConfig
			if err := util.DecodeJSON(msg.Payload, &cfg); err != nil {
				println("[rgb] config decode failed:", err.Error())
				s.publishState("error", "config_decode_failed", errcode.Wrap(errcode.InvalidPayload, "decode", err))
				continue
			}
			status, err := s.apply(ctx, cfg)
			if err != nil {
				println("[rgb] apply config failed:", err.Error())
				s.publishState("error", "apply_config_failed", err)
				continue
			}
			s.publishState("ready", status, nil)
			s.publishStatus()
			util.ResetTimer(timer, s.run.status)

		case <-timer.C:
			s.publishStatus()
			if s.run != nil {
				util.ResetTimer(timer, s.run.status)
			}
		}
	}
}

// apply tears down the running pipeline and builds a new one. On error the
// LED stays dark until the next valid config.
func (s *service) apply(ctx context.Context, cfg types.RGBConfig) (string, error) {
	st, err := normalise(cfg)
	if err != nil {
		return "", err
	}
	s.stop()

	var outs [types.NumChannels]pwm.Output
	for ch := types.Channel(0); ch < types.NumChannels; ch++ {
		pin, ok := s.plat.Pins.ByNumber(st.pins[ch])
		if !ok {
			return "", errcode.UnknownPin
		}
		// Off is high for an active-low output.
		if err := pin.ConfigureOutput(st.activeLow); err != nil {
			return "", errcode.Wrap(errcode.Error, "pin_configure", err)
		}
		outs[ch] = pin
	}

	var ports [types.NumLinks]halcore.UARTPort
	for l := types.LinkID(0); l < types.NumLinks; l++ {
		lc := st.links[l]
		p, err := s.plat.UARTs.Open(lc.UART, halcore.UARTConfig{Baud: lc.Baud, TX: lc.TX, RX: lc.RX})
		if err != nil {
			return "", err
		}
		ports[l] = p
	}

	status := "configured"
	var mir *mirror.Mirror
	if st.mirror != nil {
		if m, err := s.openMirror(*st.mirror); err != nil {
			println("[rgb] mirror unavailable:", err.Error())
			status = "mirror_unavailable"
		} else {
			mir = m
		}
	}

	eng := pwm.NewEngine(s.regs, outs, pwm.Options{ActiveLow: st.activeLow})
	rt := router.New(s.regs, ports[types.LinkUSB], ports[types.LinkPin], router.Options{
		HeaderToPeer: [types.NumLinks]*bool{
			types.LinkUSB: st.links[types.LinkUSB].HeaderToPeer,
			types.LinkPin: st.links[types.LinkPin].HeaderToPeer,
		},
	})

	pctx, cancel := context.WithCancel(ctx)
	p := &pipeline{
		cancel: cancel,
		eng:    eng,
		router: rt,
		pumps:  uartio.New(),
		mirror: mir,
		status: st.status,
	}
	for l := types.LinkID(0); l < types.NumLinks; l++ {
		if _, err := p.pumps.Register(pctx, uartio.ReaderCfg{
			Port:     ports[l],
			MaxFrame: 64,
			OnByte:   rt.Handler(l),
		}); err != nil {
			cancel()
			p.pumps.Wait()
			return "", errcode.Wrap(errcode.Error, "link_start", err)
		}
	}

	clk := pwm.NewClock(eng, st.tickHz)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		clk.Run(pctx)
	}()
	if mir != nil {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			mir.Run(pctx)
		}()
	}

	s.run = p
	s.sentVal = false
	println("[rgb] running: tick_hz", st.tickHz, "usb", st.links[types.LinkUSB].UART, "pin", st.links[types.LinkPin].UART)
	return status, nil
}

func (s *service) openMirror(mc types.MirrorConfig) (*mirror.Mirror, error) {
	if s.plat.I2C == nil {
		return nil, errcode.Unsupported
	}
	b, ok := s.plat.I2C.ByID(mc.I2C)
	if !ok {
		return nil, errcode.UnknownBus
	}
	dev, err := mirror.Open(b, mc.Addr, mc.Invert)
	if err != nil {
		return nil, errcode.Wrap(errcode.Error, "mirror_configure", err)
	}
	return mirror.New(dev, s.regs, mirror.DefaultInterval), nil
}

// stop cancels the running pipeline and waits for its goroutines. The clock
// deasserts all outputs on its way out.
func (s *service) stop() {
	p := s.run
	if p == nil {
		return
	}
	s.run = nil
	p.cancel()
	p.pumps.Wait()
	p.wg.Wait()
}

// publishStatus publishes rgb/value when a threshold was written since the
// last publish, and rgb/stats always.
func (s *service) publishStatus() {
	if g := s.regs.Generation(); g != s.lastGen || !s.sentVal {
		s.lastGen = g
		s.sentVal = true
		s.conn.Publish(s.conn.NewMessage(topicValue, s.regs.Snapshot(), true))
	}
	if s.run == nil {
		return
	}
	stats := s.run.router.Stats()
	stats.Periods = s.run.eng.Periods()
	if m := s.run.mirror; m != nil {
		stats.MirrorWrites = m.Writes()
		stats.MirrorErrors = m.Errors()
	}
	s.conn.Publish(s.conn.NewMessage(topicStats, stats, true))
}

func (s *service) publishState(level, status string, err error) {
	st := types.ServiceState{Level: level, Status: status, TS: timex.NowMs()}
	if err != nil {
		st.Error = err.Error()
	}
	s.conn.Publish(s.conn.NewMessage(topicState, st, true))
}
