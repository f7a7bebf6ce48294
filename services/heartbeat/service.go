package heartbeat

import (
	"context"
	"strconv"
	"time"

	"rgbrelay/bus"
	"rgbrelay/types"
)

var (
	topicConfigHeartbeat = bus.T("config", "heartbeat")
	topicRGBValue        = bus.T("rgb", "value")
)

type Service struct {
	last types.RGBValue
	seen bool
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)
	valSub := conn.Subscribe(topicRGBValue)
	defer conn.Unsubscribe(valSub)

	tick := time.NewTicker(1 * time.Second)
	defer tick.Stop()

	// loop until context is cancelled, respond to tick, config and value changes
	for {
		select {
		case <-ctx.Done():
			println("[heartbeat] stopping")
			return
		case t := <-tick.C:
			println(s.line(t))
		case msg := <-valSub.Channel():
			s.observe(msg.Payload)
		case msg := <-cfgSub.Channel():
			if d, ok := interval(msg.Payload); ok {
				tick.Reset(d)
				println("[heartbeat] interval set to", d.String())
			}
		}
	}
}

func (s *Service) observe(p any) {
	if v, ok := p.(types.RGBValue); ok {
		s.last = v
		s.seen = true
	}
}

// line formats one heartbeat log line.
func (s *Service) line(t time.Time) string {
	out := "[heartbeat] " + t.Format("15:04:05")
	if !s.seen {
		return out + " rgb=-"
	}
	return out + " rgb=" + strconv.Itoa(int(s.last.Red)) + "," +
		strconv.Itoa(int(s.last.Green)) + "," + strconv.Itoa(int(s.last.Blue))
}

// interval reads config/heartbeat: {"interval": seconds}.
func interval(p any) (time.Duration, bool) {
	var secs float64
	switch v := p.(type) {
	case types.HeartbeatConfig:
		secs = v.Interval
	case map[string]any:
		switch n := v["interval"].(type) {
		case float64:
			secs = n
		case int:
			secs = float64(n)
		case int64:
			secs = float64(n)
		default:
			return 0, false
		}
	default:
		return 0, false
	}
	if secs <= 0 {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
