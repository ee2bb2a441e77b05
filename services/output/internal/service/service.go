// services/output/internal/service/service.go
package service

import (
	"context"
	"time"

	"lightcode-go/bus"
	"lightcode-go/errcode"
	"lightcode-go/services/output/internal/consts"
	"lightcode-go/services/output/internal/manager"
	"lightcode-go/services/output/internal/util"
	"lightcode-go/types"
)

const (
	// DefaultTick is the render period when config names none: 40 fps.
	DefaultTick = 25 * time.Millisecond
	minTick     = 5 * time.Millisecond

	// Retained status is refreshed every statusEvery renders so frame
	// counters stay observable between config changes.
	statusEvery = 40
)

var (
	topicConfigOutput = bus.Topic{consts.TokConfig, consts.TokOutput}
	topicCtrl         = bus.Topic{consts.TokOutput, consts.TokControl, bus.WildOne}
	topicFrame        = bus.Topic{consts.TokOutput, consts.TokFrame}
	topicState        = bus.Topic{consts.TokOutput, consts.TokState}
	topicStatus       = bus.Topic{consts.TokOutput, consts.TokStatus}
)

type Service struct {
	conn *bus.Connection
	mgr  *manager.Manager
	tick time.Duration

	renders int
}

func New(conn *bus.Connection, mgr *manager.Manager, tick time.Duration) *Service {
	if tick <= 0 {
		tick = DefaultTick
	}
	if tick < minTick {
		tick = minTick
	}
	return &Service{conn: conn, mgr: mgr, tick: tick}
}

// Run owns the manager: every manager call below happens on this goroutine.
func (s *Service) Run(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfigOutput)
	ctrlSub := s.conn.Subscribe(topicCtrl)
	frameSub := s.conn.Subscribe(topicFrame)
	defer s.conn.Unsubscribe(cfgSub)
	defer s.conn.Unsubscribe(ctrlSub)
	defer s.conn.Unsubscribe(frameSub)

	s.mgr.Begin()
	s.publishState("ready", "configured")
	s.publishStatus()

	tick := time.NewTicker(s.tick)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			if s.mgr.Dirty() {
				s.mgr.SaveNow()
			}
			s.publishState("stopped", "context_cancelled")
			return

		case msg := <-cfgSub.Channel():
			// Board and capacity are fixed at construction; the render
			// period is the one setting that follows config live.
			var cfg types.OutputSettings
			if err := util.DecodeJSON(msg.Payload, &cfg); err != nil {
				continue
			}
			if d := time.Duration(cfg.TickMs) * time.Millisecond; d >= minTick && d != s.tick {
				s.tick = d
				tick.Reset(d)
			}

		case msg := <-ctrlSub.Channel():
			s.handleControl(msg)

		case msg := <-frameSub.Channel():
			s.handleFrame(msg)

		case <-tick.C:
			s.mgr.Render()
			s.renders++
			if s.renders%statusEvery == 0 {
				s.publishStatus()
			}
		}
	}
}

func (s *Service) handleControl(msg *bus.Message) {
	// output/control/<verb>
	if len(msg.Topic) < 3 {
		return
	}
	verb, _ := msg.Topic[2].(string)

	switch verb {
	case consts.CtrlSet:
		raw, ok := util.AsBytes(msg.Payload)
		if !ok {
			s.replyErr(msg, errcode.InvalidPayload)
			return
		}
		if !s.mgr.SetConfig(raw) {
			s.replyErr(msg, errcode.InvalidConfig)
			s.publishStatus()
			return
		}
		s.replyOK(msg)
		s.publishStatus()

	case consts.CtrlGet:
		raw := s.mgr.GetConfig()
		if raw == nil {
			s.replyErr(msg, errcode.Error)
			return
		}
		s.conn.Reply(msg, raw, false)

	case consts.CtrlStatus:
		s.conn.Reply(msg, fullStatus{
			OutputState: s.mgr.Status(),
			Drivers:     s.mgr.DriverStatus(),
		}, false)

	case consts.CtrlOptions:
		s.conn.Reply(msg, s.mgr.GetOptions(), false)

	case consts.CtrlPortConfig:
		var req types.PortRequest
		if err := util.DecodeJSON(msg.Payload, &req); err != nil {
			s.replyErr(msg, errcode.InvalidPayload)
			return
		}
		raw, err := s.mgr.GetPortConfig(req.Port)
		if err != nil {
			s.replyErr(msg, errcode.Of(err))
			return
		}
		s.conn.Reply(msg, raw, false)

	case consts.CtrlPause:
		s.mgr.Pause(true)
		s.replyOK(msg)
		s.publishStatus()

	case consts.CtrlResume:
		s.mgr.Pause(false)
		s.replyOK(msg)
		s.publishStatus()

	case consts.CtrlSave:
		s.mgr.SaveNow()
		s.replyOK(msg)

	default:
		s.replyErr(msg, errcode.Unsupported)
	}
}

// handleFrame copies channel data into the shared buffer. Frames longer
// than the partitioned span are truncated; shorter ones leave the tail
// untouched.
func (s *Service) handleFrame(msg *bus.Message) {
	data, ok := util.AsBytes(msg.Payload)
	if !ok {
		return
	}
	n := len(data)
	if used := s.mgr.Used(); n > used {
		n = used
	}
	copy(s.mgr.Buffer()[:n], data[:n])
}

type fullStatus struct {
	types.OutputState
	Drivers []any `json:"drivers"`
}

// ---- helpers ----

func (s *Service) publishState(level, status string) {
	s.conn.Publish(s.conn.NewMessage(topicState,
		types.ServiceState{Level: level, Status: status, TS: time.Now().UnixMilli()}, true))
}

func (s *Service) publishStatus() {
	s.conn.Publish(s.conn.NewMessage(topicStatus, s.mgr.Status(), true))
}

func (s *Service) replyOK(req *bus.Message) {
	if len(req.ReplyTo) == 0 {
		return
	}
	s.conn.Reply(req, types.OKReply{OK: true}, false)
}

func (s *Service) replyErr(req *bus.Message, code errcode.Code) {
	if len(req.ReplyTo) == 0 {
		return
	}
	s.conn.Reply(req, types.ErrorReply{OK: false, Error: string(code)}, false)
}
