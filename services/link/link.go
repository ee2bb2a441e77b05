// services/link/link.go
package link

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"lightcode-go/bus"
	"lightcode-go/errcode"
	"lightcode-go/types"
)

// -----------------------------------------------------------------------------
// Public entry point
// -----------------------------------------------------------------------------

// Start runs the link service. It blocks until ctx is cancelled.
// It listens for JSON config on topic {"config","link"} and (re)dials the
// control link, relaying exported topics out and remote publishes in.
func Start(ctx context.Context, conn *bus.Connection) {
	s := &Service{
		conn:       conn,
		stateTopic: bus.Topic{"link", "state"},
	}
	s.run(ctx)
}

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

// Config is the JSON-encoded configuration expected on "config/link".
type Config struct {
	Transport TransportConfig `json:"transport"`

	// Export lists local topics relayed to the remote end. Empty means the
	// default set (output state and status plus the uptime report).
	Export [][]string `json:"export,omitempty"`
}

type TransportConfig struct {
	// "tcp", "serial", or a name registered via RegisterTransport.
	Type   string        `json:"type"`
	TCP    *TCPConfig    `json:"tcp,omitempty"`
	Serial *SerialConfig `json:"serial,omitempty"`
}

type TCPConfig struct {
	Addr string `json:"addr"` // host:port of the remote front-end
}

// SerialConfig carries enough for an injected dialler to open the port.
// Device is a host path; the pin numbers route the MCU UART.
type SerialConfig struct {
	Device string `json:"device,omitempty"`
	Baud   int    `json:"baud"`
	RxPin  int    `json:"rx_pin,omitempty"`
	TxPin  int    `json:"tx_pin,omitempty"`
}

func defaultExport() []bus.Topic {
	return []bus.Topic{
		{"output", "state"},
		{"output", "status"},
		{"status", "uptime"},
	}
}

// -----------------------------------------------------------------------------
// Service
// -----------------------------------------------------------------------------

type Service struct {
	conn       *bus.Connection
	stateTopic bus.Topic

	mu     sync.Mutex
	curRun context.CancelFunc
}

// run waits for config and supervises a single link instance.
func (s *Service) run(ctx context.Context) {
	cfgSub := s.conn.Subscribe(bus.Topic{"config", "link"})
	defer s.conn.Unsubscribe(cfgSub)

	s.publishState("idle", "awaiting_config", nil)

	for {
		select {
		case <-ctx.Done():
			s.stopCurrent()
			return
		case msg, ok := <-cfgSub.Channel():
			if !ok {
				s.publishState("error", "config_subscription_closed", nil)
				return
			}
			cfg, err := decodeConfig(msg.Payload)
			if err != nil {
				s.publishState("error", "config_decode_failed", err)
				continue
			}
			s.reconfigure(ctx, cfg)
		}
	}
}

func (s *Service) stopCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.curRun != nil {
		s.curRun()
		s.curRun = nil
	}
}

func (s *Service) reconfigure(parent context.Context, cfg Config) {
	s.mu.Lock()
	if s.curRun != nil {
		s.curRun()
		s.curRun = nil
	}
	ctx, cancel := context.WithCancel(parent)
	s.curRun = cancel
	s.mu.Unlock()

	go s.runLink(ctx, cfg)
}

// -----------------------------------------------------------------------------
// Link supervision and I/O
// -----------------------------------------------------------------------------

func (s *Service) runLink(ctx context.Context, cfg Config) {
	tr, err := newTransport(cfg.Transport)
	if err != nil {
		s.publishState("error", "transport_init_failed", err)
		return
	}

	backoff := backoffSeq(250*time.Millisecond, 5*time.Second)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		rwc, err := tr.Open(ctx)
		if err != nil {
			delay := backoff()
			s.publishState("degraded", "dial_failed_retrying", fmt.Errorf("%v (retry in %s)", err, delay))
			if !sleep(ctx, delay) {
				return
			}
			continue
		}

		s.publishState("up", "link_established", nil)
		if err := s.handleLink(ctx, rwc, cfg); err != nil {
			_ = rwc.Close()
			delay := backoff()
			s.publishState("degraded", "link_lost_retrying", fmt.Errorf("%v (retry in %s)", err, delay))
			if !sleep(ctx, delay) {
				return
			}
			continue
		}
		_ = rwc.Close()
		// Clean close: restart only on new config.
		s.publishState("idle", "link_closed", nil)
		return
	}
}

// requestTimeout bounds remote request fan-out into the local bus.
const requestTimeout = 2 * time.Second

// handleLink owns the active link lifetime: exported topics flow out as PUB
// frames, remote PUBs land on the local bus, and remote REQs are answered
// through local request-reply.
func (s *Service) handleLink(ctx context.Context, rwc io.ReadWriteCloser, cfg Config) error {
	rd := newFramedReader(rwc)
	wr := newFramedWriter(rwc)

	export := defaultExport()
	if len(cfg.Export) > 0 {
		export = export[:0]
		for _, toks := range cfg.Export {
			t := make(bus.Topic, len(toks))
			for i, tok := range toks {
				t[i] = tok
			}
			export = append(export, t)
		}
	}

	// Fan local subscriptions into one channel; Unsubscribe below closes
	// each sub channel and ends its forwarder.
	agg := make(chan *bus.Message, 16)
	done := make(chan struct{})
	var fwd sync.WaitGroup
	for _, t := range export {
		sub := s.conn.Subscribe(t)
		defer s.conn.Unsubscribe(sub)
		fwd.Add(1)
		go func(sub *bus.Subscription) {
			defer fwd.Done()
			for msg := range sub.Channel() {
				select {
				case agg <- msg:
				case <-done:
					return
				}
			}
		}(sub)
	}
	defer fwd.Wait()
	defer close(done)

	// Reader
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		for {
			f, err := rd.ReadFrame()
			if err != nil {
				errCh <- err
				return
			}
			switch f.Type {
			case framePing:
				_ = wr.WriteFrame(Frame{Type: framePong})
			case framePong:
				// Keepalive answered; nothing to do.
			case framePub:
				var wm wireMsg
				if json.Unmarshal(f.Payload, &wm) != nil || len(wm.Topic) == 0 {
					continue
				}
				s.conn.Publish(s.conn.NewMessage(normTopic(wm.Topic), []byte(wm.Payload), wm.Retained))
			case frameReq:
				var wm wireMsg
				if json.Unmarshal(f.Payload, &wm) != nil || len(wm.Topic) == 0 {
					continue
				}
				go s.serveRequest(ctx, wr, wm)
			case frameClose:
				return
			default:
				// Unknown frame type; skip.
			}
		}
	}()

	tick := time.NewTicker(5 * time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = wr.WriteFrame(Frame{Type: frameClose})
			return nil
		case err, ok := <-errCh:
			if ok && err != nil {
				return err
			}
			return nil
		case msg := <-agg:
			b, err := encodeWire(msg)
			if err != nil {
				continue
			}
			if err := wr.WriteFrame(Frame{Type: framePub, Payload: b}); err != nil {
				return err
			}
		case <-tick.C:
			if err := wr.WriteFrame(Frame{Type: framePing}); err != nil {
				return err
			}
		}
	}
}

// serveRequest routes one remote request through the local bus and writes
// the correlated response frame.
func (s *Service) serveRequest(ctx context.Context, wr *framedWriter, req wireMsg) {
	rctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res := wireMsg{ID: req.ID}
	reply, err := s.conn.RequestWait(rctx, s.conn.NewMessage(normTopic(req.Topic), []byte(req.Payload), false))
	if err != nil {
		res.Payload, _ = json.Marshal(types.ErrorReply{OK: false, Error: string(errcode.Timeout)})
	} else if res.Payload, err = json.Marshal(reply.Payload); err != nil {
		res.Payload, _ = json.Marshal(types.ErrorReply{OK: false, Error: string(errcode.InvalidPayload)})
	}

	b, err := json.Marshal(res)
	if err != nil {
		return
	}
	_ = wr.WriteFrame(Frame{Type: frameRes, Payload: b})
}

// -----------------------------------------------------------------------------
// Wire message
// -----------------------------------------------------------------------------

// wireMsg is the JSON body of PUB, REQ, and RES frames. Payload stays raw
// so documents cross the link byte-exact.
type wireMsg struct {
	ID       uint32          `json:"id,omitempty"`
	Topic    []any           `json:"topic,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Retained bool            `json:"retained,omitempty"`
}

func encodeWire(m *bus.Message) ([]byte, error) {
	p, err := json.Marshal(m.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireMsg{Topic: []any(m.Topic), Payload: p, Retained: m.Retained})
}

// normTopic rebuilds a bus topic from decoded JSON: integral numbers become
// int tokens so they match locally published topics.
func normTopic(raw []any) bus.Topic {
	t := make(bus.Topic, 0, len(raw))
	for _, tok := range raw {
		if f, ok := tok.(float64); ok && f == float64(int(f)) {
			t = append(t, int(f))
			continue
		}
		t = append(t, tok)
	}
	return t
}

// -----------------------------------------------------------------------------
// Transport registry
// -----------------------------------------------------------------------------

// Transport is a pluggable link dialler/owner.
type Transport interface {
	Open(ctx context.Context) (io.ReadWriteCloser, error)
	String() string
}

type transportFactory func(TransportConfig) (Transport, error)

var (
	regMu     sync.RWMutex
	registry  = map[string]transportFactory{}
	errNoDial = errors.New("SerialDial not set")
)

// RegisterTransport allows external packages to add transports (eg. "ws").
func RegisterTransport(name string, f transportFactory) {
	regMu.Lock()
	defer regMu.Unlock()
	registry[name] = f
}

func newTransport(cfg TransportConfig) (Transport, error) {
	regMu.RLock()
	f, ok := registry[cfg.Type]
	regMu.RUnlock()
	if ok {
		return f(cfg)
	}
	switch cfg.Type {
	case "tcp":
		return newTCPTransport(cfg)
	case "serial":
		return newSerialTransport(cfg)
	default:
		return nil, fmt.Errorf("unknown transport type: %q", cfg.Type)
	}
}

// tcpTransport dials the remote front-end.
type tcpTransport struct {
	addr string
}

func newTCPTransport(cfg TransportConfig) (Transport, error) {
	if cfg.TCP == nil || cfg.TCP.Addr == "" {
		return nil, errors.New("tcp transport requires an address")
	}
	return &tcpTransport{addr: cfg.TCP.Addr}, nil
}

func (t *tcpTransport) Open(ctx context.Context) (io.ReadWriteCloser, error) {
	var d net.Dialer
	return d.DialContext(ctx, "tcp", t.addr)
}

func (t *tcpTransport) String() string { return "tcp" }

// SerialDial is injected by platform code (the host daemon opens a tty, the
// MCU entry routes a UART). It must return an open io.ReadWriteCloser.
var SerialDial func(ctx context.Context, c SerialConfig) (io.ReadWriteCloser, error)

// serialTransport implements Transport via the injected dial function.
type serialTransport struct {
	cfg TransportConfig
}

func newSerialTransport(cfg TransportConfig) (Transport, error) {
	if cfg.Serial == nil {
		return nil, errors.New("serial transport requires serial config")
	}
	return &serialTransport{cfg: cfg}, nil
}

func (t *serialTransport) Open(ctx context.Context) (io.ReadWriteCloser, error) {
	if SerialDial == nil {
		return nil, errNoDial
	}
	return SerialDial(ctx, *t.cfg.Serial)
}

func (t *serialTransport) String() string { return "serial" }

// -----------------------------------------------------------------------------
// Framing
// -----------------------------------------------------------------------------

const (
	framePing  byte = 0x01
	framePong  byte = 0x02
	framePub   byte = 0x10
	frameReq   byte = 0x14
	frameRes   byte = 0x15
	frameClose byte = 0x7f
)

// Frame is a length-prefixed frame: type byte, 16-bit big-endian length,
// payload.
type Frame struct {
	Type    byte
	Payload []byte
}

type framedReader struct{ r io.Reader }

type framedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func newFramedReader(r io.Reader) *framedReader { return &framedReader{r: r} }
func newFramedWriter(w io.Writer) *framedWriter { return &framedWriter{w: w} }

func (fr *framedReader) ReadFrame() (Frame, error) {
	var hdr [3]byte
	if _, err := io.ReadFull(fr.r, hdr[:]); err != nil {
		return Frame{}, err
	}
	typ := hdr[0]
	n := int(hdr[1])<<8 | int(hdr[2])
	var buf []byte
	if n > 0 {
		buf = make([]byte, n)
		if _, err := io.ReadFull(fr.r, buf); err != nil {
			return Frame{}, err
		}
	}
	return Frame{Type: typ, Payload: buf}, nil
}

func (fw *framedWriter) WriteFrame(f Frame) error {
	if len(f.Payload) > 0xFFFF {
		return fmt.Errorf("frame too large: %d", len(f.Payload))
	}
	fw.mu.Lock()
	defer fw.mu.Unlock()
	hdr := []byte{f.Type, byte(len(f.Payload) >> 8), byte(len(f.Payload) & 0xFF)}
	if _, err := fw.w.Write(hdr); err != nil {
		return err
	}
	if len(f.Payload) > 0 {
		_, err := fw.w.Write(f.Payload)
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------
// Utilities
// -----------------------------------------------------------------------------

func decodeConfig(p any) (Config, error) {
	var cfg Config
	switch v := p.(type) {
	case []byte:
		if err := json.Unmarshal(v, &cfg); err != nil {
			return cfg, err
		}
	case string:
		if err := json.Unmarshal([]byte(v), &cfg); err != nil {
			return cfg, err
		}
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return cfg, err
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config payload type: %T", p)
	}
	return cfg, nil
}

func (s *Service) publishState(level, status string, err error) {
	st := types.ServiceState{
		Level:  level,
		Status: status,
		TS:     time.Now().UnixMilli(),
	}
	if err != nil {
		st.Error = err.Error()
	}
	s.conn.Publish(s.conn.NewMessage(s.stateTopic, st, true))
}

func backoffSeq(min, max time.Duration) func() time.Duration {
	if min <= 0 {
		min = 100 * time.Millisecond
	}
	if max < min {
		max = min
	}
	var cur = min
	return func() time.Duration {
		d := cur
		cur *= 2
		if cur > max {
			cur = max
		}
		return d
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
