// services/output/internal/manager/manager.go

// Package manager owns the port table: it binds drivers to ports, partitions
// the shared channel buffer, applies and emits the configuration document,
// and runs the render tick. Everything here executes on the output service
// goroutine; there is no locking.
package manager

import (
	"lightcode-go/services/output/internal/codec"
	"lightcode-go/services/output/internal/core"
	"lightcode-go/services/output/internal/store"
	"lightcode-go/x/logx"

	// The disabled driver is the factory floor; link it unconditionally.
	_ "lightcode-go/services/output/internal/drivers/disabled"
)

const (
	// DocName is the persisted document's name.
	DocName = "output_config"

	// DocSizeLimit caps what Load will accept.
	DocSizeLimit = 32 * 1024

	// DefaultCapacity is the shared buffer size when the config names none.
	DefaultCapacity = 8192
)

type Options struct {
	Descs    []core.Descriptor
	Engines  *core.EngineRegistry
	Capacity int
	Store    store.Store

	// Sink is told the buffer base and used size after every repartition,
	// so the upstream frame producer can size its writes.
	Sink func(buf []byte, used int)
}

type Manager struct {
	table   *core.Table
	engines *core.EngineRegistry
	st      store.Store
	sink    func([]byte, int)

	buf      []byte
	wins     []core.Window
	used     int
	overflow bool

	doc    *codec.Document
	dirty  bool
	paused bool

	running bool
	frames  uint32
}

func New(opts Options) *Manager {
	cap := opts.Capacity
	if cap <= 0 {
		cap = DefaultCapacity
	}
	return &Manager{
		table:   core.NewTable(opts.Descs),
		engines: opts.Engines,
		st:      opts.Store,
		sink:    opts.Sink,
		buf:     make([]byte, cap),
		doc:     codec.New(),
	}
}

// Begin installs the disabled driver on every port, then loads and applies
// the stored document. It never fails: an absent or corrupt document means
// a regenerated default one.
func (m *Manager) Begin() {
	for port := 0; port < m.table.Len(); port++ {
		m.ensure(port, core.TypeDisabled)
	}
	m.repartition()
	m.load()
	m.running = true
}

func (m *Manager) load() {
	raw, err := m.st.Load(DocName, DocSizeLimit)
	if err != nil {
		logx.Warn("output config load failed, regenerating defaults", "err", err)
		m.regenerateDefaults()
		return
	}
	doc, err := codec.Parse(raw)
	if err != nil {
		logx.Warn("output config unreadable, regenerating defaults", "err", err)
		m.regenerateDefaults()
		return
	}
	m.doc = doc
	if !m.applyDocument() {
		logx.Warn("no output channel validated, regenerating defaults")
		m.regenerateDefaults()
		return
	}
	m.refreshAll()
}

// effectiveType maps a request onto what the port can actually carry: the
// feasibility rules first, then whether the driver is linked into this
// image. Disabled is the floor.
func (m *Manager) effectiveType(port int, requested core.OutputType) core.OutputType {
	if !requested.Valid() {
		return core.TypeDisabled
	}
	t := core.Resolve(requested, m.table.CapabilityOf(port))
	if !core.HasBuilder(t) {
		return core.TypeDisabled
	}
	return t
}

// ensure is the channel factory. Requests resolving to the type already
// installed are no-ops; otherwise the old driver is closed before the new
// one is constructed, so engine claims are free for reuse.
func (m *Manager) ensure(port int, requested core.OutputType) {
	effective := m.effectiveType(port, requested)
	cur := m.table.CurrentDriver(port)
	if cur != nil && cur.Type() == effective {
		return
	}
	if cur != nil {
		cur.Close()
		m.table.SetDriver(port, nil)
	}
	b, ok := core.LookupBuilder(effective)
	if !ok {
		panic("disabled output driver not linked")
	}
	nd := b(core.BuildInput{
		Port:    port,
		Desc:    m.table.CapabilityOf(port),
		Engines: m.engines,
		Type:    effective,
	})
	m.table.SetDriver(port, nd)
	nd.Begin()
	if effective != requested {
		logx.Warn("output type not feasible, port disabled",
			"port", port, "requested", requested.String())
	}
}

func (m *Manager) repartition() {
	m.wins, m.used, m.overflow = core.Partition(m.table, m.buf)
	if m.overflow {
		logx.Warn("output buffer exhausted, trailing ports truncated",
			"capacity", len(m.buf))
	}
	if m.sink != nil {
		m.sink(m.buf, m.used)
	}
}

// Render is the periodic tick: consume a pending save first, then push one
// frame unless paused.
func (m *Manager) Render() {
	if m.dirty {
		m.dirty = false
		m.save()
	}
	if m.paused {
		return
	}
	for port := 0; port < m.table.Len(); port++ {
		m.table.CurrentDriver(port).Render()
	}
	m.frames++
}

func (m *Manager) save() {
	raw, err := m.doc.Marshal()
	if err != nil {
		logx.Error("output config encode failed", "err", err)
		return
	}
	if err := m.st.Save(DocName, raw); err != nil {
		logx.Error("output config save failed", "err", err)
	}
}

// SaveNow writes the document immediately and clears any deferred save.
func (m *Manager) SaveNow() {
	m.dirty = false
	m.save()
}

func (m *Manager) Dirty() bool { return m.dirty }

// Pause stops rendering without touching drivers or partition state.
func (m *Manager) Pause(p bool) { m.paused = p }
func (m *Manager) Paused() bool { return m.paused }

// Buffer is the shared channel buffer; the frame producer writes into
// [0, Used).
func (m *Manager) Buffer() []byte { return m.buf }
func (m *Manager) Used() int      { return m.used }
func (m *Manager) Ports() int     { return m.table.Len() }
