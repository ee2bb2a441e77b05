// services/output/internal/manager/config.go
package manager

import (
	"encoding/json"

	"lightcode-go/errcode"
	"lightcode-go/services/output/internal/codec"
	"lightcode-go/services/output/internal/core"
	"lightcode-go/types"
	"lightcode-go/x/logx"
)

// applyDocument is the decode walk: every port in the canonical range gets
// visited whether or not the document mentions it. Per-port problems degrade
// that port to disabled and the walk continues. Reports whether at least one
// channel's settings record was accepted.
func (m *Manager) applyDocument() bool {
	validated := false
	for port := 0; port < m.table.Len(); port++ {
		ch, ok := m.doc.Channel(port)
		if !ok {
			m.ensure(port, core.TypeDisabled)
			logx.Warn("no channel config, port disabled", "port", port)
			continue
		}
		if ch.Type < 0 || ch.Type >= core.TypeCount {
			m.ensure(port, core.TypeDisabled)
			logx.Warn("channel type out of range, port disabled",
				"port", port, "type", ch.Type)
			continue
		}
		requested := core.OutputType(ch.Type)
		resolved := m.effectiveType(port, requested)
		rec, ok := ch.Record(resolved)
		if !ok {
			m.ensure(port, core.TypeDisabled)
			logx.Warn("no settings for selected type, port disabled",
				"port", port, "type", resolved.String())
			continue
		}
		m.ensure(port, requested)
		drv := m.table.CurrentDriver(port)
		if drv.ApplySettings(rec) {
			validated = true
		} else {
			logx.Warn("settings rejected, driver keeps defaults",
				"port", port, "type", drv.Type().String())
		}
	}
	m.warnUnknownPorts()
	m.repartition()
	return validated
}

func (m *Manager) warnUnknownPorts() {
	for _, p := range m.doc.Ports() {
		if !m.table.InRange(p) {
			logx.Warn("config names unknown port, ignored", "port", p)
		}
	}
}

// encodeSlot merges the port's live state into the document: selected type
// plus the active type's record. Records remembered for other types stay.
func (m *Manager) encodeSlot(port int) {
	drv := m.table.CurrentDriver(port)
	if drv == nil {
		return
	}
	ch := m.doc.EnsureChannel(port)
	ch.Type = int(drv.Type())
	ch.PutRecord(drv.Type(), drv.EmitSettings())
}

func (m *Manager) refreshAll() {
	for port := 0; port < m.table.Len(); port++ {
		m.encodeSlot(port)
	}
}

// SetConfig replaces the in-memory document with the incoming one, applies
// it, folds the drivers' normalized settings back in, and schedules a save.
// A document where nothing validates falls back to regenerated defaults.
func (m *Manager) SetConfig(raw []byte) bool {
	doc, err := codec.Parse(raw)
	if err != nil {
		logx.Warn("output config rejected", "err", err)
		return false
	}
	m.doc = doc
	if !m.applyDocument() {
		logx.Warn("no output channel validated, regenerating defaults")
		m.regenerateDefaults()
		return false
	}
	m.refreshAll()
	m.dirty = true
	return true
}

// GetConfig serializes the current document.
func (m *Manager) GetConfig() []byte {
	raw, err := m.doc.Marshal()
	if err != nil {
		logx.Error("output config encode failed", "err", err)
		return nil
	}
	return raw
}

// regenerateDefaults synthesizes the full-matrix baseline: every port cycled
// through every type so each type's defaults land in the document, then all
// ports back to disabled and an immediate save.
func (m *Manager) regenerateDefaults() {
	m.doc = codec.New()
	for t := 0; t < core.TypeCount; t++ {
		for port := 0; port < m.table.Len(); port++ {
			m.ensure(port, core.OutputType(t))
			m.encodeSlot(port)
		}
	}
	for port := 0; port < m.table.Len(); port++ {
		m.ensure(port, core.TypeDisabled)
		m.encodeSlot(port)
	}
	m.repartition()
	m.dirty = false
	m.save()
}

// GetPortConfig returns one port's channel object: selected type plus the
// full type history.
func (m *Manager) GetPortConfig(port int) (json.RawMessage, error) {
	if !m.table.InRange(port) {
		return nil, errcode.UnknownPort
	}
	ch, ok := m.doc.Channel(port)
	if !ok {
		return json.RawMessage(`{}`), nil
	}
	raw, err := json.Marshal(ch)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// GetOptions lists, per port, the types its descriptor can actually carry.
// Infeasible types are not offered.
func (m *Manager) GetOptions() types.OutputOptions {
	out := types.OutputOptions{Ports: make([]types.PortOptions, m.table.Len())}
	for port := 0; port < m.table.Len(); port++ {
		desc := m.table.CapabilityOf(port)
		po := types.PortOptions{
			ID:       port,
			Selected: int(m.table.CurrentDriver(port).Type()),
		}
		for t := 0; t < core.TypeCount; t++ {
			ot := core.OutputType(t)
			if !core.HasBuilder(ot) || core.Resolve(ot, desc) != ot {
				continue
			}
			po.List = append(po.List, types.TypeOption{ID: t, Name: ot.String()})
		}
		out.Ports[port] = po
	}
	return out
}

// Status is the retained state payload.
func (m *Manager) Status() types.OutputState {
	st := types.OutputState{
		Running:  m.running,
		Paused:   m.paused,
		Used:     m.used,
		Capacity: len(m.buf),
		Frames:   m.frames,
		Ports:    make([]types.PortState, m.table.Len()),
	}
	for port := 0; port < m.table.Len(); port++ {
		drv := m.table.CurrentDriver(port)
		var w core.Window
		if port < len(m.wins) {
			w = m.wins[port]
		}
		st.Ports[port] = types.PortState{
			ID:     port,
			Type:   int(drv.Type()),
			Name:   drv.Name(),
			Offset: w.Off,
			Size:   w.Len,
		}
	}
	return st
}

// DriverStatus collects each driver's own runtime snapshot.
func (m *Manager) DriverStatus() []any {
	out := make([]any, m.table.Len())
	for port := 0; port < m.table.Len(); port++ {
		out[port] = m.table.CurrentDriver(port).Status()
	}
	return out
}
