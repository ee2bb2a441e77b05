// services/output/internal/codec/document.go
package codec

import (
	"encoding/json"
	"errors"

	"lightcode-go/services/output/internal/core"
	"lightcode-go/x/strconvx"
)

// ErrNoOutputConfig rejects documents missing the top-level section.
var ErrNoOutputConfig = errors.New("document has no output_config section")

// Document is the parsed configuration document:
//
//	{"output_config": {"channels": {"<port>": {"type": N, "<typeID>": {...}}}}}
//
// Channel records are a superset across type history: writing the active
// type's record never disturbs records remembered for other types.
type Document struct {
	Channels map[string]*Channel
}

// Channel is one port's entry: the numeric selected type plus per-type
// settings records keyed by decimal type id.
type Channel struct {
	Type    int
	Records map[string]json.RawMessage
}

func New() *Document {
	return &Document{Channels: map[string]*Channel{}}
}

// ---- wire mapping ----

type docWire struct {
	OutputConfig channelsWire `json:"output_config"`
}

type channelsWire struct {
	Channels map[string]*Channel `json:"channels"`
}

// Parse decodes raw bytes, requiring the output_config section.
func Parse(raw []byte) (*Document, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	if _, ok := probe["output_config"]; !ok {
		return nil, ErrNoOutputConfig
	}
	var w docWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, err
	}
	d := &Document{Channels: w.OutputConfig.Channels}
	if d.Channels == nil {
		d.Channels = map[string]*Channel{}
	}
	return d, nil
}

func (d *Document) Marshal() ([]byte, error) {
	w := docWire{OutputConfig: channelsWire{Channels: d.Channels}}
	return json.Marshal(w)
}

// ---- channel access ----

func portKey(port int) string { return strconvx.Itoa(port) }

func (d *Document) Channel(port int) (*Channel, bool) {
	c, ok := d.Channels[portKey(port)]
	if !ok || c == nil {
		return nil, false
	}
	return c, true
}

func (d *Document) EnsureChannel(port int) *Channel {
	key := portKey(port)
	c, ok := d.Channels[key]
	if !ok || c == nil {
		c = &Channel{Type: int(core.TypeDisabled), Records: map[string]json.RawMessage{}}
		d.Channels[key] = c
	}
	return c
}

// Ports lists the document's channel keys that parse as port numbers, for
// out-of-range diagnostics. Non-numeric keys are reported as -1.
func (d *Document) Ports() []int {
	out := make([]int, 0, len(d.Channels))
	for k := range d.Channels {
		n, err := strconvx.Atoi(k)
		if err != nil {
			n = -1
		}
		out = append(out, n)
	}
	return out
}

// ---- channel records ----

func typeKey(t core.OutputType) string { return strconvx.Itoa(int(t)) }

func (c *Channel) Record(t core.OutputType) (json.RawMessage, bool) {
	r, ok := c.Records[typeKey(t)]
	return r, ok
}

// PutRecord overwrites exactly one type's record. This is the merge-on-write
// half of the codec contract: sibling records survive.
func (c *Channel) PutRecord(t core.OutputType, raw json.RawMessage) {
	if c.Records == nil {
		c.Records = map[string]json.RawMessage{}
	}
	c.Records[typeKey(t)] = raw
}

// ---- custom JSON: "type" plus dynamic decimal keys ----

func (c *Channel) UnmarshalJSON(b []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	c.Type = -1
	c.Records = map[string]json.RawMessage{}
	for k, v := range m {
		if k == "type" {
			var t int
			if err := json.Unmarshal(v, &t); err == nil {
				c.Type = t
			}
			continue
		}
		c.Records[k] = v
	}
	return nil
}

func (c *Channel) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(c.Records)+1)
	m["type"] = c.Type
	for k, v := range c.Records {
		m[k] = v
	}
	return json.Marshal(m)
}
