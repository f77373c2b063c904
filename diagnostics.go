package resgroup

import (
	"fmt"
	"strings"

	"github.com/tidwall/sjson"
)

// Status is a diagnostic tool that returns a string describing the state of the group. The first
// line names the group and its state, followed by one line per pending release in the order the
// releases will run.
//
// Resources registered with a bare Add are listed as "func".
func (g *Group) Status() string {
	result := strings.Builder{}
	result.WriteString(g.displayName())
	result.WriteString(" - ")
	result.WriteString(g.state())

	for i, e := range g.pending() {
		result.WriteString(fmt.Sprintf("\n%d: %s - pending", i+1, describe(e.resource)))
	}
	return result.String()
}

// StatusJSON returns the same information as Status as a JSON document:
//
//	{"name":"...","state":"open","pending":2,"entries":[{"order":1,"type":"*net.TCPConn"},...]}
func (g *Group) StatusJSON() string {
	out := `{}`
	out, _ = sjson.Set(out, "name", g.name)
	out, _ = sjson.Set(out, "state", g.state())
	out, _ = sjson.Set(out, "pending", len(g.entries))
	out, _ = sjson.SetRaw(out, "entries", "[]")
	for i, e := range g.pending() {
		item := `{}`
		item, _ = sjson.Set(item, "order", i+1)
		item, _ = sjson.Set(item, "type", describe(e.resource))
		out, _ = sjson.SetRaw(out, "entries.-1", item)
	}
	return out
}

// pending returns the entries in release order.
func (g *Group) pending() []entry {
	ordered := make([]entry, 0, len(g.entries))
	for i := len(g.entries) - 1; i >= 0; i-- {
		ordered = append(ordered, g.entries[i])
	}
	return ordered
}

func (g *Group) state() string {
	if g.drained {
		return "drained"
	}
	return "open"
}

func (g *Group) displayName() string {
	if g.name == "" {
		return "resource group"
	}
	return "resource group " + g.name
}
