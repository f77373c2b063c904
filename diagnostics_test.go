package resgroup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestGroup_Status(t *testing.T) {
	g := New(WithName("orders"))
	Register(g, &testConnection{})
	RegisterCleanup(g, &testConsumer{}, (*testConsumer).Stop)
	g.Add(func() error { return nil })

	expected := `resource group orders - open
1: func - pending
2: *resgroup.testConsumer - pending
3: *resgroup.testConnection - pending`
	assert.Equal(t, expected, g.Status())

	g.ReleaseAll()
	assert.Equal(t, "resource group orders - drained", g.Status())
}

func TestGroup_StatusUnnamed(t *testing.T) {
	var g Group
	assert.Equal(t, "resource group - open", g.Status())
}

func TestGroup_StatusJSON(t *testing.T) {
	g := New(WithName("orders"))
	Register(g, &testConnection{})
	Register(g, &testSession{})

	status := g.StatusJSON()

	assert.True(t, gjson.Valid(status))
	assert.Equal(t, "orders", gjson.Get(status, "name").String())
	assert.Equal(t, "open", gjson.Get(status, "state").String())
	assert.Equal(t, int64(2), gjson.Get(status, "pending").Int())
	assert.Equal(t, int64(2), gjson.Get(status, "entries.#").Int())
	assert.Equal(t, "*resgroup.testSession", gjson.Get(status, "entries.0.type").String())
	assert.Equal(t, int64(1), gjson.Get(status, "entries.0.order").Int())
	assert.Equal(t, "*resgroup.testConnection", gjson.Get(status, "entries.1.type").String())

	g.ReleaseAll()
	status = g.StatusJSON()
	assert.Equal(t, "drained", gjson.Get(status, "state").String())
	assert.Equal(t, int64(0), gjson.Get(status, "entries.#").Int())
	assert.True(t, gjson.Get(status, "entries").IsArray())
}
