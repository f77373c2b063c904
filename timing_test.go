package resgroup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gburgyan/go-timing"
	"github.com/stretchr/testify/assert"
)

func withTiming(t *testing.T, mode TimingMode) {
	previous := EnableTiming
	EnableTiming = mode
	t.Cleanup(func() {
		EnableTiming = previous
	})
}

func TestTiming_ReleaseRecorded(t *testing.T) {
	withTiming(t, TimingRelease)
	timingCtx := timing.Root(context.Background())

	closer := &TestCloser{}
	err := Scope(timingCtx, func(ctx context.Context, g *Group) error {
		Register(g, closer)
		return nil
	}, WithName("orders"))

	assert.NoError(t, err)
	assert.True(t, closer.IsClosed())
	assert.Contains(t, timingCtx.String(), "resgroup:orders")
}

func TestTiming_EntriesRecorded(t *testing.T) {
	withTiming(t, TimingEntries)
	timingCtx := timing.Root(context.Background())

	var order []string
	err := Scope(timingCtx, func(ctx context.Context, g *Group) error {
		RegisterFunc(g, &testProducer{}, func(p *testProducer) error {
			order = append(order, "producer")
			time.Sleep(10 * time.Millisecond)
			return errors.New("slow and failing")
		})
		RegisterCleanup(g, &testConsumer{}, func(c *testConsumer) {
			order = append(order, "consumer")
		})
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, []string{"consumer", "producer"}, order)
	report := timingCtx.String()
	assert.Contains(t, report, "resgroup")
	assert.Contains(t, report, "*resgroup.testProducer")
	assert.Contains(t, report, "*resgroup.testConsumer")
}

func TestTiming_DisabledLeavesContextAlone(t *testing.T) {
	withTiming(t, TimingDisable)
	timingCtx := timing.Root(context.Background())

	g := New(WithName("quiet"))
	Register(g, &TestCloser{})
	g.ReleaseAllContext(timingCtx)

	assert.True(t, g.Drained())
	assert.NotContains(t, timingCtx.String(), "resgroup")
}

func TestTiming_ReleaseAllContextOnDrainedGroup(t *testing.T) {
	withTiming(t, TimingEntries)
	timingCtx := timing.Root(context.Background())

	g := New(WithName("done"))
	g.ReleaseAll()
	g.ReleaseAllContext(timingCtx)

	assert.NotContains(t, timingCtx.String(), "resgroup:done")
}

func TestReleaseAllContext_IgnoresCancellation(t *testing.T) {
	withTiming(t, TimingRelease)
	ctx, cancel := context.WithCancel(timing.Root(context.Background()))
	cancel()

	first := &TestCloser{}
	second := &TestCloser{}
	g := New()
	Register(g, first)
	Register(g, second)

	g.ReleaseAllContext(ctx)

	assert.True(t, first.IsClosed())
	assert.True(t, second.IsClosed())
}
