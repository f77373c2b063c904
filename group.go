package resgroup

import (
	"context"
	"fmt"

	"github.com/gburgyan/go-timing"
)

// entry is a single pending release. The resource is kept only so that
// diagnostics can describe what is waiting to be released.
type entry struct {
	resource any
	release  func() error
}

// Group collects the release operations of resources acquired during a unit of
// work and runs all of them, most recent first, when the unit of work ends.
//
// A Group never creates resources. It only holds the obligation to release
// them. Every failure raised by a release, whether returned as an error or
// raised as a panic, is discarded so that cleanup never changes the outcome of
// the work that preceded it.
//
// Release order is the reverse of registration order. The group does not check
// that this matches the dependencies between resources: callers register each
// resource right after acquiring it, dependents after the resource they were
// created from, so that the reverse order tears down dependents first.
//
// The zero value is an open, empty group. A Group is not safe for concurrent
// use; it belongs to the single goroutine running the unit of work.
type Group struct {
	name    string
	entries []entry
	drained bool
}

// New creates an open, empty group.
func New(opts ...Option) *Group {
	g := &Group{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Add registers a bare release thunk. A nil thunk still occupies an entry but
// does nothing when released.
//
// If the group has already been drained the thunk is invoked immediately,
// with its failure suppressed, so that nothing handed to a finished group is
// leaked.
func (g *Group) Add(release func() error) {
	g.push(nil, release)
}

func (g *Group) push(resource any, release func() error) {
	if g.drained {
		runSuppressed(release)
		return
	}
	g.entries = append(g.entries, entry{resource: resource, release: release})
}

// ReleaseAll invokes every pending release exactly once, last registered
// first. Failures are discarded and never stop the remaining releases. After
// it returns the group is drained and further calls do nothing.
func (g *Group) ReleaseAll() {
	g.drain(nil)
}

// ReleaseAllContext behaves like ReleaseAll. When timing is enabled with
// EnableTiming the drain is recorded in the timing context carried by ctx.
// The context is not used for cancellation: once started, every entry is
// attempted.
func (g *Group) ReleaseAllContext(ctx context.Context) {
	if EnableTiming == TimingDisable || ctx == nil || g.drained {
		g.drain(nil)
		return
	}
	tCtx, complete := timing.Start(ctx, g.timingName())
	defer complete()
	if EnableTiming == TimingEntries {
		g.drain(tCtx)
		return
	}
	g.drain(nil)
}

// Close releases the group like ReleaseAll and always returns nil. It lets a
// Group be registered into an outer Group as an io.Closer.
func (g *Group) Close() error {
	g.ReleaseAll()
	return nil
}

// Len returns the number of releases still pending.
func (g *Group) Len() int {
	return len(g.entries)
}

// Drained reports whether ReleaseAll (or Move) has already run.
func (g *Group) Drained() bool {
	return g.drained
}

// Move transfers every pending entry, in order, to a new open group and
// drains the receiver without releasing anything. The usual pattern is a
// constructor that defers ReleaseAll to clean up after a failed acquisition,
// and on success keeps the resources by moving them into the value it
// returns:
//
//	g := resgroup.New()
//	defer g.ReleaseAll()
//	conn := resgroup.Register(g, mustDial())
//	...
//	return &Client{conn: conn, closer: g.Move()}, nil
func (g *Group) Move() *Group {
	moved := &Group{name: g.name, entries: g.entries}
	g.entries = nil
	g.drained = true
	return moved
}

// drain runs the entries from the back of the slice to the front. Each entry
// is cleared before it runs so that an entry can never fire twice, even if a
// release re-enters the group.
func (g *Group) drain(tCtx context.Context) {
	if g.drained {
		return
	}
	g.drained = true
	entries := g.entries
	g.entries = nil
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		entries[i] = entry{}
		if tCtx != nil {
			_, complete := timing.Start(tCtx, describe(e.resource))
			runSuppressed(e.release)
			complete()
			continue
		}
		runSuppressed(e.release)
	}
}

// runSuppressed invokes release and discards anything it raises.
func runSuppressed(release func() error) {
	if release == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	_ = release()
}

func (g *Group) timingName() string {
	if g.name == "" {
		return "resgroup"
	}
	return "resgroup:" + g.name
}

func describe(resource any) string {
	if resource == nil {
		return "func"
	}
	return fmt.Sprintf("%T", resource)
}
