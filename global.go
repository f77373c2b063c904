package resgroup

import (
	"context"
)

type TimingMode int

const (
	// TimingDisable will disable timing for all groups.
	TimingDisable TimingMode = iota

	// TimingRelease records a single timing entry for each drain that is started
	// with a context, either through ReleaseAllContext or Scope.
	TimingRelease

	// TimingEntries records the drain and, beneath it, one entry per released
	// resource. This is useful to find a resource whose teardown is slow.
	TimingEntries
)

var EnableTiming = TimingDisable

// Option is a functional option for configuring a Group.
type Option func(*Group)

// WithName labels the group. The name shows up in Status output and in timing
// entries.
func WithName(name string) Option {
	return func(g *Group) {
		g.name = name
	}
}

// WithCapacity pre-sizes the group for the expected number of registrations.
func WithCapacity(n int) Option {
	return func(g *Group) {
		if n > 0 {
			g.entries = make([]entry, 0, n)
		}
	}
}

type groupKeyType int

const groupContextKey groupKeyType = 0

// Scope runs fn with a new group and releases that group when fn finishes,
// however it finishes: a normal return, an early error return, or a panic. The
// panic continues to propagate after the release. The returned error is fn's
// error, untouched by anything that happened during the release.
//
// The group is also stored in the context handed to fn, so deeper code can
// reach it with FromContext.
func Scope(ctx context.Context, fn func(ctx context.Context, g *Group) error, opts ...Option) error {
	if ctx == nil {
		ctx = context.Background()
	}
	scopeCtx, g := WithGroup(ctx, opts...)
	defer g.ReleaseAllContext(scopeCtx)
	return fn(scopeCtx, g)
}

// WithGroup creates a new group and returns a context that carries it. The
// caller is responsible for releasing the group.
func WithGroup(ctx context.Context, opts ...Option) (context.Context, *Group) {
	g := New(opts...)
	return context.WithValue(ctx, groupContextKey, g), g
}

// FromContext finds the innermost Group in the context stack and returns it. If
// no Group is found this panics, as the caller expected to run inside a Scope.
func FromContext(ctx context.Context) *Group {
	g, ok := FromContextOptional(ctx)
	if !ok {
		panic("no resource group available")
	}
	return g
}

// FromContextOptional returns the innermost Group in the context stack along
// with a boolean indicating whether one was found.
func FromContextOptional(ctx context.Context) (*Group, bool) {
	value := ctx.Value(groupContextKey)
	if value == nil {
		return nil, false
	}
	g, ok := value.(*Group)
	return g, ok
}
