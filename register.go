package resgroup

import "io"

// CleanupFunc releases a resource of type T whose release cannot fail.
type CleanupFunc[T any] func(T)

// Register adds a resource that knows how to close itself and returns the
// same resource, so acquisition and registration fit in one expression:
//
//	conn := resgroup.Register(g, dial())
//
// The error returned by Close is discarded when the group is released.
// Registering the same resource twice creates two entries and closes it twice.
func Register[T io.Closer](g *Group, resource T) T {
	g.push(resource, func() error {
		return resource.Close()
	})
	return resource
}

// RegisterFunc adds a resource whose release operation is not a plain Close,
// such as one that takes extra arguments or lives on another value. The
// release function receives the resource when the group is released and its
// error is discarded. The resource is returned unchanged.
//
//	p := resgroup.RegisterFunc(g, newProducer(), func(p *Producer) error {
//	    return p.Shutdown(ctx)
//	})
func RegisterFunc[T any](g *Group, resource T, release func(T) error) T {
	if release == nil {
		g.push(resource, nil)
		return resource
	}
	g.push(resource, func() error {
		return release(resource)
	})
	return resource
}

// RegisterCleanup adds a resource whose release has no failure result. The
// resource is returned unchanged.
func RegisterCleanup[T any](g *Group, resource T, cleanup CleanupFunc[T]) T {
	if cleanup == nil {
		g.push(resource, nil)
		return resource
	}
	g.push(resource, func() error {
		cleanup(resource)
		return nil
	})
	return resource
}
