// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

package pp2

// owned holds one driver resource together with the function that gives it
// back. Release is a no-op once the resource is gone, so detach and the
// attach rollback path can both walk every resource unconditionally.
type owned[T any] struct {
	v       T
	held    bool
	release func(T)
}

func (o *owned[T]) hold(v T, release func(T)) {
	if o.held {
		panic("pp2: resource acquired twice")
	}
	o.v = v
	o.held = true
	o.release = release
}

func (o *owned[T]) get() T {
	return o.v
}

func (o *owned[T]) Held() bool {
	return o.held
}

func (o *owned[T]) Release() {
	if !o.held {
		return
	}
	v, release := o.v, o.release
	var zero T
	o.v = zero
	o.held = false
	o.release = nil
	if release != nil {
		release(v)
	}
}

type releaser interface {
	Held() bool
	Release()
}
