package ecs

import "github.com/milk9111/brushtoy/ecs/component"

func Add[T any](w *World, e Entity, handle component.ComponentHandle[T], value T) error {
	return w.AddComponent(e, handle.Kind(), value)
}

func Remove[T any](w *World, e Entity, handle component.ComponentHandle[T]) bool {
	return w.RemoveComponent(e, handle.Kind())
}

func Has[T any](w *World, e Entity, handle component.ComponentHandle[T]) bool {
	return w.HasComponent(e, handle.Kind())
}

func Get[T any](w *World, e Entity, handle component.ComponentHandle[T]) (T, bool) {
	var zero T
	value, ok := w.GetComponent(e, handle.Kind())
	if !ok {
		return zero, false
	}
	cast, ok := value.(T)
	if !ok {
		return zero, false
	}
	return cast, true
}

// ForEach calls fn for every entity holding handle, in entity order. fn
// receives a copy; write it back with Add to persist changes.
func ForEach[T any](w *World, handle component.ComponentHandle[T], fn func(e Entity, v T)) {
	for _, e := range w.Query(handle.Kind()) {
		v, ok := Get(w, e, handle)
		if !ok {
			continue
		}
		fn(e, v)
	}
}
