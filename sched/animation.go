package sched

import (
	"fmt"
	"reflect"
)

// An Animation is anything the Scheduler can play. The caller owns the
// animation and must keep it alive until it has finished playing.
type Animation interface {
	Start()
	Stop()
	Running() bool

	// SetOnFinished registers the notification fired once per playback when
	// the animation completes. A new registration replaces the previous one.
	SetOnFinished(func())
}

// A Disposer is an Animation that can report it has been released by its
// owner. Disposed animations are rejected by Schedule.
type Disposer interface {
	Disposed() bool
}

func validHandle(anim Animation) bool {
	if anim == nil {
		return false
	}

	v := reflect.ValueOf(anim)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		if v.IsNil() {
			return false
		}
	}

	// Handles are compared for duplicate detection
	if !v.Type().Comparable() {
		return false
	}

	if d, ok := anim.(Disposer); ok && d.Disposed() {
		return false
	}

	return true
}

func nameOf(anim Animation) string {
	if s, ok := anim.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", anim)
}
