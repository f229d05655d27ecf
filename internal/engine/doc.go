// Package engine derives task views from an in-memory snapshot.
//
// Every function is pure: it reads its arguments, never mutates them, performs
// no I/O and returns freshly allocated results. The current instant is always
// passed in by the caller.
package engine
