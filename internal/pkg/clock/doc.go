// Package clock provides a tiny time abstraction.
//
// Production code should depend on the Clocker interface instead of calling
// time.Now() or time.AfterFunc() directly. Tests swap in a Fake, which only
// moves when Advance or Set is called and fires scheduled callbacks
// synchronously on the calling goroutine.
package clock
