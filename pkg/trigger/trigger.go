// Package trigger turns key presses into a single save request.
package trigger

import "sync"

// Once wraps fn so that only its first call runs. The returned function
// reports whether this call was the one that ran fn.
func Once(fn func()) func() bool {
	var once sync.Once
	return func() bool {
		ran := false
		once.Do(func() {
			ran = true
			fn()
		})
		return ran
	}
}
