package timer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Resolution is how often the cached clock is refreshed. Half a second is precise enough
// for I/O deadlines measured in seconds.
const Resolution = 500 * time.Millisecond

var (
	millis = new(atomic.Int64)
	start  sync.Once
)

// Now returns the cached wall-clock time, lagging behind the real one by at most Resolution.
// The refreshing goroutine is started on the first call.
func Now() time.Time {
	start.Do(func() {
		millis.Store(time.Now().UnixMilli())

		go func() {
			for {
				time.Sleep(Resolution)
				millis.Store(time.Now().UnixMilli())
			}
		}()
	})

	return time.UnixMilli(millis.Load())
}

// Deadline returns the moment the timeout expires at, or zero time meaning no deadline
// if the timeout is disabled.
func Deadline(timeout time.Duration) time.Time {
	if timeout <= 0 {
		return time.Time{}
	}

	return Now().Add(timeout)
}
