// Package parallel provides small helpers for concurrent work.
package parallel

import "sync"

// ErrorCollector keeps the first error reported by a group of goroutines.
// It is safe for concurrent use; later errors are dropped.
//
// The matrix engine splits a product into per-row workers and lets each
// worker report into a shared collector:
//
//	var ec parallel.ErrorCollector
//	var wg sync.WaitGroup
//	for r := 0; r < rows; r++ {
//	    wg.Add(1)
//	    go func(r int) {
//	        defer wg.Done()
//	        ec.SetError(multiplyRow(r))
//	    }(r)
//	}
//	wg.Wait()
//	if err := ec.Err(); err != nil {
//	    return err
//	}
type ErrorCollector struct {
	once sync.Once
	err  error
}

// SetError records err unless an error has already been recorded.
// Nil errors are ignored. Safe for concurrent use.
func (c *ErrorCollector) SetError(err error) {
	if err != nil {
		c.once.Do(func() {
			c.err = err
		})
	}
}

// Err returns the first recorded error, or nil. Callers should wait for
// all contributing goroutines before reading it.
func (c *ErrorCollector) Err() error {
	return c.err
}

// Reset prepares the collector for reuse. Not safe to call while any
// goroutine may still report into it.
func (c *ErrorCollector) Reset() {
	c.once = sync.Once{}
	c.err = nil
}
