package cmd

import "sync"

// Once returns a Done that forwards only its first call to done.
func Once(done Done) Done {
	var once sync.Once
	return func(resp *Response, err error) {
		once.Do(func() { done(resp, err) })
	}
}
