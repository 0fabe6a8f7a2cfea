package cmd

// Middleware wraps a handler (logging, rate limiting, tracing).
type Middleware func(Handler) Handler

// Chain wraps h with mws; the first middleware in the list is the outermost.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
