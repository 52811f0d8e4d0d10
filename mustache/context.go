package mustache

// Context is an immutable stack of data frames used to resolve expressions.
//
// Pushing a frame returns a new Context sharing its parent; no frame is ever
// modified after creation, so a Context may be shared between goroutines.
// The nil *Context is the empty stack.
type Context struct {
	value  any
	parent *Context
}

// NewContext returns a Context with one frame per value, the last value
// being the innermost frame.
func NewContext(values ...any) *Context {
	var c *Context

	for _, v := range values {
		c = c.Push(v)
	}

	return c
}

// Push returns a new Context with v as its innermost frame.
func (c *Context) Push(v any) *Context {
	return &Context{value: v, parent: c}
}

// Top returns the value of the innermost frame, or nil if c is empty.
func (c *Context) Top() any {
	if c == nil {
		return nil
	}

	return c.value
}

// Parent returns the context below the innermost frame.
func (c *Context) Parent() *Context {
	if c == nil {
		return nil
	}

	return c.parent
}

// Len returns the number of frames.
func (c *Context) Len() int {
	n := 0
	for f := c; f != nil; f = f.parent {
		n++
	}

	return n
}

// Lookup resolves a single key, trying each frame from the innermost
// outward.
func (c *Context) Lookup(key string) (any, bool) {
	for f := c; f != nil; f = f.parent {
		if v, ok := lookupKey(f.value, key); ok {
			return v, true
		}
	}

	return nil, false
}

// Resolve resolves the path of e. Filters are not applied.
//
// The first segment is looked up with [Context.Lookup], or in the innermost
// frame alone when e is scoped. Remaining segments are then looked up in
// turn on each result; a miss at that point does not ascend the stack.
// The implicit expression resolves to the innermost frame's value.
func (c *Context) Resolve(e Expression) (any, bool) {
	if e.IsImplicit() {
		if c == nil {
			return nil, false
		}

		return c.value, true
	}

	var (
		v  any
		ok bool
	)

	if e.Scoped {
		v, ok = lookupKey(c.Top(), e.Path[0])
	} else {
		v, ok = c.Lookup(e.Path[0])
	}

	for _, key := range e.Path[1:] {
		if !ok {
			break
		}

		v, ok = lookupKey(v, key)
	}

	if !ok {
		return nil, false
	}

	return v, true
}
