package serialize

// Session is a fluent, order-sensitive serialize call. When several
// include/exclude rules match a field, the one applied last wins. A Session
// belongs to one goroutine.
type Session struct {
	engine   *Engine
	root     any
	rootName string
	plan     *plan
	layout   layout
	format   Format
}

// Include adds fields by dotted path. Non-primitive fields are only emitted
// when included or when the session is recursive.
func (s *Session) Include(paths ...string) *Session {
	for _, p := range paths {
		s.plan.rules = append(s.plan.rules, rule{path: p, include: true})
	}
	return s
}

// Exclude removes fields by dotted path.
func (s *Session) Exclude(paths ...string) *Session {
	for _, p := range paths {
		s.plan.rules = append(s.plan.rules, rule{path: p})
	}
	return s
}

// ExcludeAll removes every field of the root object. Later Include calls
// add fields back.
func (s *Session) ExcludeAll() *Session {
	s.plan.rules = append(s.plan.rules, rule{all: true})
	return s
}

// Recursive emits non-primitive fields without explicit includes.
func (s *Session) Recursive() *Session {
	s.plan.recursive = true
	return s
}

// WithoutRoot omits the root wrapper.
func (s *Session) WithoutRoot() *Session {
	s.rootName = RootNone
	return s
}

// Version sets the active version.
func (s *Session) Version(v float64) *Session {
	s.plan.version = v
	s.plan.versioned = true
	return s
}

// Indented turns on pretty printing.
func (s *Session) Indented() *Session {
	s.layout = layoutIndented
	return s
}

// Compact turns off pretty printing, even when the engine default is
// indented.
func (s *Session) Compact() *Session {
	s.layout = layoutCompact
	return s
}

// As selects the output format.
func (s *Session) As(f Format) *Session {
	s.format = f
	return s
}

// Serialize renders the session.
func (s *Session) Serialize() (string, error) {
	return s.engine.run(s.root, s.rootName, s.plan, s.layout, s.format)
}
