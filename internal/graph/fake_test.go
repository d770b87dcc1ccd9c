package graph

// Test fake of the source model: every oracle answer is scripted per
// construct key, so builder tests state exactly the semantic facts a
// scenario needs and nothing else.

// fakeConstruct implements Construct with fixed data.
type fakeConstruct struct {
	key  Key
	kind ConstructKind
	path string
	line int
	text string
	name string
}

func (c *fakeConstruct) Key() Key            { return c.key }
func (c *fakeConstruct) Kind() ConstructKind { return c.kind }
func (c *fakeConstruct) Path() string        { return c.path }
func (c *fakeConstruct) StartLine() int      { return c.line }
func (c *fakeConstruct) Text() string        { return c.text }
func (c *fakeConstruct) Name() string        { return c.name }

var _ Construct = (*fakeConstruct)(nil)

// fc returns a construct with the key doubling as its text, at app.ts:1.
func fc(key string, kind ConstructKind) *fakeConstruct {
	return &fakeConstruct{key: Key(key), kind: kind, path: "app.ts", line: 1, text: key}
}

// fcNamed is fc with a declared symbol name.
func fcNamed(key string, kind ConstructKind, name string) *fakeConstruct {
	c := fc(key, kind)
	c.name = name
	return c
}

// fakeModel is a scripted Model. Unscripted queries return empty answers;
// unscripted Variable and Call lookups fail loudly so miswired fixtures
// surface as test failures instead of silent absences.
type fakeModel struct {
	files    []string
	decls    map[string][]Construct
	vars     map[Key]*Variable
	varErrs  map[Key]error
	calls    map[Key]*Call
	within   map[Key][]Construct
	withinEs map[Key]error
	resolved map[Key][]Construct
	refs     map[Key][]Construct
	calleeOf map[Key]Construct
}

var _ Model = (*fakeModel)(nil)

func newFakeModel() *fakeModel {
	return &fakeModel{
		decls:    make(map[string][]Construct),
		vars:     make(map[Key]*Variable),
		varErrs:  make(map[Key]error),
		calls:    make(map[Key]*Call),
		within:   make(map[Key][]Construct),
		withinEs: make(map[Key]error),
		resolved: make(map[Key][]Construct),
		refs:     make(map[Key][]Construct),
		calleeOf: make(map[Key]Construct),
	}
}

func (m *fakeModel) addFile(path string, decls ...Construct) {
	m.files = append(m.files, path)
	m.decls[path] = decls
}

func (m *fakeModel) setVariable(c Construct, v *Variable) { m.vars[c.Key()] = v }
func (m *fakeModel) setVariableErr(c Construct, err error) { m.varErrs[c.Key()] = err }

func (m *fakeModel) setCall(c, callee Construct, bare bool, args ...Construct) {
	m.calls[c.Key()] = &Call{Callee: callee, Bare: bare, Args: args}
}

func (m *fakeModel) setCallsWithin(c Construct, calls ...Construct) {
	m.within[c.Key()] = calls
}

func (m *fakeModel) setCallsWithinErr(c Construct, err error) { m.withinEs[c.Key()] = err }

func (m *fakeModel) setResolve(ident Construct, defs ...Construct) {
	m.resolved[ident.Key()] = defs
}

func (m *fakeModel) setReferences(c Construct, usages ...Construct) {
	m.refs[c.Key()] = usages
}

func (m *fakeModel) setCalleeCall(usage, call Construct) {
	m.calleeOf[usage.Key()] = call
}

func (m *fakeModel) Files() []string { return m.files }

func (m *fakeModel) Declarations(path string) ([]Construct, error) {
	decls, ok := m.decls[path]
	if !ok {
		return nil, ErrUnknownFile
	}
	return decls, nil
}

func (m *fakeModel) Variable(c Construct) (*Variable, error) {
	if err, ok := m.varErrs[c.Key()]; ok {
		return nil, err
	}
	v, ok := m.vars[c.Key()]
	if !ok {
		return nil, errUnscripted("Variable", c)
	}
	return v, nil
}

func (m *fakeModel) Call(c Construct) (*Call, error) {
	call, ok := m.calls[c.Key()]
	if !ok {
		return nil, errUnscripted("Call", c)
	}
	return call, nil
}

func (m *fakeModel) CallsWithin(c Construct) ([]Construct, error) {
	if err, ok := m.withinEs[c.Key()]; ok {
		return nil, err
	}
	return m.within[c.Key()], nil
}

func (m *fakeModel) Resolve(c Construct) []Construct    { return m.resolved[c.Key()] }
func (m *fakeModel) References(c Construct) []Construct { return m.refs[c.Key()] }

func (m *fakeModel) CalleeCall(usage Construct) (Construct, bool) {
	call, ok := m.calleeOf[usage.Key()]
	return call, ok
}

type fixtureError struct {
	op  string
	key Key
}

func (e *fixtureError) Error() string {
	return "fake model: " + e.op + " not scripted for " + string(e.key)
}

func errUnscripted(op string, c Construct) error {
	return &fixtureError{op: op, key: c.Key()}
}
