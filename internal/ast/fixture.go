package ast

// Fixture is a hand-built Node, used by tests (and anywhere else that needs
// to construct a small tree without a working parser install) to exercise
// the walker and resolver against known-shape programs. Production code
// never constructs a Fixture; it is the test-fixture counterpart to the
// tree-sitter adapter in treesitter.go, kept in the non-test package so
// every other package's tests can import it.
type Fixture struct {
	K        Kind
	Kids     []Node
	Fields   map[string]Node
	Src      string
	Position Pos
	Err      bool
}

// F is a convenience constructor for a Fixture node.
func F(k Kind, text string, kids ...Node) *Fixture {
	return &Fixture{K: k, Kids: kids, Src: text}
}

// WithField returns f with an additional named field child attached.
func (f *Fixture) WithField(name string, child Node) *Fixture {
	if f.Fields == nil {
		f.Fields = map[string]Node{}
	}
	f.Fields[name] = child
	return f
}

// WithPos sets the fixture's reported source position.
func (f *Fixture) WithPos(p Pos) *Fixture {
	f.Position = p
	return f
}

func (f *Fixture) Kind() Kind { return f.K }

func (f *Fixture) Children() []Node { return f.Kids }

func (f *Fixture) ChildByField(field string) Node {
	if f.Fields == nil {
		return nil
	}
	return f.Fields[field]
}

func (f *Fixture) Text() string { return f.Src }

func (f *Fixture) Pos() Pos { return f.Position }

// HasError reports true when the fixture is marked with Err, is itself a
// KindError node, or has a child that reports an error.
func (f *Fixture) HasError() bool {
	if f.Err || f.K == KindError {
		return true
	}
	for _, k := range f.Kids {
		if k != nil && k.HasError() {
			return true
		}
	}
	return false
}
