// Copyright (c) 2018, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"runtime"
	"strings"
)

// Environ is the read side of a shell's variable database: it fetches a
// single variable by name, and walks every variable currently set.
type Environ interface {
	// Get looks up a variable by name. A variable that was never declared
	// comes back as the zero Variable; callers that care about the
	// difference between "unset" and "set to the empty string" should
	// check Variable.IsSet rather than comparing against "".
	Get(name string) Variable

	// TODO(v4): turn Each into something that returns an iterator instead
	// of taking a callback.

	// Each walks every declared variable, calling fn once per name. Each
	// stops early the moment fn returns false.
	//
	// Names may repeat and need not come back in any particular order;
	// when a name does repeat, whichever call happens last wins.
	//
	// Implementations must include exported variables here, since the
	// executor relies on Each to build a child process's environment.
	Each(fn func(name string, vr Variable) bool)
}

// TODO(v4): [WriteEnviron.Set] carries too many responsibilities at once to
// implement cleanly on both sides of the interface: `export foo` and
// `readonly foo` touch only attributes, while `foo=bar` and `foo=([3]=baz)`
// touch only the value.

// WriteEnviron extends Environ with the ability to create, replace, or
// delete variables.
type WriteEnviron interface {
	Environ

	// Set stores vr under name. Passing a Variable with !vr.IsSet() unsets
	// the name instead of storing it.
	//
	// Passing [KeepValue] as vr.Kind changes only the attributes of an
	// already-declared variable and leaves its value untouched — the shape
	// needed for `readonly foo=bar; export foo`, where the second statement
	// must not clobber the value set by the first.
	//
	// Set may reject the write (empty name, read-only target) by returning
	// a non-nil error.
	Set(name string, vr Variable) error
}

//go:generate stringer -type=ValueKind

// ValueKind tags which field of a Variable actually holds its value.
// A variable that has never been assigned usually carries [Unknown], but
// a declaration like `declare -a foo` can fix the kind ahead of any value.
type ValueKind uint8

const (
	// Unknown marks an unset variable with no fixed kind yet.
	Unknown ValueKind = iota
	// String marks a plain scalar, e.g. `foo=bar`.
	String
	// NameRef marks a variable that forwards to another by name, e.g.
	// `declare -n foo=foo2`.
	NameRef
	// Indexed marks an indexed array, e.g. `foo=(bar baz)`.
	Indexed
	// Associative marks an associative array, e.g. `foo=([bar]=x [baz]=y)`.
	Associative

	// KeepValue tells [WriteEnviron.Set] to update only a variable's
	// attributes (export/readonly/local) and leave its value alone.
	KeepValue

	// Deprecated: use [Unknown] and check [Variable.Set] instead; Unset
	// used to be the only way to represent "not set", which made it
	// impossible to also record a fixed kind like `declare -A foo`.
	Unset = Unknown
)

// Variable is one entry of the shell's variable database: a value plus the
// handful of attributes bash tracks per name (local/exported/readonly) and a
// tag for which value field is live.
type Variable struct {
	// Set reports whether a value (possibly empty) has been assigned.
	Set bool

	Local    bool
	Exported bool
	ReadOnly bool

	// Kind selects which of Str/List/Map below is meaningful.
	Kind ValueKind

	Str  string            // valid when Kind is String or NameRef.
	List []string          // valid when Kind is Indexed.
	Map  map[string]string // valid when Kind is Associative.
}

// IsSet reports whether the variable carries an assigned value. The zero
// Variable is always unset.
func (v Variable) IsSet() bool {
	return v.Set
}

// Declared reports whether anything at all is known about the variable —
// it may be declared without being set, e.g. `export foo` (exported, no
// value) or `declare -a foo` (a fixed kind, no value).
func (v Variable) Declared() bool {
	if v.Set || v.Local || v.Exported || v.ReadOnly {
		return true
	}
	return v.Kind != Unknown
}

// String renders the variable's value as a scalar. It is only meaningful
// for String/Indexed kinds (or an unset variable, which renders empty);
// an Associative variable has no single scalar representation.
func (v Variable) String() string {
	switch v.Kind {
	case String:
		return v.Str
	case Indexed:
		if len(v.List) > 0 {
			return v.List[0]
		}
	}
	return ""
}

// maxNameRefDepth caps how many NameRef hops [Variable.Resolve] will follow,
// so that a reference cycle (`declare -n a=b; declare -n b=a`) terminates
// instead of looping the process to death.
const maxNameRefDepth = 100

// Resolve chases a chain of NameRef variables to the non-reference variable
// they ultimately point to, returning the last name visited along the way.
func (v Variable) Resolve(env Environ) (string, Variable) {
	var lastName string
	for depth := 0; depth < maxNameRefDepth && v.Kind == NameRef; depth++ {
		lastName = v.Str
		v = env.Get(lastName)
	}
	if v.Kind == NameRef {
		// still a reference after maxNameRefDepth hops: treat as broken.
		return lastName, Variable{}
	}
	return lastName, v
}

// funcEnviron adapts a plain name-to-value lookup function into an Environ.
type funcEnviron func(string) string

// FuncEnviron builds an [Environ] backed by fn; fn returning "" is treated
// as "unset". Every variable reported by it is considered exported, and its
// Each never visits anything (there is no way to enumerate an arbitrary
// function's domain).
func FuncEnviron(fn func(string) string) Environ {
	return funcEnviron(fn)
}

func (f funcEnviron) Get(name string) Variable {
	if value := f(name); value != "" {
		return Variable{Set: true, Exported: true, Kind: String, Str: value}
	}
	return Variable{}
}

func (funcEnviron) Each(func(name string, vr Variable) bool) {}

// listEnviron holds "name=value" pairs in a plain map, trading the sorted
// order a slice-backed implementation might offer for O(1) lookups; Environ
// never promises an iteration order, so nothing downstream may rely on one.
type listEnviron map[string]string

// ListEnviron builds an [Environ] from "key=value" strings, all marked
// exported. If a key appears more than once, the later pair wins.
//
// Windows treats environment variable names case-insensitively, so there
// every name is upper-cased before being stored.
func ListEnviron(pairs ...string) Environ {
	return listEnvironWithUpper(runtime.GOOS == "windows", pairs...)
}

// listEnvironWithUpper backs [ListEnviron], with the upper-casing behavior
// exposed as a parameter so tests can pin it regardless of GOOS.
func listEnvironWithUpper(upper bool, pairs ...string) Environ {
	env := make(listEnviron, len(pairs))
	for _, pair := range pairs {
		name, val, ok := strings.Cut(pair, "=")
		if name == "" || !ok {
			continue // malformed entry; drop it silently, same as an empty env slot
		}
		if upper {
			name = strings.ToUpper(name)
		}
		env[name] = val
	}
	return env
}

func (l listEnviron) Get(name string) Variable {
	val, ok := l[name]
	if !ok {
		return Variable{}
	}
	return Variable{Set: true, Exported: true, Kind: String, Str: val}
}

func (l listEnviron) Each(fn func(name string, vr Variable) bool) {
	for name, val := range l {
		if !fn(name, Variable{Set: true, Exported: true, Kind: String, Str: val}) {
			return
		}
	}
}
