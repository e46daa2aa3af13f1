// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"fmt"
	"maps"
	mathrand "math/rand/v2"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shellgei/gosh/expand"
	"github.com/shellgei/gosh/syntax"
)

// overlayEnviron implements [expand.WriteEnviron] as a layer of local
// variables on top of a parent environment. It is used both for function
// call scopes, where funcScope is true and a plain assignment writes through
// to the nearest enclosing scope that already declares the name, and for
// subshells, where funcScope is false and all writes stay local so that a
// subshell's variables never leak back into the parent shell.
type overlayEnviron struct {
	parent    expand.Environ
	vars      map[string]expand.Variable
	funcScope bool
}

// newOverlayEnviron builds the environment for a forked subshell. background
// is accepted for callers that track whether the subshell runs in the
// background, but a subshell's writes never propagate to its parent either
// way, so it has no effect on Set below.
func newOverlayEnviron(parent expand.Environ, background bool) *overlayEnviron {
	return &overlayEnviron{parent: parent}
}

func (o *overlayEnviron) Get(name string) expand.Variable {
	if vr, ok := o.vars[name]; ok {
		return vr
	}
	if o.parent == nil {
		return expand.Variable{}
	}
	return o.parent.Get(name)
}

func (o *overlayEnviron) Set(name string, vr expand.Variable) error {
	if !o.funcScope {
		if o.vars == nil {
			o.vars = make(map[string]expand.Variable)
		}
		o.vars[name] = vr
		return nil
	}
	if vr.Local {
		if o.vars == nil {
			o.vars = make(map[string]expand.Variable)
		}
		o.vars[name] = vr
		return nil
	}
	if _, ok := o.vars[name]; ok {
		o.vars[name] = vr
		return nil
	}
	switch parent := o.parent.(type) {
	case *overlayEnviron:
		if parent.Get(name).Declared() {
			return parent.Set(name, vr)
		}
	case expand.WriteEnviron:
		if parent.Get(name).Declared() {
			return parent.Set(name, vr)
		}
	}
	if o.vars == nil {
		o.vars = make(map[string]expand.Variable)
	}
	o.vars[name] = vr
	return nil
}

func (o *overlayEnviron) Each(fn func(name string, vr expand.Variable) bool) {
	done := make(map[string]bool, len(o.vars))
	for name, vr := range o.vars {
		done[name] = true
		if !fn(name, vr) {
			return
		}
	}
	if o.parent == nil {
		return
	}
	o.parent.Each(func(name string, vr expand.Variable) bool {
		if done[name] {
			return true
		}
		return fn(name, vr)
	})
}

// execEnv builds the "name=value" pairs that should be passed to an external
// program's environment, from all of the exported variables visible in env.
func execEnv(env expand.Environ) []string {
	list := make([]string, 0, 64)
	env.Each(func(name string, vr expand.Variable) bool {
		if !vr.Exported {
			return true
		}
		if vr.Kind == expand.Associative || vr.Kind == expand.Indexed {
			return true
		}
		list = append(list, name+"="+vr.String())
		return true
	})
	return list
}

// reversed returns a copy of list in reverse order, used to present the
// innermost-call-first ordering Bash uses for FUNCNAME/BASH_SOURCE/
// BASH_LINENO, which are stored here outermost-first.
func reversed(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[len(list)-1-i] = s
	}
	return out
}

// splitIndex splits a name like "arr[2]" into its base name and raw index
// text. The index text is resolved later by resolveSubscript, which
// evaluates it arithmetically for indexed arrays or takes it literally for
// associative ones.
func splitIndex(name string) (base, index string, ok bool) {
	i := strings.IndexByte(name, '[')
	if i <= 0 || name[len(name)-1] != ']' {
		return name, "", false
	}
	return name[:i], name[i+1 : len(name)-1], true
}

// arrayLit reports whether an assignment's value is an array literal such as
// "(a b c)", returning the underlying expression.
func arrayLit(as *syntax.Assign) (*syntax.ArrayExpr, bool) {
	if len(as.Value.Parts) != 1 {
		return nil, false
	}
	ae, ok := as.Value.Parts[0].(*syntax.ArrayExpr)
	return ae, ok
}

// lookupVar resolves a variable by name, handling Bash's special parameters
// and dynamic variables before falling back to the regular variable scopes.
func (r *Runner) lookupVar(name string) expand.Variable {
	if name == "" {
		panic("variable name must not be empty")
	}
	switch name {
	case "#":
		return expand.Variable{Set: true, Kind: expand.String, Str: strconv.Itoa(len(r.Params))}
	case "@", "*":
		return expand.Variable{Set: true, Kind: expand.Indexed, List: r.Params}
	case "?":
		return expand.Variable{Set: true, Kind: expand.String, Str: strconv.Itoa(int(r.lastExit.code))}
	case "$":
		return expand.Variable{Set: true, Kind: expand.String, Str: strconv.Itoa(os.Getpid())}
	case "PPID":
		return expand.Variable{Set: true, Kind: expand.String, Str: strconv.Itoa(os.Getppid())}
	case "!":
		if len(r.bgProcs) == 0 {
			return expand.Variable{}
		}
		return expand.Variable{Set: true, Kind: expand.String, Str: "g" + strconv.Itoa(len(r.bgProcs))}
	case "-":
		return expand.Variable{Set: true, Kind: expand.String, Str: r.optFlags()}
	case "0":
		name := r.filename
		if name == "" {
			name = "gosh"
		}
		return expand.Variable{Set: true, Kind: expand.String, Str: name}
	case "RANDOM":
		return expand.Variable{Set: true, Kind: expand.String, Str: strconv.Itoa(int(mathrand.Int32N(32768)))}
	case "SRANDOM":
		return expand.Variable{Set: true, Kind: expand.String, Str: strconv.FormatUint(uint64(mathrand.Uint32()), 10)}
	case "SECONDS":
		return expand.Variable{Set: true, Kind: expand.String, Str: strconv.Itoa(int(time.Since(r.startTime).Seconds()))}
	case "EPOCHSECONDS":
		return expand.Variable{Set: true, Kind: expand.String, Str: strconv.FormatInt(time.Now().Unix(), 10)}
	case "EPOCHREALTIME":
		now := time.Now()
		return expand.Variable{Set: true, Kind: expand.String, Str: fmt.Sprintf("%d.%06d", now.Unix(), now.Nanosecond()/1000)}
	case "DIRSTACK":
		return expand.Variable{Set: true, Kind: expand.Indexed, List: r.dirStack}
	case "LINENO":
		return expand.Variable{Set: true, Kind: expand.String, Str: strconv.Itoa(r.lineAt(r.curStmtPos))}
	case "PIPESTATUS":
		if len(r.pipeStatus) == 0 {
			return expand.Variable{}
		}
		list := make([]string, len(r.pipeStatus))
		for i, code := range r.pipeStatus {
			list[i] = strconv.Itoa(int(code))
		}
		return expand.Variable{Set: true, Kind: expand.Indexed, List: list}
	case "FUNCNAME":
		if len(r.funcNames) == 0 {
			return expand.Variable{}
		}
		return expand.Variable{Set: true, Kind: expand.Indexed, List: reversed(r.funcNames)}
	case "BASH_SOURCE":
		if len(r.funcSources) == 0 {
			return expand.Variable{}
		}
		return expand.Variable{Set: true, Kind: expand.Indexed, List: reversed(r.funcSources)}
	case "BASH_LINENO":
		if len(r.funcCallLines) == 0 {
			return expand.Variable{}
		}
		lines := make([]string, len(r.funcCallLines))
		for i, ln := range r.funcCallLines {
			lines[i] = strconv.Itoa(ln)
		}
		return expand.Variable{Set: true, Kind: expand.Indexed, List: reversed(lines)}
	case "BASH_CMDS":
		if len(r.cmdHash) == 0 {
			return expand.Variable{}
		}
		return expand.Variable{Set: true, Kind: expand.Associative, Map: maps.Clone(r.cmdHash)}
	}
	if len(name) == 1 && name[0] >= '1' && name[0] <= '9' {
		i := int(name[0] - '1')
		if i < len(r.Params) {
			return expand.Variable{Set: true, Kind: expand.String, Str: r.Params[i]}
		}
		return expand.Variable{}
	}
	if base, index, ok := splitIndex(name); ok {
		return r.lookupVarIndex(base, index)
	}
	return r.writeEnv.Get(name)
}

// resolveSubscript turns an array subscript's raw source text into the key
// actually used to index the variable: associative arrays key on the literal
// text, while indexed arrays (and any subscript on a variable that doesn't
// exist yet) treat it as an arithmetic expression, so "arr[i+1]" works the
// same as "arr[$((i+1))]".
func (r *Runner) resolveSubscript(index string, cur expand.Variable) string {
	if index == "@" || index == "*" || cur.Kind == expand.Associative {
		return index
	}
	if _, err := strconv.Atoi(index); err == nil {
		return index
	}
	return strconv.Itoa(r.arithmStr(index))
}

func (r *Runner) lookupVarIndex(base, index string) expand.Variable {
	vr := r.writeEnv.Get(base)
	index = r.resolveSubscript(index, vr)
	switch vr.Kind {
	case expand.Indexed:
		if index == "@" || index == "*" {
			return expand.Variable{Set: true, Kind: expand.Indexed, List: vr.List}
		}
		i, err := strconv.Atoi(index)
		if err != nil || i < 0 || i >= len(vr.List) {
			return expand.Variable{}
		}
		return expand.Variable{Set: true, Kind: expand.String, Str: vr.List[i]}
	case expand.Associative:
		if index == "@" || index == "*" {
			keys := slices.Sorted(maps.Keys(vr.Map))
			list := make([]string, len(keys))
			for i, k := range keys {
				list[i] = vr.Map[k]
			}
			return expand.Variable{Set: true, Kind: expand.Indexed, List: list}
		}
		s, ok := vr.Map[index]
		if !ok {
			return expand.Variable{}
		}
		return expand.Variable{Set: true, Kind: expand.String, Str: s}
	case expand.String:
		if index == "0" || index == "@" || index == "*" {
			return vr
		}
	}
	return expand.Variable{}
}

// optFlags renders the shell's active single-letter options, for use by the
// "$-" special parameter.
func (r *Runner) optFlags() string {
	var sb strings.Builder
	for i, opt := range &shellOptsTable {
		if opt.flag != ' ' && r.opts[i] {
			sb.WriteByte(opt.flag)
		}
	}
	return sb.String()
}

// setVar assigns a variable by name, dispatching to indexed or associative
// element assignment when name carries a "base[index]" subscript.
func (r *Runner) setVar(name string, vr expand.Variable) {
	if base, index, ok := splitIndex(name); ok {
		r.setVarIndex(base, index, vr)
		return
	}
	if err := r.writeEnv.Set(name, vr); err != nil {
		r.errf("%s: %v\n", name, err)
		r.exit.code = 1
	}
}

func (r *Runner) setVarString(name, value string) {
	r.setVar(name, expand.Variable{Set: true, Kind: expand.String, Str: value})
}

func (r *Runner) setVarIndex(base, index string, vr expand.Variable) {
	cur := r.writeEnv.Get(base)
	if cur.ReadOnly {
		r.errf("%s: readonly variable\n", base)
		r.exit.code = 1
		return
	}
	index = r.resolveSubscript(index, cur)
	val := vr.String()
	if cur.Kind == expand.Associative {
		amap := maps.Clone(cur.Map)
		if amap == nil {
			amap = make(map[string]string)
		}
		amap[index] = val
		cur.Map = amap
		cur.Set = true
		r.setVar(base, cur)
		return
	}
	i, err := strconv.Atoi(index)
	if err != nil {
		// No prior array kind and a non-numeric subscript: promote to an
		// associative array, matching Bash's implicit "foo[bar]=baz" behavior.
		amap := maps.Clone(cur.Map)
		if amap == nil {
			amap = make(map[string]string)
		}
		amap[index] = val
		cur.Kind = expand.Associative
		cur.Map = amap
		cur.Set = true
		r.setVar(base, cur)
		return
	}
	var list []string
	switch cur.Kind {
	case expand.Indexed:
		list = slices.Clone(cur.List)
	case expand.String:
		list = []string{cur.Str}
	}
	for len(list) <= i {
		list = append(list, "")
	}
	list[i] = val
	cur.Kind = expand.Indexed
	cur.List = list
	cur.Set = true
	r.setVar(base, cur)
}

// delVar unsets a variable, refusing to touch read-only ones.
func (r *Runner) delVar(name string) {
	cur := r.writeEnv.Get(name)
	if cur.ReadOnly {
		r.errf("%s: readonly variable\n", name)
		r.exit.code = 1
		return
	}
	if err := r.writeEnv.Set(name, expand.Variable{}); err != nil {
		r.errf("%s: %v\n", name, err)
		r.exit.code = 1
	}
}

// envGet returns a variable's plain string value, or an empty string if it
// is unset.
func (r *Runner) envGet(name string) string {
	return r.lookupVar(name).String()
}

// setFunc registers a function definition.
func (r *Runner) setFunc(name string, body *syntax.Stmt) {
	if r.Funcs == nil {
		r.Funcs = make(map[string]*syntax.Stmt)
	}
	r.Funcs[name] = body
}

// assignVal computes the new value of a variable given an assignment node,
// taking into account the variable's previous value, any "+=" append, and
// whether valType requests an indexed ("-a"), associative ("-A") or nameref
// ("-n") array.
func (r *Runner) assignVal(prev expand.Variable, as *syntax.Assign, valType string) expand.Variable {
	if ae, isArray := arrayLit(as); isArray {
		words := make([]*syntax.Word, len(ae.List))
		for i := range ae.List {
			words[i] = &ae.List[i]
		}
		elems := r.fields(words...)
		if valType == "-A" {
			amap := make(map[string]string, len(elems))
			if as.Append && prev.Kind == expand.Associative {
				maps.Copy(amap, prev.Map)
			}
			for _, s := range elems {
				k, v, ok := strings.Cut(s, "=")
				if !ok {
					k, v = strconv.Itoa(len(amap)), s
				}
				amap[k] = v
			}
			return expand.Variable{Set: true, Kind: expand.Associative, Map: amap}
		}
		if as.Append && prev.Kind == expand.Indexed {
			elems = append(slices.Clone(prev.List), elems...)
		}
		return expand.Variable{Set: true, Kind: expand.Indexed, List: elems}
	}
	s := r.literal(&as.Value)
	if valType == "-n" {
		return expand.Variable{Set: true, Kind: expand.NameRef, Str: s}
	}
	if as.Append {
		switch prev.Kind {
		case expand.Indexed:
			list := slices.Clone(prev.List)
			if len(list) == 0 {
				list = append(list, "")
			}
			list[0] += s
			return expand.Variable{Set: true, Kind: expand.Indexed, List: list}
		case expand.String:
			s = prev.Str + s
		}
	}
	return expand.Variable{Set: true, Kind: expand.String, Str: s}
}
