// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/shellgei/gosh/syntax"
)

// stmtLabel renders a statement back into shell syntax, for use as the
// human-readable description of a background job in "jobs" output.
func stmtLabel(st *syntax.Stmt) string {
	var buf bytes.Buffer
	file := &syntax.File{Stmts: []*syntax.Stmt{st}}
	if err := syntax.Fprint(&buf, file); err != nil {
		return ""
	}
	return strings.TrimSpace(buf.String())
}

// jobSpec resolves a job specifier such as "%2", "%%" or "%+" to an index
// into r.bgProcs. An empty spec means the most recently started job.
func (r *Runner) jobSpec(spec string) (int, error) {
	jobs := r.jobIndexes()
	if len(jobs) == 0 {
		return -1, fmt.Errorf("no current jobs")
	}
	spec = strings.TrimPrefix(spec, "%")
	switch spec {
	case "", "%", "+", "-":
		return jobs[len(jobs)-1], nil
	}
	if n, err := strconv.Atoi(spec); err == nil {
		if n < 1 || n > len(r.bgProcs) {
			return -1, fmt.Errorf("%s: no such job", spec)
		}
		return n - 1, nil
	}
	for i := len(jobs) - 1; i >= 0; i-- {
		idx := jobs[i]
		if strings.HasPrefix(r.bgProcs[idx].label, spec) {
			return idx, nil
		}
	}
	return -1, fmt.Errorf("%s: no such job", spec)
}

// jobIndexes returns the indexes into r.bgProcs of the jobs started by
// explicit "&" backgrounding, in the order they were started. Background
// shells spawned internally for process substitution carry no label and are
// excluded, since they are not jobs a user can refer to.
func (r *Runner) jobIndexes() []int {
	var out []int
	for i, bg := range r.bgProcs {
		if bg.label != "" {
			out = append(out, i)
		}
	}
	return out
}

func (r *Runner) jobState(idx int) string {
	select {
	case <-r.bgProcs[idx].done:
		if r.bgProcs[idx].exit.code == 0 {
			return "Done"
		}
		return fmt.Sprintf("Done(%d)", r.bgProcs[idx].exit.code)
	default:
		return "Running"
	}
}

// jobsBuiltin implements the "jobs" builtin: listing the shell's background
// jobs along with their running/done state.
func (r *Runner) jobsBuiltin(args []string) string {
	var buf strings.Builder
	for n, idx := range r.jobIndexes() {
		fmt.Fprintf(&buf, "[%d]  %s\t%s\n", n+1, r.jobState(idx), r.bgProcs[idx].label)
	}
	return buf.String()
}

// fgBuiltin implements the "fg" builtin: waiting for a background job to
// finish and adopting its exit status as the shell's own. gosh executes
// background jobs as in-process goroutines rather than stopped OS processes,
// so "fg" cannot hand over terminal control to a previously suspended job;
// it can only wait for a still-running one to complete.
func (r *Runner) fgBuiltin(spec string) error {
	idx, err := r.jobSpec(spec)
	if err != nil {
		return err
	}
	<-r.bgProcs[idx].done
	r.exit = *r.bgProcs[idx].exit
	r.exit.exiting = false
	return nil
}

// bgBuiltin implements the "bg" builtin. Since gosh has no notion of a
// stopped job to resume (see [Runner.fgBuiltin]), this only validates the
// job specifier and reports whether the job is still running.
func (r *Runner) bgBuiltin(spec string) error {
	_, err := r.jobSpec(spec)
	return err
}
