// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import (
	"os/user"
	"strings"
)

// expandTilde resolves a leading "~" or "~user" prefix to a home directory.
// field is left untouched if it does not begin with a tilde, or if the named
// user cannot be found.
func expandTilde(cfg *Config, field string) string {
	name := field[1:]
	rest := ""
	if i := strings.IndexByte(name, '/'); i >= 0 {
		rest = name[i:]
		name = name[:i]
	}
	if name == "" {
		return cfg.envGet("HOME") + rest
	}
	// TODO: avoid depending on os/user, which needs cgo for full NSS support.
	u, err := user.Lookup(name)
	if err != nil {
		return field
	}
	return u.HomeDir + rest
}
