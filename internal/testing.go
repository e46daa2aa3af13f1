// Copyright (c) 2026, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package internal

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// shadowedNames are short identifiers commonly used as throwaway shell
// variables in tests ($a, $foo, and so on). They're also the names of real
// binaries on some systems, so tests that set them as plain variables need
// $PATH not to resolve them to anything first.
var shadowedNames = []string{"a", "b", "c", "d", "e", "f", "foo", "bar"}

// TestMainSetup prepares a clean, reproducible environment for integration
// tests that execute shell scripts, whether through this module's own
// interpreter or through a real installed shell.
func TestMainSetup() {
	setLocale()

	// bash prints the working directory after a `cd` once CDPATH is set;
	// tests that don't expect that output need it gone.
	os.Unsetenv("CDPATH")

	shadowBinaries(shadowedNames)
}

// setLocale picks a UTF-8 English locale that should exist on the host,
// preferring the "C" locale's own UTF-8 variant when available since it
// carries fewer surprises than a country-specific one; some systems (macOS
// among them) don't ship C.UTF-8, so fall back to en_US.UTF-8 there.
func setLocale() {
	out, _ := exec.Command("locale", "-a").Output()
	if strings.Contains(strings.ToLower(string(out)), "c.utf") {
		os.Setenv("LANGUAGE", "C.UTF-8")
		os.Setenv("LC_ALL", "C.UTF-8")
		return
	}
	os.Setenv("LANGUAGE", "en_US.UTF-8")
	os.Setenv("LC_ALL", "en_US.UTF-8")
}

// shadowBinaries makes sure none of names resolves to a real program on
// $PATH, by unsetting each as an env var and placing a script ahead of the
// rest of $PATH that fails loudly if anything ever does try to exec it.
// There's no portable way to remove entries from $PATH itself, so this is
// the next best thing.
func shadowBinaries(names []string) {
	pathDir, err := os.MkdirTemp("", "interp-bin-")
	if err != nil {
		panic(err)
	}

	for _, name := range names {
		os.Unsetenv(name)
		script := filepath.Join(pathDir, name)
		contents := []byte("#!/bin/sh\necho NO_SUCH_COMMAND; exit 1")
		if err := os.WriteFile(script, contents, 0o777); err != nil {
			panic(err)
		}
	}

	os.Setenv("PATH", pathDir+string(os.PathListSeparator)+os.Getenv("PATH"))
}
