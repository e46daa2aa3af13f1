// Copyright (c) 2016, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

// +build gofuzz

package syntax

import (
	"encoding/binary"
	"io"
)

func Fuzz(data []byte) int {
	// The first byte contains parser mode flags.
	// The second and third bytes contain printer options.
	const (
		// parser
		maskComments = 0b0000_0001
		maskPosix    = 0b0000_0010
		maskSimplify = 0b0000_0100 // pretend it's a parser option

		// printer
		maskSpaces = 0b0000_0000_1111_1111 // one byte; 0-255
	)

	if len(data) < 3 {
		return 0
	}
	parserOpts := data[0]
	printerOpts := binary.BigEndian.Uint16(data[1:3])
	src := data[3:]

	var mode ParseMode
	if parserOpts&maskComments != 0 {
		mode |= ParseComments
	}
	if parserOpts&maskPosix != 0 {
		mode |= PosixConformant
	}

	prog, err := Parse(src, "", mode)
	if err != nil {
		return 0
	}

	if parserOpts&maskSimplify != 0 {
		Simplify(prog)
	}

	cfg := PrintConfig{Spaces: int(printerOpts & maskSpaces)}
	cfg.Fprint(io.Discard, prog)

	return 1
}
