// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package clvm

import (
	"bytes"
	"encoding/hex"
	"strings"
)

// Disassemble renders a node as CLVM text.  Atoms longer than two bytes that
// are printable ASCII are quoted, short canonical integers are written in
// decimal, everything else is hex.  Operator keywords are not substituted.
func Disassemble(s *SExp) string {
	var sb strings.Builder
	writeNode(&sb, s)
	return sb.String()
}

func writeNode(sb *strings.Builder, s *SExp) {
	if s.IsAtom() {
		sb.WriteString(atomText(s.atom))
		return
	}

	sb.WriteByte('(')
	node := s
	first := true
	for node.IsPair() {
		if !first {
			sb.WriteByte(' ')
		}
		first = false
		writeNode(sb, node.left)
		node = node.right
	}
	if !node.IsNil() {
		sb.WriteString(" . ")
		sb.WriteString(atomText(node.atom))
	}
	sb.WriteByte(')')
}

// atomText renders a single atom.
func atomText(atom []byte) string {
	if len(atom) == 0 {
		return "()"
	}

	if len(atom) > 2 {
		if s, ok := quotedString(atom); ok {
			return s
		}
		return "0x" + hex.EncodeToString(atom)
	}

	n := BytesToInt(atom)
	if bytes.Equal(IntToBytes(n), atom) {
		return n.String()
	}
	return "0x" + hex.EncodeToString(atom)
}

// quotedString returns the atom as a quoted string when every byte is
// printable ASCII.
func quotedString(atom []byte) (string, bool) {
	for _, c := range atom {
		if c < 0x20 || c > 0x7e {
			return "", false
		}
	}

	s := string(atom)
	switch {
	case !strings.Contains(s, `"`):
		return `"` + s + `"`, true
	case !strings.Contains(s, "'"):
		return "'" + s + "'", true
	default:
		return "", false
	}
}
