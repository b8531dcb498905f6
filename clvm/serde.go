// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package clvm

import (
	"fmt"
)

const (
	consBoxMarker = 0xff
	backReference = 0xfe
	nilMarker     = 0x80

	// maxAtomLength is the largest atom the length prefix can describe.
	maxAtomLength = 0x400000000
)

// Serialize encodes the node in the canonical CLVM format without
// back-references.
func Serialize(s *SExp) []byte {
	var out []byte

	stack := []*SExp{s}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if node.IsPair() {
			out = append(out, consBoxMarker)
			stack = append(stack, node.right, node.left)
			continue
		}
		out = appendAtom(out, node.atom)
	}

	return out
}

// appendAtom appends the length prefixed encoding of an atom.
func appendAtom(out, atom []byte) []byte {
	n := len(atom)
	switch {
	case n == 0:
		return append(out, nilMarker)

	case n == 1 && atom[0] <= 0x7f:
		return append(out, atom[0])

	case n < 0x40:
		out = append(out, 0x80|byte(n))

	case n < 0x2000:
		out = append(out, 0xc0|byte(n>>8), byte(n))

	case n < 0x100000:
		out = append(out, 0xe0|byte(n>>16), byte(n>>8), byte(n))

	case n < 0x8000000:
		out = append(out, 0xf0|byte(n>>24), byte(n>>16), byte(n>>8),
			byte(n))

	default:
		out = append(out, 0xf8|byte(n>>32), byte(n>>24), byte(n>>16),
			byte(n>>8), byte(n))
	}

	return append(out, atom...)
}

// reader walks a serialized program.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) readByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, fmt.Errorf("%w: unexpected end of input",
			ErrInvalidSerialization)
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// atomLength decodes the length prefix that starts with b.
func (r *reader) atomLength(b byte) (int, error) {
	var bitCount int
	for mask := byte(0x80); mask != 0 && b&mask != 0; mask >>= 1 {
		bitCount++
	}
	if bitCount > 5 {
		return 0, fmt.Errorf("%w: bad atom length prefix 0x%02x",
			ErrInvalidSerialization, b)
	}

	size := int64(b & (0xff >> bitCount))
	for i := 1; i < bitCount; i++ {
		next, err := r.readByte()
		if err != nil {
			return 0, err
		}
		size = size<<8 | int64(next)
	}
	if size >= maxAtomLength {
		return 0, fmt.Errorf("%w: atom too large", ErrInvalidSerialization)
	}

	return int(size), nil
}

// readAtom decodes the atom whose first byte is b.
func (r *reader) readAtom(b byte) ([]byte, error) {
	if b == nilMarker {
		return []byte{}, nil
	}
	if b <= 0x7f {
		return []byte{b}, nil
	}

	size, err := r.atomLength(b)
	if err != nil {
		return nil, err
	}
	if r.pos+size > len(r.buf) {
		return nil, fmt.Errorf("%w: atom runs past end of input",
			ErrInvalidSerialization)
	}
	atom := r.buf[r.pos : r.pos+size]
	r.pos += size

	return atom, nil
}

// Deserialize decodes one program from the start of b.  Trailing bytes are
// ignored.  Back-references are rejected unless allowBackrefs is set.
func Deserialize(b []byte, allowBackrefs bool) (*SExp, error) {
	node, _, err := DeserializePrefix(b, allowBackrefs)
	return node, err
}

// DeserializePrefix decodes one program from the start of b and returns it
// with the number of bytes it occupied.
func DeserializePrefix(b []byte, allowBackrefs bool) (*SExp, int, error) {
	const (
		opSExp = iota
		opCons
	)

	r := &reader{buf: b}

	// Decoded values are kept on a CLVM list so back-reference paths can
	// be resolved against it exactly like environment lookups.
	values := Nil
	pop := func() *SExp {
		v := values.left
		values = values.right
		return v
	}

	ops := []int{opSExp}
	for len(ops) > 0 {
		op := ops[len(ops)-1]
		ops = ops[:len(ops)-1]

		if op == opCons {
			right := pop()
			left := pop()
			values = NewPair(NewPair(left, right), values)
			continue
		}

		c, err := r.readByte()
		if err != nil {
			return nil, 0, err
		}

		switch c {
		case consBoxMarker:
			ops = append(ops, opCons, opSExp, opSExp)

		case backReference:
			if !allowBackrefs {
				return nil, 0, ErrBackrefsDisabled
			}
			next, err := r.readByte()
			if err != nil {
				return nil, 0, err
			}
			path, err := r.readAtom(next)
			if err != nil {
				return nil, 0, err
			}
			target, _, err := traversePath(path, values)
			if err != nil {
				return nil, 0, fmt.Errorf("%w: bad back-reference: %v",
					ErrInvalidSerialization, err)
			}
			values = NewPair(target, values)

		default:
			atom, err := r.readAtom(c)
			if err != nil {
				return nil, 0, err
			}
			values = NewPair(newAtomNoCopy(atom), values)
		}
	}

	return pop(), r.pos, nil
}

// SerializedLength returns the number of bytes occupied by the program at
// the start of b without building it.
func SerializedLength(b []byte, allowBackrefs bool) (int, error) {
	r := &reader{buf: b}

	for pending := 1; pending > 0; pending-- {
		c, err := r.readByte()
		if err != nil {
			return 0, err
		}

		switch c {
		case consBoxMarker:
			pending += 2

		case backReference:
			if !allowBackrefs {
				return 0, ErrBackrefsDisabled
			}
			next, err := r.readByte()
			if err != nil {
				return 0, err
			}
			if _, err := r.readAtom(next); err != nil {
				return 0, err
			}

		default:
			if _, err := r.readAtom(c); err != nil {
				return 0, err
			}
		}
	}

	return r.pos, nil
}
