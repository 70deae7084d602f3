package peg

import (
	"fmt"
	"strconv"
)

// byteSet is a 256-bit membership table.
type byteSet [4]uint64

func (s *byteSet) add(lo, hi byte) {
	for c := int(lo); c <= int(hi); c++ {
		s[c>>6] |= 1 << (uint(c) & 63)
	}
}

func (s *byteSet) has(c byte) bool {
	return s[c>>6]&(1<<(uint(c)&63)) != 0
}

func (s *byteSet) invert() {
	for i := range s {
		s[i] = ^s[i]
	}
}

// Ranges returns the class as inclusive byte ranges in ascending order.
func (e *CharClass) Ranges() [][2]byte {
	var out [][2]byte
	for c := 0; c < 256; c++ {
		if !e.set.has(byte(c)) {
			continue
		}
		lo := c
		for c+1 < 256 && e.set.has(byte(c+1)) {
			c++
		}
		out = append(out, [2]byte{byte(lo), byte(c)})
	}
	return out
}

// Contains reports whether c belongs to the class.
func (e *CharClass) Contains(c byte) bool {
	return e.set.has(c)
}

// parseClass parses the inside of a bracket expression. A leading '^'
// negates the class; '-' between two atoms forms a range and is literal
// elsewhere. Escapes: \n \r \t \f \0 \xHH and \<any> for the byte itself.
func parseClass(spec string) (byteSet, error) {
	var set byteSet
	if spec == "" {
		return set, fmt.Errorf("empty char class")
	}
	negated := false
	i := 0
	if spec[0] == '^' && len(spec) > 1 {
		negated = true
		i = 1
	}
	for i < len(spec) {
		lo, n, err := classAtom(spec, i)
		if err != nil {
			return set, err
		}
		i += n
		if i+1 < len(spec) && spec[i] == '-' {
			hi, m, err := classAtom(spec, i+1)
			if err != nil {
				return set, err
			}
			if hi < lo {
				return set, fmt.Errorf("char class %q: inverted range %q-%q", spec, lo, hi)
			}
			set.add(lo, hi)
			i += 1 + m
			continue
		}
		set.add(lo, lo)
	}
	if negated {
		set.invert()
	}
	return set, nil
}

// classAtom decodes one byte of a class spec starting at i and returns
// it with the number of spec bytes consumed.
func classAtom(spec string, i int) (byte, int, error) {
	if spec[i] != '\\' {
		return spec[i], 1, nil
	}
	if i+1 >= len(spec) {
		return 0, 0, fmt.Errorf("char class %q: trailing backslash", spec)
	}
	switch c := spec[i+1]; c {
	case 'n':
		return '\n', 2, nil
	case 'r':
		return '\r', 2, nil
	case 't':
		return '\t', 2, nil
	case 'f':
		return '\f', 2, nil
	case '0':
		return 0, 2, nil
	case 'x':
		if i+4 > len(spec) {
			return 0, 0, fmt.Errorf("char class %q: short \\x escape", spec)
		}
		v, err := strconv.ParseUint(spec[i+2:i+4], 16, 8)
		if err != nil {
			return 0, 0, fmt.Errorf("char class %q: %w", spec, err)
		}
		return byte(v), 4, nil
	default:
		return c, 2, nil
	}
}
