package types

import "strings"

// Signature is the ordered formal-parameter list of a native function.
type Signature []*Descriptor

// Equal reports element-wise identity. Descriptors are interned, so this
// is pointer comparison per position.
func (s Signature) Equal(o Signature) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

func (s Signature) String() string {
	names := make([]string, len(s))
	for i, d := range s {
		names[i] = d.Name()
	}
	return "(" + strings.Join(names, ", ") + ")"
}
