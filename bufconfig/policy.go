// Package bufconfig loads and validates the leaf-sizing policy a
// buffer.Tree is built with.
package bufconfig

import "github.com/alexdima/edcore-sub000/buffer"

// PolicyFile is the on-disk shape of a leaf-sizing policy, in either JSON
// or YAML. Zero fields fall back to buffer.DefaultPolicy's corresponding
// value, except minLeafLength, which falls back to half of the resulting
// idealLeafLength (the same ratio DefaultPolicy uses).
type PolicyFile struct {
	IdealLeafLength int `json:"idealLeafLength" yaml:"idealLeafLength"`
	MaxLeafLength   int `json:"maxLeafLength" yaml:"maxLeafLength"`
	MinLeafLength   int `json:"minLeafLength" yaml:"minLeafLength"`
}

// ToPolicy converts a PolicyFile to a buffer.Policy, filling in defaults
// for any zero field.
func (f PolicyFile) ToPolicy() buffer.Policy {
	d := buffer.DefaultPolicy()
	p := buffer.Policy{
		IdealLeafLength: f.IdealLeafLength,
		MaxLeafLength:   f.MaxLeafLength,
		MinLeafLength:   f.MinLeafLength,
	}
	if p.IdealLeafLength == 0 {
		p.IdealLeafLength = d.IdealLeafLength
	}
	if p.MaxLeafLength == 0 {
		p.MaxLeafLength = d.MaxLeafLength
	}
	if p.MinLeafLength == 0 {
		p.MinLeafLength = p.IdealLeafLength / 2
	}
	return p
}

// FromPolicy converts a buffer.Policy back to its on-disk form.
func FromPolicy(p buffer.Policy) PolicyFile {
	return PolicyFile{
		IdealLeafLength: p.IdealLeafLength,
		MaxLeafLength:   p.MaxLeafLength,
		MinLeafLength:   p.MinLeafLength,
	}
}
