// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package options merges layered option declarations and values by option
// identity. Layers are ordered from least to most specific; later layers win.
package options

import (
	"encoding/json"
	"slices"

	"github.com/olegiv/ocms-render/internal/model"
)

// Value is the resolved state of one option identity.
type Value struct {
	Identity model.OptionIdentity `json:"identity"`
	Value    string               `json:"value"`
	Default  string               `json:"default,omitempty"`
	Set      bool                 `json:"set"`
}

// Effective returns the explicit value, or the declared default when no
// layer set one.
func (v Value) Effective() string {
	if v.Set {
		return v.Value
	}
	return v.Default
}

// Set is an immutable identity -> value map produced by Merge.
// The zero Set is empty and ready to use.
type Set struct {
	values map[model.OptionIdentity]Value
}

// Merge upserts every option of every layer by identity. A layer entry with a
// value replaces any earlier value; a non-empty declared default replaces any
// earlier default. Merge never mutates its input.
func Merge(layers ...[]model.Option) Set {
	values := make(map[model.OptionIdentity]Value)
	for _, layer := range layers {
		for _, o := range layer {
			id := o.Identity()
			v, ok := values[id]
			if !ok {
				v = Value{Identity: id}
			}
			if o.DefaultValue != "" {
				v.Default = o.DefaultValue
			}
			if o.HasValue() {
				v.Value = *o.Value
				v.Set = true
			}
			values[id] = v
		}
	}
	return Set{values: values}
}

// Len returns the number of identities in the set.
func (s Set) Len() int {
	return len(s.values)
}

// Get returns the value stored for an identity.
func (s Set) Get(id model.OptionIdentity) (Value, bool) {
	v, ok := s.values[id]
	return v, ok
}

// Lookup returns the effective value of the first identity, in sorted order,
// with the given key.
func (s Set) Lookup(key string) (string, bool) {
	for _, v := range s.Values() {
		if v.Identity.Key == key {
			return v.Effective(), true
		}
	}
	return "", false
}

// Identities returns all identities in deterministic order.
func (s Set) Identities() []model.OptionIdentity {
	ids := make([]model.OptionIdentity, 0, len(s.values))
	for id := range s.values {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, compareIdentity)
	return ids
}

// Values returns all values ordered by identity.
func (s Set) Values() []Value {
	out := make([]Value, 0, len(s.values))
	for _, id := range s.Identities() {
		out = append(out, s.values[id])
	}
	return out
}

// OfType returns the values whose identity has the given type.
func (s Set) OfType(typ model.OptionType) []Value {
	var out []Value
	for _, v := range s.Values() {
		if v.Identity.Type == typ {
			out = append(out, v)
		}
	}
	return out
}

// Without returns a copy of s minus the excluded identities.
func (s Set) Without(excluded IdentitySet) Set {
	values := make(map[model.OptionIdentity]Value, len(s.values))
	for id, v := range s.values {
		if !excluded.Has(id) {
			values[id] = v
		}
	}
	return Set{values: values}
}

// Union returns a set holding the entries of both sets. Entries of s win on
// identity clashes.
func (s Set) Union(other Set) Set {
	values := make(map[model.OptionIdentity]Value, len(s.values)+len(other.values))
	for id, v := range other.values {
		values[id] = v
	}
	for id, v := range s.values {
		values[id] = v
	}
	return Set{values: values}
}

// Map flattens the set to key -> effective value for template consumption.
// When two identities share a key the one sorting last wins.
func (s Set) Map() map[string]string {
	out := make(map[string]string, len(s.values))
	for _, v := range s.Values() {
		out[v.Identity.Key] = v.Effective()
	}
	return out
}

// MarshalJSON encodes the set as an identity-ordered array so equal sets
// always produce identical bytes.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

func compareIdentity(a, b model.OptionIdentity) int {
	switch {
	case a == b:
		return 0
	case a.Less(b):
		return -1
	default:
		return 1
	}
}
