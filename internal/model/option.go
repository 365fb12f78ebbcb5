// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// OptionType is the value type of an option.
type OptionType string

// Option types
const (
	OptionTypeText          OptionType = "text"
	OptionTypeInteger       OptionType = "integer"
	OptionTypeFloat         OptionType = "float"
	OptionTypeDateTime      OptionType = "datetime"
	OptionTypeBoolean       OptionType = "boolean"
	OptionTypeJavaScriptURL OptionType = "js_url"
	OptionTypeCSSURL        OptionType = "css_url"
	OptionTypeCustom        OptionType = "custom"
)

// OptionIdentity identifies an option across layers. Standard options are
// identified by key and type, custom options by key and custom type
// identifier. Values are comparable with ==.
type OptionIdentity struct {
	Key    string     `json:"key"`
	Type   OptionType `json:"type"`
	Custom string     `json:"custom,omitempty"`
}

// StandardIdentity returns the identity of a built-in typed option.
func StandardIdentity(key string, typ OptionType) OptionIdentity {
	return OptionIdentity{Key: key, Type: typ}
}

// CustomIdentity returns the identity of a custom option.
func CustomIdentity(key, identifier string) OptionIdentity {
	return OptionIdentity{Key: key, Type: OptionTypeCustom, Custom: identifier}
}

// IsCustom reports whether the identity belongs to a custom option.
func (id OptionIdentity) IsCustom() bool {
	return id.Type == OptionTypeCustom
}

func (id OptionIdentity) String() string {
	if id.IsCustom() {
		return id.Key + ":custom:" + id.Custom
	}
	return id.Key + ":" + string(id.Type)
}

// Less orders identities by key, then type, then custom identifier.
func (id OptionIdentity) Less(other OptionIdentity) bool {
	if id.Key != other.Key {
		return id.Key < other.Key
	}
	if id.Type != other.Type {
		return id.Type < other.Type
	}
	return id.Custom < other.Custom
}

// Option is a declared option or a saved option value. Declarations carry a
// DefaultValue, overrides carry a Value.
type Option struct {
	Key              string     `json:"key" yaml:"key"`
	Type             OptionType `json:"type" yaml:"type"`
	CustomIdentifier string     `json:"custom_identifier,omitempty" yaml:"custom,omitempty"`
	Value            *string    `json:"value,omitempty" yaml:"value,omitempty"`
	DefaultValue     string     `json:"default_value,omitempty" yaml:"default,omitempty"`
}

// Identity returns the identity used for override matching.
func (o Option) Identity() OptionIdentity {
	if o.Type == OptionTypeCustom {
		return CustomIdentity(o.Key, o.CustomIdentifier)
	}
	return StandardIdentity(o.Key, o.Type)
}

// HasValue reports whether the option explicitly sets a value.
func (o Option) HasValue() bool {
	return o.Value != nil
}
