// Copyright (c) 2025 The xchexplorer developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cfgutil

// ExplicitString is a string value implementing the flags.Marshaler and
// flags.Unmarshaler interfaces so it may be used as a config struct field.  It
// records whether the value was explicitly set by the flags package, so that a
// default which depends on other options can be told apart from the same
// value given by the user.
type ExplicitString struct {
	Value         string
	explicitlySet bool
}

// NewExplicitString creates a string flag with the provided default value.
func NewExplicitString(defaultValue string) *ExplicitString {
	return &ExplicitString{Value: defaultValue, explicitlySet: false}
}

// ExplicitlySet returns whether the flag was explicitly set through the
// flags.Unmarshaler interface.
func (e *ExplicitString) ExplicitlySet() bool { return e.explicitlySet }

// MarshalFlag implements the flags.Marshaler interface.
func (e *ExplicitString) MarshalFlag() (string, error) { return e.Value, nil }

// UnmarshalFlag implements the flags.Unmarshaler interface.
func (e *ExplicitString) UnmarshalFlag(value string) error {
	e.Value = value
	e.explicitlySet = true
	return nil
}

// URLFlag is an endpoint URL flag.  Values are normalized as they are set
// and whether the user set the flag is recorded.
type URLFlag struct {
	ExplicitString
	defaultScheme string
}

// NewURLFlag creates a URL flag with the provided default value.  Values
// given without a scheme get defaultScheme.
func NewURLFlag(defaultValue, defaultScheme string) *URLFlag {
	return &URLFlag{
		ExplicitString: ExplicitString{Value: defaultValue},
		defaultScheme:  defaultScheme,
	}
}

// UnmarshalFlag implements the flags.Unmarshaler interface.
func (u *URLFlag) UnmarshalFlag(value string) error {
	normalized, err := NormalizeURL(value, u.defaultScheme)
	if err != nil {
		return err
	}
	return u.ExplicitString.UnmarshalFlag(normalized)
}
