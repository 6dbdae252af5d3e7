package uci

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRecordNotFound = errors.New("uci record not found")
	ErrParse          = errors.New("uci parse error")
	ErrInvalidValue   = errors.New("uci value cannot be stored")
)

// Option holds the values of an `option` or `list` entry.
type Option struct {
	Name   string
	Values []string
}

// Value returns the scalar value of the option. Lists are joined by a single
// space, which is how the uci CLI prints them.
func (o *Option) Value() string {
	return strings.Join(o.Values, " ")
}

// List returns the option as a list. A scalar holding several words is
// split on whitespace.
func (o *Option) List() []string {
	return strings.Fields(o.Value())
}

// ParseBool decodes the boolean spellings accepted by uci.
func ParseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "yes", "on", "true", "enabled":
		return true, nil
	case "0", "no", "off", "false", "disabled":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q is not a boolean", ErrParse, value)
}

func StoreBool(value bool) string {
	if value {
		return "1"
	}
	return "0"
}
