package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// enumValue is a string flag restricted to a fixed set of values. Invalid
// values are rejected while flags are parsed, before any command runs.
type enumValue struct {
	value   string
	allowed []string
}

var _ pflag.Value = (*enumValue)(nil)

func newEnum(def string, allowed ...string) *enumValue {
	return &enumValue{value: def, allowed: allowed}
}

func (e *enumValue) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	if !slices.Contains(e.allowed, s) {
		return fmt.Errorf("must be one of: %s", strings.Join(e.allowed, ", "))
	}
	e.value = s
	return nil
}

func (e *enumValue) String() string { return e.value }

func (e *enumValue) Type() string { return "string" }

// Usage renders the allowed values for help text, e.g. "(text|json)".
func (e *enumValue) Usage() string {
	return "(" + strings.Join(e.allowed, "|") + ")"
}

// addFormatFlag registers v as the --format/-f flag of cmd.
func addFormatFlag(cmd *cobra.Command, v *enumValue) {
	cmd.Flags().VarP(v, "format", "f", "output format "+v.Usage())
}
