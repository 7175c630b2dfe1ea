// Package verify runs non-fatal validation across every tier of the memory
// manager and aggregates the findings.
//
// Unlike the tiers' Check methods, nothing here terminates the process, so it
// suits diagnostics commands and tests that want the complete picture.
package verify

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/joshuapare/hunkkit/hunk"
)

// Tier names a validator for reporting.
type Tier struct {
	Name      string
	Validator hunk.Validator
}

// TierError attributes a validation failure to a tier.
type TierError struct {
	Tier string
	Err  error
}

func (e *TierError) Error() string { return e.Tier + ": " + e.Err.Error() }

func (e *TierError) Unwrap() error { return e.Err }

// Result is the outcome of validating one tier.
type Result struct {
	Tier string
	Err  error
}

// OK reports whether the tier passed.
func (r Result) OK() bool { return r.Err == nil }

// Run validates every tier in order and reports each outcome.
func Run(tiers ...Tier) []Result {
	out := make([]Result, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, Result{Tier: t.Name, Err: t.Validator.Validate()})
	}
	return out
}

// All validates every tier and returns every failure as one error, or nil.
// Individual failures are *TierError values reachable with errors.As.
func All(tiers ...Tier) error {
	var result *multierror.Error
	for _, r := range Run(tiers...) {
		if r.Err != nil {
			result = multierror.Append(result, &TierError{Tier: r.Tier, Err: r.Err})
		}
	}
	if result == nil {
		return nil
	}
	result.ErrorFormat = listFormat
	return result.ErrorOrNil()
}

func listFormat(errs []error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d tier(s) failed validation:", len(errs))
	for _, err := range errs {
		b.WriteString("\n  ")
		b.WriteString(err.Error())
	}
	return b.String()
}
