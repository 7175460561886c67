package rule

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind discriminates the closed set of rule variants.
type Kind string

const (
	KindPercentage Kind = "percentage"
	KindOverride   Kind = "override"
	KindHybrid     Kind = "hybrid"
)

// Combinator joins the two sub-rules of a hybrid rule.
type Combinator string

const (
	CombinatorAnd Combinator = "AND"
	CombinatorOr  Combinator = "OR"
)

var (
	// ErrInvalidThreshold is returned when a percentage threshold is outside [1,100].
	ErrInvalidThreshold = errors.New("percentage threshold must be between 1 and 100")

	// ErrInvalidSpec is returned when a rule specification is structurally invalid.
	ErrInvalidSpec = errors.New("invalid rule specification")
)

// Percentage approves once the fraction of approved decisions among all
// snapshotted approvers reaches Threshold, and rejects once the
// threshold becomes mathematically unreachable.
type Percentage struct {
	Threshold int `json:"threshold"`
}

// Override approves the instant any listed approver approves, and
// rejects only once every listed approver has rejected. An empty list
// never finalizes on its own.
type Override struct {
	ApproverIDs []string `json:"approver_ids"`
}

// Spec is the workflow rule as a tagged union. Exactly the fields for
// the selected Kind are populated: Percentage for KindPercentage,
// Override for KindOverride, and all three of Percentage, Override and
// Combinator for KindHybrid.
//
// In storage the spec is a single JSON blob with a "type" discriminator,
// e.g. {"type":"hybrid","combinator":"OR","threshold":60,"approver_ids":["u1"]}.
type Spec struct {
	Kind       Kind
	Percentage *Percentage
	Override   *Override
	Combinator Combinator
}

// specWire is the JSON representation with the type discriminator.
type specWire struct {
	Type        Kind       `json:"type"`
	Threshold   *int       `json:"threshold,omitempty"`
	ApproverIDs []string   `json:"approver_ids,omitempty"`
	Combinator  Combinator `json:"combinator,omitempty"`
}

// MarshalJSON encodes the spec in its discriminated wire form.
func (s Spec) MarshalJSON() ([]byte, error) {
	w := specWire{Type: s.Kind, Combinator: s.Combinator}
	if s.Percentage != nil {
		t := s.Percentage.Threshold
		w.Threshold = &t
	}
	if s.Override != nil {
		w.ApproverIDs = s.Override.ApproverIDs
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the discriminated wire form into the sum type.
func (s *Spec) UnmarshalJSON(data []byte) error {
	var w specWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	out := Spec{Kind: w.Type}
	switch w.Type {
	case KindPercentage:
		if w.Threshold == nil {
			return fmt.Errorf("%w: percentage rule without threshold", ErrInvalidSpec)
		}
		out.Percentage = &Percentage{Threshold: *w.Threshold}
	case KindOverride:
		out.Override = &Override{ApproverIDs: w.ApproverIDs}
	case KindHybrid:
		if w.Threshold == nil {
			return fmt.Errorf("%w: hybrid rule without threshold", ErrInvalidSpec)
		}
		out.Percentage = &Percentage{Threshold: *w.Threshold}
		out.Override = &Override{ApproverIDs: w.ApproverIDs}
		out.Combinator = w.Combinator
	default:
		return fmt.Errorf("%w: unknown rule type %q", ErrInvalidSpec, w.Type)
	}

	if err := out.Validate(); err != nil {
		return err
	}
	*s = out
	return nil
}

// Validate checks the structural invariants of the spec. Threshold
// bounds are enforced here, at workflow load/creation time, so the
// evaluator can assume a well-formed spec.
func (s Spec) Validate() error {
	switch s.Kind {
	case KindPercentage:
		if s.Percentage == nil {
			return fmt.Errorf("%w: percentage rule without parameters", ErrInvalidSpec)
		}
		return validateThreshold(s.Percentage.Threshold)
	case KindOverride:
		if s.Override == nil {
			return fmt.Errorf("%w: override rule without parameters", ErrInvalidSpec)
		}
		return nil
	case KindHybrid:
		if s.Percentage == nil || s.Override == nil {
			return fmt.Errorf("%w: hybrid rule requires both sub-rules", ErrInvalidSpec)
		}
		if s.Combinator != CombinatorAnd && s.Combinator != CombinatorOr {
			return fmt.Errorf("%w: hybrid combinator must be AND or OR, got %q", ErrInvalidSpec, s.Combinator)
		}
		return validateThreshold(s.Percentage.Threshold)
	default:
		return fmt.Errorf("%w: unknown rule kind %q", ErrInvalidSpec, s.Kind)
	}
}

func validateThreshold(threshold int) error {
	if threshold < 1 || threshold > 100 {
		return fmt.Errorf("%w: got %d", ErrInvalidThreshold, threshold)
	}
	return nil
}
