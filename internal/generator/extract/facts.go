// Package extract turns filtered candidate declarations into validated,
// value-comparable property records, or diagnostics when validation fails.
// It consumes semantic facts through plain structs so the pipeline can be
// driven by the real package loader or by tests feeding synthetic facts.
package extract

import (
	"github.com/beacon-tools/beacon/internal/generator/diag"
	"github.com/beacon-tools/beacon/internal/generator/filter"
	"github.com/beacon-tools/beacon/internal/generator/model"
)

// MemberKind distinguishes the two member forms a dependent target can
// resolve to.
type MemberKind int

const (
	MemberField MemberKind = iota
	MemberMethod
)

// MemberFacts describes one existing member of the owning type.
type MemberFacts struct {
	Name      string
	Kind      MemberKind
	IsCommand bool // *observable.Command field, or method returning one
}

// MethodFacts describes a method relevant to hook probing.
type MethodFacts struct {
	Name   string
	Params int
}

// TypeFacts is everything the extractor needs to know about an owning type.
// The loader builds it from go/types; tests build it by hand.
type TypeFacts struct {
	Descriptor model.TypeDescriptor

	// HasNotifier is true when the type embeds observable.Object or its
	// method set otherwise provides the Raise* notification methods.
	HasNotifier bool
	// HasValidator is true when the type embeds observable.ValidatedObject.
	HasValidator bool
	// HasBroadcaster is true when the type embeds observable.Recipient or
	// provides a Messenger() accessor.
	HasBroadcaster bool

	// Directives holds the raw type-level beacon directive lines.
	Directives []string

	Members []MemberFacts
	Methods []MethodFacts
}

// HasMember reports whether the type already declares a member with name.
func (tf *TypeFacts) HasMember(name string) bool {
	for _, m := range tf.Members {
		if m.Name == name {
			return true
		}
	}
	return false
}

// Member returns the member facts for name.
func (tf *TypeFacts) Member(name string) (MemberFacts, bool) {
	for _, m := range tf.Members {
		if m.Name == name {
			return m, true
		}
	}
	return MemberFacts{}, false
}

// MethodParams returns the parameter count of a method, if present.
func (tf *TypeFacts) MethodParams(name string) (int, bool) {
	for _, m := range tf.Methods {
		if m.Name == name {
			return m.Params, true
		}
	}
	return 0, false
}

// CandidateFacts is the semantically resolved view of one filtered field.
type CandidateFacts struct {
	FieldName string
	TypeExpr  string // type as written from the owning package
	TypeKind  model.TypeKind
	Imports   []string // packages TypeExpr references

	Form          filter.Form
	Directives    []string // raw beacon directive lines on the field
	Tag           string   // beacon struct tag value, tag form only
	ValidateRules string   // validate struct tag, verbatim

	Location diag.Location
}
