package model

import (
	"fmt"
	"slices"
)

// TypeKind classifies a field's type for nilability and equality decisions.
type TypeKind int

const (
	KindValue     TypeKind = iota // comparable value type, == works
	KindNilable                   // pointer, interface, chan: comparable and nil-bearing
	KindDeepEqual                 // slice, map, func: needs reflect.DeepEqual, nil-bearing
)

// Nilable reports whether the kind admits a nil value.
func (k TypeKind) Nilable() bool { return k == KindNilable || k == KindDeepEqual }

// String returns the kind's name.
func (k TypeKind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindNilable:
		return "nilable"
	case KindDeepEqual:
		return "deep-equal"
	default:
		return "unknown"
	}
}

// AnnotationTarget says where a forwarded annotation lands.
type AnnotationTarget int

const (
	TargetMember AnnotationTarget = iota // the generated getter/setter pair as a whole
	TargetGetter
	TargetSetter
)

// String returns the target's directive spelling.
func (t AnnotationTarget) String() string {
	switch t {
	case TargetGetter:
		return "getter"
	case TargetSetter:
		return "setter"
	default:
		return "member"
	}
}

// ForwardedAnnotation is a value-comparable snapshot of an annotation that
// moves from the source field onto a generated member or one of its
// accessors.
type ForwardedAnnotation struct {
	Target  AnnotationTarget `json:"target"`
	Payload string           `json:"payload"` // verbatim directive or tag text
}

// CommandRef names a command-shaped member a generated setter notifies.
type CommandRef struct {
	Name     string `json:"name"`
	IsMethod bool   `json:"is_method"` // accessor call vs direct field read
}

// PropertyRecord is the validated, value-comparable snapshot of one
// candidate declaration: everything the emitter needs to synthesize the
// accessor pair, and everything the cache needs to decide the candidate is
// unchanged. Records are created fresh each pass and compared structurally.
type PropertyRecord struct {
	Owner        TypeDescriptor `json:"owner"`
	FieldName    string         `json:"field_name"`
	PropertyName string         `json:"property_name"` // generated accessor base name
	TypeExpr     string         `json:"type_expr"`     // field type as it appears in the owning package
	TypeKind     TypeKind       `json:"type_kind"`
	Imports      []string       `json:"imports,omitempty"` // packages the type expression needs

	AlsoNotify     []string     `json:"also_notify,omitempty"`
	NotifyCommands []CommandRef `json:"notify_commands,omitempty"`

	Broadcast        bool   `json:"broadcast"`
	Validated        bool   `json:"validated"`
	ReferencesOld    bool   `json:"references_old"` // two-parameter hook exists on the owner
	HasChangingHook  bool   `json:"has_changing_hook"`
	HasChangedHook   bool   `json:"has_changed_hook"`
	HasChangingHook2 bool   `json:"has_changing_hook2"`
	HasChangedHook2  bool   `json:"has_changed_hook2"`
	ValidationRules  string `json:"validation_rules,omitempty"`

	Forwarded []ForwardedAnnotation `json:"forwarded,omitempty"`
}

// Nilable reports whether the generated member's type can hold nil.
func (r PropertyRecord) Nilable() bool { return r.TypeKind.Nilable() }

// Equal reports structural equality with o.
func (r PropertyRecord) Equal(o PropertyRecord) bool {
	return r.Owner.Equal(o.Owner) &&
		r.FieldName == o.FieldName &&
		r.PropertyName == o.PropertyName &&
		r.TypeExpr == o.TypeExpr &&
		r.TypeKind == o.TypeKind &&
		slices.Equal(r.Imports, o.Imports) &&
		slices.Equal(r.AlsoNotify, o.AlsoNotify) &&
		slices.Equal(r.NotifyCommands, o.NotifyCommands) &&
		r.Broadcast == o.Broadcast &&
		r.Validated == o.Validated &&
		r.ReferencesOld == o.ReferencesOld &&
		r.HasChangingHook == o.HasChangingHook &&
		r.HasChangedHook == o.HasChangedHook &&
		r.HasChangingHook2 == o.HasChangingHook2 &&
		r.HasChangedHook2 == o.HasChangedHook2 &&
		r.ValidationRules == o.ValidationRules &&
		slices.Equal(r.Forwarded, o.Forwarded)
}

// Hash returns a stable structural digest of the record. Equal records hash
// equal; the incremental cache uses the digest as its key.
func (r PropertyRecord) Hash() string {
	parts := make([]string, 0, 24)
	r.Owner.hashInto(&parts)
	parts = append(parts,
		r.FieldName,
		r.PropertyName,
		r.TypeExpr,
		r.TypeKind.String(),
		joinQuoted(r.Imports),
		joinQuoted(r.AlsoNotify),
	)
	for _, c := range r.NotifyCommands {
		parts = append(parts, fmt.Sprintf("cmd:%s:%t", c.Name, c.IsMethod))
	}
	parts = append(parts, fmt.Sprintf("%t:%t:%t:%t:%t:%t:%t",
		r.Broadcast, r.Validated, r.ReferencesOld,
		r.HasChangingHook, r.HasChangedHook, r.HasChangingHook2, r.HasChangedHook2))
	parts = append(parts, r.ValidationRules)
	for _, f := range r.Forwarded {
		parts = append(parts, fmt.Sprintf("fwd:%s:%s", f.Target, f.Payload))
	}
	return hashParts(parts)
}

// HashRecords digests an ordered record set, used to decide whether a whole
// synthesis unit changed between passes.
func HashRecords(records []PropertyRecord) string {
	parts := make([]string, 0, len(records))
	for _, r := range records {
		parts = append(parts, r.Hash())
	}
	return hashParts(parts)
}
