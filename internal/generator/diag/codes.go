package diag

import "fmt"

// Code is a stable diagnostic code (BCN001-BCN013).
type Code string

const (
	// CodeInvalidContainingType: the owning type lacks the change-notification
	// infrastructure the generated member calls into.
	CodeInvalidContainingType Code = "BCN001"
	// CodeNameCollision: the generated name equals the source field name.
	// Terminal for its candidate.
	CodeNameCollision Code = "BCN002"
	// CodeInvalidGeneratedMember: the generated name/type combination would
	// shadow runtime machinery.
	CodeInvalidGeneratedMember Code = "BCN003"
	// CodeInvalidDependentTarget: an alsoNotify target does not resolve.
	CodeInvalidDependentTarget Code = "BCN004"
	// CodeInvalidDependentCommandTarget: an alsoNotifyCommand target is
	// missing or not command-shaped.
	CodeInvalidDependentCommandTarget Code = "BCN005"
	// CodeRedundantTypeLevelFlag: a field-level flag repeats a type-level one.
	CodeRedundantTypeLevelFlag Code = "BCN006"
	// CodeInvalidTypeLevelFlagTarget: a field-level flag on a type that lacks
	// the base the flag requires.
	CodeInvalidTypeLevelFlagTarget Code = "BCN007"
	// CodeMissingValidationBase: validated requested without ValidatedObject.
	CodeMissingValidationBase Code = "BCN008"
	// CodeMissingValidationRules: validated requested but the field carries
	// no validate tag.
	CodeMissingValidationRules Code = "BCN009"
	// CodeInvalidForwardedAnnotation: a forward directive names an unknown
	// target.
	CodeInvalidForwardedAnnotation Code = "BCN010"
	// CodeInvalidForwardedAnnotationExpression: a forward directive payload
	// does not parse.
	CodeInvalidForwardedAnnotationExpression Code = "BCN011"
	// CodeMalformedDirective: a beacon directive or tag does not parse.
	CodeMalformedDirective Code = "BCN012"
	// CodeDuplicateGeneratedName: two fields on the same type derive the same
	// accessor name. Terminal for the later candidate.
	CodeDuplicateGeneratedName Code = "BCN013"
)

// NewInvalidContainingType reports a candidate whose owning type cannot host
// generated accessors.
func NewInvalidContainingType(loc Location, typeName string) Diagnostic {
	return Diagnostic{
		Code:     CodeInvalidContainingType,
		Severity: Error,
		Message: fmt.Sprintf(
			"type %s does not provide change notification: its fields cannot have observable properties",
			typeName),
		Location: loc,
	}.WithSuggestion("embed observable.Object (or add //beacon:observable to the type)")
}

// NewNameCollision reports a generated name equal to its field name. This is
// terminal: no further diagnostics are produced for the candidate because
// they would only restate the same root cause.
func NewNameCollision(loc Location, fieldName string) Diagnostic {
	return Diagnostic{
		Code:     CodeNameCollision,
		Severity: Error,
		Message: fmt.Sprintf(
			"field %q would generate a property with the same name; accessor and field cannot share a name",
			fieldName),
		Location: loc,
	}.WithSuggestion("rename the field to an unexported form (e.g. lowerCamel) or set name= on the directive")
}

// NewInvalidGeneratedMember reports a reserved name/type combination.
func NewInvalidGeneratedMember(loc Location, propertyName, typeExpr string) Diagnostic {
	return Diagnostic{
		Code:     CodeInvalidGeneratedMember,
		Severity: Error,
		Message: fmt.Sprintf(
			"cannot generate property %s of type %s: it would shadow the runtime's notification machinery",
			propertyName, typeExpr),
		Location: loc,
	}
}

// NewInvalidDependentTarget reports an unresolvable alsoNotify target.
// Non-terminal: synthesis of the rest of the candidate proceeds.
func NewInvalidDependentTarget(loc Location, target, owner string) Diagnostic {
	return Diagnostic{
		Code:     CodeInvalidDependentTarget,
		Severity: Error,
		Message: fmt.Sprintf(
			"alsoNotify target %q does not exist on %s and no candidate generates it",
			target, owner),
		Location: loc,
	}
}

// NewInvalidDependentCommandTarget reports an alsoNotifyCommand target that
// is missing or not command-shaped.
func NewInvalidDependentCommandTarget(loc Location, target, owner string) Diagnostic {
	return Diagnostic{
		Code:     CodeInvalidDependentCommandTarget,
		Severity: Error,
		Message: fmt.Sprintf(
			"alsoNotifyCommand target %q on %s is not a *observable.Command member",
			target, owner),
		Location: loc,
	}
}

// NewRedundantTypeLevelFlag warns that a field repeats a flag already set at
// the type level.
func NewRedundantTypeLevelFlag(loc Location, flag, typeName string) Diagnostic {
	return Diagnostic{
		Code:     CodeRedundantTypeLevelFlag,
		Severity: Warning,
		Message: fmt.Sprintf(
			"flag %q is already set on type %s; the field-level repetition has no effect",
			flag, typeName),
		Location: loc,
	}.WithSuggestion("drop the field-level flag")
}

// NewInvalidTypeLevelFlagTarget reports a field-level flag on a type lacking
// the base it requires. The flag is ignored.
func NewInvalidTypeLevelFlagTarget(loc Location, flag, typeName, base string) Diagnostic {
	return Diagnostic{
		Code:     CodeInvalidTypeLevelFlagTarget,
		Severity: Error,
		Message: fmt.Sprintf(
			"flag %q requires %s to embed %s",
			flag, typeName, base),
		Location: loc,
	}
}

// NewMissingValidationBase reports validated without ValidatedObject.
func NewMissingValidationBase(loc Location, typeName string) Diagnostic {
	return Diagnostic{
		Code:     CodeMissingValidationBase,
		Severity: Error,
		Message: fmt.Sprintf(
			"validated requires %s to embed observable.ValidatedObject",
			typeName),
		Location: loc,
	}
}

// NewMissingValidationRules reports validated on a field without rules.
func NewMissingValidationRules(loc Location, fieldName string) Diagnostic {
	return Diagnostic{
		Code:     CodeMissingValidationRules,
		Severity: Error,
		Message: fmt.Sprintf(
			"field %q is marked validated but carries no validate:\"...\" tag",
			fieldName),
		Location: loc,
	}
}

// NewInvalidForwardedAnnotation reports a forward directive whose target is
// not member, getter, or setter.
func NewInvalidForwardedAnnotation(loc Location, target string) Diagnostic {
	return Diagnostic{
		Code:     CodeInvalidForwardedAnnotation,
		Severity: Error,
		Message: fmt.Sprintf(
			"forward target %q is not recognized (want member, getter, or setter)",
			target),
		Location: loc,
	}
}

// NewInvalidForwardedAnnotationExpression reports an unparsable forward
// payload.
func NewInvalidForwardedAnnotationExpression(loc Location, payload string) Diagnostic {
	return Diagnostic{
		Code:     CodeInvalidForwardedAnnotationExpression,
		Severity: Error,
		Message:  fmt.Sprintf("cannot parse forwarded annotation %q", payload),
		Location: loc,
	}
}

// NewDuplicateGeneratedName reports a second field deriving an accessor name
// already claimed by an earlier field on the same type. Terminal for its
// candidate: emitting both would declare the same methods twice.
func NewDuplicateGeneratedName(loc Location, propertyName, firstField string) Diagnostic {
	return Diagnostic{
		Code:     CodeDuplicateGeneratedName,
		Severity: Error,
		Message: fmt.Sprintf(
			"property %s is already generated from field %q; two fields cannot share an accessor name",
			propertyName, firstField),
		Location: loc,
	}.WithSuggestion("set name= on one of the fields")
}

// NewMalformedDirective reports a beacon directive or tag whose arguments do
// not parse.
func NewMalformedDirective(loc Location, detail string) Diagnostic {
	return Diagnostic{
		Code:     CodeMalformedDirective,
		Severity: Error,
		Message:  fmt.Sprintf("malformed beacon directive: %s", detail),
		Location: loc,
	}
}
