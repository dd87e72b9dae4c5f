package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/beacon-tools/beacon/internal/generator/diag"
	"github.com/beacon-tools/beacon/internal/generator/filter"
	"github.com/beacon-tools/beacon/internal/generator/model"
	"github.com/beacon-tools/beacon/internal/generator/suggest"
	beaconstrings "github.com/beacon-tools/beacon/internal/util/strings"
)

// reservedNames are accessor base names the observable runtime already
// claims on every embedding type. A candidate whose generated name lands
// here would shadow the notification machinery.
var reservedNames = map[string]bool{
	"RaisePropertyChanging":    true,
	"RaisePropertyChanged":     true,
	"AddChangingListener":      true,
	"AddChangedListener":       true,
	"ValidateProperty":         true,
	"HasErrors":                true,
	"Errors":                   true,
	"ClearErrors":              true,
	"AddErrorsChangedListener": true,
	"Messenger":                true,
	"SetMessenger":             true,
}

// payloadPattern accepts the two payload shapes a forwarded annotation may
// carry: a struct tag fragment (key:"value") or a directive comment line.
var payloadPattern = regexp.MustCompile(`^(\w+(-\w+)*:"[^"]*"(\s+\w+(-\w+)*:"[^"]*")*|//\S.*)$`)

// Extractor converts candidate facts into property records. It holds no
// per-pass state; one instance serves the whole pipeline.
type Extractor struct{}

func New() *Extractor { return &Extractor{} }

// ExtractType validates every candidate of one owning type in declaration
// order. Each candidate independently yields either a record or one or more
// diagnostics; a candidate that fails never poisons its siblings. The only
// error returned is context cancellation.
func (e *Extractor) ExtractType(ctx context.Context, tf *TypeFacts, cands []CandidateFacts) ([]model.PropertyRecord, []diag.Diagnostic, error) {
	if len(cands) == 0 {
		return nil, nil, nil
	}

	typeOpts, typeOptsErr := parseTypeDirectives(tf.Directives)

	// Generated names of all sibling candidates, so dependent targets can
	// point at members that will exist only after synthesis. The first field
	// to derive a name claims it; a later field deriving the same name is a
	// collision, caught in extractCandidate.
	siblings := make(map[string]*CandidateFacts, len(cands))
	for i := range cands {
		name, _, err := e.generatedName(&cands[i])
		if err != nil {
			continue
		}
		if _, claimed := siblings[name]; !claimed {
			siblings[name] = &cands[i]
		}
	}

	var records []model.PropertyRecord
	var diags []diag.Diagnostic
	for i := range cands {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		cand := &cands[i]

		if typeOptsErr != nil && i == 0 {
			// Report a malformed type directive once, at the first candidate.
			diags = append(diags, diag.NewMalformedDirective(cand.Location, typeOptsErr.Error()))
		}

		rec, candDiags := e.extractCandidate(tf, typeOpts, cand, siblings)
		diags = append(diags, candDiags...)
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records, diags, nil
}

// extractCandidate runs the ordered validation steps for one candidate.
// Steps one through four are hard failures that stop the candidate; the
// remaining steps accumulate diagnostics while still producing a record.
func (e *Extractor) extractCandidate(tf *TypeFacts, typeOpts typeOptions, cand *CandidateFacts, siblings map[string]*CandidateFacts) (*model.PropertyRecord, []diag.Diagnostic) {
	var diags []diag.Diagnostic

	name, opts, err := e.generatedName(cand)
	if err != nil {
		diags = append(diags, diag.NewMalformedDirective(cand.Location, err.Error()))
		return nil, diags
	}

	// Step 1: the owning type must be able to raise notifications.
	if !tf.HasNotifier {
		diags = append(diags, diag.NewInvalidContainingType(cand.Location, tf.Descriptor.Name))
		return nil, diags
	}

	// Step 2: the generated name must differ from the field name. This is
	// terminal for the candidate; nothing past it is worth reporting.
	if name == cand.FieldName {
		diags = append(diags, diag.NewNameCollision(cand.Location, cand.FieldName))
		return nil, diags
	}

	// Step 3: reserved accessor names would shadow the embedded runtime.
	if reservedNames[name] || tf.HasMember(name) {
		diags = append(diags, diag.NewInvalidGeneratedMember(cand.Location, name, cand.TypeExpr))
		return nil, diags
	}

	// Step 4: a sibling field may already have claimed this accessor name
	// (userId and userID both derive UserID). Emitting both would declare
	// the same methods twice, so the later field loses.
	if first := siblings[name]; first != nil && first != cand {
		diags = append(diags, diag.NewDuplicateGeneratedName(cand.Location, name, first.FieldName))
		return nil, diags
	}

	rec := &model.PropertyRecord{
		Owner:        tf.Descriptor,
		FieldName:    cand.FieldName,
		PropertyName: name,
		TypeExpr:     cand.TypeExpr,
		TypeKind:     cand.TypeKind,
		Imports:      cand.Imports,
	}

	// Step 5: dependent property targets must resolve to an existing member
	// or to a sibling candidate's generated accessor. Unresolved targets are
	// diagnosed but kept; the notification is string-keyed and harmless.
	for _, target := range opts.AlsoNotify {
		if target != name && !tf.HasMember(target) && siblings[target] == nil {
			d := diag.NewInvalidDependentTarget(cand.Location, target, tf.Descriptor.Name)
			if best := suggest.Best(target, knownNames(tf, siblings)); best != "" {
				d = d.WithSuggestion(fmt.Sprintf("did you mean %q?", best))
			}
			diags = append(diags, d)
		}
		rec.AlsoNotify = append(rec.AlsoNotify, target)
	}

	// Step 6: dependent command targets must be command shaped. A member
	// that exists with the wrong shape ends the search for that target.
	for _, target := range opts.AlsoNotifyCommands {
		ref, ok := e.resolveCommand(tf, target, siblings)
		if !ok {
			d := diag.NewInvalidDependentCommandTarget(cand.Location, target, tf.Descriptor.Name)
			if best := suggest.Best(target, commandNames(tf, siblings)); best != "" && best != target {
				d = d.WithSuggestion(fmt.Sprintf("did you mean %q?", best))
			}
			diags = append(diags, d)
			continue
		}
		rec.NotifyCommands = append(rec.NotifyCommands, ref)
	}

	// Step 7: reconcile candidate-level and type-level flags.
	broadcast, validated, flagDiags := e.reconcileFlags(tf, typeOpts, opts, cand)
	diags = append(diags, flagDiags...)
	rec.Broadcast = broadcast
	rec.Validated = validated

	// Step 8 (validation rules) only matters when validation survived step 7.
	if rec.Validated {
		if cand.ValidateRules == "" {
			diags = append(diags, diag.NewMissingValidationRules(cand.Location, cand.FieldName))
			rec.Validated = false
		} else {
			rec.ValidationRules = cand.ValidateRules
		}
	}

	// Step 9: forwarded annotations, in declaration order.
	fwd, fwdDiags := e.forwardedAnnotations(cand)
	diags = append(diags, fwdDiags...)
	rec.Forwarded = fwd

	e.probeHooks(tf, rec)
	return rec, diags
}

// generatedName derives the accessor base name for a candidate and returns
// the parsed options alongside it.
func (e *Extractor) generatedName(cand *CandidateFacts) (string, propertyOptions, error) {
	var opts propertyOptions
	var err error
	switch cand.Form {
	case filter.FormTag:
		opts, err = parsePropertyTag(cand.Tag)
	default:
		for _, line := range cand.Directives {
			if !strings.HasPrefix(line, filter.DirectiveProperty) {
				continue
			}
			opts, err = parsePropertyDirective(line)
			break
		}
	}
	if err != nil {
		return "", opts, fmt.Errorf("beacon:property: %v", err)
	}
	if opts.Name != "" {
		return opts.Name, opts, nil
	}
	return beaconstrings.ToPascalCase(cand.FieldName), opts, nil
}

// resolveCommand finds a command-shaped target among existing members, then
// among sibling candidates whose generated accessor will return a command.
func (e *Extractor) resolveCommand(tf *TypeFacts, target string, siblings map[string]*CandidateFacts) (model.CommandRef, bool) {
	if m, ok := tf.Member(target); ok {
		if !m.IsCommand {
			// Wrong shape wins over a same-named sibling; stop here.
			return model.CommandRef{}, false
		}
		return model.CommandRef{Name: target, IsMethod: m.Kind == MemberMethod}, true
	}
	if sib, ok := siblings[target]; ok && isCommandType(sib.TypeExpr) {
		// The sibling's generated getter will expose the command.
		return model.CommandRef{Name: target, IsMethod: true}, true
	}
	return model.CommandRef{}, false
}

func isCommandType(typeExpr string) bool {
	return typeExpr == "*observable.Command"
}

// knownNames collects every name a dependent target could legally resolve
// to, for suggestion purposes.
func knownNames(tf *TypeFacts, siblings map[string]*CandidateFacts) []string {
	names := make([]string, 0, len(tf.Members)+len(siblings))
	for _, m := range tf.Members {
		names = append(names, m.Name)
	}
	for name := range siblings {
		names = append(names, name)
	}
	return names
}

// commandNames collects only command-shaped names.
func commandNames(tf *TypeFacts, siblings map[string]*CandidateFacts) []string {
	var names []string
	for _, m := range tf.Members {
		if m.IsCommand {
			names = append(names, m.Name)
		}
	}
	for name, sib := range siblings {
		if isCommandType(sib.TypeExpr) {
			names = append(names, name)
		}
	}
	return names
}

// reconcileFlags merges broadcast and validated settings from both levels,
// diagnosing redundancy and unsupported owning types.
func (e *Extractor) reconcileFlags(tf *TypeFacts, typeOpts typeOptions, opts propertyOptions, cand *CandidateFacts) (broadcast, validated bool, diags []diag.Diagnostic) {
	if opts.Broadcast && typeOpts.Broadcast {
		diags = append(diags, diag.NewRedundantTypeLevelFlag(cand.Location, "broadcast", tf.Descriptor.Name))
	}
	if opts.Validated && typeOpts.Validated {
		diags = append(diags, diag.NewRedundantTypeLevelFlag(cand.Location, "validated", tf.Descriptor.Name))
	}

	broadcast = opts.Broadcast || typeOpts.Broadcast
	if broadcast && !tf.HasBroadcaster {
		diags = append(diags, diag.NewInvalidTypeLevelFlagTarget(cand.Location, "broadcast", tf.Descriptor.Name, "observable.Recipient"))
		broadcast = false
	}

	validated = opts.Validated || typeOpts.Validated
	if validated && !tf.HasValidator {
		diags = append(diags, diag.NewMissingValidationBase(cand.Location, tf.Descriptor.Name))
		validated = false
	}
	return broadcast, validated, diags
}

// forwardedAnnotations parses every beacon:forward line on the candidate.
func (e *Extractor) forwardedAnnotations(cand *CandidateFacts) ([]model.ForwardedAnnotation, []diag.Diagnostic) {
	var fwd []model.ForwardedAnnotation
	var diags []diag.Diagnostic
	for _, line := range cand.Directives {
		if !strings.HasPrefix(line, filter.DirectiveForward) {
			continue
		}
		spec, ok := parseForwardDirective(line)
		if !ok {
			diags = append(diags, diag.NewInvalidForwardedAnnotation(cand.Location, ""))
			continue
		}
		var target model.AnnotationTarget
		switch spec.Target {
		case "member":
			target = model.TargetMember
		case "getter":
			target = model.TargetGetter
		case "setter":
			target = model.TargetSetter
		default:
			diags = append(diags, diag.NewInvalidForwardedAnnotation(cand.Location, spec.Target))
			continue
		}
		if spec.Payload == "" || !payloadPattern.MatchString(spec.Payload) {
			diags = append(diags, diag.NewInvalidForwardedAnnotationExpression(cand.Location, spec.Payload))
			continue
		}
		fwd = append(fwd, model.ForwardedAnnotation{Target: target, Payload: spec.Payload})
	}
	return fwd, diags
}

// probeHooks records which optional owner hooks exist, so the emitter calls
// only methods that are actually declared.
func (e *Extractor) probeHooks(tf *TypeFacts, rec *model.PropertyRecord) {
	if n, ok := tf.MethodParams("On" + rec.PropertyName + "Changing"); ok && n == 1 {
		rec.HasChangingHook = true
	}
	if n, ok := tf.MethodParams("On" + rec.PropertyName + "ChangingFrom"); ok && n == 2 {
		rec.HasChangingHook2 = true
	}
	if n, ok := tf.MethodParams("On" + rec.PropertyName + "Changed"); ok && n == 1 {
		rec.HasChangedHook = true
	}
	if n, ok := tf.MethodParams("On" + rec.PropertyName + "ChangedFrom"); ok && n == 2 {
		rec.HasChangedHook2 = true
	}
	rec.ReferencesOld = rec.HasChangingHook2 || rec.HasChangedHook2 || rec.Broadcast
}
