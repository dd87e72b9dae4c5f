package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/beacon-tools/beacon/internal/generator/diag"
	"github.com/beacon-tools/beacon/internal/generator/filter"
	"github.com/beacon-tools/beacon/internal/generator/model"
)

func observableFacts(name string) *TypeFacts {
	return &TypeFacts{
		Descriptor: model.TypeDescriptor{
			PkgPath: "example.com/app/views",
			PkgName: "views",
			Name:    name,
		},
		HasNotifier: true,
	}
}

func candidate(field, typeExpr string, directives ...string) CandidateFacts {
	return CandidateFacts{
		FieldName:  field,
		TypeExpr:   typeExpr,
		TypeKind:   model.KindValue,
		Form:       filter.FormDirective,
		Directives: directives,
		Location:   diag.Location{File: "views.go", Line: 10},
	}
}

func codes(ds []diag.Diagnostic) []diag.Code {
	out := make([]diag.Code, len(ds))
	for i, d := range ds {
		out[i] = d.Code
	}
	return out
}

func hasCode(ds []diag.Diagnostic, c diag.Code) bool {
	for _, d := range ds {
		if d.Code == c {
			return true
		}
	}
	return false
}

func TestExtractBasicCandidate(t *testing.T) {
	tf := observableFacts("Person")
	cands := []CandidateFacts{candidate("firstName", "string", "beacon:property")}

	records, diags, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", codes(diags))
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.PropertyName != "FirstName" {
		t.Errorf("derived name = %q, want FirstName", rec.PropertyName)
	}
	if rec.FieldName != "firstName" || rec.TypeExpr != "string" {
		t.Errorf("record does not carry source facts: %+v", rec)
	}
}

func TestExtractExplicitName(t *testing.T) {
	tf := observableFacts("Person")
	cands := []CandidateFacts{candidate("fname", "string", "beacon:property name=FullName")}

	records, _, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatal(err)
	}
	if records[0].PropertyName != "FullName" {
		t.Errorf("name = %q, want FullName", records[0].PropertyName)
	}
}

func TestExtractInitialisms(t *testing.T) {
	tf := observableFacts("Session")
	cands := []CandidateFacts{
		candidate("userID", "int64", "beacon:property"),
		candidate("apiURL", "string", "beacon:property"),
	}

	records, _, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatal(err)
	}
	if records[0].PropertyName != "UserID" {
		t.Errorf("userID -> %q, want UserID", records[0].PropertyName)
	}
	if records[1].PropertyName != "APIURL" {
		t.Errorf("apiURL -> %q, want APIURL", records[1].PropertyName)
	}
}

// Running extraction twice over identical facts must yield structurally
// equal records with identical hashes; the incremental cache depends on it.
func TestExtractDeterministic(t *testing.T) {
	tf := observableFacts("Person")
	tf.Methods = []MethodFacts{{Name: "OnNameChangedFrom", Params: 2}}
	cands := []CandidateFacts{
		candidate("name", "string", "beacon:property alsoNotify=Greeting"),
		candidate("greeting", "string", "beacon:property name=Greeting"),
	}

	first, _, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatalf("record counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Errorf("record %d not equal across passes", i)
		}
		if first[i].Hash() != second[i].Hash() {
			t.Errorf("record %d hash differs across passes", i)
		}
	}
	if model.HashRecords(first) != model.HashRecords(second) {
		t.Error("record set hash differs across passes")
	}
}

func TestExtractMissingNotifierBase(t *testing.T) {
	tf := observableFacts("Plain")
	tf.HasNotifier = false
	cands := []CandidateFacts{candidate("name", "string", "beacon:property")}

	records, diags, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
	if !hasCode(diags, diag.CodeInvalidContainingType) {
		t.Errorf("expected BCN001, got %v", codes(diags))
	}
}

// A name collision is terminal for its candidate: exactly one diagnostic,
// no record, and no downstream complaints about the same candidate. Other
// candidates of the same type are unaffected.
func TestExtractNameCollisionIsTerminal(t *testing.T) {
	tf := observableFacts("Person")
	cands := []CandidateFacts{
		// Explicit name equal to the field name, plus a broken forward that
		// must never be reported because the candidate stops at the collision.
		candidate("Name", "string", "beacon:property name=Name", "beacon:forward bogus x"),
		candidate("age", "int", "beacon:property"),
	}

	records, diags, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatal(err)
	}
	if len(diags) != 1 || diags[0].Code != diag.CodeNameCollision {
		t.Fatalf("expected exactly one BCN002, got %v", codes(diags))
	}
	if len(records) != 1 || records[0].PropertyName != "Age" {
		t.Fatalf("sibling candidate should survive, got %d records", len(records))
	}
}

func TestExtractReservedName(t *testing.T) {
	tf := observableFacts("Person")
	cands := []CandidateFacts{candidate("messenger", "string", "beacon:property")}

	records, diags, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 || !hasCode(diags, diag.CodeInvalidGeneratedMember) {
		t.Errorf("expected BCN003 and no record, got %v, %d records", codes(diags), len(records))
	}
}

func TestExtractExistingMemberCollision(t *testing.T) {
	tf := observableFacts("Person")
	tf.Members = []MemberFacts{{Name: "Age", Kind: MemberMethod}}
	cands := []CandidateFacts{candidate("age", "int", "beacon:property")}

	_, diags, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatal(err)
	}
	if !hasCode(diags, diag.CodeInvalidGeneratedMember) {
		t.Errorf("expected BCN003, got %v", codes(diags))
	}
}

// Two fields that derive the same accessor name must not both synthesize:
// the emitted file would declare the same methods twice. The first field
// keeps the name, the later one is rejected.
func TestExtractSiblingGeneratedNameCollision(t *testing.T) {
	tf := observableFacts("Person")
	cands := []CandidateFacts{
		candidate("userId", "string", "beacon:property"),
		candidate("userID", "string", "beacon:property"),
	}

	records, diags, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].FieldName != "userId" || records[0].PropertyName != "UserID" {
		t.Errorf("first field must keep the name: %+v", records[0])
	}
	if !hasCode(diags, diag.CodeDuplicateGeneratedName) {
		t.Errorf("expected BCN013, got %v", codes(diags))
	}
}

// An explicit name= colliding with a derived sibling name is caught the same
// way, regardless of which form comes first in the struct.
func TestExtractExplicitNameCollidesWithSibling(t *testing.T) {
	tf := observableFacts("Person")
	cands := []CandidateFacts{
		candidate("firstName", "string", "beacon:property"),
		candidate("fname", "string", "beacon:property name=FirstName"),
	}

	records, diags, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].FieldName != "firstName" {
		t.Fatalf("expected only firstName to synthesize, got %d records", len(records))
	}
	if !hasCode(diags, diag.CodeDuplicateGeneratedName) {
		t.Errorf("expected BCN013, got %v", codes(diags))
	}
}

// Dependent targets resolve against members that will exist only after
// synthesis: another candidate's generated accessor counts.
func TestExtractDependentResolvesToSibling(t *testing.T) {
	tf := observableFacts("Person")
	cands := []CandidateFacts{
		candidate("firstName", "string", "beacon:property alsoNotify=FullName"),
		candidate("fullName", "string", "beacon:property"),
	}

	records, diags, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatal(err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", codes(diags))
	}
	if len(records[0].AlsoNotify) != 1 || records[0].AlsoNotify[0] != "FullName" {
		t.Errorf("alsoNotify = %v", records[0].AlsoNotify)
	}
}

// An unresolvable dependent target is diagnosed but does not block the
// record; the notification is string-keyed and harmless at runtime.
func TestExtractDependentUnresolvedStillSynthesizes(t *testing.T) {
	tf := observableFacts("Person")
	cands := []CandidateFacts{
		candidate("firstName", "string", "beacon:property alsoNotify=NoSuchThing"),
	}

	records, diags, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatal(err)
	}
	if !hasCode(diags, diag.CodeInvalidDependentTarget) {
		t.Fatalf("expected BCN004, got %v", codes(diags))
	}
	if len(records) != 1 {
		t.Fatalf("record should still be produced, got %d", len(records))
	}
	if len(records[0].AlsoNotify) != 1 {
		t.Errorf("target should be kept in the record: %v", records[0].AlsoNotify)
	}
}

func TestExtractCommandTargets(t *testing.T) {
	tf := observableFacts("Form")
	tf.Members = []MemberFacts{
		{Name: "SubmitCommand", Kind: MemberMethod, IsCommand: true},
		{Name: "notACommand", Kind: MemberField, IsCommand: false},
	}
	cands := []CandidateFacts{
		candidate("email", "string",
			"beacon:property alsoNotifyCommand=SubmitCommand,notACommand,Missing"),
	}

	records, diags, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatal(err)
	}
	rec := records[0]
	if len(rec.NotifyCommands) != 1 || rec.NotifyCommands[0].Name != "SubmitCommand" {
		t.Fatalf("commands = %v", rec.NotifyCommands)
	}
	if !rec.NotifyCommands[0].IsMethod {
		t.Error("method-shaped command should be marked IsMethod")
	}
	var count int
	for _, d := range diags {
		if d.Code == diag.CodeInvalidDependentCommandTarget {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected BCN005 for notACommand and Missing, got %v", codes(diags))
	}
}

func TestExtractCommandResolvesToSiblingCandidate(t *testing.T) {
	tf := observableFacts("Form")
	cands := []CandidateFacts{
		candidate("email", "string", "beacon:property alsoNotifyCommand=Submit"),
		{
			FieldName:  "submit",
			TypeExpr:   "*observable.Command",
			TypeKind:   model.KindNilable,
			Form:       filter.FormDirective,
			Directives: []string{"beacon:property name=Submit"},
			Location:   diag.Location{File: "views.go", Line: 12},
		},
	}

	records, diags, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatal(err)
	}
	if hasCode(diags, diag.CodeInvalidDependentCommandTarget) {
		t.Fatalf("sibling command candidate should resolve, got %v", codes(diags))
	}
	if len(records[0].NotifyCommands) != 1 || !records[0].NotifyCommands[0].IsMethod {
		t.Errorf("commands = %v", records[0].NotifyCommands)
	}
}

func TestExtractFlagReconciliation(t *testing.T) {
	tf := observableFacts("Person")
	tf.HasBroadcaster = true
	tf.Directives = []string{"beacon:observable broadcast"}
	cands := []CandidateFacts{candidate("name", "string", "beacon:property broadcast")}

	records, diags, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatal(err)
	}
	if !hasCode(diags, diag.CodeRedundantTypeLevelFlag) {
		t.Errorf("expected BCN006 warning, got %v", codes(diags))
	}
	if diag.HasErrors(diags) {
		t.Error("redundancy is a warning, not an error")
	}
	if !records[0].Broadcast {
		t.Error("broadcast should remain in effect")
	}
}

func TestExtractBroadcastWithoutRecipient(t *testing.T) {
	tf := observableFacts("Person")
	cands := []CandidateFacts{candidate("name", "string", "beacon:property broadcast")}

	records, diags, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatal(err)
	}
	if !hasCode(diags, diag.CodeInvalidTypeLevelFlagTarget) {
		t.Errorf("expected BCN007, got %v", codes(diags))
	}
	if records[0].Broadcast {
		t.Error("broadcast should be dropped on an unsupported owner")
	}
}

func TestExtractTypeLevelFlagAppliesToAll(t *testing.T) {
	tf := observableFacts("Person")
	tf.HasBroadcaster = true
	tf.Directives = []string{"beacon:observable broadcast"}
	cands := []CandidateFacts{
		candidate("name", "string", "beacon:property"),
		candidate("age", "int", "beacon:property"),
	}

	records, diags, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatal(err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", codes(diags))
	}
	for _, r := range records {
		if !r.Broadcast {
			t.Errorf("%s: type-level broadcast should apply", r.PropertyName)
		}
	}
}

func TestExtractValidation(t *testing.T) {
	tf := observableFacts("Form")
	tf.HasValidator = true
	c := candidate("email", "string", "beacon:property validated")
	c.ValidateRules = "required,email"

	records, diags, err := New().ExtractType(context.Background(), tf, []CandidateFacts{c})
	if err != nil {
		t.Fatal(err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", codes(diags))
	}
	if !records[0].Validated || records[0].ValidationRules != "required,email" {
		t.Errorf("record = %+v", records[0])
	}
}

func TestExtractValidationWithoutBase(t *testing.T) {
	tf := observableFacts("Form")
	c := candidate("email", "string", "beacon:property validated")
	c.ValidateRules = "required"

	records, diags, err := New().ExtractType(context.Background(), tf, []CandidateFacts{c})
	if err != nil {
		t.Fatal(err)
	}
	if !hasCode(diags, diag.CodeMissingValidationBase) {
		t.Errorf("expected BCN008, got %v", codes(diags))
	}
	if records[0].Validated {
		t.Error("validated should be dropped without the base")
	}
}

func TestExtractValidationWithoutRules(t *testing.T) {
	tf := observableFacts("Form")
	tf.HasValidator = true
	cands := []CandidateFacts{candidate("email", "string", "beacon:property validated")}

	records, diags, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatal(err)
	}
	if !hasCode(diags, diag.CodeMissingValidationRules) {
		t.Errorf("expected BCN009, got %v", codes(diags))
	}
	if records[0].Validated {
		t.Error("validated should be dropped without rules")
	}
}

func TestExtractForwardedAnnotations(t *testing.T) {
	tf := observableFacts("Person")
	cands := []CandidateFacts{candidate("name", "string",
		"beacon:property",
		`beacon:forward getter json:"name"`,
		"beacon:forward member //go:generate true",
	)}

	records, diags, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatal(err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", codes(diags))
	}
	fwd := records[0].Forwarded
	if len(fwd) != 2 {
		t.Fatalf("forwarded = %v", fwd)
	}
	if fwd[0].Target != model.TargetGetter || fwd[0].Payload != `json:"name"` {
		t.Errorf("first forward = %+v", fwd[0])
	}
	if fwd[1].Target != model.TargetMember {
		t.Errorf("second forward = %+v", fwd[1])
	}
}

func TestExtractForwardBadTarget(t *testing.T) {
	tf := observableFacts("Person")
	cands := []CandidateFacts{candidate("name", "string",
		"beacon:property",
		`beacon:forward everywhere json:"name"`,
	)}

	records, diags, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatal(err)
	}
	if !hasCode(diags, diag.CodeInvalidForwardedAnnotation) {
		t.Errorf("expected BCN010, got %v", codes(diags))
	}
	if len(records) != 1 || len(records[0].Forwarded) != 0 {
		t.Error("bad forward should be dropped, record kept")
	}
}

func TestExtractForwardBadPayload(t *testing.T) {
	tf := observableFacts("Person")
	cands := []CandidateFacts{candidate("name", "string",
		"beacon:property",
		`beacon:forward getter not a tag or directive`,
	)}

	records, diags, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatal(err)
	}
	if !hasCode(diags, diag.CodeInvalidForwardedAnnotationExpression) {
		t.Errorf("expected BCN011, got %v", codes(diags))
	}
	if len(records[0].Forwarded) != 0 {
		t.Error("unparsable payload should be dropped")
	}
}

func TestExtractMalformedDirective(t *testing.T) {
	tf := observableFacts("Person")
	cands := []CandidateFacts{candidate("name", "string", "beacon:property frobnicate=1")}

	records, diags, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatal(err)
	}
	if !hasCode(diags, diag.CodeMalformedDirective) {
		t.Errorf("expected BCN012, got %v", codes(diags))
	}
	if len(records) != 0 {
		t.Error("malformed directive should not yield a record")
	}
}

func TestExtractHookProbing(t *testing.T) {
	tf := observableFacts("Person")
	tf.Methods = []MethodFacts{
		{Name: "OnNameChanging", Params: 1},
		{Name: "OnNameChangedFrom", Params: 2},
		{Name: "OnNameChanged", Params: 3}, // wrong arity, must not count
	}
	cands := []CandidateFacts{candidate("name", "string", "beacon:property")}

	records, _, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatal(err)
	}
	rec := records[0]
	if !rec.HasChangingHook || rec.HasChangedHook {
		t.Errorf("hook flags = %+v", rec)
	}
	if !rec.HasChangedHook2 || rec.HasChangingHook2 {
		t.Errorf("two-arg hook flags = %+v", rec)
	}
	if !rec.ReferencesOld {
		t.Error("a two-arg hook must set ReferencesOld")
	}
}

func TestExtractTagForm(t *testing.T) {
	tf := observableFacts("Person")
	c := CandidateFacts{
		FieldName: "firstName",
		TypeExpr:  "string",
		TypeKind:  model.KindValue,
		Form:      filter.FormTag,
		Tag:       "name=GivenName,alsoNotify=FullName|Initials",
		Location:  diag.Location{File: "views.go", Line: 4},
	}
	sibling := candidate("fullName", "string", "beacon:property")
	initials := candidate("initials", "string", "beacon:property")

	records, diags, err := New().ExtractType(context.Background(), tf, []CandidateFacts{c, sibling, initials})
	if err != nil {
		t.Fatal(err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", codes(diags))
	}
	rec := records[0]
	if rec.PropertyName != "GivenName" {
		t.Errorf("name = %q", rec.PropertyName)
	}
	if len(rec.AlsoNotify) != 2 {
		t.Errorf("alsoNotify = %v", rec.AlsoNotify)
	}
}

func TestExtractDependentSuggestion(t *testing.T) {
	tf := observableFacts("Person")
	cands := []CandidateFacts{
		candidate("firstName", "string", "beacon:property alsoNotify=FulName"),
		candidate("fullName", "string", "beacon:property name=FullName"),
	}

	_, diags, err := New().ExtractType(context.Background(), tf, cands)
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, d := range diags {
		if d.Code == diag.CodeInvalidDependentTarget {
			found = true
			if d.Suggestion == "" || !strings.Contains(d.Suggestion, "FullName") {
				t.Errorf("expected FullName suggestion, got %q", d.Suggestion)
			}
		}
	}
	if !found {
		t.Fatal("expected BCN004 for the misspelled target")
	}
}

func TestExtractCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tf := observableFacts("Person")
	cands := []CandidateFacts{candidate("name", "string", "beacon:property")}
	_, _, err := New().ExtractType(ctx, tf, cands)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}
