package model

import "testing"

func sampleRecord() PropertyRecord {
	return PropertyRecord{
		Owner: TypeDescriptor{
			PkgPath:  "example.com/app/views",
			PkgName:  "views",
			Name:     "Person",
			Exported: true,
		},
		FieldName:    "name",
		PropertyName: "Name",
		TypeExpr:     "string",
		TypeKind:     KindValue,
		AlsoNotify:   []string{"FullName"},
		NotifyCommands: []CommandRef{
			{Name: "saveCommand"},
		},
		Broadcast:       true,
		ValidationRules: "required",
		Forwarded: []ForwardedAnnotation{
			{Target: TargetGetter, Payload: `json:"name"`},
		},
	}
}

func TestRecordEqualityIsStructural(t *testing.T) {
	a := sampleRecord()
	b := sampleRecord()

	if !a.Equal(b) {
		t.Fatal("identically built records must compare equal")
	}
	if a.Hash() != b.Hash() {
		t.Fatal("equal records must hash equal")
	}
}

func TestRecordHashChangesWithContent(t *testing.T) {
	base := sampleRecord()

	variants := []func(*PropertyRecord){
		func(r *PropertyRecord) { r.PropertyName = "DisplayName" },
		func(r *PropertyRecord) { r.TypeExpr = "*string" },
		func(r *PropertyRecord) { r.TypeKind = KindNilable },
		func(r *PropertyRecord) { r.AlsoNotify = nil },
		func(r *PropertyRecord) { r.AlsoNotify = []string{"FullName", "Initials"} },
		func(r *PropertyRecord) { r.NotifyCommands = nil },
		func(r *PropertyRecord) { r.Broadcast = false },
		func(r *PropertyRecord) { r.Validated = true },
		func(r *PropertyRecord) { r.ReferencesOld = true },
		func(r *PropertyRecord) { r.ValidationRules = "required,min=3" },
		func(r *PropertyRecord) { r.Forwarded[0].Target = TargetSetter },
		func(r *PropertyRecord) { r.Owner.Name = "Employee" },
	}

	for i, mutate := range variants {
		v := sampleRecord()
		mutate(&v)
		if base.Equal(v) {
			t.Errorf("variant %d: mutated record compares equal to base", i)
		}
		if base.Hash() == v.Hash() {
			t.Errorf("variant %d: mutated record hashes equal to base", i)
		}
	}
}

func TestHashSeparatorPreventsBoundaryCollisions(t *testing.T) {
	a := sampleRecord()
	b := sampleRecord()
	a.FieldName, a.PropertyName = "ab", "c"
	b.FieldName, b.PropertyName = "a", "bc"

	if a.Hash() == b.Hash() {
		t.Fatal("part boundaries must not collide")
	}
}

func TestTypeDescriptorQualifiedName(t *testing.T) {
	d := TypeDescriptor{PkgPath: "example.com/app", Name: "Person"}
	if got := d.QualifiedName(); got != "example.com/app.Person" {
		t.Errorf("QualifiedName() = %q", got)
	}

	local := TypeDescriptor{Name: "Person"}
	if got := local.QualifiedName(); got != "Person" {
		t.Errorf("QualifiedName() = %q", got)
	}
}

func TestTypeKindNilable(t *testing.T) {
	if KindValue.Nilable() {
		t.Error("value kind reported nilable")
	}
	if !KindNilable.Nilable() || !KindDeepEqual.Nilable() {
		t.Error("nil-bearing kinds reported non-nilable")
	}
}

func TestHashRecordsOrderSensitive(t *testing.T) {
	a := sampleRecord()
	b := sampleRecord()
	b.PropertyName = "Other"
	b.FieldName = "other"

	h1 := HashRecords([]PropertyRecord{a, b})
	h2 := HashRecords([]PropertyRecord{b, a})
	if h1 == h2 {
		t.Fatal("record order must affect the unit hash")
	}
	if h1 != HashRecords([]PropertyRecord{a, b}) {
		t.Fatal("unit hash must be deterministic")
	}
}
