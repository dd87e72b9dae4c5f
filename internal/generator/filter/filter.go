// Package filter implements the syntactic pre-filter of the beacon pipeline.
// It decides, from the syntax tree alone, whether a struct field is a
// candidate for property synthesis. The filter runs over every declaration
// on every incremental pass, so it must stay cheap: no type checking, no
// directive-option parsing, just shape and marker-presence checks.
package filter

import (
	"go/ast"
	"go/token"
	"reflect"
	"strings"
)

// SyntaxVersion gates which candidate forms are recognized. The legacy form
// marks fields with //beacon:property directive comments; the tag form
// additionally accepts a beacon:"..." struct tag.
type SyntaxVersion int

const (
	SyntaxLegacy SyntaxVersion = iota
	SyntaxTag
)

// Form records which marker made a field a candidate.
type Form int

const (
	FormDirective Form = iota
	FormTag
)

// Directive prefixes recognized on fields and types.
const (
	DirectiveProperty   = "beacon:property"
	DirectiveObservable = "beacon:observable"
	DirectiveForward    = "beacon:forward"
	TagKey              = "beacon"
)

// Candidate is a field that passed the syntactic pre-filter, together with
// the syntax nodes the extractor needs to resolve it.
type Candidate struct {
	GenDecl  *ast.GenDecl
	TypeSpec *ast.TypeSpec
	Struct   *ast.StructType
	Field    *ast.Field
	Form     Form
	Pos      token.Pos
}

// FindCandidates scans one file for candidate fields under the given syntax
// version. Only package-scope struct declarations are considered.
func FindCandidates(file *ast.File, version SyntaxVersion) []Candidate {
	var out []Candidate

	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok || ts.Assign.IsValid() { // type aliases cannot own methods
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok || st.Fields == nil {
				continue
			}
			for _, f := range st.Fields.List {
				if form, ok := Eligible(f, version); ok {
					out = append(out, Candidate{
						GenDecl:  gd,
						TypeSpec: ts,
						Struct:   st,
						Field:    f,
						Form:     form,
						Pos:      f.Pos(),
					})
				}
			}
		}
	}
	return out
}

// Eligible reports whether a struct field is structurally a candidate:
// exactly one unexported, non-blank name, and a property marker in the
// forms the syntax version allows. Embedded fields and multi-name field
// lists are never candidates.
func Eligible(f *ast.Field, version SyntaxVersion) (Form, bool) {
	if len(f.Names) != 1 {
		return 0, false
	}
	name := f.Names[0].Name
	if name == "_" || ast.IsExported(name) {
		return 0, false
	}

	if hasDirective(f.Doc, DirectiveProperty) {
		return FormDirective, true
	}
	if version >= SyntaxTag && hasTag(f) {
		return FormTag, true
	}
	return 0, false
}

// HasTypeMarker reports whether the type declaration carries the observable
// marker, on the TypeSpec or on its enclosing GenDecl doc.
func HasTypeMarker(gd *ast.GenDecl, ts *ast.TypeSpec) bool {
	return hasDirective(ts.Doc, DirectiveObservable) ||
		(gd != nil && hasDirective(gd.Doc, DirectiveObservable))
}

// FieldDirectives returns the raw beacon directive lines on a field's doc
// comment, markers stripped of the leading "//".
func FieldDirectives(f *ast.Field) []string {
	return directiveLines(f.Doc)
}

// TypeDirectives returns the raw beacon directive lines on a type
// declaration, combining GenDecl and TypeSpec docs.
func TypeDirectives(gd *ast.GenDecl, ts *ast.TypeSpec) []string {
	var out []string
	if gd != nil {
		out = append(out, directiveLines(gd.Doc)...)
	}
	out = append(out, directiveLines(ts.Doc)...)
	return out
}

// FieldTag returns the beacon struct tag value and whether it is present.
func FieldTag(f *ast.Field) (string, bool) {
	if f.Tag == nil {
		return "", false
	}
	tag := reflect.StructTag(strings.Trim(f.Tag.Value, "`"))
	v, ok := tag.Lookup(TagKey)
	return v, ok
}

// ValidateTag returns the validate struct tag value, used by the extractor
// when the validated flag is set.
func ValidateTag(f *ast.Field) string {
	if f.Tag == nil {
		return ""
	}
	tag := reflect.StructTag(strings.Trim(f.Tag.Value, "`"))
	return tag.Get("validate")
}

func hasTag(f *ast.Field) bool {
	_, ok := FieldTag(f)
	return ok
}

func hasDirective(cg *ast.CommentGroup, directive string) bool {
	if cg == nil {
		return false
	}
	for _, c := range cg.List {
		if text, ok := strings.CutPrefix(c.Text, "//"); ok {
			if text == directive || strings.HasPrefix(text, directive+" ") {
				return true
			}
		}
	}
	return false
}

func directiveLines(cg *ast.CommentGroup) []string {
	if cg == nil {
		return nil
	}
	var out []string
	for _, c := range cg.List {
		text, ok := strings.CutPrefix(c.Text, "//")
		if !ok {
			continue
		}
		if strings.HasPrefix(text, "beacon:") {
			out = append(out, text)
		}
	}
	return out
}
