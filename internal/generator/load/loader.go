// Package load discovers annotated declarations in Go source and resolves
// them into the semantic facts the extractor validates. It is the only part
// of the pipeline that touches the type checker.
package load

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"github.com/beacon-tools/beacon/internal/generator/diag"
	"github.com/beacon-tools/beacon/internal/generator/extract"
	"github.com/beacon-tools/beacon/internal/generator/filter"
	"github.com/beacon-tools/beacon/internal/generator/model"
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo

// TypeCandidates pairs an owning type's facts with its candidate fields,
// in declaration order.
type TypeCandidates struct {
	Facts      extract.TypeFacts
	Candidates []extract.CandidateFacts
}

// PackageFacts is everything discovered in one loaded package.
type PackageFacts struct {
	Path  string
	Name  string
	Dir   string
	Types []TypeCandidates

	// Errors carries package load and type-check problems. Generation for
	// other packages proceeds; these surface in the report.
	Errors []string
}

// Loader discovers candidates across packages.
type Loader struct {
	version filter.SyntaxVersion
	log     *zap.Logger
}

func NewLoader(version filter.SyntaxVersion, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{version: version, log: log}
}

// Load resolves patterns through the build system and collects candidate
// facts for every marked type.
func (l *Loader) Load(ctx context.Context, dir string, patterns ...string) ([]PackageFacts, error) {
	cfg := &packages.Config{
		Mode:    loadMode,
		Context: ctx,
		Dir:     dir,
		Fset:    token.NewFileSet(),
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	facts := make([]PackageFacts, 0, len(pkgs))
	for _, pkg := range pkgs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pf := l.loadPackage(cfg.Fset, pkg)
		l.log.Debug("loaded package",
			zap.String("path", pf.Path),
			zap.Int("types", len(pf.Types)),
			zap.Int("errors", len(pf.Errors)))
		facts = append(facts, pf)
	}
	return facts, nil
}

func (l *Loader) loadPackage(fset *token.FileSet, pkg *packages.Package) PackageFacts {
	pf := PackageFacts{Path: pkg.PkgPath, Name: pkg.Name}
	if len(pkg.GoFiles) > 0 {
		pf.Dir = filepath.Dir(pkg.GoFiles[0])
	}
	for _, e := range pkg.Errors {
		pf.Errors = append(pf.Errors, e.Error())
	}
	if pkg.Types == nil {
		return pf
	}

	// Candidates may be spread across files; collect per type name first.
	byType := make(map[string][]filter.Candidate)
	var order []string
	for _, file := range pkg.Syntax {
		for _, cand := range filter.FindCandidates(file, l.version) {
			name := cand.TypeSpec.Name.Name
			if _, seen := byType[name]; !seen {
				order = append(order, name)
			}
			byType[name] = append(byType[name], cand)
		}
	}

	for _, typeName := range order {
		cands := byType[typeName]
		obj := pkg.Types.Scope().Lookup(typeName)
		named, ok := objNamed(obj)
		if !ok {
			pf.Errors = append(pf.Errors, fmt.Sprintf("%s: candidate owner is not a defined type", typeName))
			continue
		}

		tc := TypeCandidates{Facts: l.typeFacts(fset, pkg, named, cands)}
		for _, cand := range cands {
			cf, err := l.candidateFacts(fset, pkg, named, cand)
			if err != nil {
				pf.Errors = append(pf.Errors, fmt.Sprintf("%s.%s: %v", typeName, fieldName(cand.Field), err))
				continue
			}
			tc.Candidates = append(tc.Candidates, cf)
		}
		// Declaration order within a file is positional; FindCandidates
		// already yields fields in order, files in parse order.
		pf.Types = append(pf.Types, tc)
	}
	return pf
}

func objNamed(obj types.Object) (*types.Named, bool) {
	if obj == nil {
		return nil, false
	}
	tn, ok := obj.(*types.TypeName)
	if !ok {
		return nil, false
	}
	named, ok := tn.Type().(*types.Named)
	return named, ok
}

// typeFacts builds the owning type's facts: descriptor, runtime bases via
// method-set probing, members, and hook methods. Methods declared in
// previously generated files are skipped, otherwise a second pass would
// collide with its own output.
func (l *Loader) typeFacts(fset *token.FileSet, pkg *packages.Package, named *types.Named, cands []filter.Candidate) extract.TypeFacts {
	obj := named.Obj()
	tf := extract.TypeFacts{
		Descriptor: model.TypeDescriptor{
			PkgPath:    pkg.PkgPath,
			PkgName:    pkg.Name,
			Name:       obj.Name(),
			TypeParams: typeParamNames(named),
			Exported:   obj.Exported(),
		},
	}

	// Promoted methods from embedded runtime bases show up in the pointer
	// method set, which also covers deeper embedding.
	ms := types.NewMethodSet(types.NewPointer(named))
	for i := 0; i < ms.Len(); i++ {
		fn, ok := ms.At(i).Obj().(*types.Func)
		if !ok {
			continue
		}
		if fromGeneratedFile(fset, fn.Pos()) {
			continue
		}
		sig := fn.Type().(*types.Signature)
		tf.Methods = append(tf.Methods, extract.MethodFacts{
			Name:   fn.Name(),
			Params: sig.Params().Len(),
		})
		tf.Members = append(tf.Members, extract.MemberFacts{
			Name:      fn.Name(),
			Kind:      extract.MemberMethod,
			IsCommand: isCommandResult(sig),
		})
		switch fn.Name() {
		case "RaisePropertyChanged":
			tf.HasNotifier = true
		case "ValidateProperty":
			tf.HasValidator = true
		case "Messenger":
			tf.HasBroadcaster = true
		}
	}

	candidateFields := make(map[string]bool, len(cands))
	for _, c := range cands {
		candidateFields[fieldName(c.Field)] = true
	}
	if st, ok := named.Underlying().(*types.Struct); ok {
		for i := 0; i < st.NumFields(); i++ {
			f := st.Field(i)
			if candidateFields[f.Name()] {
				continue
			}
			tf.Members = append(tf.Members, extract.MemberFacts{
				Name:      f.Name(),
				Kind:      extract.MemberField,
				IsCommand: isCommandType(f.Type()),
			})
		}
	}

	for _, c := range cands {
		tf.Directives = appendUnique(tf.Directives, filter.TypeDirectives(c.GenDecl, c.TypeSpec)...)
	}
	return tf
}

func (l *Loader) candidateFacts(fset *token.FileSet, pkg *packages.Package, named *types.Named, cand filter.Candidate) (extract.CandidateFacts, error) {
	name := fieldName(cand.Field)
	fieldType, err := lookupFieldType(named, name)
	if err != nil {
		return extract.CandidateFacts{}, err
	}

	expr, imports := typeExprFor(fieldType, pkg.Types)
	pos := fset.Position(cand.Pos)
	cf := extract.CandidateFacts{
		FieldName: name,
		TypeExpr:  expr,
		TypeKind:  classifyKind(fieldType),
		Imports:   imports,
		Form:      cand.Form,
		Location: diag.Location{
			File:   pos.Filename,
			Line:   pos.Line,
			Column: pos.Column,
		},
	}
	switch cand.Form {
	case filter.FormTag:
		cf.Tag, _ = filter.FieldTag(cand.Field)
	default:
		cf.Directives = filter.FieldDirectives(cand.Field)
	}
	cf.ValidateRules = filter.ValidateTag(cand.Field)
	return cf, nil
}

func lookupFieldType(named *types.Named, field string) (types.Type, error) {
	st, ok := named.Underlying().(*types.Struct)
	if !ok {
		return nil, fmt.Errorf("owner is not a struct")
	}
	for i := 0; i < st.NumFields(); i++ {
		if st.Field(i).Name() == field {
			return st.Field(i).Type(), nil
		}
	}
	return nil, fmt.Errorf("field %s not found", field)
}

func typeParamNames(named *types.Named) []string {
	tp := named.TypeParams()
	if tp == nil || tp.Len() == 0 {
		return nil
	}
	names := make([]string, tp.Len())
	for i := 0; i < tp.Len(); i++ {
		names[i] = tp.At(i).Obj().Name()
	}
	return names
}

// classifyKind decides how the generated setter compares values: slices,
// maps, and funcs need reflect.DeepEqual; pointers, interfaces, and chans
// compare with == and admit nil; everything else is a plain value.
func classifyKind(t types.Type) model.TypeKind {
	switch t.Underlying().(type) {
	case *types.Slice, *types.Map, *types.Signature:
		return model.KindDeepEqual
	case *types.Pointer, *types.Interface, *types.Chan:
		return model.KindNilable
	default:
		return model.KindValue
	}
}

// typeExprFor renders a type as it is written from inside pkg, and reports
// which packages the expression needs imported.
func typeExprFor(t types.Type, pkg *types.Package) (string, []string) {
	seen := make(map[string]bool)
	qual := func(other *types.Package) string {
		if other == pkg {
			return ""
		}
		seen[other.Path()] = true
		return other.Name()
	}
	expr := types.TypeString(t, qual)

	imports := make([]string, 0, len(seen))
	for path := range seen {
		imports = append(imports, path)
	}
	sort.Strings(imports)
	return expr, imports
}

// observablePath is the runtime package command fields come from.
const observablePath = "github.com/beacon-tools/beacon/runtime/observable"

func isCommandType(t types.Type) bool {
	ptr, ok := t.(*types.Pointer)
	if !ok {
		return false
	}
	named, ok := ptr.Elem().(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj.Pkg() != nil && obj.Pkg().Path() == observablePath && obj.Name() == "Command"
}

func isCommandResult(sig *types.Signature) bool {
	return sig.Params().Len() == 0 &&
		sig.Results().Len() == 1 &&
		isCommandType(sig.Results().At(0).Type())
}

// generatedSuffix matches the files the emitter writes.
const generatedSuffix = "_beacon.go"

func fromGeneratedFile(fset *token.FileSet, pos token.Pos) bool {
	if !pos.IsValid() {
		return false
	}
	return strings.HasSuffix(fset.Position(pos).Filename, generatedSuffix)
}

func fieldName(f *ast.Field) string {
	if len(f.Names) == 0 {
		return ""
	}
	return f.Names[0].Name
}

func appendUnique(dst []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, d := range dst {
			if d == item {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, item)
		}
	}
	return dst
}
