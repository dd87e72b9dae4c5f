package emit

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/beacon-tools/beacon/internal/generator/model"
)

// Header marks every synthesized file. Tooling recognizes generated files
// by this exact first line.
const Header = "// Code generated by beacon. DO NOT EDIT."

// observablePath is the runtime package every generated file imports.
const observablePath = "github.com/beacon-tools/beacon/runtime/observable"

// Config controls optional parts of the synthesized accessors.
type Config struct {
	// GenerateChanging emits pre-change notifications. Disabling it drops
	// the RaisePropertyChanging calls; hooks still run.
	GenerateChanging bool
}

// Generator synthesizes one accessor file per owning type.
type Generator struct {
	buf     *bytes.Buffer
	indent  int
	imports map[string]bool
	cfg     Config
}

// NewGenerator creates a generator with the given configuration.
func NewGenerator(cfg Config) *Generator {
	return &Generator{
		buf:     &bytes.Buffer{},
		imports: make(map[string]bool),
		cfg:     cfg,
	}
}

// GenerateFile synthesizes the complete accessor file for one group.
func (g *Generator) GenerateFile(group Group) (string, error) {
	if len(group.Records) == 0 {
		return "", fmt.Errorf("emit: empty group for %s", group.Owner.QualifiedName())
	}
	g.reset()
	g.collectImports(group)

	var body bytes.Buffer
	for i, rec := range group.Records {
		if i > 0 {
			g.writeLine("")
		}
		g.generateGetter(group.Owner, rec)
		g.writeLine("")
		g.generateSetter(group.Owner, rec)
	}
	body.Write(g.buf.Bytes())

	g.buf.Reset()
	g.writeLine(Header)
	g.writeLine("")
	g.writeLine("package %s", group.Owner.PkgName)
	g.writeLine("")
	g.writeImports()
	g.buf.Write(body.Bytes())
	return g.buf.String(), nil
}

// receiver returns the receiver type expression, carrying generic
// parameters when the owner is generic.
func receiver(owner model.TypeDescriptor) string {
	if len(owner.TypeParams) == 0 {
		return "*" + owner.Name
	}
	return "*" + owner.Name + "[" + strings.Join(owner.TypeParams, ", ") + "]"
}

func (g *Generator) generateGetter(owner model.TypeDescriptor, rec model.PropertyRecord) {
	g.writeForwarded(rec, model.TargetGetter)
	g.writeLine("// %s returns the current value of %s.", rec.PropertyName, rec.FieldName)
	g.writeLine("func (o %s) %s() %s {", receiver(owner), rec.PropertyName, rec.TypeExpr)
	g.indent++
	g.writeLine("return o.%s", rec.FieldName)
	g.indent--
	g.writeLine("}")
}

// generateSetter emits the ordered mutation sequence: equality guard,
// pre-change hooks and notifications, assignment, validation, post-change
// hooks and notifications, dependent properties and commands, broadcast.
func (g *Generator) generateSetter(owner model.TypeDescriptor, rec model.PropertyRecord) {
	needOld := rec.ReferencesOld || rec.Broadcast

	g.writeForwarded(rec, model.TargetSetter)
	g.writeLine("// Set%s assigns value to %s, notifying listeners when the value", rec.PropertyName, rec.FieldName)
	g.writeLine("// actually changes.")
	g.writeLine("func (o %s) Set%s(value %s) {", receiver(owner), rec.PropertyName, rec.TypeExpr)
	g.indent++

	// Assigning an equal value is a no-op: no hooks, no notifications.
	switch rec.TypeKind {
	case model.KindDeepEqual:
		g.writeLine("if reflect.DeepEqual(o.%s, value) {", rec.FieldName)
	default:
		g.writeLine("if o.%s == value {", rec.FieldName)
	}
	g.indent++
	g.writeLine("return")
	g.indent--
	g.writeLine("}")

	if needOld {
		g.writeLine("old := o.%s", rec.FieldName)
	}
	if rec.HasChangingHook {
		g.writeLine("o.On%sChanging(value)", rec.PropertyName)
	}
	if rec.HasChangingHook2 {
		g.writeLine("o.On%sChangingFrom(old, value)", rec.PropertyName)
	}
	if g.cfg.GenerateChanging {
		g.writeLine("o.RaisePropertyChanging(observable.ChangingArgsFor(%q))", rec.PropertyName)
		for _, dep := range rec.AlsoNotify {
			g.writeLine("o.RaisePropertyChanging(observable.ChangingArgsFor(%q))", dep)
		}
	}
	g.writeLine("o.%s = value", rec.FieldName)
	if rec.Validated {
		g.writeLine("o.ValidateProperty(%q, value, %q)", rec.PropertyName, rec.ValidationRules)
	}
	if rec.HasChangedHook {
		g.writeLine("o.On%sChanged(value)", rec.PropertyName)
	}
	if rec.HasChangedHook2 {
		g.writeLine("o.On%sChangedFrom(old, value)", rec.PropertyName)
	}
	g.writeLine("o.RaisePropertyChanged(observable.ChangedArgsFor(%q))", rec.PropertyName)
	for _, dep := range rec.AlsoNotify {
		g.writeLine("o.RaisePropertyChanged(observable.ChangedArgsFor(%q))", dep)
	}
	for _, cmd := range rec.NotifyCommands {
		if cmd.IsMethod {
			g.writeLine("o.%s().NotifyCanExecuteChanged()", cmd.Name)
		} else {
			g.writeLine("o.%s.NotifyCanExecuteChanged()", cmd.Name)
		}
	}
	if rec.Broadcast {
		g.writeLine("observable.Broadcast(o, %q, old, value)", rec.PropertyName)
	}

	g.indent--
	g.writeLine("}")
}

// writeForwarded emits annotations forwarded to the given accessor,
// including member-level ones, which land on both accessors. Directive
// payloads are written verbatim; tag payloads keep their machine-readable
// form under a beacon:tag marker.
func (g *Generator) writeForwarded(rec model.PropertyRecord, target model.AnnotationTarget) {
	for _, f := range rec.Forwarded {
		if f.Target != target && f.Target != model.TargetMember {
			continue
		}
		if strings.HasPrefix(f.Payload, "//") {
			g.writeLine("%s", f.Payload)
		} else {
			g.writeLine("//beacon:tag %s", f.Payload)
		}
	}
}

// reset clears the generator state between files.
func (g *Generator) reset() {
	g.buf.Reset()
	g.indent = 0
	g.imports = make(map[string]bool)
}

// writeLine writes a formatted line with the current indentation.
func (g *Generator) writeLine(format string, args ...interface{}) {
	if format == "" {
		g.buf.WriteString("\n")
		return
	}
	for i := 0; i < g.indent; i++ {
		g.buf.WriteString("\t")
	}
	if len(args) > 0 {
		g.buf.WriteString(fmt.Sprintf(format, args...))
	} else {
		g.buf.WriteString(format)
	}
	g.buf.WriteString("\n")
}

// collectImports determines the import set for a group.
func (g *Generator) collectImports(group Group) {
	g.imports[observablePath] = true
	for _, rec := range group.Records {
		if rec.TypeKind == model.KindDeepEqual {
			g.imports["reflect"] = true
		}
		for _, path := range rec.Imports {
			g.imports[path] = true
		}
	}
	// The owning package never imports itself even when a field type
	// mentions it.
	delete(g.imports, group.Owner.PkgPath)
}

// writeImports writes the import block, standard library first.
func (g *Generator) writeImports() {
	var std, ext []string
	for path := range g.imports {
		if strings.Contains(path, ".") {
			ext = append(ext, path)
		} else {
			std = append(std, path)
		}
	}
	sort.Strings(std)
	sort.Strings(ext)

	g.writeLine("import (")
	g.indent++
	for _, path := range std {
		g.writeLine("%q", path)
	}
	if len(std) > 0 && len(ext) > 0 {
		g.writeLine("")
	}
	for _, path := range ext {
		g.writeLine("%q", path)
	}
	g.indent--
	g.writeLine(")")
	g.writeLine("")
}
