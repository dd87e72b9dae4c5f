package observable

import "sync"

// ChangedArgs identifies the property a post-change notification is about.
// Instances are interned: ChangedArgsFor returns the same pointer for the
// same name for the life of the process, so listeners can compare by
// identity and dispatch never allocates.
type ChangedArgs struct {
	name string
}

// PropertyName returns the name of the property that changed.
func (a *ChangedArgs) PropertyName() string { return a.name }

// ChangingArgs identifies the property a pre-change notification is about.
// Interned like ChangedArgs.
type ChangingArgs struct {
	name string
}

// PropertyName returns the name of the property about to change.
func (a *ChangingArgs) PropertyName() string { return a.name }

// ArgsTable interns notification-argument instances per property name. It is
// append-only: entries are never removed, and the instance returned for a
// name is stable for the table's lifetime.
type ArgsTable struct {
	changed  sync.Map // string -> *ChangedArgs
	changing sync.Map // string -> *ChangingArgs
}

// Changed returns the interned post-change args for name.
func (t *ArgsTable) Changed(name string) *ChangedArgs {
	if v, ok := t.changed.Load(name); ok {
		return v.(*ChangedArgs)
	}
	v, _ := t.changed.LoadOrStore(name, &ChangedArgs{name: name})
	return v.(*ChangedArgs)
}

// Changing returns the interned pre-change args for name.
func (t *ArgsTable) Changing(name string) *ChangingArgs {
	if v, ok := t.changing.Load(name); ok {
		return v.(*ChangingArgs)
	}
	v, _ := t.changing.LoadOrStore(name, &ChangingArgs{name: name})
	return v.(*ChangingArgs)
}

// defaultArgs is the process-wide table generated code uses.
var defaultArgs ArgsTable

// ChangedArgsFor returns the process-wide interned post-change args for name.
func ChangedArgsFor(name string) *ChangedArgs { return defaultArgs.Changed(name) }

// ChangingArgsFor returns the process-wide interned pre-change args for name.
func ChangingArgsFor(name string) *ChangingArgs { return defaultArgs.Changing(name) }
