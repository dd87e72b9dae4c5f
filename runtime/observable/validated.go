package observable

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

// validate is shared across all ValidatedObjects; validator.Validate caches
// parsed rule strings internally.
var validate = validator.New()

// ValidatedObject extends Object with per-property validation state. Rules
// use validator tag syntax ("required,min=3"); generated setters pass the
// field's validate tag through verbatim.
type ValidatedObject struct {
	Object

	mu            sync.Mutex
	errs          map[string]error
	errorsChanged []func(property string)
}

// ValidateProperty validates value against rules and records the outcome for
// the named property. A passing validation clears any previous error. Errors
// listeners fire only when the property's error state actually changed.
func (v *ValidatedObject) ValidateProperty(name string, value any, rules string) error {
	err := validate.Var(value, rules)

	v.mu.Lock()
	_, had := v.errs[name]
	if err != nil {
		if v.errs == nil {
			v.errs = make(map[string]error)
		}
		v.errs[name] = err
	} else {
		delete(v.errs, name)
	}
	changed := (err != nil) != had
	listeners := make([]func(string), len(v.errorsChanged))
	copy(listeners, v.errorsChanged)
	v.mu.Unlock()

	if changed {
		for _, fn := range listeners {
			fn(name)
		}
	}
	return err
}

// HasErrors reports whether any property currently fails validation.
func (v *ValidatedObject) HasErrors() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.errs) > 0
}

// Errors returns a copy of the current per-property validation errors.
func (v *ValidatedObject) Errors() map[string]error {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make(map[string]error, len(v.errs))
	for k, e := range v.errs {
		out[k] = e
	}
	return out
}

// ClearErrors drops the recorded error for property, or every error when
// property is empty.
func (v *ValidatedObject) ClearErrors(property string) {
	v.mu.Lock()
	var notify []string
	if property == "" {
		for name := range v.errs {
			notify = append(notify, name)
		}
		v.errs = nil
	} else if _, ok := v.errs[property]; ok {
		delete(v.errs, property)
		notify = append(notify, property)
	}
	listeners := make([]func(string), len(v.errorsChanged))
	copy(listeners, v.errorsChanged)
	v.mu.Unlock()

	for _, name := range notify {
		for _, fn := range listeners {
			fn(name)
		}
	}
}

// AddErrorsChangedListener subscribes fn to error-state transitions.
func (v *ValidatedObject) AddErrorsChangedListener(fn func(property string)) {
	if fn == nil {
		return
	}
	v.mu.Lock()
	v.errorsChanged = append(v.errorsChanged, fn)
	v.mu.Unlock()
}
