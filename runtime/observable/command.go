package observable

import "sync"

// Command wires an action to UI-style invokers and notifies them when its
// executability changes. Generated setters call NotifyCanExecuteChanged on
// commands named in an alsoNotifyCommand option.
type Command struct {
	mu         sync.Mutex
	execute    func(param any)
	canExecute func(param any) bool
	listeners  []func()
}

// NewCommand creates a command that is always executable.
func NewCommand(execute func(param any)) *Command {
	if execute == nil {
		panic("observable: NewCommand requires an execute func")
	}
	return &Command{execute: execute}
}

// WithCanExecute installs an executability predicate and returns the command.
func (c *Command) WithCanExecute(fn func(param any) bool) *Command {
	c.mu.Lock()
	c.canExecute = fn
	c.mu.Unlock()
	return c
}

// Execute runs the action if CanExecute allows it.
func (c *Command) Execute(param any) {
	if !c.CanExecute(param) {
		return
	}
	c.execute(param)
}

// CanExecute reports whether the command may run with param.
func (c *Command) CanExecute(param any) bool {
	c.mu.Lock()
	fn := c.canExecute
	c.mu.Unlock()
	if fn == nil {
		return true
	}
	return fn(param)
}

// AddCanExecuteChangedListener subscribes fn to executability changes.
func (c *Command) AddCanExecuteChangedListener(fn func()) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// NotifyCanExecuteChanged tells invokers to re-query CanExecute.
func (c *Command) NotifyCanExecuteChanged() {
	c.mu.Lock()
	listeners := make([]func(), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
