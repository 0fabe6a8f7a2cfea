package cmd

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/keshon/slashbot/pkg/args"
)

var (
	ErrInvalidName    = errors.New("invalid name")
	ErrDuplicate      = errors.New("already registered")
	ErrUnknownCommand = errors.New("unknown command")
	ErrNameTaken      = errors.New("name already in use")
)

// Command is a registered command. Name is canonical: its words are
// separated by single spaces.
type Command struct {
	Name        string
	Description string
	Params      args.Schema
	Handler     Handler
}

// Usage renders the command name followed by its parameter notation.
func (c *Command) Usage() string {
	if len(c.Params) == 0 {
		return c.Name
	}
	return c.Name + " " + args.Usage(c.Params)
}

// Registry stores commands, aliases and actions. Commands are kept in
// registration order. It is safe for concurrent use; in practice it is
// filled at startup and read afterwards.
type Registry struct {
	mu        sync.RWMutex
	commands  map[string]*Command
	order     []string
	aliases   map[string]string   // alias -> canonical command
	aliasesOf map[string][]string // canonical command -> aliases, in order
	actions   map[string]Handler
	mws       []Middleware
	maxWords  int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]*Command),
		aliases:   make(map[string]string),
		aliasesOf: make(map[string][]string),
		actions:   make(map[string]Handler),
	}
}

// normalize collapses runs of whitespace so "one  two" and "one two" name
// the same command.
func normalize(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// Register adds a command. The schema is validated first; a name that is
// already a command, alias or action is rejected.
func (r *Registry) Register(name, description string, params args.Schema, h Handler) error {
	canonical := normalize(name)
	if canonical == "" || h == nil {
		return fmt.Errorf("register %q: %w", name, ErrInvalidName)
	}
	if err := args.Validate(params); err != nil {
		return fmt.Errorf("register %q: %w", canonical, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.commands[canonical]; ok {
		return fmt.Errorf("register %q: %w", canonical, ErrDuplicate)
	}
	if r.taken(canonical) {
		return fmt.Errorf("register %q: %w", canonical, ErrNameTaken)
	}

	r.commands[canonical] = &Command{
		Name:        canonical,
		Description: description,
		Params:      params,
		Handler:     h,
	}
	r.order = append(r.order, canonical)
	r.maxWords = max(r.maxWords, wordCount(canonical))
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name, description string, params args.Schema, h Handler) {
	if err := r.Register(name, description, params, h); err != nil {
		panic(err)
	}
}

// Alias adds alternative names for an existing command. Either every name
// is added or none is.
func (r *Registry) Alias(command string, names ...string) error {
	target := normalize(command)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.commands[target]; !ok {
		return fmt.Errorf("alias %q: %w", command, ErrUnknownCommand)
	}

	pending := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		alias := normalize(n)
		if alias == "" {
			return fmt.Errorf("alias %q for %q: %w", n, target, ErrInvalidName)
		}
		if seen[alias] || r.taken(alias) {
			return fmt.Errorf("alias %q for %q: %w", alias, target, ErrNameTaken)
		}
		if _, ok := r.commands[alias]; ok {
			return fmt.Errorf("alias %q for %q: %w", alias, target, ErrNameTaken)
		}
		seen[alias] = true
		pending = append(pending, alias)
	}

	for _, alias := range pending {
		r.aliases[alias] = target
		r.aliasesOf[target] = append(r.aliasesOf[target], alias)
		r.maxWords = max(r.maxWords, wordCount(alias))
	}
	return nil
}

// RegisterAction adds a handler for interactive callbacks.
func (r *Registry) RegisterAction(name string, h Handler) error {
	canonical := normalize(name)
	if canonical == "" || h == nil {
		return fmt.Errorf("register action %q: %w", name, ErrInvalidName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.actions[canonical]; ok {
		return fmt.Errorf("register action %q: %w", canonical, ErrDuplicate)
	}
	if _, ok := r.commands[canonical]; ok {
		return fmt.Errorf("register action %q: %w", canonical, ErrNameTaken)
	}
	if _, ok := r.aliases[canonical]; ok {
		return fmt.Errorf("register action %q: %w", canonical, ErrNameTaken)
	}
	r.actions[canonical] = h
	return nil
}

// taken reports whether name is an alias or an action. Callers hold mu.
func (r *Registry) taken(name string) bool {
	if _, ok := r.aliases[name]; ok {
		return true
	}
	_, ok := r.actions[name]
	return ok
}

// Use appends middlewares applied to every command and action handler at
// invocation time. The first middleware added is the outermost.
func (r *Registry) Use(mws ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mws = append(r.mws, mws...)
}

func (r *Registry) wrap(h Handler) Handler {
	r.mu.RLock()
	mws := r.mws
	r.mu.RUnlock()
	return Chain(h, mws...)
}

// Lookup returns the command registered under name or one of its aliases.
func (r *Registry) Lookup(name string) (*Command, bool) {
	name = normalize(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if canonical, ok := r.aliases[name]; ok {
		name = canonical
	}
	c, ok := r.commands[name]
	return c, ok
}

// Action returns the handler registered for an interactive callback.
func (r *Registry) Action(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.actions[normalize(name)]
	return h, ok
}

// Commands returns all commands in registration order.
func (r *Registry) Commands() []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Command, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.commands[name])
	}
	return list
}

// AliasesOf returns the aliases of a command in the order they were added.
func (r *Registry) AliasesOf(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.aliasesOf[normalize(name)]...)
}

func wordCount(s string) int {
	return strings.Count(s, " ") + 1
}
