// Package operations holds the operation registry both front ends dispatch
// through: named asynchronous operations with a declared parameter schema,
// the per-invocation context they run against, and the shared error
// taxonomy. Providers register their operations once at startup; after that
// the registry is read-only and safe for concurrent lookups.
package operations

import (
	"context"
	"fmt"
	"regexp"
)

// ReservedServerName is claimed by the CLI front end for launching the RPC
// server and can never name an operation.
const ReservedServerName = "server"

var nameRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ParamSpec describes one declared parameter. Declaration order matters: it
// fixes the positional-argument order on the CLI. A parameter without a
// default is required; one with a default is optional.
type ParamSpec struct {
	Name        string
	Required    bool
	Default     string
	Description string
}

// Descriptor is the registration-time schema of one operation.
type Descriptor struct {
	Name   string
	Doc    string
	Params []ParamSpec
}

// Args carries the named string arguments of one invocation.
type Args map[string]string

// Func is the implementing function of an operation. It runs to completion
// within the invocation that called it and must not retain op or args.
type Func func(ctx context.Context, op *Context, args Args) (any, error)

// Operation pairs a descriptor with its implementation.
type Operation struct {
	Descriptor
	fn Func
}

// Invoke binds the provided arguments against the descriptor and calls the
// implementation. A shape mismatch returns *InvalidParamsError without
// invoking the operation.
func (o *Operation) Invoke(ctx context.Context, op *Context, provided Args) (any, error) {
	bound, err := o.Bind(provided)
	if err != nil {
		return nil, err
	}
	return o.fn(ctx, op, bound)
}

// Bind validates provided argument names against the declared parameters
// and fills in defaults for absent optional ones.
func (d *Descriptor) Bind(provided Args) (Args, error) {
	bound := make(Args, len(d.Params))
	for _, p := range d.Params {
		value, ok := provided[p.Name]
		if !ok {
			if p.Required {
				return nil, &InvalidParamsError{
					Operation: d.Name,
					Reason:    fmt.Sprintf("missing required parameter %q", p.Name),
				}
			}
			value = p.Default
		}
		bound[p.Name] = value
	}
	for name := range provided {
		if _, ok := bound[name]; !ok {
			return nil, &InvalidParamsError{
				Operation: d.Name,
				Reason:    fmt.Sprintf("unknown parameter %q", name),
			}
		}
	}
	return bound, nil
}

// Registry is the static name-to-operation table. Registration happens once
// at process start; a malformed registration is a programming error and
// panics rather than surfacing as a runtime failure.
type Registry struct {
	order []string
	ops   map[string]*Operation
}

func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]*Operation)}
}

// Register adds one operation. It panics on an invalid or private name, the
// reserved server name, a duplicate registration, or a malformed parameter
// list.
func (r *Registry) Register(desc Descriptor, fn Func) {
	if !nameRE.MatchString(desc.Name) {
		panic(fmt.Sprintf("operations: invalid operation name %q", desc.Name))
	}
	if desc.Name == ReservedServerName {
		panic(fmt.Sprintf("operations: %q is reserved", desc.Name))
	}
	if _, exists := r.ops[desc.Name]; exists {
		panic(fmt.Sprintf("operations: duplicate operation %q", desc.Name))
	}
	if fn == nil {
		panic(fmt.Sprintf("operations: nil implementation for %q", desc.Name))
	}
	seen := make(map[string]bool, len(desc.Params))
	for _, p := range desc.Params {
		if !nameRE.MatchString(p.Name) {
			panic(fmt.Sprintf("operations: %s: invalid parameter name %q", desc.Name, p.Name))
		}
		if seen[p.Name] {
			panic(fmt.Sprintf("operations: %s: duplicate parameter %q", desc.Name, p.Name))
		}
		seen[p.Name] = true
	}
	r.ops[desc.Name] = &Operation{Descriptor: desc, fn: fn}
	r.order = append(r.order, desc.Name)
}

// Lookup resolves an operation by name. Names the registry never accepted
// (private-prefixed, reserved, unknown) simply miss.
func (r *Registry) Lookup(name string) (*Operation, bool) {
	op, ok := r.ops[name]
	return op, ok
}

// All returns the operations in registration order.
func (r *Registry) All() []*Operation {
	out := make([]*Operation, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.ops[name])
	}
	return out
}
