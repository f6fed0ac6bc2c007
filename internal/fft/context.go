// SPDX-License-Identifier: MIT
package fft

import (
	applog "rtlpower/internal/log"
	"rtlpower/pkg/bitint"
)

// Context is a transform plan permanently bound to its two workspaces. It is
// built once per session, since planning may be costly, and then executed
// repeatedly: the caller fills Input, calls Execute and reads Output.
type Context struct {
	plan    Transform
	backend Backend
	in      []complex128
	out     []complex128
}

// NewContext allocates two workspaces of n complex samples and plans a
// forward transform over them.
func NewContext(n int, backend Backend) (*Context, error) {
	plan, err := NewTransform(n, backend)
	if err != nil {
		return nil, err
	}

	applog.Debugf("FFT: planned %d-point transform (backend: %s)", n, backend.Resolve(n))
	if !bitint.IsPowerOfTwo(n) {
		applog.Debugf("FFT: %d bins is not a power of two; %d would allow a radix-2 plan", n, bitint.NextPowerOfTwo(n))
	}

	return &Context{
		plan:    plan,
		backend: backend.Resolve(n),
		in:      make([]complex128, n),
		out:     make([]complex128, n),
	}, nil
}

// Len returns the transform size.
func (c *Context) Len() int { return len(c.in) }

// Backend returns the backend the plan was built with.
func (c *Context) Backend() Backend { return c.backend }

// Input returns the input workspace.
func (c *Context) Input() []complex128 { return c.in }

// Output returns the output workspace, valid after Execute.
func (c *Context) Output() []complex128 { return c.out }

// Execute transforms Input into Output.
func (c *Context) Execute() error {
	return c.plan.Forward(c.out, c.in)
}

// Close releases the plan and workspaces. The context must not be used
// afterwards.
func (c *Context) Close() error {
	c.plan = nil
	c.in = nil
	c.out = nil
	return nil
}
