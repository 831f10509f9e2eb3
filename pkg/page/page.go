// Package page holds the form page state machine: idle, loading while a
// report request is in flight, then either a report or the failure message.
package page

import (
	"context"
	"errors"

	"github.com/goliatone/go-reportform/pkg/client"
	"github.com/goliatone/go-reportform/pkg/report"
)

// Generator produces a report for a submitted form. *client.Client and
// *generator.Generator both satisfy it.
type Generator interface {
	Generate(ctx context.Context, form report.FormData) (report.Report, error)
}

// GeneratorFunc adapts plain functions to the Generator interface.
type GeneratorFunc func(ctx context.Context, form report.FormData) (report.Report, error)

func (fn GeneratorFunc) Generate(ctx context.Context, form report.FormData) (report.Report, error) {
	return fn(ctx, form)
}

// State is the per-request view state of the form page.
type State struct {
	Form    report.FormData
	Loading bool
	Error   string
	Report  *report.Report
	// Cause is the underlying failure behind Error. It is never shown to
	// users.
	Cause error
}

// Failed reports whether the last submission failed.
func (s State) Failed() bool {
	return s.Error != ""
}

// Controller drives submissions through a Generator.
type Controller struct {
	generator Generator
}

// NewController returns a Controller backed by gen.
func NewController(gen Generator) *Controller {
	return &Controller{generator: gen}
}

// Begin enters the loading state for form and clears any previous error. The
// previous report stays visible until a new one arrives.
func (c *Controller) Begin(prev State, form report.FormData) State {
	next := prev
	next.Form = form
	next.Loading = true
	next.Error = ""
	next.Cause = nil
	return next
}

// Finish leaves the loading state with the outcome of the request. A failure
// sets the generic message and keeps the previous report.
func (c *Controller) Finish(state State, rep report.Report, err error) State {
	next := state
	next.Loading = false
	if err != nil {
		next.Error = client.FailureMessage
		next.Cause = err
		return next
	}
	next.Error = ""
	next.Cause = nil
	next.Report = &rep
	return next
}

// Submit runs Begin, the request, and Finish.
func (c *Controller) Submit(ctx context.Context, prev State, form report.FormData) State {
	state := c.Begin(prev, form)
	if c.generator == nil {
		return c.Finish(state, report.Report{}, errors.New("page: generator is not configured"))
	}
	rep, err := c.generator.Generate(ctx, form)
	return c.Finish(state, rep, err)
}
