// Package orchestrator wires the loader → parser → model builder → decorator
// → renderer pipeline that turns the report API document into the report
// form, and hands generated reports to the renderers that display them.
package orchestrator
