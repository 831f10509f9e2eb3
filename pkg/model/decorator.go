package model

import "fmt"

// Decorator enriches a form model after the OpenAPI-derived structure has been
// built, e.g. to apply presentation order or section titles.
type Decorator interface {
	Decorate(*FormModel) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*FormModel) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(form *FormModel) error {
	return fn(form)
}

// Decorate runs decorators in order and stops at the first failure.
func Decorate(form *FormModel, decorators ...Decorator) error {
	for i, decorator := range decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(form); err != nil {
			return fmt.Errorf("model: decorator %d: %w", i, err)
		}
	}
	return nil
}
