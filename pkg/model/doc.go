// Package model defines the typed form model consumed by renderers. Builders
// reside in internal/model but return the types defined here.
//
// Every Field carries its dotted Path (for example
// "patient_info.additionalProp1.occupation") which renderers use as the input
// name and DecodeSubmission folds back into the nested request document.
// Top-level object fields are presented as Sections. Schema extensions under
// the `x-reportform` namespace flow into Field.Metadata; the builder promotes
// `label`, `placeholder`, `widget`, `rows` and `numeric` onto the field.
package model
