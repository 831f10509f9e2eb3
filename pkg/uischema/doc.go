// Package uischema loads YAML/JSON overlays that enrich form models with
// presentation details the OpenAPI document does not carry: page copy,
// section titles, field order, labels, widgets and textarea rows. The model
// builder stays unaware of overlays; the orchestrator applies them through
// Decorator.
package uischema
