// Package openapi exposes the loader and parser contracts used to turn the
// report backend's OpenAPI document into operations the form model builder
// understands. Implementations live under internal/openapi so kin-openapi
// types never leak into the public API.
//
// The backend document ships embedded (see EmbeddedFS); callers pointing the
// form at a live backend can load its published document by URL instead.
package openapi
