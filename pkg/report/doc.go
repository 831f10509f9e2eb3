// Package report holds the two values that travel across the report round
// trip: the FormData collected by the form page and the Report returned by
// the generation endpoint. Report sections and their key/value blocks keep
// the order they had in the JSON document so viewers render them the way the
// backend emitted them.
package report
