package model

// Options tunes how the Builder labels report fields.
type Options struct {
	// Labeler turns a property name such as "medical_history" into the text
	// shown next to its input. Nil selects DefaultLabeler; a schema title
	// always wins over either.
	Labeler func(string) string
}

func (o Options) withDefaults() Options {
	if o.Labeler == nil {
		o.Labeler = DefaultLabeler
	}
	return o
}
