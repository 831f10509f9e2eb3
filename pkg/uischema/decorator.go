package uischema

import (
	"fmt"
	"sort"

	pkgmodel "github.com/goliatone/go-reportform/pkg/model"
)

// Decorator applies UI schema overrides to a form model.
type Decorator struct {
	store *Store
}

// NewDecorator builds a Decorator backed by the provided store. When store is
// nil or empty, the decorator becomes a no-op.
func NewDecorator(store *Store) *Decorator {
	return &Decorator{store: store}
}

// Decorate augments the supplied form model. When no matching operation is
// found the form is left untouched.
func (d *Decorator) Decorate(form *pkgmodel.FormModel) error {
	if d == nil || d.store == nil || d.store.Empty() || form == nil {
		return nil
	}

	op, ok := d.store.Operation(form.OperationID)
	if !ok {
		return nil
	}

	applyFormConfig(form, op.Form)
	applySections(form, op.Sections)
	return applyFieldConfig(form, op)
}

func applyFormConfig(form *pkgmodel.FormModel, cfg FormConfig) {
	if cfg.Title != "" {
		form.Title = cfg.Title
	}
	if cfg.Subtitle != "" {
		form.Description = cfg.Subtitle
	}
	if cfg.SubmitLabel != "" {
		form.SubmitLabel = cfg.SubmitLabel
	}
	if len(cfg.Metadata) > 0 {
		if form.Metadata == nil {
			form.Metadata = make(map[string]string, len(cfg.Metadata))
		}
		for k, v := range cfg.Metadata {
			form.Metadata[k] = v
		}
	}
}

// applySections retitles existing sections and reorders both the sections and
// the top-level group fields to match.
func applySections(form *pkgmodel.FormModel, configs []SectionConfig) {
	if len(configs) == 0 {
		return
	}

	order := make(map[string]int, len(configs))
	for idx, cfg := range configs {
		position := idx
		if cfg.Order != nil {
			position = *cfg.Order
		}
		order[cfg.ID] = position

		for i := range form.Sections {
			if form.Sections[i].ID != cfg.ID {
				continue
			}
			if cfg.Title != "" {
				form.Sections[i].Title = cfg.Title
			}
			if cfg.Description != "" {
				form.Sections[i].Description = cfg.Description
			}
			form.Sections[i].Order = position
		}
	}

	rank := func(id string) (int, bool) {
		position, ok := order[id]
		return position, ok
	}
	sort.SliceStable(form.Sections, func(i, j int) bool {
		return less(rank, form.Sections[i].ID, form.Sections[j].ID)
	})
	sort.SliceStable(form.Fields, func(i, j int) bool {
		return less(rank, form.Fields[i].Name, form.Fields[j].Name)
	})
}

func applyFieldConfig(form *pkgmodel.FormModel, op Operation) error {
	for path, cfg := range op.Fields {
		field, ok := form.Lookup(path)
		if !ok {
			return fmt.Errorf("uischema: operation %q (file %s) configures unknown field %q", op.ID, op.Source, cfg.OriginalPath)
		}
		if cfg.Label != "" {
			field.Label = cfg.Label
		}
		if cfg.Description != "" {
			field.Description = cfg.Description
		}
		if cfg.Placeholder != "" {
			field.Placeholder = cfg.Placeholder
		}
		if cfg.Widget != "" {
			field.Widget = cfg.Widget
		}
		if cfg.Rows > 0 {
			field.Rows = cfg.Rows
		}
		if cfg.Order != nil {
			field.Order = *cfg.Order
		}
		for k, v := range cfg.Metadata {
			if field.Metadata == nil {
				field.Metadata = make(map[string]string, len(cfg.Metadata))
			}
			field.Metadata[k] = v
		}
	}

	ordered := func(prefix string) func(string) (int, bool) {
		return func(name string) (int, bool) {
			cfg, ok := op.Fields[joinPath(prefix, name)]
			if !ok || cfg.Order == nil {
				return 0, false
			}
			return *cfg.Order, true
		}
	}
	var sortNested func(prefix string, fields []pkgmodel.Field)
	sortNested = func(prefix string, fields []pkgmodel.Field) {
		rank := ordered(prefix)
		sort.SliceStable(fields, func(i, j int) bool {
			return less(rank, fields[i].Name, fields[j].Name)
		})
		for i := range fields {
			sortNested(joinPath(prefix, fields[i].Name), fields[i].Nested)
		}
	}
	for i := range form.Fields {
		sortNested(form.Fields[i].Name, form.Fields[i].Nested)
	}
	return nil
}

// less orders configured entries by position ahead of unconfigured ones, which
// keep their existing relative order.
func less(rank func(string) (int, bool), a, b string) bool {
	ra, okA := rank(a)
	rb, okB := rank(b)
	switch {
	case okA && okB:
		return ra < rb
	case okA:
		return true
	default:
		return false
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
