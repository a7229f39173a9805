// Package intake is the form engine behind patient onboarding: it serves
// form definitions, validates and normalizes submissions, and hands accepted
// payloads to the backing services exactly once.
package intake

import (
	"errors"
	"fmt"
)

// FieldKind selects the widget used to capture one field.
type FieldKind string

const (
	KindInput    FieldKind = "input"
	KindPhone    FieldKind = "phone"
	KindDate     FieldKind = "date"
	KindTextarea FieldKind = "textarea"
	KindSelect   FieldKind = "select"
	KindCheckbox FieldKind = "checkbox"

	// KindSkeleton delegates rendering to a caller-supplied function. Used
	// for composite widgets (radio groups, file upload) that do not fit the
	// fixed kinds.
	KindSkeleton FieldKind = "skeleton"
)

// ErrUnknownFieldKind is returned when a field declares a kind the renderer
// does not recognize.
var ErrUnknownFieldKind = errors.New("unknown field kind")

// ErrNoSkeletonRenderer is returned when a skeleton field has no render
// function attached.
var ErrNoSkeletonRenderer = errors.New("skeleton field has no renderer")

// Option is one choice in a select field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes one input in a form. Only the options relevant to its kind
// are set.
type Field struct {
	Name        string
	Label       string
	Kind        FieldKind
	Placeholder string
	Icon        string
	Hidden      bool

	// Date fields.
	DateFormat string
	WithTime   bool

	// Select fields.
	Options []Option

	// Skeleton fields.
	Skeleton func(Field) (Widget, error)
}

// Widget is the concrete descriptor a client renders for one field.
type Widget struct {
	Control     string   `json:"control"`
	Name        string   `json:"name"`
	Label       string   `json:"label,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Icon        string   `json:"icon,omitempty"`
	Hidden      bool     `json:"hidden,omitempty"`
	DateFormat  string   `json:"date_format,omitempty"`
	WithTime    bool     `json:"with_time,omitempty"`
	Options     []Option `json:"options,omitempty"`
}

// Render maps a field descriptor to the widget a client should draw. The
// mapping is pure; all submission state lives in the form draft, never here.
func Render(f Field) (Widget, error) {
	w := Widget{
		Name:        f.Name,
		Label:       f.Label,
		Placeholder: f.Placeholder,
		Icon:        f.Icon,
		Hidden:      f.Hidden,
	}

	switch f.Kind {
	case KindInput:
		w.Control = "text"
	case KindPhone:
		w.Control = "tel"
	case KindDate:
		w.Control = "datetime"
		w.DateFormat = f.DateFormat
		w.WithTime = f.WithTime
	case KindTextarea:
		w.Control = "textarea"
	case KindSelect:
		w.Control = "select"
		w.Options = f.Options
	case KindCheckbox:
		w.Control = "checkbox"
	case KindSkeleton:
		if f.Skeleton == nil {
			return Widget{}, fmt.Errorf("%w: %s", ErrNoSkeletonRenderer, f.Name)
		}
		return f.Skeleton(f)
	default:
		return Widget{}, fmt.Errorf("%w: %q", ErrUnknownFieldKind, f.Kind)
	}

	return w, nil
}

// RenderAll renders every field of a form in order.
func RenderAll(fields []Field) ([]Widget, error) {
	widgets := make([]Widget, 0, len(fields))
	for _, f := range fields {
		w, err := Render(f)
		if err != nil {
			return nil, err
		}
		widgets = append(widgets, w)
	}
	return widgets, nil
}
