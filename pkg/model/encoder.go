package model

import (
	"github.com/mchmarny/healsure/pkg/insurance"
	"github.com/pkg/errors"
)

// Encoder maps the distinct values of one categorical field to stable integer
// codes in [0, k-1], assigned in the order they were first encountered.
// An Encoder is never mutated after FitEncoder returns.
type Encoder struct {
	field  string
	labels []string
	codes  map[string]int
}

// FitEncoder builds the encoder for field from the observed values.
func FitEncoder(field string, values []string) (*Encoder, error) {
	if len(values) == 0 {
		return nil, errors.Wrapf(insurance.ErrEmptyTrainingSet, "no values to encode for %s", field)
	}

	e := &Encoder{
		field:  field,
		labels: make([]string, 0),
		codes:  make(map[string]int),
	}
	for _, v := range values {
		if _, ok := e.codes[v]; ok {
			continue
		}
		e.codes[v] = len(e.labels)
		e.labels = append(e.labels, v)
	}
	return e, nil
}

// Field returns the name of the encoded field.
func (e *Encoder) Field() string {
	return e.field
}

// Len returns the number of known categories.
func (e *Encoder) Len() int {
	return len(e.labels)
}

// Encode returns the code for v or ErrUnknownCategory.
func (e *Encoder) Encode(v string) (int, error) {
	code, ok := e.codes[v]
	if !ok {
		return 0, errors.Wrapf(insurance.ErrUnknownCategory, "%s=%q", e.field, v)
	}
	return code, nil
}

// Decode returns the label for code.
func (e *Encoder) Decode(code int) (string, bool) {
	if code < 0 || code >= len(e.labels) {
		return "", false
	}
	return e.labels[code], true
}

// Labels returns a copy of the known categories in code order.
func (e *Encoder) Labels() []string {
	out := make([]string, len(e.labels))
	copy(out, e.labels)
	return out
}
