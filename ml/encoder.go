package ml

import "errors"

// LabelEncoder maps a bounded set of category values to ordinal codes.
// Fitted offline; read-only at inference time.
type LabelEncoder struct {
	Classes []string `json:"classes"`

	index map[string]int
}

// Lookup returns the code for a category value. The second result is
// false for values outside the fitted class set; unknowns are never
// mapped to a default class.
func (e *LabelEncoder) Lookup(value string) (int, bool) {
	code, ok := e.index[value]
	return code, ok
}

func (e *LabelEncoder) validate() error {
	if len(e.Classes) == 0 {
		return errors.New("encoder has no classes")
	}
	e.index = make(map[string]int, len(e.Classes))
	for i, class := range e.Classes {
		if _, dup := e.index[class]; dup {
			return errors.New("encoder class list contains duplicates")
		}
		e.index[class] = i
	}
	return nil
}
