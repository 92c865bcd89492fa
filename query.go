package fincal

import (
	"bytes"
	"fmt"

	"github.com/PaesslerAG/jsonpath"
)

// Query evaluates a JSONPath expression, like "$.funds[*].name", against the
// persisted form of the document.
func Query(doc *Document, expr string) (any, error) {
	data, err := Marshal(doc)
	if err != nil {
		return nil, err
	}
	raw, err := decodeRaw(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	v, err := jsonpath.Get(expr, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: query %q: %v", ErrValidation, expr, err)
	}
	return v, nil
}
