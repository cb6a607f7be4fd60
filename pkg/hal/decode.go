package hal

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// DecodeValue decodes one JSON document. Numbers are kept as json.Number so
// integers beyond 2^53 survive; trailing data after the value is an error.
func DecodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("hal: trailing data after JSON value")
	}
	return v, nil
}
