package config

import "fmt"

// RedactedString is a string holding a secret. It renders as a redacted
// placeholder wherever it would end up in logs or serialized output, the raw
// value is only reachable through an explicit string conversion.
type RedactedString string

func (r RedactedString) String() string {
	return fmt.Sprintf("<redacted-%d-chars>", len(r))
}

func (r RedactedString) MarshalText() (data []byte, err error) {
	return []byte(r.String()), nil
}

func (r RedactedString) MarshalBinary() (data []byte, err error) {
	return []byte(r.String()), nil
}

func (r RedactedString) MarshalJSON() (data []byte, err error) {
	return []byte(`"` + r.String() + `"`), nil
}
