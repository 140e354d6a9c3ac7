package triage

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

// Kind tags the variant held by a Value.
type Kind string

const (
	KindUnknown    Kind = "unknown"
	KindBoolean    Kind = "boolean"
	KindNumeric    Kind = "numeric"
	KindEnumerated Kind = "enumerated"
)

// Value is a typed answer. The zero value is Unknown.
type Value struct {
	kind   Kind
	flag   bool
	number float64
	choice string
}

func Bool(b bool) Value { return Value{kind: KindBoolean, flag: b} }

func Number(f float64) Value { return Value{kind: KindNumeric, number: f} }

func Choice(s string) Value { return Value{kind: KindEnumerated, choice: s} }

func Unknown() Value { return Value{kind: KindUnknown} }

func (v Value) Kind() Kind { return v.normalizedKind() }

func (v Value) IsUnknown() bool { return v.normalizedKind() == KindUnknown }

func (v Value) normalizedKind() Kind {
	if v.kind == "" {
		return KindUnknown
	}
	return v.kind
}

// AsBool reports the boolean payload; ok is false for other kinds.
func (v Value) AsBool() (b, ok bool) {
	return v.flag, v.kind == KindBoolean
}

func (v Value) AsNumber() (float64, bool) {
	return v.number, v.kind == KindNumeric
}

func (v Value) AsChoice() (string, bool) {
	return v.choice, v.kind == KindEnumerated
}

// Equal compares kind and payload.
func (v Value) Equal(o Value) bool {
	if v.normalizedKind() != o.normalizedKind() {
		return false
	}
	switch v.normalizedKind() {
	case KindBoolean:
		return v.flag == o.flag
	case KindNumeric:
		return v.number == o.number
	case KindEnumerated:
		return v.choice == o.choice
	}
	return true
}

func (v Value) String() string {
	switch v.normalizedKind() {
	case KindBoolean:
		if v.flag {
			return "sim"
		}
		return "não"
	case KindNumeric:
		return strconv.FormatFloat(v.number, 'f', -1, 64)
	case KindEnumerated:
		return v.choice
	}
	return "não sabe"
}

// MarshalJSON writes the raw scalar: true, 38.5, "Feminino" or null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.normalizedKind() {
	case KindBoolean:
		return json.Marshal(v.flag)
	case KindNumeric:
		if math.IsNaN(v.number) || math.IsInf(v.number, 0) {
			return nil, fmt.Errorf("value %v is not representable in JSON", v.number)
		}
		return json.Marshal(v.number)
	case KindEnumerated:
		return json.Marshal(v.choice)
	}
	return []byte("null"), nil
}

// UnmarshalJSON picks the kind from the JSON type, so a string sent for a
// boolean question decodes as Enumerated and is rejected by validation.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Unknown()
		return nil
	}
	switch data[0] {
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Choice(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*v = Number(f)
	default:
		return fmt.Errorf("unsupported answer value %s", string(data))
	}
	return nil
}
