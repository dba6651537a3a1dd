// internal/applications/factors.go
package applications

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// LawfulFactorKind is the closed set of factors the rubric may consume.
// Declaration order is the iteration order of LawfulFactors.
type LawfulFactorKind int

const (
	FactorRentToIncome LawfulFactorKind = iota
	FactorCreditScore
	FactorRentalHistory
	FactorCriminalHistoryWindow
	FactorVoucherCoverage
	FactorIowaSecurityDepositCompliance

	factorKindCount
)

var factorNames = [factorKindCount]string{
	"RentToIncome",
	"CreditScore",
	"RentalHistory",
	"CriminalHistoryWindow",
	"VoucherCoverage",
	"IowaSecurityDepositCompliance",
}

// FactorKinds lists every kind in canonical order.
func FactorKinds() []LawfulFactorKind {
	kinds := make([]LawfulFactorKind, factorKindCount)
	for i := range kinds {
		kinds[i] = LawfulFactorKind(i)
	}
	return kinds
}

func (k LawfulFactorKind) valid() bool { return k >= 0 && k < factorKindCount }

func (k LawfulFactorKind) String() string {
	if !k.valid() {
		return fmt.Sprintf("LawfulFactorKind(%d)", int(k))
	}
	return factorNames[k]
}

func ParseFactorKind(name string) (LawfulFactorKind, error) {
	for i, n := range factorNames {
		if n == name {
			return LawfulFactorKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown lawful factor %q", name)
}

func (k LawfulFactorKind) MarshalText() ([]byte, error) {
	if !k.valid() {
		return nil, fmt.Errorf("invalid lawful factor %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *LawfulFactorKind) UnmarshalText(text []byte) error {
	parsed, err := ParseFactorKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

type valueKind uint8

const (
	valueDecimal valueKind = iota + 1
	valueBoolean
	valueCount
	valueText
)

// LawfulFactorValue is a tagged union over the value shapes a factor can take.
// The zero value holds nothing.
type LawfulFactorValue struct {
	kind    valueKind
	decimal float32
	boolean bool
	count   uint32
	text    string
}

func Decimal(v float32) LawfulFactorValue { return LawfulFactorValue{kind: valueDecimal, decimal: v} }
func Boolean(v bool) LawfulFactorValue    { return LawfulFactorValue{kind: valueBoolean, boolean: v} }
func Count(v uint32) LawfulFactorValue    { return LawfulFactorValue{kind: valueCount, count: v} }
func Text(v string) LawfulFactorValue     { return LawfulFactorValue{kind: valueText, text: v} }

func (v LawfulFactorValue) AsDecimal() (float32, bool) { return v.decimal, v.kind == valueDecimal }
func (v LawfulFactorValue) AsBoolean() (bool, bool)    { return v.boolean, v.kind == valueBoolean }
func (v LawfulFactorValue) AsCount() (uint32, bool)    { return v.count, v.kind == valueCount }
func (v LawfulFactorValue) AsText() (string, bool)     { return v.text, v.kind == valueText }

func (v LawfulFactorValue) String() string {
	switch v.kind {
	case valueDecimal:
		return fmt.Sprintf("Decimal(%g)", v.decimal)
	case valueBoolean:
		return fmt.Sprintf("Boolean(%t)", v.boolean)
	case valueCount:
		return fmt.Sprintf("Count(%d)", v.count)
	case valueText:
		return fmt.Sprintf("Text(%q)", v.text)
	default:
		return "None"
	}
}

// MarshalJSON writes the externally tagged form, e.g. {"Decimal":0.27}.
func (v LawfulFactorValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case valueDecimal:
		return json.Marshal(map[string]float32{"Decimal": v.decimal})
	case valueBoolean:
		return json.Marshal(map[string]bool{"Boolean": v.boolean})
	case valueCount:
		return json.Marshal(map[string]uint32{"Count": v.count})
	case valueText:
		return json.Marshal(map[string]string{"Text": v.text})
	default:
		return nil, fmt.Errorf("empty lawful factor value")
	}
}

func (v *LawfulFactorValue) UnmarshalJSON(data []byte) error {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("invalid lawful factor value: %w", err)
	}
	if len(tagged) != 1 {
		return fmt.Errorf("lawful factor value must have exactly one tag, got %d", len(tagged))
	}
	for tag, raw := range tagged {
		var err error
		switch tag {
		case "Decimal":
			v.kind = valueDecimal
			err = json.Unmarshal(raw, &v.decimal)
		case "Boolean":
			v.kind = valueBoolean
			err = json.Unmarshal(raw, &v.boolean)
		case "Count":
			v.kind = valueCount
			err = json.Unmarshal(raw, &v.count)
		case "Text":
			v.kind = valueText
			err = json.Unmarshal(raw, &v.text)
		default:
			return fmt.Errorf("unknown lawful factor value tag %q", tag)
		}
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", tag, err)
		}
	}
	return nil
}

// LawfulFactors is a fixed-key map ordered by LawfulFactorKind. Only the
// compliance guard populates it; callers outside the package can read it or
// decode a stored copy, never edit one.
type LawfulFactors struct {
	values [factorKindCount]LawfulFactorValue
}

func (f *LawfulFactors) set(kind LawfulFactorKind, value LawfulFactorValue) {
	if kind.valid() {
		f.values[kind] = value
	}
}

func (f LawfulFactors) Get(kind LawfulFactorKind) (LawfulFactorValue, bool) {
	if !kind.valid() || f.values[kind].kind == 0 {
		return LawfulFactorValue{}, false
	}
	return f.values[kind], true
}

func (f LawfulFactors) Has(kind LawfulFactorKind) bool {
	_, ok := f.Get(kind)
	return ok
}

// Kinds returns the present kinds in canonical order.
func (f LawfulFactors) Kinds() []LawfulFactorKind {
	var kinds []LawfulFactorKind
	for i, v := range f.values {
		if v.kind != 0 {
			kinds = append(kinds, LawfulFactorKind(i))
		}
	}
	return kinds
}

func (f LawfulFactors) Len() int { return len(f.Kinds()) }

func (f LawfulFactors) decimal(kind LawfulFactorKind) (float32, bool) {
	v, ok := f.Get(kind)
	if !ok {
		return 0, false
	}
	return v.AsDecimal()
}

func (f LawfulFactors) count(kind LawfulFactorKind) (uint32, bool) {
	v, ok := f.Get(kind)
	if !ok {
		return 0, false
	}
	return v.AsCount()
}

func (f LawfulFactors) boolean(kind LawfulFactorKind) (bool, bool) {
	v, ok := f.Get(kind)
	if !ok {
		return false, false
	}
	return v.AsBoolean()
}

// MarshalJSON emits an object with keys in canonical order.
func (f LawfulFactors) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kind := range f.Kinds() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(kind.String())
		val, err := json.Marshal(f.values[kind])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (f *LawfulFactors) UnmarshalJSON(data []byte) error {
	var raw map[LawfulFactorKind]LawfulFactorValue
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = LawfulFactors{}
	for kind, value := range raw {
		f.set(kind, value)
	}
	return nil
}
