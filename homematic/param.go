// Copyright 2025 Edgeo SCADA
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package homematic

import (
	"fmt"
	"sort"
)

// ParameterType is the TYPE tag of a parameter description
type ParameterType string

const (
	TypeFloat   ParameterType = "FLOAT"
	TypeInteger ParameterType = "INTEGER"
	TypeBool    ParameterType = "BOOL"
	TypeEnum    ParameterType = "ENUM"
	TypeString  ParameterType = "STRING"
	TypeAction  ParameterType = "ACTION"
)

// ParameterDescription describes one parameter of a paramset. It is one of
// *FloatParameterDescription, *IntegerParameterDescription,
// *BoolParameterDescription, *ActionParameterDescription,
// *EnumParameterDescription or *StringParameterDescription.
type ParameterDescription interface {
	// Type returns the wire tag. ACTION and BOOL share a shape but keep
	// their own tags.
	Type() ParameterType
	// Access returns the OPERATIONS bitmask
	Access() Operations
	// UI returns the FLAGS bitmask
	UI() ParameterFlags
	// Meta returns the optional presentation fields
	Meta() ParameterMeta

	encode() Struct
}

// ParameterMeta holds the optional fields every variant carries
type ParameterMeta struct {
	Unit     *string
	TabOrder *int32
	Control  *string
}

func (m ParameterMeta) Meta() ParameterMeta { return m }

// Special is a named preset value, e.g. OPEN = 100.0
type Special[T float32 | int32] struct {
	ID    string
	Value T
}

// FloatParameterDescription describes a FLOAT parameter
type FloatParameterDescription struct {
	Operations Operations
	Flags      ParameterFlags
	Default    float32
	Min        float32
	Max        float32
	ParameterMeta
	// Nil when absent
	Special []Special[float32]
}

func (p *FloatParameterDescription) Type() ParameterType { return TypeFloat }
func (p *FloatParameterDescription) Access() Operations  { return p.Operations }
func (p *FloatParameterDescription) UI() ParameterFlags  { return p.Flags }

// IntegerParameterDescription describes an INTEGER parameter
type IntegerParameterDescription struct {
	Operations Operations
	Flags      ParameterFlags
	Default    int32
	Min        int32
	Max        int32
	ParameterMeta
	// Nil when absent
	Special []Special[int32]
}

func (p *IntegerParameterDescription) Type() ParameterType { return TypeInteger }
func (p *IntegerParameterDescription) Access() Operations  { return p.Operations }
func (p *IntegerParameterDescription) UI() ParameterFlags  { return p.Flags }

// BoolParameterDescription describes a BOOL parameter
type BoolParameterDescription struct {
	Operations Operations
	Flags      ParameterFlags
	Default    bool
	Min        bool
	Max        bool
	ParameterMeta
}

func (p *BoolParameterDescription) Type() ParameterType { return TypeBool }
func (p *BoolParameterDescription) Access() Operations  { return p.Operations }
func (p *BoolParameterDescription) UI() ParameterFlags  { return p.Flags }

// ActionParameterDescription describes an ACTION parameter: a command that
// triggers something on the device rather than a stored value. Its fields
// are those of a BOOL.
type ActionParameterDescription struct {
	BoolParameterDescription
}

func (p *ActionParameterDescription) Type() ParameterType { return TypeAction }

// EnumParameterDescription describes an ENUM parameter. Default, Min and Max
// are indices into Values kept as sent; they are not range checked.
type EnumParameterDescription struct {
	// ENUM descriptions carry 8 bit OPERATIONS and FLAGS
	Operations uint8
	Flags      uint8
	Default    string
	Min        string
	Max        string
	ParameterMeta
	Values []string
}

func (p *EnumParameterDescription) Type() ParameterType { return TypeEnum }
func (p *EnumParameterDescription) Access() Operations  { return Operations(p.Operations) }
func (p *EnumParameterDescription) UI() ParameterFlags  { return ParameterFlags(p.Flags) }

// StringParameterDescription describes a STRING parameter
type StringParameterDescription struct {
	Operations Operations
	Flags      ParameterFlags
	Default    string
	Min        string
	Max        string
	ParameterMeta
}

func (p *StringParameterDescription) Type() ParameterType { return TypeString }
func (p *StringParameterDescription) Access() Operations  { return p.Operations }
func (p *StringParameterDescription) UI() ParameterFlags  { return p.Flags }

// ParamsetDescription maps parameter ids to their descriptions
type ParamsetDescription map[string]ParameterDescription

// IDs returns the parameter ids in sorted order
func (d ParamsetDescription) IDs() []string {
	ids := make([]string, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Paramset maps parameter ids to untyped values. The same shape is used for
// reading and for putParamset.
type Paramset map[string]Value

// IDs returns the parameter ids in sorted order
func (p Paramset) IDs() []string {
	ids := make([]string, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// parameterDecoders dispatches on the TYPE tag. A tag missing here is
// rejected.
var parameterDecoders = map[ParameterType]func(f fields) (ParameterDescription, error){
	TypeFloat:   decodeFloatParameter,
	TypeInteger: decodeIntegerParameter,
	TypeBool:    decodeBoolParameter,
	TypeEnum:    decodeEnumParameter,
	TypeString:  decodeStringParameter,
	TypeAction:  decodeActionParameter,
}

// ParameterTypes returns the known parameter type tags, sorted
func ParameterTypes() []ParameterType {
	types := make([]ParameterType, 0, len(parameterDecoders))
	for t := range parameterDecoders {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// DecodeParameterDescription decodes a single parameter description struct.
func DecodeParameterDescription(v Value) (ParameterDescription, error) {
	s, err := toStruct("parameter", v)
	if err != nil {
		return nil, err
	}
	f := newFields(s, "")

	tag, err := required(f, "TYPE", toString)
	if err != nil {
		return nil, err
	}
	dec, ok := parameterDecoders[ParameterType(tag)]
	if !ok {
		return nil, &UnknownDiscriminantError{Field: "TYPE", Tag: tag}
	}
	return dec(f)
}

// DecodeParamsetDescription decodes the struct returned by
// getParamsetDescription. Any malformed parameter fails the whole paramset.
func DecodeParamsetDescription(v Value) (ParamsetDescription, error) {
	s, err := toStruct("paramset description", v)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make(ParamsetDescription, len(s))
	for i, id := range ids {
		p, err := DecodeParameterDescription(s[id])
		if err != nil {
			return nil, &EntityError{Entity: "parameter", Index: i, Address: id, Err: err}
		}
		out[id] = p
	}
	return out, nil
}

// DecodeParamset decodes the struct returned by getParamset.
func DecodeParamset(v Value) (Paramset, error) {
	s, err := toStruct("paramset", v)
	if err != nil {
		return nil, err
	}
	return Paramset(s), nil
}

func decodeAccess(f fields) (Operations, ParameterFlags, error) {
	ops, err := required(f, "OPERATIONS", toInt32)
	if err != nil {
		return 0, 0, err
	}
	flags, err := required(f, "FLAGS", toInt32)
	if err != nil {
		return 0, 0, err
	}
	return Operations(ops), ParameterFlags(flags), nil
}

func decodeMeta(f fields) (ParameterMeta, error) {
	var m ParameterMeta
	var err error
	if m.Unit, err = optional(f, "UNIT", toString); err != nil {
		return m, err
	}
	if m.TabOrder, err = optional(f, "TAB_ORDER", toInt32); err != nil {
		return m, err
	}
	if m.Control, err = optional(f, "CONTROL", toString); err != nil {
		return m, err
	}
	return m, nil
}

// decodeRange reads DEFAULT, MIN and MAX with the same converter.
func decodeRange[T any](f fields, conv converter[T]) (def, lo, hi T, err error) {
	if def, err = required(f, "DEFAULT", conv); err != nil {
		return
	}
	if lo, err = required(f, "MIN", conv); err != nil {
		return
	}
	hi, err = required(f, "MAX", conv)
	return
}

func decodeSpecials[T float32 | int32](f fields, conv converter[T]) ([]Special[T], error) {
	v, ok := f.lookup("SPECIAL")
	if !ok {
		return nil, nil
	}
	name := f.name("SPECIAL")
	items, err := toArray(name, v)
	if err != nil {
		return nil, err
	}
	out := make([]Special[T], len(items))
	for i, item := range items {
		itemName := fmt.Sprintf("%s[%d]", name, i)
		s, err := toStruct(itemName, item)
		if err != nil {
			return nil, err
		}
		sf := newFields(s, itemName)
		if out[i].ID, err = required(sf, "ID", toString); err != nil {
			return nil, err
		}
		if out[i].Value, err = required(sf, "VALUE", conv); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func decodeFloatParameter(f fields) (ParameterDescription, error) {
	p := &FloatParameterDescription{}
	var err error
	if p.Operations, p.Flags, err = decodeAccess(f); err != nil {
		return nil, err
	}
	if p.Default, p.Min, p.Max, err = decodeRange(f, toFloat32); err != nil {
		return nil, err
	}
	if p.ParameterMeta, err = decodeMeta(f); err != nil {
		return nil, err
	}
	if p.Special, err = decodeSpecials(f, toFloat32); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeIntegerParameter(f fields) (ParameterDescription, error) {
	p := &IntegerParameterDescription{}
	var err error
	if p.Operations, p.Flags, err = decodeAccess(f); err != nil {
		return nil, err
	}
	if p.Default, p.Min, p.Max, err = decodeRange(f, toInt32); err != nil {
		return nil, err
	}
	if p.ParameterMeta, err = decodeMeta(f); err != nil {
		return nil, err
	}
	if p.Special, err = decodeSpecials(f, toInt32); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeBoolFields(f fields) (BoolParameterDescription, error) {
	var p BoolParameterDescription
	var err error
	if p.Operations, p.Flags, err = decodeAccess(f); err != nil {
		return p, err
	}
	if p.Default, p.Min, p.Max, err = decodeRange(f, toBool); err != nil {
		return p, err
	}
	if p.ParameterMeta, err = decodeMeta(f); err != nil {
		return p, err
	}
	return p, nil
}

func decodeBoolParameter(f fields) (ParameterDescription, error) {
	p, err := decodeBoolFields(f)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func decodeActionParameter(f fields) (ParameterDescription, error) {
	p, err := decodeBoolFields(f)
	if err != nil {
		return nil, err
	}
	return &ActionParameterDescription{BoolParameterDescription: p}, nil
}

func decodeEnumParameter(f fields) (ParameterDescription, error) {
	p := &EnumParameterDescription{}
	var err error
	if p.Operations, err = required(f, "OPERATIONS", toUint8); err != nil {
		return nil, err
	}
	if p.Flags, err = required(f, "FLAGS", toUint8); err != nil {
		return nil, err
	}
	if p.Default, p.Min, p.Max, err = decodeRange(f, toIndexString); err != nil {
		return nil, err
	}
	if p.ParameterMeta, err = decodeMeta(f); err != nil {
		return nil, err
	}
	if p.Values, err = required(f, "VALUE_LIST", toStringList); err != nil {
		return nil, err
	}
	return p, nil
}

func decodeStringParameter(f fields) (ParameterDescription, error) {
	p := &StringParameterDescription{}
	var err error
	if p.Operations, p.Flags, err = decodeAccess(f); err != nil {
		return nil, err
	}
	if p.Default, p.Min, p.Max, err = decodeRange(f, toString); err != nil {
		return nil, err
	}
	if p.ParameterMeta, err = decodeMeta(f); err != nil {
		return nil, err
	}
	return p, nil
}
