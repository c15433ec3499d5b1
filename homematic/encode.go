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

// EncodeParameterDescription renders a description back into its wire
// struct. Decoding the result yields an equal description.
func EncodeParameterDescription(p ParameterDescription) Struct {
	return p.encode()
}

func encodeCommon(t ParameterType, ops, flags int64, m ParameterMeta) Struct {
	s := Struct{
		"TYPE":       string(t),
		"OPERATIONS": ops,
		"FLAGS":      flags,
	}
	if m.Unit != nil {
		s["UNIT"] = *m.Unit
	}
	if m.TabOrder != nil {
		s["TAB_ORDER"] = int64(*m.TabOrder)
	}
	if m.Control != nil {
		s["CONTROL"] = *m.Control
	}
	return s
}

func encodeSpecials[T float32 | int32](specials []Special[T], conv func(T) Value) Array {
	out := make(Array, len(specials))
	for i, sp := range specials {
		out[i] = Struct{"ID": sp.ID, "VALUE": conv(sp.Value)}
	}
	return out
}

func (p *FloatParameterDescription) encode() Struct {
	s := encodeCommon(TypeFloat, int64(p.Operations), int64(p.Flags), p.ParameterMeta)
	s["DEFAULT"] = float64(p.Default)
	s["MIN"] = float64(p.Min)
	s["MAX"] = float64(p.Max)
	if p.Special != nil {
		s["SPECIAL"] = encodeSpecials(p.Special, func(v float32) Value { return float64(v) })
	}
	return s
}

func (p *IntegerParameterDescription) encode() Struct {
	s := encodeCommon(TypeInteger, int64(p.Operations), int64(p.Flags), p.ParameterMeta)
	s["DEFAULT"] = int64(p.Default)
	s["MIN"] = int64(p.Min)
	s["MAX"] = int64(p.Max)
	if p.Special != nil {
		s["SPECIAL"] = encodeSpecials(p.Special, func(v int32) Value { return int64(v) })
	}
	return s
}

func (p *BoolParameterDescription) encodeAs(t ParameterType) Struct {
	s := encodeCommon(t, int64(p.Operations), int64(p.Flags), p.ParameterMeta)
	s["DEFAULT"] = p.Default
	s["MIN"] = p.Min
	s["MAX"] = p.Max
	return s
}

func (p *BoolParameterDescription) encode() Struct { return p.encodeAs(TypeBool) }

func (p *ActionParameterDescription) encode() Struct { return p.encodeAs(TypeAction) }

func (p *EnumParameterDescription) encode() Struct {
	s := encodeCommon(TypeEnum, int64(p.Operations), int64(p.Flags), p.ParameterMeta)
	s["DEFAULT"] = p.Default
	s["MIN"] = p.Min
	s["MAX"] = p.Max
	values := make(Array, len(p.Values))
	for i, v := range p.Values {
		values[i] = v
	}
	s["VALUE_LIST"] = values
	return s
}

func (p *StringParameterDescription) encode() Struct {
	s := encodeCommon(TypeString, int64(p.Operations), int64(p.Flags), p.ParameterMeta)
	s["DEFAULT"] = p.Default
	s["MIN"] = p.Min
	s["MAX"] = p.Max
	return s
}
