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

import "strings"

// FlagLabel names one bit of a bitmask
type FlagLabel struct {
	Bit  int32
	Name string
}

// FlagTable maps bits to labels. Bits missing from the table are ignored.
type FlagTable []FlagLabel

// Set returns the capability set of raw: one entry per label.
func (t FlagTable) Set(raw int32) map[string]bool {
	set := make(map[string]bool, len(t))
	for _, l := range t {
		set[l.Name] = raw&l.Bit != 0
	}
	return set
}

// Names returns the labels of the bits set in raw, in table order.
func (t FlagTable) Names(raw int32) []string {
	var names []string
	for _, l := range t {
		if raw&l.Bit != 0 {
			names = append(names, l.Name)
		}
	}
	return names
}

func (t FlagTable) format(raw int32) string {
	names := t.Names(raw)
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// DeviceFlags is the UI display bitmask of a device or channel.
type DeviceFlags int32

const (
	// DeviceFlagVisible: the object should be visible to the end user.
	DeviceFlagVisible DeviceFlags = 0x1
	// DeviceFlagInternal: the object is only used internally.
	DeviceFlagInternal DeviceFlags = 0x2
	// DeviceFlagDontDelete: the object cannot be deleted.
	DeviceFlagDontDelete DeviceFlags = 0x8
)

// DeviceFlagTable labels DeviceFlags bits
var DeviceFlagTable = FlagTable{
	{Bit: int32(DeviceFlagVisible), Name: "visible"},
	{Bit: int32(DeviceFlagInternal), Name: "internal"},
	{Bit: int32(DeviceFlagDontDelete), Name: "dontDelete"},
}

func (f DeviceFlags) Visible() bool  { return f&DeviceFlagVisible != 0 }
func (f DeviceFlags) Internal() bool { return f&DeviceFlagInternal != 0 }

// Deletable is the negation of the don't-delete bit.
func (f DeviceFlags) Deletable() bool { return f&DeviceFlagDontDelete == 0 }

func (f DeviceFlags) Names() []string { return DeviceFlagTable.Names(int32(f)) }
func (f DeviceFlags) String() string  { return DeviceFlagTable.format(int32(f)) }

// RxMode is the receive mode bitmask of a BidCos-RF device.
type RxMode int32

const (
	// RxModeAlways: the device is permanently on receive.
	RxModeAlways RxMode = 0x1
	// RxModeBurst: the device operates in wake on radio mode.
	RxModeBurst RxMode = 0x2
	// RxModeConfig: reachable after pressing the configuration key.
	RxModeConfig RxMode = 0x4
	// RxModeWakeup: can be woken up after a direct communication with the CCU.
	RxModeWakeup RxMode = 0x8
	// RxModeLazyConfig: configurable after a normal operation, e.g. a key press.
	RxModeLazyConfig RxMode = 0x10
)

// RxModeTable labels RxMode bits
var RxModeTable = FlagTable{
	{Bit: int32(RxModeAlways), Name: "always"},
	{Bit: int32(RxModeBurst), Name: "burst"},
	{Bit: int32(RxModeConfig), Name: "config"},
	{Bit: int32(RxModeWakeup), Name: "wakeup"},
	{Bit: int32(RxModeLazyConfig), Name: "lazyConfig"},
}

func (m RxMode) Always() bool     { return m&RxModeAlways != 0 }
func (m RxMode) Burst() bool      { return m&RxModeBurst != 0 }
func (m RxMode) Config() bool     { return m&RxModeConfig != 0 }
func (m RxMode) Wakeup() bool     { return m&RxModeWakeup != 0 }
func (m RxMode) LazyConfig() bool { return m&RxModeLazyConfig != 0 }
func (m RxMode) Names() []string  { return RxModeTable.Names(int32(m)) }
func (m RxMode) String() string   { return RxModeTable.format(int32(m)) }

// DeleteFlags controls deleteDevice. It is only ever encoded.
type DeleteFlags int32

const (
	// DeleteReset resets the device to factory state before deletion.
	DeleteReset DeleteFlags = 0x1
	// DeleteForce deletes the device even when it is not reachable.
	DeleteForce DeleteFlags = 0x2
	// DeleteDefer deletes an unreachable device at the next opportunity.
	DeleteDefer DeleteFlags = 0x4
)

// DeleteFlagTable labels DeleteFlags bits
var DeleteFlagTable = FlagTable{
	{Bit: int32(DeleteReset), Name: "reset"},
	{Bit: int32(DeleteForce), Name: "force"},
	{Bit: int32(DeleteDefer), Name: "defer"},
}

// Bits returns the wire encoding of f.
func (f DeleteFlags) Bits() int32    { return int32(f) }
func (f DeleteFlags) Reset() bool    { return f&DeleteReset != 0 }
func (f DeleteFlags) Force() bool    { return f&DeleteForce != 0 }
func (f DeleteFlags) Defer() bool    { return f&DeleteDefer != 0 }
func (f DeleteFlags) String() string { return DeleteFlagTable.format(int32(f)) }

// Operations is the access bitmask of a parameter.
type Operations int32

const (
	OperationRead  Operations = 0x1
	OperationWrite Operations = 0x2
	OperationEvent Operations = 0x4
)

// OperationTable labels Operations bits
var OperationTable = FlagTable{
	{Bit: int32(OperationRead), Name: "read"},
	{Bit: int32(OperationWrite), Name: "write"},
	{Bit: int32(OperationEvent), Name: "event"},
}

func (o Operations) Read() bool      { return o&OperationRead != 0 }
func (o Operations) Write() bool     { return o&OperationWrite != 0 }
func (o Operations) Event() bool     { return o&OperationEvent != 0 }
func (o Operations) Names() []string { return OperationTable.Names(int32(o)) }
func (o Operations) String() string  { return OperationTable.format(int32(o)) }

// ParameterFlags is the UI bitmask of a parameter.
type ParameterFlags int32

const (
	ParameterFlagVisible   ParameterFlags = 0x01
	ParameterFlagInternal  ParameterFlags = 0x02
	ParameterFlagTransform ParameterFlags = 0x04
	ParameterFlagService   ParameterFlags = 0x08
	ParameterFlagSticky    ParameterFlags = 0x10
)

// ParameterFlagTable labels ParameterFlags bits
var ParameterFlagTable = FlagTable{
	{Bit: int32(ParameterFlagVisible), Name: "visible"},
	{Bit: int32(ParameterFlagInternal), Name: "internal"},
	{Bit: int32(ParameterFlagTransform), Name: "transform"},
	{Bit: int32(ParameterFlagService), Name: "service"},
	{Bit: int32(ParameterFlagSticky), Name: "sticky"},
}

func (f ParameterFlags) Visible() bool   { return f&ParameterFlagVisible != 0 }
func (f ParameterFlags) Internal() bool  { return f&ParameterFlagInternal != 0 }
func (f ParameterFlags) Transform() bool { return f&ParameterFlagTransform != 0 }
func (f ParameterFlags) Service() bool   { return f&ParameterFlagService != 0 }
func (f ParameterFlags) Sticky() bool    { return f&ParameterFlagSticky != 0 }
func (f ParameterFlags) Names() []string { return ParameterFlagTable.Names(int32(f)) }
func (f ParameterFlags) String() string  { return ParameterFlagTable.format(int32(f)) }
