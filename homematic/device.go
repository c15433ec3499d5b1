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
	"strings"
)

// ChannelDirection specifies the direction of a channel in a direct link.
type ChannelDirection int32

const (
	// DirectionNone: the channel does not support direct linking.
	DirectionNone     ChannelDirection = 0
	DirectionSender   ChannelDirection = 1
	DirectionReceiver ChannelDirection = 2
)

func (d ChannelDirection) String() string {
	switch d {
	case DirectionNone:
		return "none"
	case DirectionSender:
		return "sender"
	case DirectionReceiver:
		return "receiver"
	default:
		return fmt.Sprintf("direction(%d)", int32(d))
	}
}

// ParseChannelDirection parses a direction name
func ParseChannelDirection(s string) (ChannelDirection, bool) {
	switch strings.ToLower(s) {
	case "none":
		return DirectionNone, true
	case "sender":
		return DirectionSender, true
	case "receiver":
		return DirectionReceiver, true
	default:
		return 0, false
	}
}

// toDirection accepts the numeric wire form and the symbolic names.
func toDirection(name string, v Value) (ChannelDirection, error) {
	if s, ok := v.(string); ok {
		d, ok := ParseChannelDirection(s)
		if !ok {
			return 0, mismatch(name, "direction", v)
		}
		return d, nil
	}
	i, err := toInt32(name, v)
	if err != nil {
		return 0, err
	}
	return ChannelDirection(i), nil
}

// DeviceDescription describes a device or one of its channels. Both share
// one wire shape: devices have an empty Parent, channels carry the address of
// their device.
type DeviceDescription struct {
	// Type of device
	Type string
	// Address of channel or device, unique across all devices and channels
	Address string
	// Radio address. Devices only.
	RFAddress *int32
	// Addresses of the child channels
	Children []string
	// Address of the parent device, empty on devices
	Parent string
	// Type of the parent device
	ParentType *string
	// Channel number
	Index *int32
	// Secured transmission enabled
	AESActive bool
	// Names of the available parameter sets, e.g. MASTER, VALUES
	Paramsets []string
	// Firmware version. Devices only.
	Firmware *string
	// Firmware version available for update. Devices only.
	AvailableFirmware *string
	// Firmware can be updated. Devices only.
	Updatable bool
	// Version of the description
	Version *int32
	// Raw UI display flags
	Flags DeviceFlags

	// Roles the channel can take as sender in a link. Channels only.
	LinkSourceRoles RoleList
	// Roles the channel can take as receiver in a link. Channels only.
	LinkTargetRoles RoleList
	// Direction in a direct link. Channels only.
	Direction *ChannelDirection
	// Address of the other channel of a key pair
	Group *string
	// Address of the virtual team channel
	Team *string
	// Team selector shared by a channel and its team
	TeamTag *string
	// Channels assigned to a team channel. Nil when absent.
	TeamChannels []string

	// Serial number of the assigned interface. BidCos-RF only.
	Interface *string
	// Interface assignment follows reception conditions. BidCos-RF only.
	Roaming *bool
	// Receive mode. BidCos-RF devices only.
	RxMode *RxMode
}

// IsDevice returns true for top level devices
func (d *DeviceDescription) IsDevice() bool {
	return d.Parent == ""
}

// IsChannel returns true for channels
func (d *DeviceDescription) IsChannel() bool {
	return d.Parent != ""
}

func (d *DeviceDescription) Visible() bool   { return d.Flags.Visible() }
func (d *DeviceDescription) Internal() bool  { return d.Flags.Internal() }
func (d *DeviceDescription) Deletable() bool { return d.Flags.Deletable() }

// HasParamset returns true if the description lists the named paramset
func (d *DeviceDescription) HasParamset(name string) bool {
	for _, p := range d.Paramsets {
		if p == name {
			return true
		}
	}
	return false
}

// DecodeDeviceDescription decodes a device or channel description struct.
func DecodeDeviceDescription(v Value) (DeviceDescription, error) {
	return decodeDevice(0, v)
}

// DecodeDeviceList decodes the array returned by listDevices.
func DecodeDeviceList(v Value, opts ...BatchOption) ([]DeviceDescription, error) {
	items, err := toArray("devices", v)
	if err != nil {
		return nil, err
	}
	return decodeBatch(items, decodeDevice, opts...)
}

func decodeDevice(i int, v Value) (DeviceDescription, error) {
	var d DeviceDescription

	s, err := toStruct("device", v)
	if err != nil {
		return d, &EntityError{Entity: "device", Index: i, Err: err}
	}
	f := newFields(s, "")

	if d.Address, err = required(f, "ADDRESS", toString); err != nil {
		return d, &EntityError{Entity: "device", Index: i, Err: err}
	}
	if err := d.decodeFields(f); err != nil {
		return DeviceDescription{}, &EntityError{Entity: "device", Index: i, Address: d.Address, Err: err}
	}
	return d, nil
}

func (d *DeviceDescription) decodeFields(f fields) error {
	var err error

	if d.Type, err = required(f, "TYPE", toString); err != nil {
		return err
	}
	if d.Parent, err = required(f, "PARENT", toString); err != nil {
		return err
	}
	if d.Paramsets, err = required(f, "PARAMSETS", toStringList); err != nil {
		return err
	}
	flags, err := required(f, "FLAGS", toInt32)
	if err != nil {
		return err
	}
	d.Flags = DeviceFlags(flags)

	children, err := optional(f, "CHILDREN", toStringList)
	if err != nil {
		return err
	}
	d.Children = []string{}
	if children != nil {
		d.Children = *children
	}

	if d.RFAddress, err = optional(f, "RF_ADDRESS", toInt32); err != nil {
		return err
	}
	if d.ParentType, err = optional(f, "PARENT_TYPE", toString); err != nil {
		return err
	}
	if d.Index, err = optional(f, "INDEX", toInt32); err != nil {
		return err
	}
	aes, err := optional(f, "AES_ACTIVE", toIntBool)
	if err != nil {
		return err
	}
	d.AESActive = aes != nil && *aes
	if d.Firmware, err = optional(f, "FIRMWARE", toString); err != nil {
		return err
	}
	if d.AvailableFirmware, err = optional(f, "AVAILABLE_FIRMWARE", toString); err != nil {
		return err
	}
	updatable, err := optional(f, "UPDATABLE", toBool)
	if err != nil {
		return err
	}
	d.Updatable = updatable != nil && *updatable
	if d.Version, err = optional(f, "VERSION", toInt32); err != nil {
		return err
	}

	if d.LinkSourceRoles, err = roleListField(f, "LINK_SOURCE_ROLES"); err != nil {
		return err
	}
	if d.LinkTargetRoles, err = roleListField(f, "LINK_TARGET_ROLES"); err != nil {
		return err
	}
	if d.Direction, err = optional(f, "DIRECTION", toDirection); err != nil {
		return err
	}
	if d.Group, err = optional(f, "GROUP", toString); err != nil {
		return err
	}
	if d.Team, err = optional(f, "TEAM", toString); err != nil {
		return err
	}
	if d.TeamTag, err = optional(f, "TEAM_TAG", toString); err != nil {
		return err
	}
	teamChannels, err := optional(f, "TEAM_CHANNELS", toStringList)
	if err != nil {
		return err
	}
	if teamChannels != nil {
		d.TeamChannels = *teamChannels
	}

	if d.Interface, err = optional(f, "INTERFACE", toString); err != nil {
		return err
	}
	if d.Roaming, err = optional(f, "ROAMING", toIntBool); err != nil {
		return err
	}
	rx, err := optional(f, "RX_MODE", toInt32)
	if err != nil {
		return err
	}
	if rx != nil {
		mode := RxMode(*rx)
		d.RxMode = &mode
	}

	return nil
}

// DeviceIndex resolves addresses against a full device list. The decoder
// never checks cross references; unresolved addresses surface here.
type DeviceIndex struct {
	order     []*DeviceDescription
	byAddress map[string]*DeviceDescription
}

// NewDeviceIndex indexes devices by address. Later duplicates win.
func NewDeviceIndex(devices []DeviceDescription) *DeviceIndex {
	idx := &DeviceIndex{
		order:     make([]*DeviceDescription, 0, len(devices)),
		byAddress: make(map[string]*DeviceDescription, len(devices)),
	}
	for i := range devices {
		d := &devices[i]
		idx.order = append(idx.order, d)
		idx.byAddress[d.Address] = d
	}
	return idx
}

// Lookup returns the device or channel with the given address
func (idx *DeviceIndex) Lookup(address string) (*DeviceDescription, bool) {
	d, ok := idx.byAddress[address]
	return d, ok
}

// Devices returns the top level devices in input order
func (idx *DeviceIndex) Devices() []*DeviceDescription {
	var out []*DeviceDescription
	for _, d := range idx.order {
		if d.IsDevice() {
			out = append(out, d)
		}
	}
	return out
}

// Channels resolves the children of d. Addresses that match no entry are
// returned in unresolved; empty child addresses are dropped.
func (idx *DeviceIndex) Channels(d *DeviceDescription) (resolved []*DeviceDescription, unresolved []string) {
	for _, addr := range d.Children {
		if addr == "" {
			continue
		}
		if ch, ok := idx.byAddress[addr]; ok {
			resolved = append(resolved, ch)
		} else {
			unresolved = append(unresolved, addr)
		}
	}
	return resolved, unresolved
}

// Len returns the number of indexed entries
func (idx *DeviceIndex) Len() int {
	return len(idx.byAddress)
}
