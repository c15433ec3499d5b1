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

import "fmt"

// Well known service message ids
const (
	MessageUnreach       = "UNREACH"
	MessageStickyUnreach = "STICKY_UNREACH"
	MessageLowBat        = "LOWBAT"
	MessageConfigPending = "CONFIG_PENDING"
	MessageUpdatePending = "UPDATE_PENDING"
	MessageDeviceInBoot  = "DEVICE_IN_BOOTLOADER"
)

// ServiceMessage is an active fault or condition reported for a device or
// channel. The meaning of Value depends on ID and is not interpreted here.
type ServiceMessage struct {
	Address string
	ID      string
	Value   Value
}

func (m ServiceMessage) String() string {
	return fmt.Sprintf("%s %s=%v", m.Address, m.ID, m.Value)
}

// DecodeServiceMessage decodes the positional triple
// [address, message id, value].
func DecodeServiceMessage(v Value) (ServiceMessage, error) {
	var m ServiceMessage
	items, err := toArray("service message", v)
	if err != nil {
		return m, err
	}
	if len(items) != 3 {
		return m, &ArityError{Expected: 3, Actual: len(items)}
	}
	if m.Address, err = toString("service message[0]", items[0]); err != nil {
		return m, err
	}
	if m.ID, err = toString("service message[1]", items[1]); err != nil {
		return m, err
	}
	m.Value = items[2]
	return m, nil
}

// DecodeServiceMessageList decodes the array returned by getServiceMessages.
func DecodeServiceMessageList(v Value, opts ...BatchOption) ([]ServiceMessage, error) {
	items, err := toArray("service messages", v)
	if err != nil {
		return nil, err
	}
	return decodeBatch(items, decodeServiceMessage, opts...)
}

func decodeServiceMessage(i int, v Value) (ServiceMessage, error) {
	m, err := DecodeServiceMessage(v)
	if err != nil {
		e := &EntityError{Entity: "service message", Index: i, Err: err}
		if items, ok := v.(Array); ok && len(items) > 0 {
			if addr, ok := items[0].(string); ok {
				e.Address = addr
			}
		}
		return m, e
	}
	return m, nil
}
