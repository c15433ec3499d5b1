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

package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/edgeo-scada/homematic/homematic"
)

// deviceView is the presentation form of a device description
type deviceView struct {
	Type              string      `json:"type"`
	Address           string      `json:"address"`
	RFAddress         *int32      `json:"rfAddress"`
	Children          []string    `json:"children"`
	Parent            *string     `json:"parent"`
	ParentType        *string     `json:"parentType"`
	Index             *int32      `json:"index"`
	AES               bool        `json:"aes"`
	ParamSets         []string    `json:"paramSets"`
	Firmware          *string     `json:"firmware"`
	AvailableFirmware *string     `json:"availableFirmware"`
	Updatable         bool        `json:"updatable"`
	Version           *int32      `json:"version"`
	Visible           bool        `json:"visible"`
	Internal          bool        `json:"internal"`
	Deletable         bool        `json:"deletable"`
	LinkSourceRoles   []string    `json:"linkSourceRoles"`
	LinkTargetRoles   []string    `json:"linkTargetRoles"`
	Direction         *string     `json:"direction"`
	Group             *string     `json:"group"`
	Team              *string     `json:"team"`
	TeamTag           *string     `json:"teamTag"`
	TeamChannels      []string    `json:"teamChannels"`
	Interface         *string     `json:"interface"`
	Roaming           *bool       `json:"roaming"`
	RxMode            *rxModeView `json:"rxMode"`
}

type rxModeView struct {
	Always     bool `json:"always"`
	Burst      bool `json:"burst"`
	Config     bool `json:"config"`
	Wakeup     bool `json:"wakeup"`
	LazyConfig bool `json:"lazyConfig"`
}

// projectDevice maps a decoded description to its presentation form. An
// empty parent becomes absent and absent role lists stay null.
func projectDevice(d homematic.DeviceDescription) deviceView {
	v := deviceView{
		Type:              d.Type,
		Address:           d.Address,
		RFAddress:         d.RFAddress,
		Children:          d.Children,
		ParentType:        d.ParentType,
		Index:             d.Index,
		AES:               d.AESActive,
		ParamSets:         d.Paramsets,
		Firmware:          d.Firmware,
		AvailableFirmware: d.AvailableFirmware,
		Updatable:         d.Updatable,
		Version:           d.Version,
		Visible:           d.Visible(),
		Internal:          d.Internal(),
		Deletable:         d.Deletable(),
		LinkSourceRoles:   roleView(d.LinkSourceRoles),
		LinkTargetRoles:   roleView(d.LinkTargetRoles),
		Group:             d.Group,
		Team:              d.Team,
		TeamTag:           d.TeamTag,
		TeamChannels:      d.TeamChannels,
		Interface:         d.Interface,
		Roaming:           d.Roaming,
	}
	if d.Parent != "" {
		parent := d.Parent
		v.Parent = &parent
	}
	if d.Direction != nil {
		dir := d.Direction.String()
		v.Direction = &dir
	}
	if d.RxMode != nil {
		m := *d.RxMode
		v.RxMode = &rxModeView{
			Always:     m.Always(),
			Burst:      m.Burst(),
			Config:     m.Config(),
			Wakeup:     m.Wakeup(),
			LazyConfig: m.LazyConfig(),
		}
	}
	return v
}

func roleView(r homematic.RoleList) []string {
	if !r.Valid {
		return nil
	}
	if r.Roles == nil {
		return []string{}
	}
	return r.Roles
}

// deviceRows flattens a description for key/value table output
func deviceRows(d homematic.DeviceDescription) (map[string]string, []string) {
	order := []string{
		"TYPE", "ADDRESS", "RF_ADDRESS", "PARENT", "PARENT_TYPE", "INDEX", "CHILDREN",
		"PARAMSETS", "FLAGS", "AES_ACTIVE", "FIRMWARE", "AVAILABLE_FIRMWARE", "UPDATABLE",
		"VERSION", "LINK_SOURCE_ROLES", "LINK_TARGET_ROLES", "DIRECTION", "GROUP", "TEAM",
		"TEAM_TAG", "TEAM_CHANNELS", "INTERFACE", "ROAMING", "RX_MODE",
	}
	pairs := map[string]string{
		"TYPE":       d.Type,
		"ADDRESS":    d.Address,
		"CHILDREN":   strings.Join(d.Children, ", "),
		"PARAMSETS":  strings.Join(d.Paramsets, ", "),
		"FLAGS":      d.Flags.String(),
		"AES_ACTIVE": strconv.FormatBool(d.AESActive),
		"UPDATABLE":  strconv.FormatBool(d.Updatable),
	}
	if d.Parent != "" {
		pairs["PARENT"] = d.Parent
	}
	setOpt(pairs, "RF_ADDRESS", d.RFAddress)
	setOpt(pairs, "PARENT_TYPE", d.ParentType)
	setOpt(pairs, "INDEX", d.Index)
	setOpt(pairs, "FIRMWARE", d.Firmware)
	setOpt(pairs, "AVAILABLE_FIRMWARE", d.AvailableFirmware)
	setOpt(pairs, "VERSION", d.Version)
	setOpt(pairs, "DIRECTION", d.Direction)
	setOpt(pairs, "GROUP", d.Group)
	setOpt(pairs, "TEAM", d.Team)
	setOpt(pairs, "TEAM_TAG", d.TeamTag)
	setOpt(pairs, "INTERFACE", d.Interface)
	setOpt(pairs, "ROAMING", d.Roaming)
	setOpt(pairs, "RX_MODE", d.RxMode)
	if d.LinkSourceRoles.Valid {
		pairs["LINK_SOURCE_ROLES"] = d.LinkSourceRoles.String()
	}
	if d.LinkTargetRoles.Valid {
		pairs["LINK_TARGET_ROLES"] = d.LinkTargetRoles.String()
	}
	if d.TeamChannels != nil {
		pairs["TEAM_CHANNELS"] = strings.Join(d.TeamChannels, ", ")
	}
	return pairs, order
}

func setOpt[T any](pairs map[string]string, key string, v *T) {
	if v != nil {
		pairs[key] = fmt.Sprint(*v)
	}
}

// parameterView is the presentation form of a parameter description, tagged
// by the lowercase type name
type parameterView struct {
	Type       string        `json:"type"`
	Operations int32         `json:"operations"`
	Flags      int32         `json:"flags"`
	Default    any           `json:"default"`
	Min        any           `json:"min"`
	Max        any           `json:"max"`
	Unit       *string       `json:"unit"`
	TabOrder   *int32        `json:"tabOrder"`
	Control    *string       `json:"control"`
	Special    []specialView `json:"special,omitempty"`
	Values     []string      `json:"values,omitempty"`
}

type specialView struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

func projectParameter(p homematic.ParameterDescription) parameterView {
	m := p.Meta()
	v := parameterView{
		Type:       strings.ToLower(string(p.Type())),
		Operations: int32(p.Access()),
		Flags:      int32(p.UI()),
		Unit:       m.Unit,
		TabOrder:   m.TabOrder,
		Control:    m.Control,
	}
	switch pd := p.(type) {
	case *homematic.FloatParameterDescription:
		v.Default, v.Min, v.Max = pd.Default, pd.Min, pd.Max
		for _, s := range pd.Special {
			v.Special = append(v.Special, specialView{ID: s.ID, Value: s.Value})
		}
	case *homematic.IntegerParameterDescription:
		v.Default, v.Min, v.Max = pd.Default, pd.Min, pd.Max
		for _, s := range pd.Special {
			v.Special = append(v.Special, specialView{ID: s.ID, Value: s.Value})
		}
	case *homematic.BoolParameterDescription:
		v.Default, v.Min, v.Max = pd.Default, pd.Min, pd.Max
	case *homematic.ActionParameterDescription:
		v.Default, v.Min, v.Max = pd.Default, pd.Min, pd.Max
	case *homematic.EnumParameterDescription:
		v.Default, v.Min, v.Max = pd.Default, pd.Min, pd.Max
		v.Values = pd.Values
	case *homematic.StringParameterDescription:
		v.Default, v.Min, v.Max = pd.Default, pd.Min, pd.Max
	}
	return v
}

func projectParamset(d homematic.ParamsetDescription) map[string]parameterView {
	out := make(map[string]parameterView, len(d))
	for id, p := range d {
		out[id] = projectParameter(p)
	}
	return out
}

// parameterRows renders a paramset description as table rows sorted by id
func parameterRows(d homematic.ParamsetDescription) [][]string {
	rows := make([][]string, 0, len(d))
	for _, id := range d.IDs() {
		v := projectParameter(d[id])
		unit := ""
		if v.Unit != nil {
			unit = *v.Unit
		}
		extra := ""
		if len(v.Values) > 0 {
			extra = strings.Join(v.Values, "|")
		}
		for _, s := range v.Special {
			if extra != "" {
				extra += " "
			}
			extra += fmt.Sprintf("%s=%v", s.ID, s.Value)
		}
		rows = append(rows, []string{
			id,
			v.Type,
			d[id].Access().String(),
			d[id].UI().String(),
			fmt.Sprint(v.Default),
			fmt.Sprint(v.Min),
			fmt.Sprint(v.Max),
			unit,
			extra,
		})
	}
	return rows
}

// messageView is the presentation form of a service message
type messageView struct {
	Address string          `json:"address"`
	ID      string          `json:"id"`
	Value   homematic.Value `json:"value"`
}

func projectMessages(msgs []homematic.ServiceMessage) []messageView {
	out := make([]messageView, len(msgs))
	for i, m := range msgs {
		out[i] = messageView{Address: m.Address, ID: m.ID, Value: m.Value}
	}
	return out
}

// paramsetRows renders paramset values sorted by id
func paramsetRows(ps homematic.Paramset) [][]string {
	rows := make([][]string, 0, len(ps))
	for _, id := range ps.IDs() {
		rows = append(rows, []string{id, formatValue(ps[id])})
	}
	return rows
}

func formatValue(v homematic.Value) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(x)
	case []byte:
		return fmt.Sprintf("<%d bytes>", len(x))
	case homematic.Array:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case homematic.Struct:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + formatValue(x[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(x)
	}
}
