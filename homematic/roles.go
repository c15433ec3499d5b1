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

// RoleList is an optional list of link roles, modelled after sql.NullString:
// Valid is false when the field was absent on the wire. A present but empty
// field is Valid with no roles.
type RoleList struct {
	Roles []string
	Valid bool
}

// ParseRoleList parses a space separated role field. raw is nil when the
// field was absent.
func ParseRoleList(raw *string) RoleList {
	if raw == nil {
		return RoleList{}
	}
	if *raw == "" {
		return RoleList{Roles: []string{}, Valid: true}
	}
	return RoleList{Roles: strings.Split(*raw, " "), Valid: true}
}

// Contains returns true if role is one of the listed roles
func (r RoleList) Contains(role string) bool {
	for _, x := range r.Roles {
		if x == role {
			return true
		}
	}
	return false
}

func (r RoleList) String() string {
	if !r.Valid {
		return "-"
	}
	return strings.Join(r.Roles, " ")
}

// roleListField decodes an optional role field.
func roleListField(f fields, key string) (RoleList, error) {
	raw, err := optional(f, key, toString)
	if err != nil {
		return RoleList{}, err
	}
	return ParseRoleList(raw), nil
}
