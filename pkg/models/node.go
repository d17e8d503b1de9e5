/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NodeType identifies how a node is deployed. The numeric values are stored
// in the TYPE column of every reading and must not be renumbered.
type NodeType int

const (
	NodeTypeUnknown        NodeType = 0
	NodeTypeStatic         NodeType = 1
	NodeTypeMobile         NodeType = 2
	NodeTypeIsolatedStatic NodeType = 3
	NodeTypeHomeSchool     NodeType = 4
)

var nodeTypeNames = map[NodeType]string{
	NodeTypeUnknown:        "unknown",
	NodeTypeStatic:         "static",
	NodeTypeMobile:         "mobile",
	NodeTypeIsolatedStatic: "isolated_static",
	NodeTypeHomeSchool:     "home_school",
}

func (t NodeType) String() string {
	if name, ok := nodeTypeNames[t]; ok {
		return name
	}

	return "NodeType(" + strconv.Itoa(int(t)) + ")"
}

// Mobile reports whether readings take their position from a live GPS fix.
func (t NodeType) Mobile() bool {
	return t == NodeTypeMobile
}

// ParseNodeType accepts either the symbolic name or the numeric value.
func ParseNodeType(s string) (NodeType, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return NodeTypeUnknown, nil
	}

	for t, name := range nodeTypeNames {
		if name == s {
			return t, nil
		}
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return NodeTypeUnknown, fmt.Errorf("%w: %q", ErrInvalidNodeType, s)
	}

	t := NodeType(n)
	if _, ok := nodeTypeNames[t]; !ok {
		return NodeTypeUnknown, fmt.Errorf("%w: %d", ErrInvalidNodeType, n)
	}

	return t, nil
}

func (t NodeType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *NodeType) UnmarshalJSON(b []byte) error {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var (
		parsed NodeType
		err    error
	)

	switch v := raw.(type) {
	case float64:
		parsed, err = ParseNodeType(strconv.Itoa(int(v)))
	case string:
		parsed, err = ParseNodeType(v)
	case nil:
		parsed = NodeTypeUnknown
	default:
		err = fmt.Errorf("%w: %v", ErrInvalidNodeType, raw)
	}

	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

func (t *NodeType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}

	parsed, err := ParseNodeType(raw)
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// Position is a fixed deployment location.
type Position struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
	Alt float64 `json:"alt" yaml:"alt"`
}

// Fix is the most recent position reported by the positioning feed.
// Time is the fix time of day formatted as HHMMSS.
type Fix struct {
	Time string  `json:"time"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Alt  float64 `json:"alt"`
}
