// Copyright (c) 2018 Cisco and/or its affiliates.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at:
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package script

import (
	"bytes"
	_ "embed" // embedded script template
	"strconv"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/contiv/cx7ctl/plugins/cx7/model"
)

// ErrInvalidPlan is returned when a host plan cannot be turned into a script.
var ErrInvalidPlan = errors.New("invalid host plan")

//go:embed templates/cx7_configure.sh.tmpl
var configureTemplate string

var configureScript = template.Must(template.New("cx7_configure").
	Funcs(template.FuncMap{"quote": Quote}).
	Parse(configureTemplate))

// configureVars are the values interpolated into the configure script.
type configureVars struct {
	Host     string
	Adapter1 string
	Adapter2 string
	IP1      string
	IP2      string
	MTU      string
	Prefix   string
}

// GenerateConfigureScript renders the script configuring both CX7 interfaces
// of the host according to its plan. The plan must carry exactly two assignments.
func GenerateConfigureScript(plan *model.HostPlan, mtu, prefixLen int) (string, error) {
	if plan == nil {
		return "", errors.Wrap(ErrInvalidPlan, "expected 2 assignments, got 0")
	}
	if len(plan.Assignments) != 2 {
		return "", errors.Wrapf(ErrInvalidPlan, "expected 2 assignments, got %d", len(plan.Assignments))
	}

	vars := configureVars{
		Host:     sanitizeComment(plan.Host),
		Adapter1: plan.Assignments[0].Name,
		Adapter2: plan.Assignments[1].Name,
		IP1:      plan.Assignments[0].IP,
		IP2:      plan.Assignments[1].IP,
		MTU:      strconv.Itoa(mtu),
		Prefix:   strconv.Itoa(prefixLen),
	}

	var buf bytes.Buffer
	if err := configureScript.Execute(&buf, vars); err != nil {
		return "", errors.Wrapf(err, "failed to render configure script for %s", plan.Host)
	}
	return buf.String(), nil
}

// Quote returns the value as a double-quoted shell word with the characters
// special inside double quotes escaped.
func Quote(value string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range value {
		switch r {
		case '"', '\\', '$', '`':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte('"')
	return sb.String()
}

// host names end up in a comment line
func sanitizeComment(value string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, value)
}
