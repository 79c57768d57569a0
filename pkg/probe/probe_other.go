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

//go:build !linux

package probe

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// NewSystem is not supported outside of linux.
func NewSystem(log logrus.FieldLogger) (System, error) {
	return nil, errors.New("local probing is supported on linux only")
}
