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

package cmdimpl

import (
	"github.com/pkg/errors"
)

var (
	// ErrNoHosts is returned when neither --hosts nor the config file name any host.
	ErrNoHosts = errors.New("no hosts specified, use --hosts or the hosts list of the config file")

	// ErrSubnetPair is returned when only one of the target subnets is given.
	ErrSubnetPair = errors.New("--subnet1 and --subnet2 must be given together")

	// ErrNothingDetected is returned when no host reports CX7 adapters.
	ErrNothingDetected = errors.New("no CX7 adapters detected on any host")
)

const (
	notAvailable = "-"

	statusOK        = "ok"
	statusConfigure = "configure"
	statusFailed    = "FAILED"
)
