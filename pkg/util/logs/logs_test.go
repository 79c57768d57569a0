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

package logs

import (
	"bytes"
	"testing"

	. "github.com/onsi/gomega"
)

func TestNewLogger(t *testing.T) {
	RegisterTestingT(t)

	var buf bytes.Buffer
	log := newLogger(&buf, "cx7", false)
	log.Debug("hidden")
	log.Info("shown")
	Expect(buf.String()).ToNot(ContainSubstring("hidden"))
	Expect(buf.String()).To(ContainSubstring("shown"))
	Expect(buf.String()).To(ContainSubstring("logger=cx7"))

	buf.Reset()
	log = newLogger(&buf, "cx7", true)
	log.Debug("debugging")
	Expect(buf.String()).To(ContainSubstring("debugging"))
}
