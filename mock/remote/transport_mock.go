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

package remote

import (
	"context"
	"sync"

	"github.com/contiv/cx7ctl/plugins/netctl/remote"
)

// MockTransport is a mock for the remote transport. It returns pre-set results
// and remembers the jobs it was asked to run.
type MockTransport struct {
	sync.Mutex

	results map[string]remote.Result
	calls   [][]remote.Job
}

// NewMockTransport is a constructor for MockTransport.
func NewMockTransport() *MockTransport {
	return &MockTransport{
		results: make(map[string]remote.Result),
	}
}

// SetResult sets the result returned for the given host.
func (m *MockTransport) SetResult(host string, returnCode int, stdout, stderr string) {
	m.Lock()
	defer m.Unlock()
	m.results[host] = remote.Result{
		Host:       host,
		ReturnCode: returnCode,
		Stdout:     stdout,
		Stderr:     stderr,
	}
}

// RunScripts returns the pre-set result of every job's host. Hosts without
// a pre-set result are not included in the output.
func (m *MockTransport) RunScripts(ctx context.Context, jobs []remote.Job) []remote.Result {
	m.Lock()
	defer m.Unlock()
	m.calls = append(m.calls, jobs)

	var results []remote.Result
	for _, job := range jobs {
		if res, found := m.results[job.Host]; found {
			results = append(results, res)
		}
	}
	return results
}

// Calls returns the jobs of every RunScripts invocation so far.
func (m *MockTransport) Calls() [][]remote.Job {
	m.Lock()
	defer m.Unlock()
	return m.calls
}
