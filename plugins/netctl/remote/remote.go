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
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// TransportFailureCode is the return code reported for a host when the script
// could not be executed at all (connection failure, timeout, missing binary).
// It matches the exit code used by ssh for its own failures.
const TransportFailureCode = 255

const waitDelay = time.Second

// Job is a script to be executed on a single host.
type Job struct {
	Host   string
	Script string
}

// Result is the outcome of a Job.
type Result struct {
	Host       string
	ReturnCode int
	Stdout     string
	Stderr     string
}

// OK returns true if the script finished with zero return code.
func (r Result) OK() bool {
	return r.ReturnCode == 0
}

// Transport executes scripts on many hosts concurrently.
// Failure on one host must never be returned as an error, it is encoded
// into the return code and stderr of the host's Result instead.
type Transport interface {
	// RunScripts runs all jobs and returns one result per job, in the job order.
	RunScripts(ctx context.Context, jobs []Job) []Result
}

// commandFactory builds the command executing a job on its host.
type commandFactory func(ctx context.Context, job Job) *exec.Cmd

// runParallel executes jobs with at most <limit> commands running at the same time.
// Each job gets its own timeout, a failing job does not cancel the others.
func runParallel(ctx context.Context, jobs []Job, limit int, timeout time.Duration,
	newCmd commandFactory, log logrus.FieldLogger) []Result {

	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	var eg errgroup.Group
	if limit > 0 {
		eg.SetLimit(limit)
	}
	for idx := range jobs {
		idx := idx
		eg.Go(func() error {
			results[idx] = runJob(ctx, jobs[idx], timeout, newCmd, log)
			return nil
		})
	}
	eg.Wait()
	return results
}

func runJob(ctx context.Context, job Job, timeout time.Duration,
	newCmd commandFactory, log logrus.FieldLogger) Result {

	var (
		jobCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		jobCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		jobCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := newCmd(jobCtx, job)
	cmd.Stdin = bytes.NewBufferString(job.Script)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// do not wait for orphaned children holding the output pipes after a kill
	cmd.WaitDelay = waitDelay

	log.WithField("host", job.Host).Debugf("Executing: %v", cmd.Args)
	err := cmd.Run()

	res := Result{
		Host:   job.Host,
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		return res
	}
	if exitErr, isExit := err.(*exec.ExitError); isExit && exitErr.ExitCode() >= 0 && jobCtx.Err() == nil {
		res.ReturnCode = exitErr.ExitCode()
		return res
	}

	// the command has not run to its end
	res.ReturnCode = TransportFailureCode
	if jobCtx.Err() != nil {
		err = jobCtx.Err()
	}
	if res.Stderr != "" {
		res.Stderr += "\n"
	}
	res.Stderr += err.Error()
	log.WithField("host", job.Host).Debugf("Error by executing script: %v", err)
	return res
}
