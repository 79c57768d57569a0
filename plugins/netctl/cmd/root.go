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

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/contiv/cx7ctl/pkg/util/logs"
	"github.com/contiv/cx7ctl/plugins/netctl/cmdimpl"
)

const (
	hostsFlag    = "hosts"
	configFlag   = "config"
	sshUserFlag  = "ssh-user"
	parallelFlag = "parallel"
	timeoutFlag  = "timeout"
)

// debug is set by the persistent --debug flag
var debug bool

func logger() logrus.FieldLogger {
	return logs.NewLogger("cx7ctl", debug)
}

// addClusterFlags registers flags shared by the commands contacting the cluster.
func addClusterFlags(cmd *cobra.Command, opts *cmdimpl.ClusterOptions) {
	flags := cmd.Flags()
	flags.StringVar(&opts.Hosts, hostsFlag, "",
		"comma separated list of hosts (DNS names or IPs) to configure")
	flags.StringVar(&opts.ConfigFile, configFlag, "",
		"cx7ctl config file (YAML), defaults to $CX7CTL_CONFIG")
	flags.StringVar(&opts.SSHUser, sshUserFlag, "",
		"user to log in as over ssh")
	flags.IntVar(&opts.Parallelism, parallelFlag, 0,
		"maximum number of hosts contacted at once")
	flags.DurationVar(&opts.Timeout, timeoutFlag, 0,
		"timeout of the detection on one host")
}

func newCX7Cmd() *cobra.Command {
	opts := &cmdimpl.SetupOptions{}
	cmd := &cobra.Command{
		Use:   "cx7",
		Short: "Configure CX7 RDMA interfaces on all hosts of the cluster",
		Long: `Detects ConnectX-7 (CX7) adapters on every host over ssh, selects two
non-conflicting target subnets, assigns every host a stable address in both of them
(derived from the last octet of its management IP) and configures the hosts that
are not configured yet with netplan.

Hosts that already carry a valid configuration are left untouched unless --force
is given. Use --dry-run to print the generated scripts instead of running them.`,
		Example: `  cx7ctl setup cx7 --hosts spark-1,spark-2 --dry-run
  cx7ctl setup cx7 --hosts 10.24.11.13,10.24.11.14 --subnet1 192.168.11.0/24 --subnet2 192.168.12.0/24`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return cmdimpl.SetupCX7(ctx, cmdimpl.Deps{Log: logger(), Out: cmd.OutOrStdout()}, opts)
		},
	}
	addClusterFlags(cmd, &opts.ClusterOptions)

	flags := cmd.Flags()
	flags.BoolVar(&opts.DryRun, "dry-run", false,
		"print the configure scripts without running them")
	flags.BoolVar(&opts.Force, "force", false,
		"reconfigure also the hosts that are already configured")
	flags.IntVar(&opts.MTU, "mtu", 0,
		"MTU of the CX7 interfaces (default 9000)")
	flags.StringVar(&opts.Subnet1, "subnet1", "",
		"target subnet of the first CX7 interface, requires --subnet2")
	flags.StringVar(&opts.Subnet2, "subnet2", "",
		"target subnet of the second CX7 interface, requires --subnet1")
	flags.StringVar(&opts.MetricsFile, "metrics-file", "",
		"write the outcome as prometheus metrics into this textfile")
	return cmd
}

func newSetupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Set up cluster networking",
	}
	cmd.AddCommand(newCX7Cmd())
	return cmd
}

func newDetectCmd() *cobra.Command {
	opts := &cmdimpl.DetectOptions{}
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Show CX7 adapters and their addressing on all hosts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()
			return cmdimpl.DetectCX7(ctx, cmdimpl.Deps{Log: logger(), Out: cmd.OutOrStdout()}, opts)
		},
	}
	addClusterFlags(cmd, &opts.ClusterOptions)
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print the detections as JSON")
	return cmd
}

func newProbeCmd() *cobra.Command {
	opts := &cmdimpl.ProbeOptions{}
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Probe CX7 adapters of this host and print them as KEY=VALUE lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdimpl.ProbeLocal(cmdimpl.Deps{Log: logger(), Out: cmd.OutOrStdout()}, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Docker, "docker", false, "include subnets of docker networks")
	return cmd
}

// NewRootCmd builds the cx7ctl command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cx7ctl",
		Short:         "Cluster setup of CX7 RDMA interfaces",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logs")
	rootCmd.AddCommand(newSetupCmd())
	rootCmd.AddCommand(newDetectCmd())
	rootCmd.AddCommand(newProbeCmd())
	return rootCmd
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

//Execute will execute the command cx7ctl
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
