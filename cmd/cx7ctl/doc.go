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

// cx7ctl configures the CX7 (ConnectX-7) RDMA interfaces of a cluster of hosts.
// It probes every host over ssh, plans a conflict-free addressing of both CX7
// interfaces in two target subnets and applies it with netplan:
//
//	cx7ctl setup cx7 --hosts spark-1,spark-2 --dry-run
//	cx7ctl detect --hosts spark-1,spark-2
//	cx7ctl probe
package main
