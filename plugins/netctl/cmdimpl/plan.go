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
	"fmt"
	"io"

	"github.com/contiv/cx7ctl/plugins/cx7/model"
)

// PrintPlan prints the cluster plan in a table format.
func PrintPlan(out io.Writer, plan *model.ClusterPlan) {
	fmt.Fprintf(out, "\nTarget subnets: %s, %s\n", plan.Subnet1, plan.Subnet2)

	w := newTabWriter(out)
	fmt.Fprintf(w, "HOST\tSTATUS\tINTERFACE\tIP\tSUBNET\n")
	for _, hp := range plan.HostPlans {
		if !hp.NeedsChange {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", hp.Host, statusOK, notAvailable, notAvailable, notAvailable)
			continue
		}
		for _, a := range hp.Assignments {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", hp.Host, statusConfigure, orNA(a.Name), a.IP, a.Subnet)
		}
	}
	w.Flush()
}
