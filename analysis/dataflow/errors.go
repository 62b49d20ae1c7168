// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataflow

import (
	"fmt"

	"github.com/awslabs/ar-go-dfg/analysis/ir"
)

// ContractViolation is the value the engine panics with when it is used inconsistently: a local out of the
// range of a body, a query on a function without graph, a producer returning the body of another function.
// These are programming errors, not recoverable data errors.
type ContractViolation struct {
	Func   ir.FuncID
	Reason string
}

func (c *ContractViolation) Error() string {
	if c.Func == "" {
		return "dataflow contract violation: " + c.Reason
	}
	return fmt.Sprintf("dataflow contract violation in %s: %s", c.Func, c.Reason)
}

func violation(f ir.FuncID, format string, args ...any) *ContractViolation {
	return &ContractViolation{Func: f, Reason: fmt.Sprintf(format, args...)}
}

// panicError carries a value recovered from a panicking worker so that it can be raised again in the goroutine
// that started the workers.
type panicError struct {
	value any
}

func (p panicError) Error() string {
	return fmt.Sprintf("panic in worker: %v", p.value)
}
