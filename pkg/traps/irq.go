// Copyright 2026 The gVisor Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package traps

import (
	"fmt"

	"gvisor.dev/pikernel/pkg/pi/interrupt"
)

// Controller reports which interrupt lines are pending.
//
// It is the single authority for interrupt state and is queried on every
// trap entry.
type Controller interface {
	IsPending(i interrupt.Interrupt) bool
}

// IRQHandler services one device interrupt.
type IRQHandler func(tf *TrapFrame)

type route struct {
	irq     interrupt.Interrupt
	handler IRQHandler
}

// Router dispatches IRQs to the handler of the owning device.
//
// Routes are checked in registration order, which is therefore the priority
// order.
type Router struct {
	ctrl   Controller
	routes []route
}

// NewRouter returns a Router without any routes.
func NewRouter(ctrl Controller) *Router {
	return &Router{ctrl: ctrl}
}

// Register appends a route for irq. Each interrupt may be routed once.
func (r *Router) Register(irq interrupt.Interrupt, handler IRQHandler) error {
	if handler == nil {
		return fmt.Errorf("nil handler for %v", irq)
	}
	for _, rt := range r.routes {
		if rt.irq == irq {
			return fmt.Errorf("interrupt %v already routed", irq)
		}
	}
	r.routes = append(r.routes, route{irq: irq, handler: handler})
	return nil
}

// Interrupts returns the routed interrupts in priority order.
func (r *Router) Interrupts() []interrupt.Interrupt {
	irqs := make([]interrupt.Interrupt, 0, len(r.routes))
	for _, rt := range r.routes {
		irqs = append(irqs, rt.irq)
	}
	return irqs
}

// Route services the highest priority pending interrupt, if any.
//
// At most one handler runs per call. The returned boolean is false when no
// routed interrupt was pending.
func (r *Router) Route(tf *TrapFrame) (interrupt.Interrupt, bool) {
	if r == nil || r.ctrl == nil {
		return 0, false
	}
	for _, rt := range r.routes {
		if r.ctrl.IsPending(rt.irq) {
			rt.handler(tf)
			return rt.irq, true
		}
	}
	return 0, false
}
