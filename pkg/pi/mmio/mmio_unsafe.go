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

package mmio

import (
	"sync/atomic"
	"unsafe"
)

// Device is a Bank over physical registers starting at Base.
//
// It is only meaningful when running on the bare machine with the
// peripheral window identity mapped.
type Device struct {
	Base uintptr
}

// Load implements Bank.Load.
//
//go:nosplit
func (d Device) Load(off uintptr) uint32 {
	return atomic.LoadUint32((*uint32)(unsafe.Pointer(d.Base + off)))
}

// Store implements Bank.Store.
//
//go:nosplit
func (d Device) Store(off uintptr, v uint32) {
	atomic.StoreUint32((*uint32)(unsafe.Pointer(d.Base+off)), v)
}
