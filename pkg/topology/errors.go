/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package topology

import "errors"

var (

	// Cable walking.

	ErrCyclicCabling = errors.New("cyclic cabling")

	// Snapshot assembly.

	ErrMissingID             = errors.New("entity id must be set")
	ErrDuplicateID           = errors.New("duplicate entity id")
	ErrUnknownReference      = errors.New("unknown entity reference")
	ErrMismatchedPassthrough = errors.New("mismatched passthrough pair")
	ErrPortAlreadyCabled     = errors.New("port terminates more than one cable")
	ErrMultipleControllers   = errors.New("wlan group has more than one controller")
)
