// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package loader

import (
	"fmt"
	"os"
	"path/filepath"

	dslqueue "github.com/dslqueue/dslqueue"
)

// ReadFiles loads DSL documents in argument order. Any missing or
// unreadable path aborts startup.
func ReadFiles(paths []string) ([]dslqueue.Payload, error) {
	payloads := make([]dslqueue.Payload, 0, len(paths))
	for _, raw := range paths {
		path, err := filepath.Abs(raw)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("DSL file not found: %s", raw)
		}
		p, err := dslqueue.NewPayload(path, string(data))
		if err != nil {
			return nil, fmt.Errorf("DSL file %s: %w", raw, err)
		}
		payloads = append(payloads, p)
	}
	return payloads, nil
}
