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

package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
)

// renameFile is swapped out in tests to simulate a crash before the new
// content is published.
var renameFile = os.Rename

// writeAtomic writes data to a temporary file in the same directory, syncs
// it and renames it over path, then syncs the parent directory.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating checkpoint directory: %w", err)
	}

	tmp := path + ".tmp"

	file, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating temporary checkpoint file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		_ = os.Remove(tmp)

		return fmt.Errorf("writing temporary checkpoint file: %w", err)
	}

	if err := file.Sync(); err != nil {
		_ = file.Close()
		_ = os.Remove(tmp)

		return fmt.Errorf("syncing temporary checkpoint file: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)

		return fmt.Errorf("closing temporary checkpoint file: %w", err)
	}

	if err := renameFile(tmp, path); err != nil {
		_ = os.Remove(tmp)

		return fmt.Errorf("renaming checkpoint file into place: %w", err)
	}

	if parent, err := os.Open(dir); err == nil {
		_ = parent.Sync()
		_ = parent.Close()
	}

	return nil
}
