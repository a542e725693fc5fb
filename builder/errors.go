// Copyright 2018 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package builder

import (
	"fmt"
	"strings"
)

// A ConfigError reports an invalid variant configuration.  Configuration
// errors are detected while the build graph is constructed, before any build
// action runs, and abort the affected module.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

func configErrorf(format string, args ...interface{}) error {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// A DependencyCycleError reports a cycle in the library dependency graph.
// Flattening requires the graph to be acyclic.  Cycle holds the identities
// along the cycle, starting and ending with the repeated library.
type DependencyCycleError struct {
	Cycle []string
}

func (e *DependencyCycleError) Error() string {
	return "library dependency cycle: " + strings.Join(e.Cycle, " -> ")
}

// A DuplicateFileError reports two package inputs that map to the same
// archive path.  Both sources are kept so the user can see which two files
// collided, not just that a collision happened.
type DuplicateFileError struct {
	ArchivePath string
	File1       string
	File2       string
}

func (e *DuplicateFileError) Error() string {
	return fmt.Sprintf("duplicate entry %q from %s and %s",
		e.ArchivePath, e.File1, e.File2)
}
