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

import "strings"

// A BuildType is a named bundle of build-mode configuration.  Every variant
// combines exactly one build type with its flavor stack.  Build types are
// shared between variants and must not be modified after construction.
type BuildType struct {
	Name string

	// Debuggable marks the produced package as debuggable in its merged
	// manifest.
	Debuggable bool

	// JniDebugBuild packages native libraries with debug symbols kept.
	JniDebugBuild bool

	// DebugSigned signs the package with the local debug keystore instead
	// of a flavor-supplied signing config.
	DebugSigned bool

	// PackageNameSuffix renames the application by appending to whichever
	// package name the flavor merge produced.  Empty means no rename.
	PackageNameSuffix string

	// RunProguard enables code shrinking before dexing.
	RunProguard bool

	// ZipAlign aligns the final package.  Disabled only for packages that
	// are post-processed by another tool.
	ZipAlign bool

	BuildConfigContribution
}

// ApplySuffix appends the build type's package name suffix to pkg, inserting
// a '.' separator when the suffix does not already start with one.
func (t *BuildType) ApplySuffix(pkg string) string {
	suffix := t.PackageNameSuffix
	if suffix == "" {
		return pkg
	}
	if !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	return pkg + suffix
}
