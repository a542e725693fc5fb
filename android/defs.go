// Copyright 2015 Google Inc. All rights reserved.
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

package android

import (
	"strings"

	"github.com/google/blueprint"
	_ "github.com/google/blueprint/bootstrap"
	"github.com/google/blueprint/proptools"
)

var (
	pctx = NewPackageContext("android/appbuild/android")

	// A phony rule that is not the built-in Ninja phony rule.  The built-in
	// phony rule has special behavior that is sometimes not desired.  See the
	// Ninja docs for more details.
	Phony = pctx.AndroidStaticRule("Phony",
		blueprint.RuleParams{
			Command:     "# phony $out",
			Description: "phony $out",
		})

	// A copy rule.
	Cp = pctx.AndroidStaticRule("Cp",
		blueprint.RuleParams{
			Command:     "rm -f $out && cp $cpFlags $in $out",
			Description: "cp $out",
		},
		"cpFlags")

	// A writer rule for files.
	WriteFile = pctx.AndroidStaticRule("WriteFile",
		blueprint.RuleParams{
			Command:     "/bin/bash -c 'echo -e \"$$0\" > $out' '$content'",
			Description: "writing file $out",
		},
		"content")
)

func init() {
	pctx.Import("github.com/google/blueprint/bootstrap")
}

// BuilderContext is the subset of ModuleContext and SingletonContext needed by
// helpers that emit build statements.
type BuilderContext interface {
	PathContext
	Build(pctx AndroidPackageContext, params BuildParams)
}

var writeFileEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\n", `\n`,
	`'`, `'\''`)

// WriteFileRule creates a build statement to write content to outputFile.  The
// content is escaped to survive both ninja variable expansion and the shell
// command line of the WriteFile rule.
func WriteFileRule(ctx BuilderContext, outputFile WritablePath, content string) {
	content = writeFileEscaper.Replace(content)

	ctx.Build(pctx, BuildParams{
		Rule:        WriteFile,
		Output:      outputFile,
		Description: "write " + outputFile.Base(),
		Args: map[string]string{
			"content": proptools.NinjaEscape(content),
		},
	})
}
