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

package java

// This file generates rules for the sources the build itself produces: java
// files compiled from aidl interfaces and the per variant BuildConfig class.

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/blueprint"

	"android/appbuild/android"
)

var aidl = pctx.AndroidStaticRule("aidl",
	blueprint.RuleParams{
		Command:     `${config.AidlCmd} -d$depFile $aidlFlags $in $out`,
		CommandDeps: []string{"${config.AidlCmd}"},
		Depfile:     "$depFile",
		Deps:        blueprint.DepsGCC,
		Description: "aidl $out",
	},
	"depFile", "aidlFlags")

func genAidl(ctx android.ModuleContext, aidlFile android.Path, aidlFlags string) android.Path {
	javaFile := android.GenPathWithExt(ctx, "aidl", aidlFile, "java")
	depFile := javaFile.String() + ".d"

	ctx.Build(pctx, android.BuildParams{
		Rule:        aidl,
		Description: "aidl " + aidlFile.Rel(),
		Output:      javaFile,
		Input:       aidlFile,
		Args: map[string]string{
			"depFile":   depFile,
			"aidlFlags": aidlFlags,
		},
	})

	return javaFile
}

func genSources(ctx android.ModuleContext, srcFiles android.Paths,
	flags javaBuilderFlags) android.Paths {

	outSrcFiles := make(android.Paths, 0, len(srcFiles))

	for _, srcFile := range srcFiles {
		switch srcFile.Ext() {
		case ".aidl":
			javaFile := genAidl(ctx, srcFile, flags.aidlFlags)
			outSrcFiles = append(outSrcFiles, javaFile)
		default:
			outSrcFiles = append(outSrcFiles, srcFile)
		}
	}

	return outSrcFiles
}

// generateBuildConfig writes the BuildConfig class for a variant.  The class
// always lives in the variant's original package so that sources can refer to
// it without caring about package renaming, and always carries the DEBUG
// constant for the build type.  Extra constant lines come from the variant's
// configuration layers, already annotated with the layer that declared them.
func generateBuildConfig(ctx android.ModuleContext, pkg string, debuggable bool,
	lines []string) android.Path {

	buildConfig := android.PathForModuleGen(ctx, "buildconfig",
		filepath.Join(strings.Replace(pkg, ".", "/", -1), "BuildConfig.java"))

	content := []string{
		`/** Automatically generated file. DO NOT MODIFY */`,
		`package ` + pkg + `;`,
		``,
		`public final class BuildConfig {`,
		fmt.Sprintf(`    public static final boolean DEBUG = %t;`, debuggable),
	}
	for _, line := range lines {
		content = append(content, `    `+line)
	}
	content = append(content, `}`, ``)

	android.WriteFileRule(ctx, buildConfig, strings.Join(content, "\n"))

	return buildConfig
}
