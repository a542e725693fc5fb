// Copyright 2017 Google Inc. All rights reserved.
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

import (
	"path/filepath"
	"strings"

	"github.com/google/blueprint"

	"android/appbuild/android"
)

// Convert input resource file path to output file path.
// values-[config]/<file>.xml -> values-[config]_<file>.arsc.flat;
// For other resource file, just replace the last "/" with "_" and add .flat extension.
func pathToAapt2Path(ctx android.ModuleContext, res android.Path) android.WritablePath {
	name := res.Base()
	subDir := filepath.Dir(res.String())
	subDir, lastDir := filepath.Split(subDir)
	if strings.HasPrefix(lastDir, "values") {
		name = strings.TrimSuffix(name, ".xml") + ".arsc"
	}
	name = lastDir + "_" + name + ".flat"
	return android.PathForModuleOut(ctx, "aapt2", subDir, name)
}

var aapt2CompileRule = pctx.AndroidStaticRule("aapt2Compile",
	blueprint.RuleParams{
		Command:     `${config.Aapt2Cmd} compile -o $outDir $in`,
		CommandDeps: []string{"${config.Aapt2Cmd}"},
	},
	"outDir")

// aapt2Compile compiles the resource files from one resource directory.  The
// aapt2 compile command takes an output directory path, but not output file
// paths, so the returned paths are where we expect aapt2 to put the outputs.
// The name mapping must be kept in sync with pathToAapt2Path.
func aapt2Compile(ctx android.ModuleContext, dir string, paths android.Paths) android.WritablePaths {
	if len(paths) == 0 {
		return nil
	}

	outPaths := make(android.WritablePaths, len(paths))
	for i, path := range paths {
		outPaths[i] = pathToAapt2Path(ctx, path)
	}

	ctx.Build(pctx, android.BuildParams{
		Rule:        aapt2CompileRule,
		Description: "aapt2 compile " + dir,
		Inputs:      paths,
		Outputs:     outPaths,
		Args: map[string]string{
			"outDir": android.PathForModuleOut(ctx, "aapt2", dir).String(),
		},
	})

	return outPaths
}

var aapt2LinkRule = pctx.AndroidStaticRule("aapt2Link",
	blueprint.RuleParams{
		Command: `rm -rf $genDir && ` +
			`${config.Aapt2Cmd} link -o $out -I ${config.AndroidJar} ` +
			`--java $genDir --proguard $proguardRules ` +
			`--output-text-symbols $rTxt $flags $inFlags`,
		CommandDeps: []string{"${config.Aapt2Cmd}"},
		Restat:      true,
	},
	"flags", "inFlags", "proguardRules", "rTxt", "genDir")

var fileListToFileRule = pctx.AndroidStaticRule("fileListToFile",
	blueprint.RuleParams{
		Command:        `cp $out.rsp $out`,
		Rspfile:        "$out.rsp",
		RspfileContent: "$in",
	})

// aapt2Link links compiled resources into the resource apk and generates
// R.java files, the R.txt symbol list and resource keep rules along the way.
// rJavaFiles are where aapt2 is expected to write an R.java, one per package
// it generates for.  compiledRes are the base resources, compiledOverlay are
// resource overlays applied on top of them in increasing priority order.
func aapt2Link(ctx android.ModuleContext, packageRes android.WritablePath,
	rJavaFiles android.WritablePaths, rTxt, proguardRules android.WritablePath,
	flags []string, deps android.Paths, compiledRes, compiledOverlay android.Paths) {

	genDir := android.PathForModuleGen(ctx, "aapt2")

	var inFlags []string

	if len(compiledRes) > 0 {
		// Create a file that contains the list of all compiled resource file paths.
		resFileList := android.PathForModuleOut(ctx, "aapt2", "res.list")
		ctx.Build(pctx, android.BuildParams{
			Rule:        fileListToFileRule,
			Description: "resource file list",
			Inputs:      compiledRes,
			Output:      resFileList,
		})

		deps = append(deps, compiledRes...)
		deps = append(deps, resFileList)
		// aapt2 filepath arguments that start with "@" mean file-list files.
		inFlags = append(inFlags, "@"+resFileList.String())
	}

	if len(compiledOverlay) > 0 {
		overlayFileList := android.PathForModuleOut(ctx, "aapt2", "overlay.list")
		ctx.Build(pctx, android.BuildParams{
			Rule:        fileListToFileRule,
			Description: "overlay resource file list",
			Inputs:      compiledOverlay,
			Output:      overlayFileList,
		})

		deps = append(deps, compiledOverlay...)
		deps = append(deps, overlayFileList)
		// Compiled overlay files are passed over to aapt2 using -R option.
		inFlags = append(inFlags, "-R", "@"+overlayFileList.String())
	}

	implicitOutputs := append(android.WritablePaths(nil), rJavaFiles...)
	implicitOutputs = append(implicitOutputs, rTxt, proguardRules)

	ctx.Build(pctx, android.BuildParams{
		Rule:            aapt2LinkRule,
		Description:     "aapt2 link",
		Implicits:       deps,
		Output:          packageRes,
		ImplicitOutputs: implicitOutputs,
		Args: map[string]string{
			"flags":         strings.Join(flags, " "),
			"inFlags":       strings.Join(inFlags, " "),
			"proguardRules": proguardRules.String(),
			"rTxt":          rTxt.String(),
			"genDir":        genDir.String(),
		},
	})
}
