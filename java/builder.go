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

// This file generates the final rules for compiling all Java.  All properties related to
// compiling should have been translated into javaBuilderFlags or another argument to the Transform*
// functions.

import (
	"strconv"
	"strings"

	"github.com/google/blueprint"

	"android/appbuild/android"
)

var (
	pctx = android.NewPackageContext("android/appbuild/java")

	// Compiling java is not conducive to proper dependency tracking.  The path-matches-class-name
	// requirement leads to unpredictable generated source file names, and a single .java file
	// will get compiled into multiple .class files if it contains inner classes.  To work around
	// this, all java rules write into separate directories and then are combined into a .jar file
	// (if the rule produces .class files) or a .srcjar file (if the rule produces .java files).
	javac = pctx.AndroidStaticRule("javac",
		blueprint.RuleParams{
			Command: `rm -rf "$outDir" && mkdir -p "$outDir" && ` +
				`${config.JavacCmd} ${config.CommonJavacFlags} $javacFlags ` +
				`-bootclasspath ${config.AndroidJar} $classpath ` +
				`-d $outDir @$out.rsp && ` +
				`${config.JarCmd} cf $out -C $outDir .`,
			CommandDeps:    []string{"${config.JavacCmd}", "${config.JarCmd}"},
			Rspfile:        "$out.rsp",
			RspfileContent: "$in",
			Description:    "javac $out",
		},
		"javacFlags", "classpath", "outDir")

	dex = pctx.AndroidStaticRule("dex",
		blueprint.RuleParams{
			Command:     `${config.D8Cmd} --output $out --lib ${config.AndroidJar} $dexFlags $in`,
			CommandDeps: []string{"${config.D8Cmd}"},
			Description: "d8 $out",
		},
		"dexFlags")

	proguard = pctx.AndroidStaticRule("proguard",
		blueprint.RuleParams{
			Command: `${config.ProguardCmd} -injars $in -outjars $out ` +
				`-libraryjars ${config.AndroidJar}$libraryJars ` +
				`$ruleFlags -printmapping $out.mapping`,
			CommandDeps: []string{"${config.ProguardCmd}"},
			Description: "proguard $out",
		},
		"libraryJars", "ruleFlags")

	zipdir = pctx.AndroidStaticRule("zipdir",
		blueprint.RuleParams{
			Command:     `${config.ZipDirCmd} -o $out $prefixFlag -C $dir $in`,
			CommandDeps: []string{"${config.ZipDirCmd}"},
			Description: "zip $out",
		},
		"prefixFlag", "dir")
)

func init() {
	pctx.Import("android/appbuild/java/config")
}

type javaBuilderFlags struct {
	javacFlags string
	aidlFlags  string

	// Full compilation classpath in resolution order, highest priority entry
	// first.  javac itself does not care about the order but proguard and d8
	// see the same list, and the order decides which copy of a duplicate
	// class wins.
	classpath android.Paths
}

func TransformJavaToClasses(ctx android.ModuleContext, srcFiles android.Paths,
	flags javaBuilderFlags, deps android.Paths) android.ModuleOutPath {

	classesJar := android.PathForModuleOut(ctx, "classes-compiled.jar")

	classpath := ""
	if len(flags.classpath) > 0 {
		classpath = "-classpath " + strings.Join(flags.classpath.Strings(), ":")
	}

	deps = append(deps, flags.classpath...)

	ctx.Build(pctx, android.BuildParams{
		Rule:        javac,
		Description: "javac",
		Output:      classesJar,
		Inputs:      srcFiles,
		Implicits:   deps,
		Args: map[string]string{
			"javacFlags": flags.javacFlags,
			"classpath":  classpath,
			"outDir":     android.PathForModuleOut(ctx, "classes").String(),
		},
	})

	return classesJar
}

// TransformClassesToDex runs all the given jars through d8 together, producing
// a zip of classes*.dex files ready to be merged into the package.
func TransformClassesToDex(ctx android.ModuleContext, classesJars android.Paths,
	minSdkVersion int, debuggable bool) android.ModuleOutPath {

	dexZip := android.PathForModuleOut(ctx, "dex.zip")

	dexFlags := []string{"--min-api", strconv.Itoa(minSdkVersion)}
	if debuggable {
		dexFlags = append(dexFlags, "--debug")
	} else {
		dexFlags = append(dexFlags, "--release")
	}

	ctx.Build(pctx, android.BuildParams{
		Rule:        dex,
		Description: "dex",
		Output:      dexZip,
		Inputs:      classesJars,
		Args: map[string]string{
			"dexFlags": strings.Join(dexFlags, " "),
		},
	})

	return dexZip
}

// RunProguard shrinks and obfuscates a classes jar.  ruleFiles come from the
// variant's libraries and from aapt2, which generates keep rules for classes
// referenced by the manifest and resources.
func RunProguard(ctx android.ModuleContext, classesJar android.Path,
	ruleFiles android.Paths, flags javaBuilderFlags) android.ModuleOutPath {

	outJar := android.PathForModuleOut(ctx, "classes-proguard.jar")

	libraryJars := ""
	if len(flags.classpath) > 0 {
		libraryJars = ":" + strings.Join(flags.classpath.Strings(), ":")
	}

	ruleFlags := make([]string, 0, len(ruleFiles))
	for _, f := range ruleFiles {
		ruleFlags = append(ruleFlags, "-include "+f.String())
	}

	deps := append(android.Paths(nil), ruleFiles...)
	deps = append(deps, flags.classpath...)

	ctx.Build(pctx, android.BuildParams{
		Rule:        proguard,
		Description: "proguard",
		Output:      outJar,
		Input:       classesJar,
		Implicits:   deps,
		Args: map[string]string{
			"libraryJars": libraryJars,
			"ruleFlags":   strings.Join(ruleFlags, " "),
		},
	})

	return outJar
}

// TransformDirToZip zips the given files from a source directory, storing
// each under its path relative to the directory, optionally nested under
// prefix inside the zip.
func TransformDirToZip(ctx android.ModuleContext, out android.WritablePath,
	dir string, prefix string, files android.Paths) {

	prefixFlag := ""
	if prefix != "" {
		prefixFlag = "-P " + prefix
	}

	ctx.Build(pctx, android.BuildParams{
		Rule:        zipdir,
		Description: "zip " + dir,
		Output:      out,
		Inputs:      files,
		Args: map[string]string{
			"prefixFlag": prefixFlag,
			"dir":        dir,
		},
	})
}
