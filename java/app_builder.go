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
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package java

// This file generates the packaging rules at the end of a variant's
// pipeline.  All variant decisions have been made by the time these run,
// the functions here only wire computed inputs into rules.

import (
	"path/filepath"

	"github.com/google/blueprint"

	"android/appbuild/android"
	"android/appbuild/builder"
)

var (
	mergeJavaRes = pctx.AndroidStaticRule("mergeJavaRes",
		blueprint.RuleParams{
			Command:     `${config.MergeJarsCmd} --strip-classes -o $out $in`,
			CommandDeps: []string{"${config.MergeJarsCmd}"},
		})

	combineApk = pctx.AndroidStaticRule("combineApk",
		blueprint.RuleParams{
			Command:     `${config.MergeJarsCmd} --ignore-duplicates -o $out $in`,
			CommandDeps: []string{"${config.MergeJarsCmd}"},
		})

	signapk = pctx.AndroidStaticRule("signapk",
		blueprint.RuleParams{
			Command: `${config.JarsignerCmd} -sigalg SHA1withRSA -digestalg SHA1 ` +
				`-keystore $keystore -storepass $storepass -keypass $keypass ` +
				`-signedjar $out $in $alias`,
			CommandDeps: []string{"${config.JarsignerCmd}"},
		},
		"keystore", "storepass", "keypass", "alias")

	zipalign = pctx.AndroidStaticRule("zipalign",
		blueprint.RuleParams{
			Command:     `${config.ZipalignCmd} -f 4 $in $out`,
			CommandDeps: []string{"${config.ZipalignCmd}"},
		})

	adbInstall = pctx.AndroidStaticRule("adbInstall",
		blueprint.RuleParams{
			Command:     `${config.AdbCmd} install -r $in && touch $out`,
			CommandDeps: []string{"${config.AdbCmd}"},
		})

	adbUninstall = pctx.AndroidStaticRule("adbUninstall",
		blueprint.RuleParams{
			Command:     `${config.AdbCmd} uninstall $packageName && touch $out`,
			CommandDeps: []string{"${config.AdbCmd}"},
		},
		"packageName")
)

// mergeJavaResources combines the java resource zips and the packaged jars,
// dropping class files.  Two inputs carrying the same entry is an error,
// reported with the archive path and both contributing files.
func mergeJavaResources(ctx android.ModuleContext, out android.WritablePath, in android.Paths) {
	ctx.Build(pctx, android.BuildParams{
		Rule:        mergeJavaRes,
		Description: "merge java resources",
		Output:      out,
		Inputs:      in,
	})
}

// CreateAppPackage merges the linked resources, the dex archive, the java
// resources and the jni zips into an apk.  Inputs are in decreasing priority
// order and the first copy of a duplicate entry wins.
func CreateAppPackage(ctx android.ModuleContext, out android.WritablePath,
	resApk, dexZip, javaRes android.Path, jniZips android.Paths) {

	inputs := android.Paths{resApk, dexZip}
	if javaRes != nil {
		inputs = append(inputs, javaRes)
	}
	inputs = append(inputs, jniZips...)

	ctx.Build(pctx, android.BuildParams{
		Rule:        combineApk,
		Description: "package " + out.Base(),
		Output:      out,
		Inputs:      inputs,
	})
}

// SignAppPackage signs an apk with the variant's signing config.  The
// keystore becomes an input when it lives in the source tree, the debug
// keystore in the user's home directory does not.
func SignAppPackage(ctx android.ModuleContext, out android.WritablePath, in android.Path,
	cert *builder.SigningConfig) {

	var implicits android.Paths
	if !filepath.IsAbs(cert.StoreFile) {
		implicits = append(implicits, android.PathForSource(ctx, cert.StoreFile))
	}

	ctx.Build(pctx, android.BuildParams{
		Rule:        signapk,
		Description: "sign " + out.Base(),
		Output:      out,
		Input:       in,
		Implicits:   implicits,
		Args: map[string]string{
			"keystore":  cert.StoreFile,
			"storepass": cert.StorePassword,
			"keypass":   cert.KeyPassword,
			"alias":     cert.KeyAlias,
		},
	})
}

func TransformZipAlign(ctx android.ModuleContext, out android.WritablePath, in android.Path) {
	ctx.Build(pctx, android.BuildParams{
		Rule:        zipalign,
		Description: "zipalign " + out.Base(),
		Output:      out,
		Input:       in,
	})
}
