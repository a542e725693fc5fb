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

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/blueprint"

	"android/appbuild/android"
	"android/appbuild/builder"
)

var manifestMergerRule = pctx.AndroidStaticRule("manifestMerger",
	blueprint.RuleParams{
		Command:     `${config.ManifestMergerCmd} --main $in $overlays $libs $properties --out $out`,
		CommandDeps: []string{"${config.ManifestMergerCmd}"},
		Description: "merge manifests $out",
	},
	"overlays", "libs", "properties")

// manifestValueProperties returns the --property arguments that inject the
// merged flavor's values into the merged manifest.  Values the flavor does
// not set are left to whatever the manifests themselves declare.
func manifestValueProperties(flavor *builder.ProductFlavor) []string {
	var props []string
	if flavor.VersionCode != nil {
		props = append(props, fmt.Sprintf("--property versionCode=%d", *flavor.VersionCode))
	}
	if flavor.VersionName != nil {
		props = append(props, "--property versionName="+*flavor.VersionName)
	}
	if flavor.MinSdkVersion != nil {
		props = append(props, fmt.Sprintf("--property minSdkVersion=%d", *flavor.MinSdkVersion))
	}
	if flavor.TargetSdkVersion != nil {
		props = append(props, fmt.Sprintf("--property targetSdkVersion=%d", *flavor.TargetSdkVersion))
	}
	return props
}

// mergeManifests merges the variant's manifest overlays and its libraries'
// manifests into the main manifest.  Overlays come first and take precedence
// over the library manifests.  If there is nothing to merge and nothing to
// inject the main manifest is used as is.
func mergeManifests(ctx android.ModuleContext, mainManifest android.Path,
	overlays, libManifests android.Paths, properties []string) android.Path {

	if len(overlays) == 0 && len(libManifests) == 0 && len(properties) == 0 {
		return mainManifest
	}

	mergedManifest := android.PathForModuleOut(ctx, "manifest", "AndroidManifest.xml")

	var deps android.Paths
	deps = append(deps, overlays...)
	deps = append(deps, libManifests...)

	ctx.Build(pctx, android.BuildParams{
		Rule:        manifestMergerRule,
		Description: "merge manifests",
		Input:       mainManifest,
		Implicits:   deps,
		Output:      mergedManifest,
		Args: map[string]string{
			"overlays":   android.JoinWithPrefix(overlays.Strings(), "--overlays "),
			"libs":       android.JoinWithPrefix(libManifests.Strings(), "--libs "),
			"properties": strings.Join(properties, " "),
		},
	})

	return mergedManifest
}

// generateTestManifest writes the manifest for a test variant.  Test variants
// never use the module's checked in manifest, their whole manifest exists to
// declare the instrumentation entry point against the tested package.
func generateTestManifest(ctx android.ModuleContext, pkg string, minSdkVersion int,
	targetPackage, runner string) android.Path {

	manifest := android.PathForModuleGen(ctx, "manifest", "AndroidManifest.xml")

	content := strings.Join([]string{
		`<?xml version="1.0" encoding="utf-8"?>`,
		`<manifest xmlns:android="http://schemas.android.com/apk/res/android"`,
		`    package="` + pkg + `">`,
		``,
		`    <uses-sdk android:minSdkVersion="` + strconv.Itoa(minSdkVersion) + `" />`,
		``,
		`    <instrumentation android:name="` + runner + `"`,
		`                     android:targetPackage="` + targetPackage + `"`,
		`                     android:handleProfiling="false"`,
		`                     android:functionalTest="false"`,
		`                     android:label="Tests for ` + targetPackage + `" />`,
		``,
		`    <application>`,
		`        <uses-library android:name="android.test.runner" />`,
		`    </application>`,
		`</manifest>`,
		``,
	}, "\n")

	android.WriteFileRule(ctx, manifest, content)

	return manifest
}
