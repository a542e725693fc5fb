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

// Package config locates the JDK and the Android SDK tools that the java
// package invokes.  The locations are exported as ninja variables so that a
// checkout can point ANDROID_HOME or ANDROID_JAVA_HOME somewhere else
// without regenerating any Go code.
package config

import (
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/google/blueprint/bootstrap"

	"android/appbuild/android"
)

var (
	pctx = android.NewPackageContext("android/appbuild/java/config")

	DefaultBuildToolsVersion = "28.0.3"
)

func init() {
	pctx.Import("github.com/google/blueprint/bootstrap")

	pctx.StaticVariable("CommonJavacFlags", strings.Join([]string{
		`-J-Xmx2048M`,
		`-source 1.8`,
		`-target 1.8`,
		`-encoding UTF-8`,
		`-g`,
	}, " "))

	pctx.VariableConfigMethod("hostPrebuiltTag", android.Config.PrebuiltOS)

	pctx.SourcePathVariableWithEnvOverride("JavaHome",
		"prebuilts/jdk/jdk8/${hostPrebuiltTag}", "ANDROID_JAVA_HOME")
	pctx.StaticVariable("JavaToolchain", "${JavaHome}/bin")
	pctx.StaticVariable("JavacCmd", "${JavaToolchain}/javac")
	pctx.StaticVariable("JarCmd", "${JavaToolchain}/jar")
	pctx.StaticVariable("JarsignerCmd", "${JavaToolchain}/jarsigner")

	pctx.SourcePathVariableWithEnvOverride("SdkHome",
		"prebuilts/sdk", "ANDROID_HOME")
	pctx.VariableFunc("BuildToolsVersion", func(config interface{}) (string, error) {
		return config.(android.Config).GetenvWithDefault("ANDROID_BUILD_TOOLS_VERSION",
			DefaultBuildToolsVersion), nil
	})
	pctx.StaticVariable("BuildToolsDir", "${SdkHome}/build-tools/${BuildToolsVersion}")

	pctx.StaticVariable("Aapt2Cmd", "${BuildToolsDir}/aapt2")
	pctx.StaticVariable("AidlCmd", "${BuildToolsDir}/aidl")
	pctx.StaticVariable("ZipalignCmd", "${BuildToolsDir}/zipalign")
	pctx.StaticVariable("D8Cmd", "${BuildToolsDir}/d8")

	pctx.StaticVariable("AdbCmd", "${SdkHome}/platform-tools/adb")
	pctx.StaticVariable("ManifestMergerCmd", "${SdkHome}/tools/bin/manifest-merger")
	pctx.StaticVariable("ProguardCmd", "${SdkHome}/tools/proguard/bin/proguard.sh")

	pctx.VariableFunc("PlatformSdkVersion", func(config interface{}) (string, error) {
		return strconv.Itoa(config.(android.Config).PlatformSdkVersion()), nil
	})
	pctx.StaticVariable("AndroidJar",
		"${SdkHome}/platforms/android-${PlatformSdkVersion}/android.jar")
	pctx.StaticVariable("FrameworkAidl",
		"${SdkHome}/platforms/android-${PlatformSdkVersion}/framework.aidl")

	pctx.StaticVariable("MergeJarsCmd", filepath.Join("${bootstrap.BinDir}", "merge_jars"))
	pctx.StaticVariable("ZipDirCmd", filepath.Join("${bootstrap.BinDir}", "zip_dir"))
}
