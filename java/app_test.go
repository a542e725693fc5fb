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
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestApp(t *testing.T) {
	ctx := testJava(t, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
		}
	`, nil)

	debug := ctx.ModuleForTests("foo", "debug")

	compile := debug.Rule("aapt2Compile")
	if g, w := compile.Inputs.Strings(), []string{"res/values/strings.xml"}; !reflect.DeepEqual(g, w) {
		t.Errorf("aapt2 compile inputs = %v, want %v", g, w)
	}
	wantFlat := intermediates("foo", "debug", "aapt2/res/values_strings.arsc.flat")
	if g := compile.Outputs.Strings(); len(g) != 1 || g[0] != wantFlat {
		t.Errorf("aapt2 compile outputs = %v, want [%s]", g, wantFlat)
	}

	// Nothing to merge or inject, so the main manifest is linked as is.
	if debug.MaybeRule("manifestMerger").Rule != nil {
		t.Errorf("unexpected manifest merger rule")
	}

	link := debug.Rule("aapt2Link")
	if g, w := link.Output.String(), intermediates("foo", "debug", "package-res.apk"); g != w {
		t.Errorf("aapt2 link output = %q, want %q", g, w)
	}
	for _, f := range []string{
		"--manifest AndroidManifest.xml",
		"--custom-package com.example.app",
		"--debug-mode",
	} {
		if !strings.Contains(link.Args["flags"], f) {
			t.Errorf("aapt2 link flags missing %q: %q", f, link.Args["flags"])
		}
	}

	dex := debug.Rule("dex")
	if g, w := dex.Args["dexFlags"], "--min-api 21 --debug"; g != w {
		t.Errorf("dexFlags = %q, want %q", g, w)
	}

	combine := debug.Rule("combineApk")
	wantApk := []string{
		intermediates("foo", "debug", "package-res.apk"),
		intermediates("foo", "debug", "dex.zip"),
	}
	if g := combine.Inputs.Strings(); !reflect.DeepEqual(g, wantApk) {
		t.Errorf("apk inputs = %v, want %v", g, wantApk)
	}
	if g, w := combine.Output.String(), intermediates("foo", "debug", "package.apk"); g != w {
		t.Errorf("apk output = %q, want %q", g, w)
	}

	// Debug build types sign with the shared debug keystore.
	sign := debug.Rule("signapk")
	if g, w := sign.Input.String(), intermediates("foo", "debug", "package.apk"); g != w {
		t.Errorf("signapk input = %q, want %q", g, w)
	}
	wantSignArgs := map[string]string{
		"keystore":  "/home/user/.android/debug.keystore",
		"storepass": "android",
		"keypass":   "android",
		"alias":     "androiddebugkey",
	}
	for k, w := range wantSignArgs {
		if g := sign.Args[k]; g != w {
			t.Errorf("signapk arg %s = %q, want %q", k, g, w)
		}
	}

	// jarsigner breaks the alignment, so zipalign runs last and produces
	// the final artifact.
	finalApk := intermediates("foo", "debug", "foo.apk")
	align := debug.Rule("zipalign")
	if g, w := align.Input.String(), intermediates("foo", "debug", "package-signed.apk"); g != w {
		t.Errorf("zipalign input = %q, want %q", g, w)
	}
	if g := align.Output.String(); g != finalApk {
		t.Errorf("zipalign output = %q, want %q", g, finalApk)
	}

	phony := debug.Output("foo-debug")
	if g := phony.Implicits.Strings(); len(g) != 1 || g[0] != finalApk {
		t.Errorf("foo-debug implicits = %v, want [%s]", g, finalApk)
	}

	install := debug.Output(filepath.Join(buildDir, "target/product/test_device/app/foo-debug.apk"))
	if g := install.Input.String(); g != finalApk {
		t.Errorf("install input = %q, want %q", g, finalApk)
	}

	if g := debug.Rule("adbInstall").Input.String(); g != finalApk {
		t.Errorf("adb install input = %q, want %q", g, finalApk)
	}
	debug.Output("install-foo-debug")
	if g, w := debug.Rule("adbUninstall").Args["packageName"], "com.example.app"; g != w {
		t.Errorf("adb uninstall package = %q, want %q", g, w)
	}
	debug.Output("uninstall-foo-debug")

	// The release variant has no signing config, so it is built unsigned
	// and cannot be installed.
	release := ctx.ModuleForTests("foo", "release")
	if g, w := release.Rule("dex").Args["dexFlags"], "--min-api 21 --release"; g != w {
		t.Errorf("release dexFlags = %q, want %q", g, w)
	}
	if g := release.Rule("aapt2Link").Args["flags"]; strings.Contains(g, "--debug-mode") {
		t.Errorf("release link flags contain --debug-mode: %q", g)
	}
	unsigned := intermediates("foo", "release", "foo-unsigned.apk")
	if g := release.Rule("combineApk").Output.String(); g != unsigned {
		t.Errorf("release apk output = %q, want %q", g, unsigned)
	}
	if release.MaybeRule("signapk").Rule != nil {
		t.Errorf("unexpected signapk rule on unsigned release variant")
	}
	if release.MaybeRule("zipalign").Rule != nil {
		t.Errorf("unexpected zipalign rule on unsigned release variant")
	}
	if release.MaybeRule("adbInstall").Rule != nil {
		t.Errorf("unexpected adb install rule on unsigned release variant")
	}
	installed := filepath.Join(buildDir, "target/product/test_device/app/foo-release.apk")
	if release.MaybeOutput(installed).Rule != nil {
		t.Errorf("unexpected install rule on unsigned release variant")
	}
}

func TestAppVersionProperties(t *testing.T) {
	ctx := testJava(t, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			package_name: "com.renamed.app",
			version_code: 42,
			version_name: "4.2",
			min_sdk_version: 23,
		}
	`, nil)

	debug := ctx.ModuleForTests("foo", "debug")

	merger := debug.Rule("manifestMerger")
	if g, w := merger.Input.String(), "AndroidManifest.xml"; g != w {
		t.Errorf("manifest merger input = %q, want %q", g, w)
	}
	wantProps := "--property versionCode=42 --property versionName=4.2 " +
		"--property minSdkVersion=23 --property package=com.renamed.app"
	if g := merger.Args["properties"]; g != wantProps {
		t.Errorf("manifest merger properties = %q, want %q", g, wantProps)
	}

	merged := intermediates("foo", "debug", "manifest/AndroidManifest.xml")
	if g := merger.Output.String(); g != merged {
		t.Errorf("manifest merger output = %q, want %q", g, merged)
	}

	// Resources link against the merged manifest, but R.java stays in the
	// package declared by the main manifest.
	link := debug.Rule("aapt2Link")
	if !strings.Contains(link.Args["flags"], "--manifest "+merged) {
		t.Errorf("aapt2 link flags missing merged manifest: %q", link.Args["flags"])
	}
	if !strings.Contains(link.Args["flags"], "--custom-package com.example.app") {
		t.Errorf("aapt2 link flags missing original package: %q", link.Args["flags"])
	}

	if g, w := debug.Rule("dex").Args["dexFlags"], "--min-api 23 --debug"; g != w {
		t.Errorf("dexFlags = %q, want %q", g, w)
	}

	if g, w := debug.Rule("adbUninstall").Args["packageName"], "com.renamed.app"; g != w {
		t.Errorf("adb uninstall package = %q, want %q", g, w)
	}
}

func TestAppLibraries(t *testing.T) {
	ctx := testJava(t, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			libs: ["libA"],
		}
	`, map[string][]byte{
		"a/Android.bp": []byte(`
			android_library {
				name: "libA",
				srcs: ["src/com/example/a/A.java"],
				libs: ["libB"],
			}
		`),
		"a/AndroidManifest.xml":      manifestFor("com.example.a"),
		"a/src/com/example/a/A.java": nil,
		"a/res/values/strings.xml":   nil,
		"b/Android.bp": []byte(`
			android_library {
				name: "libB",
				srcs: ["src/com/example/b/B.java"],
			}
		`),
		"b/AndroidManifest.xml":      manifestFor("com.example.b"),
		"b/src/com/example/b/B.java": nil,
		"b/res/values/strings.xml":   nil,
	})

	debug := ctx.ModuleForTests("foo", "debug")
	aJar := intermediates("a/libA", "debug", "classes-compiled.jar")
	bJar := intermediates("b/libB", "debug", "classes-compiled.jar")

	// Library manifests merge below the app's own manifest, in flattened
	// dependency order.
	merger := debug.Rule("manifestMerger")
	if g, w := merger.Args["libs"], "--libs a/AndroidManifest.xml --libs b/AndroidManifest.xml"; g != w {
		t.Errorf("manifest merger libs = %q, want %q", g, w)
	}

	// An R.java is generated for the app and for each library package.
	link := debug.Rule("aapt2Link")
	if !strings.Contains(link.Args["flags"], "--extra-packages com.example.a:com.example.b") {
		t.Errorf("aapt2 link flags missing extra packages: %q", link.Args["flags"])
	}
	javac := debug.Rule("javac")
	wantSrcs := []string{
		"src/com/example/app/Main.java",
		intermediates("foo", "debug", "gen/buildconfig/com/example/app/BuildConfig.java"),
		intermediates("foo", "debug", "gen/aapt2/com/example/app/R.java"),
		intermediates("foo", "debug", "gen/aapt2/com/example/a/R.java"),
		intermediates("foo", "debug", "gen/aapt2/com/example/b/R.java"),
	}
	if g := javac.Inputs.Strings(); !reflect.DeepEqual(g, wantSrcs) {
		t.Errorf("javac inputs = %v, want %v", g, wantSrcs)
	}

	if g, w := javac.Args["classpath"], "-classpath "+aJar+":"+bJar; g != w {
		t.Errorf("classpath = %q, want %q", g, w)
	}

	// The library furthest down the graph is the base resource set, closer
	// overlays win and the app's own resources win over everything.
	base := debug.Description("resource file list")
	wantBase := []string{intermediates("foo", "debug", "aapt2/b/res/values_strings.arsc.flat")}
	if g := base.Inputs.Strings(); !reflect.DeepEqual(g, wantBase) {
		t.Errorf("base resources = %v, want %v", g, wantBase)
	}
	overlay := debug.Description("overlay resource file list")
	wantOverlay := []string{
		intermediates("foo", "debug", "aapt2/a/res/values_strings.arsc.flat"),
		intermediates("foo", "debug", "aapt2/res/values_strings.arsc.flat"),
	}
	if g := overlay.Inputs.Strings(); !reflect.DeepEqual(g, wantOverlay) {
		t.Errorf("overlay resources = %v, want %v", g, wantOverlay)
	}

	// Library classes are dexed into the package and their non-class files
	// become java resources.
	dex := debug.Rule("dex")
	wantDex := []string{intermediates("foo", "debug", "classes-compiled.jar"), aJar, bJar}
	if g := dex.Inputs.Strings(); !reflect.DeepEqual(g, wantDex) {
		t.Errorf("dex inputs = %v, want %v", g, wantDex)
	}
	res := debug.Rule("mergeJavaRes")
	if g, w := res.Inputs.Strings(), []string{aJar, bJar}; !reflect.DeepEqual(g, w) {
		t.Errorf("java resource inputs = %v, want %v", g, w)
	}

	// The library compiles against its own dependencies and links its
	// resources with non-final ids.
	libA := ctx.ModuleForTests("libA", "debug")
	if g, w := libA.Rule("javac").Args["classpath"], "-classpath "+bJar; g != w {
		t.Errorf("libA classpath = %q, want %q", g, w)
	}
	libALink := libA.Rule("aapt2Link")
	for _, f := range []string{"--non-final-ids", "--extra-packages com.example.b"} {
		if !strings.Contains(libALink.Args["flags"], f) {
			t.Errorf("libA link flags missing %q: %q", f, libALink.Args["flags"])
		}
	}
}

func TestAppResourceOverlays(t *testing.T) {
	ctx := testJava(t, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			product_flavors: ["free"],
		}

		android_product_flavor {
			name: "free",
			dimension: "tier",
		}
	`, map[string][]byte{
		"src/debug/res/values/strings.xml": nil,
		"src/free/res/values/strings.xml":  nil,
		"src/free/AndroidManifest.xml":     nil,
		"assets/default.txt":               nil,
		"src/free/assets/free.txt":         nil,
	})

	debug := ctx.ModuleForTests("foo", "free-debug")

	merger := debug.Rule("manifestMerger")
	if g, w := merger.Args["overlays"], "--overlays src/free/AndroidManifest.xml"; g != w {
		t.Errorf("manifest merger overlays = %q, want %q", g, w)
	}

	// The default resources are the base set.  Overlays apply in
	// increasing priority, the build type's resources win over the
	// flavor's.
	base := debug.Description("resource file list")
	wantBase := []string{intermediates("foo", "free-debug", "aapt2/res/values_strings.arsc.flat")}
	if g := base.Inputs.Strings(); !reflect.DeepEqual(g, wantBase) {
		t.Errorf("base resources = %v, want %v", g, wantBase)
	}
	overlay := debug.Description("overlay resource file list")
	wantOverlay := []string{
		intermediates("foo", "free-debug", "aapt2/src/free/res/values_strings.arsc.flat"),
		intermediates("foo", "free-debug", "aapt2/src/debug/res/values_strings.arsc.flat"),
	}
	if g := overlay.Inputs.Strings(); !reflect.DeepEqual(g, wantOverlay) {
		t.Errorf("overlay resources = %v, want %v", g, wantOverlay)
	}

	// Asset directories are passed in decreasing priority order, the
	// package keeps the first copy of a duplicate.
	link := debug.Rule("aapt2Link")
	if !strings.Contains(link.Args["flags"], "-A src/free/assets -A assets") {
		t.Errorf("aapt2 link flags missing asset dirs: %q", link.Args["flags"])
	}
}

func TestAppJavaResources(t *testing.T) {
	ctx := testJava(t, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			java_resource_dirs: ["jres"],
		}
	`, map[string][]byte{
		"jres/com/example/app/data.properties": nil,
	})

	debug := ctx.ModuleForTests("foo", "debug")

	zip := debug.Description("zip jres")
	if g, w := zip.Inputs.Strings(), []string{"jres/com/example/app/data.properties"}; !reflect.DeepEqual(g, w) {
		t.Errorf("resource zip inputs = %v, want %v", g, w)
	}
	if g, w := zip.Args["dir"], "jres"; g != w {
		t.Errorf("resource zip dir = %q, want %q", g, w)
	}
	if g := zip.Args["prefixFlag"]; g != "" {
		t.Errorf("resource zip prefixFlag = %q, want empty", g)
	}

	res := debug.Rule("mergeJavaRes")
	wantRes := []string{intermediates("foo", "debug", "javares/dir0.zip")}
	if g := res.Inputs.Strings(); !reflect.DeepEqual(g, wantRes) {
		t.Errorf("java resource inputs = %v, want %v", g, wantRes)
	}

	combine := debug.Rule("combineApk")
	wantApk := []string{
		intermediates("foo", "debug", "package-res.apk"),
		intermediates("foo", "debug", "dex.zip"),
		intermediates("foo", "debug", "java-res.zip"),
	}
	if g := combine.Inputs.Strings(); !reflect.DeepEqual(g, wantApk) {
		t.Errorf("apk inputs = %v, want %v", g, wantApk)
	}
}

func TestAppJniLibs(t *testing.T) {
	ctx := testJava(t, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
		}
	`, map[string][]byte{
		"jni/armeabi-v7a/libfoo.so":           nil,
		"src/debug/jni/armeabi-v7a/libfoo.so": nil,
	})

	debug := ctx.ModuleForTests("foo", "debug")

	// The build type's libraries zip first so their copy of a duplicate
	// wins the package merge.
	debugZip := debug.Description("zip src/debug/jni")
	if g, w := debugZip.Inputs.Strings(), []string{"src/debug/jni/armeabi-v7a/libfoo.so"}; !reflect.DeepEqual(g, w) {
		t.Errorf("debug jni inputs = %v, want %v", g, w)
	}
	if g, w := debugZip.Args["prefixFlag"], "-P lib"; g != w {
		t.Errorf("jni prefixFlag = %q, want %q", g, w)
	}

	defaultZip := debug.Description("zip jni")
	if g, w := defaultZip.Inputs.Strings(), []string{"jni/armeabi-v7a/libfoo.so"}; !reflect.DeepEqual(g, w) {
		t.Errorf("default jni inputs = %v, want %v", g, w)
	}

	combine := debug.Rule("combineApk")
	wantApk := []string{
		intermediates("foo", "debug", "package-res.apk"),
		intermediates("foo", "debug", "dex.zip"),
		intermediates("foo", "debug", "jni/jni0.zip"),
		intermediates("foo", "debug", "jni/jni1.zip"),
	}
	if g := combine.Inputs.Strings(); !reflect.DeepEqual(g, wantApk) {
		t.Errorf("apk inputs = %v, want %v", g, wantApk)
	}

	// The release variant only packages the default libraries.
	release := ctx.ModuleForTests("foo", "release")
	if release.MaybeDescription("zip src/debug/jni").Rule != nil {
		t.Errorf("unexpected debug jni zip on release variant")
	}
}

func TestAppProguard(t *testing.T) {
	ctx := testJava(t, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			libs: ["libA"],
			build_types: ["prod"],
		}

		android_build_type {
			name: "prod",
			debug_signed: true,
			minify_enabled: true,
		}
	`, map[string][]byte{
		"a/Android.bp": []byte(`
			android_library {
				name: "libA",
				srcs: ["src/com/example/a/A.java"],
				build_types: ["prod"],
			}
		`),
		"a/AndroidManifest.xml":      manifestFor("com.example.a"),
		"a/src/com/example/a/A.java": nil,
		"a/proguard.txt":             nil,
	})

	prod := ctx.ModuleForTests("foo", "prod")
	aJar := intermediates("a/libA", "prod", "classes-compiled.jar")

	proguard := prod.Rule("proguard")
	if g, w := proguard.Input.String(), intermediates("foo", "prod", "classes-compiled.jar"); g != w {
		t.Errorf("proguard input = %q, want %q", g, w)
	}
	if g, w := proguard.Output.String(), intermediates("foo", "prod", "classes-proguard.jar"); g != w {
		t.Errorf("proguard output = %q, want %q", g, w)
	}

	// Keep rules come from aapt2 and from the libraries that ship them.
	wantRules := "-include " + intermediates("foo", "prod", "gen/proguard.options") +
		" -include a/proguard.txt"
	if g := proguard.Args["ruleFlags"]; g != wantRules {
		t.Errorf("proguard ruleFlags = %q, want %q", g, wantRules)
	}
	if g, w := proguard.Args["libraryJars"], ":"+aJar; g != w {
		t.Errorf("proguard libraryJars = %q, want %q", g, w)
	}

	// The dex rule consumes the shrunk jar in place of the compiled one.
	dex := prod.Rule("dex")
	wantDex := []string{intermediates("foo", "prod", "classes-proguard.jar"), aJar}
	if g := dex.Inputs.Strings(); !reflect.DeepEqual(g, wantDex) {
		t.Errorf("dex inputs = %v, want %v", g, wantDex)
	}
}

func TestAppSigningConfig(t *testing.T) {
	ctx := testJava(t, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			signing_config: "release_keys",
		}

		android_signing_config {
			name: "release_keys",
			store_file: "keys/release.keystore",
			store_password: "storepw",
			key_alias: "release",
			key_password: "keypw",
		}
	`, map[string][]byte{
		"keys/release.keystore": nil,
	})

	release := ctx.ModuleForTests("foo", "release")

	sign := release.Rule("signapk")
	wantArgs := map[string]string{
		"keystore":  "keys/release.keystore",
		"storepass": "storepw",
		"keypass":   "keypw",
		"alias":     "release",
	}
	for k, w := range wantArgs {
		if g := sign.Args[k]; g != w {
			t.Errorf("signapk arg %s = %q, want %q", k, g, w)
		}
	}
	// A keystore in the source tree is a dependency of the signing rule.
	if g, w := sign.Implicits.Strings(), []string{"keys/release.keystore"}; !reflect.DeepEqual(g, w) {
		t.Errorf("signapk implicits = %v, want %v", g, w)
	}

	release.Output("foo.apk")
	release.Output(filepath.Join(buildDir, "target/product/test_device/app/foo-release.apk"))

	// Debug signing still wins on debug build types.
	debug := ctx.ModuleForTests("foo", "debug")
	if g, w := debug.Rule("signapk").Args["keystore"], "/home/user/.android/debug.keystore"; g != w {
		t.Errorf("debug keystore = %q, want %q", g, w)
	}
}

func TestAppSigningConfigIncomplete(t *testing.T) {
	testJavaError(t, "signing config is incomplete", `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			signing_config: "release_keys",
		}

		android_signing_config {
			name: "release_keys",
			store_file: "keys/release.keystore",
		}
	`, map[string][]byte{
		"keys/release.keystore": nil,
	})
}

func TestAppPackageNameSuffix(t *testing.T) {
	ctx := testJava(t, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			build_types: ["dev"],
		}

		android_build_type {
			name: "dev",
			debuggable: true,
			debug_signed: true,
			package_name_suffix: "dev",
		}
	`, nil)

	dev := ctx.ModuleForTests("foo", "dev")

	// The rename is injected into the merged manifest, R.java and
	// BuildConfig stay in the original package.
	merger := dev.Rule("manifestMerger")
	if g, w := merger.Args["properties"], "--property package=com.example.app.dev"; g != w {
		t.Errorf("manifest merger properties = %q, want %q", g, w)
	}
	link := dev.Rule("aapt2Link")
	if !strings.Contains(link.Args["flags"], "--custom-package com.example.app") {
		t.Errorf("aapt2 link flags missing original package: %q", link.Args["flags"])
	}
	dev.Output("buildconfig/com/example/app/BuildConfig.java")

	if g, w := dev.Rule("adbUninstall").Args["packageName"], "com.example.app.dev"; g != w {
		t.Errorf("adb uninstall package = %q, want %q", g, w)
	}
}

func TestAppZipalignDisabled(t *testing.T) {
	ctx := testJava(t, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			build_types: ["fast"],
		}

		android_build_type {
			name: "fast",
			debug_signed: true,
			zipalign: false,
		}
	`, nil)

	fast := ctx.ModuleForTests("foo", "fast")

	sign := fast.Rule("signapk")
	if g, w := sign.Output.String(), intermediates("foo", "fast", "foo.apk"); g != w {
		t.Errorf("signapk output = %q, want %q", g, w)
	}
	if fast.MaybeRule("zipalign").Rule != nil {
		t.Errorf("unexpected zipalign rule")
	}
	fast.Output(filepath.Join(buildDir, "target/product/test_device/app/foo-fast.apk"))
}

func TestAndroidTest(t *testing.T) {
	ctx := testJava(t, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
		}

		android_test {
			name: "foo_test",
			instrumentation_for: "foo",
			srcs: ["tests/com/example/app/MainTest.java"],
		}
	`, map[string][]byte{
		"tests/com/example/app/MainTest.java": nil,
	})

	test := ctx.ModuleForTests("foo_test", "debug")

	// The test manifest is generated, the module's own manifest is not
	// consulted.
	manifest := test.Output("manifest/AndroidManifest.xml")
	content := manifest.Args["content"]
	for _, want := range []string{
		`package="com.example.app.test"`,
		`android:minSdkVersion="21"`,
		`android:name="android.test.InstrumentationTestRunner"`,
		`android:targetPackage="com.example.app"`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("test manifest missing %q, got:\n%s", want, content)
		}
	}

	// Tests compile against the classes they instrument without packaging
	// them.
	javac := test.Rule("javac")
	fooJar := intermediates("foo", "debug", "classes-compiled.jar")
	if g, w := javac.Args["classpath"], "-classpath "+fooJar; g != w {
		t.Errorf("test classpath = %q, want %q", g, w)
	}
	dex := test.Rule("dex")
	wantDex := []string{intermediates("foo_test", "debug", "classes-compiled.jar")}
	if g := dex.Inputs.Strings(); !reflect.DeepEqual(g, wantDex) {
		t.Errorf("test dex inputs = %v, want %v", g, wantDex)
	}

	// The test package signs and installs like any debug app.
	test.Output("foo_test.apk")
	test.Output(filepath.Join(buildDir, "target/product/test_device/app/foo_test-debug.apk"))
	if g, w := test.Rule("adbUninstall").Args["packageName"], "com.example.app.test"; g != w {
		t.Errorf("adb uninstall package = %q, want %q", g, w)
	}
}

func TestAndroidTestFlavors(t *testing.T) {
	ctx := testJava(t, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			product_flavors: ["free", "paid"],
			test_instrumentation_runner: "androidx.test.runner.AndroidJUnitRunner",
		}

		android_product_flavor {
			name: "free",
			dimension: "tier",
			test_package_name: "com.example.free.tests",
		}

		android_product_flavor {
			name: "paid",
			dimension: "tier",
		}

		android_test {
			name: "foo_test",
			instrumentation_for: "foo",
			srcs: ["tests/com/example/app/MainTest.java"],
			product_flavors: ["free", "paid"],
		}
	`, map[string][]byte{
		"tests/com/example/app/MainTest.java": nil,
	})

	checkVariants(t, ctx, "foo_test", []string{
		"free-debug",
		"free-release",
		"paid-debug",
		"paid-release",
	})

	// Each test variant instruments the matching variant of the app.
	free := ctx.ModuleForTests("foo_test", "free-debug")
	content := free.Output("manifest/AndroidManifest.xml").Args["content"]
	for _, want := range []string{
		`package="com.example.free.tests"`,
		`android:name="androidx.test.runner.AndroidJUnitRunner"`,
		`android:targetPackage="com.example.app"`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("free test manifest missing %q, got:\n%s", want, content)
		}
	}
	freeJar := intermediates("foo", "free-debug", "classes-compiled.jar")
	if g, w := free.Rule("javac").Args["classpath"], "-classpath "+freeJar; g != w {
		t.Errorf("free test classpath = %q, want %q", g, w)
	}

	paid := ctx.ModuleForTests("foo_test", "paid-debug")
	content = paid.Output("manifest/AndroidManifest.xml").Args["content"]
	if !strings.Contains(content, `package="com.example.app.test"`) {
		t.Errorf("paid test manifest missing default test package, got:\n%s", content)
	}
}

func TestAndroidTestForLibrary(t *testing.T) {
	ctx := testJava(t, `
		android_library {
			name: "mylib",
			srcs: ["src/com/example/app/Main.java"],
		}

		android_test {
			name: "mylib_test",
			instrumentation_for: "mylib",
			srcs: ["tests/com/example/app/MainTest.java"],
		}
	`, map[string][]byte{
		"tests/com/example/app/MainTest.java": nil,
	})

	test := ctx.ModuleForTests("mylib_test", "debug")

	// The test package itself carries the library code under test, so the
	// instrumentation targets the test's own package.
	content := test.Output("manifest/AndroidManifest.xml").Args["content"]
	for _, want := range []string{
		`package="com.example.app.test"`,
		`android:targetPackage="com.example.app.test"`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("library test manifest missing %q, got:\n%s", want, content)
		}
	}

	libJar := intermediates("mylib", "debug", "classes-compiled.jar")
	if g, w := test.Rule("javac").Args["classpath"], "-classpath "+libJar; g != w {
		t.Errorf("library test classpath = %q, want %q", g, w)
	}
}

func TestAndroidTestMissingTarget(t *testing.T) {
	testJavaError(t, "missing module under test", `
		android_test {
			name: "foo_test",
			srcs: ["tests/com/example/app/MainTest.java"],
		}
	`, map[string][]byte{
		"tests/com/example/app/MainTest.java": nil,
	})
}
