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
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"android/appbuild/android"
)

var buildDir string

func setUp() {
	var err error
	buildDir, err = ioutil.TempDir("", "appbuild_java_test")
	if err != nil {
		panic(err)
	}
}

func tearDown() {
	os.RemoveAll(buildDir)
}

func TestMain(m *testing.M) {
	run := func() int {
		setUp()
		defer tearDown()

		return m.Run()
	}

	os.Exit(run())
}

const manifestTemplate = `<?xml version="1.0" encoding="utf-8"?>
<manifest xmlns:android="http://schemas.android.com/apk/res/android"
    package=%q>
    <uses-sdk android:minSdkVersion="21" />
</manifest>
`

func manifestFor(pkg string) []byte {
	return []byte(fmt.Sprintf(manifestTemplate, pkg))
}

func testConfig(env map[string]string) android.Config {
	if env == nil {
		env = make(map[string]string)
	}
	if env["HOME"] == "" {
		env["HOME"] = "/home/user"
	}
	return android.TestConfig(buildDir, env)
}

func testContext(bp string, fs map[string][]byte) *android.TestContext {
	ctx := android.NewTestContext()
	ctx.RegisterModuleType("android_app", android.ModuleFactoryAdaptor(AndroidAppFactory))
	ctx.RegisterModuleType("android_test", android.ModuleFactoryAdaptor(AndroidTestFactory))
	ctx.RegisterModuleType("android_library", android.ModuleFactoryAdaptor(LibraryFactory))
	ctx.RegisterModuleType("java_import", android.ModuleFactoryAdaptor(ImportFactory))
	ctx.RegisterModuleType("android_product_flavor", android.ModuleFactoryAdaptor(ProductFlavorFactory))
	ctx.RegisterModuleType("android_build_type", android.ModuleFactoryAdaptor(BuildTypeFactory))
	ctx.RegisterModuleType("android_signing_config", android.ModuleFactoryAdaptor(SigningConfigFactory))
	ctx.PostDepsMutators(RegisterVariantMutators)
	ctx.Register()

	mockFS := map[string][]byte{
		"Android.bp":                    []byte(bp),
		"AndroidManifest.xml":           manifestFor("com.example.app"),
		"src/com/example/app/Main.java": nil,
		"res/values/strings.xml":        nil,
	}

	for k, v := range fs {
		mockFS[k] = v
	}

	ctx.MockFileSystem(mockFS)

	return ctx
}

func run(t *testing.T, ctx *android.TestContext, config android.Config) {
	t.Helper()
	_, errs := ctx.ParseBlueprintsFiles("Android.bp")
	android.FailIfErrored(t, errs)
	_, errs = ctx.PrepareBuildActions(config)
	android.FailIfErrored(t, errs)
}

func testJava(t *testing.T, bp string, fs map[string][]byte) *android.TestContext {
	t.Helper()
	ctx := testContext(bp, fs)
	run(t, ctx, testConfig(nil))
	return ctx
}

func testJavaError(t *testing.T, pattern string, bp string, fs map[string][]byte) {
	t.Helper()
	ctx := testContext(bp, fs)

	_, errs := ctx.ParseBlueprintsFiles("Android.bp")
	if len(errs) > 0 {
		android.FailIfNoMatchingErrors(t, pattern, errs)
		return
	}

	_, errs = ctx.PrepareBuildActions(testConfig(nil))
	if len(errs) > 0 {
		android.FailIfNoMatchingErrors(t, pattern, errs)
		return
	}

	t.Fatalf("missing expected error %q (0 errors returned)", pattern)
}

// intermediates returns the path of a file in a module variant's output
// directory, for modules defined in the root Android.bp.
func intermediates(module, variant, file string) string {
	return filepath.Join(buildDir, ".intermediates", module, variant, file)
}

func TestCompileSources(t *testing.T) {
	ctx := testJava(t, `
		android_app {
			name: "foo",
			srcs: ["src/**/*.java"],
			exclude_srcs: ["src/com/example/app/Excluded.java"],
		}
	`, map[string][]byte{
		"src/com/example/app/Other.java":    nil,
		"src/com/example/app/Excluded.java": nil,
	})

	javac := ctx.ModuleForTests("foo", "debug").Rule("javac")

	want := []string{
		"src/com/example/app/Main.java",
		"src/com/example/app/Other.java",
		intermediates("foo", "debug", "gen/buildconfig/com/example/app/BuildConfig.java"),
		intermediates("foo", "debug", "gen/aapt2/com/example/app/R.java"),
	}
	if g := javac.Inputs.Strings(); !reflect.DeepEqual(g, want) {
		t.Errorf("javac inputs = %v, want %v", g, want)
	}

	if g := javac.Args["classpath"]; g != "" {
		t.Errorf("classpath = %q, want empty", g)
	}
	if g, w := javac.Args["outDir"], intermediates("foo", "debug", "classes"); g != w {
		t.Errorf("outDir = %q, want %q", g, w)
	}
	if g, w := javac.Output.String(), intermediates("foo", "debug", "classes-compiled.jar"); g != w {
		t.Errorf("javac output = %q, want %q", g, w)
	}
}

func TestJars(t *testing.T) {
	ctx := testJava(t, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			jars: ["libs/guava.jar"],
		}
	`, map[string][]byte{
		"libs/guava.jar": nil,
	})

	foo := ctx.ModuleForTests("foo", "debug")

	javac := foo.Rule("javac")
	if g, w := javac.Args["classpath"], "-classpath libs/guava.jar"; g != w {
		t.Errorf("classpath = %q, want %q", g, w)
	}

	// The jar's classes get dexed along with the compiled sources and its
	// non-class files ride along as java resources.
	dex := foo.Rule("dex")
	wantDex := []string{
		intermediates("foo", "debug", "classes-compiled.jar"),
		"libs/guava.jar",
	}
	if g := dex.Inputs.Strings(); !reflect.DeepEqual(g, wantDex) {
		t.Errorf("dex inputs = %v, want %v", g, wantDex)
	}

	res := foo.Rule("mergeJavaRes")
	if g, w := res.Inputs.Strings(), []string{"libs/guava.jar"}; !reflect.DeepEqual(g, w) {
		t.Errorf("java resource inputs = %v, want %v", g, w)
	}

	combine := foo.Rule("combineApk")
	wantApk := []string{
		intermediates("foo", "debug", "package-res.apk"),
		intermediates("foo", "debug", "dex.zip"),
		intermediates("foo", "debug", "java-res.zip"),
	}
	if g := combine.Inputs.Strings(); !reflect.DeepEqual(g, wantApk) {
		t.Errorf("apk inputs = %v, want %v", g, wantApk)
	}
}

func TestJarsNotAJar(t *testing.T) {
	testJavaError(t, "is not a jar file", `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			jars: ["libs/guava.txt"],
		}
	`, map[string][]byte{
		"libs/guava.txt": nil,
	})
}

func TestPrebuiltJar(t *testing.T) {
	ctx := testJava(t, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			libs: ["gson"],
		}

		java_import {
			name: "gson",
			jar: "prebuilts/gson.jar",
		}
	`, map[string][]byte{
		"prebuilts/gson.jar": nil,
	})

	foo := ctx.ModuleForTests("foo", "debug")

	javac := foo.Rule("javac")
	if g, w := javac.Args["classpath"], "-classpath prebuilts/gson.jar"; g != w {
		t.Errorf("classpath = %q, want %q", g, w)
	}

	dex := foo.Rule("dex")
	wantDex := []string{
		intermediates("foo", "debug", "classes-compiled.jar"),
		"prebuilts/gson.jar",
	}
	if g := dex.Inputs.Strings(); !reflect.DeepEqual(g, wantDex) {
		t.Errorf("dex inputs = %v, want %v", g, wantDex)
	}

	res := foo.Rule("mergeJavaRes")
	if g, w := res.Inputs.Strings(), []string{"prebuilts/gson.jar"}; !reflect.DeepEqual(g, w) {
		t.Errorf("java resource inputs = %v, want %v", g, w)
	}
}

func TestPrebuiltJarMissing(t *testing.T) {
	testJavaError(t, "missing prebuilt jar", `
		java_import {
			name: "gson",
		}
	`, nil)
}

func TestAidl(t *testing.T) {
	ctx := testJava(t, `
		android_app {
			name: "foo",
			srcs: [
				"src/com/example/app/Main.java",
				"src/com/example/app/IRemote.aidl",
			],
		}
	`, map[string][]byte{
		"src/com/example/app/IRemote.aidl":     nil,
		"aidl/com/example/shared/IShared.aidl": nil,
	})

	foo := ctx.ModuleForTests("foo", "debug")

	aidl := foo.Rule("aidl")
	if g, w := aidl.Input.String(), "src/com/example/app/IRemote.aidl"; g != w {
		t.Errorf("aidl input = %q, want %q", g, w)
	}
	genJava := intermediates("foo", "debug", "gen/aidl/src/com/example/app/IRemote.java")
	if g := aidl.Output.String(); g != genJava {
		t.Errorf("aidl output = %q, want %q", g, genJava)
	}
	if g, w := aidl.Args["aidlFlags"], "-p${config.FrameworkAidl} -Iaidl -I."; g != w {
		t.Errorf("aidlFlags = %q, want %q", g, w)
	}

	javac := foo.Rule("javac")
	want := []string{
		"src/com/example/app/Main.java",
		genJava,
		intermediates("foo", "debug", "gen/buildconfig/com/example/app/BuildConfig.java"),
		intermediates("foo", "debug", "gen/aapt2/com/example/app/R.java"),
	}
	if g := javac.Inputs.Strings(); !reflect.DeepEqual(g, want) {
		t.Errorf("javac inputs = %v, want %v", g, want)
	}
}

func TestBuildConfig(t *testing.T) {
	ctx := testJava(t, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			product_flavors: ["free"],
			build_config: ["public static final int BASE = 1;"],
		}

		android_product_flavor {
			name: "free",
			dimension: "tier",
			build_config: ["public static final boolean FREE = true;"],
		}
	`, nil)

	foo := ctx.ModuleForTests("foo", "free-debug")

	buildConfig := foo.Output("buildconfig/com/example/app/BuildConfig.java")
	content := buildConfig.Args["content"]

	for _, line := range []string{
		"package com.example.app;",
		"public static final boolean DEBUG = true;",
		"// lines from default config.",
		"public static final int BASE = 1;",
		"// lines from product flavor: free",
		"public static final boolean FREE = true;",
	} {
		if !strings.Contains(content, line) {
			t.Errorf("BuildConfig.java missing %q, got:\n%s", line, content)
		}
	}

	release := ctx.ModuleForTests("foo", "free-release")
	content = release.Output("buildconfig/com/example/app/BuildConfig.java").Args["content"]
	if !strings.Contains(content, "public static final boolean DEBUG = false;") {
		t.Errorf("release BuildConfig.java missing DEBUG = false, got:\n%s", content)
	}
}
