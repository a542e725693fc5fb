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
	"reflect"
	"sort"
	"testing"

	"android/appbuild/android"
)

func checkVariants(t *testing.T, ctx *android.TestContext, module string, want []string) {
	t.Helper()
	variants := ctx.ModuleVariantsForTests(module)
	sort.Strings(variants)
	if !reflect.DeepEqual(variants, want) {
		t.Errorf("%s variants = %v, want %v", module, variants, want)
	}
}

func TestVariantsDefault(t *testing.T) {
	ctx := testJava(t, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
		}
	`, nil)

	checkVariants(t, ctx, "foo", []string{"debug", "release"})
}

func TestVariantsProductFlavors(t *testing.T) {
	ctx := testJava(t, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			product_flavors: ["free", "paid"],
		}

		android_product_flavor {
			name: "free",
			dimension: "tier",
		}

		android_product_flavor {
			name: "paid",
			dimension: "tier",
		}
	`, nil)

	checkVariants(t, ctx, "foo", []string{
		"free-debug",
		"free-release",
		"paid-debug",
		"paid-release",
	})
}

func TestVariantsFlavorDimensions(t *testing.T) {
	ctx := testJava(t, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			product_flavors: ["free", "paid", "m21", "m24"],
			flavor_dimensions: ["tier", "api"],
		}

		android_app {
			name: "bar",
			srcs: ["src/com/example/app/Main.java"],
			product_flavors: ["free", "paid", "m21", "m24"],
			flavor_dimensions: ["api", "tier"],
		}

		android_product_flavor {
			name: "free",
			dimension: "tier",
		}

		android_product_flavor {
			name: "paid",
			dimension: "tier",
		}

		android_product_flavor {
			name: "m21",
			dimension: "api",
		}

		android_product_flavor {
			name: "m24",
			dimension: "api",
		}
	`, nil)

	// Flavor names appear in variant names in flavor_dimensions order.
	checkVariants(t, ctx, "foo", []string{
		"free-m21-debug",
		"free-m21-release",
		"free-m24-debug",
		"free-m24-release",
		"paid-m21-debug",
		"paid-m21-release",
		"paid-m24-debug",
		"paid-m24-release",
	})

	checkVariants(t, ctx, "bar", []string{
		"m21-free-debug",
		"m21-free-release",
		"m21-paid-debug",
		"m21-paid-release",
		"m24-free-debug",
		"m24-free-release",
		"m24-paid-debug",
		"m24-paid-release",
	})
}

func TestVariantsCustomBuildTypes(t *testing.T) {
	ctx := testJava(t, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			build_types: ["debug", "staging"],
		}

		android_build_type {
			name: "staging",
			debuggable: true,
		}
	`, nil)

	checkVariants(t, ctx, "foo", []string{"debug", "staging"})
}

// Libraries split by build type only.  Every flavor combination of an app
// links against the library variant with the matching build type.
func TestVariantsLibrary(t *testing.T) {
	ctx := testJava(t, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			product_flavors: ["free", "paid"],
			libs: ["mylib"],
		}

		android_product_flavor {
			name: "free",
			dimension: "tier",
		}

		android_product_flavor {
			name: "paid",
			dimension: "tier",
		}
	`, map[string][]byte{
		"lib/Android.bp": []byte(`
			android_library {
				name: "mylib",
				srcs: ["src/com/example/lib/Lib.java"],
			}
		`),
		"lib/AndroidManifest.xml":          manifestFor("com.example.lib"),
		"lib/src/com/example/lib/Lib.java": nil,
	})

	checkVariants(t, ctx, "mylib", []string{"debug", "release"})

	debugJar := intermediates("lib/mylib", "debug", "classes-compiled.jar")
	releaseJar := intermediates("lib/mylib", "release", "classes-compiled.jar")

	javac := ctx.ModuleForTests("foo", "free-debug").Rule("javac")
	if g, w := javac.Args["classpath"], "-classpath "+debugJar; g != w {
		t.Errorf("free-debug classpath = %q, want %q", g, w)
	}

	javac = ctx.ModuleForTests("foo", "paid-release").Rule("javac")
	if g, w := javac.Args["classpath"], "-classpath "+releaseJar; g != w {
		t.Errorf("paid-release classpath = %q, want %q", g, w)
	}
}

func TestVariantsFlavorCollidesWithBuildType(t *testing.T) {
	testJavaError(t, `flavor "debug" collides with the build type of the same name`, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			product_flavors: ["debug"],
		}

		android_product_flavor {
			name: "debug",
			dimension: "tier",
		}
	`, nil)
}

func TestVariantsInvalidFlavorName(t *testing.T) {
	testJavaError(t, `invalid flavor name "Free"`, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			product_flavors: ["Free"],
		}

		android_product_flavor {
			name: "Free",
			dimension: "tier",
		}
	`, nil)
}

func TestVariantsUndeclaredDimension(t *testing.T) {
	testJavaError(t, `flavor "m21" has dimension "api", which is not in flavor_dimensions`, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			product_flavors: ["free", "m21"],
			flavor_dimensions: ["tier"],
		}

		android_product_flavor {
			name: "free",
			dimension: "tier",
		}

		android_product_flavor {
			name: "m21",
			dimension: "api",
		}
	`, nil)
}

func TestVariantsEmptyDimension(t *testing.T) {
	testJavaError(t, `dimension "api" has no flavors`, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			product_flavors: ["free"],
			flavor_dimensions: ["tier", "api"],
		}

		android_product_flavor {
			name: "free",
			dimension: "tier",
		}
	`, nil)
}

func TestVariantsUnorderedDimensions(t *testing.T) {
	testJavaError(t, "flavors span multiple dimensions, flavor_dimensions must declare their order", `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			product_flavors: ["free", "m21"],
		}

		android_product_flavor {
			name: "free",
			dimension: "tier",
		}

		android_product_flavor {
			name: "m21",
			dimension: "api",
		}
	`, nil)
}

func TestVariantsNotAFlavor(t *testing.T) {
	testJavaError(t, `"keys" is not an android_product_flavor module`, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			product_flavors: ["keys"],
		}

		android_signing_config {
			name: "keys",
		}
	`, nil)
}

func TestVariantsNotABuildType(t *testing.T) {
	testJavaError(t, `"free" is not an android_build_type module`, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			build_types: ["free"],
		}

		android_product_flavor {
			name: "free",
			dimension: "tier",
		}
	`, nil)
}

func TestVariantsUnknownBuildType(t *testing.T) {
	testJavaError(t, `depends on undefined module "qa"`, `
		android_app {
			name: "foo",
			srcs: ["src/com/example/app/Main.java"],
			build_types: ["qa"],
		}
	`, nil)
}

// Libraries do not take the flavor axis at all, the property does not exist
// on them.
func TestVariantsLibraryFlavorsRejected(t *testing.T) {
	testJavaError(t, `unrecognized property "product_flavors"`, `
		android_library {
			name: "mylib",
			product_flavors: ["free"],
		}

		android_product_flavor {
			name: "free",
			dimension: "tier",
		}
	`, nil)
}
