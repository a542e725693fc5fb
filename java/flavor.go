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

// This file contains the module types that describe variant configuration
// layers: product flavors, build types and signing configs.  They produce no
// build rules of their own, app modules read them while assembling variants.

import (
	"regexp"

	"android/appbuild/android"
	"android/appbuild/builder"
)

func init() {
	android.RegisterModuleType("android_product_flavor", ProductFlavorFactory)
	android.RegisterModuleType("android_build_type", BuildTypeFactory)
	android.RegisterModuleType("android_signing_config", SigningConfigFactory)
}

// Flavor and build type names become part of variant names, phony targets
// and output directories, so they are restricted to a safe character set.
// The dash is excluded, variant names use it to join the layers.
var layerNameRegexp = regexp.MustCompile("^[a-z][a-zA-Z0-9_]*$")

type productFlavorProperties struct {
	// Flavor dimension this flavor belongs to.  Flavors in the same
	// dimension are alternatives to each other, flavors from different
	// dimensions are combined into a single variant.
	Dimension *string

	// Effective application package name for variants built with this
	// flavor, replacing the package attribute of the main manifest.
	Package_name *string

	// Version code for the merged manifest.
	Version_code *int64

	// Version name for the merged manifest.
	Version_name *string

	Min_sdk_version    *int64
	Target_sdk_version *int64

	// Package name for test variants that instrument variants built with
	// this flavor.  Defaults to the effective package name plus ".test".
	Test_package_name *string

	// Instrumentation runner class declared in generated test manifests.
	Test_instrumentation_runner *string

	// Name of the android_signing_config module used to sign variants built
	// with this flavor, unless the build type selects debug signing.
	Signing_config *string

	// Extra lines emitted verbatim into the body of BuildConfig.java.
	Build_config []string
}

type productFlavor struct {
	android.ModuleBase
	properties productFlavorProperties

	flavor builder.ProductFlavor
}

func ProductFlavorFactory() android.Module {
	module := &productFlavor{}
	module.AddProperties(&module.properties)
	android.InitAndroidModule(module)
	return module
}

func (f *productFlavor) DepsMutator(ctx android.BottomUpMutatorContext) {
	if name := String(f.properties.Signing_config); name != "" {
		ctx.AddDependency(ctx.Module(), signingConfigTag, name)
	}
}

func (f *productFlavor) GenerateAndroidBuildActions(ctx android.ModuleContext) {
	f.flavor = builder.ProductFlavor{
		Name:                      ctx.ModuleName(),
		PackageName:               f.properties.Package_name,
		VersionCode:               f.properties.Version_code,
		VersionName:               f.properties.Version_name,
		MinSdkVersion:             f.properties.Min_sdk_version,
		TargetSdkVersion:          f.properties.Target_sdk_version,
		TestPackageName:           f.properties.Test_package_name,
		TestInstrumentationRunner: f.properties.Test_instrumentation_runner,
		Signing:                   moduleSigningConfig(ctx, String(f.properties.Signing_config)),
	}
	f.flavor.BuildConfigLines = f.properties.Build_config
}

type buildTypeProperties struct {
	// Mark the application debuggable in its manifest and compile the dex
	// with local variable info.
	Debuggable *bool

	// Build any native code with debugging support.
	Jni_debug_build *bool

	// Sign packages with the shared debug key instead of the variant's
	// signing config.
	Debug_signed *bool

	// Suffix appended to the effective package name, letting builds of
	// different types install side by side.  A leading dot is implied.
	Package_name_suffix *string

	// Shrink and obfuscate the classes with proguard.
	Minify_enabled *bool

	// Align the final package with zipalign.  Defaults to true.
	Zipalign *bool

	// Extra lines emitted verbatim into the body of BuildConfig.java.
	Build_config []string
}

type buildTypeModule struct {
	android.ModuleBase
	properties buildTypeProperties

	buildType builder.BuildType
}

func BuildTypeFactory() android.Module {
	module := &buildTypeModule{}
	module.AddProperties(&module.properties)
	android.InitAndroidModule(module)
	return module
}

func (t *buildTypeModule) DepsMutator(ctx android.BottomUpMutatorContext) {
}

func (t *buildTypeModule) GenerateAndroidBuildActions(ctx android.ModuleContext) {
	t.buildType = builder.BuildType{
		Name:              ctx.ModuleName(),
		Debuggable:        Bool(t.properties.Debuggable),
		JniDebugBuild:     Bool(t.properties.Jni_debug_build),
		DebugSigned:       Bool(t.properties.Debug_signed),
		PackageNameSuffix: String(t.properties.Package_name_suffix),
		RunProguard:       Bool(t.properties.Minify_enabled),
		ZipAlign:          BoolDefault(t.properties.Zipalign, true),
	}
	t.buildType.BuildConfigLines = t.properties.Build_config
}

// builtinBuildType returns the implicit debug or release build type.  The
// two always exist, an android_build_type module with the same name shadows
// the builtin when a checkout needs different settings.
func builtinBuildType(name string) *builder.BuildType {
	switch name {
	case "debug":
		return &builder.BuildType{
			Name:          "debug",
			Debuggable:    true,
			JniDebugBuild: true,
			DebugSigned:   true,
			ZipAlign:      true,
		}
	case "release":
		return &builder.BuildType{
			Name:     "release",
			ZipAlign: true,
		}
	}
	return nil
}

type signingConfigProperties struct {
	// Path to the keystore file, relative to the module directory.
	Store_file *string

	Store_password *string

	// Alias of the key inside the keystore.
	Key_alias *string

	Key_password *string
}

type signingConfig struct {
	android.ModuleBase
	properties signingConfigProperties

	config builder.SigningConfig
}

func SigningConfigFactory() android.Module {
	module := &signingConfig{}
	module.AddProperties(&module.properties)
	android.InitAndroidModule(module)
	return module
}

func (s *signingConfig) DepsMutator(ctx android.BottomUpMutatorContext) {
}

func (s *signingConfig) GenerateAndroidBuildActions(ctx android.ModuleContext) {
	storeFile := ""
	if file := String(s.properties.Store_file); file != "" {
		storeFile = android.PathForModuleSrc(ctx, file).String()
	}
	s.config = builder.SigningConfig{
		StoreFile:     storeFile,
		StorePassword: String(s.properties.Store_password),
		KeyAlias:      String(s.properties.Key_alias),
		KeyPassword:   String(s.properties.Key_password),
	}
}

// moduleSigningConfig resolves a signing_config property against the module's
// signing config dependency.  Missing names were already rejected when the
// dependency was added.
func moduleSigningConfig(ctx android.ModuleContext, name string) *builder.SigningConfig {
	if name == "" {
		return nil
	}
	dep := ctx.GetDirectDepWithTag(name, signingConfigTag)
	if sc, ok := dep.(*signingConfig); ok {
		return &sc.config
	}
	ctx.PropertyErrorf("signing_config", "%q is not an android_signing_config module", name)
	return nil
}

var debugSigningOnceKey = android.NewOnceKey("debugSigning")

// debugSigningConfig returns the config for the shared debug keystore used
// by debug signed build types.
func debugSigningConfig(config android.Config) *builder.SigningConfig {
	return config.Once(debugSigningOnceKey, func() interface{} {
		return &builder.SigningConfig{
			StoreFile:     config.DebugKeystore(),
			StorePassword: "android",
			KeyAlias:      "androiddebugkey",
			KeyPassword:   "android",
		}
	}).(*builder.SigningConfig)
}
