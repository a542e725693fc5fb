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

// This file contains the base of the module types that build Android
// application variants, and converts their properties into the inputs of
// variant resolution.  The build rules themselves are created in builder.go,
// aapt2.go and app_builder.go.

import (
	"strings"

	"github.com/google/blueprint"
	"github.com/google/blueprint/proptools"

	"android/appbuild/android"
	"android/appbuild/builder"
)

func init() {
	android.RegisterModuleType("java_import", ImportFactory)
}

var (
	Bool          = proptools.Bool
	BoolDefault   = proptools.BoolDefault
	String        = proptools.String
	StringDefault = proptools.StringDefault
)

type dependencyTag struct {
	blueprint.BaseDependencyTag
	name string
}

var (
	flavorTag        = dependencyTag{name: "product_flavor"}
	buildTypeTag     = dependencyTag{name: "build_type"}
	signingConfigTag = dependencyTag{name: "signing_config"}
	libTag           = dependencyTag{name: "libs"}
	testedTag        = dependencyTag{name: "instrumentation_for"}
)

type moduleProperties struct {
	// list of source files used to compile the module.  May be .java or
	// .aidl files.  Supports globs.
	Srcs []string

	// list of source files that should not be used to build the module.
	// Supports globs.
	Exclude_srcs []string

	// list of directories containing Java resources, copied into the
	// package as-is.
	Java_resource_dirs []string

	// list of prebuilt jar files added to the compile classpath and merged
	// into the package.
	Jars []string

	// list of android_library and java_import modules to link against.
	Libs []string

	// path to the main manifest, relative to the module directory.
	// Defaults to AndroidManifest.xml.
	Manifest *string

	// path to the main resource directory.  Defaults to res.
	Res_dir *string

	// path to the main assets directory.  Defaults to assets.
	Assets_dir *string

	// path to the main aidl import directory.  Defaults to aidl.
	Aidl_dir *string

	// path to the directory containing prebuilt native libraries, laid out
	// as <abi>/lib<name>.so.  Defaults to jni.
	Jni_dir *string

	// The remaining properties form the module's default configuration
	// layer.  Product flavors override them per variant.

	// effective application package name, replacing the package attribute
	// of the main manifest in the built variants.
	Package_name *string

	// version code injected into the merged manifest.
	Version_code *int64

	// version name injected into the merged manifest.
	Version_name *string

	// minimum SDK version injected into the merged manifest and enforced
	// by dex generation.
	Min_sdk_version *int64

	// target SDK version injected into the merged manifest.
	Target_sdk_version *int64

	// package name of test variants instrumenting this module.  Defaults
	// to the effective package name plus ".test".
	Test_package_name *string

	// instrumentation runner class written into generated test manifests.
	Test_instrumentation_runner *string

	// name of the android_signing_config module used to sign release
	// variants.
	Signing_config *string

	// extra lines emitted verbatim into the body of BuildConfig.java.
	Build_config []string
}

// Module contains the properties and state shared by the module types that
// compile sources per variant: apps, libraries and instrumentation tests.
type Module struct {
	android.ModuleBase

	properties        moduleProperties
	variantProperties variantProperties

	// effective configuration of the variant built by this module
	// instance, nil until GenerateAndroidBuildActions has run.
	variant *builder.VariantConfig

	// compiled classes of the variant, consumed by instrumentation tests
	classesJar android.Path
}

func (j *Module) variantProps() *variantProperties {
	return &j.variantProperties
}

func (j *Module) libraryNames() []string {
	return j.properties.Libs
}

func (j *Module) DepsMutator(ctx android.BottomUpMutatorContext) {
	j.deps(ctx)
}

func (j *Module) deps(ctx android.BottomUpMutatorContext) {
	if f, ok := ctx.Module().(flavoredModule); ok {
		for _, name := range f.flavorProps().Product_flavors {
			ctx.AddDependency(ctx.Module(), flavorTag, name)
		}
	}

	for _, name := range j.variantProperties.buildTypeNames() {
		// The builtin build types work without a module, a module of the
		// same name shadows them.
		if builtinBuildType(name) == nil || ctx.OtherModuleExists(name) {
			ctx.AddDependency(ctx.Module(), buildTypeTag, name)
		}
	}

	if name := String(j.properties.Signing_config); name != "" {
		ctx.AddDependency(ctx.Module(), signingConfigTag, name)
	}
}

// buildConfigSource generates the variant's BuildConfig class.
func (j *Module) buildConfigSource(ctx android.ModuleContext, vc *builder.VariantConfig) android.Path {
	pkg, err := vc.OriginalPackageName()
	if err != nil {
		ctx.ModuleErrorf("%s", err)
		return nil
	}
	return generateBuildConfig(ctx, pkg, vc.BuildType().Debuggable, vc.BuildConfigLines())
}

// compileClasses compiles the variant's sources together with the generated
// sources into a jar of classes.
func (j *Module) compileClasses(ctx android.ModuleContext, vc *builder.VariantConfig,
	paths *variantPaths, genSrcs, extraClasspath android.Paths) android.Path {

	srcFiles := ctx.ExpandSources(j.properties.Srcs, j.properties.Exclude_srcs)

	flags := javaBuilderFlags{
		aidlFlags: j.aidlFlags(ctx, vc),
	}
	flags.classpath = append(flags.classpath, extraClasspath...)
	flags.classpath = append(flags.classpath, paths.typedList(ctx, vc.CompileClasspath())...)

	if Bool(ctx.AConfig().Verbose_javac) {
		flags.javacFlags = "-verbose"
	}

	srcFiles = genSources(ctx, srcFiles, flags)
	srcFiles = append(srcFiles, genSrcs...)

	return TransformJavaToClasses(ctx, srcFiles, flags, nil)
}

func (j *Module) aidlFlags(ctx android.ModuleContext, vc *builder.VariantConfig) string {
	flags := []string{"-p${config.FrameworkAidl}"}
	for _, dir := range vc.AidlImportDirs() {
		flags = append(flags, "-I"+dir)
	}
	flags = append(flags, "-I"+ctx.ModuleDir())
	return strings.Join(flags, " ")
}

// AndroidLibraryDependency is implemented by the module types an app can
// list in its libs property.
type AndroidLibraryDependency interface {
	// LibraryNode returns the dependency's contribution to the variant
	// dependency graph.
	LibraryNode() *builder.DependencyNode

	// BuiltArtifacts maps the node paths that do not exist in the source
	// tree to the build outputs that will produce them, for this library
	// and everything below it.
	BuiltArtifacts() map[string]android.Path
}

type ImportProperties struct {
	// path to the prebuilt jar, relative to the module directory.
	Jar *string
}

// Import is a prebuilt jar distributed without sources.  Apps and libraries
// depending on it compile against the jar and package it.  The jar is the
// same in every variant, the module still splits by build type so that the
// variants of its dependers find a matching one.
type Import struct {
	android.ModuleBase

	properties        ImportProperties
	variantProperties variantProperties

	node builder.DependencyNode
}

func ImportFactory() android.Module {
	module := &Import{}
	module.AddProperties(&module.properties, &module.variantProperties)
	android.InitAndroidModule(module)
	return module
}

func (j *Import) variantProps() *variantProperties {
	return &j.variantProperties
}

func (j *Import) libraryNames() []string {
	return nil
}

func (j *Import) GenerateAndroidBuildActions(ctx android.ModuleContext) {
	if j.variantProperties.CurrentVariant == "" {
		return
	}

	jar := String(j.properties.Jar)
	if jar == "" {
		ctx.PropertyErrorf("jar", "missing prebuilt jar")
		return
	}

	j.node = builder.DependencyNode{
		Identity:   ctx.ModuleName(),
		ClassesJar: android.PathForModuleSrc(ctx, jar).String(),
	}
}

func (j *Import) LibraryNode() *builder.DependencyNode {
	return &j.node
}

func (j *Import) BuiltArtifacts() map[string]android.Path {
	return nil
}

var _ AndroidLibraryDependency = (*Import)(nil)
