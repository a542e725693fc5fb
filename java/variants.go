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

// Variant handling.  Each app, library and test module is split into one
// variant per product flavor combination and build type.  The split happens
// in two passes: a top down pass that works out the variant names while the
// unsplit dependencies are still reachable, and a bottom up pass that
// performs the split.  Dependencies between split modules resolve to the
// variant with the same name, library dependencies are added afterwards
// against the matching build type.

import (
	"path/filepath"
	"strings"

	"github.com/google/blueprint"
	"github.com/google/blueprint/pathtools"

	"android/appbuild/android"
	"android/appbuild/builder"
)

func init() {
	android.PostDepsMutators(RegisterVariantMutators)
}

func RegisterVariantMutators(ctx android.RegisterMutatorsContext) {
	ctx.TopDown("variant_calc", variantCalcMutator).Parallel()
	ctx.BottomUp("variant", variantMutator).Parallel()
	ctx.BottomUp("variant_deps", variantDepsMutator).Parallel()
}

type variantProperties struct {
	// Build types to build, naming android_build_type modules or the
	// builtin debug and release types.  Defaults to debug and release.
	Build_types []string

	// Names of the variants this module splits into, with the build type
	// and flavor list of each in parallel slices.
	Variants          []string `blueprint:"mutated"`
	VariantBuildTypes []string `blueprint:"mutated"`
	VariantFlavors    []string `blueprint:"mutated"`

	// The variant built by this module instance, filled in after the split.
	CurrentVariant   string   `blueprint:"mutated"`
	CurrentBuildType string   `blueprint:"mutated"`
	CurrentFlavors   []string `blueprint:"mutated"`
}

func (p *variantProperties) buildTypeNames() []string {
	if len(p.Build_types) == 0 {
		return []string{"debug", "release"}
	}
	return p.Build_types
}

type flavorProperties struct {
	// Product flavors combined with each build type, naming
	// android_product_flavor modules.
	Product_flavors []string

	// The order in which flavor dimensions combine into variant names.
	// Only needed when the flavors span more than one dimension.
	Flavor_dimensions []string
}

// variantModule is implemented by the module types that split into variants.
type variantModule interface {
	android.Module
	variantProps() *variantProperties
	libraryNames() []string
}

// flavoredModule is implemented by the variant modules that also take the
// flavor axis.  Libraries and prebuilts split by build type alone, so their
// variants stay addressable from any flavor combination.
type flavoredModule interface {
	variantModule
	flavorProps() *flavorProperties
}

// variantCalcMutator computes the list of variants for a module before the
// split, while the flavor modules are still plain direct dependencies whose
// dimension can be read.
func variantCalcMutator(mctx android.TopDownMutatorContext) {
	m, ok := mctx.Module().(variantModule)
	if !ok {
		return
	}
	props := m.variantProps()

	var flavorNames, dimensionOrder []string
	if f, ok := m.(flavoredModule); ok {
		flavorNames = f.flavorProps().Product_flavors
		dimensionOrder = f.flavorProps().Flavor_dimensions
	}

	buildTypes := props.buildTypeNames()

	for _, name := range buildTypes {
		if !layerNameRegexp.MatchString(name) {
			mctx.PropertyErrorf("build_types", "invalid build type name %q", name)
			return
		}
	}
	for _, name := range flavorNames {
		if !layerNameRegexp.MatchString(name) {
			mctx.PropertyErrorf("product_flavors", "invalid flavor name %q", name)
			return
		}
		// Build type and flavor names share a namespace in variant and task
		// names.
		if android.InList(name, buildTypes) {
			mctx.PropertyErrorf("product_flavors",
				"flavor %q collides with the build type of the same name", name)
			return
		}
	}

	flavorDimensions := make(map[string]string)
	mctx.VisitDirectDeps(func(dep blueprint.Module) {
		if mctx.OtherModuleDependencyTag(dep) != flavorTag {
			return
		}
		flavor, ok := dep.(*productFlavor)
		if !ok {
			mctx.PropertyErrorf("product_flavors",
				"%q is not an android_product_flavor module", mctx.OtherModuleName(dep))
			return
		}
		flavorDimensions[mctx.OtherModuleName(dep)] = String(flavor.properties.Dimension)
	})
	if mctx.Failed() {
		return
	}

	dimensions := dimensionOrder
	flavorsByDimension := make(map[string][]string)

	if len(dimensions) > 0 {
		for _, name := range flavorNames {
			dim := flavorDimensions[name]
			if !android.InList(dim, dimensions) {
				mctx.PropertyErrorf("product_flavors",
					"flavor %q has dimension %q, which is not in flavor_dimensions", name, dim)
				return
			}
			flavorsByDimension[dim] = append(flavorsByDimension[dim], name)
		}
		for _, dim := range dimensions {
			if len(flavorsByDimension[dim]) == 0 {
				mctx.PropertyErrorf("flavor_dimensions", "dimension %q has no flavors", dim)
				return
			}
		}
	} else {
		for _, name := range flavorNames {
			dim := flavorDimensions[name]
			if len(dimensions) == 0 {
				dimensions = []string{dim}
			} else if dim != dimensions[0] {
				mctx.PropertyErrorf("flavor_dimensions",
					"flavors span multiple dimensions, flavor_dimensions must declare their order")
				return
			}
			flavorsByDimension[dim] = append(flavorsByDimension[dim], name)
		}
	}

	// Cartesian product of the flavors of each dimension, in dimension
	// order.  Without flavors there is a single combination with none.
	combos := [][]string{nil}
	for _, dim := range dimensions {
		var next [][]string
		for _, combo := range combos {
			for _, flavor := range flavorsByDimension[dim] {
				combo := append(append([]string(nil), combo...), flavor)
				next = append(next, combo)
			}
		}
		combos = next
	}

	for _, combo := range combos {
		for _, buildType := range buildTypes {
			parts := append(append([]string(nil), combo...), buildType)
			props.Variants = append(props.Variants, strings.Join(parts, "-"))
			props.VariantBuildTypes = append(props.VariantBuildTypes, buildType)
			props.VariantFlavors = append(props.VariantFlavors, strings.Join(combo, ","))
		}
	}
}

// variantMutator splits each module into its variants.  Dependencies between
// two split modules, like a test and the app it instruments, resolve to the
// variant with the same name.
func variantMutator(mctx android.BottomUpMutatorContext) {
	m, ok := mctx.Module().(variantModule)
	if !ok {
		return
	}
	props := m.variantProps()
	if len(props.Variants) == 0 {
		return
	}

	modules := mctx.CreateVariations(props.Variants...)
	for i, module := range modules {
		variantProps := module.(variantModule).variantProps()
		variantProps.CurrentVariant = props.Variants[i]
		variantProps.CurrentBuildType = props.VariantBuildTypes[i]
		if props.VariantFlavors[i] != "" {
			variantProps.CurrentFlavors = strings.Split(props.VariantFlavors[i], ",")
		}
	}
}

// variantDepsMutator adds library dependencies after the split.  A variant
// depends on the library variant with its build type, so a free-debug app
// links against the debug build of its libraries.
func variantDepsMutator(mctx android.BottomUpMutatorContext) {
	m, ok := mctx.Module().(variantModule)
	if !ok {
		return
	}
	props := m.variantProps()
	if props.CurrentVariant == "" {
		return
	}
	if libs := m.libraryNames(); len(libs) > 0 {
		mctx.AddVariationDependencies([]blueprint.Variation{
			{Mutator: "variant", Variation: props.CurrentBuildType},
		}, libTag, libs...)
	}
}

// variantPaths maps the path strings used during variant resolution back to
// typed paths.  Paths produced by the build come from the dependency's
// reported outputs, everything else must be a source file.
type variantPaths struct {
	generated map[string]android.Path
}

func (p *variantPaths) typed(ctx android.ModuleContext, path string) android.Path {
	if gen, ok := p.generated[path]; ok {
		return gen
	}
	return android.PathForSource(ctx, path)
}

func (p *variantPaths) typedList(ctx android.ModuleContext, paths []string) android.Paths {
	ret := make(android.Paths, 0, len(paths))
	for _, path := range paths {
		ret = append(ret, p.typed(ctx, path))
	}
	return ret
}

// generatedFs reports files that the build will produce as existing so that
// variant resolution keeps dependency artifacts that have not been built
// yet.  Everything else falls through to the real file system.
type generatedFs struct {
	pathtools.FileSystem
	generated map[string]android.Path
}

func (fs generatedFs) Exists(name string) (bool, bool, error) {
	if _, ok := fs.generated[filepath.Clean(name)]; ok {
		return true, false, nil
	}
	return fs.FileSystem.Exists(name)
}

func defaultSourceSet(ctx android.ModuleContext, props *moduleProperties) builder.SourceSet {
	dir := ctx.ModuleDir()
	return builder.SourceSet{
		Manifest:  filepath.Join(dir, StringDefault(props.Manifest, "AndroidManifest.xml")),
		ResDir:    filepath.Join(dir, StringDefault(props.Res_dir, "res")),
		AssetsDir: filepath.Join(dir, StringDefault(props.Assets_dir, "assets")),
		AidlDir:   filepath.Join(dir, StringDefault(props.Aidl_dir, "aidl")),
		JniDir:    filepath.Join(dir, StringDefault(props.Jni_dir, "jni")),
	}
}

// layerSourceSet returns the source set of a flavor or build type layer.
// Layers live under src/<name>/ next to the module's main sources.
func layerSourceSet(ctx android.ModuleContext, name string) builder.SourceSet {
	dir := filepath.Join(ctx.ModuleDir(), "src", name)
	return builder.SourceSet{
		Manifest:  filepath.Join(dir, "AndroidManifest.xml"),
		ResDir:    filepath.Join(dir, "res"),
		AssetsDir: filepath.Join(dir, "assets"),
		AidlDir:   filepath.Join(dir, "aidl"),
		JniDir:    filepath.Join(dir, "jni"),
	}
}

// assembleVariant resolves the full variant configuration for the current
// module instance.  It returns nil after reporting an error.
func (j *Module) assembleVariant(ctx android.ModuleContext,
	kind builder.VariantType) (*builder.VariantConfig, *variantPaths) {

	props := &j.variantProperties

	buildType := j.buildTypeFor(ctx, props.CurrentBuildType)
	if buildType == nil {
		return nil, nil
	}

	defaultFlavor := &builder.ProductFlavor{
		Name:                      "main",
		PackageName:               j.properties.Package_name,
		VersionCode:               j.properties.Version_code,
		VersionName:               j.properties.Version_name,
		MinSdkVersion:             j.properties.Min_sdk_version,
		TargetSdkVersion:          j.properties.Target_sdk_version,
		TestPackageName:           j.properties.Test_package_name,
		TestInstrumentationRunner: j.properties.Test_instrumentation_runner,
		Signing:                   moduleSigningConfig(ctx, String(j.properties.Signing_config)),
	}
	defaultFlavor.BuildConfigLines = j.properties.Build_config

	nodes, paths := j.collectLibraryDeps(ctx)
	if ctx.Failed() {
		return nil, nil
	}

	jars := ctx.ExpandSources(j.properties.Jars, nil)
	for _, jar := range jars {
		if jar.Ext() != ".jar" {
			ctx.PropertyErrorf("jars", "%s is not a jar file", jar)
			return nil, nil
		}
	}

	fs := generatedFs{ctx.Fs(), paths.generated}
	manifests := builder.NewManifestReader(fs)

	b := builder.NewVariant(kind, defaultFlavor, defaultSourceSet(ctx, &j.properties),
		buildType, layerSourceSet(ctx, props.CurrentBuildType), fs, manifests)

	for _, flavorName := range props.CurrentFlavors {
		flavor := j.flavorFor(ctx, flavorName)
		if flavor == nil {
			return nil, nil
		}
		b.AddFlavor(flavor, layerSourceSet(ctx, flavorName))
	}

	b.AddJars(jars.Strings()...)
	b.SetDirectDeps(nodes)

	if kind == builder.Test {
		tested := j.testedConfig(ctx)
		if tested == nil {
			return nil, nil
		}
		b.SetTestedVariant(tested)
	}

	variant, err := b.Build()
	if err != nil {
		ctx.ModuleErrorf("%s", err)
		return nil, nil
	}

	return variant, paths
}

// collectLibraryDeps gathers the dependency nodes of the direct library
// dependencies and the build outputs backing their artifact paths.
func (j *Module) collectLibraryDeps(ctx android.ModuleContext) ([]*builder.DependencyNode, *variantPaths) {
	paths := &variantPaths{generated: make(map[string]android.Path)}

	var nodes []*builder.DependencyNode
	ctx.VisitDirectDepsWithTag(libTag, func(dep android.Module) {
		lib, ok := dep.(AndroidLibraryDependency)
		if !ok {
			ctx.PropertyErrorf("libs",
				"%q is not an android_library or java_import module", ctx.OtherModuleName(dep))
			return
		}
		nodes = append(nodes, lib.LibraryNode())
		for path, built := range lib.BuiltArtifacts() {
			paths.generated[path] = built
		}
	})

	return nodes, paths
}

func (j *Module) flavorFor(ctx android.ModuleContext, name string) *builder.ProductFlavor {
	dep := ctx.GetDirectDepWithTag(name, flavorTag)
	if flavor, ok := dep.(*productFlavor); ok {
		return &flavor.flavor
	}
	ctx.PropertyErrorf("product_flavors", "%q is not an android_product_flavor module", name)
	return nil
}

// buildTypeFor resolves a build type name, preferring an android_build_type
// module of that name and falling back to the builtin debug and release
// types.
func (j *Module) buildTypeFor(ctx android.ModuleContext, name string) *builder.BuildType {
	if dep := ctx.GetDirectDepWithTag(name, buildTypeTag); dep != nil {
		if buildType, ok := dep.(*buildTypeModule); ok {
			return &buildType.buildType
		}
		ctx.PropertyErrorf("build_types", "%q is not an android_build_type module", name)
		return nil
	}
	if buildType := builtinBuildType(name); buildType != nil {
		return buildType
	}
	ctx.PropertyErrorf("build_types", "unknown build type %q", name)
	return nil
}

// testTarget is implemented by the module types an android_test can
// instrument.  The tested module generates before the test, so both methods
// return resolved values by the time the test reads them.
type testTarget interface {
	variantConfig() *builder.VariantConfig
	compiledClasses() android.Path
}

func (j *Module) variantConfig() *builder.VariantConfig {
	return j.variant
}

func (j *Module) compiledClasses() android.Path {
	return j.classesJar
}

// testedConfig returns the variant configuration of the module under test.
func (j *Module) testedConfig(ctx android.ModuleContext) *builder.VariantConfig {
	var tested *builder.VariantConfig
	ctx.VisitDirectDepsWithTag(testedTag, func(dep android.Module) {
		target, ok := dep.(testTarget)
		if !ok {
			ctx.PropertyErrorf("instrumentation_for",
				"%q is not an android_app or android_library module", ctx.OtherModuleName(dep))
			return
		}
		tested = target.variantConfig()
	})
	if tested == nil && !ctx.Failed() {
		ctx.ModuleErrorf("test has no tested variant")
	}
	return tested
}
