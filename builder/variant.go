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
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

// Package builder implements variant resolution for Android application
// builds: merging layered product configuration into one effective
// configuration per variant, flattening library dependency graphs into
// override-ordered lists, and deriving the per-variant values that
// parameterize the individual build steps.  It performs no build step
// itself and holds no global state.
package builder

import (
	"github.com/google/blueprint/pathtools"
	"github.com/google/blueprint/proptools"
)

// VariantType describes what kind of artifact a variant produces.
type VariantType int

const (
	// Application variants produce an installable package.
	Application VariantType = iota

	// Library variants stop after bundling compiled classes and raw
	// resources for consumption by other modules.
	Library

	// Test variants produce an instrumentation package targeting the
	// variant they test.
	Test
)

func (t VariantType) String() string {
	switch t {
	case Application:
		return "application"
	case Library:
		return "library"
	case Test:
		return "test"
	default:
		return "unknown"
	}
}

// DefaultInstrumentationRunner is the runner class used when neither the
// flavors of a test variant nor those of its tested variant name one.
const DefaultInstrumentationRunner = "android.test.InstrumentationTestRunner"

// A SourceSet points at the on-disk inputs contributed by one configuration
// layer.  Empty fields mean the layer does not contribute that input, and
// each field is consulted only when it exists on disk.
type SourceSet struct {
	Manifest  string
	ResDir    string
	AssetsDir string
	AidlDir   string
	JniDir    string
}

// A VariantConfigBuilder accumulates the layers, sources and dependencies of
// a variant.  The derived queries live on VariantConfig, which Build returns
// once the configuration is complete and validated, so nothing can observe a
// half-assembled variant.
type VariantConfigBuilder struct {
	kind VariantType

	defaultFlavor *ProductFlavor
	buildType     *BuildType

	defaultSources   SourceSet
	buildTypeSources SourceSet

	flavors       []*ProductFlavor
	flavorSources []SourceSet

	mergedFlavor *ProductFlavor

	tested *VariantConfig

	jars       []string
	directDeps []*DependencyNode

	fs        pathtools.FileSystem
	manifests ManifestReader
}

// NewVariant starts accumulating a variant from its two required layers.
// fs backs the existence checks on layer inputs, and manifests supplies the
// manifest fallbacks consulted by the derived queries.
func NewVariant(kind VariantType, defaultFlavor *ProductFlavor, defaultSources SourceSet,
	buildType *BuildType, buildTypeSources SourceSet,
	fs pathtools.FileSystem, manifests ManifestReader) *VariantConfigBuilder {

	return &VariantConfigBuilder{
		kind:             kind,
		defaultFlavor:    defaultFlavor,
		buildType:        buildType,
		defaultSources:   defaultSources,
		buildTypeSources: buildTypeSources,
		mergedFlavor:     defaultFlavor,
		fs:               fs,
		manifests:        manifests,
	}
}

// AddFlavor appends a product flavor and its sources to the variant.  The
// merged flavor is extended immediately, so a flavor added later wins ties
// against flavors already present, and the default config always loses.
func (b *VariantConfigBuilder) AddFlavor(flavor *ProductFlavor, sources SourceSet) {
	b.flavors = append(b.flavors, flavor)
	b.flavorSources = append(b.flavorSources, sources)
	b.mergedFlavor = MergeFlavors(flavor, b.mergedFlavor)
}

// SetTestedVariant records the variant an instrumentation test targets.
// Required for test variants, forbidden for the rest.
func (b *VariantConfigBuilder) SetTestedVariant(tested *VariantConfig) {
	b.tested = tested
}

// AddJars appends explicit jar file dependencies.
func (b *VariantConfigBuilder) AddJars(jars ...string) {
	b.jars = append(b.jars, jars...)
}

// SetDirectDeps records the variant's direct library dependencies.  Build
// flattens them.
func (b *VariantConfigBuilder) SetDirectDeps(deps []*DependencyNode) {
	b.directDeps = deps
}

// Build validates the accumulated configuration, flattens the dependency
// graph, and returns the finished variant configuration.  The variant of
// every kind but test must have a main manifest on disk; a test variant's
// manifest is generated later instead.
func (b *VariantConfigBuilder) Build() (*VariantConfig, error) {
	if b.defaultFlavor == nil || b.buildType == nil {
		return nil, configErrorf("variant needs a default config and a build type")
	}
	if b.kind == Test && b.tested == nil {
		return nil, configErrorf("test variant is missing the variant it tests")
	}
	if b.kind != Test && b.tested != nil {
		return nil, configErrorf("%s variant cannot have a tested variant", b.kind)
	}
	if b.kind != Test && !fileExists(b.fs, b.defaultSources.Manifest) {
		return nil, configErrorf("main manifest missing from %s", b.defaultSources.Manifest)
	}

	flatDeps, err := FlattenDependencies(b.directDeps)
	if err != nil {
		return nil, err
	}

	return &VariantConfig{
		kind:             b.kind,
		defaultFlavor:    b.defaultFlavor,
		buildType:        b.buildType,
		flavors:          b.flavors,
		mergedFlavor:     b.mergedFlavor,
		defaultSources:   b.defaultSources,
		buildTypeSources: b.buildTypeSources,
		flavorSources:    b.flavorSources,
		tested:           b.tested,
		jars:             b.jars,
		flatDeps:         flatDeps,
		fs:               b.fs,
		manifests:        b.manifests,
	}, nil
}

// A VariantConfig is one fully resolved build variant: a build type combined
// with a flavor stack, its library dependencies flattened and its sources
// fixed.  All methods are read-only derived queries over that state, and
// calling any of them twice returns equal results.
type VariantConfig struct {
	kind VariantType

	defaultFlavor *ProductFlavor
	buildType     *BuildType
	flavors       []*ProductFlavor
	mergedFlavor  *ProductFlavor

	defaultSources   SourceSet
	buildTypeSources SourceSet
	flavorSources    []SourceSet

	tested *VariantConfig

	jars     []string
	flatDeps []*DependencyNode

	fs        pathtools.FileSystem
	manifests ManifestReader
}

func (v *VariantConfig) Kind() VariantType {
	return v.kind
}

func (v *VariantConfig) BuildType() *BuildType {
	return v.buildType
}

// MergedFlavor returns the effective flavor of the variant.  Callers must
// not modify it.
func (v *VariantConfig) MergedFlavor() *ProductFlavor {
	return v.mergedFlavor
}

// TestedConfig returns the variant an instrumentation test targets, or nil
// for non-test variants.
func (v *VariantConfig) TestedConfig() *VariantConfig {
	return v.tested
}

// FlattenedDeps returns every library the variant depends on, directly or
// transitively, in override order.
func (v *VariantConfig) FlattenedDeps() []*DependencyNode {
	return v.flatDeps
}

func (v *VariantConfig) DefaultSources() SourceSet {
	return v.defaultSources
}

// PackageOverride returns the package name the variant renames itself to,
// or "" when neither the flavors nor the build type rename it.  A build
// type suffix with no flavor package name falls back to suffixing the
// package declared in the main manifest.
func (v *VariantConfig) PackageOverride() (string, error) {
	pkg := proptools.String(v.mergedFlavor.PackageName)

	if v.buildType.PackageNameSuffix == "" {
		return pkg, nil
	}

	if pkg == "" {
		var err error
		pkg, err = v.manifests.Package(v.defaultSources.Manifest)
		if err != nil {
			return "", err
		}
	}

	return v.buildType.ApplySuffix(pkg), nil
}

// EffectivePackageName returns the package name the built artifact ships
// under.  Test variants use the explicit test package name when set, and
// otherwise derive it from the tested variant's package.  Everything else
// uses the package override when present and the main manifest otherwise.
func (v *VariantConfig) EffectivePackageName() (string, error) {
	if v.kind == Test {
		if pkg := proptools.String(v.mergedFlavor.TestPackageName); pkg != "" {
			return pkg, nil
		}
		testedPkg, err := v.tested.EffectivePackageName()
		if err != nil {
			return "", err
		}
		return testedPkg + ".test", nil
	}

	pkg, err := v.PackageOverride()
	if err != nil {
		return "", err
	}
	if pkg != "" {
		return pkg, nil
	}
	return v.OriginalPackageName()
}

// OriginalPackageName returns the package declared in the main manifest,
// ignoring any rename.  Generated sources are placed under this package so
// they stay importable from the unrenamed code.  A test variant has no main
// manifest, so its effective package is the original one.
func (v *VariantConfig) OriginalPackageName() (string, error) {
	if v.kind == Test {
		return v.EffectivePackageName()
	}
	return v.manifests.Package(v.defaultSources.Manifest)
}

// TestedPackageName returns the package the instrumentation targets.  When
// the tested variant is a library the test package itself carries the code
// under test, so the test variant's own package is returned.  Returns ""
// for non-test variants.
func (v *VariantConfig) TestedPackageName() (string, error) {
	if v.kind != Test {
		return "", nil
	}
	if v.tested.kind == Library {
		return v.EffectivePackageName()
	}
	return v.tested.EffectivePackageName()
}

// InstrumentationRunner returns the configured instrumentation runner
// class.  A test variant reads its tested variant's configuration, and an
// unset runner falls back to the platform default.
func (v *VariantConfig) InstrumentationRunner() string {
	flavor := v.mergedFlavor
	if v.kind == Test {
		flavor = v.tested.mergedFlavor
	}
	if runner := proptools.String(flavor.TestInstrumentationRunner); runner != "" {
		return runner
	}
	return DefaultInstrumentationRunner
}

// MinSdkVersion returns the minimum SDK version of the variant, preferring
// the merged flavor and falling back to the main manifest.  Test variants
// follow the variant they test.
func (v *VariantConfig) MinSdkVersion() (int, error) {
	if v.kind == Test {
		return v.tested.MinSdkVersion()
	}
	if v.mergedFlavor.MinSdkVersion != nil {
		return int(*v.mergedFlavor.MinSdkVersion), nil
	}
	return v.manifests.MinSdkVersion(v.defaultSources.Manifest)
}

// ManifestOverlays returns the manifests merged over the main manifest, in
// decreasing precedence: the build type's manifest first, then each
// flavor's in declaration order.  Only manifests that exist are returned.
func (v *VariantConfig) ManifestOverlays() []string {
	var overlays []string
	if fileExists(v.fs, v.buildTypeSources.Manifest) {
		overlays = append(overlays, v.buildTypeSources.Manifest)
	}
	for _, sources := range v.flavorSources {
		if fileExists(v.fs, sources.Manifest) {
			overlays = append(overlays, sources.Manifest)
		}
	}
	return overlays
}

// ResourceInputs returns every resource directory feeding the variant, in
// override order: the build type's resources first, then each flavor's in
// declaration order, then the default config's, then each flattened
// library's.  Local resources always override library resources.
func (v *VariantConfig) ResourceInputs() []string {
	var dirs []string
	if dirExists(v.fs, v.buildTypeSources.ResDir) {
		dirs = append(dirs, v.buildTypeSources.ResDir)
	}
	for _, sources := range v.flavorSources {
		if dirExists(v.fs, sources.ResDir) {
			dirs = append(dirs, sources.ResDir)
		}
	}
	if dirExists(v.fs, v.defaultSources.ResDir) {
		dirs = append(dirs, v.defaultSources.ResDir)
	}
	for _, dep := range v.flatDeps {
		if dirExists(v.fs, dep.ResDir) {
			dirs = append(dirs, dep.ResDir)
		}
	}
	return dirs
}

// AssetInputs returns every asset directory feeding the variant, in the
// same override order as ResourceInputs.
func (v *VariantConfig) AssetInputs() []string {
	var dirs []string
	if dirExists(v.fs, v.buildTypeSources.AssetsDir) {
		dirs = append(dirs, v.buildTypeSources.AssetsDir)
	}
	for _, sources := range v.flavorSources {
		if dirExists(v.fs, sources.AssetsDir) {
			dirs = append(dirs, sources.AssetsDir)
		}
	}
	if dirExists(v.fs, v.defaultSources.AssetsDir) {
		dirs = append(dirs, v.defaultSources.AssetsDir)
	}
	for _, dep := range v.flatDeps {
		if dirExists(v.fs, dep.AssetsDir) {
			dirs = append(dirs, dep.AssetsDir)
		}
	}
	return dirs
}

// LibraryManifests returns the manifests of the flattened library
// dependencies that exist, in flattened order.  They are merged into the
// variant manifest below the variant's own overlays.
func (v *VariantConfig) LibraryManifests() []string {
	var manifests []string
	for _, dep := range v.flatDeps {
		if fileExists(v.fs, dep.Manifest) {
			manifests = append(manifests, dep.Manifest)
		}
	}
	return manifests
}

// LibraryPackages returns the manifest package of each flattened library
// dependency that has a manifest, in flattened order and without
// duplicates.  Resource linking generates an R class in each of these
// packages so library code keeps resolving its own R references.
func (v *VariantConfig) LibraryPackages() ([]string, error) {
	var pkgs []string
	for _, dep := range v.flatDeps {
		if !fileExists(v.fs, dep.Manifest) {
			continue
		}
		pkg, err := v.manifests.Package(dep.Manifest)
		if err != nil {
			return nil, err
		}
		if pkg != "" && !inList(pkg, pkgs) {
			pkgs = append(pkgs, pkg)
		}
	}
	return pkgs, nil
}

// JniInputs returns every native library directory feeding the variant, in
// the same override order as ResourceInputs.
func (v *VariantConfig) JniInputs() []string {
	var dirs []string
	if dirExists(v.fs, v.buildTypeSources.JniDir) {
		dirs = append(dirs, v.buildTypeSources.JniDir)
	}
	for _, sources := range v.flavorSources {
		if dirExists(v.fs, sources.JniDir) {
			dirs = append(dirs, sources.JniDir)
		}
	}
	if dirExists(v.fs, v.defaultSources.JniDir) {
		dirs = append(dirs, v.defaultSources.JniDir)
	}
	for _, dep := range v.flatDeps {
		if dirExists(v.fs, dep.JniDir) {
			dirs = append(dirs, dep.JniDir)
		}
	}
	return dirs
}

// AidlImportDirs returns the directories searched for aidl imports: the
// variant's own aidl directories in layer order followed by each flattened
// library's.
func (v *VariantConfig) AidlImportDirs() []string {
	var dirs []string
	if dirExists(v.fs, v.buildTypeSources.AidlDir) {
		dirs = append(dirs, v.buildTypeSources.AidlDir)
	}
	for _, sources := range v.flavorSources {
		if dirExists(v.fs, sources.AidlDir) {
			dirs = append(dirs, sources.AidlDir)
		}
	}
	if dirExists(v.fs, v.defaultSources.AidlDir) {
		dirs = append(dirs, v.defaultSources.AidlDir)
	}
	for _, dep := range v.flatDeps {
		if dirExists(v.fs, dep.AidlDir) {
			dirs = append(dirs, dep.AidlDir)
		}
	}
	return dirs
}

// PackagedJars returns the jar files whose classes are bundled into the
// package: the explicit jar dependencies followed by each flattened
// library's classes jar.  Only jars that exist are returned, each at most
// once.
func (v *VariantConfig) PackagedJars() []string {
	var jars []string
	for _, jar := range v.jars {
		if fileExists(v.fs, jar) && !inList(jar, jars) {
			jars = append(jars, jar)
		}
	}
	for _, dep := range v.flatDeps {
		if fileExists(v.fs, dep.ClassesJar) && !inList(dep.ClassesJar, jars) {
			jars = append(jars, dep.ClassesJar)
		}
	}
	return jars
}

// CompileClasspath returns the classpath the variant compiles against:
// every flattened library's classes jar and every explicit jar dependency,
// without duplicates.
func (v *VariantConfig) CompileClasspath() []string {
	var classpath []string
	for _, dep := range v.flatDeps {
		if dep.ClassesJar != "" && !inList(dep.ClassesJar, classpath) {
			classpath = append(classpath, dep.ClassesJar)
		}
	}
	for _, jar := range v.jars {
		if !inList(jar, classpath) {
			classpath = append(classpath, jar)
		}
	}
	return classpath
}

// BuildConfigLines returns the generated constant lines contributed by each
// layer, in order: default config, build type, then each flavor in
// declaration order.  Every non-empty block is preceded by a comment naming
// the layer it came from, and empty layers contribute nothing.
func (v *VariantConfig) BuildConfigLines() []string {
	var lines []string

	appendLayer := func(comment string, layer []string) {
		if len(layer) == 0 {
			return
		}
		lines = append(lines, comment)
		lines = append(lines, layer...)
	}

	appendLayer("// lines from default config.", v.defaultFlavor.BuildConfigLines)
	appendLayer("// lines from build type: "+v.buildType.Name, v.buildType.BuildConfigLines)
	for _, flavor := range v.flavors {
		appendLayer("// lines from product flavor: "+flavor.Name, flavor.BuildConfigLines)
	}

	return lines
}

// Signing returns the config the variant's package is signed with.  Build
// types marked debug-signed use the ambient debug config, everything else
// uses whatever the flavor merge produced, which may not be ready.
func (v *VariantConfig) Signing(debug *SigningConfig) *SigningConfig {
	if v.buildType.DebugSigned {
		return debug
	}
	return v.mergedFlavor.Signing
}

func fileExists(fs pathtools.FileSystem, path string) bool {
	if path == "" {
		return false
	}
	exists, isDir, err := fs.Exists(path)
	return err == nil && exists && !isDir
}

func dirExists(fs pathtools.FileSystem, path string) bool {
	if path == "" {
		return false
	}
	exists, isDir, err := fs.Exists(path)
	return err == nil && exists && isDir
}

func inList(s string, list []string) bool {
	for _, l := range list {
		if l == s {
			return true
		}
	}
	return false
}
