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

// This file contains the module types for building Android apps and the
// instrumentation tests that target them.  Each variant runs the same
// pipeline: merge the manifest, link resources with aapt2, compile the
// sources, dex, package, sign and align.

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/blueprint"

	"android/appbuild/android"
	"android/appbuild/builder"
)

func init() {
	android.RegisterModuleType("android_app", AndroidAppFactory)
	android.RegisterModuleType("android_test", AndroidTestFactory)
}

var aaptIgnoreFilenames = []string{
	".svn", ".git", ".ds_store", "*.scc", ".*", "CVS", "thumbs.db", "picasa.ini", "*~",
}

func androidResourceGlob(ctx android.ModuleContext, dir string) android.Paths {
	return ctx.GlobFiles(filepath.Join(dir, "**/*"), aaptIgnoreFilenames)
}

// AndroidApp builds one APK per variant of an Android application.
type AndroidApp struct {
	Module

	flavorProperties flavorProperties

	// resource package produced by aapt2 link
	exportPackage android.Path

	// the final APK of the variant
	outputFile android.Path
}

func AndroidAppFactory() android.Module {
	module := &AndroidApp{}
	module.AddProperties(
		&module.properties,
		&module.variantProperties,
		&module.flavorProperties)
	android.InitAndroidModule(module)
	return module
}

func (a *AndroidApp) flavorProps() *flavorProperties {
	return &a.flavorProperties
}

func (a *AndroidApp) GenerateAndroidBuildActions(ctx android.ModuleContext) {
	if a.variantProperties.CurrentVariant == "" {
		// variant calculation failed
		return
	}

	vc, paths := a.assembleVariant(ctx, builder.Application)
	if vc == nil {
		return
	}
	a.variant = vc

	a.generateVariant(ctx, vc, paths, nil)
}

// generateVariant emits the build actions of one app or test variant.
// testedClasspath carries the classes of the variant under test, which
// instrumentation tests compile against but do not package.
func (a *AndroidApp) generateVariant(ctx android.ModuleContext, vc *builder.VariantConfig,
	paths *variantPaths, testedClasspath android.Paths) {

	manifest := a.variantManifest(ctx, vc, paths)
	if ctx.Failed() {
		return
	}

	packageRes, rJavaFiles, _, proguardRules := a.linkResources(ctx, vc, paths, manifest, false)
	if ctx.Failed() {
		return
	}
	a.exportPackage = packageRes

	buildConfig := a.buildConfigSource(ctx, vc)
	if ctx.Failed() {
		return
	}

	genSrcs := append(android.Paths{buildConfig}, rJavaFiles...)
	classesJar := a.compileClasses(ctx, vc, paths, genSrcs, testedClasspath)
	if ctx.Failed() {
		return
	}
	a.classesJar = classesJar

	if vc.BuildType().RunProguard {
		ruleFiles := android.Paths{proguardRules}
		for _, dep := range vc.FlattenedDeps() {
			if dep.ProguardRules != "" {
				ruleFiles = append(ruleFiles, paths.typed(ctx, dep.ProguardRules))
			}
		}
		flags := javaBuilderFlags{classpath: paths.typedList(ctx, vc.CompileClasspath())}
		classesJar = RunProguard(ctx, classesJar, ruleFiles, flags)
	}

	minSdkVersion, err := vc.MinSdkVersion()
	if err != nil {
		ctx.ModuleErrorf("%s", err)
		return
	}

	dexJars := append(android.Paths{classesJar}, paths.typedList(ctx, vc.PackagedJars())...)
	dexZip := TransformClassesToDex(ctx, dexJars, minSdkVersion, vc.BuildType().Debuggable)

	javaRes := a.javaResources(ctx, vc, paths)
	jniZips := a.jniLibs(ctx, vc)

	certificate := vc.Signing(debugSigningConfig(ctx.AConfig()))
	if certificate != nil && !certificate.Ready() {
		ctx.ModuleErrorf("signing config is incomplete")
		return
	}

	finalName := ctx.ModuleName() + ".apk"
	if certificate == nil {
		// Still built, just not installable.
		finalName = ctx.ModuleName() + "-unsigned.apk"
	}
	align := certificate != nil && vc.BuildType().ZipAlign

	packageFile := android.PathForModuleOut(ctx, "package.apk")
	if certificate == nil {
		packageFile = android.PathForModuleOut(ctx, finalName)
	}
	CreateAppPackage(ctx, packageFile, packageRes, dexZip, javaRes, jniZips)

	outputFile := android.Path(packageFile)
	if certificate != nil {
		signedFile := android.PathForModuleOut(ctx, finalName)
		if align {
			signedFile = android.PathForModuleOut(ctx, "package-signed.apk")
		}
		SignAppPackage(ctx, signedFile, packageFile, certificate)
		outputFile = signedFile

		if align {
			// jarsigner breaks alignment, so align the signed package.
			alignedFile := android.PathForModuleOut(ctx, finalName)
			TransformZipAlign(ctx, alignedFile, signedFile)
			outputFile = alignedFile
		}
	}
	a.outputFile = outputFile

	ctx.CheckbuildFile(outputFile)

	variantName := ctx.ModuleName() + "-" + a.variantProperties.CurrentVariant
	ctx.Build(pctx, android.BuildParams{
		Rule:      blueprint.Phony,
		Output:    android.PathForPhony(ctx, variantName),
		Implicits: android.Paths{outputFile},
	})

	if certificate != nil {
		installName := variantName + ".apk"
		ctx.InstallFileName(android.PathForModuleInstall(ctx, "app"), installName, outputFile)
		a.adbTargets(ctx, vc, variantName, outputFile)
	}
}

// variantManifest returns the manifest the variant's resources are linked
// against.  Test variants generate an instrumentation manifest, everything
// else merges the main manifest with the overlay and library manifests.
func (a *AndroidApp) variantManifest(ctx android.ModuleContext, vc *builder.VariantConfig,
	paths *variantPaths) android.Path {

	if vc.Kind() == builder.Test {
		pkg, err := vc.EffectivePackageName()
		if err != nil {
			ctx.ModuleErrorf("%s", err)
			return nil
		}
		minSdkVersion, err := vc.MinSdkVersion()
		if err != nil {
			ctx.ModuleErrorf("%s", err)
			return nil
		}
		targetPackage, err := vc.TestedPackageName()
		if err != nil {
			ctx.ModuleErrorf("%s", err)
			return nil
		}
		return generateTestManifest(ctx, pkg, minSdkVersion, targetPackage,
			vc.InstrumentationRunner())
	}

	properties := manifestValueProperties(vc.MergedFlavor())
	pkgOverride, err := vc.PackageOverride()
	if err != nil {
		ctx.ModuleErrorf("%s", err)
		return nil
	}
	if pkgOverride != "" {
		properties = append(properties, "--property package="+pkgOverride)
	}

	return mergeManifests(ctx,
		paths.typed(ctx, vc.DefaultSources().Manifest),
		paths.typedList(ctx, vc.ManifestOverlays()),
		paths.typedList(ctx, vc.LibraryManifests()),
		properties)
}

// linkResources compiles and links the variant's resources.  It returns the
// resource package, the generated R.java files, the R.txt symbol list and
// the resource keep rules for proguard.
func (j *Module) linkResources(ctx android.ModuleContext, vc *builder.VariantConfig,
	paths *variantPaths, manifest android.Path, nonFinalIds bool) (
	packageRes android.Path, rJavaFiles android.Paths, rTxt, proguardRules android.Path) {

	originalPkg, err := vc.OriginalPackageName()
	if err != nil {
		ctx.ModuleErrorf("%s", err)
		return nil, nil, nil, nil
	}
	extraPkgs, err := vc.LibraryPackages()
	if err != nil {
		ctx.ModuleErrorf("%s", err)
		return nil, nil, nil, nil
	}

	linkFlags := []string{"--auto-add-overlay"}
	linkFlags = append(linkFlags, "--manifest "+manifest.String())
	linkDeps := android.Paths{manifest}

	// R.java is generated under the package declared in the main manifest
	// even when the variant renames itself, so the sources keep compiling.
	linkFlags = append(linkFlags, "--custom-package "+originalPkg)
	if len(extraPkgs) > 0 {
		linkFlags = append(linkFlags, "--extra-packages "+strings.Join(extraPkgs, ":"))
	}
	if nonFinalIds {
		linkFlags = append(linkFlags, "--non-final-ids")
	}
	if vc.BuildType().Debuggable {
		linkFlags = append(linkFlags, "--debug-mode")
	}

	for _, dir := range vc.AssetInputs() {
		linkFlags = append(linkFlags, "-A "+dir)
		linkDeps = append(linkDeps, androidResourceGlob(ctx, dir)...)
	}

	// aapt2 wants overlays in increasing priority order while the resource
	// inputs are in decreasing order, so walk them backwards.
	var compiledRes, compiledOverlay android.Paths
	resDirs := vc.ResourceInputs()
	for i := len(resDirs) - 1; i >= 0; i-- {
		compiled := aapt2Compile(ctx, resDirs[i], androidResourceGlob(ctx, resDirs[i])).Paths()
		if i == len(resDirs)-1 {
			compiledRes = compiled
		} else {
			compiledOverlay = append(compiledOverlay, compiled...)
		}
	}

	var rJavaOut android.WritablePaths
	for _, pkg := range append([]string{originalPkg}, extraPkgs...) {
		rJavaOut = append(rJavaOut, android.PathForModuleGen(ctx, "aapt2",
			strings.Replace(pkg, ".", "/", -1), "R.java"))
	}

	resApk := android.PathForModuleOut(ctx, "package-res.apk")
	rTxtOut := android.PathForModuleOut(ctx, "R.txt")
	proguardOut := android.PathForModuleGen(ctx, "proguard.options")

	aapt2Link(ctx, resApk, rJavaOut, rTxtOut, proguardOut,
		linkFlags, linkDeps, compiledRes, compiledOverlay)

	return resApk, rJavaOut.Paths(), rTxtOut, proguardOut
}

// javaResources bundles the java resource directories and the non-class
// files of the packaged jars into a single zip merged into the APK.
func (a *AndroidApp) javaResources(ctx android.ModuleContext, vc *builder.VariantConfig,
	paths *variantPaths) android.Path {

	var resZips android.Paths
	for i, dir := range a.properties.Java_resource_dirs {
		dirPath := android.PathForModuleSrc(ctx, dir).String()
		files := ctx.GlobFiles(filepath.Join(dirPath, "**/*"), nil)
		if len(files) == 0 {
			continue
		}
		zip := android.PathForModuleOut(ctx, "javares", fmt.Sprintf("dir%d.zip", i))
		TransformDirToZip(ctx, zip, dirPath, "", files)
		resZips = append(resZips, zip)
	}

	jars := paths.typedList(ctx, vc.PackagedJars())
	if len(resZips) == 0 && len(jars) == 0 {
		return nil
	}

	out := android.PathForModuleOut(ctx, "java-res.zip")
	mergeJavaResources(ctx, out, append(resZips, jars...))
	return out
}

// jniLibs zips the native libraries of each jni input directory for
// packaging under lib/.  Directories are in decreasing priority order and
// the package merge keeps the first copy of a duplicate, so a build type's
// libraries win over the default ones.
func (a *AndroidApp) jniLibs(ctx android.ModuleContext, vc *builder.VariantConfig) android.Paths {
	var jniZips android.Paths
	for i, dir := range vc.JniInputs() {
		files := ctx.GlobFiles(filepath.Join(dir, "**/*.so"), nil)
		if len(files) == 0 {
			continue
		}
		zip := android.PathForModuleOut(ctx, "jni", fmt.Sprintf("jni%d.zip", i))
		TransformDirToZip(ctx, zip, dir, "lib", files)
		jniZips = append(jniZips, zip)
	}
	return jniZips
}

// adbTargets wires the phony install and uninstall targets that push the
// variant to the connected device.
func (a *AndroidApp) adbTargets(ctx android.ModuleContext, vc *builder.VariantConfig,
	variantName string, apk android.Path) {

	pkg, err := vc.EffectivePackageName()
	if err != nil {
		ctx.ModuleErrorf("%s", err)
		return
	}

	installStamp := android.PathForModuleOut(ctx, "adb-install.stamp")
	ctx.Build(pctx, android.BuildParams{
		Rule:        adbInstall,
		Description: "install " + apk.Base(),
		Input:       apk,
		Output:      installStamp,
	})
	ctx.Build(pctx, android.BuildParams{
		Rule:      blueprint.Phony,
		Output:    android.PathForPhony(ctx, "install-"+variantName),
		Implicits: android.Paths{installStamp},
	})

	uninstallStamp := android.PathForModuleOut(ctx, "adb-uninstall.stamp")
	ctx.Build(pctx, android.BuildParams{
		Rule:        adbUninstall,
		Description: "uninstall " + pkg,
		Output:      uninstallStamp,
		Args: map[string]string{
			"packageName": pkg,
		},
	})
	ctx.Build(pctx, android.BuildParams{
		Rule:      blueprint.Phony,
		Output:    android.PathForPhony(ctx, "uninstall-"+variantName),
		Implicits: android.Paths{uninstallStamp},
	})
}

type testProperties struct {
	// android_app or android_library module these sources instrument.  The
	// test variant with the same name as each of its variants targets it.
	Instrumentation_for *string
}

// AndroidTest builds an instrumentation test APK per variant of the module
// it tests.
type AndroidTest struct {
	AndroidApp

	testProperties testProperties
}

func AndroidTestFactory() android.Module {
	module := &AndroidTest{}
	module.AddProperties(
		&module.properties,
		&module.variantProperties,
		&module.flavorProperties,
		&module.testProperties)
	android.InitAndroidModule(module)
	return module
}

func (a *AndroidTest) DepsMutator(ctx android.BottomUpMutatorContext) {
	a.deps(ctx)

	if name := String(a.testProperties.Instrumentation_for); name != "" {
		ctx.AddDependency(ctx.Module(), testedTag, name)
	} else {
		ctx.PropertyErrorf("instrumentation_for", "missing module under test")
	}
}

func (a *AndroidTest) GenerateAndroidBuildActions(ctx android.ModuleContext) {
	if a.variantProperties.CurrentVariant == "" {
		return
	}

	vc, paths := a.assembleVariant(ctx, builder.Test)
	if vc == nil {
		return
	}
	a.variant = vc

	// Tests compile against the classes of the variant they instrument,
	// the instrumented package provides them at runtime.
	var testedClasspath android.Paths
	ctx.VisitDirectDepsWithTag(testedTag, func(dep android.Module) {
		if target, ok := dep.(testTarget); ok && target.compiledClasses() != nil {
			testedClasspath = append(testedClasspath, target.compiledClasses())
		}
	})

	a.generateVariant(ctx, vc, paths, testedClasspath)
}
