// Copyright 2015 Google Inc. All rights reserved.
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

package android

import (
	"fmt"
	"path/filepath"
	"text/scanner"

	"github.com/google/blueprint"
	"github.com/google/blueprint/pathtools"
)

// BuildParams is a wrapper for blueprint.BuildParams that takes Paths instead
// of strings.  The Output and Input fields are conveniences for rules with a
// single output or input.
type BuildParams struct {
	Rule            blueprint.Rule
	Deps            blueprint.Deps
	Depfile         WritablePath
	Description     string
	Output          WritablePath
	Outputs         WritablePaths
	ImplicitOutput  WritablePath
	ImplicitOutputs WritablePaths
	Input           Path
	Inputs          Paths
	Implicit        Path
	Implicits       Paths
	OrderOnly       Paths
	Default         bool
	Args            map[string]string
}

type androidBaseContext interface {
	AConfig() Config
}

// BaseModuleContext is the subset of blueprint.BaseModuleContext used by
// android modules.
type BaseModuleContext interface {
	ModuleName() string
	ModuleDir() string
	Config() interface{}

	ContainsProperty(name string) bool
	Errorf(pos scanner.Position, fmt string, args ...interface{})
	ModuleErrorf(fmt string, args ...interface{})
	PropertyErrorf(property, fmt string, args ...interface{})
	Failed() bool

	AddNinjaFileDeps(deps ...string)

	Fs() pathtools.FileSystem
	GlobWithDeps(globPattern string, excludes []string) ([]string, error)
}

type ModuleContext interface {
	androidBaseContext
	BaseModuleContext

	// Similar to blueprint.ModuleContext.Build, but takes Paths instead of []strings.
	Build(pctx AndroidPackageContext, params BuildParams)

	ExpandSources(srcFiles, excludes []string) Paths
	Glob(globPattern string, excludes []string) Paths
	GlobFiles(globPattern string, excludes []string) Paths

	InstallFile(installPath OutputPath, srcPath Path, deps ...Path) OutputPath
	InstallFileName(installPath OutputPath, name string, srcPath Path, deps ...Path) OutputPath
	CheckbuildFile(srcPath Path)

	VisitDirectDeps(visit func(Module))
	VisitDirectDepsWithTag(tag blueprint.DependencyTag, visit func(Module))
	GetDirectDepWithTag(name string, tag blueprint.DependencyTag) blueprint.Module

	OtherModuleName(m blueprint.Module) string
	OtherModuleErrorf(m blueprint.Module, fmt string, args ...interface{})
	OtherModuleDependencyTag(m blueprint.Module) blueprint.DependencyTag

	ModuleSubDir() string
	FinalModule() blueprint.Module
	VisitAllModuleVariants(visit func(Module))
}

type Module interface {
	blueprint.Module

	GenerateAndroidBuildActions(ModuleContext)
	DepsMutator(BottomUpMutatorContext)

	base() *ModuleBase
	Enabled() bool
	GetProperties() []interface{}
	BuildParamsForTests() []BuildParams
}

type nameProperties struct {
	// The name of the module.  Must be unique across all modules.
	Name *string
}

type commonProperties struct {
	// emit build rules for this module
	Enabled *bool
}

// InitAndroidModule attaches the common property structs to a module and
// registers it as the implementation of the blueprint.Module interface.  It
// should be called from the module type's factory function on a module
// embedding ModuleBase.
func InitAndroidModule(m Module) {
	base := m.base()
	base.module = m

	m.AddProperties(
		&base.nameProperties,
		&base.commonProperties)
}

// A ModuleBase object contains the properties that are common to all modules.
// It should be included as an anonymous field in every module struct
// definition.  InitAndroidModule should then be called from the module's
// factory function.
//
// The ModuleBase type is responsible for implementing the GenerateBuildActions
// method to support the blueprint.Module interface. This method will then call
// the module's GenerateAndroidBuildActions method once for each build variant
// that is to be built. GenerateAndroidBuildActions is passed a ModuleContext
// rather than the usual blueprint.ModuleContext, which exposes extra
// functionality specific to the android build system including typed paths and
// details about the particular build variant that is to be generated.
//
// For example:
//
//     import (
//         "android/appbuild/android"
//     )
//
//     type myModule struct {
//         android.ModuleBase
//         properties struct {
//             My_property string
//         }
//     }
//
//     func NewMyModule() android.Module {
//         m := &myModule{}
//         m.AddProperties(&m.properties)
//         android.InitAndroidModule(m)
//         return m
//     }
//
//     func (m *myModule) GenerateAndroidBuildActions(ctx android.ModuleContext) {
//         // ...
//     }
type ModuleBase struct {
	// Putting the curiously recurring thing pointing to the thing that contains
	// the thing pattern to good use.
	module Module

	nameProperties   nameProperties
	commonProperties commonProperties

	registerProps []interface{}

	installFiles    Paths
	checkbuildFiles Paths

	// Used by buildTargetSingleton to create checkbuild and per-directory build
	// targets.  Only set on the final variant of each module.
	installTarget    string
	checkbuildTarget string
	blueprintDir     string

	// For tests
	buildParams []BuildParams
}

func (m *ModuleBase) base() *ModuleBase {
	return m
}

func (m *ModuleBase) AddProperties(props ...interface{}) {
	m.registerProps = append(m.registerProps, props...)
}

func (m *ModuleBase) GetProperties() []interface{} {
	return m.registerProps
}

func (m *ModuleBase) BuildParamsForTests() []BuildParams {
	return m.buildParams
}

func (m *ModuleBase) Name() string {
	return String(m.nameProperties.Name)
}

func (m *ModuleBase) Enabled() bool {
	if m.commonProperties.Enabled == nil {
		return true
	}
	return *m.commonProperties.Enabled
}

// DepsMutator is a default no-op.  Module types add their dependencies by
// overriding it.
func (m *ModuleBase) DepsMutator(BottomUpMutatorContext) {
}

func (m *ModuleBase) computeInstallDeps(ctx blueprint.ModuleContext) Paths {
	result := Paths{}
	ctx.VisitDepsDepthFirstIf(isFileInstaller,
		func(m blueprint.Module) {
			fileInstaller := m.(fileInstaller)
			files := fileInstaller.filesToInstall()
			result = append(result, files...)
		})

	return result
}

func (m *ModuleBase) filesToInstall() Paths {
	return m.installFiles
}

func (m *ModuleBase) generateModuleTarget(ctx *androidModuleContext) {
	if m != ctx.FinalModule().(Module).base() {
		return
	}

	var allInstalledFiles Paths
	var allCheckbuildFiles Paths
	ctx.VisitAllModuleVariants(func(module Module) {
		a := module.base()
		allInstalledFiles = append(allInstalledFiles, a.installFiles...)
		allCheckbuildFiles = append(allCheckbuildFiles, a.checkbuildFiles...)
	})

	var deps []string

	if len(allInstalledFiles) > 0 {
		name := ctx.ModuleName() + "-install"
		ctx.ModuleContext.Build(pctx.PackageContext, blueprint.BuildParams{
			Rule:      blueprint.Phony,
			Outputs:   []string{name},
			Implicits: allInstalledFiles.Strings(),
			Optional:  true,
		})
		deps = append(deps, name)
		m.installTarget = name
	}

	if len(allCheckbuildFiles) > 0 {
		name := ctx.ModuleName() + "-checkbuild"
		ctx.ModuleContext.Build(pctx.PackageContext, blueprint.BuildParams{
			Rule:      blueprint.Phony,
			Outputs:   []string{name},
			Implicits: allCheckbuildFiles.Strings(),
			Optional:  true,
		})
		deps = append(deps, name)
		m.checkbuildTarget = name
	}

	if len(deps) > 0 {
		ctx.ModuleContext.Build(pctx.PackageContext, blueprint.BuildParams{
			Rule:      blueprint.Phony,
			Outputs:   []string{ctx.ModuleName()},
			Implicits: deps,
			Optional:  true,
		})

		m.blueprintDir = ctx.ModuleDir()
	}
}

func (m *ModuleBase) androidBaseContextFactory(ctx blueprint.BaseModuleContext) androidBaseContextImpl {
	return androidBaseContextImpl{
		config: ctx.Config().(Config),
	}
}

func (m *ModuleBase) GenerateBuildActions(ctx blueprint.ModuleContext) {
	androidCtx := &androidModuleContext{
		ModuleContext:          ctx,
		androidBaseContextImpl: m.androidBaseContextFactory(ctx),
		installDeps:            m.computeInstallDeps(ctx),
		installFiles:           m.installFiles,
	}

	if !m.Enabled() {
		return
	}

	m.module.GenerateAndroidBuildActions(androidCtx)
	if ctx.Failed() {
		return
	}

	m.installFiles = append(m.installFiles, androidCtx.installFiles...)
	m.checkbuildFiles = append(m.checkbuildFiles, androidCtx.checkbuildFiles...)
	m.buildParams = androidCtx.buildParams

	m.generateModuleTarget(androidCtx)
	if ctx.Failed() {
		return
	}
}

type androidBaseContextImpl struct {
	config Config
}

func (a *androidBaseContextImpl) AConfig() Config {
	return a.config
}

type androidModuleContext struct {
	blueprint.ModuleContext
	androidBaseContextImpl
	installDeps     Paths
	installFiles    Paths
	checkbuildFiles Paths

	// For tests
	buildParams []BuildParams
}

func convertBuildParams(params BuildParams) blueprint.BuildParams {
	bparams := blueprint.BuildParams{
		Rule:            params.Rule,
		Description:     params.Description,
		Deps:            params.Deps,
		Outputs:         params.Outputs.Strings(),
		ImplicitOutputs: params.ImplicitOutputs.Strings(),
		Inputs:          params.Inputs.Strings(),
		Implicits:       params.Implicits.Strings(),
		OrderOnly:       params.OrderOnly.Strings(),
		Args:            params.Args,
		Optional:        !params.Default,
	}

	if params.Depfile != nil {
		bparams.Depfile = params.Depfile.String()
	}
	if params.Output != nil {
		bparams.Outputs = append(bparams.Outputs, params.Output.String())
	}
	if params.ImplicitOutput != nil {
		bparams.ImplicitOutputs = append(bparams.ImplicitOutputs, params.ImplicitOutput.String())
	}
	if params.Input != nil {
		bparams.Inputs = append(bparams.Inputs, params.Input.String())
	}
	if params.Implicit != nil {
		bparams.Implicits = append(bparams.Implicits, params.Implicit.String())
	}

	return bparams
}

func (a *androidModuleContext) Build(pctx AndroidPackageContext, params BuildParams) {
	if a.config.captureBuild {
		a.buildParams = append(a.buildParams, params)
	}

	a.ModuleContext.Build(pctx.PackageContext, convertBuildParams(params))
}

func (a *androidModuleContext) VisitDirectDeps(visit func(Module)) {
	a.ModuleContext.VisitDirectDeps(func(module blueprint.Module) {
		if aModule, ok := module.(Module); ok {
			visit(aModule)
		}
	})
}

func (a *androidModuleContext) VisitDirectDepsWithTag(tag blueprint.DependencyTag, visit func(Module)) {
	a.ModuleContext.VisitDirectDeps(func(module blueprint.Module) {
		if aModule, ok := module.(Module); ok {
			if a.ModuleContext.OtherModuleDependencyTag(aModule) == tag {
				visit(aModule)
			}
		}
	})
}

func (a *androidModuleContext) GetDirectDepWithTag(name string, tag blueprint.DependencyTag) blueprint.Module {
	var deps []blueprint.Module
	a.ModuleContext.VisitDirectDeps(func(module blueprint.Module) {
		if a.ModuleContext.OtherModuleName(module) == name {
			if a.ModuleContext.OtherModuleDependencyTag(module) == tag {
				deps = append(deps, module)
			}
		}
	})

	if len(deps) == 1 {
		return deps[0]
	} else if len(deps) >= 2 {
		panic(fmt.Errorf("Multiple dependencies having same name %q found from %q",
			name, a.ModuleName()))
	}
	return nil
}

func (a *androidModuleContext) VisitAllModuleVariants(visit func(Module)) {
	a.ModuleContext.VisitAllModuleVariants(func(module blueprint.Module) {
		visit(module.(Module))
	})
}

func (a *androidModuleContext) InstallFileName(installPath OutputPath, name string, srcPath Path,
	deps ...Path) OutputPath {

	fullInstallPath := installPath.Join(a, name)

	deps = append(deps, a.installDeps...)

	a.Build(pctx, BuildParams{
		Rule:        Cp,
		Description: "install " + fullInstallPath.Base(),
		Output:      fullInstallPath,
		Input:       srcPath,
		OrderOnly:   Paths(deps),
		Default:     true,
	})

	a.installFiles = append(a.installFiles, fullInstallPath)
	a.checkbuildFiles = append(a.checkbuildFiles, srcPath)
	return fullInstallPath
}

func (a *androidModuleContext) InstallFile(installPath OutputPath, srcPath Path, deps ...Path) OutputPath {
	return a.InstallFileName(installPath, filepath.Base(srcPath.String()), srcPath, deps...)
}

func (a *androidModuleContext) CheckbuildFile(srcPath Path) {
	a.checkbuildFiles = append(a.checkbuildFiles, srcPath)
}

type fileInstaller interface {
	filesToInstall() Paths
}

func isFileInstaller(m blueprint.Module) bool {
	_, ok := m.(fileInstaller)
	return ok
}

func findStringInSlice(str string, slice []string) int {
	for i, s := range slice {
		if s == str {
			return i
		}
	}
	return -1
}

func (a *androidModuleContext) ExpandSources(srcFiles, excludes []string) Paths {
	prefix := PathForModuleSrc(a).String()
	for i, e := range excludes {
		j := findStringInSlice(e, srcFiles)
		if j != -1 {
			srcFiles = append(srcFiles[:j], srcFiles[j+1:]...)
		}

		excludes[i] = filepath.Join(prefix, e)
	}

	globbedSrcFiles := make(Paths, 0, len(srcFiles))
	for _, s := range srcFiles {
		if pathtools.IsGlob(s) {
			globbedSrcFiles = append(globbedSrcFiles, a.Glob(filepath.Join(prefix, s), excludes)...)
		} else {
			globbedSrcFiles = append(globbedSrcFiles, PathForModuleSrc(a, s))
		}
	}

	return globbedSrcFiles
}

// Glob returns the list of files that match the given pattern, relative to the
// source directory.  A dependency is added so that the build graph is
// regenerated when the set of matching files changes.
func (a *androidModuleContext) Glob(globPattern string, excludes []string) Paths {
	ret, err := a.GlobWithDeps(globPattern, excludes)
	if err != nil {
		a.ModuleErrorf("glob: %s", err.Error())
	}
	paths := make(Paths, 0, len(ret))
	for _, p := range ret {
		paths = append(paths, PathForSource(a, p))
	}
	return paths
}

// GlobFiles is Glob with any matched directories filtered out of the result.
func (a *androidModuleContext) GlobFiles(globPattern string, excludes []string) Paths {
	ret, err := a.GlobWithDeps(globPattern, excludes)
	if err != nil {
		a.ModuleErrorf("glob: %s", err.Error())
	}
	paths := make(Paths, 0, len(ret))
	for _, p := range ret {
		if isDir, err := a.Fs().IsDir(p); err != nil {
			a.ModuleErrorf("%s: %s", p, err.Error())
			continue
		} else if isDir {
			continue
		}
		paths = append(paths, PathForSource(a, p))
	}
	return paths
}
