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
	"android/appbuild/android"
	"android/appbuild/builder"
)

func init() {
	android.RegisterModuleType("android_library", LibraryFactory)
}

// Library builds a reusable bundle per variant of an Android library:
// compiled classes, linked resources, the R.txt symbol table and the
// manifest.  Modules depending on it compile against the classes and merge
// the library's sources into their own package.
type Library struct {
	Module

	// dependency graph contribution of the variant
	node builder.DependencyNode

	// build outputs backing the node's artifact paths
	builtArtifacts map[string]android.Path
}

func LibraryFactory() android.Module {
	module := &Library{}
	module.AddProperties(&module.properties, &module.variantProperties)
	android.InitAndroidModule(module)
	return module
}

func (l *Library) GenerateAndroidBuildActions(ctx android.ModuleContext) {
	if l.variantProperties.CurrentVariant == "" {
		return
	}

	vc, paths := l.assembleVariant(ctx, builder.Library)
	if vc == nil {
		return
	}
	l.variant = vc

	buildConfig := l.buildConfigSource(ctx, vc)
	if ctx.Failed() {
		return
	}
	genSrcs := android.Paths{buildConfig}

	var rTxt android.Path
	if len(vc.ResourceInputs()) > 0 {
		manifest := paths.typed(ctx, vc.DefaultSources().Manifest)
		// Library R classes use non-final fields, the app regenerates them
		// with final values when it links the whole resource set.
		packageRes, rJavaFiles, libRTxt, _ := l.linkResources(ctx, vc, paths, manifest, true)
		if ctx.Failed() {
			return
		}
		genSrcs = append(genSrcs, rJavaFiles...)
		rTxt = libRTxt
		ctx.CheckbuildFile(packageRes)
		ctx.CheckbuildFile(rTxt)
	}

	classesJar := l.compileClasses(ctx, vc, paths, genSrcs, nil)
	if ctx.Failed() {
		return
	}
	l.classesJar = classesJar
	ctx.CheckbuildFile(classesJar)

	l.exportNode(ctx, vc, paths, classesJar, rTxt)
}

// exportNode fills in the variant's contribution to the dependency graph of
// the modules that link against this library.
func (l *Library) exportNode(ctx android.ModuleContext, vc *builder.VariantConfig,
	paths *variantPaths, classesJar, rTxt android.Path) {

	sources := vc.DefaultSources()

	l.node = builder.DependencyNode{
		Identity:   ctx.ModuleName(),
		Manifest:   sources.Manifest,
		ClassesJar: classesJar.String(),
		ResDir:     sources.ResDir,
		AssetsDir:  sources.AssetsDir,
		JniDir:     sources.JniDir,
		AidlDir:    sources.AidlDir,
	}
	if rTxt != nil {
		l.node.RTxt = rTxt.String()
	}
	if rules := android.ExistentPathForSource(ctx, ctx.ModuleDir(), "proguard.txt"); rules.Valid() {
		l.node.ProguardRules = rules.String()
	}
	if lintJar := android.ExistentPathForSource(ctx, ctx.ModuleDir(), "lint.jar"); lintJar.Valid() {
		l.node.LintJar = lintJar.String()
	}

	ctx.VisitDirectDepsWithTag(libTag, func(dep android.Module) {
		if lib, ok := dep.(AndroidLibraryDependency); ok {
			l.node.Deps = append(l.node.Deps, lib.LibraryNode())
		}
	})

	l.builtArtifacts = make(map[string]android.Path, len(paths.generated)+2)
	for path, built := range paths.generated {
		l.builtArtifacts[path] = built
	}
	l.builtArtifacts[classesJar.String()] = classesJar
	if rTxt != nil {
		l.builtArtifacts[rTxt.String()] = rTxt
	}
}

func (l *Library) LibraryNode() *builder.DependencyNode {
	return &l.node
}

func (l *Library) BuiltArtifacts() map[string]android.Path {
	return l.builtArtifacts
}

var _ AndroidLibraryDependency = (*Library)(nil)
