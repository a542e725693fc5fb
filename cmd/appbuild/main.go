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

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/blueprint/bootstrap"

	"android/appbuild/android"
)

var (
	buildStatsFile string
)

func init() {
	flag.StringVar(&buildStatsFile, "build_stats", "", "build statistics file to output")
}

func main() {
	flag.Parse()

	// The top-level Android.bp file is passed as the first argument.
	srcDir := filepath.Dir(flag.Arg(0))

	ctx := android.NewContext()
	ctx.Register()

	configuration, err := android.NewConfig(srcDir, bootstrap.BuildDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	bootstrap.Main(ctx.Context, configuration, configuration.ConfigFileName,
		configuration.ProductVariablesFileName)

	if buildStatsFile == "" {
		buildStatsFile = filepath.Join(bootstrap.BuildDir, "appbuild_stats.pb")
	}
	if err := android.WriteBuildStats(buildStatsFile, ctx, configuration); err != nil {
		fmt.Fprintf(os.Stderr, "error writing build stats: %s\n", err)
		os.Exit(1)
	}
}
