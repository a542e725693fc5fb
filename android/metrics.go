// Copyright 2020 Google Inc. All rights reserved.
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
	"io/ioutil"
	"runtime"

	"github.com/google/blueprint"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// CollectBuildStats summarizes the analyzed module graph.  The summary is
// serialized as a protobuf Struct so that consumers do not need a schema that
// evolves in lockstep with the build system.
func CollectBuildStats(ctx *Context, config Config) (*structpb.Struct, error) {
	moduleTypeCounts := map[string]interface{}{}
	variants := 0

	ctx.VisitAllModules(func(m blueprint.Module) {
		variants++
		t := ctx.ModuleType(m)
		if n, ok := moduleTypeCounts[t]; ok {
			moduleTypeCounts[t] = n.(int) + 1
		} else {
			moduleTypeCounts[t] = 1
		}
	})

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return structpb.NewStruct(map[string]interface{}{
		"module_type_counts": moduleTypeCounts,
		"total_variants":     variants,
		"env_dep_count":      len(config.EnvDeps()),
		"max_heap_size":      int64(memStats.HeapSys),
		"total_alloc_count":  int64(memStats.Mallocs),
		"total_alloc_size":   int64(memStats.TotalAlloc),
	})
}

// WriteBuildStats writes the wire-format build stats to file.  It is called by
// the primary builder after the ninja file has been generated.
func WriteBuildStats(file string, ctx *Context, config Config) error {
	stats, err := CollectBuildStats(ctx, config)
	if err != nil {
		return err
	}

	data, err := proto.Marshal(stats)
	if err != nil {
		return err
	}

	return ioutil.WriteFile(file, data, 0666)
}
