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

package builder

// A DependencyNode describes one library in the dependency graph of a
// variant: where its prebuilt artifacts live and which libraries it depends
// on in turn.  Artifact fields are empty when the library does not provide
// that artifact.  Nodes are shared between variants and must not be modified
// after construction.
type DependencyNode struct {
	// Identity makes two references to the same library compare equal,
	// no matter which dependency path reached them.
	Identity string

	Manifest      string
	ClassesJar    string
	ResDir        string
	AssetsDir     string
	JniDir        string
	AidlDir       string
	RTxt          string
	ProguardRules string
	LintJar       string

	Deps []*DependencyNode
}

// FlattenDependencies resolves a graph of direct dependencies into a single
// ordered list.  The list order is the override order used by the resource
// and packaging steps: earlier entries override later ones.
//
// Direct dependencies are visited in reverse declaration order, each node's
// own dependencies are flattened before the node itself, and a node not yet
// in the list is inserted at the front.  The effect is that earlier declared
// libraries end up earlier than later declared ones, and every library ends
// up ahead of its own dependencies.  A library reachable through several
// paths appears exactly once, at the position chosen by the first path that
// inserted it.
func FlattenDependencies(direct []*DependencyNode) ([]*DependencyNode, error) {
	f := &flattener{
		visiting: make(map[string]bool),
	}
	if err := f.resolve(direct); err != nil {
		return nil, err
	}
	return f.flat, nil
}

type flattener struct {
	flat []*DependencyNode

	// visiting and stack track the path of the current descent, for cycle
	// reporting.
	visiting map[string]bool
	stack    []string
}

func (f *flattener) resolve(nodes []*DependencyNode) error {
	for i := len(nodes) - 1; i >= 0; i-- {
		node := nodes[i]

		if f.visiting[node.Identity] {
			return &DependencyCycleError{Cycle: f.cycleFrom(node.Identity)}
		}

		f.visiting[node.Identity] = true
		f.stack = append(f.stack, node.Identity)

		if err := f.resolve(node.Deps); err != nil {
			return err
		}

		f.stack = f.stack[:len(f.stack)-1]
		delete(f.visiting, node.Identity)

		if !f.contains(node) {
			f.flat = append([]*DependencyNode{node}, f.flat...)
		}
	}

	return nil
}

func (f *flattener) contains(node *DependencyNode) bool {
	for _, n := range f.flat {
		if n.Identity == node.Identity {
			return true
		}
	}
	return false
}

// cycleFrom returns the identities along the cycle that closes at repeated,
// starting and ending with it.
func (f *flattener) cycleFrom(repeated string) []string {
	start := 0
	for i, id := range f.stack {
		if id == repeated {
			start = i
			break
		}
	}
	cycle := append([]string(nil), f.stack[start:]...)
	return append(cycle, repeated)
}
