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

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/google/blueprint/pathtools"
)

// A ManifestReader extracts values from application manifests.  Derived
// queries consult one wherever configuration leaves a value unset and the
// manifest is the fallback.
type ManifestReader interface {
	// Package returns the package attribute of the manifest root element.
	Package(path string) (string, error)

	// MinSdkVersion returns the android:minSdkVersion attribute of the
	// uses-sdk element, or 1 when the manifest does not declare one.
	MinSdkVersion(path string) (int, error)
}

const androidXMLNamespace = "http://schemas.android.com/apk/res/android"

type manifestValues struct {
	pkg    string
	minSdk int
}

// manifestReader parses manifests on demand and caches each file's values
// after the first read, so a manifest consulted by several queries is parsed
// once.  It is not safe for concurrent use.
type manifestReader struct {
	fs    pathtools.FileSystem
	cache map[string]manifestValues
}

// NewManifestReader returns a caching ManifestReader backed by fs.
func NewManifestReader(fs pathtools.FileSystem) ManifestReader {
	return &manifestReader{
		fs:    fs,
		cache: make(map[string]manifestValues),
	}
}

type manifestXML struct {
	Package string `xml:"package,attr"`
	UsesSdk struct {
		MinSdkVersion string `xml:"http://schemas.android.com/apk/res/android minSdkVersion,attr"`
	} `xml:"uses-sdk"`
}

func (r *manifestReader) read(path string) (manifestValues, error) {
	if v, ok := r.cache[path]; ok {
		return v, nil
	}

	file, err := r.fs.Open(path)
	if err != nil {
		return manifestValues{}, fmt.Errorf("manifest %s: %s", path, err)
	}
	defer file.Close()

	var parsed manifestXML
	if err := xml.NewDecoder(file).Decode(&parsed); err != nil {
		return manifestValues{}, fmt.Errorf("manifest %s: %s", path, err)
	}

	v := manifestValues{pkg: parsed.Package, minSdk: 1}
	if s := parsed.UsesSdk.MinSdkVersion; s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return manifestValues{}, fmt.Errorf("manifest %s: minSdkVersion %q is not a number", path, s)
		}
		v.minSdk = n
	}

	r.cache[path] = v
	return v, nil
}

func (r *manifestReader) Package(path string) (string, error) {
	v, err := r.read(path)
	if err != nil {
		return "", err
	}
	return v.pkg, nil
}

func (r *manifestReader) MinSdkVersion(path string) (int, error) {
	v, err := r.read(path)
	if err != nil {
		return 0, err
	}
	return v.minSdk, nil
}
