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

// BuildConfigContribution is the generated-constants part of a configuration
// layer.  Product flavors and build types both embed one, and the variant
// collects the lines per layer rather than merging them.
type BuildConfigContribution struct {
	// BuildConfigLines are literal constant declarations copied verbatim
	// into the generated build-config source file.
	BuildConfigLines []string
}

// A ProductFlavor is a named bundle of product configuration.  The default
// config of a module is a ProductFlavor, and additional flavors overlay it.
// Unset fields are nil and fall through to the layer below when flavors are
// merged.  Flavors are shared between variants and must not be modified
// after construction.
type ProductFlavor struct {
	Name string

	PackageName *string
	VersionCode *int64
	VersionName *string

	MinSdkVersion    *int64
	TargetSdkVersion *int64

	TestPackageName           *string
	TestInstrumentationRunner *string

	Signing *SigningConfig

	BuildConfigContribution
}

// MergeFlavors overlays one flavor over a base, field by field.  A field set
// on the overlay wins, an unset field falls through to the base.  The result
// is a fresh unnamed flavor and neither input is modified.  Generated
// constant lines stay with the layer that declared them and are not merged.
func MergeFlavors(overlay, base *ProductFlavor) *ProductFlavor {
	return &ProductFlavor{
		PackageName:      mergeString(overlay.PackageName, base.PackageName),
		VersionCode:      mergeInt64(overlay.VersionCode, base.VersionCode),
		VersionName:      mergeString(overlay.VersionName, base.VersionName),
		MinSdkVersion:    mergeInt64(overlay.MinSdkVersion, base.MinSdkVersion),
		TargetSdkVersion: mergeInt64(overlay.TargetSdkVersion, base.TargetSdkVersion),

		TestPackageName:           mergeString(overlay.TestPackageName, base.TestPackageName),
		TestInstrumentationRunner: mergeString(overlay.TestInstrumentationRunner, base.TestInstrumentationRunner),

		Signing: mergeSigning(overlay.Signing, base.Signing),
	}
}

func mergeString(overlay, base *string) *string {
	if overlay != nil {
		return overlay
	}
	return base
}

func mergeInt64(overlay, base *int64) *int64 {
	if overlay != nil {
		return overlay
	}
	return base
}

func mergeSigning(overlay, base *SigningConfig) *SigningConfig {
	if overlay != nil {
		return overlay
	}
	return base
}
