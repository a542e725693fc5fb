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

// A SigningConfig holds the four values the signer needs.  A config missing
// any of them is carried around unsigned until something actually requires
// signing, at which point Ready decides.
type SigningConfig struct {
	StoreFile     string
	StorePassword string
	KeyAlias      string
	KeyPassword   string
}

// Ready reports whether the config carries everything needed to sign a
// package.  It is safe to call on a nil config.
func (s *SigningConfig) Ready() bool {
	return s != nil &&
		s.StoreFile != "" &&
		s.StorePassword != "" &&
		s.KeyAlias != "" &&
		s.KeyPassword != ""
}
