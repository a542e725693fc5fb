// Copyright 2019 Google Inc. All rights reserved.
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
	"testing"
)

func TestOncePer_Once(t *testing.T) {
	once := OncePer{}
	key := NewOnceKey("key")

	a := once.Once(key, func() interface{} { return "a" }).(string)
	b := once.Once(key, func() interface{} { return "b" }).(string)

	if a != "a" {
		t.Errorf(`first call to Once should return "a": %q`, a)
	}

	if b != "a" {
		t.Errorf(`second call to Once with the same key should return "a": %q`, b)
	}
}

func TestOncePer_Get(t *testing.T) {
	once := OncePer{}
	key := NewOnceKey("key")

	a := once.Once(key, func() interface{} { return "a" }).(string)
	b := once.Get(key).(string)

	if a != "a" {
		t.Errorf(`first call to Once should return "a": %q`, a)
	}

	if b != "a" {
		t.Errorf(`Get with the same key should return "a": %q`, b)
	}
}

func TestOncePer_Get_panic(t *testing.T) {
	once := OncePer{}
	key := NewOnceKey("key")

	defer func() {
		p := recover()

		if p == nil {
			t.Error("call to Get for unused key should panic")
		}
	}()

	once.Get(key)
}

func TestNewOnceKey(t *testing.T) {
	once := OncePer{}
	key1 := NewOnceKey("key")
	key2 := NewOnceKey("key")

	a := once.Once(key1, func() interface{} { return "a" }).(string)
	b := once.Once(key2, func() interface{} { return "b" }).(string)

	if a != "a" {
		t.Errorf(`first call to Once should return "a": %q`, a)
	}

	if b != "b" {
		t.Errorf(`second call to Once with the NewOnceKey from same string should return "b": %q`, b)
	}
}
