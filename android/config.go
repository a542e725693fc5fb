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
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/google/blueprint/proptools"
)

var Bool = proptools.Bool
var String = proptools.String
var Int = proptools.Int

// The configuration file name
const configFileName = "appbuild.config"
const productVariablesFileName = "appbuild.variables"

// A Config object represents the entire build configuration for one run of
// the build system.
type Config struct {
	*config
}

func (c Config) BuildDir() string {
	return c.buildDir
}

func (c Config) SrcDir() string {
	return c.srcDir
}

// A FileConfigurableOptions contains options which can be configured by the
// config file. These will be included in the config struct.
type FileConfigurableOptions struct {
	Verbose_javac *bool `json:",omitempty"`
}

func (f *FileConfigurableOptions) SetDefaultConfig() {
	*f = FileConfigurableOptions{}
}

// A productVariables contains the settings of the product being built that
// apply to every module, as opposed to settings that come from the modules
// themselves.
type productVariables struct {
	DeviceName           *string `json:",omitempty"`
	Platform_sdk_version *int64  `json:",omitempty"`
	Debug_keystore       *string `json:",omitempty"`
}

func (v *productVariables) SetDefaultConfig() {
	*v = productVariables{
		DeviceName:           stringPtr("generic"),
		Platform_sdk_version: int64Ptr(28),
	}
}

type config struct {
	FileConfigurableOptions
	productVariables productVariables

	ConfigFileName           string
	ProductVariablesFileName string

	srcDir   string // the path of the root source directory
	buildDir string // the path of the build output directory

	env       map[string]string
	envLock   sync.Mutex
	envDeps   map[string]string
	envFrozen bool

	captureBuild bool // true for tests, saves build parameters for each module

	OncePer
}

func stringPtr(v string) *string {
	return &v
}

func int64Ptr(v int64) *int64 {
	return &v
}

func boolPtr(v bool) *bool {
	return &v
}

type jsonConfigurable interface {
	SetDefaultConfig()
}

func loadConfig(config *config) error {
	err := loadFromConfigFile(&config.FileConfigurableOptions, config.ConfigFileName)
	if err != nil {
		return err
	}

	return loadFromConfigFile(&config.productVariables, config.ProductVariablesFileName)
}

// loadFromConfigFile loads and decodes configuration options from a JSON
// file.  If the file does not exist it is created with default values so that
// later runs pick up edits without a bootstrap loop.
func loadFromConfigFile(configurable jsonConfigurable, filename string) error {
	configFileReader, err := os.Open(filename)
	defer configFileReader.Close()
	if os.IsNotExist(err) {
		configurable.SetDefaultConfig()
		err = saveToConfigFile(configurable, filename)
		if err != nil {
			return err
		}
	} else if err != nil {
		return fmt.Errorf("config file: could not open %s: %s", filename, err.Error())
	} else {
		err = json.NewDecoder(configFileReader).Decode(configurable)
		if err != nil {
			return fmt.Errorf("config file: %s did not parse correctly: %s", filename, err.Error())
		}
	}

	return nil
}

// saveToConfigFile atomically writes the config file, in case two builds are
// running simultaneously.
func saveToConfigFile(config jsonConfigurable, filename string) error {
	data, err := json.MarshalIndent(&config, "", "    ")
	if err != nil {
		return fmt.Errorf("cannot marshal config data: %s", err.Error())
	}

	f, err := ioutil.TempFile(filepath.Dir(filename), "config")
	if err != nil {
		return fmt.Errorf("cannot create empty config file %s: %s", filename, err.Error())
	}
	defer os.Remove(f.Name())
	defer f.Close()

	_, err = f.Write(data)
	if err != nil {
		return fmt.Errorf("default config file: %s could not be written: %s", filename, err.Error())
	}

	err = f.Sync()
	if err != nil {
		return fmt.Errorf("default config file: %s could not be synced: %s", filename, err.Error())
	}

	err = os.Rename(f.Name(), filename)
	if err != nil {
		return fmt.Errorf("default config file: %s could not be renamed: %s", filename, err.Error())
	}

	return nil
}

// NewConfig creates a new Config object.  The srcDir argument specifies the
// path to the root source directory.  It also loads the config file, if
// found.
func NewConfig(srcDir, buildDir string) (Config, error) {
	config := &config{
		ConfigFileName:           filepath.Join(buildDir, configFileName),
		ProductVariablesFileName: filepath.Join(buildDir, productVariablesFileName),

		env: originalEnv,

		srcDir:   srcDir,
		buildDir: buildDir,
	}

	// Sanity check the build and source directories. This won't catch strange
	// configurations with symlinks, but at least checks the obvious cases.
	absBuildDir, err := filepath.Abs(buildDir)
	if err != nil {
		return Config{}, err
	}

	absSrcDir, err := filepath.Abs(srcDir)
	if err != nil {
		return Config{}, err
	}

	if strings.HasPrefix(absSrcDir, absBuildDir) {
		return Config{}, fmt.Errorf("Build dir must not contain source directory")
	}

	// Load any configurable options from the configuration file
	err = loadConfig(config)
	if err != nil {
		return Config{}, err
	}

	return Config{config}, nil
}

// TestConfig returns a Config object suitable for using for tests
func TestConfig(buildDir string, env map[string]string) Config {
	envCopy := make(map[string]string)
	for k, v := range env {
		envCopy[k] = v
	}

	config := &config{
		productVariables: productVariables{
			DeviceName:           stringPtr("test_device"),
			Platform_sdk_version: int64Ptr(28),
		},

		srcDir:       ".",
		buildDir:     buildDir,
		captureBuild: true,
		env:          envCopy,
	}

	return Config{config}
}

var originalEnv map[string]string

func init() {
	originalEnv = make(map[string]string)
	for _, env := range os.Environ() {
		idx := strings.IndexRune(env, '=')
		if idx != -1 {
			originalEnv[env[:idx]] = env[idx+1:]
		}
	}
}

// Getenv returns the value of an environment variable, recording it as a
// dependency so that the build graph is regenerated when the value changes.
func (c *config) Getenv(key string) string {
	var val string
	var exists bool
	c.envLock.Lock()
	defer c.envLock.Unlock()
	if c.envDeps == nil {
		c.envDeps = make(map[string]string)
	}
	if val, exists = c.envDeps[key]; !exists {
		if c.envFrozen {
			panic(fmt.Errorf("Cannot access new environment variable %q after envdeps are frozen", key))
		}
		val = c.env[key]
		c.envDeps[key] = val
	}
	return val
}

func (c *config) GetenvWithDefault(key string, defaultValue string) string {
	ret := c.Getenv(key)
	if ret == "" {
		return defaultValue
	}
	return ret
}

func (c *config) IsEnvTrue(key string) bool {
	value := c.Getenv(key)
	return value == "1" || value == "y" || value == "yes" || value == "on" || value == "true"
}

func (c *config) IsEnvFalse(key string) bool {
	value := c.Getenv(key)
	return value == "0" || value == "n" || value == "no" || value == "off" || value == "false"
}

func (c *config) EnvDeps() map[string]string {
	c.envLock.Lock()
	defer c.envLock.Unlock()
	c.envFrozen = true
	return c.envDeps
}

// PrebuiltOS returns the name of the host OS used in prebuilts directories
func (c *config) PrebuiltOS() string {
	switch runtime.GOOS {
	case "linux":
		return "linux-x86"
	case "darwin":
		return "darwin-x86"
	default:
		panic("Unknown GOOS")
	}
}

func (c *config) DeviceName() string {
	return *c.productVariables.DeviceName
}

// PlatformSdkVersion returns the SDK version of the platform being targeted,
// used as the default targetSdkVersion for modules that do not set one.
func (c *config) PlatformSdkVersion() int {
	return Int(c.productVariables.Platform_sdk_version)
}

// DebugKeystore returns the path to the keystore used to sign debuggable
// packages when the variant has no signing config of its own.
func (c *config) DebugKeystore() string {
	if s := String(c.productVariables.Debug_keystore); s != "" {
		return s
	}
	return filepath.Join(c.Getenv("HOME"), ".android", "debug.keystore")
}
