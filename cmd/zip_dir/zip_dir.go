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

// zip_dir zips a set of files under a directory, storing each under its
// path relative to that directory.  The build uses it to stage java
// resource directories and jni library directories for packaging.
package main

import (
	"archive/zip"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

var (
	out    = flag.String("o", "", "file to write the zip to")
	prefix = flag.String("P", "", "prefix prepended to every entry name")
	root   = flag.String("C", "", "directory the entry names are computed relative to")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: zip_dir -o zipfile [-P prefix] -C dir [files...]")
		flag.PrintDefaults()
	}

	flag.Parse()
	if *out == "" || *root == "" {
		flag.Usage()
		os.Exit(1)
	}

	log.SetFlags(log.Lshortfile)

	output, err := os.Create(*out)
	if err != nil {
		log.Fatal(err)
	}
	defer output.Close()
	writer := zip.NewWriter(output)
	defer func() {
		if err := writer.Close(); err != nil {
			log.Fatal(err)
		}
	}()

	for _, file := range flag.Args() {
		if err := writeFile(writer, *root, *prefix, file); err != nil {
			log.Fatal(err)
		}
	}
}

func writeFile(writer *zip.Writer, root, prefix, file string) error {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return err
	}
	if strings.HasPrefix(rel, "..") {
		return fmt.Errorf("%s is not under %s", file, root)
	}

	// The timestamp is left at the zip epoch so that identical inputs
	// produce identical archives.
	header := &zip.FileHeader{
		Name:   filepath.ToSlash(filepath.Join(prefix, rel)),
		Method: zip.Deflate,
	}

	w, err := writer.CreateHeader(header)
	if err != nil {
		return err
	}

	in, err := os.Open(file)
	if err != nil {
		return err
	}
	defer in.Close()

	_, err = io.Copy(w, in)
	return err
}
