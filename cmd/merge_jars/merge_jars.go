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

// merge_jars combines zip archives.  The build uses it twice per variant:
// once to merge java resources out of jars, stripping classes, and once to
// assemble the final package, keeping the first copy of duplicate entries.
package main

import (
	"archive/zip"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"android/appbuild/builder"
)

var (
	out              = flag.String("o", "", "file to write the merged zip to")
	stripClasses     = flag.Bool("strip-classes", false, "exclude class files and jar signing metadata")
	ignoreDuplicates = flag.Bool("ignore-duplicates", false, "keep the first copy of a duplicate entry instead of failing")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: merge_jars [--strip-classes] [--ignore-duplicates] -o output [inputs...]")
		flag.PrintDefaults()
	}

	flag.Parse()
	if *out == "" || flag.NArg() == 0 {
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

	var readers []namedZipReader
	for _, input := range flag.Args() {
		reader, err := zip.OpenReader(input)
		if err != nil {
			log.Fatal(err)
		}
		defer reader.Close()
		readers = append(readers, namedZipReader{path: input, reader: &reader.Reader})
	}

	if err := mergeZips(readers, writer, *stripClasses, *ignoreDuplicates); err != nil {
		log.Fatal(err)
	}
}

// a namedZipReader reads a zip file and can say which file it is reading
type namedZipReader struct {
	path   string
	reader *zip.Reader
}

// a zipEntry is a file inside one of the input zips
type zipEntry struct {
	zipName string
	content *zip.File
}

func (e zipEntry) String() string {
	return e.zipName + "/" + e.content.Name
}

// stripped reports whether an entry is dropped when class stripping is on:
// compiled classes, and the jar metadata that only describes or signs them.
// Other META-INF entries, like service loader registrations, are resources
// and stay.
func stripped(name string) bool {
	switch {
	case strings.HasSuffix(name, ".class"):
		return true
	case name == "META-INF/", name == "META-INF/MANIFEST.MF":
		return true
	case strings.HasPrefix(name, "META-INF/") &&
		(strings.HasSuffix(name, ".SF") ||
			strings.HasSuffix(name, ".DSA") ||
			strings.HasSuffix(name, ".RSA")):
		return true
	}
	return false
}

func mergeZips(readers []namedZipReader, writer *zip.Writer,
	stripClasses, ignoreDuplicates bool) error {

	entriesByName := make(map[string]zipEntry)
	var orderedEntries []zipEntry

	for _, namedReader := range readers {
		for _, file := range namedReader.reader.File {
			if stripClasses && stripped(file.Name) {
				continue
			}

			name := strings.TrimSuffix(file.Name, "/")
			entry := zipEntry{zipName: namedReader.path, content: file}

			if existing, exists := entriesByName[name]; exists {
				wasDir := existing.content.FileInfo().IsDir()
				isDir := file.FileInfo().IsDir()
				if wasDir != isDir {
					return fmt.Errorf("directory/file mismatch at %v from %v and %v",
						name, existing, entry)
				}
				if isDir || ignoreDuplicates {
					continue
				}
				return &builder.DuplicateFileError{
					ArchivePath: file.Name,
					File1:       existing.String(),
					File2:       entry.String(),
				}
			}

			entriesByName[name] = entry
			orderedEntries = append(orderedEntries, entry)
		}
	}

	for _, entry := range orderedEntries {
		if err := copyEntry(writer, entry.content); err != nil {
			return err
		}
	}

	return nil
}

func copyEntry(writer *zip.Writer, file *zip.File) error {
	header := file.FileHeader
	w, err := writer.CreateHeader(&header)
	if err != nil {
		return err
	}
	if file.FileInfo().IsDir() {
		return nil
	}

	r, err := file.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	_, err = io.Copy(w, r)
	return err
}
