// Copyright 2025 Jelly Terra <jellyterra@proton.me>
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"gopkg.in/yaml.v3"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Decoder turns file content into untyped structured data.
type Decoder func(data []byte) (any, error)

// Decoders maps a file extension to the decoder of its format.
var Decoders = map[string]Decoder{
	".json": DecodeJSON,
	".yaml": DecodeYAML,
	".yml":  DecodeYAML,
}

var errEmptyDocument = errors.New("empty document")

func DecodeJSON(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errEmptyDocument
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	err := dec.Decode(&v)
	if err != nil {
		return nil, err
	}

	// Only one document per file.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after the top-level value")
	}
	return v, nil
}

func DecodeYAML(data []byte) (any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var v any
	err := dec.Decode(&v)
	if errors.Is(err, io.EOF) {
		return nil, errEmptyDocument
	}
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errEmptyDocument
	}

	// Only one document per file. Empty trailing documents are allowed.
	for {
		var extra any
		err := dec.Decode(&extra)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if extra != nil {
			return nil, errors.New("unexpected document after the first one")
		}
	}
	return normalizeYAML(v), nil
}

// normalizeYAML rewrites non-string-keyed mappings so that YAML and JSON
// documents share one representation.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeYAML(e)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = normalizeYAML(e)
		}
		return m
	case []any:
		for i, e := range t {
			t[i] = normalizeYAML(e)
		}
		return t
	}
	return v
}

// File is one declaration record as found in storage.
type File struct {
	// Name is the base name, used in every diagnostic.
	Name string
	Path string

	Raw      any
	ParseErr *ParseError
}

// LoadAll reads every file with one of the given extensions from dir,
// sorted by name. Without extensions every decodable file is read.
// Only a failure to read dir itself is returned as an error.
func LoadAll(dir string, extensions ...string) ([]*File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading declarations directory: %w", err)
	}

	if len(extensions) == 0 {
		extensions = slices.Collect(maps.Keys(Decoders))
	}

	var files []*File
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || !slices.Contains(extensions, ext) {
			continue
		}
		decode, ok := Decoders[ext]
		if !ok {
			continue
		}

		f := &File{Name: entry.Name(), Path: filepath.Join(dir, entry.Name())}
		f.Raw, err = loadFile(f.Path, decode)
		if err != nil {
			f.Raw = nil
			f.ParseErr = &ParseError{File: f.Name, Err: err}
		}
		files = append(files, f)
	}

	slices.SortFunc(files, func(a, b *File) int { return strings.Compare(a.Name, b.Name) })
	return files, nil
}

func loadFile(name string, decode Decoder) (any, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return decode(b)
}

// Query decodes the YAML (or JSON) file at the joined path into v,
// rejecting fields v does not declare.
func Query[T any](v *T, keys ...string) (*T, error) {
	fName := filepath.Join(keys...)

	f, err := os.Open(fName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	err = dec.Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding %s: %w", fName, err)
	}
	return v, nil
}
