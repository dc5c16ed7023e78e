// Copyright 2025 Poiesic Systems
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



package storage

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/taxonomist/core"
)

// Manifest describes a persisted collection.
type Manifest struct {
	Name       string
	Dimensions int
}

// MarshalEntry serializes an Entry to bytes.
// Layout: id, text, kind, parent, vector length, vector components.
func MarshalEntry(entry *core.Entry) []byte {
	size := ord.String.Size(entry.ID) +
		ord.String.Size(entry.Text) +
		varint.Int.Size(int(entry.Kind)) +
		ord.String.Size(entry.ParentCategory) +
		varint.Int.Size(len(entry.Vector))
	for _, v := range entry.Vector {
		size += raw.Float32.Size(v)
	}

	buf := make([]byte, size)
	n := ord.String.Marshal(entry.ID, buf)
	n += ord.String.Marshal(entry.Text, buf[n:])
	n += varint.Int.Marshal(int(entry.Kind), buf[n:])
	n += ord.String.Marshal(entry.ParentCategory, buf[n:])
	n += varint.Int.Marshal(len(entry.Vector), buf[n:])
	for _, v := range entry.Vector {
		n += raw.Float32.Marshal(v, buf[n:])
	}
	return buf
}

// UnmarshalEntry deserializes an Entry from bytes.
func UnmarshalEntry(data []byte) (*core.Entry, error) {
	var (
		entry core.Entry
		n, m  int
		kind  int
		count int
		err   error
	)

	if entry.ID, m, err = ord.String.Unmarshal(data); err != nil {
		return nil, serializationError("entry id", err)
	}
	n += m
	if entry.Text, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, serializationError("entry text", err)
	}
	n += m
	if kind, m, err = varint.Int.Unmarshal(data[n:]); err != nil {
		return nil, serializationError("entry kind", err)
	}
	n += m
	entry.Kind = core.Kind(kind)
	if entry.ParentCategory, m, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, serializationError("entry parent", err)
	}
	n += m
	if count, m, err = varint.Int.Unmarshal(data[n:]); err != nil {
		return nil, serializationError("vector length", err)
	}
	n += m
	if count < 0 || count*4 > len(data)-n {
		return nil, fmt.Errorf("%w: %w: vector of %d components", ErrSerializationFailed, ErrTruncatedData, count)
	}

	entry.Vector = make([]float32, count)
	for i := range entry.Vector {
		if entry.Vector[i], m, err = raw.Float32.Unmarshal(data[n:]); err != nil {
			return nil, serializationError("vector", err)
		}
		n += m
	}
	return &entry, nil
}

// MarshalManifest serializes a collection Manifest to bytes.
func MarshalManifest(manifest *Manifest) []byte {
	buf := make([]byte, ord.String.Size(manifest.Name)+varint.Int.Size(manifest.Dimensions))
	n := ord.String.Marshal(manifest.Name, buf)
	varint.Int.Marshal(manifest.Dimensions, buf[n:])
	return buf
}

// UnmarshalManifest deserializes a collection Manifest from bytes.
func UnmarshalManifest(data []byte) (*Manifest, error) {
	name, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return nil, serializationError("manifest name", err)
	}
	dims, _, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, serializationError("manifest dimensions", err)
	}
	return &Manifest{Name: name, Dimensions: dims}, nil
}

func serializationError(field string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSerializationFailed, field, err)
}
