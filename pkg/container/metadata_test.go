// Copyright 2025 Alexander Alten (novatechflow), NovaTechflow (novatechflow.com).
// This project is supported and financed by Scalytics, Inc. (www.scalytics.io).
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

package container

import (
	"encoding/binary"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/novatechflow/hifitxt/pkg/container/containertest"
)

func TestReadMetadata(t *testing.T) {
	reads := []containertest.Read{
		{Name: "r1", Bases: "ACGT"},
		{Name: "read_two", Bases: "TTGGACA", Masked: []uint64{0, 6}},
		{Name: "", Bases: ""},
	}
	data := containertest.SequenceContainer(reads)

	rs, err := ReadMetadata(containertest.NewObject("reads.ec.bin", data))
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	if rs.ReadsCount != 3 {
		t.Fatalf("expected 3 reads, got %d", rs.ReadsCount)
	}
	if rs.NameIndexSize != 4 {
		t.Fatalf("name index size not preserved: %d", rs.NameIndexSize)
	}
	if diff := cmp.Diff([]uint32{4, 7, 0}, rs.Lengths); diff != "" {
		t.Fatalf("lengths mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]uint64{nil, {0, 6}, nil}, rs.MaskedSites); diff != "" {
		t.Fatalf("masked sites mismatch (-want +got):\n%s", diff)
	}
	names := make([]string, len(rs.Names))
	for i, n := range rs.Names {
		names[i] = string(n)
	}
	if diff := cmp.Diff([]string{"r1", "read_two", ""}, names); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if want := containertest.PayloadOffset(reads); rs.PayloadOffset != want {
		t.Fatalf("payload offset: want %d got %d", want, rs.PayloadOffset)
	}
	if rs.TotalBases() != 11 {
		t.Fatalf("unexpected total bases %d", rs.TotalBases())
	}
}

func TestReadMetadataEmpty(t *testing.T) {
	data := containertest.SequenceContainer(nil)
	rs, err := ReadMetadata(containertest.NewObject("empty", data))
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	if rs.ReadsCount != 0 || len(rs.Names) != 0 || rs.PayloadOffset != 44 {
		t.Fatalf("unexpected read set: %+v", rs)
	}
}

func TestSliceNames(t *testing.T) {
	names, err := sliceNames([]byte("abcXYZ"), []uint64{0, 3, 6})
	if err != nil {
		t.Fatalf("sliceNames: %v", err)
	}
	if len(names) != 2 || string(names[0]) != "abc" || string(names[1]) != "XYZ" {
		t.Fatalf("unexpected names: %q", names)
	}
	// Appending to one name must not clobber its neighbour.
	_ = append(names[0], '!')
	if string(names[1]) != "XYZ" {
		t.Fatalf("names share writable capacity: %q", names[1])
	}
}

func TestSliceNamesRejectsBadIndex(t *testing.T) {
	cases := map[string][]uint64{
		"decreasing": {0, 4, 3, 6},
		"short tail": {0, 3, 5},
		"empty":      {},
	}
	for name, index := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := sliceNames([]byte("abcXYZ"), index); err == nil {
				t.Fatalf("expected error for index %v", index)
			}
		})
	}
}

func TestReadMetadataTruncated(t *testing.T) {
	data := containertest.SequenceContainer([]containertest.Read{
		{Name: "r1", Bases: "ACGTACGT", Masked: []uint64{2}},
		{Name: "r2", Bases: "GG"},
	})
	for _, cut := range []int{10, 44, 60, len(data) - 1} {
		_, err := ReadMetadata(containertest.NewObject("cut", data[:cut]))
		if err == nil {
			t.Fatalf("cut %d: expected error", cut)
		}
		if !errors.Is(err, ErrContainerTruncated) && !errors.Is(err, ErrSeekOutOfRange) {
			t.Fatalf("cut %d: unexpected error kind: %v", cut, err)
		}
		var cerr *ContainerError
		if !errors.As(err, &cerr) || cerr.Path != "cut" {
			t.Fatalf("cut %d: expected ContainerError with path, got %v", cut, err)
		}
	}
}

func TestReadMetadataSeekOutOfRange(t *testing.T) {
	reads := []containertest.Read{{Name: "r1", Bases: "ACGTACGTACGT"}}
	data := containertest.SequenceContainer(reads)
	// Claim a much longer read so the payload skip runs past the end.
	off := containertest.PayloadOffset(reads) - 8
	binary.LittleEndian.PutUint64(data[off:off+8], 1<<20)

	_, err := ReadMetadata(containertest.NewObject("long", data))
	if !errors.Is(err, ErrSeekOutOfRange) {
		t.Fatalf("expected ErrSeekOutOfRange, got %v", err)
	}
	if Kind(err) != "seek" {
		t.Fatalf("unexpected kind %q", Kind(err))
	}
}

func TestReadMetadataRejectsMaskedSiteBeyondRead(t *testing.T) {
	data := containertest.SequenceContainer([]containertest.Read{
		{Name: "r1", Bases: "ACG", Masked: []uint64{3}},
	})
	_, err := ReadMetadata(containertest.NewObject("masked", data))
	if !errors.Is(err, ErrCorruptContainer) {
		t.Fatalf("expected ErrCorruptContainer, got %v", err)
	}
}

func TestReadMetadataRejectsHugeReadCount(t *testing.T) {
	data := containertest.SequenceContainer(nil)
	binary.LittleEndian.PutUint64(data[20:28], 1<<40)
	_, err := ReadMetadata(containertest.NewObject("huge", data))
	if !errors.Is(err, ErrContainerTruncated) {
		t.Fatalf("expected ErrContainerTruncated, got %v", err)
	}
}

func TestDecodeMetadataMissingFile(t *testing.T) {
	_, err := DecodeMetadata(filepath.Join(t.TempDir(), "missing.ec.bin"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if Kind(err) != "not_found" {
		t.Fatalf("unexpected kind %q", Kind(err))
	}
}

func TestDecodeMetadataFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reads.ec.bin")
	data := containertest.SequenceContainer([]containertest.Read{{Name: "only", Bases: "ACGTA"}})
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write container: %v", err)
	}
	rs, err := DecodeMetadata(path)
	if err != nil {
		t.Fatalf("DecodeMetadata: %v", err)
	}
	if rs.ReadsCount != 1 || string(rs.Names[0]) != "only" {
		t.Fatalf("unexpected read set: %+v", rs)
	}
}
