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

// ReadSet is the per-read metadata of a sequence container. All slices are
// index-aligned and have ReadsCount entries.
type ReadSet struct {
	ReadsCount int
	// NameIndexSize is carried from the header as-is; nothing downstream
	// interprets it.
	NameIndexSize uint64
	Lengths       []uint32
	MaskedSites   [][]uint64
	Names         [][]byte
	// PayloadOffset is where the packed 2-bit sequence data begins, directly
	// after the length section.
	PayloadOffset int64
}

// TotalBases sums all read lengths.
func (rs *ReadSet) TotalBases() uint64 {
	var total uint64
	for _, l := range rs.Lengths {
		total += uint64(l)
	}
	return total
}

// packedLen is the on-disk payload size of a read: four bases per byte plus
// one guard byte, even when length is a multiple of four.
func packedLen(length uint32) int64 {
	return int64(length/4) + 1
}

// DecodeMetadata opens a local sequence container and reads its metadata.
func DecodeMetadata(path string) (*ReadSet, error) {
	obj, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return ReadMetadata(obj)
}

// ReadMetadata parses the header, masked-site lists, read lengths, name buffer
// and name index of a sequence container. The packed payload between the
// length section and the name buffer is skipped, not read.
func ReadMetadata(obj Object) (*ReadSet, error) {
	c, err := newCursor(obj, 0)
	if err != nil {
		return nil, err
	}

	header := make(headerView, headerLen)
	if err := c.readFull("read header", header); err != nil {
		return nil, err
	}
	readsCount := header.ReadsCount()
	totalNameLength := header.TotalNameLength()
	// Each read needs at least a masked-site count and a length.
	if readsCount > uint64(c.remaining())/16 {
		return nil, c.truncated("read header", readsCount*16)
	}
	n := int(readsCount)

	masked := make([][]uint64, n)
	for i := 0; i < n; i++ {
		count, err := c.uint64("read masked site count")
		if err != nil {
			return nil, err
		}
		if count == 0 {
			continue
		}
		if count > uint64(c.remaining())/8 {
			return nil, c.truncated("read masked sites", count*8)
		}
		sites := make([]uint64, count)
		for j := range sites {
			if sites[j], err = c.uint64("read masked site"); err != nil {
				return nil, err
			}
		}
		masked[i] = sites
	}

	lengths := make([]uint32, n)
	for i := range lengths {
		length, err := c.uint64("read length")
		if err != nil {
			return nil, err
		}
		lengths[i] = uint32(length)
	}
	sectionEnd := c.pos

	var payload int64
	for _, length := range lengths {
		payload += packedLen(length)
	}
	if err := c.skip("skip packed payload", payload); err != nil {
		return nil, err
	}

	if totalNameLength > uint64(c.remaining()) {
		return nil, c.truncated("read names", totalNameLength)
	}
	nameBuf := make([]byte, totalNameLength)
	if err := c.readFull("read names", nameBuf); err != nil {
		return nil, err
	}

	index := make([]uint64, n+1)
	for i := range index {
		if index[i], err = c.uint64("read name index"); err != nil {
			return nil, err
		}
	}
	names, err := sliceNames(nameBuf, index)
	if err != nil {
		return nil, c.corrupt("read name index", "%v", err)
	}

	for i, sites := range masked {
		for _, site := range sites {
			if site >= uint64(lengths[i]) {
				return nil, c.corrupt("validate masked sites", "read %d masked site %d beyond length %d", i, site, lengths[i])
			}
		}
	}

	return &ReadSet{
		ReadsCount:    n,
		NameIndexSize: header.NameIndexSize(),
		Lengths:       lengths,
		MaskedSites:   masked,
		Names:         names,
		PayloadOffset: sectionEnd,
	}, nil
}
