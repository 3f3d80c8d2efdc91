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

import "encoding/binary"

const (
	headerLen        = 44
	blockHeaderLen   = 6
	overlapRecordLen = 42
)

// headerView is the fixed 44-byte sequence container header.
type headerView []byte

func (h headerView) NameIndexSize() uint64 {
	return binary.LittleEndian.Uint64(h[12:20])
}

func (h headerView) ReadsCount() uint64 {
	return binary.LittleEndian.Uint64(h[20:28])
}

func (h headerView) TotalNameLength() uint64 {
	return binary.LittleEndian.Uint64(h[36:44])
}

// blockHeaderView precedes each per-query run of overlap records.
type blockHeaderView []byte

func (b blockHeaderView) RecordCount() int32 {
	return int32(binary.LittleEndian.Uint32(b[2:6]))
}

// overlapView is one fixed-width overlap record. Bytes 24..30 and 34..42
// carry fields the text format does not use.
type overlapView []byte

func (o overlapView) queryField() uint64 {
	return binary.LittleEndian.Uint64(o[0:8])
}

func (o overlapView) QueryIndex() uint32 {
	return uint32(o.queryField() >> 32)
}

func (o overlapView) QueryStart() uint32 {
	return uint32(o.queryField() & 0xFFFFFFFF)
}

func (o overlapView) QueryEnd() uint32 {
	return binary.LittleEndian.Uint32(o[8:12])
}

func (o overlapView) TargetIndex() uint32 {
	return binary.LittleEndian.Uint32(o[12:16])
}

func (o overlapView) TargetStart() uint32 {
	return binary.LittleEndian.Uint32(o[16:20])
}

func (o overlapView) TargetEnd() uint32 {
	return binary.LittleEndian.Uint32(o[20:24])
}

func (o overlapView) StrandCode() uint32 {
	return binary.LittleEndian.Uint32(o[30:34])
}
