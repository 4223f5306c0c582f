package fontparse

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
)

// woffHeaderLen WOFF文件头长度
const woffHeaderLen = 44

// woffDirEntryLen WOFF表目录条目长度
const woffDirEntryLen = 20

// sfntDirEntryLen sfnt表目录条目长度
const sfntDirEntryLen = 16

// unpackWOFF 将WOFF 1.0容器解包为等价的sfnt字节流
// WOFF按表逐个压缩（zlib），表目录本身未压缩；解包即重建sfnt头、
// 表目录和4字节对齐的表数据
func unpackWOFF(data []byte) ([]byte, error) {
	if len(data) < woffHeaderLen {
		return nil, fmt.Errorf("woff header truncated (%d bytes)", len(data))
	}

	flavor := binary.BigEndian.Uint32(data[4:8])
	numTables := binary.BigEndian.Uint16(data[12:14])
	if numTables == 0 {
		return nil, fmt.Errorf("woff container has no tables")
	}

	dirEnd := woffHeaderLen + int(numTables)*woffDirEntryLen
	if len(data) < dirEnd {
		return nil, fmt.Errorf("woff table directory truncated")
	}

	// sfnt头的二分查找辅助字段
	entrySelector := uint16(0)
	for 1<<(entrySelector+1) <= numTables {
		entrySelector++
	}
	searchRange := uint16(1<<entrySelector) * sfntDirEntryLen
	rangeShift := numTables*sfntDirEntryLen - searchRange

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, flavor)
	binary.Write(&out, binary.BigEndian, numTables)
	binary.Write(&out, binary.BigEndian, searchRange)
	binary.Write(&out, binary.BigEndian, entrySelector)
	binary.Write(&out, binary.BigEndian, rangeShift)

	type tableEntry struct {
		tag      uint32
		checksum uint32
		data     []byte
	}
	tables := make([]tableEntry, 0, numTables)

	for i := 0; i < int(numTables); i++ {
		entry := data[woffHeaderLen+i*woffDirEntryLen:]
		tag := binary.BigEndian.Uint32(entry[0:4])
		offset := binary.BigEndian.Uint32(entry[4:8])
		compLength := binary.BigEndian.Uint32(entry[8:12])
		origLength := binary.BigEndian.Uint32(entry[12:16])
		checksum := binary.BigEndian.Uint32(entry[16:20])

		if int64(offset)+int64(compLength) > int64(len(data)) {
			return nil, fmt.Errorf("woff table %d out of bounds", i)
		}
		raw := data[offset : offset+compLength]

		// compLength小于origLength时该表为zlib压缩，否则为原始存储
		tableData := raw
		if compLength < origLength {
			zr, err := zlib.NewReader(bytes.NewReader(raw))
			if err != nil {
				return nil, fmt.Errorf("woff table %d: %w", i, err)
			}
			decompressed, err := io.ReadAll(zr)
			zr.Close()
			if err != nil {
				return nil, fmt.Errorf("woff table %d: %w", i, err)
			}
			tableData = decompressed
		}
		if uint32(len(tableData)) != origLength {
			return nil, fmt.Errorf("woff table %d: decompressed size %d != %d", i, len(tableData), origLength)
		}

		tables = append(tables, tableEntry{tag: tag, checksum: checksum, data: tableData})
	}

	// 表数据紧随目录之后，按目录顺序排列并4字节对齐
	offset := uint32(12 + int(numTables)*sfntDirEntryLen)
	for _, t := range tables {
		binary.Write(&out, binary.BigEndian, t.tag)
		binary.Write(&out, binary.BigEndian, t.checksum)
		binary.Write(&out, binary.BigEndian, offset)
		binary.Write(&out, binary.BigEndian, uint32(len(t.data)))
		offset += uint32(len(t.data))
		offset = (offset + 3) &^ 3
	}
	for _, t := range tables {
		out.Write(t.data)
		for out.Len()%4 != 0 {
			out.WriteByte(0)
		}
	}

	return out.Bytes(), nil
}
