// Package mbtest builds synthetic Multiboot2 boot information blocks for use
// in tests. The produced blocks follow the layout that a loader places in
// memory so they can be handed to multiboot.SetInfoPtr.
package mbtest

import (
	"encoding/binary"
	"unsafe"

	"minikern/kernel/hal/multiboot"
)

const (
	tagEnd          = 0
	tagMemoryMap    = 6
	tagFramebuffer  = 8
	tagElfSymbols   = 9
	mmapEntrySize   = 24
	elfSectionSize  = 64
	elfShtStrtab    = 3
	elfShtProgbits  = 1
	elfStrtabPrefix = "\x00"
)

// MemoryRegion describes an entry in the synthetic memory map.
type MemoryRegion struct {
	PhysAddress uint64
	Length      uint64
	Type        multiboot.MemoryEntryType
}

// ElfSection describes a section in the synthetic ELF symbols tag.
type ElfSection struct {
	Name    string
	Flags   multiboot.ElfSectionFlag
	Address uint64
	Size    uint64
}

// Info is a boot information block. The backing memory is owned by the Info
// value which must be kept reachable while the block is in use.
type Info struct {
	words    []uint64
	strTable []byte
}

// Ptr returns the address of the boot information block.
func (i *Info) Ptr() uintptr {
	return uintptr(unsafe.Pointer(&i.words[0]))
}

// Builder assembles a boot information block tag by tag.
type Builder struct {
	buf      []byte
	strTable []byte
}

// MemoryMap appends a memory map tag describing regions.
func (b *Builder) MemoryMap(regions ...MemoryRegion) *Builder {
	payload := make([]byte, 8+mmapEntrySize*len(regions))
	binary.LittleEndian.PutUint32(payload[0:], mmapEntrySize)
	for i, r := range regions {
		entry := payload[8+i*mmapEntrySize:]
		binary.LittleEndian.PutUint64(entry[0:], r.PhysAddress)
		binary.LittleEndian.PutUint64(entry[8:], r.Length)
		binary.LittleEndian.PutUint32(entry[16:], uint32(r.Type))
	}

	return b.tag(tagMemoryMap, payload)
}

// Framebuffer appends a framebuffer info tag.
func (b *Builder) Framebuffer(physAddr uint64, width, height uint32, fbType multiboot.FramebufferType) *Builder {
	payload := make([]byte, 24)
	binary.LittleEndian.PutUint64(payload[0:], physAddr)
	pitch := width * 2
	if fbType != multiboot.FramebufferTypeEGA {
		pitch = width * 4
		payload[20] = 32
	}
	binary.LittleEndian.PutUint32(payload[8:], pitch)
	binary.LittleEndian.PutUint32(payload[12:], width)
	binary.LittleEndian.PutUint32(payload[16:], height)
	payload[21] = byte(fbType)

	return b.tag(tagFramebuffer, payload)
}

// ElfSections appends an ELF symbols tag. A string table section is added
// after the supplied sections; its contents live in Go memory owned by the
// returned Info.
func (b *Builder) ElfSections(sections ...ElfSection) *Builder {
	b.strTable = []byte(elfStrtabPrefix)
	nameOffsets := make([]uint32, len(sections))
	for i, s := range sections {
		nameOffsets[i] = uint32(len(b.strTable))
		b.strTable = append(b.strTable, s.Name...)
		b.strTable = append(b.strTable, 0)
	}

	numSections := len(sections) + 1
	payload := make([]byte, 12+elfSectionSize*numSections)
	binary.LittleEndian.PutUint32(payload[0:], uint32(numSections))
	binary.LittleEndian.PutUint32(payload[4:], elfSectionSize)
	binary.LittleEndian.PutUint32(payload[8:], uint32(len(sections)))

	for i, s := range sections {
		putElfSection(payload[12+i*elfSectionSize:], nameOffsets[i], elfShtProgbits, uint64(s.Flags), s.Address, s.Size)
	}

	// The string table address is patched in by Build once the table has
	// reached its final location.
	putElfSection(payload[12+len(sections)*elfSectionSize:], 0, elfShtStrtab, 0, 0, uint64(len(b.strTable)))

	return b.tag(tagElfSymbols, payload)
}

// Build terminates the block and returns it.
func (b *Builder) Build() *Info {
	b.tag(tagEnd, nil)

	total := 8 + len(b.buf)
	info := &Info{
		words:    make([]uint64, (total+7)/8),
		strTable: b.strTable,
	}

	raw := unsafe.Slice((*byte)(unsafe.Pointer(&info.words[0])), len(info.words)*8)
	binary.LittleEndian.PutUint32(raw[0:], uint32(total))
	copy(raw[8:], b.buf)

	if len(info.strTable) != 0 {
		patchStrTableAddress(raw, uint64(uintptr(unsafe.Pointer(&info.strTable[0]))))
	}

	return info
}

// tag appends a tag padding it so the next tag starts at an 8-byte boundary.
func (b *Builder) tag(tagType uint32, payload []byte) *Builder {
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:], tagType)
	binary.LittleEndian.PutUint32(hdr[4:], uint32(8+len(payload)))

	b.buf = append(b.buf, hdr[:]...)
	b.buf = append(b.buf, payload...)
	for len(b.buf)%8 != 0 {
		b.buf = append(b.buf, 0)
	}

	return b
}

func putElfSection(dst []byte, nameIndex, secType uint32, flags, address, size uint64) {
	binary.LittleEndian.PutUint32(dst[0:], nameIndex)
	binary.LittleEndian.PutUint32(dst[4:], secType)
	binary.LittleEndian.PutUint64(dst[8:], flags)
	binary.LittleEndian.PutUint64(dst[16:], address)
	binary.LittleEndian.PutUint64(dst[32:], size)
}

// patchStrTableAddress locates the ELF symbols tag in raw and stores addr in
// the address field of its string table section.
func patchStrTableAddress(raw []byte, addr uint64) {
	for off := 8; off+8 <= len(raw); {
		tagType := binary.LittleEndian.Uint32(raw[off:])
		size := int(binary.LittleEndian.Uint32(raw[off+4:]))
		if tagType == tagEnd {
			return
		}

		if tagType == tagElfSymbols {
			payload := raw[off+8:]
			strIndex := int(binary.LittleEndian.Uint32(payload[8:]))
			sec := payload[12+strIndex*elfSectionSize:]
			binary.LittleEndian.PutUint64(sec[16:], addr)
			return
		}

		off += (size + 7) &^ 7
	}
}
