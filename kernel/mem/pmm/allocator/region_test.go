package allocator

import (
	"bytes"
	"runtime"
	"testing"

	"minikern/kernel/hal/multiboot"
	"minikern/kernel/hal/multiboot/mbtest"
	"minikern/kernel/kfmt"
	"minikern/kernel/mem"
	"minikern/kernel/mem/pmm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var qemuMemoryMap = []mbtest.MemoryRegion{
	{PhysAddress: 0, Length: 654336, Type: multiboot.MemAvailable},
	{PhysAddress: 654336, Length: 1024, Type: multiboot.MemReserved},
	{PhysAddress: 983040, Length: 65536, Type: multiboot.MemReserved},
	{PhysAddress: 1048576, Length: 133038080, Type: multiboot.MemAvailable},
	{PhysAddress: 134086656, Length: 131072, Type: multiboot.MemReserved},
	{PhysAddress: 4294705152, Length: 262144, Type: multiboot.MemReserved},
}

func TestUsableRegion(t *testing.T) {
	specs := []struct {
		name                   string
		regions                []mbtest.MemoryRegion
		kernelStart, kernelEnd uintptr
		exp                    pmm.Region
		expErr                 error
	}{
		{
			name:        "kernel at the start of the largest region",
			regions:     qemuMemoryMap,
			kernelStart: 0x100000,
			kernelEnd:   0x2ab123,
			exp:         pmm.Region{Base: 0x2ac000, Size: 0x7fe0000 - 0x2ac000},
		},
		{
			name: "unaligned entry is trimmed to whole pages",
			regions: []mbtest.MemoryRegion{
				{PhysAddress: 0x1234, Length: 0x5000, Type: multiboot.MemAvailable},
			},
			kernelStart: 0x100000,
			kernelEnd:   0x200000,
			exp:         pmm.Region{Base: 0x2000, Size: 0x4000},
		},
		{
			name: "kernel in the middle keeps the larger piece",
			regions: []mbtest.MemoryRegion{
				{PhysAddress: 0x100000, Length: 0xf00000, Type: multiboot.MemAvailable},
			},
			kernelStart: 0xf00800,
			kernelEnd:   0xf10000,
			exp:         pmm.Region{Base: 0x100000, Size: 0xe00000},
		},
		{
			name: "kernel near the start keeps the upper piece",
			regions: []mbtest.MemoryRegion{
				{PhysAddress: 0x100000, Length: 0xf00000, Type: multiboot.MemAvailable},
			},
			kernelStart: 0x180000,
			kernelEnd:   0x1c0000,
			exp:         pmm.Region{Base: 0x1c0000, Size: 0xe40000},
		},
		{
			name: "kernel ends in the last page of the address space",
			regions: []mbtest.MemoryRegion{
				{PhysAddress: 0xffffffffffff0000, Length: 0xf000, Type: multiboot.MemAvailable},
			},
			kernelStart: 0xffffffffffff8000,
			kernelEnd:   0xfffffffffffff800,
			exp:         pmm.Region{Base: 0xffffffffffff0000, Size: 0x8000},
		},
		{
			name: "kernel covers the only region",
			regions: []mbtest.MemoryRegion{
				{PhysAddress: 0x100000, Length: 0x100000, Type: multiboot.MemAvailable},
			},
			kernelStart: 0xff000,
			kernelEnd:   0x200001,
			expErr:      ErrNoUsableMemory,
		},
		{
			name: "only reserved or sub-page entries",
			regions: []mbtest.MemoryRegion{
				{PhysAddress: 0x100000, Length: 0x100000, Type: multiboot.MemReserved},
				{PhysAddress: 0x300000, Length: 0x800, Type: multiboot.MemAvailable},
				{PhysAddress: 0x400800, Length: 0x1000, Type: multiboot.MemAvailable},
			},
			kernelStart: 0x1000000,
			kernelEnd:   0x1100000,
			expErr:      ErrNoUsableMemory,
		},
	}

	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			info := new(mbtest.Builder).MemoryMap(spec.regions...).Build()
			multiboot.SetInfoPtr(info.Ptr())

			region, err := UsableRegion(spec.kernelStart, spec.kernelEnd)
			runtime.KeepAlive(info)

			if spec.expErr != nil {
				assert.Equal(t, spec.expErr, error(err))
				return
			}

			require.Nil(t, err)
			assert.Equal(t, spec.exp, region)
			assert.True(t, region.Valid())

			// The region never overlaps the kernel image.
			assert.True(t, region.End() <= spec.kernelStart || region.Base >= spec.kernelEnd)

			var alloc BumpAllocator
			assert.Nil(t, alloc.Init(region))
		})
	}

	t.Run("missing memory map", func(t *testing.T) {
		info := new(mbtest.Builder).Build()
		multiboot.SetInfoPtr(info.Ptr())

		_, err := UsableRegion(0x100000, 0x200000)
		runtime.KeepAlive(info)
		assert.Equal(t, ErrNoUsableMemory, err)
	})
}

func TestPrintMemoryMap(t *testing.T) {
	var buf bytes.Buffer
	kfmt.SetOutputSink(&buf)
	defer kfmt.SetOutputSink(nil)

	info := new(mbtest.Builder).MemoryMap(qemuMemoryMap...).Build()
	multiboot.SetInfoPtr(info.Ptr())

	PrintMemoryMap()
	runtime.KeepAlive(info)

	out := buf.String()
	assert.Contains(t, out, "[bump_alloc] system memory map:\n")
	assert.Equal(t, len(qemuMemoryMap), bytes.Count(buf.Bytes(), []byte("type: ")))
	assert.Contains(t, out, "type: available\n")
	assert.Contains(t, out, "type: reserved\n")

	expFree := uint64(mem.Size(654336+133038080) / mem.Kb)
	assert.Equal(t, uint64(130559), expFree)
	assert.Contains(t, out, "[bump_alloc] available memory: 130559Kb\n")
}
