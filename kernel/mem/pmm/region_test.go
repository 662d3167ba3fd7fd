package pmm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"minikern/kernel/mem"
)

func TestRegion(t *testing.T) {
	r := Region{Base: 0x10000, Size: 0x1000}

	assert.Equal(t, uintptr(0x11000), r.End())
	assert.True(t, r.Valid())

	assert.True(t, r.Contains(0x10000))
	assert.True(t, r.Contains(0x10fff))
	assert.False(t, r.Contains(0x11000))
	assert.False(t, r.Contains(0xffff))
}

func TestRegionValid(t *testing.T) {
	specs := []struct {
		region Region
		exp    bool
	}{
		{Region{}, false},
		{Region{Base: 0x1000}, false},
		{Region{Base: 0x1001, Size: mem.PageSize}, false},
		{Region{Base: 0, Size: 16}, true},
		{Region{Base: 0x200000, Size: 2 * mem.Mb}, true},
		{Region{Base: ^uintptr(0) &^ uintptr(mem.PageSize-1), Size: 2 * mem.PageSize}, false},
	}

	for specIndex, spec := range specs {
		assert.Equal(t, spec.exp, spec.region.Valid(), "[spec %d]", specIndex)
	}
}
