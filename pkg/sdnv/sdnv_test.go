package sdnv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripVariableWidth(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 16383, 16384, 1 << 20, 1 << 40, (1 << 56) - 1}
	for _, v := range values {
		buf := make([]byte, 16)
		wrec := Record{Value: v, Index: 0, Width: -1}
		n, wflags := Write(buf, len(buf), wrec)
		require.Zero(t, wflags, "value=%d", v)

		rrec := Record{Index: 0, Width: -1}
		m, rflags := Read(buf, n, &rrec)
		assert.Equal(t, n, m)
		assert.Zero(t, rflags)
		assert.Equal(t, v, rrec.Value)
	}
}

func TestRoundTripFixedWidth(t *testing.T) {
	for _, width := range []int{1, 2, 4, 8} {
		v := uint64(42)
		buf := make([]byte, 16)
		n, wflags := Write(buf, len(buf), Record{Value: v, Index: 0, Width: width})
		require.Zero(t, wflags)
		require.Equal(t, width, n)

		rrec := Record{Index: 0, Width: width}
		_, rflags := Read(buf, len(buf), &rrec)
		assert.Zero(t, rflags)
		assert.Equal(t, v, rrec.Value)
	}
}

func TestWriteZeroVariableWidthWritesNothing(t *testing.T) {
	buf := make([]byte, 4)
	n, flags := Write(buf, len(buf), Record{Value: 0, Index: 0, Width: -1})
	assert.Zero(t, n)
	assert.Zero(t, flags)
}

func TestReadIncompleteAtBufferEnd(t *testing.T) {
	buf := []byte{0x80, 0x80} // both bytes carry the continuation bit, no terminator
	rec := Record{Index: 0, Width: -1}
	_, flags := Read(buf, len(buf), &rec)
	assert.True(t, flags&FlagIncomplete != 0)
	assert.True(t, flags&FlagOverflow != 0)
}

func TestWriteIncompleteWhenBufferTooShort(t *testing.T) {
	buf := make([]byte, 1)
	_, flags := Write(buf, len(buf), Record{Value: 300, Index: 0, Width: -1})
	assert.True(t, flags&FlagIncomplete != 0)
}

func TestReadFixedWidthOverflowOnWideValue(t *testing.T) {
	// Two 7-bit groups (width=2) can hold at most 14 bits; force a value
	// that needs more by writing into a wider field then reading narrow.
	buf := make([]byte, 8)
	Write(buf, len(buf), Record{Value: 1 << 20, Index: 0, Width: 4})

	rec := Record{Index: 0, Width: 2}
	_, flags := Read(buf, len(buf), &rec)
	assert.True(t, flags&FlagOverflow != 0)
}

func TestIndexAdvancesAcrossSequentialFields(t *testing.T) {
	buf := make([]byte, 16)
	n1, _ := Write(buf, len(buf), Record{Value: 5, Index: 0, Width: -1})
	n2, _ := Write(buf, len(buf), Record{Value: 900, Index: n1, Width: -1})

	rec1 := Record{Index: 0, Width: -1}
	c1, _ := Read(buf, n1+n2, &rec1)
	rec2 := Record{Index: rec1.Index, Width: -1}
	c2, _ := Read(buf, n1+n2, &rec2)

	assert.Equal(t, uint64(5), rec1.Value)
	assert.Equal(t, uint64(900), rec2.Value)
	assert.Equal(t, n1, c1)
	assert.Equal(t, n2, c2)
}
