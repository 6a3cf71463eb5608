package crc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeAndVerifyCRC16(t *testing.T) {
	data := []byte("hello world")
	sum := Compute(SuiteCRC16X25, data)
	assert.Len(t, sum, 2)
	assert.True(t, Verify(SuiteCRC16X25, data, sum))
	assert.False(t, Verify(SuiteCRC16X25, []byte("hello worlD"), sum))
}

func TestComputeAndVerifyCRC32(t *testing.T) {
	data := []byte("hello world")
	sum := Compute(SuiteCRC32Castagnoli, data)
	assert.Len(t, sum, 4)
	assert.True(t, Verify(SuiteCRC32Castagnoli, data, sum))
	assert.False(t, Verify(SuiteCRC32Castagnoli, []byte("hello worlD"), sum))
}

func TestSuiteNoneProducesNoResult(t *testing.T) {
	sum := Compute(SuiteNone, []byte("anything"))
	assert.Nil(t, sum)
	assert.Equal(t, 0, SuiteNone.Size())
}

func TestVerifyRejectsLengthMismatch(t *testing.T) {
	assert.False(t, Verify(SuiteCRC16X25, []byte("x"), []byte{0, 0, 0, 0}))
}

func TestSizeMatchesComputedLength(t *testing.T) {
	assert.Equal(t, 2, SuiteCRC16X25.Size())
	assert.Equal(t, 4, SuiteCRC32Castagnoli.Size())
}
