package image

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeReservationCapsByBothDimensions(t *testing.T) {
	// A ~652 MiB disc (roughly 74-minute CD-R capacity in 2048-byte blocks) with
	// generous usable space: the disc is the binding constraint.
	res := computeReservation(334_000, 10_000)
	assert.Equal(t, 334_000, res.imageMaxBlocks)

	// A small usable budget on a large disc: usable space binds instead.
	res = computeReservation(334_000, 10)
	assert.Less(t, res.imageMaxMegabytes, 334_000*blockSize/megabyte)
	assert.Equal(t, 10, res.imageMaxMegabytes)
}

func TestCeilDiv(t *testing.T) {
	assert.Equal(t, 1, ceilDiv(1, 2048))
	assert.Equal(t, 2, ceilDiv(2049, 2048))
	assert.Equal(t, 1, ceilDiv(2048, 2048))
}

func TestArchiveMaxBytesShrinksWithIndexSize(t *testing.T) {
	small := archiveMaxBytes(1000, []string{"/a"}, 0)

	// Enough entries to push the estimated index past one whole 2048-byte
	// block, so the reservation actually shrinks by a full block.
	var many []string
	for i := 0; i < 100; i++ {
		many = append(many, "/some/reasonably/long/path/entry/number/thirty-chars")
	}
	large := archiveMaxBytes(1000, many, 0)
	assert.Greater(t, small, large)
}

func TestArchiveMaxBytesAppliesOverheadMargin(t *testing.T) {
	base := archiveMaxBytes(1000, []string{"/a"}, 0)
	withMargin := archiveMaxBytes(1000, []string{"/a"}, 0.1)
	assert.Less(t, withMargin, base)
}

func TestArchiveMaxBytesNonPositiveWhenCapacityTooSmall(t *testing.T) {
	assert.LessOrEqual(t, archiveMaxBytes(reservedBlocks, []string{"/a"}, 0), int64(0))
}
