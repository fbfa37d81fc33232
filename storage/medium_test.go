package storage_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/chunkarena/memutils"
	"github.com/vkngwrapper/chunkarena/storage"
)

func exerciseMedium(t *testing.T, medium storage.Medium) {
	require.Equal(t, 8, medium.Capacity())
	require.Equal(t, 2, medium.Stride())

	err := medium.WriteRange(1, []byte{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	data, err := medium.ReadRange(0, 5)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 1, 2, 3, 4, 5, 6, 0, 0}, data)

	// Overlapping copy toward the start
	err = medium.CopyRange(1, 0, 3)
	require.NoError(t, err)

	data, err = medium.ReadRange(0, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6, 5, 6}, data)

	// Overlapping copy toward the end
	err = medium.CopyRange(0, 1, 3)
	require.NoError(t, err)

	data, err = medium.ReadRange(0, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 1, 2, 3, 4, 5, 6}, data)

	err = medium.FillRange(1, 2, memutils.UninitializedFillPattern)
	require.NoError(t, err)

	data, err = medium.ReadRange(0, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 0xFF, 0xFF, 0xFF, 0xFF, 5, 6}, data)

	// Returned slices are copies
	data[0] = 99
	data, err = medium.ReadRange(0, 1)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, data)
}

func exerciseMediumBounds(t *testing.T, medium storage.Medium) {
	_, err := medium.ReadRange(7, 2)
	require.ErrorIs(t, err, memutils.ErrInvalidSize)

	_, err = medium.ReadRange(-1, 1)
	require.ErrorIs(t, err, memutils.ErrInvalidSize)

	err = medium.WriteRange(6, []byte{1, 2, 3, 4, 5, 6})
	require.ErrorIs(t, err, memutils.ErrInvalidSize)

	err = medium.WriteRange(0, []byte{1, 2, 3})
	require.ErrorIs(t, err, memutils.ErrSizeMismatch)

	err = medium.CopyRange(0, 6, 3)
	require.ErrorIs(t, err, memutils.ErrInvalidSize)

	err = medium.FillRange(4, 5, 0)
	require.ErrorIs(t, err, memutils.ErrInvalidSize)
}

func exerciseMediumRelease(t *testing.T, medium storage.Medium) {
	require.NoError(t, medium.Release())
	require.ErrorIs(t, medium.Release(), memutils.ErrReleased)

	_, err := medium.ReadRange(0, 1)
	require.ErrorIs(t, err, memutils.ErrReleased)

	err = medium.WriteRange(0, []byte{1, 2})
	require.ErrorIs(t, err, memutils.ErrReleased)

	err = medium.CopyRange(0, 1, 1)
	require.ErrorIs(t, err, memutils.ErrReleased)

	err = medium.FillRange(0, 1, 0)
	require.ErrorIs(t, err, memutils.ErrReleased)
}

func TestHeapMedium(t *testing.T) {
	medium, err := storage.NewHeapMedium(8, 2)
	require.NoError(t, err)

	exerciseMedium(t, medium)
	exerciseMediumBounds(t, medium)
	exerciseMediumRelease(t, medium)
}

func TestHeapMediumInvalidSize(t *testing.T) {
	_, err := storage.NewHeapMedium(0, 2)
	require.ErrorIs(t, err, memutils.ErrInvalidSize)

	_, err = storage.NewHeapMedium(8, -1)
	require.ErrorIs(t, err, memutils.ErrInvalidSize)
}

func TestNewMediumUnknownKind(t *testing.T) {
	_, err := storage.NewMedium(storage.Kind(12), 8, 2)
	require.Error(t, err)
}

func TestKindString(t *testing.T) {
	require.Equal(t, "KindHeap", storage.KindHeap.String())
	require.Equal(t, "KindMapped", storage.KindMapped.String())
	require.Equal(t, "RoleRead", storage.RoleRead.String())
	require.Equal(t, "RoleWrite", storage.RoleWrite.String())
}
