package storage_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/chunkarena/memutils"
	"github.com/vkngwrapper/chunkarena/storage"
	mock_storage "github.com/vkngwrapper/chunkarena/storage/mocks"
	"go.uber.org/mock/gomock"
)

func TestSwapBufferRoles(t *testing.T) {
	buffer, err := storage.New(storage.KindHeap, 4, 1, 2)
	require.NoError(t, err)
	defer func() { require.NoError(t, buffer.Release()) }()

	write, err := buffer.Buffer(storage.RoleWrite)
	require.NoError(t, err)
	require.NoError(t, write.WriteRange(0, []byte{7}))

	read, err := buffer.Buffer(storage.RoleRead)
	require.NoError(t, err)
	data, err := read.ReadRange(0, 1)
	require.NoError(t, err)
	require.Equal(t, []byte{0}, data)

	buffer.Swap()

	read, err = buffer.Buffer(storage.RoleRead)
	require.NoError(t, err)
	data, err = read.ReadRange(0, 1)
	require.NoError(t, err)
	require.Equal(t, []byte{7}, data)

	buffer.Swap()

	read, err = buffer.Buffer(storage.RoleRead)
	require.NoError(t, err)
	data, err = read.ReadRange(0, 1)
	require.NoError(t, err)
	require.Equal(t, []byte{0}, data)
}

func TestSwapBufferSingleMedium(t *testing.T) {
	buffer, err := storage.New(storage.KindHeap, 4, 1, 1)
	require.NoError(t, err)

	read, err := buffer.Buffer(storage.RoleRead)
	require.NoError(t, err)
	write, err := buffer.Buffer(storage.RoleWrite)
	require.NoError(t, err)
	require.Same(t, read, write)

	buffer.Swap()

	swappedRead, err := buffer.Buffer(storage.RoleRead)
	require.NoError(t, err)
	require.Same(t, read, swappedRead)
}

func TestSwapBufferUnknownRole(t *testing.T) {
	buffer, err := storage.New(storage.KindHeap, 4, 1, 2)
	require.NoError(t, err)

	_, err = buffer.Buffer(storage.Role(5))
	require.Error(t, err)
}

func TestSwapBufferInvalidCount(t *testing.T) {
	_, err := storage.New(storage.KindHeap, 4, 1, 0)
	require.ErrorIs(t, err, memutils.ErrInvalidSize)

	_, err = storage.NewSwapBuffer()
	require.ErrorIs(t, err, memutils.ErrInvalidSize)
}

func TestSwapBufferMismatchedMedia(t *testing.T) {
	first, err := storage.NewHeapMedium(4, 1)
	require.NoError(t, err)
	second, err := storage.NewHeapMedium(4, 2)
	require.NoError(t, err)

	_, err = storage.NewSwapBuffer(first, second)
	require.ErrorIs(t, err, memutils.ErrSizeMismatch)
}

func TestSwapBufferRangeOpsHitEveryBuffer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	media := []*mock_storage.MockMedium{
		mock_storage.NewMockMedium(ctrl),
		mock_storage.NewMockMedium(ctrl),
		mock_storage.NewMockMedium(ctrl),
	}

	var asMedia []storage.Medium
	for _, medium := range media {
		medium.EXPECT().Capacity().AnyTimes().Return(16)
		medium.EXPECT().Stride().AnyTimes().Return(4)
		medium.EXPECT().CopyRange(5, 2, 3).Return(nil)
		medium.EXPECT().FillRange(5, 3, memutils.UninitializedFillPattern).Return(nil)
		medium.EXPECT().Release().Return(nil)
		asMedia = append(asMedia, medium)
	}

	buffer, err := storage.NewSwapBuffer(asMedia...)
	require.NoError(t, err)

	require.NoError(t, buffer.CopyRange(5, 2, 3))
	require.NoError(t, buffer.FillRange(5, 3, memutils.UninitializedFillPattern))
	require.NoError(t, buffer.Release())
}

func TestSwapBufferCopyStopsAtFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	failure := errors.New("device lost")

	first := mock_storage.NewMockMedium(ctrl)
	second := mock_storage.NewMockMedium(ctrl)
	for _, medium := range []*mock_storage.MockMedium{first, second} {
		medium.EXPECT().Capacity().AnyTimes().Return(16)
		medium.EXPECT().Stride().AnyTimes().Return(4)
	}
	first.EXPECT().CopyRange(1, 0, 1).Return(failure)

	buffer, err := storage.NewSwapBuffer(first, second)
	require.NoError(t, err)

	err = buffer.CopyRange(1, 0, 1)
	require.ErrorIs(t, err, failure)
}

func TestSwapBufferReleaseContinuesPastFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	failure := errors.New("unmap failed")

	first := mock_storage.NewMockMedium(ctrl)
	second := mock_storage.NewMockMedium(ctrl)
	for _, medium := range []*mock_storage.MockMedium{first, second} {
		medium.EXPECT().Capacity().AnyTimes().Return(16)
		medium.EXPECT().Stride().AnyTimes().Return(4)
	}
	first.EXPECT().Release().Return(failure)
	second.EXPECT().Release().Return(nil)

	buffer, err := storage.NewSwapBuffer(first, second)
	require.NoError(t, err)

	err = buffer.Release()
	require.ErrorIs(t, err, failure)
}

func TestSwapBufferSnapshotRestore(t *testing.T) {
	buffer, err := storage.New(storage.KindHeap, 4, 1, 2)
	require.NoError(t, err)

	read, err := buffer.Buffer(storage.RoleRead)
	require.NoError(t, err)
	write, err := buffer.Buffer(storage.RoleWrite)
	require.NoError(t, err)

	require.NoError(t, read.WriteRange(0, []byte{1, 2, 3, 4}))
	require.NoError(t, write.WriteRange(0, []byte{5, 6, 7, 8}))

	snapshot, err := buffer.Snapshot(1, 2)
	require.NoError(t, err)
	require.Equal(t, [][]byte{{2, 3}, {6, 7}}, snapshot)

	require.NoError(t, buffer.CopyRange(2, 1, 2))
	require.NoError(t, buffer.Restore(1, snapshot))

	data, err := read.ReadRange(0, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, data)

	data, err = write.ReadRange(0, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{5, 6, 7, 8}, data)

	err = buffer.Restore(1, snapshot[:1])
	require.ErrorIs(t, err, memutils.ErrSizeMismatch)

	_, err = buffer.Snapshot(3, 2)
	require.ErrorIs(t, err, memutils.ErrInvalidSize)
}
