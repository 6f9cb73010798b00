package storage_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rohmanhakim/scores-fixture/internal/metadata"
	"github.com/rohmanhakim/scores-fixture/internal/storage"
	"github.com/rohmanhakim/scores-fixture/pkg/fileutil"
	"github.com/rohmanhakim/scores-fixture/pkg/hashutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const h2hName = "RES_ByRSC_H2H~comp=OG2024~disc=FBL~rscResult=FBLMTEAM11------------FNL-000100--~lang=ENG.json"

func TestLocalSink_Write_Success(t *testing.T) {
	tests := []struct {
		name     string
		hashAlgo hashutil.HashAlgo
	}{
		{name: "successful write with SHA256", hashAlgo: hashutil.HashAlgoSHA256},
		{name: "successful write with BLAKE3", hashAlgo: hashutil.HashAlgoBLAKE3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "tmp")
			mockSink := &metadataSinkMock{}
			sink := storage.NewLocalSink(mockSink)
			body := []byte(`{"results": {}}`)

			result, err := sink.Write(dir, h2hName, body, tt.hashAlgo)

			require.Nil(t, err)
			assert.Equal(t, h2hName, result.Filename())
			assert.Equal(t, filepath.Join(dir, h2hName), result.Path())
			assert.Equal(t, len(body), result.Size())

			wantHash, hashErr := hashutil.Digest(body, tt.hashAlgo)
			require.NoError(t, hashErr)
			assert.Equal(t, wantHash, result.ContentHash())

			onDisk, readErr := os.ReadFile(result.Path())
			require.NoError(t, readErr)
			assert.Equal(t, body, onDisk)

			_, statErr := os.Stat(result.Path() + fileutil.TempSuffix)
			assert.True(t, os.IsNotExist(statErr), "temporary file must be renamed away")

			assert.True(t, mockSink.recordArtifactCalled)
			assert.Equal(t, metadata.ArtifactResource, mockSink.recordArtifactKind)
			assert.Equal(t, result.Path(), mockSink.recordArtifactPath)
			assert.False(t, mockSink.recordErrorCalled)
		})
	}
}

func TestLocalSink_Write_NormalizesFilename(t *testing.T) {
	dir := t.TempDir()
	sink := storage.NewLocalSink(&metadataSinkMock{})

	result, err := sink.Write(dir, "GLO_EventGames~comp=OG2024 (2).json", []byte(`{}`), hashutil.HashAlgoBLAKE3)

	require.Nil(t, err)
	assert.Equal(t, "GLO_EventGames~comp=OG2024.json", result.Filename())
}

func TestLocalSink_Write_OverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	sink := storage.NewLocalSink(&metadataSinkMock{})

	_, err := sink.Write(dir, h2hName, []byte(`{"v": 1}`), hashutil.HashAlgoBLAKE3)
	require.Nil(t, err)
	result, err := sink.Write(dir, h2hName, []byte(`{"v": 2}`), hashutil.HashAlgoBLAKE3)
	require.Nil(t, err)

	onDisk, readErr := os.ReadFile(result.Path())
	require.NoError(t, readErr)
	assert.JSONEq(t, `{"v": 2}`, string(onDisk))
}

func TestLocalSink_Write_UnsupportedHash(t *testing.T) {
	mockSink := &metadataSinkMock{}
	sink := storage.NewLocalSink(mockSink)

	_, err := sink.Write(t.TempDir(), h2hName, []byte(`{}`), hashutil.HashAlgo("md5"))

	require.NotNil(t, err)
	var storageErr *storage.StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, storage.ErrCauseHashComputationFailed, storageErr.Cause)
	assert.True(t, mockSink.recordErrorCalled)
	assert.Equal(t, "storage", mockSink.recordErrorPackageName)
	assert.Equal(t, metadata.CauseUnknown, mockSink.recordErrorCause)
}

func TestLocalSink_Write_DirectoryIsAFile(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "tmp")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	mockSink := &metadataSinkMock{}
	sink := storage.NewLocalSink(mockSink)

	_, err := sink.Write(blocker, h2hName, []byte(`{}`), hashutil.HashAlgoBLAKE3)

	require.NotNil(t, err)
	var storageErr *storage.StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, storage.ErrCausePathError, storageErr.Cause)
	assert.Equal(t, "LocalSink.Write", mockSink.recordErrorAction)
	assert.Equal(t, metadata.CauseStorageFailure, mockSink.recordErrorCause)
}

func TestLocalSink_Locate(t *testing.T) {
	tests := []struct {
		name      string
		onDisk    []string
		wantFound bool
		wantName  string
	}{
		{name: "exact name", onDisk: []string{h2hName}, wantFound: true, wantName: h2hName},
		{
			name:      "duplicate download suffix",
			onDisk:    []string{"RES_ByRSC_H2H~comp=OG2024~disc=FBL~rscResult=FBLMTEAM11------------FNL-000100--~lang=ENG (1).json"},
			wantFound: true,
			wantName:  "RES_ByRSC_H2H~comp=OG2024~disc=FBL~rscResult=FBLMTEAM11------------FNL-000100--~lang=ENG (1).json",
		},
		{
			name: "exact wins over suffixed",
			onDisk: []string{
				"RES_ByRSC_H2H~comp=OG2024~disc=FBL~rscResult=FBLMTEAM11------------FNL-000100--~lang=ENG (1).json",
				h2hName,
			},
			wantFound: true,
			wantName:  h2hName,
		},
		{name: "partial download is ignored", onDisk: []string{h2hName + fileutil.TempSuffix}, wantFound: false},
		{name: "other unit only", onDisk: []string{"RES_ByRSC_H2H~comp=OG2024~disc=FBL~rscResult=OTHER~lang=ENG.json"}, wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, name := range tt.onDisk {
				require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(`{}`), 0644))
			}
			sink := storage.NewLocalSink(&metadataSinkMock{})

			path, found, err := sink.Locate(dir, h2hName)

			require.Nil(t, err)
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, filepath.Join(dir, tt.wantName), path)
			}
		})
	}
}

func TestLocalSink_Locate_MissingDirectory(t *testing.T) {
	sink := storage.NewLocalSink(&metadataSinkMock{})

	_, found, err := sink.Locate(filepath.Join(t.TempDir(), "absent"), h2hName)

	require.Nil(t, err)
	assert.False(t, found)
}

func TestLocalSink_Read(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, h2hName)
	require.NoError(t, os.WriteFile(path, []byte(`{"a": 1}`), 0644))
	mockSink := &metadataSinkMock{}
	sink := storage.NewLocalSink(mockSink)

	data, err := sink.Read(path)
	require.Nil(t, err)
	assert.JSONEq(t, `{"a": 1}`, string(data))

	_, err = sink.Read(filepath.Join(dir, "missing.json"))
	require.NotNil(t, err)
	var storageErr *storage.StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, storage.ErrCauseReadFailure, storageErr.Cause)
	assert.Equal(t, "LocalSink.Read", mockSink.recordErrorAction)
}
