package storage

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rohmanhakim/scores-fixture/internal/metadata"
	"github.com/rohmanhakim/scores-fixture/internal/resource"
	"github.com/rohmanhakim/scores-fixture/pkg/failure"
	"github.com/rohmanhakim/scores-fixture/pkg/fileutil"
	"github.com/rohmanhakim/scores-fixture/pkg/hashutil"
)

/*
Responsibilities
- Persist fetched resources verbatim into the working directory
- Locate previously stored resources by normalized filename
- Read stored resources back for parsing and assembly

Output Characteristics
- Flat directory, one file per resource
- Atomic writes (temporary file then rename)
- Overwrite-safe reruns

Both the fetcher (skip check) and the assembler (reads) go through Locate, so
a browser-style duplicate like "X (1).json" is seen as "X.json" by both.
*/
type Sink interface {
	Write(
		destDir string,
		filename string,
		body []byte,
		hashAlgo hashutil.HashAlgo,
	) (WriteResult, failure.ClassifiedError)
	Locate(destDir string, filename string) (string, bool, failure.ClassifiedError)
	Read(path string) ([]byte, failure.ClassifiedError)
}

type LocalSink struct {
	metadataSink metadata.MetadataSink
}

func NewLocalSink(
	metadataSink metadata.MetadataSink,
) LocalSink {
	return LocalSink{
		metadataSink: metadataSink,
	}
}

func (s *LocalSink) Write(
	destDir string,
	filename string,
	body []byte,
	hashAlgo hashutil.HashAlgo,
) (WriteResult, failure.ClassifiedError) {
	writeResult, err := write(destDir, filename, body, hashAlgo)
	if err != nil {
		s.recordError("LocalSink.Write", err)
		return WriteResult{}, err
	}
	s.metadataSink.RecordArtifact(
		metadata.ArtifactResource,
		writeResult.Path(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWritePath, writeResult.Path()),
			metadata.NewAttr(metadata.AttrResource, writeResult.Filename()),
			metadata.NewAttr(metadata.AttrContentHash, writeResult.ContentHash()),
		},
	)
	return writeResult, nil
}

// Locate finds the stored file for filename, accepting duplicate-download
// suffixes. A missing directory is not an error.
func (s *LocalSink) Locate(destDir string, filename string) (string, bool, failure.ClassifiedError) {
	path, found, err := fileutil.FindNormalized(destDir, resource.NormalizeFilename(filename), resource.NormalizeFilename)
	if err != nil {
		storageErr := fromFileError(err, ErrCauseReadFailure, destDir)
		s.recordError("LocalSink.Locate", storageErr)
		return "", false, storageErr
	}
	return path, found, nil
}

func (s *LocalSink) Read(path string) ([]byte, failure.ClassifiedError) {
	data, err := os.ReadFile(path)
	if err != nil {
		storageErr := &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseReadFailure,
			Path:      path,
		}
		s.recordError("LocalSink.Read", storageErr)
		return nil, storageErr
	}
	return data, nil
}

func (s *LocalSink) recordError(action string, err *StorageError) {
	s.metadataSink.RecordError(
		time.Now(),
		"storage",
		action,
		mapStorageErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWritePath, err.Path),
		},
	)
}

func write(
	destDir string,
	filename string,
	body []byte,
	hashAlgo hashutil.HashAlgo,
) (WriteResult, *StorageError) {
	contentHash, err := hashutil.Digest(body, hashAlgo)
	if err != nil {
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseHashComputationFailed,
		}
	}

	if err := fileutil.EnsureDir(destDir); err != nil {
		return WriteResult{}, fromFileError(err, ErrCausePathError, destDir)
	}

	normalized := resource.NormalizeFilename(filename)
	fullPath := filepath.Join(destDir, normalized)
	if err := fileutil.WriteAtomic(fullPath, body); err != nil {
		return WriteResult{}, fromFileError(err, ErrCauseWriteFailure, fullPath)
	}

	return NewWriteResult(normalized, fullPath, contentHash, len(body)), nil
}

func fromFileError(err failure.ClassifiedError, cause StorageErrorCause, path string) *StorageError {
	var fileErr *fileutil.FileError
	if errors.As(err, &fileErr) {
		if fileErr.Retryable && cause == ErrCauseWriteFailure {
			// WriteAtomic only marks ENOSPC as retryable
			cause = ErrCauseDiskFull
		}
		return &StorageError{
			Message:   fileErr.Message,
			Retryable: fileErr.Retryable,
			Cause:     cause,
			Path:      fileErr.Path,
		}
	}
	return &StorageError{
		Message:   err.Error(),
		Retryable: false,
		Cause:     cause,
		Path:      path,
	}
}
