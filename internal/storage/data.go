package storage

// Persistence

type WriteResult struct {
	filename    string // normalized local filename
	path        string
	contentHash string // "algo:hex"
	size        int
}

func NewWriteResult(
	filename string,
	path string,
	contentHash string,
	size int,
) WriteResult {
	return WriteResult{
		filename:    filename,
		path:        path,
		contentHash: contentHash,
		size:        size,
	}
}

func (w *WriteResult) Filename() string {
	return w.filename
}

func (w *WriteResult) Path() string {
	return w.path
}

func (w *WriteResult) ContentHash() string {
	return w.contentHash
}

func (w *WriteResult) Size() int {
	return w.size
}
