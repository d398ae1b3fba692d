package adapter

import "context"

// MediaFetcher resolves an opaque transport file handle to bytes on local
// disk. The returned path is unique per call so concurrent jobs never share
// a scratch file. Failures map to domain.ErrFetchFailed.
type MediaFetcher interface {
	Fetch(ctx context.Context, fileID string) (localPath string, err error)
}
