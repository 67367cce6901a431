package sink

import (
	"bytes"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Writer is a runner.Sink backed by s3manager, for configurations that
// write output straight to s3:// paths without going through a local
// filesystem at all — an alternative to routing through Writer+file.Create
// (bamprovider's tests register an s3 file.Implementation the same way;
// this is the direct-SDK path when no such registration is desired).
//
// S3 has no native append, so Write only appends to an in-memory buffer per
// path; Close uploads each path's accumulated bytes once.
type S3Writer struct {
	sess     *session.Session
	uploader *s3manager.Uploader

	mu  sync.Mutex
	buf map[string]*bytes.Buffer
}

// NewS3Writer builds an S3Writer from the given session options, e.g.
// session.Options{} to use the default credential chain and region
// discovery, the way bamprovider's tests construct their s3file provider.
func NewS3Writer(opts session.Options) (*S3Writer, error) {
	sess, err := session.NewSessionWithOptions(opts)
	if err != nil {
		return nil, err
	}
	return &S3Writer{
		sess:     sess,
		uploader: s3manager.NewUploader(sess),
		buf:      make(map[string]*bytes.Buffer),
	}, nil
}

// Write appends data to path's in-memory buffer; nothing is uploaded until
// Close.
func (w *S3Writer) Write(path string, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.buf[path]
	if !ok {
		b = &bytes.Buffer{}
		w.buf[path] = b
	}
	b.Write(data)
	return nil
}

// Close uploads every buffered path as one S3 object each.
func (w *S3Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, b := range w.buf {
		bucket, key := splitS3Path(path)
		if _, err := w.uploader.Upload(&s3manager.UploadInput{
			Bucket: &bucket,
			Key:    &key,
			Body:   bytes.NewReader(b.Bytes()),
		}); err != nil {
			return err
		}
	}
	return nil
}

// splitS3Path parses "s3://bucket/key/with/slashes" into (bucket, key),
// mirroring the minimal parsing cutadapt-family CLIs do for blob
// destinations.
func splitS3Path(path string) (bucket, key string) {
	trimmed := strings.TrimPrefix(path, "s3://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
