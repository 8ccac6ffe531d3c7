// Package delivery hands finished export documents to their destination:
// the local export directory or an S3 bucket.
package delivery

import (
	"context"
	"fmt"

	"github.com/dln-law/payments-portal/internal/config"
	"github.com/dln-law/payments-portal/pkg/utils"
)

// Result reports where a document was delivered.
type Result struct {
	// Location is a file path or object URL.
	Location string
	// Key is the object key for remote sinks.
	Key string
}

// Sink delivers an export artifact.
type Sink interface {
	Put(ctx context.Context, name, contentType string, body []byte) (Result, error)
}

// Local writes exports into a directory through a FileManager.
type Local struct {
	files *utils.FileManager
}

func NewLocal(files *utils.FileManager) *Local {
	return &Local{files: files}
}

func (l *Local) Put(_ context.Context, name, _ string, body []byte) (Result, error) {
	p, err := l.files.WriteExport(name, body)
	if err != nil {
		return Result{}, err
	}
	return Result{Location: p}, nil
}

func (l *Local) String() string { return fmt.Sprintf("local(%s)", l.files.ExportDir) }

// FromConfig builds the configured sink.
func FromConfig(ctx context.Context, cfg config.ExportConfig) (Sink, error) {
	switch cfg.Delivery {
	case "", config.DeliveryLocal:
		files := utils.NewFileManager(cfg.Dir)
		files.UseTimestampSubdirs = cfg.DateSubdirs
		if err := files.EnsureDirectories(); err != nil {
			return nil, err
		}
		return NewLocal(files), nil
	case config.DeliveryS3:
		return NewS3(ctx, S3Config{
			Region:        cfg.S3Region,
			Bucket:        cfg.S3Bucket,
			Prefix:        cfg.S3Prefix,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
	default:
		return nil, fmt.Errorf("unknown export delivery: %s", cfg.Delivery)
	}
}
