package delivery

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dln-law/payments-portal/internal/config"
	"github.com/dln-law/payments-portal/pkg/utils"
)

type fakeS3 struct {
	putObject func(ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error)
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return f.putObject(ctx, in)
}

func TestLocalPut(t *testing.T) {
	sink := NewLocal(utils.NewFileManager(t.TempDir()))

	res, err := sink.Put(context.Background(), "payment_7.csv", "text/csv", []byte("doc"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	data, err := os.ReadFile(res.Location)
	if err != nil || string(data) != "doc" {
		t.Errorf("ReadFile(%s) = %q, %v", res.Location, data, err)
	}
}

func TestS3Put(t *testing.T) {
	var got struct {
		bucket, key, contentType, body string
	}
	client := &fakeS3{putObject: func(_ context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		got.bucket = *in.Bucket
		got.key = *in.Key
		got.contentType = *in.ContentType
		b, _ := io.ReadAll(in.Body)
		got.body = string(b)
		return &s3.PutObjectOutput{}, nil
	}}

	sink := NewS3WithClient(client, S3Config{Bucket: "office-exports", Prefix: "/payments/", PublicBaseURL: "https://files.example.com/"})
	sink.now = func() time.Time { return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) }

	res, err := sink.Put(context.Background(), "payment_9.csv", "text/csv;charset=utf-8", []byte("doc"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if got.bucket != "office-exports" || got.contentType != "text/csv;charset=utf-8" || got.body != "doc" {
		t.Errorf("PutObject input = %+v", got)
	}
	if !strings.HasPrefix(got.key, "payments/2026/10/19/") || !strings.HasSuffix(got.key, "-payment_9.csv") {
		t.Errorf("key = %q", got.key)
	}
	if res.Key != got.key || res.Location != "https://files.example.com/"+got.key {
		t.Errorf("Put() = %+v", res)
	}
}

func TestS3PutError(t *testing.T) {
	client := &fakeS3{putObject: func(context.Context, *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return nil, errors.New("access denied")
	}}
	sink := NewS3WithClient(client, S3Config{Bucket: "b"})

	if _, err := sink.Put(context.Background(), "payment_1.csv", "text/csv", nil); err == nil {
		t.Error("Put() error = nil")
	}
}

func TestFromConfig(t *testing.T) {
	sink, err := FromConfig(context.Background(), config.ExportConfig{Delivery: config.DeliveryLocal, Dir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sink.(*Local); !ok {
		t.Errorf("FromConfig(local) = %T", sink)
	}

	if _, err := FromConfig(context.Background(), config.ExportConfig{Delivery: "ftp"}); err == nil {
		t.Error("FromConfig(ftp) error = nil")
	}
}

func TestFromConfigLocalDateSubdirs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	sink, err := FromConfig(context.Background(), config.ExportConfig{
		Delivery:    config.DeliveryLocal,
		Dir:         dir,
		DateSubdirs: true,
	})
	if err != nil {
		t.Fatalf("FromConfig() error = %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("export dir not created: %v", err)
	}

	res, err := sink.Put(context.Background(), "payment_9.csv", "text/csv", []byte("doc"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	now := time.Now()
	want := filepath.Join(dir, now.Format("2006"), now.Format("01"), now.Format("02"), "payment_9.csv")
	if res.Location != want {
		t.Errorf("Location = %q, want %q", res.Location, want)
	}
}

func TestFromConfigLocalUnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := FromConfig(context.Background(), config.ExportConfig{Delivery: config.DeliveryLocal, Dir: file}); err == nil {
		t.Error("FromConfig() with a file as export dir error = nil")
	}
}
