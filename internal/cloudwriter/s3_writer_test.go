package cloudwriter

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	bucket, key string
	body        []byte
	calls       int
	err         error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func TestS3WriterUploadsOnClose(t *testing.T) {
	client := &fakeS3{}
	factory := NewS3WriterFactoryWithClient(client)

	w, err := factory.NewWriter(context.Background(), "results", "recommendations/ranked_results/data.parquet")
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if _, err := w.Write([]byte("PAR1")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := w.Write([]byte("-body")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("uploaded before Close")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if client.bucket != "results" || client.key != "recommendations/ranked_results/data.parquet" {
		t.Errorf("uploaded to %s/%s", client.bucket, client.key)
	}
	if string(client.body) != "PAR1-body" {
		t.Errorf("body = %q", client.body)
	}

	if err := w.Close(); err != nil || client.calls != 1 {
		t.Errorf("second Close: err=%v calls=%d", err, client.calls)
	}
	if _, err := w.Write([]byte("late")); err == nil {
		t.Error("expected write after close to fail")
	}
}

func TestS3WriterReportsUploadFailure(t *testing.T) {
	boom := errors.New("access denied")
	factory := NewS3WriterFactoryWithClient(&fakeS3{err: boom})

	w, err := factory.NewWriter(context.Background(), "results", "k")
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.Close(); !errors.Is(err, boom) {
		t.Fatalf("Close error = %v, want wrapped %v", err, boom)
	}
}

func TestNewWriterRequiresBucket(t *testing.T) {
	factory := NewS3WriterFactoryWithClient(&fakeS3{})
	if _, err := factory.NewWriter(context.Background(), "", "k"); err == nil {
		t.Fatal("expected an error for an empty bucket")
	}
}
