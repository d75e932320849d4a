package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

func TestParseLocator(t *testing.T) {
	tests := []struct {
		in      string
		want    Locator
		wantErr bool
	}{
		{in: "s3://uploads/incoming/q.csv", want: Locator{Scheme: "s3", Namespace: "uploads", Key: "incoming/q.csv"}},
		{in: "FILE://local/a.csv", want: Locator{Scheme: "file", Namespace: "local", Key: "a.csv"}},
		{in: "", wantErr: true},
		{in: "uploads/q.csv", wantErr: true},
		{in: "s3:///q.csv", wantErr: true},
		{in: "s3://uploads", wantErr: true},
		{in: "s3://uploads/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLocator(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLocator) {
					t.Fatalf("err = %v, want ErrInvalidLocator", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLocator() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseLocator() = %+v, want %+v", got, tt.want)
			}
			if got.String() != tt.want.String() {
				t.Errorf("String() = %q", got.String())
			}
		})
	}

	loc, _ := ParseLocator("s3://b/dir/file.csv")
	if loc.Base() != "file.csv" {
		t.Errorf("Base() = %q", loc.Base())
	}
}

func TestFSStore(t *testing.T) {
	ctx := context.Background()
	store := NewFSStore(t.TempDir())
	loc := Locator{Scheme: SchemeFile, Namespace: "bucket-processed", Key: "processed/job/out.json"}

	if _, err := store.Get(ctx, loc); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() err = %v, want ErrNotFound", err)
	}

	if err := store.Put(ctx, loc, []byte(`{"ok":true}`), "application/json"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := store.Get(ctx, loc)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != `{"ok":true}` {
		t.Errorf("Get() = %s", got)
	}

	entries, _ := os.ReadDir(filepath.Join(store.Root, "bucket-processed", "processed", "job"))
	if len(entries) != 1 {
		t.Errorf("expected only the final file, found %d entries", len(entries))
	}

	escape := Locator{Scheme: SchemeFile, Namespace: "..", Key: "etc/passwd"}
	if _, err := store.Get(ctx, escape); !errors.Is(err, ErrInvalidLocator) {
		t.Errorf("Get() err = %v, want ErrInvalidLocator", err)
	}
}

func TestMemStoreAndMux(t *testing.T) {
	ctx := context.Background()
	mem := NewMemStore()
	mux := NewMux()
	mux.Handle("mem", mem)

	loc := Locator{Scheme: "mem", Namespace: "ns", Key: "k"}
	if err := mux.Put(ctx, loc, []byte("v"), "text/plain"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := mux.Get(ctx, loc)
	if err != nil || string(got) != "v" {
		t.Fatalf("Get() = %q, %v", got, err)
	}
	if obj, ok := mem.Object("mem://ns/k"); !ok || obj.ContentType != "text/plain" {
		t.Errorf("Object() = %+v, %v", obj, ok)
	}

	if _, err := mux.Get(ctx, Locator{Scheme: "gs", Namespace: "ns", Key: "k"}); !errors.Is(err, ErrInvalidLocator) {
		t.Errorf("Get() err = %v, want ErrInvalidLocator", err)
	}
	if s := mux.Schemes(); len(s) != 1 || s[0] != "mem" {
		t.Errorf("Schemes() = %v", s)
	}

	mem.PutErr = errors.New("disk full")
	if err := mux.Put(ctx, loc, []byte("v"), ""); !errors.Is(err, ErrWrite) {
		t.Errorf("Put() err = %v, want ErrWrite", err)
	}
}

type fakeS3 struct {
	objects map[string][]byte
	getErr  error
	putErr  error
	lastPut *s3.PutObjectInput
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, _ := io.ReadAll(in.Body)
	f.objects[*in.Bucket+"/"+*in.Key] = data
	f.lastPut = in
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{"uploads/q.csv": []byte("pergunta\nA\n")}}
	store := NewS3Store(fake)

	got, err := store.Get(ctx, Locator{Scheme: SchemeS3, Namespace: "uploads", Key: "q.csv"})
	if err != nil || string(got) != "pergunta\nA\n" {
		t.Fatalf("Get() = %q, %v", got, err)
	}

	if _, err := store.Get(ctx, Locator{Scheme: SchemeS3, Namespace: "uploads", Key: "missing.csv"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() err = %v, want ErrNotFound", err)
	}

	out := Locator{Scheme: SchemeS3, Namespace: "uploads-processed", Key: "processed/j/gemini_output.json"}
	if err := store.Put(ctx, out, []byte("{}"), "application/json"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if *fake.lastPut.ContentType != "application/json" {
		t.Errorf("ContentType = %q", *fake.lastPut.ContentType)
	}

	fake.getErr = &smithy.GenericAPIError{Code: "AccessDenied", Message: "nope"}
	if _, err := store.Get(ctx, out); !errors.Is(err, ErrAccessDenied) {
		t.Errorf("Get() err = %v, want ErrAccessDenied", err)
	}

	fake.putErr = errors.New("timeout")
	if err := store.Put(ctx, out, []byte("{}"), ""); !errors.Is(err, ErrWrite) {
		t.Errorf("Put() err = %v, want ErrWrite", err)
	}
}
