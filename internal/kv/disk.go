package kv

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/2beens/trainlog/internal/telemetry/tracing"
	"github.com/2beens/trainlog/pkg"

	"go.opentelemetry.io/otel/attribute"
)

var _ Store = (*DiskStore)(nil)

const diskEntrySuffix = ".kv"

// DiskStore keeps every key in its own file under rootPath.
type DiskStore struct {
	rootPath string
	mutex    sync.RWMutex
}

func NewDiskStore(rootPath string) (*DiskStore, error) {
	if rootPath == "" {
		return nil, errors.New("root path cannot be empty")
	}
	if err := pkg.EnsureDir(rootPath); err != nil {
		return nil, fmt.Errorf("ensure root dir: %w", err)
	}
	return &DiskStore{
		rootPath: rootPath,
	}, nil
}

func (s *DiskStore) entryPath(key string) string {
	return filepath.Join(s.rootPath, url.PathEscape(key)+diskEntrySuffix)
}

func (s *DiskStore) Get(ctx context.Context, key string) (_ string, _ bool, err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "kv.disk.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("key", key))

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	content, err := os.ReadFile(s.entryPath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read entry: %w", err)
	}
	return string(content), true, nil
}

// Set writes into a temp file first and renames it over the entry,
// so readers never observe a half written value.
func (s *DiskStore) Set(ctx context.Context, key, value string) (err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "kv.disk.set")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("key", key))

	if key == "" {
		return ErrEmptyKey
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	tmpFile, err := os.CreateTemp(s.rootPath, "entry-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.WriteString(value); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.entryPath(key)); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (s *DiskStore) Remove(ctx context.Context, key string) (err error) {
	_, span := tracing.GlobalTracer.Start(ctx, "kv.disk.remove")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := os.Remove(s.entryPath(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove entry: %w", err)
	}
	return nil
}
