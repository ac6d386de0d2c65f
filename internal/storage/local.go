package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalMover stores objects below Root on the local filesystem.
type LocalMover struct {
	Root string
}

func NewLocalMover(root string) *LocalMover {
	return &LocalMover{Root: root}
}

func (m *LocalMover) abs(key string) (string, error) {
	k, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(m.Root, filepath.FromSlash(k)), nil
}

func (m *LocalMover) Put(ctx context.Context, key string, body io.Reader, _ int64, _ string) error {
	dst, err := m.abs(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("storage: create %s: %w", key, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return fmt.Errorf("storage: write %s: %w", key, err)
	}
	return f.Close()
}

func (m *LocalMover) Move(ctx context.Context, from, to string) error {
	src, err := m.abs(from)
	if err != nil {
		return err
	}
	dst, err := m.abs(to)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}
	if err := os.Rename(src, dst); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("storage: %s: %w", from, os.ErrNotExist)
		}
		return fmt.Errorf("storage: move %s: %w", from, err)
	}
	return nil
}

func (m *LocalMover) Delete(ctx context.Context, key string) error {
	p, err := m.abs(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}
