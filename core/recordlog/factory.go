package recordlog

import (
	"fmt"

	"github.com/kilianp07/baysim/core/factory"
)

var registry = factory.NewRegistry[Writer]()

// RegisterWriter adds a writer factory under name.
func RegisterWriter(name string, f factory.Factory[Writer]) error {
	return registry.Register(name, f)
}

// WriterTypes lists the registered writer types.
func WriterTypes() []string { return registry.Types() }

// NewWriter creates a writer from its module configuration.
func NewWriter(cfg factory.ModuleConfig) (Writer, error) {
	return registry.Create(cfg)
}

// NewWriters creates every configured writer. Writers created before a
// failure are closed.
func NewWriters(cfgs []factory.ModuleConfig) (*MultiWriter, error) {
	var ws []Writer
	for _, c := range cfgs {
		w, err := NewWriter(c)
		if err != nil {
			_ = NewMultiWriter(ws...).Close()
			return nil, err
		}
		ws = append(ws, w)
	}
	return NewMultiWriter(ws...), nil
}

// Open returns a queryable store for the local backends.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "jsonl":
		return NewJSONLStore(path)
	case "rotating_jsonl":
		return NewRotatingJSONLStore(path, 100, 0, 0)
	case "sqlite":
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("backend %q is not queryable", backend)
	}
}

type fileConf struct {
	Path string `json:"path"`
}

type rotatingConf struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

func decodePath(conf map[string]any) (string, error) {
	var c fileConf
	if err := factory.Decode(conf, &c); err != nil {
		return "", err
	}
	if c.Path == "" {
		return "", fmt.Errorf("path required")
	}
	return c.Path, nil
}

func init() {
	_ = RegisterWriter("jsonl", func(conf map[string]any) (Writer, error) {
		p, err := decodePath(conf)
		if err != nil {
			return nil, err
		}
		return NewJSONLStore(p)
	})
	_ = RegisterWriter("sqlite", func(conf map[string]any) (Writer, error) {
		p, err := decodePath(conf)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(p)
	})
	_ = RegisterWriter("rotating_jsonl", func(conf map[string]any) (Writer, error) {
		c := rotatingConf{MaxSizeMB: 100}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, fmt.Errorf("path required")
		}
		return NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	})
}
