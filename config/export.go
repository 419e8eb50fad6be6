package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ExportConfig selects the tabular export written after a run.
type ExportConfig struct {
	// Path of the export file. Empty disables the export.
	Path string `json:"path"`
	// Format is csv, json or parquet. It defaults to the path extension.
	Format string   `json:"format"`
	S3     S3Config `json:"s3"`
	// Chart is an optional HTML page with the load curves of the run.
	Chart string `json:"chart"`
}

// S3Config uploads the export file when Bucket is set.
type S3Config struct {
	Bucket       string `json:"bucket"`
	Key          string `json:"key"`
	Region       string `json:"region"`
	Endpoint     string `json:"endpoint"`
	UsePathStyle bool   `json:"use_path_style"`
}

// Enabled reports whether an upload is configured.
func (c S3Config) Enabled() bool { return c.Bucket != "" }

func (c *ExportConfig) SetDefaults() {
	if c.Format == "" && c.Path != "" {
		switch strings.ToLower(filepath.Ext(c.Path)) {
		case ".json":
			c.Format = "json"
		case ".parquet":
			c.Format = "parquet"
		default:
			c.Format = "csv"
		}
	}
	if c.S3.Enabled() && c.S3.Key == "" && c.Path != "" {
		c.S3.Key = filepath.Base(c.Path)
	}
}

func (c ExportConfig) Validate() error {
	if c.Path == "" {
		if c.S3.Enabled() {
			return fmt.Errorf("s3 upload requires a path")
		}
		return nil
	}
	switch c.Format {
	case "csv", "json", "parquet":
	default:
		return fmt.Errorf("unknown format %s", c.Format)
	}
	return nil
}
