package models

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig(viper.New(), "")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Catalog.Source != "file" || cfg.Output.Format != "console" || cfg.Kafka.Topic != "ranked_results" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.QueryTimeout != 5*time.Second || cfg.ResultLimit != 10 {
		t.Errorf("timeout=%s limit=%d", cfg.QueryTimeout, cfg.ResultLimit)
	}
	w := cfg.Scoring.Weights
	if w.Distance != 0.35 || w.Rating != 0.25 || w.Keyword != 0.20 || w.Social != 0.20 {
		t.Errorf("weights = %+v", w)
	}
	if cfg.UserLocation != (Location{Lat: 42.2780, Lon: -83.7382}) {
		t.Errorf("user location = %v", cfg.UserLocation)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := writeFile(t, "foodmatch.yaml", `
catalog:
  source: postgres
database:
  url: postgres://campus@db:5432/food
  connect_timeout: 3s
output:
  format: parquet
  destination: cloud
  cloud_storage:
    bucket_name: campus-results
scoring:
  weights:
    distance: 0.5
    rating: 0.2
    keyword: 0.2
    social: 0.1
query_timeout: 750ms
`)
	t.Setenv("FOODMATCH_RESULT_LIMIT", "3")
	t.Setenv("FOODMATCH_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(viper.New(), path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Catalog.Source != "postgres" || cfg.Database.URL != "postgres://campus@db:5432/food" {
		t.Errorf("catalog/database = %+v / %+v", cfg.Catalog, cfg.Database)
	}
	if cfg.Database.ConnectTimeout != 3*time.Second || cfg.QueryTimeout != 750*time.Millisecond {
		t.Errorf("durations: connect=%s query=%s", cfg.Database.ConnectTimeout, cfg.QueryTimeout)
	}
	if cfg.Output.CloudStorage.BucketName != "campus-results" || cfg.Output.CloudStorage.Region != "us-east-1" {
		t.Errorf("cloud storage = %+v", cfg.Output.CloudStorage)
	}
	if cfg.Scoring.Weights.Distance != 0.5 || cfg.Scoring.Weights.Social != 0.1 {
		t.Errorf("weights = %+v", cfg.Scoring.Weights)
	}
	if cfg.ResultLimit != 3 || cfg.Log.Level != "debug" {
		t.Errorf("env overrides not applied: limit=%d level=%s", cfg.ResultLimit, cfg.Log.Level)
	}
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name, body, wantErr string
	}{
		{"catalog source", "catalog:\n  source: mongo\n", "catalog source"},
		{"output format", "output:\n  format: avro\n", "output format"},
		{"user location", "user_location:\n  lat: 120\n  lon: 0\n", "user location"},
		{"query timeout", "query_timeout: 0s\n", "query timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(viper.New(), writeFile(t, "foodmatch.yaml", tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigReadsHomeDotfile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	body := "result_limit: 7\nlog:\n  level: debug\n"
	if err := os.WriteFile(filepath.Join(home, ".foodmatch.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	// without the leading dot the file is not a default location
	if err := os.WriteFile(filepath.Join(home, "foodmatch.yaml"), []byte("result_limit: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(viper.New(), "")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ResultLimit != 7 || cfg.Log.Level != "debug" {
		t.Errorf("limit=%d level=%q, want 7 and debug from $HOME/.foodmatch.yaml", cfg.ResultLimit, cfg.Log.Level)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig(viper.New(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing explicit config file")
	}
}
