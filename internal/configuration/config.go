package configuration

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"inventorytracker/internal/logger"
	"inventorytracker/internal/misc"
)

type Config struct {
	ServerAddress     string
	DatabaseURI       string
	LogLevel          logger.Level
	LogToFile         bool
	UploadDir         string
	MaxUploadBytes    int64
	AllowedExtensions []string
	SeedSampleData    bool
}

type tomlConfig struct {
	ServerAddress     string   `toml:"server_address"`
	DatabaseURI       string   `toml:"database_uri"`
	LogLevel          string   `toml:"log_level"`
	LogToFile         bool     `toml:"log_to_file"`
	UploadDir         string   `toml:"upload_dir"`
	MaxUploadBytes    int64    `toml:"max_upload_bytes"`
	AllowedExtensions []string `toml:"allowed_extensions"`
	SeedSampleData    bool     `toml:"seed_sample_data"`
}

// GetConfig reads the TOML config at path. The MONGODB_URI environment
// variable overrides database_uri when set.
func GetConfig(path string) (*Config, error) {
	var tc tomlConfig
	_, err := toml.DecodeFile(path, &tc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode toml file with path: %s", path)
	}

	if tc.ServerAddress == "" {
		tc.ServerAddress = "localhost:8888"
	}

	if uri := os.Getenv("MONGODB_URI"); uri != "" {
		tc.DatabaseURI = uri
	}
	if tc.DatabaseURI == "" {
		tc.DatabaseURI = "mongodb://localhost:27017"
	}

	if tc.LogLevel == "" {
		tc.LogLevel = "INFO"
	}
	logLevel, err := logger.ParseLevel(tc.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse log_level: %s", tc.LogLevel)
	}

	if tc.UploadDir == "" {
		tc.UploadDir = "uploads"
	}

	if tc.MaxUploadBytes == 0 {
		tc.MaxUploadBytes = 10 << 20
	}
	maxUploadBytes := misc.Max(tc.MaxUploadBytes, int64(1<<20))

	if len(tc.AllowedExtensions) == 0 {
		tc.AllowedExtensions = []string{".xlsx", ".xls"}
	}
	exts := make([]string, 0, len(tc.AllowedExtensions))
	for _, ext := range tc.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		return nil, errors.New("allowed_extensions contains no usable entries")
	}

	return &Config{
		ServerAddress:     tc.ServerAddress,
		DatabaseURI:       tc.DatabaseURI,
		LogLevel:          logLevel,
		LogToFile:         tc.LogToFile,
		UploadDir:         tc.UploadDir,
		MaxUploadBytes:    maxUploadBytes,
		AllowedExtensions: exts,
		SeedSampleData:    tc.SeedSampleData,
	}, nil
}
