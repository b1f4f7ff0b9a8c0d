package config_test

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"seoforge/internal/config"
)

func TestLoadConfig(t *testing.T) {
	os.Setenv("DB_HOST", "test-host")
	defer os.Unsetenv("DB_HOST")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "test-host", cfg.DBHost)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 0.7, cfg.EmbedMinSimilarity)
	assert.Equal(t, 0.3, cfg.KeywordMinScore)
	assert.Equal(t, 1, cfg.MinKeywordMatch)
	assert.Equal(t, 3, cfg.MaxInternalLinks)
	assert.Equal(t, 4, cfg.MaxExternalLinks)
	assert.Equal(t, "data/content_storage", cfg.StorageDir)
}

func TestLoadConfig_FromEnvFile(t *testing.T) {
	content := []byte("DB_HOST=loaded-from-file")
	err := os.WriteFile(".env", content, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(".env")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, "loaded-from-file", cfg.DBHost)
}

func TestLoadConfig_Thresholds(t *testing.T) {
	os.Setenv("EMBED_MIN_SIMILARITY", "0.5")
	os.Setenv("KEYWORD_MIN_SCORE", "0.4")
	defer os.Unsetenv("EMBED_MIN_SIMILARITY")
	defer os.Unsetenv("KEYWORD_MIN_SCORE")

	cfg, err := config.Load()
	assert.NoError(t, err)
	assert.Equal(t, 0.5, cfg.EmbedMinSimilarity)
	assert.Equal(t, 0.4, cfg.KeywordMinScore)
}

func TestConfig_Validate(t *testing.T) {
	valid := config.Config{
		DBHost:     "localhost",
		DBUser:     "user",
		DBName:     "db",
		StorageDir: "data",
		ChunkSize:  1000,
	}

	t.Run("Valid", func(t *testing.T) {
		cfg := valid
		assert.NoError(t, cfg.Validate())
	})

	t.Run("MissingDBHost", func(t *testing.T) {
		cfg := valid
		cfg.DBHost = ""
		err := cfg.Validate()
		assert.Error(t, err)
		assert.True(t, errors.Is(err, config.ErrMissingRequired))
	})

	t.Run("MissingStorageDir", func(t *testing.T) {
		cfg := valid
		cfg.StorageDir = ""
		err := cfg.Validate()
		assert.Error(t, err)
		assert.True(t, errors.Is(err, config.ErrMissingRequired))
	})

	t.Run("ZeroChunkSize", func(t *testing.T) {
		cfg := valid
		cfg.ChunkSize = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("NegativeLinkLimit", func(t *testing.T) {
		cfg := valid
		cfg.MaxInternalLinks = -1
		assert.Error(t, cfg.Validate())
	})
}
