package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidscraper/pkg/config"
	"vidscraper/pkg/platform"
)

func TestChangedFlagsOnlyReportsSetFlags(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("proxy", "", "")
	fs.Int("retries", 0, "")
	fs.Duration("timeout", 0, "")
	fs.String("output", "", "")

	require.NoError(t, fs.Parse([]string{"--retries", "5", "--timeout", "3s", "--output", "vids"}))

	got := changedFlags(fs)
	assert.Equal(t, map[string]interface{}{
		"retries": 5,
		"timeout": 3 * time.Second,
		"output":  "vids",
	}, got)

	cfg := config.DefaultConfig()
	cfg.MergeCommandLineFlags(got)
	assert.Equal(t, 5, cfg.Scraper.Retries)
	assert.Equal(t, 3*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, "vids", cfg.Output.BaseDirectory)
}

func TestReadURLs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	content := "# reels\nhttps://www.instagram.com/reel/a/\n\n  https://fb.watch/b/  \n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	urls, err := readURLs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.instagram.com/reel/a/", "https://fb.watch/b/"}, urls)

	_, err = readURLs(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestParsePlatform(t *testing.T) {
	p, err := parsePlatform(" Facebook ")
	require.NoError(t, err)
	assert.Equal(t, platform.Facebook, p)

	_, err = parsePlatform("tiktok")
	assert.Error(t, err)
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"metadata", "video-url", "supported", "download", "cookies", "config"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}
