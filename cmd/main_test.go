package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storybot "github.com/opd-ai/storybot/src"
)

func TestOutputPath(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		got, err := outputPath("story.md", &storybot.Config{OutputDir: "stories"})
		require.NoError(t, err)
		assert.Equal(t, "story.md", got)
	})

	t.Run("nothing configured prints", func(t *testing.T) {
		got, err := outputPath("", &storybot.Config{})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("configured directory is created", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "stories")
		got, err := outputPath("", &storybot.Config{OutputDir: dir})
		require.NoError(t, err)
		assert.Equal(t, dir, got)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}
