package storybot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveStory(t *testing.T) {
	t.Run("explicit file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "story.md")
		got, err := SaveStory("Once upon a time", "prompt", path)
		require.NoError(t, err)
		assert.Equal(t, path, got)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "Once upon a time", string(data))
	})

	t.Run("directory", func(t *testing.T) {
		dir := t.TempDir()
		got, err := SaveStory("story", "A robot learns to paint emotions", dir)
		require.NoError(t, err)
		assert.Equal(t, dir, filepath.Dir(got))
		assert.Regexp(t, `^\d{8}-\d{6}_a-robot-learns-to-paint-emotions\.md$`, filepath.Base(got))
	})
}

func TestStoryFileName(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	tests := []struct {
		prompt string
		want   string
	}{
		{"A chef who can taste memories", "20240309-140507_a-chef-who-can-taste-memories.md"},
		{"  ¿Qué?  ", "20240309-140507_qu.md"},
		{"!!!", "20240309-140507_story.md"},
		{"", "20240309-140507_story.md"},
	}
	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			assert.Equal(t, tt.want, storyFileName(tt.prompt, now))
		})
	}

	long := storyFileName("Two strangers share an umbrella during a meteor shower", now)
	assert.LessOrEqual(t, len(long), len("20240309-140507_")+40+len(".md"))
}
