package storybot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SaveStory writes story to path, creating parent directories. When path
// is a directory the file name is derived from prompt and the current time.
func SaveStory(story, prompt, path string) (string, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, storyFileName(prompt, time.Now()))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(story), 0o644); err != nil {
		return "", fmt.Errorf("saving story: %w", err)
	}
	return path, nil
}

func storyFileName(prompt string, now time.Time) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(prompt)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
		}
		if b.Len() >= 40 {
			break
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "story"
	}
	return fmt.Sprintf("%s_%s.md", now.Format("20060102-150405"), slug)
}
