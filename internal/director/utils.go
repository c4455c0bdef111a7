package director

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"
)

// GenerateScenePath creates a timestamped scene filename inside dir
func GenerateScenePath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("scene_%s.yaml", timestamp))
}

// FindLatestScene finds the most recent scene file in dir
func FindLatestScene(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read scenes directory: %w", err)
	}

	var scenes []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, err := sceneFormat(entry.Name()); err == nil {
			scenes = append(scenes, filepath.Join(dir, entry.Name()))
		}
	}

	if len(scenes) == 0 {
		return "", fmt.Errorf("no scene files found in %s", dir)
	}

	// Sort by modification time (newest first)
	sort.Slice(scenes, func(i, j int) bool {
		infoI, _ := os.Stat(scenes[i])
		infoJ, _ := os.Stat(scenes[j])
		return infoI.ModTime().After(infoJ.ModTime())
	})

	return scenes[0], nil
}

// TimelinePath returns where the baked timeline dump for title lives in dir
func TimelinePath(dir, title string) string {
	slug := Slug(title)
	if slug == "" {
		slug = "scene"
	}
	return filepath.Join(dir, slug+".timeline.yaml")
}

// Slug lowercases title and replaces everything but letters and digits with
// single dashes
func Slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
			continue
		}
		dash = true
	}
	return b.String()
}
