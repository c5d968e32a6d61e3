package bambu

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

const (
	thumbnailFile = "plate_1.png"
	settingsFile  = "model_settings.config"
	metadataDir   = "Metadata"
)

var (
	ErrNoGcode      = errors.New("no gcode_file in model_settings.config")
	ErrJobNotCached = errors.New("print job not in cache")
)

// Cache is the on-disk thumbnail cache: one directory per job holding
// Metadata/plate_1.png and Metadata/model_settings.config.
type Cache struct {
	root string
}

func NewCache(root string) *Cache {
	return &Cache{root: root}
}

func (c *Cache) Root() string {
	return c.root
}

// JobNames lists cached job directories in lexical order.
func (c *Cache) JobNames() ([]string, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list cache: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Available reports whether both the thumbnail and the settings file exist.
func (c *Cache) Available(job string) bool {
	return fileExists(c.path(job, thumbnailFile)) && fileExists(c.path(job, settingsFile))
}

func (c *Cache) ThumbnailPath(job string) string {
	return c.path(job, thumbnailFile)
}

type modelSettings struct {
	Plates []struct {
		Metadata []struct {
			Key   string `xml:"key,attr"`
			Value string `xml:"value,attr"`
		} `xml:"metadata"`
	} `xml:"plate"`
}

// GcodeFile returns the first plate's gcode_file entry.
func (c *Cache) GcodeFile(job string) (string, error) {
	data, err := os.ReadFile(c.path(job, settingsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrJobNotCached, job)
		}
		return "", fmt.Errorf("failed to read %s: %w", settingsFile, err)
	}

	var settings modelSettings
	if err := xml.Unmarshal(data, &settings); err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", settingsFile, err)
	}

	for _, plate := range settings.Plates {
		for _, md := range plate.Metadata {
			if md.Key == "gcode_file" && md.Value != "" {
				return md.Value, nil
			}
		}
	}
	return "", ErrNoGcode
}

// Resolve maps the slug used in an entity id back to a cached job name.
func (c *Cache) Resolve(slug string) (string, error) {
	names, err := c.JobNames()
	if err != nil {
		return "", err
	}
	for _, name := range names {
		if name == slug || slugify(name) == slug {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrJobNotCached, slug)
}

func (c *Cache) path(job, file string) string {
	return filepath.Join(c.root, filepath.Base(job), metadataDir, file)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// slugify approximates how the host platform turns a name into an entity id
// fragment: lowercase, runs of anything else collapsed to one underscore.
func slugify(s string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
