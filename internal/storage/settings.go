package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/vidyasagar/wgen/internal/gallery"
)

const (
	appName          = "wgen"
	settingsFileName = "settings.json"
	defaultTag       = "waifu"
)

// UserSettings holds the tags the user picked in each group.
type UserSettings struct {
	General    []string `json:"selected_versatile"`
	Restricted []string `json:"selected_nsfw"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() UserSettings {
	return UserSettings{
		General:    []string{defaultTag},
		Restricted: []string{},
	}
}

// Normalize returns a copy with lowercase, deduplicated tags and non-nil slices.
func (s UserSettings) Normalize() UserSettings {
	return UserSettings{
		General:    gallery.NormalizeTags(s.General),
		Restricted: gallery.NormalizeTags(s.Restricted),
	}
}

// Equal reports whether two settings select the same tags in the same order.
func (s UserSettings) Equal(o UserSettings) bool {
	return slices.Equal(s.General, o.General) && slices.Equal(s.Restricted, o.Restricted)
}

// Empty reports whether no tag is selected at all.
func (s UserSettings) Empty() bool {
	return len(s.General) == 0 && len(s.Restricted) == 0
}

// SettingsPath returns the default settings file location.
func SettingsPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, settingsFileName), nil
}

// LoadSettings reads settings from path. A missing, unreadable or malformed
// file yields DefaultSettings; the returned error only describes why the
// defaults were used and is nil when the file simply does not exist.
func LoadSettings(path string) (UserSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return DefaultSettings(), fmt.Errorf("reading settings: %w", err)
	}

	var s UserSettings
	if err := json.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), fmt.Errorf("parsing settings: %w", err)
	}
	return s.Normalize(), nil
}

// SaveSettings writes settings to path as indented JSON. The file is written
// to a sibling temp file first and renamed into place.
func SaveSettings(path string, s UserSettings) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &gallery.IOError{Op: "create dir", Path: dir, Err: err}
	}

	data, err := json.MarshalIndent(s.Normalize(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dir, "."+settingsFileName+"-*")
	if err != nil {
		return &gallery.IOError{Op: "create temp", Path: dir, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &gallery.IOError{Op: "write", Path: tmpName, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &gallery.IOError{Op: "close", Path: tmpName, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return &gallery.IOError{Op: "chmod", Path: tmpName, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &gallery.IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

// DataDir returns the data directory for persistent storage.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}

	var dir string
	switch runtime.GOOS {
	case "darwin":
		dir = filepath.Join(home, "Library", "Application Support", appName)
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			dir = filepath.Join(appData, appName)
		} else {
			dir = filepath.Join(home, "."+appName)
		}
	default: // Linux, BSD, etc.
		xdgData := os.Getenv("XDG_DATA_HOME")
		if xdgData != "" {
			dir = filepath.Join(xdgData, appName)
		} else {
			dir = filepath.Join(home, ".local", "share", appName)
		}
	}

	return dir, nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}

	var dir string
	switch runtime.GOOS {
	case "darwin":
		dir = filepath.Join(home, "Library", "Application Support", appName)
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			dir = filepath.Join(appData, appName)
		} else {
			dir = filepath.Join(home, "."+appName)
		}
	default:
		xdgConfig := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfig != "" {
			dir = filepath.Join(xdgConfig, appName)
		} else {
			dir = filepath.Join(home, ".config", appName)
		}
	}

	return dir, nil
}
