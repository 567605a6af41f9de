package font

import (
	"os"
	"path/filepath"
	"runtime"
)

// SystemFontDirs returns the system font directories for the current platform.
func SystemFontDirs() []string {
	switch runtime.GOOS {
	case "darwin":
		return darwinFontDirs()
	case "linux":
		return linuxFontDirs()
	case "windows":
		return windowsFontDirs()
	default:
		return nil
	}
}

func darwinFontDirs() []string {
	dirs := []string{
		"/System/Library/Fonts",
		"/Library/Fonts",
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
	}
	return filterExistingDirs(dirs)
}

func linuxFontDirs() []string {
	dirs := []string{
		"/usr/share/fonts",
		"/usr/local/share/fonts",
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs,
			filepath.Join(home, ".fonts"),
			filepath.Join(home, ".local", "share", "fonts"),
		)
	}
	if xdgDataDirs := os.Getenv("XDG_DATA_DIRS"); xdgDataDirs != "" {
		for _, dir := range filepath.SplitList(xdgDataDirs) {
			dirs = append(dirs, filepath.Join(dir, "fonts"))
		}
	}
	return filterExistingDirs(dirs)
}

func windowsFontDirs() []string {
	var dirs []string
	if winDir := os.Getenv("WINDIR"); winDir != "" {
		dirs = append(dirs, filepath.Join(winDir, "Fonts"))
	} else {
		dirs = append(dirs, `C:\Windows\Fonts`)
	}
	if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
		dirs = append(dirs, filepath.Join(localAppData, "Microsoft", "Windows", "Fonts"))
	}
	return filterExistingDirs(dirs)
}

func filterExistingDirs(dirs []string) []string {
	existing := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			existing = append(existing, dir)
		}
	}
	return existing
}

// DiscoverFonts walks dirs recursively and loads every font file found,
// skipping paths it can't read or parse rather than failing the whole scan.
func DiscoverFonts(dirs []string) ([]*Font, error) {
	var fonts []*Font
	seen := make(map[string]bool)

	for _, dir := range dirs {
		_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				return nil
			}
			if seen[path] {
				return nil
			}
			seen[path] = true

			if !IsFontFile(path) {
				return nil
			}

			loaded, err := LoadFromFile(path)
			if err != nil {
				return nil
			}
			fonts = append(fonts, loaded...)
			return nil
		})
	}

	return fonts, nil
}

// DiscoverSystemFonts discovers all fonts in the platform's system font directories.
func DiscoverSystemFonts() ([]*Font, error) {
	return DiscoverFonts(SystemFontDirs())
}
