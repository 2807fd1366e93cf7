package process

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/cloudstore/pagesmith/internal/core/domain"
)

// OfficeCandidates returns the install locations probed for the headless
// office suite, in probe order.
func OfficeCandidates() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\Program Files\LibreOffice\program\soffice.exe`,
			`C:\Program Files (x86)\LibreOffice\program\soffice.exe`,
		}
	case "darwin":
		return []string{
			"/Applications/LibreOffice.app/Contents/MacOS/soffice",
			"/opt/homebrew/bin/soffice",
			"/usr/local/bin/soffice",
		}
	default:
		candidates := []string{
			"/usr/bin/libreoffice",
			"/usr/bin/soffice",
			"/usr/local/bin/libreoffice",
			"/usr/local/bin/soffice",
		}
		if matches, err := filepath.Glob("/opt/libreoffice*/program/soffice"); err == nil {
			candidates = append(candidates, matches...)
		}
		return candidates
	}
}

// LocateBinary returns the first candidate path that is an executable
// regular file, then falls back to a PATH lookup of each name.
// Returns domain.ErrBinaryNotFound when nothing matches.
func LocateBinary(candidates []string, names ...string) (string, error) {
	for _, candidate := range candidates {
		if isExecutable(candidate) {
			return candidate, nil
		}
	}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("probed %d paths and %v: %w", len(candidates), names, domain.ErrBinaryNotFound)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0111 != 0
}
