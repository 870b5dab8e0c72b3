package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// virtualenvDirs are checked inside the project before PATH
var virtualenvDirs = []string{".venv", "venv", "env"}

// ResolveInterpreter finds the binary that runs the entry file. A bare name
// prefers the project's virtualenv, then PATH, then common install prefixes;
// "python" also falls back to "python3".
func ResolveInterpreter(projectDir, name string) (string, error) {
	if name == "" {
		name = "python"
	}
	if strings.HasPrefix(name, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			name = filepath.Join(home, name[1:])
		}
	}
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) {
		if isExecutable(name) {
			return name, nil
		}
		return "", interpreterNotFound(name)
	}

	candidates := interpreterNames(name)
	for _, dir := range virtualenvDirs {
		for _, candidate := range candidates {
			if p := filepath.Join(projectDir, dir, "bin", candidate); isExecutable(p) {
				return p, nil
			}
		}
	}
	for _, candidate := range candidates {
		if p, err := exec.LookPath(candidate); err == nil {
			return p, nil
		}
	}
	for _, dir := range installPrefixes() {
		for _, candidate := range candidates {
			if p := filepath.Join(dir, candidate); isExecutable(p) {
				return p, nil
			}
		}
	}
	return "", interpreterNotFound(name)
}

func interpreterNames(name string) []string {
	if name == "python" {
		return []string{"python", "python3"}
	}
	return []string{name}
}

func installPrefixes() []string {
	dirs := []string{"/usr/local/bin", "/opt/homebrew/bin"}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append([]string{filepath.Join(home, ".local", "bin")}, dirs...)
	}
	return dirs
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0111 != 0
}

func interpreterNotFound(name string) error {
	return fmt.Errorf(`interpreter %s not found

Create a virtualenv in the project (.venv), install it on PATH, or set the
full path in .mle/config.yaml:
  run:
    interpreter: /path/to/%s`, name, filepath.Base(name))
}
