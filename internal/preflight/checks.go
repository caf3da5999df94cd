package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"landscaper/internal/config"
	"landscaper/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckImage verifies that path is a readable regular file with an allowed
// image extension, and that its directory accepts the montage output.
func CheckImage(cfg *config.Config, name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.Mode().IsRegular() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not a regular file)", path)}
	}
	if cfg != nil && !cfg.IsImageExtension(filepath.Ext(path)) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: extension not in %v)", path, cfg.Images.Extensions)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	if err := unix.Access(filepath.Dir(path), unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: directory not writable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckSystemDeps evaluates the external binaries needed for the given
// disposition. Both the run commands and the check command use this so the
// requirements list lives in one place.
func CheckSystemDeps(cfg *config.Config, disposition string) []deps.Status {
	statuses := []deps.Status{deps.CheckImageMagick(cfg.MagickBinary())}
	requirements := []deps.Requirement{{
		Name:        "7-Zip",
		Command:     cfg.SevenZipBinary(),
		Description: "Required to archive originals (--zip-originals)",
		Optional:    disposition != config.DispositionArchive,
	}}
	return append(statuses, deps.CheckBinaries(requirements)...)
}
