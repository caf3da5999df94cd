package montage

import (
	"path/filepath"
	"strings"
)

// OutputPath derives the montage path from the first image of a pair:
// <dir>/<stem><suffix>.<format>.
func OutputPath(first, suffix, format string) string {
	dir := filepath.Dir(first)
	stem := Stem(first)
	format = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
	return filepath.Join(dir, stem+suffix+"."+format)
}

// ArchivePath places src's archive in a sibling directory:
// <dir>/<dirName>/<stem>.<ext>.
func ArchivePath(src, dirName, ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	return filepath.Join(filepath.Dir(src), dirName, Stem(src)+"."+ext)
}

// Stem returns the base name of path without its final extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsMontage reports whether path's stem carries the montage suffix
// (case-insensitive), i.e. the file is one of our own outputs.
func IsMontage(path, suffix string) bool {
	if suffix == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(Stem(path)), strings.ToLower(suffix))
}

// ScalePlan picks the image to rescale when heights differ: the taller one,
// scaled down by shorter/taller. ok is false when heights are equal or unknown.
func ScalePlan(first, second string, firstHeight, secondHeight int) (path string, percent float64, ok bool) {
	if firstHeight <= 0 || secondHeight <= 0 || firstHeight == secondHeight {
		return "", 0, false
	}
	if firstHeight > secondHeight {
		return first, float64(secondHeight) / float64(firstHeight) * 100, true
	}
	return second, float64(firstHeight) / float64(secondHeight) * 100, true
}
