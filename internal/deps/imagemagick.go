package deps

import (
	"os/exec"
	"path/filepath"
)

// legacyImageMagickTools are the per-command binaries shipped by ImageMagick 6.
var legacyImageMagickTools = []string{"convert", "identify"}

// CheckImageMagick reports the ImageMagick 7 `magick` binary. When it is
// missing but ImageMagick 6 tools are on PATH, the detail says so, because the
// montage commands rely on the unified `magick` front end.
func CheckImageMagick(binary string) Status {
	status := checkBinary(Requirement{
		Name:        "ImageMagick",
		Command:     binary,
		Description: "Required to identify, rescale and append images",
	})
	if status.Available || filepath.Base(status.Command) != "magick" {
		return status
	}
	for _, tool := range legacyImageMagickTools {
		if path, err := exec.LookPath(tool); err == nil {
			status.Detail = "ImageMagick 7 required; found legacy " + path
			break
		}
	}
	return status
}
