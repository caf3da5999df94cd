package aspect

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"landscaper/internal/services"
)

const component = "aspect"

// PortraitThreshold is the width/height ratio below which an image is portrait.
// A ratio of exactly 0.9 is landscape.
const PortraitThreshold = 0.9

// Class is an image orientation.
type Class string

const (
	Portrait  Class = "portrait"
	Landscape Class = "landscape"
)

// Info is the measured geometry of one image. It is never cached; each call
// reflects the file as it is now.
type Info struct {
	Width  int
	Height int
	Class  Class
}

// ErrNoGeometry is returned when identify output carries no WxH+X+Y token.
var ErrNoGeometry = fmt.Errorf("%w: no geometry in identify output", services.ErrValidation)

var geometryPattern = regexp.MustCompile(`(\d{2,6})x(\d{2,6})\+(\d+)\+(\d+)`)

// Identifier produces the textual description of an image.
type Identifier interface {
	Identify(ctx context.Context, path string) (string, error)
}

// Classifier measures images through an Identifier.
type Classifier struct {
	identifier Identifier
}

// NewClassifier constructs a Classifier backed by identifier.
func NewClassifier(identifier Identifier) *Classifier {
	return &Classifier{identifier: identifier}
}

// Classify returns the width, height and orientation of the image at path.
func (c *Classifier) Classify(ctx context.Context, path string) (Info, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Info{}, services.Wrap(services.ErrNotFound, component, "classify", path, err)
		}
		return Info{}, services.Wrap(services.ErrValidation, component, "classify", path, err)
	}
	if c == nil || c.identifier == nil {
		return Info{}, services.Wrap(services.ErrConfiguration, component, "classify", "identifier not configured", nil)
	}
	output, err := c.identifier.Identify(ctx, path)
	if err != nil {
		return Info{}, err
	}
	width, height, err := ParseGeometry(output)
	if err != nil {
		return Info{}, fmt.Errorf("%s: %w", path, err)
	}
	class, err := ClassifyRatio(width, height)
	if err != nil {
		return Info{}, fmt.Errorf("%s: %w", path, err)
	}
	return Info{Width: width, Height: height, Class: class}, nil
}

// ParseGeometry extracts width and height from the first WxH+X+Y token.
func ParseGeometry(output string) (int, int, error) {
	match := geometryPattern.FindStringSubmatch(output)
	if match == nil {
		return 0, 0, ErrNoGeometry
	}
	// Both groups are at most six digits so Atoi cannot overflow.
	width, _ := strconv.Atoi(match[1])
	height, _ := strconv.Atoi(match[2])
	return width, height, nil
}

// ClassifyRatio applies the portrait threshold to width/height.
func ClassifyRatio(width, height int) (Class, error) {
	if width <= 0 || height <= 0 {
		return "", services.Wrap(services.ErrValidation, component, "classify", fmt.Sprintf("invalid dimensions %dx%d", width, height), nil)
	}
	if float64(width)/float64(height) < PortraitThreshold {
		return Portrait, nil
	}
	return Landscape, nil
}
