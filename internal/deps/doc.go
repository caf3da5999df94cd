// Package deps reports whether the external binaries landscaper invokes
// (ImageMagick and 7-Zip) can be found on PATH.
package deps
