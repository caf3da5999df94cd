// Package magick mediates access to the ImageMagick 7 CLI.
//
// It identifies image geometry, appends two images side by side into a
// montage and rescales an image in place. Commands run through an Executor so
// tests can substitute a fake, and every call honours an optional per-call
// timeout on top of the caller's context.
package magick
