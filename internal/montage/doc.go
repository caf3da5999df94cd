// Package montage turns a matched pair of portrait images into one landscape
// image and then disposes of the sources.
//
// The Orchestrator derives the output path from the first image, skips the
// transform when that output already exists (or when running dry), optionally
// rescales the taller image so heights agree, appends the pair through a
// Composer and finally deletes or archives the originals. A failed transform
// leaves the originals untouched.
package montage
