// Package aspect classifies images as portrait or landscape from the pixel
// geometry reported by an external identify tool.
package aspect
