// Package pairing decides whether two images can be joined into one landscape
// montage.
//
// Two portrait images match when their widths are equal, or unconditionally
// when resizing is enabled (the taller one is scaled down before appending).
// Classification failures never surface as errors: the pair simply does not
// match and a warning is logged.
package pairing
