// Package sevenzip wraps the 7-Zip CLI used to archive source images once a
// montage has been produced. Files are moved into the archive (`-sdel`), so a
// successful call leaves only the archive behind.
package sevenzip
