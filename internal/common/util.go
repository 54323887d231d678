// Package common contains small helpers shared by the bookshelf client packages.
package common

// WipeByteArray overwrites the contents of b with zeros. It is used to drop
// passwords from memory once they have been sent.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
