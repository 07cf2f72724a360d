// Package uniuri generates random strings from crypto/rand, for one time
// codes, OAuth state values and similar tokens.
package uniuri
