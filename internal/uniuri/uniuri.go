package uniuri

import (
	"crypto/rand"
)

const (
	// StdLen is the default length, about 95 bits of entropy with StdChars.
	StdLen = 16
	// CodeLen is the length of a recovery code.
	CodeLen = 10
)

var (
	// StdChars are the characters used by New and NewLen.
	StdChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789") //nolint:gochecknoglobals
	// CodeChars leave out characters that are easily misread (0/O, 1/I/L).
	CodeChars = []byte("ABCDEFGHJKMNPQRSTUVWXYZ23456789") //nolint:gochecknoglobals
)

// New returns a random string of StdLen characters from StdChars.
func New() string {
	return NewLenChars(StdLen, StdChars)
}

// NewLen returns a random string of length characters from StdChars.
func NewLen(length int) string {
	return NewLenChars(length, StdChars)
}

// NewCode returns an upper case recovery code of CodeLen characters.
func NewCode() string {
	return NewLenChars(CodeLen, CodeChars)
}

// NewCodes returns n distinct recovery codes.
func NewCodes(n int) []string {
	seen := make(map[string]struct{}, n)
	out := make([]string, 0, n)

	for len(out) < n {
		c := NewCode()
		if _, dup := seen[c]; dup {
			continue
		}

		seen[c] = struct{}{}
		out = append(out, c)
	}

	return out
}

// NewLenChars returns a random string of length characters from chars.
// Bytes at or above the largest multiple of len(chars) are rejected, so
// every character is equally likely. It panics when chars has fewer than 2
// or more than 256 entries, or when the system random source fails.
func NewLenChars(length int, chars []byte) string {
	if length <= 0 {
		return ""
	}

	clen := len(chars)
	if clen < 2 || clen > 256 {
		panic("uniuri: wrong charset length for NewLenChars")
	}

	limit := 256 - (256 % clen)
	out := make([]byte, 0, length)
	buf := make([]byte, length+length/2+8)

	for {
		if _, err := rand.Read(buf); err != nil {
			panic("uniuri: error reading random bytes: " + err.Error())
		}

		for _, b := range buf {
			if int(b) >= limit {
				continue
			}

			out = append(out, chars[int(b)%clen])
			if len(out) == length {
				return string(out)
			}
		}
	}
}
