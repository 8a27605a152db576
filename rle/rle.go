// Package rle implements the run-length codec shared by the image, sprite and
// background formats.
//
// The stream is a sequence of control bytes. A control byte c in [1, 127] is
// followed by one value byte, which is written c times. A control byte c in
// [128, 255] is followed by 256-c bytes that are copied verbatim. A control
// byte of 0 is skipped.
package rle

// Decode decodes src into dst and returns the number of bytes written.
// Decoding stops when dst is full. A stream that ends early leaves the rest of
// dst untouched; this is not reported as an error.
func Decode(dst, src []byte) (n int) {
	for i := 0; i < len(src) && n < len(dst); {
		c := int(src[i])
		switch {
		case c == 0:
			// Unassigned control byte.
			i++
		case c < 128:
			if i+1 >= len(src) {
				return n
			}
			v := src[i+1]
			for j := 0; j < c && n < len(dst); j++ {
				dst[n] = v
				n++
			}
			i += 2
		default:
			c = 256 - c
			lit := src[i+1:]
			if len(lit) > c {
				lit = lit[:c]
			}
			n += copy(dst[n:], lit)
			i += c + 1
		}
	}
	return n
}

// DecodeSize allocates a buffer of size bytes and decodes src into it.
func DecodeSize(src []byte, size int) []byte {
	dst := make([]byte, size)
	Decode(dst, src)
	return dst
}
