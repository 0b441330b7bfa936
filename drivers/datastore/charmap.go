package datastore

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

const rcd = '�' // decoding replacement character

var decode = [...]rune{
	'\u0000', ' ',
	'0', '1', '2', '3', '4', '5', '6', '7', '8', '9',
	'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M',
	'N', 'O', 'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z',
	'!', '#', '\'', '+', ',', '-', '.', '/', ':', '=', '?', '@', '_',
}

const rce = 48 // encoding replacement character, '?'

var encode = map[rune]byte{
	'\u0000': 0, ' ': 1,
	'0': 2, '1': 3, '2': 4, '3': 5, '4': 6, '5': 7, '6': 8, '7': 9, '8': 10, '9': 11,
	'A': 12, 'B': 13, 'C': 14, 'D': 15, 'E': 16, 'F': 17, 'G': 18, 'H': 19, 'I': 20,
	'J': 21, 'K': 22, 'L': 23, 'M': 24, 'N': 25, 'O': 26, 'P': 27, 'Q': 28, 'R': 29,
	'S': 30, 'T': 31, 'U': 32, 'V': 33, 'W': 34, 'X': 35, 'Y': 36, 'Z': 37,
	'!': 38, '#': 39, '\'': 40, '+': 41, ',': 42, '-': 43, '.': 44, '/': 45,
	':': 46, '=': 47, '?': 48, '@': 49, '_': 50,
}

type charmap struct{}

// NameCode is the glyph set the launcher can show for record names. Names are
// stored one byte per glyph, lowercase letters fold to uppercase, anything
// else encodes to '?'.
var NameCode encoding.Encoding = &charmap{}

func (m *charmap) NewDecoder() *encoding.Decoder {
	return &encoding.Decoder{Transformer: &decoder{}}
}

func (m *charmap) NewEncoder() *encoding.Encoder {
	return &encoding.Encoder{Transformer: &encoder{}}
}

type decoder struct{}

func (d *decoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for _, c := range src {
		var r rune = rcd
		if c < byte(len(decode)) {
			r = decode[c]
		}
		rlen := utf8.RuneLen(r) // r is always valid
		if rlen > len(dst)-nDst {
			err = transform.ErrShortDst
			break
		}

		nSrc += 1
		nDst += utf8.EncodeRune(dst[nDst:], r)
	}
	return
}

func (d *decoder) Reset() {}

type encoder struct{}

func (d *encoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && !atEOF && !utf8.FullRune(src[nSrc:]) {
			err = transform.ErrShortSrc
			break
		}
		if nDst >= len(dst) {
			err = transform.ErrShortDst
			break
		}
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		if c, ok := encode[r]; ok {
			dst[nDst] = c
		} else {
			dst[nDst] = rce
		}
		nDst += 1
		nSrc += size
	}
	return
}

func (d *encoder) Reset() {}
