// Package lz77 factorizes a byte stream online on top of an rlbwt.Engine and
// encodes the factors as fixed-width little-endian records.
//
// Each input byte is first tested against the index as it stood before the
// byte (so a phrase never matches itself) and only then inserted. A factor
// (Offset, Length, Literal) copies Length bytes starting at absolute text
// position Offset, then appends Literal. The last factor of a stream whose
// final phrase is still matching has its length reduced by one and repeats
// the last byte as its literal; decoders rely on that convention.
package lz77
