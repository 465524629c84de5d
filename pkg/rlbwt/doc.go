// Package rlbwt maintains the run-length encoded Burrows-Wheeler transform of
// a text that grows one byte at a time.
//
// The engine indexes the reversed text: appending a byte to the text
// prepends it to the reversed text, which in BWT terms is a single insertion
// at the end-marker row followed by an LF step of the marker. Rows are
// numbered with the end marker included; row 0 is the suffix made of the
// marker alone and the end-marker row itself stores no symbol.
//
// Every stored symbol is tagged with the text position at which it was
// inserted. For a row r that position equals the length of the text prefix r
// stands for, so it is also the end of every occurrence the row witnesses.
// The run-head sampler keeps the tag of each run head plus the tag of the row
// after the end marker, which is enough to recover the source of any match
// tracked by backward search.
package rlbwt
