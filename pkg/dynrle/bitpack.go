package dynrle

import "math/bits"

// mask returns the low w bits set.
func mask(w uint8) uint64 {
	if w >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << w) - 1
}

// bitWidth returns the number of bits needed to store v, never less than 1.
func bitWidth(v uint64) uint8 {
	w := uint8(bits.Len64(v))
	if w == 0 {
		return 1
	}
	return w
}

// wordsFor returns how many 64-bit words hold n values of width w.
func wordsFor(n int, w uint8) int {
	return (n*int(w) + 63) / 64
}

// getPacked reads the i'th w-bit value from words.
func getPacked(words []uint64, i int, w uint8) uint64 {
	off := uint64(i) * uint64(w)
	wi, bi := off>>6, off&63
	v := words[wi] >> bi
	if bi+uint64(w) > 64 {
		v |= words[wi+1] << (64 - bi)
	}
	return v & mask(w)
}

// setPacked writes v as the i'th w-bit value of words. v must fit in w bits.
func setPacked(words []uint64, i int, w uint8, v uint64) {
	off := uint64(i) * uint64(w)
	wi, bi := off>>6, off&63
	m := mask(w)
	v &= m
	words[wi] = words[wi]&^(m<<bi) | v<<bi
	if bi+uint64(w) > 64 {
		s := 64 - bi
		words[wi+1] = words[wi+1]&^(m>>s) | v>>s
	}
}
