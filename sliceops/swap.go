package sliceops

// SwapBuf returns a reversed copy of in.
func SwapBuf(in []byte) []byte {
	a := make([]byte, 0, len(in))
	a = append(a, in...)
	for i := len(a)/2 - 1; i >= 0; i-- {
		opp := len(a) - 1 - i
		a[i], a[opp] = a[opp], a[i]
	}

	return a
}

// SwapHex reverses the byte order of a hex string: "0A0B0C" becomes "0C0B0A".
// Pairs of characters move as a unit, they are never split. A trailing odd
// character stays last.
func SwapHex(s string) string {
	n := len(s) / 2
	out := make([]byte, 0, len(s))
	for i := n - 1; i >= 0; i-- {
		out = append(out, s[2*i], s[2*i+1])
	}
	if len(s)%2 != 0 {
		out = append(out, s[len(s)-1])
	}

	return string(out)
}
