package jingle

import "github.com/pion/randutil"

// iceChars is the RFC 5245 ice-char alphabet (ALPHA / DIGIT / "+" / "/"),
// used for both the ufrag and the password.
const iceChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789+/"

var iceTokenSource = randutil.NewCryptoRandomGenerator()

// GenerateICEToken produces an ICE-UDP ufrag or password (spec.md
// §4.1.5): length is clamped to [4,256], or [22,256] when wantPassword
// is set, since RFC 5245 §15.4 requires at least 128 bits of entropy
// for the password and at least 24 bits for the ufrag. The source
// the original implementation used was a weak PRNG; this uses a CSPRNG
// instead, which only strengthens the contract (spec.md's own
// recommendation — see DESIGN.md Open Question notes).
func GenerateICEToken(wantPassword bool, maxLen int) string {
	minLen := 4
	if wantPassword {
		minLen = 22
	}
	length := maxLen
	if length < minLen {
		length = minLen
	}
	if length > 256 {
		length = 256
	}
	return iceTokenSource.GenerateString(length, iceChars)
}
