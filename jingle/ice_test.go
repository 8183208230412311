package jingle

import "testing"

func TestGenerateICETokenLength(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		wantPassword bool
		maxLen       int
		wantLen      int
	}{
		{"password clamps up to 22", true, 1, 22},
		{"password within range", true, 30, 30},
		{"password clamps down to 256", true, 9999, 256},
		{"ufrag clamps up to 4", false, 0, 4},
		{"ufrag within range", false, 16, 16},
		{"ufrag clamps down to 256", false, 500, 256},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := GenerateICEToken(tt.wantPassword, tt.maxLen)
			if len(got) != tt.wantLen {
				t.Fatalf("GenerateICEToken(%v, %d) len = %d, want %d", tt.wantPassword, tt.maxLen, len(got), tt.wantLen)
			}
			for _, r := range got {
				if !isICEChar(r) {
					t.Fatalf("GenerateICEToken produced out-of-alphabet rune %q", r)
				}
			}
		})
	}
}

func isICEChar(r rune) bool {
	for _, c := range iceChars {
		if c == r {
			return true
		}
	}
	return false
}
