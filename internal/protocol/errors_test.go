package protocol

import "testing"

func TestIsKnownCode(t *testing.T) {
	for code := range knownCodes {
		if !IsKnownCode(code) {
			t.Fatalf("%s not recognized", code)
		}
	}
	if !IsKnownCode("") {
		t.Fatalf("empty code means no error and must pass")
	}
	if IsKnownCode("E_NOPE") {
		t.Fatalf("unknown code accepted")
	}
}
