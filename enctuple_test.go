package catalog

import (
	"encoding/hex"
	"reflect"
	"strings"
	"testing"
)

func TestTuple(t *testing.T) {
	l1024 := longhex(1024)
	tests := []struct {
		input    string
		expected string
	}{
		{"", "01"},
		{"4241", "424101"},
		{l1024, l1024 + "01"},
		{"4241|393837", "42413938370202"},
		{"1122|334455|66778899", "112233445566778899020303"},
		{l1024 + "|" + l1024, l1024 + l1024 + "088002"},
		{"|", "0002"},
		{"||", "000003"},
		{"|||", "00000004"},
	}
	for _, tt := range tests {
		src := parseTupleString(tt.input)
		if formatTuple(src) != tt.input {
			t.Errorf("** parseTupleString(%q).String() does not round-trip", tt.input)
			continue
		}

		encoded := src.encode(nil)
		encodedStr := hex.EncodeToString(encoded)
		if encodedStr != tt.expected {
			t.Errorf("** tuple(%q).encode() = %q, wanted %q", tt.input, encodedStr, tt.expected)
		} else {
			decoded := must(decodeTuple(encoded))
			if !reflect.DeepEqual(src, decoded) {
				t.Errorf("** decodeTuple(%q) = %s, wanted %s", encodedStr, formatTuple(decoded), tt.input)
			}
		}
	}
}

func TestStringTuple_SeparatesAmbiguousConcatenations(t *testing.T) {
	// "ab"+"c" and "a"+"bc" must not collide.
	k1 := stringTuple("ab", "c").encode(nil)
	k2 := stringTuple("a", "bc").encode(nil)
	if reflect.DeepEqual(k1, k2) {
		t.Fatalf("stringTuple keys collide: %x", k1)
	}
	tup := must(decodeTuple(k1))
	if string(tup[0]) != "ab" || string(tup[1]) != "c" {
		t.Fatalf("decodeTuple = %s, wanted 6162|63", formatTuple(tup))
	}
}

func parseTupleString(s string) tuple {
	els := strings.Split(s, "|")
	tup := make(tuple, len(els))
	for i, el := range els {
		tup[i] = must(hex.DecodeString(el))
	}
	return tup
}

func formatTuple(tup tuple) string {
	els := make([]string, len(tup))
	for i, el := range tup {
		els[i] = hex.EncodeToString(el)
	}
	return strings.Join(els, "|")
}

func longhex(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return hex.EncodeToString(b)
}
