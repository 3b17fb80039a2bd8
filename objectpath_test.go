package catalog

import (
	"errors"
	"testing"
)

func TestParseObjectPath(t *testing.T) {
	p := must(ParseObjectPath("db1.t1"))
	deepEqual(t, p, NewObjectPath("db1", "t1"))
	deepEqual(t, p.FullName(), "db1.t1")
	deepEqual(t, p.String(), "db1.t1")
	deepEqual(t, p.WithObject("t2"), NewObjectPath("db1", "t2"))

	for _, s := range []string{"", "db1", "db1.", ".t1", "a.b.c", "."} {
		_, err := ParseObjectPath(s)
		if !errors.Is(err, ErrInvalidIdentifier) {
			t.Errorf("ParseObjectPath(%q) err = %v, wanted ErrInvalidIdentifier", s, err)
		}
	}
}

func TestObjectPath_CaseSensitive(t *testing.T) {
	if NewObjectPath("db", "T") == NewObjectPath("db", "t") {
		t.Errorf("paths differing in case compare equal")
	}
	deepEqual(t, NewObjectPath("db", "").valid(), false)
	deepEqual(t, NewObjectPath("", "t").valid(), false)
	deepEqual(t, NewObjectPath("db", "t").valid(), true)
}
