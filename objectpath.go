package catalog

import (
	"fmt"
	"strings"
)

// ObjectPath identifies a table, view or function: a database name and an
// object name within it. Comparison is exact and case-sensitive, so
// ObjectPath can be used with == and as a map key.
type ObjectPath struct {
	Database string
	Object   string
}

// NewObjectPath returns the path of object within database.
func NewObjectPath(database, object string) ObjectPath {
	return ObjectPath{Database: database, Object: object}
}

// ParseObjectPath parses "database.object". Anything other than exactly two
// non-empty dot-separated segments fails with ErrInvalidIdentifier.
func ParseObjectPath(s string) (ObjectPath, error) {
	db, obj, ok := strings.Cut(s, ".")
	if !ok || db == "" || obj == "" || strings.Contains(obj, ".") {
		return ObjectPath{}, fmt.Errorf("%w: %q is not a valid object path, wanted <database>.<object>", ErrInvalidIdentifier, s)
	}
	return ObjectPath{Database: db, Object: obj}, nil
}

// MustParseObjectPath is like ParseObjectPath but panics on error.
func MustParseObjectPath(s string) ObjectPath {
	return must(ParseObjectPath(s))
}

// FullName returns "database.object".
func (p ObjectPath) FullName() string {
	return p.Database + "." + p.Object
}

func (p ObjectPath) String() string {
	return p.FullName()
}

// WithObject returns a path to another object in the same database.
func (p ObjectPath) WithObject(object string) ObjectPath {
	return ObjectPath{Database: p.Database, Object: object}
}

// valid reports whether p can name a stored object. Object names cannot
// contain dots, so every stored path round-trips through ParseObjectPath.
func (p ObjectPath) valid() bool {
	return p.Database != "" && p.Object != "" && !strings.Contains(p.Object, ".")
}
