package grammar

import (
	"fmt"
	"strings"
)

const (
	// NamespacePrefix is the display prefix of the default namespace.
	NamespacePrefix = "poly"

	// NamespaceURI is the default namespace of grammar identifiers.
	NamespaceURI = "www.redhat.com/polyglotter/1.0"
)

// Identifier is a qualified name uniquely identifying a grammar part.
// The zero value means "no identifier".
type Identifier struct {
	Namespace string
	Local     string
}

// NewIdentifier creates an identifier in the given namespace.
func NewIdentifier(namespace, local string) Identifier {
	return Identifier{Namespace: namespace, Local: local}
}

// ID creates an identifier in the default namespace.
func ID(local string) Identifier {
	return Identifier{Namespace: NamespaceURI, Local: local}
}

// ParseIdentifier accepts "local", "poly:local" and "{namespace}local".
// "{}local" selects the empty namespace.
func ParseIdentifier(s string) (Identifier, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return Identifier{}, fmt.Errorf("empty identifier")
	case strings.HasPrefix(s, "{"):
		end := strings.Index(s, "}")
		if end < 0 || end == len(s)-1 {
			return Identifier{}, fmt.Errorf("malformed identifier %q", s)
		}
		return NewIdentifier(s[1:end], s[end+1:]), nil
	case strings.HasPrefix(s, NamespacePrefix+":"):
		local := strings.TrimPrefix(s, NamespacePrefix+":")
		if local == "" {
			return Identifier{}, fmt.Errorf("malformed identifier %q", s)
		}
		return ID(local), nil
	default:
		return ID(s), nil
	}
}

// IsZero reports whether the identifier is absent.
func (i Identifier) IsZero() bool {
	return i.Local == ""
}

// String renders the identifier as "poly:Local" for the default namespace and
// "{namespace}Local" otherwise, "{}Local" for the empty namespace. The output
// parses back to the same identifier. The zero value renders as "".
func (i Identifier) String() string {
	switch {
	case i.IsZero():
		return ""
	case i.Namespace == NamespaceURI:
		return NamespacePrefix + ":" + i.Local
	default:
		return "{" + i.Namespace + "}" + i.Local
	}
}

// Sibling returns an identifier with the same namespace and a different local name.
func (i Identifier) Sibling(local string) Identifier {
	return Identifier{Namespace: i.Namespace, Local: local}
}

// MarshalText implements encoding.TextMarshaler.
func (i Identifier) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Identifier) UnmarshalText(b []byte) error {
	id, err := ParseIdentifier(string(b))
	if err != nil {
		return err
	}
	*i = id
	return nil
}

func mustIdentify(what string, id Identifier) {
	if id.IsZero() {
		panic(fmt.Sprintf("grammar: %s identifier is required", what))
	}
}
