package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// Kind is the variant tag of a unit.
type Kind uint8

const (
	// KindTool is an aggregate unit composed of its children, typically a linked executable.
	KindTool Kind = iota + 1
	// KindBox is a module-level unit, typically a library compiled from sources.
	KindBox
)

var kindNames = map[Kind]string{
	KindTool: "tool",
	KindBox:  "box",
}

// String returns the lower-case tag of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind returns the kind named by s. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == want {
			return k, nil
		}
	}
	return 0, zerr.With(zerr.Wrap(ErrUnknownKind, "cannot parse kind"), "kind", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
