package protocol

import "fmt"

// Tag identifies a message variant on the wire. Tags are permanent: a tag is
// never reassigned to another variant, and a retired variant keeps its tag
// reserved.
type Tag uint16

// String returns the registered variant name, or the numeric tag when the tag
// is not registered.
func (t Tag) String() string {
	if r, ok := Lookup(t); ok {
		return r.Name
	}
	return fmt.Sprintf("Tag(%d)", uint16(t))
}

// Message is implemented by every wire message variant. The set of variants
// is closed: the body codec methods are unexported, so only this package can
// add variants, and every variant is registered in registry.go.
type Message interface {
	// Tag returns the variant's permanent wire tag.
	Tag() Tag

	encodeBody(e *Encoder)
	decodeBody(d *Decoder) error
}

// Name returns the registered name of m's variant.
func Name(m Message) string {
	if m == nil {
		return ""
	}
	return m.Tag().String()
}
