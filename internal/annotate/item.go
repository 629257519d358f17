package annotate

import (
	"fmt"
	"strings"
)

// Class identifies how an item is highlighted.
type Class int

const (
	ClassKeyword Class = iota
	ClassIdentifier
	ClassString
	ClassMethodName
)

func (c Class) String() string {
	switch c {
	case ClassKeyword:
		return "keyword"
	case ClassIdentifier:
		return "identifier"
	case ClassString:
		return "string"
	case ClassMethodName:
		return "method_name"
	default:
		return "unknown"
	}
}

func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Class) UnmarshalText(data []byte) error {
	for _, candidate := range []Class{ClassKeyword, ClassIdentifier, ClassString, ClassMethodName} {
		if candidate.String() == strings.TrimSpace(string(data)) {
			*c = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown item class %q", string(data))
}

// Role tells navigation surfaces whether an item is a definition anchor,
// a usage pointing at one, or neither.
type Role int

const (
	RolePlain Role = iota
	RoleMaster
	RoleReference
)

func (r Role) String() string {
	switch r {
	case RoleMaster:
		return "master"
	case RoleReference:
		return "reference"
	default:
		return "plain"
	}
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(data []byte) error {
	switch strings.TrimSpace(string(data)) {
	case "plain", "":
		*r = RolePlain
	case "master":
		*r = RoleMaster
	case "reference":
		*r = RoleReference
	default:
		return fmt.Errorf("unknown item role %q", string(data))
	}
	return nil
}

// Item is a highlighted span inside one line. Offset is relative to the
// start of the line. CrossRefID is only meaningful for Master items (their
// own anchor offset) and Reference items (the anchor they point at).
type Item struct {
	Offset     int   `json:"offset"`
	Length     int   `json:"length"`
	Class      Class `json:"class"`
	Role       Role  `json:"role"`
	CrossRefID int   `json:"cross_ref_id"`
}

// End returns the exclusive line-relative end of the item.
func (i Item) End() int {
	return i.Offset + i.Length
}

// HasCrossRef reports whether CrossRefID carries an anchor offset.
func (i Item) HasCrossRef() bool {
	return i.Role != RolePlain
}

func (i Item) overlaps(other Item) bool {
	return i.Offset < other.End() && other.Offset < i.End()
}

// Line is one finalized document line and its items ordered by offset.
type Line struct {
	Text  string `json:"text"`
	Items []Item `json:"items,omitempty"`
}

// ItemOption configures the role of an item passed to AddItem.
type ItemOption func(*Item)

// AsMaster marks the item as the definition anchor with the given id.
func AsMaster(anchor int) ItemOption {
	return func(i *Item) {
		i.Role = RoleMaster
		i.CrossRefID = anchor
	}
}

// AsReference marks the item as a usage pointing at the given anchor.
func AsReference(anchor int) ItemOption {
	return func(i *Item) {
		i.Role = RoleReference
		i.CrossRefID = anchor
	}
}
