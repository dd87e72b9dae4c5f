// Package model defines the value-comparable metadata records the beacon
// pipeline extracts from annotated declarations and feeds to the emitter.
// Records compare structurally, never by identity: two passes over identical
// source must produce records that are equal and hash-equal, which is what
// the incremental cache keys on.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
)

// TypeDescriptor identifies the type that owns a set of candidates. Grouping
// records into one synthesis unit is keyed by this descriptor's structural
// equality.
type TypeDescriptor struct {
	PkgPath    string   `json:"pkg_path"`
	PkgName    string   `json:"pkg_name"`
	Name       string   `json:"name"`
	TypeParams []string `json:"type_params,omitempty"` // generic parameter names, receiver order
	Exported   bool     `json:"exported"`
}

// QualifiedName returns the fully qualified type name.
func (d TypeDescriptor) QualifiedName() string {
	if d.PkgPath == "" {
		return d.Name
	}
	return d.PkgPath + "." + d.Name
}

// Equal reports structural equality.
func (d TypeDescriptor) Equal(o TypeDescriptor) bool {
	return d.PkgPath == o.PkgPath &&
		d.PkgName == o.PkgName &&
		d.Name == o.Name &&
		slices.Equal(d.TypeParams, o.TypeParams) &&
		d.Exported == o.Exported
}

// GroupKey returns the map key used to merge records for the same type. Two
// descriptors with the same key but different flags indicate a bug in
// descriptor construction, which the emitter treats as fatal.
func (d TypeDescriptor) GroupKey() string {
	return d.QualifiedName()
}

func (d TypeDescriptor) hashInto(parts *[]string) {
	*parts = append(*parts,
		d.PkgPath, d.PkgName, d.Name,
		joinQuoted(d.TypeParams),
		fmt.Sprintf("%t", d.Exported),
	)
}

// hashParts produces a stable digest of an ordered part list. Field order is
// fixed, so identical records always digest identically.
func hashParts(parts []string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0}) // separator so "ab","c" != "a","bc"
	}
	return hex.EncodeToString(h.Sum(nil))
}

func joinQuoted(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return "\"" + strings.Join(items, "\",\"") + "\""
}
