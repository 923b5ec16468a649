package core

import (
	"strings"

	"github.com/google/uuid"
)

// GUID identifies an asset across renames. It is persisted in the asset's
// .meta sidecar and never changes once assigned.
type GUID string

const InvalidGUID GUID = ""

// IdentifierAquireNewGUID returns a fresh random asset identifier in the
// compact 32 hex digit form.
func IdentifierAquireNewGUID() GUID {
	return GUID(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// IdentifierParseGUID accepts both the compact and the dashed form.
func IdentifierParseGUID(s string) (GUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return InvalidGUID, err
	}
	return GUID(strings.ReplaceAll(id.String(), "-", "")), nil
}

func (g GUID) IsValid() bool {
	return g != InvalidGUID
}

func (g GUID) String() string {
	return string(g)
}
