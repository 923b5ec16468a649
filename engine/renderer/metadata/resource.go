package metadata

import (
	"fmt"

	"github.com/spaghettifunk/pbrforge/engine/core"
)

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Not an asset the database tracks. */
	ResourceTypeNone ResourceType = iota
	/** @brief Image resource type, imported as a texture. */
	ResourceTypeTexture
	/** @brief Material resource type. */
	ResourceTypeMaterial
)

func (rt ResourceType) String() string {
	switch rt {
	case ResourceTypeTexture:
		return "texture"
	case ResourceTypeMaterial:
		return "material"
	default:
		return "none"
	}
}

func ParseResourceType(s string) (ResourceType, error) {
	switch s {
	case "texture":
		return ResourceTypeTexture, nil
	case "material":
		return ResourceTypeMaterial, nil
	case "none", "":
		return ResourceTypeNone, nil
	}
	return ResourceTypeNone, fmt.Errorf("unknown resource type %q", s)
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The asset identifier from the .meta sidecar. */
	GUID core.GUID
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The resource type. */
	Type ResourceType
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}
