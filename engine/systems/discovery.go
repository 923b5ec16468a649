package systems

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/spaghettifunk/pbrforge/engine/assets"
	"github.com/spaghettifunk/pbrforge/engine/core"
	"github.com/spaghettifunk/pbrforge/engine/renderer/metadata"
)

// PackedMarker marks generated textures. Names containing it are never
// matched to a role.
const PackedMarker = "packed"

// TokenFragmentLength is the longest fragment that only matches a whole
// token of a name. Longer fragments match anywhere.
const TokenFragmentLength = 4

// DefaultRoleCandidates are the filename fragments tried for each role, in
// priority order.
var DefaultRoleCandidates = map[metadata.TextureRole][]string{
	metadata.TextureRoleAlbedo:     {"albedo", "basecolor", "base_color", "diffuse", "color", "base", "diff"},
	metadata.TextureRoleNormal:     {"normal", "bump", "nrm", "norm"},
	metadata.TextureRoleRoughness:  {"roughness", "rough", "rgh"},
	metadata.TextureRoleSmoothness: {"smoothness", "smooth", "glossiness", "gloss"},
	metadata.TextureRoleMetalness:  {"metalness", "metallic", "metal"},
	metadata.TextureRoleSpecular:   {"specular", "spec"},
	metadata.TextureRoleAO:         {"ambientocclusion", "ambient_occlusion", "occlusion", "ao"},
	metadata.TextureRoleEmission:   {"emission", "emissive", "emiss", "emit", "glow"},
}

// nameTokens splits a texture name on separators, letter/digit changes and
// camelCase humps, lowercased. "Rock_BaseColor2" gives rock, base, color, 2.
func nameTokens(name string) []string {
	runes := []rune(name)
	var tokens []string
	start := -1
	flush := func(end int) {
		if start >= 0 && end > start {
			tokens = append(tokens, strings.ToLower(string(runes[start:end])))
		}
		start = -1
	}
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush(i)
			continue
		}
		if start >= 0 {
			prev := runes[i-1]
			switch {
			case unicode.IsDigit(r) != unicode.IsDigit(prev):
				flush(i)
			case unicode.IsUpper(r) && unicode.IsLower(prev):
				flush(i)
			case unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				// "AOMap" splits before the M
				flush(i)
			}
		}
		if start < 0 {
			start = i
		}
	}
	flush(len(runes))
	return tokens
}

// matchesFragment reports whether a lowered name contains needle. Short
// needles must equal one of the name tokens so that "ao" never matches
// "Cacao".
func matchesFragment(lowered string, tokens []string, needle string) bool {
	if len(needle) > TokenFragmentLength {
		return strings.Contains(lowered, needle)
	}
	for _, tok := range tokens {
		if tok == needle {
			return true
		}
	}
	return false
}

// RoleCandidates merges per-role overrides, keyed by role name, over the
// defaults. An override replaces the whole list of its role.
func RoleCandidates(overrides map[string][]string) (map[metadata.TextureRole][]string, error) {
	out := make(map[metadata.TextureRole][]string, len(DefaultRoleCandidates))
	for role, c := range DefaultRoleCandidates {
		out[role] = c
	}
	for name, c := range overrides {
		role, err := metadata.ParseTextureRole(name)
		if err != nil {
			return nil, err
		}
		if len(c) == 0 {
			return nil, fmt.Errorf("candidates for %s must not be empty", role)
		}
		out[role] = c
	}
	return out, nil
}

// matchRole returns the index in names of the texture chosen for a role, or
// -1. Matches are collected candidate by candidate in names order; packed
// outputs are dropped and the first remaining match wins.
func matchRole(names []string, candidates []string) int {
	lowered := make([]string, len(names))
	tokens := make([][]string, len(names))
	for i, n := range names {
		lowered[i] = strings.ToLower(n)
		tokens[i] = nameTokens(n)
	}

	seen := make(map[int]struct{})
	var matches []int
	for _, c := range candidates {
		needle := strings.ToLower(c)
		if needle == "" {
			continue
		}
		for i, n := range lowered {
			if _, ok := seen[i]; ok {
				continue
			}
			if matchesFragment(n, tokens[i], needle) {
				seen[i] = struct{}{}
				matches = append(matches, i)
			}
		}
	}
	for _, i := range matches {
		if !strings.Contains(lowered[i], PackedMarker) {
			return i
		}
	}
	return -1
}

// MatchRoles assigns at most one of names to every role. Roles are matched
// independently, so one name may serve several roles.
func MatchRoles(names []string, candidates map[metadata.TextureRole][]string) map[metadata.TextureRole]string {
	out := make(map[metadata.TextureRole]string)
	for _, role := range metadata.TextureRoles {
		if i := matchRole(names, candidates[role]); i >= 0 {
			out[role] = names[i]
		}
	}
	return out
}

// DiscoverySystem finds the textures of a folder and infers their roles.
type DiscoverySystem struct {
	db         *assets.AssetDatabase
	candidates map[metadata.TextureRole][]string
	recursive  bool
}

func NewDiscoverySystem(db *assets.AssetDatabase, candidates map[metadata.TextureRole][]string, recursive bool) *DiscoverySystem {
	if candidates == nil {
		candidates = DefaultRoleCandidates
	}
	return &DiscoverySystem{
		db:         db,
		candidates: candidates,
		recursive:  recursive,
	}
}

// Discover matches the textures of assetFolder to roles.
func (ds *DiscoverySystem) Discover(assetFolder string) (metadata.TextureSlots, error) {
	infos := ds.db.ListAssets(metadata.ResourceTypeTexture, ds.recursive, assetFolder)
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name()
	}

	slots := make(metadata.TextureSlots)
	for _, role := range metadata.TextureRoles {
		i := matchRole(names, ds.candidates[role])
		if i < 0 {
			continue
		}
		tex, err := ds.db.LoadTexture(infos[i].Path)
		if err != nil {
			return nil, err
		}
		slots.Set(role, tex)
		core.LogDebug("%s <- %s", role, tex.Path)
	}
	return slots, nil
}
