package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTextureRole(t *testing.T) {
	for _, r := range TextureRoles {
		parsed, err := ParseTextureRole(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}
	parsed, err := ParseTextureRole("  Normal ")
	require.NoError(t, err)
	assert.Equal(t, TextureRoleNormal, parsed)

	_, err = ParseTextureRole("height")
	assert.Error(t, err)
}

func TestTextureRole_IsColor(t *testing.T) {
	for _, r := range TextureRoles {
		want := r == TextureRoleAlbedo
		assert.Equal(t, want, r.IsColor(), r.String())
	}
}

func TestTextureSlots(t *testing.T) {
	var nilSlots TextureSlots
	assert.Nil(t, nilSlots.Get(TextureRoleAlbedo))
	assert.False(t, nilSlots.Has(TextureRoleAlbedo))

	slots := make(TextureSlots)
	slots.Set(TextureRoleEmission, &Texture{Name: "glow"})
	slots.Set(TextureRoleAlbedo, &Texture{Name: "albedo"})
	assert.Equal(t, []TextureRole{TextureRoleAlbedo, TextureRoleEmission}, slots.Bound())

	slots.Set(TextureRoleAlbedo, nil)
	assert.False(t, slots.Has(TextureRoleAlbedo))
	assert.Len(t, slots, 1)
}

func TestWorkflowMode(t *testing.T) {
	m, err := ParseWorkflowMode("Specular")
	require.NoError(t, err)
	assert.Equal(t, WorkflowModeSpecular, m)
	assert.Equal(t, TextureRoleSpecular, m.GlossRole())
	assert.Equal(t, TextureRoleMetalness, WorkflowModeMetallic.GlossRole())

	_, err = ParseWorkflowMode("toon")
	assert.Error(t, err)
}

func TestGIFlag(t *testing.T) {
	for _, g := range []GIFlag{GIFlagNone, GIFlagRealtime, GIFlagBaked, GIFlagEmissiveIsBlack} {
		parsed, err := ParseGIFlag(g.String())
		require.NoError(t, err)
		assert.Equal(t, g, parsed)
	}
	_, err := ParseGIFlag("sometimes")
	assert.Error(t, err)
}

func TestEmissionSettings_Cleared(t *testing.T) {
	assert.True(t, EmissionSettings{Enabled: false, GIFlag: GIFlagBaked}.Cleared())
	assert.True(t, EmissionSettings{Enabled: true, GIFlag: GIFlagEmissiveIsBlack}.Cleared())
	assert.False(t, EmissionSettings{Enabled: true, GIFlag: GIFlagRealtime}.Cleared())
}

func TestMaterial_Keywords(t *testing.T) {
	m := NewMaterial("Rock", ShaderNameStandard)
	m.SetKeyword(KeywordNormalMap, true)
	m.EnableKeyword(KeywordEmission)
	m.SetKeyword(KeywordMetallicGlossMap, false)
	assert.Equal(t, []string{KeywordEmission, KeywordNormalMap}, m.EnabledKeywords())

	m.DisableKeyword(KeywordEmission)
	assert.False(t, m.IsKeywordEnabled(KeywordEmission))
}

func TestMaterial_SetTextureNilClears(t *testing.T) {
	m := NewMaterial("Rock", ShaderNameStandard)
	m.SetTexture(PropMainTex, &Texture{Path: "Assets/Rock/Rock_Albedo.png"})
	assert.NotNil(t, m.GetTexture(PropMainTex))

	var none *Texture
	m.SetTexture(PropMainTex, none)
	assert.Nil(t, m.GetTexture(PropMainTex))
	assert.Empty(t, m.Textures)
}
