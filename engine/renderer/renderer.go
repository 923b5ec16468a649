package renderer

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/spaghettifunk/pbrforge/engine/core"
	"github.com/spaghettifunk/pbrforge/engine/renderer/metadata"
)

// RendererBackend executes shader programs over render targets.
type RendererBackend interface {
	RenderTargetCreate(width, height int) *RenderTarget
	RenderTargetDestroy(target *RenderTarget)
	ShaderCreate(shader *metadata.Shader, program FragmentProgram) error
	DrawFullscreen(shader *metadata.Shader, inputs *ShaderInputs, target *RenderTarget) error
	ReadPixels(target *RenderTarget) *image.NRGBA
}

type RendererType uint8

const (
	// Software runs fragment programs on the CPU.
	Software RendererType = iota
)

// Renderer owns the shader registry and forwards draws to the backend.
type Renderer struct {
	backend RendererBackend

	mu        sync.Mutex
	shaders   map[string]*metadata.Shader
	temporary map[*RenderTarget]struct{}
}

func New(rt RendererType) (*Renderer, error) {
	var backend RendererBackend
	switch rt {
	case Software:
		backend = newSoftwareBackend()
	default:
		return nil, fmt.Errorf("unsupported renderer type %d", rt)
	}

	r := &Renderer{
		backend:   backend,
		shaders:   make(map[string]*metadata.Shader),
		temporary: make(map[*RenderTarget]struct{}),
	}
	if err := r.registerBuiltinShaders(); err != nil {
		return nil, err
	}
	return r, nil
}

// RegisterShader makes shader available by name. program may be nil for
// material-only shaders that are never blitted.
func (r *Renderer) RegisterShader(shader *metadata.Shader, program FragmentProgram) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.shaders[shader.Name]; ok {
		return fmt.Errorf("shader %s already registered", shader.Name)
	}
	if program != nil {
		if err := r.backend.ShaderCreate(shader, program); err != nil {
			return err
		}
	}
	r.shaders[shader.Name] = shader
	core.LogDebug("shader %s registered", shader.Name)
	return nil
}

// FindShader looks a shader up by name.
func (r *Renderer) FindShader(name string) (*metadata.Shader, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.shaders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrShaderNotFound, name)
	}
	return s, nil
}

// GetTemporary allocates a render target that must be handed back with ReleaseTemporary.
func (r *Renderer) GetTemporary(width, height int) *RenderTarget {
	t := r.backend.RenderTargetCreate(width, height)
	r.mu.Lock()
	r.temporary[t] = struct{}{}
	r.mu.Unlock()
	return t
}

func (r *Renderer) ReleaseTemporary(target *RenderTarget) {
	r.mu.Lock()
	_, ok := r.temporary[target]
	delete(r.temporary, target)
	r.mu.Unlock()
	if ok {
		r.backend.RenderTargetDestroy(target)
	}
}

// ActiveTemporaries is the number of temporaries not yet released.
func (r *Renderer) ActiveTemporaries() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.temporary)
}

// Blit runs the named shader once per pixel of target.
func (r *Renderer) Blit(inputs *ShaderInputs, target *RenderTarget, shaderName string) error {
	shader, err := r.FindShader(shaderName)
	if err != nil {
		return err
	}
	return r.backend.DrawFullscreen(shader, inputs, target)
}

// ReadPixels copies the target contents back into an image.
func (r *Renderer) ReadPixels(target *RenderTarget) *image.NRGBA {
	return r.backend.ReadPixels(target)
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
