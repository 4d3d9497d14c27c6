// Package renderer drives the OpenGL backend for a whole scene: shadow pass,
// sky, meshes, then the screen-space overlay.
package renderer

import (
	"errors"
	"fmt"

	"fortio.org/log"

	"physics-playground/internal/opengl"
	"physics-playground/math"
	"physics-playground/playground"
	"physics-playground/scene"
	"physics-playground/ui"
)

// ErrNoCamera is returned by Render for a scene without a camera.
var ErrNoCamera = errors.New("scene has no camera")

// RenderEngine is the high-level renderer that drives the OpenGL backend.
// All methods must be called on the goroutine that owns the GL context.
type RenderEngine struct {
	gl       *opengl.Renderer
	viewport playground.Viewport

	// ShadowsEnabled gates the shadow pass for every light.
	ShadowsEnabled bool
	shadowsBroken  bool
	// FrustumCulling skips meshes outside the camera view in the main pass.
	// They still cast shadows.
	FrustumCulling bool

	// Per-frame stats (populated during Render)
	lastObjects   int
	lastTriangles int
	lastCulled    int
}

func NewRenderEngine() (*RenderEngine, error) {
	glRenderer, err := opengl.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenGL renderer: %w", err)
	}
	log.Infof("[Renderer] initialized (OpenGL)")
	return &RenderEngine{gl: glRenderer, ShadowsEnabled: true, FrustumCulling: true}, nil
}

func (re *RenderEngine) UploadTexture(tex *scene.Texture) error {
	return opengl.UploadTexture(tex)
}

func (re *RenderEngine) UploadCubeTexture(tex *scene.CubeTexture) error {
	return opengl.UploadCubeTexture(tex)
}

func (re *RenderEngine) ReleaseTexture(tex *scene.Texture) {
	opengl.DeleteTexture(tex)
}

// ReleaseCubeTexture frees an environment map. The skybox samples the same
// texture, so nothing else holds it.
func (re *RenderEngine) ReleaseCubeTexture(tex *scene.CubeTexture) {
	opengl.DeleteCubeTexture(tex)
}

// Resize updates the window size and the scene render size. A failure to
// allocate the offscreen target leaves the previous one in place.
func (re *RenderEngine) Resize(vp playground.Viewport) {
	re.viewport = vp
	rw, rh := vp.RenderSize()
	if err := re.gl.SetViewport(vp.FramebufferWidth, vp.FramebufferHeight, rw, rh); err != nil {
		log.Warnf("[Renderer] resize to %dx%d: %v", rw, rh, err)
		return
	}
	log.LogVf("[Renderer] viewport %dx%d, drawing at %dx%d (pixel ratio %.2f)",
		vp.FramebufferWidth, vp.FramebufferHeight, rw, rh, vp.PixelRatio)
}

// Render draws s and then overlay on top. Buffers are swapped by the caller.
func (re *RenderEngine) Render(s *scene.Scene, overlay []ui.Quad) error {
	if s == nil || s.Camera == nil {
		return ErrNoCamera
	}
	nodes := s.GetVisibleNodes()

	// ── Shadow pass ───────────────────────────────────────────────────────────
	sun := s.DirectionalLight()
	lightVP := math.Mat4Identity()
	doShadows := re.ShadowsEnabled && !re.shadowsBroken && sun != nil && sun.CastShadow
	if doShadows {
		if err := re.gl.EnsureShadowMap(sun.Shadow.MapSize); err != nil {
			log.Warnf("[Renderer] shadows disabled: %v", err)
			re.shadowsBroken = true
			doShadows = false
		}
	}
	if doShadows {
		lightView, lightProj := sun.ShadowMatrices()
		lightVP = lightView.Mul(lightProj)

		re.gl.BeginShadowPass()
		for _, node := range nodes {
			if !node.CastShadow {
				continue
			}
			re.gl.DrawMeshShadow(node.Mesh, node.GetWorldMatrix().Mul(lightVP))
		}
		re.gl.EndShadowPass()
	}

	// ── Main render pass ──────────────────────────────────────────────────────
	fl := opengl.FrameLights{
		Ambient:   s.AmbientColor(),
		CameraPos: s.Camera.Position,
		LightVP:   lightVP,
		Shadows:   doShadows,
	}
	if sun != nil {
		fl.LightDir = sun.Direction()
		fl.LightColor = sun.Color
		fl.LightIntensity = sun.Intensity
	}
	re.gl.BeginFrame(s.Background, fl)

	view := s.Camera.GetViewMatrix()
	proj := s.Camera.GetProjectionMatrix()
	re.gl.DrawSkybox(s.Skybox, view, proj)

	vp := view.Mul(proj)
	frustum := scene.FrustumFromVP(vp)
	objects, triangles, culled := 0, 0, 0
	for _, node := range nodes {
		model := node.GetWorldMatrix()
		if re.FrustumCulling && !scene.ComputeAABB(node.Mesh, model).IntersectsFrustum(&frustum) {
			culled++
			continue
		}
		re.gl.DrawMesh(node.Mesh, node.EffectiveMaterial(), model.Mul(vp), model, node.ReceiveShadow)
		objects++
		triangles += len(node.Mesh.Indices) / 3
	}
	re.lastObjects = objects
	re.lastTriangles = triangles
	re.lastCulled = culled

	re.gl.EndFrame(overlay, re.overlayScale())
	return nil
}

// overlayScale converts window coordinates to framebuffer pixels.
func (re *RenderEngine) overlayScale() float32 {
	if re.viewport.Width <= 0 {
		return 1
	}
	return float32(re.viewport.FramebufferWidth) / float32(re.viewport.Width)
}

// DrawStats returns the meshes and triangles drawn last frame and the meshes
// skipped by culling.
func (re *RenderEngine) DrawStats() (objects, triangles, culled int) {
	return re.lastObjects, re.lastTriangles, re.lastCulled
}

func (re *RenderEngine) Destroy() {
	re.gl.Destroy()
}
