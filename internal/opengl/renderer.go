package opengl

import (
	"fmt"
	"strings"
	"unsafe"

	"fortio.org/log"
	gl "github.com/go-gl/gl/v4.1-core/gl"

	"physics-playground/core"
	"physics-playground/math"
	"physics-playground/scene"
	"physics-playground/ui"
)

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
	HasIndices bool
}

// FrameLights is the per-frame lighting state shared by every draw.
type FrameLights struct {
	Ambient        core.Color
	LightDir       math.Vec3
	LightColor     core.Color
	LightIntensity float32
	CameraPos      math.Vec3
	LightVP        math.Mat4
	Shadows        bool
}

// Renderer is the OpenGL rendering backend.
type Renderer struct {
	program uint32

	mvpLoc           int32
	modelLoc         int32
	lightViewProjLoc int32

	lightDirLoc       int32
	lightColorLoc     int32
	lightIntensityLoc int32
	ambientColorLoc   int32
	cameraPosLoc      int32

	shadingLoc      int32
	flatLoc         int32
	matAlbedoLoc    int32
	matSpecularLoc  int32
	matShininessLoc int32
	matMetallicLoc  int32
	matRoughnessLoc int32

	albedoTexLoc  int32
	hasTextureLoc int32

	envMapLoc          int32
	hasEnvMapLoc       int32
	envMapIntensityLoc int32

	shadowMapLoc   int32
	hasShadowsLoc  int32
	shadowTexelLoc int32

	shadowProg        uint32
	shadowLightMVPLoc int32
	shadowMap         *ShadowMap

	skybox  *Skybox
	target  *RenderTarget
	overlay *Overlay

	viewportW int32
	viewportH int32

	// wireframe tracks the current polygon mode so it is only switched on change.
	wireframe bool
	// frameShadows is set when this frame's shadow map is populated.
	frameShadows bool

	gpuMeshes map[*scene.Mesh]*GPUMesh
}

// ── Shaders ───────────────────────────────────────────────────────────────────

const vertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;
layout(location = 3) in vec4 inColor;

uniform mat4 mvp;
uniform mat4 model;
uniform mat4 lightViewProj;

out vec4 fragColor;
out vec3 fragNormal;
out vec2 fragUV;
out vec3 fragWorldPos;
out vec4 fragLightSpacePos;

void main() {
    vec4 worldPos     = model * vec4(inPosition, 1.0);
    fragLightSpacePos = lightViewProj * worldPos;
    gl_Position       = mvp * vec4(inPosition, 1.0);
    fragColor         = inColor;
    fragNormal        = mat3(model) * inNormal;
    fragUV            = inUV;
    fragWorldPos      = worldPos.xyz;
}
` + "\x00"

// fragment shader: one program for the four shading models, selected by the
// shading uniform in scene.Shading order.
const fragSrc = `
#version 410 core
in vec4 fragColor;
in vec3 fragNormal;
in vec2 fragUV;
in vec3 fragWorldPos;
in vec4 fragLightSpacePos;

out vec4 outColor;

uniform vec3  lightDir;
uniform vec3  lightColor;
uniform float lightIntensity;
uniform vec3  ambientColor;
uniform vec3  cameraPos;

#define SHADING_STANDARD 0
#define SHADING_PHONG    1
#define SHADING_LAMBERT  2
#define SHADING_UNLIT    3
uniform int  shading;
uniform bool flatShading;

uniform vec3  matAlbedo;
uniform vec3  matSpecular;
uniform float matShininess;
uniform float matMetallic;
uniform float matRoughness;

uniform sampler2D albedoTex;
uniform bool      hasTexture;

uniform samplerCube envMap;
uniform bool        hasEnvMap;
uniform float       envMapIntensity;

uniform sampler2DShadow shadowMap;
uniform bool            hasShadows;
uniform float           shadowTexel;

// ── Shadow ───────────────────────────────────────────────────────────────────

float calcShadow() {
    vec3 p = fragLightSpacePos.xyz / fragLightSpacePos.w;
    p = p * 0.5 + 0.5;
    if (p.z > 1.0) return 1.0;
    float shadow = 0.0;
    for (int x = -1; x <= 1; x++) {
        for (int y = -1; y <= 1; y++) {
            shadow += texture(shadowMap, vec3(p.xy + vec2(float(x), float(y)) * shadowTexel, p.z - 0.002));
        }
    }
    return shadow / 9.0;
}

// ── PBR helpers (Cook-Torrance BRDF) ─────────────────────────────────────────

const float PI = 3.14159265359;

float DistributionGGX(vec3 N, vec3 H, float roughness) {
    float a  = roughness * roughness;
    float a2 = a * a;
    float NdH = max(dot(N, H), 0.0);
    float d   = NdH * NdH * (a2 - 1.0) + 1.0;
    return a2 / (PI * d * d);
}

float GeometrySchlickGGX(float cosTheta, float roughness) {
    float r = roughness + 1.0;
    float k = (r * r) / 8.0;
    return cosTheta / (cosTheta * (1.0 - k) + k);
}

vec3 FresnelSchlick(float cosTheta, vec3 F0) {
    return F0 + (1.0 - F0) * pow(clamp(1.0 - cosTheta, 0.0, 1.0), 5.0);
}

vec3 evalPBR(vec3 N, vec3 V, vec3 L, vec3 rad, vec3 albedo, float metallic, float roughness, vec3 F0) {
    float NdL = max(dot(N, L), 0.0);
    if (NdL <= 0.0) return vec3(0.0);

    vec3  H   = normalize(V + L);
    float NdV = max(dot(N, V), 0.0);

    float D = DistributionGGX(N, H, roughness);
    float G = GeometrySchlickGGX(NdV, roughness) * GeometrySchlickGGX(NdL, roughness);
    vec3  F = FresnelSchlick(max(dot(H, V), 0.0), F0);

    vec3 kD       = (vec3(1.0) - F) * (1.0 - metallic);
    vec3 specular = D * G * F / max(4.0 * NdV * NdL, 0.001);

    return (kD * albedo / PI + specular) * rad * NdL;
}

// ── Main ─────────────────────────────────────────────────────────────────────

void main() {
    vec3 N;
    if (flatShading) {
        N = normalize(cross(dFdx(fragWorldPos), dFdy(fragWorldPos)));
    } else {
        N = normalize(fragNormal);
    }
    vec3 V = normalize(cameraPos - fragWorldPos);

    vec4 baseColor = fragColor * vec4(matAlbedo, 1.0);
    if (hasTexture) {
        baseColor *= texture(albedoTex, fragUV);
    }

    if (shading == SHADING_UNLIT) {
        outColor = baseColor;
        return;
    }

    float shadowFactor = hasShadows ? calcShadow() : 1.0;
    vec3  L   = normalize(-lightDir);
    vec3  rad = lightColor * lightIntensity * shadowFactor;
    float NdL = max(dot(N, L), 0.0);
    vec3  color;

    if (shading == SHADING_STANDARD) {
        float metallic  = matMetallic;
        float roughness = clamp(matRoughness, 0.04, 1.0);
        vec3  albedo    = baseColor.rgb;
        vec3  F0        = mix(vec3(0.04), albedo, metallic);

        color  = ambientColor * albedo * (1.0 - 0.5 * metallic);
        color += evalPBR(N, V, L, rad, albedo, metallic, roughness, F0);

        if (hasEnvMap) {
            vec3 R    = reflect(-V, N);
            vec3 env  = texture(envMap, R).rgb;
            vec3 F    = FresnelSchlick(max(dot(N, V), 0.0), F0);
            float spec = 1.0 - roughness * roughness;
            color += env * F * spec * envMapIntensity;
            color += env * albedo * (1.0 - metallic) * 0.25 * envMapIntensity;
        }
    } else {
        color  = ambientColor * baseColor.rgb;
        color += rad * NdL * baseColor.rgb;
        if (shading == SHADING_PHONG && NdL > 0.0) {
            vec3 H = normalize(L + V);
            color += rad * matSpecular * pow(max(dot(N, H), 0.0), matShininess);
        }
        if (hasEnvMap) {
            color += texture(envMap, reflect(-V, N)).rgb * baseColor.rgb * envMapIntensity * 0.25;
        }
    }

    outColor = vec4(color, baseColor.a);
}
` + "\x00"

const depthVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
uniform mat4 lightMVP;
void main() {
    gl_Position = lightMVP * vec4(inPosition, 1.0);
}
` + "\x00"

const depthFragSrc = `
#version 410 core
void main() {}
` + "\x00"

// ── NewRenderer ───────────────────────────────────────────────────────────────

// NewRenderer initialises OpenGL.
// Must be called after the GLFW window context is made current.
func NewRenderer() (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Infof("[OpenGL] version %s", gl.GoStr(gl.GetString(gl.VERSION)))

	prog, err := newProgram(vertSrc, fragSrc)
	if err != nil {
		return nil, fmt.Errorf("main shader compile: %w", err)
	}

	shadowProg, err := newProgram(depthVertSrc, depthFragSrc)
	if err != nil {
		gl.DeleteProgram(prog)
		return nil, fmt.Errorf("depth shader compile: %w", err)
	}

	skybox, err := NewSkybox()
	if err != nil {
		gl.DeleteProgram(prog)
		gl.DeleteProgram(shadowProg)
		return nil, err
	}

	overlay, err := NewOverlay()
	if err != nil {
		skybox.Destroy()
		gl.DeleteProgram(prog)
		gl.DeleteProgram(shadowProg)
		return nil, err
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)

	loc := func(name string) int32 { return gl.GetUniformLocation(prog, gl.Str(name+"\x00")) }

	r := &Renderer{
		program:    prog,
		shadowProg: shadowProg,
		skybox:     skybox,
		overlay:    overlay,

		mvpLoc:           loc("mvp"),
		modelLoc:         loc("model"),
		lightViewProjLoc: loc("lightViewProj"),

		lightDirLoc:       loc("lightDir"),
		lightColorLoc:     loc("lightColor"),
		lightIntensityLoc: loc("lightIntensity"),
		ambientColorLoc:   loc("ambientColor"),
		cameraPosLoc:      loc("cameraPos"),

		shadingLoc:      loc("shading"),
		flatLoc:         loc("flatShading"),
		matAlbedoLoc:    loc("matAlbedo"),
		matSpecularLoc:  loc("matSpecular"),
		matShininessLoc: loc("matShininess"),
		matMetallicLoc:  loc("matMetallic"),
		matRoughnessLoc: loc("matRoughness"),

		albedoTexLoc:  loc("albedoTex"),
		hasTextureLoc: loc("hasTexture"),

		envMapLoc:          loc("envMap"),
		hasEnvMapLoc:       loc("hasEnvMap"),
		envMapIntensityLoc: loc("envMapIntensity"),

		shadowMapLoc:   loc("shadowMap"),
		hasShadowsLoc:  loc("hasShadows"),
		shadowTexelLoc: loc("shadowTexel"),

		shadowLightMVPLoc: gl.GetUniformLocation(shadowProg, gl.Str("lightMVP\x00")),

		gpuMeshes: make(map[*scene.Mesh]*GPUMesh),
	}

	// Texture units: albedo=0, shadowMap=1, envMap=2
	gl.UseProgram(prog)
	gl.Uniform1i(r.albedoTexLoc, 0)
	gl.Uniform1i(r.shadowMapLoc, 1)
	gl.Uniform1i(r.envMapLoc, 2)

	ident := math.Mat4Identity()
	gl.UniformMatrix4fv(r.lightViewProjLoc, 1, false, &ident[0][0])

	return r, nil
}

// ── Viewport ──────────────────────────────────────────────────────────────────

// SetViewport stores the window framebuffer size and resizes the offscreen
// target when one is active. renderW and renderH are the size the scene is
// drawn at; they differ from width and height only when the pixel ratio is
// capped below the native one.
func (r *Renderer) SetViewport(width, height, renderW, renderH int) error {
	r.viewportW = int32(width)
	r.viewportH = int32(height)

	if renderW == width && renderH == height {
		if r.target != nil {
			r.target.Destroy()
			r.target = nil
			log.LogVf("[OpenGL] offscreen target released")
		}
		return nil
	}
	if r.target == nil {
		t, err := NewRenderTarget(renderW, renderH)
		if err != nil {
			return err
		}
		r.target = t
		log.LogVf("[OpenGL] offscreen target %dx%d", renderW, renderH)
		return nil
	}
	return r.target.Resize(renderW, renderH)
}

// renderSize is the size the scene pass draws at.
func (r *Renderer) renderSize() (int32, int32) {
	if r.target != nil {
		return r.target.Width, r.target.Height
	}
	return r.viewportW, r.viewportH
}

// ── Shadow map ────────────────────────────────────────────────────────────────

// EnsureShadowMap creates or recreates the depth FBO at size.
func (r *Renderer) EnsureShadowMap(size int) error {
	if r.shadowMap != nil && int(r.shadowMap.Size) == size {
		return nil
	}
	if r.shadowMap != nil {
		r.shadowMap.Destroy()
		r.shadowMap = nil
	}
	sm, err := NewShadowMap(size)
	if err != nil {
		return err
	}
	r.shadowMap = sm
	return nil
}

// BeginShadowPass binds the depth FBO. The shadow pass always renders filled
// triangles regardless of material wireframe.
func (r *Renderer) BeginShadowPass() {
	if r.shadowMap == nil {
		return
	}
	r.setWireframe(false)
	gl.BindFramebuffer(gl.FRAMEBUFFER, r.shadowMap.FBO)
	gl.Viewport(0, 0, r.shadowMap.Size, r.shadowMap.Size)
	gl.Clear(gl.DEPTH_BUFFER_BIT)
	gl.UseProgram(r.shadowProg)
}

// DrawMeshShadow draws a mesh into the depth buffer.
func (r *Renderer) DrawMeshShadow(mesh *scene.Mesh, lightMVP math.Mat4) {
	if r.shadowMap == nil {
		return
	}
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}
	gl.UniformMatrix4fv(r.shadowLightMVPLoc, 1, false, &lightMVP[0][0])
	r.drawGPU(gpu, mesh)
}

func (r *Renderer) EndShadowPass() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// ── BeginFrame ────────────────────────────────────────────────────────────────

// BeginFrame binds the scene target, clears it to background and sets the
// per-frame lighting and shadow uniforms.
func (r *Renderer) BeginFrame(background core.Color, fl FrameLights) {
	w, h := r.renderSize()
	if r.target != nil {
		gl.BindFramebuffer(gl.FRAMEBUFFER, r.target.FBO)
	} else {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	}
	gl.Viewport(0, 0, w, h)
	gl.ClearColor(background.R, background.G, background.B, background.A)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UseProgram(r.program)
	gl.Uniform3f(r.ambientColorLoc, fl.Ambient.R, fl.Ambient.G, fl.Ambient.B)
	gl.Uniform3f(r.cameraPosLoc, fl.CameraPos.X, fl.CameraPos.Y, fl.CameraPos.Z)
	gl.Uniform3f(r.lightDirLoc, fl.LightDir.X, fl.LightDir.Y, fl.LightDir.Z)
	gl.Uniform3f(r.lightColorLoc, fl.LightColor.R, fl.LightColor.G, fl.LightColor.B)
	gl.Uniform1f(r.lightIntensityLoc, fl.LightIntensity)
	gl.UniformMatrix4fv(r.lightViewProjLoc, 1, false, &fl.LightVP[0][0])

	r.frameShadows = fl.Shadows && r.shadowMap != nil
	if r.frameShadows {
		gl.ActiveTexture(gl.TEXTURE1)
		gl.BindTexture(gl.TEXTURE_2D, r.shadowMap.DepthTex)
		gl.Uniform1f(r.shadowTexelLoc, 1/float32(r.shadowMap.Size))
	}
	gl.Uniform1i(r.hasShadowsLoc, 0)
}

// DrawSkybox draws the environment cube map behind the scene. view keeps its
// rotation only.
func (r *Renderer) DrawSkybox(env *scene.CubeTexture, view, proj math.Mat4) {
	if env == nil || env.GLID == 0 {
		return
	}
	r.setWireframe(false)
	view[3][0], view[3][1], view[3][2] = 0, 0, 0
	r.skybox.Draw(env.GLID, view.Mul(proj))
}

// ── DrawMesh ──────────────────────────────────────────────────────────────────

// DrawMesh draws mesh shaded with mat. Wireframe is a material property and
// switches the polygon mode for this draw only. receiveShadow has no effect
// on frames without a shadow pass.
func (r *Renderer) DrawMesh(mesh *scene.Mesh, mat *scene.Material, mvp, model math.Mat4, receiveShadow bool) {
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}
	if mat == nil {
		mat = scene.DefaultMaterial()
	}

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.mvpLoc, 1, false, &mvp[0][0])
	gl.UniformMatrix4fv(r.modelLoc, 1, false, &model[0][0])
	gl.Uniform1i(r.hasShadowsLoc, boolToInt(r.frameShadows && receiveShadow))
	r.applyMaterial(mat)
	r.setWireframe(mat.Wireframe)
	r.drawGPU(gpu, mesh)
}

func (r *Renderer) drawGPU(gpu *GPUMesh, mesh *scene.Mesh) {
	gl.BindVertexArray(gpu.VAO)
	if gpu.HasIndices {
		gl.DrawElements(gl.TRIANGLES, gpu.IndexCount, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, int32(len(mesh.Vertices)))
	}
	gl.BindVertexArray(0)
}

// applyMaterial sets all material-related shader uniforms and binds textures.
// Must be called while r.program is active.
func (r *Renderer) applyMaterial(mat *scene.Material) {
	gl.Uniform1i(r.shadingLoc, int32(mat.Shading))
	gl.Uniform1i(r.flatLoc, boolToInt(mat.FlatShading))
	gl.Uniform3f(r.matAlbedoLoc, mat.Albedo.R, mat.Albedo.G, mat.Albedo.B)
	gl.Uniform3f(r.matSpecularLoc, mat.Specular.R, mat.Specular.G, mat.Specular.B)
	gl.Uniform1f(r.matShininessLoc, max(mat.Shininess, 1))
	gl.Uniform1f(r.matMetallicLoc, mat.Metallic)
	gl.Uniform1f(r.matRoughnessLoc, mat.Roughness)

	if tex := mat.AlbedoTexture; tex != nil && tex.GLID != 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, tex.GLID)
		gl.Uniform1i(r.hasTextureLoc, 1)
	} else {
		gl.Uniform1i(r.hasTextureLoc, 0)
	}

	if env := mat.EnvMap; env != nil && env.GLID != 0 {
		gl.ActiveTexture(gl.TEXTURE2)
		gl.BindTexture(gl.TEXTURE_CUBE_MAP, env.GLID)
		gl.Uniform1i(r.hasEnvMapLoc, 1)
		gl.Uniform1f(r.envMapIntensityLoc, mat.EnvMapIntensity)
	} else {
		gl.Uniform1i(r.hasEnvMapLoc, 0)
	}
}

func (r *Renderer) setWireframe(on bool) {
	if on == r.wireframe {
		return
	}
	r.wireframe = on
	if on {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

// ── Overlay and present ──────────────────────────────────────────────────────

// EndFrame resolves the offscreen target to the window and draws the overlay
// quads on top at native resolution.
func (r *Renderer) EndFrame(quads []ui.Quad, scale float32) {
	r.setWireframe(false)
	if r.target != nil {
		r.target.Blit(r.viewportW, r.viewportH)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, r.viewportW, r.viewportH)
	r.overlay.Draw(quads, float32(r.viewportW), float32(r.viewportH), scale)
}

// ── Resource management ───────────────────────────────────────────────────────

// ReleaseMesh frees GPU buffers for the given mesh.
func (r *Renderer) ReleaseMesh(mesh *scene.Mesh) {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		gl.DeleteVertexArrays(1, &gpu.VAO)
		gl.DeleteBuffers(1, &gpu.VBO)
		if gpu.HasIndices {
			gl.DeleteBuffers(1, &gpu.EBO)
		}
		delete(r.gpuMeshes, mesh)
		mesh.GPUData = nil
	}
}

// Destroy releases all GPU resources.
func (r *Renderer) Destroy() {
	for mesh := range r.gpuMeshes {
		r.ReleaseMesh(mesh)
	}
	if r.shadowMap != nil {
		r.shadowMap.Destroy()
	}
	if r.target != nil {
		r.target.Destroy()
	}
	r.skybox.Destroy()
	r.overlay.Destroy()
	gl.DeleteProgram(r.shadowProg)
	gl.DeleteProgram(r.program)
}

// ── Internal helpers ──────────────────────────────────────────────────────────

// ensureUploaded uploads vertex/index data if not already done. Meshes are
// shared by every node built from the same template, so each uploads once.
func (r *Renderer) ensureUploaded(mesh *scene.Mesh) *GPUMesh {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		return gpu
	}
	if len(mesh.Vertices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))

	gpu := &GPUMesh{
		IndexCount: int32(len(mesh.Indices)),
		HasIndices: len(mesh.Indices) > 0,
	}

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*int(stride), gl.Ptr(mesh.Vertices), gl.STATIC_DRAW)

	var v core.Vertex
	attribs := []struct {
		size   int32
		offset int
	}{
		{3, int(unsafe.Offsetof(v.Position))},
		{3, int(unsafe.Offsetof(v.Normal))},
		{2, int(unsafe.Offsetof(v.UV))},
		{4, int(unsafe.Offsetof(v.Color))},
	}
	for i, a := range attribs {
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointer(uint32(i), a.size, gl.FLOAT, false, stride, gl.PtrOffset(a.offset))
	}

	if gpu.HasIndices {
		gl.GenBuffers(1, &gpu.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)

	r.gpuMeshes[mesh] = gpu
	mesh.GPUData = gpu
	return gpu
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// ── Shader helpers ────────────────────────────────────────────────────────────

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		infoLog := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(infoLog))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", infoLog)
	}
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		infoLog := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(infoLog))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %v", infoLog)
	}
	return shader, nil
}
