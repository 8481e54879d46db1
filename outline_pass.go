package postfx

import (
	"fmt"
	"image"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/postfx/render"
	"github.com/gogpu/postfx/shader"
)

// Labels of the surfaces an OutlinePass owns, in the order Surfaces
// returns them.
const (
	LabelOutlineMask           = "OutlinePass.mask"
	LabelOutlineDepth          = "OutlinePass.depth"
	LabelOutlineMaskDownSample = "OutlinePass.depthDownSample"
	LabelOutlineBlur1          = "OutlinePass.blur1"
	LabelOutlineBlur2          = "OutlinePass.blur2"
	LabelOutlineEdge1          = "OutlinePass.edge1"
	LabelOutlineEdge2          = "OutlinePass.edge2"
)

// DefaultOutlineResolution is the resolution used when none is given.
var DefaultOutlineResolution = image.Pt(256, 256)

// OutlinePass draws a glowing outline around selected objects on top of
// the read surface.
//
// Each frame it renders the depth of the unselected scene, renders a mask
// of the selection that records which selected fragments lie behind other
// geometry, detects the mask's edges at a reduced resolution, blurs them
// into a sharp tier and a wide glow tier and finally adds the result to
// the read surface. Edges in front of other geometry use VisibleEdgeColor,
// edges behind it HiddenEdgeColor.
//
// Visibility flags of scene objects are changed during Render and restored
// before it returns. The renderer's clear color and auto-clear flag are
// restored as well. With an empty selection Render does nothing.
//
// Example:
//
//	p := postfx.NewOutlinePass(r, image.Pt(w, h), scene, camera, []render.Object{cube})
//	p.VisibleEdgeColor = render.Hex(0xffffff)
//	p.HiddenEdgeColor = render.Hex(0xff00ff)
//	p.EdgeGlow = 1
//	if err := p.Err(); err != nil {
//	    log.Printf("outline disabled: %v", err)
//	}
//	composer.AddPass(p)
type OutlinePass struct {
	PassBase

	VisibleEdgeColor gputypes.Color
	HiddenEdgeColor  gputypes.Color

	// EdgeStrength scales the edge intensity.
	EdgeStrength float64

	// EdgeGlow weighs the wide glow tier.
	EdgeGlow float64

	// EdgeThickness is the blur kernel radius of the sharp tier, in texels
	// up to MaxEdgeThickness.
	EdgeThickness float64

	// PulsePeriod animates the outline opacity when > 0. Larger values
	// pulse slower.
	PulsePeriod float64

	// UsePatternTexture tiles PatternTexture over the selected objects.
	UsePatternTexture bool
	PatternTexture    render.Surface

	renderer render.Renderer
	scene    render.Scene
	camera   render.Camera
	selected []render.Object

	resolution      image.Point
	downSampleRatio float64

	mask, depth, maskDown render.Surface
	blur1, blur2          render.Surface
	edge1, edge2          render.Surface

	depthMaterial       *render.Material
	prepareMaskMaterial *render.Material
	copyMaterial        *render.Material
	edgeMaterial        *render.Material
	blurMaterial1       *render.Material
	blurMaterial2       *render.Material
	overlayMaterial     *render.Material
	quad                *FullScreenQuad

	textureMatrix mgl32.Mat4
	pulseWeight   float64

	clock func() time.Time
	start time.Time

	err error
}

// NewOutlinePass creates an outline pass for the selected objects of s seen
// by camera. A zero resolution selects DefaultOutlineResolution. The pass
// owns seven surfaces allocated on r.
//
// Configuration errors, such as a program r cannot run, are logged once
// and reported by Err; such a pass renders nothing.
func NewOutlinePass(r render.Renderer, resolution image.Point, s render.Scene, camera render.Camera,
	selected []render.Object, opts ...OutlineOption) *OutlinePass {
	o := defaultOutlineOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if resolution == (image.Point{}) {
		resolution = DefaultOutlineResolution
	}

	p := &OutlinePass{
		PassBase:         NewPassBase(),
		VisibleEdgeColor: gputypes.Color{R: 1, G: 1, B: 1, A: 1},
		HiddenEdgeColor:  gputypes.Color{R: 0.1, G: 0.04, B: 0.02, A: 1},
		EdgeStrength:     3,
		EdgeGlow:         0,
		EdgeThickness:    1,

		PatternTexture:    o.pattern,
		UsePatternTexture: o.pattern != nil,

		renderer:        r,
		scene:           s,
		camera:          camera,
		selected:        slices.Clone(selected),
		resolution:      resolution,
		downSampleRatio: o.downSampleRatio,

		depthMaterial:       newDepthMaterial(),
		prepareMaskMaterial: newPrepareMaskMaterial(),
		copyMaterial:        newCopyMaterial(),
		edgeMaterial:        newEdgeDetectionMaterial(),
		blurMaterial1:       newSeparableBlurMaterial(MaxEdgeThickness),
		blurMaterial2:       newSeparableBlurMaterial(MaxEdgeGlow),
		overlayMaterial:     newOverlayMaterial(),

		textureMatrix: mgl32.Ident4(),
		pulseWeight:   1,
		clock:         o.clock,
	}
	p.NeedsSwap = false
	p.quad = NewFullScreenQuad(p.copyMaterial)
	p.start = p.clock()
	p.blurMaterial2.Uniforms["kernelRadius"] = float32(MaxEdgeGlow)

	if err := p.init(o.library); err != nil {
		p.err = err
		Logger().Error("postfx: outline pass disabled", "err", err)
	}
	return p
}

func (p *OutlinePass) init(lib *shader.Library) error {
	if p.renderer == nil {
		return ErrNilRenderer
	}
	propagateLogger(p.renderer)
	if err := p.checkPrograms(lib); err != nil {
		return err
	}
	if p.scene == nil || p.camera == nil {
		return render.ErrNilScene
	}
	return p.allocate()
}

// checkPrograms verifies that every program the pass draws with is
// available, asking the renderer when it can tell and lib otherwise.
func (p *OutlinePass) checkPrograms(lib *shader.Library) error {
	if lib == nil {
		lib = shader.Default()
	}
	has := lib.Has
	if pc, ok := p.renderer.(render.ProgramChecker); ok {
		has = pc.HasProgram
	}
	var missing []string
	for _, name := range outlinePrograms {
		if !has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingProgram, strings.Join(missing, ", "))
	}
	return nil
}

func (p *OutlinePass) allocate() error {
	t1, t2 := p.TierSizes()
	full := p.resolution
	specs := []struct {
		dst   *render.Surface
		label string
		size  image.Point
	}{
		{&p.mask, LabelOutlineMask, full},
		{&p.depth, LabelOutlineDepth, full},
		{&p.maskDown, LabelOutlineMaskDownSample, t1},
		{&p.blur1, LabelOutlineBlur1, t1},
		{&p.blur2, LabelOutlineBlur2, t2},
		{&p.edge1, LabelOutlineEdge1, t1},
		{&p.edge2, LabelOutlineEdge2, t2},
	}
	for _, s := range specs {
		surface, err := p.renderer.NewSurface(render.DefaultSurfaceDescriptor(s.label, s.size.X, s.size.Y))
		if err != nil {
			p.Dispose()
			return fmt.Errorf("postfx: allocate %s: %w", s.label, err)
		}
		*s.dst = surface
	}
	p.updateBlurSizes()
	Logger().Info("postfx: outline surfaces allocated",
		"resolution", full, "tier1", t1, "tier2", t2)
	return nil
}

// Err returns the configuration error that disabled the pass, if any.
func (p *OutlinePass) Err() error { return p.err }

// Resolution returns the full resolution of the mask and depth surfaces.
func (p *OutlinePass) Resolution() image.Point { return p.resolution }

// DownSampleRatio returns the ratio between the full resolution and the
// first tier.
func (p *OutlinePass) DownSampleRatio() float64 { return p.downSampleRatio }

// TierSizes returns the sizes of the two blur tiers derived from the
// current resolution: round(resolution / ratio) and half of that, rounded.
func (p *OutlinePass) TierSizes() (tier1, tier2 image.Point) {
	return tierSizes(p.resolution, p.downSampleRatio)
}

func tierSizes(full image.Point, ratio float64) (tier1, tier2 image.Point) {
	tier1 = image.Pt(roundDiv(full.X, ratio), roundDiv(full.Y, ratio))
	tier2 = image.Pt(roundDiv(tier1.X, 2), roundDiv(tier1.Y, 2))
	return tier1, tier2
}

// roundDiv divides and rounds half up.
func roundDiv(v int, d float64) int {
	return int(math.Floor(float64(v)/d + 0.5))
}

// Surfaces returns the owned surfaces: mask, depth, downsampled mask,
// blur1, blur2, edge1 and edge2. Entries are nil when allocation failed.
func (p *OutlinePass) Surfaces() []render.Surface {
	return []render.Surface{p.mask, p.depth, p.maskDown, p.blur1, p.blur2, p.edge1, p.edge2}
}

// SelectedObjects returns a copy of the selection.
func (p *OutlinePass) SelectedObjects() []render.Object {
	return slices.Clone(p.selected)
}

// SetSelectedObjects replaces the selection. No objects clears it.
func (p *OutlinePass) SetSelectedObjects(objects ...render.Object) {
	p.selected = slices.Clone(objects)
}

// AddSelectedObject appends o to the selection.
func (p *OutlinePass) AddSelectedObject(o render.Object) {
	p.selected = append(p.selected, o)
}

// PulseWeight returns the opacity factor of the last rendered frame.
func (p *OutlinePass) PulseWeight() float64 { return p.pulseWeight }

// TextureMatrix returns the matrix of the last rendered frame mapping world
// positions to uv coordinates of the depth surface.
func (p *OutlinePass) TextureMatrix() mgl32.Mat4 { return p.textureMatrix }

// SetSize resizes the mask and depth surfaces to width x height and both
// blur tiers to the sizes derived from it.
func (p *OutlinePass) SetSize(width, height int) {
	p.resolution = image.Pt(width, height)
	if p.err != nil {
		return
	}
	t1, t2 := p.TierSizes()
	p.mask.SetSize(width, height)
	p.depth.SetSize(width, height)
	p.maskDown.SetSize(t1.X, t1.Y)
	p.blur1.SetSize(t1.X, t1.Y)
	p.edge1.SetSize(t1.X, t1.Y)
	p.blur2.SetSize(t2.X, t2.Y)
	p.edge2.SetSize(t2.X, t2.Y)
	p.updateBlurSizes()
	Logger().Debug("postfx: outline resized", "resolution", p.resolution, "tier1", t1, "tier2", t2)
}

// updateBlurSizes keeps the blur texel size in step with the tier surfaces.
func (p *OutlinePass) updateBlurSizes() {
	p.blurMaterial1.Uniforms["texSize"] = surfaceSize(p.blur1)
	p.blurMaterial2.Uniforms["texSize"] = surfaceSize(p.blur2)
}

func surfaceSize(s render.Surface) mgl32.Vec2 {
	return mgl32.Vec2{float32(s.Width()), float32(s.Height())}
}

// Dispose releases the owned surfaces.
func (p *OutlinePass) Dispose() {
	for _, s := range p.Surfaces() {
		if s != nil {
			s.Dispose()
		}
	}
}

// pulseWeight returns the outline opacity factor elapsed time into the
// animation: a cosine between 0.25 and 1 whose period is 200*pi*period
// milliseconds, or 1 when period is not positive.
func pulseWeight(elapsed time.Duration, period float64) float64 {
	if period <= 0 {
		return 1
	}
	const low = 0.25
	ms := float64(elapsed) / float64(time.Millisecond)
	return (1+low)/2 + math.Cos(ms*0.01/period)*(1-low)/2
}

// textureMatrix maps world positions to [0,1] texture space of camera's
// view.
func textureMatrix(camera render.Camera) mgl32.Mat4 {
	bias := mgl32.Translate3D(0.5, 0.5, 0.5).Mul4(mgl32.Scale3D(0.5, 0.5, 0.5))
	return bias.Mul4(camera.ProjectionMatrix()).Mul4(camera.MatrixWorldInverse())
}

func colorVec(c gputypes.Color) mgl32.Vec3 {
	return mgl32.Vec3{float32(c.R), float32(c.G), float32(c.B)}
}

// Render implements Pass. The outline is added to read in place and, with
// RenderToScreen set, read is then copied to the screen.
func (p *OutlinePass) Render(r render.Renderer, _, read render.Surface, _ float64, maskActive bool) error {
	if p.err != nil || len(p.selected) == 0 {
		return nil
	}

	oldColor, oldAlpha := r.ClearColor(), r.ClearAlpha()
	oldAutoClear := r.AutoClear()
	stencil := &r.State().Stencil
	defer func() {
		if maskActive {
			stencil.SetTest(true)
		}
		r.SetClearColor(oldColor, oldAlpha)
		r.SetAutoClear(oldAutoClear)
	}()

	r.SetAutoClear(false)
	if maskActive {
		stencil.SetTest(false)
	}
	r.SetClearColor(gputypes.Color{R: 1, G: 1, B: 1, A: 1}, 1)

	if err := p.renderMask(r); err != nil {
		return err
	}

	p.copyMaterial.Uniforms["tDiffuse"] = p.mask
	if err := p.draw(r, p.copyMaterial, p.maskDown); err != nil {
		return fmt.Errorf("outline downsample: %w", err)
	}

	p.pulseWeight = pulseWeight(p.clock().Sub(p.start), p.PulsePeriod)

	if err := p.renderEdges(r); err != nil {
		return err
	}

	u := p.overlayMaterial.Uniforms
	u["maskTexture"] = p.mask
	u["edgeTexture1"] = p.edge1
	u["edgeTexture2"] = p.edge2
	u["patternTexture"] = p.PatternTexture
	u["edgeStrength"] = float32(p.EdgeStrength)
	u["edgeGlow"] = float32(p.EdgeGlow)
	u["usePatternTexture"] = p.UsePatternTexture
	u["visibleEdgeColor"] = colorVec(p.VisibleEdgeColor)
	u["hiddenEdgeColor"] = colorVec(p.HiddenEdgeColor)
	u["pulseWeight"] = float32(p.pulseWeight)

	if maskActive {
		stencil.SetTest(true)
	}
	p.quad.SetMaterial(p.overlayMaterial)
	if err := p.quad.Render(r, read, false); err != nil {
		return fmt.Errorf("outline overlay: %w", err)
	}

	if p.RenderToScreen {
		p.copyMaterial.Uniforms["tDiffuse"] = read
		p.quad.SetMaterial(p.copyMaterial)
		r.SetRenderTarget(nil)
		if err := p.quad.Render(r, nil, false); err != nil {
			return fmt.Errorf("outline to screen: %w", err)
		}
	}

	Logger().Debug("postfx: outline rendered",
		"selected", len(p.selected), "pulseWeight", p.pulseWeight)
	return nil
}

// renderMask draws the depth of the unselected scene, then the selection
// mask tested against it. Scene visibility, background and override
// material are restored on return.
func (p *OutlinePass) renderMask(r render.Renderer) error {
	s := p.scene
	background := s.Background()
	override := s.OverrideMaterial()
	defer func() {
		s.SetBackground(background)
		s.SetOverrideMaterial(override)
	}()
	s.SetBackground(nil)

	meshes := selectedMeshes(p.selected)

	hidden := hideSelected(meshes)
	s.SetOverrideMaterial(p.depthMaterial)
	err := r.Render(s, p.camera, p.depth, true)
	hidden.restore()
	if err != nil {
		return fmt.Errorf("outline depth: %w", err)
	}

	p.textureMatrix = textureMatrix(p.camera)

	u := p.prepareMaskMaterial.Uniforms
	u["cameraNearFar"] = mgl32.Vec2{p.camera.Near(), p.camera.Far()}
	u["depthTexture"] = p.depth
	u["textureMatrix"] = p.textureMatrix

	hidden = hideUnselected(s, meshes)
	s.SetOverrideMaterial(p.prepareMaskMaterial)
	err = r.Render(s, p.camera, p.mask, true)
	hidden.restore()
	if err != nil {
		return fmt.Errorf("outline mask: %w", err)
	}
	return nil
}

// renderEdges detects the mask edges and blurs them into both tiers.
func (p *OutlinePass) renderEdges(r render.Renderer) error {
	e := p.edgeMaterial.Uniforms
	e["maskTexture"] = p.maskDown
	e["texSize"] = surfaceSize(p.maskDown)
	e["visibleEdgeColor"] = colorVec(p.VisibleEdgeColor)
	e["hiddenEdgeColor"] = colorVec(p.HiddenEdgeColor)
	if err := p.draw(r, p.edgeMaterial, p.edge1); err != nil {
		return fmt.Errorf("outline edges: %w", err)
	}

	p.blurMaterial1.Uniforms["kernelRadius"] = float32(p.EdgeThickness)
	if err := p.blur(r, p.blurMaterial1, p.edge1, p.blur1); err != nil {
		return fmt.Errorf("outline blur: %w", err)
	}
	// The glow tier blurs the already blurred sharp tier.
	if err := p.blurInto(r, p.blurMaterial2, p.edge1, p.blur2, p.edge2); err != nil {
		return fmt.Errorf("outline glow: %w", err)
	}
	return nil
}

// blur runs the separable blur on src in place, using tmp for the
// horizontal result.
func (p *OutlinePass) blur(r render.Renderer, m *render.Material, src, tmp render.Surface) error {
	return p.blurInto(r, m, src, tmp, src)
}

// blurInto blurs src horizontally into tmp and tmp vertically into dst.
func (p *OutlinePass) blurInto(r render.Renderer, m *render.Material, src, tmp, dst render.Surface) error {
	m.Uniforms["colorTexture"] = src
	m.Uniforms["direction"] = BlurDirectionX
	if err := p.draw(r, m, tmp); err != nil {
		return err
	}
	m.Uniforms["colorTexture"] = tmp
	m.Uniforms["direction"] = BlurDirectionY
	return p.draw(r, m, dst)
}

// draw runs m over the whole of target, clearing it first.
func (p *OutlinePass) draw(r render.Renderer, m *render.Material, target render.Surface) error {
	p.quad.SetMaterial(m)
	return p.quad.Render(r, target, true)
}
