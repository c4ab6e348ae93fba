package bsdf

import (
	"math"

	"github.com/df07/go-spectral-bsdf/pkg/bxdf"
	"github.com/df07/go-spectral-bsdf/pkg/core"
	"github.com/df07/go-spectral-bsdf/pkg/spectrum"
)

const (
	// MaxLayers is the capacity of a Layered
	MaxLayers = 8
	// DefaultProbSampleSpec is the probability of the specular walk when both regimes are requested
	DefaultProbSampleSpec = 0.5
	// bouncesPerLayer sets the walk budget relative to the stack depth
	bouncesPerLayer = 3
)

// walkFlags selects the components a layer may contribute to the specular walk
const walkFlags = bxdf.Specular | bxdf.Reflection | bxdf.Transmission

// Layered is a stack of BSDFs, index 0 facing the geometric normal. Specular
// sampling walks a random path through the stack; evaluation connects a path
// started from each direction wherever both visit the same layer.
type Layered struct {
	shading
	layers     [MaxLayers]BSDF
	opacity    [MaxLayers]float64
	n          int
	maxBounces int

	ProbSampleSpec float64
	rng            core.Sampler
}

// NewLayered creates an empty stack whose walks draw from rng
func NewLayered(frame core.Frame, rng core.Sampler) (*Layered, error) {
	if rng == nil {
		return nil, ErrNilComponent
	}
	return &Layered{
		shading:        shading{frame: frame},
		maxBounces:     1,
		ProbSampleSpec: DefaultProbSampleSpec,
		rng:            rng,
	}, nil
}

// Add pushes a layer below the existing ones
func (l *Layered) Add(b BSDF, opacity float64) error {
	if b == nil {
		return ErrNilComponent
	}
	if l.n >= MaxLayers {
		return ErrTooManyLayers
	}
	l.layers[l.n] = b
	l.opacity[l.n] = opacity
	l.n++
	l.maxBounces = bouncesPerLayer * l.n
	return nil
}

// Len is the number of layers
func (l *Layered) Len() int { return l.n }

// Layer returns layer i and its opacity
func (l *Layered) Layer(i int) (BSDF, float64) { return l.layers[i], l.opacity[i] }

// MaxBounces is the length limit of a walk through the stack
func (l *Layered) MaxBounces() int { return l.maxBounces }

// NumComponents counts a reflection and a transmission component
func (l *Layered) NumComponents() int {
	if l.n == 0 {
		return 0
	}
	return 2
}

func (l *Layered) NumComponentsMatching(flags bxdf.Type) int {
	if l.n == 0 || !flags.Has(bxdf.Glossy|bxdf.Specular) {
		return 0
	}
	return 1
}

// entry is the first layer hit by light arriving from direction w
func (l *Layered) entry(w core.Vec3) int {
	if w.Dot(l.frame.Ng) < 0 {
		return l.n - 1
	}
	return 0
}

// step moves to the next layer after leaving along w
func (l *Layered) step(layer int, w core.Vec3) int {
	if w.Dot(l.frame.Ng) > 0 {
		return layer - 1
	}
	return layer + 1
}

func (l *Layered) inside(layer int) bool {
	return layer >= 0 && layer < l.n
}

func (l *Layered) SampleF(sw *spectrum.Wavelengths, woW core.Vec3, u1, u2, u3 float64, flags bxdf.Type, reverse bool) (Sample, bool) {
	if l.n == 0 {
		return Sample{}, false
	}
	glossy := flags.Has(bxdf.Glossy)
	specular := flags.Has(bxdf.Specular)
	reflect := flags.Has(bxdf.Reflection)
	transmit := flags.Has(bxdf.Transmission)
	if !reflect && !transmit {
		return Sample{}, false
	}

	pdf := 1.0
	if glossy && specular {
		p := l.ProbSampleSpec
		if u3 < p {
			glossy = false
			pdf *= p
			u3 /= p
		} else {
			specular = false
			pdf *= 1 - p
			u3 = (u3 - p) / (1 - p)
		}
	}

	switch {
	case glossy:
		return l.sampleGlossy(sw, woW, u1, u2, u3, pdf, reflect, transmit, reverse)
	case specular:
		return l.sampleSpecular(sw, woW, pdf, flags, reverse)
	}
	return Sample{}, false
}

// sampleGlossy draws a uniform hemisphere direction on the chosen side and
// evaluates the whole stack there
func (l *Layered) sampleGlossy(sw *spectrum.Wavelengths, woW core.Vec3, u1, u2, u3, pdf float64, reflect, transmit, reverse bool) (Sample, bool) {
	wi := core.UniformSampleHemisphere(u1, u2)
	doReflect := true
	if transmit {
		if reflect {
			pdf *= 0.5
			doReflect = u3 >= 0.5
		} else {
			doReflect = false
		}
	}
	into := woW.Dot(l.frame.Ng)
	if (doReflect && into < 0) || (!doReflect && into > 0) {
		wi.Z = -wi.Z
	}
	wiW := l.toWorld(wi)

	t := bxdf.Glossy | bxdf.Reflection
	if !doReflect {
		t = bxdf.Glossy | bxdf.Transmission
	}
	pdf *= core.UniformHemispherePdf()

	var f spectrum.SWCSpectrum
	if reverse {
		f = l.F(sw, wiW, woW, reverse, t)
	} else {
		f = l.F(sw, woW, wiW, reverse, t)
	}
	return Sample{Wi: wiW, F: f.DivScalar(pdf), Pdf: pdf, PdfBack: pdf, Type: t}, true
}

// sampleSpecular walks through the specular components of the stack until
// the path leaves it. Walks longer than the bounce budget are rejected.
func (l *Layered) sampleSpecular(sw *spectrum.Wavelengths, woW core.Vec3, pSelect float64, flags bxdf.Type, reverse bool) (Sample, bool) {
	f := spectrum.Uniform(1)
	pdf, pdfBack := pSelect, pSelect
	layer := l.entry(woW)
	in := woW
	var out core.Vec3
	exited := false
	for count := 0; count <= 2*l.maxBounces; count++ {
		s, ok := l.layers[layer].SampleF(sw, in, 0.5, 0.5, l.rng.Get1D(), walkFlags, reverse)
		if !ok {
			return Sample{}, false
		}
		f = f.Mul(s.F)
		pdf *= s.Pdf
		pdfBack *= s.PdfBack
		out = s.Wi

		layer = l.step(layer, out)
		if !l.inside(layer) {
			exited = true
			break
		}
		in = out.Negate()
	}
	if !exited {
		return Sample{}, false
	}

	t := bxdf.Specular | bxdf.Reflection
	if out.Dot(l.frame.Ng)*woW.Dot(l.frame.Ng) < 0 {
		t = bxdf.Specular | bxdf.Transmission
	}
	if !t.Matches(flags) {
		return Sample{}, false
	}
	return Sample{Wi: out, F: f.DivScalar(pSelect), Pdf: pdf, PdfBack: pdfBack, Type: t}, true
}

// Pdf is the density of the glossy regime; the specular walk has no density
func (l *Layered) Pdf(sw *spectrum.Wavelengths, wo, wi core.Vec3, flags bxdf.Type) float64 {
	if l.n == 0 || !flags.Has(bxdf.Glossy) {
		return 0
	}
	p := 1.0
	if flags.Has(bxdf.Specular) {
		p = 1 - l.ProbSampleSpec
	}
	reflect := flags.Has(bxdf.Reflection)
	transmit := flags.Has(bxdf.Transmission)
	switch {
	case reflect && transmit:
		return p / (4 * math.Pi)
	case reflect || transmit:
		return p / (2 * math.Pi)
	}
	return 0
}

// layerVertex is one visit of a walk to a layer
type layerVertex struct {
	layer   int
	dir     core.Vec3 // Direction pointing back along the walk
	pdfFwd  float64
	pdfBack float64
	beta    spectrum.SWCSpectrum // Throughput accumulated before this vertex
	t       bxdf.Type            // Type of the component that led here
}

// walk traces a random path into the stack starting along vin
func (l *Layered) walk(sw *spectrum.Wavelengths, vin core.Vec3, path []layerVertex) []layerVertex {
	layer := l.entry(vin)
	in := vin
	pdfFwd, pdfBack := 1.0, 1.0
	t := bxdf.Glossy
	beta := spectrum.Uniform(1)
	for i := 0; i < l.maxBounces; i++ {
		if !l.inside(layer) {
			return path
		}
		path = append(path, layerVertex{layer: layer, dir: in, pdfFwd: pdfFwd, pdfBack: pdfBack, beta: beta, t: t})

		// the geometric correction does not apply inside the stack
		s, ok := l.layers[layer].SampleF(sw, in, l.rng.Get1D(), l.rng.Get1D(), l.rng.Get1D(), bxdf.All, true)
		if !ok {
			return path
		}
		beta = beta.Mul(s.F)
		pdfFwd, pdfBack, t = s.Pdf, s.PdfBack, s.Type
		layer = l.step(layer, s.Wi)
		in = s.Wi.Negate()
	}
	return path
}

// F connects a walk started along wo (the light side) with one started
// along wi (the eye side) at every layer both visit. Each connection is
// weighted by its share of the densities of all ways to build the same path.
func (l *Layered) F(sw *spectrum.Wavelengths, woW, wiW core.Vec3, reverse bool, flags bxdf.Type) spectrum.SWCSpectrum {
	if l.n == 0 || !flags.Has(bxdf.Glossy) {
		return spectrum.SWCSpectrum{}
	}
	light := l.walk(sw, woW, make([]layerVertex, 0, l.maxBounces))
	eye := l.walk(sw, wiW, make([]layerVertex, 0, l.maxBounces))

	size := len(eye) + len(light)
	fwd := make([]float64, size)
	back := make([]float64, size)
	spec := make([]bool, size)

	var L spectrum.SWCSpectrum
	for i, ev := range eye {
		for j, lv := range light {
			if ev.layer != lv.layer {
				continue
			}
			layer := l.layers[ev.layer]
			gap := layer.F(sw, ev.dir, lv.dir, true, bxdf.All).DivScalar(ev.dir.AbsDot(layer.Frame().Nn))
			contrib := ev.beta.Mul(gap).Mul(lv.beta)
			if contrib.IsBlack() {
				continue
			}

			for k := 0; k < j; k++ {
				fwd[k] = light[k+1].pdfFwd
				back[k] = light[k+1].pdfBack
				spec[k] = light[k+1].t.Has(bxdf.Specular)
			}
			fwd[j] = layer.Pdf(sw, lv.dir, ev.dir, bxdf.All)
			back[j] = layer.Pdf(sw, ev.dir, lv.dir, bxdf.All)
			spec[j] = false
			for k := 0; k < i; k++ {
				fwd[j+i-k] = eye[k].pdfBack
				back[j+i-k] = eye[k].pdfFwd
				spec[j+i-k] = eye[k].t.Has(bxdf.Specular)
			}

			total, pathProb := 0.0, 1.0
			for join := 0; join <= i+j; join++ {
				if spec[join] {
					continue
				}
				p := 1.0
				for k := 0; k < join; k++ {
					p *= fwd[k]
				}
				for k := join + 1; k <= i+j; k++ {
					p *= back[k]
				}
				total += p
				if join == j {
					pathProb = p
				}
			}
			if total > 0 {
				L = L.AddWeighted(pathProb/total, contrib)
			}
		}
	}

	if !reverse {
		cosWo := woW.Dot(l.frame.Ng)
		if math.Abs(cosWo) < core.MachineEpsilon {
			return spectrum.SWCSpectrum{}
		}
		L = L.Scale(math.Abs(wiW.Dot(l.frame.Ng) / cosWo))
	}
	return L.Scale(woW.AbsDot(l.frame.Nn))
}

func (l *Layered) Rho(sw *spectrum.Wavelengths, flags bxdf.Type, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum {
	return EstimateRho(l, sw, flags, nSamples, sampler)
}

func (l *Layered) RhoDirectional(sw *spectrum.Wavelengths, wo core.Vec3, flags bxdf.Type, nSamples int, sampler core.Sampler) spectrum.SWCSpectrum {
	return EstimateRhoDirectional(l, sw, wo, flags, nSamples, sampler)
}

func (l *Layered) ApplyTransform(t core.Transform) float64 {
	for i := 0; i < l.n; i++ {
		l.layers[i].ApplyTransform(t)
	}
	return l.shading.ApplyTransform(t)
}

func (l *Layered) SetCompositingParams(cp *CompositingParams) {
	l.shading.SetCompositingParams(cp)
	for i := 0; i < l.n; i++ {
		l.layers[i].SetCompositingParams(cp)
	}
}
