// Package render drives a diagram specification through the tiered
// rendering chain: LLM-generated Graphviz DOT first, LLM-generated
// Mermaid second, a hand-authored per-category template last. Only
// exhaustion of every tier surfaces an error to the caller.
package render

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"figment/internal/artifact"
	diagramspec "figment/internal/diagram/spec"
	"figment/internal/llmclient"
)

// markupTemperature runs near 1.0 on purpose: repeated renders of the
// same category should not look alike.
const markupTemperature = 0.95

// Error is the fatal render failure surfaced after every tier is
// exhausted. The HTTP layer maps it to a user-facing message.
type Error struct {
	Msg string
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}
func (e *Error) Unwrap() error { return e.Err }

// Pipeline renders diagram specs into stored artifacts.
type Pipeline struct {
	llm   llmclient.Client
	store *artifact.Store
	dot   DotRenderer

	// Timeout bounds one whole render request, LLM calls included.
	Timeout time.Duration

	// rasterize is swappable in tests; production uses the in-process
	// SVG rasterizer.
	rasterize func([]byte) ([]byte, error)

	// background tracks detached PNG conversions so tests can wait for
	// them; production never blocks on it.
	background sync.WaitGroup
}

func NewPipeline(llm llmclient.Client, store *artifact.Store, dot DotRenderer) *Pipeline {
	return &Pipeline{
		llm:       llm,
		store:     store,
		dot:       dot,
		Timeout:   90 * time.Second,
		rasterize: rasterizeSVG,
	}
}

// Render runs the fallback chain and returns the stored artifact. PNG
// conversion is detached: the artifact is returned with PNGPath unset
// and the file appears on disk when the background conversion finishes.
func (p *Pipeline) Render(ctx context.Context, spec diagramspec.Spec, prompt string) (artifact.Artifact, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	art, err := p.renderStructured(ctx, spec, prompt)
	if err == nil {
		return art, nil
	}
	log.Printf("render %s: structured tier failed, trying simple markup: %v", spec.UniqueID, err)

	art, err = p.renderSimple(ctx, spec, prompt)
	if err == nil {
		return art, nil
	}
	return artifact.Artifact{}, &Error{Msg: "diagram generation failed", Err: err}
}

// renderStructured is the primary tier: DOT from the model, SVG from
// the external renderer.
func (p *Pipeline) renderStructured(ctx context.Context, spec diagramspec.Spec, prompt string) (artifact.Artifact, error) {
	out, err := p.llm.Complete(ctx, llmclient.Request{
		System:      dotSystemPrompt(spec.Category),
		Prompt:      dotUserPrompt(spec, prompt),
		Temperature: markupTemperature,
		MaxTokens:   2048,
	})
	if err != nil {
		return artifact.Artifact{}, fmt.Errorf("dot markup: %w", err)
	}
	markup := StripFences(out)
	if !ValidDot(markup) {
		return artifact.Artifact{}, fmt.Errorf("dot markup: model output is not DOT")
	}

	svg, err := p.dot.RenderSVG(ctx, []byte(markup))
	if err != nil {
		return artifact.Artifact{}, fmt.Errorf("dot render: %w", err)
	}

	srcName, err := p.store.Write(ctx, artifact.KindMarkup, spec.Title, "dot", []byte(markup))
	if err != nil {
		return artifact.Artifact{}, err
	}
	svgName, err := p.store.Write(ctx, artifact.KindSVG, spec.Title, "svg", svg)
	if err != nil {
		return artifact.Artifact{}, err
	}
	htmlName, err := p.writeViewer(ctx, spec, markup, false, srcName, svgName)
	if err != nil {
		return artifact.Artifact{}, err
	}

	p.convertPNGDetached(spec, svg)
	return p.artifactFor(spec, srcName, svgName, htmlName), nil
}

// renderSimple is the secondary tier: Mermaid from the model, validated
// for minimum substance, with the hand-authored category template
// substituted when validation fails. The SVG written here is a
// server-side preview card; the HTML wrapper does the real client-side
// Mermaid rendering.
func (p *Pipeline) renderSimple(ctx context.Context, spec diagramspec.Spec, prompt string) (artifact.Artifact, error) {
	markup := ""
	out, err := p.llm.Complete(ctx, llmclient.Request{
		System:      mermaidSystemPrompt,
		Prompt:      mermaidUserPrompt(spec, prompt),
		Temperature: markupTemperature,
		MaxTokens:   1024,
	})
	if err == nil {
		markup = StripFences(out)
	} else {
		log.Printf("render %s: mermaid markup failed: %v", spec.UniqueID, err)
	}
	if !ValidMermaid(markup) {
		markup = FallbackTemplate(spec.Category)
	}

	srcName, err := p.store.Write(ctx, artifact.KindMarkup, spec.Title, "mmd", []byte(markup))
	if err != nil {
		return artifact.Artifact{}, err
	}
	svg := previewSVG(spec)
	svgName, err := p.store.Write(ctx, artifact.KindSVG, spec.Title, "svg", svg)
	if err != nil {
		return artifact.Artifact{}, err
	}
	htmlName, err := p.writeViewer(ctx, spec, markup, true, srcName, svgName)
	if err != nil {
		return artifact.Artifact{}, err
	}

	p.convertPNGDetached(spec, svg)
	return p.artifactFor(spec, srcName, svgName, htmlName), nil
}

func (p *Pipeline) writeViewer(ctx context.Context, spec diagramspec.Spec, markup string, mermaid bool, srcName, svgName string) (string, error) {
	page, err := viewerHTML(viewerData{
		Title:     spec.Title,
		Markup:    markup,
		Mermaid:   mermaid,
		SourceURL: "/api/diagrams/source/" + srcName,
		SVGURL:    "/api/diagrams/svg/" + svgName,
	})
	if err != nil {
		return "", fmt.Errorf("viewer html: %w", err)
	}
	return p.store.Write(ctx, artifact.KindHTML, spec.Title, "html", page)
}

// convertPNGDetached rasterizes the SVG off the request path. Failure is
// logged and dropped; the response already went out without a PNG.
func (p *Pipeline) convertPNGDetached(spec diagramspec.Spec, svg []byte) {
	p.background.Add(1)
	go func() {
		defer p.background.Done()
		data, err := p.rasterize(svg)
		if err != nil {
			log.Printf("render %s: png conversion failed: %v", spec.UniqueID, err)
			return
		}
		if _, err := p.store.Write(context.Background(), artifact.KindPNG, spec.Title, "png", data); err != nil {
			log.Printf("render %s: png write failed: %v", spec.UniqueID, err)
		}
	}()
}

// WaitBackground blocks until detached conversions finish. Test hook.
func (p *Pipeline) WaitBackground() { p.background.Wait() }

func (p *Pipeline) artifactFor(spec diagramspec.Spec, srcName, svgName, htmlName string) artifact.Artifact {
	return artifact.Artifact{
		SourcePath: srcName,
		SVGPath:    svgName,
		HTMLPath:   htmlName,
		Title:      spec.Title,
		AltText:    spec.SpecificType + " (" + string(spec.Category) + ")",
	}
}
