package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path"
	"strings"

	"figment/internal/artifact"
	"figment/internal/diagram/intent"
	"figment/internal/diagram/render"
	diagramspec "figment/internal/diagram/spec"
)

type DiagramHandler struct {
	classifier *intent.Classifier
	synth      *diagramspec.Synthesizer
	pipeline   *render.Pipeline
	store      *artifact.Store
}

func NewDiagramHandler(classifier *intent.Classifier, synth *diagramspec.Synthesizer, pipeline *render.Pipeline, store *artifact.Store) *DiagramHandler {
	return &DiagramHandler{classifier: classifier, synth: synth, pipeline: pipeline, store: store}
}

func (h *DiagramHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var in struct {
		Prompt  string   `json:"prompt"`
		Context []string `json:"context,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(in.Prompt) == "" {
		http.Error(w, "prompt is required", http.StatusBadRequest)
		return
	}

	it := h.classifier.Classify(in.Prompt, in.Context...)
	if !it.IsDiagramRequest {
		writeJSON(w, map[string]any{"generated": false})
		return
	}

	spec := h.synth.Synthesize(it, in.Prompt, in.Context)
	art, err := h.pipeline.Render(r.Context(), spec, in.Prompt)
	if err != nil {
		var renderErr *render.Error
		if errors.As(err, &renderErr) {
			http.Error(w, renderErr.Msg, http.StatusBadGateway)
			return
		}
		http.Error(w, "diagram generation failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"generated": true,
		"category":  it.Category,
		"title":     art.Title,
		"altText":   art.AltText,
		"sourceUrl": "/api/diagrams/source/" + art.SourcePath,
		"svgUrl":    "/api/diagrams/svg/" + art.SVGPath,
		"htmlUrl":   "/api/diagrams/html/" + art.HTMLPath,
	})
}

func (h *DiagramHandler) HandleSource(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, artifact.KindMarkup, "text/plain; charset=utf-8")
}

func (h *DiagramHandler) HandleHTML(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, artifact.KindHTML, "text/html; charset=utf-8")
}

func (h *DiagramHandler) HandlePNG(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, artifact.KindPNG, "image/png")
}

// HandleSVG never fails hard: persisted chat history embeds SVG links
// that can go stale, so the fallback chain ends in a placeholder image
// instead of an error page.
func (h *DiagramHandler) HandleSVG(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	if data, err := h.store.Read(artifact.KindSVG, name); err == nil {
		serveBytes(w, "image/svg+xml", data)
		return
	}
	if trimmed := strings.TrimSuffix(name, ".xml"); trimmed != name {
		if data, err := h.store.Read(artifact.KindSVG, trimmed); err == nil {
			serveBytes(w, "image/svg+xml", data)
			return
		}
	}
	sibling := strings.TrimSuffix(name, path.Ext(name)) + ".html"
	if data, err := h.store.Read(artifact.KindHTML, sibling); err == nil {
		serveBytes(w, "text/html; charset=utf-8", data)
		return
	}

	serveBytes(w, "image/svg+xml", render.NotFoundSVG(name))
}

func (h *DiagramHandler) serve(w http.ResponseWriter, r *http.Request, kind artifact.Kind, contentType string) {
	name := r.PathValue("name")
	if name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	data, err := h.store.Read(kind, name)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			http.Error(w, "artifact not found", http.StatusNotFound)
			return
		}
		log.Printf("diagrams: read %s/%s failed: %v", kind, name, err)
		http.Error(w, "artifact read failed", http.StatusInternalServerError)
		return
	}
	serveBytes(w, contentType, data)
}

func serveBytes(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}
