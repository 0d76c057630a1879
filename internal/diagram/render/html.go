package render

import (
	"bytes"
	"html/template"
)

// The HTML wrapper is a thin interactive viewer over a separately
// addressable artifact: the SVG and the raw markup stay retrievable via
// their own endpoints, so the wrapper is never the only copy.
var viewerTmpl = template.Must(template.New("viewer").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { margin: 0; font-family: sans-serif; background: #f8fafc; }
  header { display: flex; justify-content: space-between; align-items: center; padding: 10px 16px; background: #0f172a; color: #fff; }
  header a { color: #7dd3fc; text-decoration: none; font-size: 14px; margin-left: 12px; }
  #stage { width: 100vw; height: calc(100vh - 48px); overflow: hidden; cursor: grab; }
  #stage.dragging { cursor: grabbing; }
  #canvas { transform-origin: 0 0; }
  #canvas svg, #canvas .mermaid { max-width: none; }
</style>
{{if .Mermaid}}<script src="https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.min.js"></script>{{end}}
</head>
<body>
<header>
  <span>{{.Title}}</span>
  <nav>
    <a href="{{.SourceURL}}" download>Download source</a>
    <a href="{{.SVGURL}}" download>Download SVG</a>
  </nav>
</header>
<div id="stage">
  <div id="canvas">
  {{if .Mermaid}}<pre class="mermaid">{{.Markup}}</pre>{{else}}<object type="image/svg+xml" data="{{.SVGURL}}" style="pointer-events:none"></object>{{end}}
  </div>
</div>
<script>
{{if .Mermaid}}mermaid.initialize({ startOnLoad: true, securityLevel: "strict" });{{end}}
(function () {
  var stage = document.getElementById("stage");
  var canvas = document.getElementById("canvas");
  var scale = 1, tx = 0, ty = 0, dragging = false, lastX = 0, lastY = 0;
  function apply() {
    canvas.style.transform = "translate(" + tx + "px," + ty + "px) scale(" + scale + ")";
  }
  stage.addEventListener("wheel", function (e) {
    e.preventDefault();
    var next = scale * (e.deltaY < 0 ? 1.1 : 0.9);
    scale = Math.min(8, Math.max(0.2, next));
    apply();
  }, { passive: false });
  stage.addEventListener("mousedown", function (e) {
    dragging = true; lastX = e.clientX; lastY = e.clientY;
    stage.classList.add("dragging");
  });
  window.addEventListener("mouseup", function () {
    dragging = false;
    stage.classList.remove("dragging");
  });
  window.addEventListener("mousemove", function (e) {
    if (!dragging) return;
    tx += e.clientX - lastX; ty += e.clientY - lastY;
    lastX = e.clientX; lastY = e.clientY;
    apply();
  });
})();
</script>
</body>
</html>
`))

type viewerData struct {
	Title     string
	Markup    string
	Mermaid   bool
	SourceURL string
	SVGURL    string
}

func viewerHTML(d viewerData) ([]byte, error) {
	var buf bytes.Buffer
	if err := viewerTmpl.Execute(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
