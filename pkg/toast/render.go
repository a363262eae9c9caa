package toast

import (
	"html"
	"html/template"
	"io"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicy     *bluemonday.Policy
	textPolicyOnce sync.Once
)

func sanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

// icons maps each kind to the icon name rendered next to the title.
var icons = map[Kind]string{
	KindInfo:    "info",
	KindError:   "alert-circle",
	KindSuccess: "check-circle",
}

type renderedMessage struct {
	ID             string
	Kind           Kind
	Icon           string
	Title          string
	Description    string
	HasDescription bool
	Index          int
}

var containerTemplate = template.Must(template.New("toasts").Parse(
	`<div class="toast-container" role="status" aria-live="polite">
{{- range .}}
  <div class="toast toast-{{.Kind}}{{if .HasDescription}} toast-has-description{{end}}" data-toast-id="{{.ID}}" style="--toast-index: {{.Index}}">
    <i class="icon icon-{{.Icon}}" aria-hidden="true"></i>
    <div>
      <strong>{{.Title}}</strong>
      {{- if .HasDescription}}
      <p>{{.Description}}</p>
      {{- end}}
    </div>
    <button type="button" data-toast-dismiss="{{.ID}}" aria-label="Dismiss">&times;</button>
  </div>
{{- end}}
</div>
`))

// RenderHTML writes msgs as an HTML fragment, one element per message,
// stacked in the given order. Markup in titles and descriptions is
// stripped before rendering.
func RenderHTML(w io.Writer, msgs []Message) error {
	view := make([]renderedMessage, 0, len(msgs))
	for i, msg := range msgs {
		kind := msg.Kind.orDefault()
		desc := strings.TrimSpace(plainText(msg.Description))
		view = append(view, renderedMessage{
			ID:             msg.ID,
			Kind:           kind,
			Icon:           icons[kind],
			Title:          plainText(msg.Title),
			Description:    desc,
			HasDescription: desc != "",
			Index:          i,
		})
	}
	return containerTemplate.Execute(w, view)
}

// plainText strips tags from s and keeps everything else as literal text.
// Ampersands are protected before sanitizing so the only entities in the
// sanitizer's output are the ones it added; those are decoded again because
// the template escapes the result.
func plainText(s string) string {
	protected := strings.ReplaceAll(s, "&", "&amp;")
	return html.UnescapeString(sanitizer().Sanitize(protected))
}
