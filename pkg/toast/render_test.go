package toast_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gobarber/web/pkg/toast"
)

func TestRenderHTML(t *testing.T) {
	msgs := []toast.Message{
		{ID: "a", Kind: toast.KindError, Title: "Signup Failure", Description: "Signup error, please try again."},
		{ID: "b", Title: "Picture updated!"},
	}

	var buf bytes.Buffer
	if err := toast.RenderHTML(&buf, msgs); err != nil {
		t.Fatalf("RenderHTML error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`data-toast-id="a"`,
		`toast-error toast-has-description`,
		`<strong>Signup Failure</strong>`,
		`<p>Signup error, please try again.</p>`,
		`data-toast-id="b"`,
		`toast toast-info"`,
		`icon-alert-circle`,
		`icon-info`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, `data-toast-id="a"`) > strings.Index(out, `data-toast-id="b"`) {
		t.Error("messages rendered out of order")
	}
	if strings.Count(out, "<p>") != 1 {
		t.Error("description paragraph rendered for message without description")
	}
}

func TestRenderHTMLStripsMarkup(t *testing.T) {
	msgs := []toast.Message{
		{ID: "x", Kind: toast.KindInfo, Title: `<script>alert(1)</script>Tom & Jerry`, Description: `<b>bold</b>`},
	}

	var buf bytes.Buffer
	if err := toast.RenderHTML(&buf, msgs); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if strings.Contains(out, "<script>") || strings.Contains(out, "<b>") {
		t.Errorf("markup not stripped:\n%s", out)
	}
	if !strings.Contains(out, "Tom &amp; Jerry") {
		t.Errorf("expected single-escaped ampersand:\n%s", out)
	}
	if strings.Contains(out, "&amp;amp;") {
		t.Errorf("text escaped twice:\n%s", out)
	}
}

func TestRenderHTMLEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := toast.RenderHTML(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "data-toast-id") {
		t.Error("empty list rendered a toast")
	}
}

func TestRenderHTMLKeepsLiteralEntities(t *testing.T) {
	msgs := []toast.Message{
		{ID: "e", Title: "&lt;b&gt; is not bold", Description: "<i>AT&amp;T</i>"},
	}

	var buf bytes.Buffer
	if err := toast.RenderHTML(&buf, msgs); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, "<strong>&amp;lt;b&amp;gt; is not bold</strong>") {
		t.Errorf("literal entity in title not preserved:\n%s", out)
	}
	if !strings.Contains(out, "<p>AT&amp;amp;T</p>") {
		t.Errorf("literal entity in description not preserved:\n%s", out)
	}
	if strings.Contains(out, "<i>") {
		t.Errorf("markup not stripped:\n%s", out)
	}
}
