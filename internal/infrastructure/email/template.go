package email

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.md
var templateFS embed.FS

// Kind names one of the embedded templates.
type Kind string

const (
	KindVerifyEmail     Kind = "verify_email"
	KindPasswordReset   Kind = "password_reset"
	KindPasswordChanged Kind = "password_changed"
)

var subjects = map[Kind]string{
	KindVerifyEmail:     "Verify your email address",
	KindPasswordReset:   "Reset your password",
	KindPasswordChanged: "Your password was changed",
}

// TemplateData fills a template. Name is title-cased before rendering.
type TemplateData struct {
	AppName   string
	Name      string
	Link      string
	ExpiresIn time.Duration
}

// Rendered is a ready-to-send message body.
type Rendered struct {
	Subject string
	Text    string
	HTML    string
}

// TemplateRenderer turns the embedded markdown templates into a plain text
// body and a sanitized HTML alternative.
type TemplateRenderer struct {
	templates *template.Template
	md        goldmark.Markdown
	policy    *bluemonday.Policy
	titler    cases.Caser
}

func NewTemplateRenderer() (*TemplateRenderer, error) {
	tmpl, err := template.New("email").ParseFS(templateFS, "templates/*.md")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Linkify,
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(false)

	return &TemplateRenderer{
		templates: tmpl,
		md:        md,
		policy:    policy,
		titler:    cases.Title(language.Und),
	}, nil
}

func (r *TemplateRenderer) Render(kind Kind, data TemplateData) (*Rendered, error) {
	subject, ok := subjects[kind]
	if !ok {
		return nil, fmt.Errorf("unknown email template %q", kind)
	}

	view := struct {
		AppName   string
		Name      string
		Link      string
		ExpiresIn string
	}{
		AppName:   data.AppName,
		Name:      r.displayName(data.Name),
		Link:      data.Link,
		ExpiresIn: humanDuration(data.ExpiresIn),
	}

	var text bytes.Buffer
	if err := r.templates.ExecuteTemplate(&text, string(kind)+".md", view); err != nil {
		return nil, fmt.Errorf("failed to render %s template: %w", kind, err)
	}

	var htmlBuf bytes.Buffer
	if err := r.md.Convert(text.Bytes(), &htmlBuf); err != nil {
		return nil, fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}

	return &Rendered{
		Subject: subject,
		Text:    text.String(),
		HTML:    r.policy.Sanitize(htmlBuf.String()),
	}, nil
}

func (r *TemplateRenderer) displayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "there"
	}
	return r.titler.String(name)
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "a short while"
	case d%(24*time.Hour) == 0:
		return plural(int(d/(24*time.Hour)), "day")
	case d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	default:
		return plural(int(d.Round(time.Minute)/time.Minute), "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
