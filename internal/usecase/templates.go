package usecase

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/xavierca1/leadfunnel/internal/entity"
)

type TemplateKind string

const (
	KindOutreach TemplateKind = "outreach"
	KindDemo     TemplateKind = "demo"
)

//go:embed templates/messages.yaml
var defaultMessages []byte

type messageSource struct {
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
}

type compiledMessage struct {
	subject *template.Template
	body    *template.Template
}

// Templates holds the parsed message set.
type Templates struct {
	set map[TemplateKind]map[entity.Channel]map[entity.Language]compiledMessage
}

// TemplateData is what message bodies can reference.
type TemplateData struct {
	Name         string
	BusinessType string
	City         string
	DemoURL      string
}

// LoadTemplates reads path when set, otherwise the embedded defaults.
func LoadTemplates(path string) (*Templates, error) {
	raw := defaultMessages
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read templates: %w", err)
		}
		raw = b
	}
	return ParseTemplates(raw)
}

func ParseTemplates(raw []byte) (*Templates, error) {
	var doc map[TemplateKind]map[entity.Channel]map[entity.Language]messageSource
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}

	t := &Templates{set: map[TemplateKind]map[entity.Channel]map[entity.Language]compiledMessage{}}
	for kind, channels := range doc {
		t.set[kind] = map[entity.Channel]map[entity.Language]compiledMessage{}
		for ch, langs := range channels {
			if _, ok := entity.ParseChannel(string(ch)); !ok {
				return nil, fmt.Errorf("template %s: unknown channel %q", kind, ch)
			}
			t.set[kind][ch] = map[entity.Language]compiledMessage{}
			for lang, src := range langs {
				name := fmt.Sprintf("%s.%s.%s", kind, ch, lang)
				body, err := template.New(name).Option("missingkey=error").Parse(src.Body)
				if err != nil {
					return nil, fmt.Errorf("parse %s: %w", name, err)
				}
				subject, err := template.New(name + ".subject").Parse(src.Subject)
				if err != nil {
					return nil, fmt.Errorf("parse %s subject: %w", name, err)
				}
				t.set[kind][ch][lang] = compiledMessage{subject: subject, body: body}
			}
		}
	}
	return t, nil
}

// Render picks kind x channel x lang, falling back to English when the
// language has no variant for that channel.
func (t *Templates) Render(kind TemplateKind, ch entity.Channel, lang entity.Language, data TemplateData) (subject, body string, err error) {
	langs, ok := t.set[kind][ch]
	if !ok {
		return "", "", fmt.Errorf("no %s template for channel %s", kind, ch)
	}
	msg, ok := langs[lang]
	if !ok {
		msg, ok = langs[entity.LanguageEnglish]
	}
	if !ok {
		return "", "", fmt.Errorf("no %s template for channel %s in %s", kind, ch, lang)
	}

	var sb, bb bytes.Buffer
	if err := msg.subject.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("render subject: %w", err)
	}
	if err := msg.body.Execute(&bb, data); err != nil {
		return "", "", fmt.Errorf("render body: %w", err)
	}
	return sb.String(), bb.String(), nil
}
