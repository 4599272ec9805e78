package mailer

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

//go:embed templates/*
var templateFS embed.FS

const (
	kindComment       = "comment_notification"
	kindEditedComment = "edited_comment_notification"
	kindSpamAlert     = "spam_alert"
	kindSetPassword   = "set_password_notification"
)

// Edited comments share the comment templates.
var templateFiles = map[string]string{
	kindComment:       "comment_notification",
	kindEditedComment: "comment_notification",
	kindSpamAlert:     "spam_alert",
	kindSetPassword:   "set_password_notification",
}

type templateSet struct {
	html map[string]*htmltemplate.Template
	text map[string]*texttemplate.Template
}

func loadTemplates() (*templateSet, error) {
	set := &templateSet{
		html: make(map[string]*htmltemplate.Template),
		text: make(map[string]*texttemplate.Template),
	}
	for kind, file := range templateFiles {
		h, err := htmltemplate.ParseFS(templateFS, "templates/layout.html", "templates/"+file+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s html: %w", file, err)
		}
		t, err := texttemplate.ParseFS(templateFS, "templates/"+file+".txt")
		if err != nil {
			return nil, fmt.Errorf("parse %s text: %w", file, err)
		}
		set.html[kind] = h
		set.text[kind] = t
	}
	return set, nil
}

// render fills in both bodies of msg from the templates registered for kind.
func (s *templateSet) render(kind string, msg *Message, data interface{}) error {
	var html, text bytes.Buffer
	if err := s.html[kind].ExecuteTemplate(&html, "layout.html", data); err != nil {
		return fmt.Errorf("render %s html: %w", kind, err)
	}
	if err := s.text[kind].ExecuteTemplate(&text, templateFiles[kind]+".txt", data); err != nil {
		return fmt.Errorf("render %s text: %w", kind, err)
	}
	msg.HTML = html.String()
	msg.Text = text.String()
	return nil
}
