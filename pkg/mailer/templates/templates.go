// Package templates renders the transactional emails queued by the API.
package templates

import (
	"bytes"
	"fmt"
	"html/template"
)

const Welcome = "welcome"

var welcomeHTML = template.Must(template.New(Welcome).Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Bem-vindo(a), {{.Name}}!</h2>
    <p>Sua conta foi criada com sucesso usando o e-mail <strong>{{.Email}}</strong>.</p>
    <p>Se você não realizou este cadastro, entre em contato com o suporte.</p>
  </body>
</html>`))

var welcomeText = template.Must(template.New(Welcome + "_text").Parse(
	"Bem-vindo(a), {{.Name}}! Sua conta foi criada com sucesso usando o e-mail {{.Email}}."))

// Render returns subject, text and HTML bodies for the named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	switch name {
	case Welcome:
		var tb, hb bytes.Buffer
		if err = welcomeText.Execute(&tb, data); err != nil {
			return "", "", "", err
		}
		if err = welcomeHTML.Execute(&hb, data); err != nil {
			return "", "", "", err
		}
		return "Bem-vindo! Sua conta foi criada", tb.String(), hb.String(), nil
	default:
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
}
