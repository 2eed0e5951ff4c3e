package dashboard

import (
	"embed"
	"html/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const indexTemplate = "index.html.tmpl"

type toggleView struct {
	Name  string
	Label string
	On    bool
}

var templateFuncs = template.FuncMap{
	"contains": func(list []string, v string) bool {
		for _, s := range list {
			if s == v {
				return true
			}
		}
		return false
	},
	"toggle": func(name, label string, on bool) toggleView {
		return toggleView{Name: name, Label: label, On: on}
	},
	// palette colors are generated internally, never from request data
	"css": func(s string) template.CSS { return template.CSS(s) },
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.tmpl")
}
