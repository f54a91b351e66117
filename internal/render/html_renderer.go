package render

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"
)

var classNameFilter = regexp.MustCompile(`^[a-z0-9\-]+$`)

// View is what the HTML template receives.
type View struct {
	Input   Input
	Preview bool
	// Classes are layout presets added to the body, in application order.
	Classes []string
}

type HTMLRenderer struct {
	tpl *template.Template
}

func NewHTMLRenderer() *HTMLRenderer {
	funcs := template.FuncMap{
		"bodyClasses": bodyClasses,
	}
	return &HTMLRenderer{
		tpl: template.Must(template.New("document").Funcs(funcs).Parse(documentHTMLTemplate)),
	}
}

func (r *HTMLRenderer) RenderHTML(view View) (string, error) {
	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func bodyClasses(view View) string {
	classes := make([]string, 0, len(view.Classes)+1)
	if view.Preview {
		classes = append(classes, "preview")
	}
	for _, class := range view.Classes {
		class = strings.TrimSpace(class)
		if classNameFilter.MatchString(class) {
			classes = append(classes, class)
		}
	}
	return strings.Join(classes, " ")
}
