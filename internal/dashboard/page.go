// internal/dashboard/page.go
package dashboard

import (
	_ "embed"
	"html/template"
)

//go:embed web/index.html
var indexHTML string

var pageTemplate = template.Must(template.New("index").Parse(indexHTML))
