package view

import (
	"html/template"
	"io"
)

var pageTmpl = template.Must(template.New("page").Parse(`<main>
{{- range .}}
  <div class="session" id="{{.ID}}">
    <header class="session-header">{{.Header}}</header>
    <div>{{.TimeText}}</div>
    <div class="seats-available">{{.SeatsText}}</div>
    <ul class="session-bookings">
    {{- range .Bookings}}
      <li class="session-booking" id="{{.ID}}"><span class="session-booking-text">{{.Name}}</span></li>
    {{- end}}
    </ul>
    <footer><button type="button" class="session-add-booking"{{if .AddHidden}} style="display: none"{{end}}>Book</button></footer>
  </div>
{{- end}}
</main>
`))

// HTML writes the page markup.  Names and titles are escaped.
func (d *Document) HTML(w io.Writer) error {
	return pageTmpl.Execute(w, d.Fragments())
}
