package httpserver

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"

	"ayurveda_resorts/internal/app"
	"ayurveda_resorts/internal/domain"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="ar" dir="rtl">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body data-view="{{.View}}">
{{- if eq .View "admin"}}
<main id="admin">
<h1>لوحة التحكم</h1>
<form id="login" method="post" action="/v1/admin/login">
<label>البريد الإلكتروني <input type="email" name="email" required></label>
<label>كلمة المرور <input type="password" name="password" required></label>
<button type="submit">تسجيل الدخول</button>
</form>
</main>
{{- else}}
<header id="hero" data-stream="/v1/hero/stream">
{{- range $i, $src := .Hero}}
<img src="{{$src}}" alt="" {{if ne $i 0}}hidden{{end}}>
{{- end}}
</header>
<main>
<section id="resorts">
{{- range .Resorts}}
<article data-id="{{.ID}}">
{{- if .ImageURL}}<img src="{{.ImageURL}}" alt="{{.Name}}">{{end}}
{{- if .Badge}}<span class="badge">{{.Badge}}</span>{{end}}
<h2>{{.Name}}</h2>
<p class="location">{{.Location}}</p>
<p>{{.Description}}</p>
<ul class="features">
{{- range .Features}}<li><span class="icon">{{.Icon.Glyph}}</span> {{.Title}}</li>{{end}}
</ul>
</article>
{{- else}}
<p>لا توجد منتجعات متاحة حالياً</p>
{{- end}}
</section>
<section id="info">
<h2>{{.Info.Headline}}</h2>
{{- range .Info.Intro}}<p>{{.}}</p>{{end}}
<p class="notice">{{.Info.Notice}}</p>
</section>
<p class="disclaimer">{{.Disclaimer}}</p>
</main>
<footer>للتواصل: <a href="tel:{{.Phone}}">{{.Phone}}</a></footer>
{{- end}}
</body>
</html>
`))

type pageData struct {
	Title      string
	View       app.View
	Hero       []string
	Resorts    []domain.Resort
	Info       app.AyurvedaInfo
	Disclaimer string
	Phone      string
}

// index renders the Arabic landing page, or the admin sign-in shell for
// ?mode=admin.
func (h *Handlers) index(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Title:      "منتجعات الأيورفيدا في الهند",
		View:       app.ResolveView(r.URL.String()),
		Info:       app.Info(),
		Disclaimer: app.PriceDisclaimer,
		Phone:      h.ContactPhoneDisplay,
	}
	if data.View == app.ViewHome {
		data.Hero = h.Catalog.Hero()
		data.Resorts = h.Catalog.VisibleResorts()
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		log.Error().Err(err).Msg("render page failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Language", "ar")
	_, _ = w.Write(buf.Bytes())
}
