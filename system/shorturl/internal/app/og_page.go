package app

import (
	"bytes"
	"html/template"

	"linktrack/system/shorturl/api/dto"
	"linktrack/system/shorturl/internal/model"
)

const ogPageTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <meta property="og:type" content="website">
    <meta property="og:title" content="{{.Title}}">
    {{- if .Description}}
    <meta property="og:description" content="{{.Description}}">
    <meta name="description" content="{{.Description}}">
    {{- end}}
    <meta property="og:url" content="{{.ShortURL}}">
    <meta name="twitter:card" content="summary">
    <meta name="twitter:title" content="{{.Title}}">
    <link rel="canonical" href="{{.Destination}}">
    <meta http-equiv="refresh" content="0; url={{.Destination}}">
</head>
<body>
    <p><a href="{{.Destination}}">{{.Title}}</a></p>
</body>
</html>`

type ogPage struct {
	Title       string
	Description string
	ShortURL    string
	Destination string
}

// OGRenderer 为社交平台爬虫渲染带 Open Graph 标签的预览页
type OGRenderer struct {
	tpl     *template.Template
	baseURL string
}

func NewOGRenderer(baseURL string) (*OGRenderer, error) {
	tpl, err := template.New("og").Parse(ogPageTemplate)
	if err != nil {
		return nil, err
	}
	return &OGRenderer{tpl: tpl, baseURL: baseURL}, nil
}

func (r *OGRenderer) Render(link *model.Link) ([]byte, error) {
	title := link.Title
	if title == "" {
		title = link.Slug
	}
	var buf bytes.Buffer
	err := r.tpl.Execute(&buf, ogPage{
		Title:       title,
		Description: link.Description,
		ShortURL:    dto.ShortURL(r.baseURL, link.Slug),
		Destination: BuildDestination(link),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
