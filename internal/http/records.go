package http

import (
	"bytes"
	"html/template"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/mrlokans/wp2md/internal/logger"
	"github.com/mrlokans/wp2md/internal/services"
)

var recordPage = template.Must(template.New("record").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{if .Base}}<base href="{{.Base}}">{{end}}
</head>
<body>
<article>
<h1>{{.Title}}</h1>
{{if .Date}}<p><time>{{.Date}}</time></p>{{end}}
{{.Body}}
</article>
</body>
</html>
`))

type recordPageData struct {
	Title string
	Date  string
	Base  string
	Body  template.HTML
}

// RecordsController exposes the records of the latest conversion.
type RecordsController struct {
	store     *services.RecordStore
	outputDir string
	markdown  goldmark.Markdown
	logger    logger.Logger
}

func NewRecordsController(store *services.RecordStore, outputDir string, log logger.Logger) *RecordsController {
	if log == nil {
		log = logger.NewNop()
	}
	return &RecordsController{
		store:     store,
		outputDir: outputDir,
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			// record bodies keep iframes and scripts from the source site
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		logger: log,
	}
}

// List handles GET /api/records[?type=<type>].
func (rc *RecordsController) List(c *gin.Context) {
	records := rc.store.List(c.Query("type"))
	c.JSON(http.StatusOK, ListResponse{Data: records, Total: len(records)})
}

// Get handles GET /api/records/:type/:slug.
func (rc *RecordsController) Get(c *gin.Context) {
	recordType, slug, ok := recordParams(c)
	if !ok {
		return
	}
	snap, found := rc.store.Get(recordType, slug)
	if !found {
		respondNotFound(c, "record")
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Page handles GET /records/:type/:slug and renders the record body as HTML.
func (rc *RecordsController) Page(c *gin.Context) {
	recordType, slug, ok := recordParams(c)
	if !ok {
		return
	}
	snap, found := rc.store.Get(recordType, slug)
	if !found {
		c.String(http.StatusNotFound, "record not found")
		return
	}

	body, err := rc.Render(snap)
	if err != nil {
		rc.logger.Error("Failed to render record",
			logger.String("type", recordType),
			logger.String("slug", slug),
			logger.Error(err),
		)
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	var buf bytes.Buffer
	err = recordPage.Execute(&buf, recordPageData{
		Title: snap.Title,
		Date:  snap.Date,
		Base:  rc.baseHref(snap.Path),
		Body:  template.HTML(body),
	})
	if err != nil {
		rc.logger.Error("Failed to execute record template", logger.Error(err))
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// Render converts the record body to HTML.
func (rc *RecordsController) Render(snap *services.RecordSnapshot) (string, error) {
	if snap.Record == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := rc.markdown.Convert([]byte(snap.Record.Content), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// baseHref points relative image links at the record's folder under /files.
func (rc *RecordsController) baseHref(recordPath string) string {
	if rc.outputDir == "" || recordPath == "" {
		return ""
	}
	rel, err := filepath.Rel(rc.outputDir, filepath.Dir(recordPath))
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	return path.Join(filesPrefix, filepath.ToSlash(rel)) + "/"
}
