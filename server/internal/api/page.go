package api

import (
	"bytes"
	_ "embed"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/launchdash/launchdash/server/internal/dashboard"
)

//go:embed page.html
var pageHTML string

var pageTmpl = template.Must(template.New("page").Parse(pageHTML))

// pageData is what page.html is executed with.
type pageData struct {
	Layout dashboard.Layout
	// WSPath is the path of the session endpoint, relative to the host.
	WSPath string
}

// Page returns the handler for the HTML dashboard. The page is rendered once;
// its content only depends on the immutable dashboard.
func Page(dash *dashboard.Dashboard, wsPath string) (http.Handler, error) {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, pageData{Layout: dash.Layout(), WSPath: wsPath}); err != nil {
		return nil, err
	}
	body := buf.Bytes()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			if _, err := w.Write(body); err != nil {
				slog.Debug("api: write page", "err", err)
			}
		}
	}), nil
}
