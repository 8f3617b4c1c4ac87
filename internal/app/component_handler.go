package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/felixbrock/lpviz/internal/components"
)

type ComponentResponse struct {
	Error       error
	Message     string
	Code        int
	ContentType string
	Component   templ.Component
	// KeepCode sends Code as is. Partial responses are rendered into the form
	// page and always answer 200.
	KeepCode bool
}

type ComponentHandler func(http.ResponseWriter, *http.Request) *ComponentResponse

func (ch ComponentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := ch(w, r)

	if resp.Error != nil {
		slog.Error(fmt.Sprintf(`Error occured: %s`, resp.Error.Error()))
	}

	code := resp.Code
	if code == 0 {
		code = http.StatusOK
	} else if code != http.StatusOK && code != http.StatusCreated && !resp.KeepCode {
		// Overwrite error code to allow for component rendering on client
		slog.Debug(fmt.Sprintf("%d %s: %s", code, r.URL.Path, resp.Message))
		code = http.StatusOK
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "text/html; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(code)

	err := resp.Component.Render(r.Context(), w)

	if err != nil {
		slog.Error(fmt.Sprintf(`Error occured: %s`, err.Error()))
	}
}

func ok(component templ.Component) *ComponentResponse {
	return &ComponentResponse{Component: component, Code: 200, Message: "OK", ContentType: "text/html; charset=utf-8"}
}

func failed(ctx errCtx, err error, component templ.Component) *ComponentResponse {
	return &ComponentResponse{Component: component, Code: ctx.Code, Message: ctx.Msg, ContentType: "text/html; charset=utf-8", Error: err}
}

// errorPage renders a standalone error page carrying the real status code.
func errorPage(ctx errCtx, err error) *ComponentResponse {
	resp := failed(ctx, err, components.Error(ctx.Code, ctx.Title, ctx.Msg))
	resp.KeepCode = true
	return resp
}
