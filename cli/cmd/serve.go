package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/ardnew/mustache"
	"github.com/ardnew/mustache/log"
	"github.com/ardnew/mustache/pkg"
	"github.com/ardnew/mustache/repo"
)

// Serve renders repository templates over HTTP.
//
// GET /NAME renders template NAME against the loaded data. Query parameters
// override top-level data keys for that request.
type Serve struct {
	Addr    string        `default:"localhost:8080"           help:"Listen address"                     short:"a"`
	Index   string        `default:"index"                    help:"Template rendered for the root path"`
	Type    string        `default:"text/html; charset=utf-8" help:"Content-Type of rendered responses"`
	Reload  bool          `help:"Reload templates on every request"`
	Timeout time.Duration `default:"10s"                      help:"Read and write timeout"`
}

// Run executes the serve command. It returns when ctx is cancelled.
func (c *Serve) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	opts := optionsFrom(ctx)

	data, err := opts.data(ctx)
	if err != nil {
		return err
	}

	r, closeRepo, err := opts.repository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	h := &handler{ctx: ctx, repo: r, data: data, serve: c}

	srv := &fasthttp.Server{
		Handler:      h.serveHTTP,
		Name:         pkg.Name,
		ReadTimeout:  c.Timeout,
		WriteTimeout: c.Timeout,
		Logger:       fasthttpLogger{ctx},
	}

	go func() {
		<-ctx.Done()

		_ = srv.Shutdown()
	}()

	log.InfoContext(ctx, "serving templates", slog.String("addr", c.Addr))

	err = srv.ListenAndServe(c.Addr)
	if err != nil {
		return ErrServe.With(slog.String("addr", c.Addr)).Wrap(err)
	}

	return nil
}

type handler struct {
	ctx   context.Context
	repo  *repo.Repository
	data  map[string]any
	serve *Serve
}

func (h *handler) serveHTTP(fctx *fasthttp.RequestCtx) {
	start := time.Now()

	if !fctx.IsGet() && !fctx.IsHead() {
		fctx.Error(fasthttp.StatusMessage(fasthttp.StatusMethodNotAllowed),
			fasthttp.StatusMethodNotAllowed)

		return
	}

	name := strings.Trim(string(fctx.Path()), "/")
	if name == "" {
		name = h.serve.Index
	}

	if h.serve.Reload {
		h.repo.Clear()
	}

	out, safe, err := h.render(fctx, name)
	if err != nil {
		status := fasthttp.StatusInternalServerError
		if errors.Is(err, mustache.ErrPartialNotFound) {
			status = fasthttp.StatusNotFound
		}

		log.WarnContext(h.ctx, "render failed",
			slog.String("name", name),
			slog.Int("status", status),
			slog.Any("error", err),
		)
		fctx.Error(err.Error(), status)

		return
	}

	fctx.SetContentType(h.serve.Type)
	fctx.Response.Header.Set("X-Html-Safe", strconv.FormatBool(safe))
	fctx.SetBodyString(out)

	log.DebugContext(h.ctx, "served template",
		slog.String("name", name),
		slog.Int("length", len(out)),
		slog.Duration("took", time.Since(start)),
	)
}

func (h *handler) render(fctx *fasthttp.RequestCtx, name string) (string, bool, error) {
	t, err := h.repo.Template(h.ctx, name)
	if err != nil {
		return "", false, err
	}

	data := h.data

	if args := fctx.QueryArgs(); args.Len() > 0 {
		data = maps.Clone(h.data)
		if data == nil {
			data = make(map[string]any, args.Len())
		}

		args.VisitAll(func(k, v []byte) {
			data[string(k)] = string(v)
		})
	}

	return t.Render(h.ctx, data)
}

// fasthttpLogger routes server messages to the package-level logger.
type fasthttpLogger struct{ ctx context.Context }

func (l fasthttpLogger) Printf(format string, args ...any) {
	log.DebugContext(l.ctx, "fasthttp",
		slog.String("msg", strings.TrimSpace(fmt.Sprintf(format, args...))))
}
