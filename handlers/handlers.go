/*
	Copyright 2023 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Package handlers provides the TabViz HTTP handlers: the upload form, the
// session page with its options form, and the chart endpoints.
//
// Every chart endpoint reads its options from the request's query string,
// so each change to the options form is a new, self-contained GET whose
// result depends only on the uploaded table and the query.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ilhamster/traceviz/tabviz/analysis/aggregator"
	"github.com/ilhamster/traceviz/tabviz/analysis/table"
	tablereader "github.com/ilhamster/traceviz/tabviz/analysis/table_reader"
	chartspec "github.com/ilhamster/traceviz/tabviz/chart_spec"
	echartsview "github.com/ilhamster/traceviz/tabviz/echarts_view"
	"github.com/ilhamster/traceviz/tabviz/pipeline"
	"github.com/ilhamster/traceviz/tabviz/raster"
)

// ErrUnknownSession is returned when a session ID is not known.
var ErrUnknownSession = errors.New("unknown session")

// Session is an uploaded table.
type Session struct {
	ID       string
	FileName string
	Table    *table.Table
	Uploaded time.Time
}

// SessionStore stores Sessions.  Implementations must be safe for concurrent
// use.
type SessionStore interface {
	// Create stores tbl in a new Session.
	Create(fileName string, tbl *table.Table) (*Session, error)
	// Lookup returns the Session with the specified ID, or an error wrapping
	// ErrUnknownSession.
	Lookup(id string) (*Session, error)
}

// HandlerFunc is a HTTP handler function.
type HandlerFunc func(http.ResponseWriter, *http.Request)

// WrapFunc is a function that rewrites a HandlerFunc.
type WrapFunc func(HandlerFunc) HandlerFunc

// Handler describes a TabViz HTTP handler.
type Handler interface {
	HandlersByPath() map[string]func(http.ResponseWriter, *http.Request)
}

// ChartHandler is a Handler for uploads and charts.  It supports a Wrap
// method that wraps all handlers, e.g. adding request logging.
type ChartHandler interface {
	Handler
	Wrap(...WrapFunc) Handler
}

// Config configures a ChartHandler.
type Config struct {
	// The maximum accepted upload size, in bytes.
	MaxUploadBytes int64
	// The default size of exported images.
	ExportWidth, ExportHeight int
	// Returns the current time; used to name exported files.
	Now func() time.Time
}

// Default Config values.
const (
	DefaultMaxUploadBytes = 32 << 20
	// The size of the chart image shown on the session page.
	pageChartWidth, pageChartHeight = 900, 540
	viewWidth, viewHeight           = 1200, 700
)

const (
	uploadPath       = "/upload"
	sessionPattern   = "/session/{id}"
	specSuffix       = "/spec"
	viewSuffix       = "/view"
	chartImageSuffix = "/chart.png"
	exportSuffix     = "/export"
)

const (
	emptyMessage  = "No rows match the current options."
	statusOK      = "ok"
	statusEmpty   = "empty"
	statusFailure = "error"
)

func sessionPath(id, suffix string) string {
	return "/session/" + id + suffix
}

// withQuery returns path with the provided raw query appended.
func withQuery(path, rawQuery string) string {
	if rawQuery == "" {
		return path
	}
	return path + "?" + rawQuery
}

// statusOf returns the HTTP status reporting err.
func statusOf(err error) int {
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, tablereader.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, tablereader.ErrParseError):
		return http.StatusBadRequest
	case errors.Is(err, table.ErrColumnNotFound), errors.Is(err, aggregator.ErrInvalidGranularity), errors.Is(err, raster.ErrNoChart):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUnknownSession):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// sendHTTPResponse serializes the provided response as JSON and sends it
// along the provided http.ResponseWriter with the specified status.  Any
// failures during serialization yield an HTTP internal status error.
func sendHTTPResponse(w http.ResponseWriter, status int, resp interface{}) {
	respStr, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Failed to marshal response: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(respStr)
}

// LogRequests is a WrapFunc logging the method, path, response status, and
// duration of each request.
func LogRequests(next HandlerFunc) HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next(ww, req)
		log.Printf("%s %s %d %s", req.Method, req.URL.Path, ww.Status(), time.Since(start))
	}
}

// chartHandler is a ChartHandler serving uploads and charts over the
// Sessions in a SessionStore.
type chartHandler struct {
	store    SessionStore
	cfg      Config
	wrappers []WrapFunc
}

// NewChartHandler returns a new ChartHandler serving the Sessions in store.
// Zero-valued Config fields take their defaults.
func NewChartHandler(store SessionStore, cfg Config) ChartHandler {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	cfg.ExportWidth = raster.ClampSize(cfg.ExportWidth, raster.DefaultWidth)
	cfg.ExportHeight = raster.ClampSize(cfg.ExportHeight, raster.DefaultHeight)
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &chartHandler{
		store: store,
		cfg:   cfg,
	}
}

func (ch *chartHandler) Wrap(wrappers ...WrapFunc) Handler {
	ch.wrappers = append(ch.wrappers, wrappers...)
	return ch
}

// HandlersByPath returns a mapping of HTTP request path pattern to HTTP
// handler for this Handler.  Patterns may carry chi URL parameters.
func (ch *chartHandler) HandlersByPath() map[string]func(http.ResponseWriter, *http.Request) {
	handlers := map[string]HandlerFunc{
		"/":                               ch.indexHandler,
		uploadPath:                        ch.uploadHandler,
		sessionPattern:                    ch.sessionHandler,
		sessionPattern + specSuffix:       ch.specHandler,
		sessionPattern + viewSuffix:       ch.viewHandler,
		sessionPattern + chartImageSuffix: ch.chartImageHandler,
		sessionPattern + exportSuffix:     ch.exportHandler,
	}
	ret := make(map[string]func(http.ResponseWriter, *http.Request), len(handlers))
	for path, h := range handlers {
		for _, wrapper := range ch.wrappers {
			h = wrapper(h)
		}
		ret[path] = h
	}
	return ret
}

func renderPage(w http.ResponseWriter, status int, execute func(io.Writer) error) {
	var buf bytes.Buffer
	if err := execute(&buf); err != nil {
		http.Error(w, "Failed to render page: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (ch *chartHandler) renderIndex(w http.ResponseWriter, status int, message string) {
	renderPage(w, status, func(out io.Writer) error {
		return indexTemplate.Execute(out, &indexPage{Message: message})
	})
}

func (ch *chartHandler) indexHandler(w http.ResponseWriter, req *http.Request) {
	ch.renderIndex(w, http.StatusOK, "")
}

func (ch *chartHandler) uploadHandler(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "Uploads must be POSTed", http.StatusMethodNotAllowed)
		return
	}
	req.Body = http.MaxBytesReader(w, req.Body, ch.cfg.MaxUploadBytes)
	file, header, err := req.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if !errors.As(err, &mbe) {
			err = fmt.Errorf("%w: no file uploaded: %s", tablereader.ErrParseError, err)
		}
		ch.renderIndex(w, statusOf(err), err.Error())
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		ch.renderIndex(w, statusOf(err), err.Error())
		return
	}
	tbl, err := tablereader.Load(data, header.Filename)
	if err != nil {
		ch.renderIndex(w, statusOf(err), err.Error())
		return
	}
	sess, err := ch.store.Create(header.Filename, tbl)
	if err != nil {
		ch.renderIndex(w, statusOf(err), err.Error())
		return
	}
	log.Printf("Loaded '%s' (%d rows, %d columns) as session %s", header.Filename, tbl.Len(), len(tbl.Columns()), sess.ID)
	http.Redirect(w, req, sessionPath(sess.ID, ""), http.StatusSeeOther)
}

// interaction is a single chart request against a Session.
type interaction struct {
	sess   *Session
	state  pipeline.State
	result *pipeline.Result
}

// lookup returns the Session named by the request's URL.
func (ch *chartHandler) lookup(req *http.Request) (*Session, error) {
	return ch.store.Lookup(chi.URLParam(req, "id"))
}

// run runs the pipeline for the provided request against sess.
func (ch *chartHandler) run(req *http.Request, sess *Session) (*interaction, error) {
	state, err := ParseState(req.URL.Query())
	if err != nil {
		return &interaction{sess: sess, state: withDefaults(sess.Table, pipeline.DefaultState())}, err
	}
	state = withDefaults(sess.Table, state)
	res, err := pipeline.Run(req.Context(), sess.Table, state)
	return &interaction{sess: sess, state: state, result: res}, err
}

// notes returns informational messages about an interaction's result.
func notes(res *pipeline.Result) string {
	var msg string
	if res.Empty {
		msg = emptyMessage
	}
	if res.Stats.Dropped > 0 {
		msg += fmt.Sprintf(" %d rows were excluded because their x-axis value is missing or could not be parsed.", res.Stats.Dropped)
	}
	if res.Stats.NullCategory > 0 {
		msg += fmt.Sprintf(" %d rows were excluded because their color value is missing.", res.Stats.NullCategory)
	}
	return msg
}

func (ch *chartHandler) sessionHandler(w http.ResponseWriter, req *http.Request) {
	sess, err := ch.lookup(req)
	if err != nil {
		http.Error(w, err.Error(), statusOf(err))
		return
	}
	in, err := ch.run(req, sess)
	q := req.URL.Query()
	page := newSessionPage(sess, in.state, map[string]string{
		dateStartKey: q.Get(dateStartKey),
		dateEndKey:   q.Get(dateEndKey),
		yMinKey:      q.Get(yMinKey),
		yMaxKey:      q.Get(yMaxKey),
	})
	status := http.StatusOK
	if err != nil {
		status = statusOf(err)
		page.Message, page.Error = err.Error(), true
	} else {
		page.Message = notes(in.result)
		page.HasChart = !in.result.Empty
		rawQuery := req.URL.RawQuery
		page.ChartURL = withQuery(sessionPath(sess.ID, chartImageSuffix), rawQuery)
		page.ViewURL = withQuery(sessionPath(sess.ID, viewSuffix), rawQuery)
		page.SpecURL = withQuery(sessionPath(sess.ID, specSuffix), rawQuery)
		exportQuery := req.URL.Query()
		for _, format := range []raster.Format{raster.PNG, raster.JPEG} {
			exportQuery.Set(formatKey, format.String())
			exportURL := withQuery(sessionPath(sess.ID, exportSuffix), exportQuery.Encode())
			if format == raster.PNG {
				page.ExportPNGURL = exportURL
			} else {
				page.ExportJPEGURL = exportURL
			}
		}
	}
	renderPage(w, status, func(out io.Writer) error {
		return sessionTemplate.Execute(out, page)
	})
}

// specResponse is the JSON body served by the spec endpoint.
type specResponse struct {
	Status       string               `json:"status"`
	Message      string               `json:"message,omitempty"`
	DroppedRows  int                  `json:"droppedRows"`
	NullCategory int                  `json:"nullCategoryRows"`
	FilteredRows int                  `json:"filteredRows"`
	Rows         []pipeline.FacetRows `json:"rows,omitempty"`
	Spec         *chartspec.ChartSpec `json:"spec,omitempty"`
}

func (ch *chartHandler) specHandler(w http.ResponseWriter, req *http.Request) {
	sess, err := ch.lookup(req)
	if err != nil {
		sendHTTPResponse(w, statusOf(err), &specResponse{Status: statusFailure, Message: err.Error()})
		return
	}
	in, err := ch.run(req, sess)
	if err != nil {
		sendHTTPResponse(w, statusOf(err), &specResponse{Status: statusFailure, Message: err.Error()})
		return
	}
	res := in.result
	resp := &specResponse{
		Status:       statusOK,
		Message:      notes(res),
		DroppedRows:  res.Stats.Dropped,
		NullCategory: res.Stats.NullCategory,
		FilteredRows: res.FilteredRows,
		Rows:         res.Rows,
		Spec:         res.Spec,
	}
	if res.Empty {
		resp.Status = statusEmpty
	}
	sendHTTPResponse(w, http.StatusOK, resp)
}

// chartOf runs the pipeline for a request that must produce a chart.  On
// failure, it reports the error on w and returns nil.
func (ch *chartHandler) chartOf(w http.ResponseWriter, req *http.Request) *chartspec.ChartSpec {
	sess, err := ch.lookup(req)
	if err != nil {
		http.Error(w, err.Error(), statusOf(err))
		return nil
	}
	in, err := ch.run(req, sess)
	if err != nil {
		http.Error(w, err.Error(), statusOf(err))
		return nil
	}
	if in.result.Empty {
		http.Error(w, emptyMessage, http.StatusUnprocessableEntity)
		return nil
	}
	return in.result.Spec
}

func (ch *chartHandler) viewHandler(w http.ResponseWriter, req *http.Request) {
	spec := ch.chartOf(w, req)
	if spec == nil {
		return
	}
	width, height, err := sizeOf(req.URL.Query(), viewWidth, viewHeight)
	if err != nil {
		http.Error(w, err.Error(), statusOf(err))
		return
	}
	renderPage(w, http.StatusOK, func(out io.Writer) error {
		return echartsview.Render(out, spec, width, height)
	})
}

// sizeOf returns the width and height requested in q.
func sizeOf(q url.Values, defWidth, defHeight int) (int, int, error) {
	width, err := parseInt(q, widthKey, defWidth)
	if err != nil {
		return 0, 0, err
	}
	height, err := parseInt(q, heightKey, defHeight)
	if err != nil {
		return 0, 0, err
	}
	return width, height, nil
}

// writeImage draws spec in the requested format and size, and sends it with
// the provided extra headers.
func (ch *chartHandler) writeImage(w http.ResponseWriter, req *http.Request, spec *chartspec.ChartSpec, format raster.Format, defWidth, defHeight int, headers map[string]string) {
	width, height, err := sizeOf(req.URL.Query(), defWidth, defHeight)
	if err != nil {
		http.Error(w, err.Error(), statusOf(err))
		return
	}
	var buf bytes.Buffer
	if err := raster.Export(&buf, spec, format, width, height); err != nil {
		http.Error(w, "Failed to draw chart: "+err.Error(), statusOf(err))
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	for k, v := range headers {
		w.Header().Set(k, v)
	}
	w.Write(buf.Bytes())
}

func (ch *chartHandler) chartImageHandler(w http.ResponseWriter, req *http.Request) {
	spec := ch.chartOf(w, req)
	if spec == nil {
		return
	}
	ch.writeImage(w, req, spec, raster.PNG, pageChartWidth, pageChartHeight, nil)
}

func (ch *chartHandler) exportHandler(w http.ResponseWriter, req *http.Request) {
	format, err := parseEnum(req.URL.Query(), formatKey, raster.ParseFormat)
	if err != nil {
		http.Error(w, err.Error(), statusOf(err))
		return
	}
	spec := ch.chartOf(w, req)
	if spec == nil {
		return
	}
	filename := raster.Filename("chart", format, ch.cfg.Now())
	ch.writeImage(w, req, spec, format, ch.cfg.ExportWidth, ch.cfg.ExportHeight, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%s", filename),
	})
}
