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

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/ilhamster/traceviz/tabviz/analysis/aggregator"
	"github.com/ilhamster/traceviz/tabviz/analysis/filter"
	"github.com/ilhamster/traceviz/tabviz/analysis/table"
	tablereader "github.com/ilhamster/traceviz/tabviz/analysis/table_reader"
	chartspec "github.com/ilhamster/traceviz/tabviz/chart_spec"
	"github.com/ilhamster/traceviz/tabviz/pipeline"
	"github.com/ilhamster/traceviz/tabviz/raster"
	"github.com/ilhamster/traceviz/tabviz/style"
	testutil "github.com/ilhamster/traceviz/tabviz/test_util"
)

type memStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func (ms *memStore) Create(fileName string, tbl *table.Table) (*Session, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	sess := &Session{
		ID:       fmt.Sprintf("s%d", len(ms.sessions)),
		FileName: fileName,
		Table:    tbl,
	}
	ms.sessions[sess.ID] = sess
	return sess, nil
}

func (ms *memStore) Lookup(id string) (*Session, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	sess, ok := ms.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownSession, id)
	}
	return sess, nil
}

var exportTime = time.Date(2024, 1, 31, 15, 4, 5, 0, time.UTC)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	store := &memStore{sessions: map[string]*Session{}}
	ch := NewChartHandler(store, Config{
		Now: func() time.Time { return exportTime },
	})
	r := chi.NewRouter()
	for path, h := range ch.Wrap(LogRequests).HandlersByPath() {
		r.HandleFunc(path, h)
	}
	return r
}

func upload(t *testing.T, r http.Handler, fileName, data string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := testutil.MultipartUpload(t, fileName, []byte(strings.TrimLeft(data, "\n")))
	req := httptest.NewRequest(http.MethodPost, uploadPath, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestParseState(t *testing.T) {
	for _, test := range []struct {
		description string
		query       string
		want        func(*pipeline.State)
	}{{
		description: "defaults",
		query:       "",
		want:        func(s *pipeline.State) {},
	}, {
		description: "columns and chart type",
		query:       "kind=scatter&x=date&y=score&color=cat&facet=site&title=T&subtitle=S",
		want: func(s *pipeline.State) {
			s.Type = pipeline.Scatter
			s.X, s.Y, s.Color, s.Facet = "date", "score", "cat", "site"
			s.Title, s.Subtitle = "T", "S"
		},
	}, {
		description: "date range with an open end",
		query:       "granularity=month&date_start=2020-02-01",
		want: func(s *pipeline.State) {
			s.Granularity = table.ByMonth
			s.DateRange = &filter.DateRange{
				Start: time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC),
				End:   maxDate,
			}
		},
	}, {
		description: "categories for the selected color column",
		query:       "color=cat&cats_for=cat&cat=X&cat=Z",
		want: func(s *pipeline.State) {
			s.Color = "cat"
			s.Categories = filter.NewCategorySet("X", "Z")
		},
	}, {
		description: "no categories checked",
		query:       "color=cat&cats_for=cat",
		want: func(s *pipeline.State) {
			s.Color = "cat"
			s.Categories = filter.NewCategorySet()
		},
	}, {
		description: "categories for another column are ignored",
		query:       "color=kind&cats_for=cat&cat=X",
		want: func(s *pipeline.State) {
			s.Color = "kind"
		},
	}, {
		description: "numeric range with an open minimum",
		query:       "y_max=5",
		want: func(s *pipeline.State) {
			s.NumericRange = &filter.NumericRange{Min: math.Inf(-1), Max: 5}
		},
	}, {
		description: "colors and style",
		query:       "color-58=%23ff0000&opacity=0.5&title_size=20&axis_size=8&label_size=12&point_size=4&point_shape=square",
		want: func(s *pipeline.State) {
			s.Colors = map[string]string{"X": "#ff0000"}
			s.Style = style.Style{
				Opacity:    .5,
				TitleSize:  20,
				AxisSize:   8,
				LabelSize:  12,
				PointSize:  4,
				PointShape: style.Square,
			}
		},
	}, {
		description: "legend and layout",
		query:       "legend=off&legend_pos=bottom&facet_layout=wrap",
		want: func(s *pipeline.State) {
			s.Legend = pipeline.Legend{Visible: false, Position: chartspec.Bottom}
			s.FacetLayout = chartspec.Wrap
		},
	}} {
		t.Run(test.description, func(t *testing.T) {
			q, err := url.ParseQuery(test.query)
			if err != nil {
				t.Fatalf("ParseQuery() yielded unexpected error %s", err)
			}
			got, err := ParseState(q)
			if err != nil {
				t.Fatalf("ParseState() yielded unexpected error %s", err)
			}
			want := pipeline.DefaultState()
			test.want(&want)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("ParseState() => %v, diff (-want +got) %s", got, diff)
			}
		})
	}
}

func TestParseStateErrors(t *testing.T) {
	for _, query := range []string{
		"kind=pie",
		"granularity=week",
		"date_start=yesterday",
		"y_min=low",
		"opacity=half",
		"point_shape=star",
		"legend=maybe",
		"legend_pos=center",
		"facet_layout=spiral",
	} {
		q, err := url.ParseQuery(query)
		if err != nil {
			t.Fatalf("ParseQuery() yielded unexpected error %s", err)
		}
		if _, err := ParseState(q); !errors.Is(err, tablereader.ErrParseError) {
			t.Errorf("ParseState('%s') yielded error %v, wanted ErrParseError", query, err)
		}
	}
}

func TestWithDefaults(t *testing.T) {
	for _, test := range []struct {
		description string
		csv         string
		x           string
		wantX       string
	}{{
		description: "first date column",
		csv:         "cat,date\nX,2020-01-01\n",
		wantX:       "date",
	}, {
		description: "first column",
		csv:         "cat,n\nX,1\n",
		wantX:       "cat",
	}, {
		description: "chosen column is kept",
		csv:         testutil.ScenarioCSV,
		x:           "cat",
		wantX:       "cat",
	}} {
		t.Run(test.description, func(t *testing.T) {
			s := pipeline.DefaultState()
			s.X = test.x
			if got := withDefaults(testutil.TableFromCSV(t, test.csv), s).X; got != test.wantX {
				t.Errorf("withDefaults() x => '%s', want '%s'", got, test.wantX)
			}
		})
	}
}

func TestColorField(t *testing.T) {
	for _, cat := range []string{"X", "North East", "café", ""} {
		field := colorField(cat).String()
		got, ok := colorFieldCategory(field)
		if !ok || got != cat {
			t.Errorf("colorFieldCategory(%q) => %q, %t, want %q", field, got, ok, cat)
		}
	}
	for _, key := range []string{"color", "color-zz", "title"} {
		if got, ok := colorFieldCategory(key); ok {
			t.Errorf("colorFieldCategory(%q) => %q, wanted no category", key, got)
		}
	}
}

func TestStatusOf(t *testing.T) {
	for _, test := range []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: .xls", tablereader.ErrUnsupportedFormat), http.StatusUnsupportedMediaType},
		{fmt.Errorf("%w: bad row", tablereader.ErrParseError), http.StatusBadRequest},
		{fmt.Errorf("%w: 'nope'", table.ErrColumnNotFound), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: years", aggregator.ErrInvalidGranularity), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: 'abc'", ErrUnknownSession), http.StatusNotFound},
		{&http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{errors.New("boom"), http.StatusInternalServerError},
	} {
		if got := statusOf(test.err); got != test.want {
			t.Errorf("statusOf(%v) => %d, want %d", test.err, got, test.want)
		}
	}
}

// uploadScenario uploads the scenario dataset, returning the new session's
// path.
func uploadScenario(t *testing.T, r http.Handler) string {
	t.Helper()
	rec := upload(t, r, "cases.csv", testutil.ScenarioCSV)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("upload => %d (%s), want %d", rec.Code, rec.Body, http.StatusSeeOther)
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "/session/") {
		t.Fatalf("upload redirected to '%s', want a session", loc)
	}
	return loc
}

// specStatus returns the status field of a spec response.
func specStatus(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode spec response '%s': %s", rec.Body, err)
	}
	return resp.Status
}

func TestSpecEndpoint(t *testing.T) {
	r := newRouter(t)
	session := uploadScenario(t, r)
	for _, test := range []struct {
		description string
		query       string
		wantCode    int
		wantStatus  string
		wantBody    []string
	}{{
		description: "scenario A",
		query:       "x=date&color=cat&granularity=year&kind=count",
		wantCode:    http.StatusOK,
		wantStatus:  statusOK,
		wantBody:    []string{`"bucket":2020`, `"category":"X"`, `"kind":"stackedBar"`},
	}, {
		description: "default x-axis",
		query:       "color=cat&kind=proportion",
		wantCode:    http.StatusOK,
		wantStatus:  statusOK,
		wantBody:    []string{`"proportion":0.5`, `"xField":"date"`},
	}, {
		description: "nothing checked",
		query:       "color=cat&cats_for=cat",
		wantCode:    http.StatusOK,
		wantStatus:  statusEmpty,
	}, {
		description: "missing column",
		query:       "x=nope",
		wantCode:    http.StatusUnprocessableEntity,
		wantStatus:  statusFailure,
	}, {
		description: "malformed date",
		query:       "date_start=soon",
		wantCode:    http.StatusBadRequest,
		wantStatus:  statusFailure,
	}} {
		t.Run(test.description, func(t *testing.T) {
			rec := get(r, session+specSuffix+"?"+test.query)
			if rec.Code != test.wantCode {
				t.Errorf("spec => %d, want %d", rec.Code, test.wantCode)
			}
			if got := specStatus(t, rec); got != test.wantStatus {
				t.Errorf("spec status => '%s', want '%s'", got, test.wantStatus)
			}
			for _, want := range test.wantBody {
				if !strings.Contains(rec.Body.String(), want) {
					t.Errorf("spec body lacks '%s': %s", want, rec.Body)
				}
			}
		})
	}
}

func TestPages(t *testing.T) {
	r := newRouter(t)
	session := uploadScenario(t, r)
	for _, test := range []struct {
		description string
		target      string
		wantCode    int
		wantBody    []string
	}{{
		description: "index",
		target:      "/",
		wantCode:    http.StatusOK,
		wantBody:    []string{`action="/upload"`, `accept=".csv,.txt,.xlsx,.xlsm,.xls"`},
	}, {
		description: "session",
		target:      session + "?color=cat",
		wantCode:    http.StatusOK,
		wantBody:    []string{"cases.csv", "2020-01-15", "chart.png", `name="cats_for"`, `name="color-58"`, "Download PNG"},
	}, {
		description: "session with no rows",
		target:      session + "?color=cat&cats_for=cat",
		wantCode:    http.StatusOK,
		wantBody:    []string{emptyMessage},
	}, {
		description: "session with a bad column",
		target:      session + "?x=nope",
		wantCode:    http.StatusUnprocessableEntity,
		wantBody:    []string{"column not found"},
	}, {
		description: "unknown session",
		target:      "/session/nope",
		wantCode:    http.StatusNotFound,
	}, {
		description: "interactive view",
		target:      session + viewSuffix + "?color=cat",
		wantCode:    http.StatusOK,
		wantBody:    []string{"echarts"},
	}} {
		t.Run(test.description, func(t *testing.T) {
			rec := get(r, test.target)
			if rec.Code != test.wantCode {
				t.Errorf("GET %s => %d, want %d", test.target, rec.Code, test.wantCode)
			}
			for _, want := range test.wantBody {
				if !strings.Contains(rec.Body.String(), want) {
					t.Errorf("GET %s body lacks '%s'", test.target, want)
				}
			}
		})
	}
}

func TestImages(t *testing.T) {
	r := newRouter(t)
	session := uploadScenario(t, r)
	for _, test := range []struct {
		description     string
		target          string
		wantCode        int
		wantType        string
		wantDisposition string
	}{{
		description: "inline chart",
		target:      session + chartImageSuffix + "?color=cat",
		wantCode:    http.StatusOK,
		wantType:    "image/png",
	}, {
		description:     "png export",
		target:          session + exportSuffix + "?color=cat&format=png&width=400&height=300",
		wantCode:        http.StatusOK,
		wantType:        "image/png",
		wantDisposition: "attachment; filename=" + raster.Filename("chart", raster.PNG, exportTime),
	}, {
		description:     "jpeg export",
		target:          session + exportSuffix + "?format=jpeg",
		wantCode:        http.StatusOK,
		wantType:        "image/jpeg",
		wantDisposition: "attachment; filename=chart_20240131-150405.jpg",
	}, {
		description: "export of an empty chart",
		target:      session + exportSuffix + "?color=cat&cats_for=cat",
		wantCode:    http.StatusUnprocessableEntity,
	}, {
		description: "unsupported export format",
		target:      session + exportSuffix + "?format=gif",
		wantCode:    http.StatusBadRequest,
	}, {
		description: "malformed size",
		target:      session + exportSuffix + "?width=wide",
		wantCode:    http.StatusBadRequest,
	}} {
		t.Run(test.description, func(t *testing.T) {
			rec := get(r, test.target)
			if rec.Code != test.wantCode {
				t.Fatalf("GET %s => %d (%s), want %d", test.target, rec.Code, rec.Body, test.wantCode)
			}
			if test.wantType != "" {
				if got := rec.Header().Get("Content-Type"); got != test.wantType {
					t.Errorf("GET %s content type => '%s', want '%s'", test.target, got, test.wantType)
				}
			}
			if got := rec.Header().Get("Content-Disposition"); got != test.wantDisposition {
				t.Errorf("GET %s disposition => '%s', want '%s'", test.target, got, test.wantDisposition)
			}
		})
	}
}

func TestUploadErrors(t *testing.T) {
	r := newRouter(t)
	for _, test := range []struct {
		description string
		fileName    string
		data        string
		wantCode    int
	}{{
		description: "unsupported extension",
		fileName:    "cases.json",
		data:        testutil.ScenarioCSV,
		wantCode:    http.StatusUnsupportedMediaType,
	}, {
		description: "empty file",
		fileName:    "cases.csv",
		data:        "",
		wantCode:    http.StatusBadRequest,
	}} {
		t.Run(test.description, func(t *testing.T) {
			if rec := upload(t, r, test.fileName, test.data); rec.Code != test.wantCode {
				t.Errorf("upload => %d, want %d", rec.Code, test.wantCode)
			}
		})
	}
	if rec := get(r, uploadPath); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET %s => %d, want %d", uploadPath, rec.Code, http.StatusMethodNotAllowed)
	}
}
