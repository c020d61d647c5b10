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

package service

import (
	"bytes"
	"errors"
	"image"
	_ "image/jpeg"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ilhamster/traceviz/tabviz/handlers"
	testutil "github.com/ilhamster/traceviz/tabviz/test_util"
)

func newServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("New() yielded unexpected error %s", err)
	}
	r := chi.NewRouter()
	svc.RegisterHandlers(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// noRedirects is an http.Client that reports redirects rather than
// following them.
func noRedirects() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func uploadXLSX(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	data := testutil.XLSX(t, [][]interface{}{
		{"date", "cat"},
		{time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), "X"},
		{time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), "Y"},
		{time.Date(2021, 2, 10, 0, 0, 0, 0, time.UTC), "X"},
	})
	body, contentType := testutil.MultipartUpload(t, "cases.xlsx", data)
	resp, err := noRedirects().Post(srv.URL+"/upload", contentType, body)
	if err != nil {
		t.Fatalf("upload failed: %s", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("upload => %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	return resp.Header.Get("Location")
}

func TestRoundTrip(t *testing.T) {
	srv := newServer(t, Config{ExportWidth: 640, ExportHeight: 480})
	session := uploadXLSX(t, srv)

	resp, err := http.Get(srv.URL + session + "/spec?x=date&color=cat&kind=count")
	if err != nil {
		t.Fatalf("spec request failed: %s", err)
	}
	var sb bytes.Buffer
	if _, err := sb.ReadFrom(resp.Body); err != nil {
		t.Fatalf("failed to read spec: %s", err)
	}
	resp.Body.Close()
	for _, want := range []string{`"status":"ok"`, `"bucket":2021`, `"colorField":"cat"`} {
		if !strings.Contains(sb.String(), want) {
			t.Errorf("spec lacks '%s': %s", want, sb.String())
		}
	}

	resp, err = http.Get(srv.URL + session + "/export?x=date&color=cat&format=jpeg")
	if err != nil {
		t.Fatalf("export request failed: %s", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export => %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if got := resp.Header.Get("Content-Disposition"); !strings.HasPrefix(got, "attachment; filename=chart_") || !strings.HasSuffix(got, ".jpg") {
		t.Errorf("export disposition => '%s'", got)
	}
	cfg, format, err := image.DecodeConfig(resp.Body)
	if err != nil {
		t.Fatalf("failed to decode export: %s", err)
	}
	if format != "jpeg" || cfg.Width != 640 || cfg.Height != 480 {
		t.Errorf("export => %s %dx%d, want jpeg 640x480", format, cfg.Width, cfg.Height)
	}
}

func TestSessionEviction(t *testing.T) {
	srv := newServer(t, Config{SessionCap: 1})
	first := uploadXLSX(t, srv)
	second := uploadXLSX(t, srv)
	if first == second {
		t.Fatalf("uploads share session '%s'", first)
	}
	for _, test := range []struct {
		session  string
		wantCode int
	}{
		{first, http.StatusNotFound},
		{second, http.StatusOK},
	} {
		resp, err := http.Get(srv.URL + test.session + "/spec")
		if err != nil {
			t.Fatalf("spec request failed: %s", err)
		}
		resp.Body.Close()
		if resp.StatusCode != test.wantCode {
			t.Errorf("GET %s => %d, want %d", test.session, resp.StatusCode, test.wantCode)
		}
	}
}

func TestSessionStore(t *testing.T) {
	now := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	store, err := newSessionStore(2, func() time.Time { return now })
	if err != nil {
		t.Fatalf("newSessionStore() yielded unexpected error %s", err)
	}
	tbl := testutil.ScenarioTable(t)
	sess, err := store.Create("cases.csv", tbl)
	if err != nil {
		t.Fatalf("Create() yielded unexpected error %s", err)
	}
	got, err := store.Lookup(sess.ID)
	if err != nil {
		t.Fatalf("Lookup() yielded unexpected error %s", err)
	}
	if got != sess || got.Table != tbl || !got.Uploaded.Equal(now) {
		t.Errorf("Lookup() => %v, want %v", got, sess)
	}
	if _, err := store.Lookup("nope"); !errors.Is(err, handlers.ErrUnknownSession) {
		t.Errorf("Lookup('nope') yielded error %v, wanted ErrUnknownSession", err)
	}
	if _, err := newSessionStore(0, time.Now); err == nil {
		t.Errorf("newSessionStore(0) yielded no error")
	}
}
