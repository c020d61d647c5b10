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

// Binary server serves TabViz: upload a CSV or Excel file, then chart it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ilhamster/traceviz/tabviz/service"
	"golang.org/x/sync/errgroup"
)

var (
	port         = flag.Int("port", 7420, "Port to serve TabViz clients on")
	sessionCap   = flag.Int("session_cap", service.DefaultSessionCap, "The maximum number of uploaded files held in memory")
	maxUploadMB  = flag.Int64("max_upload_mb", 32, "The maximum upload size, in MiB")
	exportWidth  = flag.Int("export_width", 1000, "The default width of exported images, in pixels")
	exportHeight = flag.Int("export_height", 600, "The default height of exported images, in pixels")
)

const (
	envPrefix       = "TABVIZ_"
	shutdownTimeout = 5 * time.Second
)

// applyEnv sets each flag not given on the command line from its
// TABVIZ_<NAME> environment variable, if that is set.
func applyEnv(fs *flag.FlagSet) error {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	var err error
	fs.VisitAll(func(f *flag.Flag) {
		if set[f.Name] || err != nil {
			return
		}
		v, ok := os.LookupEnv(envPrefix + strings.ToUpper(f.Name))
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		if setErr := fs.Set(f.Name, strings.TrimSpace(v)); setErr != nil {
			err = fmt.Errorf("bad value for %s%s: %w", envPrefix, strings.ToUpper(f.Name), setErr)
		}
	})
	return err
}

func main() {
	flag.Parse()
	if err := applyEnv(flag.CommandLine); err != nil {
		log.Fatalf("Failed to configure TabViz: %s", err)
	}

	svc, err := service.New(service.Config{
		SessionCap:     *sessionCap,
		MaxUploadBytes: *maxUploadMB << 20,
		ExportWidth:    *exportWidth,
		ExportHeight:   *exportHeight,
	})
	if err != nil {
		log.Fatalf("Failed to create TabViz service: %s", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	svc.RegisterHandlers(r)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: r,
	}

	hostname, err := os.Hostname()
	if err != nil {
		log.Fatalf("Failed to get hostname: %s", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		// Provide OSC 8 (https://en.wikipedia.org/wiki/ANSI_escape_code#OSC) link for
		// compatible terminals.
		fmt.Printf("Serving TabViz at \x1B]8;;http://%[1]s:%[2]d\x07http://%[1]s:%[2]d\x1B]8;;\x07\n", hostname, *port)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	errg.Go(func() error {
		<-ctx.Done()
		log.Printf("Shutting down TabViz")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := errg.Wait(); err != nil {
		log.Fatalf("TabViz server failed: %s", err)
	}
}
