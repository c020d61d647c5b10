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

// Package service assembles the TabViz HTTP service: an in-memory session
// store holding uploaded tables, and the chart handlers serving them.
package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/ilhamster/traceviz/tabviz/analysis/table"
	"github.com/ilhamster/traceviz/tabviz/handlers"
)

// sessionStore is a handlers.SessionStore holding the most recently used
// sessions in memory.  Older sessions are evicted once the store is full.
type sessionStore struct {
	lru *lru.Cache
	now func() time.Time
	// Guards ID generation against collisions.
	mu sync.Mutex
}

func newSessionStore(cap int, now func() time.Time) (*sessionStore, error) {
	cache, err := lru.New(cap)
	if err != nil {
		return nil, err
	}
	return &sessionStore{
		lru: cache,
		now: now,
	}, nil
}

func (ss *sessionStore) Create(fileName string, tbl *table.Table) (*handlers.Session, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	id := uuid.NewString()
	for ss.lru.Contains(id) {
		id = uuid.NewString()
	}
	sess := &handlers.Session{
		ID:       id,
		FileName: fileName,
		Table:    tbl,
		Uploaded: ss.now(),
	}
	ss.lru.Add(id, sess)
	return sess, nil
}

func (ss *sessionStore) Lookup(id string) (*handlers.Session, error) {
	sessIf, ok := ss.lru.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", handlers.ErrUnknownSession, id)
	}
	sess, ok := sessIf.(*handlers.Session)
	if !ok {
		return nil, fmt.Errorf("stored session '%s' wasn't a Session", id)
	}
	return sess, nil
}

// Config configures a Service.
type Config struct {
	// The maximum number of sessions held at once.
	SessionCap int
	// The maximum accepted upload size, in bytes.
	MaxUploadBytes int64
	// The default size of exported images.
	ExportWidth, ExportHeight int
}

// DefaultSessionCap is the default maximum number of sessions.
const DefaultSessionCap = 16

// Service is the TabViz HTTP service.
type Service struct {
	chartHandler handlers.ChartHandler
}

// New returns a new Service configured by cfg.
func New(cfg Config) (*Service, error) {
	if cfg.SessionCap <= 0 {
		cfg.SessionCap = DefaultSessionCap
	}
	store, err := newSessionStore(cfg.SessionCap, time.Now)
	if err != nil {
		return nil, err
	}
	return &Service{
		chartHandler: handlers.NewChartHandler(store, handlers.Config{
			MaxUploadBytes: cfg.MaxUploadBytes,
			ExportWidth:    cfg.ExportWidth,
			ExportHeight:   cfg.ExportHeight,
		}),
	}, nil
}

// RegisterHandlers registers the receiver's handlers, with request logging,
// on the provided router.
func (s *Service) RegisterHandlers(r chi.Router) {
	for path, handler := range s.chartHandler.Wrap(handlers.LogRequests).HandlersByPath() {
		r.HandleFunc(path, handler)
	}
}
