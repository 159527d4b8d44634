// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sparqlhttp sends source queries to remote SPARQL 1.1 protocol
// endpoints.
package sparqlhttp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ebay/federation/config"
	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/rdf"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const resultsMediaType = "application/sparql-results+json"

// A Client evaluates source queries by sending them to the SPARQL endpoint of
// each site. It's safe for concurrent use.
type Client struct {
	endpoints map[plandef.Site]string
	http      *http.Client
}

// New returns a Client for the given endpoints. If 'httpClient' is nil,
// http.DefaultClient is used.
func New(endpoints map[plandef.Site]string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{endpoints: endpoints, http: httpClient}
}

// NewFromConfig returns a Client for the sparql sources in 'sources'. Requests
// time out after 'timeout', if it's not zero.
func NewFromConfig(sources []config.Source, timeout time.Duration) *Client {
	endpoints := make(map[plandef.Site]string)
	for _, src := range sources {
		if src.Type == config.SourceSPARQL {
			endpoints[plandef.Site(src.ID)] = src.Endpoint
		}
	}
	return New(endpoints, &http.Client{Timeout: timeout})
}

// Evaluate implements exec.QueryExecutor. The binding context is sent along
// with the query in a VALUES block. Context bindings that bind different
// variables of 'expr' go in separate requests, and expressions containing a
// slice are sent once per context binding to keep each window separate.
func (c *Client) Evaluate(ctx context.Context, site plandef.Site, expr plandef.Expr,
	bindings []rdf.Binding, emit func(rdf.Binding) error) error {

	endpoint, ok := c.endpoints[site]
	if !ok {
		return fmt.Errorf("sparqlhttp: no endpoint for site %v", site)
	}
	if hasSlice(expr) {
		for i := range bindings {
			if err := c.query(ctx, endpoint, expr, bindings[i:i+1], emit); err != nil {
				return err
			}
		}
		return nil
	}
	for _, group := range contextGroups(expr, bindings) {
		if err := c.query(ctx, endpoint, expr, group, emit); err != nil {
			return err
		}
	}
	return nil
}

// contextGroups splits 'bindings' into groups whose members bind the same
// variables of 'expr', in order of first appearance. The VALUES block for a
// group has no UNDEF entries, so each result row of a request is compatible
// only with the context bindings it was produced for.
func contextGroups(expr plandef.Expr, bindings []rdf.Binding) [][]rdf.Binding {
	vars := plandef.Vars(expr)
	var groups [][]rdf.Binding
	index := make(map[string]int)
	for _, b := range bindings {
		var sig strings.Builder
		for _, v := range vars {
			if _, ok := b.Get(v.Name); ok {
				sig.WriteString(v.Name)
				sig.WriteByte(' ')
			}
		}
		i, ok := index[sig.String()]
		if !ok {
			i = len(groups)
			index[sig.String()] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], b)
	}
	return groups
}

func hasSlice(expr plandef.Expr) bool {
	found := false
	plandef.Walk(expr, func(e plandef.Expr) bool {
		if _, ok := e.(*plandef.Slice); ok {
			found = true
		}
		return !found
	})
	return found
}

// query sends one request and emits each result merged with every compatible
// binding of the context. The bindings must all bind the same variables of
// 'expr'.
func (c *Client) query(ctx context.Context, endpoint string, expr plandef.Expr,
	bindings []rdf.Binding, emit func(rdf.Binding) error) error {

	text, err := Render(expr, bindings)
	if err != nil {
		return err
	}
	reqID := uuid.New()
	logger := log.WithFields(log.Fields{
		"endpoint":  endpoint,
		"requestID": reqID,
	})
	logger.Debugf("Sending SPARQL query:\n%s", text)
	form := url.Values{"query": {text}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", resultsMediaType)
	req.Header.Set("X-Request-Id", reqID.String())
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: snippet(body)}
	}
	logger.WithFields(log.Fields{
		"bytes":   len(body),
		"elapsed": time.Since(start),
	}).Debug("Received SPARQL results")
	return decode(body, func(row rdf.Binding) error {
		for _, b := range bindings {
			out, ok := b.Merge(row)
			if !ok {
				continue
			}
			if err := emit(out); err != nil {
				return err
			}
		}
		return nil
	})
}

// A StatusError is returned when an endpoint responds with a status other than
// 200 OK.
type StatusError struct {
	Endpoint   string
	StatusCode int
	// The start of the response body.
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sparql endpoint %v returned %d %s: %s",
		e.Endpoint, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

func snippet(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// decode parses SPARQL JSON results, calling fn for each row.
func decode(body []byte, fn func(rdf.Binding) error) error {
	if !gjson.ValidBytes(body) {
		return fmt.Errorf("invalid SPARQL results: not JSON: %s", snippet(body))
	}
	rows := gjson.GetBytes(body, "results.bindings")
	if !rows.IsArray() {
		return fmt.Errorf("invalid SPARQL results: missing results.bindings")
	}
	var err error
	rows.ForEach(func(_, row gjson.Result) bool {
		var b rdf.Binding
		b, err = decodeRow(row)
		if err == nil {
			err = fn(b)
		}
		return err == nil
	})
	return err
}

func decodeRow(row gjson.Result) (rdf.Binding, error) {
	vars := make(map[string]rdf.Term)
	var err error
	row.ForEach(func(name, val gjson.Result) bool {
		var t rdf.Term
		t, err = decodeTerm(val)
		if err != nil {
			err = fmt.Errorf("invalid SPARQL results: variable %v: %w", name.String(), err)
			return false
		}
		vars[name.String()] = t
		return true
	})
	if err != nil {
		return rdf.Binding{}, err
	}
	return rdf.NewBinding(vars), nil
}

func decodeTerm(val gjson.Result) (rdf.Term, error) {
	value := val.Get("value").String()
	switch typ := val.Get("type").String(); typ {
	case "uri":
		return rdf.NewIRI(value), nil
	case "bnode":
		return &rdf.Blank{ID: value}, nil
	case "literal", "typed-literal":
		if lang := val.Get("xml:lang"); lang.Exists() {
			return rdf.NewLangString(value, lang.String()), nil
		}
		if dt := val.Get("datatype"); dt.Exists() {
			return rdf.NewTyped(value, dt.String()), nil
		}
		return rdf.NewString(value), nil
	default:
		return nil, fmt.Errorf("unknown term type %q", typ)
	}
}
