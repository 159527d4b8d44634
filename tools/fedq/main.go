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

// Command fedq plans and runs simple queries against a federation described by
// a configuration file.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"time"

	docopt "github.com/docopt/docopt-go"
	"github.com/ebay/federation/config"
	"github.com/ebay/federation/query"
	"github.com/ebay/federation/query/planner/plandef"
	"github.com/ebay/federation/rdf"
	"github.com/ebay/federation/sources/memstore"
	"github.com/ebay/federation/util/debuglog"
	"github.com/ebay/federation/util/table"
	"github.com/ebay/federation/util/tracing"
	"github.com/julienschmidt/httprouter"
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var fmtr = message.NewPrinter(language.English)

const usage = `fedq plans and runs queries over a federation of RDF sources.

Usage:
  fedq [--cfg=FILE --trace=URL --progress] plan FILE
  fedq [--cfg=FILE --trace=URL --progress --limit=N -t=DUR] query FILE

Options:
  --cfg=FILE               Federation configuration, JSON or YAML [default: fedq.json]
  --trace=URL              Send OpenTracing traces to this Jaeger collector.
  --progress               Show progress bars while loading data files.
  --limit=N                Return at most N results.
  -t=DUR, --timeout=DUR    Time limit for the whole query [default: 1m]

Query files hold one triple pattern per line, plus optional filters:
  ?person <http://xmlns.com/foaf/0.1/knows> ?friend .
  ?friend <http://xmlns.com/foaf/0.1/age> ?age .
  FILTER ?age >= 18

Use - as FILE to read the query from standard input.
`

type options struct {
	ConfigFile    string `docopt:"--cfg"`
	Trace         string `docopt:"--trace"`
	Progress      bool   `docopt:"--progress"`
	LimitString   string `docopt:"--limit"`
	Limit         int
	TimeoutString string `docopt:"--timeout"`
	Timeout       time.Duration
	Filename      string `docopt:"FILE"`
	Plan          bool   `docopt:"plan"`
	Query         bool   `docopt:"query"`
}

func parseArgs() *options {
	opts, err := docopt.ParseDoc(usage)
	if err != nil {
		log.Fatalf("Error parsing command-line arguments: %v", err)
	}
	var options options
	err = opts.Bind(&options)
	if err != nil {
		log.Fatalf("Error binding command-line arguments: %v\nfrom: %+v", err, opts)
	}
	options.Timeout, err = time.ParseDuration(options.TimeoutString)
	if err != nil {
		log.Fatalf("Unable to parse timeout value: %v", err)
	}
	if options.LimitString != "" {
		options.Limit, err = strconv.Atoi(options.LimitString)
		if err != nil || options.Limit < 0 {
			log.Fatalf("Invalid limit: %v", options.LimitString)
		}
	}
	return &options
}

func main() {
	debuglog.Configure(debuglog.Options{})
	if err := fedq(parseArgs()); err != nil {
		log.Errorf("fedq failed: %v", err)
		os.Exit(1)
	}
}

// fedq runs the command described by 'options'.
func fedq(options *options) error {
	cfg, err := config.Load(options.ConfigFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %v", err)
	}
	if options.Trace != "" {
		cfg.Tracing = &config.Tracing{Endpoint: options.Trace}
	}
	tracer, err := tracing.New("fedq", cfg.Tracing)
	if err != nil {
		log.WithError(err).Warn("Could not initialize OpenTracing tracer")
	} else {
		defer tracer.Close()
	}
	if cfg.MetricsAddress != "" {
		startMetricsServer(cfg.MetricsAddress)
	}

	expr, err := readQueryFile(options.Filename)
	if err != nil {
		return fmt.Errorf("error reading query: %v", err)
	}
	var monitor memstore.LoadMonitor
	if options.Progress {
		monitor = progressBars(os.Stderr)
	}
	fed, err := query.NewFederation(cfg, monitor)
	if err != nil {
		return fmt.Errorf("error setting up federation: %v", err)
	}
	defer fed.Close()

	span, ctx := opentracing.StartSpanFromContext(context.Background(), "fedq run")
	defer span.Finish()
	ctx, cancel := context.WithTimeout(ctx, options.Timeout)
	defer cancel()

	if options.Plan {
		return plan(ctx, fed, expr)
	}
	return run(ctx, fed, expr, options)
}

func readQueryFile(filename string) (plandef.Expr, error) {
	if filename == "-" {
		return readQuery(os.Stdin)
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readQuery(f)
}

func plan(ctx context.Context, fed *query.Federation, expr plandef.Expr) error {
	res, err := fed.Prepare(ctx, expr, rdf.Dataset{}, rdf.EmptyBinding)
	if err != nil {
		return err
	}
	fmt.Print(plandef.FormatEstimates(res))
	return nil
}

func run(ctx context.Context, fed *query.Federation, expr plandef.Expr, options *options) error {
	if options.Limit > 0 {
		limit := uint64(options.Limit)
		expr = &plandef.Slice{Paging: plandef.LimitOffset{Limit: &limit}, Input: expr}
	}
	start := time.Now()
	var results []rdf.Binding
	err := fed.Run(ctx, expr, rdf.Dataset{}, rdf.EmptyBinding, func(b rdf.Binding) error {
		results = append(results, b)
		return nil
	})
	if err != nil {
		return err
	}
	dumpResults(os.Stdout, results)
	fmtr.Printf("\n%d results.\n", len(results))
	log.Infof("Query took %s", time.Since(start))
	return nil
}

// dumpResults writes a table with a column per variable and a row per result.
func dumpResults(w io.Writer, results []rdf.Binding) {
	seen := make(map[string]bool)
	var names []string
	for _, b := range results {
		for _, name := range b.Names() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	t := make([][]string, len(results)+1)
	t[0] = make([]string, len(names))
	for i, name := range names {
		t[0][i] = "?" + name
	}
	for r, b := range results {
		row := make([]string, len(names))
		for i, name := range names {
			if v, ok := b.Get(name); ok {
				row[i] = v.String()
			}
		}
		t[r+1] = row
	}
	table.PrettyPrint(w, t, table.HeaderRow|table.SkipEmpty)
}

func startMetricsServer(address string) {
	m := httprouter.New()
	m.Handler("GET", "/metrics", promhttp.Handler())
	log.Infof("Starting HTTP server for metrics on %v", address)
	go func() {
		err := http.ListenAndServe(address, m)
		if err != nil {
			log.WithError(err).Error("Failed to start HTTP server for Prometheus endpoint")
		}
	}()
}
