package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/mahesh-hegde/vizsql/app/common"
	"github.com/mahesh-hegde/vizsql/app/config"
	"github.com/mahesh-hegde/vizsql/app/dbengine"
	"github.com/mahesh-hegde/vizsql/app/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "server":
		runServer()
	case "query":
		runQuery()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: vizsql <command> [options]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  server        Start the vizsql HTTP API")
	fmt.Fprintln(os.Stderr, "  query         Run one query against a configured data source")
}

func loadConfig(path string) *config.VizConfig {
	// Credentials may live in a .env file next to the process; missing file
	// is fine.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "err", err)
	}

	confFile, err := os.Open(path)
	if err != nil {
		slog.Error("error while opening config file", "err", err)
		os.Exit(1)
	}
	defer confFile.Close()

	var conf config.VizConfig
	confDec := json.NewDecoder(confFile)
	if err := confDec.Decode(&conf); err != nil {
		slog.Error("error while reading config file", "err", err)
		os.Exit(1)
	}
	conf.ResolvePasswords()

	for _, ds := range conf.DataSources {
		if !ds.Kind.Valid() {
			slog.Error("unsupported engine kind in config", "source", ds.Name, "kind", ds.Kind)
			os.Exit(1)
		}
	}
	return &conf
}

func runServer() {
	flags := pflag.NewFlagSet("server", pflag.ExitOnError)
	var address, confPath string
	var port, rateLimit, gzipLevel, timeoutSeconds int
	var behindLB bool
	flags.StringVarP(&address, "address", "a", "localhost", "Server address to bind")
	flags.IntVarP(&port, "port", "p", 8080, "Server port to bind")
	flags.StringVarP(&confPath, "config", "c", "config.json", "Path to config.json")
	flags.IntVar(&rateLimit, "rate-limit", 0, "Requests per second per client, 0 to disable")
	flags.IntVar(&gzipLevel, "gzip-level", 0, "Gzip compression level, 0 to disable")
	flags.IntVar(&timeoutSeconds, "timeout", 0, "Request timeout in seconds, 0 to disable")
	flags.BoolVar(&behindLB, "behind-load-balancer", false, "Trust X-Forwarded-For for rate limiting")

	flags.Parse(os.Args[2:])

	conf := loadConfig(confPath)
	if len(conf.DataSources) == 0 {
		slog.Error("no data sources configured, stopping")
		os.Exit(1)
	}

	fmt.Printf("Starting server on %s:%d\n", address, port)
	server.StartServer(server.NewVizController(conf), config.ServerRuntimeConfig{
		Addr:               address,
		Port:               port,
		RateLimit:          rateLimit,
		GzipLevel:          gzipLevel,
		BehindLoadBalancer: behindLB,
		TimeoutSeconds:     timeoutSeconds,
	})
}

func runQuery() {
	flags := pflag.NewFlagSet("query", pflag.ExitOnError)
	var confPath, sourceName, queryText string
	flags.StringVarP(&confPath, "config", "c", "config.json", "Path to config.json")
	flags.StringVarP(&sourceName, "datasource", "d", "", "Name of the data source (required)")
	flags.StringVarP(&queryText, "query", "q", "", "Query text (required)")

	flags.Parse(os.Args[2:])

	if sourceName == "" || queryText == "" {
		fmt.Fprintln(os.Stderr, "Error: --datasource and --query are required")
		os.Exit(1)
	}

	conf := loadConfig(confPath)
	ds, ok := conf.DataSource(sourceName)
	if !ok {
		slog.Error("unknown data source", "name", sourceName)
		os.Exit(1)
	}

	res, err := dbengine.Execute(context.Background(), ds, queryText)
	if err != nil {
		slog.Error("query failed", "err", err)
		os.Exit(1)
	}
	printResult(res)
}

func printResult(res *dbengine.Result) {
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	for i, f := range res.Fields {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, f.Name)
	}
	fmt.Fprintln(w)
	for _, row := range res.Rows {
		for i, v := range row {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, common.FormatScalar(v))
		}
		fmt.Fprintln(w)
	}
	w.Flush()
	fmt.Printf("(%d rows in %d ms)\n", len(res.Rows), res.RuntimeMillis)
}
