package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/samvad-hq/restmapper/internal/app"
	"github.com/samvad-hq/restmapper/internal/config"
	"github.com/samvad-hq/restmapper/internal/crawler"
	"github.com/samvad-hq/restmapper/internal/logger"
	"github.com/samvad-hq/restmapper/pkg/restmapper"
)

const usage = `usage: restmapper [flags] call|discover|crawl [segments...]

Segments that are decimal integers navigate by index.
`

type cliFlags struct {
	method  string
	data    string
	params  []string
	headers []string
	raw     bool
	depth   int
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "restmapper: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	flags := pflag.NewFlagSet("restmapper", pflag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}

	var cli cliFlags
	flags.String("profile", "", "profile id (optional when only one profile is configured)")
	flags.String("profiles-file", "", "path to the profiles file")
	flags.String("publishers-file", "", "path to the publishers file")
	flags.String("log-level", "", "log level")
	flags.StringVar(&cli.method, "method", "GET", "HTTP method for call")
	flags.StringVar(&cli.data, "data", "", "request body; JSON is sent as JSON, anything else verbatim")
	flags.StringArrayVar(&cli.params, "param", nil, "query parameter k=v (repeatable)")
	flags.StringArrayVar(&cli.headers, "header", nil, "request header k=v (repeatable)")
	flags.BoolVar(&cli.raw, "raw", false, "print the response body without parsing")
	flags.IntVar(&cli.depth, "depth", 0, "crawl depth (defaults to crawl_depth)")

	if err := flags.Parse(args); err != nil {
		return err
	}
	rest := flags.Args()
	if len(rest) == 0 {
		flags.Usage()
		return errors.New("missing command")
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	explorer, err := app.NewExplorer(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("failed to initialize explorer", "error", err)
		return err
	}
	defer func() {
		if err := explorer.Close(); err != nil {
			log.ErrorObj("explorer close failed", "error", err)
		}
	}()

	cmd, segments := rest[0], rest[1:]
	switch cmd {
	case "call":
		req, err := cli.callRequest(segments)
		if err != nil {
			return err
		}
		res, err := explorer.Call(ctx, req)
		if err != nil {
			return err
		}
		return printResult(out, res, log)
	case "discover":
		d, err := explorer.Discover(ctx, segments)
		if err != nil {
			return err
		}
		return printJSON(out, d)
	case "crawl":
		report, err := explorer.Crawl(ctx, cli.depth)
		if perr := printJSON(out, report); perr != nil {
			return perr
		}
		return err
	default:
		flags.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (c cliFlags) callRequest(segments []string) (app.CallRequest, error) {
	method, ok := restmapper.ParseMethod(strings.ToUpper(c.method))
	if !ok {
		return app.CallRequest{}, fmt.Errorf("%w: %s", restmapper.ErrUnknownMethod, c.method)
	}
	params, err := parsePairs(c.params)
	if err != nil {
		return app.CallRequest{}, fmt.Errorf("--param: %w", err)
	}
	headers, err := parsePairs(c.headers)
	if err != nil {
		return app.CallRequest{}, fmt.Errorf("--header: %w", err)
	}

	req := app.CallRequest{
		Segments: segments,
		Method:   method,
		Params:   params,
		Headers:  headers,
		Raw:      c.raw,
	}
	if c.data != "" {
		var body any
		if json.Unmarshal([]byte(c.data), &body) == nil {
			req.Body = body
		} else {
			req.Body = c.data
		}
	}
	return req, nil
}

func parsePairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("expected k=v, got %q", p)
		}
		out[strings.TrimSpace(k)] = v
	}
	return out, nil
}

func printResult(out io.Writer, res *restmapper.Result, log logger.Logger) error {
	switch res.Kind() {
	case restmapper.KindRaw:
		log.InfoObj("non-json response", "response", crawler.Summarize(res.Response()))
		_, err := out.Write(res.Response().Body())
		return err
	case restmapper.KindObject:
		return printJSON(out, res.Object())
	case restmapper.KindSequence:
		for item, err := range res.Items() {
			if err != nil {
				return err
			}
			if err := printJSON(out, item); err != nil {
				return err
			}
		}
		return nil
	default:
		return printJSON(out, res.JSON())
	}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
