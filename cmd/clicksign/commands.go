package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gisce/clicksign"
)

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usagef("%s: %v", fs.Name(), err)
	}
	if fs.NArg() > 0 {
		return usagef("%s: unexpected arguments %v", fs.Name(), fs.Args())
	}
	return nil
}

func (a *app) start(ctx context.Context, args []string) error {
	fs := a.flagSet("start")
	file := fs.String("f", "", "signature request JSON file (- for stdin)")
	dryRun := fs.Bool("dry-run", false, "validate the request without calling the service")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	request, err := readPayload(*file)
	if err != nil {
		return err
	}
	if *dryRun {
		normalized, err := clicksign.ValidateSignatureRequest(request)
		if err != nil {
			return err
		}
		return a.out.Print(normalized)
	}
	client, err := a.client()
	if err != nil {
		return err
	}
	result, err := client.Signature.Start(ctx, request)
	if err != nil {
		return err
	}
	return a.out.Print(result.View)
}

func (a *app) status(ctx context.Context, args []string) error {
	fs := a.flagSet("status")
	id := fs.Int64("id", 0, "signatory id")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *id <= 0 {
		return usagef("status: -id must be a positive signatory id")
	}
	client, err := a.client()
	if err != nil {
		return err
	}
	result, err := client.Signature.Status(ctx, *id)
	if err != nil {
		return err
	}
	return a.out.Print(result.View)
}

func (a *app) document(ctx context.Context, args []string) error {
	fs := a.flagSet("document")
	file := fs.String("f", "", "document request JSON file (- for stdin)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	request, err := readPayload(*file)
	if err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}
	result, err := client.Signature.Document(ctx, request)
	if err != nil {
		return err
	}
	return a.out.Print(result.View)
}

func (a *app) configuration(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usagef("config: expected list or get")
	}
	switch args[0] {
	case "list":
		if err := parseFlags(a.flagSet("config list"), args[1:]); err != nil {
			return err
		}
		client, err := a.client()
		if err != nil {
			return err
		}
		result, err := client.Configuration.List(ctx)
		if err != nil {
			return err
		}
		return a.out.Print(result.View)
	case "get":
		fs := a.flagSet("config get")
		id := fs.Int64("id", 0, "configuration id")
		if err := parseFlags(fs, args[1:]); err != nil {
			return err
		}
		if *id <= 0 {
			return usagef("config get: -id must be a positive configuration id")
		}
		client, err := a.client()
		if err != nil {
			return err
		}
		result, err := client.Configuration.Get(ctx, *id)
		if err != nil {
			return err
		}
		return a.out.Print(result.View)
	default:
		return usagef("config: unknown subcommand %q", args[0])
	}
}

func (a *app) callback(args []string) error {
	fs := a.flagSet("callback")
	file := fs.String("f", "", "callback payload JSON file (- for stdin)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	r, closeFn, err := openPayload(*file)
	if err != nil {
		return err
	}
	defer closeFn()
	cb, err := clicksign.DecodeCallback(r)
	if err != nil {
		return err
	}
	return a.out.Print(cb.View)
}

func openPayload(path string) (io.Reader, func(), error) {
	switch path {
	case "":
		return nil, nil, usagef("-f is required")
	case "-":
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, func() { _ = f.Close() }, nil
}

// readPayload decodes a JSON object keeping numbers as json.Number, which the schemas
// normalize.
func readPayload(path string) (map[string]any, error) {
	r, closeFn, err := openPayload(path)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if payload == nil {
		return nil, errors.New("decode " + path + ": expected a JSON object")
	}
	return payload, nil
}
