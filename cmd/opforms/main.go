package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-opforms"
	"github.com/goliatone/go-opforms/internal/telemetry"
	"github.com/goliatone/go-opforms/pkg/graphql"
	"github.com/goliatone/go-opforms/pkg/infer"
	"github.com/goliatone/go-opforms/pkg/openapi"
	"github.com/goliatone/go-opforms/pkg/operator"
	"github.com/goliatone/go-opforms/pkg/renderers/jsondesc"
	"github.com/goliatone/go-opforms/pkg/renderers/tui"
	"github.com/goliatone/go-opforms/pkg/types"
)

const usage = `usage: opforms [-otel.endpoint host:port] <command> [flags]

commands:
  describe  print operator descriptors
  render    render an operator with a named renderer
  validate  check a values file against an operator's inputs
  openapi   export operators as OpenAPI or import operators from a document
  graphql   print GraphQL input types for the operators
  infer     derive an input form from a sample JSON payload
  lint      report unsupported x-opforms extensions in OpenAPI documents
`

// errFailed signals a non-zero exit after output has already been written.
var errFailed = errors.New("opforms: check failed")

type command func(ctx context.Context, args []string) error

var commands = map[string]command{
	"describe": describeCmd,
	"render":   renderCmd,
	"validate": validateCmd,
	"openapi":  openapiCmd,
	"graphql":  graphqlCmd,
	"infer":    inferCmd,
	"lint":     lintCmd,
}

func main() {
	endpoint := flag.String("otel.endpoint", "", "OTLP/gRPC collector address (tracing disabled if empty)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		log.Fatalf("unknown command %q", flag.Arg(0))
	}

	ctx := context.Background()
	shutdown, err := telemetry.Setup(ctx, *endpoint, "opforms-cli")
	if err != nil {
		log.Fatalf("Failed to set up tracing: %v", err)
	}

	err = cmd(ctx, flag.Args()[1:])
	if serr := shutdown(ctx); serr != nil {
		log.Printf("Failed to flush traces: %v", serr)
	}
	switch {
	case errors.Is(err, errFailed):
		os.Exit(1)
	case errors.Is(err, flag.ErrHelp):
		os.Exit(2)
	case err != nil:
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}

func describeCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("describe", flag.ContinueOnError)
	defs := fs.String("defs", "operators", "definitions directory")
	format := fs.String("format", "json", "output format: json or yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var opts []jsondesc.Option
	switch *format {
	case "json":
		opts = append(opts, jsondesc.WithIndent("  "))
	case "yaml":
		opts = append(opts, jsondesc.WithFormat(jsondesc.FormatYAML))
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
	renderer := jsondesc.New(opts...)

	ops, err := selectOperators(ctx, *defs, fs.Args())
	if err != nil {
		return err
	}
	for i, op := range ops {
		out, err := renderer.Render(ctx, op, opforms.RenderOptions{})
		if err != nil {
			return err
		}
		if i > 0 && *format == "yaml" {
			fmt.Println("---")
		}
		fmt.Println(strings.TrimRight(string(out), "\n"))
	}
	return nil
}

func renderCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	defs := fs.String("defs", "operators", "definitions directory")
	name := fs.String("operator", "", "operator to render")
	rendererName := fs.String("renderer", "html", "renderer: html, json, yaml or tui")
	valuesPath := fs.String("values", "", "JSON file with prefill values")
	output := fs.String("output", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	op, err := loadOperator(ctx, *defs, *name)
	if err != nil {
		return err
	}
	values, err := readValues(*valuesPath)
	if err != nil {
		return err
	}

	renderers := opforms.DefaultRenderers()
	prompts, err := tui.New(tui.WithPromptDriver(tui.NewSurveyDriver(os.Stderr)))
	if err != nil {
		return err
	}
	renderers.MustRegister(prompts)

	out, err := opforms.Render(ctx, renderers, *rendererName, op, opforms.RenderOptions{Values: values})
	if err != nil {
		return err
	}
	if *output != "" {
		if err := os.WriteFile(*output, out, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Printf("Form written to %s\n", *output)
		return nil
	}
	fmt.Println(string(out))
	return nil
}

func validateCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	defs := fs.String("defs", "operators", "definitions directory")
	name := fs.String("operator", "", "operator whose inputs are checked")
	valuesPath := fs.String("values", "", "JSON file with submitted values")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *valuesPath == "" {
		return errors.New("-values is required")
	}

	op, err := loadOperator(ctx, *defs, *name)
	if err != nil {
		return err
	}
	values, err := readValues(*valuesPath)
	if err != nil {
		return err
	}

	result := opforms.Validate(ctx, op, values)
	if err := printJSON(result); err != nil {
		return err
	}
	if !result.Valid {
		return errFailed
	}
	return nil
}

func openapiCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("openapi", flag.ContinueOnError)
	defs := fs.String("defs", "operators", "definitions directory")
	title := fs.String("title", "Operators", "document title")
	version := fs.String("version", "1.0.0", "document version")
	source := fs.String("import", "", "OpenAPI document path or URL to convert into operators")
	validate := fs.Bool("validate", false, "validate the imported document")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *source == "" {
		ops, err := selectOperators(ctx, *defs, fs.Args())
		if err != nil {
			return err
		}
		return printJSON(openapi.Document(*title, *version, ops...))
	}

	data, err := readSource(ctx, *source)
	if err != nil {
		return err
	}
	var opts []openapi.ParseOption
	if *validate {
		opts = append(opts, openapi.WithValidation())
	}
	ops, err := openapi.Operations(ctx, data, opts...)
	if err != nil {
		return err
	}
	descriptors := make([]types.Descriptor, 0, len(ops))
	for _, op := range ops {
		descriptors = append(descriptors, op.Descriptor())
	}
	return printJSON(descriptors)
}

func graphqlCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("graphql", flag.ContinueOnError)
	defs := fs.String("defs", "operators", "definitions directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ops, err := selectOperators(ctx, *defs, fs.Args())
	if err != nil {
		return err
	}
	sdl, err := graphql.SDL(ops...)
	if err != nil {
		return err
	}
	fmt.Print(sdl)
	return nil
}

func inferCmd(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("infer", flag.ContinueOnError)
	sample := fs.String("sample", "", "sample JSON payload")
	defaults := fs.Bool("defaults", false, "use sample values as defaults")
	withLabels := fs.Bool("labels", false, "derive labels from property names")
	optional := fs.Bool("optional", false, "leave every property optional")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *sample == "" {
		return errors.New("-sample is required")
	}
	data, err := os.ReadFile(*sample)
	if err != nil {
		return err
	}

	var opts []infer.Option
	if *defaults {
		opts = append(opts, infer.WithDefaults())
	}
	if *withLabels {
		opts = append(opts, infer.WithLabels())
	}
	if *optional {
		opts = append(opts, infer.WithoutRequired())
	}
	obj, err := infer.FromSample(data, opts...)
	if err != nil {
		return err
	}
	return printJSON(obj.Descriptor())
}

func lintCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("lint", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("at least one OpenAPI document is required")
	}

	failed := false
	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		violations, err := openapi.Lint(ctx, data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for _, v := range violations {
			fmt.Printf("%s: %s\n", path, v)
		}
		failed = failed || len(violations) > 0
	}
	if failed {
		return errFailed
	}
	return nil
}

func selectOperators(ctx context.Context, dir string, names []string) ([]operator.Operator, error) {
	reg, err := opforms.LoadDefinitions(ctx, os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		names = reg.List()
	}
	ops := make([]operator.Operator, 0, len(names))
	for _, name := range names {
		op, err := reg.Get(name)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func loadOperator(ctx context.Context, dir, name string) (operator.Operator, error) {
	if name == "" {
		return operator.Operator{}, errors.New("-operator is required")
	}
	ops, err := selectOperators(ctx, dir, []string{name})
	if err != nil {
		return operator.Operator{}, err
	}
	return ops[0], nil
}

func readValues(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode values %s: %w", path, err)
	}
	return values, nil
}

func readSource(ctx context.Context, raw string) ([]byte, error) {
	reader := openapi.NewReader(openapi.WithHTTPFallback(30 * time.Second))
	src := openapi.SourceFromFile(raw)
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		var err error
		if src, err = openapi.SourceFromURL(raw); err != nil {
			return nil, err
		}
	}
	return reader.Read(ctx, src)
}

func printJSON(value any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return err
	}
	_, err := os.Stdout.Write(buf.Bytes())
	return err
}
