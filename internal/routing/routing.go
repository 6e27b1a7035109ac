// Package routing is the CLI front end: it builds a subcommand grammar from
// the operation registry (plus the fixed server subcommand), parses process
// arguments and runs exactly one operation to completion per invocation.
package routing

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"colorcore/go-daemon/internal/adapters/rpc"
	"colorcore/go-daemon/internal/cache"
	"colorcore/go-daemon/internal/config"
	"colorcore/go-daemon/internal/operations"
	"colorcore/go-daemon/internal/txformat"
)

const txformatUsage = "Format of transactions if a transaction is returned ('raw' or 'json')"

type Router struct {
	registry *operations.Registry
	cfg      config.Config
	newCache cache.Factory
	out      io.Writer
	program  string

	// runServer is replaceable in tests; by default it blocks serving the
	// RPC front end until ctx is canceled.
	runServer func(ctx context.Context) error
}

func New(cfg config.Config, registry *operations.Registry, newCache cache.Factory, out io.Writer) *Router {
	r := &Router{
		registry: registry,
		cfg:      cfg,
		newCache: newCache,
		out:      out,
		program:  "colord",
	}
	r.runServer = func(ctx context.Context) error {
		return rpc.NewServer(cfg, registry, newCache).Run(ctx)
	}
	return r
}

// Parse resolves the subcommand in args and runs it to completion.
// Recognized operation failures are written as an "Error: <text>" line and
// do not produce an error; anything else (usage mistakes included) is
// returned for the caller to treat as fatal.
func (r *Router) Parse(ctx context.Context, args []string) error {
	if len(args) == 0 {
		r.printUsage()
		return nil
	}

	name := args[0]
	if name == operations.ReservedServerName {
		return r.serveCommand(ctx)
	}

	op, ok := r.registry.Lookup(name)
	if !ok {
		r.printUsage()
		return fmt.Errorf("unknown command %q", name)
	}
	return r.runOperation(ctx, op, args[1:])
}

func (r *Router) runOperation(ctx context.Context, op *operations.Operation, argv []string) error {
	fs := flag.NewFlagSet(op.Name, flag.ContinueOnError)
	fs.SetOutput(r.out)

	var required []operations.ParamSpec
	optional := make(map[string]*string)
	for _, p := range op.Params {
		if p.Required {
			required = append(required, p)
		} else {
			optional[p.Name] = fs.String(p.Name, p.Default, p.Description)
		}
	}
	format := fs.String(txformat.ParamKey, txformat.FormatJSON, txformatUsage)
	fs.Usage = func() { r.operationUsage(fs, op, required) }

	// Required parameters are positional and come before any flags.
	if len(argv) < len(required) {
		fs.Usage()
		return fmt.Errorf("%s: missing required argument %q", op.Name, required[len(argv)].Name)
	}
	args := make(operations.Args, len(op.Params))
	for i, p := range required {
		if strings.HasPrefix(argv[i], "-") {
			fs.Usage()
			return fmt.Errorf("%s: missing required argument %q", op.Name, p.Name)
		}
		args[p.Name] = argv[i]
	}
	if err := fs.Parse(argv[len(required):]); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return fmt.Errorf("%s: unexpected argument %q", op.Name, fs.Arg(0))
	}
	for name, value := range optional {
		args[name] = *value
	}

	opCtx := operations.NewContext(r.cfg, r.newCache, txformat.Select(*format))
	result, err := op.Invoke(ctx, opCtx, args)
	if err != nil {
		var ctrlErr *operations.ControllerError
		var builderErr *operations.TransactionBuilderError
		switch {
		case errors.As(err, &ctrlErr):
			fmt.Fprintf(r.out, "Error: %s\n", ctrlErr.Message)
			return nil
		case errors.As(err, &builderErr):
			fmt.Fprintf(r.out, "Error: %s\n", builderErr.Kind)
			return nil
		default:
			return err
		}
	}

	encoded, err := json.MarshalIndent(opCtx.Format(result), "", "    ")
	if err != nil {
		return fmt.Errorf("%s: encode result: %w", op.Name, err)
	}
	fmt.Fprintf(r.out, "%s\n", encoded)
	return nil
}

func (r *Router) serveCommand(ctx context.Context) error {
	if !r.cfg.RPC.Enabled {
		fmt.Fprint(r.out, "Error: RPC must be enabled in the configuration.\n")
		return nil
	}
	fmt.Fprintf(r.out, "Starting RPC server on port %d...\n", r.cfg.RPC.Port)
	return r.runServer(ctx)
}

func (r *Router) printUsage() {
	fmt.Fprintf(r.out, "Usage: %s <command> [arguments]\n\nCommands:\n", r.program)
	fmt.Fprintf(r.out, "  %-24s %s\n", operations.ReservedServerName, "Starts the JSON/RPC server.")
	for _, op := range r.registry.All() {
		fmt.Fprintf(r.out, "  %-24s %s\n", op.Name, op.Doc)
	}
}

func (r *Router) operationUsage(fs *flag.FlagSet, op *operations.Operation, required []operations.ParamSpec) {
	var positionals strings.Builder
	for _, p := range required {
		fmt.Fprintf(&positionals, " <%s>", p.Name)
	}
	fmt.Fprintf(r.out, "Usage: %s %s%s [flags]\n", r.program, op.Name, positionals.String())
	if op.Doc != "" {
		fmt.Fprintf(r.out, "%s\n", op.Doc)
	}
	fs.PrintDefaults()
}
