package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/md-rashed-zaman/availcap/libs/grpcx"
	"github.com/md-rashed-zaman/availcap/libs/runtime"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/evaluation"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/grpcserver"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/recurrence"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/wire"
)

// errInvalid makes the process exit non-zero after the validation result has been printed.
var errInvalid = errors.New("configuration is invalid")

type options struct {
	configFile string
	remote     string
	businessID string
	timeout    time.Duration
}

func newRootCommand(out io.Writer) *cobra.Command {
	opts := &options{}
	v := viper.New()
	v.SetEnvPrefix("AVAILABILITY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "availability-check",
		Short: "Validate availability configurations and compute their appointment capacity.",
		Long: `availability-check reads a provider availability document (YAML or JSON) and
validates it or computes its slot capacity, either in process or against a
running availability-service over gRPC.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			opts.configFile = v.GetString("config")
			opts.remote = v.GetString("remote")
			opts.businessID = v.GetString("business-id")
			opts.timeout = v.GetDuration("timeout")
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "availability.yaml", "availability document (yaml or json)")
	root.PersistentFlags().String("remote", "", "availability-service gRPC address; evaluates in process when empty")
	root.PersistentFlags().String("business-id", "", "business id attached to remote evaluations")
	root.PersistentFlags().Duration("timeout", 5*time.Second, "remote call timeout")

	root.AddCommand(
		newValidateCommand(out, opts),
		newEvaluateCommand(out, opts),
		newFieldsCommand(out, opts),
	)
	return root
}

func newValidateCommand(out io.Writer, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Report every validation error in the document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := loadDocument(opts.configFile)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			var res wire.ValidationResult
			if opts.remote != "" {
				client, closeFn, err := dialRemote(ctx, opts)
				if err != nil {
					return err
				}
				defer closeFn()
				r, err := client.Validate(ctx, doc)
				if err != nil {
					return err
				}
				res = *r
			} else {
				errs, err := localService().Validate(ctx, doc)
				if err != nil {
					return err
				}
				res = wire.NewValidationResult(errs)
			}
			if err := printJSON(out, res); err != nil {
				return err
			}
			if !res.Valid {
				return errInvalid
			}
			return nil
		},
	}
}

func newEvaluateCommand(out io.Writer, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate",
		Short: "Validate the document and print its capacity and open windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := loadDocument(opts.configFile)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			var res *grpcserver.EvaluateResponse
			if opts.remote != "" {
				client, closeFn, err := dialRemote(ctx, opts)
				if err != nil {
					return err
				}
				defer closeFn()
				if res, err = client.Evaluate(ctx, opts.businessID, doc); err != nil {
					return err
				}
			} else {
				o, err := localService().Evaluate(ctx, opts.businessID, doc)
				if err != nil {
					return err
				}
				res = &grpcserver.EvaluateResponse{Valid: o.Valid, Errors: o.Errors}
				if o.Valid {
					r := o.Result()
					res.Evaluation = &r
				}
			}
			if err := printJSON(out, res); err != nil {
				return err
			}
			if !res.Valid {
				return errInvalid
			}
			return nil
		},
	}
}

func newFieldsCommand(out io.Writer, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fields <mode>",
		Short: "List the fields a recurrence mode requires",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			if opts.remote != "" {
				client, closeFn, err := dialRemote(ctx, opts)
				if err != nil {
					return err
				}
				defer closeFn()
				res, err := client.RequiredFields(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(out, res)
			}
			kind, err := recurrence.ParseKind(args[0])
			if err != nil {
				return err
			}
			return printJSON(out, wire.RequiredFieldsResult{Mode: string(kind), RequiredFields: wire.RequiredFieldNames(kind)})
		},
	}
}

// loadDocument reads the document with viper so YAML and JSON files share one code path.
func loadDocument(path string) (wire.Document, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return wire.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	var doc wire.Document
	if err := v.Unmarshal(&doc); err != nil {
		return wire.Document{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc, nil
}

func localService() *evaluation.Service {
	return evaluation.NewService(runtime.NewLoggerTo(os.Stderr, "availability-check", "warn"))
}

func dialRemote(ctx context.Context, opts *options) (*grpcserver.Client, func(), error) {
	conn, err := grpcx.Dial(ctx, opts.remote, grpcx.DialOptions{Timeout: opts.timeout})
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", opts.remote, err)
	}
	return grpcserver.NewClient(conn), func() { _ = conn.Close() }, nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
