package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/dimidumo/zkresidency"
	"github.com/dimidumo/zkresidency/sdk"
	"github.com/dimidumo/zkresidency/sink"
)

func (a *app) proveCmd() *cobra.Command {
	var (
		slug      string
		emlPath   string
		outDir    string
		printOnly bool
		s3Bucket  string
		s3Prefix  string
		timeout   time.Duration
		inputs    map[string]string
	)

	cmd := &cobra.Command{
		Use:   "prove",
		Short: "Generate a proof of the sample email and save its proof and public data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			slug = firstNonEmpty(slug, a.cfg.BlueprintSlug)
			emlPath = firstNonEmpty(emlPath, a.cfg.EmailPath)
			outDir = firstNonEmpty(outDir, a.cfg.OutDir)
			s3Bucket = firstNonEmpty(s3Bucket, a.cfg.S3Bucket)
			s3Prefix = firstNonEmpty(s3Prefix, a.cfg.S3Prefix)
			if timeout == 0 {
				timeout = a.cfg.Timeout
			}

			eml, err := zkresidency.ReadEmail(emlPath)
			if err != nil {
				return err
			}

			// Proof generation can take up to a few minutes
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			names := make([]string, 0, len(inputs))
			for name := range inputs {
				names = append(names, name)
			}
			sort.Strings(names)
			var opts []sdk.ProverOption
			for _, name := range names {
				opts = append(opts, sdk.WithExternalInputs(sdk.ExternalInput{Name: name, Value: inputs[name]}))
			}
			gp, err := zkresidency.Prove(ctx, a.newSDK(), slug, eml, opts...)
			if err != nil {
				return err
			}

			out, err := a.outputSink(ctx, cmd, printOnly, outDir, s3Bucket, s3Prefix)
			if err != nil {
				return err
			}
			if err := gp.Publish(ctx, out); err != nil {
				return err
			}
			if !printOnly {
				a.logger.Info().
					Str("proof", filepath.Join(outDir, zkresidency.ProofDataFileName)).
					Str("public", filepath.Join(outDir, zkresidency.PublicDataFileName)).
					Msg("proof saved")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Completed")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&slug, "blueprint", "", "blueprint slug (default "+zkresidency.DefaultBlueprintSlug+")")
	f.StringVar(&emlPath, "eml", "", "raw email to prove (default "+zkresidency.DefaultEmailPath+")")
	f.StringVar(&outDir, "out", "", "directory receiving "+zkresidency.ProofDataFileName+
		" and "+zkresidency.PublicDataFileName+" (default test)")
	f.BoolVar(&printOnly, "print", false, "print the proof and public data instead of saving them")
	f.StringVar(&s3Bucket, "s3-bucket", "", "also upload the artifacts to this S3 bucket")
	f.StringVar(&s3Prefix, "s3-prefix", "", "key prefix of the uploaded artifacts")
	f.DurationVar(&timeout, "timeout", 0, "give up waiting for the proof after this long (default 10m)")
	f.StringToStringVar(&inputs, "input", nil, "external input name=value, may be repeated")
	return cmd
}

func (a *app) outputSink(ctx context.Context, cmd *cobra.Command, printOnly bool,
	outDir, s3Bucket, s3Prefix string) (sink.Sink, error) {

	var sinks []sink.Sink
	if printOnly {
		sinks = append(sinks, sink.NewConsoleSink(cmd.OutOrStdout(), a.logger))
	} else {
		sinks = append(sinks, sink.NewFileSink(outDir))
	}
	if s3Bucket != "" {
		s3Sink, err := sink.NewS3Sink(ctx, s3Bucket, s3Prefix, a.logger)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s3Sink)
	}
	return sink.Multi(sinks...), nil
}
