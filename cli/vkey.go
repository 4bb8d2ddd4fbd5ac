package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dimidumo/zkresidency"
)

func (a *app) vkeyCmd() *cobra.Command {
	var slug, out string

	cmd := &cobra.Command{
		Use:   "vkey",
		Short: "Download the verification key of the blueprint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			slug = firstNonEmpty(slug, a.cfg.BlueprintSlug)
			out = firstNonEmpty(out, filepath.Join(a.cfg.OutDir, zkresidency.VkeyFileName))
			if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
				return err
			}
			if err := zkresidency.ExportVkey(cmd.Context(), a.newSDK(), slug, out); err != nil {
				return err
			}
			a.logger.Info().Str("blueprint", slug).Str("file", out).Msg("verification key saved")
			return nil
		},
	}
	cmd.Flags().StringVar(&slug, "blueprint", "", "blueprint slug (default "+zkresidency.DefaultBlueprintSlug+")")
	cmd.Flags().StringVar(&out, "out", "", "output file (default test/"+zkresidency.VkeyFileName+")")
	return cmd
}
