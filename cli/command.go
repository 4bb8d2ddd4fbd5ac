package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dimidumo/zkresidency/verifier"
)

func (a *app) decodeCommandCmd() *cobra.Command {
	var file, vkeyPath, publicPath string

	cmd := &cobra.Command{
		Use:   "decode-command [hex]",
		Short: "Decode and validate an ABI encoded prove and claim command",
		Long: `Decode an ABI encoded ProveAndClaimCommand, print its fields as JSON and
check the proof it carries. With --vkey and --public the proof is also
verified against the blueprint verification key.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			switch {
			case len(args) == 1 && file != "":
				return errors.New("pass the command either as argument or with --file")
			case len(args) == 1:
				input = args[0]
			case file != "":
				data, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				input = string(data)
			default:
				return errors.New("missing command, pass it as argument or with --file")
			}

			command, err := verifier.DecodeProveAndClaimCommandHex(input)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(command, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			proof, err := command.Validate()
			if err != nil {
				return err
			}
			a.logger.Debug().Str("email", command.Email).Msg("command is well formed")
			if vkeyPath == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Command valid")
				return nil
			}

			vk, err := readVerifyingKey(vkeyPath)
			if err != nil {
				return err
			}
			publicData, err := os.ReadFile(publicPath)
			if err != nil {
				return err
			}
			public, err := verifier.ParsePublicSignals(publicData)
			if err != nil {
				return err
			}
			if err := verifier.Verify(vk, proof, public); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Command valid, proof verified")
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "file with the hex encoded command")
	cmd.Flags().StringVar(&vkeyPath, "vkey", "", "verification key to verify the proof with")
	cmd.Flags().StringVar(&publicPath, "public", "", "public data of the proof, required with --vkey")
	cmd.MarkFlagsRequiredTogether("vkey", "public")
	return cmd
}
