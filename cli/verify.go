package cli

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dimidumo/zkresidency"
	"github.com/dimidumo/zkresidency/verifier"
)

// artifactPaths are the locations of the snarkjs files, defaulting to the
// output directory.
type artifactPaths struct {
	vkey   string
	proof  string
	public string
}

func (p *artifactPaths) addFlags(cmd *cobra.Command, vkey bool) {
	if vkey {
		cmd.Flags().StringVar(&p.vkey, "vkey", "", "verification key (default test/"+zkresidency.VkeyFileName+")")
	}
	cmd.Flags().StringVar(&p.proof, "proof", "", "proof data (default test/"+zkresidency.ProofDataFileName+")")
	cmd.Flags().StringVar(&p.public, "public", "", "public data (default test/"+zkresidency.PublicDataFileName+")")
}

func (p *artifactPaths) resolve(dir string) {
	p.vkey = firstNonEmpty(p.vkey, filepath.Join(dir, zkresidency.VkeyFileName))
	p.proof = firstNonEmpty(p.proof, filepath.Join(dir, zkresidency.ProofDataFileName))
	p.public = firstNonEmpty(p.public, filepath.Join(dir, zkresidency.PublicDataFileName))
}

func (p *artifactPaths) readProof() (*verifier.Proof, verifier.PublicSignals, error) {
	proofData, err := os.ReadFile(p.proof)
	if err != nil {
		return nil, nil, err
	}
	publicData, err := os.ReadFile(p.public)
	if err != nil {
		return nil, nil, err
	}
	proof, err := verifier.ParseProof(proofData)
	if err != nil {
		return nil, nil, err
	}
	public, err := verifier.ParsePublicSignals(publicData)
	if err != nil {
		return nil, nil, err
	}
	return proof, public, nil
}

func readVerifyingKey(path string) (*verifier.VerifyingKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return verifier.ParseVerifyingKey(data)
}

func (a *app) verifyCmd() *cobra.Command {
	var paths artifactPaths

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a proof against the blueprint verification key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths.resolve(a.cfg.OutDir)
			vk, err := readVerifyingKey(paths.vkey)
			if err != nil {
				return err
			}
			proof, public, err := paths.readProof()
			if err != nil {
				return err
			}
			if err := verifier.Verify(vk, proof, public); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Proof verified")
			return nil
		},
	}
	paths.addFlags(cmd, true)
	return cmd
}

func (a *app) calldataCmd() *cobra.Command {
	var paths artifactPaths
	var abi bool

	cmd := &cobra.Command{
		Use:   "calldata",
		Short: "Print the arguments of the Solidity verifier for a proof",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths.resolve(a.cfg.OutDir)
			proof, public, err := paths.readProof()
			if err != nil {
				return err
			}
			if err := verifier.CheckPublicSignals(public); err != nil {
				return err
			}
			if abi {
				fmt.Fprintf(cmd.OutOrStdout(), "0x%s\n",
					hex.EncodeToString(verifier.EncodeSolidityProof(proof)))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), verifier.SolidityCalldata(proof, public))
			return nil
		},
	}
	paths.addFlags(cmd, false)
	cmd.Flags().BoolVar(&abi, "abi", false, "print the ABI encoded proof tuple instead")
	return cmd
}

func (a *app) solidityCmd() *cobra.Command {
	var vkeyPath, out, name string

	cmd := &cobra.Command{
		Use:   "solidity",
		Short: "Generate a Solidity verifier contract from the verification key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vkeyPath = firstNonEmpty(vkeyPath, filepath.Join(a.cfg.OutDir, zkresidency.VkeyFileName))
			vk, err := readVerifyingKey(vkeyPath)
			if err != nil {
				return err
			}
			if out == "" {
				return verifier.WriteSolidity(vk, name, cmd.OutOrStdout())
			}
			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("error creating file: %w", err)
			}
			defer file.Close()
			if err := verifier.WriteSolidity(vk, name, file); err != nil {
				return fmt.Errorf("error writing Solidity verifier: %w", err)
			}
			a.logger.Info().Str("file", out).Msg("verifier contract written")
			return nil
		},
	}
	cmd.Flags().StringVar(&vkeyPath, "vkey", "", "verification key (default test/"+zkresidency.VkeyFileName+")")
	cmd.Flags().StringVar(&out, "out", "", "output file, stdout if empty")
	cmd.Flags().StringVar(&name, "name", verifier.DefaultContractName, "contract name")
	return cmd
}
