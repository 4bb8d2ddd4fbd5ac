// Package zkresidency generates zk-email proofs of the Succinct ZK Residency
// invite email through the zk-email registry and exports the resulting
// artifacts.
package zkresidency

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/iden3/go-rapidsnark/types"

	"github.com/dimidumo/zkresidency/sdk"
	"github.com/dimidumo/zkresidency/sink"
	"github.com/dimidumo/zkresidency/verifier"
)

const (
	// DefaultBlueprintSlug is the blueprint slug, as copied from the registry
	// homepage.
	DefaultBlueprintSlug = "DimiDumo/SuccinctZKResidencyInvite@v3"
	// DefaultEmailPath is the sample email proofs are generated for.
	DefaultEmailPath = "emls/residency.eml"

	ProofDataFileName  = "proofData.json"
	PublicDataFileName = "publicData.json"
	VkeyFileName       = "vkey.json"
)

// GeneratedProof is a proof generated by the remote prover, with its proof
// data and public data as compact JSON
type GeneratedProof struct {
	BlueprintSlug string
	ProofID       uuid.UUID
	ProofData     []byte
	PublicData    []byte
}

// ReadEmail reads a raw email from file
func ReadEmail(filename string) ([]byte, error) {
	eml, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading email: %w", err)
	}
	if len(eml) == 0 {
		return nil, fmt.Errorf("error reading email: %s is empty", filename)
	}
	return eml, nil
}

// Prove gets the blueprint identified by slug, creates a prover from it and
// generates a proof for eml, waiting until the remote prover is done.
func Prove(ctx context.Context, s *sdk.SDK, slug string, eml []byte,
	opts ...sdk.ProverOption) (*GeneratedProof, error) {

	blueprint, err := s.GetBlueprint(ctx, slug)
	if err != nil {
		return nil, err
	}
	prover, err := blueprint.CreateProver(opts...)
	if err != nil {
		return nil, err
	}
	proof, err := prover.GenerateProof(ctx, eml)
	if err != nil {
		return nil, fmt.Errorf("error generating proof: %w", err)
	}

	proofData, publicData := proof.GetProofData()
	gp := &GeneratedProof{BlueprintSlug: slug, ProofID: proof.ID}
	if gp.ProofData, err = compactJSON(proofData); err != nil {
		return nil, fmt.Errorf("error encoding proof data: %w", err)
	}
	if gp.PublicData, err = compactJSON(publicData); err != nil {
		return nil, fmt.Errorf("error encoding public data: %w", err)
	}
	return gp, nil
}

// ExportProofAndPublicData writes the proof data and the public data to files
// as JSON
func (gp *GeneratedProof) ExportProofAndPublicData(proofFileName string,
	publicDataFileName string) error {

	proofFile, err := os.Create(proofFileName)
	if err != nil {
		return fmt.Errorf("error creating proof file: %w", err)
	}
	defer proofFile.Close()

	publicDataFile, err := os.Create(publicDataFileName)
	if err != nil {
		return fmt.Errorf("error creating public data file: %w", err)
	}
	defer publicDataFile.Close()

	if err = gp.WriteProofData(proofFile); err != nil {
		return err
	}
	return gp.WritePublicData(publicDataFile)
}

// WriteProofData writes the proof data as JSON
func (gp *GeneratedProof) WriteProofData(w io.Writer) error {
	if _, err := w.Write(gp.ProofData); err != nil {
		return fmt.Errorf("error writing proof data: %w", err)
	}
	return nil
}

// WritePublicData writes the public data as JSON
func (gp *GeneratedProof) WritePublicData(w io.Writer) error {
	if _, err := w.Write(gp.PublicData); err != nil {
		return fmt.Errorf("error writing public data: %w", err)
	}
	return nil
}

// Publish stores the proof data and the public data in s, under
// ProofDataFileName and PublicDataFileName
func (gp *GeneratedProof) Publish(ctx context.Context, s sink.Sink) error {
	if err := s.Store(ctx, ProofDataFileName, gp.ProofData); err != nil {
		return err
	}
	return s.Store(ctx, PublicDataFileName, gp.PublicData)
}

// ZKProof returns the proof and its public signals as a single bundle
func (gp *GeneratedProof) ZKProof() (*types.ZKProof, error) {
	var zk types.ZKProof
	if err := json.Unmarshal(gp.ProofData, &zk.Proof); err != nil {
		return nil, fmt.Errorf("error decoding proof data: %w", err)
	}
	if err := json.Unmarshal(gp.PublicData, &zk.PubSignals); err != nil {
		return nil, fmt.Errorf("error decoding public data: %w", err)
	}
	return &zk, nil
}

// Verify checks the proof against a snarkjs verification key
func (gp *GeneratedProof) Verify(vkey []byte) error {
	vk, err := verifier.ParseVerifyingKey(vkey)
	if err != nil {
		return err
	}
	zk, err := gp.ZKProof()
	if err != nil {
		return err
	}
	proof, public, err := verifier.FromZKProof(zk)
	if err != nil {
		return err
	}
	return verifier.Verify(vk, proof, public)
}

// ExportVkey downloads the verification key of the blueprint identified by
// slug and writes it to filename
func ExportVkey(ctx context.Context, s *sdk.SDK, slug string, filename string) error {
	blueprint, err := s.GetBlueprint(ctx, slug)
	if err != nil {
		return err
	}
	vkey, err := blueprint.GetVkey(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, vkey, 0644); err != nil {
		return fmt.Errorf("error writing verification key: %w", err)
	}
	return nil
}
