package sdk

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ProofStatus is the state of a proof in the remote prover.
type ProofStatus int

const (
	ProofStatusNone ProofStatus = iota
	ProofStatusInProgress
	ProofStatusDone
	ProofStatusFailed
)

func (s ProofStatus) String() string {
	switch s {
	case ProofStatusNone:
		return "none"
	case ProofStatusInProgress:
		return "in progress"
	case ProofStatusDone:
		return "done"
	case ProofStatusFailed:
		return "failed"
	}
	return "unknown(" + strconv.Itoa(int(s)) + ")"
}

// ExternalInput is a named value the circuit takes besides the email.
type ExternalInput struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Prover generates proofs for one blueprint.
type Prover struct {
	blueprint      *Blueprint
	externalInputs []ExternalInput
}

// ProverOption configures a Prover.
type ProverOption func(*Prover)

// WithExternalInputs passes external inputs along with every email.
func WithExternalInputs(inputs ...ExternalInput) ProverOption {
	return func(p *Prover) {
		p.externalInputs = append(p.externalInputs, inputs...)
	}
}

// Blueprint returns the blueprint the prover was created from.
func (p *Prover) Blueprint() *Blueprint {
	return p.blueprint
}

type proofRequest struct {
	BlueprintID    uuid.UUID       `json:"blueprint_id"`
	Input          string          `json:"input"`
	ExternalInputs []ExternalInput `json:"external_inputs,omitempty"`
}

// GenerateProof submits eml to the remote prover and blocks until the proof
// is done, has failed, or ctx ends. Proving usually takes a few minutes.
func (p *Prover) GenerateProof(ctx context.Context, eml []byte) (*Proof, error) {
	if err := ValidateEmail(eml); err != nil {
		return nil, err
	}
	proof, err := p.submit(ctx, eml)
	if err != nil {
		return nil, err
	}
	return p.wait(ctx, proof)
}

func (p *Prover) submit(ctx context.Context, eml []byte) (*Proof, error) {
	req := proofRequest{
		BlueprintID:    p.blueprint.ID,
		Input:          string(eml),
		ExternalInputs: p.externalInputs,
	}
	var proof Proof
	if err := p.blueprint.sdk.do(ctx, http.MethodPost, "/proof", req, &proof); err != nil {
		return nil, errors.Wrap(err, "requesting proof")
	}
	return &proof, nil
}

func (p *Prover) wait(ctx context.Context, proof *Proof) (*Proof, error) {
	s := p.blueprint.sdk
	log := s.logger.With().
		Str("blueprint", p.blueprint.Slug).
		Stringer("proof_id", proof.ID).
		Logger()
	log.Info().Stringer("status", proof.Status).Msg("proof requested")

	start := time.Now()
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		switch proof.Status {
		case ProofStatusDone:
			if err := proof.validate(); err != nil {
				return nil, err
			}
			log.Info().Dur("elapsed", time.Since(start)).Msg("proof generated")
			return proof, nil
		case ProofStatusFailed:
			log.Error().Str("reason", proof.Error).Msg("proof generation failed")
			return nil, &ProofFailedError{ProofID: proof.ID, Reason: proof.Error}
		}

		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(ctx.Err(), "waiting for proof %s", proof.ID)
		case <-ticker.C:
		}

		next, err := s.GetProof(ctx, proof.ID)
		if err != nil {
			return nil, err
		}
		if next.Status != proof.Status {
			log.Info().Stringer("status", next.Status).Msg("proof status changed")
		}
		proof = next
	}
}

// GetProof fetches a proof by id without waiting for it.
func (s *SDK) GetProof(ctx context.Context, id uuid.UUID) (*Proof, error) {
	var proof Proof
	if err := s.do(ctx, http.MethodGet, "/proof/"+id.String(), nil, &proof); err != nil {
		return nil, errors.Wrapf(err, "getting proof %s", id)
	}
	return &proof, nil
}

// Proof is a proof as tracked by the remote prover.
type Proof struct {
	ID            uuid.UUID       `json:"id"`
	BlueprintID   uuid.UUID       `json:"blueprint_id"`
	Status        ProofStatus     `json:"status"`
	ProofData     json.RawMessage `json:"proof,omitempty"`
	PublicData    json.RawMessage `json:"public,omitempty"`
	PublicOutputs json.RawMessage `json:"public_outputs,omitempty"`
	StartedAt     *time.Time      `json:"started_at,omitempty"`
	ProvedAt      *time.Time      `json:"proved_at,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// GetProofData returns the proof and its public signals as opaque JSON.
func (p *Proof) GetProofData() (proofData, publicData json.RawMessage) {
	return p.ProofData, p.PublicData
}

func (p *Proof) validate() error {
	if isEmptyJSON(p.ProofData) || isEmptyJSON(p.PublicData) {
		return errors.Wrapf(ErrIncompleteProof, "proof %s", p.ID)
	}
	return nil
}

func isEmptyJSON(m json.RawMessage) bool {
	return len(m) == 0 || string(m) == "null"
}
