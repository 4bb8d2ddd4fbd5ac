package verifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/iden3/go-rapidsnark/types"
)

var (
	ErrUnsupportedProtocol    = errors.New("unsupported protocol")
	ErrInvalidPoint           = errors.New("invalid curve point")
	ErrPublicSignalCount      = errors.New("wrong number of public signals")
	ErrPublicSignalOutOfRange = errors.New("public signal is not a field element")
	ErrInvalidProof           = errors.New("invalid proof")
)

const (
	protocolGroth16 = "groth16"
	curveBN254      = "bn128"
)

// VerifyingKey is a Groth16 verification key over BN254.
type VerifyingKey struct {
	NPublic int
	Alpha   bn254.G1Affine
	Beta    bn254.G2Affine
	Gamma   bn254.G2Affine
	Delta   bn254.G2Affine
	// IC[0] is the constant term, IC[i] the coefficient of public signal i-1
	IC []bn254.G1Affine
}

// Proof is a Groth16 proof over BN254.
type Proof struct {
	A bn254.G1Affine
	B bn254.G2Affine
	C bn254.G1Affine
}

// PublicSignals are the public inputs of a proof, in circuit order.
type PublicSignals []*big.Int

type vkeyJSON struct {
	Protocol string     `json:"protocol"`
	Curve    string     `json:"curve"`
	NPublic  int        `json:"nPublic"`
	Alpha1   []string   `json:"vk_alpha_1"`
	Beta2    [][]string `json:"vk_beta_2"`
	Gamma2   [][]string `json:"vk_gamma_2"`
	Delta2   [][]string `json:"vk_delta_2"`
	IC       [][]string `json:"IC"`
}

// ParseVerifyingKey parses a snarkjs verification key.
func ParseVerifyingKey(data []byte) (*VerifyingKey, error) {
	var raw vkeyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error decoding verification key: %w", err)
	}
	if raw.Protocol != protocolGroth16 {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProtocol, raw.Protocol)
	}
	if raw.Curve != "" && raw.Curve != curveBN254 {
		return nil, fmt.Errorf("%w: curve %q", ErrUnsupportedProtocol, raw.Curve)
	}
	if len(raw.IC) != raw.NPublic+1 {
		return nil, fmt.Errorf("%w: nPublic is %d but IC has %d points",
			ErrPublicSignalCount, raw.NPublic, len(raw.IC))
	}

	vk := &VerifyingKey{NPublic: raw.NPublic, IC: make([]bn254.G1Affine, len(raw.IC))}
	var err error
	if vk.Alpha, err = parseG1(raw.Alpha1); err != nil {
		return nil, fmt.Errorf("vk_alpha_1: %w", err)
	}
	if vk.Beta, err = parseG2(raw.Beta2); err != nil {
		return nil, fmt.Errorf("vk_beta_2: %w", err)
	}
	if vk.Gamma, err = parseG2(raw.Gamma2); err != nil {
		return nil, fmt.Errorf("vk_gamma_2: %w", err)
	}
	if vk.Delta, err = parseG2(raw.Delta2); err != nil {
		return nil, fmt.Errorf("vk_delta_2: %w", err)
	}
	for i, p := range raw.IC {
		if vk.IC[i], err = parseG1(p); err != nil {
			return nil, fmt.Errorf("IC[%d]: %w", i, err)
		}
	}
	return vk, nil
}

// ParseProof parses a snarkjs proof, as found in proofData.json.
func ParseProof(data []byte) (*Proof, error) {
	var raw types.ProofData
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error decoding proof: %w", err)
	}
	return proofFromData(&raw)
}

// ParsePublicSignals parses a snarkjs public signals array, as found in
// publicData.json.
func ParsePublicSignals(data []byte) (PublicSignals, error) {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error decoding public signals: %w", err)
	}
	return publicFromStrings(raw)
}

// FromZKProof converts a combined proof and public signals bundle.
func FromZKProof(zk *types.ZKProof) (*Proof, PublicSignals, error) {
	if zk.Proof == nil {
		return nil, nil, fmt.Errorf("%w: missing proof", ErrInvalidProof)
	}
	proof, err := proofFromData(zk.Proof)
	if err != nil {
		return nil, nil, err
	}
	public, err := publicFromStrings(zk.PubSignals)
	if err != nil {
		return nil, nil, err
	}
	return proof, public, nil
}

func proofFromData(raw *types.ProofData) (*Proof, error) {
	if raw.Protocol != "" && raw.Protocol != protocolGroth16 {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProtocol, raw.Protocol)
	}
	var proof Proof
	var err error
	if proof.A, err = parseG1(raw.A); err != nil {
		return nil, fmt.Errorf("pi_a: %w", err)
	}
	if proof.B, err = parseG2(raw.B); err != nil {
		return nil, fmt.Errorf("pi_b: %w", err)
	}
	if proof.C, err = parseG1(raw.C); err != nil {
		return nil, fmt.Errorf("pi_c: %w", err)
	}
	return &proof, nil
}

func publicFromStrings(raw []string) (PublicSignals, error) {
	public := make(PublicSignals, len(raw))
	for i, s := range raw {
		v, err := parseInt(s)
		if err != nil {
			return nil, fmt.Errorf("public signal %d: %w", i, err)
		}
		public[i] = v
	}
	return public, nil
}

// Strings returns the signals as decimal strings, the snarkjs encoding.
func (ps PublicSignals) Strings() []string {
	out := make([]string, len(ps))
	for i, v := range ps {
		out[i] = v.String()
	}
	return out
}

func parseInt(s string) (*big.Int, error) {
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	v, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, fmt.Errorf("not an integer: %q", s)
	}
	return v, nil
}

func parseFp(s string) (fp.Element, error) {
	var e fp.Element
	v, err := parseInt(s)
	if err != nil {
		return e, err
	}
	return fpFromBig(v)
}

func fpFromBig(v *big.Int) (fp.Element, error) {
	var e fp.Element
	if v.Sign() < 0 || v.Cmp(fp.Modulus()) >= 0 {
		return e, fmt.Errorf("%w: coordinate %s is not reduced", ErrInvalidPoint, v)
	}
	e.SetBigInt(v)
	return e, nil
}

// parseG1 parses [x, y] or projective [x, y, z] with z = 1.
func parseG1(coords []string) (bn254.G1Affine, error) {
	var p bn254.G1Affine
	switch len(coords) {
	case 2:
	case 3:
		if coords[2] != "1" {
			return p, fmt.Errorf("%w: z is %q, expected 1", ErrInvalidPoint, coords[2])
		}
	default:
		return p, fmt.Errorf("%w: %d coordinates", ErrInvalidPoint, len(coords))
	}
	var err error
	if p.X, err = parseFp(coords[0]); err != nil {
		return p, err
	}
	if p.Y, err = parseFp(coords[1]); err != nil {
		return p, err
	}
	return p, checkG1(&p)
}

// parseG2 parses [[x0, x1], [y0, y1]] or [[x0, x1], [y0, y1], [1, 0]] where
// x = x0 + x1*u.
func parseG2(coords [][]string) (bn254.G2Affine, error) {
	var p bn254.G2Affine
	switch len(coords) {
	case 2:
	case 3:
		if len(coords[2]) != 2 || coords[2][0] != "1" || coords[2][1] != "0" {
			return p, fmt.Errorf("%w: z is %v, expected [1 0]", ErrInvalidPoint, coords[2])
		}
	default:
		return p, fmt.Errorf("%w: %d coordinates", ErrInvalidPoint, len(coords))
	}
	if len(coords[0]) != 2 || len(coords[1]) != 2 {
		return p, fmt.Errorf("%w: G2 coordinates must have 2 components", ErrInvalidPoint)
	}
	var err error
	if p.X.A0, err = parseFp(coords[0][0]); err != nil {
		return p, err
	}
	if p.X.A1, err = parseFp(coords[0][1]); err != nil {
		return p, err
	}
	if p.Y.A0, err = parseFp(coords[1][0]); err != nil {
		return p, err
	}
	if p.Y.A1, err = parseFp(coords[1][1]); err != nil {
		return p, err
	}
	return p, checkG2(&p)
}

func checkG1(p *bn254.G1Affine) error {
	if !p.IsOnCurve() || !p.IsInSubGroup() {
		return fmt.Errorf("%w: G1 point not on curve", ErrInvalidPoint)
	}
	return nil
}

func checkG2(p *bn254.G2Affine) error {
	if !p.IsOnCurve() || !p.IsInSubGroup() {
		return fmt.Errorf("%w: G2 point not in subgroup", ErrInvalidPoint)
	}
	return nil
}
