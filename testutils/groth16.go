// package testutils contains test helpers: a fake zk-email registry and
// Groth16 artifacts generated with gnark in the snarkjs format.
package testutils

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark/backend/groth16"
	groth16_bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
)

// SquareCircuit proves knowledge of a secret X such that X*X == Y and
// X + Y == Z, with Y and Z public.
type SquareCircuit struct {
	X frontend.Variable
	Y frontend.Variable `gnark:",public"`
	Z frontend.Variable `gnark:",public"`
}

func (circuit *SquareCircuit) Define(api frontend.API) error {
	api.AssertIsEqual(api.Mul(circuit.X, circuit.X), circuit.Y)
	api.AssertIsEqual(api.Add(circuit.X, circuit.Y), circuit.Z)
	return nil
}

// Groth16Fixture holds snarkjs JSON artifacts of a valid proof.
type Groth16Fixture struct {
	Vkey       []byte
	ProofData  []byte
	PublicData []byte
}

type snarkjsVkey struct {
	Protocol string     `json:"protocol"`
	Curve    string     `json:"curve"`
	NPublic  int        `json:"nPublic"`
	Alpha1   []string   `json:"vk_alpha_1"`
	Beta2    [][]string `json:"vk_beta_2"`
	Gamma2   [][]string `json:"vk_gamma_2"`
	Delta2   [][]string `json:"vk_delta_2"`
	IC       [][]string `json:"IC"`
}

type snarkjsProof struct {
	A        []string   `json:"pi_a"`
	B        [][]string `json:"pi_b"`
	C        []string   `json:"pi_c"`
	Protocol string     `json:"protocol"`
	Curve    string     `json:"curve"`
}

// NewGroth16Fixture compiles SquareCircuit, runs a test only setup and proves
// it for the secret x.
func NewGroth16Fixture(x int64) (*Groth16Fixture, error) {
	var circuit SquareCircuit
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
	if err != nil {
		return nil, fmt.Errorf("error compiling circuit: %v", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("error setting up Groth16: %v", err)
	}

	y := x * x
	assignment := SquareCircuit{X: x, Y: y, Z: x + y}
	witness, err := frontend.NewWitness(&assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("error creating witness: %v", err)
	}
	proof, err := groth16.Prove(ccs, pk, witness)
	if err != nil {
		return nil, fmt.Errorf("error creating Groth16 proof: %v", err)
	}

	bnProof, ok := proof.(*groth16_bn254.Proof)
	if !ok {
		return nil, fmt.Errorf("unexpected proof type %T", proof)
	}
	bnVk, ok := vk.(*groth16_bn254.VerifyingKey)
	if !ok {
		return nil, fmt.Errorf("unexpected verifying key type %T", vk)
	}

	fixture := &Groth16Fixture{}
	if fixture.Vkey, err = json.Marshal(vkeyToSnarkjs(bnVk)); err != nil {
		return nil, err
	}
	if fixture.ProofData, err = json.Marshal(proofToSnarkjs(bnProof)); err != nil {
		return nil, err
	}
	public := []string{big.NewInt(y).String(), big.NewInt(x + y).String()}
	if fixture.PublicData, err = json.Marshal(public); err != nil {
		return nil, err
	}
	return fixture, nil
}

func vkeyToSnarkjs(vk *groth16_bn254.VerifyingKey) snarkjsVkey {
	ic := make([][]string, len(vk.G1.K))
	for i := range vk.G1.K {
		ic[i] = g1ToSnarkjs(&vk.G1.K[i])
	}
	return snarkjsVkey{
		Protocol: "groth16",
		Curve:    "bn128",
		NPublic:  len(vk.G1.K) - 1,
		Alpha1:   g1ToSnarkjs(&vk.G1.Alpha),
		Beta2:    g2ToSnarkjs(&vk.G2.Beta),
		Gamma2:   g2ToSnarkjs(&vk.G2.Gamma),
		Delta2:   g2ToSnarkjs(&vk.G2.Delta),
		IC:       ic,
	}
}

func proofToSnarkjs(proof *groth16_bn254.Proof) snarkjsProof {
	return snarkjsProof{
		A:        g1ToSnarkjs(&proof.Ar),
		B:        g2ToSnarkjs(&proof.Bs),
		C:        g1ToSnarkjs(&proof.Krs),
		Protocol: "groth16",
		Curve:    "bn128",
	}
}

func fpString(e *fp.Element) string {
	return e.BigInt(new(big.Int)).String()
}

func g1ToSnarkjs(p *bn254.G1Affine) []string {
	return []string{fpString(&p.X), fpString(&p.Y), "1"}
}

func g2ToSnarkjs(p *bn254.G2Affine) [][]string {
	return [][]string{
		{fpString(&p.X.A0), fpString(&p.X.A1)},
		{fpString(&p.Y.A0), fpString(&p.Y.A1)},
		{"1", "0"},
	}
}
