package verifier

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Verify checks a Groth16 proof against a verification key and its public
// signals. It returns nil if the proof is valid.
func Verify(vk *VerifyingKey, proof *Proof, public PublicSignals) error {
	if len(public) != vk.NPublic || len(vk.IC) != len(public)+1 {
		return fmt.Errorf("%w: got %d, verification key expects %d",
			ErrPublicSignalCount, len(public), vk.NPublic)
	}
	if err := CheckPublicSignals(public); err != nil {
		return err
	}

	// vk_x = IC[0] + sum(public[i] * IC[i+1])
	var acc bn254.G1Jac
	acc.FromAffine(&vk.IC[0])
	for i, s := range public {
		if s.Sign() == 0 {
			continue
		}
		var term bn254.G1Affine
		term.ScalarMultiplication(&vk.IC[i+1], s)
		acc.AddMixed(&term)
	}
	var vkX bn254.G1Affine
	vkX.FromJacobian(&acc)

	var negA bn254.G1Affine
	negA.Neg(&proof.A)

	// e(-A, B) * e(alpha, beta) * e(vk_x, gamma) * e(C, delta) == 1
	ok, err := bn254.PairingCheck(
		[]bn254.G1Affine{negA, vk.Alpha, vkX, proof.C},
		[]bn254.G2Affine{proof.B, vk.Beta, vk.Gamma, vk.Delta},
	)
	if err != nil {
		return fmt.Errorf("error computing pairing: %w", err)
	}
	if !ok {
		return ErrInvalidProof
	}
	return nil
}

// VerifyJSON parses snarkjs artifacts and verifies them.
func VerifyJSON(vkeyData, proofData, publicData []byte) error {
	vk, err := ParseVerifyingKey(vkeyData)
	if err != nil {
		return err
	}
	proof, err := ParseProof(proofData)
	if err != nil {
		return err
	}
	public, err := ParsePublicSignals(publicData)
	if err != nil {
		return err
	}
	return Verify(vk, proof, public)
}

// CheckPublicSignals checks that every signal is a canonical element of the
// BN254 scalar field.
func CheckPublicSignals(public PublicSignals) error {
	r := fr.Modulus()
	for i, s := range public {
		if s.Sign() < 0 || s.Cmp(r) >= 0 {
			return fmt.Errorf("%w: signal %d", ErrPublicSignalOutOfRange, i)
		}
	}
	return nil
}
