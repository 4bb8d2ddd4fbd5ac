package verifier

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
)

// SolidityProofSize is the size of an ABI encoded proof: 8 words.
const SolidityProofSize = 8 * fp.Bytes

// words returns the proof coordinates in EVM order: pA, pB with each G2
// coordinate as (imaginary, real), pC.
func (p *Proof) words() [8]fp.Element {
	return [8]fp.Element{
		p.A.X, p.A.Y,
		p.B.X.A1, p.B.X.A0,
		p.B.Y.A1, p.B.Y.A0,
		p.C.X, p.C.Y,
	}
}

// EncodeSolidityProof ABI encodes the proof as the static tuple
// (uint256[2] pA, uint256[2][2] pB, uint256[2] pC).
func EncodeSolidityProof(proof *Proof) []byte {
	res := make([]byte, 0, SolidityProofSize)
	for _, w := range proof.words() {
		b := w.Bytes()
		res = append(res, b[:]...)
	}
	return res
}

// DecodeSolidityProof is the inverse of EncodeSolidityProof. The decoded
// points are checked to be on the curve.
func DecodeSolidityProof(data []byte) (*Proof, error) {
	if len(data) != SolidityProofSize {
		return nil, fmt.Errorf("%w: encoded proof is %d bytes, expected %d",
			ErrInvalidProof, len(data), SolidityProofSize)
	}
	var w [8]fp.Element
	for i := range w {
		v := new(big.Int).SetBytes(data[i*fp.Bytes : (i+1)*fp.Bytes])
		e, err := fpFromBig(v)
		if err != nil {
			return nil, fmt.Errorf("word %d: %w", i, err)
		}
		w[i] = e
	}

	proof := &Proof{
		A: bn254.G1Affine{X: w[0], Y: w[1]},
		C: bn254.G1Affine{X: w[6], Y: w[7]},
	}
	proof.B.X.A1, proof.B.X.A0 = w[2], w[3]
	proof.B.Y.A1, proof.B.Y.A0 = w[4], w[5]

	if err := checkG1(&proof.A); err != nil {
		return nil, fmt.Errorf("pA: %w", err)
	}
	if err := checkG2(&proof.B); err != nil {
		return nil, fmt.Errorf("pB: %w", err)
	}
	if err := checkG1(&proof.C); err != nil {
		return nil, fmt.Errorf("pC: %w", err)
	}
	return proof, nil
}

// SolidityCalldata formats the arguments of verifyProof the way snarkjs
// does, ready to paste into a contract call.
func SolidityCalldata(proof *Proof, public PublicSignals) string {
	w := proof.words()
	h := make([]string, len(w))
	for i := range w {
		h[i] = hex256(w[i].BigInt(new(big.Int)))
	}
	pub := make([]string, len(public))
	for i, s := range public {
		pub[i] = hex256(s)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s,%s],", h[0], h[1])
	fmt.Fprintf(&sb, "[[%s,%s],[%s,%s]],", h[2], h[3], h[4], h[5])
	fmt.Fprintf(&sb, "[%s,%s],", h[6], h[7])
	fmt.Fprintf(&sb, "[%s]", strings.Join(pub, ","))
	return sb.String()
}

func hex256(v *big.Int) string {
	return fmt.Sprintf("\"0x%064x\"", v)
}
