package verifier

import (
	"errors"
	"io"
	"math/big"
	"text/template"

	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
)

// DefaultContractName is the name given to generated verifier contracts.
const DefaultContractName = "Groth16Verifier"

// WriteSolidity generates the Solidity code for a verifier contract based on
// the provided verifying key and writes it to w. An empty name selects
// DefaultContractName.
func WriteSolidity(vk *VerifyingKey, name string, w io.Writer) error {
	if vk.NPublic == 0 {
		return errors.New("circuits without public signals are not supported")
	}
	if name == "" {
		name = DefaultContractName
	}

	funcMap := template.FuncMap{
		"dec": func(i int) int {
			return i - 1
		},
		"fpstr": func(x fp.Element) string {
			bv := new(big.Int)
			x.BigInt(bv)
			return bv.String()
		},
		"contractName": func() string {
			return name
		},
	}

	t, err := template.New("t").Funcs(funcMap).Parse(tmplSolidityVerifierBn254)
	if err != nil {
		return err
	}
	return t.Execute(w, vk)
}
