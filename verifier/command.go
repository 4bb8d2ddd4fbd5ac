package verifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var ErrInvalidCommand = errors.New("invalid prove and claim command")

// ProveAndClaimCommand is the command submitted on-chain to claim an ENS
// name with a zk-email proof. Proof holds the ABI encoded Proof tuple.
//
// EmailParts is the email split at its dots, with the @ written as $:
// "bob$example", "com" for bob@example.com.
type ProveAndClaimCommand struct {
	Domain            string
	Email             string
	Resolver          string
	EmailParts        []string
	Owner             common.Address
	DkimSignerHash    [32]byte
	Nullifier         [32]byte
	Timestamp         *big.Int
	AccountSalt       [32]byte
	IsCodeEmbedded    bool
	MiscellaneousData []byte
	Proof             []byte
}

var proveAndClaimArgs = func() abi.Arguments {
	t, err := abi.NewType("tuple", "ProveAndClaimCommand", []abi.ArgumentMarshaling{
		{Name: "domain", Type: "string"},
		{Name: "email", Type: "string"},
		{Name: "resolver", Type: "string"},
		{Name: "emailParts", Type: "string[]"},
		{Name: "owner", Type: "address"},
		{Name: "dkimSignerHash", Type: "bytes32"},
		{Name: "nullifier", Type: "bytes32"},
		{Name: "timestamp", Type: "uint256"},
		{Name: "accountSalt", Type: "bytes32"},
		{Name: "isCodeEmbedded", Type: "bool"},
		{Name: "miscellaneousData", Type: "bytes"},
		{Name: "proof", Type: "bytes"},
	})
	if err != nil {
		panic(err)
	}
	return abi.Arguments{{Name: "command", Type: t}}
}()

// EncodeProveAndClaimCommand ABI encodes cmd like abi.encode(cmd) in Solidity.
func EncodeProveAndClaimCommand(cmd *ProveAndClaimCommand) ([]byte, error) {
	c := *cmd
	if c.Timestamp == nil {
		c.Timestamp = new(big.Int)
	}
	data, err := proveAndClaimArgs.Pack(c)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	return data, nil
}

// DecodeProveAndClaimCommand is the inverse of EncodeProveAndClaimCommand.
func DecodeProveAndClaimCommand(data []byte) (*ProveAndClaimCommand, error) {
	values, err := proveAndClaimArgs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	var out struct{ Command ProveAndClaimCommand }
	if err := proveAndClaimArgs.Copy(&out, values); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	return &out.Command, nil
}

// DecodeProveAndClaimCommandHex decodes a hex encoded command, with or
// without the 0x prefix.
func DecodeProveAndClaimCommandHex(s string) (*ProveAndClaimCommand, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	data, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	return DecodeProveAndClaimCommand(data)
}

// DecodeProof decodes the Proof tuple carried by the command.
func (c *ProveAndClaimCommand) DecodeProof() (*Proof, error) {
	return DecodeSolidityProof(c.Proof)
}

// EmailPartsMatch reports whether EmailParts spell Email.
func (c *ProveAndClaimCommand) EmailPartsMatch() bool {
	if len(c.EmailParts) == 0 || strings.Count(c.Email, "@") != 1 {
		return false
	}
	return strings.Join(c.EmailParts, ".") == strings.Replace(c.Email, "@", "$", 1)
}

// Validate checks that the command carries a well formed proof, with every
// coordinate reduced and on the curve, and email parts matching the email.
// It does not run the pairing check, see Verify.
func (c *ProveAndClaimCommand) Validate() (*Proof, error) {
	proof, err := c.DecodeProof()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	if !c.EmailPartsMatch() {
		return nil, fmt.Errorf("%w: email parts %q do not match %s",
			ErrInvalidCommand, c.EmailParts, c.Email)
	}
	return proof, nil
}

// MarshalJSON renders hashes and byte fields as 0x prefixed hex and the
// timestamp in decimal.
func (c ProveAndClaimCommand) MarshalJSON() ([]byte, error) {
	timestamp := "0"
	if c.Timestamp != nil {
		timestamp = c.Timestamp.String()
	}
	return json.Marshal(struct {
		Domain            string         `json:"domain"`
		Email             string         `json:"email"`
		Resolver          string         `json:"resolver"`
		EmailParts        []string       `json:"emailParts"`
		Owner             common.Address `json:"owner"`
		DkimSignerHash    common.Hash    `json:"dkimSignerHash"`
		Nullifier         common.Hash    `json:"nullifier"`
		Timestamp         string         `json:"timestamp"`
		AccountSalt       common.Hash    `json:"accountSalt"`
		IsCodeEmbedded    bool           `json:"isCodeEmbedded"`
		MiscellaneousData hexutil.Bytes  `json:"miscellaneousData"`
		Proof             hexutil.Bytes  `json:"proof"`
	}{
		Domain:            c.Domain,
		Email:             c.Email,
		Resolver:          c.Resolver,
		EmailParts:        c.EmailParts,
		Owner:             c.Owner,
		DkimSignerHash:    c.DkimSignerHash,
		Nullifier:         c.Nullifier,
		Timestamp:         timestamp,
		AccountSalt:       c.AccountSalt,
		IsCodeEmbedded:    c.IsCodeEmbedded,
		MiscellaneousData: c.MiscellaneousData,
		Proof:             c.Proof,
	})
}
