/*
package verifier checks zk-email proofs off-chain and prepares them for
on-chain verification.

Blueprint circuits are Groth16 circuits over BN254 whose artifacts are
exchanged in the snarkjs JSON format:

  - the verification key (vkey.json), as returned by the registry,
  - the proof (proofData.json), with the pi_a, pi_b and pi_c points,
  - the public signals (publicData.json), a list of decimal field elements.

Verify runs the Groth16 pairing check on these artifacts.

For EVM verifiers the package encodes a proof as the ABI tuple

	struct Proof {
		uint256[2] pA;
		uint256[2][2] pB;
		uint256[2] pC;
	}

where G2 coordinates are in the (imaginary, real) order expected by the
pairing precompile, and WriteSolidity renders a verifier contract with the
method

	function verifyProof(
		uint256[2] calldata _pA,
		uint256[2][2] calldata _pB,
		uint256[2] calldata _pC,
		uint256[N] calldata _pubSignals
	) public view returns (bool)

ProveAndClaimCommand is the ABI struct carrying such a proof to the ENS
claim contract. DecodeProveAndClaimCommand decodes it and Validate checks the
proof it carries is well formed.
*/
package verifier
