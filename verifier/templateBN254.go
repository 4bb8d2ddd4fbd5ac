package verifier

const tmplSolidityVerifierBn254 = `// SPDX-License-Identifier: GPL-3.0
// Code automatically generated - DO NOT EDIT.
pragma solidity >=0.8.4 <0.9.0;

contract {{ contractName }} {
    // Scalar field size
    uint256 constant r = 21888242871839275222246405745257275088548364400416034343698204186575808495617;
    // Base field size
    uint256 constant q = 21888242871839275222246405745257275088696311157297823662689037894645226208583;

    // Verification key
    uint256 constant alphax = {{ fpstr .Alpha.X }};
    uint256 constant alphay = {{ fpstr .Alpha.Y }};
    uint256 constant betax1 = {{ fpstr .Beta.X.A1 }};
    uint256 constant betax2 = {{ fpstr .Beta.X.A0 }};
    uint256 constant betay1 = {{ fpstr .Beta.Y.A1 }};
    uint256 constant betay2 = {{ fpstr .Beta.Y.A0 }};
    uint256 constant gammax1 = {{ fpstr .Gamma.X.A1 }};
    uint256 constant gammax2 = {{ fpstr .Gamma.X.A0 }};
    uint256 constant gammay1 = {{ fpstr .Gamma.Y.A1 }};
    uint256 constant gammay2 = {{ fpstr .Gamma.Y.A0 }};
    uint256 constant deltax1 = {{ fpstr .Delta.X.A1 }};
    uint256 constant deltax2 = {{ fpstr .Delta.X.A0 }};
    uint256 constant deltay1 = {{ fpstr .Delta.Y.A1 }};
    uint256 constant deltay2 = {{ fpstr .Delta.Y.A0 }};
{{ range $index, $element := .IC }}
    uint256 constant IC{{ $index }}x = {{ fpstr $element.X }};
    uint256 constant IC{{ $index }}y = {{ fpstr $element.Y }};
{{ end }}
    function verifyProof(
        uint256[2] calldata _pA,
        uint256[2][2] calldata _pB,
        uint256[2] calldata _pC,
        uint256[{{ .NPublic }}] calldata _pubSignals
    ) public view returns (bool) {
        for (uint256 i = 0; i < {{ .NPublic }}; i++) {
            if (_pubSignals[i] >= r) {
                return false;
            }
        }

        uint256[2] memory vkX = [IC0x, IC0y];
{{- range $index, $element := .IC }}{{ if gt $index 0 }}
        vkX = ecAdd(vkX, ecMul([IC{{ $index }}x, IC{{ $index }}y], _pubSignals[{{ dec $index }}]));
{{- end }}{{ end }}

        uint256[24] memory input = [
            _pA[0], (q - (_pA[1] % q)) % q,
            _pB[0][0], _pB[0][1], _pB[1][0], _pB[1][1],
            alphax, alphay,
            betax1, betax2, betay1, betay2,
            vkX[0], vkX[1],
            gammax1, gammax2, gammay1, gammay2,
            _pC[0], _pC[1],
            deltax1, deltax2, deltay1, deltay2
        ];
        uint256[1] memory out;
        bool success;
        assembly {
            success := staticcall(sub(gas(), 2000), 8, input, 768, out, 0x20)
        }
        return success && out[0] == 1;
    }

    function ecAdd(uint256[2] memory p1, uint256[2] memory p2) internal view returns (uint256[2] memory res) {
        uint256[4] memory input = [p1[0], p1[1], p2[0], p2[1]];
        bool success;
        assembly {
            success := staticcall(sub(gas(), 2000), 6, input, 128, res, 64)
        }
        require(success, "ecAdd failed");
    }

    function ecMul(uint256[2] memory p, uint256 s) internal view returns (uint256[2] memory res) {
        uint256[3] memory input = [p[0], p[1], s];
        bool success;
        assembly {
            success := staticcall(sub(gas(), 2000), 7, input, 96, res, 64)
        }
        require(success, "ecMul failed");
    }
}
`
