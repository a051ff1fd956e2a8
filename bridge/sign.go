package bridge

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignMessage asks the wallet for a personal_sign signature over message.
func SignMessage(ctx context.Context, h Handle, account common.Address, message string) (hexutil.Bytes, error) {
	raw, err := h.Send(ctx, "personal_sign", hexutil.Encode([]byte(message)), account)
	if err != nil {
		return nil, err
	}
	var sig hexutil.Bytes
	if err := json.Unmarshal(raw, &sig); err != nil {
		return nil, errors.Wrap(err, "decode signature")
	}
	return sig, nil
}

// VerifySignature reports whether sig is account's personal_sign signature
// over message.
func VerifySignature(account common.Address, message string, sig []byte) bool {
	if len(sig) != crypto.SignatureLength {
		return false
	}
	rsv := make([]byte, len(sig))
	copy(rsv, sig)
	if rsv[crypto.RecoveryIDOffset] >= 27 {
		rsv[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), rsv)
	if err != nil {
		return false
	}
	return crypto.PubkeyToAddress(*pub) == account
}
