package transaction

import (
	"github.com/Layr-Labs/remote-signer-go/pkg/types"
)

// MemoProgramID is the address of the SPL memo program.
const MemoProgramID = "MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr"

// NewMemoTransaction builds a single-signer transaction carrying one memo instruction signed by signer.
func NewMemoTransaction(signer types.PublicKey, memo []byte, recentBlockhash [32]byte) (*Transaction, error) {
	memoProgram, err := types.PublicKeyFromBase58(MemoProgramID)
	if err != nil {
		return nil, err
	}

	return NewTransaction(Message{
		Header: MessageHeader{
			NumRequiredSignatures:       1,
			NumReadonlyUnsignedAccounts: 1,
		},
		AccountKeys:     []types.PublicKey{signer, memoProgram},
		RecentBlockhash: recentBlockhash,
		Instructions: []CompiledInstruction{
			{
				ProgramIDIndex: 1,
				Accounts:       []uint8{0},
				Data:           memo,
			},
		},
	})
}
