package transaction

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/Layr-Labs/remote-signer-go/pkg/remoteSigner"
	"github.com/Layr-Labs/remote-signer-go/pkg/types"
)

// MessageHeader describes how many of the account keys are signers and which are read-only.
type MessageHeader struct {
	NumRequiredSignatures       uint8
	NumReadonlySignedAccounts   uint8
	NumReadonlyUnsignedAccounts uint8
}

// CompiledInstruction references accounts by index into Message.AccountKeys.
type CompiledInstruction struct {
	ProgramIDIndex uint8
	Accounts       []uint8
	Data           []byte
}

// Message is the signed portion of a transaction.
// The first NumRequiredSignatures account keys are the signers, in signature-slot order.
type Message struct {
	Header          MessageHeader
	AccountKeys     []types.PublicKey
	RecentBlockhash [32]byte
	Instructions    []CompiledInstruction
}

// Transaction is a legacy compact-wire-format transaction: signatures followed by the message.
type Transaction struct {
	Signatures []types.Signature
	Message    Message
}

var _ remoteSigner.Transaction = (*Transaction)(nil)

// NewTransaction returns a transaction with one empty signature slot per required signer.
func NewTransaction(msg Message) (*Transaction, error) {
	if err := msg.validate(); err != nil {
		return nil, err
	}
	return &Transaction{
		Signatures: make([]types.Signature, msg.Header.NumRequiredSignatures),
		Message:    msg,
	}, nil
}

func (m *Message) validate() error {
	if int(m.Header.NumRequiredSignatures) > len(m.AccountKeys) {
		return fmt.Errorf("message requires %d signatures but has only %d account keys",
			m.Header.NumRequiredSignatures, len(m.AccountKeys))
	}
	for i, ix := range m.Instructions {
		if int(ix.ProgramIDIndex) >= len(m.AccountKeys) {
			return fmt.Errorf("instruction %d program index %d out of range", i, ix.ProgramIDIndex)
		}
		for _, idx := range ix.Accounts {
			if int(idx) >= len(m.AccountKeys) {
				return fmt.Errorf("instruction %d account index %d out of range", i, idx)
			}
		}
	}
	return nil
}

// MarshalBinary encodes the message in its wire form.
func (m *Message) MarshalBinary() ([]byte, error) {
	buf := []byte{
		m.Header.NumRequiredSignatures,
		m.Header.NumReadonlySignedAccounts,
		m.Header.NumReadonlyUnsignedAccounts,
	}

	var err error
	if buf, err = appendShortVecLen(buf, len(m.AccountKeys)); err != nil {
		return nil, err
	}
	for _, key := range m.AccountKeys {
		buf = append(buf, key[:]...)
	}
	buf = append(buf, m.RecentBlockhash[:]...)

	if buf, err = appendShortVecLen(buf, len(m.Instructions)); err != nil {
		return nil, err
	}
	for _, ix := range m.Instructions {
		buf = append(buf, ix.ProgramIDIndex)
		if buf, err = appendShortVecLen(buf, len(ix.Accounts)); err != nil {
			return nil, err
		}
		buf = append(buf, ix.Accounts...)
		if buf, err = appendShortVecLen(buf, len(ix.Data)); err != nil {
			return nil, err
		}
		buf = append(buf, ix.Data...)
	}
	return buf, nil
}

// MessageData returns the bytes each signer signs.
func (tx *Transaction) MessageData() ([]byte, error) {
	return tx.Message.MarshalBinary()
}

// AddSignature writes sig into pubkey's slot. Re-signing overwrites the slot instead of adding one.
func (tx *Transaction) AddSignature(pubkey types.PublicKey, sig types.Signature) error {
	numSigners := int(tx.Message.Header.NumRequiredSignatures)
	if len(tx.Signatures) != numSigners {
		return fmt.Errorf("transaction has %d signature slots, message requires %d", len(tx.Signatures), numSigners)
	}
	for i := 0; i < numSigners; i++ {
		if tx.Message.AccountKeys[i] == pubkey {
			tx.Signatures[i] = sig
			return nil
		}
	}
	return fmt.Errorf("%s is not a required signer of this transaction", pubkey)
}

// Serialize returns the signature slots followed by the message.
func (tx *Transaction) Serialize() ([]byte, error) {
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, err
	}

	buf, err := appendShortVecLen(make([]byte, 0, 1+len(tx.Signatures)*types.SignatureLength+len(msg)), len(tx.Signatures))
	if err != nil {
		return nil, err
	}
	for _, sig := range tx.Signatures {
		buf = append(buf, sig[:]...)
	}
	return append(buf, msg...), nil
}

// IsFullySigned reports whether every signature slot is filled.
func (tx *Transaction) IsFullySigned() bool {
	for _, sig := range tx.Signatures {
		if sig.IsZero() {
			return false
		}
	}
	return len(tx.Signatures) == int(tx.Message.Header.NumRequiredSignatures)
}

// Deserialize parses the wire form produced by Serialize.
func Deserialize(data []byte) (*Transaction, error) {
	r := bytes.NewReader(data)

	numSigs, err := readShortVecLen(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read signature count: %w", err)
	}
	tx := &Transaction{Signatures: make([]types.Signature, numSigs)}
	for i := range tx.Signatures {
		raw, err := readBytes(r, types.SignatureLength)
		if err != nil {
			return nil, fmt.Errorf("failed to read signature %d: %w", i, err)
		}
		copy(tx.Signatures[i][:], raw)
	}

	header, err := readBytes(r, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to read message header: %w", err)
	}
	tx.Message.Header = MessageHeader{
		NumRequiredSignatures:       header[0],
		NumReadonlySignedAccounts:   header[1],
		NumReadonlyUnsignedAccounts: header[2],
	}

	numKeys, err := readShortVecLen(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read account key count: %w", err)
	}
	tx.Message.AccountKeys = make([]types.PublicKey, numKeys)
	for i := range tx.Message.AccountKeys {
		raw, err := readBytes(r, types.PublicKeyLength)
		if err != nil {
			return nil, fmt.Errorf("failed to read account key %d: %w", i, err)
		}
		copy(tx.Message.AccountKeys[i][:], raw)
	}

	blockhash, err := readBytes(r, 32)
	if err != nil {
		return nil, fmt.Errorf("failed to read recent blockhash: %w", err)
	}
	copy(tx.Message.RecentBlockhash[:], blockhash)

	numIxs, err := readShortVecLen(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read instruction count: %w", err)
	}
	tx.Message.Instructions = make([]CompiledInstruction, numIxs)
	for i := range tx.Message.Instructions {
		programIdx, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("failed to read instruction %d program index: %w", i, err)
		}
		numAccounts, err := readShortVecLen(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read instruction %d account count: %w", i, err)
		}
		accounts, err := readBytes(r, numAccounts)
		if err != nil {
			return nil, fmt.Errorf("failed to read instruction %d accounts: %w", i, err)
		}
		dataLen, err := readShortVecLen(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read instruction %d data length: %w", i, err)
		}
		data, err := readBytes(r, dataLen)
		if err != nil {
			return nil, fmt.Errorf("failed to read instruction %d data: %w", i, err)
		}
		tx.Message.Instructions[i] = CompiledInstruction{
			ProgramIDIndex: programIdx,
			Accounts:       accounts,
			Data:           data,
		}
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after transaction", r.Len())
	}
	if numSigs != int(tx.Message.Header.NumRequiredSignatures) {
		return nil, fmt.Errorf("transaction has %d signatures, message requires %d", numSigs, tx.Message.Header.NumRequiredSignatures)
	}
	if err := tx.Message.validate(); err != nil {
		return nil, err
	}
	return tx, nil
}

// DeserializeBase64 parses a standard base-64 encoded transaction.
func DeserializeBase64(s string) (*Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 transaction: %w", err)
	}
	return Deserialize(raw)
}
