package fireblocks

// TransactionStatus is the status of a Fireblocks signing job.
type TransactionStatus string

const (
	Status_Submitted                     TransactionStatus = "SUBMITTED"
	Status_PendingAMLScreening           TransactionStatus = "PENDING_AML_SCREENING"
	Status_PendingAuthorization          TransactionStatus = "PENDING_AUTHORIZATION"
	Status_Queued                        TransactionStatus = "QUEUED"
	Status_PendingSignature              TransactionStatus = "PENDING_SIGNATURE"
	Status_Pending3rdPartyManualApproval TransactionStatus = "PENDING_3RD_PARTY_MANUAL_APPROVAL"
	Status_Pending3rdParty               TransactionStatus = "PENDING_3RD_PARTY"
	Status_Broadcasting                  TransactionStatus = "BROADCASTING"
	Status_Confirming                    TransactionStatus = "CONFIRMING"

	Status_Completed TransactionStatus = "COMPLETED"

	Status_Failed    TransactionStatus = "FAILED"
	Status_Cancelled TransactionStatus = "CANCELLED"
	Status_Rejected  TransactionStatus = "REJECTED"
	Status_Blocked   TransactionStatus = "BLOCKED"
)

// IsTerminalFailure reports whether the job ended without a signature and will never produce one.
func (s TransactionStatus) IsTerminalFailure() bool {
	switch s {
	case Status_Failed, Status_Cancelled, Status_Rejected, Status_Blocked:
		return true
	}
	return false
}

func (s TransactionStatus) IsCompleted() bool {
	return s == Status_Completed
}

// Operation is the Fireblocks transaction operation type.
type Operation string

const (
	// Operation_Raw signs arbitrary bytes; the caller broadcasts.
	Operation_Raw Operation = "RAW"
	// Operation_ProgramCall signs and broadcasts a serialized transaction.
	Operation_ProgramCall Operation = "PROGRAM_CALL"
)

const PeerType_VaultAccount = "VAULT_ACCOUNT"

type TransactionSource struct {
	Type string `json:"type"`
	Id   string `json:"id"`
}

type RawMessage struct {
	// Content is the hex encoded message
	Content string `json:"content"`
}

type RawMessageData struct {
	Messages []RawMessage `json:"messages"`
}

// ExtraParameters carries exactly one of RawMessageData or ProgramCallData.
type ExtraParameters struct {
	RawMessageData *RawMessageData `json:"rawMessageData,omitempty"`
	// ProgramCallData is the base-64 serialized transaction
	ProgramCallData string `json:"programCallData,omitempty"`
}

type CreateTransactionRequest struct {
	AssetId         string            `json:"assetId"`
	Operation       Operation         `json:"operation"`
	Source          TransactionSource `json:"source"`
	ExtraParameters *ExtraParameters  `json:"extraParameters,omitempty"`
}

type CreateTransactionResponse struct {
	Id     string            `json:"id"`
	Status TransactionStatus `json:"status"`
}

type SignatureData struct {
	FullSig string `json:"fullSig"`
}

type SignedMessage struct {
	Signature SignatureData `json:"signature"`
}

// TransactionResponse is the job as returned by GET /v1/transactions/{id}.
type TransactionResponse struct {
	Id             string            `json:"id"`
	Status         TransactionStatus `json:"status"`
	SubStatus      string            `json:"subStatus,omitempty"`
	SignedMessages []SignedMessage   `json:"signedMessages,omitempty"`
	// TxHash is set for PROGRAM_CALL jobs once broadcast
	TxHash string `json:"txHash,omitempty"`
}

type VaultAddress struct {
	Address string `json:"address"`
}

type VaultAddressesResponse struct {
	Addresses []VaultAddress `json:"addresses"`
}
