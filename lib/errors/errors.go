package errors

// pre-defined errors; the code is the stable machine-readable reason a
// caller dispatches on, the message is advisory.
var (
	StorageRecordDoesNotExist  = NewError(100, "record does not exist in storage")
	StorageRecordAlreadyExists = NewError(101, "record already exists in storage")
	StorageCoreError           = NewError(102, "storage error")

	BadRequestParameter     = NewError(110, "found invalid request body or parameters")
	InvalidDecision         = NewError(111, "invalid vote decision")
	InvalidThresholdRule    = NewError(112, "required approvals must be between 1 and panel size")
	PageQueryLimitMaxExceed = NewError(113, "limit over maximum value")

	NotAuthorized = NewError(120, "actor is not allowed to perform this operation")
	NotAssigned   = NewError(121, "validator is not assigned to this verification request")

	VerificationDoesNotExist = NewError(130, "verification request does not exist")
	ValidatorDoesNotExist    = NewError(131, "validator does not exist")
	ProjectDoesNotExist      = NewError(132, "project does not exist")
	ValidatorAlreadyExists   = NewError(133, "validator already exists")

	WrongState             = NewError(140, "verification request is not in a state accepting this operation")
	DeadlinePassed         = NewError(141, "voting deadline has passed")
	NotExtendable          = NewError(142, "verification request is terminal and its deadline cannot be extended")
	AlreadyAssigned        = NewError(143, "verification request already has a panel assigned")
	AlreadyTerminal        = NewError(144, "verification request already reached a terminal decision")
	InsufficientCandidates = NewError(145, "not enough candidate validators for the requested panel size")

	MalformedSignature   = NewError(150, "signature or wallet address is malformed")
	AddressMismatch      = NewError(151, "claimed wallet address does not match the validator's registered wallet")
	StaleTimestamp       = NewError(152, "signature issuance timestamp is outside the freshness window")
	CryptographicFailure = NewError(153, "signature verification failed")
)
