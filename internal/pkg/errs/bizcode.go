package errs

const (
	BizCodeInvalidParams = 1001

	BizCodeMalformedPayload = 2001
	BizCodeSchemaViolation  = 2002

	BizCodeAppNotFound        = 8001
	BizCodeAppAlreadyExists   = 8002
	BizCodeVersionNotFound    = 8003
	BizCodeVersionConflict    = 8004
	BizCodeInvalidVersionName = 8005
	BizCodeArtifactMissing    = 8006
	BizCodeInvalidRolloutSpan = 8007
)
