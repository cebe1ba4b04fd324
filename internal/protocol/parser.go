package protocol

import (
	"encoding/xml"
	"errors"
	"io"

	"github.com/updateserve/omaha-backend/internal/model"
	"github.com/updateserve/omaha-backend/internal/pkg/errs"
)

// ParseRequest decodes an Omaha payload. Undecodable markup maps to
// ErrMalformedPayload, well-formed markup missing required protocol
// fields to ErrSchemaViolation. Unknown elements and attributes are
// ignored so newer clients keep working against this server.
func ParseRequest(raw []byte) (*model.UpdateRequest, error) {
	var req model.UpdateRequest
	if err := xml.Unmarshal(raw, &req); err != nil {
		var syntaxErr *xml.SyntaxError
		// a body with no element at all surfaces as io.EOF
		if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) {
			return nil, errs.ErrMalformedPayload.Wrap(err)
		}
		// well-formed but not our document shape
		return nil, errs.ErrSchemaViolation.Wrap(err)
	}
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func validateRequest(req *model.UpdateRequest) error {
	if req.Protocol != model.ProtocolVersion {
		return errs.ErrSchemaViolation.WithDetails("unsupported protocol " + req.Protocol)
	}
	if len(req.Apps) == 0 {
		return errs.ErrSchemaViolation.WithDetails("request carries no app elements")
	}
	// a missing appid is a per-app problem answered inside the response,
	// it must not reject the sibling apps in the payload
	return nil
}
