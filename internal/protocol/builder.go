package protocol

import (
	"encoding/xml"
	"time"

	"github.com/updateserve/omaha-backend/internal/model"
	"github.com/pkg/errors"
)

// BadRequestBody is the fixed reply for payloads the parser cannot
// decode at all. Deployed clients match on it, do not reword.
const BadRequestBody = `<?xml version="1.0" encoding="utf-8"?><data><message>Bad Request</message></data>`

const header = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// RenderResponse serializes the decision into the exact wire envelope.
// Tag and attribute layout is a fixed contract covered by golden tests.
func RenderResponse(resp *model.UpdateResponse) ([]byte, error) {
	out, err := xml.Marshal(resp)
	if err != nil {
		return nil, errors.Wrap(err, "marshal update response")
	}
	return append([]byte(header), out...), nil
}

// RenderErrorEnvelope is the documented fault reply: protocol level,
// HTTP 200, a bare reason and nothing of the internal failure.
func RenderErrorEnvelope(reason string, now time.Time) []byte {
	resp := &model.UpdateResponse{
		Protocol: model.ProtocolVersion,
		Server:   model.ServerName,
		DayStart: ElapsedDayStart(now),
		Error:    &model.ResponseError{Reason: reason},
	}
	out, err := RenderResponse(resp)
	if err != nil {
		// static fallback, the envelope above cannot actually fail to marshal
		return []byte(header + `<response protocol="3.0" server="prod"><error reason="internal"></error></response>`)
	}
	return out
}

// ElapsedDayStart reports seconds since the server's UTC midnight, the
// daystart reference clients use for ping bookkeeping.
func ElapsedDayStart(now time.Time) model.DayStart {
	utc := now.UTC()
	midnight := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	return model.DayStart{ElapsedSeconds: int(utc.Sub(midnight).Seconds())}
}

// RenderAppcast serializes a Sparkle feed.
func RenderAppcast(cast *model.Appcast) ([]byte, error) {
	out, err := xml.Marshal(cast)
	if err != nil {
		return nil, errors.Wrap(err, "marshal appcast")
	}
	return append([]byte(`<?xml version="1.0" encoding="utf-8"?>`+"\n"), out...), nil
}
