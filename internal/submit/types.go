package submit

import (
	"bytes"
	"encoding/json"
	"fmt"

	"vodsubmit/internal/pkg/errors"
)

// MissingFieldsMessage is the body returned when any required request
// field is absent.
const MissingFieldsMessage = "Error: Required fields are missing in request body"

// ID is a caller-supplied identifier that may arrive as a JSON string or
// number; either form is normalized to its string representation.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}

	switch t := v.(type) {
	case string:
		*id = ID(t)
	case json.Number:
		*id = ID(t.String())
	default:
		return fmt.Errorf("uniqueId must be a string or number")
	}
	return nil
}

// Request describes one video to transcode.
type Request struct {
	VideoSourceURL    string `json:"video_source_url"`
	DestinationBucket string `json:"destination_bucket"`
	DestinationRegion string `json:"destination_bucket_region"`
	UniqueID          ID     `json:"uniqueId"`
}

// Output carries the derived output locations for a submitted job. The
// thumbnail URL is reserved and always empty; artifacts only exist once
// the transcoding service finishes asynchronously.
type Output struct {
	FinalVideoURL    string `json:"final_video_url"`
	ThumbnailURL     string `json:"thumbnail_url"`
	VideoS3Key       string `json:"video_s3_key"`
	VideoS3Path      string `json:"video_s3_path"`
	FinalVideoHLSURL string `json:"final_video_hls_url"`
}

var requiredFields = []string{
	"video_source_url",
	"destination_bucket",
	"destination_bucket_region",
	"uniqueId",
}

// ParseRequest decodes a request body and checks that all required fields
// are present. Presence is the only validation performed; malformed URLs
// or bucket names are passed through to the transcoding service.
func ParseRequest(body []byte) (*Request, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeValidation, "job.parse", "invalid json body")
	}

	for _, field := range requiredFields {
		if _, ok := raw[field]; !ok {
			return nil, errors.Validation(MissingFieldsMessage).WithField("field", field)
		}
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeValidation, "job.parse", "invalid json body")
	}
	return &req, nil
}
