package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/mediaconvert/types"
)

var ErrTemplateNotFound = errors.New("job template not found")
var ErrTemplateInvalid = errors.New("job template invalid")

// TemplateRepository serves the static MediaConvert job template deployed
// next to the binary. The template is read fresh on every Load so each
// submission fills in an independent copy; the file itself is never
// written.
type TemplateRepository struct {
	path string
}

func NewTemplateRepository(path string) *TemplateRepository {
	return &TemplateRepository{path: path}
}

// Path returns the template file location.
func (r *TemplateRepository) Path() string {
	return r.path
}

// Load reads and parses the job template. The parsed settings must carry
// at least one input and one HLS output group, since those are the slots
// the submitter fills in.
func (r *TemplateRepository) Load() (*types.JobSettings, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, r.path)
		}
		return nil, fmt.Errorf("read job template %s: %w", r.path, err)
	}

	var settings types.JobSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateInvalid, err)
	}

	if len(settings.Inputs) == 0 {
		return nil, fmt.Errorf("%w: no inputs defined", ErrTemplateInvalid)
	}
	if HLSGroupIndex(&settings) < 0 {
		return nil, fmt.Errorf("%w: no HLS output group", ErrTemplateInvalid)
	}

	return &settings, nil
}

// HLSGroupIndex returns the index of the first output group carrying HLS
// group settings, or -1 when the template has none.
func HLSGroupIndex(s *types.JobSettings) int {
	for i, og := range s.OutputGroups {
		if og.OutputGroupSettings != nil && og.OutputGroupSettings.HlsGroupSettings != nil {
			return i
		}
	}
	return -1
}
