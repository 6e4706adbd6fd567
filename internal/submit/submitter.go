// Package submit implements the transcoding job submitter: it fills the
// static job template with per-request source and destination fields and
// forwards the result to the transcoding service.
package submit

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/mediaconvert/types"
	"github.com/prometheus/client_golang/prometheus"

	"vodsubmit/internal/pkg/errors"
	"vodsubmit/internal/pkg/logger"
	"vodsubmit/internal/repositories"
	"vodsubmit/internal/transcoder"
)

// timestampLayout is the second-granularity stamp embedded in output
// keys. It only makes paths unique; nothing orders by it.
const timestampLayout = "20060102150405"

// TemplateLoader serves a fresh copy of the job template per call.
type TemplateLoader interface {
	Load() (*types.JobSettings, error)
}

// JobSubmitter forwards a filled template to the transcoding service.
type JobSubmitter interface {
	SubmitJob(ctx context.Context, in transcoder.SubmitJobInput) (string, error)
}

// Service is the job submitter.
type Service struct {
	role      string
	templates TemplateLoader
	jobs      JobSubmitter
	log       *logger.Logger
	metrics   *Metrics
	now       func() time.Time
}

// Params configures a Service.
type Params struct {
	// Role is the IAM role passed to the transcoding service.
	Role      string
	Templates TemplateLoader
	Jobs      JobSubmitter
	Log       *logger.Logger
	Metrics   *Metrics
	// Now overrides the wall clock; nil means time.Now.
	Now func() time.Time
}

// New creates a Service.
func New(p Params) *Service {
	if p.Log == nil {
		p.Log = logger.NewDefault()
	}
	if p.Metrics == nil {
		p.Metrics = NewMetrics(prometheus.NewRegistry())
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &Service{
		role:      p.Role,
		templates: p.Templates,
		jobs:      p.Jobs,
		log:       p.Log.WithComponent("submit"),
		metrics:   p.Metrics,
		now:       p.Now,
	}
}

// Submit derives the output locations for req, fills the job template and
// creates the transcoding job. Two identical requests submitted at
// different seconds land under different keys; the timestamp is part of
// the destination.
func (s *Service) Submit(ctx context.Context, req *Request) (*Output, error) {
	const op = "job.submit"
	start := time.Now()
	log := s.log.FromContext(ctx)

	baseName := sourceBaseName(req.VideoSourceURL)
	destinationRoot := "s3://" + req.DestinationBucket
	stamp := s.now().Format(timestampLayout)
	objectKey := fmt.Sprintf("/public/%s/%s/HLS/%s", req.UniqueID, stamp, baseName)

	settings, err := s.templates.Load()
	if err != nil {
		s.metrics.Submissions.WithLabelValues("failed").Inc()
		log.LogError(ctx, "job template load failed", err)
		return nil, errors.WrapWithCode(err, errors.CodeInternal, op, "load job template")
	}

	settings.Inputs[0].FileInput = aws.String(req.VideoSourceURL)

	hls := repositories.HLSGroupIndex(settings)
	settings.OutputGroups[hls].OutputGroupSettings.HlsGroupSettings.Destination = aws.String(destinationRoot + objectKey)

	// assetID in UserMetadata lets completion events from the service be
	// matched back to the caller's uniqueId.
	jobID, err := s.jobs.SubmitJob(ctx, transcoder.SubmitJobInput{
		Role:     s.role,
		Metadata: map[string]string{"assetID": string(req.UniqueID)},
		Settings: settings,
	})
	if err != nil {
		s.metrics.Submissions.WithLabelValues("failed").Inc()
		log.LogError(ctx, "job submission failed", err,
			"bucket", req.DestinationBucket,
			"object_key", objectKey,
		)
		return nil, errors.WrapWithCode(err, errors.CodeInternal, op, "submit transcoding job")
	}

	s.metrics.Submissions.WithLabelValues("submitted").Inc()
	s.metrics.SubmitDuration.Observe(time.Since(start).Seconds())

	log.WithJobID(jobID).Info("transcoding job submitted",
		"asset_id", string(req.UniqueID),
		"bucket", req.DestinationBucket,
		"object_key", objectKey,
	)

	return &Output{
		FinalVideoURL:    destinationRoot + objectKey,
		ThumbnailURL:     "",
		VideoS3Key:       objectKey,
		VideoS3Path:      destinationRoot + objectKey,
		FinalVideoHLSURL: fmt.Sprintf("https://%s.s3.%s.amazonaws.com%s.m3u8", req.DestinationBucket, req.DestinationRegion, objectKey),
	}, nil
}

// sourceBaseName takes the last path segment of the source locator and
// strips its extension.
func sourceBaseName(source string) string {
	p := source
	if u, err := url.Parse(source); err == nil && u.Path != "" {
		p = u.Path
	}
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}
