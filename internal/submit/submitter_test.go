package submit

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/mediaconvert/types"

	"vodsubmit/internal/pkg/errors"
	"vodsubmit/internal/transcoder"
)

type fakeLoader struct {
	err   error
	loads int
}

func (f *fakeLoader) Load() (*types.JobSettings, error) {
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	return &types.JobSettings{
		Inputs: []types.Input{{FileInput: aws.String("")}},
		OutputGroups: []types.OutputGroup{{
			OutputGroupSettings: &types.OutputGroupSettings{
				HlsGroupSettings: &types.HlsGroupSettings{Destination: aws.String("")},
			},
		}},
	}, nil
}

type fakeJobs struct {
	err   error
	jobID string
	last  transcoder.SubmitJobInput
	calls int
}

func (f *fakeJobs) SubmitJob(ctx context.Context, in transcoder.SubmitJobInput) (string, error) {
	f.calls++
	f.last = in
	if f.err != nil {
		return "", f.err
	}
	return f.jobID, nil
}

func fixedClock(s string) func() time.Time {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func validBody() []byte {
	return []byte(`{
		"video_source_url": "https://example.com/in/clip.mp4",
		"destination_bucket": "my-bucket",
		"destination_bucket_region": "us-east-1",
		"uniqueId": "42"
	}`)
}

func TestParseRequest(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		req, err := ParseRequest(validBody())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req.VideoSourceURL != "https://example.com/in/clip.mp4" {
			t.Errorf("unexpected source url: %s", req.VideoSourceURL)
		}
		if req.UniqueID != "42" {
			t.Errorf("unexpected unique id: %s", req.UniqueID)
		}
	})

	t.Run("numeric uniqueId", func(t *testing.T) {
		req, err := ParseRequest([]byte(`{
			"video_source_url": "a",
			"destination_bucket": "b",
			"destination_bucket_region": "c",
			"uniqueId": 42
		}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if req.UniqueID != "42" {
			t.Errorf("expected numeric id normalized to string, got %q", req.UniqueID)
		}
	})

	t.Run("each missing field rejects with the fixed message", func(t *testing.T) {
		for _, missing := range requiredFields {
			t.Run(missing, func(t *testing.T) {
				body := map[string]any{
					"video_source_url":          "a",
					"destination_bucket":        "b",
					"destination_bucket_region": "c",
					"uniqueId":                  "d",
				}
				delete(body, missing)

				raw := []byte("{")
				first := true
				for k, v := range body {
					if !first {
						raw = append(raw, ',')
					}
					first = false
					raw = append(raw, []byte(fmt.Sprintf("%q:%q", k, v))...)
				}
				raw = append(raw, '}')

				_, err := ParseRequest(raw)
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.IsValidation(err) {
					t.Errorf("expected validation error, got %v", err)
				}
				var e *errors.Error
				if !errors.As(err, &e) || e.Message != MissingFieldsMessage {
					t.Errorf("expected fixed message %q, got %v", MissingFieldsMessage, err)
				}
			})
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := ParseRequest([]byte(`{"video_source_url":`))
		if !errors.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("extra fields are ignored", func(t *testing.T) {
		body := []byte(`{
			"video_source_url": "a",
			"destination_bucket": "b",
			"destination_bucket_region": "c",
			"uniqueId": "d",
			"callback_url": "https://example.com/hook"
		}`)
		if _, err := ParseRequest(body); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestSourceBaseName(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"https://example.com/in/clip.mp4", "clip"},
		{"s3://bucket/path/movie.mov", "movie"},
		{"https://example.com/in/clip.mp4?token=abc", "clip"},
		{"clip.mp4", "clip"},
		{"https://example.com/in/archive.tar.gz", "archive.tar"},
		{"https://example.com/in/noext", "noext"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			if got := sourceBaseName(tt.source); got != tt.want {
				t.Errorf("sourceBaseName(%q) = %q, want %q", tt.source, got, tt.want)
			}
		})
	}
}

func newTestService(loader *fakeLoader, jobs *fakeJobs, now func() time.Time) *Service {
	return New(Params{
		Role:      "arn:aws:iam::123456789012:role/MediaConvertRole",
		Templates: loader,
		Jobs:      jobs,
		Now:       now,
	})
}

func TestSubmit(t *testing.T) {
	loader := &fakeLoader{}
	jobs := &fakeJobs{jobID: "1704067200000-abc123"}
	svc := newTestService(loader, jobs, fixedClock("20240101000000"))

	req, err := ParseRequest(validBody())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	out, err := svc.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantKey := "/public/42/20240101000000/HLS/clip"
	if out.VideoS3Key != wantKey {
		t.Errorf("object key = %q, want %q", out.VideoS3Key, wantKey)
	}
	if out.VideoS3Path != "s3://my-bucket"+wantKey {
		t.Errorf("unexpected s3 path: %q", out.VideoS3Path)
	}
	if out.FinalVideoURL != "s3://my-bucket"+wantKey {
		t.Errorf("unexpected final video url: %q", out.FinalVideoURL)
	}
	wantHLS := "https://my-bucket.s3.us-east-1.amazonaws.com/public/42/20240101000000/HLS/clip.m3u8"
	if out.FinalVideoHLSURL != wantHLS {
		t.Errorf("hls url = %q, want %q", out.FinalVideoHLSURL, wantHLS)
	}
	if out.ThumbnailURL != "" {
		t.Errorf("thumbnail url must be empty, got %q", out.ThumbnailURL)
	}

	// Template slots filled
	if got := aws.ToString(jobs.last.Settings.Inputs[0].FileInput); got != "https://example.com/in/clip.mp4" {
		t.Errorf("input slot = %q", got)
	}
	dest := aws.ToString(jobs.last.Settings.OutputGroups[0].OutputGroupSettings.HlsGroupSettings.Destination)
	if dest != "s3://my-bucket"+wantKey {
		t.Errorf("destination slot = %q", dest)
	}

	// Correlation metadata and role forwarded
	if jobs.last.Metadata["assetID"] != "42" {
		t.Errorf("expected assetID metadata, got %v", jobs.last.Metadata)
	}
	if jobs.last.Role != "arn:aws:iam::123456789012:role/MediaConvertRole" {
		t.Errorf("unexpected role: %s", jobs.last.Role)
	}
}

func TestSubmitKeyFormat(t *testing.T) {
	loader := &fakeLoader{}
	jobs := &fakeJobs{jobID: "j"}
	svc := newTestService(loader, jobs, nil) // real clock

	req, _ := ParseRequest(validBody())
	out, err := svc.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	keyPattern := regexp.MustCompile(`^/public/42/\d{14}/HLS/clip$`)
	if !keyPattern.MatchString(out.VideoS3Key) {
		t.Errorf("object key %q does not match expected format", out.VideoS3Key)
	}
}

func TestSubmitNotIdempotent(t *testing.T) {
	// Identical requests at different times land under different keys.
	// The timestamp is part of the destination, so this is the intended
	// behavior, not a defect.
	loader := &fakeLoader{}
	jobs := &fakeJobs{jobID: "j"}

	times := []string{"20240101000000", "20240101000001"}
	i := 0
	svc := New(Params{
		Role:      "r",
		Templates: loader,
		Jobs:      jobs,
		Now: func() time.Time {
			t, _ := time.Parse(timestampLayout, times[i])
			i++
			return t
		},
	})

	req, _ := ParseRequest(validBody())
	first, err := svc.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second, err := svc.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}

	if first.VideoS3Key == second.VideoS3Key {
		t.Errorf("expected distinct object keys, both were %q", first.VideoS3Key)
	}
}

func TestSubmitLoadsTemplateFreshPerInvocation(t *testing.T) {
	loader := &fakeLoader{}
	jobs := &fakeJobs{jobID: "j"}
	svc := newTestService(loader, jobs, fixedClock("20240101000000"))

	req, _ := ParseRequest(validBody())
	for i := 0; i < 3; i++ {
		if _, err := svc.Submit(context.Background(), req); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	if loader.loads != 3 {
		t.Errorf("expected 3 template loads, got %d", loader.loads)
	}
}

func TestSubmitTemplateLoadFailure(t *testing.T) {
	loader := &fakeLoader{err: fmt.Errorf("no such file")}
	jobs := &fakeJobs{}
	svc := newTestService(loader, jobs, nil)

	req, _ := ParseRequest(validBody())
	_, err := svc.Submit(context.Background(), req)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := errors.GetHTTPStatus(err); got != 500 {
		t.Errorf("expected status 500, got %d", got)
	}
	if jobs.calls != 0 {
		t.Error("job must not be submitted when the template fails to load")
	}
}

func TestSubmitServiceFailure(t *testing.T) {
	loader := &fakeLoader{}
	jobs := &fakeJobs{err: fmt.Errorf("access denied")}
	svc := newTestService(loader, jobs, nil)

	req, _ := ParseRequest(validBody())
	out, err := svc.Submit(context.Background(), req)
	if err == nil {
		t.Fatal("expected error")
	}
	if out != nil {
		t.Error("no partial output on failure")
	}
	if got := errors.GetHTTPStatus(err); got != 500 {
		t.Errorf("expected status 500, got %d", got)
	}
	if errors.IsValidation(err) {
		t.Error("service failure must not be classed as validation")
	}
}
