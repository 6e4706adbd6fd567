package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/mediaconvert/types"

	"vodsubmit/internal/submit"
	"vodsubmit/internal/transcoder"
)

type fakeLoader struct {
	err error
}

func (f *fakeLoader) Load() (*types.JobSettings, error) {
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
	err error
}

func (f *fakeJobs) SubmitJob(ctx context.Context, in transcoder.SubmitJobInput) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "1704067200000-abc123", nil
}

func newTestHandler(loader *fakeLoader, jobs *fakeJobs) *Handler {
	svc := submit.New(submit.Params{
		Role:      "arn:aws:iam::123456789012:role/MediaConvertRole",
		Templates: loader,
		Jobs:      jobs,
		Now: func() time.Time {
			t, _ := time.Parse("20060102150405", "20240101000000")
			return t
		},
	})
	return New(Deps{Submitter: svc, Templates: loader})
}

const validBody = `{
	"video_source_url": "https://example.com/in/clip.mp4",
	"destination_bucket": "my-bucket",
	"destination_bucket_region": "us-east-1",
	"uniqueId": 42
}`

func TestPostJob(t *testing.T) {
	h := newTestHandler(&fakeLoader{}, &fakeJobs{})

	req := httptest.NewRequest("POST", "/jobs", strings.NewReader(validBody))
	rec := httptest.NewRecorder()

	h.PostJob(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("expected json content type, got %q", got)
	}

	var out submit.Output
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if out.VideoS3Key != "/public/42/20240101000000/HLS/clip" {
		t.Errorf("unexpected object key: %q", out.VideoS3Key)
	}
	if out.FinalVideoHLSURL != "https://my-bucket.s3.us-east-1.amazonaws.com/public/42/20240101000000/HLS/clip.m3u8" {
		t.Errorf("unexpected hls url: %q", out.FinalVideoHLSURL)
	}
	if out.ThumbnailURL != "" {
		t.Errorf("thumbnail url must be empty, got %q", out.ThumbnailURL)
	}
}

func TestPostJobMissingFields(t *testing.T) {
	h := newTestHandler(&fakeLoader{}, &fakeJobs{})

	bodies := []string{
		`{"destination_bucket":"b","destination_bucket_region":"c","uniqueId":"d"}`,
		`{"video_source_url":"a","destination_bucket_region":"c","uniqueId":"d"}`,
		`{"video_source_url":"a","destination_bucket":"b","uniqueId":"d"}`,
		`{"video_source_url":"a","destination_bucket":"b","destination_bucket_region":"c"}`,
	}

	for i, body := range bodies {
		t.Run(fmt.Sprintf("missing_%d", i), func(t *testing.T) {
			req := httptest.NewRequest("POST", "/jobs", strings.NewReader(body))
			rec := httptest.NewRecorder()

			h.PostJob(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), submit.MissingFieldsMessage) {
				t.Errorf("expected fixed message in body, got: %s", rec.Body.String())
			}
		})
	}
}

func TestPostJobInvalidJSON(t *testing.T) {
	h := newTestHandler(&fakeLoader{}, &fakeJobs{})

	req := httptest.NewRequest("POST", "/jobs", strings.NewReader(`{"video_source_url":`))
	rec := httptest.NewRecorder()

	h.PostJob(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestPostJobServiceFailure(t *testing.T) {
	// The original implementation lost the 500 body to an unassigned
	// output structure; here the failure path always answers a
	// structured envelope.
	h := newTestHandler(&fakeLoader{}, &fakeJobs{err: fmt.Errorf("access denied")})

	req := httptest.NewRequest("POST", "/jobs", strings.NewReader(validBody))
	rec := httptest.NewRecorder()

	h.PostJob(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INTERNAL_ERROR") {
		t.Errorf("expected error envelope, got: %s", rec.Body.String())
	}
}

func TestPostJobTemplateFailure(t *testing.T) {
	h := newTestHandler(&fakeLoader{err: fmt.Errorf("open job.json: no such file")}, &fakeJobs{})

	req := httptest.NewRequest("POST", "/jobs", strings.NewReader(validBody))
	rec := httptest.NewRecorder()

	h.PostJob(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	t.Run("basic", func(t *testing.T) {
		h := newTestHandler(&fakeLoader{}, &fakeJobs{})

		req := httptest.NewRequest("GET", "/health", nil)
		rec := httptest.NewRecorder()

		h.Health(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var body map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["status"] != "ok" {
			t.Errorf("expected status ok, got %v", body["status"])
		}
	})

	t.Run("deep with broken template", func(t *testing.T) {
		h := newTestHandler(&fakeLoader{err: fmt.Errorf("template invalid")}, &fakeJobs{})

		req := httptest.NewRequest("GET", "/health?deep=true", nil)
		rec := httptest.NewRecorder()

		h.Health(rec, req)

		var body map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["status"] != "degraded" {
			t.Errorf("expected degraded, got %v", body["status"])
		}
	})
}
