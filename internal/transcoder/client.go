// Package transcoder wraps the managed MediaConvert service behind the
// two calls the submitter needs: account endpoint discovery and job
// creation.
package transcoder

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/mediaconvert"
	"github.com/aws/aws-sdk-go-v2/service/mediaconvert/types"
)

// API is the slice of the MediaConvert client surface this package uses.
type API interface {
	DescribeEndpoints(ctx context.Context, params *mediaconvert.DescribeEndpointsInput, optFns ...func(*mediaconvert.Options)) (*mediaconvert.DescribeEndpointsOutput, error)
	CreateJob(ctx context.Context, params *mediaconvert.CreateJobInput, optFns ...func(*mediaconvert.Options)) (*mediaconvert.CreateJobOutput, error)
}

// SubmitJobInput carries everything needed to create one transcoding job.
type SubmitJobInput struct {
	// Role is the IAM role MediaConvert assumes during execution.
	Role string
	// Metadata is attached as UserMetadata so completion events can be
	// correlated back to the originating request.
	Metadata map[string]string
	// Settings is the filled job template.
	Settings *types.JobSettings
}

// Client submits jobs to MediaConvert. Job creation must go through the
// account-specific endpoint, so every submission first resolves that
// endpoint and then creates the job against it.
type Client struct {
	api         API
	forEndpoint func(url string) API
}

// New builds a Client for the given region using the default AWS
// credential chain.
func New(ctx context.Context, region string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return NewFromAPI(
		mediaconvert.NewFromConfig(cfg),
		func(url string) API {
			return mediaconvert.NewFromConfig(cfg, func(o *mediaconvert.Options) {
				o.BaseEndpoint = aws.String(url)
			})
		},
	), nil
}

// NewFromAPI builds a Client from an existing API implementation and a
// factory producing an endpoint-bound API.
func NewFromAPI(api API, forEndpoint func(url string) API) *Client {
	return &Client{api: api, forEndpoint: forEndpoint}
}

// SubmitJob resolves the account endpoint and creates the job there,
// returning the created job's ID.
func (c *Client) SubmitJob(ctx context.Context, in SubmitJobInput) (string, error) {
	eps, err := c.api.DescribeEndpoints(ctx, &mediaconvert.DescribeEndpointsInput{})
	if err != nil {
		return "", fmt.Errorf("describe endpoints: %w", err)
	}
	if len(eps.Endpoints) == 0 || aws.ToString(eps.Endpoints[0].Url) == "" {
		return "", fmt.Errorf("describe endpoints: no endpoint returned")
	}

	bound := c.forEndpoint(aws.ToString(eps.Endpoints[0].Url))

	out, err := bound.CreateJob(ctx, &mediaconvert.CreateJobInput{
		Role:         aws.String(in.Role),
		UserMetadata: in.Metadata,
		Settings:     in.Settings,
	})
	if err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}
	if out.Job == nil {
		return "", nil
	}
	return aws.ToString(out.Job.Id), nil
}
