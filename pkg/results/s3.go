package results

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// objectPutter is the subset of *s3.Client the sink needs.
type objectPutter interface {
	PutObject(ctx context.Context, in *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

// S3Sink spools rows to a local CSV file and uploads it on Close. The spool
// file is kept when the upload fails so no completed row is lost.
type S3Sink struct {
	*CSVSink
	client objectPutter
	bucket string
	key    string
	runID  string
	spool  string
}

// ParseS3URL splits s3://bucket/key into its parts.
func ParseS3URL(dest string) (bucket, key string, err error) {
	u, err := url.Parse(dest)
	if err != nil {
		return "", "", fmt.Errorf("parse %q: %w", dest, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("%q is not an s3://bucket/key URL", dest)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("%q has no object key", dest)
	}
	return u.Host, key, nil
}

// NewS3Sink loads the default AWS configuration (environment, shared files)
// and returns a sink that uploads to dest when closed. QOSBENCH_S3_ACCESS_KEY
// and QOSBENCH_S3_SECRET_KEY select static credentials; QOSBENCH_S3_ENDPOINT
// targets an S3-compatible service with path-style addressing.
func NewS3Sink(ctx context.Context, dest, runID string) (*S3Sink, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	accessKey, secretKey := os.Getenv("QOSBENCH_S3_ACCESS_KEY"), os.Getenv("QOSBENCH_S3_SECRET_KEY")
	if accessKey != "" && secretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var opts []func(*awss3.Options)
	if endpoint := os.Getenv("QOSBENCH_S3_ENDPOINT"); endpoint != "" {
		opts = append(opts, func(o *awss3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}
	return newS3Sink(awss3.NewFromConfig(awsCfg, opts...), dest, runID)
}

func newS3Sink(client objectPutter, dest, runID string) (*S3Sink, error) {
	bucket, key, err := ParseS3URL(dest)
	if err != nil {
		return nil, err
	}

	suffix := ".csv"
	if strings.HasSuffix(key, SnappySuffix) {
		suffix = ".csv" + SnappySuffix
	}
	f, err := os.CreateTemp("", "qosbench-*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("create spool file: %w", err)
	}
	spool := f.Name()
	f.Close()

	csvSink, err := CreateCSVFile(spool)
	if err != nil {
		return nil, err
	}
	return &S3Sink{
		CSVSink: csvSink,
		client:  client,
		bucket:  bucket,
		key:     key,
		runID:   runID,
		spool:   spool,
	}, nil
}

// SpoolPath returns the local file holding the rows written so far.
func (s *S3Sink) SpoolPath() string { return s.spool }

// Close finishes the spool file and uploads it.
func (s *S3Sink) Close() error {
	if err := s.CSVSink.Close(); err != nil {
		return fmt.Errorf("close spool %s: %w", s.spool, err)
	}

	if err := s.upload(); err != nil {
		return errors.Join(err, fmt.Errorf("rows kept in %s", s.spool))
	}
	return os.Remove(s.spool)
}

func (s *S3Sink) upload() error {
	f, err := os.Open(s.spool)
	if err != nil {
		return fmt.Errorf("open spool %s: %w", s.spool, err)
	}
	defer f.Close()

	input := &awss3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        f,
		ContentType: aws.String("text/csv"),
	}
	if s.runID != "" {
		input.Metadata = map[string]string{"run-id": s.runID}
	}
	if _, err := s.client.PutObject(context.Background(), input); err != nil {
		return fmt.Errorf("s3 upload s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return nil
}
