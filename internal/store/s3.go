package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/DaanHessen/fieldmap-tui/internal/engine"
)

// S3Config selects the object that holds the dataset document.
type S3Config struct {
	Bucket    string
	Key       string
	Region    string
	Endpoint  string // optional, e.g. MinIO
	PathStyle bool

	// Static credentials; empty uses the default chain.
	AccessKeyID     string
	SecretAccessKey string
}

// S3Gateway keeps the JSON document in an S3-compatible bucket.
type S3Gateway struct {
	client *s3.Client
	bucket string
	key    string
}

func NewS3Gateway(ctx context.Context, cfg S3Config) (*S3Gateway, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, clientOptions(cfg))
	return newS3Gateway(client, cfg.Bucket, cfg.Key), nil
}

func clientOptions(cfg S3Config) func(*s3.Options) {
	return func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		// MinIO and older gateways reject aws-chunked uploads.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	}
}

func newS3Gateway(client *s3.Client, bucket, key string) *S3Gateway {
	if key == "" {
		key = "fieldmap/data.json"
	}
	return &S3Gateway{client: client, bucket: bucket, key: key}
}

// Load fetches the document. A missing object is an empty dataset.
func (g *S3Gateway) Load(ctx context.Context) (engine.Dataset, error) {
	out, err := g.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &g.bucket, Key: &g.key})
	if err != nil {
		if isNotFound(err) {
			log.Printf("store: s3://%s/%s not found, starting empty", g.bucket, g.key)
			return engine.Dataset{}, nil
		}
		return engine.Dataset{}, wrap(err, "get object")
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return engine.Dataset{}, wrap(err, "read object")
	}
	ds, err := Decode(data)
	if err != nil {
		return engine.Dataset{}, err
	}
	log.Printf("store: loaded %d items from s3://%s/%s", ds.Count(), g.bucket, g.key)
	return ds, nil
}

func (g *S3Gateway) Save(ctx context.Context, ds engine.Dataset) error {
	data, err := Encode(ds)
	if err != nil {
		return wrap(err, "encode dataset")
	}
	_, err = g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &g.bucket,
		Key:           &g.key,
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return wrap(err, "put object")
	}
	log.Printf("store: saved %d items to s3://%s/%s", ds.Count(), g.bucket, g.key)
	return nil
}

func isNotFound(err error) bool {
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
