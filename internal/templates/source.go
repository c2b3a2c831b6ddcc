package templates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	pdferrors "github.com/autorta/rta-filler/internal/pdf/errors"
	"github.com/autorta/rta-filler/internal/security"
)

// Source reads template bytes from storage
type Source interface {
	// Open returns the full content of the named template. A template that
	// does not exist yields a ResourceNotFound error.
	Open(ctx context.Context, name string) ([]byte, error)
	// Describe returns the storage location of name for diagnostics.
	Describe(name string) string
}

// DirSource reads templates from a local directory
type DirSource struct {
	paths *security.PathValidator
}

// NewDirSource creates a source rooted at dir
func NewDirSource(dir string) (*DirSource, error) {
	paths, err := security.NewPathValidator(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid templates directory: %w", err)
	}
	return &DirSource{paths: paths}, nil
}

// Open reads the named file under the templates directory
func (s *DirSource) Open(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := s.paths.Resolve(name)
	if err != nil {
		return nil, pdferrors.ResourceNotFound(name, err)
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, pdferrors.ResourceNotFound(name, err).WithContext(p)
		}
		return nil, pdferrors.ResourceNotFound(name, fmt.Errorf("unreadable template: %w", err)).WithContext(p)
	}

	return data, nil
}

// Describe returns the absolute path of name
func (s *DirSource) Describe(name string) string {
	if p, err := s.paths.Resolve(name); err == nil {
		return p
	}
	return filepath.Join(s.paths.Root(), name)
}

// S3Config configures the S3 template source
type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string // default: us-east-1
	Endpoint        string // optional: S3-compatible storage
	AccessKeyID     string // optional: default credential chain when empty
	SecretAccessKey string
	SessionToken    string
}

// objectGetter is the subset of the S3 client used by S3Source.
type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads templates from an S3 bucket
type S3Source struct {
	client objectGetter
	bucket string
	prefix string
}

// NewS3Source creates an S3 template source
func NewS3Source(ctx context.Context, cfg S3Config) (*S3Source, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket cannot be empty")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			cfg.SessionToken,
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return newS3Source(s3.NewFromConfig(awsCfg, s3Opts...), cfg.Bucket, cfg.Prefix), nil
}

func newS3Source(client objectGetter, bucket, prefix string) *S3Source {
	return &S3Source{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (s *S3Source) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// Open downloads the named object
func (s *S3Source) Open(ctx context.Context, name string) ([]byte, error) {
	key := s.key(name)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if isContextError(err) {
		return nil, err
	}
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		var notFound *s3types.NotFound
		if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
			return nil, pdferrors.ResourceNotFound(name, err).WithContext(s.Describe(name))
		}
		return nil, pdferrors.ResourceNotFound(name, fmt.Errorf("failed to get object: %w", err)).
			WithContext(s.Describe(name))
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if isContextError(err) {
		return nil, err
	}
	if err != nil {
		return nil, pdferrors.ResourceNotFound(name, fmt.Errorf("failed to read object: %w", err)).
			WithContext(s.Describe(name))
	}

	return data, nil
}

// Describe returns the s3:// URL of name
func (s *S3Source) Describe(name string) string {
	return "s3://" + s.bucket + "/" + s.key(name)
}
