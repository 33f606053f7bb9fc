package kv

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Backend names accepted by Open
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendDynamo = "dynamodb"
)

// Options selects and configures a backend
type Options struct {
	Backend     string
	SQLitePath  string
	DynamoTable string
	AWSRegion   string
}

// Open creates the Store described by opts
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory, "":
		return NewMemory(), nil
	case BackendSQLite:
		return NewSQLite(opts.SQLitePath)
	case BackendDynamo:
		if opts.DynamoTable == "" {
			return nil, fmt.Errorf("dynamodb backend requires a table name")
		}
		var loadOpts []func(*awsconfig.LoadOptions) error
		if opts.AWSRegion != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(opts.AWSRegion))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return NewDynamo(dynamodb.NewFromConfig(awsCfg), opts.DynamoTable), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", opts.Backend)
	}
}
