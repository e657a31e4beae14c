// Package secrets retrieves JSON connection secrets from AWS Secrets Manager
// at process startup.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// StoreSecret is the record-store connection secret
type StoreSecret struct {
	ConnectionString string `json:"ConnectionString"`
	DatabaseName     string `json:"DatabaseName"`
}

// S3Secret is the object-storage credentials secret
type S3Secret struct {
	AccessKey string `json:"AWS_Access_key"`
	SecretKey string `json:"AWS_Secret_Key"`
	Region    string `json:"Region"`
}

// Client wraps the Secrets Manager API
type Client struct {
	sm *secretsmanager.Client
}

func New(ctx context.Context, region string) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &Client{sm: secretsmanager.NewFromConfig(awsCfg)}, nil
}

// GetJSON fetches the named secret and unmarshals its string payload into out
func (c *Client) GetJSON(ctx context.Context, name string, out any) error {
	resp, err := c.sm.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &name,
	})
	if err != nil {
		return fmt.Errorf("failed to get secret %q: %w", name, err)
	}
	if resp.SecretString == nil {
		return fmt.Errorf("secret %q has no string payload", name)
	}
	if err := json.Unmarshal([]byte(*resp.SecretString), out); err != nil {
		return fmt.Errorf("failed to decode secret %q: %w", name, err)
	}
	return nil
}
