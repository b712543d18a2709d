package s3

import (
	"fmt"
	"strings"

	"github.com/williamokano/r2_uploader/pkg/storage"
)

// DefaultRegion is the wildcard region R2 and most S3-compatible stores accept
const DefaultRegion = "auto"

// Config holds S3 configuration
type Config struct {
	Endpoint        string `json:"endpoint"`          // e.g. https://<account>.r2.cloudflarestorage.com
	Region          string `json:"region"`            // defaults to "auto"
	Bucket          string `json:"bucket"`            // target bucket
	AccessKeyID     string `json:"access_key_id"`     // static credentials
	SecretAccessKey string `json:"secret_access_key"`
}

// Validate checks the fields needed to build a signing client
func (c Config) Validate() error {
	var missing []string
	if c.Endpoint == "" {
		missing = append(missing, "endpoint")
	}
	if c.AccessKeyID == "" {
		missing = append(missing, "access key id")
	}
	if c.SecretAccessKey == "" {
		missing = append(missing, "secret key")
	}
	if len(missing) > 0 {
		return storage.NewConfigurationError(missing[0],
			fmt.Sprintf("R2 settings are missing (%s)", strings.Join(missing, ", ")))
	}
	if c.Bucket == "" {
		return storage.NewConfigurationError("bucket", "bucket is empty")
	}
	return nil
}

// GetRegion returns the configured region or DefaultRegion
func (c Config) GetRegion() string {
	if c.Region != "" {
		return c.Region
	}
	return DefaultRegion
}
