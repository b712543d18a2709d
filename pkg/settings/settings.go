package settings

import (
	"fmt"
	"strings"

	"github.com/williamokano/r2_uploader/pkg/pathtemplate"
)

// Settings is the flat configuration persisted by the host
type Settings struct {
	AccessKeyID string `json:"accessKeyId"`
	SecretKey   string `json:"secretKey"`
	Bucket      string `json:"bucket"`
	Endpoint    string `json:"endpoint"`
	BaseURL     string `json:"baseUrl"`
	Path        string `json:"path"` // object key template
}

// Field names one editable setting; the value is its JSON key
type Field string

const (
	FieldAccessKeyID Field = "accessKeyId"
	FieldSecretKey   Field = "secretKey"
	FieldBucket      Field = "bucket"
	FieldEndpoint    Field = "endpoint"
	FieldBaseURL     Field = "baseUrl"
	FieldPath        Field = "path"
)

// FieldInfo describes a field for the configuration surface
type FieldInfo struct {
	Field       Field
	Name        string
	Description string
	Placeholder string
	Secret      bool
}

// Fields lists the configuration surface in display order
var Fields = []FieldInfo{
	{Field: FieldAccessKeyID, Name: "Access Key ID"},
	{Field: FieldSecretKey, Name: "Secret Key", Secret: true},
	{Field: FieldBucket, Name: "Bucket"},
	{Field: FieldEndpoint, Name: "Endpoint"},
	{
		Field:       FieldBaseURL,
		Name:        "CDN Base URL",
		Description: "example: https://cdn.example.com",
		Placeholder: "https://cdn.example.com",
	},
	{
		Field:       FieldPath,
		Name:        "Path Template",
		Description: "available variables: " + variableList(),
	},
}

func variableList() string {
	vars := make([]string, len(pathtemplate.Variables))
	for i, v := range pathtemplate.Variables {
		vars[i] = "{" + v + "}"
	}
	return strings.Join(vars, ", ")
}

// ParseField resolves a field by JSON key, case-insensitively
func ParseField(name string) (Field, error) {
	for _, info := range Fields {
		if strings.EqualFold(string(info.Field), name) {
			return info.Field, nil
		}
	}
	return "", fmt.Errorf("unknown setting %q", name)
}

// Get returns the value of field
func (s Settings) Get(field Field) string {
	switch field {
	case FieldAccessKeyID:
		return s.AccessKeyID
	case FieldSecretKey:
		return s.SecretKey
	case FieldBucket:
		return s.Bucket
	case FieldEndpoint:
		return s.Endpoint
	case FieldBaseURL:
		return s.BaseURL
	case FieldPath:
		return s.Path
	}
	return ""
}

func (s *Settings) set(field Field, value string) error {
	switch field {
	case FieldAccessKeyID:
		s.AccessKeyID = value
	case FieldSecretKey:
		s.SecretKey = value
	case FieldBucket:
		s.Bucket = value
	case FieldEndpoint:
		s.Endpoint = value
	case FieldBaseURL:
		s.BaseURL = value
	case FieldPath:
		s.Path = value
	default:
		return fmt.Errorf("unknown setting %q", field)
	}
	return nil
}

// Normalize applies the edit-time cleanup for field: surrounding
// whitespace is trimmed and the base URL loses its trailing slashes.
func Normalize(field Field, value string) string {
	value = strings.TrimSpace(value)
	if field == FieldBaseURL {
		value = strings.TrimRight(value, "/")
	}
	return value
}

// Mask hides all but the last four characters of a secret
func Mask(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}
