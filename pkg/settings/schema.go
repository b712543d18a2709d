package settings

// Schema is the JSON schema for the persisted settings blob. Every field is
// optional; emptiness is only checked when an upload is attempted.
const Schema = `{
    "$schema": "http://json-schema.org/draft-07/schema#",
    "type": "object",
    "properties": {
        "accessKeyId": {
            "type": "string",
            "description": "Access key id used to sign requests"
        },
        "secretKey": {
            "type": "string",
            "description": "Secret access key used to sign requests"
        },
        "bucket": {
            "type": "string",
            "description": "Target bucket name"
        },
        "endpoint": {
            "type": "string",
            "description": "S3-compatible endpoint URL"
        },
        "baseUrl": {
            "type": "string",
            "description": "Public base URL the uploaded objects are served from"
        },
        "path": {
            "type": "string",
            "description": "Object key template"
        }
    }
}`
