// Package config loads and validates the development server configuration.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (LAKEHOUSE_DEV_ prefix)
//  4. CLI flags
//
// Without explicit files Load looks for ./devserver.yaml.
//
// # Usage
//
//	cfg, err := config.Load([]string{"devserver.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx = config.WithContext(ctx, cfg)
//
// # Environment Variables
//
// Config keys map to environment variables with the LAKEHOUSE_DEV_ prefix:
//   - server.port → LAKEHOUSE_DEV_SERVER_PORT
//   - database.dsn → LAKEHOUSE_DEV_DATABASE_DSN
//   - signing.secret_key → LAKEHOUSE_DEV_SIGNING_SECRET_KEY
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: port and the public URL signed URLs are built on
//   - Database: catalog backend type, DSN and documents table
//   - Storage: blob directory
//   - Auth: JWT secret, token lifetime and the user list
//   - Signing: signed URL key pair and lifetime
//   - CORS: cross-origin resource sharing settings
//   - Log: logging level
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Database type must be sqlite or postgres
//   - The JWT secret needs at least 16 characters
//   - Signed URLs live at most 168h
//   - Log level must be debug, info, warn, or error
package config
