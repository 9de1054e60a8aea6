// Package config provides configuration management for the metastore.
//
// Configuration is resolved from three layers, later layers winning:
//
//   - built-in defaults
//   - the YAML file $METASTORE_CONFIG_PATH/metastore.yml (default /etc/metastore)
//   - environment variables
//
// Every attribute records which layer it came from, which
// "metastorectl configuration show" prints.
//
// # Key Configuration Options
//
//   - DATABASE_URL / METASTORE_DATABASE_URL: metadata database
//   - PORT, BIND_ADDRESS: HTTP listener
//   - METASTORE_LOG_LEVEL, METASTORE_LOG_FORMAT: logging
//   - METASTORE_KINDS: comma-separated kinds to serve
//   - METASTORE_AUDIT_ENABLED, METASTORE_AUDIT_DATABASE_URL: auditing
//
// Watch reloads the file on change; only log settings take effect without
// a restart.
package config
