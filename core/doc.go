// Package core contains the credential orchestration domain: provider
// descriptors and auth method variants, the single-use authorization state
// store, provider matching, configuration patch merging, and the connect
// service that drives OAuth and API-key flows. Transport and persistence
// adapters depend on this package; core depends on neither.
package core
