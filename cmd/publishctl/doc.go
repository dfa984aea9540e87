// Command publishctl operates the publish engine from the shell. It can serve
// the admin API with the periodic sweep, or run one-off sweeps, audits,
// transitions and bulk operations against the configured store.
package main
