// Package workspace holds the single process-wide shared workspace: the
// mutex-guarded registry of values and functions that shared-definition
// loads install and that every compiled expression can reference. It has
// process lifetime; nothing ever clears it short of a restart.
package workspace
