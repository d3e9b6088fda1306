// Package show loads show configuration files: the HCL documents declaring
// shared-definition blocks and triggers, with each trigger's expression
// attributes carried as raw snippet text for the compiler. Loading here is
// purely structural; snippets are compiled later, by the trigger layer, so
// a bad snippet reports against its own title rather than failing the whole
// file.
package show
