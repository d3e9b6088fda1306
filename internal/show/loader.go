package show

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/beatgridgo/internal/ctxlog"
	"github.com/vk/beatgridgo/internal/fsutil"
)

// Load reads every .hcl file under path (a single file or a directory) and
// merges their blocks into one Document. Structural problems (unparsable
// HCL, unknown blocks, missing labels) fail the load; the snippet strings
// inside trigger blocks are not compiled here.
func Load(ctx context.Context, path string) (*Document, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Show loader started.", "path", path)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("show path: %w", err)
	}

	var files []string
	if info.IsDir() {
		files, err = fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("scanning show directory: %w", err)
		}
	} else {
		files = []string{path}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found under %s", path)
	}
	logger.Debug("Discovered show files.", "count", len(files))

	parser := hclparse.NewParser()
	doc := &Document{}

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse show file %s: %w", file, diags)
		}

		var part Document
		diags = gohcl.DecodeBody(hclFile.Body, nil, &part)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode show file %s: %w", file, diags)
		}

		doc.Shared = append(doc.Shared, part.Shared...)
		doc.Triggers = append(doc.Triggers, part.Triggers...)
	}

	if err := validate(doc); err != nil {
		return nil, err
	}

	logger.Debug("Show loaded.", "shared_blocks", len(doc.Shared), "triggers", len(doc.Triggers))
	return doc, nil
}

// validate rejects duplicate trigger names, so slot ownership stays
// unambiguous.
func validate(doc *Document) error {
	seen := make(map[string]bool)
	for _, trig := range doc.Triggers {
		if seen[trig.Name] {
			return fmt.Errorf("trigger %q declared more than once", trig.Name)
		}
		seen[trig.Name] = true
	}
	return nil
}
