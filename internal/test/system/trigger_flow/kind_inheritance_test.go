package system

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/beatgridgo/internal/app"
	"github.com/vk/beatgridgo/internal/catalog"
	"github.com/vk/beatgridgo/internal/event"
)

// Test for: beat events reaching triggers watching the parent kind.
func TestSystem_KindInheritanceRouting(t *testing.T) {
	// --- Arrange ---
	// The first trigger watches the base device-update kind and must see
	// beats too; the second watches cdj-status and must not.
	showHCL := `
		trigger "any_update" {
			on = "device-update"

			tracked_update = <<-EOT
				set_global("updates", get_global("updates", 0) + 1)
			EOT
		}

		trigger "cdj_only" {
			on = "cdj-status"

			tracked_update = <<-EOT
				set_global("cdj_updates", get_global("cdj_updates", 0) + 1)
			EOT
		}
	`
	tempDir := t.TempDir()
	showPath := filepath.Join(tempDir, "show.hcl")
	if err := os.WriteFile(showPath, []byte(showHCL), 0600); err != nil {
		t.Fatalf("failed to write show file: %v", err)
	}

	testApp, _ := app.SetupAppTest(t, app.Config{ShowPath: showPath})

	ctx := context.Background()
	dispatcher := testApp.Startup(ctx)

	// --- Act ---
	dispatcher.Dispatch(ctx, event.Event{Kind: catalog.KindBeat, Value: beatValue(3, 128)})
	dispatcher.Dispatch(ctx, event.Event{Kind: catalog.KindBeat, Value: beatValue(3, 128)})
	dispatcher.Close()

	// --- Assert ---
	// Only the device-update trigger counted; cdj_updates never got set.
	expected := cty.ObjectVal(map[string]cty.Value{
		"updates": cty.NumberIntVal(2),
	})
	got := testApp.Globals().Snapshot()
	if diff := cmp.Diff(expected.GoString(), got.GoString()); diff != "" {
		t.Errorf("Globals mismatch (-want +got):\n%s", diff)
	}
}
