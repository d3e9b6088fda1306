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

// beatValue builds a minimal beat event payload carrying just the fields
// the show under test reads.
func beatValue(device, tempo int64) cty.Value {
	return cty.ObjectVal(map[string]cty.Value{
		"device_number":   cty.NumberIntVal(device),
		"effective_tempo": cty.NumberIntVal(tempo),
	})
}

// Test for: trigger edge walk driving globals through a full show.
func TestSystem_ActivationFlow(t *testing.T) {
	// --- Arrange ---
	// A trigger that trips on fast beats, records the activating device,
	// counts beats while tripped, and leaves a marker when it releases.
	showHCL := `
		trigger "fast_beats" {
			on      = "beat"
			enabled = "effective_tempo >= 140"

			activation = <<-EOT
				set_global("activated_on", device_number)
			EOT

			tracked_update = <<-EOT
				set_global("beat_count", get_global("beat_count", 0) + 1)
			EOT

			deactivation = <<-EOT
				set_global("released", true)
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

	if len(testApp.Triggers()) != 1 {
		t.Fatalf("expected 1 compiled trigger, got %d", len(testApp.Triggers()))
	}

	// --- Act ---
	// Two fast beats trip the trigger and count; the slow one releases it.
	dispatcher.Dispatch(ctx, event.Event{Kind: catalog.KindBeat, Value: beatValue(2, 150)})
	dispatcher.Dispatch(ctx, event.Event{Kind: catalog.KindBeat, Value: beatValue(2, 148)})
	dispatcher.Dispatch(ctx, event.Event{Kind: catalog.KindBeat, Value: beatValue(2, 120)})
	dispatcher.Close()

	// --- Assert ---
	expected := cty.ObjectVal(map[string]cty.Value{
		"activated_on": cty.NumberIntVal(2),
		"beat_count":   cty.NumberIntVal(2),
		"released":     cty.True,
	})
	got := testApp.Globals().Snapshot()
	if diff := cmp.Diff(expected.GoString(), got.GoString()); diff != "" {
		t.Errorf("Globals mismatch (-want +got):\n%s", diff)
	}
	if testApp.Triggers()[0].Active() {
		t.Error("trigger should be released after the slow beat")
	}
}
