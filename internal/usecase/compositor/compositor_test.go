package compositor

import (
	"testing"

	"github.com/inkline-team/inkline/internal/domain/entities"
)

func TestDefaultsBothVisible(t *testing.T) {
	c := New()
	if !c.Visible(LayerAIDrawings) || !c.Visible(LayerMyNotes) {
		t.Fatal("expected both layers visible by default")
	}
}

func TestHiddenLayerRendersAtLowOpacity(t *testing.T) {
	c := New()

	if got := c.Opacity(LayerMyNotes); got != 1.0 {
		t.Fatalf("expected full opacity, got %f", got)
	}

	c.SetVisible(LayerMyNotes, false)
	if got := c.Opacity(LayerMyNotes); got != HiddenOpacity {
		t.Fatalf("expected hidden opacity %f, got %f", HiddenOpacity, got)
	}
	// The other layer is independent
	if got := c.Opacity(LayerAIDrawings); got != 1.0 {
		t.Fatalf("expected ai layer unaffected, got %f", got)
	}
}

func TestToggle(t *testing.T) {
	c := New()
	if c.Toggle(LayerAIDrawings) {
		t.Fatal("expected toggle off")
	}
	if !c.Toggle(LayerAIDrawings) {
		t.Fatal("expected toggle back on")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	c := New()
	c.SetVisible(LayerAIDrawings, false)

	snap := c.Snapshot()
	if snap.AIDrawings || !snap.MyNotes {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	other := New()
	other.Restore(snap)
	if other.Visible(LayerAIDrawings) || !other.Visible(LayerMyNotes) {
		t.Fatal("expected restored flags to match snapshot")
	}

	other.Restore(entities.DefaultLayerVisibility())
	if !other.Visible(LayerAIDrawings) {
		t.Fatal("expected defaults restored")
	}
}
