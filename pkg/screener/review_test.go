package screener

import (
	"strings"
	"testing"

	"github.com/kithkit/kithkit/pkg/manifest"
)

func TestBuildReviewContext_CarriesDataMarker(t *testing.T) {
	m := &manifest.Manifest{Name: "weather-lookup"}
	ctx := BuildReviewContext(m, "some skill body text")

	if ctx.DataMarker == "" {
		t.Fatal("DataMarker must not be empty")
	}
	if !strings.Contains(ctx.Instructions, "data marker") {
		t.Errorf("Instructions should reference the data marker, got %q", ctx.Instructions)
	}
	if ctx.Content != "some skill body text" {
		t.Errorf("Content = %q", ctx.Content)
	}
	if len(ctx.Rubric) != 8 {
		t.Errorf("Rubric has %d entries, want 8", len(ctx.Rubric))
	}
	if ctx.Metadata.Name != "weather-lookup" {
		t.Errorf("Metadata.Name = %q", ctx.Metadata.Name)
	}
}
