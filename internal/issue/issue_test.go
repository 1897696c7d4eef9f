// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestId_Constants(t *testing.T) {
	ids := []Id{
		ConfigLoadFailedId,
		SourcesNotFoundId,
		SourceDirNotFoundId,
		InnoextractNotFoundId,
		GOGDBUnavailableId,
		ManifestWriteFailedId,
		ExtractionFailedId,
	}

	seen := make(map[Id]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true

		if Get(id) == nil {
			t.Errorf("Get(%d) returned nil, every Id needs a catalog entry", id)
		}
	}

	if ConfigLoadFailedId != 1 {
		t.Errorf("ConfigLoadFailedId = %d, want 1", ConfigLoadFailedId)
	}
}

func TestIssue_Id(t *testing.T) {
	issue := Get(InnoextractNotFoundId)
	if issue == nil {
		t.Fatal("Get(InnoextractNotFoundId) returned nil")
	}

	if issue.Id() != InnoextractNotFoundId {
		t.Errorf("issue.Id() = %d, want %d", issue.Id(), InnoextractNotFoundId)
	}
}

func TestIssue_MarkdownMsg(t *testing.T) {
	issue := Get(SourcesNotFoundId)
	if issue == nil {
		t.Fatal("Get(SourcesNotFoundId) returned nil")
	}

	msg := string(issue.mdMsg)
	for _, want := range []string{"CONFIG_PATH", "source_type", "default_destination_directory"} {
		if !strings.Contains(msg, want) {
			t.Errorf("markdown should mention %q", want)
		}
	}
}

func TestCatalog_KeyedById(t *testing.T) {
	if len(issues) != 7 {
		t.Fatalf("len(issues) = %d, want 7", len(issues))
	}
	for id, entry := range issues {
		if entry.Id() != id {
			t.Errorf("issues[%d].Id() = %d", id, entry.Id())
		}
	}
}

//nolint:paralleltest // swaps the package-level renderer
func TestIssue_Render_AppendsLinks(t *testing.T) {
	var gotMarkdown, gotStyle string
	orig := render
	render = func(in, stylePath string) (string, error) {
		gotMarkdown, gotStyle = in, stylePath
		return "rendered", nil
	}
	t.Cleanup(func() { render = orig })

	out, err := Get(GOGDBUnavailableId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if out != "rendered" {
		t.Errorf("Render() = %q, want %q", out, "rendered")
	}
	if gotStyle != "notty" {
		t.Errorf("style = %q, want notty", gotStyle)
	}
	if !strings.Contains(gotMarkdown, "## See also") || !strings.Contains(gotMarkdown, "<https://www.gogdb.org/>") {
		t.Errorf("rendered markdown missing link section:\n%s", gotMarkdown)
	}
}

//nolint:paralleltest // uses the real glamour renderer
func TestIssue_Render_Glamour(t *testing.T) {
	out, err := Get(ManifestWriteFailedId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(out, "MANIFESTS_OUTPUT_DIR") {
		t.Errorf("Render() output should contain the env var name, got:\n%s", out)
	}
}
