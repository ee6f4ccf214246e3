package formatter

import (
	"strings"
	"testing"

	"github.com/desertmoss/linkhive/internal/tasks"
)

func TestRenderImportReport(t *testing.T) {
	t.Run("IncludesCounts", func(t *testing.T) {
		out := RenderImportReport(&tasks.ImportReport{
			CollectionsCreated: 3,
			BookmarksCreated:   17,
			InvalidSkipped:     2,
		})

		for _, want := range []string{"Import complete", "3", "17", "Invalid skipped"} {
			if !strings.Contains(out, want) {
				t.Errorf("report missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("OmitsSkippedLineWhenClean", func(t *testing.T) {
		out := RenderImportReport(&tasks.ImportReport{BookmarksCreated: 5})

		if strings.Contains(out, "Invalid skipped") {
			t.Errorf("clean import should not mention skipped entries:\n%s", out)
		}
	})
}

func TestRenderProgress(t *testing.T) {
	out := RenderProgress("job-1", 40, tasks.StatusProcessing)
	for _, want := range []string{"job-1", "40", tasks.StatusProcessing} {
		if !strings.Contains(out, want) {
			t.Errorf("progress line missing %q: %s", want, out)
		}
	}

	done := RenderProgress("job-1", 100, tasks.StatusCompleted)
	if !strings.Contains(done, tasks.StatusCompleted) {
		t.Errorf("completed line missing status: %s", done)
	}
}
