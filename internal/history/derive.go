package history

import (
	"bytes"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/gameplanhq/gameplan/internal/mdedit"
)

// DeriveItem extracts (id, title, status) from a tracked README document so
// hand edits can be folded back into the index. Frontmatter wins when
// present; otherwise the "# <id>: <title>" heading and the **Status** field
// line are used. id comes back empty for documents in neither shape.
func DeriveItem(content []byte) (id, title, status string) {
	var fm struct {
		ID     string `yaml:"id"`
		Title  string `yaml:"title"`
		Status string `yaml:"status"`
	}
	if _, err := frontmatter.Parse(bytes.NewReader(content), &fm); err == nil && fm.ID != "" {
		return fm.ID, fm.Title, fm.Status
	}

	doc := string(content)
	heading := mdedit.Title(doc)
	if heading == "" {
		return "", "", ""
	}
	id, title, found := strings.Cut(heading, ":")
	if !found {
		return "", "", ""
	}
	id = strings.TrimSpace(id)
	title = strings.TrimSpace(title)
	status, _ = mdedit.Field(doc, "Status")
	return id, title, status
}

// adapterFromPath extracts the adapter name from a workspace-relative README
// path like tracking/areas/jira/PROJ-1-fix-login/README.md.
func adapterFromPath(rel string) string {
	parts := strings.Split(rel, "/")
	if len(parts) >= 4 && parts[0] == "tracking" && parts[1] == "areas" {
		return parts[2]
	}
	return ""
}

// isTrackedReadme reports whether rel names an item README under tracking/.
func isTrackedReadme(rel string) bool {
	return adapterFromPath(rel) != "" && strings.HasSuffix(rel, "/README.md")
}
