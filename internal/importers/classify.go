package importers

import "github.com/mrlokans/wp2md/internal/wxr"

// DefaultRecordType is processed when other types are not requested.
const DefaultRecordType = "post"

// excludedTypes are WordPress system types that never become records.
var excludedTypes = map[string]bool{
	"attachment":          true,
	"revision":            true,
	"nav_menu_item":       true,
	"custom_css":          true,
	"customize_changeset": true,
}

// ClassifyTypes returns the record types to process, in first-seen order.
func ClassifyTypes(doc *wxr.Document, includeOtherTypes bool) []string {
	if !includeOtherTypes {
		return []string{DefaultRecordType}
	}

	seen := make(map[string]bool)
	var types []string
	for _, item := range doc.Items() {
		postType, ok := item.PostType()
		if !ok || excludedTypes[postType] || seen[postType] {
			continue
		}
		seen[postType] = true
		types = append(types, postType)
	}
	return types
}
