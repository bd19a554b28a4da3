package importers

import "github.com/mrlokans/wp2md/internal/entities"

// Correlate attaches every asset to the records it belongs to. An asset
// belongs to a record when its parent is the record (attachment-of) or when
// it is the record's cover image (cover-of). The cover-of rule also sets the
// record's cover image filename. URLs are added once per record, in the order
// they are first matched. Assets are not modified.
func Correlate(records []*entities.Record, assets []entities.Asset) {
	for _, asset := range assets {
		for _, record := range records {
			attached := asset.PostID != "" && asset.PostID == record.Meta.ID
			cover := asset.Declared() &&
				record.Meta.CoverImageID != "" &&
				asset.ID == record.Meta.CoverImageID

			if cover {
				record.Frontmatter.CoverImage = asset.Filename()
			}
			if attached || cover {
				record.AddImageURL(asset.URL)
			}
		}
	}
}
