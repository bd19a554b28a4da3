package importers

import (
	"net/url"
	"regexp"

	"github.com/mrlokans/wp2md/internal/entities"
	"github.com/mrlokans/wp2md/internal/wxr"
)

var (
	imageExtension = regexp.MustCompile(`(?i)\.(gif|jpe?g|png)$`)
	imageTag       = regexp.MustCompile(`(?i)<img[^>]*src="([^"]+?\.(?:gif|jpe?g|png))"[^>]*>`)
)

// CollectAttachedAssets returns one asset per attachment item whose URL ends
// in a supported image extension. ID, parent and URL are taken verbatim.
func CollectAttachedAssets(doc *wxr.Document) []entities.Asset {
	var assets []entities.Asset
	for _, item := range doc.ItemsOfType("attachment") {
		attachmentURL, ok := item.AttachmentURL()
		if !ok || !imageExtension.MatchString(attachmentURL) {
			continue
		}
		id, _ := item.PostID()
		parent, _ := item.ParentID()
		assets = append(assets, entities.Asset{
			ID:     id,
			PostID: parent,
			URL:    attachmentURL,
		})
	}
	return assets
}

// CollectScrapedAssets scans the body of every item of the given types for
// image tags and returns one asset per match, resolved against the item link.
// Items of any status are scanned.
func CollectScrapedAssets(doc *wxr.Document, types []string) []entities.Asset {
	var assets []entities.Asset
	for _, recordType := range types {
		for _, item := range doc.ItemsOfType(recordType) {
			assets = append(assets, scrapeItem(item)...)
		}
	}
	return assets
}

func scrapeItem(item *wxr.Item) []entities.Asset {
	postID, ok := item.PostID()
	if !ok {
		return nil
	}
	body, ok := item.Content()
	if !ok {
		return nil
	}
	link, _ := item.Link()

	var assets []entities.Asset
	for _, match := range imageTag.FindAllStringSubmatch(body, -1) {
		resolved, ok := ResolveURL(link, match[1])
		if !ok {
			continue
		}
		assets = append(assets, entities.Asset{
			ID:     entities.ScrapedAssetID,
			PostID: postID,
			URL:    resolved,
		})
	}
	return assets
}

// ResolveURL resolves ref against base. Protocol-relative and path-relative
// references are supported. It reports false when the result is not absolute.
func ResolveURL(base, ref string) (string, bool) {
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", false
	}

	resolved := baseURL.ResolveReference(refURL)
	if !resolved.IsAbs() || resolved.Host == "" {
		return "", false
	}
	return resolved.String(), true
}
