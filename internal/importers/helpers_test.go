package importers

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wp2md/internal/wxr"
)

const exportHeader = `<?xml version="1.0" encoding="UTF-8" ?>
<rss version="2.0"
	xmlns:excerpt="http://wordpress.org/export/1.2/excerpt/"
	xmlns:content="http://purl.org/rss/1.0/modules/content/"
	xmlns:dc="http://purl.org/dc/elements/1.1/"
	xmlns:wp="http://wordpress.org/export/1.2/"
>
<channel>
<title>Site Test</title>
`

const exportFooter = `</channel>
</rss>`

func parseExport(t *testing.T, items ...string) *wxr.Document {
	t.Helper()
	doc, err := wxr.Read(strings.NewReader(exportHeader + strings.Join(items, "\n") + exportFooter))
	require.NoError(t, err)
	return doc
}

// typedItem renders a minimal valid item of postType.
func typedItem(id, postType string) string {
	return fmt.Sprintf(`<item>
	<title>Item %[1]s</title>
	<link>https://site.test/%[2]s/%[1]s/</link>
	<pubDate>Wed, 01 Jan 2020 12:00:00 +0000</pubDate>
	<dc:creator>admin</dc:creator>
	<wp:post_id>%[1]s</wp:post_id>
	<wp:post_name>item-%[1]s</wp:post_name>
	<wp:status>publish</wp:status>
	<wp:post_type>%[2]s</wp:post_type>
</item>`, id, postType)
}

func attachmentItem(id, parent, url string) string {
	return fmt.Sprintf(`<item>
	<title>Attachment %[1]s</title>
	<dc:creator>admin</dc:creator>
	<wp:post_id>%[1]s</wp:post_id>
	<wp:post_parent>%[2]s</wp:post_parent>
	<wp:status>inherit</wp:status>
	<wp:post_type>attachment</wp:post_type>
	<wp:attachment_url>%[3]s</wp:attachment_url>
</item>`, id, parent, url)
}

type stubTranslator struct {
	calls int
	err   error
}

func (s *stubTranslator) Translate(rawBody string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "md:" + strings.TrimSpace(rawBody), nil
}
