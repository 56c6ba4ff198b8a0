package generators

import (
	"encoding/xml"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/harunosuke/web/builder/models"
	"github.com/harunosuke/web/builder/utils"
)

// Feed describes the channel of an RSS document.
type Feed struct {
	Title       string
	Description string
	BaseURL     string
	Language    string
	Limit       int
}

// GenerateRSS writes rss.xml under outDir with the newest posts first.
// posts must already be sorted.
func GenerateRSS(destFs afero.Fs, outDir string, feed Feed, posts []models.PostView, now time.Time) error {
	if feed.Limit > 0 && len(posts) > feed.Limit {
		posts = posts[:feed.Limit]
	}

	items := make([]models.Item, 0, len(posts))
	for _, p := range posts {
		link := feed.BaseURL + p.Link
		items = append(items, models.Item{
			Title:       p.Title,
			Link:        link,
			Description: p.Excerpt,
			Category:    p.CategoryName,
			Author:      p.Author,
			PubDate:     p.DateObj.Format(time.RFC1123Z),
			Guid:        link,
		})
	}

	rss := models.Rss{
		Version: "2.0",
		Channel: models.Channel{
			Title:         feed.Title,
			Link:          feed.BaseURL + "/",
			Description:   feed.Description,
			Language:      feed.Language,
			LastBuildDate: now.Format(time.RFC1123Z),
			Items:         items,
		},
	}
	output, err := xml.MarshalIndent(rss, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode rss: %w", err)
	}
	return utils.WriteFileVFS(destFs, filepath.Join(outDir, "rss.xml"), append([]byte(xml.Header), output...))
}
