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

// GenerateSitemap writes sitemap.xml listing the home page, the blog index,
// every post and every taxonomy page.
func GenerateSitemap(destFs afero.Fs, outDir, baseURL string, posts []models.PostView, taxonomies []models.TagData, now time.Time) error {
	urls := []models.Url{
		{Loc: baseURL + "/", LastMod: now.Format("2006-01-02")},
		{Loc: baseURL + "/blog/", LastMod: now.Format("2006-01-02")},
	}
	for _, p := range posts {
		u := models.Url{Loc: baseURL + p.Link}
		if !p.DateObj.IsZero() {
			u.LastMod = p.DateObj.Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	for _, t := range taxonomies {
		urls = append(urls, models.Url{Loc: baseURL + t.Link})
	}

	output, err := xml.MarshalIndent(models.UrlSet{Urls: urls}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sitemap: %w", err)
	}
	return utils.WriteFileVFS(destFs, filepath.Join(outDir, "sitemap.xml"), append([]byte(xml.Header), output...))
}
