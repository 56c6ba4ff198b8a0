// defines the data structures used by templates and generators
package models

import (
	"encoding/xml"
	"html/template"
	"time"
)

// --- Heading / TOC Structure ---

// Heading is one heading of a rendered article. ID is empty when the title
// has no characters usable in an anchor.
type Heading struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Level int    `json:"level"`
}

// Anchorable reports whether the heading can be linked to.
func (h Heading) Anchorable() bool {
	return h.ID != ""
}

// Post is a markdown article with its frontmatter and derived fields.
type Post struct {
	Slug     string
	Title    string
	Excerpt  string
	Date     string // ISO date as written in frontmatter
	DateObj  time.Time
	Author   string
	Category string
	Tags     []string
	Content  string // raw markdown without frontmatter
	ReadTime int    // minutes, characters/200 rounded up
	Image    string
	Draft    bool
}

// PostView is a post prepared for templates.
type PostView struct {
	Post
	Link         string
	CategorySlug string
	CategoryName string
	CategoryLink string
	TagLinks     []TagData
}

// TagData represents a tag or category and its frequency.
type TagData struct {
	Name  string
	Slug  string
	Link  string
	Count int
}

// Paginator holds state for pagination
type Paginator struct {
	CurrentPage int
	TotalPages  int
	PrevURL     string
	NextURL     string
	HasPrev     bool
	HasNext     bool
}

// PageData is the context passed to HTML templates.
type PageData struct {
	Title       string
	TabTitle    string
	Description string
	BaseURL     string
	Language    string
	Theme       string
	Permalink   string
	Image       string

	Post     *PostView
	Content  template.HTML
	Headings []Heading
	TOCData  template.JS
	HasMath  bool
	HasCode  bool
	// ClientMath asks the browser to typeset math left as TeX.
	ClientMath bool

	Posts      []PostView
	Categories []TagData
	Tags       []TagData
	ListTitle  string
	Paginator  Paginator

	Identity   string // content hash of the rendered document
	SiteTitle  string
	LiveReload bool

	Assets       map[string]string
	BuildVersion int64
}

// --- Sitemap Structures ---

type UrlSet struct {
	XMLName xml.Name `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 urlset"`
	Urls    []Url    `xml:"url"`
}

type Url struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// --- RSS Structures ---

type Rss struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel Channel  `xml:"channel"`
}

type Channel struct {
	Title         string `xml:"title"`
	Link          string `xml:"link"`
	Description   string `xml:"description"`
	Language      string `xml:"language,omitempty"`
	LastBuildDate string `xml:"lastBuildDate,omitempty"`
	Items         []Item `xml:"item"`
}

type Item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Category    string `xml:"category,omitempty"`
	Author      string `xml:"author,omitempty"`
	PubDate     string `xml:"pubDate"`
	Guid        string `xml:"guid"`
}
