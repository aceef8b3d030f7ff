package content

import "time"

// NewsItem models a single news entry published on the site.
// The collection is always read and written as a whole; callers that edit a
// single item load the collection, modify it in memory and save it back.
type NewsItem struct {
	ID         string     `json:"id" validate:"required"`
	Title      string     `json:"title" validate:"required"`
	Category   string     `json:"category"`
	Content    string     `json:"content"`
	CoverImage string     `json:"coverImage"`
	Gallery    []string   `json:"gallery"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// SiteSettings holds the general presentation settings of the site.
type SiteSettings struct {
	SiteTitle       string `json:"siteTitle" validate:"required"`
	SiteDescription string `json:"siteDescription"`
	ContactEmail    string `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone    string `json:"contactPhone"`
	Address         string `json:"address"`
	FooterText      string `json:"footerText"`
}

// SocialLinks holds the site's social profile URLs.
type SocialLinks struct {
	Facebook  string `json:"facebook" validate:"omitempty,url"`
	Instagram string `json:"instagram" validate:"omitempty,url"`
	YouTube   string `json:"youtube" validate:"omitempty,url"`
	Twitter   string `json:"twitter" validate:"omitempty,url"`
	LinkedIn  string `json:"linkedin" validate:"omitempty,url"`
}

// AdminSettings holds the admin panel access configuration.
type AdminSettings struct {
	AccessCode     string `json:"accessCode" validate:"required"`
	SessionMinutes int    `json:"sessionMinutes" validate:"min=1"`
}

// ApplyDefaults sets fallback values after decode.
func (n *NewsItem) ApplyDefaults() {
	if n.Gallery == nil {
		n.Gallery = []string{}
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
}

// DefaultSiteSettings returns the built-in site settings used when nothing
// has been persisted yet.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		SiteTitle:       "My Site",
		SiteDescription: "Welcome to our website",
		ContactEmail:    "info@example.com",
		ContactPhone:    "",
		Address:         "",
		FooterText:      "© My Site. All rights reserved.",
	}
}

// DefaultSocialLinks returns the built-in social links.
func DefaultSocialLinks() SocialLinks {
	return SocialLinks{
		Facebook:  "https://facebook.com",
		Instagram: "https://instagram.com",
		YouTube:   "https://youtube.com",
	}
}

// DefaultAdminSettings returns the built-in admin settings.
func DefaultAdminSettings() AdminSettings {
	return AdminSettings{
		AccessCode:     "admin123",
		SessionMinutes: 60,
	}
}

// SampleNewsItems returns the built-in demo items served before any content
// has been saved. IDs are fixed so the admin panel can edit or remove them.
func SampleNewsItems() []NewsItem {
	created := time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)
	return []NewsItem{
		{
			ID:         "1",
			Title:      "Welcome to the new site",
			Category:   "announcements",
			Content:    "Our new website is live. Browse around and let us know what you think.",
			CoverImage: "images/news/welcome.jpg",
			Gallery:    []string{},
			CreatedAt:  created,
		},
		{
			ID:         "2",
			Title:      "Opening hours over the holidays",
			Category:   "news",
			Content:    "We will be open with reduced hours between December 24th and January 6th.",
			CoverImage: "images/news/holidays.jpg",
			Gallery:    []string{},
			CreatedAt:  created.Add(24 * time.Hour),
		},
		{
			ID:         "3",
			Title:      "New photo gallery online",
			Category:   "news",
			Content:    "A selection of pictures from this season's events is now available.",
			CoverImage: "images/news/gallery.jpg",
			Gallery:    []string{"images/news/gallery-1.jpg", "images/news/gallery-2.jpg"},
			CreatedAt:  created.Add(48 * time.Hour),
		},
	}
}
