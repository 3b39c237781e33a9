package models

import "time"

// SiteSettingsID is the key of the single settings row.
const SiteSettingsID = "site"

// SiteSettings holds the editable hero copy and social links for the public site.
type SiteSettings struct {
	ID              string    `gorm:"primaryKey;size:16" json:"-"`
	SiteName        string    `json:"site_name"`
	HeroTitle       string    `json:"hero_title"`
	HeroSubtitle    string    `json:"hero_subtitle"`
	HeroDescription string    `gorm:"type:text" json:"hero_description"`
	HeroImageURL    string    `json:"hero_image_url,omitempty"`
	SocialTwitter   string    `json:"social_twitter"`
	SocialLinkedin  string    `json:"social_linkedin"`
	SocialGithub    string    `json:"social_github"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DefaultSiteSettings is served until an admin saves the settings for the first time.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		ID:              SiteSettingsID,
		SiteName:        "QAWala",
		HeroTitle:       "Become a QA Engineer",
		HeroSubtitle:    "Manual and automation testing, taught by practitioners",
		HeroDescription: "Hands-on courses covering test design, Selenium, API testing and performance testing.",
	}
}
