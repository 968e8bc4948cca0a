package models

import "time"

// Agency is a published GTM agency in the directory.
type Agency struct {
	ID              int64    `json:"id" yaml:"id"`
	Slug            string   `json:"slug" yaml:"slug"`
	Name            string   `json:"name" yaml:"name"`
	Description     string   `json:"description,omitempty" yaml:"description"`
	Headquarters    string   `json:"headquarters,omitempty" yaml:"headquarters"`
	LogoURL         string   `json:"logo_url,omitempty" yaml:"logo_url"`
	HeroAssetURL    string   `json:"hero_asset_url,omitempty" yaml:"hero_asset_url"`
	Specializations []string `json:"specializations" yaml:"specializations"`
	ServiceAreas    []string `json:"service_areas" yaml:"service_areas"`
	CategoryTags    []string `json:"category_tags,omitempty" yaml:"category_tags"`
	GlobalRank      *int     `json:"global_rank,omitempty" yaml:"global_rank"`
	FoundedYear     *int     `json:"founded_year,omitempty" yaml:"founded_year"`
	EmployeeCount   *int     `json:"employee_count,omitempty" yaml:"employee_count"`
	Website         string   `json:"website,omitempty" yaml:"website"`
	PricingModel    string   `json:"pricing_model,omitempty" yaml:"pricing_model"`
	MinBudget       *int     `json:"min_budget,omitempty" yaml:"min_budget"`
	Status          string   `json:"status" yaml:"status"`
	MetaDescription string   `json:"meta_description,omitempty" yaml:"meta_description"`
	Overview        string   `json:"overview,omitempty" yaml:"overview"`
	KeyServices     []string `json:"key_services,omitempty" yaml:"key_services"`
	AvgRating       *float64 `json:"avg_rating,omitempty" yaml:"avg_rating"`
	ReviewCount     *int     `json:"review_count,omitempty" yaml:"review_count"`
}

// Article is a published guide or news piece.
type Article struct {
	ID              int64      `json:"id" yaml:"id"`
	Slug            string     `json:"slug" yaml:"slug"`
	Title           string     `json:"title" yaml:"title"`
	Content         string     `json:"content" yaml:"content"`
	Excerpt         string     `json:"excerpt,omitempty" yaml:"excerpt"`
	Status          string     `json:"status" yaml:"status"`
	GuideType       string     `json:"guide_type,omitempty" yaml:"guide_type"`
	HeroAssetURL    string     `json:"hero_asset_url,omitempty" yaml:"hero_asset_url"`
	HeroAssetAlt    string     `json:"hero_asset_alt,omitempty" yaml:"hero_asset_alt"`
	MetaDescription string     `json:"meta_description,omitempty" yaml:"meta_description"`
	WordCount       *int       `json:"word_count,omitempty" yaml:"word_count"`
	PublishedAt     *time.Time `json:"published_at,omitempty" yaml:"published_at"`
	Category        string     `json:"category,omitempty" yaml:"category"`
}

type FAQ struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// SEOPage is a category or location landing page.
type SEOPage struct {
	ID              int64    `json:"id" yaml:"id"`
	Slug            string   `json:"slug" yaml:"slug"`
	PageType        string   `json:"page_type" yaml:"page_type"`
	Name            string   `json:"name" yaml:"name"`
	DisplayName     string   `json:"display_name,omitempty" yaml:"display_name"`
	Description     string   `json:"description,omitempty" yaml:"description"`
	MarketHighlight string   `json:"market_highlight,omitempty" yaml:"market_highlight"`
	HeroImageURL    string   `json:"hero_image_url,omitempty" yaml:"hero_image_url"`
	Country         string   `json:"country,omitempty" yaml:"country"`
	Region          string   `json:"region,omitempty" yaml:"region"`
	Timezone        string   `json:"timezone,omitempty" yaml:"timezone"`
	Currency        string   `json:"currency,omitempty" yaml:"currency"`
	Services        []string `json:"services" yaml:"services"`
	Industries      []string `json:"industries" yaml:"industries"`
	RelatedPages    []string `json:"related_pages" yaml:"related_pages"`
	FAQs            []FAQ    `json:"faqs" yaml:"faqs"`
	MetaTitle       string   `json:"meta_title,omitempty" yaml:"meta_title"`
	MetaDescription string   `json:"meta_description,omitempty" yaml:"meta_description"`
	Status          string   `json:"status" yaml:"status"`
}

const (
	StatusPublished = "published"

	PageTypeCategory = "category"
	PageTypeLocation = "location"
)

// Title picks the display name of the page, falling back to its name.
func (p SEOPage) Title() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Name
}

// ContactRequest is what the contact form and the concierge "talk to us" action submit.
type ContactRequest struct {
	FullName       string `json:"fullName" form:"fullName" binding:"required"`
	Email          string `json:"email" form:"email" binding:"required,email"`
	CompanyName    string `json:"companyName,omitempty" form:"companyName"`
	Message        string `json:"message,omitempty" form:"message"`
	ScheduleCall   bool   `json:"scheduleCall,omitempty" form:"scheduleCall"`
	AgencySlug     string `json:"agencySlug,omitempty" form:"agencySlug"`
	SubmissionType string `json:"submissionType,omitempty" form:"submissionType"`
}
