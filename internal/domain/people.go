package domain

import "time"

// PhotoCredit is an attribution string lifted out of a subject's body text.
// Order is the zero-based position among credit paragraphs in document order.
type PhotoCredit struct {
	Text  string `json:"text"`
	Order int    `json:"order"`
}

// ImageDescriptor describes one valid image file inside a subject directory.
// Order is the zero-based position among valid images in listing order.
type ImageDescriptor struct {
	Filename     string    `json:"filename"`
	Path         string    `json:"path"`
	FullPath     string    `json:"full_path"`
	Alt          string    `json:"alt"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	Order        int       `json:"order"`
	Credit       string    `json:"credit,omitempty"`
}

// SubjectContent is the cleaned output of the markup extractor.
type SubjectContent struct {
	HTML         string        `json:"html"`
	Text         string        `json:"text"`
	PhotoCredits []PhotoCredit `json:"photo_credits"`
	WordCount    int           `json:"word_count"`
}

// SubjectMetadata is derived at scan time and never mutated afterwards.
type SubjectMetadata struct {
	LastModified  time.Time `json:"last_modified"`
	WordCount     int       `json:"word_count"`
	ImageCount    int       `json:"image_count"`
	HasContent    bool      `json:"has_content"`
	ContentLength int       `json:"content_length"`
}

// SubjectRecord is one fully built subject. Records are immutable once
// constructed and replaced wholesale on rescan.
type SubjectRecord struct {
	Slug     string            `json:"slug"`
	Name     string            `json:"name"`
	DirName  string            `json:"dir_name"`
	Content  SubjectContent    `json:"content"`
	Images   []ImageDescriptor `json:"images"`
	Metadata SubjectMetadata   `json:"metadata"`
}

// ExtractedContent is the raw extractor result before slug/length validation.
type ExtractedContent struct {
	HTML         string
	Text         string
	PhotoCredits []PhotoCredit
	WordCount    int
}

// Profile sources.
const (
	ProfileSourceDatabase = "database"
	ProfileSourceFile     = "file"
)

// ResolvedProfile is the ephemeral merge of an override row and a subject
// record. Text fields come from whichever branch Source names; images always
// come from the file source.
type ResolvedProfile struct {
	Slug      string            `json:"slug"`
	Name      string            `json:"name"`
	HTML      string            `json:"html"`
	Text      string            `json:"text"`
	WordCount int               `json:"word_count"`
	Images    []ImageDescriptor `json:"images"`
	Source    string            `json:"source"`
	UpdatedBy string            `json:"updated_by,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// ProfileSummary is the list projection exposed to admin collaborators.
type ProfileSummary struct {
	Slug           string    `json:"slug"`
	Name           string    `json:"name"`
	LastUpdated    time.Time `json:"last_updated"`
	UpdatedBy      string    `json:"updated_by,omitempty"`
	ContentPreview string    `json:"content_preview"`
	WordCount      int       `json:"word_count"`
	MainImage      string    `json:"main_image,omitempty"`
	Source         string    `json:"source"`
}
