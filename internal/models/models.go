package models

import (
	"errors"
	"time"
)

// Document lifecycle states. A document moves pending -> processing ->
// completed|failed exactly once per processing attempt.
const (
	DocumentPending    = "pending"
	DocumentProcessing = "processing"
	DocumentCompleted  = "completed"
	DocumentFailed     = "failed"
)

const (
	SourceTypeFile = "file"
	SourceTypeLink = "link"
)

var ErrFileListSkew = errors.New("file metadata lists out of sync")

// FileMeta describes one uploaded file. Profiles store file metadata as
// parallel lists (name/type/size/url share an index); FileMeta is the
// materialized view of one index.
type FileMeta struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

type BusinessProfile struct {
	TenantID      string    `json:"tenant_id"`
	BusinessName  string    `json:"business_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Address       string    `json:"address"`
	Description   string    `json:"description"`
	Links         []string  `json:"links"`
	FileNames     []string  `json:"file_names"`
	FileTypes     []string  `json:"file_types"`
	FileSizes     []int64   `json:"file_sizes"`
	FileURLs      []string  `json:"file_urls"`
	LeadFileNames []string  `json:"lead_file_names"`
	LeadFileTypes []string  `json:"lead_file_types"`
	LeadFileSizes []int64   `json:"lead_file_sizes"`
	LeadFileURLs  []string  `json:"lead_file_urls"`
	LogoURL       string    `json:"logo_url,omitempty"`
	VoiceSID      string    `json:"voice_sid,omitempty"`
	VoiceToken    string    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewBusinessProfile returns the defaulted profile created on a tenant's
// first access.
func NewBusinessProfile(tenantID string) BusinessProfile {
	now := time.Now().UTC()
	return BusinessProfile{
		TenantID:  tenantID,
		Links:     []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddFile appends one file's metadata to all four parallel lists in one
// step, preserving the equal-length invariant.
func (p *BusinessProfile) AddFile(f FileMeta) {
	p.FileNames = append(p.FileNames, f.Name)
	p.FileTypes = append(p.FileTypes, f.Type)
	p.FileSizes = append(p.FileSizes, f.Size)
	p.FileURLs = append(p.FileURLs, f.URL)
	p.UpdatedAt = time.Now().UTC()
}

// RemoveFile drops index i from all four parallel lists atomically.
func (p *BusinessProfile) RemoveFile(i int) error {
	if err := p.checkFileLists(); err != nil {
		return err
	}
	if i < 0 || i >= len(p.FileNames) {
		return errors.New("file index out of range")
	}
	p.FileNames = append(p.FileNames[:i], p.FileNames[i+1:]...)
	p.FileTypes = append(p.FileTypes[:i], p.FileTypes[i+1:]...)
	p.FileSizes = append(p.FileSizes[:i], p.FileSizes[i+1:]...)
	p.FileURLs = append(p.FileURLs[:i], p.FileURLs[i+1:]...)
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Files materializes the parallel lists. Errors if the lists have skewed,
// which cannot happen when mutation goes through AddFile/RemoveFile.
func (p *BusinessProfile) Files() ([]FileMeta, error) {
	if err := p.checkFileLists(); err != nil {
		return nil, err
	}
	out := make([]FileMeta, 0, len(p.FileNames))
	for i := range p.FileNames {
		out = append(out, FileMeta{
			Name: p.FileNames[i],
			Type: p.FileTypes[i],
			Size: p.FileSizes[i],
			URL:  p.FileURLs[i],
		})
	}
	return out, nil
}

func (p *BusinessProfile) checkFileLists() error {
	n := len(p.FileNames)
	if len(p.FileTypes) != n || len(p.FileSizes) != n || len(p.FileURLs) != n {
		return ErrFileListSkew
	}
	return nil
}

type Document struct {
	ID           string     `json:"id"`
	TenantID     string     `json:"tenant_id"`
	SourceType   string     `json:"source_type"`
	SourceURL    string     `json:"source_url"`
	Title        string     `json:"title"`
	ContentType  string     `json:"content_type"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Content      string     `json:"content,omitempty"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// DocumentChunk is an immutable bounded slice of a document's extracted
// text. DocumentTitle and DocumentSource are populated on reads that join
// the parent document.
type DocumentChunk struct {
	ID             string    `json:"id"`
	DocumentID     string    `json:"document_id"`
	TenantID       string    `json:"tenant_id"`
	ChunkIndex     int       `json:"chunk_index"`
	Content        string    `json:"content"`
	WordCount      int       `json:"word_count"`
	Summary        string    `json:"summary"`
	Keywords       []string  `json:"keywords"`
	DocumentTitle  string    `json:"document_title,omitempty"`
	DocumentSource string    `json:"document_source,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type Lead struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	Interest  string    `json:"interest"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

type ProcessingStatus struct {
	TotalDocuments     int `json:"total_documents"`
	ProcessedDocuments int `json:"processed_documents"`
	FailedDocuments    int `json:"failed_documents"`
}

type ContactInfo struct {
	Emails      []string `json:"emails"`
	Phones      []string `json:"phones"`
	Addresses   []string `json:"addresses"`
	SocialLinks []string `json:"social_links"`
}

type BusinessInfo struct {
	Hours         []string `json:"hours"`
	Services      []string `json:"services"`
	Products      []string `json:"products"`
	AboutSections []string `json:"about_sections"`
	Testimonials  []string `json:"testimonials"`
	TeamMembers   []string `json:"team_members"`
}

// ScrapedWebData is the transient result of scraping one URL. It lives only
// inside an aggregation cache entry and is recomputed on expiry.
type ScrapedWebData struct {
	URL            string           `json:"url"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Keywords       []string         `json:"keywords"`
	MainContent    string           `json:"main_content"`
	Contact        ContactInfo      `json:"contact"`
	Business       BusinessInfo     `json:"business"`
	StructuredData []map[string]any `json:"structured_data"`
	Navigation     []string         `json:"navigation"`
	FullText       string           `json:"full_text"`
	ScrapedAt      time.Time        `json:"scraped_at"`
}

type DocumentKnowledge struct {
	TotalDocuments     int             `json:"total_documents"`
	ProcessedDocuments int             `json:"processed_documents"`
	FailedDocuments    int             `json:"failed_documents"`
	TopKeywords        []string        `json:"top_keywords"`
	Chunks             []DocumentChunk `json:"chunks"`
}

type LeadInsights struct {
	TotalLeads      int      `json:"total_leads"`
	RecentInterests []string `json:"recent_interests"`
	ConversionReady int      `json:"conversion_ready"`
}

type CompetitiveIntel struct {
	MarketPosition   string   `json:"market_position"`
	UniqueValueProps []string `json:"unique_value_props"`
	Keywords         []string `json:"keywords"`
}

type ContentAnalysis struct {
	BrandVoice     string   `json:"brand_voice"`
	ExpertiseAreas []string `json:"expertise_areas"`
	PainPoints     []string `json:"pain_points"`
}

type OperationalData struct {
	Emails  []string `json:"emails"`
	Phones  []string `json:"phones"`
	Address string   `json:"address"`
	Hours   []string `json:"hours"`
}

// AggregatedBusinessData is the merged bundle handed by value to the prompt
// builder. One instance per (tenant, cache generation).
type AggregatedBusinessData struct {
	Profile     BusinessProfile   `json:"profile"`
	WebData     []ScrapedWebData  `json:"web_data"`
	Documents   DocumentKnowledge `json:"documents"`
	Leads       LeadInsights      `json:"leads"`
	Competitive CompetitiveIntel  `json:"competitive"`
	Content     ContentAnalysis   `json:"content"`
	Operational OperationalData   `json:"operational"`
	LastUpdated time.Time         `json:"last_updated"`
}

// PromptContext carries per-call hints supplied by the voice integration.
type PromptContext struct {
	CallType             string   `json:"call_type"`
	CustomerIntent       string   `json:"customer_intent,omitempty"`
	TimeOfDay            string   `json:"time_of_day,omitempty"`
	Urgency              string   `json:"urgency,omitempty"`
	PreviousInteractions []string `json:"previous_interactions,omitempty"`
	SpecificTopic        string   `json:"specific_topic,omitempty"`
}

type PromptMetadata struct {
	DataSourcesUsed []string  `json:"data_sources_used"`
	ConfidenceScore int       `json:"confidence_score"`
	LastUpdated     time.Time `json:"last_updated"`
}

type GeneratedPrompt struct {
	SystemPrompt        string         `json:"system_prompt"`
	ContextualKnowledge []string       `json:"contextual_knowledge"`
	SuggestedResponses  []string       `json:"suggested_responses"`
	HandoffTriggers     []string       `json:"handoff_triggers"`
	Metadata            PromptMetadata `json:"metadata"`
}
