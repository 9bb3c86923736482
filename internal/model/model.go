// internal/model/model.go
package model

// AgeBucket is one of the three fixed file-age ranges an analysis is partitioned into.
type AgeBucket string

const (
	LessThanOneYear    AgeBucket = "lessThanOneYear"
	OneToThreeYears    AgeBucket = "oneToThreeYears"
	MoreThanThreeYears AgeBucket = "moreThanThreeYears"
)

// AgeBuckets lists every bucket, youngest first.
var AgeBuckets = []AgeBucket{LessThanOneYear, OneToThreeYears, MoreThanThreeYears}

// Valid reports whether b is one of the known buckets.
func (b AgeBucket) Valid() bool {
	switch b {
	case LessThanOneYear, OneToThreeYears, MoreThanThreeYears:
		return true
	}
	return false
}

// Label returns a human readable name for the bucket.
func (b AgeBucket) Label() string {
	switch b {
	case LessThanOneYear:
		return "< 1 year"
	case OneToThreeYears:
		return "1-3 years"
	case MoreThanThreeYears:
		return "> 3 years"
	}
	return string(b)
}

// FileTypeCategory is the coarse file-format label assigned by the backend.
type FileTypeCategory string

const (
	Documents     FileTypeCategory = "documents"
	Spreadsheets  FileTypeCategory = "spreadsheets"
	Presentations FileTypeCategory = "presentations"
	PDFs          FileTypeCategory = "pdfs"
	Images        FileTypeCategory = "images"
	Others        FileTypeCategory = "others"
)

// FileTypeCategories lists the known categories in display order.
var FileTypeCategories = []FileTypeCategory{Documents, Spreadsheets, Presentations, PDFs, Images, Others}

// RiskCategory is one of the four coarse sensitivity classifications.
type RiskCategory string

const (
	RiskPII          RiskCategory = "pii"
	RiskFinancial    RiskCategory = "financial"
	RiskLegal        RiskCategory = "legal"
	RiskConfidential RiskCategory = "confidential"
)

// RiskCategories lists the categories in rule order.
var RiskCategories = []RiskCategory{RiskPII, RiskFinancial, RiskLegal, RiskConfidential}

// FileRef identifies a Drive file referenced by an analysis or a listing.
type FileRef struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType,omitempty"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	Owner        string `json:"owner,omitempty"`
	WebViewLink  string `json:"webViewLink,omitempty"`
	Size         int64  `json:"size"`
}

// Key returns the identity used for deduplication: the file ID, or the
// name when the backend omitted the ID.
func (f FileRef) Key() string {
	if f.ID != "" {
		return f.ID
	}
	return "name:" + f.Name
}

// Identified reports whether f names a file at all. Findings whose file is
// missing or null decode to a FileRef with neither ID nor name.
func (f FileRef) Identified() bool {
	return f.ID != "" || f.Name != ""
}

// FindingRef is a single sensitive-content detection tied to one file.
type FindingRef struct {
	File        FileRef  `json:"file"`
	FindingType string   `json:"findingType"`
	Confidence  *float64 `json:"confidence,omitempty"`
}

// TypeStat holds per (bucket, file type) totals.
type TypeStat struct {
	Count      int     `json:"count"`
	Size       int64   `json:"size"`
	Percentage float64 `json:"percentage"`
}

// RiskStat holds per (bucket, risk category) totals.
type RiskStat struct {
	Count      int          `json:"count"`
	Confidence float64      `json:"confidence"`
	Percentage float64      `json:"percentage"`
	Files      []FindingRef `json:"files"`
}

// BucketStats groups the type and risk breakdowns of one age bucket.
type BucketStats struct {
	Types map[FileTypeCategory]TypeStat `json:"types"`
	Risks map[RiskCategory]RiskStat     `json:"risks"`
}

// OwnerCount is the number of analyzed files owned by one account.
type OwnerCount struct {
	Owner string `json:"owner"`
	Count int    `json:"count"`
}

// DashboardStats is the normalized, UI-ready aggregate of one analysis run.
type DashboardStats struct {
	DocCount           int                       `json:"docCount"`
	DuplicateDocuments int                       `json:"duplicateDocuments"`
	SensitiveDocuments int                       `json:"sensitiveDocuments"`
	StaleDocuments     int                       `json:"staleDocuments"`
	TotalSize          int64                     `json:"totalSize"`
	TopOwners          []OwnerCount              `json:"topOwners"`
	AgeDistribution    map[AgeBucket]BucketStats `json:"ageDistribution"`
}

// AuthState is the tri-state session gate value.
type AuthState string

const (
	AuthUnknown         AuthState = "unknown"
	AuthAuthenticated   AuthState = "authenticated"
	AuthUnauthenticated AuthState = "unauthenticated"
)

// Directory is a top-level Drive folder.
type Directory struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
}

// FileQuery filters a server-side file listing.
type FileQuery struct {
	Page     int
	PerPage  int
	AgeGroup AgeBucket
	FileType FileTypeCategory
	Category RiskCategory
}

// FilePage is one page of a server-side file listing.
type FilePage struct {
	Files []FileRef `json:"files"`
	Total int       `json:"total"`
}

// SensitiveFile is a deduplicated entry in the sensitive file review list.
type SensitiveFile struct {
	FileRef
	Bucket    AgeBucket    `json:"ageGroup"`
	Category  RiskCategory `json:"category"`
	Reason    string       `json:"sensitivityReason"`
	RiskLevel float64      `json:"riskLevel"`
}

// CategorizationSummary is the structured content of a "categorization" chat reply.
type CategorizationSummary struct {
	ByType        map[string]int `json:"by_type"`
	ByDepartment  map[string]int `json:"by_department"`
	InternalFiles int            `json:"internal_files"`
	ExternalFiles int            `json:"external_files"`
	RecentFiles   int            `json:"recent_files"`
	LargeFiles    int            `json:"large_files"`
	TotalFiles    int            `json:"total_files"`
	TotalSize     int64          `json:"total_size"`
}

// Snapshot is a DashboardStats captured for a directory at a point in time.
type Snapshot struct {
	DirectoryID string         `json:"directory_id"`
	GeneratedAt string         `json:"generated_at"`
	Stats       DashboardStats `json:"stats"`
}
