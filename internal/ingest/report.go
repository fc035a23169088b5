package ingest

import (
	"fmt"
	"sync"

	"github.com/kunaile/janbhas/content"
)

// Status tags a changed file handed to the pipeline by an external
// change-detection collaborator (webhook payload, git diff or full scan).
type Status string

const (
	StatusAdded    Status = "added"
	StatusModified Status = "modified"
	StatusRemoved  Status = "removed"
)

// ChangedFile is the tuple shape every change-detection collaborator produces.
type ChangedFile struct {
	Path   string
	Status Status
}

// Document processing states. Rejection is terminal for a document but never
// halts the batch.
type docState string

const (
	statePending            docState = "pending"
	stateParsed             docState = "parsed"
	stateNormalized         docState = "normalized"
	stateTransliterated     docState = "transliterated"
	stateReferencesResolved docState = "references_resolved"
	statePersisted          docState = "persisted"
	stateRejected           docState = "rejected"
)

// Pipeline stages recorded on rejections.
const (
	StageParse         = "parse"
	StageNormalize     = "normalize"
	StageRender        = "render"
	StageTransliterate = "transliterate"
	StageResolve       = "resolve"
	StagePersist       = "persist"
)

// Rejection records why a single document was excluded from a batch.
type Rejection struct {
	Path   string `json:"path"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// BatchReport is the structured per-run summary: enough to diagnose which
// documents failed and why without replaying logs.
type BatchReport struct {
	Seen           int `json:"seen"`
	Parsed         int `json:"parsed"`
	Transliterated int `json:"transliterated"`
	Resolved       int `json:"resolved"`
	Created        int `json:"created"`
	Updated        int `json:"updated"`
	Skipped        int `json:"skipped"`
	Removed        int `json:"removed"`
	Rejected       int `json:"rejected"`

	Rejections []Rejection                `json:"rejections,omitempty"`
	Warnings   []content.IntegrityWarning `json:"warnings,omitempty"`

	mu sync.Mutex
}

// NewBatchReport returns an empty report.
func NewBatchReport() *BatchReport {
	return &BatchReport{
		Rejections: []Rejection{},
		Warnings:   []content.IntegrityWarning{},
	}
}

// Persisted is the number of rows written or refreshed in this batch.
func (r *BatchReport) Persisted() int {
	return r.Created + r.Updated
}

func (r *BatchReport) reject(path, stage string, err error) {
	r.Rejected++
	r.Rejections = append(r.Rejections, Rejection{Path: path, Stage: stage, Reason: err.Error()})
}

func (r *BatchReport) warn(w content.IntegrityWarning) {
	r.Warnings = append(r.Warnings, w)
}

// String renders a one-line run summary.
func (r *BatchReport) String() string {
	return fmt.Sprintf(
		"seen=%d parsed=%d transliterated=%d resolved=%d created=%d updated=%d skipped=%d removed=%d rejected=%d warnings=%d",
		r.Seen, r.Parsed, r.Transliterated, r.Resolved,
		r.Created, r.Updated, r.Skipped, r.Removed, r.Rejected, len(r.Warnings),
	)
}
