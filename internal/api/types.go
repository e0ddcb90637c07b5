package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Document describes a document session in a transport-friendly format.
type Document struct {
	ID          string       `json:"id"`
	SourceImage string       `json:"sourceImage,omitempty"`
	State       string       `json:"state"`
	Fields      []Field      `json:"fields"`
	Audit       []AuditEntry `json:"audit,omitempty"`
	Extraction  Extraction   `json:"extraction"`
	CreatedAt   string       `json:"createdAt,omitempty"`
	UpdatedAt   string       `json:"updatedAt,omitempty"`
}

// Field is one extracted field with its review state.
type Field struct {
	Kind       string  `json:"kind"`
	RawValue   string  `json:"rawValue"`
	Value      string  `json:"value"`
	State      string  `json:"state"`
	Confidence float64 `json:"confidence"`
}

// AuditEntry mirrors one line of a session's audit trail.
type AuditEntry struct {
	Timestamp string `json:"timestamp"`
	Action    string `json:"action"`
	Field     string `json:"field,omitempty"`
	OldState  string `json:"oldState,omitempty"`
	NewState  string `json:"newState,omitempty"`
	Verdict   string `json:"verdict,omitempty"`
	Override  bool   `json:"override,omitempty"`
	Note      string `json:"note,omitempty"`
}

// Extraction captures provenance of the OCR pass that seeded a document.
type Extraction struct {
	Model            string `json:"model,omitempty"`
	ScanTime         string `json:"scanTime,omitempty"`
	ProcessingMillis int64  `json:"processingMillis,omitempty"`
	Degraded         bool   `json:"degraded"`
}

// FieldVerdict is the per-field result of a verification pass.
type FieldVerdict struct {
	Kind          string  `json:"kind"`
	Verdict       string  `json:"verdict"`
	Similarity    float64 `json:"similarity"`
	OriginalValue string  `json:"originalValue"`
	FinalValue    string  `json:"finalValue"`
	Override      bool    `json:"override"`
	State         string  `json:"state"`
}

// VerifyRequest carries the operator's submitted values keyed by field kind.
// Omitted kinds confirm the extracted value as-is.
type VerifyRequest struct {
	Fields map[string]string `json:"fields"`
}

// VerifyResponse reports the reconciliation outcome and resulting document.
// Persisted is false when the outcome was computed but the durable save
// failed; the decision stands in memory and can be flushed later.
type VerifyResponse struct {
	Accepted         bool           `json:"accepted"`
	State            string         `json:"state"`
	Verdicts         []FieldVerdict `json:"verdicts"`
	Document         Document       `json:"document"`
	Persisted        bool           `json:"persisted"`
	PersistenceError string         `json:"persistenceError,omitempty"`
}

// FieldEditRequest carries a corrected value for one field.
type FieldEditRequest struct {
	Value string `json:"value"`
}

// RejectRequest carries the operator's reason for rejecting a document.
type RejectRequest struct {
	Reason string `json:"reason,omitempty"`
}

// DocumentResponse wraps a single document.
type DocumentResponse struct {
	Document Document `json:"document"`
}

// DocumentListResponse wraps a collection of documents.
type DocumentListResponse struct {
	Documents []Document `json:"documents"`
}

// ProcessResponse is returned after an upload has been extracted and a
// session opened for it.
type ProcessResponse struct {
	Document Document `json:"document"`
	Degraded bool     `json:"degraded"`
}

// ReportResponse names the generated report artifacts and embeds the text
// rendering for direct display.
type ReportResponse struct {
	DocumentID string `json:"documentId"`
	TextPath   string `json:"textPath"`
	JSONPath   string `json:"jsonPath"`
	Text       string `json:"text"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// StoreHealth reports document database diagnostics.
type StoreHealth struct {
	Path           string `json:"path"`
	Exists         bool   `json:"exists"`
	Readable       bool   `json:"readable"`
	IntegrityOK    bool   `json:"integrityOk"`
	TotalDocuments int    `json:"totalDocuments"`
	Error          string `json:"error,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	StorePath    string             `json:"storePath"`
	LockFilePath string             `json:"lockFilePath"`
	Provider     string             `json:"provider"`
	Documents    map[string]int     `json:"documents"`
	Store        StoreHealth        `json:"store"`
	Dependencies []DependencyStatus `json:"dependencies"`
}
