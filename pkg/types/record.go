package types

const (
	RecordSchemaVersion = "1.0.0"
	GeneratorName       = "llmeval"
	GeneratorVersion    = "0.1.0"
)

// Record is the JSON envelope written for one evaluation.
type Record struct {
	SchemaVersion string             `json:"schema_version"`
	RecordID      string             `json:"record_id"`
	GeneratedAt   string             `json:"generated_at"`
	Generator     Generator          `json:"generator"`
	Subject       *Subject           `json:"subject,omitempty"`
	Scores        EvaluationOutput   `json:"scores"`
	Weights       map[string]float64 `json:"weights"`
	Rounding      string             `json:"rounding"`
	Annotations   map[string]string  `json:"annotations,omitempty"`
}

type Generator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Subject identifies the model output file that was scored.
type Subject struct {
	Name      string `json:"name"`
	URI       string `json:"uri"`
	Digest    Digest `json:"digest"`
	SizeBytes int64  `json:"size_bytes"`
}

type Digest struct {
	SHA256 string `json:"sha256"`
}
